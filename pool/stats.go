package pool

import "fmt"

// ShardStats describes one shard.
type ShardStats struct {
	Idle     int
	Hits     int64 // acquires served from the idle stack
	Misses   int64 // acquires that manufactured
	Retained int64 // returns kept
	Dropped  int64 // returns refused at the retention ceiling
}

// Stats is a snapshot of pool counters.
//
// Shards are read one at a time, so a snapshot taken while borrowers are
// active is not a consistent cut. At a quiescent point
// Idle+InFlight == Manufactured-Discarded.
type Stats struct {
	Name                string
	Shards              int
	Retention           int
	Idle                int
	InFlight            int64
	Manufactured        int64
	ManufactureFailures int64
	Discarded           int64
	Hits                int64
	Misses              int64
	Retained            int64
	Dropped             int64
	PerShard            []ShardStats
}

// Stats returns the current pool statistics.
func (p *Pool[T]) Stats() Stats {
	st := Stats{
		Name:      p.name,
		Shards:    len(p.shards),
		Retention: p.retention,
		PerShard:  make([]ShardStats, len(p.shards)),
	}

	for i := range p.shards {
		s := &p.shards[i]
		s.mu.Lock()
		ss := ShardStats{
			Idle:     len(s.idle),
			Hits:     s.hits,
			Misses:   s.misses,
			Retained: s.retained,
			Dropped:  s.dropped,
		}
		s.mu.Unlock()

		st.PerShard[i] = ss
		st.Idle += ss.Idle
		st.Hits += ss.Hits
		st.Misses += ss.Misses
		st.Retained += ss.Retained
		st.Dropped += ss.Dropped
	}

	st.InFlight = p.inFlight.Load()
	st.Manufactured = p.manufactured.Load()
	st.ManufactureFailures = p.failures.Load()
	st.Discarded = p.discarded.Load()
	return st
}

// HitRate returns the fraction of acquires served without manufacturing.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

func (s Stats) String() string {
	return fmt.Sprintf(
		"Pool{name: %s, shards: %d, idle: %d, in_flight: %d, manufactured: %d, discarded: %d, hit_rate: %.1f%%}",
		s.Name, s.Shards, s.Idle, s.InFlight, s.Manufactured, s.Discarded, s.HitRate()*100,
	)
}
