// Package metrics exports pool and resource statistics to Prometheus.
//
//	c := metrics.NewCollector()
//	_ = c.AddPool(buffers)
//	c.SetController(ctrl)
//	prometheus.MustRegister(c)
//
// The collector reads Stats snapshots at scrape time; it adds nothing to the
// acquire and release paths.
package metrics
