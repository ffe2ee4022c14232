// Package resource budgets what pooled scratch resources may cost.
//
// A Controller is shared by every pool of one execution session. It tracks
// three things:
//
//   - Memory: bytes reserved by manufactured items, with an optional hard
//     limit. Reservation never blocks; a factory that cannot reserve fails
//     with ErrMemoryLimitExceeded and the pool reports a ManufactureError.
//   - Background slots: how many prewarm jobs may run at once.
//   - Manufacture rate: an optional token bucket that bounds how fast pools
//     may manufacture new items. Exceeding it fails with ErrRateLimited.
//
// A nil *Controller is valid and imposes no limits.
package resource
