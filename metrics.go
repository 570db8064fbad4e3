package objrepo

import "sync/atomic"

// respirationCount counts cooperative yields issued by respire, across the
// whole process. It exists so tests can observe that a bulk operation over
// N items yields at least floor(N/RespirationRate) times.
var respirationCount atomic.Int64

// RespirationCount returns the number of cooperative yields issued so far.
func RespirationCount() int64 {
	return respirationCount.Load()
}

// ResetRespirationCount zeroes the counter, for use between test cases.
func ResetRespirationCount() {
	respirationCount.Store(0)
}
