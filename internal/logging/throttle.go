package logging

import (
	"sync/atomic"
	"time"
)

// Throttle lets one caller through per interval. It keeps noisy log lines,
// such as device polls every few seconds, from flooding the output.
// The zero interval lets every call through.
type Throttle struct {
	interval time.Duration
	last     atomic.Int64 // unix nanos of the last allowed call
}

func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval}
}

// Allow reports whether a line may be logged at now.
func (t *Throttle) Allow(now time.Time) bool {
	n := now.UnixNano()
	for {
		last := t.last.Load()
		if last != 0 && n-last < int64(t.interval) {
			return false
		}
		if t.last.CompareAndSwap(last, n) {
			return true
		}
	}
}
