// Copyright 2016 by Thorsten von Eicken, see LICENSE file

// Package watchdog provides the supervisory timers the beacon control loop keeps alive.
// A Watchdog that is not Reset within its period restarts the system: the software Timer
// calls an expiry hook (typically exiting the process so the service manager restarts
// it) and the linux Device lets the kernel reboot the board.
package watchdog

import (
	"sync"
	"sync/atomic"
	"time"
)

// Watchdog is a supervisory countdown timer.
type Watchdog interface {
	Reset()
}

// Nop is a Watchdog that never expires.
type Nop struct{}

func (Nop) Reset() {}

// Timer is a software watchdog.
type Timer struct {
	mu      sync.Mutex
	t       *time.Timer
	period  time.Duration
	resets  atomic.Uint64
	expired atomic.Bool
}

// NewTimer starts a software watchdog that calls onExpire from its own goroutine if it is
// not reset within period.
func NewTimer(period time.Duration, onExpire func()) *Timer {
	w := &Timer{period: period}
	w.t = time.AfterFunc(period, func() {
		w.expired.Store(true)
		if onExpire != nil {
			onExpire()
		}
	})
	return w
}

// Reset restarts the countdown. Resetting an expired Timer re-arms it.
func (w *Timer) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.t.Reset(w.period)
	w.resets.Add(1)
}

// Stop disarms the timer.
func (w *Timer) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.t.Stop()
}

// Period returns the countdown period.
func (w *Timer) Period() time.Duration { return w.period }

// Resets returns the number of times the timer was reset.
func (w *Timer) Resets() uint64 { return w.resets.Load() }

// Expired reports whether the timer ever expired.
func (w *Timer) Expired() bool { return w.expired.Load() }
