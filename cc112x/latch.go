// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package cc112x

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/tuliogomesp/Floripasat-Project/thread"
)

const (
	isrIdle           = 0
	isrActionRequired = 1
)

// pollInterval is how long Wait sleeps between two looks at the latch.
const pollInterval = 200 * time.Microsecond

// Latch is the single-slot event flag between the interrupt side and the control loop.
// The interrupt side only ever sets it, the control loop clears it once it has serviced
// the event. Edges arriving while the latch is set coalesce into the pending event.
type Latch struct {
	state atomic.Uint32
	edges atomic.Uint64
}

// Set marks an event as pending. Safe to call from any goroutine.
func (l *Latch) Set() {
	l.edges.Add(1)
	l.state.Store(isrActionRequired)
}

// Pending reports whether an event awaits service.
func (l *Latch) Pending() bool { return l.state.Load() == isrActionRequired }

// Clear returns the latch to idle. Only the control loop calls it.
func (l *Latch) Clear() { l.state.Store(isrIdle) }

// Edges returns the number of times Set has been called.
func (l *Latch) Edges() uint64 { return l.edges.Load() }

// Wait polls the latch until it is set or timeout elapses and reports whether an event
// is pending. It does not clear the latch.
func (l *Latch) Wait(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for !l.Pending() {
		if !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(pollInterval)
	}
	return true
}

// EdgeSource delivers edges of the radio's interrupt line. periph's gpio.PinIn, the
// embd shim GPIO and the simulator all satisfy it.
type EdgeSource interface {
	WaitForEdge(timeout time.Duration) bool
}

// Interrupt is the interrupt service routine: it latches a packet event. It never
// touches packet buffers or the register port.
func (r *Radio) Interrupt() {
	r.latch.Set()
}

// ServeInterrupts pumps edges from src into the latch until ctx is done. It is meant to
// run in its own goroutine and plays the role of the GPIO interrupt handler. With
// realtime set the goroutine is locked to an OS thread with realtime priority so edge
// latency stays low while the control loop polls.
func (r *Radio) ServeInterrupts(ctx context.Context, src EdgeSource, realtime bool) {
	if realtime {
		if err := thread.Realtime(thread.DefaultPriority); err != nil {
			r.log("cannot get realtime priority for interrupt thread: %s", err)
		}
	}
	for {
		select {
		case <-ctx.Done():
			r.log("interrupt goroutine exiting")
			return
		default:
		}
		if src.WaitForEdge(time.Second) {
			r.Interrupt()
		}
	}
}
