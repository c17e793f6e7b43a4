// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package watchdog

import (
	"testing"
	"time"
)

func TestTimerExpires(t *testing.T) {
	fired := make(chan struct{})
	w := NewTimer(10*time.Millisecond, func() { close(fired) })
	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatalf("watchdog did not expire")
	}
	if !w.Expired() {
		t.Fatalf("Expired() false after expiry")
	}
}

func TestTimerReset(t *testing.T) {
	fired := make(chan struct{}, 1)
	w := NewTimer(200*time.Millisecond, func() { fired <- struct{}{} })
	defer w.Stop()
	for i := 0; i < 10; i++ {
		time.Sleep(10 * time.Millisecond)
		w.Reset()
	}
	select {
	case <-fired:
		t.Fatalf("watchdog expired while being reset")
	default:
	}
	if w.Resets() != 10 {
		t.Fatalf("got %d resets expected 10", w.Resets())
	}
}

func TestTimerStop(t *testing.T) {
	w := NewTimer(5*time.Millisecond, nil)
	w.Stop()
	time.Sleep(20 * time.Millisecond)
	if w.Expired() {
		t.Fatalf("stopped watchdog expired")
	}
}

func TestNop(t *testing.T) {
	var w Watchdog = Nop{}
	w.Reset()
}
