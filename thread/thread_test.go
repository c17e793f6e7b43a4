// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package thread

import (
	"errors"
	"testing"
)

func TestRealtimeRejectsBadPriority(t *testing.T) {
	for _, p := range []int{-1, 0, 100, 1000} {
		if err := Realtime(p); !errors.Is(err, ErrPriority) {
			t.Errorf("priority %d: got %v expected %v", p, err, ErrPriority)
		}
	}
}
