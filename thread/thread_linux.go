// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package thread

import (
	"fmt"
	"runtime"

	"golang.org/x/sys/unix"
)

// Realtime locks the calling goroutine to its own kernel thread and elevates that
// thread's priority to realtime using the round-robin scheduling policy. The goroutine
// stays locked even if the priority change fails.
func Realtime(priority int) error {
	if err := checkPriority(priority); err != nil {
		return err
	}
	// First pin goroutine to its own kernel thread.
	runtime.LockOSThread()
	// Give this thread realtime priority, pid 0 is the calling thread.
	attr := unix.SchedAttr{
		Size:     unix.SizeofSchedAttr,
		Policy:   RR,
		Priority: uint32(priority),
	}
	if err := unix.SchedSetAttr(0, &attr, 0); err != nil {
		return fmt.Errorf("thread: sched_setattr(RR, %d): %w", priority, err)
	}
	return nil
}
