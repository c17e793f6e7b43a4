// Copyright 2016 by Thorsten von Eicken, see LICENSE file

//go:build !linux

package thread

import "runtime"

// Realtime locks the calling goroutine to its own kernel thread. Raising the priority is
// only supported on linux, elsewhere ErrUnsupported is returned.
func Realtime(priority int) error {
	if err := checkPriority(priority); err != nil {
		return err
	}
	runtime.LockOSThread()
	return ErrUnsupported
}
