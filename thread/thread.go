// Copyright 2016 by Thorsten von Eicken, see LICENSE file

// Package thread gives latency sensitive goroutines, such as the radio interrupt pump,
// their own kernel thread with realtime priority.
package thread

import "errors"

// DefaultPriority is somewhere in the lower middle of the realtime range.
const DefaultPriority = 10

const FIFO = 1 // fifo scheduling policy
const RR = 2   // round-robin scheduling policy

// ErrUnsupported is returned on systems without realtime scheduling.
var ErrUnsupported = errors.New("thread: realtime scheduling not supported")

// ErrPriority is returned for a priority outside of 1..99.
var ErrPriority = errors.New("thread: realtime priority must be 1..99")

func checkPriority(p int) error {
	if p < 1 || p > 99 {
		return ErrPriority
	}
	return nil
}
