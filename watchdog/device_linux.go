// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package watchdog

import (
	"fmt"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// DefaultDevice is the kernel watchdog device node.
const DefaultDevice = "/dev/watchdog"

// Device is the kernel hardware watchdog. Once opened the board reboots unless it is
// reset within the timeout, Close disarms it using the magic close character.
type Device struct {
	mu  sync.Mutex
	fd  int
	err error
}

// OpenDevice opens the watchdog device and programs its timeout, rounded up to whole
// seconds.
func OpenDevice(path string, timeout time.Duration) (*Device, error) {
	fd, err := unix.Open(path, unix.O_WRONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, fmt.Errorf("watchdog: open %s: %w", path, err)
	}
	secs := int((timeout + time.Second - 1) / time.Second)
	if err := unix.IoctlSetPointerInt(fd, unix.WDIOC_SETTIMEOUT, secs); err != nil {
		unix.Write(fd, []byte{'V'})
		unix.Close(fd)
		return nil, fmt.Errorf("watchdog: set timeout %ds on %s: %w", secs, path, err)
	}
	return &Device{fd: fd}, nil
}

// Reset pets the watchdog. Write errors are recorded and can be retrieved using Err.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, err := unix.Write(d.fd, []byte{0}); err != nil && d.err == nil {
		d.err = fmt.Errorf("watchdog: keepalive: %w", err)
	}
}

// Err returns the first keepalive error.
func (d *Device) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.err
}

// Close disarms and closes the watchdog.
func (d *Device) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	unix.Write(d.fd, []byte{'V'})
	return unix.Close(d.fd)
}
