// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package beacon

import (
	"fmt"
	"strings"
	"time"

	"github.com/tuliogomesp/Floripasat-Project/cc112x"
)

// Mode selects what the beacon does after calibration. Transmit and receive are never
// interleaved.
type Mode int

const (
	ModeTransmit Mode = iota
	ModeReceive
)

func (m Mode) String() string {
	switch m {
	case ModeTransmit:
		return "tx"
	case ModeReceive:
		return "rx"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses "tx" or "rx" (or the long forms "transmit" and "receive").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "tx", "transmit":
		return ModeTransmit, nil
	case "rx", "receive":
		return ModeReceive, nil
	}
	return 0, fmt.Errorf("beacon: unknown mode %q, expected tx or rx", s)
}

// Config holds the control loop parameters.
type Config struct {
	Mode             Mode
	InterPacketDelay time.Duration // pause after each transmitted packet
	TxTimeout        time.Duration // wait for the end-of-packet interrupt
	RxWindow         time.Duration // one receive wait
	CalibrationPolls int           // MARCSTATE polls per calibration run
	WatchdogPeriod   time.Duration // supervisory timer period
	Count            int           // stop after this many phases, 0 runs forever
}

// DefaultConfig returns the flight configuration.
func DefaultConfig() Config {
	return Config{
		Mode:             ModeTransmit,
		InterPacketDelay: 100 * time.Millisecond,
		TxTimeout:        500 * time.Millisecond,
		RxWindow:         2 * time.Second,
		CalibrationPolls: cc112x.DefaultCalibrationPolls,
		WatchdogPeriod:   8 * time.Second,
	}
}

// Validate checks that every bounded phase fits in the watchdog period.
func (c *Config) Validate() error {
	switch {
	case c.Mode != ModeTransmit && c.Mode != ModeReceive:
		return fmt.Errorf("beacon: invalid mode %s", c.Mode)
	case c.InterPacketDelay < 0:
		return fmt.Errorf("beacon: negative inter-packet delay %s", c.InterPacketDelay)
	case c.TxTimeout <= 0:
		return fmt.Errorf("beacon: tx timeout must be positive, got %s", c.TxTimeout)
	case c.RxWindow <= 0:
		return fmt.Errorf("beacon: rx window must be positive, got %s", c.RxWindow)
	case c.CalibrationPolls < 0:
		return fmt.Errorf("beacon: negative calibration polls %d", c.CalibrationPolls)
	case c.Count < 0:
		return fmt.Errorf("beacon: negative count %d", c.Count)
	case c.WatchdogPeriod <= 0:
		return fmt.Errorf("beacon: watchdog period must be positive, got %s", c.WatchdogPeriod)
	case c.TxTimeout+c.InterPacketDelay >= c.WatchdogPeriod:
		return fmt.Errorf("beacon: tx timeout %s + inter-packet delay %s exceed watchdog period %s",
			c.TxTimeout, c.InterPacketDelay, c.WatchdogPeriod)
	case c.RxWindow >= c.WatchdogPeriod:
		return fmt.Errorf("beacon: rx window %s exceeds watchdog period %s",
			c.RxWindow, c.WatchdogPeriod)
	}
	return nil
}
