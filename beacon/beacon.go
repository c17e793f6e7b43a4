// Copyright 2016 by Thorsten von Eicken, see LICENSE file

// Package beacon runs the watchdog supervised control loop of the FloripaSat beacon: it
// calibrates the radio once and then either transmits numbered packets forever or
// receives and reports them forever. The watchdog is reset after every bounded phase of
// work, so a phase that hangs ends in a restart.
package beacon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tuliogomesp/Floripasat-Project/cc112x"
	"github.com/tuliogomesp/Floripasat-Project/watchdog"
)

// Transceiver is the part of *cc112x.Radio the control loop uses.
type Transceiver interface {
	Calibrate(maxPolls int) (*cc112x.Calibration, error)
	Transmit(timeout time.Duration) (uint16, error)
	ArmReceive() error
	Receive(timeout time.Duration) (*cc112x.Packet, error)
	Safe()
}

// LogPrintf is a function used to print logging info.
type LogPrintf func(format string, v ...interface{})

var (
	txBanner = []string{
		"*************************",
		"* CC1125 Radio Transmit *",
		"*************************",
	}
	rxBanner = []string{
		"*************************",
		"* CC1125 Radio Receive  *",
		"*************************",
	}
)

// Service is the beacon control loop.
type Service struct {
	radio Transceiver
	wd    watchdog.Watchdog
	cfg   Config
	log   LogPrintf

	// Diag receives the diagnostic lines (mode banner, received packet dumps), it
	// defaults to the logger.
	Diag func(line string)
	// OnTransmit is called after each packet sent.
	OnTransmit func(seq uint16)
	// OnPacket is called for each packet received.
	OnPacket func(p *cc112x.Packet)
	// OnError is called for every recovered error: tx timeouts, fifo and framing errors.
	OnError func(err error)
}

// New returns a control loop for radio supervised by wd, a nil wd selects watchdog.Nop.
func New(radio Transceiver, wd watchdog.Watchdog, cfg Config) (*Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if wd == nil {
		wd = watchdog.Nop{}
	}
	s := &Service{radio: radio, wd: wd, cfg: cfg}
	s.SetLogger(nil)
	return s, nil
}

// SetLogger sets a logging function, nil may be used to disable logging, which is the default.
func (s *Service) SetLogger(l LogPrintf) {
	if l != nil {
		s.log = l
	} else {
		s.log = func(format string, v ...interface{}) {}
	}
}

// Config returns the loop configuration.
func (s *Service) Config() Config { return s.cfg }

func (s *Service) diag(lines ...string) {
	for _, l := range lines {
		if s.Diag != nil {
			s.Diag(l)
		} else {
			s.log("%s", l)
		}
	}
}

func (s *Service) recovered(err error) {
	s.log("%s", err)
	if s.OnError != nil {
		s.OnError(err)
	}
}

// Run calibrates the radio and runs the configured mode until ctx is cancelled, the
// configured count is reached or a fatal error occurs. The radio is left in its safe
// state when Run returns. Cancellation is not an error.
func (s *Service) Run(ctx context.Context) error {
	defer s.radio.Safe()

	cal, err := s.radio.Calibrate(s.cfg.CalibrationPolls)
	if err != nil {
		return fmt.Errorf("beacon: calibration: %w", err)
	}
	s.log("calibrated, applied %+v", cal.Applied())
	s.wd.Reset()

	switch s.cfg.Mode {
	case ModeReceive:
		err = s.receive(ctx)
	default:
		err = s.transmit(ctx)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		s.log("%s loop stopped: %s", s.cfg.Mode, err)
		return nil
	}
	return err
}

// transmit sends packets forever. One phase is a transmission (bounded by TxTimeout)
// followed by the inter-packet delay.
func (s *Service) transmit(ctx context.Context) error {
	s.diag(txBanner...)
	for n := 0; s.cfg.Count == 0 || n < s.cfg.Count; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		seq, err := s.radio.Transmit(s.cfg.TxTimeout)
		switch {
		case errors.Is(err, cc112x.ErrTxTimeout):
			s.recovered(err)
		case err != nil:
			return err
		case s.OnTransmit != nil:
			s.OnTransmit(seq)
		}
		if err := sleep(ctx, s.cfg.InterPacketDelay); err != nil {
			return err
		}
		s.wd.Reset()
	}
	return nil
}

// receive reports packets forever. One phase is one receive window.
func (s *Service) receive(ctx context.Context) error {
	s.diag(rxBanner...)
	if err := s.radio.ArmReceive(); err != nil {
		return err
	}
	for n := 0; s.cfg.Count == 0 || n < s.cfg.Count; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		p, err := s.radio.Receive(s.cfg.RxWindow)
		switch {
		case errors.Is(err, cc112x.ErrNoPacket):
		case errors.Is(err, cc112x.ErrFifoOverflow), errors.Is(err, cc112x.ErrFraming):
			s.recovered(err)
			s.diag(rxBanner...)
		case err != nil:
			return err
		case p != nil:
			s.diag(p.Lines()...)
			if s.OnPacket != nil {
				s.OnPacket(p)
			}
		}
		s.wd.Reset()
	}
	return nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
