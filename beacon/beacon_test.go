// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package beacon

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tuliogomesp/Floripasat-Project/cc112x"
	"github.com/tuliogomesp/Floripasat-Project/cc112x/sim"
)

func testConfig(mode Mode, count int) Config {
	cfg := DefaultConfig()
	cfg.Mode = mode
	cfg.Count = count
	cfg.InterPacketDelay = time.Millisecond
	cfg.TxTimeout = 50 * time.Millisecond
	cfg.RxWindow = 50 * time.Millisecond
	cfg.WatchdogPeriod = time.Second
	return cfg
}

func newSimRadio(t *testing.T) (*sim.Chip, *cc112x.Radio) {
	chip := sim.New()
	r, err := cc112x.New(chip, cc112x.RadioOpts{Logger: t.Logf})
	if err != nil {
		t.Fatalf("Unexpected error %v", err)
	}
	chip.OnEdge = r.Interrupt
	return chip, r
}

// recorder is a watchdog and transceiver wrapper logging the order of events.
type recorder struct {
	Transceiver
	events []string
}

func (r *recorder) Reset() { r.events = append(r.events, "reset") }

func (r *recorder) Calibrate(n int) (*cc112x.Calibration, error) {
	r.events = append(r.events, "calibrate")
	return r.Transceiver.Calibrate(n)
}

func (r *recorder) Transmit(d time.Duration) (uint16, error) {
	r.events = append(r.events, "transmit")
	return r.Transceiver.Transmit(d)
}

func (r *recorder) Receive(d time.Duration) (*cc112x.Packet, error) {
	r.events = append(r.events, "receive")
	return r.Transceiver.Receive(d)
}

func TestTransmitLoop(t *testing.T) {
	chip, r := newSimRadio(t)
	s, err := New(r, nil, testConfig(ModeTransmit, 2))
	if err != nil {
		t.Fatalf("Unexpected error %v", err)
	}
	var diag []string
	var seqs []uint16
	s.Diag = func(l string) { diag = append(diag, l) }
	s.OnTransmit = func(seq uint16) { seqs = append(seqs, seq) }
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Unexpected error %v", err)
	}

	sent := chip.Sent()
	exp := [][]byte{{5, 0, 1, 0xFF, 0xFF}, {5, 0, 2, 0xFF, 0xFF}}
	if len(sent) != 2 || !bytes.Equal(sent[0], exp[0]) || !bytes.Equal(sent[1], exp[1]) {
		t.Fatalf("got % x expected % x", sent, exp)
	}
	if len(seqs) != 2 || seqs[0] != 1 || seqs[1] != 2 {
		t.Fatalf("got seqs %+v", seqs)
	}
	if len(diag) != 3 || diag[1] != "* CC1125 Radio Transmit *" {
		t.Fatalf("got banner %q", diag)
	}
	if r.Stats().Sent != 2 {
		t.Fatalf("stats %+v", r.Stats())
	}
	if r.State() != cc112x.Idle {
		t.Fatalf("radio not left safe: %s", r.State())
	}
}

func TestWatchdogOrder(t *testing.T) {
	_, r := newSimRadio(t)
	rec := &recorder{Transceiver: r}
	s, err := New(rec, rec, testConfig(ModeTransmit, 3))
	if err != nil {
		t.Fatalf("Unexpected error %v", err)
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Unexpected error %v", err)
	}
	exp := []string{"calibrate", "reset", "transmit", "reset", "transmit", "reset",
		"transmit", "reset"}
	if len(rec.events) != len(exp) {
		t.Fatalf("got %q expected %q", rec.events, exp)
	}
	for i := range exp {
		if rec.events[i] != exp[i] {
			t.Fatalf("got %q expected %q", rec.events, exp)
		}
	}
}

func TestTransmitTimeoutRecovers(t *testing.T) {
	chip, r := newSimRadio(t)
	chip.AutoComplete = false
	cfg := testConfig(ModeTransmit, 2)
	cfg.TxTimeout = 2 * time.Millisecond
	s, _ := New(r, nil, cfg)
	var errs []error
	s.OnError = func(err error) { errs = append(errs, err) }
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Unexpected error %v", err)
	}
	if len(errs) != 2 || !errors.Is(errs[0], cc112x.ErrTxTimeout) {
		t.Fatalf("got %v", errs)
	}
	if r.Sequence() != 0 {
		t.Fatalf("sequence advanced to %d", r.Sequence())
	}
}

func TestCalibrationFailure(t *testing.T) {
	chip, r := newSimRadio(t)
	chip.Stuck = true
	cfg := testConfig(ModeTransmit, 1)
	cfg.CalibrationPolls = 20
	rec := &recorder{Transceiver: r}
	s, _ := New(rec, rec, cfg)
	err := s.Run(context.Background())
	if !errors.Is(err, cc112x.ErrCalibrationTimeout) {
		t.Fatalf("got %v expected %v", err, cc112x.ErrCalibrationTimeout)
	}
	if len(rec.events) != 1 || len(chip.Sent()) != 0 {
		t.Fatalf("loop ran after failed calibration: %q", rec.events)
	}
	s2 := chip.Strobes()
	if s2[len(s2)-1] != cc112x.SFTX {
		t.Fatalf("radio not left safe: strobes %+v", s2)
	}
}

func TestReceiveLoop(t *testing.T) {
	chip, r := newSimRadio(t)
	s, _ := New(r, nil, testConfig(ModeReceive, 0))
	var got []*cc112x.Packet
	var diag []string
	ctx, cancel := context.WithCancel(context.Background())
	s.Diag = func(l string) { diag = append(diag, l) }
	s.OnPacket = func(p *cc112x.Packet) {
		got = append(got, p)
		if len(got) == 2 {
			cancel()
		}
	}
	go func() {
		for chip.Reg(cc112x.REG_MARCSTATE) != 0x6D {
			time.Sleep(time.Millisecond)
		}
		chip.Inject([]byte{5, 0, 1, 0xFF, 0xFF})
		time.Sleep(10 * time.Millisecond)
		chip.InjectFifoError(40)
		time.Sleep(10 * time.Millisecond)
		chip.Inject([]byte{5, 0, 2, 0xFF, 0xFF})
	}()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("Unexpected error %v", err)
	}
	if len(got) != 2 || got[0].Sequence != 1 || got[1].Sequence != 2 {
		t.Fatalf("got %+v", got)
	}
	if r.Stats().FifoErrors != 1 {
		t.Fatalf("stats %+v", r.Stats())
	}
	found := false
	for _, l := range diag {
		if l == "pktCount0: 2" {
			found = true
		}
	}
	if !found {
		t.Fatalf("packet dump missing from %q", diag)
	}
}

func TestRunCancelled(t *testing.T) {
	_, r := newSimRadio(t)
	cfg := testConfig(ModeTransmit, 0)
	cfg.InterPacketDelay = 100 * time.Millisecond
	s, _ := New(r, nil, cfg)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	if err := s.Run(ctx); err != nil {
		t.Fatalf("got %v expected clean stop", err)
	}
}
