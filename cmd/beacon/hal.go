// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package main

import (
	"context"
	"fmt"
	"strconv"
	"time"

	_ "github.com/kidoman/embd/host/rpi"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"

	floripasat "github.com/tuliogomesp/Floripasat-Project"
	"github.com/tuliogomesp/Floripasat-Project/cc112x"
	"github.com/tuliogomesp/Floripasat-Project/cc112x/sim"
)

// hardware is what the beacon needs from the board.
type hardware struct {
	port  cc112x.Port
	edges cc112x.EdgeSource
	led   cc112x.Pin // may be nil
	chip  *sim.Chip  // set for the simulator only
	close func()
}

func openHAL(hal string, rc RadioConfig) (*hardware, error) {
	switch hal {
	case "periph":
		return openPeriph(rc)
	case "embd":
		return openEmbd(rc)
	case "sim":
		chip := sim.New()
		return &hardware{port: chip, edges: chip, chip: chip, close: func() {}}, nil
	}
	return nil, fmt.Errorf("unknown hal %q", hal)
}

func openPeriph(rc RadioConfig) (*hardware, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	port, err := spireg.Open(rc.SPI)
	if err != nil {
		return nil, fmt.Errorf("spireg.Open of port %s: %w", rc.SPI, err)
	}
	conn, err := port.Connect(physic.Frequency(rc.SpeedHz)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("cannot connect to %s: %w", rc.SPI, err)
	}
	hw := &hardware{port: cc112x.NewSPIPort(conn), close: func() { port.Close() }}

	if rc.ResetPin != "" {
		rst := gpioreg.ByName(rc.ResetPin)
		if rst == nil {
			port.Close()
			return nil, fmt.Errorf("cannot open pin %s", rc.ResetPin)
		}
		if err := rst.Out(gpio.High); err != nil {
			port.Close()
			return nil, fmt.Errorf("cannot release radio reset: %w", err)
		}
		time.Sleep(time.Millisecond)
	}
	intr := gpioreg.ByName(rc.IntrPin)
	if intr == nil {
		port.Close()
		return nil, fmt.Errorf("cannot open pin %s", rc.IntrPin)
	}
	if err := intr.In(gpio.PullUp, gpio.FallingEdge); err != nil {
		port.Close()
		return nil, fmt.Errorf("cannot watch pin %s: %w", rc.IntrPin, err)
	}
	hw.edges = intr
	if rc.LedPin != "" {
		led := gpioreg.ByName(rc.LedPin)
		if led == nil {
			port.Close()
			return nil, fmt.Errorf("cannot open pin %s", rc.LedPin)
		}
		hw.led = led
	}
	return hw, nil
}

func openEmbd(rc RadioConfig) (*hardware, error) {
	ch, err := strconv.ParseUint(rc.SPI, 10, 8)
	if err != nil {
		return nil, fmt.Errorf("embd spi channel must be a number, got %q", rc.SPI)
	}
	bus, err := floripasat.NewSPI(byte(ch), rc.SpeedHz)
	if err != nil {
		return nil, err
	}
	var pins []floripasat.GPIO
	hw := &hardware{port: cc112x.NewSPIPort(bus)}
	hw.close = func() {
		for _, p := range pins {
			p.Close()
		}
		bus.Close()
	}
	open := func(name string) (floripasat.GPIO, error) {
		p, err := floripasat.NewGPIO(name)
		if err != nil {
			hw.close()
			return nil, err
		}
		pins = append(pins, p)
		return p, nil
	}

	if rc.ResetPin != "" {
		rst, err := open(rc.ResetPin)
		if err != nil {
			return nil, err
		}
		if err := rst.Out(gpio.High); err != nil {
			hw.close()
			return nil, fmt.Errorf("cannot release radio reset: %w", err)
		}
		time.Sleep(time.Millisecond)
	}
	intr, err := open(rc.IntrPin)
	if err != nil {
		return nil, err
	}
	if err := intr.WatchFalling(); err != nil {
		hw.close()
		return nil, fmt.Errorf("cannot watch pin %s: %w", rc.IntrPin, err)
	}
	hw.edges = intr
	if rc.LedPin != "" {
		led, err := open(rc.LedPin)
		if err != nil {
			return nil, err
		}
		hw.led = led
	}
	return hw, nil
}

// simPeer plays the other end of the link for the simulator in receive mode: it sends
// a beacon packet every period.
func simPeer(ctx context.Context, chip *sim.Chip, packetLen int, period time.Duration) {
	payload := make([]byte, packetLen-3)
	for i := range payload {
		payload[i] = 0xFF
	}
	t := time.NewTicker(period)
	defer t.Stop()
	for seq := uint16(1); ; seq++ {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
		frame, err := cc112x.BuildPacket(seq, payload, packetLen)
		if err != nil {
			return
		}
		chip.InjectWithStatus(frame, -70, 40, true)
	}
}
