// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package floripasat

// stuff in here is a hack to be able to switch between embd and periph...

import (
	"errors"
	"fmt"
	"time"

	"github.com/kidoman/embd"
	"periph.io/x/periph/conn/gpio"
)

// SPI is a full-duplex SPI bus with a fixed chip select. It satisfies cc112x.Conn.
type SPI interface {
	Tx(w, r []byte) error
	Close() error
}

const (
	SPIMode0 = 0x0 // CPOL=0, CPHA=0
	SPIMode1 = 0x1 // CPOL=0, CPHA=1
	SPIMode2 = 0x2 // CPOL=1, CPHA=0
	SPIMode3 = 0x3 // CPOL=1, CPHA=1
)

// GPIO is a pin usable as the radio interrupt input (cc112x.EdgeSource) or as the
// heartbeat and reset outputs (cc112x.Pin).
type GPIO interface {
	WatchFalling() error
	WaitForEdge(timeout time.Duration) bool
	Out(l gpio.Level) error
	Number() int
	Close() error
}

//===== SPI shim for embd

// NewSPI opens SPI channel ch in mode 0 with 8-bit words at the given speed. The CC1125
// accepts up to 10MHz for single accesses.
func NewSPI(ch byte, hz int) (SPI, error) {
	if hz <= 0 || hz > 10000000 {
		return nil, fmt.Errorf("SPI: speed %dHz out of range", hz)
	}
	if err := embd.InitSPI(); err != nil {
		return nil, fmt.Errorf("SPI: %w", err)
	}
	return &spi{embd.NewSPIBus(embd.SPIMode0, ch, hz, 8, 0)}, nil
}

type spi struct {
	embd.SPIBus
}

func (s *spi) Tx(w, r []byte) error {
	if len(r) != len(w) {
		return errors.New("SPI: read and write buffers must have the same length")
	}
	copy(r, w)
	return s.TransferAndReceiveData(r)
}

//===== GPIO shim for embd

// NewGPIO opens a digital pin by name, e.g. "GPIO_25" or "P1_22".
func NewGPIO(name string) (GPIO, error) {
	if err := embd.InitGPIO(); err != nil {
		return nil, fmt.Errorf("GPIO: %w", err)
	}
	g, err := embd.NewDigitalPin(name)
	if err != nil {
		return nil, fmt.Errorf("GPIO %s: %w", name, err)
	}
	return &gpioPin{p: g, dir: embd.In, edge: make(chan struct{}, 1)}, nil
}

type gpioPin struct {
	p    embd.DigitalPin
	dir  embd.Direction
	edge chan struct{}
}

// WatchFalling turns the pin into an input and latches falling edges.
func (g *gpioPin) WatchFalling() error {
	if err := g.p.SetDirection(embd.In); err != nil {
		return err
	}
	g.dir = embd.In
	return g.p.Watch(embd.EdgeFalling, g.edgeCB)
}

func (g *gpioPin) WaitForEdge(timeout time.Duration) bool {
	to := time.NewTimer(timeout)
	defer to.Stop()
	select {
	case <-g.edge:
		return true
	case <-to.C:
		return false
	}
}

func (g *gpioPin) Out(l gpio.Level) error {
	if g.dir != embd.Out {
		if err := g.p.SetDirection(embd.Out); err != nil {
			return err
		}
		g.dir = embd.Out
	}
	v := embd.Low
	if l == gpio.High {
		v = embd.High
	}
	return g.p.Write(v)
}

func (g *gpioPin) Number() int {
	return g.p.N()
}

func (g *gpioPin) Close() error {
	if g.dir == embd.In {
		g.p.StopWatching()
	}
	return g.p.Close()
}

func (g *gpioPin) edgeCB(embd.DigitalPin) {
	select {
	case g.edge <- struct{}{}:
	default:
	}
}
