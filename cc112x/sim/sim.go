// Copyright 2016 by Thorsten von Eicken, see LICENSE file

// Package sim is a register level simulation of a CC112x good enough to run the beacon
// without hardware: it implements cc112x.Port on top of a register array, keeps TX and
// RX FIFOs, settles calibrations after a configurable number of MARCSTATE polls and
// raises the packet-done edge the way GPIO2 does on the real chip.
package sim

import (
	"fmt"
	"sync"
	"time"

	"github.com/tuliogomesp/Floripasat-Project/cc112x"
)

const (
	marcSettled = cc112x.MARCSTATE_SETTLED
	marcManCal  = 0x45 // IDLE 2-pin state, MANCAL
	marcRx      = 0x6D // RX 2-pin state, RX
	marcRxErr   = 0x51 // 2-pin state RX, RX_FIFO_ERR

	defaultCal2   = 0x20
	defaultPart   = 0x58
	defaultVer    = 0x21
	defaultPktLen = 0x03
)

// CalFunc computes the synthesizer registers a calibration started with the given FS_CAL2
// value produces.
type CalFunc func(cal2 byte) (vco2, vco4, chp byte)

// Op is one access to the simulated chip.
type Op struct {
	Kind string // "read", "write", "strobe", "rxfifo" or "txfifo"
	Addr cc112x.Reg
	Data []byte
}

func (o Op) String() string {
	switch o.Kind {
	case "strobe":
		return fmt.Sprintf("strobe %#02x", byte(o.Addr))
	case "rxfifo", "txfifo":
		return fmt.Sprintf("%s % x", o.Kind, o.Data)
	}
	return fmt.Sprintf("%s %#04x=%#02x", o.Kind, uint16(o.Addr), o.Data)
}

// Chip is a simulated CC112x. The zero value is not usable, see New.
type Chip struct {
	mu      sync.Mutex
	regs    [0x3000]byte
	txFifo  []byte
	rxFifo  []byte
	sent    [][]byte
	ops     []Op
	calLeft int  // MARCSTATE reads until the running calibration settles
	calCal2 byte // FS_CAL2 when SCAL was strobed
	err     error
	edge    chan struct{}

	// CalResult decides the outcome of calibrations.
	CalResult CalFunc
	// CalPolls is the number of MARCSTATE reads a calibration takes.
	CalPolls int
	// Stuck makes calibrations never settle.
	Stuck bool
	// AutoComplete raises the packet-done edge as soon as TX is strobed.
	AutoComplete bool
	// OnEdge is called, without locks held, for every edge raised.
	OnEdge func()
}

// New returns a simulated chip in its power-on state that completes transmissions
// immediately and settles calibrations after 3 polls.
func New() *Chip {
	c := &Chip{
		CalResult:    func(cal2 byte) (byte, byte, byte) { return cal2, 0x11, 0x22 },
		CalPolls:     3,
		AutoComplete: true,
		edge:         make(chan struct{}, 1),
	}
	c.reset()
	return c
}

func (c *Chip) reset() {
	c.regs = [0x3000]byte{}
	c.regs[cc112x.REG_FS_CAL2] = defaultCal2
	c.regs[cc112x.REG_MARCSTATE] = marcSettled
	c.regs[cc112x.REG_PARTNUMBER] = defaultPart
	c.regs[cc112x.REG_PARTVERSION] = defaultVer
	c.regs[cc112x.REG_PKT_LEN] = defaultPktLen
	c.txFifo, c.rxFifo = nil, nil
	c.calLeft = 0
}

func (c *Chip) Read(addr cc112x.Reg) byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	var v byte
	switch addr {
	case cc112x.REG_NUM_RXBYTES:
		v = byte(len(c.rxFifo))
	case cc112x.REG_NUM_TXBYTES:
		v = byte(len(c.txFifo))
	case cc112x.REG_MARCSTATE:
		if c.calLeft > 0 && !c.Stuck {
			c.calLeft--
			if c.calLeft == 0 {
				vco2, vco4, chp := c.CalResult(c.calCal2)
				c.regs[cc112x.REG_FS_VCO2] = vco2
				c.regs[cc112x.REG_FS_VCO4] = vco4
				c.regs[cc112x.REG_FS_CHP] = chp
				c.regs[cc112x.REG_MARCSTATE] = marcSettled
			}
		}
		v = c.regs[addr]
	default:
		v = c.regs[addr]
	}
	c.ops = append(c.ops, Op{Kind: "read", Addr: addr, Data: []byte{v}})
	return v
}

func (c *Chip) Write(addr cc112x.Reg, data byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.regs[addr] = data
	c.ops = append(c.ops, Op{Kind: "write", Addr: addr, Data: []byte{data}})
}

func (c *Chip) Strobe(cmd cc112x.Strobe) {
	c.mu.Lock()
	c.ops = append(c.ops, Op{Kind: "strobe", Addr: cc112x.Reg(cmd)})
	fire := false
	switch cmd {
	case cc112x.SRES:
		c.reset()
	case cc112x.SCAL:
		c.calCal2 = c.regs[cc112x.REG_FS_CAL2]
		c.calLeft = c.CalPolls
		if c.calLeft < 1 {
			c.calLeft = 1
		}
		c.regs[cc112x.REG_MARCSTATE] = marcManCal
	case cc112x.STX:
		frame := c.txFifo
		c.txFifo = nil
		if pl := int(c.regs[cc112x.REG_PKT_LEN]); len(frame) > pl {
			frame = frame[:pl]
		}
		c.sent = append(c.sent, frame)
		c.regs[cc112x.REG_MARCSTATE] = marcSettled
		fire = c.AutoComplete
	case cc112x.SRX:
		c.regs[cc112x.REG_MARCSTATE] = marcRx
	case cc112x.SIDLE:
		c.regs[cc112x.REG_MARCSTATE] = marcSettled
	case cc112x.SFRX:
		c.rxFifo = nil
		if c.regs[cc112x.REG_MARCSTATE]&cc112x.MARC_STATE_MASK == cc112x.MARC_RX_FIFO_ERR {
			c.regs[cc112x.REG_MARCSTATE] = marcSettled
		}
	case cc112x.SFTX:
		c.txFifo = nil
	}
	c.mu.Unlock()
	if fire {
		c.Edge()
	}
}

func (c *Chip) ReadFIFO(n int) []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n > len(c.rxFifo) {
		n = len(c.rxFifo)
	}
	buf := append([]byte{}, c.rxFifo[:n]...)
	c.rxFifo = c.rxFifo[n:]
	c.ops = append(c.ops, Op{Kind: "rxfifo", Data: buf})
	return buf
}

func (c *Chip) WriteFIFO(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.txFifo = append(c.txFifo, data...)
	c.ops = append(c.ops, Op{Kind: "txfifo", Data: append([]byte{}, data...)})
}

// Err returns the transport error set using SetErr.
func (c *Chip) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// SetErr simulates a failed SPI transport.
func (c *Chip) SetErr(err error) {
	c.mu.Lock()
	c.err = err
	c.mu.Unlock()
}

// Edge raises the packet-done edge.
func (c *Chip) Edge() {
	select {
	case c.edge <- struct{}{}:
	default:
	}
	if c.OnEdge != nil {
		c.OnEdge()
	}
}

// WaitForEdge waits for an edge raised without an OnEdge callback consuming it.
func (c *Chip) WaitForEdge(timeout time.Duration) bool {
	select {
	case <-c.edge:
		return true
	case <-time.After(timeout):
		return false
	}
}

// Inject places a frame into the RX FIFO, as if it had just been received, and raises
// the edge. The frame is delivered as is, include status bytes if needed.
func (c *Chip) Inject(frame []byte) {
	c.mu.Lock()
	c.rxFifo = append(c.rxFifo, frame...)
	c.mu.Unlock()
	c.Edge()
}

// InjectWithStatus places a frame followed by the RSSI and LQI status bytes into the RX
// FIFO and raises the edge.
func (c *Chip) InjectWithStatus(frame []byte, rssi int8, lqi byte, crcOK bool) {
	st := lqi & 0x7F
	if crcOK {
		st |= 0x80
	}
	c.Inject(append(append([]byte{}, frame...), byte(rssi), st))
}

// InjectFifoError simulates an RX FIFO overflow with n bytes stuck in the FIFO and raises
// the edge.
func (c *Chip) InjectFifoError(n int) {
	c.mu.Lock()
	c.rxFifo = make([]byte, n)
	c.regs[cc112x.REG_MARCSTATE] = marcRxErr
	c.mu.Unlock()
	c.Edge()
}

// Reg returns the raw content of a register.
func (c *Chip) Reg(addr cc112x.Reg) byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.regs[addr]
}

// Sent returns the frames transmitted so far.
func (c *Chip) Sent() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte{}, c.sent...)
}

// Ops returns the accesses made so far.
func (c *Chip) Ops() []Op {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Op{}, c.ops...)
}

// Strobes returns the strobes issued so far, in order.
func (c *Chip) Strobes() []cc112x.Strobe {
	c.mu.Lock()
	defer c.mu.Unlock()
	var s []cc112x.Strobe
	for _, o := range c.ops {
		if o.Kind == "strobe" {
			s = append(s, cc112x.Strobe(o.Addr))
		}
	}
	return s
}

// ClearOps forgets the access log.
func (c *Chip) ClearOps() {
	c.mu.Lock()
	c.ops = nil
	c.mu.Unlock()
}
