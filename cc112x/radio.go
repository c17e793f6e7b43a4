// Copyright 2016 by Thorsten von Eicken, see LICENSE file

// The cc112x package drives the TI CC1125 (and the rest of the CC112x family) used as the
// FloripaSat beacon transceiver.
//
// The driver sits on top of an abstract register Port and is interrupt driven: the radio's
// GPIO2 line is configured to de-assert at the end of every packet sent or received, and
// the falling edge is turned into a single-slot event latch by ServeInterrupts (or by
// anything else calling Interrupt). The control loop owns the Radio: it arms a
// transmission or a reception, waits on the latch for a bounded time, services the event
// and re-arms. All waits are bounded so a stuck radio shows up as an error rather than a
// hang.
//
// Transmit and receive are separate operating modes chosen at start, the driver does not
// interleave them. Before either one the synthesizer must be calibrated once using the
// manual procedure from the CC112x errata, see Calibrate.
//
// Errors are of two kinds. RX FIFO errors, framing errors and TX timeouts are recovered
// in place (flush and re-arm) and returned so the caller can report them. Calibration
// timeouts and transport errors reported by the Port are fatal: the radio is put into a
// safe idle state, the error is recorded and can be retrieved using Error, and every
// subsequent operation fails with it.
//
// The methods on the Radio are not concurrency safe, with the exception of Interrupt,
// Stats and Pending which may be called from any goroutine.
package cc112x

import (
	"bytes"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"periph.io/x/periph/conn/gpio"
)

var (
	// ErrTxTimeout is returned when no end-of-packet interrupt arrives after a transmit.
	ErrTxTimeout = errors.New("cc112x: transmit timeout")
	// ErrNoPacket is returned when no packet arrived during a receive window.
	ErrNoPacket = errors.New("cc112x: no packet received")
	// ErrFifoOverflow is returned after an RX FIFO error was detected and flushed.
	ErrFifoOverflow = errors.New("cc112x: rx fifo error")
)

// State is the state of the transceiver state machine.
type State int

const (
	Idle State = iota
	Calibrating
	TransmitArmed
	TransmitComplete
	ReceiveArmed
	ReceiveComplete
	FifoError
)

var stateNames = []string{"Idle", "Calibrating", "TransmitArmed", "TransmitComplete",
	"ReceiveArmed", "ReceiveComplete", "FifoError"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// Pin is an output line, typically the heartbeat LED. periph's gpio.PinOut satisfies it.
type Pin interface {
	Out(l gpio.Level) error
}

// PayloadFunc returns the payload for the packet with the given sequence number. Every
// packet on the link has the configured length, max is the payload size that fills it:
// shorter payloads are padded with 0xFF and longer ones are truncated.
type PayloadFunc func(seq uint16, max int) []byte

// FixedPayload returns a PayloadFunc that always sends the same bytes.
func FixedPayload(b []byte) PayloadFunc {
	b = append([]byte{}, b...)
	return func(uint16, int) []byte { return b }
}

// LogPrintf is a function used by the driver to print logging info.
type LogPrintf func(format string, v ...interface{})

// Radio represents a CC112x transceiver.
type Radio struct {
	// configuration
	port      Port        // register access to the chip
	led       Pin         // heartbeat indicator, may be nil
	packetLen int         // length of a full packet, header included
	payload   PayloadFunc // payload source for transmitted packets
	// state
	latch     Latch      // packet event from the interrupt side
	state     State      // current state machine state
	seq       uint16     // sequence number of the last packet sent
	pending   uint16     // sequence number of the packet in the TX FIFO
	pktLenReg byte       // value last written to PKT_LEN
	heartbeat gpio.Level // heartbeat indicator state
	stats     stats      // event counters
	err       error      // persistent error
	log       LogPrintf  // function to use for logging
}

// RadioOpts contains options used when initializing a Radio.
type RadioOpts struct {
	Profile   []Setting   // register profile, nil selects ReferenceProfile
	PacketLen int         // packet length including the 3 header bytes, 0 selects 5
	Payload   PayloadFunc // nil sends 0xFF filler bytes
	Heartbeat Pin         // toggled after every packet sent, may be nil
	Logger    LogPrintf   // function to use for logging
}

// stats are the radio's event counters.
type stats struct {
	sent, received, txTimeouts, fifoErrors, framingErrors, calibrations atomic.Uint64
}

// Stats is a snapshot of the radio's event counters.
type Stats struct {
	Sent          uint64 // packets whose end-of-packet interrupt was seen
	Received      uint64 // packets drained and parsed
	TxTimeouts    uint64 // transmissions without end-of-packet interrupt
	FifoErrors    uint64 // RX FIFO errors flushed
	FramingErrors uint64 // received packets discarded for a bad length byte
	Calibrations  uint64 // successful calibrations
	Interrupts    uint64 // edges latched
}

// New initializes a Radio on the given register port: it resets the chip and applies the
// register profile. The radio is left in Idle, the caller must Calibrate it before
// transmitting or receiving.
func New(port Port, opts RadioOpts) (*Radio, error) {
	r := &Radio{
		port:      port,
		led:       opts.Heartbeat,
		packetLen: opts.PacketLen,
		payload:   opts.Payload,
		heartbeat: gpio.High,
		log:       func(format string, v ...interface{}) {},
	}
	if opts.Logger != nil {
		r.log = func(format string, v ...interface{}) {
			opts.Logger("cc112x: "+format, v...)
		}
	}
	if r.packetLen == 0 {
		r.packetLen = DefaultPacketLen
	}
	if r.packetLen < headerLen || r.packetLen > MaxPacketLen {
		return nil, fmt.Errorf("cc112x: invalid packet length %d, must be %d..%d",
			r.packetLen, headerLen, MaxPacketLen)
	}
	if r.payload == nil {
		r.payload = FixedPayload(bytes.Repeat([]byte{0xFF}, r.packetLen-headerLen))
	}

	// Reset the chip and detect its version.
	port.Strobe(SRES)
	part := port.Read(REG_PARTNUMBER)
	r.log("%s (part %#x) version %#x", PartName(part), part, port.Read(REG_PARTVERSION))

	// Write the configuration into the registers.
	profile := opts.Profile
	if profile == nil {
		profile = ReferenceProfile
	}
	for _, s := range profile {
		port.Write(s.Addr, s.Data)
	}
	r.setPacketLen(byte(r.packetLen))

	// The heartbeat starts lit, like the system LED at power-up.
	if r.led != nil {
		if err := r.led.Out(r.heartbeat); err != nil {
			return nil, fmt.Errorf("cc112x: cannot drive heartbeat pin: %w", err)
		}
	}
	if err := r.portErr(); err != nil {
		return nil, err
	}
	r.log("configured %d registers, packet length %d", len(profile), r.packetLen)
	return r, nil
}

// SetLogger sets a logging function, nil may be used to disable logging, which is the default.
func (r *Radio) SetLogger(l LogPrintf) {
	if l != nil {
		r.log = l
	} else {
		r.log = func(format string, v ...interface{}) {}
	}
}

// Error returns any persistent error that may have been encountered.
func (r *Radio) Error() error { return r.err }

// State returns the current state of the state machine.
func (r *Radio) State() State { return r.state }

// Sequence returns the sequence number of the last packet sent.
func (r *Radio) Sequence() uint16 { return r.seq }

// Heartbeat returns the current level of the heartbeat indicator.
func (r *Radio) Heartbeat() gpio.Level { return r.heartbeat }

// Pending reports whether a packet event is latched and not yet serviced.
func (r *Radio) Pending() bool { return r.latch.Pending() }

// PacketLen returns the configured packet length.
func (r *Radio) PacketLen() int { return r.packetLen }

// Stats returns a snapshot of the event counters.
func (r *Radio) Stats() Stats {
	return Stats{
		Sent:          r.stats.sent.Load(),
		Received:      r.stats.received.Load(),
		TxTimeouts:    r.stats.txTimeouts.Load(),
		FifoErrors:    r.stats.fifoErrors.Load(),
		FramingErrors: r.stats.framingErrors.Load(),
		Calibrations:  r.stats.calibrations.Load(),
		Interrupts:    r.latch.Edges(),
	}
}

// Safe puts the radio in idle with both FIFOs flushed and drops any latched event.
func (r *Radio) Safe() {
	r.port.Strobe(SIDLE)
	r.port.Strobe(SFRX)
	r.port.Strobe(SFTX)
	r.latch.Clear()
	r.state = Idle
}

// fail records a fatal error and puts the radio in its safe state.
func (r *Radio) fail(err error) error {
	if r.err == nil {
		r.err = err
	}
	r.Safe()
	r.log("fatal: %s", err)
	return err
}

// portErr returns the transport error of ports that track one.
func (r *Radio) portErr() error {
	if p, ok := r.port.(interface{ Err() error }); ok {
		return p.Err()
	}
	return nil
}

// setPacketLen programs PKT_LEN if it changed. The radio runs in fixed length mode with
// the length byte carried in-band, so both ends of the link use the configured length.
func (r *Radio) setPacketLen(l byte) {
	if r.pktLenReg != l {
		r.port.Write(REG_PKT_LEN, l)
		r.pktLenReg = l
	}
}

//===== Transmit

// ArmTransmit builds the next packet, pushes it into the TX FIFO and strobes TX. It returns
// the sequence number carried by the packet. The sequence counter itself only advances
// once the end-of-packet interrupt has been serviced by CompleteTransmit.
func (r *Radio) ArmTransmit() (uint16, error) {
	if r.err != nil {
		return 0, r.err
	}
	seq := r.seq + 1
	pkt, err := BuildPacket(seq, r.framePayload(seq), r.packetLen)
	if err != nil {
		return seq, err
	}

	// Drop any stale event, the edge we want comes after STX.
	r.latch.Clear()
	r.setPacketLen(byte(r.packetLen))
	r.port.WriteFIFO(pkt)
	r.port.Strobe(STX)
	if err := r.portErr(); err != nil {
		return seq, r.fail(err)
	}
	r.pending = seq
	r.state = TransmitArmed
	return seq, nil
}

// framePayload returns the payload for packet seq sized to fill the configured packet
// length: short payloads are padded with 0xFF, long ones are truncated.
func (r *Radio) framePayload(seq uint16) []byte {
	max := r.packetLen - headerLen
	pl := r.payload(seq, max)
	if len(pl) > max {
		r.log("payload of packet %d truncated from %d to %d bytes", seq, len(pl), max)
		return pl[:max]
	}
	if len(pl) < max {
		pl = append(append(make([]byte, 0, max), pl...), bytes.Repeat([]byte{0xFF}, max-len(pl))...)
	}
	return pl
}

// CompleteTransmit services the end-of-packet event of an armed transmission: it clears the
// latch, toggles the heartbeat and commits the sequence number.
func (r *Radio) CompleteTransmit() uint16 {
	r.latch.Clear()
	r.heartbeat = !r.heartbeat
	if r.led != nil {
		if err := r.led.Out(r.heartbeat); err != nil {
			r.log("heartbeat: %s", err)
		}
	}
	r.seq = r.pending
	r.stats.sent.Add(1)
	r.state = TransmitComplete
	return r.seq
}

// Transmit sends one packet and waits up to timeout for the end-of-packet interrupt. On
// timeout the radio is idled and its TX FIFO flushed, the sequence number is not consumed
// and ErrTxTimeout is returned.
func (r *Radio) Transmit(timeout time.Duration) (uint16, error) {
	seq, err := r.ArmTransmit()
	if err != nil {
		return seq, err
	}
	if !r.latch.Wait(timeout) {
		r.port.Strobe(SIDLE)
		r.port.Strobe(SFTX)
		r.state = Idle
		r.stats.txTimeouts.Add(1)
		if err := r.portErr(); err != nil {
			return seq, r.fail(err)
		}
		return seq, fmt.Errorf("%w: packet %d after %s", ErrTxTimeout, seq, timeout)
	}
	return r.CompleteTransmit(), nil
}

//===== Receive

// ArmReceive puts the radio in RX.
func (r *Radio) ArmReceive() error {
	if r.err != nil {
		return r.err
	}
	r.setPacketLen(byte(r.packetLen))
	r.port.Strobe(SRX)
	if err := r.portErr(); err != nil {
		return r.fail(err)
	}
	r.state = ReceiveArmed
	return nil
}

// ServiceReceive handles a packet event while in RX: it inspects the RX FIFO, drains and
// parses a ready packet or flushes the FIFO after an error, clears the latch and re-arms
// the receiver. FIFO errors and framing errors are returned after recovery, the packet is
// nil in that case.
func (r *Radio) ServiceReceive() (*Packet, error) {
	if r.err != nil {
		return nil, r.err
	}
	rxBytes := int(r.port.Read(REG_NUM_RXBYTES))
	marc := r.port.Read(REG_MARCSTATE)

	var pkt *Packet
	var err error
	switch class, n := Classify(marc, rxBytes); class {
	case RxError:
		r.state = FifoError
		r.port.Strobe(SFRX)
		r.stats.fifoErrors.Add(1)
		err = fmt.Errorf("%w (%s): MARCSTATE=%#02x, %d bytes pending",
			ErrFifoOverflow, FifoErrOverflow, marc, rxBytes)
	case RxReady:
		if n > FIFO_SIZE {
			n = FIFO_SIZE
		}
		buf := r.port.ReadFIFO(n)
		r.state = ReceiveComplete
		if pkt, err = ParsePacket(buf); err != nil {
			r.stats.framingErrors.Add(1)
			r.log("discarding %d bytes: %s", len(buf), err)
		} else {
			r.stats.received.Add(1)
		}
	default:
		r.log("packet interrupt with empty RX FIFO, MARCSTATE=%#02x", marc)
	}

	r.latch.Clear()
	if aerr := r.ArmReceive(); aerr != nil {
		return nil, aerr
	}
	return pkt, err
}

// Receive waits up to timeout for a packet event and services it. If no event arrives
// the radio stays armed and ErrNoPacket is returned.
func (r *Radio) Receive(timeout time.Duration) (*Packet, error) {
	if r.state != ReceiveArmed {
		if err := r.ArmReceive(); err != nil {
			return nil, err
		}
	}
	if !r.latch.Wait(timeout) {
		return nil, ErrNoPacket
	}
	return r.ServiceReceive()
}
