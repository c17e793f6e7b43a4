// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package cc112x

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const headerLen = 3 // length byte + 16-bit sequence number

var (
	// ErrPayloadTooLong is returned by BuildPacket when the payload does not fit the
	// configured packet length.
	ErrPayloadTooLong = errors.New("cc112x: payload too long")
	// ErrFraming is returned by ParsePacket for a malformed length byte.
	ErrFraming = errors.New("cc112x: framing error")
)

// BuildPacket encodes a beacon packet.
//
// The packet format is as follows:
//
//	|-----------|-----------|-----------|---------|-----|---------|
//	| pktLength | seq (MSB) | seq (LSB) | payload | ... | payload |
//	|-----------|-----------|-----------|---------|-----|---------|
//
// pktLength counts every byte of the packet, itself included. maxLen is the largest
// packet the link accepts.
func BuildPacket(seq uint16, payload []byte, maxLen int) ([]byte, error) {
	if maxLen > MaxPacketLen {
		maxLen = MaxPacketLen
	}
	if len(payload) > maxLen-headerLen {
		return nil, fmt.Errorf("%w: %d bytes, max %d", ErrPayloadTooLong,
			len(payload), maxLen-headerLen)
	}
	buf := make([]byte, headerLen+len(payload))
	buf[0] = byte(len(buf))
	binary.BigEndian.PutUint16(buf[1:3], seq)
	copy(buf[headerLen:], payload)
	return buf, nil
}

// RxClass is the outcome of inspecting the RX FIFO after a packet interrupt.
type RxClass int

const (
	RxEmpty RxClass = iota // nothing in the FIFO
	RxError                // RX FIFO error, the FIFO must be flushed
	RxReady                // bytes can be drained
)

func (c RxClass) String() string {
	switch c {
	case RxEmpty:
		return "empty"
	case RxError:
		return "fifo-error"
	case RxReady:
		return "ready"
	}
	return "RxClass(" + strconv.Itoa(int(c)) + ")"
}

// Classify looks at the MARCSTATE register and the RX FIFO byte count and decides what
// to do with the FIFO. For RxReady the second return value is the number of bytes to
// drain, it is zero otherwise.
func Classify(marcState byte, rxBytes int) (RxClass, int) {
	switch {
	case rxBytes <= 0:
		return RxEmpty, 0
	case marcState&MARC_STATE_MASK == MARC_RX_FIFO_ERR:
		return RxError, 0
	default:
		return RxReady, rxBytes
	}
}

// FifoErrorCode tells why a buffered packet could not be received.
type FifoErrorCode int

const (
	FifoErrNone     FifoErrorCode = iota
	FifoErrOverflow               // MARCSTATE reports RX_FIFO_ERR with bytes pending
)

func (c FifoErrorCode) String() string {
	if c == FifoErrOverflow {
		return "rx fifo overflow"
	}
	return "none"
}

// Packet is a received packet.
type Packet struct {
	Length   byte   // length byte as received, header included
	Sequence uint16 // sender's packet counter
	Payload  []byte // bytes following the header
	Status   bool   // true if the chip appended RSSI and LQI bytes
	Rssi     int    // RSSI in dBm, valid if Status
	Lqi      byte   // link quality indicator, valid if Status
	CrcOK    bool   // CRC check result, valid if Status
}

// ParsePacket decodes the bytes drained from the RX FIFO. The fields are reported as
// received, no checksum is verified at this layer. If the two status bytes the chip
// appends follow the packet they are decoded too; any other trailing bytes are ignored.
func ParsePacket(buf []byte) (*Packet, error) {
	if len(buf) == 0 {
		return nil, fmt.Errorf("%w: empty buffer", ErrFraming)
	}
	l := int(buf[0])
	if l < headerLen {
		return nil, fmt.Errorf("%w: length %d shorter than header", ErrFraming, l)
	}
	if l > len(buf) {
		return nil, fmt.Errorf("%w: length %d exceeds %d bytes received", ErrFraming,
			l, len(buf))
	}
	p := &Packet{
		Length:   buf[0],
		Sequence: binary.BigEndian.Uint16(buf[1:3]),
		Payload:  append([]byte{}, buf[headerLen:l]...),
	}
	if len(buf)-l == statusBytes {
		p.Status = true
		p.Rssi = int(int8(buf[l]))
		p.CrcOK = buf[l+1]&0x80 != 0
		p.Lqi = buf[l+1] & 0x7F
	}
	return p, nil
}

// Lines renders the packet as the line-oriented dump printed on the diagnostic port:
// length, both sequence bytes and the payload in decimal.
func (p *Packet) Lines() []string {
	data := make([]string, len(p.Payload))
	for i, b := range p.Payload {
		data[i] = strconv.Itoa(int(b))
	}
	lines := []string{
		" ~~data received~~",
		fmt.Sprintf("pktLength: %d", p.Length),
		fmt.Sprintf("pktCount1: %d", p.Sequence>>8),
		fmt.Sprintf("pktCount0: %d", p.Sequence&0xFF),
		"data:",
		strings.Join(data, " "),
	}
	if p.Status {
		lines = append(lines, fmt.Sprintf("rssi: %ddBm lqi: %d crc: %v", p.Rssi, p.Lqi, p.CrcOK))
	}
	return lines
}
