// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package cc112x

import (
	"fmt"
	"sync"
)

// Port is the register access capability the driver runs on. Implementations are assumed
// to always succeed at the hardware level: the driver infers failures from status register
// contents. A Port that can detect transport errors should also implement
//
//	Err() error
//
// returning the first error encountered, which the Radio treats as fatal.
type Port interface {
	Read(addr Reg) byte
	Write(addr Reg, data byte)
	Strobe(cmd Strobe)
	ReadFIFO(n int) []byte
	WriteFIFO(data []byte)
}

// Conn is a full-duplex connection to the chip. Both periph's spi.Conn and the embd shim
// in the root package satisfy it.
type Conn interface {
	Tx(w, r []byte) error
}

// SPIPort speaks the CC112x SPI protocol over a Conn: a header byte carrying the
// read and burst bits, the 0x2F prefix for extended registers, and 0x3F for the FIFOs.
type SPIPort struct {
	sync.Mutex        // guard concurrent access to the chip
	conn       Conn   // SPI connection with the radio's chip select
	status     byte   // chip status byte returned with the last header
	err        error  // first transport error
}

// NewSPIPort returns a Port talking to the radio over conn.
func NewSPIPort(conn Conn) *SPIPort {
	return &SPIPort{conn: conn}
}

// Err returns the first transport error, if any.
func (p *SPIPort) Err() error {
	p.Lock()
	defer p.Unlock()
	return p.err
}

// Status returns the chip status byte received with the last transaction.
func (p *SPIPort) Status() byte {
	p.Lock()
	defer p.Unlock()
	return p.status
}

// header returns the address bytes for a register access.
func header(addr Reg, rw byte) []byte {
	if addr > 0xFF {
		return []byte{extAddr | rw, byte(addr)}
	}
	return []byte{byte(addr) | rw}
}

// tx runs one transaction and returns the bytes clocked in after the header.
func (p *SPIPort) tx(hdr []byte, data []byte) []byte {
	p.Lock()
	defer p.Unlock()
	wBuf := make([]byte, len(hdr)+len(data))
	rBuf := make([]byte, len(wBuf))
	copy(wBuf, hdr)
	copy(wBuf[len(hdr):], data)
	if err := p.conn.Tx(wBuf, rBuf); err != nil {
		if p.err == nil {
			p.err = fmt.Errorf("cc112x: spi transaction %#x: %w", hdr[0], err)
		}
		return make([]byte, len(data))
	}
	p.status = rBuf[0]
	return rBuf[len(hdr):]
}

// Read reads one register.
func (p *SPIPort) Read(addr Reg) byte {
	return p.tx(header(addr, readAccess), []byte{0})[0]
}

// Write writes one register.
func (p *SPIPort) Write(addr Reg, data byte) {
	p.tx(header(addr, 0), []byte{data})
}

// Strobe issues a command strobe.
func (p *SPIPort) Strobe(cmd Strobe) {
	p.tx([]byte{byte(cmd)}, nil)
}

// ReadFIFO reads n bytes from the RX FIFO in one burst.
func (p *SPIPort) ReadFIFO(n int) []byte {
	if n <= 0 {
		return nil
	}
	return p.tx([]byte{fifoAddr | readAccess | burstAccess}, make([]byte, n))
}

// WriteFIFO writes data into the TX FIFO in one burst.
func (p *SPIPort) WriteFIFO(data []byte) {
	if len(data) == 0 {
		return
	}
	p.tx([]byte{fifoAddr | burstAccess}, data)
}
