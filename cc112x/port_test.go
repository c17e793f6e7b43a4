// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package cc112x

import (
	"bytes"
	"errors"
	"testing"
)

// fakeConn records the bytes written and answers with a status byte followed by the
// reply bytes.
type fakeConn struct {
	w     [][]byte
	reply []byte
	err   error
}

func (c *fakeConn) Tx(w, r []byte) error {
	c.w = append(c.w, append([]byte{}, w...))
	if c.err != nil {
		return c.err
	}
	r[0] = 0x0F
	copy(r[len(r)-len(c.reply):], c.reply)
	return nil
}

func TestSPIPortHeaders(t *testing.T) {
	c := &fakeConn{reply: []byte{0x58}}
	p := NewSPIPort(c)

	if v := p.Read(REG_PARTNUMBER); v != 0x58 {
		t.Errorf("read got %#x expected 0x58", v)
	}
	p.Write(REG_PKT_LEN, 5)
	p.Strobe(SRX)
	c.reply = []byte{1, 2, 3}
	if got := p.ReadFIFO(3); !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("fifo read got %+v", got)
	}
	c.reply = nil
	p.WriteFIFO([]byte{5, 0, 1, 0xFF, 0xFF})

	exp := [][]byte{
		{0xAF, 0x8F, 0},
		{0x2E, 5},
		{0x34},
		{0xFF, 0, 0, 0},
		{0x7F, 5, 0, 1, 0xFF, 0xFF},
	}
	if len(c.w) != len(exp) {
		t.Fatalf("got %d transactions expected %d", len(c.w), len(exp))
	}
	for i := range exp {
		if !bytes.Equal(c.w[i], exp[i]) {
			t.Errorf("transaction %d: got % x expected % x", i, c.w[i], exp[i])
		}
	}
	if p.Status() != 0x0F {
		t.Errorf("status got %#x", p.Status())
	}
	if p.Err() != nil {
		t.Errorf("unexpected error %v", p.Err())
	}
}

func TestSPIPortError(t *testing.T) {
	boom := errors.New("boom")
	c := &fakeConn{err: boom}
	p := NewSPIPort(c)
	if v := p.Read(REG_MARCSTATE); v != 0 {
		t.Errorf("got %#x expected 0 on failure", v)
	}
	p.Strobe(SIDLE)
	if err := p.Err(); !errors.Is(err, boom) {
		t.Fatalf("got %v expected %v", err, boom)
	}
}
