// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package cc112x

import (
	"bytes"
	"errors"
	"testing"
)

func TestBuildPacket(t *testing.T) {
	got, err := BuildPacket(1, []byte{0xFF, 0xFF}, DefaultPacketLen)
	if err != nil {
		t.Fatalf("Unexpected error %v", err)
	}
	exp := []byte{5, 0, 1, 0xFF, 0xFF}
	if !bytes.Equal(got, exp) {
		t.Fatalf("got %+v expected %+v", got, exp)
	}

	got, _ = BuildPacket(0x1234, nil, DefaultPacketLen)
	if !bytes.Equal(got, []byte{3, 0x12, 0x34}) {
		t.Fatalf("empty payload: got %+v", got)
	}
}

func TestBuildPacketTooLong(t *testing.T) {
	if _, err := BuildPacket(1, make([]byte, 3), DefaultPacketLen); !errors.Is(err, ErrPayloadTooLong) {
		t.Fatalf("got %v expected %v", err, ErrPayloadTooLong)
	}
	// maxLen is capped to MaxPacketLen
	if _, err := BuildPacket(1, make([]byte, MaxPacketLen-2), 200); !errors.Is(err, ErrPayloadTooLong) {
		t.Fatalf("got %v expected %v", err, ErrPayloadTooLong)
	}
}

func TestPacketRoundTrip(t *testing.T) {
	for n := 0; n <= MaxPacketLen-headerLen; n++ {
		payload := make([]byte, n)
		for i := range payload {
			payload[i] = byte(i * 7)
		}
		seq := uint16(n*517 + 3)
		buf, err := BuildPacket(seq, payload, MaxPacketLen)
		if err != nil {
			t.Fatalf("payload %d: unexpected error %v", n, err)
		}
		if int(buf[0]) != n+headerLen {
			t.Fatalf("payload %d: length byte %d", n, buf[0])
		}
		p, err := ParsePacket(buf)
		if err != nil {
			t.Fatalf("payload %d: unexpected error %v", n, err)
		}
		if p.Sequence != seq || !bytes.Equal(p.Payload, payload) || p.Status {
			t.Fatalf("payload %d: got %+v", n, p)
		}
	}
}

func TestParsePacketFraming(t *testing.T) {
	tests := map[string][]byte{
		"empty":     {},
		"zero":      {0, 0, 1},
		"short":     {2, 0, 1},
		"truncated": {9, 0, 1, 2, 3},
	}
	for n, buf := range tests {
		if _, err := ParsePacket(buf); !errors.Is(err, ErrFraming) {
			t.Errorf("%s: got %v expected %v", n, err, ErrFraming)
		}
	}
}

func TestParsePacketStatus(t *testing.T) {
	p, err := ParsePacket([]byte{5, 0, 2, 0xFF, 0xFF, 0xC4, 0x80 | 42})
	if err != nil {
		t.Fatalf("Unexpected error %v", err)
	}
	if !p.Status || p.Rssi != -60 || p.Lqi != 42 || !p.CrcOK {
		t.Fatalf("got %+v", p)
	}
	// a single trailing byte is not a status
	p, _ = ParsePacket([]byte{5, 0, 2, 0xFF, 0xFF, 0xC4})
	if p.Status {
		t.Fatalf("got %+v expected no status", p)
	}
}

func TestClassify(t *testing.T) {
	for n := 0; n <= FIFO_SIZE; n++ {
		for _, marc := range []byte{0x6D, MARC_RX_FIFO_ERR, 0x51, MARCSTATE_SETTLED} {
			class, cnt := Classify(marc, n)
			switch {
			case n == 0:
				if class != RxEmpty || cnt != 0 {
					t.Fatalf("marc %#x n %d: got %s %d expected empty", marc, n, class, cnt)
				}
			case marc&MARC_STATE_MASK == MARC_RX_FIFO_ERR:
				if class != RxError || cnt != 0 {
					t.Fatalf("marc %#x n %d: got %s %d expected fifo-error", marc, n, class, cnt)
				}
			default:
				if class != RxReady || cnt != n {
					t.Fatalf("marc %#x n %d: got %s %d expected ready", marc, n, class, cnt)
				}
			}
		}
	}
}

func TestPacketLines(t *testing.T) {
	p := &Packet{Length: 5, Sequence: 0x0102, Payload: []byte{255, 7}}
	exp := []string{" ~~data received~~", "pktLength: 5", "pktCount1: 1", "pktCount0: 2",
		"data:", "255 7"}
	got := p.Lines()
	if len(got) != len(exp) {
		t.Fatalf("got %q expected %q", got, exp)
	}
	for i := range got {
		if got[i] != exp[i] {
			t.Fatalf("line %d: got %q expected %q", i, got[i], exp[i])
		}
	}
	p.Status, p.Rssi, p.Lqi, p.CrcOK = true, -80, 12, true
	if l := p.Lines(); l[len(l)-1] != "rssi: -80dBm lqi: 12 crc: true" {
		t.Fatalf("got %q", l[len(l)-1])
	}
}
