// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package main

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/tuliogomesp/Floripasat-Project/cc112x"
)

func TestRxEvent(t *testing.T) {
	boot := uuid.New()
	ev := newRxEvent(boot, &cc112x.Packet{Length: 5, Sequence: 2, Payload: []byte{0xFF, 0xFF}})
	buf, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("Unexpected error %v", err)
	}
	s := string(buf)
	if !strings.Contains(s, `"seq":2`) || !strings.Contains(s, `"payload":"//8="`) ||
		strings.Contains(s, "rssi") || !strings.Contains(s, boot.String()) {
		t.Fatalf("got %s", s)
	}

	ev = newRxEvent(boot, &cc112x.Packet{Length: 3, Status: true, Rssi: -71, Lqi: 9, CrcOK: true})
	if ev.Rssi == nil || *ev.Rssi != -71 || *ev.Lqi != 9 || !*ev.CrcOK {
		t.Fatalf("status not carried: %+v", ev)
	}
}
