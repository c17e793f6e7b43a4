// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package beacon

import (
	"testing"
	"time"
)

func TestParseMode(t *testing.T) {
	tests := map[string]Mode{"tx": ModeTransmit, "TX": ModeTransmit, "transmit": ModeTransmit,
		"rx": ModeReceive, " receive ": ModeReceive}
	for s, exp := range tests {
		got, err := ParseMode(s)
		if err != nil || got != exp {
			t.Errorf("%q: got %s %v expected %s", s, got, err, exp)
		}
	}
	if _, err := ParseMode("both"); err == nil {
		t.Errorf("bad mode accepted")
	}
}

func TestValidate(t *testing.T) {
	tests := map[string]struct {
		mod func(c *Config)
		ok  bool
	}{
		"default":        {func(c *Config) {}, true},
		"tx too long":    {func(c *Config) { c.TxTimeout = 7 * time.Second; c.InterPacketDelay = time.Second }, false},
		"tx fits":        {func(c *Config) { c.TxTimeout = 6 * time.Second; c.InterPacketDelay = time.Second }, true},
		"rx too long":    {func(c *Config) { c.RxWindow = 8 * time.Second }, false},
		"zero timeout":   {func(c *Config) { c.TxTimeout = 0 }, false},
		"negative delay": {func(c *Config) { c.InterPacketDelay = -1 }, false},
		"bad mode":       {func(c *Config) { c.Mode = 7 }, false},
		"no watchdog":    {func(c *Config) { c.WatchdogPeriod = 0 }, false},
	}
	for n, tc := range tests {
		c := DefaultConfig()
		tc.mod(&c)
		if err := c.Validate(); (err == nil) != tc.ok {
			t.Errorf("%s: got %v", n, err)
		}
	}
}
