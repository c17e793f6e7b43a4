// Copyright 2016 by Thorsten von Eicken, see LICENSE file

// cc112x-check probes a CC112x over SPI and reports the part number, version and radio
// state, it is the first thing to run on a new board.
package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"

	"github.com/tuliogomesp/Floripasat-Project/cc112x"
)

var log = logrus.New()

func fatalIf(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	spiName := pflag.StringP("spi", "s", "", "SPI port name, empty selects the first one")
	speed := pflag.Int("speed", 1000000, "SPI clock in Hz")
	reset := pflag.Bool("reset", false, "issue a reset strobe before probing")
	pflag.Parse()

	_, err := host.Init()
	fatalIf(err)
	port, err := spireg.Open(*spiName)
	fatalIf(err)
	defer port.Close()
	conn, err := port.Connect(physic.Frequency(*speed)*physic.Hertz, spi.Mode0, 8)
	fatalIf(err)
	radio := cc112x.NewSPIPort(conn)

	if *reset {
		log.Printf("Resetting radio...")
		radio.Strobe(cc112x.SRES)
	}
	log.Printf("Checking CC112x on %s...", port)
	part := radio.Read(cc112x.REG_PARTNUMBER)
	version := radio.Read(cc112x.REG_PARTVERSION)
	marc := radio.Read(cc112x.REG_MARCSTATE)
	fatalIf(radio.Err())
	log.Printf("  chip status is %#x", radio.Status())
	log.Printf("  marcstate is %#x", marc)
	switch name := cc112x.PartName(part); name {
	case "unknown":
		log.Printf("  oops, got part %#x, expected 0x58 (CC1125)", part)
	default:
		log.Printf("  found %s version %#x: OK!", name, version)
	}
	if marc&cc112x.MARC_STATE_MASK != cc112x.MARC_IDLE {
		log.Printf("  radio is not idle")
	}
}
