// Copyright 2016 by Thorsten von Eicken, see LICENSE file

// cc112x-cal runs the manual synthesizer calibration repeatedly and prints both runs of
// every calibration, to check how stable the VCO settings are on a board.
package main

import (
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"

	"github.com/tuliogomesp/Floripasat-Project/cc112x"
	"github.com/tuliogomesp/Floripasat-Project/cc112x/sim"
)

var log = logrus.New()

func fatalIf(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func openPort(spiName, resetPin string, speed int) cc112x.Port {
	_, err := host.Init()
	fatalIf(err)
	if resetPin != "" {
		rst := gpioreg.ByName(resetPin)
		if rst == nil {
			log.Fatalf("Cannot open pin %s", resetPin)
		}
		fatalIf(rst.Out(gpio.High))
		time.Sleep(time.Millisecond)
	}
	port, err := spireg.Open(spiName)
	fatalIf(err)
	conn, err := port.Connect(physic.Frequency(speed)*physic.Hertz, spi.Mode0, 8)
	fatalIf(err)
	return cc112x.NewSPIPort(conn)
}

func main() {
	spiName := pflag.StringP("spi", "s", "", "SPI port name, empty selects the first one")
	speed := pflag.Int("speed", 4000000, "SPI clock in Hz")
	resetPin := pflag.String("reset-pin", "", "radio reset pin to drive high")
	count := pflag.IntP("count", "n", 10, "number of calibrations")
	polls := pflag.Int("polls", cc112x.DefaultCalibrationPolls, "MARCSTATE polls per calibration run")
	useSim := pflag.Bool("sim", false, "calibrate the simulated chip")
	debug := pflag.Bool("debug", false, "enable driver debug output")
	pflag.Parse()

	var port cc112x.Port
	if *useSim {
		port = sim.New()
	} else {
		port = openPort(*spiName, *resetPin, *speed)
	}

	opts := cc112x.RadioOpts{}
	if *debug {
		opts.Logger = log.Printf
	}
	log.Printf("Initializing CC112x...")
	t0 := time.Now()
	radio, err := cc112x.New(port, opts)
	fatalIf(err)
	log.Printf("Ready (%.1fms)", time.Since(t0).Seconds()*1000)

	used := map[bool]int{}
	for i := 1; i <= *count; i++ {
		t0 = time.Now()
		cal, err := radio.Calibrate(*polls)
		fatalIf(err)
		used[cal.UsedHigh]++
		log.Printf("%3d: high %+v mid %+v -> %+v (%.1fms)", i, cal.High, cal.Mid, cal.Applied(),
			time.Since(t0).Seconds()*1000)
	}
	log.Printf("high run used %d times, mid run %d times", used[true], used[false])
	radio.Safe()
}
