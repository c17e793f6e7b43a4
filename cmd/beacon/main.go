// Copyright 2016 by Thorsten von Eicken, see LICENSE file

// beacon runs the FloripaSat beacon: it calibrates the CC1125 and then transmits numbered
// packets or receives and reports them, under watchdog supervision. Received and sent
// packets can be bridged to MQTT and the radio counters exported to prometheus.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"github.com/tuliogomesp/Floripasat-Project/beacon"
	"github.com/tuliogomesp/Floripasat-Project/cc112x"
	"github.com/tuliogomesp/Floripasat-Project/watchdog"
)

var log = logrus.New()

func main() {
	var (
		configFile = pflag.StringP("config", "c", "", "YAML configuration file")
		mode       = pflag.StringP("mode", "m", "", "operating mode: tx or rx")
		hal        = pflag.String("hal", "", "hardware access: periph, embd or sim")
		count      = pflag.IntP("count", "n", -1, "stop after this many packets or windows (0 = forever)")
		logLevel   = pflag.StringP("log-level", "l", "", "log level (trace, debug, info, warn, error)")
		mqttBroker = pflag.String("mqtt", "", "host:port of MQTT broker")
		metrics    = pflag.String("metrics", "", "address for the prometheus exporter, e.g. :9110")
	)
	pflag.Parse()

	config := DefaultConfig()
	if *configFile != "" {
		var err error
		if config, err = LoadConfig(*configFile); err != nil {
			fmt.Fprintf(os.Stderr, "%s\n", err)
			os.Exit(1)
		}
	}
	pflag.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "mode":
			config.Mode = *mode
		case "hal":
			config.HAL = *hal
		case "count":
			config.Loop.Count = *count
		case "log-level":
			config.LogLevel = *logLevel
		case "mqtt":
			config.MQTT.Broker = *mqttBroker
		case "metrics":
			config.Metrics.Listen = *metrics
		}
	})

	log.Formatter = new(logrus.TextFormatter)
	level, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
	log.Level = level

	if err := run(config); err != nil {
		log.Errorf("%s", err)
		os.Exit(2)
	}
}

func run(config *Config) error {
	loopConfig, err := config.Validate()
	if err != nil {
		return err
	}
	boot := uuid.New()
	entry := log.WithField("boot", boot.String()[:8])

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hw, err := openHAL(config.HAL, config.Radio)
	if err != nil {
		return err
	}
	defer hw.close()

	radio, err := cc112x.New(hw.port, cc112x.RadioOpts{
		PacketLen: config.Radio.PacketLen,
		Payload:   config.PayloadFunc(),
		Heartbeat: hw.led,
		Logger:    entry.WithField("pkg", "cc112x").Infof,
	})
	if err != nil {
		return err
	}
	go radio.ServeInterrupts(ctx, hw.edges, config.Radio.Realtime)
	if hw.chip != nil && loopConfig.Mode == beacon.ModeReceive {
		go simPeer(ctx, hw.chip, config.Radio.PacketLen, loopConfig.RxWindow/2)
	}

	var wd watchdog.Watchdog
	if config.Watchdog.Device != "" {
		dev, err := watchdog.OpenDevice(config.Watchdog.Device, config.Watchdog.Period)
		if err != nil {
			return err
		}
		defer dev.Close()
		wd = dev
	} else {
		t := watchdog.NewTimer(config.Watchdog.Period, func() {
			log.Errorf("watchdog expired after %s, restarting", config.Watchdog.Period)
			os.Exit(3)
		})
		defer t.Stop()
		wd = t
	}

	if config.Metrics.Listen != "" {
		go serveMetrics(ctx, config.Metrics.Listen, newRegistry(radio, boot.String()), entry)
	}
	var bridge *mq
	if config.MQTT.Broker != "" {
		if bridge, err = newMQ(config.MQTT, boot, entry.WithField("pkg", "mqtt")); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
		defer bridge.Close()
	}

	svc, err := beacon.New(radio, wd, loopConfig)
	if err != nil {
		return err
	}
	svc.SetLogger(entry.WithField("pkg", "beacon").Infof)
	svc.Diag = func(line string) { entry.Info(line) }
	svc.OnTransmit = func(seq uint16) {
		entry.Debugf("sent packet %d", seq)
		if bridge != nil {
			bridge.Publish("tx", &TxEvent{Boot: boot.String(), At: time.Now(), Sequence: seq})
		}
	}
	svc.OnPacket = func(p *cc112x.Packet) {
		if bridge != nil {
			bridge.Publish("rx", newRxEvent(boot, p))
		}
	}
	svc.OnError = func(err error) {
		if bridge != nil {
			bridge.Publish("error", &ErrEvent{Boot: boot.String(), At: time.Now(), Error: err.Error()})
		}
	}

	entry.Infof("starting %s on %s hal", loopConfig.Mode, config.HAL)
	if err := svc.Run(ctx); err != nil {
		return err
	}
	entry.Infof("stopped, stats %+v", radio.Stats())
	return nil
}
