// Copyright 2016 by Thorsten von Eicken, see LICENSE file

package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tuliogomesp/Floripasat-Project/beacon"
	"github.com/tuliogomesp/Floripasat-Project/cc112x"
)

// Config is the beacon configuration file.
type Config struct {
	Mode     string         `yaml:"mode"`      // tx or rx
	HAL      string         `yaml:"hal"`       // periph, embd or sim
	LogLevel string         `yaml:"log_level"` // logrus level name
	Radio    RadioConfig    `yaml:"radio"`
	Loop     LoopConfig     `yaml:"loop"`
	Watchdog WatchdogConfig `yaml:"watchdog"`
	MQTT     MqttConfig     `yaml:"mqtt"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// RadioConfig describes how the CC1125 is wired.
type RadioConfig struct {
	SPI       string `yaml:"spi"`        // SPI port name (periph) or channel number (embd)
	SpeedHz   int    `yaml:"speed_hz"`   // SPI clock
	IntrPin   string `yaml:"intr_pin"`   // GPIO2 of the radio, packet done on falling edge
	LedPin    string `yaml:"led_pin"`    // heartbeat LED, optional
	ResetPin  string `yaml:"reset_pin"`  // RESETn of the radio, driven high, optional
	PacketLen int    `yaml:"packet_len"` // packet length including the 3 header bytes
	Payload   string `yaml:"payload"`    // hex encoded payload, empty sends 0xFF filler
	Realtime  bool   `yaml:"realtime"`   // run the interrupt pump at realtime priority
}

// LoopConfig holds the control loop timing.
type LoopConfig struct {
	InterPacketDelay time.Duration `yaml:"inter_packet_delay"`
	TxTimeout        time.Duration `yaml:"tx_timeout"`
	RxWindow         time.Duration `yaml:"rx_window"`
	CalibrationPolls int           `yaml:"calibration_polls"`
	Count            int           `yaml:"count"` // 0 runs forever
}

// WatchdogConfig selects the supervisory timer.
type WatchdogConfig struct {
	Period time.Duration `yaml:"period"`
	Device string        `yaml:"device"` // kernel watchdog device, empty uses a software timer
}

// MqttConfig configures the packet bridge, an empty broker disables it.
type MqttConfig struct {
	Broker   string `yaml:"broker"` // host:port
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Topic    string `yaml:"topic"` // topic prefix
}

// MetricsConfig configures the prometheus exporter, an empty address disables it.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// DefaultConfig returns the configuration of the FloripaSat ground test board.
func DefaultConfig() *Config {
	lc := beacon.DefaultConfig()
	return &Config{
		Mode:     "tx",
		HAL:      "periph",
		LogLevel: "info",
		Radio: RadioConfig{
			SPI:       "/dev/spidev0.0",
			SpeedHz:   4000000,
			IntrPin:   "GPIO25",
			PacketLen: cc112x.DefaultPacketLen,
		},
		Loop: LoopConfig{
			InterPacketDelay: lc.InterPacketDelay,
			TxTimeout:        lc.TxTimeout,
			RxWindow:         lc.RxWindow,
			CalibrationPolls: lc.CalibrationPolls,
		},
		Watchdog: WatchdogConfig{Period: lc.WatchdogPeriod},
		MQTT:     MqttConfig{Topic: "floripasat/beacon"},
	}
}

// LoadConfig reads a YAML configuration file on top of the defaults.
func LoadConfig(filename string) (*Config, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	return config, nil
}

// Validate checks the configuration and returns the control loop settings.
func (c *Config) Validate() (beacon.Config, error) {
	mode, err := beacon.ParseMode(c.Mode)
	if err != nil {
		return beacon.Config{}, err
	}
	switch c.HAL {
	case "periph", "embd", "sim":
	default:
		return beacon.Config{}, fmt.Errorf("unknown hal %q, expected periph, embd or sim", c.HAL)
	}
	if c.HAL != "sim" && (c.Radio.SPI == "" || c.Radio.IntrPin == "") {
		return beacon.Config{}, fmt.Errorf("radio spi port and interrupt pin are required")
	}
	if l := c.Radio.PacketLen; l < 3 || l > cc112x.MaxPacketLen {
		return beacon.Config{}, fmt.Errorf("packet_len %d out of range 3..%d", l, cc112x.MaxPacketLen)
	}
	pl, err := c.payload()
	if err != nil {
		return beacon.Config{}, err
	}
	if pl != nil && len(pl) > c.Radio.PacketLen-3 {
		return beacon.Config{}, fmt.Errorf("payload of %d bytes does not fit packet_len %d",
			len(pl), c.Radio.PacketLen)
	}
	bc := beacon.Config{
		Mode:             mode,
		InterPacketDelay: c.Loop.InterPacketDelay,
		TxTimeout:        c.Loop.TxTimeout,
		RxWindow:         c.Loop.RxWindow,
		CalibrationPolls: c.Loop.CalibrationPolls,
		WatchdogPeriod:   c.Watchdog.Period,
		Count:            c.Loop.Count,
	}
	return bc, bc.Validate()
}

// payload decodes the configured payload, nil means the default filler.
func (c *Config) payload() ([]byte, error) {
	s := strings.ReplaceAll(strings.TrimPrefix(c.Radio.Payload, "0x"), " ", "")
	if s == "" {
		return nil, nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("invalid payload %q: %w", c.Radio.Payload, err)
	}
	return b, nil
}

// PayloadFunc returns the payload source for the radio.
func (c *Config) PayloadFunc() cc112x.PayloadFunc {
	if pl, err := c.payload(); err == nil && pl != nil {
		return cc112x.FixedPayload(pl)
	}
	return nil
}
