// Package config loads the airframe and controller configuration
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Reference airframe and controller defaults
const (
	DefaultTickUS        = 10000
	DefaultMaxMotorSpeed = 750
	DefaultThrustB       = 55 << 8
	DefaultDragD         = 15 << 8
	DefaultMixShift      = 5

	DefaultLiftShift  = 5
	DefaultRollShift  = 0
	DefaultPitchShift = 0
	DefaultYawShift   = 2
	DefaultZeroLift   = 4 << DefaultLiftShift
	DefaultMaxLift    = 127 << DefaultLiftShift

	DefaultGyroWeight = 4055
	DefaultAccWeight  = 41

	DefaultYawGainShift = 6
	DefaultTorqueShift  = 12

	DefaultHeightP            = 100 << 8
	DefaultHeightI            = 4 << 8
	DefaultHeightILimit       = 512 << 8
	DefaultHeightThrottleBand = 2 << DefaultLiftShift

	DefaultPressureShift    = 4
	DefaultVoltageShift     = 4
	DefaultTelemetryDivider = 10

	DefaultSafeVoltage   = 1050
	DefaultCommTimeoutMS = 500
	DefaultPanicSpeed    = 320
	DefaultPanicTicks    = 500

	DefaultBaud = 115200
)

// LoadConfig parses a JSON configuration and applies defaults
func LoadConfig(jsonData []byte) (*Config, error) {
	var config Config

	if err := json.Unmarshal(jsonData, &config); err != nil {
		return nil, fmt.Errorf("parse json config: %w", err)
	}

	applyDefaults(&config)

	return &config, nil
}

// LoadYAML parses a YAML configuration and applies defaults
func LoadYAML(yamlData []byte) (*Config, error) {
	var config Config

	if err := yaml.Unmarshal(yamlData, &config); err != nil {
		return nil, fmt.Errorf("parse yaml config: %w", err)
	}

	applyDefaults(&config)

	return &config, nil
}

// Load reads a configuration file, choosing the format from its extension
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(data)
	case ".json":
		return LoadConfig(data)
	default:
		return nil, fmt.Errorf("unsupported config format %q", filepath.Ext(path))
	}
}

// applyDefaults fills in missing configuration values
func applyDefaults(config *Config) {
	a := &config.Airframe
	if a.ThrustB == 0 {
		a.ThrustB = DefaultThrustB
	}
	if a.DragD == 0 {
		a.DragD = DefaultDragD
	}
	if a.MixShift == 0 {
		a.MixShift = DefaultMixShift
	}
	if a.MaxMotorSpeed == 0 {
		a.MaxMotorSpeed = DefaultMaxMotorSpeed
	}

	c := &config.Control
	if c.TickUS == 0 {
		c.TickUS = DefaultTickUS
	}
	if c.LiftShift == 0 {
		c.LiftShift = DefaultLiftShift
	}
	if c.YawShift == 0 {
		c.YawShift = DefaultYawShift
	}
	if c.ZeroLift == 0 {
		c.ZeroLift = 4 << c.LiftShift
	}
	if c.MaxLift == 0 {
		c.MaxLift = 127 << c.LiftShift
	}
	if c.GyroWeight == 0 && c.AccWeight == 0 {
		c.GyroWeight = DefaultGyroWeight
		c.AccWeight = DefaultAccWeight
	}
	if c.P1.Default == 0 {
		c.P1 = GainConfig{Default: 40 - 28, Frac: 0, TrimMax: 200}
	}
	if c.P2.Default == 0 {
		c.P2 = GainConfig{Default: 8<<2 + 100, Frac: 2, TrimMax: 50 << 2}
	}
	if c.YawP.Default == 0 {
		c.YawP = GainConfig{Default: 35 + 24, Frac: 10, TrimMax: 10 << 10}
	}
	if c.YawGainShift == 0 {
		c.YawGainShift = DefaultYawGainShift
	}
	if c.TorqueShift == 0 {
		c.TorqueShift = DefaultTorqueShift
	}
	if c.HeightP == 0 {
		c.HeightP = DefaultHeightP
	}
	if c.HeightI == 0 {
		c.HeightI = DefaultHeightI
	}
	if c.HeightILimit == 0 {
		c.HeightILimit = DefaultHeightILimit
	}
	if c.HeightThrottleBand == 0 {
		c.HeightThrottleBand = 2 << c.LiftShift
	}
	if c.PressureShift == 0 {
		c.PressureShift = DefaultPressureShift
	}
	if c.VoltageShift == 0 {
		c.VoltageShift = DefaultVoltageShift
	}
	if c.TelemetryDivider == 0 {
		c.TelemetryDivider = DefaultTelemetryDivider
	}

	s := &config.Safety
	if s.SafeVoltage == 0 {
		s.SafeVoltage = DefaultSafeVoltage
	}
	if s.CommTimeoutMS == 0 {
		s.CommTimeoutMS = DefaultCommTimeoutMS
	}
	if s.PanicSpeed == 0 {
		s.PanicSpeed = DefaultPanicSpeed
	}
	if s.PanicTicks == 0 {
		s.PanicTicks = DefaultPanicTicks
	}

	if config.Link.Baud == 0 {
		config.Link.Baud = DefaultBaud
	}
}

// Default returns the reference quadcopter configuration
func Default() *Config {
	config := &Config{
		Link: LinkConfig{Device: "/dev/ttyUSB0"},
	}
	applyDefaults(config)
	return config
}
