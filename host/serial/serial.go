// Package serial opens the command link to the craft
package serial

import (
	"io"

	"quadfc/config"
)

// Port is an open serial link
type Port interface {
	io.ReadWriteCloser

	// Flush flushes any buffered data
	Flush() error
}

// Config holds serial port configuration
type Config struct {
	// Device path (e.g., "/dev/ttyUSB0", "COM3")
	Device string

	// Baud rate of the craft's UART
	Baud int

	// Read timeout in milliseconds (0 = blocking)
	ReadTimeout int
}

// DefaultConfig returns the link settings of the reference board
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        config.DefaultBaud,
		ReadTimeout: 50,
	}
}

// FromLink converts the link section of a controller configuration
func FromLink(l config.LinkConfig) *Config {
	c := DefaultConfig(l.Device)
	if l.Baud != 0 {
		c.Baud = l.Baud
	}
	return c
}
