// Package protocol implements the fixed-size framed serial protocol spoken between
// the craft and the ground station
package protocol

// Version represents the protocol revision reported by the ground tools
const Version = "1.0.0"

// Frame layout: [ID][payload x8][checksum]
const (
	PayloadSize = 8
	MessageSize = 1 + PayloadSize
	FrameSize   = MessageSize + 1
)

// Reserved frame IDs
const (
	StartID   = 0xFF // resync marker, payload all 0xFF
	SpecialID = 0xFE // control frame, payload carries a sentinel

	MarkerByte = 0xFF

	StartValue32   uint32 = 0xFFFFFFFF
	RestartValue32 uint32 = 0xFEFEFEFE
)

// Message IDs sent by the craft
const (
	IDStatus       = 0  // time, mode, voltage
	IDGyro         = 1  // sp, sq, sr
	IDAccel        = 2  // sax, say, saz
	IDMotors       = 3  // ae1..ae4
	IDTempPressure = 4  // temperature, pressure
	IDPosition     = 5  // x, y, z
	IDAttitude     = 6  // phi, theta, psi
	IDForce        = 7  // X, Y, Z
	IDTorque       = 8  // L, M, N
	IDVelocity     = 9  // u, v, w
	IDRates        = 10 // p, q, r
	IDTrim         = 11 // p1, p2, yaw p
	IDLogEnd       = 12 // end of log read-back
	IDText         = 16 // free text, up to 8 bytes

	// TelemetryChannels is the number of mask bits that map onto message IDs
	TelemetryChannels = 12
)

// Message IDs sent by the ground station
const (
	IDSetMode      = 0
	IDSetpoint     = 1
	IDSetTrim      = 2
	IDKeycode      = 3
	IDSetOption    = 4
	IDSetLogMask   = 5
	IDLogControl   = 6
	IDSetTeleMask  = 7
	IDKeepAlive    = 8
	IDReboot       = 9
	GroundCommands = 10
)

// Log control values. Read and reset share an encoding on the wire;
// value 2 is always treated as a read-back and LogErase is the unambiguous reset.
const (
	LogStop  uint32 = 0
	LogStart uint32 = 1
	LogRead  uint32 = 2
	LogReset uint32 = 2
	LogErase uint32 = 3
)

// Option numbers and modifiers for IDSetOption
const (
	OptionMotors   = 0
	OptionRaw      = 1
	OptionHeight   = 2
	OptionWireless = 3

	OptionModSet    = 1
	OptionModToggle = 2
)

// RxState is the receive state of a Session
type RxState uint8

const (
	StatePrestart RxState = iota // waiting for a run of marker bytes
	StateStart                   // markers seen, waiting for the first frame ID
	StateOk                      // assembling frames
)

func (s RxState) String() string {
	switch s {
	case StatePrestart:
		return "prestart"
	case StateStart:
		return "start"
	case StateOk:
		return "ok"
	default:
		return "unknown"
	}
}
