package core

import "quadfc/state"

// HAL is the hardware the flight core runs on. A real board, the simulator
// and test doubles all implement it.
type HAL interface {
	// GetInputs samples every sensor into the raw sensor fields
	GetInputs(s *state.FlightState)

	// SetOutputs drives the motors from s.Motors
	SetOutputs(s *state.FlightState)

	// EnableMotors gates motor output; disabled motors stop regardless of SetOutputs
	EnableMotors(on bool)

	// TimeUS returns a free-running microsecond clock that wraps at 2^32
	TimeUS() uint32

	// TxByte transmits one byte on the command link
	TxByte(b byte)

	// Reset reboots the board
	Reset()

	// IsTestDevice reports a bench or simulated device, which skips the battery failsafe
	IsTestDevice() bool
}
