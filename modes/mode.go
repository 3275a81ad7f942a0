// Package modes implements the six flight modes and the shared thrust allocation
package modes

import (
	"quadfc/config"
	"quadfc/state"
)

// ID identifies a flight mode on the wire and in the mode table
type ID uint8

const (
	Safe ID = iota
	Panic
	Manual
	Calibrate
	YawHold
	FullControl

	Count
)

var names = [Count]string{"safe", "panic", "manual", "calibrate", "yaw", "full"}

func (id ID) String() string {
	if !id.Valid() {
		return "invalid"
	}
	return names[id]
}

// Valid reports whether id names a mode
func (id ID) Valid() bool {
	return id < Count
}

// IsSafeOrPanic reports whether id is one of the two motor-safe modes
func (id ID) IsSafeOrPanic() bool {
	return id == Safe || id == Panic
}

// NeedsCalibration reports whether entering id requires calibrated sensors
func (id ID) NeedsCalibration() bool {
	switch id {
	case Safe, Panic, Manual, Calibrate:
		return false
	default:
		return true
	}
}

// Mode is one flight mode's behaviour. The controller only ever calls the
// operations of the active mode.
type Mode interface {
	// Control runs one control step against the state
	Control(s *state.FlightState)

	// Trans reports whether a transition from this mode to next is allowed
	Trans(s *state.FlightState, next ID) bool

	// Enter is called after this mode became active; prev is the mode left
	Enter(s *state.FlightState, prev ID)

	// MotorOn reports whether this mode permits motor output
	MotorOn(s *state.FlightState) bool
}

// Table maps every mode ID to its implementation. It is built once and never modified.
type Table struct {
	modes [Count]Mode
}

// NewTable builds the mode table for an airframe configuration
func NewTable(cfg *config.Config) *Table {
	mixer := NewMixer(cfg.Airframe)
	return &Table{
		modes: [Count]Mode{
			Safe:        &safeMode{},
			Panic:       newPanicMode(cfg.Safety),
			Manual:      newManualMode(mixer, cfg.Control),
			Calibrate:   &calibrateMode{},
			YawHold:     newYawMode(mixer, cfg.Control),
			FullControl: newFullMode(mixer, cfg.Control),
		},
	}
}

// Get returns the mode for id; id must be valid
func (t *Table) Get(id ID) Mode {
	return t.modes[id]
}

// gain returns a default gain plus pilot trim, never below one
func gain(g config.GainConfig, trim int32) int32 {
	v := g.Default + trim
	if v < 1 {
		v = 1
	}
	return v
}
