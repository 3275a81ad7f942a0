package modes

import (
	"quadfc/config"
	"quadfc/state"
)

// panicMode holds a fixed descent speed for a bounded number of ticks, then
// stops the motors and drops the motor-enable option
type panicMode struct {
	speed   uint16
	ticks   uint32
	timer   uint32
	holding bool
}

func newPanicMode(c config.SafetyConfig) *panicMode {
	return &panicMode{
		speed: c.PanicSpeed,
		ticks: c.PanicTicks,
	}
}

func (p *panicMode) Control(s *state.FlightState) {
	s.ClearForce()
	s.ClearTorque()

	if p.timer < p.ticks {
		p.timer++
		p.holding = true
		for i := range s.Motors {
			s.Motors[i] = p.speed
		}
		return
	}

	p.holding = false
	s.ClearMotors()
	s.Options.EnableMotors = false
}

func (p *panicMode) Trans(s *state.FlightState, next ID) bool {
	return next == Safe
}

func (p *panicMode) Enter(s *state.FlightState, prev ID) {
	p.holding = false
	p.timer = 0

	// Nothing to slow down from
	if prev.IsSafeOrPanic() || s.Motors.Max() < p.speed {
		p.timer = p.ticks
	}
}

func (p *panicMode) MotorOn(s *state.FlightState) bool {
	return p.holding
}
