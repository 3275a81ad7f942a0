package modes

import (
	"quadfc/config"
	"quadfc/state"
)

// heightHold is a PI loop on averaged pressure around the altitude captured
// when the option was engaged
type heightHold struct {
	p, i, iLimit int32
	band         int32
	zeroLift     int32
	maxLift      int32

	engaged  bool
	lift     int32 // throttle at engagement
	pressure int32 // averaged pressure at engagement
	integral int32
}

func newHeightHold(c config.ControlConfig) heightHold {
	return heightHold{
		p:        c.HeightP,
		i:        c.HeightI,
		iLimit:   c.HeightILimit,
		band:     c.HeightThrottleBand,
		zeroLift: c.ZeroLift,
		maxLift:  c.MaxLift,
	}
}

// force returns the demanded Z force. Without the option it is the throttle.
func (h *heightHold) force(s *state.FlightState) int32 {
	lift := s.Setpoint.Lift
	if !s.Options.Height {
		h.engaged = false
		return -lift
	}

	if !h.engaged {
		h.engaged = true
		h.lift = lift
		h.pressure = s.Sensors.PressureAvg
		h.integral = 0
	}

	if abs(lift-h.lift) > h.band {
		h.disengage(s)
		return -lift
	}

	// Pressure rises as the craft sinks
	err := s.Sensors.PressureAvg - h.pressure

	h.integral += h.i * err
	if h.integral > h.iLimit {
		h.integral = h.iLimit
	} else if h.integral < -h.iLimit {
		h.integral = -h.iLimit
	}

	z := -(h.lift + (h.p*err+h.integral)>>8)
	if z > -h.zeroLift || z < -h.maxLift {
		h.disengage(s)
		return -lift
	}
	return z
}

func (h *heightHold) disengage(s *state.FlightState) {
	h.engaged = false
	s.Options.Height = false
}

func (h *heightHold) reset() {
	h.engaged = false
	h.integral = 0
}

func abs(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}
