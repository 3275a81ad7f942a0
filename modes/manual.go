package modes

import (
	"quadfc/config"
	"quadfc/fixedpoint"
	"quadfc/state"
)

const (
	// Q2.14 stick attitude to Q16.16
	attToPose = fixedpoint.Frac16 - fixedpoint.Frac14
	// Q16.16 rate to Q6.10
	rateToYaw = fixedpoint.Frac16 - fixedpoint.Frac10
	// Stick units to Q2.14 attitude target, full deflection is about half a radian
	stickAngleShift = 6
)

// yawRate derives the yaw rate from the change of the estimated heading
type yawRate struct {
	prev   int32
	primed bool
	tickUS int64
}

// step returns the Q16.16 rate for the new heading psi
func (y *yawRate) step(psi int32) int32 {
	if !y.primed {
		y.prev = psi
		y.primed = true
		return 0
	}
	delta := fixedpoint.Wrap(psi - y.prev)
	y.prev = psi
	return int32(int64(delta) * 1_000_000 / y.tickUS)
}

func (y *yawRate) reset() {
	y.primed = false
}

// manualMode passes the sticks straight to the mixer; only yaw is closed on
// the heading derivative
type manualMode struct {
	mixer *Mixer
	yaw   yawRate
}

func newManualMode(mixer *Mixer, c config.ControlConfig) *manualMode {
	return &manualMode{
		mixer: mixer,
		yaw:   yawRate{tickUS: int64(c.TickUS)},
	}
}

func (m *manualMode) Control(s *state.FlightState) {
	sp := &s.Setpoint
	r := m.yaw.step(s.Sensors.SPsi)

	s.Pose.Att = state.Vector3{X: sp.Roll << attToPose, Y: sp.Pitch << attToPose, Z: s.Sensors.SPsi}
	s.Pose.Spin = state.Vector3{Z: r}

	s.Force.Z = -sp.Lift
	s.Torque.X = sp.Roll
	s.Torque.Y = sp.Pitch
	s.Torque.Z = sp.Yaw - r>>rateToYaw

	m.mixer.Apply(s)
}

func (m *manualMode) Trans(s *state.FlightState, next ID) bool {
	return next.IsSafeOrPanic()
}

func (m *manualMode) Enter(s *state.FlightState, prev ID) {
	enterFlight(s)
	m.yaw.reset()
}

func (m *manualMode) MotorOn(s *state.FlightState) bool {
	return true
}

// enterFlight clears the horizontal force and the pose integrators
func enterFlight(s *state.FlightState) {
	s.Force.X = 0
	s.Force.Y = 0
	s.ClearVelo()
	s.ClearSpin()
	s.ClearPos()
	s.ClearAtt()
}
