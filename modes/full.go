package modes

import (
	"quadfc/config"
	"quadfc/state"
)

// Pa to Q16.16 metres near sea level
const pascalToMetre = 5461

// altitude returns the height above the calibrated reference in Q16.16 m
func altitude(s *state.FlightState) int32 {
	return s.Altitude() * pascalToMetre
}

// axisLoop is the cascaded attitude then rate controller for roll or pitch
type axisLoop struct {
	p1, p2 config.GainConfig
	shift  uint
}

// torque returns the axis torque for a Q2.14 target and the Q16.16 attitude and rate
func (a axisLoop) torque(target, att, rate, trim1, trim2 int32) int32 {
	p1 := int64(gain(a.p1, trim1))
	p2 := int64(gain(a.p2, trim2))

	rateTarget := p1 * int64(target-att>>attToPose) >> a.p1.Frac
	err := rateTarget - int64(rate>>attToPose)
	return int32(p2 * err >> (a.p2.Frac + a.shift))
}

// fullMode stabilises roll and pitch on the attitude estimate, yaw on the
// filtered rate and optionally height on pressure
type fullMode struct {
	mixer  *Mixer
	axis   axisLoop
	yaw    yawLoop
	height heightHold
	tickUS int64
}

func newFullMode(mixer *Mixer, c config.ControlConfig) *fullMode {
	return &fullMode{
		mixer:  mixer,
		axis:   axisLoop{p1: c.P1, p2: c.P2, shift: c.TorqueShift},
		yaw:    newYawLoop(c),
		height: newHeightHold(c),
		tickUS: int64(c.TickUS),
	}
}

func (m *fullMode) Control(s *state.FlightState) {
	sp := &s.Setpoint
	tr := &s.Trim
	phi, theta := s.Phi(), s.Theta()
	p, q := s.GyroP(), s.GyroQ()
	r, n := m.yaw.step(s)

	z := altitude(s)
	s.Pose.Velo.Z = int32(int64(z-s.Pose.Pos.Z) * 1_000_000 / m.tickUS)
	s.Pose.Pos.Z = z
	s.Pose.Att = state.Vector3{X: phi, Y: theta, Z: s.Sensors.SPsi}
	s.Pose.Spin = state.Vector3{X: p, Y: q, Z: r}

	s.Force.Z = m.height.force(s)
	s.Torque.X = m.axis.torque(sp.Roll<<stickAngleShift, phi, p, tr.P1, tr.P2)
	s.Torque.Y = m.axis.torque(sp.Pitch<<stickAngleShift, theta, q, tr.P1, tr.P2)
	s.Torque.Z = n

	m.mixer.Apply(s)
}

func (m *fullMode) Trans(s *state.FlightState, next ID) bool {
	return next.IsSafeOrPanic()
}

func (m *fullMode) Enter(s *state.FlightState, prev ID) {
	enterFlight(s)
	// Start from the current height so the first climb rate is not a step
	s.Pose.Pos.Z = altitude(s)
	m.yaw.reset()
	m.height.reset()
}

func (m *fullMode) MotorOn(s *state.FlightState) bool {
	return true
}
