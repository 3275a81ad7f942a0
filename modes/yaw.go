package modes

import (
	"quadfc/config"
	"quadfc/state"
)

// yawLoop closes the yaw-rate loop on the filtered gyro
type yawLoop struct {
	filter *IIR
	gain   config.GainConfig
	shift  uint
}

func newYawLoop(c config.ControlConfig) yawLoop {
	return yawLoop{
		filter: NewRateFilter(),
		gain:   c.YawP,
		shift:  c.YawGainShift,
	}
}

// step returns the filtered Q16.16 rate and the yaw torque for it
func (y *yawLoop) step(s *state.FlightState) (rate, torque int32) {
	rate = y.filter.Step(s.Sensors.SR)
	if s.Offsets.Calibrated {
		rate -= s.Offsets.SR
	}

	err := int64(s.Setpoint.Yaw - rate>>rateToYaw)
	torque = int32(int64(gain(y.gain, s.Trim.YawP)) * err >> y.shift)
	return rate, torque
}

func (y *yawLoop) reset() {
	y.filter.Reset()
}

// yawMode flies like manual with a proportional yaw-rate loop
type yawMode struct {
	mixer *Mixer
	yaw   yawLoop
}

func newYawMode(mixer *Mixer, c config.ControlConfig) *yawMode {
	return &yawMode{
		mixer: mixer,
		yaw:   newYawLoop(c),
	}
}

func (m *yawMode) Control(s *state.FlightState) {
	sp := &s.Setpoint
	r, n := m.yaw.step(s)

	s.Pose.Att = state.Vector3{X: sp.Roll << attToPose, Y: sp.Pitch << attToPose, Z: s.Sensors.SPsi}
	s.Pose.Spin = state.Vector3{Z: r}

	s.Force.Z = -sp.Lift
	s.Torque.X = sp.Roll
	s.Torque.Y = sp.Pitch
	s.Torque.Z = n

	m.mixer.Apply(s)
}

func (m *yawMode) Trans(s *state.FlightState, next ID) bool {
	return next.IsSafeOrPanic()
}

func (m *yawMode) Enter(s *state.FlightState, prev ID) {
	enterFlight(s)
	m.yaw.reset()
}

func (m *yawMode) MotorOn(s *state.FlightState) bool {
	return true
}
