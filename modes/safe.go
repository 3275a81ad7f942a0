package modes

import "quadfc/state"

// safeMode keeps the craft grounded: motors off and all demands zeroed
type safeMode struct{}

func (safeMode) Control(s *state.FlightState) {}

func (safeMode) Trans(s *state.FlightState, next ID) bool {
	return true
}

func (safeMode) Enter(s *state.FlightState, prev ID) {
	s.Options.EnableMotors = false
	s.ClearMotors()
	s.ClearForce()
	s.ClearTorque()
	s.ClearPose()
}

func (safeMode) MotorOn(s *state.FlightState) bool {
	return false
}
