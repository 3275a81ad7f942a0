// Package state holds the FlightState aggregate shared by the estimator, the
// mode control laws and the system controller.
package state

// Setpoint is the commanded orientation and thrust in internal units:
// lift Q8.8-scaled wire lift, roll/pitch Q2.14 rad, yaw Q6.10 rad/s.
type Setpoint struct {
	Lift  int32
	Roll  int32
	Pitch int32
	Yaw   int32
}

// Sensors holds the latest raw readings and their smoothed values
type Sensors struct {
	// Gyro rates, Q16.16 rad/s
	SP, SQ, SR int32
	// Accelerations, Q16.16 g
	SAX, SAY, SAZ int32
	// Estimated tilt, Q16.16 rad
	SPhi, STheta, SPsi int32

	Temperature int32 // Q8.8 degrees C
	Pressure    int32 // Pa
	PressureAvg int32
	Voltage     int32 // centivolts
	VoltageAvg  int32

	voltageSeeded  bool
	pressureSeeded bool
}

// Offsets holds per-channel calibration biases
type Offsets struct {
	SP, SQ, SR    int32
	SAX, SAY, SAZ int32
	SPhi, STheta  int32
	Pressure      int32

	Calibrated bool
}

// Vector3 is a generic three-axis quantity
type Vector3 struct {
	X, Y, Z int32
}

// Pose is the estimated position, attitude, body velocity and body rate
type Pose struct {
	Pos  Vector3 // x, y, z Q16.16 m
	Att  Vector3 // phi, theta, psi Q16.16 rad
	Velo Vector3 // u, v, w Q16.16 m/s
	Spin Vector3 // p, q, r Q16.16 rad/s
}

// Motors holds the four motor speed commands, always within [0, MaxMotorSpeed]
type Motors [4]uint16

// Trim holds pilot gain adjustments added to the default gains
type Trim struct {
	YawP int32
	P1   int32
	P2   int32
}

// Options are pilot-controlled feature flags
type Options struct {
	EnableMotors bool
	Raw          bool
	Height       bool
	Wireless     bool
}

// FlightState is the single mutable aggregate threaded through every tick
type FlightState struct {
	Setpoint Setpoint
	Sensors  Sensors
	Offsets  Offsets
	Pose     Pose
	Force    Vector3 // X, Y, Z demanded force
	Torque   Vector3 // L, M, N demanded torque
	Motors   Motors
	Trim     Trim
	Options  Options
	Profiles Profiles
}

// New returns a zeroed FlightState
func New() *FlightState {
	return &FlightState{}
}

// Clear zeroes everything except trims and options
func (s *FlightState) Clear() {
	s.ClearSetpoint()
	s.ClearSensors()
	s.ClearOffsets()
	s.ClearPose()
	s.ClearForce()
	s.ClearTorque()
	s.ClearMotors()
	s.Profiles.Clear()
}

func (s *FlightState) ClearSetpoint() { s.Setpoint = Setpoint{} }
func (s *FlightState) ClearSensors() { s.Sensors = Sensors{} }
func (s *FlightState) ClearOffsets() { s.Offsets = Offsets{} }
func (s *FlightState) ClearPos() { s.Pose.Pos = Vector3{} }
func (s *FlightState) ClearAtt() { s.Pose.Att = Vector3{} }
func (s *FlightState) ClearVelo() { s.Pose.Velo = Vector3{} }
func (s *FlightState) ClearSpin() { s.Pose.Spin = Vector3{} }
func (s *FlightState) ClearForce() { s.Force = Vector3{} }
func (s *FlightState) ClearTorque() { s.Torque = Vector3{} }
func (s *FlightState) ClearMotors() { s.Motors = Motors{} }
func (s *FlightState) ClearTrim() { s.Trim = Trim{} }
func (s *FlightState) ClearOptions() { s.Options = Options{} }

// ClearPose zeroes position, attitude, velocity and spin
func (s *FlightState) ClearPose() {
	s.Pose = Pose{}
}

// Max returns the highest motor command
func (m Motors) Max() uint16 {
	var hi uint16
	for _, v := range m {
		if v > hi {
			hi = v
		}
	}
	return hi
}
