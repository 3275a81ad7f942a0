package modes

import "quadfc/state"

const (
	calibrationShift   = 8
	calibrationSamples = 1 << calibrationShift
)

// Calibration channel order in calibrateMode.sums
const (
	calSP = iota
	calSQ
	calSR
	calSAX
	calSAY
	calSAZ
	calSPhi
	calSTheta
	calPressure

	calChannels
)

// calibrateMode averages 256 samples of every channel on the ground and
// folds the mean into the offsets
type calibrateMode struct {
	sums  [calChannels]int64
	count int
	busy  bool
}

func (c *calibrateMode) Control(s *state.FlightState) {
	if !c.busy {
		return
	}

	samples := [calChannels]int32{
		calSP:       s.GyroP(),
		calSQ:       s.GyroQ(),
		calSR:       s.GyroR(),
		calSAX:      s.AccX(),
		calSAY:      s.AccY(),
		calSAZ:      s.AccZ(),
		calSPhi:     s.Phi(),
		calSTheta:   s.Theta(),
		calPressure: s.PressureDelta(),
	}
	for i, v := range samples {
		c.sums[i] += int64(v)
	}

	c.count++
	if c.count < calibrationSamples {
		return
	}

	o := &s.Offsets
	if !o.Calibrated {
		*o = state.Offsets{}
	}
	o.SP += int32(c.sums[calSP] >> calibrationShift)
	o.SQ += int32(c.sums[calSQ] >> calibrationShift)
	o.SR += int32(c.sums[calSR] >> calibrationShift)
	o.SAX += int32(c.sums[calSAX] >> calibrationShift)
	o.SAY += int32(c.sums[calSAY] >> calibrationShift)
	o.SAZ += int32(c.sums[calSAZ] >> calibrationShift)
	o.SPhi += int32(c.sums[calSPhi] >> calibrationShift)
	o.STheta += int32(c.sums[calSTheta] >> calibrationShift)
	o.Pressure += int32(c.sums[calPressure] >> calibrationShift)
	o.Calibrated = true

	c.busy = false
}

func (c *calibrateMode) Trans(s *state.FlightState, next ID) bool {
	return next == Safe || next == Panic || next == Calibrate
}

func (c *calibrateMode) Enter(s *state.FlightState, prev ID) {
	c.sums = [calChannels]int64{}
	c.count = 0
	c.busy = true
	s.ClearMotors()
}

func (c *calibrateMode) MotorOn(s *state.FlightState) bool {
	return false
}
