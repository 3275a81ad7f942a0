// Package estimator fuses gyro rates and accelerometer tilt into attitude angles
package estimator

import (
	"quadfc/fixedpoint"
	"quadfc/state"
)

// WeightFrac is the fraction width of the blend weights; the two weights sum to 1<<WeightFrac
const WeightFrac = 12

// Default blend weights
const (
	DefaultGyroWeight = 4055
	DefaultAccWeight  = (1 << WeightFrac) - DefaultGyroWeight
)

// Complementary is a one-step complementary filter for roll and pitch with
// gyro-only integration for yaw
type Complementary struct {
	gyroWeight int64
	accWeight  int64
	dtUS       int64
}

// New creates a filter for a tick period of dtUS microseconds
func New(gyroWeight, accWeight int32, dtUS uint32) *Complementary {
	return &Complementary{
		gyroWeight: int64(gyroWeight),
		accWeight:  int64(accWeight),
		dtUS:       int64(dtUS),
	}
}

// Update advances the estimate by one tick and stores it in the sensed-angle fields
func (c *Complementary) Update(s *state.FlightState) {
	sn := &s.Sensors

	// Accelerometer tilt needs gravity, so it uses the uncorrected readings
	accPhi := fixedpoint.Asin(sn.SAY)
	accTheta := fixedpoint.Asin(-sn.SAX)

	sn.SPhi = c.blend(c.integrate(sn.SPhi, s.GyroP()), accPhi)
	sn.STheta = c.blend(c.integrate(sn.STheta, s.GyroQ()), accTheta)
	sn.SPsi = c.integrate(sn.SPsi, s.GyroR())
}

// integrate advances angle by rate over one tick, both Q16.16
func (c *Complementary) integrate(angle, rate int32) int32 {
	delta := int64(rate) * c.dtUS / 1000000
	return fixedpoint.Wrap(int32(int64(angle) + delta))
}

func (c *Complementary) blend(gyro, acc int32) int32 {
	v := (c.gyroWeight*int64(gyro) + c.accWeight*int64(acc)) >> WeightFrac
	return fixedpoint.Wrap(int32(v))
}
