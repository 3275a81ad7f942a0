package modes

import (
	"quadfc/config"
	"quadfc/fixedpoint"
	"quadfc/state"
)

// Mixer converts demanded vertical force and torques into motor speeds.
//
//	ae1^2 = -b/4 Z         + b/2 M - d/4 N
//	ae2^2 = -b/4 Z - b/2 L         + d/4 N
//	ae3^2 = -b/4 Z         - b/2 M - d/4 N
//	ae4^2 = -b/4 Z + b/2 L         + d/4 N
type Mixer struct {
	m14b  int64 // -b/4
	p12b  int64 // b/2
	p14d  int64 // d/4
	shift uint
	maxSq int64
}

// NewMixer builds the mixing matrix for an airframe
func NewMixer(a config.AirframeConfig) *Mixer {
	max := int64(a.MaxMotorSpeed)
	return &Mixer{
		m14b:  -int64(a.ThrustB) / 4,
		p12b:  int64(a.ThrustB) / 2,
		p14d:  int64(a.DragD) / 4,
		shift: a.MixShift,
		maxSq: max * max,
	}
}

// Speeds returns the four motor commands for force z and torques l, m, n
func (x *Mixer) Speeds(z, l, m, n int32) state.Motors {
	Z, L, M, N := int64(z), int64(l), int64(m), int64(n)

	squares := [4]int64{
		x.m14b*Z + x.p12b*M - x.p14d*N,
		x.m14b*Z - x.p12b*L + x.p14d*N,
		x.m14b*Z - x.p12b*M - x.p14d*N,
		x.m14b*Z + x.p12b*L + x.p14d*N,
	}

	var out state.Motors
	for i, sq := range squares {
		sq >>= x.shift
		if sq < 0 {
			sq = 0
		}
		if sq > x.maxSq {
			sq = x.maxSq
		}
		out[i] = uint16(fixedpoint.Sqrt(uint32(sq)))
	}
	return out
}

// Apply writes the motor commands for the demanded force and torque into s
func (x *Mixer) Apply(s *state.FlightState) {
	s.Motors = x.Speeds(s.Force.Z, s.Torque.X, s.Torque.Y, s.Torque.Z)
}
