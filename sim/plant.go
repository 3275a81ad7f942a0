// Package sim is a software stand-in for the airframe: a rigid-body plant and
// a HAL that feeds it from the controller's motor commands.
package sim

import "math"

// Params are the physical constants of the simulated airframe
type Params struct {
	T float64 // step, s
	B float64 // thrust per normalised speed squared
	D float64 // drag torque per normalised speed squared
	M float64 // mass
	I float64 // moment of inertia, all axes
	G float64 // gravity
}

// DefaultParams hovers at roughly 60% motor speed
func DefaultParams() Params {
	return Params{
		T: 0.01,
		B: 7,
		D: 0.5,
		M: 1,
		I: 1,
		G: 9.81,
	}
}

// Plant is a small-angle rigid-body model. Body z points down and the ground
// is at z = 0.
type Plant struct {
	P Params

	// Normalised squared motor speeds
	AE [4]float64

	X, Y, Z float64 // force
	L, M, N float64 // torque

	U, V, W      float64 // body velocity
	Pr, Q, R     float64 // body rates
	Px, Py, Pz   float64 // position
	Phi, Th, Psi float64 // attitude

	Grounded bool
}

// NewPlant creates a plant resting on the ground
func NewPlant(p Params) *Plant {
	return &Plant{P: p, Grounded: true}
}

// Reset puts the plant back on the ground at rest
func (m *Plant) Reset() {
	*m = Plant{P: m.P, Grounded: true}
}

// SetMotors sets the motor speeds as fractions of the maximum
func (m *Plant) SetMotors(ae [4]float64) {
	for i, v := range ae {
		m.AE[i] = v * v
	}
}

// Step advances the model by one period
func (m *Plant) Step() {
	p := m.P
	a := m.AE

	m.X = -math.Sin(m.Th) * p.G * p.M
	m.Y = math.Sin(m.Phi) * p.G * p.M
	m.Z = -p.B*(a[0]+a[1]+a[2]+a[3]) + p.G*p.M

	m.L = p.B * (a[3] - a[1])
	m.M = p.B * (a[0] - a[2])
	m.N = p.D * (-a[0] + a[1] - a[2] + a[3])

	if m.Grounded && m.Z >= 0 {
		// Resting: the ground carries the weight
		m.X, m.Y, m.Z = 0, 0, 0
		m.L, m.M, m.N = 0, 0, 0
		m.U, m.V, m.W = 0, 0, 0
		m.Pr, m.Q, m.R = 0, 0, 0
		return
	}
	m.Grounded = false

	m.U += p.T / p.M * m.X
	m.V += p.T / p.M * m.Y
	m.W += p.T / p.M * m.Z

	m.Pr += p.T / p.I * m.L
	m.Q += p.T / p.I * m.M
	m.R += p.T / p.I * m.N

	m.Px += p.T * m.U
	m.Py += p.T * m.V
	m.Pz += p.T * m.W

	m.Phi += p.T * m.Pr
	m.Th += p.T * m.Q
	m.Psi += p.T * m.R

	if m.Pz >= 0 {
		m.Pz = 0
		m.U, m.V, m.W = 0, 0, 0
		m.Pr, m.Q, m.R = 0, 0, 0
		m.Phi, m.Th = 0, 0
		m.Grounded = true
	}
}

// Altitude returns the height above the ground in metres
func (m *Plant) Altitude() float64 {
	return -m.Pz
}
