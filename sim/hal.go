package sim

import (
	"math"
	"sync"

	"quadfc/config"
	"quadfc/fixedpoint"
	"quadfc/logstore"
	"quadfc/state"
)

// Sensor constants of the simulated board
const (
	GroundPressure = 101325 // Pa
	PascalPerMetre = 12
	BatteryVoltage = 1170 // centivolts
	Temperature    = 25 << 8
	DefaultFlash   = 1 << 20
)

// HAL drives a Plant from the controller's outputs and synthesises sensor
// readings from it. The clock only moves when Advance is called.
type HAL struct {
	mu sync.Mutex

	plant    *Plant
	maxSpeed float64
	control  config.ControlConfig

	now      uint32
	motorsOn bool
	motors   state.Motors
	tx       []byte
	resets   int
	voltage  int32

	flash *logstore.RAMFlash
}

// NewHAL creates a simulated board for the airframe and sensor averaging of cfg
func NewHAL(plant *Plant, cfg *config.Config) *HAL {
	return &HAL{
		plant:    plant,
		maxSpeed: float64(cfg.Airframe.MaxMotorSpeed),
		control:  cfg.Control,
		voltage:  BatteryVoltage,
		flash:    logstore.NewRAMFlash(DefaultFlash),
	}
}

// Plant returns the simulated airframe
func (h *HAL) Plant() *Plant {
	return h.plant
}

// Flash returns the board's log flash
func (h *HAL) Flash() *logstore.RAMFlash {
	return h.flash
}

// Advance moves the clock forward
func (h *HAL) Advance(us uint32) {
	h.mu.Lock()
	h.now += us
	h.mu.Unlock()
}

// SetVoltage changes the simulated battery voltage
func (h *HAL) SetVoltage(centivolts int32) {
	h.mu.Lock()
	h.voltage = centivolts
	h.mu.Unlock()
}

// TakeTx returns and clears everything transmitted since the last call
func (h *HAL) TakeTx() []byte {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := h.tx
	h.tx = nil
	return out
}

// Motors returns the last commanded speeds and whether they were enabled
func (h *HAL) Motors() (state.Motors, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.motors, h.motorsOn
}

// Pose returns the plant's altitude and Euler angles
func (h *HAL) Pose() (alt, phi, theta, psi float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	p := h.plant
	return p.Altitude(), p.Phi, p.Th, p.Psi
}

// Resets returns how many times the board was rebooted
func (h *HAL) Resets() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.resets
}

func (h *HAL) GetInputs(s *state.FlightState) {
	h.mu.Lock()
	defer h.mu.Unlock()

	m := h.plant
	g := m.P.G * m.P.M
	sn := &s.Sensors

	sn.SP = fixedpoint.FromFloat(m.Pr, fixedpoint.Frac16)
	sn.SQ = fixedpoint.FromFloat(m.Q, fixedpoint.Frac16)
	sn.SR = fixedpoint.FromFloat(m.R, fixedpoint.Frac16)

	// Specific force along -z in g; at rest the ground reaction reads as one g
	az := 1.0
	if !m.Grounded {
		az = (g - m.Z) / g
	}
	sn.SAX = fixedpoint.FromFloat(m.X/g, fixedpoint.Frac16)
	sn.SAY = fixedpoint.FromFloat(m.Y/g, fixedpoint.Frac16)
	sn.SAZ = fixedpoint.FromFloat(az, fixedpoint.Frac16)

	sn.Temperature = Temperature
	sn.SetPressure(GroundPressure-int32(math.Round(m.Altitude()*PascalPerMetre)), h.control.PressureShift)
	sn.SetVoltage(h.voltage, h.control.VoltageShift)
}

func (h *HAL) SetOutputs(s *state.FlightState) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.motors = s.Motors
	var ae [4]float64
	if h.motorsOn {
		for i, v := range s.Motors {
			ae[i] = float64(v) / h.maxSpeed
		}
	}
	h.plant.SetMotors(ae)
	h.plant.Step()
}

func (h *HAL) EnableMotors(on bool) {
	h.mu.Lock()
	h.motorsOn = on
	h.mu.Unlock()
}

func (h *HAL) TimeUS() uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.now
}

func (h *HAL) TxByte(b byte) {
	h.mu.Lock()
	h.tx = append(h.tx, b)
	h.mu.Unlock()
}

func (h *HAL) Reset() {
	h.mu.Lock()
	h.resets++
	h.plant.Reset()
	h.mu.Unlock()
}

func (h *HAL) IsTestDevice() bool {
	return true
}
