package config

// Config is the complete flight-controller configuration
type Config struct {
	Airframe   AirframeConfig `json:"airframe" yaml:"airframe"`
	Control    ControlConfig  `json:"control" yaml:"control"`
	Safety     SafetyConfig   `json:"safety" yaml:"safety"`
	Link       LinkConfig     `json:"link" yaml:"link"`
	TestDevice bool           `json:"test_device" yaml:"test_device"` // simulated or bench device, skips the battery failsafe
}

// AirframeConfig describes the thrust mixing of the frame
type AirframeConfig struct {
	ThrustB       int32  `json:"thrust_b" yaml:"thrust_b"`               // thrust constant b, Q24.8
	DragD         int32  `json:"drag_d" yaml:"drag_d"`                   // drag constant d, Q24.8
	MixShift      uint   `json:"mix_shift" yaml:"mix_shift"`             // post-shift of the squared speeds
	MaxMotorSpeed uint16 `json:"max_motor_speed" yaml:"max_motor_speed"` // motor command ceiling
}

// ControlConfig holds the control-law constants
type ControlConfig struct {
	TickUS uint32 `json:"tick_us" yaml:"tick_us"` // control period in microseconds

	// Setpoint wire-to-internal shifts
	LiftShift  uint  `json:"lift_shift" yaml:"lift_shift"`
	RollShift  uint  `json:"roll_shift" yaml:"roll_shift"`
	PitchShift uint  `json:"pitch_shift" yaml:"pitch_shift"`
	YawShift   uint  `json:"yaw_shift" yaml:"yaw_shift"`
	ZeroLift   int32 `json:"zero_lift" yaml:"zero_lift"` // lift at or below this counts as idle
	MaxLift    int32 `json:"max_lift" yaml:"max_lift"`   // upper end of the height-hold band

	// Estimator blend weights, 12 fraction bits
	GyroWeight int32 `json:"gyro_weight" yaml:"gyro_weight"`
	AccWeight  int32 `json:"acc_weight" yaml:"acc_weight"`

	// Default gains; the pilot trim is added to these
	P1   GainConfig `json:"p1" yaml:"p1"`
	P2   GainConfig `json:"p2" yaml:"p2"`
	YawP GainConfig `json:"yaw_p" yaml:"yaw_p"`

	YawGainShift uint `json:"yaw_gain_shift" yaml:"yaw_gain_shift"`
	TorqueShift  uint `json:"torque_shift" yaml:"torque_shift"`

	// Height hold PI, gains in Q.8 per Pa
	HeightP            int32 `json:"height_p" yaml:"height_p"`
	HeightI            int32 `json:"height_i" yaml:"height_i"`
	HeightILimit       int32 `json:"height_i_limit" yaml:"height_i_limit"`
	HeightThrottleBand int32 `json:"height_throttle_band" yaml:"height_throttle_band"`

	PressureShift    uint   `json:"pressure_shift" yaml:"pressure_shift"`
	VoltageShift     uint   `json:"voltage_shift" yaml:"voltage_shift"`
	TelemetryDivider uint32 `json:"telemetry_divider" yaml:"telemetry_divider"`
}

// GainConfig is a pilot-trimmable gain
type GainConfig struct {
	Default int32 `json:"default" yaml:"default"`
	Frac    uint  `json:"frac" yaml:"frac"`
	TrimMax int32 `json:"trim_max" yaml:"trim_max"`
}

// TrimMin is the lowest trim that keeps the effective gain at one
func (g GainConfig) TrimMin() int32 {
	return -g.Default + 1
}

// SafetyConfig holds the failsafe thresholds
type SafetyConfig struct {
	SafeVoltage   int32  `json:"safe_voltage" yaml:"safe_voltage"` // centivolts
	CommTimeoutMS uint32 `json:"comm_timeout_ms" yaml:"comm_timeout_ms"`
	PanicSpeed    uint16 `json:"panic_speed" yaml:"panic_speed"`
	PanicTicks    uint32 `json:"panic_ticks" yaml:"panic_ticks"`
}

// LinkConfig describes the serial link to the ground station
type LinkConfig struct {
	Device string `json:"device" yaml:"device"`
	Baud   int    `json:"baud" yaml:"baud"`
}
