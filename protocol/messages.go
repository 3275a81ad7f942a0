package protocol

// Status is the time/mode/voltage report (IDStatus)
type Status struct {
	TimeUS  uint32
	Mode    uint16
	Voltage uint16 // centivolts
}

func NewStatus(s Status) Message {
	m := Message{ID: IDStatus}
	m.SetU32(0, s.TimeUS)
	m.SetU16(2, s.Mode)
	m.SetU16(3, s.Voltage)
	return m
}

func (m *Message) Status() Status {
	return Status{TimeUS: m.U32(0), Mode: m.U16(2), Voltage: m.U16(3)}
}

// NewVector builds a three-lane 16-bit report (gyro, accel, position, attitude, ...)
func NewVector(id byte, v [3]int16) Message {
	m := Message{ID: id}
	for i, x := range v {
		m.SetI16(i, x)
	}
	return m
}

func (m *Message) Vector() [3]int16 {
	return [3]int16{m.I16(0), m.I16(1), m.I16(2)}
}

func NewMotors(ae [4]uint16) Message {
	m := Message{ID: IDMotors}
	for i, x := range ae {
		m.SetU16(i, x)
	}
	return m
}

func (m *Message) Motors() [4]uint16 {
	return [4]uint16{m.U16(0), m.U16(1), m.U16(2), m.U16(3)}
}

// TempPressure carries temperature in Q8.8 degrees and pressure in Pa
type TempPressure struct {
	Temperature int16
	Pressure    int32
}

func NewTempPressure(tp TempPressure) Message {
	m := Message{ID: IDTempPressure}
	m.SetI16(0, tp.Temperature)
	m.SetI32(1, tp.Pressure)
	return m
}

func (m *Message) TempPressure() TempPressure {
	return TempPressure{Temperature: m.I16(0), Pressure: m.I32(1)}
}

// Trim holds the pilot gain adjustments; shared by IDTrim and IDSetTrim
type Trim struct {
	P1   int16
	P2   int16
	YawP int16
}

func NewTrim(id byte, t Trim) Message {
	m := Message{ID: id}
	m.SetI16(0, t.P1)
	m.SetI16(1, t.P2)
	m.SetI16(2, t.YawP)
	return m
}

func (m *Message) Trim() Trim {
	return Trim{P1: m.I16(0), P2: m.I16(1), YawP: m.I16(2)}
}

// NewLogEnd terminates a log read-back with the number of records sent
func NewLogEnd(count uint32) Message {
	return NewMessage(IDLogEnd, count, 0)
}

func NewSetMode(mode uint8) Message {
	m := Message{ID: IDSetMode}
	m.SetU8(0, mode)
	return m
}

func (m *Message) Mode() uint8 {
	return m.U8(0)
}

// Setpoint is the commanded lift/roll/pitch/yaw in wire units
type Setpoint struct {
	Lift  int16
	Roll  int16
	Pitch int16
	Yaw   int16
}

func NewSetpoint(sp Setpoint) Message {
	m := Message{ID: IDSetpoint}
	m.SetI16(0, sp.Lift)
	m.SetI16(1, sp.Roll)
	m.SetI16(2, sp.Pitch)
	m.SetI16(3, sp.Yaw)
	return m
}

func (m *Message) Setpoint() Setpoint {
	return Setpoint{Lift: m.I16(0), Roll: m.I16(1), Pitch: m.I16(2), Yaw: m.I16(3)}
}

func NewKeycode(key byte) Message {
	m := Message{ID: IDKeycode}
	m.SetU8(0, key)
	return m
}

func (m *Message) Keycode() byte {
	return m.U8(0)
}

// Option selects a feature flag and how to change it
type Option struct {
	Number   uint16
	Modifier uint16
	Value    uint32
}

func NewOption(o Option) Message {
	m := Message{ID: IDSetOption}
	m.SetU16(0, o.Number)
	m.SetU16(1, o.Modifier)
	m.SetU32(1, o.Value)
	return m
}

func (m *Message) Option() Option {
	return Option{Number: m.U16(0), Modifier: m.U16(1), Value: m.U32(1)}
}

// NewValue builds a message whose meaning is a single 32-bit value
// (log mask, log control, telemetry mask)
func NewValue(id byte, v uint32) Message {
	return NewMessage(id, v, 0)
}

func (m *Message) Value() uint32 {
	return m.U32(0)
}

// NewCommand builds a message without arguments (keep-alive, reboot)
func NewCommand(id byte) Message {
	return Message{ID: id}
}

// Fraction widths of the 16-bit telemetry lanes. The craft narrows its Q16.16
// quantities by these shifts before sending.
const (
	RateFrac     = 10 // rad/s, gyro and body rates
	AccelFrac    = 12 // g
	AngleFrac    = 13 // rad
	PositionFrac = 8  // m and m/s
)
