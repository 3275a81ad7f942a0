package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"quadfc/config"
	"quadfc/logstore"
	"quadfc/protocol"
	"quadfc/state"
)

// fakeHAL is a scripted board: inputs come from its fields, outputs are recorded
type fakeHAL struct {
	now     uint32
	tx      []byte
	voltage int32
	gyroR   int32

	motorsOn bool
	motors   state.Motors
	resets   int
	test     bool
}

func (h *fakeHAL) GetInputs(s *state.FlightState) {
	s.Sensors.SR = h.gyroR
	s.Sensors.SAZ = 1 << 16
	s.Sensors.SetVoltage(h.voltage, config.DefaultVoltageShift)
	s.Sensors.SetPressure(101325, config.DefaultPressureShift)
}

func (h *fakeHAL) SetOutputs(s *state.FlightState) { h.motors = s.Motors }
func (h *fakeHAL) EnableMotors(on bool) { h.motorsOn = on }
func (h *fakeHAL) TimeUS() uint32 { return h.now }
func (h *fakeHAL) TxByte(b byte) { h.tx = append(h.tx, b) }
func (h *fakeHAL) Reset() { h.resets++ }
func (h *fakeHAL) IsTestDevice() bool { return h.test }

// frames splits and decodes everything transmitted so far, then clears it
func (h *fakeHAL) frames(t *testing.T) []protocol.Message {
	t.Helper()
	require.Zero(t, len(h.tx)%protocol.FrameSize, "partial frame on the wire")

	var out []protocol.Message
	for off := 0; off < len(h.tx); off += protocol.FrameSize {
		msg, err := protocol.Decode(h.tx[off : off+protocol.FrameSize])
		require.NoError(t, err)
		out = append(out, msg)
	}
	h.tx = h.tx[:0]
	return out
}

type rig struct {
	t   *testing.T
	cfg *config.Config
	hal *fakeHAL
	log *logstore.MemoryStore
	sys *System
}

// newRig returns a system whose link is already synchronised
func newRig(t *testing.T, tweak func(*config.Config)) *rig {
	cfg := config.Default()
	if tweak != nil {
		tweak(cfg)
	}

	hal := &fakeHAL{voltage: 1200}
	log := logstore.NewMemoryStore(64)
	r := &rig{t: t, cfg: cfg, hal: hal, log: log, sys: NewSystem(cfg, hal, log)}

	start := make([]byte, 2*protocol.FrameSize)
	for i := range start {
		start[i] = protocol.MarkerByte
	}
	r.sys.Receive(start)
	require.Equal(t, protocol.StateStart, r.sys.Session().State())
	return r
}

func (r *rig) send(msg protocol.Message) {
	frame := protocol.Encode(&msg)
	r.sys.Receive(frame[:])
}

// step advances the clock by one tick period and runs a tick
func (r *rig) step(n int) {
	for i := 0; i < n; i++ {
		r.hal.now += r.cfg.Control.TickUS
		r.sys.Step()
	}
}

// stepFed runs ticks while keeping the link alive
func (r *rig) stepFed(n int) {
	for i := 0; i < n; i++ {
		r.send(protocol.NewCommand(protocol.IDKeepAlive))
		r.step(1)
	}
}

func (r *rig) setpoint(lift, roll, pitch, yaw int16) {
	r.send(protocol.NewSetpoint(protocol.Setpoint{Lift: lift, Roll: roll, Pitch: pitch, Yaw: yaw}))
}

func statusModes(msgs []protocol.Message) []uint16 {
	var out []uint16
	for _, m := range msgs {
		if m.ID == protocol.IDStatus {
			out = append(out, m.Status().Mode)
		}
	}
	return out
}
