package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quadfc/config"
	"quadfc/modes"
	"quadfc/protocol"
	"quadfc/state"
)

// quietLink disables the watchdog for tests that are not about it
func quietLink(c *config.Config) {
	c.Safety.CommTimeoutMS = 1_000_000
}

func TestSystemStartsSafe(t *testing.T) {
	r := newRig(t, nil)
	assert.Equal(t, modes.Safe, r.sys.Mode())
	assert.Empty(t, r.hal.tx)
}

func TestSetModeProtocol(t *testing.T) {
	r := newRig(t, quietLink)

	r.setpoint(10, 0, 0, 0)
	r.send(protocol.NewSetMode(uint8(modes.Manual)))
	assert.Equal(t, modes.Safe, r.sys.Mode(), "throttle up")

	r.setpoint(0, 0, 0, 0)
	r.send(protocol.NewSetMode(uint8(modes.YawHold)))
	assert.Equal(t, modes.Safe, r.sys.Mode(), "not calibrated")

	r.send(protocol.NewSetMode(99))
	assert.Equal(t, modes.Safe, r.sys.Mode())
	assert.Empty(t, r.hal.frames(t))

	r.send(protocol.NewSetMode(uint8(modes.Manual)))
	require.Equal(t, modes.Manual, r.sys.Mode())
	assert.Equal(t, []uint16{uint16(modes.Manual)}, statusModes(r.hal.frames(t)))

	r.send(protocol.NewSetMode(uint8(modes.Calibrate)))
	assert.Equal(t, modes.Manual, r.sys.Mode(), "guard")

	var reasons []uint32
	for _, e := range r.sys.Debug().Events() {
		if e.Kind == EvtReject {
			reasons = append(reasons, e.Value)
		}
	}
	assert.Equal(t, []uint32{RejectThrottle, RejectUncalibrated, RejectGuard}, reasons)
}

func TestPanicOnlyLeavesToSafe(t *testing.T) {
	r := newRig(t, quietLink)
	r.send(protocol.NewKeycode(KeyEscape))
	require.Equal(t, modes.Panic, r.sys.Mode())

	for m := modes.Panic; m < modes.Count; m++ {
		assert.False(t, r.sys.SetMode(m), "panic to %s", m)
		assert.Equal(t, modes.Panic, r.sys.Mode())
	}
	assert.True(t, r.sys.SetMode(modes.Safe))
}

func TestWatchdogPanicsOncePerSilence(t *testing.T) {
	r := newRig(t, nil)

	r.step(200)
	assert.Equal(t, modes.Panic, r.sys.Mode())
	assert.Equal(t, []uint16{uint16(modes.Panic)}, statusModes(r.hal.frames(t)))

	r.send(protocol.NewSetMode(uint8(modes.Safe)))
	r.step(100)
	assert.Equal(t, modes.Panic, r.sys.Mode())
	assert.Equal(t, []uint16{uint16(modes.Safe), uint16(modes.Panic)}, statusModes(r.hal.frames(t)))
}

func TestWatchdogFedLink(t *testing.T) {
	r := newRig(t, nil)
	r.stepFed(300)
	assert.Equal(t, modes.Safe, r.sys.Mode())
	assert.Empty(t, statusModes(r.hal.frames(t)))
}

// calibrate runs a full calibration from Safe and returns to Safe
func (r *rig) calibrate() {
	r.send(protocol.NewSetMode(uint8(modes.Calibrate)))
	require.Equal(r.t, modes.Calibrate, r.sys.Mode())
	r.step(256)
	require.True(r.t, r.sys.State().Offsets.Calibrated)
	r.send(protocol.NewSetMode(uint8(modes.Safe)))
	require.Equal(r.t, modes.Safe, r.sys.Mode())
}

func TestLowBatteryInFullControl(t *testing.T) {
	r := newRig(t, quietLink)
	r.calibrate()

	r.send(protocol.NewSetMode(uint8(modes.FullControl)))
	require.Equal(t, modes.FullControl, r.sys.Mode())
	r.send(protocol.NewOption(protocol.Option{Number: protocol.OptionMotors, Modifier: protocol.OptionModSet, Value: 1}))
	require.True(t, r.sys.State().Options.EnableMotors)

	r.setpoint(40, 0, 0, 0)
	r.step(1)
	require.True(t, r.hal.motorsOn)
	require.Equal(t, state.Motors{375, 375, 375, 375}, r.hal.motors)

	r.hal.voltage = 0
	for i := 0; i < 10 && r.sys.Mode() != modes.Panic; i++ {
		r.step(1)
	}
	require.Equal(t, modes.Panic, r.sys.Mode())

	// The failsafe tick already held once
	for i := 1; i < int(r.cfg.Safety.PanicTicks); i++ {
		require.True(t, r.hal.motorsOn, "tick %d", i)
		require.Equal(t, state.Motors{320, 320, 320, 320}, r.hal.motors)
		r.step(1)
	}
	require.True(t, r.hal.motorsOn)

	r.step(1)
	assert.False(t, r.hal.motorsOn)
	assert.Equal(t, state.Motors{}, r.hal.motors)
	assert.False(t, r.sys.State().Options.EnableMotors)
	assert.Equal(t, modes.Panic, r.sys.Mode())
}

func TestBatteryFailsafeSkipped(t *testing.T) {
	t.Run("safe mode", func(t *testing.T) {
		r := newRig(t, quietLink)
		r.hal.voltage = 0
		r.step(50)
		assert.Equal(t, modes.Safe, r.sys.Mode())
	})

	t.Run("test device", func(t *testing.T) {
		r := newRig(t, quietLink)
		r.hal.test = true
		r.send(protocol.NewSetMode(uint8(modes.Manual)))
		r.hal.voltage = 0
		r.step(50)
		assert.Equal(t, modes.Manual, r.sys.Mode())
	})
}

func TestLowBatteryRefusesFlight(t *testing.T) {
	r := newRig(t, quietLink)
	r.hal.voltage = 900
	r.step(50)
	require.Less(t, r.sys.State().Sensors.VoltageAvg, r.cfg.Safety.SafeVoltage)
	r.hal.frames(t)
	r.sys.Debug().ClearEvents()

	for _, m := range []modes.ID{modes.Manual, modes.Calibrate} {
		r.send(protocol.NewSetMode(uint8(m)))
		assert.Equal(t, modes.Safe, r.sys.Mode(), m.String())
	}
	assert.Empty(t, statusModes(r.hal.frames(t)))

	events := r.sys.Debug().Events()
	require.Len(t, events, 2)
	for _, e := range events {
		assert.Equal(t, EventKind(EvtReject), e.Kind)
		assert.Equal(t, uint32(RejectLowBattery), e.Value)
	}

	// Panic stays reachable on a flat battery
	r.send(protocol.NewSetMode(uint8(modes.Panic)))
	assert.Equal(t, modes.Panic, r.sys.Mode())
	r.send(protocol.NewSetMode(uint8(modes.Safe)))

	// A recovered battery allows flight again
	r.hal.voltage = 1200
	r.step(100)
	r.send(protocol.NewSetMode(uint8(modes.Manual)))
	assert.Equal(t, modes.Manual, r.sys.Mode())
}

func TestMotorPermission(t *testing.T) {
	r := newRig(t, quietLink)
	r.send(protocol.NewSetMode(uint8(modes.Manual)))
	r.send(protocol.NewOption(protocol.Option{Number: protocol.OptionMotors, Modifier: protocol.OptionModSet, Value: 1}))

	r.setpoint(4, 0, 0, 0) // exactly the idle threshold
	r.step(1)
	assert.False(t, r.hal.motorsOn)

	r.setpoint(5, 0, 0, 0)
	r.step(1)
	assert.True(t, r.hal.motorsOn)

	r.send(protocol.NewOption(protocol.Option{Number: protocol.OptionMotors, Modifier: protocol.OptionModToggle}))
	r.step(1)
	assert.False(t, r.hal.motorsOn)
}

func TestTelemetryDecimation(t *testing.T) {
	r := newRig(t, quietLink)
	r.send(protocol.NewValue(protocol.IDSetTeleMask, 1<<protocol.IDStatus|1<<protocol.IDMotors))
	r.step(20)

	var ids []byte
	for _, m := range r.hal.frames(t) {
		ids = append(ids, m.ID)
	}
	assert.Equal(t, []byte{protocol.IDStatus, protocol.IDMotors, protocol.IDStatus, protocol.IDMotors}, ids)

	tele, _ := r.sys.Masks()
	assert.Equal(t, uint32(0b1001), tele)
}

func TestStatusTelemetryCarriesVoltage(t *testing.T) {
	r := newRig(t, quietLink)
	r.send(protocol.NewValue(protocol.IDSetTeleMask, 1<<protocol.IDStatus))
	r.step(1)

	msgs := r.hal.frames(t)
	require.Len(t, msgs, 1)
	st := msgs[0].Status()
	assert.Equal(t, uint16(1200), st.Voltage)
	assert.Equal(t, r.hal.now, st.TimeUS)
	assert.Equal(t, uint16(modes.Safe), st.Mode)
}

func TestLogRecordAndReadBack(t *testing.T) {
	r := newRig(t, quietLink)
	r.send(protocol.NewValue(protocol.IDSetLogMask, 1<<protocol.IDStatus|1<<protocol.IDMotors))
	r.send(protocol.NewValue(protocol.IDLogControl, protocol.LogStart))
	require.True(t, r.sys.Logging())

	r.step(3)
	r.send(protocol.NewValue(protocol.IDLogControl, protocol.LogStop))
	r.step(3)
	require.Equal(t, uint32(6), r.log.Size())

	r.send(protocol.NewSetMode(uint8(modes.Manual)))
	r.hal.frames(t)
	r.send(protocol.NewValue(protocol.IDLogControl, protocol.LogRead))
	assert.Empty(t, r.hal.frames(t), "read-back outside safe")

	r.send(protocol.NewSetMode(uint8(modes.Safe)))
	r.hal.frames(t)
	r.send(protocol.NewValue(protocol.IDLogControl, protocol.LogRead))

	msgs := r.hal.frames(t)
	require.Len(t, msgs, 7)
	for i := 0; i < 6; i += 2 {
		assert.Equal(t, byte(protocol.IDStatus), msgs[i].ID)
		assert.Equal(t, byte(protocol.IDMotors), msgs[i+1].ID)
	}
	assert.Equal(t, byte(protocol.IDLogEnd), msgs[6].ID)
	assert.Equal(t, uint32(6), msgs[6].Value())

	r.send(protocol.NewValue(protocol.IDLogControl, protocol.LogErase))
	assert.Zero(t, r.log.Size())
}

func TestLogFullStopsRecording(t *testing.T) {
	r := newRig(t, quietLink)
	r.send(protocol.NewValue(protocol.IDSetLogMask, 1<<protocol.IDStatus|1<<protocol.IDMotors))
	r.send(protocol.NewValue(protocol.IDLogControl, protocol.LogStart))

	r.step(40)
	assert.Equal(t, uint32(64), r.log.Size())
	assert.Equal(t, modes.Safe, r.sys.Mode())

	var full int
	for _, e := range r.sys.Debug().Events() {
		if e.Kind == EvtLogFull {
			full++
		}
	}
	assert.Equal(t, 1, full)
}

func TestOptions(t *testing.T) {
	r := newRig(t, quietLink)
	opts := &r.sys.State().Options
	opt := func(num, mod uint16, v uint32) {
		r.send(protocol.NewOption(protocol.Option{Number: num, Modifier: mod, Value: v}))
	}

	r.setpoint(10, 0, 0, 0)
	opt(protocol.OptionMotors, protocol.OptionModSet, 1)
	assert.False(t, opts.EnableMotors, "throttle up")

	r.setpoint(0, 0, 0, 0)
	opt(protocol.OptionMotors, protocol.OptionModSet, 1)
	assert.True(t, opts.EnableMotors)

	opt(protocol.OptionRaw, protocol.OptionModToggle, 0)
	assert.True(t, opts.Raw)
	opt(protocol.OptionRaw, protocol.OptionModToggle, 0)
	assert.False(t, opts.Raw)

	opt(protocol.OptionHeight, protocol.OptionModSet, 1)
	assert.True(t, opts.Height)
	opt(protocol.OptionWireless, protocol.OptionModSet, 1)
	assert.True(t, opts.Wireless)

	opt(9, protocol.OptionModSet, 1)
	opt(protocol.OptionRaw, 7, 1)
	assert.False(t, opts.Raw)
}

func TestKeycodes(t *testing.T) {
	r := newRig(t, quietLink)
	sp := &r.sys.State().Setpoint
	key := func(k byte, n int) {
		for i := 0; i < n; i++ {
			r.send(protocol.NewKeycode(k))
		}
	}

	key(KeyLiftUp, 3)
	assert.Equal(t, int32(3<<r.cfg.Control.LiftShift), sp.Lift)
	key(KeyLiftDown, 1)
	assert.Equal(t, int32(2<<r.cfg.Control.LiftShift), sp.Lift)

	key(KeyRollLeft, 1)
	assert.Equal(t, int32(1), sp.Roll)
	key(KeyYawRight, 1)
	assert.Equal(t, int32(1<<r.cfg.Control.YawShift), sp.Yaw)
	key(KeyPitchDown, 2)
	assert.Equal(t, int32(-2), sp.Pitch)

	key(KeyLiftUp, 200)
	assert.Equal(t, r.cfg.Control.MaxLift, sp.Lift)

	key(KeyEscape, 1)
	assert.Equal(t, modes.Panic, r.sys.Mode())
}

func TestTrimIsClamped(t *testing.T) {
	r := newRig(t, quietLink)
	r.send(protocol.NewTrim(protocol.IDSetTrim, protocol.Trim{P1: 1000, P2: -1000, YawP: 5}))

	assert.Equal(t, state.Trim{P1: 200, P2: -131, YawP: 5}, r.sys.State().Trim)
}

func TestUnknownAndReboot(t *testing.T) {
	r := newRig(t, quietLink)
	r.sys.Debug().SetEnabled(true)

	r.send(protocol.NewCommand(15))
	assert.Equal(t, uint32(1), r.sys.Dispatcher().Registry().Unknown())
	assert.Empty(t, r.sys.Debug().Events())

	var text strings.Builder
	for _, m := range r.hal.frames(t) {
		require.Equal(t, byte(protocol.IDText), m.ID)
		text.WriteString(m.Text())
	}
	assert.Contains(t, text.String(), "unknown message")

	r.send(protocol.NewCommand(protocol.IDReboot))
	assert.Equal(t, 1, r.hal.resets)
}

func TestDumpProfile(t *testing.T) {
	r := newRig(t, quietLink)
	r.step(2)
	r.hal.frames(t)

	r.sys.Debug().SetEnabled(true)
	r.sys.DumpProfile()

	var text strings.Builder
	for _, m := range r.hal.frames(t) {
		text.WriteString(m.Text())
	}
	assert.Contains(t, text.String(), "tick last=0")
	assert.Contains(t, text.String(), "ctl ")
}

func TestDumpState(t *testing.T) {
	r := newRig(t, quietLink)
	r.step(3)
	r.hal.frames(t)

	r.sys.Debug().SetEnabled(true)
	r.sys.DumpState()

	var text strings.Builder
	for _, m := range r.hal.frames(t) {
		text.WriteString(m.Text())
	}
	assert.Contains(t, text.String(), "mode=safe ticks=3\n")
	assert.Contains(t, text.String(), "att 0.000 0.000")
	assert.Contains(t, text.String(), "ae 0 0 0 0\n")
}

func TestDrainQueue(t *testing.T) {
	r := newRig(t, quietLink)
	q := NewByteQueue(64)

	msg := protocol.NewSetMode(uint8(modes.Manual))
	frame := protocol.Encode(&msg)
	for _, b := range frame {
		q.Push(b)
	}

	assert.Equal(t, protocol.FrameSize, r.sys.DrainQueue(q))
	assert.Equal(t, modes.Manual, r.sys.Mode())
	assert.Equal(t, uint32(protocol.FrameSize), r.sys.State().Profiles[state.ProfileRx].LastTag)
}
