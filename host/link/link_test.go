package link

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quadfc/config"
	"quadfc/core"
	"quadfc/modes"
	"quadfc/protocol"
	"quadfc/sim"
)

// craft runs a simulated board on the far end of a pipe
func craft(t *testing.T) (*Link, *core.System) {
	t.Helper()

	cfg := config.Default()
	cfg.Safety.CommTimeoutMS = 1_000_000
	hal := sim.NewHAL(sim.NewPlant(sim.DefaultParams()), cfg)
	sys := core.NewSystem(cfg, hal, nil)

	local, remote := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = sim.NewRunner(sys, hal, remote, cfg.Control.TickUS, time.Millisecond).Run(ctx)
		close(done)
	}()

	l := New(local)
	t.Cleanup(func() {
		cancel()
		l.Close()
		remote.Close()
		<-done
	})

	require.NoError(t, l.Sync(time.Second))
	return l, sys
}

func TestLinkSync(t *testing.T) {
	l, _ := craft(t)
	assert.NotEqual(t, protocol.StatePrestart, l.session.State())
}

func TestLinkSetMode(t *testing.T) {
	l, sys := craft(t)

	require.NoError(t, l.SetMode(uint8(modes.Manual), time.Second))
	assert.Equal(t, modes.Manual, sys.Mode())

	// Full control needs calibration; the craft stays put and says nothing
	err := l.SetMode(uint8(modes.FullControl), 100*time.Millisecond)
	assert.Error(t, err)
	assert.Equal(t, modes.Manual, sys.Mode())

	require.NoError(t, l.Key(core.KeyEscape))
	msg, err := l.session.WaitFor(protocol.IDStatus, time.Second)
	require.NoError(t, err)
	assert.Equal(t, uint16(modes.Panic), msg.Status().Mode)
}

func TestLinkCommandsReachCraft(t *testing.T) {
	l, sys := craft(t)

	require.NoError(t, l.SetTelemetryMask(1<<protocol.IDAttitude))
	require.NoError(t, l.SetLogMask(1<<protocol.IDStatus))
	require.Eventually(t, func() bool {
		tele, log := sys.Masks()
		return tele == 1<<protocol.IDAttitude && log == 1<<protocol.IDStatus
	}, time.Second, time.Millisecond)

	msg, err := l.session.WaitFor(protocol.IDAttitude, time.Second)
	require.NoError(t, err)
	assert.Equal(t, [3]int16{}, msg.Vector())

	require.NoError(t, l.SetTelemetryMask(0))
	require.NoError(t, l.KeepAlive())
}

func TestLinkReadLog(t *testing.T) {
	l, sys := craft(t)

	require.NoError(t, l.SetLogMask(1<<protocol.IDStatus))
	require.NoError(t, l.LogControl(protocol.LogStart))
	require.Eventually(t, sys.Logging, time.Second, time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	require.NoError(t, l.LogControl(protocol.LogStop))
	require.Eventually(t, func() bool { return !sys.Logging() }, time.Second, time.Millisecond)

	records, err := l.ReadLog(time.Second)
	require.NoError(t, err)
	require.NotEmpty(t, records)
	for _, r := range records {
		assert.Equal(t, byte(protocol.IDStatus), r.ID)
		assert.Equal(t, uint16(modes.Safe), r.Status().Mode)
	}

	var buf bytes.Buffer
	require.NoError(t, WriteLog(&buf, records))
	back, err := ReadLogFile(&buf)
	require.NoError(t, err)
	require.Len(t, back, len(records))
	assert.Equal(t, "status", back[0].Channel)
	assert.InDelta(t, 11.70, back[0].Values[2], 1e-9)
}

func TestLinkClosed(t *testing.T) {
	l, _ := craft(t)
	require.NoError(t, l.Close())
	assert.ErrorIs(t, l.KeepAlive(), ErrNotConnected)
}

func TestDescribe(t *testing.T) {
	att := protocol.NewVector(protocol.IDAttitude, [3]int16{1 << protocol.AngleFrac, 0, -(1 << (protocol.AngleFrac - 1))})
	assert.Equal(t, "attitude 1.000 0.000 -0.500", Describe(&att))

	st := protocol.NewStatus(protocol.Status{TimeUS: 1_500_000, Mode: uint16(modes.YawHold), Voltage: 1170})
	assert.Equal(t, "status t=1.500s mode=yaw batt=11.70V", Describe(&st))

	tp := protocol.NewTempPressure(protocol.TempPressure{Temperature: 25 << 8, Pressure: 101325})
	assert.Equal(t, "baro 25.000 101325.000", Describe(&tp))

	var txt protocol.Message
	w := protocol.NewTextWriter(func(m *protocol.Message) { txt = *m })
	_, _ = w.WriteString("hello")
	assert.Equal(t, "text hello", Describe(&txt))
}

func TestChannelMask(t *testing.T) {
	mask, err := ChannelMask("gyro", "motors")
	require.NoError(t, err)
	assert.Equal(t, uint32(1<<protocol.IDGyro|1<<protocol.IDMotors), mask)

	_, err = ChannelMask("sonar")
	assert.Error(t, err)
}
