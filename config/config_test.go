package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()

	assert.Equal(t, uint32(10000), c.Control.TickUS)
	assert.Equal(t, uint16(750), c.Airframe.MaxMotorSpeed)
	assert.Equal(t, int32(55<<8), c.Airframe.ThrustB)
	assert.Equal(t, int32(128), c.Control.ZeroLift)
	assert.Equal(t, int32(4064), c.Control.MaxLift)
	assert.Equal(t, int32(4096), c.Control.GyroWeight+c.Control.AccWeight)
	assert.Equal(t, int32(1050), c.Safety.SafeVoltage)
	assert.Equal(t, uint32(500), c.Safety.CommTimeoutMS)
	assert.Equal(t, uint16(320), c.Safety.PanicSpeed)
	assert.Equal(t, uint32(500), c.Safety.PanicTicks)
	assert.False(t, c.TestDevice)

	assert.Equal(t, int32(12), c.Control.P1.Default)
	assert.Equal(t, int32(132), c.Control.P2.Default)
	assert.Equal(t, int32(59), c.Control.YawP.Default)
	assert.Equal(t, int32(-58), c.Control.YawP.TrimMin())
}

func TestLoadYAML(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "racer.yaml"))
	require.NoError(t, err)

	assert.Equal(t, int32(10240), c.Airframe.ThrustB)
	assert.Equal(t, int32(DefaultDragD), c.Airframe.DragD)
	assert.Equal(t, uint16(700), c.Airframe.MaxMotorSpeed)
	assert.Equal(t, uint32(5000), c.Control.TickUS)
	assert.Equal(t, int32(80), c.Control.YawP.Default)
	assert.Equal(t, int32(12), c.Control.P1.Default)
	assert.Equal(t, int32(1100), c.Safety.SafeVoltage)
	assert.Equal(t, "/dev/ttyACM0", c.Link.Device)
	assert.Equal(t, 921600, c.Link.Baud)
}

func TestLoadJSON(t *testing.T) {
	c, err := Load(filepath.Join("testdata", "bench.json"))
	require.NoError(t, err)

	assert.True(t, c.TestDevice)
	assert.Equal(t, uint(4), c.Control.LiftShift)
	// Thresholds derived from the lift shift follow it
	assert.Equal(t, int32(4<<4), c.Control.ZeroLift)
	assert.Equal(t, int32(2<<4), c.Control.HeightThrottleBand)
	assert.Equal(t, uint32(1), c.Control.TelemetryDivider)
	assert.Equal(t, uint32(1000), c.Safety.CommTimeoutMS)
	assert.Equal(t, DefaultBaud, c.Link.Baud)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "missing.yaml"))
	assert.Error(t, err)

	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0o644))
	_, err = Load(bad)
	assert.Error(t, err)

	toml := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(toml, []byte("a = 1"), 0o644))
	_, err = Load(toml)
	assert.Error(t, err)

	_, err = LoadYAML([]byte("airframe: [1, 2"))
	assert.Error(t, err)
}
