package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugPrintlnGated(t *testing.T) {
	var out []string
	d := NewDebug(func(s string) { out = append(out, s) })

	d.Println("hidden")
	assert.Empty(t, out)

	d.SetEnabled(true)
	d.Println("shown")
	assert.Equal(t, []string{"shown\n"}, out)
}

func TestDebugEventRing(t *testing.T) {
	d := NewDebug(nil)
	for i := 0; i < EventRingSize+5; i++ {
		d.Record(EvtReject, 1, uint32(i), 0)
	}

	ev := d.Events()
	require.Len(t, ev, EventRingSize)
	assert.Equal(t, uint32(5), ev[0].TimeUS)
	assert.Equal(t, uint32(EventRingSize+4), ev[EventRingSize-1].TimeUS)

	d.ClearEvents()
	assert.Empty(t, d.Events())
}

func TestDebugDumpEvents(t *testing.T) {
	var out []string
	d := NewDebug(func(s string) { out = append(out, s) })
	d.Record(EvtModeChange, 1, 1000, 5)
	d.Record(EvtWatchdog, 1, 2000, 0)

	d.DumpEvents()
	assert.Equal(t, []string{"MODE m=1 t=1000 v=5\n", "WDOG m=1 t=2000 v=0\n"}, out)
}
