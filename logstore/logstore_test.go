package logstore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quadfc/protocol"
)

func testStores(t *testing.T, capacity uint32) map[string]Store {
	fs, err := NewFlashStore(NewRAMFlash(headerSize + int(capacity)*RecordSize))
	require.NoError(t, err)

	return map[string]Store{
		"memory": NewMemoryStore(capacity),
		"flash":  fs,
	}
}

func TestStoreWriteRead(t *testing.T) {
	for name, s := range testStores(t, 8) {
		t.Run(name, func(t *testing.T) {
			for i := uint32(0); i < 5; i++ {
				msg := protocol.NewMessage(byte(i), i*3, ^i)
				require.NoError(t, s.Write(&msg))
			}
			assert.Equal(t, uint32(5), s.Size())

			for i := uint32(0); i < 5; i++ {
				msg, err := s.Read(i)
				require.NoError(t, err)
				assert.Equal(t, protocol.NewMessage(byte(i), i*3, ^i), msg)
			}

			_, err := s.Read(5)
			assert.ErrorIs(t, err, ErrOutOfRange)
		})
	}
}

func TestStoreFull(t *testing.T) {
	for name, s := range testStores(t, 2) {
		t.Run(name, func(t *testing.T) {
			msg := protocol.NewCommand(protocol.IDKeepAlive)
			require.NoError(t, s.Write(&msg))
			require.NoError(t, s.Write(&msg))
			assert.ErrorIs(t, s.Write(&msg), ErrFull)
			assert.Equal(t, uint32(2), s.Size())
		})
	}
}

func TestStoreReset(t *testing.T) {
	for name, s := range testStores(t, 4) {
		t.Run(name, func(t *testing.T) {
			msg := protocol.NewValue(protocol.IDLogEnd, 7)
			require.NoError(t, s.Write(&msg))
			require.NoError(t, s.Reset())

			assert.Zero(t, s.Size())
			_, err := s.Read(0)
			assert.ErrorIs(t, err, ErrOutOfRange)

			require.NoError(t, s.Write(&msg))
			got, err := s.Read(0)
			require.NoError(t, err)
			assert.Equal(t, msg, got)
		})
	}
}

func TestFlashStoreReopen(t *testing.T) {
	flash := NewRAMFlash(256)
	s, err := NewFlashStore(flash)
	require.NoError(t, err)

	msg := protocol.NewStatus(protocol.Status{TimeUS: 123456, Mode: 2, Voltage: 1170})
	require.NoError(t, s.Write(&msg))
	require.NoError(t, s.Write(&msg))

	reopened, err := OpenFlashStore(flash)
	require.NoError(t, err)
	assert.Equal(t, uint32(2), reopened.Size())

	got, err := reopened.Read(1)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestOpenFlashStoreRejectsErased(t *testing.T) {
	_, err := OpenFlashStore(NewRAMFlash(256))
	assert.Error(t, err)
}
