package logstore

import (
	"fmt"
	"sync"
)

// RAMFlash is a Flash backed by memory, used by the simulator and tests
type RAMFlash struct {
	mu   sync.Mutex
	data []byte
}

// NewRAMFlash creates an erased region of size bytes
func NewRAMFlash(size int) *RAMFlash {
	r := &RAMFlash{data: make([]byte, size)}
	r.fill()
	return r
}

func (r *RAMFlash) ReadAt(p []byte, off int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if off < 0 || off+int64(len(p)) > int64(len(r.data)) {
		return 0, fmt.Errorf("flash read %d bytes at %d: out of bounds", len(p), off)
	}
	return copy(p, r.data[off:]), nil
}

func (r *RAMFlash) WriteAt(p []byte, off int64) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if off < 0 || off+int64(len(p)) > int64(len(r.data)) {
		return 0, fmt.Errorf("flash write %d bytes at %d: out of bounds", len(p), off)
	}
	return copy(r.data[off:], p), nil
}

func (r *RAMFlash) Erase() error {
	r.mu.Lock()
	r.fill()
	r.mu.Unlock()
	return nil
}

func (r *RAMFlash) Capacity() int64 {
	return int64(len(r.data))
}

// Erased flash reads as all ones
func (r *RAMFlash) fill() {
	for i := range r.data {
		r.data[i] = 0xFF
	}
}
