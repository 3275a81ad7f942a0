package logstore

import (
	"sync"

	"quadfc/protocol"
)

// MemoryStore is a bounded Store held in RAM
type MemoryStore struct {
	mu       sync.Mutex
	records  []protocol.Message
	capacity uint32
}

// NewMemoryStore creates a store holding up to capacity records
func NewMemoryStore(capacity uint32) *MemoryStore {
	return &MemoryStore{
		records:  make([]protocol.Message, 0, capacity),
		capacity: capacity,
	}
}

func (m *MemoryStore) Write(msg *protocol.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if uint32(len(m.records)) >= m.capacity {
		return ErrFull
	}
	m.records = append(m.records, *msg)
	return nil
}

func (m *MemoryStore) Read(i uint32) (protocol.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if i >= uint32(len(m.records)) {
		return protocol.Message{}, ErrOutOfRange
	}
	return m.records[i], nil
}

func (m *MemoryStore) Reset() error {
	m.mu.Lock()
	m.records = m.records[:0]
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Size() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return uint32(len(m.records))
}
