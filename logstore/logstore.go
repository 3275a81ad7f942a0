// Package logstore keeps the in-flight message log. Records are whole protocol
// messages so a read-back can be streamed to the ground station unchanged.
package logstore

import (
	"errors"

	"quadfc/protocol"
)

var (
	// ErrFull is returned by Write once the store has no room for another record
	ErrFull = errors.New("logstore: full")

	// ErrOutOfRange is returned by Read for an index past the last record
	ErrOutOfRange = errors.New("logstore: index out of range")
)

// RecordSize is the stored size of one message: ID plus payload
const RecordSize = protocol.MessageSize

// Store is an append-only record log
type Store interface {
	// Write appends one record
	Write(msg *protocol.Message) error

	// Read returns record i, oldest first
	Read(i uint32) (protocol.Message, error)

	// Reset discards every record
	Reset() error

	// Size returns the number of records held
	Size() uint32
}

func encodeRecord(msg *protocol.Message) [RecordSize]byte {
	var rec [RecordSize]byte
	rec[0] = msg.ID
	copy(rec[1:], msg.Payload[:])
	return rec
}

func decodeRecord(rec []byte) protocol.Message {
	var msg protocol.Message
	msg.ID = rec[0]
	copy(msg.Payload[:], rec[1:RecordSize])
	return msg
}
