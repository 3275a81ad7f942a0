package protocol

import (
	"encoding/binary"
	"errors"
)

var (
	ErrFrameSize = errors.New("protocol: frame must be exactly 10 bytes")
	ErrChecksum  = errors.New("protocol: checksum mismatch")
)

// Message is an ID plus an 8-byte payload. The payload is read as 8, 16, 32 or 64-bit
// little-endian lanes depending on the ID.
type Message struct {
	ID      byte
	Payload [PayloadSize]byte
}

// NewMessage builds a message from an ID and two 32-bit lanes
func NewMessage(id byte, a, b uint32) Message {
	m := Message{ID: id}
	m.SetU32(0, a)
	m.SetU32(1, b)
	return m
}

// Lane accessors index by lane width: U16(i) covers bytes 2i and 2i+1, U32(i) bytes 4i..4i+3
func (m *Message) U8(i int) uint8 {
	return m.Payload[i]
}

func (m *Message) SetU8(i int, v uint8) {
	m.Payload[i] = v
}

func (m *Message) I8(i int) int8 {
	return int8(m.Payload[i])
}

func (m *Message) U16(i int) uint16 {
	return binary.LittleEndian.Uint16(m.Payload[2*i:])
}

func (m *Message) SetU16(i int, v uint16) {
	binary.LittleEndian.PutUint16(m.Payload[2*i:], v)
}

func (m *Message) I16(i int) int16 {
	return int16(m.U16(i))
}

func (m *Message) SetI16(i int, v int16) {
	m.SetU16(i, uint16(v))
}

func (m *Message) U32(i int) uint32 {
	return binary.LittleEndian.Uint32(m.Payload[4*i:])
}

func (m *Message) SetU32(i int, v uint32) {
	binary.LittleEndian.PutUint32(m.Payload[4*i:], v)
}

func (m *Message) I32(i int) int32 {
	return int32(m.U32(i))
}

func (m *Message) SetI32(i int, v int32) {
	m.SetU32(i, uint32(v))
}

func (m *Message) U64() uint64 {
	return binary.LittleEndian.Uint64(m.Payload[:])
}

func (m *Message) SetU64(v uint64) {
	binary.LittleEndian.PutUint64(m.Payload[:], v)
}

// IsReserved reports whether the ID is a START or SPECIAL control frame
func (m *Message) IsReserved() bool {
	return m.ID == StartID || m.ID == SpecialID
}

// IsRestartRequest reports whether m is the SPECIAL restart-request frame
func (m *Message) IsRestartRequest() bool {
	return m.ID == SpecialID && m.U32(0) == RestartValue32 && m.U32(1) == RestartValue32
}

// Encode returns the 10-byte wire frame for msg
func Encode(msg *Message) [FrameSize]byte {
	var frame [FrameSize]byte
	frame[0] = msg.ID
	copy(frame[1:MessageSize], msg.Payload[:])
	frame[MessageSize] = Checksum(msg)
	return frame
}

// Decode parses a single 10-byte frame and verifies its checksum
func Decode(frame []byte) (Message, error) {
	var msg Message
	if len(frame) != FrameSize {
		return msg, ErrFrameSize
	}
	msg.ID = frame[0]
	copy(msg.Payload[:], frame[1:MessageSize])
	if Checksum(&msg) != frame[MessageSize] {
		return msg, ErrChecksum
	}
	return msg, nil
}
