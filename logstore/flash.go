package logstore

import (
	"encoding/binary"
	"fmt"
	"io"

	"quadfc/protocol"
)

// headerSize is the little-endian byte count stored at offset 0
const headerSize = 4

// Flash is a byte-addressable non-volatile region
type Flash interface {
	io.ReaderAt
	io.WriterAt

	// Erase clears the whole region
	Erase() error

	// Capacity returns the usable size in bytes
	Capacity() int64
}

// FlashStore persists records on a Flash region. The byte length of the log
// is kept in a header and rewritten after each record.
type FlashStore struct {
	flash Flash
	bytes uint32
}

// NewFlashStore erases the region and starts an empty log
func NewFlashStore(flash Flash) (*FlashStore, error) {
	f := &FlashStore{flash: flash}
	if err := f.Reset(); err != nil {
		return nil, err
	}
	return f, nil
}

// OpenFlashStore resumes the log already present on the region
func OpenFlashStore(flash Flash) (*FlashStore, error) {
	var hdr [headerSize]byte
	if _, err := flash.ReadAt(hdr[:], 0); err != nil {
		return nil, fmt.Errorf("read log header: %w", err)
	}

	n := binary.LittleEndian.Uint32(hdr[:])
	if n%RecordSize != 0 || int64(n)+headerSize > flash.Capacity() {
		return nil, fmt.Errorf("corrupt log header: %d bytes", n)
	}
	return &FlashStore{flash: flash, bytes: n}, nil
}

func (f *FlashStore) Write(msg *protocol.Message) error {
	off := int64(headerSize) + int64(f.bytes)
	if off+RecordSize > f.flash.Capacity() {
		return ErrFull
	}

	rec := encodeRecord(msg)
	if _, err := f.flash.WriteAt(rec[:], off); err != nil {
		return fmt.Errorf("write log record: %w", err)
	}

	if err := f.writeHeader(f.bytes + RecordSize); err != nil {
		return err
	}
	f.bytes += RecordSize
	return nil
}

func (f *FlashStore) Read(i uint32) (protocol.Message, error) {
	if i >= f.Size() {
		return protocol.Message{}, ErrOutOfRange
	}

	var rec [RecordSize]byte
	if _, err := f.flash.ReadAt(rec[:], headerSize+int64(i)*RecordSize); err != nil {
		return protocol.Message{}, fmt.Errorf("read log record %d: %w", i, err)
	}
	return decodeRecord(rec[:]), nil
}

func (f *FlashStore) Reset() error {
	if err := f.flash.Erase(); err != nil {
		return fmt.Errorf("erase log: %w", err)
	}
	if err := f.writeHeader(0); err != nil {
		return err
	}
	f.bytes = 0
	return nil
}

func (f *FlashStore) Size() uint32 {
	return f.bytes / RecordSize
}

func (f *FlashStore) writeHeader(n uint32) error {
	var hdr [headerSize]byte
	binary.LittleEndian.PutUint32(hdr[:], n)
	if _, err := f.flash.WriteAt(hdr[:], 0); err != nil {
		return fmt.Errorf("write log header: %w", err)
	}
	return nil
}
