//go:build !tinygo

package protocol

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// ErrClosed is returned by HostSession methods after Close
var ErrClosed = errors.New("protocol: session closed")

// HostSession runs a Session over a ReadWriteCloser on a regular Go host.
// A background goroutine owns the receive state machine; writes are serialized.
type HostSession struct {
	port    io.ReadWriteCloser
	session *Session

	messages chan Message
	handler  atomic.Pointer[MessageHandler]

	writeMutex sync.Mutex
	pending    []byte // bytes queued by the session while receiving

	stopChan  chan struct{}
	doneChan  chan struct{}
	closeOnce sync.Once

	rxState atomic.Uint32 // last RxState seen by the read loop
}

// NewHostSession creates a session over port and starts its read loop
func NewHostSession(port io.ReadWriteCloser) *HostSession {
	h := &HostSession{
		port:     port,
		messages: make(chan Message, 64),
		stopChan: make(chan struct{}),
		doneChan: make(chan struct{}),
	}
	h.session = NewSession(h.queueByte, h.dispatch)

	go h.readLoop()

	return h
}

// Messages returns the channel of received messages. When it is full the oldest
// message is dropped.
func (h *HostSession) Messages() <-chan Message {
	return h.messages
}

// SetHandler sets a callback for handling messages synchronously in the read
// loop. It may be called at any time; nil removes the callback.
func (h *HostSession) SetHandler(handler MessageHandler) {
	if handler == nil {
		h.handler.Store(nil)
		return
	}
	h.handler.Store(&handler)
}

// State returns the receive state as of the last chunk read
func (h *HostSession) State() RxState {
	return RxState(h.rxState.Load())
}

// Stats returns the underlying session counters
func (h *HostSession) Stats() Stats {
	return h.session.Stats()
}

// Send encodes and writes one frame
func (h *HostSession) Send(msg Message) error {
	frame := Encode(&msg)
	return h.write(frame[:])
}

// SendStart writes two START frames
func (h *HostSession) SendStart() error {
	start := NewMessage(StartID, StartValue32, StartValue32)
	frame := Encode(&start)
	buf := append(frame[:], frame[:]...)
	return h.write(buf)
}

// SendRestartRequest writes two START frames and the SPECIAL restart request
func (h *HostSession) SendRestartRequest() error {
	if err := h.SendStart(); err != nil {
		return err
	}
	return h.Send(NewMessage(SpecialID, RestartValue32, RestartValue32))
}

// WaitFor blocks until a message with the given ID arrives or the timeout expires
func (h *HostSession) WaitFor(id byte, timeout time.Duration) (Message, error) {
	deadline := time.After(timeout)
	for {
		select {
		case msg := <-h.messages:
			if msg.ID == id {
				return msg, nil
			}
		case <-deadline:
			return Message{}, fmt.Errorf("no message %d after %v", id, timeout)
		case <-h.stopChan:
			return Message{}, ErrClosed
		}
	}
}

// Close stops the read loop and closes the port
func (h *HostSession) Close() error {
	var err error
	h.closeOnce.Do(func() {
		close(h.stopChan)
		err = h.port.Close()
		<-h.doneChan
	})
	return err
}

func (h *HostSession) write(b []byte) error {
	select {
	case <-h.stopChan:
		return ErrClosed
	default:
	}

	h.writeMutex.Lock()
	defer h.writeMutex.Unlock()

	if _, err := h.port.Write(b); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// queueByte collects bytes the session transmits while handling input;
// they are flushed once the current chunk is processed
func (h *HostSession) queueByte(b byte) {
	h.pending = append(h.pending, b)
}

func (h *HostSession) dispatch(msg *Message) {
	if fn := h.handler.Load(); fn != nil {
		(*fn)(msg)
	}

	select {
	case h.messages <- *msg:
	default:
		// Channel full, drop oldest
		select {
		case <-h.messages:
		default:
		}
		h.messages <- *msg
	}
}

// readLoop continuously reads from the port and feeds the session
func (h *HostSession) readLoop() {
	defer close(h.doneChan)

	buffer := make([]byte, 256)

	for {
		select {
		case <-h.stopChan:
			return
		default:
		}

		n, err := h.port.Read(buffer)
		if n > 0 {
			h.session.Receive(buffer[:n])
			h.rxState.Store(uint32(h.session.State()))
			if len(h.pending) > 0 {
				_ = h.write(h.pending)
				h.pending = h.pending[:0]
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrClosedPipe) {
				return
			}
			select {
			case <-h.stopChan:
				return
			case <-time.After(10 * time.Millisecond):
			}
		}
	}
}
