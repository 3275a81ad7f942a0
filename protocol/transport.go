package protocol

import "sync/atomic"

// ByteWriter transmits a single byte to the peer
type ByteWriter func(b byte)

// MessageHandler receives every valid, non-reserved message
type MessageHandler func(msg *Message)

// Stats counts session events since creation
type Stats struct {
	Received       uint32 // frames delivered to the handler
	ChecksumErrors uint32
	Resyncs        uint32 // restart requests answered
	Floods         uint32 // marker floods seen while in Ok
}

// Session is the receive state machine and send path of one serial endpoint.
// ReceiveByte and the send methods must not be called concurrently.
type Session struct {
	state     RxState
	rxCount   int // bytes of the current frame stored so far (Ok) or marker run (Prestart)
	markerRun int // consecutive marker bytes inside a frame
	rx        Message

	txByte          ByteWriter
	handler         MessageHandler
	restartCallback func() // called when the session drops to Prestart

	received       uint32
	checksumErrors uint32
	resyncs        uint32
	floods         uint32
}

// NewSession creates a session in the Prestart state
func NewSession(tx ByteWriter, handler MessageHandler) *Session {
	return &Session{
		state:   StatePrestart,
		txByte:  tx,
		handler: handler,
	}
}

// State returns the current receive state
func (s *Session) State() RxState {
	return s.state
}

// SetHandler replaces the received-message callback
func (s *Session) SetHandler(handler MessageHandler) {
	s.handler = handler
}

// SetByteWriter replaces the transmit callback
func (s *Session) SetByteWriter(tx ByteWriter) {
	s.txByte = tx
}

// SetRestartCallback sets a callback invoked after a checksum error forces a resync
func (s *Session) SetRestartCallback(callback func()) {
	s.restartCallback = callback
}

// Stats returns a snapshot of the session counters
func (s *Session) Stats() Stats {
	return Stats{
		Received:       atomic.LoadUint32(&s.received),
		ChecksumErrors: atomic.LoadUint32(&s.checksumErrors),
		Resyncs:        atomic.LoadUint32(&s.resyncs),
		Floods:         atomic.LoadUint32(&s.floods),
	}
}

// Reset returns the receiver to Prestart without touching the counters
func (s *Session) Reset() {
	s.state = StatePrestart
	s.rxCount = 0
	s.markerRun = 0
}

// ReceiveByte feeds one byte from the wire into the state machine
func (s *Session) ReceiveByte(c byte) {
	switch s.state {
	case StateOk:
		if s.rxCount == MessageSize {
			// Checksum byte closes the frame
			s.rxCount = 0
			s.endFrame(c)
			return
		}
		if s.rxCount == 0 {
			s.rx.ID = c
		} else {
			s.rx.Payload[s.rxCount-1] = c
		}
		s.rxCount++

		if c == MarkerByte {
			s.markerRun++
			if s.markerRun == FrameSize {
				// Marker flood mid-frame: the peer is resyncing us
				s.state = StateStart
				s.markerRun = 0
				s.rxCount = 0
				atomic.AddUint32(&s.floods, 1)
			}
		} else {
			s.markerRun = 0
		}

	case StatePrestart:
		if c == MarkerByte {
			s.rxCount++
			if s.rxCount == FrameSize {
				s.state = StateStart
				s.rxCount = 0
			}
		} else {
			s.rxCount = 0
		}

	case StateStart:
		if c != MarkerByte {
			s.state = StateOk
			s.rx.ID = c
			s.rxCount = 1
			s.markerRun = 0
		}
	}
}

// Receive feeds a slice of bytes into the state machine
func (s *Session) Receive(data []byte) {
	for _, c := range data {
		s.ReceiveByte(c)
	}
}

// endFrame validates the assembled frame against the received checksum
func (s *Session) endFrame(checksum byte) {
	if Checksum(&s.rx) != checksum {
		atomic.AddUint32(&s.checksumErrors, 1)
		s.state = StatePrestart
		s.markerRun = 0
		// The peer may have lost sync too; give it markers and ask for ours
		s.SendRestartRequest()
		if s.restartCallback != nil {
			s.restartCallback()
		}
		return
	}

	if s.rx.IsReserved() {
		if s.rx.IsRestartRequest() {
			atomic.AddUint32(&s.resyncs, 1)
			s.SendStart()
		}
		return
	}

	atomic.AddUint32(&s.received, 1)
	s.deliver()
}

// deliver hands the frame to the handler. A panicking handler must not take the
// receive loop down with it, so the session resyncs instead.
func (s *Session) deliver() {
	defer func() {
		if r := recover(); r != nil {
			s.Reset()
		}
	}()

	if s.handler != nil {
		msg := s.rx
		s.handler(&msg)
	}
}

// Send transmits msg byte by byte followed by its checksum
func (s *Session) Send(msg *Message) {
	if s.txByte == nil {
		return
	}
	s.txByte(msg.ID)
	for _, b := range msg.Payload {
		s.txByte(b)
	}
	s.txByte(Checksum(msg))
}

// QuickSend transmits a one-off frame built from an ID and two 32-bit lanes
func (s *Session) QuickSend(id byte, a, b uint32) {
	msg := NewMessage(id, a, b)
	s.Send(&msg)
}

// SendStart transmits two START frames so a receiver in Prestart can resync
func (s *Session) SendStart() {
	s.QuickSend(StartID, StartValue32, StartValue32)
	s.QuickSend(StartID, StartValue32, StartValue32)
}

// SendRestartRequest transmits START frames followed by the SPECIAL restart request
func (s *Session) SendRestartRequest() {
	s.SendStart()
	s.QuickSend(SpecialID, RestartValue32, RestartValue32)
}
