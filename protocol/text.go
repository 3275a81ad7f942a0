package protocol

// TextWriter splits text into IDText frames of up to 8 bytes each, zero padded.
// It implements io.Writer so it can back a debug writer on the craft.
type TextWriter struct {
	send func(msg *Message)
}

// NewTextWriter creates a TextWriter that emits frames through send
func NewTextWriter(send func(msg *Message)) *TextWriter {
	return &TextWriter{send: send}
}

// Write emits p as one or more text frames
func (w *TextWriter) Write(p []byte) (int, error) {
	for off := 0; off < len(p); off += PayloadSize {
		msg := Message{ID: IDText}
		copy(msg.Payload[:], p[off:])
		w.send(&msg)
	}
	return len(p), nil
}

// WriteString emits s as text frames
func (w *TextWriter) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Text returns the text carried by an IDText frame, without padding
func (m *Message) Text() string {
	n := 0
	for n < PayloadSize && m.Payload[n] != 0 {
		n++
	}
	return string(m.Payload[:n])
}
