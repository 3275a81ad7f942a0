// Package link is the ground-station side of the command link: typed
// commands, log read-back and telemetry decoding over a HostSession.
package link

import (
	"errors"
	"fmt"
	"io"
	"time"

	"quadfc/host/serial"
	"quadfc/protocol"
)

// ErrNotConnected is returned by commands before Connect or after Close
var ErrNotConnected = errors.New("link: not connected")

// Link is a connection to a craft
type Link struct {
	session *protocol.HostSession
	port    io.ReadWriteCloser
}

// New runs a link over an already open port
func New(port io.ReadWriteCloser) *Link {
	return &Link{
		port:    port,
		session: protocol.NewHostSession(port),
	}
}

// Dial opens the serial device described by cfg
func Dial(cfg *serial.Config) (*Link, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}
	return New(port), nil
}

// Sync asks the craft to resynchronise and waits for its marker frames
func (l *Link) Sync(timeout time.Duration) error {
	if l.session == nil {
		return ErrNotConnected
	}
	if err := l.session.SendRestartRequest(); err != nil {
		return fmt.Errorf("sync: %w", err)
	}

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if l.session.State() != protocol.StatePrestart {
			return nil
		}
		time.Sleep(5 * time.Millisecond)
	}
	return fmt.Errorf("sync: no reply after %v", timeout)
}

// Close shuts the link down
func (l *Link) Close() error {
	if l.session == nil {
		return nil
	}
	err := l.session.Close()
	l.session = nil
	return err
}

// Messages delivers every frame received from the craft
func (l *Link) Messages() <-chan protocol.Message {
	return l.session.Messages()
}

// SetHandler installs a callback run for every received frame, on the
// read goroutine. It can be replaced while frames are arriving.
func (l *Link) SetHandler(fn func(msg *protocol.Message)) {
	l.session.SetHandler(fn)
}

// Stats returns the receive counters
func (l *Link) Stats() protocol.Stats {
	return l.session.Stats()
}

func (l *Link) send(msg protocol.Message) error {
	if l.session == nil {
		return ErrNotConnected
	}
	return l.session.Send(msg)
}

// SetMode requests a mode change and waits for the craft's status reply.
// A refused transition is reported as an error.
func (l *Link) SetMode(mode uint8, timeout time.Duration) error {
	if err := l.send(protocol.NewSetMode(mode)); err != nil {
		return err
	}
	msg, err := l.session.WaitFor(protocol.IDStatus, timeout)
	if err != nil {
		return fmt.Errorf("mode %d not confirmed: %w", mode, err)
	}
	if got := msg.Status().Mode; got != uint16(mode) {
		return fmt.Errorf("mode %d refused, craft in %d", mode, got)
	}
	return nil
}

// SetSetpoint sends lift, roll, pitch and yaw in wire units
func (l *Link) SetSetpoint(sp protocol.Setpoint) error {
	return l.send(protocol.NewSetpoint(sp))
}

// SetTrim sends the gain trims
func (l *Link) SetTrim(t protocol.Trim) error {
	return l.send(protocol.NewTrim(protocol.IDSetTrim, t))
}

// Key sends one keyboard code
func (l *Link) Key(k byte) error {
	return l.send(protocol.NewKeycode(k))
}

// SetOption sets (value != 0) or clears an option
func (l *Link) SetOption(number uint16, on bool) error {
	var v uint32
	if on {
		v = 1
	}
	return l.send(protocol.NewOption(protocol.Option{Number: number, Modifier: protocol.OptionModSet, Value: v}))
}

// ToggleOption flips an option
func (l *Link) ToggleOption(number uint16) error {
	return l.send(protocol.NewOption(protocol.Option{Number: number, Modifier: protocol.OptionModToggle}))
}

// SetTelemetryMask selects the telemetry channels
func (l *Link) SetTelemetryMask(mask uint32) error {
	return l.send(protocol.NewValue(protocol.IDSetTeleMask, mask))
}

// SetLogMask selects the logged channels
func (l *Link) SetLogMask(mask uint32) error {
	return l.send(protocol.NewValue(protocol.IDSetLogMask, mask))
}

// LogControl starts, stops or erases the log
func (l *Link) LogControl(ctl uint32) error {
	return l.send(protocol.NewValue(protocol.IDLogControl, ctl))
}

// KeepAlive refreshes the craft's link watchdog
func (l *Link) KeepAlive() error {
	return l.send(protocol.NewCommand(protocol.IDKeepAlive))
}

// Reboot restarts the craft
func (l *Link) Reboot() error {
	return l.send(protocol.NewCommand(protocol.IDReboot))
}

// ReadLog requests a log read-back and collects records until the end
// marker. Telemetry must be off, since its frames look like records. Text
// frames are skipped. idle bounds the gap between two records.
func (l *Link) ReadLog(idle time.Duration) ([]protocol.Message, error) {
	if err := l.LogControl(protocol.LogRead); err != nil {
		return nil, err
	}

	var records []protocol.Message
	timer := time.NewTimer(idle)
	defer timer.Stop()

	for {
		select {
		case msg := <-l.session.Messages():
			if msg.ID == protocol.IDLogEnd {
				if n := msg.Value(); n != uint32(len(records)) {
					return records, fmt.Errorf("log read-back: got %d of %d records", len(records), n)
				}
				return records, nil
			}
			if msg.ID != protocol.IDText {
				records = append(records, msg)
			}
			timer.Reset(idle)

		case <-timer.C:
			return records, fmt.Errorf("log read-back stalled after %d records", len(records))
		}
	}
}
