package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

// EventKind classifies an entry of the event ring
type EventKind uint8

// Event kinds
const (
	EvtModeChange = 1 // mode entered, Value = previous mode
	EvtReject     = 2 // transition refused, Value = reject reason
	EvtFailsafe   = 3 // battery failsafe, Value = averaged voltage
	EvtWatchdog   = 4 // command link timeout
	EvtLogFull    = 5 // log store exhausted, Value = records held
	EvtBadCommand = 6 // command rejected by its handler, Value = message ID
)

// Reject reasons carried in EvtReject events
const (
	RejectGuard        = 1
	RejectThrottle     = 2
	RejectUncalibrated = 3
	RejectLowBattery   = 4
)

// EventRingSize is the number of events kept for post-mortem dumps
const EventRingSize = 32

// Event is a recorded controller event
type Event struct {
	Kind   EventKind
	Mode   uint8  // mode at the time of the event
	TimeUS uint32 // HAL clock
	Value  uint32 // kind specific
}

// Debug routes diagnostic text to a writer and keeps a ring of recent events.
// Text output is off until enabled; events are always recorded.
type Debug struct {
	write   DebugWriter
	enabled bool

	ring [EventRingSize]Event
	head uint8
	n    uint8
}

// NewDebug creates a Debug writing to w
func NewDebug(w DebugWriter) *Debug {
	return &Debug{write: w}
}

// SetWriter replaces the output function
func (d *Debug) SetWriter(w DebugWriter) {
	d.write = w
}

// SetEnabled enables or disables text output
func (d *Debug) SetEnabled(enabled bool) {
	d.enabled = enabled
}

// Enabled reports whether text output is on
func (d *Debug) Enabled() bool {
	return d.enabled
}

// Println writes msg if output is enabled
func (d *Debug) Println(msg string) {
	if d.enabled && d.write != nil {
		d.write(msg + "\n")
	}
}

// Record appends an event to the ring, overwriting the oldest
func (d *Debug) Record(kind EventKind, mode uint8, now, value uint32) {
	d.ring[d.head] = Event{Kind: kind, Mode: mode, TimeUS: now, Value: value}
	d.head = (d.head + 1) % EventRingSize
	if d.n < EventRingSize {
		d.n++
	}
}

// Events returns the recorded events, oldest first
func (d *Debug) Events() []Event {
	out := make([]Event, 0, d.n)
	start := (int(d.head) - int(d.n) + EventRingSize) % EventRingSize
	for i := 0; i < int(d.n); i++ {
		out = append(out, d.ring[(start+i)%EventRingSize])
	}
	return out
}

// ClearEvents empties the ring
func (d *Debug) ClearEvents() {
	d.ring = [EventRingSize]Event{}
	d.head = 0
	d.n = 0
}

// DumpEvents writes the ring through the writer, regardless of the enabled flag
func (d *Debug) DumpEvents() {
	if d.write == nil {
		return
	}

	for _, e := range d.Events() {
		d.write(e.Kind.String() +
			" m=" + utoa(uint32(e.Mode)) +
			" t=" + utoa(e.TimeUS) +
			" v=" + utoa(e.Value) + "\n")
	}
}

func (k EventKind) String() string {
	switch k {
	case EvtModeChange:
		return "MODE"
	case EvtReject:
		return "REJECT"
	case EvtFailsafe:
		return "BATT"
	case EvtWatchdog:
		return "WDOG"
	case EvtLogFull:
		return "LOGFULL"
	case EvtBadCommand:
		return "BADCMD"
	default:
		return "UNKNOWN"
	}
}
