// Package core is the flight controller: the per-tick control sequence, mode
// transitions, command dispatch and telemetry.
package core

import (
	"errors"
	"sync"

	"quadfc/config"
	"quadfc/estimator"
	"quadfc/fixedpoint"
	"quadfc/logstore"
	"quadfc/modes"
	"quadfc/protocol"
	"quadfc/state"
)

// System owns the flight state and runs the control loop. Step and the
// receive methods lock the same mutex, so bytes arriving from another
// goroutine never interleave with a tick.
type System struct {
	mu sync.Mutex

	cfg   *config.Config
	hal   HAL
	state *state.FlightState

	modes   *modes.Table
	mode    modes.ID
	current modes.Mode

	estimator *estimator.Complementary
	session   *protocol.Session
	dispatch  *Dispatcher
	debug     *Debug
	text      *protocol.TextWriter

	log      logstore.Store
	logging  bool
	logFull  bool
	logMask  uint32
	teleMask uint32

	ticks uint32
}

// NewSystem builds a controller in Safe mode. log may be nil, in which case
// records are kept in a small RAM store.
func NewSystem(cfg *config.Config, hal HAL, log logstore.Store) *System {
	if log == nil {
		log = logstore.NewMemoryStore(DefaultMemoryLogRecords)
	}

	c := &cfg.Control
	s := &System{
		cfg:       cfg,
		hal:       hal,
		state:     state.New(),
		modes:     modes.NewTable(cfg),
		mode:      modes.Safe,
		estimator: estimator.New(c.GyroWeight, c.AccWeight, c.TickUS),
		log:       log,
	}
	s.current = s.modes.Get(modes.Safe)

	s.session = protocol.NewSession(hal.TxByte, s.handleMessage)
	s.text = protocol.NewTextWriter(s.session.Send)
	s.debug = NewDebug(func(msg string) {
		_, _ = s.text.WriteString(msg)
	})
	s.dispatch = newDispatcher(s, cfg.Safety.CommTimeoutMS*1000)
	s.dispatch.Feed(hal.TimeUS())

	s.current.Enter(s.state, modes.Safe)
	return s
}

// DefaultMemoryLogRecords is the capacity of the fallback RAM log
const DefaultMemoryLogRecords = 4096

// Mode returns the active mode
func (s *System) Mode() modes.ID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// State returns the flight state. Callers outside the control goroutine must
// not modify it while the system runs.
func (s *System) State() *state.FlightState {
	return s.state
}

// Session returns the protocol session of the command link
func (s *System) Session() *protocol.Session {
	return s.session
}

// Debug returns the diagnostic writer
func (s *System) Debug() *Debug {
	return s.debug
}

// Dispatcher returns the command dispatcher
func (s *System) Dispatcher() *Dispatcher {
	return s.dispatch
}

// Masks returns the telemetry and log masks
func (s *System) Masks() (telemetry, log uint32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.teleMask, s.logMask
}

// Logging reports whether log recording is on
func (s *System) Logging() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logging
}

// ReceiveByte feeds one byte from the command link
func (s *System) ReceiveByte(b byte) {
	s.mu.Lock()
	s.session.ReceiveByte(b)
	s.mu.Unlock()
}

// Receive feeds a chunk of bytes from the command link
func (s *System) Receive(p []byte) {
	s.mu.Lock()
	s.session.Receive(p)
	s.mu.Unlock()
}

// DrainQueue feeds every byte waiting in q and returns the count
func (s *System) DrainQueue(q *ByteQueue) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &s.state.Profiles[state.ProfileRx]
	st.Start(s.hal.TimeUS())
	n := q.Drain(s.session.ReceiveByte)
	st.End(s.hal.TimeUS(), uint32(n))
	return n
}

// Step runs one control tick
func (s *System) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()

	fs := s.state
	tick := &fs.Profiles[state.ProfileTick]
	tick.Start(s.hal.TimeUS())

	s.hal.GetInputs(fs)
	s.estimator.Update(fs)
	s.checkBattery()
	s.dispatch.Tick(s.hal.TimeUS())

	ctl := &fs.Profiles[state.ProfileControl]
	ctl.Start(s.hal.TimeUS())
	s.current.Control(fs)
	ctl.End(s.hal.TimeUS(), uint32(s.mode))

	on := s.current.MotorOn(fs) &&
		fs.Options.EnableMotors &&
		fs.Setpoint.Lift > s.cfg.Control.ZeroLift
	s.hal.EnableMotors(on)
	s.hal.SetOutputs(fs)

	s.report()

	s.ticks++
	tick.End(s.hal.TimeUS(), s.ticks)
}

// checkBattery forces Panic on a low averaged voltage, bypassing the
// transition guard
func (s *System) checkBattery() {
	if s.mode.IsSafeOrPanic() || !s.batteryLow() {
		return
	}

	v := s.state.Sensors.VoltageAvg
	s.debug.Record(EvtFailsafe, uint8(s.mode), s.hal.TimeUS(), uint32(v))
	s.debug.Println("low battery " + itoa(v))
	s.enter(modes.Panic)
}

// batteryLow reports an averaged voltage under the safe threshold on a
// real board. Before the first sample the battery is not judged.
func (s *System) batteryLow() bool {
	sn := &s.state.Sensors
	return !s.hal.IsTestDevice() && sn.HasVoltage() && sn.VoltageAvg < s.cfg.Safety.SafeVoltage
}

// SetMode requests a transition and reports whether it was taken.
// Rejections are silent apart from the event ring.
func (s *System) SetMode(next modes.ID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.setMode(next)
}

func (s *System) setMode(next modes.ID) bool {
	if !next.Valid() {
		return false
	}

	reject := func(reason uint32) bool {
		s.debug.Record(EvtReject, uint8(next), s.hal.TimeUS(), reason)
		return false
	}

	if !s.current.Trans(s.state, next) {
		return reject(RejectGuard)
	}
	if !next.IsSafeOrPanic() && s.state.Setpoint.Lift > s.cfg.Control.ZeroLift {
		return reject(RejectThrottle)
	}
	if next.NeedsCalibration() && !s.state.Offsets.Calibrated {
		return reject(RejectUncalibrated)
	}
	if !next.IsSafeOrPanic() && s.batteryLow() {
		return reject(RejectLowBattery)
	}

	s.enter(next)
	return true
}

// enter switches to next unconditionally and announces it
func (s *System) enter(next modes.ID) {
	prev := s.mode
	s.mode = next
	s.current = s.modes.Get(next)
	s.current.Enter(s.state, prev)

	now := s.hal.TimeUS()
	s.debug.Record(EvtModeChange, uint8(next), now, uint32(prev))

	msg := protocol.NewStatus(protocol.Status{
		TimeUS:  now,
		Mode:    uint16(next),
		Voltage: uint16(s.state.Sensors.Voltage),
	})
	s.session.Send(&msg)
}

// handleMessage is the session callback for every valid ground frame
func (s *System) handleMessage(msg *protocol.Message) {
	if err := s.dispatch.Handle(msg); err != nil {
		if !errors.Is(err, ErrUnknownMessage) {
			s.debug.Record(EvtBadCommand, uint8(s.mode), s.hal.TimeUS(), uint32(msg.ID))
		}
		s.debug.Println(err.Error())
	}
}

// readBackLog streams every stored record followed by the end marker
func (s *System) readBackLog() error {
	n := s.log.Size()
	for i := uint32(0); i < n; i++ {
		msg, err := s.log.Read(i)
		if err != nil {
			return err
		}
		s.session.Send(&msg)
	}

	end := protocol.NewLogEnd(n)
	s.session.Send(&end)
	return nil
}

// DumpProfile writes the profiling slots as debug text
func (s *System) DumpProfile() {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := [state.ProfileSlots]string{"tick", "ctl", "rx", "s3", "s4"}
	for i, p := range s.state.Profiles {
		s.debug.Println(names[i] +
			" last=" + utoa(p.Last) +
			" max=" + utoa(p.Max) +
			" tag=" + utoa(p.MaxTag))
	}
}

// DumpState writes a snapshot of mode, attitude and battery as debug text
func (s *System) DumpState() {
	s.mu.Lock()
	defer s.mu.Unlock()

	fs := s.state
	att := fs.Pose.Att
	s.debug.Println("mode=" + s.mode.String() + " ticks=" + utoa(s.ticks))
	s.debug.Println("att " + fixed(att.X, fixedpoint.Frac16) +
		" " + fixed(att.Y, fixedpoint.Frac16) +
		" " + fixed(att.Z, fixedpoint.Frac16))
	s.debug.Println("z " + fixed(fs.Pose.Pos.Z, fixedpoint.Frac16) +
		" batt=" + itoa(fs.Sensors.VoltageAvg))
	ae := fs.Motors
	s.debug.Println("ae " + utoa(uint32(ae[0])) + " " + utoa(uint32(ae[1])) +
		" " + utoa(uint32(ae[2])) + " " + utoa(uint32(ae[3])))
}
