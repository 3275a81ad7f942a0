package core

import (
	"errors"
	"fmt"

	"quadfc/fixedpoint"
	"quadfc/modes"
	"quadfc/protocol"
)

var (
	errLogReadRefused = errors.New("log read-back only in safe mode")
	errMotorsThrottle = errors.New("turn down throttle before enabling motors")
)

// Dispatcher applies ground messages to the system and runs the command link watchdog
type Dispatcher struct {
	sys      *System
	registry *CommandRegistry

	timeoutUS uint32
	lastRx    uint32

	// Last commanded setpoint in wire units, moved by keycodes
	wire protocol.Setpoint
}

func newDispatcher(sys *System, timeoutUS uint32) *Dispatcher {
	d := &Dispatcher{
		sys:       sys,
		registry:  NewCommandRegistry(),
		timeoutUS: timeoutUS,
	}

	r := d.registry
	r.Register(protocol.IDSetMode, "set_mode", d.setMode)
	r.Register(protocol.IDSetpoint, "set_setpoint", d.setSetpoint)
	r.Register(protocol.IDSetTrim, "set_trim", d.setTrim)
	r.Register(protocol.IDKeycode, "keycode", d.keycode)
	r.Register(protocol.IDSetOption, "set_option", d.setOption)
	r.Register(protocol.IDSetLogMask, "set_log_mask", d.setLogMask)
	r.Register(protocol.IDLogControl, "log_control", d.logControl)
	r.Register(protocol.IDSetTeleMask, "set_telemetry_mask", d.setTelemetryMask)
	r.Register(protocol.IDKeepAlive, "keep_alive", func(*protocol.Message) error { return nil })
	r.Register(protocol.IDReboot, "reboot", d.reboot)
	return d
}

// Registry returns the command registry
func (d *Dispatcher) Registry() *CommandRegistry {
	return d.registry
}

// Handle refreshes the watchdog and dispatches msg
func (d *Dispatcher) Handle(msg *protocol.Message) error {
	d.lastRx = d.sys.hal.TimeUS()
	return d.registry.Dispatch(msg)
}

// Tick forces Panic once the link has been silent past the timeout
func (d *Dispatcher) Tick(now uint32) {
	if now-d.lastRx <= d.timeoutUS {
		return
	}

	d.lastRx = now
	d.sys.debug.Record(EvtWatchdog, uint8(d.sys.mode), now, 0)
	d.sys.setMode(modes.Panic)
}

// Feed refreshes the watchdog without a message
func (d *Dispatcher) Feed(now uint32) {
	d.lastRx = now
}

func (d *Dispatcher) setMode(msg *protocol.Message) error {
	m := modes.ID(msg.Mode())
	if !m.Valid() {
		return nil
	}
	d.sys.setMode(m)
	return nil
}

func (d *Dispatcher) setSetpoint(msg *protocol.Message) error {
	d.wire = msg.Setpoint()
	d.applySetpoint()
	return nil
}

func (d *Dispatcher) applySetpoint() {
	c := &d.sys.cfg.Control
	sp := &d.sys.state.Setpoint
	sp.Lift = int32(d.wire.Lift) << c.LiftShift
	sp.Roll = int32(d.wire.Roll) << c.RollShift
	sp.Pitch = int32(d.wire.Pitch) << c.PitchShift
	sp.Yaw = int32(d.wire.Yaw) << c.YawShift
}

func (d *Dispatcher) setTrim(msg *protocol.Message) error {
	c := &d.sys.cfg.Control
	t := msg.Trim()
	tr := &d.sys.state.Trim
	tr.P1 = fixedpoint.Clamp(int32(t.P1), c.P1.TrimMin(), c.P1.TrimMax)
	tr.P2 = fixedpoint.Clamp(int32(t.P2), c.P2.TrimMin(), c.P2.TrimMax)
	tr.YawP = fixedpoint.Clamp(int32(t.YawP), c.YawP.TrimMin(), c.YawP.TrimMax)
	return nil
}

func (d *Dispatcher) keycode(msg *protocol.Message) error {
	key := msg.Keycode()
	if key == KeyEscape {
		d.sys.setMode(modes.Panic)
		return nil
	}
	if !applyKey(&d.wire, key) {
		return fmt.Errorf("key %d not mapped", key)
	}
	d.applySetpoint()
	return nil
}

func (d *Dispatcher) setOption(msg *protocol.Message) error {
	o := msg.Option()
	opts := &d.sys.state.Options

	var flag *bool
	switch o.Number {
	case protocol.OptionMotors:
		flag = &opts.EnableMotors
	case protocol.OptionRaw:
		flag = &opts.Raw
	case protocol.OptionHeight:
		flag = &opts.Height
	case protocol.OptionWireless:
		flag = &opts.Wireless
	default:
		return fmt.Errorf("option %d not supported", o.Number)
	}

	var next bool
	switch o.Modifier {
	case protocol.OptionModSet:
		next = o.Value != 0
	case protocol.OptionModToggle:
		next = !*flag
	default:
		return fmt.Errorf("option modifier %d not supported", o.Modifier)
	}

	if o.Number == protocol.OptionMotors && next && !*flag &&
		d.sys.state.Setpoint.Lift > d.sys.cfg.Control.ZeroLift {
		return errMotorsThrottle
	}

	*flag = next
	return nil
}

func (d *Dispatcher) setLogMask(msg *protocol.Message) error {
	d.sys.logMask = msg.Value()
	return nil
}

func (d *Dispatcher) setTelemetryMask(msg *protocol.Message) error {
	d.sys.teleMask = msg.Value()
	return nil
}

func (d *Dispatcher) logControl(msg *protocol.Message) error {
	switch v := msg.Value(); v {
	case protocol.LogStop:
		d.sys.logging = false
	case protocol.LogStart:
		d.sys.logging = true
		d.sys.logFull = false
	case protocol.LogRead:
		if d.sys.mode != modes.Safe {
			return errLogReadRefused
		}
		return d.sys.readBackLog()
	case protocol.LogErase:
		d.sys.logging = false
		d.sys.logFull = false
		if err := d.sys.log.Reset(); err != nil {
			return fmt.Errorf("erase log: %w", err)
		}
	default:
		return fmt.Errorf("log control %d not supported", v)
	}
	return nil
}

func (d *Dispatcher) reboot(*protocol.Message) error {
	d.sys.hal.Reset()
	return nil
}
