package core

import (
	"quadfc/fixedpoint"
	"quadfc/protocol"
	"quadfc/state"
)

// report sends the telemetry channels on decimated ticks and logs the log
// channels every tick while recording
func (s *System) report() {
	if s.teleMask != 0 && s.ticks%s.cfg.Control.TelemetryDivider == 0 {
		for id := byte(0); id < protocol.TelemetryChannels; id++ {
			if s.teleMask&(1<<id) == 0 {
				continue
			}
			msg := s.channel(id)
			s.session.Send(&msg)
		}
	}

	if !s.logging || s.logFull || s.logMask == 0 {
		return
	}
	for id := byte(0); id < protocol.TelemetryChannels; id++ {
		if s.logMask&(1<<id) == 0 {
			continue
		}
		msg := s.channel(id)
		if err := s.log.Write(&msg); err != nil {
			s.logFull = true
			s.debug.Record(EvtLogFull, uint8(s.mode), s.hal.TimeUS(), s.log.Size())
			s.debug.Println(err.Error())
			return
		}
	}
}

// channel builds the message for one telemetry ID from the flight state
func (s *System) channel(id byte) protocol.Message {
	fs := s.state

	switch id {
	case protocol.IDStatus:
		return protocol.NewStatus(protocol.Status{
			TimeUS:  s.hal.TimeUS(),
			Mode:    uint16(s.mode),
			Voltage: uint16(fs.Sensors.VoltageAvg),
		})

	case protocol.IDGyro:
		p, q, r := fs.GyroP(), fs.GyroQ(), fs.GyroR()
		if fs.Options.Raw {
			p, q, r = fs.Sensors.SP, fs.Sensors.SQ, fs.Sensors.SR
		}
		return vector(id, p, q, r, protocol.RateFrac)

	case protocol.IDAccel:
		x, y, z := fs.AccX(), fs.AccY(), fs.AccZ()
		if fs.Options.Raw {
			x, y, z = fs.Sensors.SAX, fs.Sensors.SAY, fs.Sensors.SAZ
		}
		return vector(id, x, y, z, protocol.AccelFrac)

	case protocol.IDMotors:
		return protocol.NewMotors(fs.Motors)

	case protocol.IDTempPressure:
		p := fs.Sensors.PressureAvg
		if fs.Options.Raw {
			p = fs.Sensors.Pressure
		}
		return protocol.NewTempPressure(protocol.TempPressure{
			Temperature: fixedpoint.Saturate16(fs.Sensors.Temperature),
			Pressure:    p,
		})

	case protocol.IDPosition:
		return vec3(id, fs.Pose.Pos, protocol.PositionFrac)

	case protocol.IDAttitude:
		att := fs.Pose.Att
		if fs.Options.Raw {
			att = state.Vector3{X: fs.Sensors.SPhi, Y: fs.Sensors.STheta, Z: fs.Sensors.SPsi}
		}
		return vec3(id, att, protocol.AngleFrac)

	case protocol.IDForce:
		return wireVector(id, fs.Force)

	case protocol.IDTorque:
		return wireVector(id, fs.Torque)

	case protocol.IDVelocity:
		return vec3(id, fs.Pose.Velo, protocol.PositionFrac)

	case protocol.IDRates:
		return vec3(id, fs.Pose.Spin, protocol.RateFrac)

	case protocol.IDTrim:
		return protocol.NewTrim(protocol.IDTrim, protocol.Trim{
			P1:   fixedpoint.Saturate16(fs.Trim.P1),
			P2:   fixedpoint.Saturate16(fs.Trim.P2),
			YawP: fixedpoint.Saturate16(fs.Trim.YawP),
		})
	}

	return protocol.Message{ID: id}
}

// vector narrows three Q16.16 values to frac fraction bits
func vector(id byte, x, y, z int32, frac uint) protocol.Message {
	return protocol.NewVector(id, [3]int16{
		fixedpoint.Saturate16(fixedpoint.Convert(x, fixedpoint.Frac16, frac)),
		fixedpoint.Saturate16(fixedpoint.Convert(y, fixedpoint.Frac16, frac)),
		fixedpoint.Saturate16(fixedpoint.Convert(z, fixedpoint.Frac16, frac)),
	})
}

func vec3(id byte, v state.Vector3, frac uint) protocol.Message {
	return vector(id, v.X, v.Y, v.Z, frac)
}

// wireVector sends force and torque in their internal units
func wireVector(id byte, v state.Vector3) protocol.Message {
	return protocol.NewVector(id, [3]int16{
		fixedpoint.Saturate16(v.X),
		fixedpoint.Saturate16(v.Y),
		fixedpoint.Saturate16(v.Z),
	})
}
