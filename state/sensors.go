package state

// SetVoltage records a battery sample and updates the running average.
// The first sample seeds the average so the low-battery check does not trip at boot.
func (s *Sensors) SetVoltage(centivolts int32, shift uint) {
	s.Voltage = centivolts
	if !s.voltageSeeded {
		s.VoltageAvg = centivolts
		s.voltageSeeded = true
		return
	}
	s.VoltageAvg += (centivolts - s.VoltageAvg) >> shift
}

// HasVoltage reports whether a battery sample was taken
func (s *Sensors) HasVoltage() bool {
	return s.voltageSeeded
}

// SetPressure records a barometer sample and updates the running average
func (s *Sensors) SetPressure(pa int32, shift uint) {
	s.Pressure = pa
	if !s.pressureSeeded {
		s.PressureAvg = pa
		s.pressureSeeded = true
		return
	}
	s.PressureAvg += (pa - s.PressureAvg) >> shift
}

// Corrected views of the sensors. Offsets only apply once calibration completed.

func (s *FlightState) GyroP() int32 { return s.Sensors.SP - s.offset(s.Offsets.SP) }
func (s *FlightState) GyroQ() int32 { return s.Sensors.SQ - s.offset(s.Offsets.SQ) }
func (s *FlightState) GyroR() int32 { return s.Sensors.SR - s.offset(s.Offsets.SR) }
func (s *FlightState) AccX() int32 { return s.Sensors.SAX - s.offset(s.Offsets.SAX) }
func (s *FlightState) AccY() int32 { return s.Sensors.SAY - s.offset(s.Offsets.SAY) }
func (s *FlightState) AccZ() int32 { return s.Sensors.SAZ - s.offset(s.Offsets.SAZ) }
func (s *FlightState) Phi() int32 { return s.Sensors.SPhi - s.offset(s.Offsets.SPhi) }
func (s *FlightState) Theta() int32 { return s.Sensors.STheta - s.offset(s.Offsets.STheta) }

// Altitude returns the pressure drop from the calibrated ground reference, in Pa.
// Positive means above the reference.
func (s *FlightState) Altitude() int32 {
	if !s.Offsets.Calibrated {
		return 0
	}
	return s.Offsets.Pressure - s.Sensors.PressureAvg
}

func (s *FlightState) offset(v int32) int32 {
	if !s.Offsets.Calibrated {
		return 0
	}
	return v
}

// PressureDelta returns the raw pressure relative to the calibrated reference
func (s *FlightState) PressureDelta() int32 {
	return s.Sensors.Pressure - s.offset(s.Offsets.Pressure)
}
