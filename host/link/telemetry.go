package link

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"quadfc/fixedpoint"
	"quadfc/modes"
	"quadfc/protocol"
)

// Channel names of the craft's messages, indexed by ID
var channelNames = map[byte]string{
	protocol.IDStatus:       "status",
	protocol.IDGyro:         "gyro",
	protocol.IDAccel:        "accel",
	protocol.IDMotors:       "motors",
	protocol.IDTempPressure: "baro",
	protocol.IDPosition:     "position",
	protocol.IDAttitude:     "attitude",
	protocol.IDForce:        "force",
	protocol.IDTorque:       "torque",
	protocol.IDVelocity:     "velocity",
	protocol.IDRates:        "rates",
	protocol.IDTrim:         "trim",
	protocol.IDLogEnd:       "log_end",
	protocol.IDText:         "text",
}

// ChannelName returns the name of a craft message ID
func ChannelName(id byte) string {
	if n, ok := channelNames[id]; ok {
		return n
	}
	return fmt.Sprintf("id%d", id)
}

// ChannelMask returns the telemetry mask selecting the named channels
func ChannelMask(names ...string) (uint32, error) {
	var mask uint32
	for _, name := range names {
		found := false
		for id := byte(0); id < protocol.TelemetryChannels; id++ {
			if channelNames[id] == name {
				mask |= 1 << id
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown channel %q", name)
		}
	}
	return mask, nil
}

// Values decodes a craft message into physical units: seconds, volts,
// rad, rad/s, g, m, m/s, Pa and degrees C. Unknown IDs decode to nil.
func Values(msg *protocol.Message) []float64 {
	vec := func(frac uint) []float64 {
		v := msg.Vector()
		return []float64{
			fixedpoint.ToFloat(int32(v[0]), frac),
			fixedpoint.ToFloat(int32(v[1]), frac),
			fixedpoint.ToFloat(int32(v[2]), frac),
		}
	}

	switch msg.ID {
	case protocol.IDStatus:
		st := msg.Status()
		return []float64{float64(st.TimeUS) / 1e6, float64(st.Mode), float64(st.Voltage) / 100}
	case protocol.IDGyro, protocol.IDRates:
		return vec(protocol.RateFrac)
	case protocol.IDAccel:
		return vec(protocol.AccelFrac)
	case protocol.IDAttitude:
		return vec(protocol.AngleFrac)
	case protocol.IDPosition, protocol.IDVelocity:
		return vec(protocol.PositionFrac)
	case protocol.IDForce, protocol.IDTorque:
		return vec(0)
	case protocol.IDMotors:
		ae := msg.Motors()
		return []float64{float64(ae[0]), float64(ae[1]), float64(ae[2]), float64(ae[3])}
	case protocol.IDTempPressure:
		tp := msg.TempPressure()
		return []float64{fixedpoint.ToFloat(int32(tp.Temperature), fixedpoint.Frac8), float64(tp.Pressure)}
	case protocol.IDTrim:
		t := msg.Trim()
		return []float64{float64(t.P1), float64(t.P2), float64(t.YawP)}
	case protocol.IDLogEnd:
		return []float64{float64(msg.Value())}
	}
	return nil
}

// Describe formats a craft message as one line of text
func Describe(msg *protocol.Message) string {
	switch msg.ID {
	case protocol.IDText:
		return "text " + msg.Text()
	case protocol.IDStatus:
		st := msg.Status()
		return fmt.Sprintf("status t=%.3fs mode=%s batt=%.2fV",
			float64(st.TimeUS)/1e6, modes.ID(st.Mode).String(), float64(st.Voltage)/100)
	}

	vals := Values(msg)
	if vals == nil {
		return fmt.Sprintf("%s % x", ChannelName(msg.ID), msg.Payload)
	}

	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = fmt.Sprintf("%.3f", v)
	}
	return ChannelName(msg.ID) + " " + strings.Join(parts, " ")
}

// Record is one log entry as exported to YAML
type Record struct {
	Index   int       `yaml:"index"`
	Channel string    `yaml:"channel"`
	Values  []float64 `yaml:"values,flow"`
}

// WriteLog exports read-back records as a YAML sequence
func WriteLog(w io.Writer, records []protocol.Message) error {
	out := make([]Record, len(records))
	for i := range records {
		out[i] = Record{
			Index:   i,
			Channel: ChannelName(records[i].ID),
			Values:  Values(&records[i]),
		}
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode log: %w", err)
	}
	return enc.Close()
}

// ReadLogFile loads records written by WriteLog
func ReadLogFile(r io.Reader) ([]Record, error) {
	var out []Record
	if err := yaml.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode log: %w", err)
	}
	return out, nil
}
