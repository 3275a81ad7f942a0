package core

import "quadfc/protocol"

// Keyboard codes accepted by the keycode message
const (
	KeyLiftUp    = 'a'
	KeyLiftDown  = 'z'
	KeyYawLeft   = 'q'
	KeyYawRight  = 'w'
	KeyPitchDown = 'i'
	KeyPitchUp   = 'k'
	KeyRollLeft  = 'j'
	KeyRollRight = 'l'
	KeyEscape    = 27
)

// Keyboard setpoints stay within a signed byte
const (
	keyMin = -128
	keyMax = 127
)

// applyKey adjusts the wire setpoint for one key. It reports false for keys
// that do not move a setpoint.
func applyKey(sp *protocol.Setpoint, key byte) bool {
	switch key {
	case KeyLiftUp:
		sp.Lift = stepKey(sp.Lift, 1)
	case KeyLiftDown:
		sp.Lift = stepKey(sp.Lift, -1)
	case KeyYawLeft:
		sp.Yaw = stepKey(sp.Yaw, -1)
	case KeyYawRight:
		sp.Yaw = stepKey(sp.Yaw, 1)
	case KeyPitchDown:
		sp.Pitch = stepKey(sp.Pitch, -1)
	case KeyPitchUp:
		sp.Pitch = stepKey(sp.Pitch, 1)
	case KeyRollLeft:
		sp.Roll = stepKey(sp.Roll, 1)
	case KeyRollRight:
		sp.Roll = stepKey(sp.Roll, -1)
	default:
		return false
	}
	return true
}

func stepKey(v, d int16) int16 {
	n := int32(v) + int32(d)
	if n > keyMax {
		return keyMax
	}
	if n < keyMin {
		return keyMin
	}
	return int16(n)
}
