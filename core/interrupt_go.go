//go:build !tinygo

package core

import "sync"

// On a hosted runtime the byte producer is a goroutine, so the critical
// section is a plain lock.
var interruptLock sync.Mutex

type interruptState struct{}

func disableInterrupts() interruptState {
	interruptLock.Lock()
	return interruptState{}
}

func restoreInterrupts(interruptState) {
	interruptLock.Unlock()
}
