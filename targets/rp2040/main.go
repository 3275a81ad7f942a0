//go:build tinygo && rp2040

package main

import (
	"machine"
	"time"

	"quadfc/config"
	"quadfc/core"
	"quadfc/logstore"
)

// rxQueueSize holds a little over one tick of bytes at 115200 baud
const rxQueueSize = 256

var (
	rx      = core.NewByteQueue(rxQueueSize)
	rxFault uint32
)

func main() {
	// Clear any watchdog left armed by the previous image
	_ = machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})

	cfg := config.Default()

	b, err := newBoard(cfg)
	if err != nil {
		for {
			println("board init:", err.Error())
			time.Sleep(time.Second)
		}
	}

	sys := core.NewSystem(cfg, b, logstore.NewMemoryStore(core.DefaultMemoryLogRecords))

	go rxLoop(b.uart)

	// A stalled control loop resets the board; motors stop on reset
	_ = machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 100})
	_ = machine.Watchdog.Start()

	period := time.Duration(cfg.Control.TickUS) * time.Microsecond
	next := time.Now().Add(period)
	for {
		sys.DrainQueue(rx)

		if now := time.Now(); !now.Before(next) {
			sys.Step()
			machine.Watchdog.Update()
			next = next.Add(period)
			if now.Sub(next) > period {
				// Overran by more than a tick; skip ahead instead of bursting
				next = now.Add(period)
			}
		}

		time.Sleep(100 * time.Microsecond)
	}
}

// rxLoop moves bytes from the UART's interrupt buffer into the queue the
// main loop drains
func rxLoop(uart *machine.UART) {
	defer func() {
		if r := recover(); r != nil {
			rxFault++
			time.Sleep(100 * time.Millisecond)
			go rxLoop(uart)
		}
	}()

	for {
		for uart.Buffered() > 0 {
			c, err := uart.ReadByte()
			if err != nil {
				break
			}
			rx.Push(c)
		}
		time.Sleep(200 * time.Microsecond)
	}
}
