package sim

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"quadfc/core"
)

// Runner serves a simulated craft over a byte stream. Received bytes go
// straight to the system and the control loop ticks on a wall clock
// while the simulated clock advances by tickUS per step.
type Runner struct {
	sys    *core.System
	hal    *HAL
	port   io.ReadWriter
	tickUS uint32
	period time.Duration

	wmu sync.Mutex

	// OnTick runs after every control step when set
	OnTick func(ticks uint64)
}

// NewRunner wires sys and hal to port
func NewRunner(sys *core.System, hal *HAL, port io.ReadWriter, tickUS uint32, period time.Duration) *Runner {
	return &Runner{
		sys:    sys,
		hal:    hal,
		port:   port,
		tickUS: tickUS,
		period: period,
	}
}

// Run ticks until ctx is done or the port fails
func (r *Runner) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go r.readLoop(errc)

	ticker := time.NewTicker(r.period)
	defer ticker.Stop()

	var ticks uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errc:
			return err
		case <-ticker.C:
			r.hal.Advance(r.tickUS)
			r.sys.Step()
			ticks++
			if err := r.flush(); err != nil {
				return err
			}
			if r.OnTick != nil {
				r.OnTick(ticks)
			}
		}
	}
}

func (r *Runner) readLoop(errc chan<- error) {
	buf := make([]byte, 256)
	for {
		n, err := r.port.Read(buf)
		if n > 0 {
			r.sys.Receive(buf[:n])
			if ferr := r.flush(); ferr != nil {
				errc <- ferr
				return
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				err = io.ErrUnexpectedEOF
			}
			errc <- fmt.Errorf("sim read: %w", err)
			return
		}
	}
}

// flush writes out everything the craft transmitted
func (r *Runner) flush() error {
	r.wmu.Lock()
	defer r.wmu.Unlock()

	tx := r.hal.TakeTx()
	if len(tx) == 0 {
		return nil
	}
	if _, err := r.port.Write(tx); err != nil {
		return fmt.Errorf("sim write: %w", err)
	}
	return nil
}
