package main

import (
	"context"
	"flag"
	"io"
	"log"
	"net"
	"os"
	"os/signal"
	"time"

	"quadfc/config"
	"quadfc/core"
	"quadfc/host/serial"
	"quadfc/logstore"
	"quadfc/sim"
)

var (
	configPath = flag.String("config", "", "Controller configuration (.yaml or .json)")
	device     = flag.String("device", "", "Serial device to serve the craft on")
	listen     = flag.String("listen", "", "TCP address to serve the craft on instead of a serial device")
	speed      = flag.Float64("speed", 1, "Simulation speed relative to wall time")
	dump       = flag.Duration("dump", 0, "Interval between state dumps, 0 to disable")
	debug      = flag.Bool("debug", false, "Send debug text to the ground station")
)

func main() {
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("config: %v", err)
		}
	}
	cfg.TestDevice = true

	port, err := openPort(cfg)
	if err != nil {
		log.Fatalf("port: %v", err)
	}
	defer port.Close()

	hal := sim.NewHAL(sim.NewPlant(sim.DefaultParams()), cfg)
	store, err := logstore.NewFlashStore(hal.Flash())
	if err != nil {
		log.Fatalf("log store: %v", err)
	}
	sys := core.NewSystem(cfg, hal, store)
	sys.Debug().SetEnabled(*debug)

	period := time.Duration(float64(cfg.Control.TickUS)/(*speed)) * time.Microsecond
	runner := sim.NewRunner(sys, hal, port, cfg.Control.TickUS, period)

	if *dump > 0 {
		every := uint64(*dump / (time.Duration(cfg.Control.TickUS) * time.Microsecond))
		if every == 0 {
			every = 1
		}
		resets := 0
		runner.OnTick = func(ticks uint64) {
			if n := hal.Resets(); n != resets {
				resets = n
				log.Printf("craft rebooted (%d)", n)
			}
			if ticks%every != 0 {
				return
			}
			alt, phi, theta, psi := hal.Pose()
			ae, on := hal.Motors()
			log.Printf("mode=%s alt=%.2fm phi=%.3f theta=%.3f psi=%.3f ae=%v on=%v",
				sys.Mode(), alt, phi, theta, psi, ae, on)
			sys.DumpState()
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("simulated craft running, tick %v", period)
	if err := runner.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatalf("sim: %v", err)
	}
}

func openPort(cfg *config.Config) (io.ReadWriteCloser, error) {
	if *listen != "" {
		ln, err := net.Listen("tcp", *listen)
		if err != nil {
			return nil, err
		}
		defer ln.Close()
		log.Printf("waiting for a ground station on %s", ln.Addr())
		return ln.Accept()
	}

	sc := serial.FromLink(cfg.Link)
	if *device != "" {
		sc.Device = *device
	}
	return serial.Open(sc)
}
