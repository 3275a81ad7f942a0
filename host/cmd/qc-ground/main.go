package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/shlex"

	"quadfc/config"
	"quadfc/core"
	"quadfc/host/link"
	"quadfc/host/serial"
	"quadfc/modes"
	"quadfc/protocol"
)

var (
	configPath = flag.String("config", "", "Controller configuration (.yaml or .json)")
	device     = flag.String("device", "", "Serial device path (overrides the configuration)")
	addr       = flag.String("addr", "", "TCP address of a simulated craft instead of a serial device")
	baud       = flag.Int("baud", 0, "Baud rate (overrides the configuration)")
	keepAlive  = flag.Duration("keepalive", 200*time.Millisecond, "Keep-alive interval, 0 to disable")
	verbose    = flag.Bool("verbose", false, "Print every received frame")
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
	port := serial.FromLink(cfg.Link)
	if *device != "" {
		port.Device = *device
	}
	if *baud != 0 {
		port.Baud = *baud
	}

	fmt.Println("Quadcopter ground station")
	fmt.Println("=========================")
	l, err := connect(port)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer l.Close()

	var monitor atomic.Bool
	monitor.Store(true)
	l.SetHandler(func(msg *protocol.Message) {
		if monitor.Load() || msg.ID == protocol.IDText || msg.ID == protocol.IDStatus || *verbose {
			fmt.Printf("\r< %s\n", link.Describe(msg))
		}
	})

	if err := l.Sync(2 * time.Second); err != nil {
		log.Fatalf("connect: %v", err)
	}
	fmt.Println("Connected.")

	if *keepAlive > 0 {
		go func() {
			t := time.NewTicker(*keepAlive)
			defer t.Stop()
			for range t.C {
				if err := l.KeepAlive(); err != nil {
					return
				}
			}
		}()
	}

	g := &ground{link: l, monitor: &monitor}

	fmt.Println("Enter commands (type 'help' for available commands, 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		args, err := shlex.Split(scanner.Text())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if len(args) == 0 {
			continue
		}
		if args[0] == "quit" || args[0] == "exit" || args[0] == "q" {
			return
		}
		if err := g.run(args[0], args[1:]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}

	if err := scanner.Err(); err != nil {
		log.Fatalf("reading input: %v", err)
	}
}

func connect(port *serial.Config) (*link.Link, error) {
	if *addr != "" {
		fmt.Printf("Connecting to simulator at %s...\n", *addr)
		conn, err := net.Dial("tcp", *addr)
		if err != nil {
			return nil, err
		}
		return link.New(conn), nil
	}
	fmt.Printf("Connecting to %s at %d baud...\n", port.Device, port.Baud)
	return link.Dial(port)
}

type ground struct {
	link    *link.Link
	monitor *atomic.Bool
	sp      protocol.Setpoint
}

func (g *ground) run(cmd string, args []string) error {
	switch cmd {
	case "help", "?":
		printHelp()
		return nil

	case "mode":
		if len(args) != 1 {
			return fmt.Errorf("usage: mode <safe|panic|manual|calibrate|yaw|full>")
		}
		id, err := parseMode(args[0])
		if err != nil {
			return err
		}
		return g.link.SetMode(uint8(id), time.Second)

	case "lift", "roll", "pitch", "yaw":
		if len(args) != 1 {
			return fmt.Errorf("usage: %s <value>", cmd)
		}
		v, err := parseInt16(args[0])
		if err != nil {
			return err
		}
		switch cmd {
		case "lift":
			g.sp.Lift = v
		case "roll":
			g.sp.Roll = v
		case "pitch":
			g.sp.Pitch = v
		case "yaw":
			g.sp.Yaw = v
		}
		return g.link.SetSetpoint(g.sp)

	case "trim":
		if len(args) != 3 {
			return fmt.Errorf("usage: trim <p1> <p2> <yaw>")
		}
		var v [3]int16
		for i, a := range args {
			n, err := parseInt16(a)
			if err != nil {
				return err
			}
			v[i] = n
		}
		return g.link.SetTrim(protocol.Trim{P1: v[0], P2: v[1], YawP: v[2]})

	case "key":
		if len(args) != 1 {
			return fmt.Errorf("usage: key <a|z|q|w|i|k|j|l|esc>")
		}
		k := args[0]
		if k == "esc" {
			return g.link.Key(core.KeyEscape)
		}
		if len(k) != 1 {
			return fmt.Errorf("key %q: one character expected", k)
		}
		return g.link.Key(k[0])

	case "panic":
		return g.link.Key(core.KeyEscape)

	case "option":
		if len(args) != 2 {
			return fmt.Errorf("usage: option <motors|raw|height|wireless> <on|off|toggle>")
		}
		num, err := parseOption(args[0])
		if err != nil {
			return err
		}
		switch args[1] {
		case "on":
			return g.link.SetOption(num, true)
		case "off":
			return g.link.SetOption(num, false)
		case "toggle":
			return g.link.ToggleOption(num)
		}
		return fmt.Errorf("option value %q: on, off or toggle expected", args[1])

	case "tele":
		mask, err := link.ChannelMask(args...)
		if err != nil {
			return err
		}
		return g.link.SetTelemetryMask(mask)

	case "monitor":
		g.monitor.Store(!g.monitor.Load())
		fmt.Printf("Monitor %v\n", g.monitor.Load())
		return nil

	case "logmask":
		mask, err := link.ChannelMask(args...)
		if err != nil {
			return err
		}
		return g.link.SetLogMask(mask)

	case "log":
		return g.logCommand(args)

	case "stats":
		st := g.link.Stats()
		fmt.Printf("Frames %d, checksum errors %d, resyncs %d, floods %d\n", st.Received, st.ChecksumErrors, st.Resyncs, st.Floods)
		return nil

	case "reboot":
		return g.link.Reboot()
	}
	return fmt.Errorf("unknown command: %s (type 'help' for available commands)", cmd)
}

func (g *ground) logCommand(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: log <start|stop|erase|read [file]>")
	}

	switch args[0] {
	case "start":
		return g.link.LogControl(protocol.LogStart)
	case "stop":
		return g.link.LogControl(protocol.LogStop)
	case "erase":
		return g.link.LogControl(protocol.LogErase)
	case "read":
		was := g.monitor.Swap(false)
		defer g.monitor.Store(was)

		records, err := g.link.ReadLog(time.Second)
		if err != nil {
			return err
		}
		fmt.Printf("Read %d records\n", len(records))
		if len(args) < 2 {
			return link.WriteLog(os.Stdout, records)
		}

		f, err := os.Create(args[1])
		if err != nil {
			return fmt.Errorf("log file: %w", err)
		}
		defer f.Close()
		if err := link.WriteLog(f, records); err != nil {
			return err
		}
		fmt.Printf("Saved to %s\n", args[1])
		return nil
	}
	return fmt.Errorf("unknown log command %q", args[0])
}

func parseMode(s string) (modes.ID, error) {
	for id := modes.Safe; id < modes.Count; id++ {
		if id.String() == s {
			return id, nil
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || !modes.ID(n).Valid() {
		return 0, fmt.Errorf("unknown mode %q", s)
	}
	return modes.ID(n), nil
}

func parseOption(s string) (uint16, error) {
	switch strings.ToLower(s) {
	case "motors":
		return protocol.OptionMotors, nil
	case "raw":
		return protocol.OptionRaw, nil
	case "height":
		return protocol.OptionHeight, nil
	case "wireless":
		return protocol.OptionWireless, nil
	}
	return 0, fmt.Errorf("unknown option %q", s)
}

func parseInt16(s string) (int16, error) {
	n, err := strconv.ParseInt(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("value %q: %w", s, err)
	}
	return int16(n), nil
}

func printHelp() {
	fmt.Println("\nAvailable commands:")
	fmt.Println("  mode <name>                  - Request a flight mode (safe panic manual calibrate yaw full)")
	fmt.Println("  lift|roll|pitch|yaw <value>  - Set one setpoint axis in wire units")
	fmt.Println("  trim <p1> <p2> <yaw>         - Set the gain trims")
	fmt.Println("  key <k>                      - Send a keyboard code (a z q w i k j l esc)")
	fmt.Println("  panic                        - Force panic")
	fmt.Println("  option <name> <on|off|toggle>- Set an option (motors raw height wireless)")
	fmt.Println("  tele [channels...]           - Select telemetry channels (none turns it off)")
	fmt.Println("  monitor                      - Toggle printing of telemetry")
	fmt.Println("  logmask [channels...]        - Select logged channels")
	fmt.Println("  log start|stop|erase         - Control the on-board log")
	fmt.Println("  log read [file]              - Read the log back as YAML")
	fmt.Println("  stats                        - Show link counters")
	fmt.Println("  reboot                       - Restart the craft")
	fmt.Println("  quit/exit/q                  - Exit the program")
	fmt.Println()
}
