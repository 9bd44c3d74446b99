// Command robotctl sends one command to a running simulator and prints
// the ack.
//
//	robotctl move distance=1 linear_speed=0.4
//	robotctl -addr 10.0.0.5:5555 stop duration=2
//	robotctl -discover            # list simulators on the LAN
//	robotctl -discover turn angle=1.57
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/edaniels/golog"

	"github.com/elektrokombinacija/diffdrive-sim/internal/command"
	"github.com/elektrokombinacija/diffdrive-sim/internal/discovery"
	"github.com/elektrokombinacija/diffdrive-sim/internal/transport"
)

func main() {
	addr := flag.String("addr", fmt.Sprintf("127.0.0.1:%d", transport.DefaultPort), "Simulator UDP address")
	discover := flag.Bool("discover", false, "Find simulators over mDNS; sends to the first one found")
	timeout := flag.Duration("timeout", 2*time.Second, "Ack and discovery timeout")
	noWait := flag.Bool("no-wait", false, "Send without waiting for an ack")
	flag.Parse()

	logger := golog.NewLogger("robotctl")
	if err := run(logger, *addr, *discover, *timeout, *noWait, flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(logger golog.Logger, addr string, discover bool, timeout time.Duration, noWait bool, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if discover {
		endpoints, err := discovery.Browse(ctx, timeout, logger)
		if err != nil {
			return err
		}
		if len(args) == 0 {
			for _, e := range endpoints {
				fmt.Printf("%-24s %-22s scenario=%s version=%s\n", e.Instance, e, e.Scenario, e.Version)
			}
			if len(endpoints) == 0 {
				fmt.Println("(none)")
			}
			return nil
		}
		if len(endpoints) == 0 {
			return errors.New("no simulators found")
		}
		addr = endpoints[0].String()
		// Discovery used part of the budget; the ack gets a fresh one.
		ctx, cancel = context.WithTimeout(context.Background(), timeout)
		defer cancel()
	}

	msg, err := parseArgs(args)
	if err != nil {
		return err
	}

	if noWait {
		return transport.Send(addr, msg)
	}

	ack, err := transport.Request(ctx, addr, msg)
	if err != nil {
		return err
	}
	if ack.Status == transport.StatusRejected {
		return fmt.Errorf("rejected by %s: %s", addr, ack.Error)
	}
	fmt.Printf("%s %s (%s)\n", ack.Status, ack.ID, addr)
	return nil
}

// parseArgs rebuilds a command line from the arguments, quoting each so
// shell-split arguments survive the round trip.
func parseArgs(args []string) (command.Message, error) {
	if len(args) == 0 {
		return command.Message{}, errors.New("no command given (move, turn or stop)")
	}
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = quote(a)
	}
	return command.ParseLine(strings.Join(quoted, " "))
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
