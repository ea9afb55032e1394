//go:build !rp2040 && !rp2350

// Command irsim runs the infrared link on a simulated loopback board and
// steps it from an interactive shell.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"irlink-go/services/ir"
	"irlink-go/x/logx"
)

var (
	oversample = flag.Int("oversample", ir.DefaultOversample, "receive samples per half-bit")
	activity   = flag.String("activity", "low", "receiver activity level: low or high")
	order      = flag.String("order", "big", "bit order: big or little")
	evalOnly   = flag.Bool("e", false, "read commands from stdin, no interactive shell")
)

var commands = []struct{ name, help string }{
	{"send", "BITS, inject a datagram"},
	{"tick", "[N], advance the sampling clock"},
	{"rx", "[MS], wait for a received datagram"},
	{"stats", "show counters"},
	{"level", "show emitter and line levels"},
}

func main() {
	flag.Parse()
	defer glog.Flush()

	cfg := ir.DefaultConfig()
	cfg.Mode, cfg.RxPin, cfg.TxPin = ir.ModeISRTrx, 15, 16
	cfg.Oversample, cfg.Activity, cfg.BitOrder = *oversample, *activity, *order

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sh, err := newShell(ctx, cfg, logx.New("ir"), os.Stdout)
	if err != nil {
		glog.Exitf("irsim: %v", err)
	}

	if *evalOnly {
		script(sh)
		return
	}

	is := ishell.New()
	for _, c := range commands {
		name := c.name
		is.AddCmd(&ishell.Cmd{
			Name: name,
			Help: c.help,
			Func: func(c *ishell.Context) {
				if err := sh.run(name, c.Args); err != nil {
					c.Err(err)
				}
			},
		})
	}
	if args := flag.Args(); len(args) > 0 {
		if err := is.Process(args...); err != nil {
			glog.Exit(err)
		}
		return
	}
	is.Run()
}

func script(sh *shell) {
	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		if err := sh.exec(in.Text()); err != nil {
			if errors.Is(err, errQuit) {
				return
			}
			fmt.Fprintln(os.Stderr, "error:", err)
		}
	}
}
