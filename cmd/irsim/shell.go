//go:build !rp2040 && !rp2350

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/shlex"

	"irlink-go/bus"
	"irlink-go/codec/manchester"
	"irlink-go/errcode"
	"irlink-go/services/ir"
	"irlink-go/services/ir/board"
	"irlink-go/types"
	"irlink-go/x/logx"
)

var errQuit = errors.New("quit")

const usage = `commands:
  send <bits>     inject a datagram, e.g. send 0101_0011
  tick [n]        advance the sampling clock n ticks (default 1)
  rx [ms]         wait up to ms (default 100) for a received datagram
  stats           show counters
  level           show emitter and line levels
  help            this text
  quit`

// shell drives a loopback board one tick at a time.
type shell struct {
	sim *board.Sim
	svc *ir.Service
	rx  *bus.Subscription
	out io.Writer
}

func newShell(ctx context.Context, cfg ir.Config, log *logx.Logger, out io.Writer) (*shell, error) {
	cfg = cfg.WithDefaults()
	sim := board.NewSim(true, cfg.DecoderConfig().Activity)
	bs := bus.NewBus(16)
	conn := bs.NewConnection("irsim")

	svc, err := ir.NewService(cfg, sim, log)
	if err != nil {
		return nil, err
	}
	sh := &shell{sim: sim, svc: svc, rx: conn.Subscribe(ir.TopicRxDatagram), out: out}

	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx, conn) }()
	select {
	case <-svc.Ready():
		return sh, nil
	case err := <-done:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// exec runs one command line.
func (s *shell) exec(line string) error {
	args, err := shlex.Split(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	return s.run(args[0], args[1:])
}

func (s *shell) run(cmd string, rest []string) error {
	switch cmd {
	case "help":
		fmt.Fprintln(s.out, usage)
	case "quit", "exit":
		return errQuit
	case "send":
		return s.send(rest)
	case "tick":
		return s.tick(rest)
	case "rx":
		return s.recv(rest)
	case "stats":
		st := s.svc.Status()
		fmt.Fprintf(s.out, "ticks=%d samples=%d reported=%d noise=%d dropped=%d injected=%d refused=%d completed=%d aborted=%d\n",
			st.Ticks, st.Samples, st.Reported, st.Noise, st.Dropped, st.Injected, st.Refused, st.Completed, st.Aborted)
	case "level":
		line, _ := s.sim.Line.Level()
		fmt.Fprintf(s.out, "emitter=%t line=%t\n", s.sim.Tx.On(), line)
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
	return nil
}

func (s *shell) send(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: send <bits>")
	}
	d, err := manchester.ParseDatagram(args[0])
	if err != nil {
		return err
	}
	tx := s.svc.Transmitter()
	if tx == nil {
		return &errcode.E{C: errcode.NotReady, Op: "send", Msg: "mode does not transmit"}
	}
	if !tx.Send(d) {
		return &errcode.E{C: errcode.Occupied, Op: "send", Msg: "transmission in progress"}
	}
	ticks := s.svc.Config().TicksPerHalfBit() * manchester.HalfBits(d)
	fmt.Fprintf(s.out, "queued %s (%d ticks)\n", d, ticks)
	return nil
}

func count(args []string, def int) (int, error) {
	if len(args) == 0 {
		return def, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("bad count %q", args[0])
	}
	return n, nil
}

func (s *shell) tick(args []string) error {
	n, err := count(args, 1)
	if err != nil {
		return err
	}
	s.sim.Clock().Step(n)
	fmt.Fprintf(s.out, "ticks=%d\n", s.svc.Handler().Ticks())
	return nil
}

func (s *shell) recv(args []string) error {
	ms, err := count(args, 100)
	if err != nil {
		return err
	}
	select {
	case m := <-s.rx.Channel():
		ev := m.Payload.(types.DatagramEvent)
		fmt.Fprintf(s.out, "rx %s len=%d value=%#x\n", ev.Bits, ev.Len, ev.Value)
	case <-time.After(time.Duration(ms) * time.Millisecond):
		fmt.Fprintln(s.out, "rx none")
	}
	return nil
}
