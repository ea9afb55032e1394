package ir

import (
	"context"
	"errors"
	"sync/atomic"
)

// Poller is the main-context tick: sample, then block until the next tick.
// It owns its peripherals outright.
type Poller struct {
	line  InputLine
	rx    *Receiver
	clock TickSource
	ticks atomic.Uint32
}

func NewPoller(line InputLine, rx *Receiver, clock TickSource) *Poller {
	return &Poller{line: line, rx: rx, clock: clock}
}

// Run loops until ctx ends (nil) or a peripheral fails.
func (p *Poller) Run(ctx context.Context) error {
	for {
		if err := sample(p.line, p.rx); err != nil {
			return err
		}
		if err := p.clock.Wait(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		p.ticks.Add(1)
	}
}

// Ticks counts elapsed ticks.
func (p *Poller) Ticks() uint32 { return p.ticks.Load() }
