//go:build !rp2040 && !rp2350

package board

import (
	"context"
	"errors"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"irlink-go/codec/manchester"
	"irlink-go/errcode"
	"irlink-go/services/ir"
)

// DefaultDevice selects the embedded configuration for this platform.
const DefaultDevice = "sim"

// BootDelay is how long main waits before logging.
const BootDelay time.Duration = 0

const maxPin = 29

// Open returns a real-time loopback simulation and stdout as console.
func Open() (ir.Board, io.Writer, error) {
	return NewSim(false, manchester.ActiveLow), os.Stdout, nil
}

// Sim is a host stand-in for the board. With loopback the receive line
// follows the emitter through the activity level, like an emitter facing
// its own receiver. Manual clocks tick only through Fire/Step.
type Sim struct {
	mu     sync.Mutex
	pins   pinSet
	manual bool

	Line  *SimLine
	Tx    *SimEmitter
	clock *SimClock
	ticks *SimTicks
}

// NewSim returns a loopback board.
func NewSim(manual bool, act manchester.ActivityLevel) *Sim {
	s := &Sim{manual: manual, Line: &SimLine{}, Tx: &SimEmitter{}}
	em := s.Tx
	s.Line.follow = func() bool { return em.On() != (act == manchester.ActiveLow) }
	return s
}

// NewDetached returns a board whose line is driven only through SimLine.Set.
func NewDetached(manual bool) *Sim {
	return &Sim{manual: manual, Line: &SimLine{}, Tx: &SimEmitter{}}
}

func (s *Sim) InputLine(pin int, _ ir.Pull) (ir.InputLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.pins.claim("board.input", pin, maxPin); err != nil {
		return nil, err
	}
	return s.Line, nil
}

func (s *Sim) Emitter(pin int, carrierHz uint32, dutyPct uint8) (ir.Actuator, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if carrierHz == 0 || dutyPct == 0 || dutyPct > 100 {
		return nil, &errcode.E{C: errcode.InitFault, Op: "board.emitter", Msg: "bad carrier"}
	}
	if err := s.pins.claim("board.emitter", pin, maxPin); err != nil {
		return nil, err
	}
	s.Tx.carrierHz, s.Tx.dutyPct = carrierHz, dutyPct
	return s.Tx, nil
}

func (s *Sim) InterruptClock(period time.Duration, isr func()) (ir.SampleClock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clock != nil || s.ticks != nil {
		return nil, &errcode.E{C: errcode.InitFault, Op: "board.clock", Msg: "timer in use"}
	}
	s.clock = &SimClock{period: period, isr: isr, manual: s.manual, stop: make(chan struct{})}
	return s.clock, nil
}

func (s *Sim) PollingClock(period time.Duration) (ir.TickSource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clock != nil || s.ticks != nil {
		return nil, &errcode.E{C: errcode.InitFault, Op: "board.clock", Msg: "timer in use"}
	}
	if s.manual {
		s.ticks = &SimTicks{c: make(chan struct{})}
	} else {
		s.ticks = &SimTicks{c: make(chan struct{}, 1), period: period, stopped: make(chan struct{})}
	}
	return s.ticks, nil
}

// Clock is the interrupt clock, nil until requested.
func (s *Sim) Clock() *SimClock {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clock
}

// Ticks is the polling clock, nil until requested.
func (s *Sim) Ticks() *SimTicks {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// ---- input line ----

type SimLine struct {
	level  atomic.Bool
	fault  atomic.Pointer[error]
	follow func() bool
}

func (l *SimLine) Level() (bool, error) {
	if e := l.fault.Load(); e != nil {
		return false, *e
	}
	if l.follow != nil {
		return l.follow(), nil
	}
	return l.level.Load(), nil
}

func (l *SimLine) Set(level bool) { l.level.Store(level) }

// Fail makes every later read return err.
func (l *SimLine) Fail(err error) {
	if err == nil {
		err = errors.New("line read failed")
	}
	l.fault.Store(&err)
}

// ---- emitter ----

type SimEmitter struct {
	on        atomic.Bool
	carrierHz uint32
	dutyPct   uint8

	mu      sync.Mutex
	record  bool
	history []bool
}

func (e *SimEmitter) Energize()   { e.set(true) }
func (e *SimEmitter) Deenergize() { e.set(false) }

func (e *SimEmitter) set(on bool) {
	e.on.Store(on)
	e.mu.Lock()
	if e.record {
		e.history = append(e.history, on)
	}
	e.mu.Unlock()
}

func (e *SimEmitter) On() bool { return e.on.Load() }

// Carrier reports how the emitter was configured.
func (e *SimEmitter) Carrier() (hz uint32, dutyPct uint8) { return e.carrierHz, e.dutyPct }


// Record starts keeping every drive call.
func (e *SimEmitter) Record() {
	e.mu.Lock()
	e.record = true
	e.history = e.history[:0]
	e.mu.Unlock()
}

// History returns the drive calls since Record, true for Energize.
func (e *SimEmitter) History() []bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]bool(nil), e.history...)
}

// ---- interrupt clock ----

// SimClock raises its isr every period once started. An interrupt not
// acknowledged through ClearPending is raised again immediately, up to a
// bound, as a level-triggered timer would.
type SimClock struct {
	period time.Duration
	isr    func()
	manual bool

	mu      sync.Mutex
	started bool
	stop    chan struct{}
	pending atomic.Bool
	cleared atomic.Uint32
	refired atomic.Uint32
}

const maxRefire = 8

func (c *SimClock) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return nil
	}
	c.started = true
	if !c.manual {
		go c.run()
	}
	return nil
}

func (c *SimClock) ClearPending() {
	c.pending.Store(false)
	c.cleared.Add(1)
}

// Fire raises one interrupt; it is a no-op before Start.
func (c *SimClock) Fire() {
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	if !started {
		return
	}
	c.pending.Store(true)
	c.isr()
	for i := 0; i < maxRefire && c.pending.Load(); i++ {
		c.refired.Add(1)
		c.isr()
	}
}

// Step fires n interrupts.
func (c *SimClock) Step(n int) {
	for i := 0; i < n; i++ {
		c.Fire()
	}
}

func (c *SimClock) Cleared() uint32       { return c.cleared.Load() }

// Refired counts interrupts raised again because they were left pending.
func (c *SimClock) Refired() uint32 { return c.refired.Load() }

// Stop ends a free-running clock.
func (c *SimClock) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	select {
	case <-c.stop:
	default:
		close(c.stop)
	}
}

func (c *SimClock) run() {
	t := time.NewTicker(c.period)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C:
			c.Fire()
		}
	}
}

// ---- polling clock ----

// SimTicks releases one Wait per tick. A free-running source starts its
// timer on the first Wait and stops it when that Wait's context ends; one
// tick is buffered, as on the hardware.
type SimTicks struct {
	c chan struct{}

	period  time.Duration // zero when stepped manually
	once    sync.Once
	stopped chan struct{}
}

func (t *SimTicks) Wait(ctx context.Context) error {
	if t.period > 0 {
		t.once.Do(func() { go t.run(ctx) })
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.c:
		return nil
	}
}

// Step releases one Wait, blocking until a waiter takes it or ctx ends.
func (t *SimTicks) Step(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case t.c <- struct{}{}:
		return nil
	}
}

func (t *SimTicks) run(ctx context.Context) {
	defer close(t.stopped)
	tk := time.NewTicker(t.period)
	defer tk.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tk.C:
			select {
			case t.c <- struct{}{}:
			default: // overrun
			}
		}
	}
}
