package ir

import (
	"context"
	"sync/atomic"
	"time"

	"irlink-go/bus"
	"irlink-go/codec/manchester"
	"irlink-go/errcode"
	"irlink-go/types"
	"irlink-go/x/logx"
)

var TopicStatus = bus.T("ir", "status")

// Service assembles the link for one Config on one Board.
type Service struct {
	cfg   Config
	board Board
	log   *logx.Logger

	rep *Reporter
	rx  *Receiver
	tx  *Transmitter
	h   *Handler

	poller atomic.Pointer[Poller] // set once polling starts

	faults chan error
	ready  chan struct{}
}

// NewService validates cfg and builds the pipelines. Peripherals are not
// touched until Run.
func NewService(cfg Config, board Board, log *logx.Logger) (*Service, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, errcode.Wrap(errcode.InitFault, "ir.new", err)
	}
	s := &Service{
		cfg:    cfg,
		board:  board,
		log:    log,
		faults: make(chan error, 1),
		ready:  make(chan struct{}),
	}
	if cfg.Receives() {
		s.rep = NewReporter(cfg.ReportQueue)
		s.rx = NewReceiver(manchester.NewDecoder(cfg.DecoderConfig()), s.rep)
	}
	if cfg.Transmits() {
		s.tx = NewTransmitter(cfg.Order(), cfg.TicksPerHalfBit())
	}
	s.h = NewHandler(s.rx, s.tx, s.fault)
	return s, nil
}

func (s *Service) Config() Config { return s.cfg }

// Transmitter is nil unless the mode transmits.
func (s *Service) Transmitter() *Transmitter { return s.tx }

// Receiver is nil unless the mode receives.
func (s *Service) Receiver() *Receiver { return s.rx }

func (s *Service) Handler() *Handler { return s.h }

// Ready is closed once the peripherals are installed and the clock runs.
func (s *Service) Ready() <-chan struct{} { return s.ready }

// fault runs in the tick context; only the first fault is kept.
func (s *Service) fault(err error) {
	select {
	case s.faults <- err:
	default:
	}
}

// Run claims the peripherals and executes the configured mode until ctx is
// cancelled (nil) or a fault occurs. conn may be nil. Call it once.
func (s *Service) Run(ctx context.Context, conn *bus.Connection) error {
	if s.rep != nil {
		go s.rep.Run(ctx, s.log, conn)
	}
	if conn != nil && s.cfg.StatusMs > 0 {
		go s.statusLoop(ctx, conn)
	}
	if s.cfg.Interrupt() {
		return s.runInterrupt(ctx)
	}
	return s.runPolling(ctx)
}

func (s *Service) runPolling(ctx context.Context) error {
	line, err := s.board.InputLine(s.cfg.RxPin, s.cfg.Pull())
	if err != nil {
		return errcode.Wrap(errcode.InitFault, "ir.input", err)
	}
	clock, err := s.board.PollingClock(s.cfg.TickPeriod())
	if err != nil {
		return errcode.Wrap(errcode.InitFault, "ir.clock", err)
	}
	p := NewPoller(line, s.rx, clock)
	s.poller.Store(p)
	s.banner()
	close(s.ready)
	return p.Run(ctx)
}

func (s *Service) runInterrupt(ctx context.Context) error {
	var (
		line InputLine
		em   Actuator
		err  error
	)
	if s.cfg.Receives() {
		if line, err = s.board.InputLine(s.cfg.RxPin, s.cfg.Pull()); err != nil {
			return errcode.Wrap(errcode.InitFault, "ir.input", err)
		}
	}
	if s.cfg.Transmits() {
		if em, err = s.board.Emitter(s.cfg.TxPin, s.cfg.CarrierHz, s.cfg.DutyPct); err != nil {
			return errcode.Wrap(errcode.InitFault, "ir.emitter", err)
		}
		em.Deenergize()
	}
	clock, err := s.board.InterruptClock(s.cfg.TickPeriod(), s.h.Service)
	if err != nil {
		return errcode.Wrap(errcode.InitFault, "ir.clock", err)
	}
	s.h.Install(clock, line, em)
	if err := clock.Start(); err != nil {
		return errcode.Wrap(errcode.InitFault, "ir.clock", err)
	}
	s.banner()
	close(s.ready)

	select {
	case <-ctx.Done():
		return nil
	case err := <-s.faults:
		return err
	}
}

func (s *Service) banner() {
	if s.cfg.Receives() {
		s.log.Info("start receiving", "mode", string(s.cfg.Mode), "order", s.cfg.Order(),
			"tick", s.cfg.TickPeriod())
	}
	if s.cfg.Transmits() {
		s.log.Info("init done", "mode", string(s.cfg.Mode), "carrier_hz", s.cfg.CarrierHz,
			"duty", s.cfg.DutyPct)
	}
}

// Status snapshots all counters.
func (s *Service) Status() types.IRStatus {
	st := types.IRStatus{Mode: string(s.cfg.Mode), Ticks: s.h.Ticks()}
	if p := s.poller.Load(); p != nil {
		st.Ticks = p.Ticks()
	}
	if s.rx != nil {
		r := s.rx.Stats()
		st.Samples, st.Reported, st.Noise, st.Dropped = r.Samples, r.Reported, r.Noise, r.Dropped
	}
	if s.tx != nil {
		t := s.tx.Stats()
		st.Injected, st.Refused, st.Completed, st.Aborted = t.Injected, t.Refused, t.Completed, t.Aborted
	}
	return st
}

func (s *Service) statusLoop(ctx context.Context, conn *bus.Connection) {
	t := time.NewTicker(time.Duration(s.cfg.StatusMs) * time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			conn.Publish(conn.NewMessage(TopicStatus, s.Status(), true))
		}
	}
}
