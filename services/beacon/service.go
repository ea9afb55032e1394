// Package beacon re-sends one datagram on a fixed cadence. A send is only
// attempted while the transmitter is idle, so a frame is never cut short.
package beacon

import (
	"context"
	"time"

	"irlink-go/bus"
	"irlink-go/codec/manchester"
	"irlink-go/services/config"
	"irlink-go/types"
	"irlink-go/x/logx"
	"irlink-go/x/timex"
)

var (
	topicConfigBeacon = config.Topic("beacon")
	TopicInjected     = bus.T("ir", "tx", "injected")
)

// Injector accepts a datagram only when no transmission is in progress.
type Injector interface {
	Send(d manchester.Datagram) bool
}

type Config struct {
	IntervalMs uint32 `json:"interval_ms"` // 0 pauses the beacon
	Datagram   string `json:"datagram"`
}

func DefaultConfig() Config {
	return Config{IntervalMs: 1000, Datagram: "0101_0011_0111_0001"}
}

type Service struct {
	tx  Injector
	log *logx.Logger

	cfg Config
	d   manchester.Datagram
}

func New(tx Injector, log *logx.Logger) *Service {
	s := &Service{tx: tx, log: log}
	_ = s.apply(DefaultConfig())
	return s
}

func (s *Service) apply(c Config) error {
	d, err := manchester.ParseDatagram(c.Datagram)
	if err != nil {
		return err
	}
	s.cfg, s.d = c, d
	return nil
}

// attempt tries one send; it reports whether the datagram was accepted.
func (s *Service) attempt(conn *bus.Connection) bool {
	s.log.Info("send datagram", "bits", s.d)
	if !s.tx.Send(s.d) {
		s.log.Debug("transmitter busy")
		return false
	}
	if conn != nil {
		conn.Publish(conn.NewMessage(TopicInjected, types.TxInjected{
			Bits: s.d.String(),
			TSms: timex.NowMs(),
		}, false))
	}
	return true
}

func (s *Service) interval() time.Duration {
	if s.cfg.IntervalMs == 0 {
		return time.Hour
	}
	return time.Duration(s.cfg.IntervalMs) * time.Millisecond
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfigBeacon)
	defer conn.Unsubscribe(cfgSub)

	tick := time.NewTicker(s.interval())
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("stopping")
			return
		case <-tick.C:
			if s.cfg.IntervalMs > 0 {
				s.attempt(conn)
			}
		case msg := <-cfgSub.Channel():
			c := s.cfg
			if err := config.Decode(msg.Payload, &c); err != nil {
				s.log.Warn("bad config", "err", err)
				continue
			}
			if err := s.apply(c); err != nil {
				s.log.Warn("bad datagram", "err", err)
				continue
			}
			tick.Reset(s.interval())
			s.log.Info("configured", "interval_ms", s.cfg.IntervalMs, "bits", s.d)
		}
	}
}

// Start the beacon service.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	go s.serviceLoop(ctx, conn)
}
