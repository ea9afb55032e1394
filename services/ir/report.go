package ir

import (
	"context"
	"sync/atomic"

	"irlink-go/bus"
	"irlink-go/codec/manchester"
	"irlink-go/types"
	"irlink-go/x/logx"
	"irlink-go/x/timex"
)

var TopicRxDatagram = bus.T("ir", "rx", "datagram")

// Reporter hands datagrams from the tick over to the main context, where
// they are logged and published. Report never blocks; a full queue drops.
type Reporter struct {
	ch    chan manchester.Datagram
	drops atomic.Uint32
}

func NewReporter(depth int) *Reporter {
	if depth < 1 {
		depth = 1
	}
	return &Reporter{ch: make(chan manchester.Datagram, depth)}
}

func (r *Reporter) Report(d manchester.Datagram) bool {
	select {
	case r.ch <- d:
		return true
	default:
		r.drops.Add(1)
		return false
	}
}

func (r *Reporter) Drops() uint32 { return r.drops.Load() }

// Run drains the queue until ctx ends. conn may be nil.
func (r *Reporter) Run(ctx context.Context, log *logx.Logger, conn *bus.Connection) {
	for {
		select {
		case <-ctx.Done():
			return
		case d := <-r.ch:
			log.Info("received", "bits", d, "len", d.Len())
			if conn == nil {
				continue
			}
			conn.Publish(conn.NewMessage(TopicRxDatagram, types.DatagramEvent{
				Bits:  d.String(),
				Len:   d.Len(),
				Value: d.Uint64(),
				TSms:  timex.NowMs(),
			}, false))
		}
	}
}
