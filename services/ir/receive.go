package ir

import (
	"sync/atomic"

	"irlink-go/codec/manchester"
)

// RxStats is a snapshot of receive counters.
type RxStats struct {
	Samples  uint32
	Reported uint32
	Noise    uint32 // completed results at or below MinDatagramLen
	Dropped  uint32 // refused by the sink
}

// Receiver feeds samples to a decoder and reports real datagrams.
// Feed is called from exactly one context; Stats may be read from any.
type Receiver struct {
	dec  Decoder
	sink Sink

	samples  atomic.Uint32
	reported atomic.Uint32
	noise    atomic.Uint32
	dropped  atomic.Uint32
}

func NewReceiver(dec Decoder, sink Sink) *Receiver {
	return &Receiver{dec: dec, sink: sink}
}

// Feed consumes one sample, in tick order.
func (r *Receiver) Feed(level bool) {
	r.samples.Add(1)
	d, ok := r.dec.Next(level)
	if !ok {
		return
	}
	r.filter(d)
}

func (r *Receiver) filter(d manchester.Datagram) {
	if d.Len() <= MinDatagramLen {
		r.noise.Add(1)
		return
	}
	if r.sink.Report(d) {
		r.reported.Add(1)
	} else {
		r.dropped.Add(1)
	}
}

func (r *Receiver) Stats() RxStats {
	return RxStats{
		Samples:  r.samples.Load(),
		Reported: r.reported.Load(),
		Noise:    r.noise.Load(),
		Dropped:  r.dropped.Load(),
	}
}
