package ir

import (
	"sync/atomic"

	"irlink-go/codec/manchester"
	"irlink-go/x/critical"
)

// Levels is a finite sequence of drive levels, one per tick.
type Levels interface {
	Next() (level, ok bool)
}

// TransmitJob is an in-flight transmission.
type TransmitJob struct {
	src Levels
}

func NewTransmitJob(src Levels) TransmitJob { return TransmitJob{src: src} }

func (j *TransmitJob) next() (bool, bool) {
	if j.src == nil {
		return false, false
	}
	return j.src.Next()
}

// TxStats is a snapshot of transmit counters.
type TxStats struct {
	Injected  uint32
	Refused   uint32 // injection found the slot occupied
	Completed uint32
	Aborted   uint32 // dropped on a peripheral fault
}

// Transmitter owns the transmit slot. The main context injects; the tick
// drives and retires. There is no queue and no pre-emption: a job runs to
// exhaustion and a new one is accepted only once the slot is empty.
type Transmitter struct {
	job critical.Slot[TransmitJob]

	// Storage reused by Send; only referenced by the job in the slot.
	enc  manchester.Encoder
	held held

	order manchester.BitOrder
	hold  int

	injected  atomic.Uint32
	refused   atomic.Uint32
	completed atomic.Uint32
	aborted   atomic.Uint32
}

// NewTransmitter returns an idle transmitter. Each half-bit level is held
// for ticksPerHalfBit ticks (1 when the tick is the half-bit period).
func NewTransmitter(order manchester.BitOrder, ticksPerHalfBit int) *Transmitter {
	if ticksPerHalfBit < 1 {
		ticksPerHalfBit = 1
	}
	return &Transmitter{order: order, hold: ticksPerHalfBit}
}

// Inject places job in the slot if, and only if, it is empty.
func (t *Transmitter) Inject(job TransmitJob) bool {
	var ok bool
	critical.Free(func(cs critical.CS) {
		ok = t.job.TryPut(cs, job)
	})
	t.count(ok)
	return ok
}

// Send encodes d into the transmitter's own storage and injects it. It
// does not allocate, so it can be called on a fixed cadence indefinitely.
func (t *Transmitter) Send(d manchester.Datagram) bool {
	var ok bool
	critical.Free(func(cs critical.CS) {
		if t.job.Full(cs) {
			return
		}
		t.enc.Reset(d, t.order)
		t.held = held{src: &t.enc, n: t.hold}
		ok = t.job.TryPut(cs, TransmitJob{src: &t.held})
	})
	t.count(ok)
	return ok
}

func (t *Transmitter) count(ok bool) {
	if ok {
		t.injected.Add(1)
	} else {
		t.refused.Add(1)
	}
}

// Active reports whether a job occupies the slot.
func (t *Transmitter) Active() bool {
	var full bool
	critical.Free(func(cs critical.CS) { full = t.job.Full(cs) })
	return full
}

// step runs one tick of the active job, if any. The caller holds cs.
func (t *Transmitter) step(cs critical.CS, act Actuator) {
	more, ok := critical.WithMut(cs, &t.job, func(j *TransmitJob) bool {
		return drive(act, j)
	})
	if ok && !more {
		t.job.Clear(cs)
		t.completed.Add(1)
	}
}

// abort drops the active job, if any. The caller holds cs and has already
// de-energized the emitter.
func (t *Transmitter) abort(cs critical.CS) {
	if _, ok := t.job.Take(cs); ok {
		t.aborted.Add(1)
	}
}

func (t *Transmitter) Stats() TxStats {
	return TxStats{
		Injected:  t.injected.Load(),
		Refused:   t.refused.Load(),
		Completed: t.completed.Load(),
		Aborted:   t.aborted.Load(),
	}
}

// held repeats every level of src n times.
type held struct {
	src   Levels
	n     int
	left  int
	level bool
}

func (h *held) Next() (bool, bool) {
	if h.left == 0 {
		l, ok := h.src.Next()
		if !ok {
			return false, false
		}
		h.level, h.left = l, h.n
	}
	h.left--
	return h.level, true
}
