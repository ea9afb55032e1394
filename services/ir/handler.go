package ir

import (
	"sync/atomic"

	"irlink-go/x/critical"
)

// Handler is the interrupt-context tick. The peripherals it touches are
// moved into its slots once by Install and stay there; every tick borrows
// them inside one critical section.
type Handler struct {
	clock   critical.Slot[SampleClock]
	line    critical.Slot[InputLine]
	emitter critical.Slot[Actuator]

	rx *Receiver    // nil when not receiving
	tx *Transmitter // nil when not transmitting

	onFault func(error)
	ticks   atomic.Uint32
}

// NewHandler wires the tick to rx and tx, either of which may be nil.
// onFault receives sampling faults; nil panics.
func NewHandler(rx *Receiver, tx *Transmitter, onFault func(error)) *Handler {
	if onFault == nil {
		onFault = func(err error) { panic(err) }
	}
	return &Handler{rx: rx, tx: tx, onFault: onFault}
}

// Install hands the peripherals over to the handler. Nil handles leave
// their slot empty. It must complete before the clock is started.
func (h *Handler) Install(clock SampleClock, line InputLine, emitter Actuator) {
	critical.Free(func(cs critical.CS) {
		if clock != nil {
			h.clock.Replace(cs, clock)
		}
		if line != nil {
			h.line.Replace(cs, line)
		}
		if emitter != nil {
			h.emitter.Replace(cs, emitter)
		}
	})
}

// Service runs one tick: acknowledge the interrupt, sample, then drive.
// With an empty clock slot it does nothing, not even acknowledge. A
// sampling fault de-energizes the emitter and drops the active job.
func (h *Handler) Service() {
	var fault error
	critical.Free(func(cs critical.CS) {
		clk, ok := h.clock.Borrow(cs)
		if !ok {
			return
		}
		(*clk).ClearPending()
		h.ticks.Add(1)

		act, hasAct := h.emitter.Borrow(cs)
		if line, ok := h.line.Borrow(cs); ok && h.rx != nil {
			if fault = sample(*line, h.rx); fault != nil {
				// The board halts on a fault; the carrier must not stay gated on.
				if hasAct {
					(*act).Deenergize()
				}
				if h.tx != nil {
					h.tx.abort(cs)
				}
				return
			}
		}
		if hasAct && h.tx != nil {
			h.tx.step(cs, *act)
		}
	})
	if fault != nil {
		h.onFault(fault)
	}
}

// Ticks counts acknowledged interrupts.
func (h *Handler) Ticks() uint32 { return h.ticks.Load() }
