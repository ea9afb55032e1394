// Package ir samples and drives a Manchester-coded infrared link from a
// fixed-period tick.
//
// The tick comes either from a timer interrupt (Handler) or from a main
// loop that blocks on the timer (Poller). Both call the same per-tick
// functions; they differ only in how they reach the peripherals. Anything
// the interrupt handler shares with the main context lives in a
// critical.Slot.
package ir

import (
	"context"
	"time"

	"irlink-go/codec/manchester"
)

const (
	// HalfBitPeriod is the protocol half-bit duration (RC5 timing).
	HalfBitPeriod = 889 * time.Microsecond
	// DefaultOversample is the number of receive samples per half-bit.
	DefaultOversample = 4
	// MinDatagramLen is the noise threshold: only longer results are reported.
	MinDatagramLen = 2

	DefaultCarrierHz = 36_000
	DefaultDutyPct   = 25
)

// InputLine is the receive line (demodulating IR receiver output).
type InputLine interface {
	Level() (bool, error)
}

// Actuator gates the IR emitter carrier.
type Actuator interface {
	Energize()
	Deenergize()
}

// SampleClock is a periodic timer that raises an interrupt every tick.
// ClearPending must be called from the handler on every tick or the
// interrupt fires again immediately.
type SampleClock interface {
	Start() error
	ClearPending()
}

// TickSource blocks until the next tick has elapsed.
type TickSource interface {
	Wait(ctx context.Context) error
}

// Decoder consumes one line sample per tick.
type Decoder interface {
	Next(sample bool) (manchester.Datagram, bool)
}

// Sink receives reportable datagrams. Report must not block.
type Sink interface {
	Report(d manchester.Datagram) bool
}

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
)

// Board supplies the hardware. Every constructor is an initialization
// step; its errors are fatal.
type Board interface {
	InputLine(pin int, pull Pull) (InputLine, error)
	Emitter(pin int, carrierHz uint32, dutyPct uint8) (Actuator, error)
	// InterruptClock prepares a timer that calls isr every period once started.
	InterruptClock(period time.Duration, isr func()) (SampleClock, error)
	PollingClock(period time.Duration) (TickSource, error)
}
