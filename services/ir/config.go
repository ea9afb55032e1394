package ir

import (
	"time"

	"irlink-go/codec/manchester"
	"irlink-go/errcode"
	"irlink-go/x/mathx"
	"irlink-go/x/timex"
)

type Mode string

const (
	ModePollRx Mode = "poll_rx" // main loop samples, blocking on the timer
	ModeISRRx  Mode = "isr_rx"
	ModeISRTx  Mode = "isr_tx"
	ModeISRTrx Mode = "isr_trx"
)

// Config is the "ir" key of the device configuration.
type Config struct {
	Mode        Mode   `json:"mode"`
	RxPin       int    `json:"rx_pin"`
	RxPull      string `json:"rx_pull"` // "up" or "none"
	TxPin       int    `json:"tx_pin"`
	HalfBitUs   uint32 `json:"half_bit_us"`
	Oversample  int    `json:"oversample"`
	Activity    string `json:"activity"`  // "low" or "high"
	BitOrder    string `json:"bit_order"` // "big" or "little"
	CarrierHz   uint32 `json:"carrier_hz"`
	DutyPct     uint8  `json:"duty_pct"`
	ReportQueue int    `json:"report_queue"`
	StatusMs    uint32 `json:"status_ms"` // 0 disables ir/status
}

func DefaultConfig() Config {
	return Config{
		Mode:        ModeISRTx,
		RxPin:       -1,
		RxPull:      "up",
		TxPin:       -1,
		HalfBitUs:   uint32(HalfBitPeriod / time.Microsecond),
		Oversample:  DefaultOversample,
		Activity:    "low",
		BitOrder:    "big",
		CarrierHz:   DefaultCarrierHz,
		DutyPct:     DefaultDutyPct,
		ReportQueue: 4,
	}
}

// WithDefaults fills zero fields from DefaultConfig.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.Mode == "" {
		c.Mode = d.Mode
	}
	if c.RxPull == "" {
		c.RxPull = d.RxPull
	}
	if c.HalfBitUs == 0 {
		c.HalfBitUs = d.HalfBitUs
	}
	if c.Oversample == 0 {
		c.Oversample = d.Oversample
	}
	if c.Activity == "" {
		c.Activity = d.Activity
	}
	if c.BitOrder == "" {
		c.BitOrder = d.BitOrder
	}
	if c.CarrierHz == 0 {
		c.CarrierHz = d.CarrierHz
	}
	if c.DutyPct == 0 {
		c.DutyPct = d.DutyPct
	}
	if c.ReportQueue == 0 {
		c.ReportQueue = d.ReportQueue
	}
	return c
}

func invalid(msg string) error {
	return &errcode.E{C: errcode.InvalidConfig, Op: "ir.config", Msg: msg}
}

func (c Config) Validate() error {
	switch c.Mode {
	case ModePollRx, ModeISRRx, ModeISRTx, ModeISRTrx:
	default:
		return invalid("unknown mode " + string(c.Mode))
	}
	if c.Receives() {
		if c.RxPin < 0 {
			return invalid("rx_pin required")
		}
		if !mathx.Between(c.Oversample, 2, 16) {
			return invalid("oversample out of range")
		}
		if c.RxPull != "up" && c.RxPull != "none" {
			return invalid("rx_pull must be up or none")
		}
		if c.ReportQueue < 1 {
			return invalid("report_queue must be positive")
		}
	}
	if c.Transmits() {
		if c.TxPin < 0 {
			return invalid("tx_pin required")
		}
		if c.Receives() && c.TxPin == c.RxPin {
			return invalid("tx_pin and rx_pin collide")
		}
		if c.CarrierHz == 0 || !mathx.Between(c.DutyPct, 1, 100) {
			return invalid("bad carrier")
		}
		if uint64(c.CarrierHz)*uint64(c.HalfBitUs) < 1_000_000 {
			return invalid("carrier slower than half-bit")
		}
	}
	if c.HalfBitUs == 0 {
		return invalid("half_bit_us must be positive")
	}
	if c.Activity != "low" && c.Activity != "high" {
		return invalid("activity must be low or high")
	}
	if c.BitOrder != "big" && c.BitOrder != "little" {
		return invalid("bit_order must be big or little")
	}
	return nil
}

func (c Config) Receives() bool  { return c.Mode != ModeISRTx }
func (c Config) Transmits() bool { return c.Mode == ModeISRTx || c.Mode == ModeISRTrx }
func (c Config) Interrupt() bool { return c.Mode != ModePollRx }

func (c Config) HalfBit() time.Duration {
	return time.Duration(c.HalfBitUs) * time.Microsecond
}

// TicksPerHalfBit is the oversampling factor when receiving, else 1.
func (c Config) TicksPerHalfBit() int {
	if c.Receives() {
		return c.Oversample
	}
	return 1
}

// TickPeriod is the sampling clock period.
func (c Config) TickPeriod() time.Duration {
	return timex.Subdivide(c.HalfBit(), c.TicksPerHalfBit())
}

func (c Config) Order() manchester.BitOrder {
	if c.BitOrder == "little" {
		return manchester.LittleEndian
	}
	return manchester.BigEndian
}

func (c Config) Pull() Pull {
	if c.RxPull == "none" {
		return PullNone
	}
	return PullUp
}

func (c Config) DecoderConfig() manchester.DecoderConfig {
	act := manchester.ActiveLow
	if c.Activity == "high" {
		act = manchester.ActiveHigh
	}
	return manchester.DecoderConfig{
		SamplesPerHalfBit: c.Oversample,
		Activity:          act,
		Order:             c.Order(),
	}
}
