package ir

import (
	"testing"
	"time"

	"irlink-go/codec/manchester"
	"irlink-go/errcode"
)

func TestConfigValidate(t *testing.T) {
	ok := func(f func(*Config)) Config {
		c := DefaultConfig()
		c.RxPin, c.TxPin = 15, 16
		if f != nil {
			f(&c)
		}
		return c
	}
	cases := []struct {
		name string
		cfg  Config
		bad  bool
	}{
		{"defaults need a pin", DefaultConfig(), true},
		{"isr_tx", ok(nil), false},
		{"poll_rx", ok(func(c *Config) { c.Mode = ModePollRx }), false},
		{"isr_trx", ok(func(c *Config) { c.Mode = ModeISRTrx }), false},
		{"unknown mode", ok(func(c *Config) { c.Mode = "burst" }), true},
		{"same pins", ok(func(c *Config) { c.Mode = ModeISRTrx; c.TxPin = 15 }), true},
		{"oversample", ok(func(c *Config) { c.Mode = ModeISRRx; c.Oversample = 1 }), true},
		{"duty", ok(func(c *Config) { c.DutyPct = 101 }), true},
		{"slow carrier", ok(func(c *Config) { c.CarrierHz = 1000 }), true},
		{"activity", ok(func(c *Config) { c.Activity = "sideways" }), true},
		{"bit order", ok(func(c *Config) { c.BitOrder = "middle" }), true},
	}
	for _, tc := range cases {
		err := tc.cfg.Validate()
		if tc.bad != (err != nil) {
			t.Errorf("%s: err = %v", tc.name, err)
		}
		if err != nil && errcode.Of(err) != errcode.InvalidConfig {
			t.Errorf("%s: code = %s", tc.name, errcode.Of(err))
		}
	}
}

func TestConfigWithDefaults(t *testing.T) {
	c := Config{Mode: ModeISRRx, RxPin: 3}.WithDefaults()
	if err := c.Validate(); err != nil {
		t.Fatal(err)
	}
	if c.HalfBit() != HalfBitPeriod || c.Oversample != DefaultOversample || c.DutyPct != DefaultDutyPct {
		t.Fatalf("%+v", c)
	}
}

func TestConfigTickPeriod(t *testing.T) {
	c := DefaultConfig()
	if got := c.TickPeriod(); got != 889*time.Microsecond {
		t.Fatalf("tx tick = %v", got)
	}
	c.Mode = ModeISRRx
	if got := c.TickPeriod(); got != 222250*time.Nanosecond {
		t.Fatalf("rx tick = %v", got)
	}
	c.Mode = ModeISRTrx
	if c.TicksPerHalfBit() != 4 {
		t.Fatalf("trx ticks per half-bit = %d", c.TicksPerHalfBit())
	}
}

func TestConfigDecoder(t *testing.T) {
	c := DefaultConfig()
	c.Activity, c.BitOrder = "high", "little"
	dc := c.DecoderConfig()
	if dc.Activity != manchester.ActiveHigh || dc.Order != manchester.LittleEndian || dc.SamplesPerHalfBit != 4 {
		t.Fatalf("%+v", dc)
	}
	if c.Pull() != PullUp {
		t.Fatal("pull-up expected by default")
	}
}
