package config

import (
	"context"
	"testing"
	"time"

	"irlink-go/bus"
	"irlink-go/errcode"
	"irlink-go/services/ir"
)

func TestConfig_PublishEmbedded_RetainedPerKey(t *testing.T) {
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) {
		if device != "pico" {
			return nil, false
		}
		return []byte(`{
			"mode": "dev",
			"debug": true,
			"region": {"code": "eu"}
		}`), true
	}
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	b := bus.NewBus(16)
	conn := b.NewConnection("test-config")
	if err := <-NewConfigService().Start(WithDevice(context.Background(), "pico"), conn); err != nil {
		t.Fatal(err)
	}

	// Retained messages arrive on subscribe.
	sub := conn.Subscribe(bus.T(configPrefix, bus.AnyTail))
	got := map[string]any{}
	deadline := time.After(600 * time.Millisecond)
	for len(got) < 3 {
		select {
		case m := <-sub.Channel():
			if m.Topic.Len() != 2 || m.Topic.At(0) != configPrefix || !m.Retained {
				t.Fatalf("unexpected message %#v", m)
			}
			key, ok := m.Topic.At(1).(string)
			if !ok {
				t.Fatalf("topic[1] type %T, want string", m.Topic.At(1))
			}
			got[key] = m.Payload
		case <-deadline:
			t.Fatalf("expected 3 retained messages, got %v", got)
		}
	}
	if s, ok := got["mode"].(string); !ok || s != "dev" {
		t.Fatalf("mode payload = %#v", got["mode"])
	}
	if v, ok := got["debug"].(bool); !ok || !v {
		t.Fatalf("debug payload = %#v", got["debug"])
	}
	if m, ok := got["region"].(map[string]any); !ok || m["code"] != "eu" {
		t.Fatalf("region payload = %#v", got["region"])
	}
}

func TestConfig_PublishConfig_MissingDevice(t *testing.T) {
	conn := bus.NewBus(4).NewConnection("test-missing-device")
	if err := NewConfigService().publishConfig(context.Background(), conn); err == nil {
		t.Fatal("expected error for missing device ID, got nil")
	}
}

func TestConfig_PublishConfig_NoConfigFound(t *testing.T) {
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) { return nil, false }
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	conn := bus.NewBus(4).NewConnection("test-no-config")
	if err := NewConfigService().publishConfig(WithDevice(context.Background(), "unknown-device"), conn); err == nil {
		t.Fatal("expected error for missing embedded config, got nil")
	}
}

func TestConfig_PublishConfig_NotAnObject(t *testing.T) {
	for _, raw := range []string{`[1, 2]`, `"ir"`, `42`} {
		oldLookup := EmbeddedConfigLookup
		EmbeddedConfigLookup = func(string) ([]byte, bool) { return []byte(raw), true }

		conn := bus.NewBus(4).NewConnection("test-not-object")
		err := NewConfigService().publishConfig(WithDevice(context.Background(), "x"), conn)
		EmbeddedConfigLookup = oldLookup
		if errcode.Of(err) != errcode.InvalidConfig {
			t.Fatalf("%s: err = %v", raw, err)
		}
	}
}

func TestEmbeddedConfigsAreValid(t *testing.T) {
	for device := range embeddedConfigs {
		b := bus.NewBus(4)
		conn := b.NewConnection("test")
		if err := <-NewConfigService().Start(WithDevice(context.Background(), device), conn); err != nil {
			t.Fatalf("%s: %v", device, err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		cfg, err := Await(ctx, conn, "ir", ir.DefaultConfig())
		cancel()
		if err != nil {
			t.Fatalf("%s: %v", device, err)
		}
		if err := cfg.Validate(); err != nil {
			t.Errorf("%s: %v", device, err)
		}
	}
}

func TestDecode(t *testing.T) {
	type beacon struct {
		IntervalMs uint32 `json:"interval_ms"`
		Datagram   string `json:"datagram"`
	}
	v := beacon{IntervalMs: 5}
	if err := Decode(map[string]any{"datagram": "01"}, &v); err != nil {
		t.Fatal(err)
	}
	if v.IntervalMs != 5 || v.Datagram != "01" {
		t.Fatalf("%+v", v)
	}
	if err := Decode("nope", &v); errcode.Of(err) != errcode.InvalidConfig {
		t.Fatalf("err = %v", err)
	}
}

func TestAwaitTimesOut(t *testing.T) {
	conn := bus.NewBus(4).NewConnection("test")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := Await(ctx, conn, "ir", 0); errcode.Of(err) != errcode.InitFault {
		t.Fatalf("err = %v", err)
	}
}
