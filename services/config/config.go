package config

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/andreyvit/tinyjson"

	"irlink-go/bus"
	"irlink-go/errcode"
)

const (
	serviceName  = "config"
	configPrefix = "config"
)

type ctxKey string

// CtxDeviceKey is the context key carrying the device ID.
const CtxDeviceKey ctxKey = "device"

func WithDevice(ctx context.Context, device string) context.Context {
	return context.WithValue(ctx, CtxDeviceKey, device)
}

// EmbeddedConfigLookup allows overriding how configs are resolved.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

// Topic is the retained topic for one top-level config key.
func Topic(key string) bus.Topic { return bus.T(configPrefix, key) }

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

// publishConfig reads the device config from embedded data and publishes
// each top-level key as a retained message.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	if device == "" {
		return errors.New("missing device ID in context")
	}
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return errors.New("no embedded config for device: " + device)
	}
	m, err := parseObject(raw)
	if err != nil {
		return errcode.Wrap(errcode.InvalidConfig, "config.parse", err)
	}
	for k, v := range m {
		conn.Publish(conn.NewMessage(Topic(k), v, true))
	}
	return nil
}

// parseObject parses raw as a single JSON object. tinyjson reports
// malformed input by panicking.
func parseObject(raw []byte) (m map[string]any, err error) {
	defer func() {
		if p := recover(); p != nil {
			if e, ok := p.(error); ok {
				err = e
			} else {
				err = errors.New("malformed JSON")
			}
		}
	}()
	r := tinyjson.Raw(raw)
	val := r.Value()
	r.EnsureEOF()

	m, ok := val.(map[string]any)
	if !ok {
		return nil, errors.New("embedded config is not a JSON object")
	}
	return m, nil
}

// Start publishes the configuration in a goroutine. The returned channel
// yields the outcome once.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- s.publishConfig(ctx, conn)
	}()
	return done
}

// Decode converts a generic JSON value (as published) into dst.
func Decode[T any](src any, dst *T) error {
	b, err := json.Marshal(src)
	if err != nil {
		return errcode.Wrap(errcode.InvalidConfig, "config.decode", err)
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return errcode.Wrap(errcode.InvalidConfig, "config.decode", err)
	}
	return nil
}

// Await blocks until config/<key> is available and decodes it over def.
func Await[T any](ctx context.Context, conn *bus.Connection, key string, def T) (T, error) {
	sub := conn.Subscribe(Topic(key))
	defer sub.Unsubscribe()
	select {
	case <-ctx.Done():
		return def, errcode.Wrap(errcode.InitFault, "config.await", ctx.Err())
	case m := <-sub.Channel():
		v := def
		if err := Decode(m.Payload, &v); err != nil {
			return def, err
		}
		return v, nil
	}
}
