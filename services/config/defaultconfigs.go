package config

// Embedded configuration.
// Key: device ID (the value placed in ctx under CtxDeviceKey)
// Val: raw JSON bytes for that device

const cfgPicoTx = `{
  "ir": {
    "mode": "isr_tx",
    "tx_pin": 16,
    "carrier_hz": 36000,
    "duty_pct": 25
  },
  "beacon": {
    "interval_ms": 1000,
    "datagram": "0101_0011_0111_0001"
  }
}`

const cfgPicoRx = `{
  "ir": {
    "mode": "isr_rx",
    "rx_pin": 15,
    "rx_pull": "up",
    "oversample": 4,
    "activity": "low",
    "status_ms": 5000
  },
  "beacon": {
    "interval_ms": 0
  }
}`

const cfgPicoPoll = `{
  "ir": {
    "mode": "poll_rx",
    "rx_pin": 15,
    "rx_pull": "up",
    "oversample": 4,
    "activity": "low"
  },
  "beacon": {
    "interval_ms": 0
  }
}`

const cfgSim = `{
  "ir": {
    "mode": "isr_trx",
    "rx_pin": 15,
    "tx_pin": 16,
    "activity": "low",
    "status_ms": 5000
  },
  "beacon": {
    "interval_ms": 1000,
    "datagram": "0101_0011_0111_0001"
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico-ir-tx":   []byte(cfgPicoTx),
	"pico-ir-rx":   []byte(cfgPicoRx),
	"pico-ir-poll": []byte(cfgPicoPoll),
	"sim":          []byte(cfgSim),
}
