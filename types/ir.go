package types

// DatagramEvent is published on ir/rx/datagram for every reported datagram.
type DatagramEvent struct {
	Bits  string `json:"bits"` // nibble-grouped, index 0 first
	Len   int    `json:"len"`
	Value uint64 `json:"value"`
	TSms  int64  `json:"ts_ms"`
}

// TxInjected is published on ir/tx/injected when a datagram was accepted
// for transmission.
type TxInjected struct {
	Bits string `json:"bits"`
	TSms int64  `json:"ts_ms"`
}

// IRStatus is a retained snapshot of link counters on ir/status.
type IRStatus struct {
	Mode      string `json:"mode"`
	Ticks     uint32 `json:"ticks"`
	Samples   uint32 `json:"samples"`
	Reported  uint32 `json:"reported"`
	Noise     uint32 `json:"noise"`
	Dropped   uint32 `json:"dropped"`
	Injected  uint32 `json:"injected"`
	Refused   uint32 `json:"refused"`
	Completed uint32 `json:"completed"`
	Aborted   uint32 `json:"aborted"`
}
