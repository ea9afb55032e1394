package manchester

// DecoderConfig describes the sampling of the receive line.
type DecoderConfig struct {
	SamplesPerHalfBit int // oversampling factor; values below 2 are raised to 2
	Activity          ActivityLevel
	Order             BitOrder
}

type decState uint8

const (
	decIdle     decState = iota // waiting for the start bit's mid edge
	decMid                      // last edge was mid-bit
	decBoundary                 // last edge was a bit boundary
)

// Decoder turns a stream of line samples into datagrams. It expects exactly
// one sample per tick; a dropped tick shifts its phase until the next frame.
type Decoder struct {
	cfg   DecoderConfig
	state decState
	level bool // last logical level, true = active
	run   int  // samples since the last edge
	buf   Datagram
	lost  bool // frame overflowed MaxBits

	shortMin, longMin, longMax int
}

// NewDecoder returns an idle decoder.
func NewDecoder(cfg DecoderConfig) *Decoder {
	if cfg.SamplesPerHalfBit < 2 {
		cfg.SamplesPerHalfBit = 2
	}
	n := cfg.SamplesPerHalfBit
	return &Decoder{
		cfg:      cfg,
		shortMin: n - n/2,
		longMin:  n + n/2,
		longMax:  2*n + n/2,
	}
}

// Next consumes one raw sample. It returns a datagram when the line has
// gone idle after a well-formed frame.
func (d *Decoder) Next(sample bool) (Datagram, bool) {
	v := sample
	if d.cfg.Activity == ActiveLow {
		v = !v
	}

	if d.state == decIdle {
		if v && !d.level {
			// Start bit mid edge; the start bit carries no data.
			d.state = decMid
			d.run = 0
			d.buf = Datagram{}
			d.lost = false
		}
		d.level = v
		return Datagram{}, false
	}

	d.run++
	if v == d.level {
		if d.run <= d.longMax {
			return Datagram{}, false
		}
		// Silence: the frame is over. A line stuck active is not a frame end.
		out, ok := d.buf, !v && !d.lost
		d.reset(v)
		if !ok {
			return Datagram{}, false
		}
		if d.cfg.Order == LittleEndian {
			out = out.Reversed()
		}
		return out, true
	}

	dist := d.run
	d.run = 0
	d.level = v
	switch {
	case dist >= d.shortMin && dist < d.longMin:
		if d.state == decMid {
			d.state = decBoundary
			return Datagram{}, false
		}
		d.push(v)
	case dist >= d.longMin && dist <= d.longMax && d.state == decMid:
		d.push(v)
	default:
		d.reset(v)
	}
	return Datagram{}, false
}

// push records a mid-bit edge: rising (to active) is a 1.
func (d *Decoder) push(rising bool) {
	d.state = decMid
	var ok bool
	if d.buf, ok = d.buf.Push(rising); !ok {
		d.lost = true
	}
}

func (d *Decoder) reset(level bool) {
	d.state = decIdle
	d.level = level
	d.run = 0
	d.buf = Datagram{}
	d.lost = false
}
