package manchester

// Encoder walks a datagram and yields one half-bit level per call,
// true meaning "energize". The sequence is finite and not restartable,
// except through Reset.
type Encoder struct {
	d     Datagram
	order BitOrder
	pos   int // bit position including the start bit; 0 is the start bit
	half  uint8
}

// NewEncoder returns an encoder positioned before the start bit of d.
func NewEncoder(d Datagram, order BitOrder) *Encoder {
	e := &Encoder{}
	e.Reset(d, order)
	return e
}

// Reset re-arms e for d without allocating.
func (e *Encoder) Reset(d Datagram, order BitOrder) {
	*e = Encoder{d: d, order: order}
}

// HalfBits is the total number of levels a full frame for d produces.
func HalfBits(d Datagram) int { return 2 * (d.Len() + 1) }

// Next returns the next level, or ok == false once the frame is complete.
func (e *Encoder) Next() (level, ok bool) {
	if e.pos > e.d.Len() {
		return false, false
	}
	bit := true // start bit
	if e.pos > 0 {
		i := e.pos - 1
		if e.order == LittleEndian {
			i = e.d.Len() - 1 - i
		}
		bit = e.d.Bit(i)
	}
	// 1: inactive then active. 0: active then inactive.
	level = bit == (e.half == 1)
	if e.half == 1 {
		e.half = 0
		e.pos++
	} else {
		e.half = 1
	}
	return level, true
}
