// Package manchester encodes and decodes Manchester-coded infrared datagrams.
//
// A frame on the wire is a start bit (1) followed by the datagram bits. Each
// bit occupies two half-bit periods: a 1 is inactive then active, a 0 is
// active then inactive, so every bit carries a mid-bit edge.
package manchester

import "irlink-go/errcode"

// MaxBits is the capacity of a Datagram.
const MaxBits = 64

// BitOrder selects which end of a datagram goes on the wire first.
type BitOrder uint8

const (
	BigEndian    BitOrder = iota // index 0 first
	LittleEndian                 // last index first
)

func (o BitOrder) String() string {
	if o == LittleEndian {
		return "little endian"
	}
	return "big endian"
}

// ActivityLevel is the raw line level that means "carrier seen".
type ActivityLevel uint8

const (
	ActiveHigh ActivityLevel = iota
	ActiveLow
)

// Datagram is an ordered bit sequence of at most MaxBits bits.
// Bit i is stored at bit i of the word; it is a plain value and never allocates.
type Datagram struct {
	bits uint64
	n    uint8
}

// ParseDatagram reads a string of '0' and '1'; '_' may separate groups.
func ParseDatagram(s string) (Datagram, error) {
	var d Datagram
	for i := 0; i < len(s); i++ {
		var ok bool
		switch s[i] {
		case '_':
			continue
		case '0':
			d, ok = d.Push(false)
		case '1':
			d, ok = d.Push(true)
		default:
			return Datagram{}, &errcode.E{C: errcode.InvalidDatagram, Op: "manchester.parse", Msg: "unexpected character in " + s}
		}
		if !ok {
			return Datagram{}, &errcode.E{C: errcode.InvalidDatagram, Op: "manchester.parse", Msg: "more than 64 bits"}
		}
	}
	return d, nil
}

// MustParse is ParseDatagram for constants; it panics on malformed input.
func MustParse(s string) Datagram {
	d, err := ParseDatagram(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Len returns the number of bits.
func (d Datagram) Len() int { return int(d.n) }

// Bit returns bit i; out-of-range indices read as false.
func (d Datagram) Bit(i int) bool {
	if i < 0 || i >= int(d.n) {
		return false
	}
	return d.bits&(1<<uint(i)) != 0
}

// Push appends a bit. It reports false, leaving d unchanged, when full.
func (d Datagram) Push(b bool) (Datagram, bool) {
	if d.n >= MaxBits {
		return d, false
	}
	if b {
		d.bits |= 1 << d.n
	}
	d.n++
	return d, true
}

// Reversed returns the bits in the opposite order.
func (d Datagram) Reversed() Datagram {
	var r Datagram
	for i := int(d.n) - 1; i >= 0; i-- {
		r, _ = r.Push(d.Bit(i))
	}
	return r
}

// Uint64 interprets the bits as a number with index 0 as the most significant bit.
func (d Datagram) Uint64() uint64 {
	var v uint64
	for i := 0; i < int(d.n); i++ {
		v <<= 1
		if d.Bit(i) {
			v |= 1
		}
	}
	return v
}

// String renders the bits in nibble groups, e.g. "0101_0011_0111_0001".
func (d Datagram) String() string {
	if d.n == 0 {
		return ""
	}
	var buf [MaxBits + MaxBits/4]byte
	out := buf[:0]
	for i := 0; i < int(d.n); i++ {
		if i > 0 && i%4 == 0 {
			out = append(out, '_')
		}
		if d.Bit(i) {
			out = append(out, '1')
		} else {
			out = append(out, '0')
		}
	}
	return string(out)
}
