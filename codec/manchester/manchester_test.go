package manchester

import (
	"testing"

	"irlink-go/errcode"
)

// frameSamples encodes d and repeats every half-bit level n times, as the
// receive line would look when sampled n times per half-bit.
func frameSamples(d Datagram, order BitOrder, n int) []bool {
	var out []bool
	e := NewEncoder(d, order)
	for {
		l, ok := e.Next()
		if !ok {
			return out
		}
		for i := 0; i < n; i++ {
			out = append(out, l)
		}
	}
}

func idle(n int) []bool { return make([]bool, n) }

func invert(in []bool) []bool {
	out := make([]bool, len(in))
	for i, v := range in {
		out[i] = !v
	}
	return out
}

func decodeAll(dec *Decoder, samples []bool) []Datagram {
	var got []Datagram
	for _, s := range samples {
		if d, ok := dec.Next(s); ok {
			got = append(got, d)
		}
	}
	return got
}

func TestParseAndString(t *testing.T) {
	d, err := ParseDatagram("0101_0011_0111_0001")
	if err != nil {
		t.Fatal(err)
	}
	if d.Len() != 16 {
		t.Fatalf("Len = %d", d.Len())
	}
	if got := d.String(); got != "0101_0011_0111_0001" {
		t.Fatalf("String = %q", got)
	}
	if got := d.Uint64(); got != 0x5371 {
		t.Fatalf("Uint64 = %#x", got)
	}
	if !d.Bit(1) || d.Bit(0) || d.Bit(99) {
		t.Fatal("Bit indexing")
	}
}

func TestParseRejects(t *testing.T) {
	if _, err := ParseDatagram("01x1"); errcode.Of(err) != errcode.InvalidDatagram {
		t.Fatalf("bad char: err = %v", err)
	}
	long := ""
	for i := 0; i < MaxBits+1; i++ {
		long += "1"
	}
	if _, err := ParseDatagram(long); errcode.Of(err) != errcode.InvalidDatagram {
		t.Fatalf("overflow: err = %v", err)
	}
}

func TestEncoderHalfBits(t *testing.T) {
	e := NewEncoder(MustParse("10"), BigEndian)
	// start(1), 1, 0
	want := []bool{false, true, false, true, true, false}
	for i, w := range want {
		l, ok := e.Next()
		if !ok || l != w {
			t.Fatalf("half-bit %d = (%v,%v), want (%v,true)", i, l, ok, w)
		}
	}
	if _, ok := e.Next(); ok {
		t.Fatal("encoder not exhausted")
	}
	if _, ok := e.Next(); ok {
		t.Fatal("exhausted encoder restarted")
	}
	if HalfBits(MustParse("10")) != len(want) {
		t.Fatal("HalfBits mismatch")
	}
}

func TestEncoderLittleEndianReversesData(t *testing.T) {
	e := NewEncoder(MustParse("10"), LittleEndian)
	// start(1), 0, 1
	want := []bool{false, true, true, false, false, true}
	for i, w := range want {
		if l, _ := e.Next(); l != w {
			t.Fatalf("half-bit %d = %v, want %v", i, l, w)
		}
	}
}

func TestNibbleFortySamples(t *testing.T) {
	d := MustParse("1010")
	samples := frameSamples(d, BigEndian, 4)
	if len(samples) != 40 {
		t.Fatalf("frame is %d samples, want 40", len(samples))
	}
	dec := NewDecoder(DecoderConfig{SamplesPerHalfBit: 4})
	got := decodeAll(dec, append(samples, idle(16)...))
	if len(got) != 1 || got[0] != d {
		t.Fatalf("decoded %v, want [%v]", got, d)
	}
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name  string
		bits  string
		order BitOrder
		act   ActivityLevel
		n     int
	}{
		{"be-high-4", "0101_0011_0111_0001", BigEndian, ActiveHigh, 4},
		{"le-low-4", "0101_0011_0111_0001", LittleEndian, ActiveLow, 4},
		{"all-zero-3", "0000_0000", BigEndian, ActiveHigh, 3},
		{"all-one-5", "1111_1111_1", BigEndian, ActiveLow, 5},
		{"single-8", "0", BigEndian, ActiveHigh, 8},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			d := MustParse(c.bits)
			line := frameSamples(d, c.order, c.n)
			line = append(idle(7), append(line, idle(4*c.n)...)...)
			if c.act == ActiveLow {
				line = invert(line)
			}
			dec := NewDecoder(DecoderConfig{SamplesPerHalfBit: c.n, Activity: c.act, Order: c.order})
			got := decodeAll(dec, line)
			if len(got) != 1 || got[0] != d {
				t.Fatalf("decoded %v, want [%v]", got, d)
			}
		})
	}
}

func TestBackToBackFrames(t *testing.T) {
	a, b := MustParse("1100"), MustParse("0011_01")
	var line []bool
	line = append(line, frameSamples(a, BigEndian, 4)...)
	line = append(line, idle(12)...)
	line = append(line, frameSamples(b, BigEndian, 4)...)
	line = append(line, idle(12)...)
	got := decodeAll(NewDecoder(DecoderConfig{SamplesPerHalfBit: 4}), line)
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("decoded %v, want [%v %v]", got, a, b)
	}
}

func TestSpuriousEdgeYieldsEmptyDatagram(t *testing.T) {
	line := append(idle(4), true, true, true, true)
	line = append(line, idle(20)...)
	got := decodeAll(NewDecoder(DecoderConfig{SamplesPerHalfBit: 4}), line)
	if len(got) != 1 || got[0].Len() != 0 {
		t.Fatalf("decoded %v, want one empty datagram", got)
	}
}

func TestGlitchResynchronises(t *testing.T) {
	d := MustParse("0110")
	var line []bool
	line = append(line, false, true, false) // one-sample glitch
	line = append(line, idle(12)...)
	line = append(line, frameSamples(d, BigEndian, 4)...)
	line = append(line, idle(12)...)
	got := decodeAll(NewDecoder(DecoderConfig{SamplesPerHalfBit: 4}), line)
	if len(got) != 1 || got[0] != d {
		t.Fatalf("decoded %v, want [%v]", got, d)
	}
}

func TestStuckActiveIsDiscarded(t *testing.T) {
	line := idle(4)
	for i := 0; i < 40; i++ {
		line = append(line, true)
	}
	if got := decodeAll(NewDecoder(DecoderConfig{SamplesPerHalfBit: 4}), line); len(got) != 0 {
		t.Fatalf("decoded %v from a stuck line", got)
	}
}

func TestTruncatedFrameIsSilent(t *testing.T) {
	samples := frameSamples(MustParse("1010"), BigEndian, 4)[:2]
	if got := decodeAll(NewDecoder(DecoderConfig{SamplesPerHalfBit: 4}), samples); len(got) != 0 {
		t.Fatalf("decoded %v from two samples", got)
	}
}
