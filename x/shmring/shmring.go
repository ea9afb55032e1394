// Package shmring is a single-producer, single-consumer byte ring with
// edge notifications. Writers never block: what does not fit is refused.
package shmring

import "sync/atomic"

// Ring is a power-of-two sized byte ring. One goroutine (or one critical
// section at a time) may write and one may read concurrently.
type Ring struct {
	buf  []byte
	mask uint32
	rd   atomic.Uint32 // consumer index (monotonic)
	wr   atomic.Uint32 // producer index (monotonic)

	readable chan struct{} // empty -> non-empty
	writable chan struct{} // full -> not full
}

// New allocates a ring; size must be a power of two >= 2.
func New(size int) *Ring {
	if size < 2 || (size&(size-1)) != 0 {
		panic("shmring: size must be power of two >= 2")
	}
	return &Ring{
		buf:      make([]byte, size),
		mask:     uint32(size - 1),
		readable: make(chan struct{}, 1),
		writable: make(chan struct{}, 1),
	}
}

func (r *Ring) size() uint32 { return uint32(len(r.buf)) }

// Space is the number of bytes a writer could store right now.
func (r *Ring) Space() int {
	return int(r.size() - (r.wr.Load() - r.rd.Load()))
}

// Available is the number of bytes waiting for the reader.
func (r *Ring) Available() int {
	return int(r.wr.Load() - r.rd.Load())
}

// TryWriteFrom copies as much of src as fits and returns the count.
func (r *Ring) TryWriteFrom(src []byte) int {
	if len(src) == 0 {
		return 0
	}
	rd := r.rd.Load()
	wr := r.wr.Load()
	used := wr - rd
	n := int(r.size() - used)
	if n <= 0 {
		return 0
	}
	if len(src) < n {
		n = len(src)
	}
	idx := wr & r.mask
	first := copy(r.buf[idx:], src[:n])
	copy(r.buf, src[first:n])
	r.wr.Store(wr + uint32(n))

	if used == 0 {
		signal(r.readable)
	}
	return n
}

// TryReadInto copies up to len(dst) waiting bytes and returns the count.
func (r *Ring) TryReadInto(dst []byte) int {
	if len(dst) == 0 {
		return 0
	}
	rd := r.rd.Load()
	wr := r.wr.Load()
	n := int(wr - rd)
	if n <= 0 {
		return 0
	}
	if len(dst) < n {
		n = len(dst)
	}
	idx := rd & r.mask
	first := copy(dst[:n], r.buf[idx:])
	copy(dst[first:n], r.buf)
	r.rd.Store(rd + uint32(n))

	if wr-rd == r.size() {
		signal(r.writable)
	}
	return n
}

// Readable fires (coalesced) when the ring goes from empty to non-empty.
func (r *Ring) Readable() <-chan struct{} { return r.readable }

// Writable fires (coalesced) when the ring goes from full to not full.
func (r *Ring) Writable() <-chan struct{} { return r.writable }

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
