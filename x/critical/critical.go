// Package critical hands ownership of peripherals and jobs between the main
// context and an interrupt handler.
//
// All access goes through Free, which runs a function inside a critical
// section and passes it a CS token. Slot methods demand the token, so a slot
// cannot be touched without holding the section. On RP2040 builds the section
// masks interrupts; on host builds it is a process-wide mutex, which makes a
// goroutine standing in for the interrupt handler mutually exclusive with the
// main context in the same way.
//
// Free must not be nested: the host section is not re-entrant.
package critical

// CS proves that the holder is inside a critical section. It is only valid
// for the duration of the Free call that produced it.
type CS struct {
	_ [0]func() // not comparable
}

// Free runs f with interrupts excluded and restores the previous state
// when f returns.
func Free(f func(cs CS)) {
	s := enter()
	defer exit(s)
	f(CS{})
}

// Slot holds zero or one value of T.
type Slot[T any] struct {
	v    T
	full bool
}

// Replace stores v and returns the previous value, if any.
func (s *Slot[T]) Replace(_ CS, v T) (prev T, ok bool) {
	prev, ok = s.v, s.full
	s.v, s.full = v, true
	return prev, ok
}

// TryPut stores v only when the slot is empty. The emptiness check and the
// store happen under the same section.
func (s *Slot[T]) TryPut(_ CS, v T) bool {
	if s.full {
		return false
	}
	s.v, s.full = v, true
	return true
}

// Take empties the slot and returns what it held.
func (s *Slot[T]) Take(_ CS) (v T, ok bool) {
	var zero T
	v, ok = s.v, s.full
	s.v, s.full = zero, false
	return v, ok
}

// Clear empties the slot.
func (s *Slot[T]) Clear(cs CS) { s.Take(cs) }

// Full reports whether the slot holds a value.
func (s *Slot[T]) Full(_ CS) bool { return s.full }

// Borrow returns a pointer to the held value. The pointer must not escape
// the critical section that cs belongs to.
func (s *Slot[T]) Borrow(_ CS) (*T, bool) {
	if !s.full {
		return nil, false
	}
	return &s.v, true
}

// WithMut applies f to the held value. An empty slot is a no-op and
// reports ok == false with the zero R.
func WithMut[T, R any](cs CS, s *Slot[T], f func(*T) R) (r R, ok bool) {
	p, ok := s.Borrow(cs)
	if !ok {
		return r, false
	}
	return f(p), true
}
