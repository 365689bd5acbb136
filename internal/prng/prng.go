// Package prng implements the 8-bit pseudo-random source used by the effects.
package prng

// Mask is the Galois feedback mask. It corresponds to the primitive polynomial
// x^8 + x^6 + x^5 + x^3 + 1, so every nonzero state is visited once per period.
const Mask = 0xB4

// DefaultSeed is the state the device boots with.
const DefaultSeed = 1

// Period is the number of draws before the sequence repeats.
const Period = 255

// LFSR is an 8-bit Galois linear feedback shift register. The zero value is
// not usable; use New.
type LFSR struct {
	state uint8
}

// New creates an LFSR starting at seed. It panics if seed is zero, since the
// register would be stuck there forever.
func New(seed uint8) *LFSR {
	if seed == 0 {
		panic("prng: zero seed")
	}
	return &LFSR{state: seed}
}

// Next advances the register and returns the new state.
func (l *LFSR) Next() uint8 {
	lsb := l.state & 1
	l.state >>= 1
	if lsb != 0 {
		l.state ^= Mask
	}
	return l.state
}

// State returns the current state without advancing.
func (l *LFSR) State() uint8 {
	return l.state
}
