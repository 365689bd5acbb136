package engine

import (
	"libdb.so/nightlight/internal/lib8"
	"libdb.so/nightlight/internal/prng"
	"libdb.so/nightlight/wire"
)

// Color is one frame for the LED, in wire order. For the ws2812 family that
// order is green, red, blue; use RGB to build colors from the usual order.
type Color [wire.FrameSize]uint8

// Channel indices in wire order.
const (
	Green = 0
	Red   = 1
	Blue  = 2
)

// RGB returns the color with the given red, green and blue intensities.
func RGB(r, g, b uint8) Color {
	var c Color
	c[Red], c[Green], c[Blue] = r, g, b
	return c
}

// RGB returns the red, green and blue intensities.
func (c Color) RGB() (r, g, b uint8) {
	return c[Red], c[Green], c[Blue]
}

// IsOff reports whether every channel is zero.
func (c Color) IsOff() bool {
	return c == Color{}
}

// Scale dims every channel by scale/256, where 255 keeps the color as is.
func (c Color) Scale(scale uint8) Color {
	for i := range c {
		c[i] = lib8.Scale8(c[i], scale)
	}
	return c
}

// State is everything the engine mutates: the color last sent to the LED and
// the random source.
type State struct {
	Color Color
	Rand  *prng.LFSR
}

// NewState returns the boot state: LED off, random source at seed.
func NewState(seed uint8) *State {
	return &State{Rand: prng.New(seed)}
}
