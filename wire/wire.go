// Package wire implements the single-wire protocol spoken by ws2812-style
// LEDs. Each bit is a high pulse followed by a low pulse; the length of the
// high pulse tells a 0 from a 1 and a long low period latches the frame.
package wire

import (
	"fmt"
	"time"
)

// FrameSize is the number of bytes in one frame: one per color channel.
const FrameSize = 3

// FrameBits is the number of bits in one frame.
const FrameBits = 8 * FrameSize

// Timing describes the line timing of an LED family.
type Timing struct {
	T0H, T0L time.Duration // 0 bit
	T1H, T1L time.Duration // 1 bit
	// Reset is the low time after which the LED latches the frame. A low
	// period this long in the middle of a frame truncates it.
	Reset time.Duration
	// Tolerance is how far a high pulse may stray from its nominal length.
	Tolerance time.Duration
}

// WS2812 is the timing of the ws2812 family.
var WS2812 = Timing{
	T0H:       375 * time.Nanosecond,
	T0L:       875 * time.Nanosecond,
	T1H:       625 * time.Nanosecond,
	T1L:       625 * time.Nanosecond,
	Reset:     50 * time.Microsecond,
	Tolerance: 150 * time.Nanosecond,
}

// Pulse is one bit on the line.
type Pulse struct {
	High time.Duration
	Low  time.Duration
}

// Period returns the total length of the pulse.
func (p Pulse) Period() time.Duration {
	return p.High + p.Low
}

// Symbol returns the nominal pulse for the given bit.
func (t Timing) Symbol(bit bool) Pulse {
	if bit {
		return Pulse{High: t.T1H, Low: t.T1L}
	}
	return Pulse{High: t.T0H, Low: t.T0L}
}

// Classify returns the bit a pulse most likely encodes, judging by its high
// time only.
func (t Timing) Classify(p Pulse) bool {
	return p.High >= (t.T0H+t.T1H)/2
}

// Check reports whether p is an acceptable encoding of bit. The high time must
// be within tolerance. The low time may be stretched, as the LEDs only sample
// the line at a fixed offset after the rising edge, but it must not fall short
// or reach the reset threshold.
func (t Timing) Check(p Pulse, bit bool) error {
	want := t.Symbol(bit)
	if d := p.High - want.High; d > t.Tolerance || d < -t.Tolerance {
		return fmt.Errorf("high time %v is outside %v±%v", p.High, want.High, t.Tolerance)
	}
	if p.Low < want.Low-t.Tolerance {
		return fmt.Errorf("low time %v is shorter than %v-%v", p.Low, want.Low, t.Tolerance)
	}
	if p.Low >= t.Reset {
		return fmt.Errorf("low time %v resets the LED", p.Low)
	}
	return nil
}

// Bits returns the bits of a frame in transmission order: channel 0 first,
// most significant bit first.
func Bits(frame [FrameSize]byte) [FrameBits]bool {
	var bits [FrameBits]bool
	for i, b := range frame {
		for j := 0; j < 8; j++ {
			bits[8*i+j] = b&(0x80>>j) != 0
		}
	}
	return bits
}

// Encode returns the nominal waveform of a frame.
func Encode(frame [FrameSize]byte, t Timing) []Pulse {
	pulses := make([]Pulse, 0, FrameBits)
	for _, bit := range Bits(frame) {
		pulses = append(pulses, t.Symbol(bit))
	}
	return pulses
}

// Decode recovers a frame from a measured waveform. The low time of the last
// pulse is not checked: it is the latch period and lasts until the next frame.
func Decode(pulses []Pulse, t Timing) ([FrameSize]byte, error) {
	var frame [FrameSize]byte

	if len(pulses) != FrameBits {
		return frame, fmt.Errorf("got %d pulses, want %d", len(pulses), FrameBits)
	}

	for i, p := range pulses {
		bit := t.Classify(p)
		if i == len(pulses)-1 {
			p.Low = t.Symbol(bit).Low
		}
		if err := t.Check(p, bit); err != nil {
			return frame, fmt.Errorf("bit %d: %w", i, err)
		}
		if bit {
			frame[i/8] |= 0x80 >> (i % 8)
		}
	}

	return frame, nil
}
