// Package nap puts the processor to sleep for approximate durations using a
// periodic countdown as the only wake source.
//
// A requested duration is broken down greedily over a ladder of countdown
// periods, each half the previous one. The remainder below the shortest
// period is dropped: naps are for pacing, not timekeeping.
package nap

import (
	"fmt"

	"libdb.so/nightlight/hal"
)

// MinPeriod is the shortest countdown period, in ticks.
const MinPeriod = 16

// MaxPeriod is the longest countdown period the watchdog supports, in ticks.
const MaxPeriod = 8192

// Stage is one countdown configuration.
type Stage struct {
	// Period is the countdown length in ticks.
	Period uint16
	// Prescaler is the hardware divider selecting Period: Period is
	// MinPeriod << Prescaler.
	Prescaler uint8
}

// Ladder is a list of stages ordered from the longest period down to
// MinPeriod, each stage half as long as the one before it.
type Ladder []Stage

// DefaultLadder goes from 1024 ticks down to 16.
var DefaultLadder = MustLadder(1024)

// NewLadder builds a ladder whose longest stage is max ticks.
func NewLadder(max uint16) (Ladder, error) {
	if max < MinPeriod || max > MaxPeriod || max&(max-1) != 0 {
		return nil, fmt.Errorf("ladder top %d is not a power of two in [%d, %d]", max, MinPeriod, MaxPeriod)
	}

	var ladder Ladder
	var prescaler uint8
	for p := uint16(MinPeriod); p < max; p <<= 1 {
		prescaler++
	}
	for p := max; p >= MinPeriod; p >>= 1 {
		ladder = append(ladder, Stage{Period: p, Prescaler: prescaler})
		prescaler--
	}
	return ladder, nil
}

// MustLadder is like NewLadder but panics on error.
func MustLadder(max uint16) Ladder {
	l, err := NewLadder(max)
	if err != nil {
		panic(err)
	}
	return l
}

// Max returns the longest period.
func (l Ladder) Max() uint16 { return l[0].Period }

// Min returns the shortest period.
func (l Ladder) Min() uint16 { return l[len(l)-1].Period }

// Walk decomposes ticks over the ladder, calling f once per countdown, and
// returns the ticks left over. The leftover is always below Min.
func (l Ladder) Walk(ticks uint16, f func(Stage)) uint16 {
	for _, stage := range l {
		for ticks >= stage.Period {
			f(stage)
			ticks -= stage.Period
		}
	}
	return ticks
}

// Decompose returns the stages Walk would run for ticks and the leftover.
func (l Ladder) Decompose(ticks uint16) ([]Stage, uint16) {
	var stages []Stage
	rest := l.Walk(ticks, func(s Stage) { stages = append(stages, s) })
	return stages, rest
}

// Countdown is the hardware timer that ends a halt.
type Countdown interface {
	// Configure arms the countdown for one stage.
	Configure(Stage)
	// WaitForExpiry halts the processor until the countdown fires.
	WaitForExpiry()
}

// Scheduler sleeps using a Countdown.
type Scheduler struct {
	Ladder    Ladder
	Countdown Countdown
	IRQ       hal.Interrupts
}

// Sleep halts for approximately ticks. Interrupts are enabled only across
// each halt and are disabled again when Sleep returns.
func (s *Scheduler) Sleep(ticks uint16) {
	s.Ladder.Walk(ticks, func(stage Stage) {
		s.Countdown.Configure(stage)
		s.IRQ.Enable()
		s.Countdown.WaitForExpiry()
		s.IRQ.Disable()
	})
}

// WDTCR bits on the ATtiny85.
const (
	WDIF uint8 = 1 << 7
	WDIE uint8 = 1 << 6
	WDP3 uint8 = 1 << 5
	WDCE uint8 = 1 << 4
	WDE  uint8 = 1 << 3
)

// WatchdogWrites returns the two WDTCR writes that arm an interrupt-only
// watchdog for the stage. The prescaler bits only change when the second
// write lands within four cycles of the first.
func (s Stage) WatchdogWrites() [2]uint8 {
	wdp := s.Prescaler & 0x07
	if s.Prescaler&0x08 != 0 {
		wdp |= WDP3
	}
	return [2]uint8{WDCE | WDE, WDIF | WDIE | wdp}
}

// WatchdogOff returns the WDTCR writes that stop the watchdog.
func WatchdogOff() [2]uint8 { return [2]uint8{WDCE | WDE, 0} }
