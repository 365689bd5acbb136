package nap

import (
	"math/bits"
	"testing"

	"pgregory.net/rapid"
)

// TestPropertyWalkCoversRequest verifies the decomposition accounts for every
// tick down to a remainder below the minimum stage.
func TestPropertyWalkCoversRequest(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ticks := rapid.Uint16().Draw(t, "ticks")

		var sum uint32
		last := uint16(0xFFFF)
		rest := DefaultLadder.Walk(ticks, func(s Stage) {
			if s.Period > last {
				t.Fatalf("stage %d after %d: ladder went up", s.Period, last)
			}
			last = s.Period
			sum += uint32(s.Period)
		})

		if rest >= DefaultLadder.Min() {
			t.Fatalf("leftover %d is not below %d", rest, DefaultLadder.Min())
		}
		if sum+uint32(rest) != uint32(ticks) {
			t.Fatalf("stages %d + leftover %d != %d", sum, rest, ticks)
		}
	})
}

// TestPropertyHaltCount verifies the number of halts is one per top stage
// plus one per set bit of the remaining budget above the minimum stage.
func TestPropertyHaltCount(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ticks := rapid.Uint16().Draw(t, "ticks")

		stages, _ := DefaultLadder.Decompose(ticks)

		top := uint16(DefaultLadder.Max())
		want := int(ticks/top) + bits.OnesCount16((ticks%top)/MinPeriod)
		if len(stages) != want {
			t.Fatalf("%d ticks took %d halts, want %d", ticks, len(stages), want)
		}
	})
}

// TestPropertySleepMatchesClock replays Sleep on a simulated clock and checks
// the elapsed time is within one minimum stage of the request.
func TestPropertySleepMatchesClock(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ticks := rapid.Uint16().Draw(t, "ticks")
		top := rapid.SampledFrom([]uint16{1024, 2048}).Draw(t, "top")

		b := &fakeBoard{}
		s := Scheduler{Ladder: MustLadder(top), Countdown: b, IRQ: b}
		s.Sleep(ticks)

		if b.elapsed > uint32(ticks) || uint32(ticks)-b.elapsed >= MinPeriod {
			t.Fatalf("slept %d for a request of %d", b.elapsed, ticks)
		}
		for _, e := range b.events {
			if e.kind == "halt" && !e.irq {
				t.Fatalf("halted with interrupts masked")
			}
		}
	})
}
