package effect

import (
	"errors"

	"libdb.so/nightlight/engine"
	"libdb.so/nightlight/internal/lib8"
	"libdb.so/nightlight/nap"
)

// Breathe slowly fades a random color in and out.
type Breathe struct {
	// Loops is the number of breaths per burst. A new color is drawn for
	// every burst.
	Loops uint8 `toml:"loops"`
	// Peak is the highest ramp index, fed through the easing curve.
	Peak uint8 `toml:"peak"`
	// StepNap is the pause after each ramp step.
	StepNap uint16 `toml:"step_nap"`
	// CyclePause is the pause after each breath.
	CyclePause uint16 `toml:"cycle_pause"`
}

// DefaultBreathe is a ~4s breath, three times per color.
var DefaultBreathe = Breathe{
	Loops:      3,
	Peak:       127,
	StepNap:    16,
	CyclePause: 512,
}

// Validate checks the parameters.
func (b Breathe) Validate() error {
	if b.Loops == 0 {
		return errors.New("loops must be positive")
	}
	if b.Peak < 2 {
		return errors.New("peak must be at least 2")
	}
	if b.StepNap < nap.MinPeriod {
		return errors.New("step nap is shorter than the shortest nap")
	}
	return nil
}

func (b *Breathe) String() string { return string(BreatheKind) }

// Ramp returns the ramp indices of one breath: 1 up to Peak, then back down
// to 1.
func (b *Breathe) Ramp() []uint8 {
	ramp := make([]uint8, 0, 2*int(b.Peak)-1)
	for i := uint8(1); i < b.Peak; i++ {
		ramp = append(ramp, i)
	}
	for i := b.Peak; i >= 1; i-- {
		ramp = append(ramp, i)
	}
	return ramp
}

// Step implements engine.Effect.
func (b *Breathe) Step(e *engine.Engine) {
	var base engine.Color
	for i := range base {
		base[i] = e.Rand()
	}

	e.Logger().Debug("breathing", "color", base)

	for loop := uint8(0); loop < b.Loops; loop++ {
		b.breath(e, base)
		e.Nap(b.CyclePause)
	}
}

func (b *Breathe) breath(e *engine.Engine, base engine.Color) {
	index := uint8(1)
	up := true
	for index > 0 {
		// Neighboring indices often scale to the same color. Those are not
		// sent again; the nap still runs so the breath keeps its length.
		if c := base.Scale(lib8.Ease8InOutApprox(index)); c != e.State().Color {
			e.Show(c)
		}
		e.Nap(b.StepNap)

		if index == b.Peak {
			up = false
		}
		if up {
			index++
		} else {
			index--
		}
	}
}
