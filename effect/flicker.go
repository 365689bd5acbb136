package effect

import (
	"errors"

	"libdb.so/nightlight/engine"
	"libdb.so/nightlight/nap"
)

// Flicker imitates a candle on a single channel: mostly bright, sometimes
// dipping, with irregular pauses.
type Flicker struct {
	// Draws is the number of random draws per burst.
	Draws uint8 `toml:"draws"`
	// Channel is the wire channel that flickers.
	Channel int `toml:"channel"`
	// Bright and Dim are the two channel levels.
	Bright uint8 `toml:"bright"`
	Dim    uint8 `toml:"dim"`
	// DimOneIn is the odds of a dim draw: a draw divisible by it is dim.
	DimOneIn uint8 `toml:"dim_one_in"`
	// PauseOneIn is the odds of an extra pause.
	PauseOneIn uint8 `toml:"pause_one_in"`
	// Nap is the pause after every draw, and the length of the extra pause.
	Nap uint16 `toml:"nap"`
}

// DefaultFlicker flickers the red channel.
var DefaultFlicker = Flicker{
	Draws:      255,
	Channel:    engine.Red,
	Bright:     0x7f,
	Dim:        0x60,
	DimOneIn:   8,
	PauseOneIn: 5,
	Nap:        64,
}

// Validate checks the parameters.
func (f Flicker) Validate() error {
	if err := checkChannel(f.Channel); err != nil {
		return err
	}
	if f.Draws == 0 {
		return errors.New("draws must be positive")
	}
	if f.DimOneIn == 0 || f.PauseOneIn == 0 {
		return errors.New("odds must be positive")
	}
	if f.Nap < nap.MinPeriod {
		return errors.New("nap is shorter than the shortest nap")
	}
	return nil
}

func (f *Flicker) String() string { return string(FlickerKind) }

// Level returns the channel level and whether to pause longer for a random
// draw.
func (f *Flicker) Level(r uint8) (level uint8, pause bool) {
	level = f.Bright
	if r%f.DimOneIn == 0 {
		level = f.Dim
	}
	return level, r%f.PauseOneIn == 0
}

// Step implements engine.Effect.
func (f *Flicker) Step(e *engine.Engine) {
	for i := uint8(0); i < f.Draws; i++ {
		level, pause := f.Level(e.Rand())

		var c engine.Color
		c[f.Channel] = level
		e.Show(c)

		if pause {
			e.Nap(f.Nap)
		}
		e.Nap(f.Nap)
	}
}
