package effect

import (
	"errors"

	"libdb.so/nightlight/engine"
	"libdb.so/nightlight/nap"
)

// Siren alternates two channels like an emergency light.
type Siren struct {
	// Channels are the two wire channels to alternate.
	Channels []int `toml:"channels"`
	Level    uint8 `toml:"level"`
	// HalfPeriod is how long each channel stays on.
	HalfPeriod uint16 `toml:"half_period"`
	// Flashes is the number of full periods per burst.
	Flashes uint8 `toml:"flashes"`
}

// DefaultSiren alternates red and blue twice a second.
var DefaultSiren = Siren{
	Channels:   []int{engine.Red, engine.Blue},
	Level:      0xff,
	HalfPeriod: 256,
	Flashes:    8,
}

// Validate checks the parameters.
func (s Siren) Validate() error {
	if len(s.Channels) != 2 {
		return errors.New("exactly two channels are needed")
	}
	for _, ch := range s.Channels {
		if err := checkChannel(ch); err != nil {
			return err
		}
	}
	if s.Channels[0] == s.Channels[1] {
		return errors.New("channels must differ")
	}
	if s.Flashes == 0 {
		return errors.New("flashes must be positive")
	}
	if s.HalfPeriod < nap.MinPeriod {
		return errors.New("half period is shorter than the shortest nap")
	}
	return nil
}

func (s *Siren) String() string { return string(SirenKind) }

// Step implements engine.Effect.
func (s *Siren) Step(e *engine.Engine) {
	for i := uint8(0); i < s.Flashes; i++ {
		for _, ch := range s.Channels {
			var c engine.Color
			c[ch] = s.Level
			e.Show(c)
			e.Nap(s.HalfPeriod)
		}
	}
}
