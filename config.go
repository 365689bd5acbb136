package nightlight

import (
	"encoding"
	"io"
	"time"

	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"
	"libdb.so/nightlight/effect"
	"libdb.so/nightlight/engine"
	"libdb.so/nightlight/nap"
	"libdb.so/nightlight/sim"
)

// Config is the configuration of a nightlight. The device is built with the
// defaults; the simulator reads it from TOML.
type Config struct {
	// Effect is the effect to play.
	Effect effect.Kind `toml:"effect"`
	// Threshold is the light sample below which it is considered dark.
	Threshold uint8 `toml:"threshold"`
	// DarkNap is the time between light samples while waiting for dark, in
	// ticks.
	DarkNap uint16 `toml:"dark_nap"`
	// Seed is the initial state of the random source. It must not be zero.
	Seed uint8 `toml:"seed"`
	// LadderTop is the longest countdown period of the sleep ladder.
	LadderTop uint16 `toml:"ladder_top"`

	// Effects holds the parameters of each effect.
	Effects effect.Params `toml:"effects"`

	// Sim configures the simulator.
	Sim SimConfig `toml:"sim"`
}

// SimConfig is the configuration of the simulator.
type SimConfig struct {
	// Tick is the wall-clock length of one tick.
	Tick TOMLDuration `toml:"tick"`
	// Samples is the light sensor script, replayed in a loop.
	Samples []int `toml:"samples"`
	// Device is the serial port of an LED controller to mirror frames to.
	// Empty disables mirroring.
	Device string `toml:"device"`
	// Baud is the baud rate for the serial connection.
	Baud int `toml:"baud"`
}

// DefaultConfig returns the configuration the device ships with.
func DefaultConfig() *Config {
	return &Config{
		Effect:    effect.BreatheKind,
		Threshold: engine.DefaultParams.Threshold,
		DarkNap:   engine.DefaultParams.DarkNap,
		Seed:      engine.DefaultParams.Seed,
		LadderTop: nap.DefaultLadder.Max(),
		Effects:   effect.DefaultParams,
		Sim: SimConfig{
			Tick:    TOMLDuration(time.Millisecond),
			Samples: []int{150, 150, 40, 40, 40, 150},
			Baud:    115200,
		},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if !knownEffect(c.Effect) {
		return errors.Errorf("unknown effect %q", c.Effect)
	}
	if c.Threshold == 0 {
		return errors.New("threshold must be positive, or it would never get dark")
	}
	if c.Seed == 0 {
		return errors.New("seed must not be zero")
	}
	if c.DarkNap < nap.MinPeriod {
		return errors.Errorf("dark nap %d is shorter than the shortest nap", c.DarkNap)
	}
	if _, err := nap.NewLadder(c.LadderTop); err != nil {
		return errors.Wrap(err, "invalid ladder")
	}
	if err := c.Effects.Validate(); err != nil {
		return errors.Wrap(err, "invalid effect parameters")
	}
	if c.Sim.Tick <= 0 {
		return errors.New("sim tick must be positive")
	}
	if _, err := c.Sim.Script(); err != nil {
		return errors.Wrap(err, "invalid sim samples")
	}
	return nil
}

func knownEffect(kind effect.Kind) bool {
	for _, k := range effect.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// EngineParams returns the engine parameters.
func (c *Config) EngineParams() engine.Params {
	return engine.Params{
		Threshold: c.Threshold,
		DarkNap:   c.DarkNap,
		Seed:      c.Seed,
	}
}

// Ladder returns the sleep ladder.
func (c *Config) Ladder() nap.Ladder {
	return nap.MustLadder(c.LadderTop)
}

// Script returns the light sensor script for the simulator.
func (c *SimConfig) Script() (*sim.Script, error) {
	if len(c.Samples) == 0 {
		return nil, errors.New("no samples")
	}
	samples := make([]uint8, len(c.Samples))
	for i, v := range c.Samples {
		if v < 0 || v > 0xFF {
			return nil, errors.Errorf("sample %d is not 8-bit", v)
		}
		samples[i] = uint8(v)
	}
	return sim.NewScript(samples...).Loop(), nil
}

// TOMLDuration is a duration that can be parsed from TOML.
type TOMLDuration time.Duration

var (
	_ encoding.TextUnmarshaler = (*TOMLDuration)(nil)
	_ encoding.TextMarshaler   = (*TOMLDuration)(nil)
)

func (d *TOMLDuration) UnmarshalText(text []byte) error {
	duration, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = TOMLDuration(duration)
	return nil
}

func (d TOMLDuration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// ParseConfig parses a configuration from a reader. Missing fields keep their
// default values.
func ParseConfig(r io.Reader) (*Config, error) {
	config := DefaultConfig()
	if err := toml.NewDecoder(r).Decode(config); err != nil {
		return nil, errors.Wrap(err, "failed to decode config")
	}
	return config, nil
}
