// Package effect contains the light effects the engine can play. Exactly one
// is active on a device; the firmware picks it at build time.
package effect

import (
	"fmt"

	"libdb.so/nightlight/engine"
)

// Kind names an effect.
type Kind string

const (
	BreatheKind Kind = "breathe"
	FlickerKind Kind = "flicker"
	SirenKind   Kind = "siren"
	MorseKind   Kind = "morse"
)

// Kinds lists every effect.
var Kinds = []Kind{BreatheKind, FlickerKind, SirenKind, MorseKind}

// Params holds the parameters of every effect. Only the selected effect's
// section is used.
type Params struct {
	Breathe Breathe `toml:"breathe"`
	Flicker Flicker `toml:"flicker"`
	Siren   Siren   `toml:"siren"`
	Morse   Morse   `toml:"morse"`
}

// DefaultParams are the parameters the device ships with.
var DefaultParams = Params{
	Breathe: DefaultBreathe,
	Flicker: DefaultFlicker,
	Siren:   DefaultSiren,
	Morse:   DefaultMorse,
}

// New returns the effect of the given kind after validating its parameters.
// The returned effect holds a copy of the parameters.
func New(kind Kind, p Params) (engine.Effect, error) {
	var fx interface {
		engine.Effect
		Validate() error
	}

	switch kind {
	case BreatheKind:
		b := p.Breathe
		fx = &b
	case FlickerKind:
		f := p.Flicker
		fx = &f
	case SirenKind:
		s := p.Siren
		fx = &s
	case MorseKind:
		m := p.Morse
		fx = &m
	default:
		return nil, fmt.Errorf("unknown effect %q", kind)
	}

	if err := fx.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return fx, nil
}

// Validate checks the parameters of every effect.
func (p Params) Validate() error {
	if err := p.Breathe.Validate(); err != nil {
		return fmt.Errorf("breathe: %w", err)
	}
	if err := p.Flicker.Validate(); err != nil {
		return fmt.Errorf("flicker: %w", err)
	}
	if err := p.Siren.Validate(); err != nil {
		return fmt.Errorf("siren: %w", err)
	}
	if err := p.Morse.Validate(); err != nil {
		return fmt.Errorf("morse: %w", err)
	}
	return nil
}

func checkChannel(ch int) error {
	if ch < 0 || ch >= len(engine.Color{}) {
		return fmt.Errorf("channel %d out of range", ch)
	}
	return nil
}
