// Package nightlight ties the configuration to the engine. The engine, the
// effects and the drivers live in subpackages so that the firmware can use
// them without pulling in the host-side configuration.
package nightlight

import (
	"log/slog"

	"github.com/pkg/errors"
	"libdb.so/nightlight/effect"
	"libdb.so/nightlight/engine"
)

// NewEngine validates cfg and creates an engine playing the configured effect
// on the given devices.
func NewEngine(cfg *Config, dev engine.Devices, logger *slog.Logger) (*engine.Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	e, err := effect.New(cfg.Effect, cfg.Effects)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create effect")
	}

	return engine.New(cfg.EngineParams(), dev, e, logger), nil
}
