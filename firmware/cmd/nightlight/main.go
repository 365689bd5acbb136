//go:build avr

// Command nightlight is the firmware of the ATtiny85 nightlight. The effect is
// picked at build time with a tag:
//
//	tinygo flash -target=attiny85 -tags=flicker ./cmd/nightlight
//
// Without a tag it breathes.
package main

import (
	"context"

	"libdb.so/nightlight/effect"
	"libdb.so/nightlight/engine"
)

func main() {
	b := setupBoard()

	fx, err := effect.New(effectKind, effect.DefaultParams)
	if err != nil {
		// Only reachable with broken defaults. Leave the LED dark.
		for {
			b.sleeper.Sleep(engine.DefaultParams.DarkNap)
		}
	}

	e := engine.New(engine.DefaultParams, engine.Devices{
		LED:     b.led,
		Sensor:  b.sensor,
		Sleeper: b.sleeper,
	}, fx, nil)

	// Run only returns if the LED rejects the boot frame. There is nobody to
	// tell, so stay in the lowest power state.
	e.Run(context.Background())
	for {
		b.sleeper.Sleep(engine.DefaultParams.DarkNap)
	}
}
