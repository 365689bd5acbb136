// Package engine runs the light effect state machine: wait in the lowest power
// state until it gets dark, then play an effect until it gets light again.
package engine

import (
	"context"
	"fmt"
	"log/slog"

	"libdb.so/nightlight/internal/prng"
	"libdb.so/nightlight/wire"
)

// Sensor takes one ambient light reading.
type Sensor interface {
	Sample() uint8
}

// Sleeper halts for approximately the given number of ticks.
type Sleeper interface {
	Sleep(ticks uint16)
}

// Devices is the hardware the engine drives.
type Devices struct {
	LED     wire.Transmitter
	Sensor  Sensor
	Sleeper Sleeper
}

// Effect is one light effect. Step plays one bounded burst of it; the engine
// checks the light level between bursts.
type Effect interface {
	Step(e *Engine)
	String() string
}

// Starter is implemented by effects that reset internal state whenever it
// gets dark.
type Starter interface {
	Start(e *Engine)
}

// Params tunes the engine.
type Params struct {
	// Threshold is the sample value below which it is considered dark.
	Threshold uint8
	// DarkNap is how long to sleep between samples while waiting for dark.
	DarkNap uint16
	// Seed is the initial random state. Zero means prng.DefaultSeed.
	Seed uint8
}

// DefaultParams are the parameters the device ships with.
var DefaultParams = Params{
	Threshold: 100,
	DarkNap:   10240,
	Seed:      prng.DefaultSeed,
}

// Phase is the engine state.
type Phase uint8

const (
	// DarkWait samples the light level and sleeps until it gets dark.
	DarkWait Phase = iota
	// Running plays the effect.
	Running
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case DarkWait:
		return "dark-wait"
	case Running:
		return "running"
	default:
		return "invalid"
	}
}

// Engine is the effect state machine. It is not safe for concurrent use; on
// the device there is exactly one thread of control.
type Engine struct {
	params Params
	dev    Devices
	effect Effect
	state  *State
	phase  Phase
	logger *slog.Logger
}

// New creates an engine. A nil logger discards everything.
func New(params Params, dev Devices, effect Effect, logger *slog.Logger) *Engine {
	if params.Seed == 0 {
		params.Seed = prng.DefaultSeed
	}
	if logger == nil {
		logger = slog.New(discardHandler{})
	}
	return &Engine{
		params: params,
		dev:    dev,
		effect: effect,
		state:  NewState(params.Seed),
		logger: logger,
	}
}

// Boot clears the LED. It must run once before the first Step. If the LED
// can report line errors, a rejected frame is returned: every later frame
// would fail the same way.
func (e *Engine) Boot() error {
	e.state.Color = Color{}
	if led, ok := e.dev.LED.(wire.Checked); ok {
		if err := led.TransmitChecked(e.state.Color); err != nil {
			return fmt.Errorf("LED rejected the boot frame: %w", err)
		}
		return nil
	}
	e.dev.LED.Transmit(e.state.Color)
	return nil
}

// Run boots the engine and steps it until ctx is canceled. The device runs it
// with a background context, so it never returns there.
func (e *Engine) Run(ctx context.Context) error {
	e.logger.Debug("booting", "effect", e.effect.String())
	if err := e.Boot(); err != nil {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		e.Step()
	}
}

// Step performs one state transition: one sample-and-sleep while waiting for
// dark, or one effect burst followed by a sample while running.
func (e *Engine) Step() {
	switch e.phase {
	case DarkWait:
		if e.dark() {
			e.enter(Running)
			if s, ok := e.effect.(Starter); ok {
				s.Start(e)
			}
			return
		}
		e.Nap(e.params.DarkNap)

	case Running:
		e.effect.Step(e)
		if !e.dark() {
			if !e.state.Color.IsOff() {
				e.Off()
			}
			e.enter(DarkWait)
		}
	}
}

func (e *Engine) dark() bool {
	return e.dev.Sensor.Sample() < e.params.Threshold
}

func (e *Engine) enter(p Phase) {
	e.logger.Debug("phase change", "from", e.phase, "to", p)
	e.phase = p
}

// Phase returns the current phase.
func (e *Engine) Phase() Phase { return e.phase }

// State returns the engine state. Effects may read it but should change the
// color only through Show.
func (e *Engine) State() *State { return e.state }

// Logger returns the engine's logger.
func (e *Engine) Logger() *slog.Logger { return e.logger }

// Show stores c as the current color and sends it to the LED.
func (e *Engine) Show(c Color) {
	e.state.Color = c
	e.dev.LED.Transmit(c)
}

// Off turns the LED off.
func (e *Engine) Off() {
	e.Show(Color{})
}

// Nap sleeps for approximately ticks.
func (e *Engine) Nap(ticks uint16) {
	e.dev.Sleeper.Sleep(ticks)
}

// Rand draws the next pseudo-random byte.
func (e *Engine) Rand() uint8 {
	return e.state.Rand.Next()
}
