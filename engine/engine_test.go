package engine_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"libdb.so/nightlight/engine"
	"libdb.so/nightlight/hal"
	"libdb.so/nightlight/sim"
	"libdb.so/nightlight/wire"
)

type blinkEffect struct {
	steps  int
	starts int
}

func (b *blinkEffect) String() string { return "blink" }

func (b *blinkEffect) Start(e *engine.Engine) { b.starts++ }

func (b *blinkEffect) Step(e *engine.Engine) {
	b.steps++
	e.Show(engine.RGB(0xFF, 0, 0))
	e.Nap(64)
}

func newEngine(t *testing.T, fx engine.Effect, samples ...uint8) (*engine.Engine, *sim.Board) {
	t.Helper()

	board := sim.NewBoard(sim.NewScript(samples...))
	t.Cleanup(func() {
		assert.Empty(t, board.Violations())
	})

	e := engine.New(engine.DefaultParams, engine.Devices{
		LED:     board.LED,
		Sensor:  board.Sensor,
		Sleeper: board.Sleeper,
	}, fx, nil)
	return e, board
}

func TestDarkWaitTransition(t *testing.T) {
	fx := &blinkEffect{}
	e, board := newEngine(t, fx, 150, 150, 40)
	require.NoError(t, e.Boot())

	e.Step()
	assert.Equal(t, engine.DarkWait, e.Phase())
	e.Step()
	assert.Equal(t, engine.DarkWait, e.Phase())
	e.Step()
	assert.Equal(t, engine.Running, e.Phase())

	assert.Equal(t, 1, fx.starts)
	assert.Zero(t, fx.steps)
	assert.Equal(t, uint64(2*10240), board.Now())
}

func TestThresholdBoundary(t *testing.T) {
	fx := &blinkEffect{}
	e, _ := newEngine(t, fx, 100, 99)

	e.Step()
	assert.Equal(t, engine.DarkWait, e.Phase(), "100 is not dark")
	e.Step()
	assert.Equal(t, engine.Running, e.Phase(), "99 is dark")
}

func TestLightTurnsOff(t *testing.T) {
	fx := &blinkEffect{}
	e, board := newEngine(t, fx, 10, 10, 10, 200)

	require.NoError(t, e.Boot())
	for i := 0; i < 4; i++ {
		e.Step()
	}

	assert.Equal(t, engine.DarkWait, e.Phase())
	assert.Equal(t, 3, fx.steps)

	frames := board.Frames()
	require.NotEmpty(t, frames)
	assert.Equal(t, [3]byte{}, frames[len(frames)-1], "LED must be off after it gets light")
	assert.True(t, e.State().Color.IsOff())
}

func TestLightSkipsRedundantOff(t *testing.T) {
	e, board := newEngine(t, offEffect{}, 10, 200)

	e.Step()
	e.Step()

	assert.Equal(t, engine.DarkWait, e.Phase())
	assert.Empty(t, board.Frames(), "nothing was lit, so nothing should be sent")
}

type offEffect struct{}

func (offEffect) String() string        { return "off" }
func (offEffect) Step(e *engine.Engine) { e.Nap(16) }

func TestRunCanceled(t *testing.T) {
	e, board := newEngine(t, &blinkEffect{}, 200)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := e.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, [][3]byte{{}}, board.Frames(), "boot should clear the LED")
}

type brokenLine struct{}

func (brokenLine) WriteByte(c byte) error { return errors.New("unknown clock speed") }

type openIRQ struct{}

func (openIRQ) Disable() hal.InterruptState { return 0 }
func (openIRQ) Restore(hal.InterruptState)  {}
func (openIRQ) Enable()                     {}

func TestBootReportsLineError(t *testing.T) {
	board := sim.NewBoard(sim.NewScript(200))
	e := engine.New(engine.DefaultParams, engine.Devices{
		LED:     wire.Critical{Line: brokenLine{}, IRQ: openIRQ{}},
		Sensor:  board.Sensor,
		Sleeper: board.Sleeper,
	}, &blinkEffect{}, nil)

	assert.ErrorContains(t, e.Boot(), "unknown clock speed")
	assert.ErrorContains(t, e.Run(context.Background()), "unknown clock speed")
}

func TestBootOnBoard(t *testing.T) {
	e, board := newEngine(t, &blinkEffect{})

	require.NoError(t, e.Boot())
	assert.Equal(t, [][3]byte{{}}, board.Frames())
}

func TestRunSteps(t *testing.T) {
	fx := &blinkEffect{}
	board := sim.NewBoard(sim.NewScript(200, 10, 10))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	steps := 0
	board.Pace = func(uint16) {
		steps++
		if steps == 3 {
			cancel()
		}
	}

	e := engine.New(engine.DefaultParams, engine.Devices{
		LED:     board.LED,
		Sensor:  board.Sensor,
		Sleeper: board.Sleeper,
	}, fx, nil)

	assert.ErrorIs(t, e.Run(ctx), context.Canceled)
	assert.Empty(t, board.Violations())
}

func TestRandIsDeterministic(t *testing.T) {
	a, _ := newEngine(t, offEffect{})
	b, _ := newEngine(t, offEffect{})

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Rand(), b.Rand())
	}
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "dark-wait", engine.DarkWait.String())
	assert.Equal(t, "running", engine.Running.String())
}
