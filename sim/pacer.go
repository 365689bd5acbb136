package sim

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// Pacer slows the simulation down to wall-clock time.
type Pacer struct {
	Clock clockwork.Clock
	// Tick is the wall-clock length of one tick at speed 1.
	Tick time.Duration
	// Speed divides every wait. Zero or less disables pacing.
	Speed float64
}

// Wait blocks for the wall-clock length of ticks, or until ctx is done.
func (p *Pacer) Wait(ctx context.Context, ticks uint16) {
	if p.Speed <= 0 {
		return
	}

	d := time.Duration(float64(time.Duration(ticks)*p.Tick) / p.Speed)
	if d <= 0 {
		return
	}

	select {
	case <-ctx.Done():
	case <-p.Clock.After(d):
	}
}
