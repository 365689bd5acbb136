// Package sim is a virtual nightlight board. It implements the hardware
// interfaces on a virtual tick clock, replays scripted light levels, checks
// the sequencing rules the real hardware depends on and records everything
// sent to the LED.
package sim

import (
	"fmt"

	"libdb.so/nightlight/hal"
	"libdb.so/nightlight/nap"
	"libdb.so/nightlight/sensor"
	"libdb.so/nightlight/wire"
)

// CPUClock is the core clock of the simulated device.
const CPUClock = 8_000_000

// EventKind is a kind of Event.
type EventKind uint8

const (
	// FrameEvent is a frame latched by the LED.
	FrameEvent EventKind = iota
	// HaltEvent is one countdown halt.
	HaltEvent
	// NapEvent is a run of consecutive halts, produced by Timeline.
	NapEvent
	// SampleEvent is a light sample.
	SampleEvent
)

// String returns the event kind name.
func (k EventKind) String() string {
	switch k {
	case FrameEvent:
		return "frame"
	case HaltEvent:
		return "halt"
	case NapEvent:
		return "nap"
	case SampleEvent:
		return "sample"
	default:
		return fmt.Sprintf("EventKind(%d)", k)
	}
}

// Event is something observable that happened on the board.
type Event struct {
	Kind EventKind
	// Tick is the virtual time at which the event started.
	Tick uint64
	// Frame is set for FrameEvent.
	Frame [wire.FrameSize]byte
	// Ticks is the length of a HaltEvent or NapEvent.
	Ticks uint32
	// Sample is set for SampleEvent.
	Sample uint8
}

// Board is a virtual device. Use NewBoard.
type Board struct {
	// LED, Sensor and Sleeper are the devices to hand to the engine.
	LED     wire.Transmitter
	Sensor  *sensor.Sampler
	Sleeper *nap.Scheduler

	// OnFrame, if set, is called for every frame the LED latches.
	OnFrame func(frame [wire.FrameSize]byte)
	// Pace, if set, is called for every halt with its length.
	Pace func(ticks uint16)

	script *Script
	now    uint64
	events []Event
	errs   []error

	irq      bool
	power    bool
	adc      bool
	armed    nap.Stage
	isArmed  bool
	pending  []byte
	shifting bool
}

// NewBoard creates a board whose light sensor replays script.
func NewBoard(script *Script) *Board {
	b := &Board{script: script}
	b.LED = wire.Critical{Line: (*line)(b), IRQ: (*interrupts)(b)}
	b.Sensor = &sensor.Sampler{
		Power: (*sensorPower)(b),
		ADC:   (*adc)(b),
		IRQ:   (*interrupts)(b),
	}
	b.Sleeper = &nap.Scheduler{
		Ladder:    nap.DefaultLadder,
		Countdown: (*countdown)(b),
		IRQ:       (*interrupts)(b),
	}
	return b
}

// Now returns the virtual time in ticks.
func (b *Board) Now() uint64 { return b.now }

// Events returns everything that happened so far.
func (b *Board) Events() []Event { return b.events }

// Frames returns the frames latched by the LED so far.
func (b *Board) Frames() [][wire.FrameSize]byte {
	var frames [][wire.FrameSize]byte
	for _, e := range b.events {
		if e.Kind == FrameEvent {
			frames = append(frames, e.Frame)
		}
	}
	return frames
}

// Timeline returns the events with consecutive halts merged into naps.
func (b *Board) Timeline() []Event {
	var timeline []Event
	for _, e := range b.events {
		if e.Kind == HaltEvent {
			if n := len(timeline); n > 0 && timeline[n-1].Kind == NapEvent {
				timeline[n-1].Ticks += e.Ticks
				continue
			}
			e.Kind = NapEvent
		}
		timeline = append(timeline, e)
	}
	return timeline
}

// Violations returns the sequencing errors observed so far, such as halting
// with interrupts masked.
func (b *Board) Violations() []error { return b.errs }

// Reset forgets recorded events and violations but keeps the clock running.
func (b *Board) Reset() {
	b.events = nil
	b.errs = nil
}

func (b *Board) violate(format string, args ...any) {
	err := fmt.Errorf("tick %d: "+format, append([]any{b.now}, args...)...)
	b.errs = append(b.errs, err)
}

type interrupts Board

func (i *interrupts) Disable() hal.InterruptState {
	var s hal.InterruptState
	if i.irq {
		s = 1
	}
	i.irq = false
	return s
}

func (i *interrupts) Restore(s hal.InterruptState) { i.irq = s != 0 }
func (i *interrupts) Enable()                      { i.irq = true }

type countdown Board

func (c *countdown) Configure(s nap.Stage) {
	c.armed = s
	c.isArmed = true
}

func (c *countdown) WaitForExpiry() {
	b := (*Board)(c)
	if !b.isArmed {
		b.violate("halt without an armed countdown")
		return
	}
	if !b.irq {
		b.violate("halt with interrupts masked would never wake")
	}
	if b.power || b.adc {
		b.violate("halt with the light sensor powered")
	}

	period := b.armed.Period
	b.events = append(b.events, Event{Kind: HaltEvent, Tick: b.now, Ticks: uint32(period)})
	b.now += uint64(period)
	// The wake handler disarms the countdown.
	b.isArmed = false

	if b.Pace != nil {
		b.Pace(period)
	}
}

type sensorPower Board

func (p *sensorPower) High() { p.power = true }
func (p *sensorPower) Low()  { p.power = false }

type adc Board

func (a *adc) Enable()  { a.adc = true }
func (a *adc) Disable() { a.adc = false }

func (a *adc) Await() uint8 {
	b := (*Board)(a)
	if !b.power {
		b.violate("sampling an unpowered sensor")
	}
	if !b.adc {
		b.violate("sampling with the ADC disabled")
	}
	if !b.irq {
		b.violate("waiting for a conversion with interrupts masked")
	}
	if b.shifting {
		b.violate("sampling in the middle of a frame")
	}

	v := b.script.Next()
	b.events = append(b.events, Event{Kind: SampleEvent, Tick: b.now, Sample: v})
	return v
}

type line Board

// WriteByte shifts one byte out. Once a whole frame is in, the transmit
// routine is simulated at the cycle level and the resulting waveform is
// decoded the way the LED would.
func (l *line) WriteByte(c byte) error {
	b := (*Board)(l)
	if b.irq {
		b.violate("transmitting with interrupts enabled")
	}
	if b.adc || b.power {
		b.violate("transmitting with the light sensor powered")
	}

	b.shifting = true
	b.pending = append(b.pending, c)
	if len(b.pending) < wire.FrameSize {
		return nil
	}

	var frame [wire.FrameSize]byte
	copy(frame[:], b.pending)
	b.pending = b.pending[:0]
	b.shifting = false

	trace, err := wire.Simulate(wire.Routine, frame, CPUClock)
	if err != nil {
		b.violate("transmit routine: %v", err)
		return err
	}
	latched, err := wire.Decode(trace.Pulses(), wire.WS2812)
	if err != nil {
		b.violate("LED rejected frame %x: %v", frame, err)
		return err
	}

	b.events = append(b.events, Event{Kind: FrameEvent, Tick: b.now, Frame: latched})
	if b.OnFrame != nil {
		b.OnFrame(latched)
	}
	return nil
}
