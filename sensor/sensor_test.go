package sensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"libdb.so/nightlight/hal"
)

type board struct {
	log   []string
	irq   bool
	adc   bool
	power bool
	value uint8
}

func (b *board) High() { b.power = true; b.log = append(b.log, "power on") }
func (b *board) Low()  { b.power = false; b.log = append(b.log, "power off") }

func (b *board) Enable()  { b.adc = true; b.log = append(b.log, "adc on") }
func (b *board) Disable() { b.adc = false; b.log = append(b.log, "adc off") }

func (b *board) Await() uint8 {
	if !b.irq {
		b.log = append(b.log, "halt masked")
	} else {
		b.log = append(b.log, "halt")
	}
	return b.value
}

type irq struct{ b *board }

func (i irq) Disable() hal.InterruptState {
	i.b.irq = false
	i.b.log = append(i.b.log, "cli")
	return 0
}
func (i irq) Restore(hal.InterruptState) {}
func (i irq) Enable()                    { i.b.irq = true; i.b.log = append(i.b.log, "sei") }

func TestSample(t *testing.T) {
	b := &board{value: 42}
	s := Sampler{Power: b, ADC: b, IRQ: irq{b}}

	assert.Equal(t, uint8(42), s.Sample())
	assert.Equal(t, []string{
		"power on",
		"adc on",
		"sei",
		"halt",
		"cli",
		"power off",
		"adc off",
	}, b.log)
}

func TestSamplePowersDown(t *testing.T) {
	b := &board{value: 200}
	s := Sampler{Power: b, ADC: b, IRQ: irq{b}}

	for i := 0; i < 3; i++ {
		s.Sample()
		assert.False(t, b.power, "divider left powered after sample %d", i)
		assert.False(t, b.adc, "adc left on after sample %d", i)
		assert.False(t, b.irq, "interrupts left on after sample %d", i)
	}
}
