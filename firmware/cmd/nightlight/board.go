//go:build avr

package main

import (
	"device/avr"
	"machine"
	"runtime/interrupt"

	"libdb.so/nightlight/hal"
	"libdb.so/nightlight/nap"
	"libdb.so/nightlight/sensor"
	"libdb.so/nightlight/wire"
)

// Pin assignment on the ATtiny85.
const (
	ledPin         = machine.PB2 // ws2812 data, driven through wire.PinMask
	sensorPowerPin = machine.PB1 // high side of the photoresistor divider
	sensorPin      = machine.PB3 // ADC3
)

// admuxADC3 selects ADC3 with VCC as the reference.
const admuxADC3 = avr.ADMUX_MUX1 | avr.ADMUX_MUX0

// board holds the devices of the ATtiny85 nightlight.
type board struct {
	led     wire.Transmitter
	sensor  *sensor.Sampler
	sleeper *nap.Scheduler
}

// setupBoard runs the clock at the full 8 MHz, configures the pins and
// installs the wake handlers. Interrupts stay disabled; the scheduler and the
// sampler enable them only while halted.
func setupBoard() *board {
	irq := interrupts{}
	irq.Disable()

	// Timed sequence: the divider must be written within four cycles of
	// setting the change enable bit.
	avr.CLKPR.Set(avr.CLKPR_CLKPCE)
	avr.CLKPR.Set(0)

	// A watchdog reset leaves WDRF set, which forces WDE on.
	avr.MCUSR.Set(0)
	off := nap.WatchdogOff()
	avr.WDTCR.Set(off[0])
	avr.WDTCR.Set(off[1])

	ledPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	sensorPowerPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	sensorPowerPin.Low()
	sensorPin.Configure(machine.PinConfig{Mode: machine.PinInput})

	// The sensor pin only ever carries an analog level.
	avr.DIDR0.Set(avr.DIDR0_ADC3D)

	interrupt.New(avr.IRQ_WDT, func(interrupt.Interrupt) {
		// Interrupt mode only: without this the watchdog keeps firing.
		avr.WDTCR.Set(0)
	})
	interrupt.New(avr.IRQ_ADC, func(interrupt.Interrupt) {})

	return &board{
		led: routineLED{irq: irq},
		sensor: &sensor.Sampler{
			Power: sensorPowerPin,
			ADC:   adc{},
			IRQ:   irq,
		},
		sleeper: &nap.Scheduler{
			Ladder:    nap.DefaultLadder,
			Countdown: watchdog{},
			IRQ:       irq,
		},
	}
}

type interrupts struct{}

var _ hal.Interrupts = interrupts{}

func (interrupts) Disable() hal.InterruptState {
	return hal.InterruptState(interrupt.Disable())
}

func (interrupts) Restore(s hal.InterruptState) {
	interrupt.Restore(interrupt.State(s))
}

func (interrupts) Enable() {
	avr.Asm("sei")
}

// watchdog is the countdown: the watchdog timer in interrupt mode, running
// off its own 128 kHz oscillator. Prescaler 0 is 2048 oscillator cycles, so a
// tick is about a millisecond.
type watchdog struct{}

var _ nap.Countdown = watchdog{}

// Configure runs with interrupts masked. Changing the prescaler takes the
// timed sequence: WDCE and WDE in one write, then the new value within four
// cycles. WDE is left clear so the watchdog only interrupts.
func (watchdog) Configure(s nap.Stage) {
	w := s.WatchdogWrites()
	avr.WDTCR.Set(w[0])
	avr.WDTCR.Set(w[1])
}

func (watchdog) WaitForExpiry() {
	// Power-down: only the watchdog can wake us.
	avr.MCUCR.Set(avr.MCUCR_SE | avr.MCUCR_SM1)
	avr.Asm("sleep")
	avr.MCUCR.Set(0)
}

// adc is the 8-bit converter on ADC3, left adjusted so that ADCH holds the
// top eight bits.
type adc struct{}

var _ sensor.Converter = adc{}

func (adc) Enable() {
	avr.ADMUX.Set(avr.ADMUX_ADLAR | admuxADC3)
	// Prescaler 64: 125 kHz conversion clock at 8 MHz.
	avr.ADCSRA.Set(avr.ADCSRA_ADEN | avr.ADCSRA_ADIE | avr.ADCSRA_ADPS2 | avr.ADCSRA_ADPS1)
}

func (adc) Await() uint8 {
	// Entering noise reduction sleep starts the conversion; its completion
	// interrupt wakes us.
	avr.MCUCR.Set(avr.MCUCR_SE | avr.MCUCR_SM0)
	avr.Asm("sleep")
	avr.MCUCR.Set(0)
	return avr.ADCH.Get()
}

func (adc) Disable() {
	avr.ADCSRA.Set(0)
}
