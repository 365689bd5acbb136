// Package sensor reads the ambient light level from a photoresistor divider.
package sensor

import "libdb.so/nightlight/hal"

// Converter is the analog front end.
type Converter interface {
	// Enable powers the ADC and arms its completion interrupt.
	Enable()
	// Await halts the processor until a conversion completes and returns its
	// 8-bit result.
	Await() uint8
	// Disable powers the ADC off.
	Disable()
}

// Sampler takes single readings and leaves the divider and the ADC unpowered
// in between, which is most of the device's standby budget.
type Sampler struct {
	// Power switches the supply of the photoresistor divider.
	Power hal.Pin
	ADC   Converter
	IRQ   hal.Interrupts
}

// Sample returns one raw reading. Comparing it against a threshold is up to
// the caller.
func (s *Sampler) Sample() uint8 {
	s.Power.High()
	s.ADC.Enable()

	s.IRQ.Enable()
	v := s.ADC.Await()
	s.IRQ.Disable()

	s.Power.Low()
	s.ADC.Disable()

	return v
}
