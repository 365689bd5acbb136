// Package hal declares the small hardware surface the engine needs. The
// firmware implements it on top of TinyGo's machine and device packages; the
// simulator implements it on a virtual clock.
package hal

// Pin is a digital output. machine.Pin satisfies it.
type Pin interface {
	High()
	Low()
}

// InterruptState is the interrupt enable state saved by Disable.
type InterruptState uintptr

// Interrupts controls the global interrupt enable flag.
type Interrupts interface {
	// Disable masks all maskable interrupts and returns the previous state.
	Disable() InterruptState
	// Restore puts back a state returned by Disable.
	Restore(InterruptState)
	// Enable unmasks interrupts unconditionally. It is only used right before
	// halting, since the halt can only end through an interrupt.
	Enable()
}

// Critical runs f with interrupts masked.
func Critical(irq Interrupts, f func()) {
	state := irq.Disable()
	f()
	irq.Restore(state)
}
