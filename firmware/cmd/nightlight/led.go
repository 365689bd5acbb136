//go:build avr

package main

import (
	"device/avr"
	"errors"
	"machine"

	"libdb.so/nightlight/hal"
	"libdb.so/nightlight/wire"
)

// cpuClock is the clock wire.Routine is timed for.
const cpuClock = 8_000_000

var errClockSpeed = errors.New("transmit routine needs an 8 MHz clock")

// routineLED sends frames with wire.Routine, the same bit loop the simulator
// checks cycle by cycle.
type routineLED struct {
	irq hal.Interrupts
}

var _ wire.Checked = routineLED{}

// Transmit implements wire.Transmitter.
func (l routineLED) Transmit(frame [wire.FrameSize]byte) {
	l.TransmitChecked(frame)
}

// TransmitChecked implements wire.Checked.
//
//go:noinline
func (l routineLED) TransmitChecked(frame [wire.FrameSize]byte) error {
	if machine.CPUFrequency() != cpuClock {
		return errClockSpeed
	}

	// The routine ends with sei; restoring the saved state masks again.
	hal.Critical(l.irq, func() {
		avr.AsmFull(wire.RoutineAsm, map[string]interface{}{
			"data":  &frame[0],
			"lo":    uint8(0),
			"count": uint8(wire.FrameSize),
			"hi":    uint8(wire.PinMask),
			"bits":  uint8(8),
			"byte":  frame[0],
		})
	})
	return nil
}
