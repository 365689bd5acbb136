//go:build rp2040

package main

import (
	"machine"

	"tinygo.org/x/drivers/ws2812"
)

// statusLED is the onboard ws2812 of the XIAO. It lights up white while
// waiting for a packet.
var statusLED = &onboardLED{
	power: machine.GPIO11,
	data:  machine.GPIO12,
}

type onboardLED struct {
	power machine.Pin
	data  machine.Pin
	led   ws2812.Device
	init  bool
}

func (l *onboardLED) setup() {
	if l.init {
		return
	}
	// https://wiki.seeedstudio.com/XIAO-RP2040-with-Arduino/
	l.power.Configure(machine.PinConfig{Mode: machine.PinOutput})
	l.power.Low()

	l.data.Configure(machine.PinConfig{Mode: machine.PinOutput})
	l.led = ws2812.New(l.data)
	l.init = true
}

func (l *onboardLED) On() {
	l.setup()
	l.power.High()
	// The onboard LED takes green first too.
	l.led.WriteByte(0xFF)
	l.led.WriteByte(0xFF)
	l.led.WriteByte(0xFF)
}

func (l *onboardLED) Off() {
	l.setup()
	l.power.Low()
}
