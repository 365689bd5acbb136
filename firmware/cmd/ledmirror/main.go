//go:build rp2040

// Command ledmirror is the LED controller nightsim mirrors frames to. It runs
// on a Seeed XIAO RP2040, reads ledserial packets from USB and drives a
// ws2812 LED from the MOSI line of SPI0.
//
//	tinygo flash -target=xiao-rp2040 ./cmd/ledmirror
package main

import (
	"machine"

	"libdb.so/nightlight/wire"
)

func main() {
	spi := machine.SPI0
	spi.Configure(machine.SPIConfig{
		Frequency: wire.SPIClock,
		SDO:       machine.SPI0_SDO_PIN,
		SCK:       machine.SPI0_SCK_PIN,
		Mode:      0,
	})

	d := NewDevice(machine.Serial, wire.SPI{Bus: spi})
	d.Run()
}
