//go:build rp2040

package main

import (
	"fmt"
	"machine"

	"libdb.so/nightlight/ledserial"
	"libdb.so/nightlight/wire"
)

// Device stores the current state of the controller.
type Device struct {
	serial SerialReadWriter
	led    wire.Checked
	frame  [wire.FrameSize]byte
}

// NewDevice creates a new device.
func NewDevice(serial machine.Serialer, led wire.Checked) *Device {
	return &Device{
		serial: WrapSerial(serial),
		led:    led,
	}
}

// Run runs the device loop forever.
func (d *Device) Run() {
	d.led.Transmit(d.frame)

	for {
		p, err := d.readPacket()
		if err != nil {
			d.logError(err)
			continue
		}

		if err := d.handlePacket(p); err != nil {
			d.logError(err)
		}
	}
}

func (d *Device) log(msg string) {
	d.sendPacket(ledserial.LogPacket{Message: msg})
}

func (d *Device) logError(err error) {
	d.sendPacket(ledserial.ErrorPacket{Message: err.Error()})
}

func (d *Device) sendPacket(p ledserial.OutgoingPacket) {
	ledserial.WriteOutgoingPacket(d.serial, p)
}

func (d *Device) readPacket() (ledserial.IncomingPacket, error) {
	statusLED.On()
	defer statusLED.Off()

	return ledserial.ReadIncomingPacket(d.serial)
}

func (d *Device) handlePacket(p ledserial.IncomingPacket) error {
	switch p := p.(type) {
	case ledserial.ClearPacket:
		d.frame = [wire.FrameSize]byte{}
		d.log("cleared")

	case ledserial.ShowPacket:
		d.frame = p.Frame

	default:
		return fmt.Errorf("unknown packet type: %T", p)
	}

	if err := d.led.TransmitChecked(d.frame); err != nil {
		return fmt.Errorf("failed to show frame: %w", err)
	}

	d.sendPacket(ledserial.AckPacket{
		IncomingPacketType: p.Type(),
	})
	return nil
}
