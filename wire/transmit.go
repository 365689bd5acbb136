package wire

import "libdb.so/nightlight/hal"

// Transmitter pushes one frame to the LED. There is nothing to report on
// failure: a corrupted frame simply shows the wrong color.
type Transmitter interface {
	Transmit(frame [FrameSize]byte)
}

// Checked is a Transmitter that can tell when the line rejected a frame, such
// as a driver that does not support the clock it runs at. The engine checks
// the first frame it sends.
type Checked interface {
	Transmitter
	TransmitChecked(frame [FrameSize]byte) error
}

// Line writes bytes onto the data pin with the correct bit timing. The
// ws2812.Device from tinygo.org/x/drivers satisfies it.
type Line interface {
	WriteByte(c byte) error
}

// Critical is a Transmitter that masks interrupts for the whole frame, since
// an interrupt between two bits can stretch a low period past the latch
// threshold.
type Critical struct {
	Line Line
	IRQ  hal.Interrupts
}

var _ Checked = Critical{}

// Transmit implements Transmitter.
func (c Critical) Transmit(frame [FrameSize]byte) {
	c.TransmitChecked(frame)
}

// TransmitChecked implements Checked. The whole frame is written even if a
// byte fails; the first error is returned.
func (c Critical) TransmitChecked(frame [FrameSize]byte) error {
	var err error
	hal.Critical(c.IRQ, func() {
		for _, b := range frame {
			if werr := c.Line.WriteByte(b); werr != nil && err == nil {
				err = werr
			}
		}
	})
	return err
}
