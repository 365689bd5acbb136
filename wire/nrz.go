package wire

// SPIClock is the SPI clock rate at which EncodeSPI output meets WS2812: four
// line bits of 312.5ns per data bit. A 0 bit is 312ns high and 938ns low, a
// 1 bit 625ns high and 625ns low.
const SPIClock = 3_200_000

// LineBitsPerBit is the number of SPI line bits per data bit.
const LineBitsPerBit = 4

// ExpandNRZ converts an 8-bit channel intensity into 32 line bits, MSB first.
// Each data bit x becomes the symbol 1x00.
func ExpandNRZ(b byte) uint32 {
	out := uint32(0x88888888)
	for i := 0; i < 8; i++ {
		if b&(1<<i) != 0 {
			out |= 1 << (LineBitsPerBit*i + 2)
		}
	}
	return out
}

// EncodeSPI encodes a frame for transmission over an SPI MOSI line clocked at
// SPIClock.
func EncodeSPI(frame [FrameSize]byte) [LineBitsPerBit * FrameSize]byte {
	var out [LineBitsPerBit * FrameSize]byte
	for i, b := range frame {
		v := ExpandNRZ(b)
		out[4*i+0] = byte(v >> 24)
		out[4*i+1] = byte(v >> 16)
		out[4*i+2] = byte(v >> 8)
		out[4*i+3] = byte(v)
	}
	return out
}

// SPIBus is an SPI bus. The machine.SPI types of TinyGo satisfy it.
type SPIBus interface {
	Tx(w, r []byte) error
}

// SPI is a Transmitter that drives the LED from the MOSI line of a bus clocked
// at SPIClock. The bus shifts the bits out by itself, so interrupts may stay
// enabled, but nothing else may share the bus.
type SPI struct {
	Bus SPIBus
}

var _ Checked = SPI{}

// Transmit implements Transmitter.
func (s SPI) Transmit(frame [FrameSize]byte) {
	s.TransmitChecked(frame)
}

// TransmitChecked implements Checked.
func (s SPI) TransmitChecked(frame [FrameSize]byte) error {
	out := EncodeSPI(frame)
	return s.Bus.Tx(out[:], nil)
}
