// Package lib8 contains the 8-bit brightness helpers used to dim colors
// without floating point or division.
package lib8

// Scale8 scales i by scale/256, treating 255 as 1.0: Scale8(i, 0) is always 0
// and Scale8(i, 255) is always i.
func Scale8(i, scale uint8) uint8 {
	return uint8((uint16(i) * (1 + uint16(scale))) >> 8)
}

// Ease8InOutApprox maps a linear 0..255 index onto a piecewise-linear
// ease-in/ease-out curve. The curve is monotonic and fixes 0 and 255.
func Ease8InOutApprox(i uint8) uint8 {
	switch {
	case i < 64:
		return i / 2
	case i > 255-64:
		return 255 - (255-i)/2
	default:
		i -= 64
		return i + i/2 + 32
	}
}
