package imaging

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// HSV8 is a color in 8-bit HSV using the OpenCV encoding:
//   - H: 0-179 (degrees halved)
//   - S: 0-255
//   - V: 0-255
//
// The suppressor's color ranges are calibrated for this encoding.
type HSV8 struct {
	H, S, V uint8
}

// Lab8 is a color in 8-bit CIE L*a*b* using the OpenCV encoding:
//   - L: L* scaled from 0-100 to 0-255
//   - A, B: a* and b* offset by 128
type Lab8 struct {
	L, A, B uint8
}

// ToHSV8 converts 8-bit RGB to 8-bit HSV.
//
// The hue is computed by go-colorful in degrees (0-360) and halved. A hue that
// rounds up to 180 wraps to 0, since 180 and 0 are the same red.
func ToHSV8(r, g, b uint8) HSV8 {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	h, s, v := c.Hsv()

	hh := int(math.Round(h / 2))
	if hh >= 180 {
		hh -= 180
	}
	return HSV8{
		H: uint8(hh),
		S: clampByte(s * 255),
		V: clampByte(v * 255),
	}
}

// ToLab8 converts 8-bit sRGB to 8-bit L*a*b* under the D65 white point.
//
// go-colorful reports L in 0-1 and a/b in hundredths, so L is scaled by 255
// and a/b by 100 before the 128 offset.
func ToLab8(r, g, b uint8) Lab8 {
	c := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
	l, a, bb := c.Lab()
	return Lab8{
		L: clampByte(l * 255),
		A: clampByte(a*100 + 128),
		B: clampByte(bb*100 + 128),
	}
}

// clampByte rounds v to the nearest integer and saturates it to 0-255.
func clampByte(v float64) uint8 {
	v = math.Round(v)
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
