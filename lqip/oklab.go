package lqip

import "math"

// Lab is a color in the OKLab space.
type Lab struct {
	L, A, B float64
}

// Chroma returns the distance from the neutral axis.
func (c Lab) Chroma() float64 {
	return math.Hypot(c.A, c.B)
}

func srgbToLinear(x float64) float64 {
	if x >= 0.04045 {
		return math.Pow((x+0.055)/1.055, 2.4)
	}
	return x / 12.92
}

func linearToSRGB(x float64) float64 {
	if x >= 0.0031308 {
		return 1.055*math.Pow(x, 1/2.4) - 0.055
	}
	return 12.92 * x
}

// RGBToLab converts 8-bit sRGB components (fractional values allowed) to
// OKLab.
func RGBToLab(r, g, b float64) Lab {
	lr := srgbToLinear(r / 255)
	lg := srgbToLinear(g / 255)
	lb := srgbToLinear(b / 255)

	l := math.Cbrt(0.4122214708*lr + 0.5363325363*lg + 0.0514459929*lb)
	m := math.Cbrt(0.2119034982*lr + 0.6806995451*lg + 0.1073969566*lb)
	s := math.Cbrt(0.0883024619*lr + 0.2817188376*lg + 0.6299787005*lb)

	return Lab{
		L: l*0.2104542553 + m*0.793617785 + s*-0.0040720468,
		A: l*1.9779984951 + m*-2.428592205 + s*0.4505937099,
		B: l*0.0259040371 + m*0.7827717662 + s*-0.808675766,
	}
}

// RGB converts the color back to 8-bit sRGB, clamping out-of-gamut values.
func (c Lab) RGB() (r, g, b uint8) {
	l := c.L + 0.3963377774*c.A + 0.2158037573*c.B
	m := c.L - 0.1055613458*c.A - 0.0638541728*c.B
	s := c.L - 0.0894841775*c.A - 1.2914855480*c.B
	l, m, s = l*l*l, m*m*m, s*s*s

	lr := 4.0767416621*l - 3.3077115913*m + 0.2309699292*s
	lg := -1.2684380046*l + 2.6097574011*m - 0.3413193965*s
	lb := -0.0041960863*l - 0.7034186147*m + 1.7076147010*s

	return toByte(lr), toByte(lg), toByte(lb)
}

func toByte(linear float64) uint8 {
	v := linearToSRGB(linear) * 255
	switch {
	case v <= 0 || math.IsNaN(v):
		return 0
	case v >= 255:
		return 255
	}
	return uint8(round(v))
}

func round(x float64) float64 {
	return math.Floor(x + 0.5)
}
