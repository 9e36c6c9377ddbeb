package common

// ColorType is the IHDR color type field.
type ColorType uint8

// Color types
const (
	ColorGray      ColorType = 0
	ColorRGB       ColorType = 2
	ColorIndexed   ColorType = 3
	ColorGrayAlpha ColorType = 4
	ColorRGBA      ColorType = 6
)

// String returns a short name for the color type
func (c ColorType) String() string {
	switch c {
	case ColorGray:
		return "gray"
	case ColorRGB:
		return "rgb"
	case ColorIndexed:
		return "indexed"
	case ColorGrayAlpha:
		return "gray+alpha"
	case ColorRGBA:
		return "rgb+alpha"
	default:
		return "unknown"
	}
}

// Channels returns the number of samples per pixel, or 0 for an unknown type.
func (c ColorType) Channels() int {
	switch c {
	case ColorGray, ColorIndexed:
		return 1
	case ColorGrayAlpha:
		return 2
	case ColorRGB:
		return 3
	case ColorRGBA:
		return 4
	default:
		return 0
	}
}

// ValidDepth reports whether bitDepth is legal for the color type.
func (c ColorType) ValidDepth(bitDepth int) bool {
	switch c {
	case ColorGray:
		return bitDepth == 1 || bitDepth == 2 || bitDepth == 4 || bitDepth == 8 || bitDepth == 16
	case ColorIndexed:
		return bitDepth == 1 || bitDepth == 2 || bitDepth == 4 || bitDepth == 8
	case ColorRGB, ColorGrayAlpha, ColorRGBA:
		return bitDepth == 8 || bitDepth == 16
	default:
		return false
	}
}

// BitsPerPixel returns the packed pixel size in bits.
func BitsPerPixel(c ColorType, bitDepth int) int {
	return c.Channels() * bitDepth
}

// BytesPerRow returns the unfiltered size of one scanline of width pixels.
func BytesPerRow(c ColorType, bitDepth, width int) int {
	return (BitsPerPixel(c, bitDepth)*width + 7) / 8
}

// FilterStride returns the byte distance to the corresponding byte of the
// previous pixel, at least 1.
func FilterStride(c ColorType, bitDepth int) int {
	if n := BitsPerPixel(c, bitDepth) / 8; n > 0 {
		return n
	}
	return 1
}
