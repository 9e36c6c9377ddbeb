package png

import (
	"encoding/binary"
	"fmt"

	"github.com/cocosip/go-thumb-codec/codec"
)

// pixelFormat enumerates the legal (color type, bit depth) pairs.
type pixelFormat int

const (
	formatInvalid pixelFormat = iota
	formatG1
	formatG2
	formatG4
	formatG8
	formatG16
	formatRGB8
	formatRGB16
	formatP1
	formatP2
	formatP4
	formatP8
	formatGA8
	formatGA16
	formatRGBA8
	formatRGBA16
)

func formatOf(ct ColorType, depth int) pixelFormat {
	switch ct {
	case ColorGray:
		switch depth {
		case 1:
			return formatG1
		case 2:
			return formatG2
		case 4:
			return formatG4
		case 8:
			return formatG8
		case 16:
			return formatG16
		}
	case ColorRGB:
		switch depth {
		case 8:
			return formatRGB8
		case 16:
			return formatRGB16
		}
	case ColorIndexed:
		switch depth {
		case 1:
			return formatP1
		case 2:
			return formatP2
		case 4:
			return formatP4
		case 8:
			return formatP8
		}
	case ColorGrayAlpha:
		switch depth {
		case 8:
			return formatGA8
		case 16:
			return formatGA16
		}
	case ColorRGBA:
		switch depth {
		case 8:
			return formatRGBA8
		case 16:
			return formatRGBA16
		}
	}
	return formatInvalid
}

// unpacker expands defiltered scanlines into 8-bit RGBA.
type unpacker struct {
	format  pixelFormat
	depth   int
	palette [][4]uint8 // RGBA, alpha from tRNS
	key     []uint16   // color key from tRNS
}

func newUnpacker(md *Metadata) (*unpacker, error) {
	u := &unpacker{format: formatOf(md.ColorType, md.BitDepth), depth: md.BitDepth}
	if u.format == formatInvalid {
		return nil, fmt.Errorf("color type %d with bit depth %d: %w", md.ColorType, md.BitDepth, codec.ErrUnsupportedFormat)
	}

	if md.ColorType == ColorIndexed {
		if len(md.Palette) == 0 {
			return nil, fmt.Errorf("indexed image without PLTE: %w", codec.ErrMalformedContainer)
		}
		u.palette = make([][4]uint8, len(md.Palette))
		for i, c := range md.Palette {
			u.palette[i] = [4]uint8{c[0], c[1], c[2], 255}
			if i < len(md.Transparency.PaletteAlpha) {
				u.palette[i][3] = md.Transparency.PaletteAlpha[i]
			}
		}
	}
	if len(md.Transparency.Key) > 0 {
		u.key = md.Transparency.Key
	}
	return u, nil
}

// gray returns the 8-bit value and whether it matches the color key.
func (u *unpacker) gray(v uint16, scale uint16) (uint8, bool) {
	keyed := len(u.key) == 1 && v == u.key[0]
	return uint8(v * scale), keyed
}

// row expands width pixels of src into dst (width*4 bytes).
func (u *unpacker) row(dst, src []byte, width int) error {
	switch u.format {
	case formatG1, formatG2, formatG4:
		mask := uint16(1)<<u.depth - 1
		scale := 255 / mask
		perByte := 8 / u.depth
		for x := 0; x < width; x++ {
			shift := uint(8 - u.depth*(x%perByte+1))
			v := uint16(src[x/perByte]>>shift) & mask
			g, keyed := u.gray(v, scale)
			putGray(dst[x*4:], g, keyed)
		}

	case formatG8:
		for x := 0; x < width; x++ {
			g, keyed := u.gray(uint16(src[x]), 1)
			putGray(dst[x*4:], g, keyed)
		}

	case formatG16:
		for x := 0; x < width; x++ {
			v := binary.BigEndian.Uint16(src[x*2:])
			keyed := len(u.key) == 1 && v == u.key[0]
			putGray(dst[x*4:], uint8(v>>8), keyed)
		}

	case formatRGB8:
		for x := 0; x < width; x++ {
			s, d := src[x*3:x*3+3], dst[x*4:x*4+4]
			d[0], d[1], d[2], d[3] = s[0], s[1], s[2], 255
			if len(u.key) == 3 && uint16(s[0]) == u.key[0] && uint16(s[1]) == u.key[1] && uint16(s[2]) == u.key[2] {
				d[3] = 0
			}
		}

	case formatRGB16:
		for x := 0; x < width; x++ {
			s, d := src[x*6:x*6+6], dst[x*4:x*4+4]
			d[0], d[1], d[2], d[3] = s[0], s[2], s[4], 255
			if len(u.key) == 3 &&
				binary.BigEndian.Uint16(s[0:]) == u.key[0] &&
				binary.BigEndian.Uint16(s[2:]) == u.key[1] &&
				binary.BigEndian.Uint16(s[4:]) == u.key[2] {
				d[3] = 0
			}
		}

	case formatP1, formatP2, formatP4, formatP8:
		mask := uint8(1)<<u.depth - 1
		perByte := 8 / u.depth
		for x := 0; x < width; x++ {
			shift := uint(8 - u.depth*(x%perByte+1))
			idx := int(src[x/perByte] >> shift & mask)
			if idx >= len(u.palette) {
				return fmt.Errorf("palette index %d out of range (%d entries): %w", idx, len(u.palette), codec.ErrMalformedContainer)
			}
			copy(dst[x*4:x*4+4], u.palette[idx][:])
		}

	case formatGA8:
		for x := 0; x < width; x++ {
			g, a := src[x*2], src[x*2+1]
			d := dst[x*4 : x*4+4]
			d[0], d[1], d[2], d[3] = g, g, g, a
		}

	case formatGA16:
		for x := 0; x < width; x++ {
			g, a := src[x*4], src[x*4+2]
			d := dst[x*4 : x*4+4]
			d[0], d[1], d[2], d[3] = g, g, g, a
		}

	case formatRGBA8:
		copy(dst[:width*4], src[:width*4])

	case formatRGBA16:
		for i := 0; i < width*4; i++ {
			dst[i] = src[i*2]
		}
	}
	return nil
}

func putGray(d []byte, g uint8, keyed bool) {
	d[0], d[1], d[2], d[3] = g, g, g, 255
	if keyed {
		d[3] = 0
	}
}
