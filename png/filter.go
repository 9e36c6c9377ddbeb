package png

import (
	"fmt"

	"github.com/cocosip/go-thumb-codec/codec"
)

// FilterType is the per-scanline prediction filter.
type FilterType uint8

// Filter types
const (
	FilterNone    FilterType = 0
	FilterSub     FilterType = 1
	FilterUp      FilterType = 2
	FilterAverage FilterType = 3
	FilterPaeth   FilterType = 4
)

// paeth returns whichever of a (left), b (above) and c (above-left) is
// closest to a+b-c, preferring a, then b.
func paeth(a, b, c uint8) uint8 {
	p := int(a) + int(b) - int(c)
	pa := abs(p - int(a))
	pb := abs(p - int(b))
	pc := abs(p - int(c))
	if pa <= pb && pa <= pc {
		return a
	}
	if pb <= pc {
		return b
	}
	return c
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// unfilter reverses the filters of rows scanlines. data holds each scanline
// as a filter-type byte followed by rowBytes bytes; stride is the distance
// in bytes to the matching byte of the previous pixel.
func unfilter(data []byte, rows, rowBytes, stride int) ([]byte, error) {
	if len(data) < rows*(rowBytes+1) {
		return nil, fmt.Errorf("image data is %d bytes, want %d: %w", len(data), rows*(rowBytes+1), codec.ErrMalformedContainer)
	}

	out := make([]byte, rows*rowBytes)
	prev := make([]byte, rowBytes)
	for y := 0; y < rows; y++ {
		in := data[y*(rowBytes+1):]
		ft := FilterType(in[0])
		src := in[1 : 1+rowBytes]
		cur := out[y*rowBytes : (y+1)*rowBytes]

		switch ft {
		case FilterNone:
			copy(cur, src)
		case FilterSub:
			for x := 0; x < rowBytes; x++ {
				if x < stride {
					cur[x] = src[x]
				} else {
					cur[x] = src[x] + cur[x-stride]
				}
			}
		case FilterUp:
			for x := 0; x < rowBytes; x++ {
				cur[x] = src[x] + prev[x]
			}
		case FilterAverage:
			for x := 0; x < rowBytes; x++ {
				var left int
				if x >= stride {
					left = int(cur[x-stride])
				}
				cur[x] = src[x] + uint8((left+int(prev[x]))/2)
			}
		case FilterPaeth:
			for x := 0; x < rowBytes; x++ {
				if x < stride {
					cur[x] = src[x] + paeth(0, prev[x], 0)
				} else {
					cur[x] = src[x] + paeth(cur[x-stride], prev[x], prev[x-stride])
				}
			}
		default:
			return nil, fmt.Errorf("filter type %d on row %d: %w", ft, y, codec.ErrMalformedContainer)
		}
		prev = cur
	}
	return out, nil
}

// Filter applies filter ft to the scanline cur, whose unfiltered predecessor
// is prev (nil for the first row), and appends the result to dst. It is the
// inverse of the decoder's reconstruction.
func Filter(dst []byte, ft FilterType, cur, prev []byte, stride int) []byte {
	if prev == nil {
		prev = make([]byte, len(cur))
	}
	for x := range cur {
		var a, c uint8
		if x >= stride {
			a, c = cur[x-stride], prev[x-stride]
		}
		b := prev[x]

		switch ft {
		case FilterSub:
			dst = append(dst, cur[x]-a)
		case FilterUp:
			dst = append(dst, cur[x]-b)
		case FilterAverage:
			dst = append(dst, cur[x]-uint8((int(a)+int(b))/2))
		case FilterPaeth:
			dst = append(dst, cur[x]-paeth(a, b, c))
		default:
			dst = append(dst, cur[x])
		}
	}
	return dst
}
