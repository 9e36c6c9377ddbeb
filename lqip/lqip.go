// Package lqip computes the CSS "low quality image placeholder" integer: a
// single signed 20-bit value that packs a quantised OKLab base color and the
// relative lightness of a 3x2 grid of cells. Style sheets unpack it with
// integer arithmetic on a custom property.
//
// Bit layout, most significant first, after adding 2^19:
//
//	ca cb cc cd ce cf  ll  aaa bbb
//	 2  2  2  2  2  2   2    3   3
//
// ca..cf are the top row left to right followed by the bottom row.
package lqip

import (
	"fmt"
	"math"

	"github.com/cocosip/go-thumb-codec/codec"
)

const (
	// Cols and Rows give the shape of the lightness grid.
	Cols = 3
	Rows = 2

	offset = 1 << 19

	// MaxValue bounds the magnitude browsers accept for a CSS integer.
	MaxValue = 999999
)

var cellShifts = [Cols * Rows]uint{18, 16, 14, 12, 10, 8}

// Hash is a decoded placeholder value.
type Hash struct {
	// Base is the quantised average color.
	Base Lab
	// Cells holds the approximate OKLab lightness of each grid cell, row
	// major.
	Cells [Cols * Rows]float64
	// Levels holds the raw 2-bit lightness code of each cell.
	Levels [Cols * Rows]uint8

	ll, aaa, bbb uint8
}

// Value packs the hash back into its integer form.
func (h Hash) Value() int {
	return pack(h.Levels, h.ll, h.aaa, h.bbb)
}

// CSS renders the hash as a custom property declaration.
func (h Hash) CSS() string {
	return fmt.Sprintf("--lqip:%d", h.Value())
}

// Render returns the grid as packed opaque RGBA, one pixel per cell. Each
// cell keeps the base hue and takes its own lightness.
func (h Hash) Render() []byte {
	pix := make([]byte, 0, Cols*Rows*4)
	for _, l := range h.Cells {
		r, g, b := Lab{L: l, A: h.Base.A, B: h.Base.B}.RGB()
		pix = append(pix, r, g, b, 255)
	}
	return pix
}

type sums struct {
	r, g, b float64
	count   int
}

// Encode computes the placeholder value of a packed RGB image, three bytes
// per pixel.
func Encode(rgb []byte, width, height int) (int, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("lqip: dimensions %dx%d: %w", width, height, codec.ErrInvalidParameter)
	}
	if len(rgb) != width*height*3 {
		return 0, fmt.Errorf("lqip: buffer is %d bytes, want %d: %w", len(rgb), width*height*3, codec.ErrInvalidParameter)
	}

	cellWidth := float64(width) / Cols
	cellHeight := float64(height) / Rows

	var cells [Cols * Rows]sums
	var total sums
	for y := 0; y < height; y++ {
		row := min(Rows-1, int(math.Floor(float64(y)/cellHeight)))
		for x := 0; x < width; x++ {
			col := min(Cols-1, int(math.Floor(float64(x)/cellWidth)))
			p := rgb[(y*width+x)*3:]
			r, g, b := float64(p[0]), float64(p[1]), float64(p[2])

			c := &cells[row*Cols+col]
			c.r += r
			c.g += g
			c.b += b
			c.count++

			total.r += r
			total.g += g
			total.b += b
		}
	}

	n := float64(width * height)
	avg := RGBToLab(round(total.r/n), round(total.g/n), round(total.b/n))
	ll, aaa, bbb := nearestBits(avg)
	base := bitsToLab(ll, aaa, bbb)

	var levels [Cols * Rows]uint8
	for i, c := range cells {
		// Narrow images leave some cells empty; they encode as level 0.
		if c.count == 0 {
			continue
		}
		k := float64(c.count)
		l := RGBToLab(c.r/k, c.g/k, c.b/k).L
		v := math.Min(1, math.Max(0, 0.5+l-base.L))
		levels[i] = uint8(round(v * 3))
	}

	value := pack(levels, ll, aaa, bbb)
	if value < -MaxValue || value > MaxValue {
		return 0, fmt.Errorf("lqip: value %d out of range: %w", value, codec.ErrInvalidParameter)
	}
	return value, nil
}

// EncodeRGBA is Encode for packed RGBA input. Alpha is ignored.
func EncodeRGBA(rgba []byte, width, height int) (int, error) {
	if width <= 0 || height <= 0 || len(rgba) != width*height*4 {
		return 0, fmt.Errorf("lqip: rgba buffer is %d bytes for %dx%d: %w", len(rgba), width, height, codec.ErrInvalidParameter)
	}
	rgb := make([]byte, 0, width*height*3)
	for i := 0; i < len(rgba); i += 4 {
		rgb = append(rgb, rgba[i], rgba[i+1], rgba[i+2])
	}
	return Encode(rgb, width, height)
}

// Decode unpacks a placeholder value.
func Decode(value int) (Hash, error) {
	if value < -offset || value >= offset {
		return Hash{}, fmt.Errorf("lqip: value %d outside 20-bit range: %w", value, codec.ErrInvalidHash)
	}
	bits := uint32(value + offset)

	h := Hash{
		ll:  uint8(bits >> 6 & 0b11),
		aaa: uint8(bits >> 3 & 0b111),
		bbb: uint8(bits & 0b111),
	}
	h.Base = bitsToLab(h.ll, h.aaa, h.bbb)
	for i, shift := range cellShifts {
		lv := uint8(bits >> shift & 0b11)
		h.Levels[i] = lv
		h.Cells[i] = h.Base.L + float64(lv)/3 - 0.5
	}
	return h, nil
}

func pack(levels [Cols * Rows]uint8, ll, aaa, bbb uint8) int {
	v := -offset
	for i, shift := range cellShifts {
		v += int(levels[i]&0b11) << shift
	}
	v += int(ll&0b11)<<6 + int(aaa&0b111)<<3 + int(bbb&0b111)
	return v
}

// bitsToLab maps the quantised base color to OKLab. b is offset by one step
// so the 3-bit range reaches the yellow end of the axis.
func bitsToLab(ll, aaa, bbb uint8) Lab {
	return Lab{
		L: float64(ll)/3*0.6 + 0.2,
		A: float64(aaa)/8*0.7 - 0.35,
		B: float64(bbb+1)/8*0.7 - 0.35,
	}
}

// scaleForDiff pushes a or b away from the neutral axis so that the
// euclidean search is not biased toward grey.
func scaleForDiff(x, chroma float64) float64 {
	return x / (1e-6 + math.Sqrt(chroma))
}

// nearestBits searches all 256 base colors for the one closest to target.
// Ties keep the first candidate in ll, aaa, bbb order.
func nearestBits(target Lab) (ll, aaa, bbb uint8) {
	tc := target.Chroma()
	ta := scaleForDiff(target.A, tc)
	tb := scaleForDiff(target.B, tc)

	best := math.Inf(1)
	for l := uint8(0); l <= 0b11; l++ {
		for a := uint8(0); a <= 0b111; a++ {
			for b := uint8(0); b <= 0b111; b++ {
				c := bitsToLab(l, a, b)
				chroma := c.Chroma()
				d := math.Sqrt(sq(c.L-target.L) + sq(scaleForDiff(c.A, chroma)-ta) + sq(scaleForDiff(c.B, chroma)-tb))
				if d < best {
					best = d
					ll, aaa, bbb = l, a, b
				}
			}
		}
	}
	return ll, aaa, bbb
}

func sq(x float64) float64 { return x * x }
