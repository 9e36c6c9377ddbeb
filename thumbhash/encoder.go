// Package thumbhash encodes small images into ThumbHash placeholders: a few
// dozen bytes holding the average color, the aspect ratio and a
// low-frequency DCT of luminance, chroma and alpha. Hashes decode back into
// blurry previews, and the average color and aspect ratio can be read
// straight from the header.
package thumbhash

import (
	"fmt"
	"math"

	"github.com/cocosip/go-thumb-codec/codec"
)

// MaxDimension is the largest width or height Encode accepts. Larger images
// must be downscaled first; they encode to the same hash at a higher cost.
const MaxDimension = 100

// Encode computes the hash of a w×h image of non-premultiplied RGBA pixels.
func Encode(w, h int, rgba []byte) ([]byte, error) {
	if w > MaxDimension || h > MaxDimension {
		return nil, fmt.Errorf("%dx%d doesn't fit in %dx%d: %w", w, h, MaxDimension, MaxDimension, codec.ErrInputTooLarge)
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("image size %dx%d: %w", w, h, codec.ErrInvalidParameter)
	}
	if len(rgba) != w*h*4 {
		return nil, fmt.Errorf("pixel buffer is %d bytes, want %d: %w", len(rgba), w*h*4, codec.ErrInvalidParameter)
	}
	n := w * h

	// Average color, weighted by alpha.
	var avgR, avgG, avgB, avgA float64
	for i := 0; i < n; i++ {
		px := rgba[i*4 : i*4+4]
		alpha := float64(px[3]) / 255
		avgR += alpha / 255 * float64(px[0])
		avgG += alpha / 255 * float64(px[1])
		avgB += alpha / 255 * float64(px[2])
		avgA += alpha
	}
	if avgA > 0 {
		avgR /= avgA
		avgG /= avgA
		avgB /= avgA
	}

	hasAlpha := avgA < float64(n)
	limit := 7.0
	if hasAlpha {
		limit = 5
	}
	longest := float64(max(w, h))
	lx := int(math.Max(1, round(limit*float64(w)/longest)))
	ly := int(math.Max(1, round(limit*float64(h)/longest)))

	// Convert to LPQA, compositing transparent pixels over the average color.
	l := make([]float64, n)
	p := make([]float64, n)
	q := make([]float64, n)
	a := make([]float64, n)
	for i := 0; i < n; i++ {
		px := rgba[i*4 : i*4+4]
		alpha := float64(px[3]) / 255
		r := avgR*(1-alpha) + alpha/255*float64(px[0])
		g := avgG*(1-alpha) + alpha/255*float64(px[1])
		b := avgB*(1-alpha) + alpha/255*float64(px[2])
		l[i] = (r + g + b) / 3
		p[i] = (r+g)/2 - b
		q[i] = r - g
		a[i] = alpha
	}

	lc := encodeChannel(l, w, h, max(3, lx), max(3, ly))
	pc := encodeChannel(p, w, h, 3, 3)
	qc := encodeChannel(q, w, h, 3, 3)
	var ac channel
	if hasAlpha {
		ac = encodeChannel(a, w, h, 5, 5)
	}

	isLandscape := w > h
	header24 := uint32(round(63*lc.dc)) |
		uint32(round(31.5+31.5*pc.dc))<<6 |
		uint32(round(31.5+31.5*qc.dc))<<12 |
		uint32(round(31*lc.scale))<<18 |
		b2u(hasAlpha)<<23
	grid := lx
	if isLandscape {
		grid = ly
	}
	header16 := uint32(grid) |
		uint32(round(63*pc.scale))<<3 |
		uint32(round(63*qc.scale))<<9 |
		b2u(isLandscape)<<15

	hash := []byte{
		byte(header24), byte(header24 >> 8), byte(header24 >> 16),
		byte(header16), byte(header16 >> 8),
	}
	if hasAlpha {
		hash = append(hash, byte(round(15*ac.dc))|byte(round(15*ac.scale))<<4)
	}

	channels := [][]float64{lc.ac, pc.ac, qc.ac}
	if hasAlpha {
		channels = append(channels, ac.ac)
	}
	start, idx := len(hash), 0
	for _, coeffs := range channels {
		for _, f := range coeffs {
			if idx&1 == 0 {
				hash = append(hash, 0)
			}
			hash[start+idx>>1] |= byte(round(15*f)) << uint((idx&1)<<2)
			idx++
		}
	}
	return hash, nil
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}
