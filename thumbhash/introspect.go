package thumbhash

import (
	"math"

	"github.com/cocosip/go-thumb-codec/png"
)

// RGBA is a color with every channel in [0,1], not premultiplied.
type RGBA struct {
	R, G, B, A float64
}

// AverageColor reads the average color from the hash header without
// rendering the image.
func AverageColor(hash []byte) (RGBA, error) {
	h, err := parseHeader(hash)
	if err != nil {
		return RGBA{}, err
	}
	b := h.lDC - 2.0/3*h.pDC
	r := (3*h.lDC - b + h.qDC) / 2
	g := r - h.qDC
	return RGBA{
		R: clamp01(r),
		G: clamp01(g),
		B: clamp01(b),
		A: h.aDC,
	}, nil
}

// AspectRatio returns the approximate width/height of the hashed image.
func AspectRatio(hash []byte) (float64, error) {
	h, err := parseHeader(hash)
	if err != nil {
		return 0, err
	}
	return h.aspectRatio(), nil
}

// ToDataURL renders the hash and returns it as an uncompressed PNG data URL.
func ToDataURL(hash []byte) (string, error) {
	img, err := Decode(hash)
	if err != nil {
		return "", err
	}
	return png.EncodeContainer(img.Width, img.Height, img.Pix, png.NewEncodeParameters().WithAlpha(true))
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
