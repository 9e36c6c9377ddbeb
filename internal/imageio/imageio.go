// Package imageio loads images for the command-line tool and prepares them
// for hashing. PNG input goes through this module's decoder; other formats
// go through the image package with the golang.org/x/image decoders
// registered.
package imageio

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/cocosip/go-thumb-codec/codec"
	"github.com/cocosip/go-thumb-codec/png"
	"github.com/cocosip/go-thumb-codec/png/common"
)

// IsPNG reports whether data starts with the PNG signature.
func IsPNG(data []byte) bool {
	return bytes.HasPrefix(data, common.Signature[:])
}

// Load decodes the first frame of an image into non-premultiplied RGBA. For
// an APNG that is the first animation frame; a default image that is not
// part of the animation is never returned.
func Load(data []byte) (*image.NRGBA, string, error) {
	if IsPNG(data) {
		img, err := png.DecodeContainer(data)
		if err != nil {
			return nil, "", err
		}
		return img.Frames[0].NRGBA(), "png", nil
	}

	src, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, "", fmt.Errorf("%v: %w", err, codec.ErrUnsupportedFormat)
	}
	if nrgba, ok := src.(*image.NRGBA); ok && nrgba.Rect.Min == (image.Point{}) {
		return nrgba, format, nil
	}
	b := src.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst, format, nil
}

// FitSize returns the largest size with the same aspect ratio as w x h that
// fits in a limit x limit square. Sizes that already fit are unchanged.
func FitSize(w, h, limit int) (int, int) {
	if w <= limit && h <= limit {
		return w, h
	}
	if w >= h {
		return limit, max(1, (h*limit+w/2)/w)
	}
	return max(1, (w*limit+h/2)/h), limit
}

// Fit downscales img to fit a limit x limit square using Catmull-Rom
// resampling. Images that already fit are returned as they are.
func Fit(img *image.NRGBA, limit int) *image.NRGBA {
	b := img.Bounds()
	w, h := FitSize(b.Dx(), b.Dy(), limit)
	if w == b.Dx() && h == b.Dy() {
		return img
	}
	dst := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// Pix returns the tightly packed RGBA bytes of img.
func Pix(img *image.NRGBA) []byte {
	b := img.Bounds()
	rowBytes := b.Dx() * 4
	if img.Stride == rowBytes && b.Min == (image.Point{}) {
		return img.Pix[:rowBytes*b.Dy()]
	}
	out := make([]byte, 0, rowBytes*b.Dy())
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		out = append(out, img.Pix[off:off+rowBytes]...)
	}
	return out
}
