package thumbhash

import (
	"fmt"
	"math"

	"github.com/cocosip/go-thumb-codec/codec"
)

// DefaultSize is the longer side of images rendered by Decode.
const DefaultSize = 32

// Image is a rendered placeholder, non-premultiplied RGBA.
type Image struct {
	Width  int
	Height int
	Pix    []byte
}

// Decode renders a hash into an image whose longer side is DefaultSize.
func Decode(hash []byte) (*Image, error) {
	return DecodeSize(hash, DefaultSize)
}

// DecodeSize renders a hash into an image whose longer side is size pixels.
func DecodeSize(hash []byte, size int) (*Image, error) {
	if size <= 0 {
		return nil, fmt.Errorf("size %d: %w", size, codec.ErrInvalidParameter)
	}
	h, err := parseHeader(hash)
	if err != nil {
		return nil, err
	}
	if want := h.length(); len(hash) < want {
		return nil, fmt.Errorf("hash is %d bytes, header implies %d: %w", len(hash), want, codec.ErrInvalidHash)
	}

	lx, ly := h.gridX(), h.gridY()

	// Chroma is boosted by 1.25 to make up for quantization.
	idx := 0
	readAC := func(nx, ny int, scale float64) []float64 {
		ac := make([]float64, 0, acCount(nx, ny))
		for cy := 0; cy < ny; cy++ {
			cx := 0
			if cy == 0 {
				cx = 1
			}
			for ; cx*ny < nx*(ny-cy); cx++ {
				nibble := hash[h.acStart+idx>>1] >> uint((idx&1)<<2) & 15
				ac = append(ac, (float64(nibble)/7.5-1)*scale)
				idx++
			}
		}
		return ac
	}
	lAC := readAC(lx, ly, h.lScale)
	pAC := readAC(3, 3, h.pScale*1.25)
	qAC := readAC(3, 3, h.qScale*1.25)
	var aAC []float64
	if h.hasAlpha {
		aAC = readAC(5, 5, h.aScale)
	}

	ratio := h.aspectRatio()
	fsize := float64(size)
	var w, ht int
	if ratio > 1 {
		w, ht = size, int(round(fsize/ratio))
	} else {
		w, ht = int(round(fsize*ratio)), size
	}
	w, ht = max(1, w), max(1, ht)

	nx, ny := max(lx, 3), max(ly, 3)
	if h.hasAlpha {
		nx, ny = max(lx, 5), max(ly, 5)
	}
	fx := make([]float64, nx)
	fy := make([]float64, ny)

	pix := make([]byte, w*ht*4)
	i := 0
	for y := 0; y < ht; y++ {
		for cy := range fy {
			fy[cy] = math.Cos(math.Pi / float64(ht) * (float64(y) + 0.5) * float64(cy))
		}
		for x := 0; x < w; x++ {
			for cx := range fx {
				fx[cx] = math.Cos(math.Pi / float64(w) * (float64(x) + 0.5) * float64(cx))
			}
			l, p, q, a := h.lDC, h.pDC, h.qDC, h.aDC

			j := 0
			for cy := 0; cy < ly; cy++ {
				cx := 0
				if cy == 0 {
					cx = 1
				}
				fy2 := fy[cy] * 2
				for ; cx*ly < lx*(ly-cy); cx++ {
					l += lAC[j] * fx[cx] * fy2
					j++
				}
			}

			j = 0
			for cy := 0; cy < 3; cy++ {
				cx := 0
				if cy == 0 {
					cx = 1
				}
				fy2 := fy[cy] * 2
				for ; cx < 3-cy; cx++ {
					f := fx[cx] * fy2
					p += pAC[j] * f
					q += qAC[j] * f
					j++
				}
			}

			if h.hasAlpha {
				j = 0
				for cy := 0; cy < 5; cy++ {
					cx := 0
					if cy == 0 {
						cx = 1
					}
					fy2 := fy[cy] * 2
					for ; cx < 5-cy; cx++ {
						a += aAC[j] * fx[cx] * fy2
						j++
					}
				}
			}

			b := l - 2.0/3*p
			r := (3*l - b + q) / 2
			g := r - q
			pix[i] = toByte(r)
			pix[i+1] = toByte(g)
			pix[i+2] = toByte(b)
			pix[i+3] = toByte(a)
			i += 4
		}
	}
	return &Image{Width: w, Height: ht, Pix: pix}, nil
}

// toByte maps [0,1] to [0,255], truncating.
func toByte(v float64) byte {
	return byte(math.Max(0, 255*math.Min(1, v)))
}
