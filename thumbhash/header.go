package thumbhash

import (
	"fmt"

	"github.com/cocosip/go-thumb-codec/codec"
)

// header is the fixed part of a hash: the 24-bit and 16-bit words and the
// optional alpha byte.
type header struct {
	lDC, pDC, qDC  float64
	lScale         float64
	pScale, qScale float64
	hasAlpha       bool
	isLandscape    bool
	lx, ly         int // luminance grid stored in the hash
	aDC, aScale    float64
	acStart        int
}

func parseHeader(hash []byte) (*header, error) {
	if len(hash) < 5 {
		return nil, fmt.Errorf("hash is %d bytes, need at least 5: %w", len(hash), codec.ErrInvalidHash)
	}
	h24 := uint32(hash[0]) | uint32(hash[1])<<8 | uint32(hash[2])<<16
	h16 := uint16(hash[3]) | uint16(hash[4])<<8

	h := &header{
		lDC:         float64(h24&63) / 63,
		pDC:         float64(h24>>6&63)/31.5 - 1,
		qDC:         float64(h24>>12&63)/31.5 - 1,
		lScale:      float64(h24>>18&31) / 31,
		hasAlpha:    h24>>23 != 0,
		pScale:      float64(h16>>3&63) / 63,
		qScale:      float64(h16>>9&63) / 63,
		isLandscape: h16>>15 != 0,
		aDC:         1,
		acStart:     5,
	}

	limit := 7
	if h.hasAlpha {
		limit = 5
	}
	if h.isLandscape {
		h.lx, h.ly = limit, int(h16&7)
	} else {
		h.lx, h.ly = int(h16&7), limit
	}
	if h.lx == 0 || h.ly == 0 {
		return nil, fmt.Errorf("zero luminance grid size: %w", codec.ErrInvalidHash)
	}

	if h.hasAlpha {
		if len(hash) < 6 {
			return nil, fmt.Errorf("hash with alpha is %d bytes, need at least 6: %w", len(hash), codec.ErrInvalidHash)
		}
		h.aDC = float64(hash[5]&15) / 15
		h.aScale = float64(hash[5]>>4) / 15
		h.acStart = 6
	}
	return h, nil
}

// gridX and gridY are the luminance grid the coefficients were encoded on.
func (h *header) gridX() int { return max(3, h.lx) }
func (h *header) gridY() int { return max(3, h.ly) }

// length returns the total hash length the header implies.
func (h *header) length() int {
	n := acCount(h.gridX(), h.gridY()) + 2*acCount(3, 3)
	if h.hasAlpha {
		n += acCount(5, 5)
	}
	return h.acStart + (n+1)/2
}

func (h *header) aspectRatio() float64 {
	return float64(h.lx) / float64(h.ly)
}
