package png

import (
	"encoding/binary"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/cocosip/go-thumb-codec/codec"
	"github.com/cocosip/go-thumb-codec/png/common"
)

// ColorType is the IHDR color type.
type ColorType = common.ColorType

// Color types
const (
	ColorGray      = common.ColorGray
	ColorRGB       = common.ColorRGB
	ColorIndexed   = common.ColorIndexed
	ColorGrayAlpha = common.ColorGrayAlpha
	ColorRGBA      = common.ColorRGBA
)

// maxPixels bounds the canvas size accepted from IHDR.
const maxPixels = 1 << 28

// Metadata describes a decoded container.
type Metadata struct {
	Width      int
	Height     int
	BitDepth   int
	ColorType  ColorType
	Interlaced bool

	Palette      [][3]uint8   // indexed images only
	Transparency Transparency // from tRNS, if any
	Animation    *Animation   // nil unless the stream has acTL

	Text           map[string]string // tEXt, zTXt and iTXt by keyword
	Gamma          float64           // gAMA, 0 if absent
	SRGBIntent     *uint8            // sRGB rendering intent
	Chromaticities []float64         // cHRM white point and primaries (x,y pairs)
	Physical       *PhysicalDims     // pHYs
	Background     []uint16          // bKGD: palette index, gray, or RGB
	Histogram      []uint16          // hIST
	ICCProfile     *ICCProfile       // iCCP, decompressed
	AppleCgBI      bool              // CgBI present: image data is raw DEFLATE

	// Ancillary holds every chunk not decoded into a field above.
	Ancillary []Chunk
}

// Transparency is the tRNS payload, interpreted by color type.
type Transparency struct {
	PaletteAlpha []uint8  // alpha per palette index (indexed)
	Key          []uint16 // transparent sample: one gray value or an RGB triple
}

// Present reports whether the image carries a tRNS chunk.
func (t Transparency) Present() bool {
	return len(t.PaletteAlpha) > 0 || len(t.Key) > 0
}

// Animation is the acTL payload.
type Animation struct {
	FrameCount int
	LoopCount  int // 0 means loop forever
}

// PhysicalDims is the pHYs payload.
type PhysicalDims struct {
	PixelsPerUnitX uint32
	PixelsPerUnitY uint32
	UnitIsMeter    bool
}

// ICCProfile is the iCCP payload.
type ICCProfile struct {
	Name string
	Data []byte
}

// DisposeMode is applied to the canvas after a frame has been emitted.
type DisposeMode uint8

// Dispose modes
const (
	DisposeNone       DisposeMode = 0
	DisposeBackground DisposeMode = 1
	DisposePrevious   DisposeMode = 2
)

// BlendMode selects how a frame is written onto the canvas.
type BlendMode uint8

// Blend modes
const (
	BlendSource BlendMode = 0
	BlendOver   BlendMode = 1
)

// FrameControl is the fcTL payload of one animation frame.
type FrameControl struct {
	Sequence uint32
	Rect     image.Rectangle
	Delay    time.Duration
	Dispose  DisposeMode
	Blend    BlendMode
}

func parseIHDR(data []byte, md *Metadata) error {
	if len(data) != 13 {
		return fmt.Errorf("IHDR length %d: %w", len(data), codec.ErrMalformedContainer)
	}
	w := binary.BigEndian.Uint32(data[0:])
	h := binary.BigEndian.Uint32(data[4:])
	if w == 0 || h == 0 || w > common.MaxChunkLength || h > common.MaxChunkLength {
		return fmt.Errorf("image size %dx%d: %w", w, h, codec.ErrMalformedContainer)
	}
	if uint64(w)*uint64(h) > maxPixels {
		return fmt.Errorf("image size %dx%d: %w", w, h, codec.ErrInputTooLarge)
	}

	depth, ct := int(data[8]), ColorType(data[9])
	if !ct.ValidDepth(depth) {
		return fmt.Errorf("color type %d with bit depth %d: %w", ct, depth, codec.ErrUnsupportedFormat)
	}
	if data[10] != 0 {
		return fmt.Errorf("compression method %d: %w", data[10], codec.ErrUnsupportedFormat)
	}
	if data[11] != 0 {
		return fmt.Errorf("filter method %d: %w", data[11], codec.ErrUnsupportedFormat)
	}
	if data[12] > 1 {
		return fmt.Errorf("interlace method %d: %w", data[12], codec.ErrUnsupportedFormat)
	}

	md.Width, md.Height = int(w), int(h)
	md.BitDepth, md.ColorType = depth, ct
	md.Interlaced = data[12] == 1
	return nil
}

func parsePLTE(data []byte, md *Metadata) error {
	n := len(data) / 3
	if len(data)%3 != 0 || n == 0 || n > 256 {
		return fmt.Errorf("PLTE length %d: %w", len(data), codec.ErrMalformedContainer)
	}
	md.Palette = make([][3]uint8, n)
	for i := range md.Palette {
		copy(md.Palette[i][:], data[i*3:])
	}
	return nil
}

// parseTRNS reports whether the chunk applied to the color type.
func parseTRNS(data []byte, md *Metadata) (bool, error) {
	switch md.ColorType {
	case ColorIndexed:
		if len(data) > 256 {
			return false, fmt.Errorf("tRNS length %d: %w", len(data), codec.ErrMalformedContainer)
		}
		md.Transparency.PaletteAlpha = append([]uint8(nil), data...)
	case ColorGray:
		if len(data) != 2 {
			return false, fmt.Errorf("tRNS length %d: %w", len(data), codec.ErrMalformedContainer)
		}
		md.Transparency.Key = []uint16{binary.BigEndian.Uint16(data)}
	case ColorRGB:
		if len(data) != 6 {
			return false, fmt.Errorf("tRNS length %d: %w", len(data), codec.ErrMalformedContainer)
		}
		md.Transparency.Key = []uint16{
			binary.BigEndian.Uint16(data[0:]),
			binary.BigEndian.Uint16(data[2:]),
			binary.BigEndian.Uint16(data[4:]),
		}
	default:
		// Types with an alpha channel cannot carry tRNS.
		return false, nil
	}
	return true, nil
}

func parseACTL(data []byte) (*Animation, error) {
	if len(data) != 8 {
		return nil, fmt.Errorf("acTL length %d: %w", len(data), codec.ErrMalformedContainer)
	}
	n := binary.BigEndian.Uint32(data)
	if n == 0 || n > common.MaxChunkLength {
		return nil, fmt.Errorf("acTL frame count %d: %w", n, codec.ErrMalformedContainer)
	}
	return &Animation{
		FrameCount: int(n),
		LoopCount:  int(binary.BigEndian.Uint32(data[4:])),
	}, nil
}

func parseFCTL(data []byte, md *Metadata) (FrameControl, error) {
	if len(data) != 26 {
		return FrameControl{}, fmt.Errorf("fcTL length %d: %w", len(data), codec.ErrMalformedContainer)
	}
	w := binary.BigEndian.Uint32(data[4:])
	h := binary.BigEndian.Uint32(data[8:])
	x := binary.BigEndian.Uint32(data[12:])
	y := binary.BigEndian.Uint32(data[16:])
	if w == 0 || h == 0 || uint64(x)+uint64(w) > uint64(md.Width) || uint64(y)+uint64(h) > uint64(md.Height) {
		return FrameControl{}, fmt.Errorf("frame rect %dx%d at (%d,%d) outside %dx%d canvas: %w",
			w, h, x, y, md.Width, md.Height, codec.ErrMalformedContainer)
	}

	num := binary.BigEndian.Uint16(data[20:])
	den := binary.BigEndian.Uint16(data[22:])
	if den == 0 {
		den = 100
	}
	ms := math.Floor(float64(num)/float64(den)*1000 + 0.5)

	fc := FrameControl{
		Sequence: binary.BigEndian.Uint32(data),
		Rect:     image.Rect(int(x), int(y), int(x+w), int(y+h)),
		Delay:    time.Duration(ms) * time.Millisecond,
		Dispose:  DisposeMode(data[24]),
		Blend:    BlendMode(data[25]),
	}
	if fc.Dispose > DisposePrevious {
		return FrameControl{}, fmt.Errorf("dispose op %d: %w", fc.Dispose, codec.ErrMalformedContainer)
	}
	if fc.Blend > BlendOver {
		return FrameControl{}, fmt.Errorf("blend op %d: %w", fc.Blend, codec.ErrMalformedContainer)
	}
	return fc, nil
}
