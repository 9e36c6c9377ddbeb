// Package png decodes PNG and APNG containers into canonical 8-bit RGBA
// frames, and writes minimal uncompressed PNGs.
//
// Decoding is self-contained: image data is inflated by the deflate package,
// scanline filters are reversed, every legal color type and bit depth is
// expanded to RGBA, Adam7 interlacing is undone and animation frames are
// composited into independent snapshots.
package png

import (
	"fmt"
	"image"

	"github.com/cocosip/go-thumb-codec/codec"
	"github.com/cocosip/go-thumb-codec/deflate"
	"github.com/cocosip/go-thumb-codec/png/common"
)

// PixelBuffer is a row-major RGBA buffer of exactly Width*Height*4 bytes.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []byte
}

// NRGBA wraps the buffer as an image without copying.
func (p PixelBuffer) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    p.Pix,
		Stride: p.Width * 4,
		Rect:   image.Rect(0, 0, p.Width, p.Height),
	}
}

// Frame is one composited output frame.
type Frame struct {
	Control FrameControl
	PixelBuffer
}

// Image is the result of decoding a container.
type Image struct {
	Metadata Metadata
	Frames   []Frame // a still image has exactly one
}

// frameData is an animation frame whose image data is still compressed.
type frameData struct {
	control FrameControl
	payload []byte
}

// decoder collects chunk contents for one DecodeContainer call.
type decoder struct {
	md         Metadata
	seenHeader bool
	idat       []byte
	frames     []*frameData
	// defaultIsFrame is set when an fcTL precedes the first IDAT, making the
	// default image the first animation frame.
	defaultIsFrame bool
	seenIDAT       bool
	// metadataLimit caps inflated ancillary chunks.
	metadataLimit int
}

func newDecoder(p *DecodeParameters) *decoder {
	if p == nil {
		p = NewDecodeParameters()
	}
	return &decoder{metadataLimit: p.MaxMetadataSize}
}

// DecodeContainer decodes a PNG or APNG into its metadata and frames.
func DecodeContainer(data []byte) (*Image, error) {
	return DecodeContainerWithParameters(data, nil)
}

// DecodeContainerWithParameters is DecodeContainer with explicit decoding
// parameters. Nil selects the defaults.
func DecodeContainerWithParameters(data []byte, p *DecodeParameters) (*Image, error) {
	d := newDecoder(p)
	if err := d.readChunks(data); err != nil {
		return nil, err
	}

	u, err := newUnpacker(&d.md)
	if err != nil {
		return nil, err
	}

	img := &Image{Metadata: d.md}
	if d.md.Animation == nil || len(d.frames) == 0 {
		pix, err := d.decodeTile(d.idat, d.md.Width, d.md.Height, u)
		if err != nil {
			return nil, err
		}
		img.Frames = []Frame{{
			Control: FrameControl{
				Rect:    image.Rect(0, 0, d.md.Width, d.md.Height),
				Dispose: DisposeNone,
				Blend:   BlendSource,
			},
			PixelBuffer: PixelBuffer{Width: d.md.Width, Height: d.md.Height, Pix: pix},
		}}
		return img, nil
	}

	if d.defaultIsFrame {
		d.frames[0].payload = d.idat
	}
	comp := newCompositor(d.md.Width, d.md.Height)
	img.Frames = make([]Frame, 0, len(d.frames))
	for i, f := range d.frames {
		if len(f.payload) == 0 {
			return nil, fmt.Errorf("frame %d has no image data: %w", i, codec.ErrMalformedContainer)
		}
		tile, err := d.decodeTile(f.payload, f.control.Rect.Dx(), f.control.Rect.Dy(), u)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		img.Frames = append(img.Frames, Frame{
			Control:     f.control,
			PixelBuffer: PixelBuffer{Width: d.md.Width, Height: d.md.Height, Pix: comp.apply(f.control, tile)},
		})
	}
	return img, nil
}

// DecodeMetadata parses and validates the chunk stream without inflating any
// image data.
func DecodeMetadata(data []byte) (*Metadata, error) {
	d := newDecoder(nil)
	if err := d.readChunks(data); err != nil {
		return nil, err
	}
	return &d.md, nil
}

func (d *decoder) readChunks(data []byte) error {
	r, err := newChunkReader(data)
	if err != nil {
		return err
	}

	for {
		c, ok, err := r.next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		if !d.seenHeader && c.Type != common.ChunkIHDR && c.Type != common.ChunkCGBI {
			return fmt.Errorf("chunk %s before IHDR: %w", c.Type, codec.ErrMalformedContainer)
		}
		if err := d.handle(c); err != nil {
			return err
		}
	}

	if !d.seenIDAT {
		return fmt.Errorf("no IDAT chunk: %w", codec.ErrMalformedContainer)
	}
	return nil
}

func (d *decoder) handle(c Chunk) error {
	switch c.Type {
	case common.ChunkIHDR:
		if d.seenHeader {
			return fmt.Errorf("duplicate IHDR: %w", codec.ErrMalformedContainer)
		}
		d.seenHeader = true
		return parseIHDR(c.Data, &d.md)

	case common.ChunkCGBI:
		d.md.AppleCgBI = true

	case common.ChunkPLTE:
		return parsePLTE(c.Data, &d.md)

	case common.ChunkTRNS:
		applied, err := parseTRNS(c.Data, &d.md)
		if err != nil {
			return err
		}
		if !applied {
			d.md.Ancillary = append(d.md.Ancillary, c)
		}

	case common.ChunkACTL:
		anim, err := parseACTL(c.Data)
		if err != nil {
			return err
		}
		d.md.Animation = anim

	case common.ChunkFCTL:
		fc, err := parseFCTL(c.Data, &d.md)
		if err != nil {
			return err
		}
		if !d.seenIDAT && len(d.frames) == 0 {
			d.defaultIsFrame = true
		}
		d.frames = append(d.frames, &frameData{control: fc})

	case common.ChunkIDAT:
		d.seenIDAT = true
		d.idat = append(d.idat, c.Data...)

	case common.ChunkFDAT:
		if len(c.Data) < 4 {
			return fmt.Errorf("fdAT length %d: %w", len(c.Data), codec.ErrMalformedContainer)
		}
		if len(d.frames) == 0 {
			return fmt.Errorf("fdAT before fcTL: %w", codec.ErrMalformedContainer)
		}
		f := d.frames[len(d.frames)-1]
		f.payload = append(f.payload, c.Data[4:]...)

	case common.ChunkIEND:

	default:
		if parseAncillary(c, &d.md, d.metadataLimit) {
			return nil
		}
		if common.IsCritical(c.Type) {
			return fmt.Errorf("unknown critical chunk %s: %w", c.Type, codec.ErrUnsupportedFormat)
		}
		d.md.Ancillary = append(d.md.Ancillary, c)
	}
	return nil
}

// decodeTile inflates and reconstructs one image of the given size. Image data
// that inflates past the size the header implies is corrupt.
func (d *decoder) decodeTile(payload []byte, width, height int, u *unpacker) ([]byte, error) {
	want := rawSize(&d.md, width, height)

	var raw []byte
	var err error
	if d.md.AppleCgBI {
		raw, err = deflate.InflateLimit(payload, want, want)
	} else {
		raw, err = deflate.InflateZlibLimit(payload, want, want)
	}
	if err != nil {
		return nil, err
	}
	if len(raw) < want {
		return nil, fmt.Errorf("image data inflates to %d bytes, want %d: %w", len(raw), want, codec.ErrMalformedContainer)
	}
	return reconstruct(raw, width, height, &d.md, u)
}
