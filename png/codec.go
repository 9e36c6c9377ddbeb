package png

import (
	"github.com/cocosip/go-thumb-codec/codec"
)

// Codec implements the codec.Codec interface for PNG
type Codec struct{}

// NewCodec creates a new PNG codec
func NewCodec() *Codec {
	return &Codec{}
}

// Encode writes the pixels as an uncompressed PNG
func (c *Codec) Encode(params codec.EncodeParams) ([]byte, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	var opts *EncodeParameters
	if params.Options != nil {
		if p, ok := params.Options.(*EncodeParameters); ok {
			opts = p
		}
	}
	return EncodeBytes(params.Width, params.Height, params.PixelData, opts)
}

// Decode decodes a PNG or APNG into composited RGBA frames
func (c *Codec) Decode(data []byte) (*codec.DecodeResult, error) {
	img, err := DecodeContainer(data)
	if err != nil {
		return nil, err
	}

	result := &codec.DecodeResult{
		Width:  img.Metadata.Width,
		Height: img.Metadata.Height,
		Frames: make([]codec.Frame, len(img.Frames)),
	}
	for i, f := range img.Frames {
		result.Frames[i] = codec.Frame{PixelData: f.Pix, Delay: f.Control.Delay}
	}
	return result, nil
}

// UID returns the media type
func (c *Codec) UID() string {
	return "image/png"
}

// Name returns the human-readable name
func (c *Codec) Name() string {
	return "png"
}

// Register registers this codec with the global registry
func init() {
	codec.Register(NewCodec())
}
