package thumbhash

import (
	"fmt"

	"github.com/cocosip/go-thumb-codec/codec"
)

// Codec implements the codec.Codec interface for ThumbHash
type Codec struct {
	params *Parameters
}

// NewCodec creates a hash codec. params may be nil for the defaults.
func NewCodec(params *Parameters) *Codec {
	if params == nil {
		params = NewParameters()
	}
	return &Codec{params: params}
}

// Encode hashes RGBA pixel data
func (c *Codec) Encode(params codec.EncodeParams) ([]byte, error) {
	if err := c.params.Validate(); err != nil {
		return nil, err
	}
	limit := c.params.MaxInputDimension
	if params.Width > limit || params.Height > limit {
		return nil, fmt.Errorf("%dx%d doesn't fit in %dx%d: %w", params.Width, params.Height, limit, limit, codec.ErrInputTooLarge)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return Encode(params.Width, params.Height, params.PixelData)
}

// Decode renders a hash into a single RGBA frame
func (c *Codec) Decode(data []byte) (*codec.DecodeResult, error) {
	if err := c.params.Validate(); err != nil {
		return nil, err
	}
	img, err := DecodeSize(data, c.params.DecodeSize)
	if err != nil {
		return nil, err
	}
	return &codec.DecodeResult{
		Frames: []codec.Frame{{PixelData: img.Pix}},
		Width:  img.Width,
		Height: img.Height,
	}, nil
}

// UID returns the media type
func (c *Codec) UID() string {
	return "image/x-thumbhash"
}

// Name returns the human-readable name
func (c *Codec) Name() string {
	return "thumbhash"
}

// Register registers this codec with the global registry
func init() {
	codec.Register(NewCodec(nil))
}
