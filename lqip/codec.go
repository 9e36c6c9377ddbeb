package lqip

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cocosip/go-thumb-codec/codec"
)

// Codec implements the codec.Codec interface for placeholder integers. The
// encoded form is the decimal value as ASCII text.
type Codec struct{}

// NewCodec creates a new placeholder codec
func NewCodec() *Codec {
	return &Codec{}
}

// Encode computes the placeholder of RGBA pixel data
func (c *Codec) Encode(params codec.EncodeParams) ([]byte, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	v, err := EncodeRGBA(params.PixelData, params.Width, params.Height)
	if err != nil {
		return nil, err
	}
	return strconv.AppendInt(nil, int64(v), 10), nil
}

// Decode renders the placeholder as a Cols x Rows RGBA image, one pixel per
// cell
func (c *Codec) Decode(data []byte) (*codec.DecodeResult, error) {
	v, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, fmt.Errorf("lqip: %q is not an integer: %w", data, codec.ErrInvalidHash)
	}
	h, err := Decode(v)
	if err != nil {
		return nil, err
	}
	return &codec.DecodeResult{
		Frames: []codec.Frame{{PixelData: h.Render()}},
		Width:  Cols,
		Height: Rows,
	}, nil
}

// UID returns the media type
func (c *Codec) UID() string {
	return "text/x-lqip"
}

// Name returns the human-readable name
func (c *Codec) Name() string {
	return "lqip"
}

func init() {
	codec.Register(NewCodec())
}
