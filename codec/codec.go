// Package codec defines the common interface shared by the image codecs in
// this module and a registry to look them up by name or media type.
package codec

import "time"

// Codec is the universal interface for all image codecs
type Codec interface {
	// Encode encodes RGBA pixel data
	Encode(params EncodeParams) ([]byte, error)

	// Decode decodes encoded data into RGBA frames
	Decode(data []byte) (*DecodeResult, error)

	// UID returns the unique identifier (the media type of the encoded form)
	UID() string

	// Name returns a human-readable name
	Name() string
}

// EncodeParams contains parameters for encoding
type EncodeParams struct {
	PixelData []byte  // RGBA pixel data, row-major, 4 bytes per pixel
	Width     int     // Image width
	Height    int     // Image height
	Options   Options // Codec-specific options
}

// Options is an interface for codec-specific encoding options
type Options interface {
	// Validate checks if the options are valid
	Validate() error
}

// Frame is one decoded RGBA image of a (possibly animated) result
type Frame struct {
	PixelData []byte        // RGBA pixel data, Width*Height*4 bytes
	Delay     time.Duration // Display duration, zero for still images
}

// DecodeResult contains the result of decoding
type DecodeResult struct {
	Frames []Frame // Decoded frames, at least one
	Width  int     // Image width
	Height int     // Image height
}

// PixelData returns the first frame's pixels
func (r *DecodeResult) PixelData() []byte {
	if r == nil || len(r.Frames) == 0 {
		return nil
	}
	return r.Frames[0].PixelData
}

// Validate checks the common encode parameters
func (p EncodeParams) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return ErrInvalidParameter
	}
	if len(p.PixelData) != p.Width*p.Height*4 {
		return ErrInvalidParameter
	}
	if p.Options != nil {
		return p.Options.Validate()
	}
	return nil
}
