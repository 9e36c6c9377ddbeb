package thumbhash

import (
	"fmt"

	dicomcodec "github.com/cocosip/go-dicom/pkg/imaging/codec"

	"github.com/cocosip/go-thumb-codec/codec"
)

// Ensure Parameters implements codec.Parameters
var _ dicomcodec.Parameters = (*Parameters)(nil)

// Parameters configures the registered hash codec
type Parameters struct {
	// DecodeSize is the longer side of rendered placeholders (default 32)
	DecodeSize int

	// MaxInputDimension bounds the width and height accepted by Encode.
	// It cannot exceed MaxDimension.
	MaxInputDimension int

	// internal storage for compatibility with generic parameter interface
	params map[string]interface{}
}

// NewParameters creates Parameters with default values
func NewParameters() *Parameters {
	return &Parameters{
		DecodeSize:        DefaultSize,
		MaxInputDimension: MaxDimension,
		params:            make(map[string]interface{}),
	}
}

// GetParameter retrieves a parameter by name (implements codec.Parameters)
func (p *Parameters) GetParameter(name string) interface{} {
	switch name {
	case "decodeSize":
		return p.DecodeSize
	case "maxInputDimension":
		return p.MaxInputDimension
	default:
		return p.params[name]
	}
}

// SetParameter sets a parameter value (implements codec.Parameters)
func (p *Parameters) SetParameter(name string, value interface{}) {
	switch name {
	case "decodeSize":
		if v, ok := value.(int); ok {
			p.DecodeSize = v
		}
	case "maxInputDimension":
		if v, ok := value.(int); ok {
			p.MaxInputDimension = v
		}
	default:
		if p.params == nil {
			p.params = make(map[string]interface{})
		}
		p.params[name] = value
	}
}

// Validate checks if the parameters are valid
func (p *Parameters) Validate() error {
	if p.DecodeSize < 1 || p.DecodeSize > 1024 {
		return fmt.Errorf("decode size %d: %w", p.DecodeSize, codec.ErrInvalidParameter)
	}
	if p.MaxInputDimension < 1 || p.MaxInputDimension > MaxDimension {
		return fmt.Errorf("max input dimension %d: %w", p.MaxInputDimension, codec.ErrInvalidParameter)
	}
	return nil
}

// WithDecodeSize sets the rendered size and returns the parameters for chaining
func (p *Parameters) WithDecodeSize(size int) *Parameters {
	p.DecodeSize = size
	return p
}

// WithMaxInputDimension sets the input bound and returns the parameters for chaining
func (p *Parameters) WithMaxInputDimension(n int) *Parameters {
	p.MaxInputDimension = n
	return p
}
