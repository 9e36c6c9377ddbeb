package png

import (
	"fmt"

	dicomcodec "github.com/cocosip/go-dicom/pkg/imaging/codec"

	"github.com/cocosip/go-thumb-codec/codec"
)

// Ensure EncodeParameters implements codec.Parameters
var _ dicomcodec.Parameters = (*EncodeParameters)(nil)

// EncodeParameters controls the stored-block PNG writer
type EncodeParameters struct {
	// IncludeAlpha writes RGBA (color type 6) instead of RGB (color type 2).
	// RGB drops the alpha channel.
	IncludeAlpha bool

	// Filter is applied to every scanline. Stored blocks do not compress,
	// so this only changes the bytes written, not their count.
	Filter FilterType

	// internal storage for compatibility with generic parameter interface
	params map[string]interface{}
}

// NewEncodeParameters creates parameters for an RGB, unfiltered image
func NewEncodeParameters() *EncodeParameters {
	return &EncodeParameters{
		Filter: FilterNone,
		params: make(map[string]interface{}),
	}
}

// GetParameter retrieves a parameter by name (implements codec.Parameters)
func (p *EncodeParameters) GetParameter(name string) interface{} {
	switch name {
	case "includeAlpha":
		return p.IncludeAlpha
	case "filter":
		return int(p.Filter)
	default:
		return p.params[name]
	}
}

// SetParameter sets a parameter value (implements codec.Parameters)
func (p *EncodeParameters) SetParameter(name string, value interface{}) {
	switch name {
	case "includeAlpha":
		if v, ok := value.(bool); ok {
			p.IncludeAlpha = v
		}
	case "filter":
		if v, ok := value.(int); ok {
			p.Filter = FilterType(v)
		}
	default:
		if p.params == nil {
			p.params = make(map[string]interface{})
		}
		p.params[name] = value
	}
}

// Validate checks if the parameters are valid
func (p *EncodeParameters) Validate() error {
	if p.Filter > FilterPaeth {
		return fmt.Errorf("filter type %d: %w", p.Filter, codec.ErrInvalidParameter)
	}
	return nil
}

// WithAlpha sets IncludeAlpha and returns the parameters for chaining
func (p *EncodeParameters) WithAlpha(include bool) *EncodeParameters {
	p.IncludeAlpha = include
	return p
}

// WithFilter sets the scanline filter and returns the parameters for chaining
func (p *EncodeParameters) WithFilter(ft FilterType) *EncodeParameters {
	p.Filter = ft
	return p
}

// Ensure DecodeParameters implements codec.Parameters
var _ dicomcodec.Parameters = (*DecodeParameters)(nil)

// DefaultMaxMetadataSize caps the inflated size of one zTXt, iTXt or iCCP
// chunk.
const DefaultMaxMetadataSize = 8 << 20

// DecodeParameters controls PNG decoding
type DecodeParameters struct {
	// MaxMetadataSize is the largest inflated size accepted for a compressed
	// text or ICC profile chunk. Chunks over the cap are kept opaque in
	// Metadata.Ancillary. Zero or less disables the cap.
	MaxMetadataSize int

	// internal storage for compatibility with generic parameter interface
	params map[string]interface{}
}

// NewDecodeParameters creates parameters with the default metadata cap
func NewDecodeParameters() *DecodeParameters {
	return &DecodeParameters{
		MaxMetadataSize: DefaultMaxMetadataSize,
		params:          make(map[string]interface{}),
	}
}

// GetParameter retrieves a parameter by name (implements codec.Parameters)
func (p *DecodeParameters) GetParameter(name string) interface{} {
	switch name {
	case "maxMetadataSize":
		return p.MaxMetadataSize
	default:
		return p.params[name]
	}
}

// SetParameter sets a parameter value (implements codec.Parameters)
func (p *DecodeParameters) SetParameter(name string, value interface{}) {
	switch name {
	case "maxMetadataSize":
		if v, ok := value.(int); ok {
			p.MaxMetadataSize = v
		}
	default:
		if p.params == nil {
			p.params = make(map[string]interface{})
		}
		p.params[name] = value
	}
}

// Validate checks if the parameters are valid
func (p *DecodeParameters) Validate() error {
	return nil
}

// WithMaxMetadataSize sets the metadata cap and returns the parameters for
// chaining
func (p *DecodeParameters) WithMaxMetadataSize(n int) *DecodeParameters {
	p.MaxMetadataSize = n
	return p
}
