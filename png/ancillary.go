package png

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"

	"github.com/cocosip/go-thumb-codec/codec"
	"github.com/cocosip/go-thumb-codec/deflate"
	"github.com/cocosip/go-thumb-codec/png/common"
)

// parseAncillary decodes a known ancillary chunk into md. It reports false
// for chunk types it does not interpret. A chunk that fails to parse is kept
// opaquely rather than failing the decode. limit caps the inflated size of
// compressed chunks.
func parseAncillary(c Chunk, md *Metadata, limit int) bool {
	var err error
	switch c.Type {
	case common.ChunkTEXT:
		err = parseTEXT(c.Data, md)
	case common.ChunkZTXT:
		err = parseZTXT(c.Data, md, limit)
	case common.ChunkITXT:
		err = parseITXT(c.Data, md, limit)
	case common.ChunkGAMA:
		if err = expectLength(c, 4); err == nil {
			md.Gamma = float64(binary.BigEndian.Uint32(c.Data)) / 100000
		}
	case common.ChunkSRGB:
		if err = expectLength(c, 1); err == nil {
			intent := c.Data[0]
			md.SRGBIntent = &intent
		}
	case common.ChunkCHRM:
		if err = expectLength(c, 32); err == nil {
			md.Chromaticities = make([]float64, 8)
			for i := range md.Chromaticities {
				md.Chromaticities[i] = float64(binary.BigEndian.Uint32(c.Data[i*4:])) / 100000
			}
		}
	case common.ChunkPHYS:
		if err = expectLength(c, 9); err == nil {
			md.Physical = &PhysicalDims{
				PixelsPerUnitX: binary.BigEndian.Uint32(c.Data),
				PixelsPerUnitY: binary.BigEndian.Uint32(c.Data[4:]),
				UnitIsMeter:    c.Data[8] == 1,
			}
		}
	case common.ChunkBKGD:
		err = parseBKGD(c.Data, md)
	case common.ChunkHIST:
		if err = expectLength(c, len(md.Palette)*2); err == nil {
			md.Histogram = make([]uint16, len(md.Palette))
			for i := range md.Histogram {
				md.Histogram[i] = binary.BigEndian.Uint16(c.Data[i*2:])
			}
		}
	case common.ChunkICCP:
		err = parseICCP(c.Data, md, limit)
	default:
		return false
	}
	return err == nil
}

func expectLength(c Chunk, n int) error {
	if len(c.Data) != n {
		return fmt.Errorf("%s length %d, want %d: %w", c.Type, len(c.Data), n, codec.ErrMalformedContainer)
	}
	return nil
}

// splitNull splits data at its first zero byte.
func splitNull(data []byte) (head, rest []byte, err error) {
	i := bytes.IndexByte(data, 0)
	if i < 0 {
		return nil, nil, fmt.Errorf("missing null separator: %w", codec.ErrMalformedContainer)
	}
	return data[:i], data[i+1:], nil
}

func latin1(b []byte) (string, error) {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func setText(md *Metadata, keyword []byte, text string) error {
	key, err := latin1(keyword)
	if err != nil {
		return err
	}
	if md.Text == nil {
		md.Text = make(map[string]string)
	}
	md.Text[key] = text
	return nil
}

func parseTEXT(data []byte, md *Metadata) error {
	keyword, rest, err := splitNull(data)
	if err != nil {
		return err
	}
	text, err := latin1(rest)
	if err != nil {
		return err
	}
	return setText(md, keyword, text)
}

func parseZTXT(data []byte, md *Metadata, limit int) error {
	keyword, rest, err := splitNull(data)
	if err != nil {
		return err
	}
	if len(rest) < 1 || rest[0] != 0 {
		return fmt.Errorf("zTXt compression method: %w", codec.ErrUnsupportedFormat)
	}
	raw, err := deflate.InflateZlibLimit(rest[1:], 0, limit)
	if err != nil {
		return err
	}
	text, err := latin1(raw)
	if err != nil {
		return err
	}
	return setText(md, keyword, text)
}

func parseITXT(data []byte, md *Metadata, limit int) error {
	keyword, rest, err := splitNull(data)
	if err != nil {
		return err
	}
	if len(rest) < 2 {
		return fmt.Errorf("iTXt truncated: %w", codec.ErrMalformedContainer)
	}
	compressed, method := rest[0] == 1, rest[1]
	// Skip the language tag and the translated keyword.
	if _, rest, err = splitNull(rest[2:]); err != nil {
		return err
	}
	if _, rest, err = splitNull(rest); err != nil {
		return err
	}
	if compressed {
		if method != 0 {
			return fmt.Errorf("iTXt compression method %d: %w", method, codec.ErrUnsupportedFormat)
		}
		if rest, err = deflate.InflateZlibLimit(rest, 0, limit); err != nil {
			return err
		}
	}
	text := string(rest)
	if !utf8.ValidString(text) {
		// Fall back to Latin-1 for writers that ignore the UTF-8 requirement.
		if text, err = latin1(rest); err != nil {
			return err
		}
	}
	return setText(md, keyword, text)
}

func parseBKGD(data []byte, md *Metadata) error {
	switch md.ColorType {
	case ColorIndexed:
		if len(data) != 1 {
			return fmt.Errorf("bKGD length %d: %w", len(data), codec.ErrMalformedContainer)
		}
		md.Background = []uint16{uint16(data[0])}
	case ColorGray, ColorGrayAlpha:
		if len(data) != 2 {
			return fmt.Errorf("bKGD length %d: %w", len(data), codec.ErrMalformedContainer)
		}
		md.Background = []uint16{binary.BigEndian.Uint16(data)}
	default:
		if len(data) != 6 {
			return fmt.Errorf("bKGD length %d: %w", len(data), codec.ErrMalformedContainer)
		}
		md.Background = []uint16{
			binary.BigEndian.Uint16(data[0:]),
			binary.BigEndian.Uint16(data[2:]),
			binary.BigEndian.Uint16(data[4:]),
		}
	}
	return nil
}

func parseICCP(data []byte, md *Metadata, limit int) error {
	name, rest, err := splitNull(data)
	if err != nil {
		return err
	}
	if len(rest) < 1 {
		return fmt.Errorf("iCCP truncated: %w", codec.ErrMalformedContainer)
	}
	profile, err := deflate.InflateZlibLimit(rest[1:], 0, limit)
	if errors.Is(err, deflate.ErrOutputLimit) {
		return err
	}
	if err != nil {
		// Some writers omit the zlib wrapper.
		if profile, err = deflate.InflateLimit(rest[1:], 0, limit); err != nil {
			return err
		}
	}
	n, err := latin1(name)
	if err != nil {
		return err
	}
	md.ICCProfile = &ICCProfile{Name: n, Data: profile}
	return nil
}
