package imageio

import (
	"bytes"
	"fmt"

	"github.com/klauspost/compress/flate"

	"github.com/cocosip/go-thumb-codec/codec"
	"github.com/cocosip/go-thumb-codec/deflate"
	"github.com/cocosip/go-thumb-codec/png"
	"github.com/cocosip/go-thumb-codec/png/common"
)

// CompressionStats compares the image data of a PNG with what a general
// purpose compressor makes of it.
type CompressionStats struct {
	Stored       int // bytes of IDAT payload in the file
	Raw          int // bytes after inflating
	Recompressed int // bytes after recompressing at the given level
}

// Ratio is Recompressed relative to Stored.
func (s CompressionStats) Ratio() float64 {
	if s.Stored == 0 {
		return 0
	}
	return float64(s.Recompressed) / float64(s.Stored)
}

// Recompress inflates the default image of a PNG and deflates it again with
// klauspost/compress at the given level.
func Recompress(data []byte, level int) (CompressionStats, error) {
	md, err := png.DecodeMetadata(data)
	if err != nil {
		return CompressionStats{}, err
	}
	chunks, err := png.ReadChunks(data)
	if err != nil {
		return CompressionStats{}, err
	}

	var idat []byte
	cgbi := false
	for _, c := range chunks {
		switch c.Type {
		case common.ChunkIDAT:
			idat = append(idat, c.Data...)
		case common.ChunkCGBI:
			cgbi = true
		}
	}
	if len(idat) == 0 {
		return CompressionStats{}, fmt.Errorf("no image data: %w", codec.ErrMalformedContainer)
	}

	want := md.ImageDataSize()
	var raw []byte
	if cgbi {
		raw, err = deflate.InflateLimit(idat, want, want)
	} else {
		raw, err = deflate.InflateZlibLimit(idat, want, want)
	}
	if err != nil {
		return CompressionStats{}, err
	}

	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, level)
	if err != nil {
		return CompressionStats{}, fmt.Errorf("level %d: %w", level, codec.ErrInvalidParameter)
	}
	if _, err := w.Write(raw); err != nil {
		return CompressionStats{}, err
	}
	if err := w.Close(); err != nil {
		return CompressionStats{}, err
	}

	return CompressionStats{
		Stored:       len(idat),
		Raw:          len(raw),
		Recompressed: buf.Len(),
	}, nil
}
