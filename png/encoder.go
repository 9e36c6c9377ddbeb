package png

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/cocosip/go-thumb-codec/codec"
	"github.com/cocosip/go-thumb-codec/deflate"
	"github.com/cocosip/go-thumb-codec/png/common"
)

// DataURLPrefix starts every data URL produced by EncodeContainer.
const DataURLPrefix = "data:image/png;base64,"

// maxStoredBlock is the largest payload of a stored DEFLATE block.
const maxStoredBlock = 0xffff

// EncodeContainer writes an RGBA buffer as an uncompressed PNG and returns
// it as a base64 data URL. params may be nil.
func EncodeContainer(width, height int, rgba []byte, params *EncodeParameters) (string, error) {
	b, err := EncodeBytes(width, height, rgba, params)
	if err != nil {
		return "", err
	}
	return DataURLPrefix + base64.StdEncoding.EncodeToString(b), nil
}

// EncodeBytes writes an RGBA buffer as a PNG whose image data is a zlib
// stream of stored blocks, one per scanline. params may be nil.
func EncodeBytes(width, height int, rgba []byte, params *EncodeParameters) ([]byte, error) {
	if params == nil {
		params = NewEncodeParameters()
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("image size %dx%d: %w", width, height, codec.ErrInvalidParameter)
	}
	if len(rgba) != width*height*4 {
		return nil, fmt.Errorf("pixel buffer is %d bytes, want %d: %w", len(rgba), width*height*4, codec.ErrInvalidParameter)
	}

	ct, channels := ColorRGB, 3
	if params.IncludeAlpha {
		ct, channels = ColorRGBA, 4
	}
	rowBytes := width * channels
	if rowBytes+1 > maxStoredBlock {
		return nil, fmt.Errorf("scanline of %d bytes exceeds a stored block: %w", rowBytes+1, codec.ErrInputTooLarge)
	}
	// zlib header + per row (5-byte block header + filter byte + samples) + Adler-32
	idatLen := 2 + height*(5+1+rowBytes) + 4
	if idatLen > common.MaxChunkLength {
		return nil, fmt.Errorf("image data of %d bytes exceeds a chunk: %w", idatLen, codec.ErrInputTooLarge)
	}

	out := make([]byte, 0, len(common.Signature)+25+12+idatLen+12)
	out = append(out, common.Signature[:]...)

	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:], uint32(width))
	binary.BigEndian.PutUint32(ihdr[4:], uint32(height))
	ihdr[8] = 8
	ihdr[9] = byte(ct)
	out = appendChunk(out, common.ChunkIHDR, ihdr[:])

	// The IDAT payload is built in place so its CRC covers exactly its range.
	start := len(out)
	out = binary.BigEndian.AppendUint32(out, uint32(idatLen))
	out = append(out, common.ChunkIDAT...)
	out = append(out, 0x78, 0x01)

	adler := deflate.NewAdler32()
	cur := make([]byte, rowBytes)
	var prev []byte
	for y := 0; y < height; y++ {
		src := rgba[y*width*4 : (y+1)*width*4]
		for x := 0; x < width; x++ {
			copy(cur[x*channels:(x+1)*channels], src[x*4:x*4+channels])
		}

		var final byte
		if y == height-1 {
			final = 1
		}
		n := uint16(rowBytes + 1)
		out = append(out, final, byte(n), byte(n>>8), byte(^n), byte(^n>>8))

		rowStart := len(out)
		out = append(out, byte(params.Filter))
		out = Filter(out, params.Filter, cur, prev, channels)
		adler.Write(out[rowStart:])

		if prev == nil {
			prev = make([]byte, rowBytes)
		}
		prev, cur = cur, prev
	}
	out = adler.Sum(out)
	out = binary.BigEndian.AppendUint32(out, common.CRC32(out[start+4:]))

	return appendChunk(out, common.ChunkIEND, nil), nil
}

func appendChunk(out []byte, typ string, data []byte) []byte {
	out = binary.BigEndian.AppendUint32(out, uint32(len(data)))
	start := len(out)
	out = append(out, typ...)
	out = append(out, data...)
	return binary.BigEndian.AppendUint32(out, common.CRC32(out[start:]))
}
