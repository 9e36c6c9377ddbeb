package deflate

import (
	"encoding/binary"
	"fmt"

	"github.com/cocosip/go-thumb-codec/codec"
)

const (
	zlibDeflate    = 8
	zlibPresetDict = 0x20
)

// InflateZlib decompresses a zlib stream: a 2-byte header, a DEFLATE stream
// and a big-endian Adler-32 trailer of the uncompressed data.
func InflateZlib(src []byte, sizeHint int) ([]byte, error) {
	return InflateZlibLimit(src, sizeHint, 0)
}

// InflateZlibLimit is InflateZlib with an upper bound on the output size, as
// for InflateLimit.
func InflateZlibLimit(src []byte, sizeHint, limit int) ([]byte, error) {
	if len(src) < 2 {
		return nil, fmt.Errorf("zlib header truncated: %w", codec.ErrMalformedContainer)
	}
	cmf, flg := src[0], src[1]
	if cmf&0x0f != zlibDeflate || cmf>>4 > 7 {
		return nil, fmt.Errorf("zlib compression method %#x: %w", cmf, codec.ErrCorruptCompressedData)
	}
	if (uint16(cmf)<<8|uint16(flg))%31 != 0 {
		return nil, fmt.Errorf("zlib header check bits: %w", codec.ErrCorruptCompressedData)
	}
	if flg&zlibPresetDict != 0 {
		return nil, fmt.Errorf("zlib preset dictionary: %w", codec.ErrCorruptCompressedData)
	}

	out, n, err := inflate(src[2:], sizeHint, limit)
	if err != nil {
		return nil, err
	}

	trailer := 2 + n
	if len(src) < trailer+4 {
		return nil, fmt.Errorf("zlib checksum missing: %w", codec.ErrMalformedContainer)
	}
	want := binary.BigEndian.Uint32(src[trailer:])
	if got := Adler32Checksum(out); got != want {
		return nil, fmt.Errorf("adler32 %#08x, want %#08x: %w", got, want, codec.ErrMalformedContainer)
	}
	return out, nil
}
