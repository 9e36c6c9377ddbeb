package codec

import "errors"

var (
	// ErrCodecNotFound is returned when a codec is not found in the registry
	ErrCodecNotFound = errors.New("codec not found")

	// ErrInvalidParameter is returned when encoding/decoding parameters are invalid
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrUnsupportedFormat is returned when a bit depth / color type combination
	// is outside the supported matrix
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrMalformedContainer is returned for a bad signature, truncated chunk
	// framing or a checksum mismatch
	ErrMalformedContainer = errors.New("malformed container")

	// ErrCorruptCompressedData is returned for invalid DEFLATE streams
	ErrCorruptCompressedData = errors.New("corrupt compressed data")

	// ErrInputTooLarge is returned when an input exceeds a codec's size bound
	ErrInputTooLarge = errors.New("input too large")

	// ErrInvalidHash is returned when a hash is shorter than its header implies
	ErrInvalidHash = errors.New("invalid hash")
)
