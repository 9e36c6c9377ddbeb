// Package deflate implements a DEFLATE (RFC 1951) decompressor and the zlib
// (RFC 1950) framing used by PNG.
//
// The decompressor works on whole buffers: the complete compressed stream
// goes in and the complete output comes back. It keeps no state between
// calls and is safe for concurrent use.
package deflate

import (
	"fmt"

	"github.com/cocosip/go-thumb-codec/codec"
)

// inflater holds the per-call decoding state.
type inflater struct {
	br  *bitReader
	out *Buffer

	// Tables for dynamic blocks, reused across blocks of the same stream.
	lit, dist, meta huffmanTable
	lengths         [maxNumLit + maxNumDist]uint8

	// limit caps the output size; zero means unlimited.
	limit int
}

// maxRatio is the largest expansion a DEFLATE stream can achieve: a 258 byte
// match coded in two bits.
const maxRatio = 1032

// ErrOutputLimit is returned when a stream inflates to more bytes than the
// caller allowed. It wraps codec.ErrCorruptCompressedData.
var ErrOutputLimit = fmt.Errorf("inflated output exceeds limit: %w", codec.ErrCorruptCompressedData)

// Inflate decompresses a raw DEFLATE stream. sizeHint is the expected output
// size and only affects the initial allocation.
func Inflate(src []byte, sizeHint int) ([]byte, error) {
	return InflateLimit(src, sizeHint, 0)
}

// InflateLimit is Inflate with an upper bound on the output size. Streams
// producing more than limit bytes fail with ErrOutputLimit. A limit of zero
// or less disables the check.
func InflateLimit(src []byte, sizeHint, limit int) ([]byte, error) {
	out, _, err := inflate(src, sizeHint, limit)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// inflate decompresses src and also returns the number of input bytes the
// stream occupied, so framing formats can locate their trailer.
func inflate(src []byte, sizeHint, limit int) ([]byte, int, error) {
	if limit < 0 {
		limit = 0
	}
	if sizeHint <= 0 {
		sizeHint = len(src) * 4
	}
	// Never preallocate more than the input can expand to.
	if most := len(src)*maxRatio + 1024; sizeHint > most {
		sizeHint = most
	}
	if limit > 0 && sizeHint > limit {
		sizeHint = limit
	}
	f := &inflater{
		br:    newBitReader(src),
		out:   NewBuffer(sizeHint),
		limit: limit,
	}
	if err := f.run(); err != nil {
		return nil, 0, err
	}
	return f.out.Bytes(), f.br.byteOffset(), nil
}

func (f *inflater) run() error {
	for {
		final, err := f.br.readBits(1)
		if err != nil {
			return err
		}
		typ, err := f.br.readBits(2)
		if err != nil {
			return err
		}

		switch typ {
		case blockStored:
			err = f.storedBlock()
		case blockFixed:
			lit, dist := fixedTables()
			err = f.huffmanBlock(lit, dist)
		case blockDynamic:
			if err = f.readDynamicTables(); err == nil {
				err = f.huffmanBlock(&f.lit, &f.dist)
			}
		default:
			return fmt.Errorf("block type %d: %w", typ, codec.ErrCorruptCompressedData)
		}
		if err != nil {
			return err
		}
		if final == 1 {
			return nil
		}
	}
}

func (f *inflater) storedBlock() error {
	if err := f.br.alignToByte(); err != nil {
		return err
	}
	n, err := f.br.readBits(16)
	if err != nil {
		return err
	}
	nn, err := f.br.readBits(16)
	if err != nil {
		return err
	}
	if uint16(nn) != ^uint16(n) {
		return fmt.Errorf("stored block length %d does not match its complement: %w", n, codec.ErrCorruptCompressedData)
	}

	start := f.br.byteOffset()
	end := start + int(n)
	if end > len(f.br.data) {
		return fmt.Errorf("stored block overruns input: %w", codec.ErrCorruptCompressedData)
	}
	if err := f.reserve(int(n)); err != nil {
		return err
	}
	f.out.Write(f.br.data[start:end])
	f.br.seekByte(end)
	return nil
}

// readDynamicTables reads a dynamic block header into f.lit and f.dist.
func (f *inflater) readDynamicTables() error {
	br := f.br
	v, err := br.readBits(14)
	if err != nil {
		return err
	}
	nlit := int(v&0x1f) + 257
	ndist := int(v>>5&0x1f) + 1
	nclen := int(v>>10) + 4
	if nlit > maxNumLit || ndist > maxNumDist {
		return fmt.Errorf("too many codes (%d literal, %d distance): %w", nlit, ndist, codec.ErrCorruptCompressedData)
	}

	var clen [numCodeLen]uint8
	for i := 0; i < nclen; i++ {
		l, err := br.readBits(3)
		if err != nil {
			return err
		}
		clen[codeLengthOrder[i]] = uint8(l)
	}
	if err := f.meta.build(clen[:]); err != nil {
		return err
	}

	lengths := f.lengths[:nlit+ndist]
	for i := 0; i < len(lengths); {
		sym, err := f.meta.decode(br)
		if err != nil {
			return err
		}
		if sym < 16 {
			lengths[i] = uint8(sym)
			i++
			continue
		}

		var rep int
		var val uint8
		switch sym {
		case 16:
			if i == 0 {
				return fmt.Errorf("repeat with no previous length: %w", codec.ErrCorruptCompressedData)
			}
			val = lengths[i-1]
			n, err := br.readBits(2)
			if err != nil {
				return err
			}
			rep = 3 + int(n)
		case 17:
			n, err := br.readBits(3)
			if err != nil {
				return err
			}
			rep = 3 + int(n)
		default:
			n, err := br.readBits(7)
			if err != nil {
				return err
			}
			rep = 11 + int(n)
		}
		if i+rep > len(lengths) {
			return fmt.Errorf("code length repeat overruns table: %w", codec.ErrCorruptCompressedData)
		}
		for ; rep > 0; rep-- {
			lengths[i] = val
			i++
		}
	}

	if lengths[endBlockMarker] == 0 {
		return fmt.Errorf("missing end-of-block code: %w", codec.ErrCorruptCompressedData)
	}
	if err := f.lit.build(lengths[:nlit]); err != nil {
		return err
	}
	return f.dist.build(lengths[nlit:])
}

func (f *inflater) huffmanBlock(lit, dist *huffmanTable) error {
	br, out := f.br, f.out
	for {
		sym, err := lit.decode(br)
		if err != nil {
			return err
		}
		switch {
		case sym < endBlockMarker:
			if err := f.reserve(1); err != nil {
				return err
			}
			out.WriteByte(byte(sym))
			continue
		case sym == endBlockMarker:
			return nil
		}

		idx := sym - 257
		if idx >= len(lengthBase) {
			return fmt.Errorf("length symbol %d: %w", sym, codec.ErrCorruptCompressedData)
		}
		extra, err := br.readBits(uint(lengthExtra[idx]))
		if err != nil {
			return err
		}
		length := int(lengthBase[idx]) + int(extra)

		dsym, err := dist.decode(br)
		if err != nil {
			return err
		}
		if dsym >= len(distBase) {
			return fmt.Errorf("distance symbol %d: %w", dsym, codec.ErrCorruptCompressedData)
		}
		extra, err = br.readBits(uint(distExtra[dsym]))
		if err != nil {
			return err
		}
		distance := int(distBase[dsym]) + int(extra)
		if distance > out.Len() {
			return fmt.Errorf("distance %d exceeds output size %d: %w", distance, out.Len(), codec.ErrCorruptCompressedData)
		}
		if err := f.reserve(length); err != nil {
			return err
		}
		out.copyBack(distance, length)
	}
}

// reserve checks that n more output bytes stay within the limit.
func (f *inflater) reserve(n int) error {
	if f.limit > 0 && f.out.Len()+n > f.limit {
		return fmt.Errorf("%d bytes: %w", f.limit, ErrOutputLimit)
	}
	return nil
}
