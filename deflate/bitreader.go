package deflate

import (
	"fmt"

	"github.com/cocosip/go-thumb-codec/codec"
)

// bitReader reads a DEFLATE bit stream, least significant bit first.
// Reads past the end of the input see zero bits; consuming any of them is an
// error.
type bitReader struct {
	data     []byte
	pos      int    // next byte to load into acc
	acc      uint64 // pending bits, LSB first
	nbits    uint   // number of valid bits in acc
	consumed int    // bits consumed so far
}

func newBitReader(data []byte) *bitReader {
	return &bitReader{data: data}
}

func (br *bitReader) refill() {
	for br.nbits <= 56 {
		if br.pos < len(br.data) {
			br.acc |= uint64(br.data[br.pos]) << br.nbits
		}
		br.pos++
		br.nbits += 8
	}
}

// peek returns the next n bits (n <= 32) without consuming them.
func (br *bitReader) peek(n uint) uint32 {
	if br.nbits < n {
		br.refill()
	}
	return uint32(br.acc & (1<<n - 1))
}

// consume drops n bits previously returned by peek.
func (br *bitReader) consume(n uint) error {
	br.acc >>= n
	br.nbits -= n
	br.consumed += int(n)
	if br.consumed > len(br.data)*8 {
		return fmt.Errorf("unexpected end of stream: %w", codec.ErrCorruptCompressedData)
	}
	return nil
}

// readBits reads an n-bit little-endian value.
func (br *bitReader) readBits(n uint) (uint32, error) {
	v := br.peek(n)
	return v, br.consume(n)
}

// alignToByte discards the bits up to the next byte boundary.
func (br *bitReader) alignToByte() error {
	return br.consume(uint((8 - br.consumed%8) % 8))
}

// byteOffset returns the offset of the first byte not fully consumed.
func (br *bitReader) byteOffset() int {
	return (br.consumed + 7) / 8
}

// seekByte repositions the reader at a byte boundary.
func (br *bitReader) seekByte(off int) {
	br.pos = off
	br.acc = 0
	br.nbits = 0
	br.consumed = off * 8
}
