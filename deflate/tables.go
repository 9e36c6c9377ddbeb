package deflate

import "sync"

const (
	maxCodeLen     = 15  // longest code length allowed by RFC 1951
	maxNumLit      = 286 // literal/length symbols that may be transmitted
	maxNumDist     = 30  // distance symbols that may be transmitted
	numCodeLen     = 19  // size of the code length (meta) alphabet
	endBlockMarker = 256
)

// Block types, as per RFC 1951 section 3.2.3.
const (
	blockStored  = 0
	blockFixed   = 1
	blockDynamic = 2
)

// Base lengths and extra bits for literal/length symbols 257..285.
var lengthBase = [29]uint16{
	3, 4, 5, 6, 7, 8, 9, 10, 11, 13, 15, 17, 19, 23, 27, 31,
	35, 43, 51, 59, 67, 83, 99, 115, 131, 163, 195, 227, 258,
}

var lengthExtra = [29]uint8{
	0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1, 1, 2, 2, 2, 2,
	3, 3, 3, 3, 4, 4, 4, 4, 5, 5, 5, 5, 0,
}

// Base distances and extra bits for distance symbols 0..29.
var distBase = [30]uint16{
	1, 2, 3, 4, 5, 7, 9, 13, 17, 25, 33, 49, 65, 97, 129, 193,
	257, 385, 513, 769, 1025, 1537, 2049, 3073, 4097, 6145, 8193, 12289, 16385, 24577,
}

var distExtra = [30]uint8{
	0, 0, 0, 0, 1, 1, 2, 2, 3, 3, 4, 4, 5, 5, 6, 6,
	7, 7, 8, 8, 9, 9, 10, 10, 11, 11, 12, 12, 13, 13,
}

// codeLengthOrder is the permutation in which the code length code lengths
// are transmitted in a dynamic block header.
var codeLengthOrder = [numCodeLen]uint8{16, 17, 18, 0, 8, 7, 9, 6, 10, 5, 11, 4, 12, 3, 13, 2, 14, 1, 15}

// reverse8 maps a byte to its bit-reversed value.
var reverse8 [256]uint8

func init() {
	for i := range reverse8 {
		v := uint8(i)
		v = (v&0xf0)>>4 | (v&0x0f)<<4
		v = (v&0xcc)>>2 | (v&0x33)<<2
		v = (v&0xaa)>>1 | (v&0x55)<<1
		reverse8[i] = v
	}
}

// reverseBits returns the low n bits of code in reverse order (n <= 16).
func reverseBits(code uint16, n uint) uint16 {
	r := uint16(reverse8[code&0xff])<<8 | uint16(reverse8[code>>8])
	return r >> (16 - n)
}

var (
	fixedOnce    sync.Once
	fixedLitLen  huffmanTable
	fixedDistant huffmanTable
)

// fixedTables returns the literal/length and distance tables of a fixed
// Huffman block. They are built once and never mutated afterwards.
func fixedTables() (*huffmanTable, *huffmanTable) {
	fixedOnce.Do(func() {
		var lengths [288]uint8
		for i := range lengths {
			switch {
			case i < 144:
				lengths[i] = 8
			case i < 256:
				lengths[i] = 9
			case i < 280:
				lengths[i] = 7
			default:
				lengths[i] = 8
			}
		}
		if err := fixedLitLen.build(lengths[:]); err != nil {
			panic("deflate: invalid fixed literal/length code")
		}

		var dist [32]uint8
		for i := range dist {
			dist[i] = 5
		}
		if err := fixedDistant.build(dist[:]); err != nil {
			panic("deflate: invalid fixed distance code")
		}
	})
	return &fixedLitLen, &fixedDistant
}
