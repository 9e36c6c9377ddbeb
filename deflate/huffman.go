package deflate

import (
	"fmt"

	"github.com/cocosip/go-thumb-codec/codec"
)

// huffmanTable is a canonical Huffman code stored as a direct lookup table.
//
// Codes are assigned in ascending symbol order within each bit length. Each
// code is stored bit-reversed, replicated over every index whose low bits
// match it, so one lookup with the next maxLen stream bits resolves a symbol.
type huffmanTable struct {
	maxLen  uint
	entries []uint16 // symbol<<4 | code length; zero means no code matches
}

// build constructs the table from per-symbol code lengths (0 = unused).
// Over-subscribed code sets are rejected; incomplete ones are allowed.
func (h *huffmanTable) build(lengths []uint8) error {
	var count [maxCodeLen + 1]int
	for _, n := range lengths {
		if int(n) > maxCodeLen {
			return fmt.Errorf("code length %d: %w", n, codec.ErrCorruptCompressedData)
		}
		count[n]++
	}
	count[0] = 0

	var maxLen uint
	left := 1
	for l := 1; l <= maxCodeLen; l++ {
		left <<= 1
		left -= count[l]
		if left < 0 {
			return fmt.Errorf("over-subscribed code: %w", codec.ErrCorruptCompressedData)
		}
		if count[l] > 0 {
			maxLen = uint(l)
		}
	}
	if maxLen == 0 {
		// An empty code (e.g. no distances used). Every lookup fails.
		maxLen = 1
	}

	var next [maxCodeLen + 2]int
	code := 0
	for l := 1; l <= maxCodeLen; l++ {
		code = (code + count[l-1]) << 1
		next[l] = code
	}

	size := 1 << maxLen
	if cap(h.entries) >= size {
		h.entries = h.entries[:size]
		for i := range h.entries {
			h.entries[i] = 0
		}
	} else {
		h.entries = make([]uint16, size)
	}
	h.maxLen = maxLen

	for sym, n := range lengths {
		if n == 0 {
			continue
		}
		c := next[n]
		next[n]++
		entry := uint16(sym)<<4 | uint16(n)
		for i := int(reverseBits(uint16(c), uint(n))); i < size; i += 1 << n {
			h.entries[i] = entry
		}
	}
	return nil
}

// decode reads one symbol from br.
func (h *huffmanTable) decode(br *bitReader) (int, error) {
	entry := h.entries[br.peek(h.maxLen)]
	if entry == 0 {
		return 0, fmt.Errorf("no code matches input: %w", codec.ErrCorruptCompressedData)
	}
	if err := br.consume(uint(entry & 15)); err != nil {
		return 0, err
	}
	return int(entry >> 4), nil
}
