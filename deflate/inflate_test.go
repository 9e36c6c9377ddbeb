package deflate

import (
	"bytes"
	stdflate "compress/flate"
	"errors"
	"io"
	"hash/adler32"
	"math/rand"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cocosip/go-thumb-codec/codec"
)

// bitWriter builds DEFLATE bit streams by hand for the malformed-input tests.
type bitWriter struct {
	out   []byte
	acc   uint32
	nbits uint
}

func (w *bitWriter) bits(v uint32, n uint) {
	for i := uint(0); i < n; i++ {
		w.acc |= (v >> i & 1) << w.nbits
		w.nbits++
		if w.nbits == 8 {
			w.out = append(w.out, byte(w.acc))
			w.acc, w.nbits = 0, 0
		}
	}
}

// code writes a Huffman code, most significant bit first.
func (w *bitWriter) code(c uint32, n uint) {
	for i := int(n) - 1; i >= 0; i-- {
		w.bits(c>>uint(i)&1, 1)
	}
}

func (w *bitWriter) bytes() []byte {
	if w.nbits > 0 {
		return append(w.out, byte(w.acc))
	}
	return w.out
}

func testPayloads() map[string][]byte {
	rng := rand.New(rand.NewSource(1))
	random := make([]byte, 70000)
	rng.Read(random)

	text := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 2000)

	gradient := make([]byte, 64*64*4)
	for i := range gradient {
		gradient[i] = byte(i / 4 % 64 * 3)
	}

	return map[string][]byte{
		"empty":    {},
		"single":   {42},
		"random":   random,
		"text":     text,
		"gradient": gradient,
		"zeros":    make([]byte, 100000),
	}
}

// stdlibRoundTrips reports whether the standard library decoder reproduces
// payload from stream.
func stdlibRoundTrips(stream, payload []byte) bool {
	got, err := io.ReadAll(stdflate.NewReader(bytes.NewReader(stream)))
	return err == nil && bytes.Equal(got, payload)
}

func TestInflateMatchesReferenceEncoder(t *testing.T) {
	levels := []int{flate.HuffmanOnly, flate.NoCompression, flate.BestSpeed, 5, flate.BestCompression}

	for name, payload := range testPayloads() {
		for _, level := range levels {
			var buf bytes.Buffer
			w, err := flate.NewWriter(&buf, level)
			require.NoError(t, err)
			_, err = w.Write(payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			// Only streams the standard library accepts are fixtures.
			if !stdlibRoundTrips(buf.Bytes(), payload) {
				t.Logf("%s at level %d: encoder output rejected by compress/flate, skipped", name, level)
				continue
			}

			got, err := Inflate(buf.Bytes(), len(payload))
			require.NoError(t, err, "%s at level %d", name, level)
			assert.True(t, bytes.Equal(payload, got), "%s at level %d: output differs", name, level)
		}
	}
}

func TestInflateMatchesStdlibEncoder(t *testing.T) {
	for name, payload := range testPayloads() {
		for _, level := range []int{stdflate.HuffmanOnly, stdflate.NoCompression, stdflate.BestSpeed, stdflate.BestCompression} {
			var buf bytes.Buffer
			w, err := stdflate.NewWriter(&buf, level)
			require.NoError(t, err)
			_, err = w.Write(payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			got, err := Inflate(buf.Bytes(), len(payload))
			require.NoError(t, err, "%s at level %d", name, level)
			assert.True(t, bytes.Equal(payload, got), "%s at level %d: output differs", name, level)
		}
	}
}

func TestInflateLimit(t *testing.T) {
	payload := make([]byte, 1<<20)
	var buf bytes.Buffer
	w, err := stdflate.NewWriter(&buf, stdflate.BestCompression)
	require.NoError(t, err)
	_, err = w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	t.Run("at limit", func(t *testing.T) {
		got, err := InflateLimit(buf.Bytes(), 0, len(payload))
		require.NoError(t, err)
		assert.Len(t, got, len(payload))
	})

	t.Run("over limit", func(t *testing.T) {
		_, err := InflateLimit(buf.Bytes(), 0, 4096)
		assert.True(t, errors.Is(err, ErrOutputLimit), "got %v", err)
		assert.True(t, errors.Is(err, codec.ErrCorruptCompressedData), "got %v", err)
	})

	t.Run("stored block over limit", func(t *testing.T) {
		stream := []byte{0x01, 0x05, 0x00, 0xfa, 0xff, 'h', 'e', 'l', 'l', 'o'}
		_, err := InflateLimit(stream, 0, 4)
		assert.True(t, errors.Is(err, ErrOutputLimit), "got %v", err)
	})

	t.Run("zlib", func(t *testing.T) {
		var zbuf bytes.Buffer
		zw := zlib.NewWriter(&zbuf)
		_, err := zw.Write(payload)
		require.NoError(t, err)
		require.NoError(t, zw.Close())

		_, err = InflateZlibLimit(zbuf.Bytes(), 0, len(payload)-1)
		assert.True(t, errors.Is(err, ErrOutputLimit), "got %v", err)
		got, err := InflateZlibLimit(zbuf.Bytes(), 0, len(payload))
		require.NoError(t, err)
		assert.Len(t, got, len(payload))
	})

	t.Run("huge size hint", func(t *testing.T) {
		got, err := Inflate(buf.Bytes(), 1<<40)
		require.NoError(t, err)
		assert.Len(t, got, len(payload))
	})
}

func TestInflateZlib(t *testing.T) {
	payload := testPayloads()["text"]

	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	require.NoError(t, err)
	_, err = w.Write(payload)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	t.Run("valid", func(t *testing.T) {
		got, err := InflateZlib(buf.Bytes(), 0)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("bad checksum", func(t *testing.T) {
		corrupt := append([]byte(nil), buf.Bytes()...)
		corrupt[len(corrupt)-1] ^= 0xff
		_, err := InflateZlib(corrupt, 0)
		assert.True(t, errors.Is(err, codec.ErrMalformedContainer), "got %v", err)
	})

	t.Run("missing checksum", func(t *testing.T) {
		_, err := InflateZlib(buf.Bytes()[:buf.Len()-4], 0)
		assert.True(t, errors.Is(err, codec.ErrMalformedContainer), "got %v", err)
	})

	t.Run("bad header", func(t *testing.T) {
		corrupt := append([]byte(nil), buf.Bytes()...)
		corrupt[1] ^= 0x01
		_, err := InflateZlib(corrupt, 0)
		assert.True(t, errors.Is(err, codec.ErrCorruptCompressedData), "got %v", err)
	})
}

func TestInflateStoredBlock(t *testing.T) {
	stream := []byte{0x01, 0x05, 0x00, 0xfa, 0xff, 'h', 'e', 'l', 'l', 'o'}
	got, err := Inflate(stream, 0)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	t.Run("length complement mismatch", func(t *testing.T) {
		bad := append([]byte(nil), stream...)
		bad[3] = 0x00
		_, err := Inflate(bad, 0)
		assert.True(t, errors.Is(err, codec.ErrCorruptCompressedData), "got %v", err)
	})

	t.Run("overruns input", func(t *testing.T) {
		_, err := Inflate(stream[:7], 0)
		assert.True(t, errors.Is(err, codec.ErrCorruptCompressedData), "got %v", err)
	})
}

func TestInflateCorruptInput(t *testing.T) {
	tests := []struct {
		name  string
		build func(w *bitWriter)
	}{
		{
			name: "reserved block type",
			build: func(w *bitWriter) {
				w.bits(1, 1)
				w.bits(3, 2)
			},
		},
		{
			name: "distance before start of output",
			build: func(w *bitWriter) {
				w.bits(1, 1)
				w.bits(blockFixed, 2)
				w.code(1, 7) // symbol 257, length 3
				w.code(0, 5) // distance 1
				w.code(0, 7) // end of block
			},
		},
		{
			name: "distance symbol 30",
			build: func(w *bitWriter) {
				w.bits(1, 1)
				w.bits(blockFixed, 2)
				w.code(0x30+'a', 8)
				w.code(1, 7)
				w.code(30, 5)
			},
		},
		{
			name: "truncated fixed block",
			build: func(w *bitWriter) {
				w.bits(1, 1)
				w.bits(blockFixed, 2)
				w.code(0x30+'a', 8)
			},
		},
		{
			name: "repeat code without previous length",
			build: func(w *bitWriter) {
				w.bits(1, 1)
				w.bits(blockDynamic, 2)
				w.bits(0, 5)  // 257 literal/length codes
				w.bits(0, 5)  // 1 distance code
				w.bits(15, 4) // 19 code length codes
				// 16 meta symbols of length 4, the last three unused.
				for i := 0; i < numCodeLen; i++ {
					if i < 16 {
						w.bits(4, 3)
					} else {
						w.bits(0, 3)
					}
				}
				// Symbol 16 is the 14th length-4 symbol: code 1101.
				w.code(13, 4)
				w.bits(0, 2)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w bitWriter
			tt.build(&w)
			_, err := Inflate(w.bytes(), 0)
			require.Error(t, err)
			assert.True(t, errors.Is(err, codec.ErrCorruptCompressedData), "got %v", err)
		})
	}
}

func TestInflateOverlappingCopy(t *testing.T) {
	var w bitWriter
	w.bits(1, 1)
	w.bits(blockFixed, 2)
	w.code(0x30+'a', 8)
	w.code(0x30+'b', 8)
	w.code(6, 7) // symbol 262, length 8
	w.code(1, 5) // distance 2
	w.code(0, 7)

	got, err := Inflate(w.bytes(), 1)
	require.NoError(t, err)
	assert.Equal(t, "ababababab", string(got))
}

func TestHuffmanTableCanonicalCodes(t *testing.T) {
	var h huffmanTable
	require.NoError(t, h.build([]uint8{2, 1, 3, 3}))

	// Canonical assignment: sym1=0, sym0=10, sym2=110, sym3=111.
	var w bitWriter
	w.code(0b110, 3)
	w.code(0b0, 1)
	w.code(0b111, 3)
	w.code(0b10, 2)
	br := newBitReader(w.bytes())

	var got []int
	for i := 0; i < 4; i++ {
		sym, err := h.decode(br)
		require.NoError(t, err)
		got = append(got, sym)
	}
	assert.Equal(t, []int{2, 1, 3, 0}, got)
}

func TestHuffmanTableRejectsOversubscribed(t *testing.T) {
	var h huffmanTable
	err := h.build([]uint8{1, 1, 1})
	assert.True(t, errors.Is(err, codec.ErrCorruptCompressedData), "got %v", err)
}

func TestHuffmanTableIncompleteCodeHasHoles(t *testing.T) {
	var h huffmanTable
	require.NoError(t, h.build([]uint8{0, 2}))

	// Only code 00 exists; 11 has no entry.
	br := newBitReader([]byte{0xff})
	_, err := h.decode(br)
	assert.True(t, errors.Is(err, codec.ErrCorruptCompressedData), "got %v", err)
}

func TestBufferGrowsByDoubling(t *testing.T) {
	b := NewBuffer(0)
	assert.Equal(t, 0, b.Cap())

	b.WriteByte(1)
	assert.Equal(t, 64, b.Cap())

	b.Write(make([]byte, 64))
	assert.Equal(t, 128, b.Cap())
	assert.Equal(t, 65, b.Len())

	b.copyBack(65, 65)
	assert.Equal(t, 130, b.Len())
	assert.Equal(t, 256, b.Cap())
	assert.Equal(t, byte(1), b.Bytes()[65])

	b.Reset()
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 256, b.Cap())
}

func TestAdler32MatchesStdlib(t *testing.T) {
	for name, payload := range testPayloads() {
		assert.Equal(t, adler32.Checksum(payload), Adler32Checksum(payload), name)
	}

	d := NewAdler32()
	for _, c := range []byte("Wikipedia") {
		d.WriteByte(c)
	}
	assert.Equal(t, uint32(0x11E60398), d.Sum32())
	assert.Equal(t, []byte{0x11, 0xE6, 0x03, 0x98}, d.Sum(nil))
}
