package common

import (
	"hash/crc32"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCRC32MatchesIEEE(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte("IEND"),
		[]byte("123456789"),
		make([]byte, 1000),
	}
	for _, in := range inputs {
		assert.Equal(t, crc32.ChecksumIEEE(in), CRC32(in), "%q", in)
	}

	// "123456789" is the standard check input.
	assert.Equal(t, uint32(0xcbf43926), CRC32([]byte("123456789")))
}

func TestCRC32Incremental(t *testing.T) {
	whole := CRC32([]byte("IHDRpayload"))
	assert.Equal(t, whole, CRC32([]byte("IHDR"), []byte("payload")))
	assert.Equal(t, whole, UpdateCRC32(UpdateCRC32(0, []byte("IHDR")), []byte("payload")))
}

func TestColorTypeDepths(t *testing.T) {
	valid := 0
	for _, ct := range []ColorType{ColorGray, ColorRGB, ColorIndexed, ColorGrayAlpha, ColorRGBA, 1, 5, 7} {
		for _, d := range []int{1, 2, 4, 8, 16, 3, 32} {
			if ct.ValidDepth(d) {
				valid++
			}
		}
	}
	assert.Equal(t, 15, valid)
	assert.False(t, ColorRGB.ValidDepth(4))
	assert.False(t, ColorIndexed.ValidDepth(16))
}

func TestBytesPerRow(t *testing.T) {
	assert.Equal(t, 1, BytesPerRow(ColorGray, 1, 5))
	assert.Equal(t, 2, BytesPerRow(ColorGray, 1, 9))
	assert.Equal(t, 3, BytesPerRow(ColorIndexed, 4, 5))
	assert.Equal(t, 30, BytesPerRow(ColorRGB, 8, 10))
	assert.Equal(t, 80, BytesPerRow(ColorRGBA, 16, 10))
	assert.Equal(t, 1, FilterStride(ColorGray, 2))
	assert.Equal(t, 8, FilterStride(ColorRGBA, 16))
}
