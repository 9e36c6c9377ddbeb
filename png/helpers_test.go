package png

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zlib"
	"github.com/stretchr/testify/require"

	"github.com/cocosip/go-thumb-codec/png/common"
)

// chunkBytes frames one chunk, with its CRC computed by hash/crc32.
func chunkBytes(typ string, data []byte) []byte {
	out := binary.BigEndian.AppendUint32(nil, uint32(len(data)))
	out = append(out, typ...)
	out = append(out, data...)
	return binary.BigEndian.AppendUint32(out, crc32.ChecksumIEEE(out[4:]))
}

func buildPNG(chunks ...[]byte) []byte {
	out := append([]byte(nil), common.Signature[:]...)
	for _, c := range chunks {
		out = append(out, c...)
	}
	return out
}

func ihdrChunk(w, h, depth int, ct ColorType, interlaced bool) []byte {
	var d [13]byte
	binary.BigEndian.PutUint32(d[0:], uint32(w))
	binary.BigEndian.PutUint32(d[4:], uint32(h))
	d[8] = byte(depth)
	d[9] = byte(ct)
	if interlaced {
		d[12] = 1
	}
	return chunkBytes(common.ChunkIHDR, d[:])
}

func iendChunk() []byte {
	return chunkBytes(common.ChunkIEND, nil)
}

func actlChunk(frames, loops int) []byte {
	d := binary.BigEndian.AppendUint32(nil, uint32(frames))
	return chunkBytes(common.ChunkACTL, binary.BigEndian.AppendUint32(d, uint32(loops)))
}

func fctlChunk(seq, w, h, x, y int, num, den uint16, dispose DisposeMode, blend BlendMode) []byte {
	var d []byte
	for _, v := range []int{seq, w, h, x, y} {
		d = binary.BigEndian.AppendUint32(d, uint32(v))
	}
	d = binary.BigEndian.AppendUint16(d, num)
	d = binary.BigEndian.AppendUint16(d, den)
	d = append(d, byte(dispose), byte(blend))
	return chunkBytes(common.ChunkFCTL, d)
}

func fdatChunk(seq int, payload []byte) []byte {
	return chunkBytes(common.ChunkFDAT, append(binary.BigEndian.AppendUint32(nil, uint32(seq)), payload...))
}

func zlibCompress(t *testing.T, raw []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	require.NoError(t, err)
	_, err = w.Write(raw)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func flateCompress(t *testing.T, raw []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.BestSpeed)
	require.NoError(t, err)
	_, err = w.Write(raw)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// packRow packs one sample per entry at the given bit depth, MSB first.
func packRow(samples []uint16, depth int) []byte {
	switch depth {
	case 16:
		out := make([]byte, 0, len(samples)*2)
		for _, s := range samples {
			out = binary.BigEndian.AppendUint16(out, s)
		}
		return out
	case 8:
		out := make([]byte, len(samples))
		for i, s := range samples {
			out[i] = byte(s)
		}
		return out
	}
	out := make([]byte, (len(samples)*depth+7)/8)
	for i, s := range samples {
		bit := i * depth
		out[bit/8] |= byte(s) << uint(8-depth-bit%8)
	}
	return out
}

// sampleImage is a test image described by raw samples, channels per pixel.
type sampleImage struct {
	width, height int
	depth         int
	ct            ColorType
	samples       [][]uint16 // per pixel, row-major
}

func newSampleImage(w, h, depth int, ct ColorType) *sampleImage {
	img := &sampleImage{width: w, height: h, depth: depth, ct: ct}
	maxVal := 1<<uint(depth) - 1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			px := make([]uint16, ct.Channels())
			for c := range px {
				if depth == 16 {
					px[c] = uint16((x*7919 + y*104729 + c*31337) & 0xffff)
				} else {
					px[c] = uint16((x*7 + y*13 + c*5) % (maxVal + 1))
				}
			}
			img.samples = append(img.samples, px)
		}
	}
	return img
}

func (img *sampleImage) row(coords [][2]int) []byte {
	var s []uint16
	for _, c := range coords {
		s = append(s, img.samples[c[1]*img.width+c[0]]...)
	}
	return packRow(s, img.depth)
}

// idat returns the compressed image data, filtering every scanline with ft.
func (img *sampleImage) idat(t *testing.T, interlaced bool, ft FilterType) []byte {
	stride := common.FilterStride(img.ct, img.depth)
	var raw []byte
	var prev []byte
	emit := func(coords [][2]int) {
		cur := img.row(coords)
		raw = append(raw, byte(ft))
		raw = Filter(raw, ft, cur, prev, stride)
		prev = cur
	}

	if !interlaced {
		for y := 0; y < img.height; y++ {
			var coords [][2]int
			for x := 0; x < img.width; x++ {
				coords = append(coords, [2]int{x, y})
			}
			emit(coords)
		}
		return zlibCompress(t, raw)
	}

	for _, p := range adam7 {
		prev = nil
		for y := p.startRow; y < img.height; y += p.rowStep {
			var coords [][2]int
			for x := p.startCol; x < img.width; x += p.colStep {
				coords = append(coords, [2]int{x, y})
			}
			if len(coords) > 0 {
				emit(coords)
			}
		}
	}
	return zlibCompress(t, raw)
}

// to8 scales a sample to 8 bits the way the decoder does.
func (img *sampleImage) to8(v uint16) byte {
	switch img.depth {
	case 16:
		return byte(v >> 8)
	case 8:
		return byte(v)
	}
	return byte(int(v) * 255 / (1<<uint(img.depth) - 1))
}

// expected returns the canonical RGBA for non-indexed images.
func (img *sampleImage) expected() []byte {
	out := make([]byte, 0, img.width*img.height*4)
	for _, px := range img.samples {
		switch img.ct {
		case ColorGray:
			g := img.to8(px[0])
			out = append(out, g, g, g, 255)
		case ColorGrayAlpha:
			g := img.to8(px[0])
			out = append(out, g, g, g, img.to8(px[1]))
		case ColorRGB:
			out = append(out, img.to8(px[0]), img.to8(px[1]), img.to8(px[2]), 255)
		case ColorRGBA:
			out = append(out, img.to8(px[0]), img.to8(px[1]), img.to8(px[2]), img.to8(px[3]))
		}
	}
	return out
}

func solidRGBA(w, h int, c [4]byte) []byte {
	out := make([]byte, 0, w*h*4)
	for i := 0; i < w*h; i++ {
		out = append(out, c[:]...)
	}
	return out
}

// rgba8IDAT compresses an 8-bit RGBA buffer as unfiltered scanlines.
func rgba8IDAT(t *testing.T, w, h int, pix []byte) []byte {
	var raw []byte
	for y := 0; y < h; y++ {
		raw = append(raw, 0)
		raw = append(raw, pix[y*w*4:(y+1)*w*4]...)
	}
	return zlibCompress(t, raw)
}
