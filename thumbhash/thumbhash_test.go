package thumbhash

import (
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cocosip/go-thumb-codec/codec"
	"github.com/cocosip/go-thumb-codec/png"
)

// lcgImage is a deterministic noisy gradient, so no DCT coefficient is
// exactly zero.
func lcgImage(w, h int, seed int64, alpha bool) []byte {
	s := seed
	out := make([]byte, 0, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var px [4]byte
			for c := 0; c < 4; c++ {
				s = (s*1103515245 + 12345) & 0x7fffffff
				n := int(s>>16) & 31
				px[c] = byte(((x*13+y*7+c*50)*(c+1) + n) & 255)
			}
			if !alpha {
				px[3] = 255
			}
			out = append(out, px[:]...)
		}
	}
	return out
}

var referenceVectors = []struct {
	name        string
	w, h        int
	seed        int64
	alpha       bool
	hash        string
	decodedW    int
	decodedH    int
	ratio       float64
	average     RGBA
	first, last [4]byte
}{
	{
		name: "landscape", w: 24, h: 16, seed: 1,
		hash:     "9ff7051d8a0aa38867b56d699a6867870a57c64065",
		decodedW: 32, decodedH: 23, ratio: 1.4,
		average: RGBA{0.46825396825396814, 0.4841269841269841, 0.5238095238095238, 1},
		first:   [4]byte{66, 141, 154, 255}, last: [4]byte{61, 149, 171, 255},
	},
	{
		name: "portrait with alpha", w: 12, h: 30, seed: 2, alpha: true,
		hash:     "e027860a06077705298a7c980b97642084ef8756d65887",
		decodedW: 13, decodedH: 32, ratio: 0.4,
		average: RGBA{0.5423280423280422, 0.4629629629629629, 0.5185185185185185, 0.4666666666666667},
		first:   [4]byte{86, 132, 116, 119}, last: [4]byte{76, 122, 117, 119},
	},
	{
		name: "square", w: 20, h: 20, seed: 3,
		hash:     "1ff8051f0c0b788848d66997ba7467759588977093093607",
		decodedW: 32, decodedH: 32, ratio: 1,
		average: RGBA{0.4894179894179893, 0.5052910052910052, 0.4814814814814815, 1},
		first:   [4]byte{51, 156, 138, 255}, last: [4]byte{23, 127, 117, 255},
	},
}

func TestEncodeReferenceVectors(t *testing.T) {
	for _, v := range referenceVectors {
		t.Run(v.name, func(t *testing.T) {
			hash, err := Encode(v.w, v.h, lcgImage(v.w, v.h, v.seed, v.alpha))
			require.NoError(t, err)
			assert.Equal(t, v.hash, hex.EncodeToString(hash))
		})
	}
}

func TestDecodeReferenceVectors(t *testing.T) {
	for _, v := range referenceVectors {
		t.Run(v.name, func(t *testing.T) {
			hash, err := hex.DecodeString(v.hash)
			require.NoError(t, err)

			img, err := Decode(hash)
			require.NoError(t, err)
			assert.Equal(t, v.decodedW, img.Width)
			assert.Equal(t, v.decodedH, img.Height)
			require.Len(t, img.Pix, img.Width*img.Height*4)

			last := img.Pix[len(img.Pix)-4:]
			for c := 0; c < 4; c++ {
				assert.InDelta(t, float64(v.first[c]), float64(img.Pix[c]), 1, "first pixel channel %d", c)
				assert.InDelta(t, float64(v.last[c]), float64(last[c]), 1, "last pixel channel %d", c)
			}

			avg, err := AverageColor(hash)
			require.NoError(t, err)
			assert.InDelta(t, v.average.R, avg.R, 1e-12)
			assert.InDelta(t, v.average.G, avg.G, 1e-12)
			assert.InDelta(t, v.average.B, avg.B, 1e-12)
			assert.InDelta(t, v.average.A, avg.A, 1e-12)

			ratio, err := AspectRatio(hash)
			require.NoError(t, err)
			assert.InDelta(t, v.ratio, ratio, 1e-12)
		})
	}
}

func TestEncodeRejectsLargeInput(t *testing.T) {
	for _, size := range [][2]int{{101, 50}, {50, 101}} {
		_, err := Encode(size[0], size[1], make([]byte, size[0]*size[1]*4))
		assert.True(t, errors.Is(err, codec.ErrInputTooLarge), "%v: got %v", size, err)
	}

	_, err := Encode(100, 100, lcgImage(100, 100, 9, false))
	assert.NoError(t, err)
}

func TestEncodeRejectsBadBuffer(t *testing.T) {
	_, err := Encode(0, 4, nil)
	assert.True(t, errors.Is(err, codec.ErrInvalidParameter), "got %v", err)

	_, err = Encode(4, 4, make([]byte, 63))
	assert.True(t, errors.Is(err, codec.ErrInvalidParameter), "got %v", err)
}

func TestFlatColorRoundTrip(t *testing.T) {
	want := [4]byte{40, 80, 160, 255}
	rgba := make([]byte, 0, 8*8*4)
	for i := 0; i < 64; i++ {
		rgba = append(rgba, want[:]...)
	}

	hash, err := Encode(8, 8, rgba)
	require.NoError(t, err)

	img, err := Decode(hash)
	require.NoError(t, err)
	assert.Equal(t, 32, img.Width)
	assert.Equal(t, 32, img.Height)
	for i := 0; i < len(img.Pix); i += 4 {
		for c := 0; c < 4; c++ {
			assert.InDelta(t, float64(want[c]), float64(img.Pix[i+c]), 0.05*255, "pixel %d channel %d", i/4, c)
		}
	}

	avg, err := AverageColor(hash)
	require.NoError(t, err)
	assert.InDelta(t, 40.0/255, avg.R, 0.05)
	assert.InDelta(t, 80.0/255, avg.G, 0.05)
	assert.InDelta(t, 160.0/255, avg.B, 0.05)
	assert.Equal(t, 1.0, avg.A)
}

func TestDecodeIsDeterministic(t *testing.T) {
	hash, err := Encode(30, 10, lcgImage(30, 10, 4, true))
	require.NoError(t, err)

	a, err := Decode(hash)
	require.NoError(t, err)
	b, err := Decode(hash)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAspectRatioFromHeader(t *testing.T) {
	tests := []struct {
		w, h  int
		alpha bool
		ratio float64
	}{
		{3, 50, false, 1.0 / 7},
		{50, 3, false, 7},
		{40, 20, false, 7.0 / 4},
		{40, 20, true, 5.0 / 3},
		{20, 40, true, 3.0 / 5},
	}
	for _, tt := range tests {
		hash, err := Encode(tt.w, tt.h, lcgImage(tt.w, tt.h, 5, tt.alpha))
		require.NoError(t, err)
		ratio, err := AspectRatio(hash)
		require.NoError(t, err)
		assert.InDelta(t, tt.ratio, ratio, 1e-12, "%dx%d alpha=%v", tt.w, tt.h, tt.alpha)
	}
}

func TestHashLength(t *testing.T) {
	assert.Equal(t, 5, acCount(3, 3))
	assert.Equal(t, 14, acCount(5, 5))
	assert.Equal(t, 14, acCount(7, 3))
	assert.Equal(t, 22, acCount(7, 5))
	assert.Equal(t, 27, acCount(7, 7))

	for _, v := range referenceVectors {
		hash, _ := hex.DecodeString(v.hash)
		h, err := parseHeader(hash)
		require.NoError(t, err)
		assert.Equal(t, len(hash), h.length(), v.name)
	}
}

func TestDecodeRejectsShortHash(t *testing.T) {
	full, _ := hex.DecodeString(referenceVectors[1].hash)

	tests := []struct {
		name string
		hash []byte
	}{
		{"empty", nil},
		{"four bytes", full[:4]},
		{"alpha flag without alpha byte", full[:5]},
		{"missing last coefficient byte", full[:len(full)-1]},
		{"zero grid", []byte{0, 0, 0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.hash)
			assert.True(t, errors.Is(err, codec.ErrInvalidHash), "got %v", err)
		})
	}

	_, err := AverageColor(full[:4])
	assert.True(t, errors.Is(err, codec.ErrInvalidHash), "got %v", err)
	_, err = AspectRatio(nil)
	assert.True(t, errors.Is(err, codec.ErrInvalidHash), "got %v", err)
}

func TestDecodeSize(t *testing.T) {
	hash, _ := hex.DecodeString(referenceVectors[0].hash)
	img, err := DecodeSize(hash, 64)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Width)
	assert.Equal(t, 46, img.Height)

	_, err = DecodeSize(hash, 0)
	assert.True(t, errors.Is(err, codec.ErrInvalidParameter), "got %v", err)
}

func TestToDataURL(t *testing.T) {
	hash, _ := hex.DecodeString(referenceVectors[1].hash)
	url, err := ToDataURL(hash)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(url, png.DataURLPrefix))

	img, err := Decode(hash)
	require.NoError(t, err)
	want, err := png.EncodeContainer(img.Width, img.Height, img.Pix, png.NewEncodeParameters().WithAlpha(true))
	require.NoError(t, err)
	assert.Equal(t, want, url)
}

func TestCodecRegistered(t *testing.T) {
	c, err := codec.Get("thumbhash")
	require.NoError(t, err)
	assert.Equal(t, "image/x-thumbhash", c.UID())

	v := referenceVectors[2]
	hash, err := c.Encode(codec.EncodeParams{PixelData: lcgImage(v.w, v.h, v.seed, v.alpha), Width: v.w, Height: v.h})
	require.NoError(t, err)
	assert.Equal(t, v.hash, hex.EncodeToString(hash))

	result, err := c.Decode(hash)
	require.NoError(t, err)
	assert.Equal(t, 32, result.Width)
	require.Len(t, result.Frames, 1)
}

func TestCodecParameters(t *testing.T) {
	p := NewParameters().WithMaxInputDimension(16).WithDecodeSize(8)
	require.NoError(t, p.Validate())
	c := NewCodec(p)

	_, err := c.Encode(codec.EncodeParams{PixelData: make([]byte, 20*10*4), Width: 20, Height: 10})
	assert.True(t, errors.Is(err, codec.ErrInputTooLarge), "got %v", err)

	hash, _ := hex.DecodeString(referenceVectors[2].hash)
	result, err := c.Decode(hash)
	require.NoError(t, err)
	assert.Equal(t, 8, result.Width)
	assert.Equal(t, 8, result.Height)

	p.SetParameter("maxInputDimension", 101)
	assert.Equal(t, 101, p.GetParameter("maxInputDimension"))
	assert.True(t, errors.Is(p.Validate(), codec.ErrInvalidParameter))
}
