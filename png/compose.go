package png

import (
	"math"
)

// compositor accumulates animation frames on a canvas the size of the image.
type compositor struct {
	width, height int
	canvas        []byte
}

func newCompositor(width, height int) *compositor {
	return &compositor{
		width:  width,
		height: height,
		canvas: make([]byte, width*height*4),
	}
}

// apply composites a frame tile and returns a snapshot of the canvas. The
// frame's dispose op is applied to the canvas afterwards.
func (c *compositor) apply(fc FrameControl, tile []byte) []byte {
	var saved []byte
	if fc.Dispose == DisposePrevious {
		saved = append([]byte(nil), c.canvas...)
	}

	r := fc.Rect
	tw := r.Dx()
	for y := 0; y < r.Dy(); y++ {
		src := tile[y*tw*4 : (y+1)*tw*4]
		dst := c.canvas[((r.Min.Y+y)*c.width+r.Min.X)*4:]
		if fc.Blend == BlendSource {
			copy(dst[:tw*4], src)
			continue
		}
		for x := 0; x < tw; x++ {
			blendOver(dst[x*4:x*4+4], src[x*4:x*4+4])
		}
	}

	snapshot := append([]byte(nil), c.canvas...)

	switch fc.Dispose {
	case DisposeBackground:
		for y := r.Min.Y; y < r.Max.Y; y++ {
			row := c.canvas[(y*c.width+r.Min.X)*4 : (y*c.width+r.Max.X)*4]
			for i := range row {
				row[i] = 0
			}
		}
	case DisposePrevious:
		c.canvas = saved
	}
	return snapshot
}

// blendOver composites the non-premultiplied pixel s over d in place.
func blendOver(d, s []byte) {
	switch s[3] {
	case 255:
		copy(d, s)
		return
	case 0:
		return
	}

	sa := float64(s[3]) / 255
	da := float64(d[3]) / 255
	oa := sa + da*(1-sa)
	for i := 0; i < 3; i++ {
		v := (float64(s[i])*sa + float64(d[i])*da*(1-sa)) / oa
		d[i] = uint8(math.Min(255, math.Floor(v+0.5)))
	}
	d[3] = uint8(math.Floor(oa*255 + 0.5))
}
