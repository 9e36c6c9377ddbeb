package thumbhash

import "math"

// round rounds half up, matching the reference encoder bit for bit.
func round(x float64) float64 {
	return math.Floor(x + 0.5)
}

// acCount returns the number of AC coefficients kept for an nx×ny grid: the
// (cx, cy) pairs with cx*ny < nx*(ny-cy), minus the DC term.
func acCount(nx, ny int) int {
	n := 0
	for cy := 0; cy < ny; cy++ {
		for cx := 0; cx*ny < nx*(ny-cy); cx++ {
			n++
		}
	}
	return n - 1
}

// channel is one DCT-encoded plane.
type channel struct {
	dc    float64
	ac    []float64 // normalised to [0,1]
	scale float64
}

// encodeChannel runs a DCT over a w×h plane, keeping the triangle of
// frequencies below the nx×ny cutoff. Coefficients are enumerated cy outer,
// cx inner.
func encodeChannel(plane []float64, w, h, nx, ny int) channel {
	var c channel
	fx := make([]float64, w)
	for cy := 0; cy < ny; cy++ {
		for cx := 0; cx*ny < nx*(ny-cy); cx++ {
			for x := 0; x < w; x++ {
				fx[x] = math.Cos(math.Pi / float64(w) * float64(cx) * (float64(x) + 0.5))
			}
			f := 0.0
			for y := 0; y < h; y++ {
				fy := math.Cos(math.Pi / float64(h) * float64(cy) * (float64(y) + 0.5))
				for x := 0; x < w; x++ {
					f += plane[x+y*w] * fx[x] * fy
				}
			}
			f /= float64(w * h)

			if cx > 0 || cy > 0 {
				c.ac = append(c.ac, f)
				c.scale = math.Max(c.scale, math.Abs(f))
			} else {
				c.dc = f
			}
		}
	}
	if c.scale > 0 {
		for i := range c.ac {
			c.ac[i] = 0.5 + 0.5/c.scale*c.ac[i]
		}
	}
	return c
}
