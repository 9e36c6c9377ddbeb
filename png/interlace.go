package png

import (
	"github.com/cocosip/go-thumb-codec/png/common"
)

// adam7Pass is one pass of the seven-pass interlace pattern.
type adam7Pass struct {
	startRow, startCol int
	rowStep, colStep   int
}

var adam7 = [7]adam7Pass{
	{0, 0, 8, 8},
	{0, 4, 8, 8},
	{4, 0, 8, 4},
	{0, 2, 4, 4},
	{2, 0, 4, 2},
	{0, 1, 2, 2},
	{1, 0, 2, 1},
}

// size returns the pass's reduced image dimensions.
func (p adam7Pass) size(width, height int) (int, int) {
	w := (width - p.startCol + p.colStep - 1) / p.colStep
	h := (height - p.startRow + p.rowStep - 1) / p.rowStep
	if w < 0 {
		w = 0
	}
	if h < 0 {
		h = 0
	}
	return w, h
}

// rawSize returns the number of inflated bytes an image of the given size
// occupies, including the filter-type byte of every scanline.
// ImageDataSize returns the inflated size of the default image's filtered
// scanlines as implied by the header.
func (md *Metadata) ImageDataSize() int {
	return rawSize(md, md.Width, md.Height)
}

func rawSize(md *Metadata, width, height int) int {
	if !md.Interlaced {
		return height * (common.BytesPerRow(md.ColorType, md.BitDepth, width) + 1)
	}
	n := 0
	for _, p := range adam7 {
		pw, ph := p.size(width, height)
		if pw == 0 || ph == 0 {
			continue
		}
		n += ph * (common.BytesPerRow(md.ColorType, md.BitDepth, pw) + 1)
	}
	return n
}

// reconstruct turns the inflated image data of a width×height image into
// canonical RGBA.
func reconstruct(raw []byte, width, height int, md *Metadata, u *unpacker) ([]byte, error) {
	stride := common.FilterStride(md.ColorType, md.BitDepth)
	pix := make([]byte, width*height*4)

	if !md.Interlaced {
		rowBytes := common.BytesPerRow(md.ColorType, md.BitDepth, width)
		rows, err := unfilter(raw, height, rowBytes, stride)
		if err != nil {
			return nil, err
		}
		for y := 0; y < height; y++ {
			if err := u.row(pix[y*width*4:], rows[y*rowBytes:], width); err != nil {
				return nil, err
			}
		}
		return pix, nil
	}

	off := 0
	for _, p := range adam7 {
		pw, ph := p.size(width, height)
		if pw == 0 || ph == 0 {
			continue
		}
		rowBytes := common.BytesPerRow(md.ColorType, md.BitDepth, pw)
		rows, err := unfilter(raw[off:], ph, rowBytes, stride)
		if err != nil {
			return nil, err
		}
		off += ph * (rowBytes + 1)

		line := make([]byte, pw*4)
		for py := 0; py < ph; py++ {
			if err := u.row(line, rows[py*rowBytes:], pw); err != nil {
				return nil, err
			}
			y := p.startRow + py*p.rowStep
			for px := 0; px < pw; px++ {
				x := p.startCol + px*p.colStep
				copy(pix[(y*width+x)*4:(y*width+x)*4+4], line[px*4:px*4+4])
			}
		}
	}
	return pix, nil
}
