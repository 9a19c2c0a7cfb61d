package stash

import "math"

// Fixed-point precision of the recursive box blur.
const (
	blurAPrec = 16
	blurZPrec = 7
)

func (s *Stash) blurCols(x0, y0, w, h, alpha int) {
	tex := s.data
	stride := s.params.Width
	b, r := y0+h, x0+w
	for y := y0; y < b; y++ {
		row := y * stride
		z := 0 // zero border
		for x := x0 + 1; x < r; x++ {
			z += (alpha * ((int(tex[row+x]) << blurZPrec) - z)) >> blurAPrec
			tex[row+x] = byte(z >> blurZPrec)
		}
		tex[row+r-1] = 0
		z = 0
		for x := r - 2; x >= x0; x-- {
			z += (alpha * ((int(tex[row+x]) << blurZPrec) - z)) >> blurAPrec
			tex[row+x] = byte(z >> blurZPrec)
		}
		tex[row+x0] = 0
	}
}

func (s *Stash) blurRows(x0, y0, w, h, alpha int) {
	tex := s.data
	stride := s.params.Width
	b, r := y0+h, x0+w
	for x := x0; x < r; x++ {
		z := 0 // zero border
		for y := y0 + 1; y < b; y++ {
			off := x + y*stride
			z += (alpha * ((int(tex[off]) << blurZPrec) - z)) >> blurAPrec
			tex[off] = byte(z >> blurZPrec)
		}
		tex[x+(b-1)*stride] = 0
		z = 0
		for y := b - 2; y >= y0; y-- {
			off := x + y*stride
			z += (alpha * ((int(tex[off]) << blurZPrec) - z)) >> blurAPrec
			tex[off] = byte(z >> blurZPrec)
		}
		tex[x+y0*stride] = 0
	}
}

// blur applies two passes of a separable recursive blur to a glyph cell.
func (s *Stash) blur(x, y, w, h, radius int) {
	sigma := float64(radius) * 0.57735 // 1/sqrt(3)
	alpha := int(float64(1<<blurAPrec) * (1 - math.Exp(-2.3/(sigma+1))))
	s.blurRows(x, y, w, h, alpha)
	s.blurCols(x, y, w, h, alpha)
	s.blurRows(x, y, w, h, alpha)
	s.blurCols(x, y, w, h, alpha)
}
