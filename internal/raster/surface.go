package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
)

// Inset is the horizontal offset at which buffers are placed on a
// Surface.
const Inset = 1

// Surface is the raster target a session presents its buffers on.
type Surface struct {
	img *image.NRGBA
}

// NewSurface returns a transparent width×height surface.
func NewSurface(width, height int) *Surface {
	return &Surface{img: image.NewNRGBA(image.Rect(0, 0, width, height))}
}

// Image returns the surface contents. The image is owned by the surface.
func (s *Surface) Image() *image.NRGBA { return s.img }

// Bounds returns the surface size.
func (s *Surface) Bounds() image.Rectangle { return s.img.Rect }

// Clear makes every pixel transparent.
func (s *Surface) Clear() {
	clear(s.img.Pix)
}

// Present replaces the surface contents with buf shifted right by
// Inset pixels. Columns pushed past the right edge are dropped and
// the first Inset columns are left transparent. Pixels are copied
// verbatim so transparent colours keep their RGB channels.
func (s *Surface) Present(buf *image.NRGBA) {
	s.Clear()
	w := min(s.img.Rect.Dx()-Inset, buf.Rect.Dx())
	h := min(s.img.Rect.Dy(), buf.Rect.Dy())
	if w <= 0 {
		return
	}
	for y := 0; y < h; y++ {
		src := buf.Pix[buf.PixOffset(buf.Rect.Min.X, buf.Rect.Min.Y+y):]
		dst := s.img.Pix[s.img.PixOffset(Inset, y):]
		copy(dst[:w*4], src[:w*4])
	}
}

// At returns the colour at surface pixel (x, y).
func (s *Surface) At(x, y int) color.NRGBA {
	return s.img.NRGBAAt(x, y)
}

// WritePNG encodes the surface as PNG.
func (s *Surface) WritePNG(w io.Writer) error {
	if err := png.Encode(w, s.img); err != nil {
		return fmt.Errorf("raster: encode png: %w", err)
	}
	return nil
}
