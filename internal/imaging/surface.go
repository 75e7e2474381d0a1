package imaging

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	dimaging "github.com/disintegration/imaging"
)

var (
	// ErrInvalidSurface is returned for nil, zero-sized or malformed surfaces.
	ErrInvalidSurface = errors.New("invalid surface")

	// ErrEmptySurface is returned when a surface has no pixel with alpha > 0.
	ErrEmptySurface = errors.New("surface has no visible content")
)

// Surface is an in-memory raster: Width*Height pixels stored as 8-bit,
// non-premultiplied RGBA in row-major order.
//
// A Surface is not safe for concurrent mutation. Whoever holds a Surface owns
// it; pass a Clone across goroutines instead of sharing the buffer.
type Surface struct {
	Width  int
	Height int

	// Pix holds R, G, B, A for each pixel. len(Pix) == Width*Height*4.
	Pix []uint8
}

// NewSurface allocates a fully transparent surface.
func NewSurface(width, height int) (*Surface, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidSurface, width, height)
	}
	return &Surface{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}, nil
}

// FromImage copies any image.Image into a new Surface, converting to
// non-premultiplied RGBA. The image's origin is moved to (0,0).
func FromImage(img image.Image) (*Surface, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", ErrInvalidSurface)
	}
	b := img.Bounds()
	s, err := NewSurface(b.Dx(), b.Dy())
	if err != nil {
		return nil, err
	}

	// Fast path avoids the generic draw conversion.
	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < s.Height; y++ {
			i := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(s.Pix[y*s.Width*4:(y+1)*s.Width*4], src.Pix[i:i+s.Width*4])
		}
		return s, nil
	}

	s.Pix = dimaging.Clone(img).Pix
	return s, nil
}

// NRGBA returns an *image.NRGBA view that shares the surface's pixel buffer.
func (s *Surface) NRGBA() *image.NRGBA {
	return &image.NRGBA{
		Pix:    s.Pix,
		Stride: s.Width * 4,
		Rect:   image.Rect(0, 0, s.Width, s.Height),
	}
}

// Validate reports whether the surface can be drawn to and read from.
func (s *Surface) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil surface", ErrInvalidSurface)
	}
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidSurface, s.Width, s.Height)
	}
	if len(s.Pix) != s.Width*s.Height*4 {
		return fmt.Errorf("%w: buffer length %d, want %d", ErrInvalidSurface, len(s.Pix), s.Width*s.Height*4)
	}
	return nil
}

// HasContent reports whether at least one pixel has alpha > 0.
func (s *Surface) HasContent() bool {
	for i := 3; i < len(s.Pix); i += 4 {
		if s.Pix[i] > 0 {
			return true
		}
	}
	return false
}

// PixelCount returns Width*Height.
func (s *Surface) PixelCount() int {
	return s.Width * s.Height
}

// Clone returns a deep copy.
func (s *Surface) Clone() *Surface {
	pix := make([]uint8, len(s.Pix))
	copy(pix, s.Pix)
	return &Surface{Width: s.Width, Height: s.Height, Pix: pix}
}

// Clear makes every pixel fully transparent black.
func (s *Surface) Clear() {
	clear(s.Pix)
}

// Fill sets every pixel to c.
func (s *Surface) Fill(c color.NRGBA) {
	for i := 0; i < len(s.Pix); i += 4 {
		s.Pix[i] = c.R
		s.Pix[i+1] = c.G
		s.Pix[i+2] = c.B
		s.Pix[i+3] = c.A
	}
}

// At returns the pixel at (x, y). Out-of-range coordinates return transparent.
func (s *Surface) At(x, y int) color.NRGBA {
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return color.NRGBA{}
	}
	i := (y*s.Width + x) * 4
	return color.NRGBA{R: s.Pix[i], G: s.Pix[i+1], B: s.Pix[i+2], A: s.Pix[i+3]}
}

// Set writes the pixel at (x, y). Out-of-range coordinates are ignored.
func (s *Surface) Set(x, y int, c color.NRGBA) {
	if x < 0 || y < 0 || x >= s.Width || y >= s.Height {
		return
	}
	i := (y*s.Width + x) * 4
	s.Pix[i] = c.R
	s.Pix[i+1] = c.G
	s.Pix[i+2] = c.B
	s.Pix[i+3] = c.A
}

// CopyFrom replaces the surface's pixels with src's. Both must have the same
// dimensions.
func (s *Surface) CopyFrom(src *Surface) error {
	if src.Width != s.Width || src.Height != s.Height {
		return fmt.Errorf("%w: size mismatch %dx%d vs %dx%d", ErrInvalidSurface, src.Width, src.Height, s.Width, s.Height)
	}
	copy(s.Pix, src.Pix)
	return nil
}
