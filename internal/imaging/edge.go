package imaging

import (
	"fmt"
	"math"
)

// GrayscaleMap holds one luminance value (0-255) per pixel in row-major order.
type GrayscaleMap struct {
	Width  int
	Height int
	Values []uint8
}

// At returns the luminance at (x, y).
func (g *GrayscaleMap) At(x, y int) uint8 {
	return g.Values[y*g.Width+x]
}

// GradientMap holds the Sobel gradient magnitude per pixel in row-major order.
// The 1-pixel border is always zero.
type GradientMap struct {
	Width  int
	Height int
	Values []float64
}

// At returns the gradient magnitude at (x, y).
func (g *GradientMap) At(x, y int) float64 {
	return g.Values[y*g.Width+x]
}

// Sobel operators, row-major 3x3.
var (
	sobelX = [9]float64{
		-1, 0, 1,
		-2, 0, 2,
		-1, 0, 1,
	}
	sobelY = [9]float64{
		-1, -2, -1,
		0, 0, 0,
		1, 2, 1,
	}
)

// ToGrayscale converts a surface to luminance using ITU-R BT.601 weights:
//
//	L = 0.299*R + 0.587*G + 0.114*B
//
// Each value is rounded to the nearest integer and clamped to [0, 255].
// Alpha is ignored; a transparent pixel contributes its stored RGB.
func ToGrayscale(s *Surface) (*GrayscaleMap, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	values := make([]uint8, s.Width*s.Height)
	for i := range values {
		p := i * 4
		l := 0.299*float64(s.Pix[p]) + 0.587*float64(s.Pix[p+1]) + 0.114*float64(s.Pix[p+2])
		values[i] = uint8(clamp(int(math.Round(l)), 0, 255))
	}

	return &GrayscaleMap{Width: s.Width, Height: s.Height, Values: values}, nil
}

// GradientMagnitude applies the horizontal and vertical Sobel kernels to
// every interior pixel and stores sqrt(gx² + gy²).
//
// Border pixels (row 0, last row, column 0, last column) are left at 0
// rather than extended by edge replication. Placement scoring depends on
// this, so cells on the image edge score slightly calmer than their content.
func GradientMagnitude(gray *GrayscaleMap) (*GradientMap, error) {
	if gray == nil || gray.Width <= 0 || gray.Height <= 0 || len(gray.Values) != gray.Width*gray.Height {
		return nil, fmt.Errorf("%w: malformed grayscale map", ErrInvalidSurface)
	}

	width, height := gray.Width, gray.Height
	out := make([]float64, width*height)

	for y := 1; y < height-1; y++ {
		for x := 1; x < width-1; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				row := (y + ky) * width
				for kx := -1; kx <= 1; kx++ {
					v := float64(gray.Values[row+x+kx])
					k := (ky+1)*3 + (kx + 1)
					gx += v * sobelX[k]
					gy += v * sobelY[k]
				}
			}
			out[y*width+x] = math.Sqrt(gx*gx + gy*gy)
		}
	}

	return &GradientMap{Width: width, Height: height, Values: out}, nil
}

// clamp constrains an integer value to the range [min, max].
func clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
