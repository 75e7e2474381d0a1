package imaging

import (
	"image/color"
	"testing"
)

func TestToGrayscale(t *testing.T) {
	tests := []struct {
		name string
		c    color.NRGBA
		want uint8
	}{
		{"black", color.NRGBA{0, 0, 0, 255}, 0},
		{"white", color.NRGBA{255, 255, 255, 255}, 255},
		{"red", color.NRGBA{255, 0, 0, 255}, 76},
		{"green", color.NRGBA{0, 255, 0, 255}, 150},
		{"blue", color.NRGBA{0, 0, 255, 255}, 29},
		{"mid gray", color.NRGBA{128, 128, 128, 255}, 128},
		{"transparent keeps rgb", color.NRGBA{255, 0, 0, 0}, 76},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newFilledSurface(t, 3, 2, tt.c)
			gray, err := ToGrayscale(s)
			if err != nil {
				t.Fatalf("ToGrayscale failed: %v", err)
			}
			if gray.Width != 3 || gray.Height != 2 || len(gray.Values) != 6 {
				t.Fatalf("unexpected map shape %dx%d len=%d", gray.Width, gray.Height, len(gray.Values))
			}
			for i, v := range gray.Values {
				if v != tt.want {
					t.Errorf("value[%d]: got %d, want %d", i, v, tt.want)
				}
			}
		})
	}
}

func TestToGrayscale_InvalidSurface(t *testing.T) {
	if _, err := ToGrayscale(nil); err == nil {
		t.Error("expected error for nil surface")
	}
	if _, err := ToGrayscale(&Surface{Width: 2, Height: 2, Pix: make([]uint8, 3)}); err == nil {
		t.Error("expected error for short buffer")
	}
}

func TestGradientMagnitude_UniformImage(t *testing.T) {
	s := newFilledSurface(t, 20, 20, color.NRGBA{90, 120, 200, 255})
	grad := mustGradient(t, s)

	for i, v := range grad.Values {
		if v != 0 {
			t.Fatalf("uniform image should have zero gradient, got %.2f at index %d", v, i)
		}
	}
}

func TestGradientMagnitude_VerticalEdge(t *testing.T) {
	// Black left half, white right half; the edge sits between x=49 and x=50.
	s := newSplitSurface(t, 100, 20, 50, color.NRGBA{0, 0, 0, 255}, color.NRGBA{255, 255, 255, 255})
	grad := mustGradient(t, s)

	tests := []struct {
		x    int
		want float64
	}{
		{48, 0},
		{49, 1020},
		{50, 1020},
		{51, 0},
	}
	for _, tt := range tests {
		if got := grad.At(tt.x, 10); got != tt.want {
			t.Errorf("gradient at x=%d: got %.2f, want %.2f", tt.x, got, tt.want)
		}
	}
}

func TestGradientMagnitude_BorderIsZero(t *testing.T) {
	// A checkerboard has strong gradients everywhere except where the kernel
	// is not applied.
	s, _ := NewSurface(10, 8)
	for y := 0; y < 8; y++ {
		for x := 0; x < 10; x++ {
			if (x+y)%2 == 0 {
				s.Set(x, y, color.NRGBA{255, 255, 255, 255})
			} else {
				s.Set(x, y, color.NRGBA{0, 0, 0, 255})
			}
		}
	}
	grad := mustGradient(t, s)

	for x := 0; x < 10; x++ {
		if grad.At(x, 0) != 0 || grad.At(x, 7) != 0 {
			t.Errorf("border row value at x=%d should be 0", x)
		}
	}
	for y := 0; y < 8; y++ {
		if grad.At(0, y) != 0 || grad.At(9, y) != 0 {
			t.Errorf("border column value at y=%d should be 0", y)
		}
	}
}

func TestGradientMagnitude_TinyImages(t *testing.T) {
	for _, size := range [][2]int{{1, 1}, {2, 2}, {1, 5}, {3, 1}} {
		s := newFilledSurface(t, size[0], size[1], color.NRGBA{255, 255, 255, 255})
		grad := mustGradient(t, s)
		if len(grad.Values) != size[0]*size[1] {
			t.Errorf("%dx%d: got %d values", size[0], size[1], len(grad.Values))
		}
	}
}

func TestGradientMagnitude_Malformed(t *testing.T) {
	if _, err := GradientMagnitude(nil); err == nil {
		t.Error("expected error for nil map")
	}
	if _, err := GradientMagnitude(&GrayscaleMap{Width: 4, Height: 4, Values: make([]uint8, 3)}); err == nil {
		t.Error("expected error for short map")
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		val, min, max, want int
	}{
		{5, 0, 10, 5},   // within range
		{-1, 0, 10, 0},  // below min
		{15, 0, 10, 10}, // above max
		{0, 0, 10, 0},   // at min
		{10, 0, 10, 10}, // at max
	}

	for _, tt := range tests {
		got := clamp(tt.val, tt.min, tt.max)
		if got != tt.want {
			t.Errorf("clamp(%d, %d, %d): got %d, want %d",
				tt.val, tt.min, tt.max, got, tt.want)
		}
	}
}

func mustGradient(t *testing.T, s *Surface) *GradientMap {
	t.Helper()
	gray, err := ToGrayscale(s)
	if err != nil {
		t.Fatalf("ToGrayscale failed: %v", err)
	}
	grad, err := GradientMagnitude(gray)
	if err != nil {
		t.Fatalf("GradientMagnitude failed: %v", err)
	}
	return grad
}
