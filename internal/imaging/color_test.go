package imaging

import (
	"image"
	"image/color"
	"testing"
)

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#FF0000", color.NRGBA{255, 0, 0, 255}, false},
		{"00ff00", color.NRGBA{0, 255, 0, 255}, false},
		{"#0000FF80", color.NRGBA{0, 0, 255, 128}, false},
		{"#fff", color.NRGBA{255, 255, 255, 255}, false},
		{" #0a0a0a ", color.NRGBA{10, 10, 10, 255}, false},
		{"", color.NRGBA{}, true},
		{"#GG0000", color.NRGBA{}, true},
		{"#12345", color.NRGBA{}, true},
		{"#000000ZZ", color.NRGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHexColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHexColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ParseHexColor(%q): got %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestHexString(t *testing.T) {
	if got := HexString(color.NRGBA{200, 50, 50, 10}); got != "#c83232" {
		t.Errorf("HexString: got %s, want #c83232", got)
	}
}

func TestMeanColor(t *testing.T) {
	s := newSplitSurface(t, 10, 10, 5, color.NRGBA{0, 0, 0, 255}, color.NRGBA{200, 100, 50, 255})

	if got := MeanColor(s, image.Rect(5, 0, 10, 10)); got != (color.NRGBA{200, 100, 50, 255}) {
		t.Errorf("right half mean: got %v", got)
	}
	if got := MeanColor(s, image.Rect(0, 0, 10, 10)); got != (color.NRGBA{100, 50, 25, 255}) {
		t.Errorf("whole image mean: got %v", got)
	}
}

func TestMeanColor_SkipsTransparentAndClipsBounds(t *testing.T) {
	s, _ := NewSurface(4, 4)
	s.Set(1, 1, color.NRGBA{40, 80, 120, 255})

	if got := MeanColor(s, image.Rect(-10, -10, 100, 100)); got != (color.NRGBA{40, 80, 120, 255}) {
		t.Errorf("mean with transparent pixels: got %v", got)
	}

	empty, _ := NewSurface(2, 2)
	if got := MeanColor(empty, empty.NRGBA().Bounds()); got != (color.NRGBA{A: 255}) {
		t.Errorf("transparent region should give opaque black, got %v", got)
	}
}

func TestContrastingColor(t *testing.T) {
	white := color.NRGBA{255, 255, 255, 255}
	black := color.NRGBA{0, 0, 0, 255}

	tests := []struct {
		name string
		bg   color.NRGBA
		want color.NRGBA
	}{
		{"white background", white, black},
		{"black background", black, white},
		{"sky blue", color.NRGBA{135, 206, 235, 255}, black},
		{"navy", color.NRGBA{0, 0, 128, 255}, white},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ContrastingColor(tt.bg); got != tt.want {
				t.Errorf("ContrastingColor(%v): got %v, want %v", tt.bg, got, tt.want)
			}
		})
	}
}
