package imaging

import (
	"bytes"
	"encoding/base64"
	"image/color"
	"image/png"
	"testing"
)

func TestPlacementOverlay(t *testing.T) {
	s := newFilledSurface(t, 100, 100, color.NRGBA{0, 0, 0, 255})

	result, err := PlacementOverlay(s, 25, []CellHighlight{
		{Col: 0, Row: 0, Rank: 1},
		{Col: 1, Row: 0, Rank: 1},
		{Col: 3, Row: 3, Rank: 2},
	})
	if err != nil {
		t.Fatalf("PlacementOverlay failed: %v", err)
	}

	if result.Width != 100 || result.Height != 100 {
		t.Errorf("dimensions: got %dx%d, want 100x100", result.Width, result.Height)
	}
	if result.CellSize != 25 {
		t.Errorf("CellSize: got %d, want 25", result.CellSize)
	}
	if result.MimeType != "image/png" {
		t.Errorf("MimeType: got %s, want image/png", result.MimeType)
	}

	decoded, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(decoded))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}

	// Grid line at x=25 is red-ish over black
	r, g, b, _ := img.At(25, 60).RGBA()
	if r>>8 == 0 || g>>8 != 0 || b>>8 != 0 {
		t.Errorf("grid line color at (25,60): got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}

	// Best region cell is tinted blue
	_, _, b, _ = img.At(40, 15).RGBA()
	if b>>8 == 0 {
		t.Error("rank 1 cell should be tinted blue")
	}

	// Second region cell is tinted green
	_, g, _, _ = img.At(90, 90).RGBA()
	if g>>8 == 0 {
		t.Error("rank 2 cell should be tinted green")
	}

	// Untouched cell stays black
	r, g, b, _ = img.At(60, 40).RGBA()
	if r != 0 || g != 0 || b != 0 {
		t.Errorf("untouched cell should stay black, got (%d,%d,%d)", r>>8, g>>8, b>>8)
	}
}

func TestPlacementOverlay_OutOfRangeHighlight(t *testing.T) {
	s := newFilledSurface(t, 30, 30, color.NRGBA{255, 255, 255, 255})
	if _, err := PlacementOverlay(s, 10, []CellHighlight{{Col: 50, Row: 50, Rank: 1}}); err != nil {
		t.Fatalf("out-of-range highlight should be ignored, got %v", err)
	}
}

func TestPlacementOverlay_InvalidInput(t *testing.T) {
	if _, err := PlacementOverlay(nil, 10, nil); err == nil {
		t.Error("expected error for nil surface")
	}
	s := newFilledSurface(t, 10, 10, color.NRGBA{A: 255})
	if _, err := PlacementOverlay(s, 0, nil); err == nil {
		t.Error("expected error for zero cell size")
	}
}
