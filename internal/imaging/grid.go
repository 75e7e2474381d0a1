package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
)

// OverlayResult contains the placement debug image
type OverlayResult struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
	CellSize    int    `json:"cell_size"`
}

// CellHighlight marks one grid cell to tint on the overlay. Rank is the
// 1-based rank of the region the cell belongs to; 0 leaves the cell unlabeled.
type CellHighlight struct {
	Col  int
	Row  int
	Rank int
}

var (
	gridLineColor = color.NRGBA{255, 0, 0, 128}
	calmTint      = color.NRGBA{0, 200, 80, 90}
	bestTint      = color.NRGBA{0, 120, 255, 110}
)

// PlacementOverlay draws the placement grid over a copy of s, tints the
// highlighted cells (rank 1 in blue, others in green) and labels each region's
// first cell with its rank.
func PlacementOverlay(s *Surface, cellSize int, highlights []CellHighlight) (*OverlayResult, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if cellSize <= 0 {
		return nil, fmt.Errorf("cell size must be positive, got %d", cellSize)
	}

	bounds := image.Rect(0, 0, s.Width, s.Height)
	result := image.NewRGBA(bounds)
	draw.Draw(result, bounds, s.NRGBA(), image.Point{}, draw.Src)

	labeled := make(map[int]bool)
	for _, h := range highlights {
		cell := image.Rect(h.Col*cellSize, h.Row*cellSize, (h.Col+1)*cellSize, (h.Row+1)*cellSize).Intersect(bounds)
		if cell.Empty() {
			continue
		}
		tint := calmTint
		if h.Rank == 1 {
			tint = bestTint
		}
		draw.Draw(result, cell, image.NewUniform(tint), image.Point{}, draw.Over)

		if h.Rank > 0 && !labeled[h.Rank] {
			labeled[h.Rank] = true
			drawLabel(result, cell.Min.X+2, cell.Min.Y+2, strconv.Itoa(h.Rank),
				color.RGBA{255, 255, 255, 255}, color.RGBA{0, 0, 0, 180})
		}
	}

	for x := cellSize; x < s.Width; x += cellSize {
		for y := 0; y < s.Height; y++ {
			result.Set(x, y, gridLineColor)
		}
	}
	for y := cellSize; y < s.Height; y += cellSize {
		for x := 0; x < s.Width; x++ {
			result.Set(x, y, gridLineColor)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, result); err != nil {
		return nil, fmt.Errorf("failed to encode overlay: %w", err)
	}

	return &OverlayResult{
		Width:       s.Width,
		Height:      s.Height,
		ImageBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
		MimeType:    "image/png",
		CellSize:    cellSize,
	}, nil
}

// drawLabel draws a small digit label using a 3x5 pixel font.
func drawLabel(img *image.RGBA, x, y int, text string, fg, bg color.RGBA) {
	glyphs := map[rune][]string{
		'0': {"111", "101", "101", "101", "111"},
		'1': {"010", "110", "010", "010", "111"},
		'2': {"111", "001", "111", "100", "111"},
		'3': {"111", "001", "111", "001", "111"},
		'4': {"101", "101", "111", "001", "001"},
		'5': {"111", "100", "111", "001", "111"},
		'6': {"111", "100", "111", "101", "111"},
		'7': {"111", "001", "001", "001", "001"},
		'8': {"111", "101", "111", "101", "111"},
		'9': {"111", "101", "111", "001", "111"},
	}

	bounds := img.Bounds()
	const charWidth, labelHeight = 4, 7
	labelWidth := len(text) * charWidth

	for dy := -1; dy < labelHeight; dy++ {
		for dx := -1; dx < labelWidth; dx++ {
			if p := (image.Point{X: x + dx, Y: y + dy}); p.In(bounds) {
				img.Set(p.X, p.Y, bg)
			}
		}
	}

	cx := x
	for _, ch := range text {
		for row, line := range glyphs[ch] {
			for col, pixel := range line {
				if pixel != '1' {
					continue
				}
				if p := (image.Point{X: cx + col, Y: y + row}); p.In(bounds) {
					img.Set(p.X, p.Y, fg)
				}
			}
		}
		cx += charWidth
	}
}
