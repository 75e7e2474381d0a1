package imaging

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ParseHexColor parses "#RGB", "#RRGGBB" or "#RRGGBBAA" (leading '#' optional)
// into a non-premultiplied color. Alpha defaults to 255.
func ParseHexColor(hex string) (color.NRGBA, error) {
	hex = strings.TrimSpace(hex)
	if hex == "" {
		return color.NRGBA{}, fmt.Errorf("empty color string")
	}
	hex = strings.TrimPrefix(hex, "#")

	alpha := uint8(255)
	if len(hex) == 8 {
		a, err := strconv.ParseUint(hex[6:], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid alpha in %q: %w", hex, err)
		}
		alpha = uint8(a)
		hex = hex[:6]
	}
	if len(hex) != 3 && len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color length")
	}

	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	r, g, b := c.RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: alpha}, nil
}

// HexString formats a color as "#RRGGBB" (alpha excluded).
func HexString(c color.NRGBA) string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

// MeanColor averages the opaque-weighted RGB of the pixels inside r.
// Fully transparent pixels are skipped; an empty or transparent region
// returns opaque black.
func MeanColor(s *Surface, r image.Rectangle) color.NRGBA {
	r = r.Intersect(image.Rect(0, 0, s.Width, s.Height))

	var sumR, sumG, sumB, weight float64
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			i := (y*s.Width + x) * 4
			a := float64(s.Pix[i+3]) / 255
			if a == 0 {
				continue
			}
			sumR += float64(s.Pix[i]) * a
			sumG += float64(s.Pix[i+1]) * a
			sumB += float64(s.Pix[i+2]) * a
			weight += a
		}
	}

	if weight == 0 {
		return color.NRGBA{A: 255}
	}
	return color.NRGBA{
		R: uint8(sumR/weight + 0.5),
		G: uint8(sumG/weight + 0.5),
		B: uint8(sumB/weight + 0.5),
		A: 255,
	}
}

// ContrastingColor picks black or white text for a background, whichever is
// further away in CIE L*a*b* lightness.
func ContrastingColor(bg color.NRGBA) color.NRGBA {
	l, _, _ := colorful.Color{
		R: float64(bg.R) / 255,
		G: float64(bg.G) / 255,
		B: float64(bg.B) / 255,
	}.Lab()

	if l > 0.5 {
		return color.NRGBA{R: 0, G: 0, B: 0, A: 255}
	}
	return color.NRGBA{R: 255, G: 255, B: 255, A: 255}
}
