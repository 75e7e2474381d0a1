package compositor

import (
	"errors"
	"fmt"
	"image"
	"math"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/ironsheep/caption-art/internal/imaging"
)

// Alignment controls how each caption line sits relative to the anchor X.
type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

// DefaultFontSize is used when a TextStyle leaves FontSize unset.
const DefaultFontSize = 48

// ErrEmptyText is returned when a caption has no visible characters.
var ErrEmptyText = errors.New("caption text is empty")

// TextStyle describes a caption. X and Y are the anchor in pixels; the text
// block is centered vertically on Y.
type TextStyle struct {
	Text        string    `json:"text"`
	FontSize    float64   `json:"font_size,omitempty"`
	Color       string    `json:"color,omitempty"`
	X           int       `json:"x"`
	Y           int       `json:"y"`
	Align       Alignment `json:"align,omitempty"`
	LineSpacing float64   `json:"line_spacing,omitempty"`
}

var parseRegular = sync.OnceValues(func() (*opentype.Font, error) {
	return opentype.Parse(goregular.TTF)
})

func loadFace(size float64) (font.Face, error) {
	f, err := parseRegular()
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}

// RenderText draws the caption into a new transparent surface of the given
// size. Lines are split on "\n".
func RenderText(width, height int, style TextStyle) (*imaging.Surface, error) {
	if strings.TrimSpace(style.Text) == "" {
		return nil, ErrEmptyText
	}

	layer, err := imaging.NewSurface(width, height)
	if err != nil {
		return nil, err
	}

	size := style.FontSize
	if size <= 0 {
		size = DefaultFontSize
	}
	hex := style.Color
	if hex == "" {
		hex = "#ffffff"
	}
	textColor, err := imaging.ParseHexColor(hex)
	if err != nil {
		return nil, err
	}
	spacing := style.LineSpacing
	if spacing <= 0 {
		spacing = 1.2
	}

	face, err := loadFace(size)
	if err != nil {
		return nil, err
	}
	defer face.Close()

	metrics := face.Metrics()
	lineHeight := int(math.Ceil(float64(metrics.Height.Ceil()) * spacing))
	lines := strings.Split(style.Text, "\n")

	blockHeight := lineHeight*(len(lines)-1) + metrics.Height.Ceil()
	top := style.Y - blockHeight/2

	d := &font.Drawer{
		Dst:  layer.NRGBA(),
		Src:  image.NewUniform(textColor),
		Face: face,
	}

	for i, line := range lines {
		lineWidth := d.MeasureString(line).Ceil()
		x := style.X
		switch style.Align {
		case AlignCenter:
			x -= lineWidth / 2
		case AlignRight:
			x -= lineWidth
		}
		baseline := top + i*lineHeight + metrics.Ascent.Ceil()
		d.Dot = fixed.P(x, baseline)
		d.DrawString(line)
	}

	return layer, nil
}
