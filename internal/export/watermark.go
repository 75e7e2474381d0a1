package export

import (
	"github.com/ironsheep/caption-art/internal/compositor"
	"github.com/ironsheep/caption-art/internal/imaging"
)

// DefaultWatermarkText is stamped when no text is configured.
const DefaultWatermarkText = "Caption Art"

const watermarkColor = "#ffffffb3"

// Watermark returns a copy of s with text stamped semi-transparently in the
// bottom-right corner. s is not modified.
func Watermark(s *imaging.Surface, text string) (*imaging.Surface, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if text == "" {
		text = DefaultWatermarkText
	}

	size := max(12, min(s.Width, s.Height)/25)
	margin := max(4, size/2)

	layer, err := compositor.RenderText(s.Width, s.Height, compositor.TextStyle{
		Text:     text,
		FontSize: float64(size),
		Color:    watermarkColor,
		X:        s.Width - margin,
		Y:        s.Height - margin - size/2,
		Align:    compositor.AlignRight,
	})
	if err != nil {
		return nil, err
	}

	out := s.Clone()
	compositor.DrawOver(out, layer)
	return out, nil
}
