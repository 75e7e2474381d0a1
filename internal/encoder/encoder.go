package encoder

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"image/png"
	"math"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/ironsheep/caption-art/internal/imaging"
)

// Format is an export file format.
type Format string

const (
	PNG  Format = "png"
	JPEG Format = "jpeg"
)

const (
	// MinQuality and MaxQuality bound JPEG quality.
	MinQuality = 0.5
	MaxQuality = 1.0

	// DefaultQuality is used when a requested quality is not a number.
	DefaultQuality = 0.92
)

// ErrEncoding is returned when a payload could not be produced.
var ErrEncoding = errors.New("encoding failed")

// ParseFormat accepts "png", "jpeg" and "jpg" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "png":
		return PNG, nil
	case "jpeg", "jpg":
		return JPEG, nil
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

// Extension returns the file extension without the dot.
func (f Format) Extension() string {
	if f == JPEG {
		return "jpg"
	}
	return "png"
}

// MimeType returns the media type of the format.
func (f Format) MimeType() string {
	if f == JPEG {
		return "image/jpeg"
	}
	return "image/png"
}

// Payload is an encoded image ready for download.
type Payload struct {
	Format   Format
	MimeType string
	Data     []byte

	// DataURL is the base64 data URL form of Data.
	DataURL string

	// Quality is the quality actually used: 1.0 for PNG, clamped for JPEG.
	Quality float64

	// EstimatedSize is ceil(len(base64)*0.75). It approximates the decoded
	// byte count and is not exact.
	EstimatedSize int64
}

// ClampQuality returns the quality the encoder will use for format.
func ClampQuality(format Format, q float64) float64 {
	if format != JPEG {
		return MaxQuality
	}
	if math.IsNaN(q) {
		return DefaultQuality
	}
	return math.Min(MaxQuality, math.Max(MinQuality, q))
}

// EstimateSize reverses base64 expansion for a payload of the given length.
func EstimateSize(base64Len int) int64 {
	return int64(math.Ceil(float64(base64Len) * 0.75))
}

// Encode converts the surface to the requested format.
//
// Parameters:
//   - s: The surface to encode. Must be valid (see imaging.Surface.Validate).
//   - format: PNG or JPEG.
//   - quality: JPEG quality in [MinQuality, MaxQuality]. Values outside the
//     range are clamped; NaN means DefaultQuality. Ignored for PNG, which
//     always reports MaxQuality.
//
// Returns:
//   - *Payload: The encoded bytes, a base64 data URL, the quality actually
//     used and the estimated decoded size.
//   - error: Non-nil if the surface is invalid or encoding fails.
//
// # Transparency
//
// PNG keeps the alpha channel. JPEG has none, so transparent pixels are
// composited onto white before encoding.
//
// # Errors
//
// All errors wrap ErrEncoding:
//   - Returns error for an invalid surface or unsupported format
//   - Returns error if the encoded bytes do not detect as the requested type
func Encode(s *imaging.Surface, format Format, quality float64) (*Payload, error) {
	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoding, err)
	}

	q := ClampQuality(format, quality)

	var buf bytes.Buffer
	switch format {
	case PNG:
		if err := png.Encode(&buf, s.NRGBA()); err != nil {
			return nil, fmt.Errorf("%w: png: %w", ErrEncoding, err)
		}
	case JPEG:
		opts := &jpeg.Options{Quality: int(math.Round(q * 100))}
		if err := jpeg.Encode(&buf, flatten(s), opts); err != nil {
			return nil, fmt.Errorf("%w: jpeg: %w", ErrEncoding, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", ErrEncoding, format)
	}

	data := buf.Bytes()
	if mt := mimetype.Detect(data); !mt.Is(format.MimeType()) {
		return nil, fmt.Errorf("%w: payload detected as %s, want %s", ErrEncoding, mt.String(), format.MimeType())
	}

	b64 := base64.StdEncoding.EncodeToString(data)

	return &Payload{
		Format:        format,
		MimeType:      format.MimeType(),
		Data:          data,
		DataURL:       "data:" + format.MimeType() + ";base64," + b64,
		Quality:       q,
		EstimatedSize: EstimateSize(len(b64)),
	}, nil
}

// flatten composites the surface onto an opaque white canvas.
func flatten(s *imaging.Surface) *image.RGBA {
	bounds := image.Rect(0, 0, s.Width, s.Height)
	out := image.NewRGBA(bounds)
	draw.Draw(out, bounds, image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(out, bounds, s.NRGBA(), image.Point{}, draw.Over)
	return out
}
