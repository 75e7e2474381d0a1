package encoder

import (
	"bytes"
	"encoding/base64"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/caption-art/internal/imaging"
)

func testSurface(t *testing.T, w, h int, c color.NRGBA) *imaging.Surface {
	t.Helper()
	s, err := imaging.NewSurface(w, h)
	require.NoError(t, err)
	s.Fill(c)
	return s
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"png", PNG, false},
		{"PNG", PNG, false},
		{"jpeg", JPEG, false},
		{"jpg", JPEG, false},
		{" JPG ", JPEG, false},
		{"gif", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatMetadata(t *testing.T) {
	assert.Equal(t, "png", PNG.Extension())
	assert.Equal(t, "jpg", JPEG.Extension())
	assert.Equal(t, "image/png", PNG.MimeType())
	assert.Equal(t, "image/jpeg", JPEG.MimeType())
}

func TestClampQuality(t *testing.T) {
	for _, q := range []float64{-1, 0, 0.1, 0.49, 0.5, 0.75, 0.92, 1, 1.5, 100} {
		want := math.Min(1, math.Max(0.5, q))
		assert.Equal(t, want, ClampQuality(JPEG, q), "jpeg q=%v", q)
		assert.Equal(t, 1.0, ClampQuality(PNG, q), "png q=%v", q)
	}
	assert.Equal(t, DefaultQuality, ClampQuality(JPEG, math.NaN()))
}

func TestEstimateSize(t *testing.T) {
	assert.Equal(t, int64(0), EstimateSize(0))
	assert.Equal(t, int64(3), EstimateSize(4))
	assert.Equal(t, int64(4), EstimateSize(5))
	assert.Equal(t, int64(75), EstimateSize(100))
}

func TestEncode_PNG(t *testing.T) {
	s := testSurface(t, 20, 10, color.NRGBA{200, 50, 50, 128})

	p, err := Encode(s, PNG, 0.3)
	require.NoError(t, err)

	assert.Equal(t, PNG, p.Format)
	assert.Equal(t, "image/png", p.MimeType)
	assert.Equal(t, 1.0, p.Quality)
	assert.True(t, strings.HasPrefix(p.DataURL, "data:image/png;base64,"))

	b64 := strings.TrimPrefix(p.DataURL, "data:image/png;base64,")
	assert.Equal(t, EstimateSize(len(b64)), p.EstimatedSize)
	assert.GreaterOrEqual(t, p.EstimatedSize, int64(len(p.Data)))

	decoded, err := base64.StdEncoding.DecodeString(b64)
	require.NoError(t, err)
	assert.Equal(t, p.Data, decoded)

	img, err := png.Decode(bytes.NewReader(p.Data))
	require.NoError(t, err)
	assert.Equal(t, 20, img.Bounds().Dx())

	got, err := imaging.FromImage(img)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{200, 50, 50, 128}, got.At(5, 5), "png must be lossless")
}

func TestEncode_JPEG(t *testing.T) {
	s := testSurface(t, 16, 16, color.NRGBA{0, 0, 0, 0})

	p, err := Encode(s, JPEG, 2)
	require.NoError(t, err)

	assert.Equal(t, 1.0, p.Quality)
	assert.Equal(t, "image/jpeg", p.MimeType)
	assert.True(t, strings.HasPrefix(p.DataURL, "data:image/jpeg;base64,"))

	img, err := jpeg.Decode(bytes.NewReader(p.Data))
	require.NoError(t, err)
	r, g, b, _ := img.At(8, 8).RGBA()
	assert.Greater(t, r>>8, uint32(240), "transparent pixels flatten to white")
	assert.Greater(t, g>>8, uint32(240))
	assert.Greater(t, b>>8, uint32(240))
}

func TestEncode_JPEGQualityClamped(t *testing.T) {
	s := testSurface(t, 8, 8, color.NRGBA{10, 20, 30, 255})

	p, err := Encode(s, JPEG, 0.1)
	require.NoError(t, err)
	assert.Equal(t, 0.5, p.Quality)
}

func TestEncode_Errors(t *testing.T) {
	_, err := Encode(nil, PNG, 1)
	assert.ErrorIs(t, err, ErrEncoding)
	assert.ErrorIs(t, err, imaging.ErrInvalidSurface)

	s := testSurface(t, 4, 4, color.NRGBA{A: 255})
	_, err = Encode(s, Format("bmp"), 1)
	assert.ErrorIs(t, err, ErrEncoding)
}
