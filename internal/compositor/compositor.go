package compositor

import (
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/anthonynsimon/bild/blur"
	dimaging "github.com/disintegration/imaging"

	"github.com/ironsheep/caption-art/internal/imaging"
)

// Compositor stacks a background, a text layer and an optional subject mask
// into a target surface.
//
// The mask is retained across SetTextBehindEnabled toggles: disabling the
// cutout only stops applying it, and re-enabling uses the last mask supplied.
type Compositor struct {
	mu sync.Mutex

	background *imaging.Surface
	text       *imaging.Surface
	mask       *imaging.Surface
	textBehind bool

	// feather is the Gaussian radius applied to the mask before the cutout.
	feather float64
}

// New creates an empty compositor with the cutout disabled.
func New() *Compositor {
	return &Compositor{}
}

// SetBackground sets the surface drawn first at full opacity. Nil removes it.
func (c *Compositor) SetBackground(s *imaging.Surface) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.background = s
}

// SetTextLayer sets the rendered caption layer drawn over the background.
func (c *Compositor) SetTextLayer(s *imaging.Surface) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = s
}

// SetMaskImage replaces the stored subject mask. It may be called while the
// cutout is disabled; the mask is kept for later.
func (c *Compositor) SetMaskImage(s *imaging.Surface) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mask = s
}

// SetTextBehindEnabled toggles the destination-out cutout.
func (c *Compositor) SetTextBehindEnabled(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.textBehind = enabled
}

// TextBehindEnabled reports whether the cutout is applied.
func (c *Compositor) TextBehindEnabled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.textBehind
}

// HasMask reports whether a mask is stored.
func (c *Compositor) HasMask() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mask != nil
}

// SetMaskFeather sets the blur radius used to soften mask edges. Zero or
// negative disables feathering.
func (c *Compositor) SetMaskFeather(radius float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if radius < 0 {
		radius = 0
	}
	c.feather = radius
}

// Composite renders into target in order: background, text layer, then the
// mask cutout when enabled. Without a background the target is cleared and
// nil is returned.
func (c *Compositor) Composite(target *imaging.Surface) error {
	if err := target.Validate(); err != nil {
		return fmt.Errorf("composite target: %w", err)
	}

	c.mu.Lock()
	background, text, mask := c.background, c.text, c.mask
	textBehind, feather := c.textBehind, c.feather
	c.mu.Unlock()

	target.Clear()
	if background == nil {
		return nil
	}
	if err := background.Validate(); err != nil {
		return fmt.Errorf("composite background: %w", err)
	}

	DrawOver(target, background)

	if text != nil {
		if err := text.Validate(); err != nil {
			return fmt.Errorf("composite text layer: %w", err)
		}
		DrawOver(target, text)
	}

	if textBehind && mask != nil {
		if err := mask.Validate(); err != nil {
			return fmt.Errorf("composite mask: %w", err)
		}
		ApplyCutout(target, prepareMask(mask, target.Width, target.Height, feather))
	}

	return nil
}

// prepareMask resizes the mask to the target size and feathers it.
func prepareMask(mask *imaging.Surface, width, height int, feather float64) *imaging.Surface {
	if mask.Width == width && mask.Height == height && feather == 0 {
		return mask
	}

	var img image.Image = mask.NRGBA()
	if mask.Width != width || mask.Height != height {
		img = dimaging.Resize(img, width, height, dimaging.Linear)
	}
	sized, err := imaging.FromImage(img)
	if err != nil {
		return mask
	}
	if feather <= 0 {
		return sized
	}

	out, err := imaging.FromImage(blur.Gaussian(img, feather))
	if err != nil {
		return sized
	}
	keepFlatAlpha(out, sized, int(math.Ceil(feather))+1)
	return out
}

// keepFlatAlpha restores exact alpha on pixels whose whole neighborhood of
// the given reach is fully opaque or fully transparent in src. The blur
// rounds such pixels a level or two off, which would leave text showing
// through the middle of the subject.
func keepFlatAlpha(out, src *imaging.Surface, reach int) {
	w, h := src.Width, src.Height
	stride := w + 1

	// sums[(y)*stride+x] is the alpha total of src over [0,x)×[0,y).
	sums := make([]int64, stride*(h+1))
	for y := 0; y < h; y++ {
		var row int64
		for x := 0; x < w; x++ {
			row += int64(src.Pix[(y*w+x)*4+3])
			sums[(y+1)*stride+x+1] = sums[y*stride+x+1] + row
		}
	}

	for y := 0; y < h; y++ {
		y0, y1 := max(0, y-reach), min(h, y+reach+1)
		for x := 0; x < w; x++ {
			x0, x1 := max(0, x-reach), min(w, x+reach+1)
			total := sums[y1*stride+x1] - sums[y0*stride+x1] - sums[y1*stride+x0] + sums[y0*stride+x0]

			i := (y*w+x)*4 + 3
			switch total {
			case 0:
				out.Pix[i] = 0
			case int64(255 * (x1 - x0) * (y1 - y0)):
				out.Pix[i] = 255
			}
		}
	}
}

// DrawOver blends src onto dst with the source-over rule, aligned at the
// origin. Pixels outside the overlap are left alone.
func DrawOver(dst, src *imaging.Surface) {
	w := min(dst.Width, src.Width)
	h := min(dst.Height, src.Height)

	for y := 0; y < h; y++ {
		srow := y * src.Width * 4
		drow := y * dst.Width * 4
		for x := 0; x < w; x++ {
			si := srow + x*4
			di := drow + x*4
			blendPixel(dst.Pix[di:di+4:di+4], src.Pix[si:si+4:si+4])
		}
	}
}

// blendPixel composites one non-premultiplied source pixel over a destination
// pixel.
func blendPixel(d, s []uint8) {
	sa := uint32(s[3])
	switch sa {
	case 0:
		return
	case 255:
		copy(d, s)
		return
	}

	da := uint32(d[3])
	// Destination contribution, scaled to 0..255*255.
	dw := da * (255 - sa)
	outA := sa*255 + dw
	if outA == 0 {
		d[0], d[1], d[2], d[3] = 0, 0, 0, 0
		return
	}

	for i := 0; i < 3; i++ {
		num := uint32(s[i])*sa*255 + uint32(d[i])*dw
		d[i] = uint8((num + outA/2) / outA)
	}
	d[3] = uint8((outA + 127) / 255)
}

// ApplyCutout erases dst wherever mask is opaque: the resulting alpha is
// dstAlpha * (1 - maskAlpha), rounded to the nearest integer. Color channels
// are kept.
func ApplyCutout(dst, mask *imaging.Surface) {
	w := min(dst.Width, mask.Width)
	h := min(dst.Height, mask.Height)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ma := uint32(mask.Pix[(y*mask.Width+x)*4+3])
			if ma == 0 {
				continue
			}
			i := (y*dst.Width+x)*4 + 3
			dst.Pix[i] = uint8((uint32(dst.Pix[i])*(255-ma) + 127) / 255)
		}
	}
}

// Subject returns the part of photo covered by mask: each pixel keeps its
// color and its alpha is scaled by the mask alpha. Drawing it over a
// composite puts the subject back in front of cut-out text.
func Subject(photo, mask *imaging.Surface) (*imaging.Surface, error) {
	if err := photo.Validate(); err != nil {
		return nil, fmt.Errorf("subject photo: %w", err)
	}
	if err := mask.Validate(); err != nil {
		return nil, fmt.Errorf("subject mask: %w", err)
	}

	m := prepareMask(mask, photo.Width, photo.Height, 0)
	out := photo.Clone()
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = uint8((uint32(out.Pix[i])*uint32(m.Pix[i]) + 127) / 255)
	}
	return out, nil
}
