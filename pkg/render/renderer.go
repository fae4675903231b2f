// Package render converts normalized vector documents into raster images.
//
// Rendering is deterministic: the same document at the same target size
// produces the same pixels. Aspect-ratio mismatches between document and
// target are letterboxed around a centered, uniformly-scaled drawing,
// using a configurable fill color (opaque black by default).
package render

import (
	"bytes"
	"image"
	"image/color"

	// Image elements may carry PNG or JPEG payloads.
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"

	"github.com/dmidlo/gslide2media/pkg/errors"
	"github.com/dmidlo/gslide2media/pkg/slides"
)

// Option configures a Renderer.
type Option func(*Renderer)

// WithLetterboxFill sets the letterbox fill color.
func WithLetterboxFill(c color.Color) Option {
	return func(r *Renderer) { r.fill = c }
}

// Renderer rasterizes vector documents. A Renderer is immutable after
// construction and safe for concurrent use.
type Renderer struct {
	fill color.Color
}

// New creates a Renderer with the given options.
func New(opts ...Option) *Renderer {
	r := &Renderer{fill: color.Black}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// frame maps document coordinates into the letterboxed target.
type frame struct {
	scale float64
	ox    float64
	oy    float64
}

func (f frame) x(v float64) float64 { return f.ox + v*f.scale }
func (f frame) y(v float64) float64 { return f.oy + v*f.scale }
func (f frame) d(v float64) float64 { return v * f.scale }

// Render rasterizes doc at the target resolution. The document is scaled
// uniformly to fit, centered, and surrounded by the fill color where the
// aspect ratios differ. Malformed documents fail with RENDER_FAILED; the
// caller reports that per-slide rather than aborting the export.
func (r *Renderer) Render(doc *slides.VectorDocument, width, height int) (image.Image, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if width <= 0 || height <= 0 {
		return nil, errors.New(errors.ErrCodeRenderFailed,
			"invalid target size %dx%d", width, height)
	}

	dc := gg.NewContext(width, height)
	dc.SetColor(r.fill)
	dc.Clear()

	scale := min(float64(width)/doc.Width, float64(height)/doc.Height)
	f := frame{
		scale: scale,
		ox:    (float64(width) - doc.Width*scale) / 2,
		oy:    (float64(height) - doc.Height*scale) / 2,
	}

	for i, el := range doc.Elements {
		if err := r.drawElement(dc, f, el); err != nil {
			return nil, errors.Wrap(errors.ErrCodeRenderFailed, err, "element %d", i)
		}
	}

	return dc.Image(), nil
}

func (r *Renderer) drawElement(dc *gg.Context, f frame, el slides.Element) error {
	switch el.Kind {
	case slides.ElementRect:
		dc.DrawRectangle(f.x(el.X), f.y(el.Y), f.d(el.Width), f.d(el.Height))
		return paint(dc, f, el)

	case slides.ElementEllipse:
		dc.DrawEllipse(
			f.x(el.X+el.Width/2), f.y(el.Y+el.Height/2),
			f.d(el.Width/2), f.d(el.Height/2))
		return paint(dc, f, el)

	case slides.ElementLine:
		dc.MoveTo(f.x(el.Points[0].X), f.y(el.Points[0].Y))
		for _, pt := range el.Points[1:] {
			dc.LineTo(f.x(pt.X), f.y(pt.Y))
		}
		return strokeOnly(dc, f, el)

	case slides.ElementText:
		return r.drawText(dc, f, el)

	case slides.ElementImage:
		return drawImage(dc, f, el)
	}
	return errors.New(errors.ErrCodeRenderFailed, "unknown element kind %q", el.Kind)
}

// paint fills and/or strokes the current path according to element style.
func paint(dc *gg.Context, f frame, el slides.Element) error {
	if el.Fill != "" {
		c, err := ParseHexColor(el.Fill)
		if err != nil {
			return err
		}
		dc.SetColor(c)
		if el.Stroke != "" {
			dc.FillPreserve()
		} else {
			dc.Fill()
		}
	}
	if el.Stroke != "" {
		return strokeOnly(dc, f, el)
	}
	if el.Fill == "" {
		dc.ClearPath()
	}
	return nil
}

func strokeOnly(dc *gg.Context, f frame, el slides.Element) error {
	if el.Stroke == "" {
		dc.ClearPath()
		return nil
	}
	c, err := ParseHexColor(el.Stroke)
	if err != nil {
		return err
	}
	w := el.StrokeWidth
	if w <= 0 {
		w = 1
	}
	dc.SetColor(c)
	dc.SetLineWidth(f.d(w))
	dc.Stroke()
	return nil
}

func (r *Renderer) drawText(dc *gg.Context, f frame, el slides.Element) error {
	if el.Text == "" {
		return nil
	}
	size := el.FontSize
	if size <= 0 {
		size = 14
	}
	face, err := faceForSize(f.d(size))
	if err != nil {
		return err
	}
	dc.SetFontFace(face)

	textColor := el.Fill
	if textColor == "" {
		textColor = "#000000"
	}
	c, err := ParseHexColor(textColor)
	if err != nil {
		return err
	}
	dc.SetColor(c)

	// Anchor at the top-left of the element box; gg draws from the
	// baseline, so offset by the scaled font size.
	dc.DrawString(el.Text, f.x(el.X), f.y(el.Y)+f.d(size))
	return nil
}

func drawImage(dc *gg.Context, f frame, el slides.Element) error {
	img, _, err := image.Decode(bytes.NewReader(el.ImageData))
	if err != nil {
		return errors.Wrap(errors.ErrCodeRenderFailed, err, "decode embedded image")
	}

	w := max(int(f.d(el.Width)+0.5), 1)
	h := max(int(f.d(el.Height)+0.5), 1)
	scaled := imaging.Resize(img, w, h, imaging.Lanczos)
	dc.DrawImage(scaled, int(f.x(el.X)+0.5), int(f.y(el.Y)+0.5))
	return nil
}

// ParseHexColor parses "#rrggbb" or "#rgb" into an opaque color.
func ParseHexColor(s string) (color.NRGBA, error) {
	if len(s) == 0 || s[0] != '#' {
		return color.NRGBA{}, errors.New(errors.ErrCodeRenderFailed, "invalid color %q", s)
	}
	hexVal := func(b byte) (uint8, bool) {
		switch {
		case b >= '0' && b <= '9':
			return b - '0', true
		case b >= 'a' && b <= 'f':
			return b - 'a' + 10, true
		case b >= 'A' && b <= 'F':
			return b - 'A' + 10, true
		}
		return 0, false
	}

	var r, g, b uint8
	switch len(s) {
	case 7:
		for i, dst := range []*uint8{&r, &g, &b} {
			hi, ok1 := hexVal(s[1+i*2])
			lo, ok2 := hexVal(s[2+i*2])
			if !ok1 || !ok2 {
				return color.NRGBA{}, errors.New(errors.ErrCodeRenderFailed, "invalid color %q", s)
			}
			*dst = hi<<4 | lo
		}
	case 4:
		for i, dst := range []*uint8{&r, &g, &b} {
			v, ok := hexVal(s[1+i])
			if !ok {
				return color.NRGBA{}, errors.New(errors.ErrCodeRenderFailed, "invalid color %q", s)
			}
			*dst = v<<4 | v
		}
	default:
		return color.NRGBA{}, errors.New(errors.ErrCodeRenderFailed, "invalid color %q", s)
	}
	return color.NRGBA{R: r, G: g, B: b, A: 0xff}, nil
}
