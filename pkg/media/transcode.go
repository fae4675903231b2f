// Package media transcodes rendered slides into the still output formats.
//
// PNG and JPEG are raster encodings of the renderer's output. SVG is a
// passthrough: the slide's original vector serialization is emitted (or
// synthesized from the normalized document when the remote provided no
// raw bytes), never a raster transcode. JSON is a metadata dump with no
// image payload.
package media

import (
	"bytes"
	"image"
	"image/png"

	"github.com/disintegration/imaging"

	"github.com/dmidlo/gslide2media/pkg/errors"
	"github.com/dmidlo/gslide2media/pkg/options"
	"github.com/dmidlo/gslide2media/pkg/slides"
)

// TranscoderOption configures a Transcoder.
type TranscoderOption func(*Transcoder)

// WithJPEGQuality sets the JPEG quality (1-100, default 90).
func WithJPEGQuality(q int) TranscoderOption {
	return func(t *Transcoder) { t.jpegQuality = q }
}

// Transcoder encodes rendered slides into still formats. Safe for
// concurrent use.
type Transcoder struct {
	jpegQuality int
}

// NewTranscoder creates a Transcoder with the given options.
func NewTranscoder(opts ...TranscoderOption) *Transcoder {
	t := &Transcoder{jpegQuality: options.DefaultJPEGQuality}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Encode converts one rendered slide into the requested still format.
// img may be nil for SVG (passthrough needs only the vector document).
// MP4 and JSON are not per-slide still formats; requesting them here is
// an internal programming error since the format set is pre-validated.
func (t *Transcoder) Encode(img image.Image, slide *slides.Slide, format options.Format) ([]byte, error) {
	switch format {
	case options.FormatPNG:
		return t.EncodePNG(img)
	case options.FormatJPEG:
		return t.EncodeJPEG(img)
	case options.FormatSVG:
		return t.EncodeSVG(slide.Vector)
	default:
		return nil, errors.New(errors.ErrCodeUnsupportedFormat,
			"%s is not a per-slide still format", format)
	}
}

// EncodePNG encodes img as PNG.
func (t *Transcoder) EncodePNG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, errors.New(errors.ErrCodeInternal, "nil image")
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode png")
	}
	return buf.Bytes(), nil
}

// EncodeJPEG encodes img as JPEG at the configured quality.
func (t *Transcoder) EncodeJPEG(img image.Image) ([]byte, error) {
	if img == nil {
		return nil, errors.New(errors.ErrCodeInternal, "nil image")
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(t.jpegQuality)); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode jpeg")
	}
	return buf.Bytes(), nil
}

// EncodeSVG returns the slide's vector serialization. When the remote
// supplied raw SVG bytes they pass through untouched; otherwise the
// normalized document is serialized.
func (t *Transcoder) EncodeSVG(doc *slides.VectorDocument) ([]byte, error) {
	if doc == nil {
		return nil, errors.New(errors.ErrCodeInternal, "nil vector document")
	}
	if len(doc.Raw) > 0 {
		out := make([]byte, len(doc.Raw))
		copy(out, doc.Raw)
		return out, nil
	}
	return serializeSVG(doc)
}
