// Package slides defines the data model for the export pipeline:
// presentations, slides, folders, and the normalized vector-document
// schema that the renderer consumes.
//
// Remote APIs return loosely-shaped page data; implementations of
// [RemoteSource] are responsible for normalizing those shapes into
// [VectorDocument] at ingress so the rest of the pipeline never sees
// ecosystem-specific structures.
package slides

import (
	"github.com/dmidlo/gslide2media/pkg/errors"
)

// ElementKind identifies the shape variant of a vector element.
type ElementKind string

// Supported element kinds. The schema is a fixed tagged union: anything
// a remote page contains must be normalized into one of these.
const (
	ElementRect    ElementKind = "rect"
	ElementEllipse ElementKind = "ellipse"
	ElementLine    ElementKind = "line"
	ElementText    ElementKind = "text"
	ElementImage   ElementKind = "image"
)

var validKinds = map[ElementKind]bool{
	ElementRect:    true,
	ElementEllipse: true,
	ElementLine:    true,
	ElementText:    true,
	ElementImage:   true,
}

// Point is a coordinate in document units.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Element is one positioned item on a slide. Which fields are meaningful
// depends on Kind:
//   - rect/ellipse: bounding box plus fill/stroke
//   - line: Points (at least two) plus stroke
//   - text: bounding box, Text, FontSize, Fill as text color
//   - image: bounding box plus ImageData (PNG or JPEG bytes)
type Element struct {
	Kind ElementKind `json:"kind"`

	// Bounding box in document units, origin top-left.
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Points []Point `json:"points,omitempty"`

	// Colors are "#rrggbb" hex strings; empty means "not painted".
	Fill        string  `json:"fill,omitempty"`
	Stroke      string  `json:"stroke,omitempty"`
	StrokeWidth float64 `json:"stroke_width,omitempty"`

	Text     string  `json:"text,omitempty"`
	FontSize float64 `json:"font_size,omitempty"`

	ImageData []byte `json:"image_data,omitempty"`
}

// VectorDocument is one slide's vector representation: an intrinsic size
// and an ordered list of elements. Raw holds the slide's original SVG
// serialization when the remote provided one; the SVG export format is a
// passthrough of these bytes rather than a raster transcode.
type VectorDocument struct {
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	Elements []Element `json:"elements"`
	Raw      []byte    `json:"raw,omitempty"`
}

// Validate checks the document against the schema. A failure means the
// document is malformed; callers report it per-slide as a render failure
// rather than aborting the whole export.
func (d *VectorDocument) Validate() error {
	if d == nil {
		return errors.New(errors.ErrCodeRenderFailed, "nil vector document")
	}
	if d.Width <= 0 || d.Height <= 0 {
		return errors.New(errors.ErrCodeRenderFailed,
			"invalid document size %.2fx%.2f", d.Width, d.Height)
	}
	for i, el := range d.Elements {
		if !validKinds[el.Kind] {
			return errors.New(errors.ErrCodeRenderFailed,
				"element %d: unknown kind %q", i, el.Kind)
		}
		if el.Kind == ElementLine && len(el.Points) < 2 {
			return errors.New(errors.ErrCodeRenderFailed,
				"element %d: line needs at least 2 points, got %d", i, len(el.Points))
		}
		if el.Kind != ElementLine && (el.Width < 0 || el.Height < 0) {
			return errors.New(errors.ErrCodeRenderFailed,
				"element %d: negative bounds", i)
		}
		if el.Kind == ElementImage && len(el.ImageData) == 0 {
			return errors.New(errors.ErrCodeRenderFailed,
				"element %d: image element without data", i)
		}
	}
	return nil
}

// AspectRatio returns width divided by height.
func (d *VectorDocument) AspectRatio() float64 {
	if d.Height == 0 {
		return 0
	}
	return d.Width / d.Height
}
