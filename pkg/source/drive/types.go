package drive

import (
	"github.com/dmidlo/gslide2media/pkg/slides"
)

// listingResponse is the wire shape of a folder children listing.
type listingResponse struct {
	Folders       []wireFolder       `json:"folders"`
	Presentations []wirePresentation `json:"presentations"`
}

type wireFolder struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Parent string `json:"parent,omitempty"`
}

type wirePresentation struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

func (r *listingResponse) toListing() *slides.Listing {
	l := &slides.Listing{
		Folders:       make([]slides.Folder, 0, len(r.Folders)),
		Presentations: make([]slides.PresentationRef, 0, len(r.Presentations)),
	}
	for _, f := range r.Folders {
		l.Folders = append(l.Folders, slides.Folder{ID: f.ID, Name: f.Name, Parent: f.Parent})
	}
	for _, p := range r.Presentations {
		l.Presentations = append(l.Presentations, slides.PresentationRef{ID: p.ID, Name: p.Title})
	}
	return l
}

// presentationResponse is the wire shape of a presentation document:
// identity, title, and the declared page order.
type presentationResponse struct {
	ID     string     `json:"presentationId"`
	Title  string     `json:"title"`
	Slides []wirePage `json:"slides"`
}

type wirePage struct {
	ObjectID string `json:"objectId"`
}

func (r *presentationResponse) toPresentation() (*slides.Presentation, error) {
	ids := make([]string, len(r.Slides))
	for i, s := range r.Slides {
		ids[i] = s.ObjectID
	}
	return slides.NewSourced(r.ID, r.Title, "", ids)
}

// pageResponse is the wire shape of one slide's page data. Size is in
// document units; SVG carries the remote's own serialization when it
// offers one, which the export pipeline passes through untouched.
type pageResponse struct {
	Width    float64       `json:"width"`
	Height   float64       `json:"height"`
	Elements []pageElement `json:"elements"`
	SVG      string        `json:"svg,omitempty"`
}

// pageElement is one loosely-typed page item. Which fields carry data
// depends on Type; normalization maps each onto the fixed tagged union
// and drops anything it cannot express.
type pageElement struct {
	Type string `json:"type"`

	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`

	Points []wirePoint `json:"points,omitempty"`

	Fill          string  `json:"fill,omitempty"`
	Outline       string  `json:"outline,omitempty"`
	OutlineWeight float64 `json:"outlineWeight,omitempty"`

	Text     string  `json:"text,omitempty"`
	FontSize float64 `json:"fontSize,omitempty"`

	// ImageData is base64-encoded PNG or JPEG bytes.
	ImageData string `json:"imageData,omitempty"`
}

type wirePoint struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// wireKinds maps remote element type tags onto the normalized schema.
// The remote uses SCREAMING_CASE tags; anything unmapped is dropped at
// normalization rather than failing the slide.
var wireKinds = map[string]slides.ElementKind{
	"RECTANGLE": slides.ElementRect,
	"ELLIPSE":   slides.ElementEllipse,
	"LINE":      slides.ElementLine,
	"TEXT_BOX":  slides.ElementText,
	"IMAGE":     slides.ElementImage,
}
