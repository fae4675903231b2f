package drive

import (
	"encoding/base64"

	"github.com/dmidlo/gslide2media/pkg/errors"
	"github.com/dmidlo/gslide2media/pkg/slides"
)

// normalizePage converts wire page data into the vector-document
// schema. Unknown element types and undecodable image payloads are
// dropped rather than failing the slide; the document is validated
// before it leaves this package so downstream stages never see a
// malformed one.
func normalizePage(page *pageResponse) (*slides.VectorDocument, error) {
	if page.Width <= 0 || page.Height <= 0 {
		return nil, errors.New(errors.ErrCodeRenderFailed,
			"page has invalid size %.2fx%.2f", page.Width, page.Height)
	}

	doc := &slides.VectorDocument{
		Width:    page.Width,
		Height:   page.Height,
		Elements: make([]slides.Element, 0, len(page.Elements)),
	}
	if page.SVG != "" {
		doc.Raw = []byte(page.SVG)
	}

	for _, el := range page.Elements {
		kind, ok := wireKinds[el.Type]
		if !ok {
			continue
		}

		out := slides.Element{
			Kind:        kind,
			X:           el.X,
			Y:           el.Y,
			Width:       el.Width,
			Height:      el.Height,
			Fill:        el.Fill,
			Stroke:      el.Outline,
			StrokeWidth: el.OutlineWeight,
		}

		switch kind {
		case slides.ElementLine:
			if len(el.Points) < 2 {
				continue
			}
			out.Points = make([]slides.Point, len(el.Points))
			for i, p := range el.Points {
				out.Points[i] = slides.Point{X: p.X, Y: p.Y}
			}
		case slides.ElementText:
			if el.Text == "" {
				continue
			}
			out.Text = el.Text
			out.FontSize = el.FontSize
		case slides.ElementImage:
			data, err := base64.StdEncoding.DecodeString(el.ImageData)
			if err != nil || len(data) == 0 {
				continue
			}
			out.ImageData = data
		}

		doc.Elements = append(doc.Elements, out)
	}

	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}
