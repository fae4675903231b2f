package media

import (
	"encoding/json"

	"github.com/dmidlo/gslide2media/pkg/errors"
	"github.com/dmidlo/gslide2media/pkg/slides"
)

// metadataOutput is the presentation-level JSON sidecar. It describes the
// export without carrying any image bytes: raw SVG payloads and embedded
// image data are deliberately stripped.
type metadataOutput struct {
	PresentationID string          `json:"presentation_id"`
	Name           string          `json:"name"`
	ParentPath     string          `json:"parent_path,omitempty"`
	Batch          bool            `json:"batch,omitempty"`
	SlideCount     int             `json:"slide_count"`
	Slides         []slideMetadata `json:"slides"`
}

type slideMetadata struct {
	ID           string  `json:"id"`
	Index        int     `json:"index"`
	Duration     float64 `json:"duration_secs,omitempty"`
	Width        float64 `json:"width,omitempty"`
	Height       float64 `json:"height,omitempty"`
	ElementCount int     `json:"element_count,omitempty"`
}

// EncodeMetadata serializes the presentation and its fetched slides as a
// pretty-printed JSON document. Slides that failed to fetch may be absent
// from rendered; they still appear in the output with identity only.
func EncodeMetadata(p *slides.Presentation, fetched []*slides.Slide) ([]byte, error) {
	if p == nil {
		return nil, errors.New(errors.ErrCodeInternal, "nil presentation")
	}

	// Keyed by full reference: a batch may draw the same slide id from
	// two different source decks.
	byRef := make(map[slides.SlideRef]*slides.Slide, len(fetched))
	for _, s := range fetched {
		if s != nil {
			byRef[slides.SlideRef{PresentationID: s.PresentationID, SlideID: s.ID}] = s
		}
	}

	out := metadataOutput{
		PresentationID: p.ID(),
		Name:           p.Name(),
		ParentPath:     p.ParentPath(),
		Batch:          p.Batch(),
		SlideCount:     p.SlideCount(),
		Slides:         make([]slideMetadata, 0, p.SlideCount()),
	}

	for i, ref := range p.Slides() {
		sm := slideMetadata{ID: ref.SlideID, Index: i}
		if s, ok := byRef[ref]; ok {
			sm.Duration = s.Duration
			if s.Vector != nil {
				sm.Width = s.Vector.Width
				sm.Height = s.Vector.Height
				sm.ElementCount = len(s.Vector.Elements)
			}
		}
		out.Slides = append(out.Slides, sm)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode metadata")
	}
	return data, nil
}
