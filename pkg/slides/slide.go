package slides

// SlideRef identifies one slide within a presentation. Batch presentations
// are assembled from refs that may span multiple source presentations.
type SlideRef struct {
	PresentationID string `json:"presentation_id"`
	SlideID        string `json:"slide_id"`
}

// Slide is one page of a presentation: a normalized vector document plus
// display timing. Slides are owned by their presentation and ordered by
// Index; that ordering is caller-significant and preserved end to end.
type Slide struct {
	PresentationID string
	ID             string
	Index          int

	// Duration is the display time in seconds when the slide is part of
	// an assembled video. Zero or negative means "use the configured
	// default".
	Duration float64

	Vector *VectorDocument
}

// EffectiveDuration returns the slide's duration, falling back to def
// when no per-slide duration is set.
func (s *Slide) EffectiveDuration(def float64) float64 {
	if s.Duration > 0 {
		return s.Duration
	}
	return def
}
