package options

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/dmidlo/gslide2media/pkg/errors"
	"github.com/dmidlo/gslide2media/pkg/slides"
)

// Key is the deterministic fingerprint of a normalized export request.
// Two logically identical requests always produce the same key: the
// option struct serializes canonically and the requested format set is
// deliberately left out of the hash, so per-format entries written under
// one request remain addressable when a later request asks for a
// different format combination. Keys are cache lookup handles, never
// security tokens.
type Key struct {
	base string
}

// keyPayload is the canonical serialization hashed into the key. Field
// order is fixed by the struct; slide order is deliberately preserved
// (it is caller-significant). The format set is excluded: formats live
// in the per-format key suffix so partial hits survive format-set
// changes between requests.
type keyPayload struct {
	PresentationID string   `json:"presentation_id"`
	Batch          bool     `json:"batch"`
	SlideIDs       []string `json:"slide_ids"`
	Width          int      `json:"width"`
	Height         int      `json:"height"`
	FPS            float64  `json:"fps"`
	SlideDuration  float64  `json:"slide_duration_secs"`
	JPEGQuality    int      `json:"jpeg_quality"`
	LetterboxFill  string   `json:"letterbox_fill"`
	NamingScheme   string   `json:"naming_scheme"`
}

// ComputeKey canonicalizes (presentation, options) into a stable
// fingerprint. The request must be fully resolved: ValidateAndSetDefaults
// has been applied and every format tag is known.
//
// Fails with INVALID_REQUEST when a batch presentation has no slides or
// an unknown format tag is present.
func ComputeKey(p *slides.Presentation, o *Options) (Key, error) {
	if p == nil {
		return Key{}, errors.New(errors.ErrCodeInvalidRequest, "nil presentation")
	}
	if p.Batch() && p.SlideCount() == 0 {
		return Key{}, errors.New(errors.ErrCodeInvalidRequest,
			"batch presentation %s has an empty slide list", p.ID())
	}
	for _, f := range o.Formats {
		if !ValidFormats[f] {
			return Key{}, errors.New(errors.ErrCodeInvalidRequest,
				"unknown format tag: %q", f)
		}
	}

	slideIDs := make([]string, 0, p.SlideCount())
	for _, ref := range p.Slides() {
		// Batch slides are namespaced by their source presentation so two
		// batches drawing the same slide id from different decks differ.
		if p.Batch() {
			slideIDs = append(slideIDs, ref.PresentationID+"/"+ref.SlideID)
		} else {
			slideIDs = append(slideIDs, ref.SlideID)
		}
	}

	payload := keyPayload{
		PresentationID: p.ID(),
		Batch:          p.Batch(),
		SlideIDs:       slideIDs,
		Width:          o.Width,
		Height:         o.Height,
		FPS:            o.FPS,
		SlideDuration:  o.SlideDuration,
		JPEGQuality:    o.JPEGQuality,
		LetterboxFill:  o.LetterboxFill,
		NamingScheme:   o.NamingScheme,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return Key{}, errors.Wrap(errors.ErrCodeInternal, err, "serialize key payload")
	}
	sum := sha256.Sum256(data)
	return Key{base: hex.EncodeToString(sum[:])}, nil
}

// String returns the full request key.
func (k Key) String() string { return "export:" + k.base }

// ForFormat derives the per-format cache key. Caching per format is what
// makes partial hits possible: a request adding MP4 to an already-cached
// PNG export only recomputes MP4, because the PNG entry's key depends on
// the request parameters and the format suffix, never on which other
// formats were requested alongside it.
func (k Key) ForFormat(f Format) string {
	return fmt.Sprintf("export:%s:%s", k.base, f)
}

// IsZero reports whether the key is unset.
func (k Key) IsZero() bool { return k.base == "" }
