// Package export orchestrates the pipeline: it turns a (presentation,
// format-set, options) tuple into a deterministic, cacheable set of
// artifacts, and fans that out across recursively resolved folder trees.
package export

import (
	"github.com/dmidlo/gslide2media/pkg/options"
)

// ErrorScope classifies where in the pipeline a recorded failure occurred.
type ErrorScope string

const (
	// ScopePresentation marks failures that prevented a whole
	// presentation from exporting (metadata fetch, for example).
	ScopePresentation ErrorScope = "presentation"

	// ScopeSlide marks per-slide failures (fetch or render); remaining
	// slides and formats proceed.
	ScopeSlide ErrorScope = "slide"

	// ScopeFormat marks per-format failures; other requested formats
	// proceed independently.
	ScopeFormat ErrorScope = "format"

	// ScopeFolder marks container resolution failures, including cycles;
	// sibling branches proceed.
	ScopeFolder ErrorScope = "folder"
)

// ExportError is one recorded failure. Errors never abort sibling work;
// they are collected so the caller can report partial completion.
type ExportError struct {
	Scope ErrorScope
	ID    string // slide id, format tag, or folder id
	Err   error
}

func (e ExportError) Error() string {
	return string(e.Scope) + " " + e.ID + ": " + e.Err.Error()
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e ExportError) Unwrap() error { return e.Err }

// ExportResult enumerates what one presentation export produced: the
// succeeded artifact paths, which formats were served from cache, and
// every per-slide/per-format error collected along the way.
type ExportResult struct {
	PresentationID string
	Name           string
	ParentPath     string
	Key            options.Key

	// Artifacts lists succeeded output paths: still images in slide
	// order per format, then video, then the metadata sidecar.
	Artifacts []string

	// Cached lists the formats served entirely from the verified cache.
	Cached []options.Format

	// Errors collects all non-fatal failures. A non-empty list with a
	// non-empty Artifacts slice means partial completion.
	Errors []ExportError
}

// Complete reports whether the export finished without any recorded
// errors.
func (r *ExportResult) Complete() bool { return len(r.Errors) == 0 }

// CacheHit reports whether format f was served from cache.
func (r *ExportResult) CacheHit(f options.Format) bool {
	for _, c := range r.Cached {
		if c == f {
			return true
		}
	}
	return false
}

func (r *ExportResult) addError(scope ErrorScope, id string, err error) {
	r.Errors = append(r.Errors, ExportError{Scope: scope, ID: id, Err: err})
}
