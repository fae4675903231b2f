// Package options defines the fully-resolved export request: the explicit
// configuration struct every pipeline component consumes, and the
// deterministic fingerprint (the options key) used for result caching.
//
// Callers resolve all defaults before the pipeline runs; components never
// see a partially-specified request.
package options

import (
	"io"
	"runtime"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dmidlo/gslide2media/pkg/errors"
)

// Format is one export output format.
type Format string

// The fixed format set. SVG is a vector passthrough, JSON is a metadata
// dump, MP4 routes through the sequence assembler; PNG and JPEG are
// raster transcodes.
const (
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatJSON Format = "json"
	FormatMP4  Format = "mp4"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[Format]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJPEG: true,
	FormatJSON: true,
	FormatMP4:  true,
}

// Raster reports whether the format requires rasterized slides.
func (f Format) Raster() bool {
	switch f {
	case FormatPNG, FormatJPEG, FormatMP4:
		return true
	}
	return false
}

// Extension returns the file extension (without dot) for still artifacts.
func (f Format) Extension() string { return string(f) }

// Default values for export options. These mirror the documented defaults
// of the original tool: 10 fps video, 20 second slide duration, JPEG
// quality 90.
const (
	DefaultWidth         = 1920
	DefaultHeight        = 1080
	DefaultFPS           = 10.0
	DefaultSlideDuration = 20.0
	DefaultJPEGQuality   = 90
	DefaultLetterboxFill = "#000000"
	DefaultFetchWorkers  = 8
	DefaultFetchTimeout  = 30 * time.Second
	DefaultNamingScheme  = "index"
)

// Options is the exhaustively-enumerated configuration for one export
// request. It supports JSON serialization for the cache fingerprint.
type Options struct {
	// Output formats; validated against ValidFormats.
	Formats []Format `json:"formats"`

	// Target raster resolution in pixels. All slides of one presentation
	// render at one resolution so the assembler can mux them.
	Width  int `json:"width"`
	Height int `json:"height"`

	// Video options.
	FPS           float64 `json:"fps"`
	SlideDuration float64 `json:"slide_duration_secs"`

	// Still-image options.
	JPEGQuality   int    `json:"jpeg_quality"`
	LetterboxFill string `json:"letterbox_fill"`

	// Output layout.
	OutputRoot   string `json:"output_root"`
	NamingScheme string `json:"naming_scheme"`

	// Refresh bypasses the result cache and forces a full re-export.
	Refresh bool `json:"refresh,omitempty"`

	// Concurrency caps: FetchWorkers bounds the network pool,
	// RenderWorkers the CPU pool.
	FetchWorkers  int           `json:"-"`
	RenderWorkers int           `json:"-"`
	FetchTimeout  time.Duration `json:"-"`

	// Runtime options (never part of the fingerprint).
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent - calling it multiple times has the same
// effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if len(o.Formats) == 0 {
		o.Formats = []Format{FormatSVG}
	}
	for _, f := range o.Formats {
		if !ValidFormats[f] {
			return errors.New(errors.ErrCodeInvalidRequest,
				"invalid format: %q (must be one of: svg, png, jpeg, json, mp4)", f)
		}
	}

	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.Height == 0 {
		o.Height = DefaultHeight
	}
	if o.Width < 0 || o.Height < 0 {
		return errors.New(errors.ErrCodeInvalidRequest,
			"invalid resolution %dx%d", o.Width, o.Height)
	}

	if o.FPS == 0 {
		o.FPS = DefaultFPS
	}
	if o.FPS < 0 {
		return errors.New(errors.ErrCodeInvalidRequest, "invalid fps %.2f", o.FPS)
	}
	if o.SlideDuration == 0 {
		o.SlideDuration = DefaultSlideDuration
	}
	if o.SlideDuration < 0 {
		return errors.New(errors.ErrCodeInvalidRequest,
			"invalid slide duration %.2fs", o.SlideDuration)
	}

	if o.JPEGQuality == 0 {
		o.JPEGQuality = DefaultJPEGQuality
	}
	if o.JPEGQuality < 1 || o.JPEGQuality > 100 {
		return errors.New(errors.ErrCodeInvalidRequest,
			"jpeg quality must be in [1,100], got %d", o.JPEGQuality)
	}

	if o.LetterboxFill == "" {
		o.LetterboxFill = DefaultLetterboxFill
	}
	if o.NamingScheme == "" {
		o.NamingScheme = DefaultNamingScheme
	}
	if o.OutputRoot == "" {
		o.OutputRoot = "."
	}

	if o.FetchWorkers <= 0 {
		o.FetchWorkers = DefaultFetchWorkers
	}
	if o.RenderWorkers <= 0 {
		o.RenderWorkers = runtime.NumCPU()
	}
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = DefaultFetchTimeout
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// HasFormat reports whether f is in the requested format set.
func (o *Options) HasFormat(f Format) bool {
	for _, have := range o.Formats {
		if have == f {
			return true
		}
	}
	return false
}

// NeedsRaster reports whether any requested format requires rendering.
func (o *Options) NeedsRaster() bool {
	for _, f := range o.Formats {
		if f.Raster() {
			return true
		}
	}
	return false
}

// ParseFormats parses a comma-separated format list ("png,mp4").
// Whitespace around entries is ignored; an empty string yields nil.
func ParseFormats(s string) ([]Format, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []Format
	for _, part := range strings.Split(s, ",") {
		f := Format(strings.ToLower(strings.TrimSpace(part)))
		if !ValidFormats[f] {
			return nil, errors.New(errors.ErrCodeInvalidRequest,
				"invalid format: %q (must be one of: svg, png, jpeg, json, mp4)", f)
		}
		out = append(out, f)
	}
	return out, nil
}
