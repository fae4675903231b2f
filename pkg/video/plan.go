// Package video assembles rendered slides into a timed MP4 stream.
//
// Assembly happens in two stages. BuildPlan is pure: it orders frames by
// slide index, computes per-slide repeat counts from duration and frame
// rate, and enforces the single-resolution invariant. The Assembler then
// muxes a plan into an MP4 container; the default implementation shells
// out to ffmpeg the same way still-image conversion tools are shelled to
// elsewhere in the ecosystem.
//
// Frame counting is fixed as repeat-frame, round-to-nearest, minimum one
// frame per slide. Total duration rounds to whole-frame boundaries; the
// resulting drift is bounded by 1/fps seconds per slide and is accepted,
// not an error.
package video

import (
	"image"
	"math"
	"sort"

	"github.com/dmidlo/gslide2media/pkg/errors"
)

// SlideFrame is one rendered slide queued for assembly. Index is the
// slide's position in the presentation's declared order; completion order
// of rendering is irrelevant, the plan re-sorts.
type SlideFrame struct {
	Index    int
	Image    image.Image
	Duration float64 // seconds; <= 0 means use the plan's default
}

// PlanEntry is one slide's contribution to the video: its raster repeated
// Count times.
type PlanEntry struct {
	SlideIndex int
	Image      image.Image
	Count      int
}

// Plan is a validated, ordered frame sequence ready for muxing.
type Plan struct {
	FPS     float64
	Width   int
	Height  int
	Entries []PlanEntry
}

// FrameCount returns the number of video frames duration seconds occupy
// at the given rate: round to nearest, floored at one frame.
func FrameCount(duration, fps float64) int {
	n := int(math.Round(duration * fps))
	if n < 1 {
		return 1
	}
	return n
}

// BuildPlan orders frames by slide index and computes repeat counts.
//
// Fails with ASSEMBLY_FAILED when the sequence is empty, fps is not
// positive, or any frame's resolution differs from the first frame's
// (all frames of one video share one resolution; the caller renders all
// slides of a presentation at a single target size).
func BuildPlan(frames []SlideFrame, defaultDuration, fps float64) (*Plan, error) {
	if len(frames) == 0 {
		return nil, errors.New(errors.ErrCodeAssemblyFailed, "empty frame sequence")
	}
	if fps <= 0 {
		return nil, errors.New(errors.ErrCodeAssemblyFailed, "invalid frame rate %.2f", fps)
	}

	ordered := make([]SlideFrame, len(frames))
	copy(ordered, frames)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Index < ordered[j].Index
	})

	first := ordered[0].Image
	if first == nil {
		return nil, errors.New(errors.ErrCodeAssemblyFailed, "slide %d: nil image", ordered[0].Index)
	}
	width, height := first.Bounds().Dx(), first.Bounds().Dy()

	plan := &Plan{
		FPS:     fps,
		Width:   width,
		Height:  height,
		Entries: make([]PlanEntry, 0, len(ordered)),
	}

	for _, f := range ordered {
		if f.Image == nil {
			return nil, errors.New(errors.ErrCodeAssemblyFailed, "slide %d: nil image", f.Index)
		}
		w, h := f.Image.Bounds().Dx(), f.Image.Bounds().Dy()
		if w != width || h != height {
			return nil, errors.New(errors.ErrCodeAssemblyFailed,
				"slide %d resolution %dx%d differs from sequence resolution %dx%d",
				f.Index, w, h, width, height)
		}

		d := f.Duration
		if d <= 0 {
			d = defaultDuration
		}
		plan.Entries = append(plan.Entries, PlanEntry{
			SlideIndex: f.Index,
			Image:      f.Image,
			Count:      FrameCount(d, fps),
		})
	}

	return plan, nil
}

// TotalFrames returns the number of frames the plan emits.
func (p *Plan) TotalFrames() int {
	total := 0
	for _, e := range p.Entries {
		total += e.Count
	}
	return total
}

// Duration returns the assembled video length in seconds, already rounded
// to whole-frame boundaries.
func (p *Plan) Duration() float64 {
	if p.FPS <= 0 {
		return 0
	}
	return float64(p.TotalFrames()) / p.FPS
}
