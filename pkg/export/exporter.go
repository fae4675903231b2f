package export

import (
	"context"
	"image"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/dmidlo/gslide2media/pkg/cache"
	"github.com/dmidlo/gslide2media/pkg/errors"
	"github.com/dmidlo/gslide2media/pkg/httputil"
	"github.com/dmidlo/gslide2media/pkg/media"
	"github.com/dmidlo/gslide2media/pkg/observability"
	"github.com/dmidlo/gslide2media/pkg/options"
	"github.com/dmidlo/gslide2media/pkg/render"
	"github.com/dmidlo/gslide2media/pkg/slides"
	"github.com/dmidlo/gslide2media/pkg/video"
)

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithAssembler overrides the video assembler (tests inject fakes here;
// production uses the ffmpeg assembler).
func WithAssembler(a video.Assembler) ExporterOption {
	return func(e *Exporter) { e.assembler = a }
}

// WithLogger sets the exporter's logger.
func WithLogger(l *log.Logger) ExporterOption {
	return func(e *Exporter) { e.logger = l }
}

// Exporter runs the full pipeline for one presentation at a time:
// cache lookup, slide fetch, render, transcode, artifact write, cache
// update. Safe for concurrent use; the folder exporter shares one
// instance across its worker pool.
type Exporter struct {
	source    slides.RemoteSource
	index     cache.Index
	assembler video.Assembler
	logger    *log.Logger
}

// New creates an Exporter backed by the given remote source and result
// index. Pass a cache.NullIndex to disable caching.
func New(source slides.RemoteSource, index cache.Index, opts ...ExporterOption) *Exporter {
	e := &Exporter{
		source:    source,
		index:     index,
		assembler: video.NewFFmpegAssembler(),
		logger:    log.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// fetchedSlide pairs a slide with its declared position so render and
// assembly stages can consume out-of-order completion.
type fetchedSlide struct {
	ref   slides.SlideRef
	slide *slides.Slide // nil when the fetch failed
	img   image.Image   // nil until rendered, or when rendering failed
}

// Export runs one presentation through the pipeline.
//
// Export returns an error only for request-level problems: invalid
// options, an unresolvable key, or context cancellation. Per-slide and
// per-format failures are recorded in the result and never abort
// sibling work, so a deck with one broken slide still yields every
// other artifact.
func (e *Exporter) Export(ctx context.Context, p *slides.Presentation, o *options.Options) (*ExportResult, error) {
	if err := o.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result := &ExportResult{
		PresentationID: p.ID(),
		Name:           p.Name(),
		ParentPath:     p.ParentPath(),
	}

	// Sourced presentations handed over as bare IDs need their name and
	// slide order resolved first. Batches carry their slide list already.
	if !p.Batch() && p.SlideCount() == 0 {
		resolved, err := e.resolvePresentation(ctx, p)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			result.addError(ScopePresentation, p.ID(), err)
			return result, nil
		}
		p = resolved
		result.Name = p.Name()
	}

	key, err := options.ComputeKey(p, o)
	if err != nil {
		return nil, err
	}
	result.Key = key

	layout := Layout{Root: o.OutputRoot}
	dir := layout.PresentationDir(p)
	formats := uniqueFormats(o.Formats)

	// Per-format cache check. A verified entry serves its format without
	// touching the remote; stale entries are invalidated and recomputed.
	missing := make([]options.Format, 0, len(formats))
	for _, f := range formats {
		if o.Refresh {
			missing = append(missing, f)
			continue
		}
		entry, hit, err := e.index.Get(ctx, key.ForFormat(f))
		if err != nil {
			e.logger.Warn("cache lookup failed", "key", key.ForFormat(f), "err", err)
		}
		if hit && entry.Verify() {
			observability.Index().OnIndexHit(ctx, string(f))
			result.Cached = append(result.Cached, f)
			result.Artifacts = append(result.Artifacts, entry.Paths()...)
			continue
		}
		if hit {
			// Artifacts were deleted or tampered with behind the index.
			_ = e.index.Invalidate(ctx, key.ForFormat(f))
		}
		observability.Index().OnIndexMiss(ctx, string(f))
		missing = append(missing, f)
	}
	if len(missing) == 0 {
		e.logger.Debug("export served from cache", "presentation", p.ID(), "key", key.String())
		return result, nil
	}

	fetched, err := e.fetchSlides(ctx, p, o, result)
	if err != nil {
		return nil, err
	}

	if needsRaster(missing) {
		if err := e.renderSlides(ctx, p, fetched, o, result); err != nil {
			return nil, err
		}
	}

	transcoder := media.NewTranscoder(media.WithJPEGQuality(o.JPEGQuality))
	for _, f := range missing {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		paths, err := e.exportFormat(ctx, f, p, fetched, o, transcoder, layout, dir)
		if err != nil {
			result.addError(ScopeFormat, string(f), err)
			continue
		}
		result.Artifacts = append(result.Artifacts, paths...)
		e.storeEntry(ctx, key.ForFormat(f), f, paths)
	}

	e.logger.Info("export finished",
		"presentation", p.ID(),
		"artifacts", len(result.Artifacts),
		"cached", len(result.Cached),
		"errors", len(result.Errors))
	return result, nil
}

// resolvePresentation fetches name and slide order for a bare ID,
// retrying transient failures and preserving the caller's parent path.
func (e *Exporter) resolvePresentation(ctx context.Context, p *slides.Presentation) (*slides.Presentation, error) {
	var resolved *slides.Presentation
	err := httputil.RetryWithBackoff(ctx, func() error {
		var err error
		resolved, err = e.source.GetPresentation(ctx, p.ID())
		return err
	})
	if err != nil {
		return nil, err
	}
	return resolved.WithParentPath(p.ParentPath()), nil
}

// fetchSlides pulls every slide's vector document through a bounded
// worker pool. Individual failures are recorded per slide; only context
// cancellation aborts the pool.
func (e *Exporter) fetchSlides(ctx context.Context, p *slides.Presentation, o *options.Options, result *ExportResult) ([]*fetchedSlide, error) {
	refs := p.Slides()
	fetched := make([]*fetchedSlide, len(refs))
	for i, ref := range refs {
		fetched[i] = &fetchedSlide{ref: ref}
	}

	start := time.Now()
	observability.Export().OnFetchStart(ctx, p.ID(), len(refs))

	var (
		g, gctx = errgroup.WithContext(ctx)
		errs    = make([]error, len(refs))
	)
	g.SetLimit(o.FetchWorkers)

	for i := range fetched {
		i := i
		g.Go(func() error {
			fs := fetched[i]

			// The timeout bounds each attempt separately; a stalled first
			// call still leaves the retry policy its full budget, and the
			// resulting deadline error is transient so it is retried.
			var doc *slides.VectorDocument
			err := httputil.RetryWithBackoff(gctx, func() error {
				fctx, cancel := context.WithTimeout(gctx, o.FetchTimeout)
				defer cancel()

				var err error
				doc, err = e.source.FetchSlideVector(fctx, fs.ref.PresentationID, fs.ref.SlideID)
				return err
			})
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				errs[i] = err
				return nil
			}

			fs.slide = &slides.Slide{
				PresentationID: fs.ref.PresentationID,
				ID:             fs.ref.SlideID,
				Index:          i,
				Vector:         doc,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	ok := 0
	for i, err := range errs {
		if err != nil {
			result.addError(ScopeSlide, refs[i].SlideID, err)
		} else {
			ok++
		}
	}
	observability.Export().OnFetchComplete(ctx, p.ID(), ok, time.Since(start))
	return fetched, nil
}

// renderSlides rasterizes every fetched slide once at the target
// resolution, bounded by the render worker cap. The raster is shared by
// PNG, JPEG, and MP4 so a three-format request renders each slide once.
func (e *Exporter) renderSlides(ctx context.Context, p *slides.Presentation, fetched []*fetchedSlide, o *options.Options, result *ExportResult) error {
	fill, err := render.ParseHexColor(o.LetterboxFill)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidRequest, err, "letterbox fill")
	}
	renderer := render.New(render.WithLetterboxFill(fill))

	start := time.Now()
	observability.Export().OnRenderStart(ctx, p.ID(), o.Width, o.Height)

	var (
		g, gctx = errgroup.WithContext(ctx)
		errs    = make([]error, len(fetched))
	)
	g.SetLimit(o.RenderWorkers)

	for i := range fetched {
		i := i
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			fs := fetched[i]
			if fs.slide == nil {
				return nil // fetch already failed and was recorded
			}
			img, err := renderer.Render(fs.slide.Vector, o.Width, o.Height)
			if err != nil {
				errs[i] = err
				return nil
			}
			fs.img = img
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	rendered := 0
	for i, err := range errs {
		if err != nil {
			result.addError(ScopeSlide, fetched[i].ref.SlideID, err)
		} else if fetched[i].img != nil {
			rendered++
		}
	}
	observability.Export().OnRenderComplete(ctx, p.ID(), rendered, time.Since(start))
	return nil
}

// exportFormat materializes one format's artifacts. Still formats emit
// one file per successfully processed slide; MP4 and JSON emit a single
// file per presentation.
func (e *Exporter) exportFormat(ctx context.Context, f options.Format, p *slides.Presentation, fetched []*fetchedSlide, o *options.Options, t *media.Transcoder, layout Layout, dir string) ([]string, error) {
	switch f {
	case options.FormatMP4:
		return e.exportVideo(ctx, p, fetched, o, layout, dir)
	case options.FormatJSON:
		return e.exportMetadata(p, fetched, layout, dir)
	default:
		return e.exportStills(f, fetched, t, layout, dir)
	}
}

func (e *Exporter) exportStills(f options.Format, fetched []*fetchedSlide, t *media.Transcoder, layout Layout, dir string) ([]string, error) {
	var paths []string
	for i, fs := range fetched {
		if fs.slide == nil {
			continue // fetch failure already recorded
		}
		if f.Raster() && fs.img == nil {
			continue // render failure already recorded
		}
		data, err := t.Encode(fs.img, fs.slide, f)
		if err != nil {
			return nil, err
		}
		path := layout.SlidePath(dir, i, f)
		if err := writeArtifact(path, data); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return nil, errors.New(errors.ErrCodeRenderFailed,
			"no slide produced %s output", f)
	}
	return paths, nil
}

// exportVideo assembles the whole deck into one MP4. A video with holes
// would silently misrepresent the deck, so any missing slide fails the
// format rather than shipping a shorter video.
func (e *Exporter) exportVideo(ctx context.Context, p *slides.Presentation, fetched []*fetchedSlide, o *options.Options, layout Layout, dir string) ([]string, error) {
	frames := make([]video.SlideFrame, 0, len(fetched))
	for _, fs := range fetched {
		if fs.slide == nil || fs.img == nil {
			return nil, errors.New(errors.ErrCodeAssemblyFailed,
				"slide %s unavailable, refusing to assemble a partial video", fs.ref.SlideID)
		}
		frames = append(frames, video.SlideFrame{
			Index:    fs.slide.Index,
			Image:    fs.img,
			Duration: fs.slide.EffectiveDuration(o.SlideDuration),
		})
	}

	plan, err := video.BuildPlan(frames, o.SlideDuration, o.FPS)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Export().OnAssembleStart(ctx, p.ID(), plan.TotalFrames())
	data, err := e.assembler.Assemble(ctx, plan)
	observability.Export().OnAssembleComplete(ctx, p.ID(), time.Since(start), err)
	if err != nil {
		return nil, err
	}

	path := layout.VideoPath(dir, p)
	if err := writeArtifact(path, data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return []string{path}, nil
}

func (e *Exporter) exportMetadata(p *slides.Presentation, fetched []*fetchedSlide, layout Layout, dir string) ([]string, error) {
	all := make([]*slides.Slide, 0, len(fetched))
	for _, fs := range fetched {
		if fs.slide != nil {
			all = append(all, fs.slide)
		}
	}
	data, err := media.EncodeMetadata(p, all)
	if err != nil {
		return nil, err
	}
	path := layout.MetadataPath(dir, p)
	if err := writeArtifact(path, data); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
	}
	return []string{path}, nil
}

// storeEntry records finished artifacts under the per-format key. Index
// write failures only cost a future cache hit, so they are logged and
// swallowed.
func (e *Exporter) storeEntry(ctx context.Context, key string, f options.Format, paths []string) {
	entry := cache.NewEntry(key, string(f))
	for _, path := range paths {
		sum, err := cache.ChecksumFile(path)
		if err != nil {
			e.logger.Warn("checksum failed, skipping cache entry", "path", path, "err", err)
			return
		}
		entry.AddArtifact(path, sum)
	}
	if err := e.index.Put(ctx, key, entry); err != nil {
		e.logger.Warn("cache store failed", "key", key, "err", err)
		return
	}
	observability.Index().OnIndexSet(ctx, string(f), len(paths))
}

func uniqueFormats(in []options.Format) []options.Format {
	seen := make(map[options.Format]bool, len(in))
	out := make([]options.Format, 0, len(in))
	for _, f := range in {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out
}

func needsRaster(formats []options.Format) bool {
	for _, f := range formats {
		if f.Raster() {
			return true
		}
	}
	return false
}
