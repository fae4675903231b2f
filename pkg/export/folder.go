package export

import (
	"context"
	"path"
	"runtime"
	"sort"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/dmidlo/gslide2media/pkg/errors"
	"github.com/dmidlo/gslide2media/pkg/httputil"
	"github.com/dmidlo/gslide2media/pkg/options"
	"github.com/dmidlo/gslide2media/pkg/slides"
)

// TreeRequest names the roots of one tree export. Folders are walked
// recursively; presentation IDs and pre-built presentations are merged
// in as additional top-level roots.
type TreeRequest struct {
	FolderIDs       []string
	PresentationIDs []string
	Presentations   []*slides.Presentation
}

// FolderExporterOption configures a FolderExporter.
type FolderExporterOption func(*FolderExporter)

// WithConcurrency caps how many presentations export in parallel.
// Defaults to the number of CPUs.
func WithConcurrency(n int) FolderExporterOption {
	return func(f *FolderExporter) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// WithFolderLogger sets the folder exporter's logger.
func WithFolderLogger(l *log.Logger) FolderExporterOption {
	return func(f *FolderExporter) { f.logger = l }
}

// FolderExporter resolves remote folder hierarchies and fans the
// discovered presentations out over a shared Exporter. One presentation
// failing never cancels its siblings; folder resolution failures
// (including cycles) are recorded per branch.
type FolderExporter struct {
	source      slides.RemoteSource
	exporter    *Exporter
	concurrency int
	logger      *log.Logger
}

// NewFolderExporter creates a FolderExporter sharing the Exporter's
// remote source.
func NewFolderExporter(source slides.RemoteSource, exporter *Exporter, opts ...FolderExporterOption) *FolderExporter {
	f := &FolderExporter{
		source:      source,
		exporter:    exporter,
		concurrency: runtime.NumCPU(),
		logger:      log.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// workItem is one folder queued for resolution together with the chain
// of container IDs above it. The chain is what turns "seen again" into
// "cycle": a repeated ID inside one chain is a loop, a repeated ID
// across branches is just a shared subtree.
type workItem struct {
	folderID  string
	path      string // slash-joined display path under the output root
	ancestors []string
}

func (w workItem) inChain(id string) bool {
	for _, a := range w.ancestors {
		if a == id {
			return true
		}
	}
	return false
}

// ExportTree resolves every root into presentations, exports them over
// a bounded worker pool, and returns one result per presentation plus
// one error-only result per failed folder branch.
//
// Resolution is depth-first and sequential: listings are cheap relative
// to exports, and a deterministic discovery order keeps the result list
// stable. Only context cancellation or invalid options abort the run.
func (f *FolderExporter) ExportTree(ctx context.Context, req TreeRequest, o *options.Options) ([]*ExportResult, error) {
	if err := o.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if len(req.FolderIDs) == 0 && len(req.PresentationIDs) == 0 && len(req.Presentations) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "tree export requires at least one root")
	}

	var (
		targets       []*slides.Presentation
		folderResults []*ExportResult
	)

	// Explicit presentation roots come first, in request order.
	for _, id := range req.PresentationIDs {
		p, err := slides.NewSourced(id, "", "", nil)
		if err != nil {
			return nil, err
		}
		targets = append(targets, p)
	}
	targets = append(targets, req.Presentations...)

	seen := make(map[string]bool)
	for _, folderID := range req.FolderIDs {
		stack := []workItem{{folderID: folderID}}
		for len(stack) > 0 {
			item := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if err := ctx.Err(); err != nil {
				return nil, err
			}
			if seen[item.folderID] {
				// Shared subtree already resolved on another branch.
				continue
			}
			seen[item.folderID] = true

			listing, err := f.listFolder(ctx, item.folderID)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				folderResults = append(folderResults, folderErrorResult(item, err))
				continue
			}

			for _, ref := range listing.Presentations {
				p, err := slides.NewSourced(ref.ID, ref.Name, item.path, nil)
				if err != nil {
					folderResults = append(folderResults, folderErrorResult(item, err))
					continue
				}
				targets = append(targets, p)
			}

			chain := append(append([]string(nil), item.ancestors...), item.folderID)
			// Reverse push keeps DFS in listing order.
			for i := len(listing.Folders) - 1; i >= 0; i-- {
				child := listing.Folders[i]
				if item.inChain(child.ID) || child.ID == item.folderID {
					folderResults = append(folderResults, folderErrorResult(item,
						errors.New(errors.ErrCodeCyclicFolder,
							"folder %s links back to ancestor %s", item.folderID, child.ID)))
					continue
				}
				stack = append(stack, workItem{
					folderID:  child.ID,
					path:      childPath(item.path, child, child.ID),
					ancestors: chain,
				})
			}
		}
	}

	f.logger.Info("tree resolved",
		"presentations", len(targets),
		"folder_errors", len(folderResults))

	results := make([]*ExportResult, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(f.concurrency)
	for i, p := range targets {
		i, p := i, p
		g.Go(func() error {
			res, err := f.exporter.Export(gctx, p, o)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				// Request-level failure for this presentation only.
				res = &ExportResult{PresentationID: p.ID(), Name: p.Name(), ParentPath: p.ParentPath()}
				res.addError(ScopePresentation, p.ID(), err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(folderResults, func(i, j int) bool {
		return folderResults[i].Name < folderResults[j].Name
	})
	return append(results, folderResults...), nil
}

func (f *FolderExporter) listFolder(ctx context.Context, folderID string) (*slides.Listing, error) {
	var listing *slides.Listing
	err := httputil.RetryWithBackoff(ctx, func() error {
		var err error
		listing, err = f.source.ListFolder(ctx, folderID)
		return err
	})
	return listing, err
}

// folderErrorResult records a branch failure as an artifact-less result
// so tree callers see folder errors alongside presentation results.
func folderErrorResult(item workItem, err error) *ExportResult {
	r := &ExportResult{Name: item.folderID, ParentPath: item.path}
	r.addError(ScopeFolder, item.folderID, err)
	return r
}

// childPath extends the display path with a folder's sanitized name.
// The root sentinel contributes no path segment.
func childPath(parent string, folder slides.Folder, fallback string) string {
	if folder.IsRoot() {
		return parent
	}
	return path.Join(parent, errors.SanitizeName(folder.Name, fallback))
}
