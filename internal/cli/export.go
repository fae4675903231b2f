package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dmidlo/gslide2media/pkg/errors"
	"github.com/dmidlo/gslide2media/pkg/export"
	"github.com/dmidlo/gslide2media/pkg/options"
	"github.com/dmidlo/gslide2media/pkg/slides"
)

// exportFlags are the per-run overrides shared by all export commands.
type exportFlags struct {
	formats  string
	width    int
	height   int
	fps      float64
	duration float64
	quality  int
	fill     string
	out      string
	refresh  bool
	noCache  bool
	workers  int
}

func (f *exportFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.formats, "formats", "f", "", "comma-separated output formats (svg,png,jpeg,json,mp4)")
	cmd.Flags().IntVar(&f.width, "width", 0, "raster width in pixels")
	cmd.Flags().IntVar(&f.height, "height", 0, "raster height in pixels")
	cmd.Flags().Float64Var(&f.fps, "fps", 0, "video frame rate")
	cmd.Flags().Float64Var(&f.duration, "duration", 0, "seconds each slide is shown in video")
	cmd.Flags().IntVar(&f.quality, "quality", 0, "jpeg quality (1-100)")
	cmd.Flags().StringVar(&f.fill, "fill", "", "letterbox fill color (#rrggbb)")
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "output directory")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "bypass the result cache and re-export")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the result cache entirely")
	cmd.Flags().IntVar(&f.workers, "workers", 0, "parallel presentation exports for folder runs")
}

// buildOptions layers flag overrides over config defaults.
func (c *CLI) buildOptions(f *exportFlags) (*options.Options, error) {
	o, err := c.config.exportOptions()
	if err != nil {
		return nil, err
	}
	if f.formats != "" {
		formats, err := options.ParseFormats(f.formats)
		if err != nil {
			return nil, err
		}
		o.Formats = formats
	}
	if f.width > 0 {
		o.Width = f.width
	}
	if f.height > 0 {
		o.Height = f.height
	}
	if f.fps > 0 {
		o.FPS = f.fps
	}
	if f.duration > 0 {
		o.SlideDuration = f.duration
	}
	if f.quality > 0 {
		o.JPEGQuality = f.quality
	}
	if f.fill != "" {
		o.LetterboxFill = f.fill
	}
	if f.out != "" {
		o.OutputRoot = f.out
	}
	o.Refresh = f.refresh
	o.Logger = c.Logger
	return o, nil
}

// presentationCommand creates the "presentation" export command.
func (c *CLI) presentationCommand() *cobra.Command {
	flags := &exportFlags{}
	cmd := &cobra.Command{
		Use:     "presentation <id>...",
		Aliases: []string{"pres", "p"},
		Short:   "Export one or more presentations by ID",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTree(cmd, flags, export.TreeRequest{PresentationIDs: args})
		},
	}
	flags.register(cmd)
	return cmd
}

// folderCommand creates the "folder" export command.
func (c *CLI) folderCommand() *cobra.Command {
	flags := &exportFlags{}
	cmd := &cobra.Command{
		Use:     "folder <id>...",
		Aliases: []string{"f"},
		Short:   "Export every presentation under one or more folders",
		Long:    `Export every presentation reachable from the given folders, walking nested folders recursively. Use "root" to start from the top of the hierarchy. The folder structure is mirrored in the output directory layout.`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runTree(cmd, flags, export.TreeRequest{FolderIDs: args})
		},
	}
	flags.register(cmd)
	return cmd
}

// batchCommand creates the "batch" export command.
func (c *CLI) batchCommand() *cobra.Command {
	flags := &exportFlags{}
	var name string
	cmd := &cobra.Command{
		Use:   "batch <presentation-id>:<slide-id>...",
		Short: "Export a hand-picked slide set as one presentation",
		Long:  `Assemble slides from one or more presentations into a single export. Each argument names one slide as <presentation-id>:<slide-id>; the given order is the export order.`,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			refs, err := parseSlideRefs(args)
			if err != nil {
				return err
			}
			batch, err := slides.NewBatch(name, refs)
			if err != nil {
				return err
			}
			return c.runTree(cmd, flags, export.TreeRequest{Presentations: []*slides.Presentation{batch}})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&name, "name", "", "batch name (default: generated)")
	return cmd
}

// runTree executes one export request and prints the outcome.
func (c *CLI) runTree(cmd *cobra.Command, flags *exportFlags, req export.TreeRequest) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	o, err := c.buildOptions(flags)
	if err != nil {
		return err
	}

	exp, source, index, err := c.newExporter(ctx, flags.noCache)
	if err != nil {
		return err
	}
	defer index.Close()

	var folderOpts []export.FolderExporterOption
	folderOpts = append(folderOpts, export.WithFolderLogger(logger))
	if flags.workers > 0 {
		folderOpts = append(folderOpts, export.WithConcurrency(flags.workers))
	}
	fx := export.NewFolderExporter(source, exp, folderOpts...)

	tracker := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Exporting...")
	spinner.Start()

	results, err := fx.ExportTree(ctx, req, o)
	spinner.Stop()
	if err != nil {
		return err
	}
	tracker.done(fmt.Sprintf("Exported %d presentations", countExported(results)))

	printResults(results)
	if failed := countFailed(results); failed > 0 {
		return fmt.Errorf("%d of %d exports had errors", failed, len(results))
	}
	return nil
}

// parseSlideRefs parses "<presentation-id>:<slide-id>" arguments.
func parseSlideRefs(args []string) ([]slides.SlideRef, error) {
	refs := make([]slides.SlideRef, 0, len(args))
	for _, arg := range args {
		presID, slideID, ok := strings.Cut(arg, ":")
		if !ok || presID == "" || slideID == "" {
			return nil, errors.New(errors.ErrCodeInvalidRequest,
				"invalid slide reference %q (want <presentation-id>:<slide-id>)", arg)
		}
		refs = append(refs, slides.SlideRef{PresentationID: presID, SlideID: slideID})
	}
	return refs, nil
}

func countExported(results []*export.ExportResult) int {
	n := 0
	for _, r := range results {
		if len(r.Artifacts) > 0 || len(r.Cached) > 0 {
			n++
		}
	}
	return n
}

func countFailed(results []*export.ExportResult) int {
	n := 0
	for _, r := range results {
		if !r.Complete() {
			n++
		}
	}
	return n
}

// printResults renders the per-presentation summary.
func printResults(results []*export.ExportResult) {
	for _, r := range results {
		switch {
		case r.PresentationID == "":
			// Folder branch failure, no artifacts by definition.
			for _, e := range r.Errors {
				printError("folder %s: %s", e.ID, errors.UserMessage(e.Err))
			}
		case r.Complete():
			printSuccess("%s", r.Name)
		default:
			printWarning("%s (partial)", r.Name)
		}

		if r.PresentationID == "" {
			continue
		}
		printArtifacts(r)
		for _, e := range r.Errors {
			printDetail("%s %s: %s", e.Scope, e.ID, errors.UserMessage(e.Err))
		}
	}
}

func printArtifacts(r *export.ExportResult) {
	for _, path := range r.Artifacts {
		printFile(path)
	}
	if len(r.Cached) > 0 {
		names := make([]string, len(r.Cached))
		for i, f := range r.Cached {
			names[i] = string(f)
		}
		printCachedNote(strings.Join(names, ", "))
	}
}
