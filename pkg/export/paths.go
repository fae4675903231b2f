package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dmidlo/gslide2media/pkg/errors"
	"github.com/dmidlo/gslide2media/pkg/options"
	"github.com/dmidlo/gslide2media/pkg/slides"
)

// Layout maps presentations and their artifacts to paths under a single
// output root. Still images land beside each other in a per-presentation
// directory; folder hierarchies are mirrored through the presentation's
// parent path.
type Layout struct {
	Root string
}

// PresentationDir returns the output directory for a presentation:
// <root>/<parent-path>/<name-or-id>. Names are sanitized for use as
// path segments, falling back to the opaque ID.
func (l Layout) PresentationDir(p *slides.Presentation) string {
	dir := l.Root
	if pp := p.ParentPath(); pp != "" {
		dir = filepath.Join(dir, filepath.FromSlash(pp))
	}
	return filepath.Join(dir, errors.SanitizeName(p.Name(), p.ID()))
}

// SlidePath returns the path for one still image. Slides are named by
// their zero-based position within the presentation.
func (l Layout) SlidePath(dir string, index int, f options.Format) string {
	return filepath.Join(dir, strconv.Itoa(index)+"."+string(f))
}

// VideoPath returns the path for the assembled video.
func (l Layout) VideoPath(dir string, p *slides.Presentation) string {
	return filepath.Join(dir, errors.SanitizeName(p.Name(), p.ID())+".mp4")
}

// MetadataPath returns the path for the JSON metadata sidecar.
func (l Layout) MetadataPath(dir string, p *slides.Presentation) string {
	return filepath.Join(dir, errors.SanitizeName(p.Name(), p.ID())+".json")
}

// writeArtifact writes data to path through a temp file and rename, so a
// crash mid-write never leaves a partial artifact at the final path.
func writeArtifact(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".artifact-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
