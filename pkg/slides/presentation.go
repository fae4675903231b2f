package slides

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/dmidlo/gslide2media/pkg/errors"
)

// Presentation is one exportable document: either sourced whole from the
// remote, or a batch assembled by hand from explicit slide references.
// A Presentation is immutable once built; slide order is significant.
type Presentation struct {
	id         string
	name       string
	parentPath string
	slides     []SlideRef
	batch      bool
}

// NewSourced builds a presentation discovered from the remote. slideIDs is
// the remote's declared page order; parentPath is the resolved folder path
// used for nested output ("" for top-level exports).
func NewSourced(id, name, parentPath string, slideIDs []string) (*Presentation, error) {
	if err := errors.ValidateResourceID(id); err != nil {
		return nil, err
	}
	refs := make([]SlideRef, len(slideIDs))
	for i, sid := range slideIDs {
		if err := errors.ValidateResourceID(sid); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidID, err, "slide %d of %s", i, id)
		}
		refs[i] = SlideRef{PresentationID: id, SlideID: sid}
	}
	return &Presentation{
		id:         id,
		name:       name,
		parentPath: parentPath,
		slides:     refs,
	}, nil
}

// NewBatch builds a hand-assembled presentation from explicit slide
// references. Batch presentations must name at least one slide. When name
// is empty a unique "batch-" name is generated.
func NewBatch(name string, refs []SlideRef) (*Presentation, error) {
	if len(refs) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidRequest,
			"batch presentation requires at least one slide reference")
	}
	for i, ref := range refs {
		if err := errors.ValidateResourceID(ref.PresentationID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidID, err, "batch ref %d", i)
		}
		if err := errors.ValidateResourceID(ref.SlideID); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidID, err, "batch ref %d", i)
		}
	}
	if name == "" {
		name = fmt.Sprintf("batch-%s", uuid.NewString())
	}
	slides := make([]SlideRef, len(refs))
	copy(slides, refs)
	return &Presentation{
		id:     name,
		name:   name,
		slides: slides,
		batch:  true,
	}, nil
}

// ID returns the presentation identity: the remote document ID for sourced
// presentations, the generated or caller-supplied name for batches.
func (p *Presentation) ID() string { return p.id }

// Name returns the display name, falling back to the ID when the remote
// provided none.
func (p *Presentation) Name() string {
	if p.name == "" {
		return p.id
	}
	return p.name
}

// ParentPath returns the resolved folder path for nested output layouts.
func (p *Presentation) ParentPath() string { return p.parentPath }

// Batch reports whether this presentation was assembled from explicit
// slide references rather than discovered whole from the remote.
func (p *Presentation) Batch() bool { return p.batch }

// Slides returns the ordered slide references. The returned slice is a
// copy; the presentation itself is never mutated.
func (p *Presentation) Slides() []SlideRef {
	out := make([]SlideRef, len(p.slides))
	copy(out, p.slides)
	return out
}

// SlideCount returns the number of slides.
func (p *Presentation) SlideCount() int { return len(p.slides) }

// SlideIDs returns the ordered slide IDs.
func (p *Presentation) SlideIDs() []string {
	ids := make([]string, len(p.slides))
	for i, ref := range p.slides {
		ids[i] = ref.SlideID
	}
	return ids
}

// WithParentPath returns a copy of the presentation rooted at parentPath.
// Used by the folder exporter to attach resolved tree context without
// mutating shared instances.
func (p *Presentation) WithParentPath(parentPath string) *Presentation {
	cp := *p
	cp.parentPath = parentPath
	return &cp
}
