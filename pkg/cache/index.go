// Package cache implements the options-keyed export result index.
//
// The index maps a per-format options key to the set of artifact paths
// that a previous export produced, together with a content checksum per
// artifact. An entry is trusted only after verification: every referenced
// file must still exist and hash to its recorded checksum. A stale or
// missing artifact invalidates only that entry, never the whole index.
//
// Backends: a file-based index for CLI usage, a Redis-backed index for
// shared deployments, and a null index that disables caching.
package cache

import (
	"context"
	"os"
	"time"
)

// Artifact is one produced output file referenced by an index entry.
type Artifact struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	WrittenAt time.Time `json:"written_at"`
}

// Entry maps one per-format options key to its artifacts. Entries are
// written only after every artifact has been fully and atomically
// persisted; last-writer-wins per key is acceptable because the key is a
// pure function of the request.
type Entry struct {
	Key       string     `json:"key"`
	Format    string     `json:"format"`
	Artifacts []Artifact `json:"artifacts"`
	CreatedAt time.Time  `json:"created_at"`
}

// NewEntry creates an empty entry for key.
func NewEntry(key, format string) *Entry {
	return &Entry{Key: key, Format: format, CreatedAt: time.Now()}
}

// AddArtifact appends one produced artifact to the entry.
func (e *Entry) AddArtifact(path, checksum string) {
	e.Artifacts = append(e.Artifacts, Artifact{
		Path:      path,
		Checksum:  checksum,
		WrittenAt: time.Now(),
	})
}

// Paths returns the artifact paths in recorded order.
func (e *Entry) Paths() []string {
	out := make([]string, len(e.Artifacts))
	for i, a := range e.Artifacts {
		out[i] = a.Path
	}
	return out
}

// Verify reports whether every artifact still exists on disk with a
// matching content checksum. A false result means the entry must be
// treated as a miss and re-exported.
func (e *Entry) Verify() bool {
	if e == nil || len(e.Artifacts) == 0 {
		return false
	}
	for _, a := range e.Artifacts {
		if _, err := os.Stat(a.Path); err != nil {
			return false
		}
		sum, err := ChecksumFile(a.Path)
		if err != nil || sum != a.Checksum {
			return false
		}
	}
	return true
}

// Index is the persisted options-key → entry store. Implementations must
// be safe for concurrent use; the pipeline updates entries only after
// artifacts are fully written.
type Index interface {
	// Get retrieves the entry for key. The boolean reports presence;
	// callers still Verify before trusting the artifacts.
	Get(ctx context.Context, key string) (*Entry, bool, error)

	// Put stores or overwrites the entry for key.
	Put(ctx context.Context, key string, entry *Entry) error

	// Invalidate removes the entry for key. Removing a missing key is
	// not an error.
	Invalidate(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
