package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
)

// FileIndex is a file-based index for CLI usage. Each entry is one JSON
// file under a hash-distributed directory layout.
type FileIndex struct {
	dir string
}

// NewFileIndex creates a file-based index in the given directory.
// The directory will be created if it doesn't exist.
func NewFileIndex(dir string) (*FileIndex, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &FileIndex{dir: dir}, nil
}

// Get retrieves the entry for key. Unreadable or corrupt entry files are
// treated as a miss and removed.
func (x *FileIndex) Get(ctx context.Context, key string) (*Entry, bool, error) {
	path := x.path(key)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		// Corrupt entry - treat as miss
		_ = os.Remove(path)
		return nil, false, nil
	}
	return &entry, true, nil
}

// Put stores the entry for key. The entry file is written via a temp
// file and rename so a concurrent reader never sees a partial entry.
func (x *FileIndex) Put(ctx context.Context, key string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	path := x.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".entry-*")
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

// Invalidate removes the entry for key.
func (x *FileIndex) Invalidate(ctx context.Context, key string) error {
	err := os.Remove(x.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// Close does nothing for the file index.
func (x *FileIndex) Close() error {
	return nil
}

// Dir returns the index directory.
func (x *FileIndex) Dir() string { return x.dir }

// path converts a key to a file path.
// Uses a hash-based directory structure to avoid too many files in one dir.
func (x *FileIndex) path(key string) string {
	hash := Hash([]byte(key))
	subdir := hash[:2]
	filename := hash[2:] + ".json"
	return filepath.Join(x.dir, subdir, filename)
}

// Ensure FileIndex implements Index.
var _ Index = (*FileIndex)(nil)
