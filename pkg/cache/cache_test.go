package cache

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeArtifact(t *testing.T, dir, name string, data []byte) Artifact {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
	return Artifact{Path: path, Checksum: ChecksumBytes(data), WrittenAt: time.Now()}
}

func TestFileIndexRoundtrip(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	idx, err := NewFileIndex(filepath.Join(dir, "index"))
	if err != nil {
		t.Fatalf("NewFileIndex: %v", err)
	}
	defer idx.Close()

	entry := &Entry{
		Key:    "export:abc:png",
		Format: "png",
		Artifacts: []Artifact{
			writeArtifact(t, dir, "0.png", []byte("png-bytes-0")),
			writeArtifact(t, dir, "1.png", []byte("png-bytes-1")),
		},
		CreatedAt: time.Now(),
	}

	if err := idx.Put(ctx, entry.Key, entry); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, hit, err := idx.Get(ctx, entry.Key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !hit {
		t.Fatal("expected hit")
	}
	if got.Format != "png" || len(got.Artifacts) != 2 {
		t.Errorf("got entry %+v", got)
	}
	if !got.Verify() {
		t.Error("entry with intact artifacts must verify")
	}

	if err := idx.Invalidate(ctx, entry.Key); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if _, hit, _ := idx.Get(ctx, entry.Key); hit {
		t.Error("entry present after Invalidate")
	}
	// Invalidating a missing key is not an error.
	if err := idx.Invalidate(ctx, entry.Key); err != nil {
		t.Errorf("Invalidate missing: %v", err)
	}
}

func TestEntryVerifyDetectsTamper(t *testing.T) {
	dir := t.TempDir()
	a := writeArtifact(t, dir, "0.png", []byte("original"))
	entry := &Entry{Key: "k", Format: "png", Artifacts: []Artifact{a}}

	if !entry.Verify() {
		t.Fatal("fresh entry must verify")
	}

	if err := os.WriteFile(a.Path, []byte("tampered"), 0644); err != nil {
		t.Fatalf("tamper: %v", err)
	}
	if entry.Verify() {
		t.Error("tampered artifact must fail verification")
	}
}

func TestEntryVerifyDetectsMissingFile(t *testing.T) {
	dir := t.TempDir()
	a := writeArtifact(t, dir, "0.png", []byte("data"))
	entry := &Entry{Key: "k", Format: "png", Artifacts: []Artifact{a}}

	os.Remove(a.Path)
	if entry.Verify() {
		t.Error("missing artifact must fail verification")
	}
}

func TestEntryVerifyEmpty(t *testing.T) {
	if (&Entry{}).Verify() {
		t.Error("entry without artifacts must not verify")
	}
	var nilEntry *Entry
	if nilEntry.Verify() {
		t.Error("nil entry must not verify")
	}
}

func TestFileIndexCorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	idx, err := NewFileIndex(dir)
	if err != nil {
		t.Fatalf("NewFileIndex: %v", err)
	}

	entry := &Entry{Key: "k1", Format: "svg"}
	if err := idx.Put(ctx, "k1", entry); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// Corrupt the stored file directly.
	path := idx.path("k1")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("corrupt: %v", err)
	}

	_, hit, err := idx.Get(ctx, "k1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if hit {
		t.Error("corrupt entry should be a miss")
	}
	if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
		t.Error("corrupt entry file should be removed")
	}
}

func TestNullIndex(t *testing.T) {
	ctx := context.Background()
	idx := NewNullIndex()
	defer idx.Close()

	if err := idx.Put(ctx, "k", &Entry{Key: "k"}); err != nil {
		t.Errorf("Put: %v", err)
	}
	_, hit, err := idx.Get(ctx, "k")
	if err != nil {
		t.Errorf("Get: %v", err)
	}
	if hit {
		t.Error("NullIndex should never hit")
	}
	if err := idx.Invalidate(ctx, "k"); err != nil {
		t.Errorf("Invalidate: %v", err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	h2 := Hash([]byte("hello"))
	if h1 != h2 {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestChecksumFileMatchesBytes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	data := []byte("some artifact bytes")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fromFile, err := ChecksumFile(path)
	if err != nil {
		t.Fatalf("ChecksumFile: %v", err)
	}
	if fromFile != ChecksumBytes(data) {
		t.Error("file and byte checksums must agree")
	}
}
