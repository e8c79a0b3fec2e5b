package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalStorage_SaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStorage(t.TempDir())

	path, err := s.Save(ctx, "file-1", "report.pdf", strings.NewReader("hello"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	r, err := s.Open(ctx, path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(r)
	r.Close()
	if string(data) != "hello" {
		t.Fatalf("round trip mismatch: %q", data)
	}

	if err := s.Delete(ctx, path); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("file should be gone after delete")
	}
	// The per-file directory goes with it
	if _, err := os.Stat(filepath.Dir(path)); !os.IsNotExist(err) {
		t.Fatal("empty per-file directory should be removed")
	}
}

func TestLocalStorage_SaveStripsDirectoryTraversal(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	s := NewLocalStorage(base)

	path, err := s.Save(ctx, "file-1", "../../etc/passwd", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	// Only the base name survives; the file stays inside the storage root
	if filepath.Base(path) != "passwd" {
		t.Fatalf("unexpected stored name: %s", path)
	}
	if !strings.HasPrefix(path, base) {
		t.Fatalf("stored outside the base path: %s", path)
	}
}

func TestLocalStorage_DeleteMissingIsNoError(t *testing.T) {
	s := NewLocalStorage(t.TempDir())
	if err := s.Delete(context.Background(), filepath.Join(t.TempDir(), "gone", "x.txt")); err != nil {
		t.Fatalf("deleting an absent file should not error, got %v", err)
	}
}
