package local

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPutObjectWritesSnapshot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	a, err := New(Config{BaseDir: dir})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	uri, err := a.PutObject(context.Background(), "payloads/abc123.json", "application/json", []byte(`{"ok":true}`))
	if err != nil {
		t.Fatalf("PutObject() error = %v", err)
	}
	if !strings.HasPrefix(uri, "file://") {
		t.Fatalf("expected file:// uri, got %q", uri)
	}

	data, err := os.ReadFile(filepath.Join(dir, "payloads", "abc123.json"))
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if string(data) != `{"ok":true}` {
		t.Fatalf("unexpected snapshot content %q", data)
	}
}

func TestPutObjectRejectsTraversal(t *testing.T) {
	t.Parallel()

	a, err := New(Config{BaseDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if _, err := a.PutObject(context.Background(), "../escape.json", "", []byte("x")); err == nil {
		t.Fatal("expected path traversal rejection")
	}
	if _, err := a.PutObject(context.Background(), "  ", "", []byte("x")); err == nil {
		t.Fatal("expected empty path rejection")
	}
}

func TestNewCreatesBaseDir(t *testing.T) {
	t.Parallel()

	dir := filepath.Join(t.TempDir(), "nested", "archive")
	if _, err := New(Config{BaseDir: dir}); err != nil {
		t.Fatalf("New() error = %v", err)
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		t.Fatalf("expected base dir to exist: %v", err)
	}
}

func TestNewRejectsEmptyAndFilePaths(t *testing.T) {
	t.Parallel()

	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for empty base dir")
	}

	file := filepath.Join(t.TempDir(), "plain")
	if err := os.WriteFile(file, []byte("x"), 0o600); err != nil {
		t.Fatalf("write file: %v", err)
	}
	if _, err := New(Config{BaseDir: file}); err == nil {
		t.Fatal("expected error for non-directory base path")
	}
}
