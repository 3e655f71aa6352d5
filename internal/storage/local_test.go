package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAndRemove(t *testing.T) {
	dir := t.TempDir()
	l, err := NewLocal(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	path, size, err := l.Save("report.PDF", strings.NewReader("content"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if size != int64(len("content")) {
		t.Errorf("expected size %d, got %d", len("content"), size)
	}
	if filepath.Ext(path) != ".pdf" {
		t.Errorf("expected lowercased original extension, got %q", path)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("expected file under %q, got %q", dir, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if string(data) != "content" {
		t.Errorf("unexpected stored bytes: %q", data)
	}

	if err := l.Remove(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("expected file to be removed")
	}
}

func TestSave_UniqueNames(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	p1, _, err := l.Save("a.docx", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p2, _, err := l.Save("a.docx", strings.NewReader("y"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p1 == p2 {
		t.Errorf("expected unique stored paths, both were %q", p1)
	}
}

func TestRemove_MissingFileTolerated(t *testing.T) {
	l, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := l.Remove(filepath.Join(t.TempDir(), "gone.pdf")); err != nil {
		t.Fatalf("missing file must not be an error, got %v", err)
	}
}

func TestNewLocal_CreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "uploads")
	if _, err := NewLocal(dir); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		t.Fatalf("expected directory to exist, err=%v", err)
	}
}
