package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewFileStorage_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")

	fs, err := NewFileStorage(dir)
	if err != nil {
		t.Fatalf("NewFileStorage error: %v", err)
	}

	info, err := os.Stat(fs.Dir())
	if err != nil {
		t.Fatalf("stat output dir: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("expected %s to be a directory", fs.Dir())
	}
	if !filepath.IsAbs(fs.Dir()) {
		t.Errorf("expected absolute path, got %s", fs.Dir())
	}
}

func TestNewFileStorage_ResolvesSymlinks(t *testing.T) {
	base := t.TempDir()
	real := filepath.Join(base, "real")
	if err := os.Mkdir(real, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	link := filepath.Join(base, "link")
	if err := os.Symlink(real, link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	fs, err := NewFileStorage(link)
	if err != nil {
		t.Fatalf("NewFileStorage error: %v", err)
	}

	resolvedReal, err := filepath.EvalSymlinks(real)
	if err != nil {
		t.Fatalf("EvalSymlinks: %v", err)
	}
	if fs.Dir() != resolvedReal {
		t.Errorf("expected symlink-free dir %s, got %s", resolvedReal, fs.Dir())
	}
}

func TestFileStorage_CreateFile(t *testing.T) {
	fs, err := NewFileStorage(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStorage error: %v", err)
	}

	f, err := fs.CreateFile("foo.txt")
	if err != nil {
		t.Fatalf("CreateFile error: %v", err)
	}
	if _, err := f.WriteString("hello"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if !fs.FileExists("foo.txt") {
		t.Error("expected foo.txt to exist")
	}
	size, err := fs.GetFileSize("foo.txt")
	if err != nil {
		t.Fatalf("GetFileSize error: %v", err)
	}
	if size != 5 {
		t.Errorf("expected size 5, got %d", size)
	}
	if fs.FileExists("missing.txt") {
		t.Error("expected missing.txt to not exist")
	}
}
