package storage_test

import (
	"os"
	"path/filepath"
	"testing"

	"tg-osint/internal/infra/storage"
)

func TestAtomicWriteFileCreatesParents(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "a", "b", "file.bin")
	if err := storage.AtomicWriteFile(path, []byte("data")); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != "data" {
		t.Errorf("content = %q, want data", got)
	}
}

func TestAtomicWriteFileOverwrites(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "file.bin")
	if err := storage.AtomicWriteFile(path, []byte("old")); err != nil {
		t.Fatalf("first write: %v", err)
	}
	if err := storage.AtomicWriteFile(path, []byte("new")); err != nil {
		t.Fatalf("second write: %v", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != "new" {
		t.Errorf("content = %q, want new", got)
	}
}

func TestAtomicWriteFilePermissions(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "secret.bin")
	if err := storage.AtomicWriteFile(path, []byte("key material")); err != nil {
		t.Fatalf("write: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("permissions = %o, want 600", perm)
	}
}

func TestEnsureDirNoParent(t *testing.T) {
	t.Parallel()

	// Путь без каталога не требует действий и не должен падать.
	if err := storage.EnsureDir("plain-file.txt"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
