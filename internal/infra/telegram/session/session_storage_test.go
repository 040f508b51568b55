package session_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/go-faster/errors"
	tdsession "github.com/gotd/td/session"

	"tg-osint/internal/infra/telegram/session"
)

func TestFileStorageRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "session.bin")
	storage := &session.FileStorage{Path: path}
	payload := []byte(`{"auth_key":"secret"}`)

	if err := storage.StoreSession(context.Background(), payload); err != nil {
		t.Fatalf("store: %v", err)
	}

	got, err := storage.LoadSession(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Errorf("loaded %q, want %q", got, payload)
	}
}

func TestFileStorageMissingFile(t *testing.T) {
	t.Parallel()

	storage := &session.FileStorage{Path: filepath.Join(t.TempDir(), "absent.bin")}
	_, err := storage.LoadSession(context.Background())
	if !errors.Is(err, tdsession.ErrNotFound) {
		t.Fatalf("err = %v, want tdsession.ErrNotFound", err)
	}
}

func TestFileStorageNilReceiver(t *testing.T) {
	t.Parallel()

	var storage *session.FileStorage
	if _, err := storage.LoadSession(context.Background()); err == nil {
		t.Error("nil storage load must fail")
	}
	if err := storage.StoreSession(context.Background(), nil); err == nil {
		t.Error("nil storage store must fail")
	}
}
