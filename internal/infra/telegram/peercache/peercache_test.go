package peercache_test

import (
	"path/filepath"
	"testing"

	"github.com/gotd/td/tg"

	"tg-osint/internal/infra/telegram/peercache"
)

func openTemp(t *testing.T) *peercache.Service {
	t.Helper()
	svc, err := peercache.Open(filepath.Join(t.TempDir(), "peers.bbolt"))
	if err != nil {
		t.Fatalf("open cache: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })
	return svc
}

func TestOpenEmptyPath(t *testing.T) {
	t.Parallel()

	if _, err := peercache.Open("  "); err == nil {
		t.Fatal("expected error for empty path")
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	t.Parallel()
	svc := openTemp(t)

	in := peercache.Ref{
		Kind:       peercache.KindChannel,
		ID:         1234567890,
		AccessHash: -987654321,
		Username:   "durov",
		Title:      "Du Rove's channel",
	}
	if err := svc.Put(in); err != nil {
		t.Fatalf("put: %v", err)
	}

	got, ok, err := svc.Get(peercache.KindChannel, in.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !ok {
		t.Fatal("record not found after put")
	}
	if got.AccessHash != in.AccessHash || got.Username != in.Username || got.Title != in.Title {
		t.Errorf("got %+v, want fields of %+v", got, in)
	}
	if got.SeenAt == 0 {
		t.Error("SeenAt was not stamped on put")
	}
}

func TestGetMiss(t *testing.T) {
	t.Parallel()
	svc := openTemp(t)

	_, ok, err := svc.Get(peercache.KindUser, 42)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if ok {
		t.Fatal("unexpected hit in empty cache")
	}
}

func TestKindsDoNotCollide(t *testing.T) {
	t.Parallel()
	svc := openTemp(t)

	if err := svc.Put(peercache.Ref{Kind: peercache.KindUser, ID: 7, AccessHash: 1}); err != nil {
		t.Fatalf("put: %v", err)
	}

	if _, ok, _ := svc.Get(peercache.KindChannel, 7); ok {
		t.Error("user record leaked into channel namespace")
	}
	if _, ok, _ := svc.Get(peercache.KindUser, 7); !ok {
		t.Error("user record not found in its own namespace")
	}
}

func TestRememberUserSkipsMinConstructor(t *testing.T) {
	t.Parallel()
	svc := openTemp(t)

	// Пользователь без access hash (min-конструкция) бесполезен в кэше.
	if err := svc.RememberUser(&tg.User{ID: 42, Username: "nohash"}); err != nil {
		t.Fatalf("remember: %v", err)
	}
	if _, ok, _ := svc.Get(peercache.KindUser, 42); ok {
		t.Error("user without access hash was cached")
	}

	full := &tg.User{ID: 43, Username: "withhash"}
	full.SetAccessHash(555)
	if err := svc.RememberUser(full); err != nil {
		t.Fatalf("remember: %v", err)
	}
	got, ok, _ := svc.Get(peercache.KindUser, 43)
	if !ok {
		t.Fatal("user with access hash was not cached")
	}
	if got.AccessHash != 555 {
		t.Errorf("access hash = %d, want 555", got.AccessHash)
	}
}

func TestRememberChat(t *testing.T) {
	t.Parallel()
	svc := openTemp(t)

	if err := svc.RememberChat(&tg.Chat{ID: 99, Title: "old group"}); err != nil {
		t.Fatalf("remember: %v", err)
	}
	got, ok, _ := svc.Get(peercache.KindChat, 99)
	if !ok {
		t.Fatal("chat was not cached")
	}
	if got.Title != "old group" {
		t.Errorf("title = %q, want old group", got.Title)
	}
}
