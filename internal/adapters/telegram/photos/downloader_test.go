package photos

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"tg-osint/internal/adapters/telegram/osint"
)

// fakeFetcher записывает запрошенные пути и отдаёт подготовленные ошибки.
type fakeFetcher struct {
	paths []string
	fail  map[string]error
}

func (f *fakeFetcher) ToPath(_ context.Context, _ tg.InputFileLocationClass, path string) error {
	if err, ok := f.fail[filepath.Base(path)]; ok {
		return err
	}
	f.paths = append(f.paths, path)
	return nil
}

func testTarget(current int64, history int) *osint.Target {
	t := &osint.Target{
		Peer:           &tg.InputPeerUser{UserID: 42, AccessHash: 7},
		ID:             42,
		CurrentPhotoID: current,
	}
	for i := 0; i < history; i++ {
		t.History = append(t.History, &tg.Photo{
			ID:         int64(1000 + i),
			AccessHash: 1,
			Date:       int(time.Date(2024, 3, 1+i, 12, 0, 0, 0, time.UTC).Unix()),
			Sizes:      []tg.PhotoSizeClass{&tg.PhotoSize{Type: "y", W: 800, H: 800}},
		})
	}
	return t
}

func newTestService(f *fakeFetcher, dir string, limit int) *Service {
	return &Service{fetch: f, dir: dir, limit: limit, loc: time.UTC}
}

func TestDownloadNilTarget(t *testing.T) {
	t.Parallel()
	svc := newTestService(&fakeFetcher{}, t.TempDir(), 10)

	got, err := svc.Download(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected no files, got %v", got)
	}
}

func TestDownloadHonorsLimit(t *testing.T) {
	t.Parallel()
	fake := &fakeFetcher{}
	svc := newTestService(fake, t.TempDir(), 3)

	got, err := svc.Download(context.Background(), testTarget(500, 5))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 files (current + 2 history), got %d: %v", len(got), got)
	}
	// Текущая фотография качается первой и по имени photoID.
	if base := filepath.Base(got[0]); base != "500.jpg" {
		t.Errorf("first file = %q, want 500.jpg", base)
	}
}

func TestDownloadSkipsCurrentInHistory(t *testing.T) {
	t.Parallel()
	fake := &fakeFetcher{}
	svc := newTestService(fake, t.TempDir(), 0)

	target := testTarget(500, 2)
	target.History[0].ID = 500 // совпадает с текущей

	got, err := svc.Download(context.Background(), target)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected current + 1 history file, got %d: %v", len(got), got)
	}
}

func TestDownloadContinuesAfterFileError(t *testing.T) {
	t.Parallel()
	fake := &fakeFetcher{fail: map[string]error{
		"20240301_120000.jpg": errors.New("FILE_REFERENCE_EXPIRED"),
	}}
	svc := newTestService(fake, t.TempDir(), 0)

	got, err := svc.Download(context.Background(), testTarget(500, 2))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 files despite one failure, got %d: %v", len(got), got)
	}
}

func TestDownloadAbortsOnFlood(t *testing.T) {
	t.Parallel()
	fake := &fakeFetcher{fail: map[string]error{
		"20240301_120000.jpg": tgerr.New(420, "FLOOD_WAIT_30"),
	}}
	svc := newTestService(fake, t.TempDir(), 0)

	got, err := svc.Download(context.Background(), testTarget(500, 3))
	if err == nil {
		t.Fatal("expected flood error")
	}
	if len(got) != 1 {
		t.Fatalf("expected only the current photo before abort, got %d: %v", len(got), got)
	}
}

func TestLargestSizeType(t *testing.T) {
	t.Parallel()
	sizes := []tg.PhotoSizeClass{
		&tg.PhotoStrippedSize{Type: "i"},
		&tg.PhotoSize{Type: "m", W: 320, H: 320},
		&tg.PhotoSizeProgressive{Type: "y", W: 1280, H: 1280},
	}
	if got := largestSizeType(sizes); got != "y" {
		t.Errorf("largestSizeType = %q, want y", got)
	}
}
