// Package photos скачивает фотографии профиля разрешённой сущности в локальный
// каталог. Скачивание всегда вторично по отношению к отчёту: ошибки отдельных
// файлов не прерывают работу, и только flood-wait останавливает остаток
// очереди, чтобы не усугублять лимит.
package photos

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"
	"github.com/gotd/td/tgerr"

	"tg-osint/internal/adapters/telegram/osint"
	"tg-osint/internal/infra/logger"
	"tg-osint/internal/infra/storage"
	"tg-osint/internal/infra/timeutil"
)

// fetcher абстрагирует собственно передачу файла. Нужен для тестов: остальная
// логика (имена файлов, лимит, политика ошибок) проверяется без сети.
type fetcher interface {
	ToPath(ctx context.Context, loc tg.InputFileLocationClass, path string) error
}

// apiFetcher — боевая реализация поверх загрузчика gotd.
type apiFetcher struct {
	client downloader.Client
	dl     *downloader.Downloader
}

func (f *apiFetcher) ToPath(ctx context.Context, loc tg.InputFileLocationClass, path string) error {
	_, err := f.dl.Download(f.client, loc).ToPath(ctx, path)
	return err
}

// Service скачивает фотографии в подкаталог dir/<peer id>/.
type Service struct {
	fetch fetcher
	dir   string
	limit int
	loc   *time.Location
}

// NewService собирает загрузчик. limit ограничивает общее число файлов за
// запуск; значения <= 0 означают «без ограничения».
func NewService(client downloader.Client, dir string, limit int, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		fetch: &apiFetcher{client: client, dl: downloader.NewDownloader()},
		dir:   dir,
		limit: limit,
		loc:   loc,
	}
}

// Download скачивает текущую фотографию профиля и историю (для пользователей)
// и возвращает пути сохранённых файлов. Ошибка возвращается только при
// flood-wait: частичный результат при этом сохраняется.
func (s *Service) Download(ctx context.Context, target *osint.Target) ([]string, error) {
	if target == nil || (target.CurrentPhotoID == 0 && len(target.History) == 0) {
		return nil, nil
	}

	dir := filepath.Join(s.dir, strconv.FormatInt(target.ID, 10))
	// EnsureDir создаёт родителя переданного пути, поэтому путь указывает
	// внутрь целевого каталога.
	if err := storage.EnsureDir(filepath.Join(dir, "photo.jpg")); err != nil {
		return nil, errors.Wrap(err, "create photos dir")
	}

	var downloaded []string

	if target.CurrentPhotoID != 0 {
		path := filepath.Join(dir, fmt.Sprintf("%d.jpg", target.CurrentPhotoID))
		err := s.fetch.ToPath(ctx, &tg.InputPeerPhotoFileLocation{
			Big:     true,
			Peer:    target.Peer,
			PhotoID: target.CurrentPhotoID,
		}, path)
		switch {
		case err == nil:
			downloaded = append(downloaded, path)
		case isFlood(err):
			return downloaded, errors.Wrap(err, "download current photo")
		default:
			logger.Warnf("download current photo %d: %v", target.CurrentPhotoID, err)
		}
	}

	for i, photo := range target.History {
		if s.limit > 0 && len(downloaded) >= s.limit {
			break
		}
		// Текущая фотография уже скачана по location пира.
		if photo.ID == target.CurrentPhotoID {
			continue
		}

		path := filepath.Join(dir, s.fileName(i, photo))
		err := s.fetch.ToPath(ctx, &tg.InputPhotoFileLocation{
			ID:            photo.ID,
			AccessHash:    photo.AccessHash,
			FileReference: photo.FileReference,
			ThumbSize:     largestSizeType(photo.Sizes),
		}, path)
		switch {
		case err == nil:
			downloaded = append(downloaded, path)
		case isFlood(err):
			return downloaded, errors.Wrapf(err, "download photo %d", photo.ID)
		default:
			logger.Warnf("download photo %d: %v", photo.ID, err)
		}
	}
	return downloaded, nil
}

// fileName строит имя файла из даты загрузки фотографии; без даты — из
// идентификатора.
func (s *Service) fileName(i int, photo *tg.Photo) string {
	if compact := timeutil.FormatUnixCompact(photo.Date, s.loc); compact != "" {
		return compact + ".jpg"
	}
	if photo.ID != 0 {
		return fmt.Sprintf("photo_%d.jpg", photo.ID)
	}
	return fmt.Sprintf("photo_%d.jpg", i)
}

// largestSizeType выбирает тип самого крупного варианта фотографии: Telegram
// требует указать thumb size явно, а отчёту нужен максимум качества.
func largestSizeType(sizes []tg.PhotoSizeClass) string {
	var (
		best     string
		bestArea int
	)
	for _, sc := range sizes {
		var (
			typ  string
			area int
		)
		switch size := sc.(type) {
		case *tg.PhotoSize:
			typ, area = size.Type, size.W*size.H
		case *tg.PhotoSizeProgressive:
			typ, area = size.Type, size.W*size.H
		case *tg.PhotoCachedSize:
			typ, area = size.Type, size.W*size.H
		default:
			continue
		}
		if area > bestArea {
			best, bestArea = typ, area
		}
	}
	return best
}

// isFlood отличает flood-wait от остальных ошибок загрузки.
func isFlood(err error) bool {
	_, ok := tgerr.AsFloodWait(err)
	return ok
}
