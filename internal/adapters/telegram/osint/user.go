package osint

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/gotd/td/tg"

	"tg-osint/internal/domain/report"
	"tg-osint/internal/infra/logger"
	"tg-osint/internal/infra/telegram/peercache"
	"tg-osint/internal/infra/timeutil"
)

// maxPhotoPage — размер страницы photos.getUserPhotos. Одной страницы
// достаточно: отчёту нужны счётчик и ссылки, а лимит скачивания задаётся
// отдельным флагом и применяется позже.
const maxPhotoPage = 100

// userReport собирает отчёт о пользователе: полный профиль, сущности из bio,
// статус присутствия и список фотографий. Попутно пользователь запоминается
// в кэше пиров для будущих запросов по id.
func (r *Resolver) userReport(ctx context.Context, user *tg.User) (*report.UserReport, error) {
	inputUser := &tg.InputUser{UserID: user.ID, AccessHash: user.AccessHash}

	full, err := r.api.UsersGetFullUser(ctx, inputUser)
	if err != nil {
		return nil, classify(err, fmt.Sprintf("get full user %d", user.ID))
	}

	bio, _ := full.FullUser.GetAbout()
	bioEntities := report.ExtractEntities(bio)
	status, lastSeen := report.PresenceOf(user.Status, r.loc)
	emojiSet, emojiUntil := emojiStatusOf(user.EmojiStatus, r.loc)

	rep := &report.UserReport{
		Kind:              "user",
		ID:                user.ID,
		FirstName:         user.FirstName,
		LastName:          user.LastName,
		Username:          user.Username,
		Bio:               bio,
		Status:            status,
		LastSeen:          lastSeen,
		BioURLs:           bioEntities.URLs,
		BioMentions:       bioEntities.Mentions,
		BioHashtags:       bioEntities.Hashtags,
		Premium:           user.Premium,
		Verified:          user.Verified,
		Bot:               user.Bot,
		Scam:              user.Scam,
		Fake:              user.Fake,
		Support:           user.Support,
		BotInfoVersion:    user.BotInfoVersion,
		RestrictionReason: restrictionString(user.RestrictionReason),
		EmojiStatus:       emojiSet,
		EmojiStatusUntil:  emojiUntil,
		CommonChatsCount:  full.FullUser.CommonChatsCount,
		PhotoRefs:         []report.PhotoRef{},
	}

	target := &Target{Peer: &tg.InputPeerUser{UserID: user.ID, AccessHash: user.AccessHash}, ID: user.ID}
	if photo, ok := user.Photo.(*tg.UserProfilePhoto); ok {
		rep.HasVideoAvatar = photo.HasVideo
		target.CurrentPhotoID = photo.PhotoID
	}

	// Список фотографий не критичен для отчёта: часть аккаунтов прячет
	// историю, и RPC-ошибка здесь не должна ронять весь запрос.
	count, refs, history, photoErr := r.userPhotos(ctx, inputUser)
	if photoErr != nil {
		logger.Warnf("list profile photos of %d: %v", user.ID, photoErr)
	} else {
		rep.PhotosCount = count
		rep.PhotoRefs = refs
		target.History = history
	}

	r.target = target

	if r.cache != nil {
		if cacheErr := r.cache.RememberUser(user); cacheErr != nil {
			logger.Warnf("remember user %d in peer cache: %v", user.ID, cacheErr)
		}
	}
	return rep, nil
}

// userByRef восстанавливает пользователя по записи кэша и строит отчёт.
func (r *Resolver) userByRef(ctx context.Context, ref peercache.Ref) (*report.UserReport, error) {
	users, err := r.api.UsersGetUsers(ctx, []tg.InputUserClass{&tg.InputUser{
		UserID:     ref.ID,
		AccessHash: ref.AccessHash,
	}})
	if err != nil {
		return nil, classify(err, fmt.Sprintf("get user %d", ref.ID))
	}
	user, ok := findUser(users, ref.ID)
	if !ok {
		return nil, notFoundf("user %d not returned by API", ref.ID)
	}
	return r.userReport(ctx, user)
}

// userPhotos возвращает общее число фотографий профиля, их ссылки для отчёта
// и полноценные объекты для загрузчика.
func (r *Resolver) userPhotos(
	ctx context.Context,
	user tg.InputUserClass,
) (int, []report.PhotoRef, []*tg.Photo, error) {
	res, err := r.api.PhotosGetUserPhotos(ctx, &tg.PhotosGetUserPhotosRequest{
		UserID: user,
		Offset: 0,
		MaxID:  0,
		Limit:  maxPhotoPage,
	})
	if err != nil {
		return 0, nil, nil, classify(err, "get user photos")
	}

	var (
		count  int
		photos []tg.PhotoClass
	)
	switch p := res.(type) {
	case *tg.PhotosPhotos:
		photos = p.Photos
		count = len(p.Photos)
	case *tg.PhotosPhotosSlice:
		photos = p.Photos
		count = p.Count
	default:
		return 0, nil, nil, errors.Errorf("unexpected photos response %T", res)
	}

	refs := make([]report.PhotoRef, 0, len(photos))
	history := make([]*tg.Photo, 0, len(photos))
	for _, pc := range photos {
		photo, ok := pc.(*tg.Photo)
		if !ok {
			continue
		}
		refs = append(refs, report.PhotoRef{
			ID:   photo.ID,
			Date: timeutil.FormatUnix(photo.Date, r.loc),
		})
		history = append(history, photo)
	}
	return count, refs, history, nil
}

// emojiStatusOf сообщает, установлен ли эмодзи-статус, и до какого времени
// он действует (пустая строка для бессрочного статуса).
func emojiStatusOf(status tg.EmojiStatusClass, loc *time.Location) (bool, string) {
	s, ok := status.(*tg.EmojiStatus)
	if !ok {
		return false, ""
	}
	if until, ok := s.GetUntil(); ok {
		return true, timeutil.FormatUnix(until, loc)
	}
	return true, ""
}

// restrictionString сводит причины ограничений к одной строке для отчёта.
func restrictionString(reasons []tg.RestrictionReason) string {
	if len(reasons) == 0 {
		return ""
	}
	parts := make([]string, 0, len(reasons))
	for _, reason := range reasons {
		parts = append(parts, fmt.Sprintf("%s/%s: %s", reason.Platform, reason.Reason, reason.Text))
	}
	return strings.Join(parts, "; ")
}
