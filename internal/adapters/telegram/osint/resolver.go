// Package osint — адаптер между запросом утилиты и сырым Telegram API (gotd).
// Resolver выполняет ровно один из четырёх видов поиска (username / id /
// телефон / сообщение) и строит плоский отчёт. Аутентификацию, повторы при
// flood-wait и шифрование берёт на себя клиент gotd и его middleware; здесь
// только вызовы методов API и сборка данных.
package osint

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/gotd/td/tg"

	"tg-osint/internal/domain/query"
	"tg-osint/internal/domain/report"
	"tg-osint/internal/infra/logger"
	"tg-osint/internal/infra/telegram/peercache"
)

// Target описывает разрешённую сущность для последующей загрузки фотографий:
// input peer, текущая фотография профиля и исторические фотографии (только
// для пользователей).
type Target struct {
	Peer           tg.InputPeerClass
	ID             int64
	CurrentPhotoID int64
	History        []*tg.Photo
}

// Resolver связывает сырой API gotd, кэш пиров и таймзону отчёта.
type Resolver struct {
	api   *tg.Client
	cache *peercache.Service
	loc   *time.Location

	target *Target     // сущность последнего успешного запроса
	rawMsg *tg.Message // сырое сообщение последнего запроса режима url
}

// NewResolver собирает Resolver. Кэш пиров опционален (nil допустим, тогда
// поиск по голому id всегда будет отвечать «не найдено»).
func NewResolver(api *tg.Client, cache *peercache.Service, loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.UTC
	}
	return &Resolver{api: api, cache: cache, loc: loc}
}

// Resolve выполняет запрос и возвращает отчёт. Ошибки классифицированы
// (LookupError); вызывающий транслирует категорию в код выхода.
func (r *Resolver) Resolve(ctx context.Context, req *query.Request) (report.Report, error) {
	switch req.Mode {
	case query.ModeUsername:
		return r.byUsername(ctx, req.Username)
	case query.ModeID:
		return r.byID(ctx, req.ID)
	case query.ModePhone:
		return r.byPhone(ctx, req.Phone)
	case query.ModeURL:
		return r.byMessageRef(ctx, req.Message)
	default:
		return nil, errors.Errorf("unsupported query mode %q", req.Mode)
	}
}

// Target возвращает сущность последнего успешного запроса (для загрузки
// фотографий); nil, если запрос ещё не выполнялся или был о сообщении.
func (r *Resolver) Target() *Target {
	return r.target
}

// RawMessage возвращает сырой объект сообщения последнего запроса режима url.
func (r *Resolver) RawMessage() *tg.Message {
	return r.rawMsg
}

// byUsername резолвит публичное имя и строит отчёт по типу сущности.
func (r *Resolver) byUsername(ctx context.Context, username string) (report.Report, error) {
	resolved, err := r.api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
		Username: username,
	})
	if err != nil {
		return nil, classify(err, "resolve username "+username)
	}

	switch peer := resolved.Peer.(type) {
	case *tg.PeerUser:
		user, ok := findUser(resolved.Users, peer.UserID)
		if !ok {
			return nil, notFoundf("resolved peer %d is missing from response users", peer.UserID)
		}
		return r.userReport(ctx, user)
	case *tg.PeerChannel:
		channel, ok := findChannel(resolved.Chats, peer.ChannelID)
		if !ok {
			return nil, notFoundf("resolved peer %d is missing from response chats", peer.ChannelID)
		}
		return r.channelReport(ctx, channel)
	case *tg.PeerChat:
		chat, ok := findChat(resolved.Chats, peer.ChatID)
		if !ok {
			return nil, notFoundf("resolved peer %d is missing from response chats", peer.ChatID)
		}
		return r.chatReport(chat), nil
	default:
		return nil, notFoundf("username %q resolved to unsupported peer %T", username, peer)
	}
}

// byID ищет сущность по числовому идентификатору. Telegram требует access
// hash, который нельзя вычислить локально, поэтому источником служит кэш
// пиров, наполненный предыдущими запусками.
func (r *Resolver) byID(ctx context.Context, id int64) (report.Report, error) {
	if r.cache == nil {
		return nil, notFoundf("peer cache is disabled; resolve id %d by username first", id)
	}

	if ref, ok, err := r.cache.Get(peercache.KindUser, id); err != nil {
		return nil, errors.Wrap(err, "peer cache lookup")
	} else if ok {
		return r.userByRef(ctx, ref)
	}

	if ref, ok, err := r.cache.Get(peercache.KindChannel, id); err != nil {
		return nil, errors.Wrap(err, "peer cache lookup")
	} else if ok {
		return r.channelByRef(ctx, ref)
	}

	if _, ok, err := r.cache.Get(peercache.KindChat, id); err != nil {
		return nil, errors.Wrap(err, "peer cache lookup")
	} else if ok {
		return r.chatByID(ctx, id)
	}

	return nil, notFoundf("id %d is not in the local peer cache; look it up by @username or phone once", id)
}

// byPhone импортирует номер как временный контакт (единственный публичный
// способ найти пользователя по телефону), строит отчёт и удаляет контакт.
func (r *Resolver) byPhone(ctx context.Context, phone string) (report.Report, error) {
	imported, err := r.api.ContactsImportContacts(ctx, []tg.InputPhoneContact{{
		ClientID:  0,
		Phone:     phone,
		FirstName: "Temp",
		LastName:  "Contact",
	}})
	if err != nil {
		return nil, classify(err, "import contact")
	}
	if len(imported.Users) == 0 {
		return nil, notFoundf("no telegram user with phone number %s", phone)
	}

	user, ok := imported.Users[0].(*tg.User)
	if !ok {
		return nil, notFoundf("phone %s resolved to unexpected user type %T", phone, imported.Users[0])
	}

	rep, repErr := r.userReport(ctx, user)

	// Удаление временного контакта — best-effort: отчёт уже собран, а мусорный
	// контакт в адресной книге хуже, чем молчаливый warning.
	if _, delErr := r.api.ContactsDeleteContacts(ctx, []tg.InputUserClass{&tg.InputUser{
		UserID:     user.ID,
		AccessHash: user.AccessHash,
	}}); delErr != nil {
		logger.Warnf("failed to delete temporary contact %d: %v", user.ID, delErr)
	}

	return rep, repErr
}

// findUser ищет полноценный объект пользователя в срезе ответа API.
func findUser(users []tg.UserClass, id int64) (*tg.User, bool) {
	for _, u := range users {
		if user, ok := u.(*tg.User); ok && user.ID == id {
			return user, true
		}
	}
	return nil, false
}

// findChannel ищет канал/супергруппу в срезе чатов ответа API.
func findChannel(chats []tg.ChatClass, id int64) (*tg.Channel, bool) {
	for _, c := range chats {
		if channel, ok := c.(*tg.Channel); ok && channel.ID == id {
			return channel, true
		}
	}
	return nil, false
}

// findChat ищет базовую группу в срезе чатов ответа API.
func findChat(chats []tg.ChatClass, id int64) (*tg.Chat, bool) {
	for _, c := range chats {
		if chat, ok := c.(*tg.Chat); ok && chat.ID == id {
			return chat, true
		}
	}
	return nil, false
}
