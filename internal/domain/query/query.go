// Package query описывает единичный запрос утилиты: режим поиска
// (username / числовой id / телефон / ссылка на сообщение) и параметры вывода.
// Запрос собирается из аргументов командной строки один раз и дальше не
// изменяется. Пакет не ходит в сеть: только валидация и нормализация входа.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

// ErrUsage — маркер ошибки использования CLI: неверная комбинация флагов или
// некорректное значение. Главный обработчик печатает справку и завершает
// процесс с кодом 1.
var ErrUsage = errors.New("usage error")

// Mode перечисляет режимы поиска. Ровно один режим активен в запросе.
type Mode string

const (
	ModeUsername Mode = "username"
	ModeID       Mode = "id"
	ModePhone    Mode = "phone"
	ModeURL      Mode = "url"
)

// Options — параметры вывода и побочных действий, общие для всех режимов.
type Options struct {
	JSON        bool   // сериализовать отчёт в JSON вместо текстового блока
	Photos      bool   // скачивать фотографии профиля
	LimitPhotos int    // максимум исторических фотографий (0 — без ограничения)
	Timezone    string // таймзона для дат в отчёте
	NoColor     bool   // отключить цветной вывод
	Raw         bool   // дамп сырого объекта сообщения (только режим url, текстовый вывод)
}

// MessageRef — разобранная ссылка на публичное сообщение.
// Заполнено либо Channel (публичное имя), либо InternalID (форма /c/<id>/).
type MessageRef struct {
	Channel    string
	InternalID int64
	MsgID      int
}

// Request — неизменяемый запрос, собранный из CLI. Потребляется один раз.
type Request struct {
	Mode     Mode
	Username string
	ID       int64
	Phone    string
	Message  MessageRef
	Options  Options
}

// Params — сырые значения флагов до валидации. IDSet отличает «-i 0» от
// отсутствия флага: flag-пакет не различает эти случаи по значению.
type Params struct {
	Username string
	ID       int64
	IDSet    bool
	Phone    string
	URL      string
	Options  Options
}

// New валидирует параметры и собирает Request. Ровно один режим должен быть
// задан; всё остальное — ErrUsage с пояснением.
func New(p Params) (*Request, error) {
	req := &Request{Options: p.Options}

	modes := 0
	if strings.TrimSpace(p.Username) != "" {
		modes++
		req.Mode = ModeUsername
		// Ведущая @ допустима, но для API имя передаётся без неё.
		req.Username = strings.TrimPrefix(strings.TrimSpace(p.Username), "@")
	}
	if p.IDSet {
		modes++
		req.Mode = ModeID
		req.ID = p.ID
	}
	if strings.TrimSpace(p.Phone) != "" {
		modes++
		req.Mode = ModePhone
		req.Phone = strings.TrimSpace(p.Phone)
	}
	if strings.TrimSpace(p.URL) != "" {
		modes++
		req.Mode = ModeURL
		ref, err := ParseMessageURL(p.URL)
		if err != nil {
			return nil, err
		}
		req.Message = ref
	}

	switch {
	case modes == 0:
		return nil, errors.Wrap(ErrUsage, "one of -u/-i/-p/-l is required")
	case modes > 1:
		return nil, errors.Wrap(ErrUsage, "flags -u/-i/-p/-l are mutually exclusive")
	}

	if req.Mode == ModeUsername && req.Username == "" {
		return nil, errors.Wrap(ErrUsage, "username must not be empty")
	}
	if req.Mode == ModeID && req.ID <= 0 {
		return nil, errors.Wrap(ErrUsage, "id must be a positive integer")
	}
	if p.Options.LimitPhotos < 0 {
		return nil, errors.Wrap(ErrUsage, "limit-photos must be non-negative")
	}

	return req, nil
}

// ParseMessageURL разбирает публичную ссылку на сообщение. Поддерживаются две
// формы: https://t.me/<channel>/<msg_id> и https://t.me/c/<internal_id>/<msg_id>.
// Прочие хосты формально допускаются (telegram.me и зеркала), важна структура пути.
func ParseMessageURL(raw string) (MessageRef, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return MessageRef{}, errors.Wrapf(ErrUsage, "invalid message URL %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return MessageRef{}, errors.Wrapf(ErrUsage, "message URL %q must use http(s)", raw)
	}

	parts := splitPath(u.Path)
	if len(parts) < 2 {
		return MessageRef{}, errors.Wrap(ErrUsage,
			"unsupported URL: expected /<channel>/<message_id> or /c/<internal_id>/<message_id>")
	}

	if parts[0] == "c" {
		if len(parts) < 3 {
			return MessageRef{}, errors.Wrap(ErrUsage, "unsupported /c/ URL format")
		}
		internalID, idErr := strconv.ParseInt(parts[1], 10, 64)
		if idErr != nil {
			return MessageRef{}, errors.Wrap(ErrUsage, "internal channel id must be an integer")
		}
		msgID, msgErr := strconv.Atoi(parts[2])
		if msgErr != nil {
			return MessageRef{}, errors.Wrap(ErrUsage, "message id must be an integer")
		}
		return MessageRef{InternalID: internalID, MsgID: msgID}, nil
	}

	msgID, msgErr := strconv.Atoi(parts[1])
	if msgErr != nil {
		return MessageRef{}, errors.Wrap(ErrUsage, "message id must be an integer")
	}
	return MessageRef{Channel: parts[0], MsgID: msgID}, nil
}

// splitPath режет путь URL на непустые сегменты.
func splitPath(path string) []string {
	raw := strings.Split(path, "/")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}
