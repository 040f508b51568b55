package osint

// Классификация ошибок Telegram API в таксономию утилиты. Сетевые и
// flood-ошибки считаются преходящими (middleware уже сделал один повтор),
// остальные RPC-коды переводятся в понятные пользователю категории и коды
// выхода процесса.

import (
	"github.com/go-faster/errors"
	"github.com/gotd/td/tgerr"
)

// Kind — категория ошибки запроса.
type Kind uint8

const (
	KindTransient Kind = iota // сеть/временный сбой: повтор может помочь
	KindNotFound              // сущность не существует или имя свободно
	KindPrivate               // чат/канал приватный, требуется членство
	KindAdminRequired         // операция требует прав администратора
	KindAuth                  // авторизация отклонена сервером
	KindFlood                 // rate limit после исчерпания повторов
)

// String нужен для логов и сообщений об ошибке.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindPrivate:
		return "private"
	case KindAdminRequired:
		return "admin required"
	case KindAuth:
		return "auth"
	case KindFlood:
		return "flood wait"
	default:
		return "transient"
	}
}

// ExitCode — код завершения процесса для категории (совместим с поведением
// утилиты для скриптового использования: по коду можно различать исходы).
func (k Kind) ExitCode() int {
	switch k {
	case KindNotFound:
		return 2
	case KindPrivate:
		return 3
	case KindAdminRequired:
		return 4
	case KindFlood:
		return 5
	case KindAuth:
		return 1
	default:
		return 6
	}
}

// LookupError — ошибка выполнения запроса с категорией. Оборачивает исходную
// ошибку RPC, чтобы не терять детали для логов.
type LookupError struct {
	Kind Kind
	Err  error
}

func (e *LookupError) Error() string {
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *LookupError) Unwrap() error {
	return e.Err
}

// KindOf возвращает категорию ошибки; ok=false для ошибок вне таксономии
// (например, отменённый контекст).
func KindOf(err error) (Kind, bool) {
	var le *LookupError
	if errors.As(err, &le) {
		return le.Kind, true
	}
	return KindTransient, false
}

// classify переводит ошибку RPC в LookupError. Порядок проверок важен:
// flood-wait — частный случай RPC-ошибки и должен распознаваться первым.
func classify(err error, msg string) error {
	if err == nil {
		return nil
	}
	if wait, ok := tgerr.AsFloodWait(err); ok {
		return &LookupError{
			Kind: KindFlood,
			Err:  errors.Wrapf(err, "%s: rate limited, retry after %s", msg, wait),
		}
	}
	switch {
	case tgerr.Is(err,
		"USERNAME_NOT_OCCUPIED", "USERNAME_INVALID",
		"PHONE_NOT_OCCUPIED", "PEER_ID_INVALID",
		"CHANNEL_INVALID", "MSG_ID_INVALID", "USER_ID_INVALID"):
		return &LookupError{Kind: KindNotFound, Err: errors.Wrap(err, msg)}
	case tgerr.Is(err, "CHANNEL_PRIVATE", "CHAT_FORBIDDEN"):
		return &LookupError{Kind: KindPrivate, Err: errors.Wrap(err, msg)}
	case tgerr.Is(err, "CHAT_ADMIN_REQUIRED"):
		return &LookupError{Kind: KindAdminRequired, Err: errors.Wrap(err, msg)}
	}
	if rpc, ok := tgerr.As(err); ok {
		if rpc.Code == 401 {
			return &LookupError{Kind: KindAuth, Err: errors.Wrap(err, msg)}
		}
		return &LookupError{Kind: KindTransient, Err: errors.Wrap(err, msg)}
	}
	// Не-RPC ошибка: сеть, таймаут, отмена. Повтор на усмотрение вызывающего.
	return &LookupError{Kind: KindTransient, Err: errors.Wrap(err, msg)}
}

// notFoundf создаёт ошибку «не найдено» без исходной RPC-ошибки (например,
// когда сущности нет в локальном кэше пиров).
func notFoundf(format string, args ...any) error {
	return &LookupError{Kind: KindNotFound, Err: errors.Errorf(format, args...)}
}
