package report

import (
	"time"

	"github.com/gotd/td/tg"

	"tg-osint/internal/infra/timeutil"
)

// Словесные статусы присутствия. Telegram скрывает точное время за
// градациями recently/last week/last month, когда пользователь ограничил
// видимость «последнего визита».
const (
	StatusNever     = "never"
	StatusOnline    = "online"
	StatusOffline   = "offline"
	StatusRecently  = "recently"
	StatusLastWeek  = "last week"
	StatusLastMonth = "last month"
	StatusUnknown   = "unknown"
)

// PresenceOf переводит tg.UserStatusClass в пару (статус, метка последнего
// визита). Метка заполняется только для offline-статуса с раскрытым временем.
func PresenceOf(status tg.UserStatusClass, loc *time.Location) (string, string) {
	switch s := status.(type) {
	case *tg.UserStatusEmpty:
		return StatusNever, ""
	case *tg.UserStatusOnline:
		return StatusOnline, ""
	case *tg.UserStatusOffline:
		return StatusOffline, timeutil.FormatUnix(s.WasOnline, loc)
	case *tg.UserStatusRecently:
		return StatusRecently, ""
	case *tg.UserStatusLastWeek:
		return StatusLastWeek, ""
	case *tg.UserStatusLastMonth:
		return StatusLastMonth, ""
	default:
		return StatusUnknown, ""
	}
}
