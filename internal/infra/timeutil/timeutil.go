// Пакет timeutil содержит служебные функции для работы со временем:
// парсинг таймзон и форматирование меток времени для отчётов.
package timeutil

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// reportLayout — единый формат меток времени во всех отчётах утилиты.
const reportLayout = "2006-01-02 15:04:05 MST"

// ParseLocation разбирает либо IANA-таймзону (например, "Europe/Paris"),
// либо UTC-смещение (например, "+03:00", "-0700", "UTC+3", "GMT-04:30").
// Возвращает *time.Location или ошибку.
func ParseLocation(value string) (*time.Location, error) {
	v := strings.TrimSpace(value)
	if v == "" {
		return nil, errors.New("empty timezone")
	}
	// Try IANA first.
	if loc, err := time.LoadLocation(v); err == nil {
		return loc, nil
	}
	// Try to parse UTC offset forms.
	if loc, ok := ParseUTCOffsetToLocation(v); ok {
		return loc, nil
	}
	return nil, fmt.Errorf("invalid timezone %q: not an IANA name or UTC offset", value)
}

// ParseUTCOffsetToLocation парсит строки вида "+03:00", "-0700", "UTC+3", "GMT-04:30" или "Z".
// Возвращает фиксированную таймзону и ok=true при успешном разборе.
func ParseUTCOffsetToLocation(value string) (*time.Location, bool) {
	v := strings.TrimSpace(strings.ToUpper(value))
	if v == "Z" || v == "UTC" || v == "GMT" {
		return time.FixedZone("UTC+00:00", 0), true
	}
	// Normalize optional UTC/GMT prefix
	v = strings.TrimPrefix(v, "UTC")
	v = strings.TrimPrefix(v, "GMT")
	v = strings.TrimSpace(v)
	// Patterns: +HH, -HH, +HHMM, -HHMM, +HH:MM, -HH:MM
	re := regexp.MustCompile(`^([+-])\s*(\d{1,2})(?::?(\d{2}))?$`)
	m := re.FindStringSubmatch(v)
	if m == nil {
		return nil, false
	}
	sign := 1
	if m[1] == "-" {
		sign = -1
	}
	hours, err := strconv.Atoi(m[2])
	if err != nil {
		return nil, false
	}
	mins := 0
	if m[3] != "" {
		var err2 error
		mins, err2 = strconv.Atoi(m[3])
		if err2 != nil {
			return nil, false
		}
	}
	if hours < 0 || hours > 14 || mins < 0 || mins > 59 {
		return nil, false
	}
	const (
		secInHour = 60 * 60
		secInMin  = 60
	)
	offset := sign * ((hours * secInHour) + (mins * secInMin))
	name := fmt.Sprintf("UTC%+03d:%02d", sign*hours, mins)
	return time.FixedZone(name, offset), true
}

// FormatUnix переводит unix-время (секунды, как отдаёт Telegram API) в строку
// отчётного формата в указанной таймзоне. Нулевое значение даёт пустую строку:
// в отчётах отсутствующие даты не печатаются.
func FormatUnix(sec int, loc *time.Location) string {
	if sec == 0 {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.Unix(int64(sec), 0).In(loc).Format(reportLayout)
}

// FormatUnixCompact даёт компактное представление unix-времени для имён файлов
// (история фотографий профиля): YYYYMMDD_HHMMSS.
func FormatUnixCompact(sec int, loc *time.Location) string {
	if sec == 0 {
		return ""
	}
	if loc == nil {
		loc = time.UTC
	}
	return time.Unix(int64(sec), 0).In(loc).Format("20060102_150405")
}
