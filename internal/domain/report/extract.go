package report

// Извлечение ссылок/упоминаний/хэштегов из произвольного текста и из разметки
// сообщений Telegram. Два источника дополняют друг друга: regex находит то,
// что написано буквально, а entities — то, что скрыто за гиперссылками.

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf16"

	"github.com/gotd/td/tg"
)

var (
	// urlRe находит голые http(s)-ссылки в тексте.
	urlRe = regexp.MustCompile(`(?i)https?://[^\s]+`)
	// mentionRe находит @упоминания; публичные имена в Telegram не короче 5 символов.
	mentionRe = regexp.MustCompile(`@([A-Za-z0-9_]{5,})`)
	// hashtagRe находит #хэштеги от двух символов, включая не-латиницу.
	hashtagRe = regexp.MustCompile(`#([\p{L}\p{N}_]{2,})`)
)

// TextEntities — результат извлечения сущностей из текста.
type TextEntities struct {
	URLs     []string
	Mentions []string
	Hashtags []string
}

// ExtractEntities вычленяет из текста ссылки, упоминания и хэштеги.
// Для пустого текста возвращаются пустые (не nil) срезы: отчёты сериализуются
// предсказуемо.
func ExtractEntities(text string) TextEntities {
	result := TextEntities{
		URLs:     []string{},
		Mentions: []string{},
		Hashtags: []string{},
	}
	if text == "" {
		return result
	}

	result.URLs = append(result.URLs, urlRe.FindAllString(text, -1)...)
	for _, m := range mentionRe.FindAllStringSubmatch(text, -1) {
		result.Mentions = append(result.Mentions, m[1])
	}
	for _, m := range hashtagRe.FindAllStringSubmatch(text, -1) {
		result.Hashtags = append(result.Hashtags, m[1])
	}
	return result
}

// RichEntities достаёт сущности из разметки сообщения. Смещения в entities
// Telegram считает в кодовых единицах UTF-16, поэтому текст сначала
// перекодируется; срез по байтам дал бы мусор на любом не-ASCII тексте.
func RichEntities(text string, entities []tg.MessageEntityClass) TextEntities {
	result := TextEntities{
		URLs:     []string{},
		Mentions: []string{},
		Hashtags: []string{},
	}
	if len(entities) == 0 {
		return result
	}

	encoded := utf16.Encode([]rune(text))
	for _, entity := range entities {
		switch e := entity.(type) {
		case *tg.MessageEntityTextURL:
			result.URLs = append(result.URLs, e.URL)
		case *tg.MessageEntityURL:
			if s := sliceUTF16(encoded, e.Offset, e.Length); s != "" {
				result.URLs = append(result.URLs, s)
			}
		case *tg.MessageEntityMention:
			if s := sliceUTF16(encoded, e.Offset, e.Length); s != "" {
				result.Mentions = append(result.Mentions, strings.TrimPrefix(s, "@"))
			}
		case *tg.MessageEntityHashtag:
			if s := sliceUTF16(encoded, e.Offset, e.Length); s != "" {
				result.Hashtags = append(result.Hashtags, strings.TrimPrefix(s, "#"))
			}
		}
	}
	return result
}

// Merge объединяет два набора сущностей: сортировка + дедупликация.
func Merge(a, b TextEntities) TextEntities {
	return TextEntities{
		URLs:     sortedUnique(a.URLs, b.URLs),
		Mentions: sortedUnique(a.Mentions, b.Mentions),
		Hashtags: sortedUnique(a.Hashtags, b.Hashtags),
	}
}

// sliceUTF16 вырезает подстроку по смещениям UTF-16; выход за границы
// трактуется как отсутствие сущности, а не как ошибка.
func sliceUTF16(encoded []uint16, offset, length int) string {
	if offset < 0 || length <= 0 || offset+length > len(encoded) {
		return ""
	}
	return string(utf16.Decode(encoded[offset : offset+length]))
}

// sortedUnique сливает срезы, сортирует и убирает дубликаты. Пустой результат —
// пустой срез, не nil.
func sortedUnique(parts ...[]string) []string {
	seen := make(map[string]struct{})
	result := []string{}
	for _, part := range parts {
		for _, v := range part {
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			result = append(result, v)
		}
	}
	sort.Strings(result)
	return result
}
