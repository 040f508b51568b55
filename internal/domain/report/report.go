// Package report описывает плоские записи-отчёты, которые утилита строит из
// ответов Telegram API, и чистые функции их наполнения (извлечение ссылок,
// упоминаний и хэштегов, статусы «последний раз в сети»). Записи неизменяемы
// после создания и сериализуются в JSON со стабильным порядком ключей
// (порядок полей структуры).
package report

// Report — общий тип для всех записей-отчётов. Рендерер выбирает формат
// вывода по конкретному типу; ReportKind дублирует поле kind для логов.
type Report interface {
	ReportKind() string
}

// PhotoRef — ссылка на фотографию профиля: идентификатор и дата загрузки.
// Ссылки перечисляются в отчёте независимо от того, скачивались ли файлы.
type PhotoRef struct {
	ID   int64  `json:"id"`
	Date string `json:"date,omitempty"`
}

// Reaction — агрегированная реакция на сообщение.
type Reaction struct {
	Emoji string `json:"emoji"`
	Count int    `json:"count"`
}

// MediaMeta — метаданные вложения сообщения. Поля документа заполняются
// только для медиа с документом (файлы, видео, аудио).
type MediaMeta struct {
	Type     string `json:"type"`
	MimeType string `json:"mimeType,omitempty"`
	Size     int64  `json:"size,omitempty"`
	FileName string `json:"fileName,omitempty"`
	HasPhoto bool   `json:"hasPhoto,omitempty"`
}

// UserReport — публично видимая информация о пользователе.
// Status — словесный статус (online/offline/recently/...), LastSeen — метка
// времени последнего выхода в сеть, когда Telegram её раскрывает.
type UserReport struct {
	Kind              string     `json:"kind"`
	ID                int64      `json:"id"`
	FirstName         string     `json:"firstName"`
	LastName          string     `json:"lastName"`
	Username          string     `json:"username"`
	Bio               string     `json:"bio"`
	Status            string     `json:"status"`
	LastSeen          string     `json:"lastSeen"`
	BioURLs           []string   `json:"bioUrls,omitempty"`
	BioMentions       []string   `json:"bioMentions,omitempty"`
	BioHashtags       []string   `json:"bioHashtags,omitempty"`
	Premium           bool       `json:"premium"`
	Verified          bool       `json:"verified"`
	Bot               bool       `json:"bot"`
	Scam              bool       `json:"scam"`
	Fake              bool       `json:"fake"`
	Support           bool       `json:"support"`
	BotInfoVersion    int        `json:"botInfoVersion,omitempty"`
	RestrictionReason string     `json:"restrictionReason,omitempty"`
	EmojiStatus       bool       `json:"emojiStatus"`
	EmojiStatusUntil  string     `json:"emojiStatusUntil,omitempty"`
	HasVideoAvatar    bool       `json:"hasVideoAvatar"`
	CommonChatsCount  int        `json:"commonChatsCount,omitempty"`
	PhotosCount       int        `json:"photosCount,omitempty"`
	PhotoRefs         []PhotoRef `json:"photoRefs"`
	DownloadedPhotos  []string   `json:"downloadedPhotos,omitempty"`
	DownloadError     string     `json:"downloadError,omitempty"`
}

func (r *UserReport) ReportKind() string { return r.Kind }

// ChannelReport — информация о канале или супергруппе.
type ChannelReport struct {
	Kind                string     `json:"kind"`
	ID                  int64      `json:"id"`
	Title               string     `json:"title"`
	Username            string     `json:"username"`
	Description         string     `json:"description"`
	CreatedAt           string     `json:"createdAt"`
	MemberCount         int        `json:"memberCount"`
	DescriptionURLs     []string   `json:"descriptionUrls,omitempty"`
	DescriptionMentions []string   `json:"descriptionMentions,omitempty"`
	DescriptionHashtags []string   `json:"descriptionHashtags,omitempty"`
	Megagroup           bool       `json:"megagroup"`
	Broadcast           bool       `json:"broadcast"`
	Forum               bool       `json:"forum"`
	Gigagroup           bool       `json:"gigagroup"`
	Verified            bool       `json:"verified"`
	Scam                bool       `json:"scam"`
	Fake                bool       `json:"fake"`
	Restricted          bool       `json:"restricted"`
	AdminsCount         int        `json:"adminsCount,omitempty"`
	KickedCount         int        `json:"kickedCount,omitempty"`
	BannedCount         int        `json:"bannedCount,omitempty"`
	OnlineCount         int        `json:"onlineCount,omitempty"`
	SlowmodeSeconds     int        `json:"slowmodeSeconds,omitempty"`
	LinkedChatID        int64      `json:"linkedChatId,omitempty"`
	StickerSet          string     `json:"stickerSet,omitempty"`
	ThemeEmoticon       string     `json:"themeEmoticon,omitempty"`
	PhotoRefs           []PhotoRef `json:"photoRefs"`
	DownloadedPhotos    []string   `json:"downloadedPhotos,omitempty"`
	DownloadError       string     `json:"downloadError,omitempty"`
}

func (r *ChannelReport) ReportKind() string { return r.Kind }

// ChatReport — информация о базовой (немигрировавшей) группе. Telegram
// раскрывает о таких группах заметно меньше, чем о каналах.
type ChatReport struct {
	Kind             string     `json:"kind"`
	ID               int64      `json:"id"`
	Title            string     `json:"title"`
	CreatedAt        string     `json:"createdAt"`
	MemberCount      int        `json:"memberCount,omitempty"`
	PhotoRefs        []PhotoRef `json:"photoRefs"`
	DownloadedPhotos []string   `json:"downloadedPhotos,omitempty"`
	DownloadError    string     `json:"downloadError,omitempty"`
}

func (r *ChatReport) ReportKind() string { return r.Kind }

// MessageReport — публичное сообщение канала. Links/Mentions/Hashtags — объединение
// сущностей из текста (regex) и разметки сообщения (entities), отсортированное
// и без дубликатов.
type MessageReport struct {
	Kind      string     `json:"kind"`
	Channel   string     `json:"channel"`
	ID        int        `json:"id"`
	Date      string     `json:"date"`
	EditDate  string     `json:"editDate,omitempty"`
	Text      string     `json:"text"`
	Views     int        `json:"views,omitempty"`
	Forwards  int        `json:"forwards,omitempty"`
	Replies   int        `json:"replies,omitempty"`
	Reactions []Reaction `json:"reactions,omitempty"`
	FwdFrom   string     `json:"fwdFrom,omitempty"`
	ViaBotID  int64      `json:"viaBotId,omitempty"`
	ReplyToID int        `json:"replyToId,omitempty"`
	Links     []string   `json:"links"`
	Mentions  []string   `json:"mentions"`
	Hashtags  []string   `json:"hashtags"`
	MediaMeta *MediaMeta `json:"mediaMeta,omitempty"`
}

func (r *MessageReport) ReportKind() string { return r.Kind }
