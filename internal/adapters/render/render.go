// Package render печатает отчёты в два формата: человекочитаемый текст с
// подсветкой меток и JSON с отступами для скриптовой обработки. Текстовый
// формат пропускает пустые поля, чтобы отчёт не тонул в нулях; JSON, напротив,
// стабилен по структуре.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/go-faster/errors"

	"tg-osint/internal/domain/report"
)

// Renderer пишет отчёты в заданный writer. Цвета отключаются per-instance,
// глобальное состояние fatih/color не трогается.
type Renderer struct {
	w     io.Writer
	label *color.Color
	flag  *color.Color
}

// New собирает рендерер. noColor отключает escape-последовательности (флаг
// --no-color либо вывод не в терминал).
func New(w io.Writer, noColor bool) *Renderer {
	label := color.New(color.FgCyan, color.Bold)
	flag := color.New(color.FgYellow)
	if noColor {
		label.DisableColor()
		flag.DisableColor()
	}
	return &Renderer{w: w, label: label, flag: flag}
}

// Render печатает отчёт в выбранном формате.
func (r *Renderer) Render(rep report.Report, asJSON bool) error {
	if asJSON {
		return r.JSON(rep)
	}
	return r.Text(rep)
}

// JSON сериализует отчёт с двухпробельным отступом.
func (r *Renderer) JSON(rep report.Report) error {
	data, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal report")
	}
	_, err = fmt.Fprintln(r.w, string(data))
	return err
}

// Text печатает отчёт в человекочитаемом виде.
func (r *Renderer) Text(rep report.Report) error {
	switch v := rep.(type) {
	case *report.UserReport:
		r.userText(v)
	case *report.ChannelReport:
		r.channelText(v)
	case *report.ChatReport:
		r.chatText(v)
	case *report.MessageReport:
		r.messageText(v)
	default:
		return errors.Errorf("unknown report type %T", rep)
	}
	return nil
}

func (r *Renderer) userText(u *report.UserReport) {
	r.field("Kind", u.Kind)
	r.field("ID", strconv.FormatInt(u.ID, 10))
	r.field("Name", strings.TrimSpace(u.FirstName+" "+u.LastName))
	r.fieldUsername(u.Username)
	r.field("Bio", u.Bio)
	r.field("Status", u.Status)
	r.field("Last seen", u.LastSeen)
	r.fieldList("Bio links", u.BioURLs)
	r.fieldList("Bio mentions", u.BioMentions)
	r.fieldList("Bio hashtags", u.BioHashtags)
	r.flags(map[string]bool{
		"premium": u.Premium, "verified": u.Verified, "bot": u.Bot,
		"scam": u.Scam, "fake": u.Fake, "support": u.Support,
		"video avatar": u.HasVideoAvatar, "emoji status": u.EmojiStatus,
	})
	r.field("Emoji status until", u.EmojiStatusUntil)
	r.fieldInt("Bot info version", u.BotInfoVersion)
	r.field("Restricted", u.RestrictionReason)
	r.fieldInt("Common chats", u.CommonChatsCount)
	r.fieldInt("Profile photos", u.PhotosCount)
	r.photoRefs(u.PhotoRefs)
	r.downloads(u.DownloadedPhotos, u.DownloadError)
}

func (r *Renderer) channelText(c *report.ChannelReport) {
	r.field("Kind", c.Kind)
	r.field("ID", strconv.FormatInt(c.ID, 10))
	r.field("Title", c.Title)
	r.fieldUsername(c.Username)
	r.field("Description", c.Description)
	r.field("Created", c.CreatedAt)
	r.fieldInt("Members", c.MemberCount)
	r.fieldList("Links", c.DescriptionURLs)
	r.fieldList("Mentions", c.DescriptionMentions)
	r.fieldList("Hashtags", c.DescriptionHashtags)
	r.flags(map[string]bool{
		"megagroup": c.Megagroup, "broadcast": c.Broadcast, "forum": c.Forum,
		"gigagroup": c.Gigagroup, "verified": c.Verified, "scam": c.Scam,
		"fake": c.Fake, "restricted": c.Restricted,
	})
	r.fieldInt("Admins", c.AdminsCount)
	r.fieldInt("Kicked", c.KickedCount)
	r.fieldInt("Banned", c.BannedCount)
	r.fieldInt("Online", c.OnlineCount)
	r.fieldInt("Slowmode, sec", c.SlowmodeSeconds)
	if c.LinkedChatID != 0 {
		r.field("Linked chat", strconv.FormatInt(c.LinkedChatID, 10))
	}
	r.field("Sticker set", c.StickerSet)
	r.field("Theme emoji", c.ThemeEmoticon)
	r.photoRefs(c.PhotoRefs)
	r.downloads(c.DownloadedPhotos, c.DownloadError)
}

func (r *Renderer) chatText(c *report.ChatReport) {
	r.field("Kind", c.Kind)
	r.field("ID", strconv.FormatInt(c.ID, 10))
	r.field("Title", c.Title)
	r.field("Created", c.CreatedAt)
	r.fieldInt("Members", c.MemberCount)
	r.photoRefs(c.PhotoRefs)
	r.downloads(c.DownloadedPhotos, c.DownloadError)
}

func (r *Renderer) messageText(m *report.MessageReport) {
	r.field("Kind", m.Kind)
	r.field("Channel", m.Channel)
	r.field("ID", strconv.Itoa(m.ID))
	r.field("Date", m.Date)
	r.field("Edited", m.EditDate)
	r.field("Text", m.Text)
	r.fieldInt("Views", m.Views)
	r.fieldInt("Forwards", m.Forwards)
	r.fieldInt("Replies", m.Replies)
	if len(m.Reactions) > 0 {
		parts := make([]string, 0, len(m.Reactions))
		for _, reaction := range m.Reactions {
			parts = append(parts, fmt.Sprintf("%s %d", reaction.Emoji, reaction.Count))
		}
		r.field("Reactions", strings.Join(parts, ", "))
	}
	r.field("Forwarded from", m.FwdFrom)
	if m.ViaBotID != 0 {
		r.field("Via bot", strconv.FormatInt(m.ViaBotID, 10))
	}
	r.fieldInt("Reply to", m.ReplyToID)
	r.fieldList("Links", m.Links)
	r.fieldList("Mentions", m.Mentions)
	r.fieldList("Hashtags", m.Hashtags)
	if m.MediaMeta != nil {
		r.field("Media", mediaString(m.MediaMeta))
	}
}

// field печатает строку «метка: значение», пропуская пустые значения.
// Паддинг применяется до раскраски: escape-последовательности ломают ширину.
func (r *Renderer) field(name, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(r.w, "%s %s\n", r.label.Sprint(pad(name+":")), value)
}

func (r *Renderer) fieldUsername(username string) {
	if username != "" {
		r.field("Username", "@"+username)
	}
}

func (r *Renderer) fieldInt(name string, value int) {
	if value != 0 {
		r.field(name, strconv.Itoa(value))
	}
}

func (r *Renderer) fieldList(name string, values []string) {
	if len(values) > 0 {
		r.field(name, strings.Join(values, ", "))
	}
}

// flags печатает только взведённые флаги, в стабильном порядке.
func (r *Renderer) flags(set map[string]bool) {
	names := make([]string, 0, len(set))
	for _, name := range flagOrder {
		if set[name] {
			names = append(names, r.flag.Sprint(name))
		}
	}
	if len(names) > 0 {
		r.field("Flags", strings.Join(names, ", "))
	}
}

// flagOrder фиксирует порядок флагов в текстовом выводе.
var flagOrder = []string{
	"premium", "verified", "bot", "scam", "fake", "support",
	"video avatar", "emoji status",
	"megagroup", "broadcast", "forum", "gigagroup", "restricted",
}

func (r *Renderer) photoRefs(refs []report.PhotoRef) {
	for i, ref := range refs {
		value := strconv.FormatInt(ref.ID, 10)
		if ref.Date != "" {
			value += " (" + ref.Date + ")"
		}
		r.field(fmt.Sprintf("Photo %d", i+1), value)
	}
}

func (r *Renderer) downloads(paths []string, downloadErr string) {
	for _, p := range paths {
		r.field("Saved", p)
	}
	r.field("Download error", downloadErr)
}

func mediaString(m *report.MediaMeta) string {
	parts := []string{m.Type}
	if m.MimeType != "" {
		parts = append(parts, m.MimeType)
	}
	if m.FileName != "" {
		parts = append(parts, m.FileName)
	}
	if m.Size > 0 {
		parts = append(parts, fmt.Sprintf("%d bytes", m.Size))
	}
	return strings.Join(parts, ", ")
}

// pad выравнивает метки по левому краю.
func pad(s string) string {
	const width = 20
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
