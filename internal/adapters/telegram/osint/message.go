package osint

import (
	"context"
	"fmt"
	"strings"

	"github.com/gotd/td/tg"

	"tg-osint/internal/domain/query"
	"tg-osint/internal/domain/report"
	"tg-osint/internal/infra/telegram/peercache"
	"tg-osint/internal/infra/timeutil"
)

// byMessageRef загружает одно сообщение канала по ссылке t.me. Ссылки бывают
// двух видов: публичные (t.me/durov/42) и внутренние (t.me/c/123456/42);
// вторые резолвятся только через кэш пиров, потому что внутренний id не
// содержит access hash.
func (r *Resolver) byMessageRef(ctx context.Context, ref query.MessageRef) (report.Report, error) {
	channel, err := r.messageChannel(ctx, ref)
	if err != nil {
		return nil, err
	}

	res, err := r.api.ChannelsGetMessages(ctx, &tg.ChannelsGetMessagesRequest{
		Channel: &tg.InputChannel{ChannelID: channel.ID, AccessHash: channel.AccessHash},
		ID:      []tg.InputMessageClass{&tg.InputMessageID{ID: ref.MsgID}},
	})
	if err != nil {
		return nil, classify(err, fmt.Sprintf("get message %d from %d", ref.MsgID, channel.ID))
	}

	msg, ok := pickMessage(res, ref.MsgID)
	if !ok {
		return nil, notFoundf("message %d does not exist in %s", ref.MsgID, channelLabel(channel))
	}
	r.rawMsg = msg

	if r.cache != nil {
		// Ошибку кэша здесь можно молча игнорировать: запись не критична,
		// а warning уже пишется при построении отчёта о самом канале.
		_ = r.cache.RememberChannel(channel)
	}
	return r.messageReport(channel, msg), nil
}

// messageChannel находит канал, которому принадлежит сообщение из ссылки.
func (r *Resolver) messageChannel(ctx context.Context, ref query.MessageRef) (*tg.Channel, error) {
	if ref.Channel != "" {
		resolved, err := r.api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{
			Username: ref.Channel,
		})
		if err != nil {
			return nil, classify(err, "resolve channel "+ref.Channel)
		}
		peer, ok := resolved.Peer.(*tg.PeerChannel)
		if !ok {
			return nil, notFoundf("%q is not a channel, message links work for channels only", ref.Channel)
		}
		channel, ok := findChannel(resolved.Chats, peer.ChannelID)
		if !ok {
			return nil, notFoundf("channel %d is missing from response chats", peer.ChannelID)
		}
		return channel, nil
	}

	// Внутренняя ссылка t.me/c/<id>/<msg>: канал должен быть в кэше пиров.
	if r.cache == nil {
		return nil, notFoundf("peer cache is disabled; private channel links need a cached access hash")
	}
	cached, ok, err := r.cache.Get(peercache.KindChannel, ref.InternalID)
	if err != nil {
		return nil, classify(err, "peer cache lookup")
	}
	if !ok {
		return nil, notFoundf("channel %d is not in the local peer cache; open it by @username once", ref.InternalID)
	}

	res, err := r.api.ChannelsGetChannels(ctx, []tg.InputChannelClass{&tg.InputChannel{
		ChannelID:  cached.ID,
		AccessHash: cached.AccessHash,
	}})
	if err != nil {
		return nil, classify(err, fmt.Sprintf("get channel %d", cached.ID))
	}
	channel, ok := findChannel(res.GetChats(), cached.ID)
	if !ok {
		return nil, notFoundf("channel %d not returned by API", cached.ID)
	}
	return channel, nil
}

// messageReport превращает сырое сообщение в плоский отчёт. Ссылки, упоминания
// и хэштеги — объединение найденного в тексте и в разметке сообщения.
func (r *Resolver) messageReport(channel *tg.Channel, msg *tg.Message) *report.MessageReport {
	entities := report.Merge(
		report.ExtractEntities(msg.Message),
		report.RichEntities(msg.Message, msg.Entities),
	)

	rep := &report.MessageReport{
		Kind:     "message",
		Channel:  channelLabel(channel),
		ID:       msg.ID,
		Date:     timeutil.FormatUnix(msg.Date, r.loc),
		Text:     msg.Message,
		Links:    entities.URLs,
		Mentions: entities.Mentions,
		Hashtags: entities.Hashtags,
	}
	if v, ok := msg.GetEditDate(); ok {
		rep.EditDate = timeutil.FormatUnix(v, r.loc)
	}
	if v, ok := msg.GetViews(); ok {
		rep.Views = v
	}
	if v, ok := msg.GetForwards(); ok {
		rep.Forwards = v
	}
	if replies, ok := msg.GetReplies(); ok {
		rep.Replies = replies.Replies
	}
	if reactions, ok := msg.GetReactions(); ok {
		rep.Reactions = reactionList(reactions)
	}
	if fwd, ok := msg.GetFwdFrom(); ok {
		rep.FwdFrom = fwdString(fwd)
	}
	if v, ok := msg.GetViaBotID(); ok {
		rep.ViaBotID = v
	}
	if replyTo, ok := msg.GetReplyTo(); ok {
		if header, ok := replyTo.(*tg.MessageReplyHeader); ok {
			if id, ok := header.GetReplyToMsgID(); ok {
				rep.ReplyToID = id
			}
		}
	}
	if media, ok := msg.GetMedia(); ok {
		rep.MediaMeta = mediaMetaOf(media)
	}
	return rep
}

// pickMessage находит полноценное сообщение с нужным id в ответе API.
// MessageEmpty означает удалённое либо недоступное сообщение.
func pickMessage(res tg.MessagesMessagesClass, id int) (*tg.Message, bool) {
	var messages []tg.MessageClass
	switch m := res.(type) {
	case *tg.MessagesChannelMessages:
		messages = m.Messages
	case *tg.MessagesMessages:
		messages = m.Messages
	case *tg.MessagesMessagesSlice:
		messages = m.Messages
	default:
		return nil, false
	}
	for _, mc := range messages {
		if msg, ok := mc.(*tg.Message); ok && msg.ID == id {
			return msg, true
		}
	}
	return nil, false
}

// channelLabel — человекочитаемое имя канала для отчёта и сообщений об ошибках.
func channelLabel(channel *tg.Channel) string {
	if channel.Username != "" {
		return "@" + channel.Username
	}
	return fmt.Sprintf("c/%d", channel.ID)
}

// reactionList агрегирует реакции: обычные эмодзи как есть, кастомные — по
// идентификатору документа.
func reactionList(reactions tg.MessageReactions) []report.Reaction {
	result := make([]report.Reaction, 0, len(reactions.Results))
	for _, rc := range reactions.Results {
		var emoji string
		switch reaction := rc.Reaction.(type) {
		case *tg.ReactionEmoji:
			emoji = reaction.Emoticon
		case *tg.ReactionCustomEmoji:
			emoji = fmt.Sprintf("custom:%d", reaction.DocumentID)
		default:
			continue
		}
		result = append(result, report.Reaction{Emoji: emoji, Count: rc.Count})
	}
	return result
}

// fwdString описывает источник пересланного сообщения одной строкой.
func fwdString(fwd tg.MessageFwdHeader) string {
	if name, ok := fwd.GetFromName(); ok && name != "" {
		return name
	}
	if peer, ok := fwd.GetFromID(); ok {
		switch p := peer.(type) {
		case *tg.PeerUser:
			return fmt.Sprintf("user %d", p.UserID)
		case *tg.PeerChannel:
			return fmt.Sprintf("channel %d", p.ChannelID)
		case *tg.PeerChat:
			return fmt.Sprintf("chat %d", p.ChatID)
		}
	}
	if author, ok := fwd.GetPostAuthor(); ok {
		return author
	}
	return "unknown"
}

// mediaMetaOf извлекает метаданные вложения без скачивания самого файла.
func mediaMetaOf(media tg.MessageMediaClass) *report.MediaMeta {
	switch m := media.(type) {
	case *tg.MessageMediaPhoto:
		return &report.MediaMeta{Type: "photo", HasPhoto: true}
	case *tg.MessageMediaDocument:
		meta := &report.MediaMeta{Type: "document"}
		if doc, ok := m.GetDocument(); ok {
			if document, ok := doc.(*tg.Document); ok {
				meta.MimeType = document.MimeType
				meta.Size = document.Size
				for _, attr := range document.Attributes {
					if fn, ok := attr.(*tg.DocumentAttributeFilename); ok {
						meta.FileName = fn.FileName
						break
					}
				}
			}
		}
		return meta
	case *tg.MessageMediaWebPage:
		return &report.MediaMeta{Type: "webpage"}
	default:
		return &report.MediaMeta{Type: strings.TrimPrefix(media.TypeName(), "messageMedia")}
	}
}
