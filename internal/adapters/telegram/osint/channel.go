package osint

import (
	"context"
	"fmt"

	"github.com/gotd/td/tg"

	"tg-osint/internal/domain/report"
	"tg-osint/internal/infra/logger"
	"tg-osint/internal/infra/telegram/peercache"
	"tg-osint/internal/infra/timeutil"
)

// channelReport собирает отчёт о канале или супергруппе. Kind различает их:
// megagroup-флаг означает супергруппу, хотя на уровне API это один тип.
func (r *Resolver) channelReport(ctx context.Context, channel *tg.Channel) (*report.ChannelReport, error) {
	fullRes, err := r.api.ChannelsGetFullChannel(ctx, &tg.InputChannel{
		ChannelID:  channel.ID,
		AccessHash: channel.AccessHash,
	})
	if err != nil {
		return nil, classify(err, fmt.Sprintf("get full channel %d", channel.ID))
	}
	full, ok := fullRes.FullChat.(*tg.ChannelFull)
	if !ok {
		return nil, notFoundf("channel %d returned unexpected full chat %T", channel.ID, fullRes.FullChat)
	}

	kind := "channel"
	if channel.Megagroup {
		kind = "supergroup"
	}

	descEntities := report.ExtractEntities(full.About)

	rep := &report.ChannelReport{
		Kind:                kind,
		ID:                  channel.ID,
		Title:               channel.Title,
		Username:            channel.Username,
		Description:         full.About,
		CreatedAt:           timeutil.FormatUnix(channel.Date, r.loc),
		DescriptionURLs:     descEntities.URLs,
		DescriptionMentions: descEntities.Mentions,
		DescriptionHashtags: descEntities.Hashtags,
		Megagroup:           channel.Megagroup,
		Broadcast:           channel.Broadcast,
		Forum:               channel.Forum,
		Gigagroup:           channel.Gigagroup,
		Verified:            channel.Verified,
		Scam:                channel.Scam,
		Fake:                channel.Fake,
		Restricted:          channel.Restricted,
		PhotoRefs:           []report.PhotoRef{},
	}
	if v, ok := full.GetParticipantsCount(); ok {
		rep.MemberCount = v
	}
	if v, ok := full.GetAdminsCount(); ok {
		rep.AdminsCount = v
	}
	if v, ok := full.GetKickedCount(); ok {
		rep.KickedCount = v
	}
	if v, ok := full.GetBannedCount(); ok {
		rep.BannedCount = v
	}
	if v, ok := full.GetOnlineCount(); ok {
		rep.OnlineCount = v
	}
	if v, ok := full.GetSlowmodeSeconds(); ok {
		rep.SlowmodeSeconds = v
	}
	if v, ok := full.GetLinkedChatID(); ok {
		rep.LinkedChatID = v
	}
	if set, ok := full.GetStickerset(); ok {
		rep.StickerSet = set.ShortName
	}
	if v, ok := full.GetThemeEmoticon(); ok {
		rep.ThemeEmoticon = v
	}

	target := &Target{
		Peer: &tg.InputPeerChannel{ChannelID: channel.ID, AccessHash: channel.AccessHash},
		ID:   channel.ID,
	}
	if photo, ok := channel.Photo.(*tg.ChatPhoto); ok {
		target.CurrentPhotoID = photo.PhotoID
		rep.PhotoRefs = append(rep.PhotoRefs, report.PhotoRef{ID: photo.PhotoID})
	}
	r.target = target

	if r.cache != nil {
		if cacheErr := r.cache.RememberChannel(channel); cacheErr != nil {
			logger.Warnf("remember channel %d in peer cache: %v", channel.ID, cacheErr)
		}
	}
	return rep, nil
}

// channelByRef восстанавливает канал по записи кэша и строит отчёт.
func (r *Resolver) channelByRef(ctx context.Context, ref peercache.Ref) (*report.ChannelReport, error) {
	res, err := r.api.ChannelsGetChannels(ctx, []tg.InputChannelClass{&tg.InputChannel{
		ChannelID:  ref.ID,
		AccessHash: ref.AccessHash,
	}})
	if err != nil {
		return nil, classify(err, fmt.Sprintf("get channel %d", ref.ID))
	}
	channel, ok := findChannel(res.GetChats(), ref.ID)
	if !ok {
		return nil, notFoundf("channel %d not returned by API", ref.ID)
	}
	return r.channelReport(ctx, channel)
}

// chatReport — отчёт о базовой группе. У базовых групп нет access hash и
// публичного имени, а API раскрывает о них минимум.
func (r *Resolver) chatReport(chat *tg.Chat) *report.ChatReport {
	rep := &report.ChatReport{
		Kind:        "chat",
		ID:          chat.ID,
		Title:       chat.Title,
		CreatedAt:   timeutil.FormatUnix(chat.Date, r.loc),
		MemberCount: chat.ParticipantsCount,
		PhotoRefs:   []report.PhotoRef{},
	}

	target := &Target{Peer: &tg.InputPeerChat{ChatID: chat.ID}, ID: chat.ID}
	if photo, ok := chat.Photo.(*tg.ChatPhoto); ok {
		target.CurrentPhotoID = photo.PhotoID
		rep.PhotoRefs = append(rep.PhotoRefs, report.PhotoRef{ID: photo.PhotoID})
	}
	r.target = target

	if r.cache != nil {
		if cacheErr := r.cache.RememberChat(chat); cacheErr != nil {
			logger.Warnf("remember chat %d in peer cache: %v", chat.ID, cacheErr)
		}
	}
	return rep
}

// chatByID запрашивает базовую группу по id. Для базовых групп access hash не
// нужен, достаточно числового идентификатора.
func (r *Resolver) chatByID(ctx context.Context, id int64) (report.Report, error) {
	res, err := r.api.MessagesGetChats(ctx, []int64{id})
	if err != nil {
		return nil, classify(err, fmt.Sprintf("get chat %d", id))
	}
	chat, ok := findChat(res.GetChats(), id)
	if !ok {
		return nil, notFoundf("chat %d not returned by API", id)
	}
	return r.chatReport(chat), nil
}
