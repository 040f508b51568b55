// Package app связывает все слои утилиты в один прогон: подключение к
// Telegram, авторизация, выполнение запроса, опциональное скачивание
// фотографий и печать отчёта. Процесс живёт ровно один запрос: клиент
// закрывается сразу после вывода.
package app

import (
	"context"
	"runtime"
	"time"

	"github.com/go-faster/errors"
	"github.com/gotd/contrib/middleware/floodwait"
	"github.com/gotd/contrib/middleware/ratelimit"
	"github.com/gotd/td/telegram"
	tgauth "github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/telegram/dcs"
	"golang.org/x/time/rate"

	"tg-osint/internal/adapters/render"
	"tg-osint/internal/adapters/telegram/osint"
	"tg-osint/internal/adapters/telegram/photos"
	"tg-osint/internal/domain/query"
	"tg-osint/internal/domain/report"
	"tg-osint/internal/infra/config"
	"tg-osint/internal/infra/logger"
	"tg-osint/internal/infra/pr"
	"tg-osint/internal/infra/telegram/peercache"
	"tg-osint/internal/infra/telegram/session"
	"tg-osint/internal/infra/timeutil"
	"tg-osint/internal/telegram/auth"
)

// appVersion сообщается Telegram в device info при создании сессии.
const appVersion = "1.2.0"

// App — один запуск утилиты: конфиг окружения плюс разобранный запрос.
type App struct {
	env config.EnvConfig
	req *query.Request
}

// New собирает приложение из снимка конфигурации и запроса.
func New(env config.EnvConfig, req *query.Request) *App {
	return &App{env: env, req: req}
}

// Run подключается к Telegram, выполняет запрос и печатает отчёт в stdout.
// Вся диагностика идёт через logger (stderr), полезный вывод — через pr.
func (a *App) Run(ctx context.Context) error {
	loc, err := a.location()
	if err != nil {
		return errors.Wrap(query.ErrUsage, err.Error())
	}

	cache, err := peercache.Open(a.env.PeersCache)
	if err != nil {
		// Кэш ускоряет только режим -i; без него остальные режимы работают.
		logger.Warnf("peer cache unavailable: %v", err)
		cache = nil
	}
	defer func() { _ = cache.Close() }()

	opts := telegram.Options{
		SessionStorage: &session.FileStorage{Path: a.env.SessionFile},
		Middlewares: []telegram.Middleware{
			// Один повтор после flood-wait; дальше ошибка уходит пользователю.
			floodwait.NewSimpleWaiter().WithMaxRetries(1),
			ratelimit.New(rate.Limit(a.env.ThrottleRPS), a.env.ThrottleRPS*2),
		},
		Device: telegram.DeviceConfig{
			DeviceModel:   "tg-osint",
			SystemVersion: runtime.GOOS,
			AppVersion:    appVersion,
		},
	}
	if a.env.TestDC {
		opts.DCList = dcs.Test()
	}

	client := telegram.NewClient(a.env.APIID, a.env.APIHash, opts)

	return client.Run(ctx, func(ctx context.Context) error {
		flow := tgauth.NewFlow(
			auth.TerminalAuthenticator{PhoneNumber: a.env.PhoneNumber},
			tgauth.SendCodeOptions{},
		)
		if err := client.Auth().IfNecessary(ctx, flow); err != nil {
			return &osint.LookupError{Kind: osint.KindAuth, Err: errors.Wrap(err, "authorize")}
		}

		self, err := client.Self(ctx)
		if err != nil {
			return &osint.LookupError{Kind: osint.KindAuth, Err: errors.Wrap(err, "whoami")}
		}
		logger.Debugf("authorized as id=%d username=%q", self.ID, self.Username)

		resolver := osint.NewResolver(client.API(), cache, loc)
		rep, err := resolver.Resolve(ctx, a.req)
		if err != nil {
			return err
		}

		if a.req.Options.Photos {
			svc := photos.NewService(client.API(), a.env.PhotosDir, a.req.Options.LimitPhotos, loc)
			paths, dlErr := svc.Download(ctx, resolver.Target())
			attachDownloads(rep, paths, dlErr)
		}

		renderer := render.New(pr.Stdout(), a.req.Options.NoColor)
		if err := renderer.Render(rep, a.req.Options.JSON); err != nil {
			return err
		}
		if a.req.Options.Raw && !a.req.Options.JSON && resolver.RawMessage() != nil {
			pr.PP(resolver.RawMessage())
		}
		return nil
	})
}

// location выбирает таймзону отчёта: флаг --tz важнее APP_TIMEZONE.
func (a *App) location() (*time.Location, error) {
	tz := a.req.Options.Timezone
	if tz == "" {
		tz = a.env.AppTimezone
	}
	return timeutil.ParseLocation(tz)
}

// attachDownloads дописывает результат скачивания в отчёт. Ошибка загрузки не
// фатальна и попадает в отчёт строкой: данные уже собраны.
func attachDownloads(rep report.Report, paths []string, err error) {
	var errText string
	if err != nil {
		errText = err.Error()
	}
	switch v := rep.(type) {
	case *report.UserReport:
		v.DownloadedPhotos = paths
		v.DownloadError = errText
	case *report.ChannelReport:
		v.DownloadedPhotos = paths
		v.DownloadError = errText
	case *report.ChatReport:
		v.DownloadedPhotos = paths
		v.DownloadError = errText
	}
}
