// tgosint — однократная OSINT-утилита для Telegram: один запуск, один запрос
// (публичное имя, числовой id, телефон или ссылка на сообщение), отчёт в
// stdout. Диагностика пишется в stderr, чтобы вывод можно было отдавать в
// пайплайн (jq и прочее).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-faster/errors"

	"tg-osint/internal/adapters/telegram/osint"
	"tg-osint/internal/app"
	"tg-osint/internal/domain/query"
	"tg-osint/internal/infra/config"
	"tg-osint/internal/infra/logger"
	"tg-osint/internal/infra/pr"
)

// Коды выхода вне таксономии поиска.
const (
	exitUsage    = 1
	exitInternal = 10
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		username string
		id       int64
		phone    string
		msgURL   string
	)
	// Короткие и длинные формы флагов режима равнозначны.
	flag.StringVar(&username, "u", "", "lookup by public @username")
	flag.StringVar(&username, "username", "", "alias of -u")
	flag.Int64Var(&id, "i", 0, "lookup by numeric id (needs a warm peer cache)")
	flag.Int64Var(&id, "id", 0, "alias of -i")
	flag.StringVar(&phone, "p", "", "lookup by phone number in international format")
	flag.StringVar(&phone, "phone", "", "alias of -p")
	flag.StringVar(&msgURL, "l", "", "lookup a message by t.me link")
	flag.StringVar(&msgURL, "url", "", "alias of -l")

	var (
		asJSON      = flag.Bool("json", false, "print the report as indented JSON")
		withPhotos  = flag.Bool("photos", false, "download profile photos")
		limitPhotos = flag.Int("limit-photos", 10, "max photos to download per run (0 = unlimited)")
		tz          = flag.String("tz", "", "timezone for dates in the report (IANA name or UTC offset)")
		sessionFile = flag.String("session", "", "override session file path")
		noColor     = flag.Bool("no-color", false, "disable colored output")
		raw         = flag.Bool("raw", false, "dump the raw message object (with -l, text output only)")
		envPath     = flag.String("env", ".env", "path to the .env file")
	)
	flag.Usage = usage
	flag.Parse()

	// flag-пакет не отличает «-i 0» от отсутствия флага, поэтому факт
	// присутствия проверяется отдельно.
	idSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "i" || f.Name == "id" {
			idSet = true
		}
	})

	req, err := query.New(query.Params{
		Username: username,
		ID:       id,
		IDSet:    idSet,
		Phone:    phone,
		URL:      msgURL,
		Options: query.Options{
			JSON:        *asJSON,
			Photos:      *withPhotos,
			LimitPhotos: *limitPhotos,
			Timezone:    *tz,
			NoColor:     *noColor,
			Raw:         *raw,
		},
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		flag.Usage()
		return exitUsage
	}

	if err := pr.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "error: init terminal:", err)
		return exitInternal
	}

	if err := config.Load(*envPath); err != nil {
		pr.ErrPrintln("error:", err)
		return exitUsage
	}
	env := config.Env()
	if *sessionFile != "" {
		env.SessionFile = *sessionFile
	}

	logger.Init(env.LogLevel)
	logger.SetWriters(pr.Stderr(), pr.Stderr())
	if env.LogFile != "" {
		logger.InitFile(logger.FileConfig{
			Path:       env.LogFile,
			Level:      env.LogFileLevel,
			MaxSizeMB:  env.LogFileMaxSize,
			MaxBackups: env.LogFileMaxBackups,
			MaxAgeDays: env.LogFileMaxAge,
			Compress:   env.LogFileCompress,
		})
	}
	for _, w := range config.Warnings() {
		logger.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		// Ctrl+C во время ожидания кода авторизации: закрываем stdin, чтобы
		// readline вернулся и клиент завершился по контексту.
		<-ctx.Done()
		pr.InterruptReadline()
	}()

	if err := app.New(env, req).Run(ctx); err != nil {
		return exitCode(err)
	}
	return 0
}

// exitCode переводит ошибку запуска в код завершения процесса.
func exitCode(err error) int {
	switch {
	case errors.Is(err, query.ErrUsage):
		pr.ErrPrintln("error:", err)
		flag.Usage()
		return exitUsage
	case errors.Is(err, context.Canceled):
		pr.ErrPrintln("interrupted")
		return 130
	}
	if kind, ok := osint.KindOf(err); ok {
		logger.Errorf("%v", err)
		return kind.ExitCode()
	}
	logger.Errorf("%v", err)
	return exitInternal
}

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: %s [-u username | -i id | -p phone | -l url] [options]

Lookup modes (exactly one is required):
  -u  public @username of a user, channel or group
  -i  numeric id (works for peers seen in previous runs)
  -p  phone number in international format
  -l  t.me message link (t.me/<channel>/<id> or t.me/c/<internal>/<id>)

Options:
`, os.Args[0])
	flag.PrintDefaults()
	fmt.Fprint(os.Stderr, `
Environment (via .env or process env):
  TG_API_ID, TG_API_HASH, TG_PHONE   required Telegram API credentials
  SESSION_FILE, PEERS_CACHE_FILE     session and peer cache locations
  PHOTOS_DIR, APP_TIMEZONE           photos directory and report timezone
  LOG_LEVEL, LOG_FILE, THROTTLE_RPS  diagnostics and rate limiting
`)
}
