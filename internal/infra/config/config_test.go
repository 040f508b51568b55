package config

import (
	"path/filepath"
	"strings"
	"testing"
)

// setRequired выставляет обязательные переменные окружения валидными значениями.
func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("TG_API_ID", "12345")
	t.Setenv("TG_API_HASH", "0123456789abcdef0123456789abcdef")
	t.Setenv("TG_PHONE", "+33612345678")
}

// clearOptional сбрасывает необязательные переменные, чтобы тест не зависел от
// окружения процесса.
func clearOptional(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"THROTTLE_RPS", "LOG_LEVEL", "SESSION_FILE", "PEERS_CACHE_FILE",
		"PHOTOS_DIR", "TEST_DC", "APP_TIMEZONE", "TZ", "LOG_FILE",
		"LOG_FILE_LEVEL", "LOG_FILE_MAX_SIZE_MB", "LOG_FILE_MAX_BACKUPS",
		"LOG_FILE_MAX_AGE_DAYS", "LOG_FILE_COMPRESS",
	} {
		t.Setenv(name, "")
	}
}

// missingEnv указывает на заведомо отсутствующий .env: конфиг должен опереться
// на окружение процесса и лишь добавить предупреждение.
func missingEnv(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "does-not-exist.env")
}

func TestLoadConfigRequiresCredentials(t *testing.T) {
	clearOptional(t)

	tests := []struct {
		name  string
		unset string
	}{
		{name: "no api id", unset: "TG_API_ID"},
		{name: "no api hash", unset: "TG_API_HASH"},
		{name: "no phone", unset: "TG_PHONE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.unset, "")

			if _, err := loadConfig(missingEnv(t)); err == nil {
				t.Fatalf("expected error without %s", tt.unset)
			}
		})
	}
}

func TestLoadConfigRejectsBadAPIID(t *testing.T) {
	setRequired(t)
	clearOptional(t)
	t.Setenv("TG_API_ID", "not-a-number")

	if _, err := loadConfig(missingEnv(t)); err == nil {
		t.Fatal("expected error for non-integer TG_API_ID")
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	setRequired(t)
	clearOptional(t)

	cfg, err := loadConfig(missingEnv(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	env := cfg.Env
	if env.APIID != 12345 {
		t.Errorf("APIID = %d, want 12345", env.APIID)
	}
	if env.ThrottleRPS != defaultThrottleRPS {
		t.Errorf("ThrottleRPS = %d, want %d", env.ThrottleRPS, defaultThrottleRPS)
	}
	if env.LogLevel != defaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", env.LogLevel, defaultLogLevel)
	}
	if env.SessionFile != defaultSessionFile {
		t.Errorf("SessionFile = %q, want %q", env.SessionFile, defaultSessionFile)
	}
	if env.PeersCache != defaultPeersCache {
		t.Errorf("PeersCache = %q, want %q", env.PeersCache, defaultPeersCache)
	}
	if env.PhotosDir != defaultPhotosDir {
		t.Errorf("PhotosDir = %q, want %q", env.PhotosDir, defaultPhotosDir)
	}
	if env.AppTimezone != defaultAppTimezone {
		t.Errorf("AppTimezone = %q, want %q", env.AppTimezone, defaultAppTimezone)
	}
	if env.TestDC {
		t.Error("TestDC must be off by default")
	}
	if env.LogFile != "" {
		t.Errorf("LogFile = %q, want empty", env.LogFile)
	}
}

func TestLoadConfigInvalidValuesFallBackWithWarnings(t *testing.T) {
	setRequired(t)
	clearOptional(t)
	t.Setenv("THROTTLE_RPS", "-3")
	t.Setenv("LOG_LEVEL", "loud")
	t.Setenv("APP_TIMEZONE", "Mars/Olympus")

	cfg, err := loadConfig(missingEnv(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Env.ThrottleRPS != defaultThrottleRPS {
		t.Errorf("ThrottleRPS = %d, want default %d", cfg.Env.ThrottleRPS, defaultThrottleRPS)
	}
	if cfg.Env.LogLevel != defaultLogLevel {
		t.Errorf("LogLevel = %q, want default %q", cfg.Env.LogLevel, defaultLogLevel)
	}
	if cfg.Env.AppTimezone != defaultAppTimezone {
		t.Errorf("AppTimezone = %q, want default %q", cfg.Env.AppTimezone, defaultAppTimezone)
	}
	// Три некорректных значения плюс отсутствующий .env.
	if len(cfg.warnings) < 4 {
		t.Errorf("expected at least 4 warnings, got %d: %v", len(cfg.warnings), cfg.warnings)
	}
}

func TestLoadConfigTimezoneInheritsTZ(t *testing.T) {
	setRequired(t)
	clearOptional(t)
	t.Setenv("TZ", "Europe/Berlin")

	cfg, err := loadConfig(missingEnv(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Env.AppTimezone != "Europe/Berlin" {
		t.Errorf("AppTimezone = %q, want Europe/Berlin", cfg.Env.AppTimezone)
	}
}

func TestLoadConfigMissingEnvFileIsWarning(t *testing.T) {
	setRequired(t)
	clearOptional(t)

	cfg, err := loadConfig(missingEnv(t))
	if err != nil {
		t.Fatalf("missing .env must not be fatal: %v", err)
	}

	found := false
	for _, w := range cfg.warnings {
		if strings.Contains(w, "not found") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a warning about the missing .env, got %v", cfg.warnings)
	}
}
