package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains runtime configuration required by the relay.
type Config struct {
	HTTPAddr string

	HumandBase  string
	HumandToken string
	DryRun      bool

	SendInterval    time.Duration
	DeliveryTimeout time.Duration
	DedupRetention  time.Duration

	EntranceDevice string
	ExitDevice     string

	LogFile    string
	LogMaxMB   int
	LogBackups int

	DBURL           string
	AuditSQLitePath string

	TelegramBotToken string
	TelegramChatID   int64
}

// SubscriptionConfig is what cmd/subscribe needs to register the webhook.
type SubscriptionConfig struct {
	Host        string
	AppKey      string
	AppSecret   string
	WebhookURL  string
	InsecureTLS bool
}

// loadDotEnv merges an optional .env file into the environment. Variables
// already set win over the file.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("[CONFIG] .env not loaded: %v", err)
	}
}

// Load reads the relay configuration from the environment.
func Load() (Config, error) {
	loadDotEnv()

	cfg := Config{
		HTTPAddr:         env("HTTP_ADDR", ":5000"),
		HumandBase:       strings.TrimRight(env("HUMAND_BASE", ""), "/"),
		HumandToken:      env("HUMAND_TOKEN", ""),
		EntranceDevice:   env("ENTRANCE_DEVICE", "Facial Entrada"),
		ExitDevice:       env("EXIT_DEVICE", "Facial Salida"),
		LogFile:          env("LOG_FILE", "hik_webhook.log"),
		DBURL:            env("DB_URL", ""),
		AuditSQLitePath:  env("AUDIT_SQLITE_PATH", ""),
		TelegramBotToken: env("TELEGRAM_BOT_TOKEN", ""),
	}

	var err error
	if cfg.DryRun, err = parseBool("DRY_RUN", false); err != nil {
		return Config{}, err
	}
	if cfg.SendInterval, err = parseDuration("SEND_INTERVAL", 60*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.DeliveryTimeout, err = parseDuration("DELIVERY_TIMEOUT", 10*time.Second); err != nil {
		return Config{}, err
	}
	if cfg.DedupRetention, err = parseDuration("DEDUP_RETENTION", 24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.LogMaxMB, err = parseInt("LOG_MAX_MB", 5); err != nil {
		return Config{}, err
	}
	if cfg.LogBackups, err = parseInt("LOG_BACKUPS", 5); err != nil {
		return Config{}, err
	}

	if raw := env("TELEGRAM_CHAT_ID", ""); raw != "" {
		if cfg.TelegramChatID, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return Config{}, fmt.Errorf("TELEGRAM_CHAT_ID must be an integer: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.HumandBase == "" && !c.DryRun {
		return errors.New("HUMAND_BASE required unless DRY_RUN=true")
	}
	if c.SendInterval <= 0 {
		return errors.New("SEND_INTERVAL must be positive")
	}
	if c.DeliveryTimeout <= 0 {
		return errors.New("DELIVERY_TIMEOUT must be positive")
	}
	if c.DedupRetention < 0 {
		return errors.New("DEDUP_RETENTION must not be negative")
	}
	if c.EntranceDevice == "" && c.ExitDevice == "" {
		return errors.New("ENTRANCE_DEVICE or EXIT_DEVICE required")
	}
	if c.EntranceDevice == c.ExitDevice {
		return errors.New("ENTRANCE_DEVICE and EXIT_DEVICE must differ")
	}
	if c.TelegramBotToken != "" && c.TelegramChatID == 0 {
		return errors.New("TELEGRAM_CHAT_ID required when TELEGRAM_BOT_TOKEN is set")
	}
	return nil
}

// LoadSubscription reads the settings of the one-time registration tool.
func LoadSubscription() (SubscriptionConfig, error) {
	loadDotEnv()

	cfg := SubscriptionConfig{
		Host:       strings.TrimRight(env("HIK_HOST", ""), "/"),
		AppKey:     env("HIK_APP_KEY", ""),
		AppSecret:  env("HIK_APP_SECRET", ""),
		WebhookURL: env("WEBHOOK_URL", ""),
	}

	var err error
	if cfg.InsecureTLS, err = parseBool("HIK_INSECURE_TLS", true); err != nil {
		return SubscriptionConfig{}, err
	}

	var missing []string
	for name, v := range map[string]string{
		"HIK_HOST":       cfg.Host,
		"HIK_APP_KEY":    cfg.AppKey,
		"HIK_APP_SECRET": cfg.AppSecret,
		"WEBHOOK_URL":    cfg.WebhookURL,
	} {
		if v == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return SubscriptionConfig{}, fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return cfg, nil
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func parseBool(key string, def bool) (bool, error) {
	raw := env(key, "")
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return v, nil
}

func parseInt(key string, def int) (int, error) {
	raw := env(key, "")
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

// parseDuration accepts Go durations ("90s", "2m") or bare seconds ("60").
func parseDuration(key string, def time.Duration) (time.Duration, error) {
	raw := env(key, "")
	if raw == "" {
		return def, nil
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	return d, nil
}
