package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	Telegram TelegramConfig
	Bot      BotConfig
	Tickets  TicketConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	MigrationsDir  string
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig protects the administrative endpoints.
type AuthConfig struct {
	JWTSecret             string
	AccessTokenTTLMinutes int
	AdminAPIKeyHash       string
}

// TelegramConfig holds Bot API access values.
type TelegramConfig struct {
	Token              string
	ModeratorChatID    int64
	HTTPTimeoutSeconds int
	PublicHostname     string
	SetWebhookOnStart  bool
}

// BotConfig controls conversation behavior.
type BotConfig struct {
	Brand             string
	Blocklist         []string
	SessionCapacity   int
	SessionTTLMinutes int
	DedupTTLMinutes   int
}

// TicketConfig controls the ticket state machine.
type TicketConfig struct {
	StoreTimeoutSeconds int
	StrictTransitions   bool
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	moderatorChatID, err := strconv.ParseInt(getEnv("TELEGRAM_MODERATOR_CHAT_ID", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_MODERATOR_CHAT_ID: %w", err)
	}

	maxConns := int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10))
	minConns := int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2))
	runMigrations := getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true)
	connMaxIdle := int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30))
	connMaxLife := int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300))

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "support-bot"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       maxConns,
			MinConns:       minConns,
			RunMigrations:  runMigrations,
			MigrationsDir:  getEnv("POSTGRES_MIGRATIONS_DIR", "migrations"),
			ConnMaxIdleSec: connMaxIdle,
			ConnMaxLifeSec: connMaxLife,
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:             getEnv("AUTH_JWT_SECRET", "dev-secret"),
			AccessTokenTTLMinutes: getEnvAsInt("AUTH_ACCESS_TOKEN_TTL_MINUTES", 60),
			AdminAPIKeyHash:       os.Getenv("ADMIN_API_KEY_HASH"),
		},
		Telegram: TelegramConfig{
			Token:              os.Getenv("TELEGRAM_BOT_TOKEN"),
			ModeratorChatID:    moderatorChatID,
			HTTPTimeoutSeconds: getEnvAsInt("TELEGRAM_HTTP_TIMEOUT_SECONDS", 10),
			PublicHostname:     firstNonEmpty(os.Getenv("PUBLIC_HOSTNAME"), os.Getenv("RENDER_EXTERNAL_HOSTNAME")),
			SetWebhookOnStart:  getEnvAsBool("TELEGRAM_SET_WEBHOOK_ON_START", false),
		},
		Bot: BotConfig{
			Brand:             getEnv("BOT_BRAND", "Support"),
			Blocklist:         getEnvAsList("CONTENT_BLOCKLIST", []string{"vpn"}),
			SessionCapacity:   getEnvAsInt("SESSION_CAPACITY", 10000),
			SessionTTLMinutes: getEnvAsInt("SESSION_TTL_MINUTES", 24*60),
			DedupTTLMinutes:   getEnvAsInt("UPDATE_DEDUP_TTL_MINUTES", 60),
		},
		Tickets: TicketConfig{
			StoreTimeoutSeconds: getEnvAsInt("TICKET_STORE_TIMEOUT_SECONDS", 5),
			StrictTransitions:   getEnvAsBool("TICKET_STRICT_TRANSITIONS", true),
		},
	}

	if cfg.Telegram.Token == "" {
		return nil, fmt.Errorf("TELEGRAM_BOT_TOKEN is required")
	}
	if cfg.Telegram.ModeratorChatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_MODERATOR_CHAT_ID is required")
	}

	return cfg, nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// WebhookURL is the public address Telegram delivers updates to.
func (t TelegramConfig) WebhookURL() string {
	if t.PublicHostname == "" {
		return ""
	}
	return fmt.Sprintf("https://%s/webhook", t.PublicHostname)
}

// HTTPTimeout bounds every Bot API call.
func (t TelegramConfig) HTTPTimeout() time.Duration {
	if t.HTTPTimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(t.HTTPTimeoutSeconds) * time.Second
}

// SessionTTL returns how long an idle conversation is remembered.
func (b BotConfig) SessionTTL() time.Duration {
	return time.Duration(b.SessionTTLMinutes) * time.Minute
}

// DedupTTL returns how long a processed update id is remembered.
func (b BotConfig) DedupTTL() time.Duration {
	return time.Duration(b.DedupTTLMinutes) * time.Minute
}

// StoreTimeout bounds a single ticket store call.
func (t TicketConfig) StoreTimeout() time.Duration {
	if t.StoreTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(t.StoreTimeoutSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsList(key string, fallback []string) []string {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var items []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	return items
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
