package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config aggregates all runtime settings required by the application.
type Config struct {
	AppName     string
	Environment string
	HTTP        HTTPConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	JWT         JWTConfig
	Outbox      OutboxConfig
	Schedule    ScheduleConfig
	Telegram    TelegramConfig
	SMTP        SMTPConfig
	Export      ExportConfig
	Report      ReportConfig
	Context     ContextConfig
	Logger      LoggerConfig
	Migrations  MigrationsConfig
}

type HTTPConfig struct {
	Host          string
	Port          string
	ReadTimeout   time.Duration
	WriteTimeout  time.Duration
	IdleTimeout   time.Duration
	EnableMetrics bool
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            string
	Name            string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	MaxConnLifetime time.Duration
	SSLMode         string
}

// Configured reports whether credentials for the record store were supplied.
func (d DatabaseConfig) Configured() bool {
	return d.URL != ""
}

type RedisConfig struct {
	URL      string
	Password string
	DB       int
}

func (r RedisConfig) Enabled() bool {
	return r.URL != ""
}

type JWTConfig struct {
	Secret string
}

type OutboxConfig struct {
	Path        string
	// CLIPath is the queue file of one-shot jagactl runs. Bolt locks its file,
	// so it must differ from the server's Path.
	CLIPath     string
	Interval    time.Duration
	BatchSize   int
	MaxAttempts int
}

type ScheduleConfig struct {
	Timezone       string
	SweepSchedule  string
	DigestSchedule string
	LockTTL        time.Duration
}

// Location resolves the configured civil time zone, defaulting to Asia/Makassar.
func (s ScheduleConfig) Location() (*time.Location, error) {
	name := s.Timezone
	if name == "" {
		name = "Asia/Makassar"
	}
	return time.LoadLocation(name)
}

type TelegramConfig struct {
	BotToken      string
	ChatID        string
	APIURL        string
	WebhookSecret string
	Timeout       time.Duration
}

func (t TelegramConfig) Enabled() bool {
	return t.BotToken != ""
}

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	Recipient string
}

func (s SMTPConfig) Enabled() bool {
	return s.Username != "" && s.Password != ""
}

type ExportConfig struct {
	TemplatePath string
}

type ReportConfig struct {
	WindowDays       int
	DigestWindowDays int
	CacheSize        int
	CacheTTL         time.Duration
}

type ContextConfig struct {
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type MigrationsConfig struct {
	Enabled bool
}

// Load reads configuration from environment variables (optionally .env).
// Missing database credentials are not an error: the service still boots and
// answers health checks while record endpoints report 503.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		AppName:     getString("APP_NAME", "sijagad"),
		Environment: getString("APP_ENV", "development"),
		HTTP: HTTPConfig{
			Host:          getString("SERVER_HOST", "0.0.0.0"),
			Port:          getString("SERVER_PORT", "8000"),
			ReadTimeout:   getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:  getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			IdleTimeout:   getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
			EnableMetrics: getBool("SERVER_ENABLE_METRICS", true),
		},
		Database: DatabaseConfig{
			URL:             os.Getenv("DATABASE_URL"),
			Host:            os.Getenv("DB_HOST"),
			Port:            getString("DB_PORT", "5432"),
			Name:            getString("DB_NAME", "postgres"),
			User:            getString("DB_USER", "postgres"),
			Password:        os.Getenv("DB_PASSWORD"),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 2),
			MaxConnLifetime: getDuration("DB_CONN_LIFETIME", time.Hour),
			SSLMode:         getString("DB_SSLMODE", "require"),
		},
		Redis: RedisConfig{
			URL:      os.Getenv("REDIS_URL"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
		},
		Outbox: OutboxConfig{
			Path:        getString("BOLTDB_PATH", "./data/outbox.db"),
			CLIPath:     getString("JAGACTL_BOLTDB_PATH", "./data/outbox-jagactl.db"),
			Interval:    getDuration("OUTBOX_INTERVAL_SECONDS", 2*time.Second),
			BatchSize:   getInt("OUTBOX_BATCH_SIZE", 50),
			MaxAttempts: getInt("OUTBOX_MAX_ATTEMPTS", 1),
		},
		Schedule: ScheduleConfig{
			Timezone:       getString("TIMEZONE", "Asia/Makassar"),
			SweepSchedule:  os.Getenv("SWEEP_SCHEDULE"),
			DigestSchedule: getString("DIGEST_SCHEDULE", "0 8 * * *"),
			LockTTL:        getDuration("SWEEP_LOCK_TTL_SECONDS", 2*time.Minute),
		},
		Telegram: TelegramConfig{
			BotToken:      os.Getenv("TELEGRAM_BOT_TOKEN"),
			ChatID:        os.Getenv("TELEGRAM_CHAT_ID"),
			APIURL:        getString("TELEGRAM_API_URL", "https://api.telegram.org"),
			WebhookSecret: os.Getenv("TELEGRAM_WEBHOOK_SECRET"),
			Timeout:       getDuration("TELEGRAM_TIMEOUT_SECONDS", 10*time.Second),
		},
		SMTP: SMTPConfig{
			Host:      getString("SMTP_HOST", "smtp.gmail.com"),
			Port:      getInt("SMTP_PORT", 587),
			Username:  os.Getenv("SMTP_EMAIL"),
			Password:  os.Getenv("SMTP_PASSWORD"),
			Recipient: getString("DIGEST_RECIPIENT", "admin.pln@gmail.com"),
		},
		Export: ExportConfig{
			TemplatePath: getString("EXPORT_TEMPLATE_PATH", "./assets/templates/Template_Sijagad.xlsx"),
		},
		Report: ReportConfig{
			WindowDays:       getInt("REPORT_WINDOW_DAYS", 90),
			DigestWindowDays: getInt("DIGEST_WINDOW_DAYS", 30),
			CacheSize:        getInt("REPORT_CACHE_SIZE", 16),
			CacheTTL:         getDuration("REPORT_CACHE_TTL_SECONDS", 30*time.Second),
		},
		Context: ContextConfig{
			RequestTimeout:  getDuration("REQUEST_TIMEOUT_SECONDS", 15*time.Second),
			ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second),
		},
		Logger: LoggerConfig{
			Level:    getString("LOG_LEVEL", "info"),
			Encoding: getString("LOG_ENCODING", "json"),
		},
		Migrations: MigrationsConfig{
			Enabled: getBool("RUN_MIGRATIONS", true),
		},
	}

	if cfg.Database.URL == "" && cfg.Database.Host != "" {
		cfg.Database.URL = buildPostgresURL(cfg)
	}

	if _, err := cfg.Schedule.Location(); err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Schedule.Timezone, err)
	}

	return cfg, nil
}

// MustLoad panics if configuration cannot be loaded.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func buildPostgresURL(cfg *Config) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.Database.User,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)
}

func getString(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

// Address returns the HTTP listen address for the fasthttp server.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%s", c.HTTP.Host, c.HTTP.Port)
}
