package app

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/yungbote/yanxue-backend/internal/data/db"
	"github.com/yungbote/yanxue-backend/internal/observability"
	"github.com/yungbote/yanxue-backend/internal/platform/openai"
	"github.com/yungbote/yanxue-backend/internal/services"
)

const (
	defaultJWTSecret = "yanxue-dev-secret"
	defaultJWTTTL    = 30 * 24 * time.Hour
)

type Config struct {
	Port    string
	LogMode string
	LogFile string

	DB db.Config

	JWTSecret    string
	JWTExpiresIn time.Duration
	TestAccount  services.TestAccount
	AuthRequired bool

	OpenAI openai.Config

	RedisAddr    string
	RedisChannel string

	AIRateLimitPerMin int
	CORSOrigins       []string

	Otel observability.OtelConfig
}

// Live reports whether an LLM credential is configured.
func (c Config) Live() bool {
	return strings.TrimSpace(c.OpenAI.APIKey) != ""
}

func (c Config) UsesDefaultJWTSecret() bool {
	return c.JWTSecret == defaultJWTSecret
}

// LoadConfig reads .env (when present), an optional yaml file named by
// CONFIG_FILE, then the process environment, which wins.
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	if path := strings.TrimSpace(v.GetString("CONFIG_FILE")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	ttl, err := parseTTL(v.GetString("JWT_EXPIRES_IN"))
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Port:    v.GetString("PORT"),
		LogMode: v.GetString("LOG_MODE"),
		LogFile: v.GetString("LOG_FILE"),
		DB: db.Config{
			Driver:      v.GetString("DB_DRIVER"),
			DatabaseURL: databaseURL(v),
			SQLitePath:  v.GetString("SQLITE_PATH"),
		},
		JWTSecret:    v.GetString("JWT_SECRET"),
		JWTExpiresIn: ttl,
		TestAccount: services.TestAccount{
			Email:    v.GetString("TEST_EMAIL"),
			Password: v.GetString("TEST_PASSWORD"),
			Username: v.GetString("TEST_USERNAME"),
			Role:     v.GetString("TEST_ROLE"),
		},
		AuthRequired: v.GetBool("AUTH_REQUIRED"),
		OpenAI: openai.Config{
			APIKey:  v.GetString("OPENAI_API_KEY"),
			BaseURL: v.GetString("OPENAI_BASE_URL"),
			Model:   v.GetString("OPENAI_MODEL"),
			Timeout: time.Duration(v.GetInt("OPENAI_TIMEOUT_SECONDS")) * time.Second,
		},
		RedisAddr:         v.GetString("REDIS_ADDR"),
		RedisChannel:      v.GetString("REDIS_CHANNEL"),
		AIRateLimitPerMin: v.GetInt("AI_RATE_LIMIT_PER_MIN"),
		CORSOrigins:       splitList(v.GetString("CORS_ORIGINS")),
		Otel: observability.OtelConfig{
			Enabled:     v.GetBool("OTEL_ENABLED"),
			ServiceName: v.GetString("OTEL_SERVICE_NAME"),
			Environment: v.GetString("OTEL_ENVIRONMENT"),
			Version:     v.GetString("OTEL_SERVICE_VERSION"),
			Endpoint:    v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
			Headers:     v.GetString("OTEL_EXPORTER_OTLP_HEADERS"),
			Insecure:    v.GetBool("OTEL_EXPORTER_OTLP_INSECURE"),
			SampleRatio: v.GetFloat64("OTEL_SAMPLE_RATIO"),
		},
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		cfg.JWTSecret = defaultJWTSecret
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "5000")
	v.SetDefault("LOG_MODE", "development")
	v.SetDefault("DB_DRIVER", db.DriverPostgres)
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_SSLMODE", "disable")
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRES_IN", "30d")
	v.SetDefault("AUTH_REQUIRED", false)
	v.SetDefault("OPENAI_BASE_URL", openai.DefaultBaseURL)
	v.SetDefault("OPENAI_MODEL", openai.DefaultModel)
	v.SetDefault("OPENAI_TIMEOUT_SECONDS", int(openai.DefaultTimeout/time.Second))
	v.SetDefault("REDIS_CHANNEL", "yanxue.events")
	v.SetDefault("AI_RATE_LIMIT_PER_MIN", 30)
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_SERVICE_NAME", "yanxue-backend")
	v.SetDefault("OTEL_ENVIRONMENT", "development")
	v.SetDefault("OTEL_SAMPLE_RATIO", 1.0)
}

// databaseURL prefers DATABASE_URL and otherwise assembles a DSN from the
// POSTGRES_* parts when a host is given.
func databaseURL(v *viper.Viper) string {
	if u := strings.TrimSpace(v.GetString("DATABASE_URL")); u != "" {
		return u
	}
	host := strings.TrimSpace(v.GetString("POSTGRES_HOST"))
	if host == "" {
		return ""
	}
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host,
		v.GetString("POSTGRES_PORT"),
		v.GetString("POSTGRES_USER"),
		v.GetString("POSTGRES_PASSWORD"),
		v.GetString("POSTGRES_DB"),
		v.GetString("POSTGRES_SSLMODE"),
	)
}

// parseTTL accepts "30d", Go durations like "12h", or plain seconds.
func parseTTL(raw string) (time.Duration, error) {
	s := strings.TrimSpace(strings.ToLower(raw))
	if s == "" {
		return defaultJWTTTL, nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil || n <= 0 {
			return 0, fmt.Errorf("invalid JWT_EXPIRES_IN %q", raw)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("invalid JWT_EXPIRES_IN %q", raw)
		}
		return time.Duration(n) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid JWT_EXPIRES_IN %q", raw)
	}
	return d, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
