package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                 string
	AppEnv                  string
	AppPort                 string
	DatabaseURL             string
	RedisURL                string
	NATSURL                 string
	EventsChannel           string
	JWTSecret               string
	MetricsCacheTTL         time.Duration
	StrictQuestionOwnership bool
	SequenceDelimiter       string
	MaxWriteAttempts        int
	SubmissionRateLimit     int
	SubmissionRateWindow    time.Duration
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// UsesSQLite reports whether the database URL points at a SQLite file instead of PostgreSQL.
func (c Config) UsesSQLite() bool {
	return strings.HasPrefix(c.DatabaseURL, "sqlite://") || strings.HasPrefix(c.DatabaseURL, "file:")
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("TEMPO")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Tempo API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("events.channel", "tempo")
	v.SetDefault("metrics.cache_ttl", "5m")
	v.SetDefault("grading.strict_question_ownership", false)
	v.SetDefault("grading.sequence_delimiter", ",")
	v.SetDefault("grading.max_write_attempts", 3)
	v.SetDefault("submission.rate_limit", 30)
	v.SetDefault("submission.rate_window", "1m")

	ttl, err := parseDuration(v.GetString("metrics.cache_ttl"), 5*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid metrics cache ttl: %w", err)
	}

	window, err := parseDuration(v.GetString("submission.rate_window"), time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid submission rate window: %w", err)
	}

	cfg := Config{
		AppName:                 v.GetString("app.name"),
		AppEnv:                  v.GetString("app.env"),
		AppPort:                 v.GetString("app.port"),
		DatabaseURL:             v.GetString("database.url"),
		RedisURL:                v.GetString("redis.url"),
		NATSURL:                 v.GetString("nats.url"),
		EventsChannel:           v.GetString("events.channel"),
		JWTSecret:               v.GetString("jwt.secret"),
		MetricsCacheTTL:         ttl,
		StrictQuestionOwnership: v.GetBool("grading.strict_question_ownership"),
		SequenceDelimiter:       v.GetString("grading.sequence_delimiter"),
		MaxWriteAttempts:        v.GetInt("grading.max_write_attempts"),
		SubmissionRateLimit:     v.GetInt("submission.rate_limit"),
		SubmissionRateWindow:    window,
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.SequenceDelimiter == "" {
		cfg.SequenceDelimiter = ","
	}

	if cfg.MaxWriteAttempts <= 0 {
		cfg.MaxWriteAttempts = 3
	}

	if cfg.SubmissionRateLimit <= 0 {
		cfg.SubmissionRateLimit = 30
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}
