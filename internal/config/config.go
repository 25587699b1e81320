// Package config loads process settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	Port     string `validate:"required,numeric"`
	Env      string
	LogLevel string `validate:"omitempty,oneof=debug info warn error"`

	CacheBackend  string `validate:"oneof=memory redis"`
	RedisAddr     string `validate:"required_if=CacheBackend redis"`
	RedisPassword string
	CacheVersion  string `validate:"required,excludesall=:"`

	LLMProvider string `validate:"oneof=gemini openai"`
	LLMAPIKey   string // optional; requests fail as not configured without it
	LLMModel    string
	LLMBaseURL  string        `validate:"omitempty,url"`
	LLMTimeout  time.Duration `validate:"gt=0"`

	QuranClientID     string        `validate:"required"`
	QuranClientSecret string        `validate:"required"`
	QuranOAuthURL     string        `validate:"required,url"`
	QuranAPIURL       string        `validate:"required,url"`
	QuranTimeout      time.Duration `validate:"gt=0"`
	QuranTranslations string        `validate:"required"`

	ResponseCacheTTL  time.Duration `validate:"gt=0"`
	ResponseCacheSize int           `validate:"gt=0"`
	ContentCacheSize  int           `validate:"gt=0"`

	RateLimitWindow     time.Duration `validate:"gt=0"`
	RateLimitMaxClients int           `validate:"gt=0"`

	FetchConcurrency int `validate:"gt=0,lte=100"`

	CORSAllowedOrigins []string
}

// Load reads the environment, applies defaults and validates the result.
func Load() (Config, error) {
	var errs []error

	cfg := Config{
		Port:     getenv("PORT", "8080"),
		Env:      getenv("ENV", "production"),
		LogLevel: strings.ToLower(os.Getenv("LOG_LEVEL")),

		CacheBackend:  strings.ToLower(getenv("CACHE_BACKEND", "memory")),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		CacheVersion:  getenv("CACHE_VERSION", "v1"),

		LLMProvider: strings.ToLower(getenv("LLM_PROVIDER", "gemini")),
		LLMAPIKey:   getenv("LLM_API_KEY", os.Getenv("GEMINI_API_KEY")),
		LLMModel:    os.Getenv("LLM_MODEL"),
		LLMBaseURL:  os.Getenv("LLM_BASE_URL"),
		LLMTimeout:  getDuration("LLM_TIMEOUT", 30*time.Second, &errs),

		QuranClientID:     os.Getenv("QURAN_FOUNDATION_CLIENT_ID"),
		QuranClientSecret: os.Getenv("QURAN_FOUNDATION_CLIENT_SECRET"),
		QuranOAuthURL:     getenv("QURAN_FOUNDATION_OAUTH_URL", "https://oauth2.quran.foundation/oauth2/token"),
		QuranAPIURL:       getenv("QURAN_FOUNDATION_API_URL", "https://apis.quran.foundation/content/api/v4"),
		QuranTimeout:      getDuration("QURAN_TIMEOUT", 10*time.Second, &errs),
		QuranTranslations: getenv("QURAN_TRANSLATIONS", "20:en,161:bn"),

		ResponseCacheTTL:  getDuration("RESPONSE_CACHE_TTL", 48*time.Hour, &errs),
		ResponseCacheSize: getInt("RESPONSE_CACHE_SIZE", 1000, &errs),
		ContentCacheSize:  getInt("CONTENT_CACHE_SIZE", 10000, &errs),

		RateLimitWindow:     getDuration("RATE_LIMIT_WINDOW", time.Minute, &errs),
		RateLimitMaxClients: getInt("RATE_LIMIT_MAX_CLIENTS", 5000, &errs),

		FetchConcurrency: getInt("FETCH_CONCURRENCY", 10, &errs),

		CORSAllowedOrigins: splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the struct tags. Callers that override fields after Load
// call it again.
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// LLMConfigured reports whether a model credential is present.
func (c Config) LLMConfigured() bool {
	return c.LLMAPIKey != ""
}

// getenv returns the value of the environment variable key or def if not set.
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getDuration(key string, def time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return d
}

func getInt(key string, def int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return def
	}
	return n
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
