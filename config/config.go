package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config application configuration
type Config struct {
	AppEnv          string
	LogLevel        string
	DatabasePath    string
	PhoneRegion     string
	Text            TextConfig
	ImageSearch     ImageSearchConfig
	ImageValidation ImageValidationConfig
	Execution       ExecutionConfig
	Storage         StorageConfig
	Telegram        TelegramConfig
}

// TextConfig generative text provider settings
type TextConfig struct {
	Provider      string // gemini, mistral or empty for auto
	GeminiAPIKey  string
	GeminiModel   string
	MistralAPIKey string
	MistralModel  string
	MistralAgent  string
	RatePerMinute int
}

// ImageSearchConfig image search providers
type ImageSearchConfig struct {
	GoogleEnabled    bool
	GoogleAPIKey     string
	GoogleEngineID   string
	GoogleDailyLimit int
	GoogleSafe       string
	MaxTries         int
	SerperEnabled    bool
	SerperAPIKey     string
	SerperEndpoint   string
	SerperDailyLimit int
	URLTemplate      string
	Timeout          time.Duration
}

// ImageValidationConfig thresholds for accepting a downloaded image
type ImageValidationConfig struct {
	MinWidth           int
	MinHeight          int
	MinBytes           int
	MinStdDev          float64
	AllowPlaceholders  bool
	PlaceholderDomains []string
	OCREnabled         bool
	OCRMinConfidence   float64
}

// ExecutionConfig inline vs queued runs
type ExecutionConfig struct {
	InlineRun        bool
	RedisURL         string
	QueueName        string
	QueueConcurrency int
}

// StorageConfig media storage
type StorageConfig struct {
	MediaRoot      string
	MinIOEndpoint  string
	MinIOAccessKey string
	MinIOSecretKey string
	MinIOUseSSL    bool
	MinIOBucket    string
}

// TelegramConfig operator report channel
type TelegramConfig struct {
	BotToken     string
	ReportChatID int64
}

// MinIOEnabled reports whether object storage is configured
func (s StorageConfig) MinIOEnabled() bool {
	return s.MinIOEndpoint != "" && s.MinIOAccessKey != "" && s.MinIOSecretKey != ""
}

// Enabled reports whether batch reports go to Telegram
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.ReportChatID != 0
}

// Load loads configuration from .env and the environment
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()
	return load(os.Getenv)
}

func load(getenv func(string) string) (*Config, error) {
	p := &envParser{getenv: getenv}

	cfg := &Config{
		AppEnv:       p.str("APP_ENV", "production"),
		LogLevel:     p.str("LOG_LEVEL", "info"),
		DatabasePath: p.str("DATABASE_PATH", "data/backoffice.db"),
		PhoneRegion:  strings.ToUpper(p.str("CUSTOMER_PHONE_REGION", "SN")),
		Text: TextConfig{
			Provider:      strings.ToLower(p.str("TEXT_PROVIDER", "")),
			GeminiAPIKey:  p.str("GEMINI_API_KEY", ""),
			GeminiModel:   p.str("GEMINI_MODEL", "gemini-2.0-flash"),
			MistralAPIKey: p.str("MISTRAL_API_KEY", ""),
			MistralModel:  p.str("MISTRAL_MODEL", "mistral-small-latest"),
			MistralAgent:  p.str("MISTRAL_AGENT_ID", ""),
			RatePerMinute: p.integer("TEXT_RATE_PER_MINUTE", 30),
		},
		ImageSearch: ImageSearchConfig{
			GoogleEnabled:    p.boolean("PRODUCT_BOT_GOOGLE_IMAGE_SEARCH_ENABLED", true),
			GoogleAPIKey:     p.str("GOOGLE_CUSTOM_SEARCH_API_KEY", ""),
			GoogleEngineID:   p.str("GOOGLE_CUSTOM_SEARCH_ENGINE_ID", ""),
			GoogleDailyLimit: p.integer("PRODUCT_BOT_GOOGLE_IMAGE_DAILY_LIMIT", 100),
			GoogleSafe:       p.str("PRODUCT_BOT_GOOGLE_IMAGE_SAFE", "active"),
			MaxTries:         p.integer("PRODUCT_BOT_GOOGLE_IMAGE_MAX_TRIES", 3),
			SerperEnabled:    p.boolean("PRODUCT_BOT_SERPER_IMAGE_SEARCH_ENABLED", true),
			SerperAPIKey:     p.str("SERPER_API_KEY", ""),
			SerperEndpoint:   p.str("SERPER_IMAGE_ENDPOINT", "https://google.serper.dev/images"),
			SerperDailyLimit: p.integer("PRODUCT_BOT_SERPER_IMAGE_DAILY_LIMIT", 100),
			URLTemplate:      p.str("PRODUCT_BOT_IMAGE_URL_TEMPLATE", ""),
			Timeout:          p.duration("PRODUCT_BOT_IMAGE_TIMEOUT", 15*time.Second),
		},
		ImageValidation: ImageValidationConfig{
			MinWidth:           p.integer("PRODUCT_BOT_IMAGE_MIN_WIDTH", 300),
			MinHeight:          p.integer("PRODUCT_BOT_IMAGE_MIN_HEIGHT", 300),
			MinBytes:           p.integer("PRODUCT_BOT_IMAGE_MIN_BYTES", 5*1024),
			MinStdDev:          p.float("PRODUCT_BOT_IMAGE_MIN_STDDEV", 12),
			AllowPlaceholders:  p.boolean("PRODUCT_BOT_ALLOW_PLACEHOLDERS", false),
			PlaceholderDomains: p.list("PRODUCT_BOT_PLACEHOLDER_DOMAINS", []string{"dummyimage.com", "via.placeholder.com", "placehold.co"}),
			OCREnabled:         p.boolean("PRODUCT_BOT_IMAGE_OCR_ENABLED", false),
			OCRMinConfidence:   p.float("PRODUCT_BOT_IMAGE_OCR_MIN_CONFIDENCE", 0.6),
		},
		Execution: ExecutionConfig{
			InlineRun:        p.boolean("PRODUCT_BOT_INLINE_RUN", true),
			RedisURL:         p.str("REDIS_URL", ""),
			QueueName:        p.str("ASYNQ_QUEUE", "product-assets"),
			QueueConcurrency: p.integer("ASYNQ_CONCURRENCY", 2),
		},
		Storage: StorageConfig{
			MediaRoot:      p.str("MEDIA_ROOT", "data/media"),
			MinIOEndpoint:  p.str("MINIO_ENDPOINT", ""),
			MinIOAccessKey: p.str("MINIO_ACCESS_KEY", ""),
			MinIOSecretKey: p.str("MINIO_SECRET_KEY", ""),
			MinIOUseSSL:    p.boolean("MINIO_USE_SSL", false),
			MinIOBucket:    p.str("MINIO_BUCKET", "product-images"),
		},
		Telegram: TelegramConfig{
			BotToken:     p.str("TELEGRAM_BOT_TOKEN", ""),
			ReportChatID: p.int64("TELEGRAM_REPORT_CHAT_ID", 0),
		},
	}

	if p.err != nil {
		return nil, p.err
	}

	if cfg.Text.Provider != "" && cfg.Text.Provider != "gemini" && cfg.Text.Provider != "mistral" {
		return nil, fmt.Errorf("TEXT_PROVIDER must be gemini or mistral, got %q", cfg.Text.Provider)
	}
	if cfg.ImageSearch.MaxTries < 1 {
		cfg.ImageSearch.MaxTries = 1
	}

	return cfg, nil
}

// envParser collects the first parse error
type envParser struct {
	getenv func(string) string
	err    error
}

func (p *envParser) raw(key string) (string, bool) {
	v := strings.TrimSpace(p.getenv(key))
	return v, v != ""
}

func (p *envParser) fail(key string, err error) {
	if p.err == nil {
		p.err = fmt.Errorf("%s has invalid format: %w", key, err)
	}
}

func (p *envParser) str(key, def string) string {
	if v, ok := p.raw(key); ok {
		return v
	}
	return def
}

func (p *envParser) integer(key string, def int) int {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return parsed
}

func (p *envParser) int64(key string, def int64) int64 {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	parsed, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return parsed
}

func (p *envParser) float(key string, def float64) float64 {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return parsed
}

func (p *envParser) boolean(key string, def bool) bool {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	p.fail(key, fmt.Errorf("not a boolean: %q", v))
	return def
}

// duration accepts Go durations ("20s") or plain seconds ("20")
func (p *envParser) duration(key string, def time.Duration) time.Duration {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	parsed, err := time.ParseDuration(v)
	if err != nil {
		p.fail(key, err)
		return def
	}
	return parsed
}

func (p *envParser) list(key string, def []string) []string {
	v, ok := p.raw(key)
	if !ok {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			out = append(out, item)
		}
	}
	return out
}
