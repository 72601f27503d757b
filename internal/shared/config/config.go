package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"

	"meeting-backend/internal/shared/telemetry"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	LogLevel        string
	LogFormat       string
	CORSAllowOrigin []string
	StaticDir       string

	OpenRouterAPIKey  string
	OpenRouterAPIURL  string
	OpenRouterModel   string
	OpenRouterReferer string
	OpenRouterTitle   string
	LLMTemperature    float64
	LLMTimeout        time.Duration
	PromptsDir        string
	PromptFiles       []string
	AnalysisEngine    string

	UploadsDir     string
	OutputsDir     string
	MaxUploadBytes int64

	// Per-client throttle on the analyze routes; zero disables it.
	AnalyzeRatePerMinute float64
	AnalyzeBurst         int

	ObjectStoreType string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CacheTTL      time.Duration

	OTelEnabled     bool
	OTelEndpoint    string
	OTelServiceName string
}

// DefaultEnvFiles are merged in order when present; environment variables win.
var DefaultEnvFiles = []string{".env", ".env.local"}

// Load reads configuration from env files and environment variables with sensible defaults.
func Load() Config {
	return FromViper(New(DefaultEnvFiles...))
}

// New returns a viper instance with defaults, the given dotenv files merged in,
// and automatic environment lookup.
func New(envFiles ...string) *viper.Viper {
	v := viper.New()
	setDefaults(v)

	for _, path := range envFiles {
		v.SetConfigFile(path)
		v.SetConfigType("env")
		if err := v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
				continue
			}
			telemetry.Warn("config.env_file_unreadable", map[string]any{"path": path, "err": err})
		}
	}

	v.AutomaticEnv()
	return v
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3000")
	v.SetDefault("ENV", "dev")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("CORS_ALLOW_ORIGINS", "*")
	v.SetDefault("STATIC_DIR", "")

	v.SetDefault("OPENROUTER_API_KEY", "")
	v.SetDefault("OPENROUTER_API_URL", "https://openrouter.ai/api/v1/chat/completions")
	v.SetDefault("OPENROUTER_MODEL", "google/gemini-2.5-flash")
	v.SetDefault("OPENROUTER_HTTP_REFERER", "http://localhost:3000")
	v.SetDefault("OPENROUTER_APP_TITLE", "Meeting Analysis Dashboard")
	v.SetDefault("LLM_TEMPERATURE", 0.3)
	v.SetDefault("LLM_TIMEOUT_SECONDS", 120)
	v.SetDefault("PROMPTS_DIR", "systemprompts")
	v.SetDefault("PROMPT_FILES", "analysis-prompt.md,calculations_for_metrics.md")
	v.SetDefault("ANALYSIS_ENGINE", "llm")

	v.SetDefault("UPLOADS_DIR", "uploads")
	v.SetDefault("OUTPUTS_DIR", "outputs")
	v.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	v.SetDefault("ANALYZE_RATE_PER_MINUTE", 0)
	v.SetDefault("ANALYZE_BURST", 5)

	v.SetDefault("OBJECT_STORE", "local")
	v.SetDefault("AWS_REGION", "")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_PREFIX", "")
	v.SetDefault("SSE_KMS_KEY_ID", "")

	v.SetDefault("DATABASE_URL", "")

	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "24h")

	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("OTEL_SERVICE_NAME", "meeting-backend")
}

// FromViper materializes a Config from v.
func FromViper(v *viper.Viper) Config {
	cfg := Config{
		Port:            v.GetString("PORT"),
		Env:             normalizeEnv(v.GetString("ENV")),
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogFormat:       v.GetString("LOG_FORMAT"),
		CORSAllowOrigin: splitAndTrim(v.GetString("CORS_ALLOW_ORIGINS")),
		StaticDir:       strings.TrimSpace(v.GetString("STATIC_DIR")),

		OpenRouterAPIKey:  strings.TrimSpace(v.GetString("OPENROUTER_API_KEY")),
		OpenRouterAPIURL:  v.GetString("OPENROUTER_API_URL"),
		OpenRouterModel:   v.GetString("OPENROUTER_MODEL"),
		OpenRouterReferer: v.GetString("OPENROUTER_HTTP_REFERER"),
		OpenRouterTitle:   v.GetString("OPENROUTER_APP_TITLE"),
		LLMTemperature:    v.GetFloat64("LLM_TEMPERATURE"),
		LLMTimeout:        time.Duration(v.GetInt("LLM_TIMEOUT_SECONDS")) * time.Second,
		PromptsDir:        v.GetString("PROMPTS_DIR"),
		PromptFiles:       splitAndTrim(v.GetString("PROMPT_FILES")),
		AnalysisEngine:    normalizeEngine(v.GetString("ANALYSIS_ENGINE")),

		UploadsDir:     v.GetString("UPLOADS_DIR"),
		OutputsDir:     v.GetString("OUTPUTS_DIR"),
		MaxUploadBytes: v.GetInt64("MAX_UPLOAD_BYTES"),

		AnalyzeRatePerMinute: v.GetFloat64("ANALYZE_RATE_PER_MINUTE"),
		AnalyzeBurst:         v.GetInt("ANALYZE_BURST"),

		ObjectStoreType: normalizeStoreType(v.GetString("OBJECT_STORE")),
		AWSRegion:       v.GetString("AWS_REGION"),
		S3Bucket:        v.GetString("S3_BUCKET"),
		S3Prefix:        v.GetString("S3_PREFIX"),
		SSEKMSKeyID:     v.GetString("SSE_KMS_KEY_ID"),

		DatabaseURL: strings.TrimSpace(v.GetString("DATABASE_URL")),

		RedisAddr:     strings.TrimSpace(v.GetString("REDIS_ADDR")),
		RedisPassword: v.GetString("REDIS_PASSWORD"),
		RedisDB:       v.GetInt("REDIS_DB"),
		CacheTTL:      v.GetDuration("CACHE_TTL"),

		OTelEnabled:     v.GetBool("OTEL_ENABLED"),
		OTelEndpoint:    strings.TrimSpace(v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT")),
		OTelServiceName: v.GetString("OTEL_SERVICE_NAME"),
	}

	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 120 * time.Second
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 10 << 20
	}
	if cfg.Env == "production" && cfg.ObjectStoreType == "s3" && cfg.S3Bucket == "" {
		telemetry.Warn("config.s3_bucket_missing", nil)
	}
	return cfg
}

// OpenRouterConfigured reports whether an API key is present.
func (c Config) OpenRouterConfigured() bool {
	return c.OpenRouterAPIKey != ""
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeStoreType(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "s3":
		return "s3"
	default:
		return "local"
	}
}

func normalizeEngine(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "heuristic", "heuristics":
		return "heuristic"
	default:
		return "llm"
	}
}
