package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Storage
	DatabasePath string

	// LLM providers, tried in ProviderOrder
	ProviderOrder   []string
	GroqAPIKey      string
	GroqModel       string
	GeminiAPIKey    string
	GeminiModel     string
	OpenAIAPIKey    string
	OpenAIModel     string
	AnthropicAPIKey string
	AnthropicModel  string

	// Retry budget per provider
	LLMMaxAttempts   int
	LLMRateLimitWait time.Duration

	// Drafting
	DraftMaxTokens      int
	DraftMaxBatchTokens int
	DraftTemperature    float64
	DraftDelay          time.Duration
	MaxSourceChars      int

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64
	MaxTextChars   int
	MinTextChars   int

	// Job state
	JobTTL time.Duration

	// PDF
	PDFFallbackPdftotext bool
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("TASKDRAFT_API_KEY"),

		DatabasePath: envOr("DATABASE_PATH", "taskdraft.db"),

		ProviderOrder:   envList("LLM_PROVIDER_ORDER", []string{"groq", "gemini", "openai", "anthropic"}),
		GroqAPIKey:      os.Getenv("GROQ_API_KEY"),
		GroqModel:       envOr("GROQ_MODEL", "llama-3.3-70b-versatile"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     envOr("GEMINI_MODEL", "gemini-2.0-flash"),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:     envOr("OPENAI_MODEL", "gpt-4o-mini"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  envOr("ANTHROPIC_MODEL", "claude-haiku"),

		LLMMaxAttempts:   envInt("LLM_MAX_ATTEMPTS", 3),
		LLMRateLimitWait: envDuration("LLM_RATE_LIMIT_WAIT", 60*time.Second),

		DraftMaxTokens:      envInt("DRAFT_MAX_TOKENS", 2000),
		DraftMaxBatchTokens: envInt("DRAFT_MAX_BATCH_TOKENS", 8192),
		DraftTemperature:    envFloat("DRAFT_TEMPERATURE", 0.5),
		DraftDelay:          envDuration("DRAFT_DELAY", 1500*time.Millisecond),
		MaxSourceChars:      envInt("MAX_SOURCE_CHARS", 35000),

		WorkerCount:  envInt("WORKER_COUNT", 2),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB
		MaxTextChars:   envInt("MAX_TEXT_CHARS", 500000),
		MinTextChars:   envInt("MIN_TEXT_CHARS", 20),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		PDFFallbackPdftotext: envBool("PDF_FALLBACK_PDFTOTEXT", true),
	}

	if cfg.LLMMaxAttempts <= 0 {
		cfg.LLMMaxAttempts = 3
	}
	if cfg.DraftMaxTokens <= 0 {
		cfg.DraftMaxTokens = 2000
	}
	if cfg.DraftMaxBatchTokens <= 0 {
		cfg.DraftMaxBatchTokens = 8192
	}
	if cfg.DraftDelay < 0 {
		cfg.DraftDelay = 0
	}
	if cfg.MaxSourceChars <= 0 {
		cfg.MaxSourceChars = 35000
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.MaxTextChars <= 0 {
		cfg.MaxTextChars = 500000
	}
	if cfg.MinTextChars < 0 {
		cfg.MinTextChars = 0
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("TASKDRAFT_API_KEY is required")
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH is required")
	}
	if !c.HasProvider() {
		return fmt.Errorf("at least one of GROQ_API_KEY, GEMINI_API_KEY, OPENAI_API_KEY or ANTHROPIC_API_KEY is required")
	}
	for _, name := range c.ProviderOrder {
		switch name {
		case "groq", "gemini", "openai", "anthropic":
		default:
			return fmt.Errorf("LLM_PROVIDER_ORDER: unknown provider %q", name)
		}
	}
	return nil
}

// HasProvider reports whether any LLM provider key is set.
func (c Config) HasProvider() bool {
	return c.GroqAPIKey != "" || c.GeminiAPIKey != "" || c.OpenAIAPIKey != "" || c.AnthropicAPIKey != ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

// envList reads a comma-separated list, lower-cased with blanks removed.
func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
