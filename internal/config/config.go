// internal/config/config.go
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DefaultPort                = "8080"
	DefaultProvider            = "google"
	DefaultGeminiModel         = "gemini-3-flash-preview"
	DefaultCarouselTemperature = 0.3
	DefaultPromptTemperature   = 0.7
	DefaultSessionTTL          = 2 * time.Hour
	DefaultPromptConcurrency   = 4
)

// Config holds every operator setting of the service.
type Config struct {
	Port      string
	DebugMode bool
	LogLevel  string
	LogFormat string

	// LLM
	LLMProvider         string
	GeminiAPIKey        string
	GeminiModel         string
	OpenAIAPIKey        string
	OpenAIBaseURL       string
	OpenAIModel         string
	CarouselTemperature float32
	PromptTemperature   float32

	// Sessions
	SessionTTL        time.Duration
	PromptConcurrency int

	CORSOrigins []string
}

// APIKey returns the credential of the configured provider.
// Every provider other than google speaks the OpenAI wire format.
func (c *Config) APIKey() string {
	if c.LLMProvider == DefaultProvider {
		return c.GeminiAPIKey
	}
	return c.OpenAIAPIKey
}

// Model returns the model name of the configured provider.
func (c *Config) Model() string {
	if c.LLMProvider == DefaultProvider {
		return c.GeminiModel
	}
	return c.OpenAIModel
}

// ProviderConfig is the map handed to llm.Registry.GetProvider.
func (c *Config) ProviderConfig() map[string]string {
	cfg := map[string]string{
		"api_key":       c.APIKey(),
		"default_model": c.Model(),
	}
	if c.LLMProvider != DefaultProvider && c.OpenAIBaseURL != "" {
		cfg["base_url"] = c.OpenAIBaseURL
	}
	return cfg
}

// Load reads .env (optional) and the process environment.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return fromViper(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", DefaultPort)
	v.SetDefault("DEBUG_MODE", true)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LLM_PROVIDER", DefaultProvider)
	v.SetDefault("GEMINI_MODEL", DefaultGeminiModel)
	v.SetDefault("OPENAI_MODEL", "")
	v.SetDefault("CAROUSEL_TEMPERATURE", DefaultCarouselTemperature)
	v.SetDefault("PROMPT_TEMPERATURE", DefaultPromptTemperature)
	v.SetDefault("SESSION_TTL", DefaultSessionTTL)
	v.SetDefault("PROMPT_CONCURRENCY", DefaultPromptConcurrency)
	v.SetDefault("CORS_ORIGINS", "*")

	// AutomaticEnv only resolves keys viper already knows about.
	for _, key := range []string{"GEMINI_API_KEY", "API_KEY", "OPENAI_API_KEY", "OPENAI_BASE_URL"} {
		v.SetDefault(key, "")
	}
}

func fromViper(v *viper.Viper) (*Config, error) {
	provider := strings.ToLower(strings.TrimSpace(v.GetString("LLM_PROVIDER")))
	if provider == "" {
		return nil, fmt.Errorf("LLM_PROVIDER must not be empty")
	}

	geminiKey := v.GetString("GEMINI_API_KEY")
	if geminiKey == "" {
		geminiKey = v.GetString("API_KEY")
	}

	concurrency := v.GetInt("PROMPT_CONCURRENCY")
	if concurrency <= 0 {
		concurrency = DefaultPromptConcurrency
	}

	ttl := v.GetDuration("SESSION_TTL")
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}

	cfg := &Config{
		Port:                v.GetString("PORT"),
		DebugMode:           v.GetBool("DEBUG_MODE"),
		LogLevel:            v.GetString("LOG_LEVEL"),
		LogFormat:           v.GetString("LOG_FORMAT"),
		LLMProvider:         provider,
		GeminiAPIKey:        geminiKey,
		GeminiModel:         v.GetString("GEMINI_MODEL"),
		OpenAIAPIKey:        v.GetString("OPENAI_API_KEY"),
		OpenAIBaseURL:       v.GetString("OPENAI_BASE_URL"),
		OpenAIModel:         v.GetString("OPENAI_MODEL"),
		CarouselTemperature: float32(v.GetFloat64("CAROUSEL_TEMPERATURE")),
		PromptTemperature:   float32(v.GetFloat64("PROMPT_TEMPERATURE")),
		SessionTTL:          ttl,
		PromptConcurrency:   concurrency,
		CORSOrigins:         splitList(v.GetString("CORS_ORIGINS")),
	}

	if cfg.APIKey() == "" {
		// Not fatal: every generation call reports the missing key instead.
		slog.Warn("LLM API key is not set; generation requests will fail until it is configured",
			"provider", cfg.LLMProvider)
	}

	return cfg, nil
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
