package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is the process configuration. The AI*/DeepL*/language fields are only
// consulted when no database is configured; otherwise the groupware tables win.
type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	DatabaseURL string `envconfig:"DATABASE_URL"`

	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"console"`

	AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`

	// Number of tag-like substrings above which model output is treated as markup.
	MarkupTagThreshold int `envconfig:"MARKUP_TAG_THRESHOLD" default:"3"`

	AIModel       string `envconfig:"AI_MODEL"`
	AICustomModel string `envconfig:"AI_CUSTOM_MODEL"`
	AIAPIURL      string `envconfig:"AI_API_URL"`
	AIAPIKey      string `envconfig:"AI_API_KEY"`
	AIMaxTokens   string `envconfig:"AI_MAX_TOKENS"`
	DeepLAPIKey   string `envconfig:"DEEPL_API_KEY"`
	DeepLAPIURL   string `envconfig:"DEEPL_API_URL"`

	UILanguage           string   `envconfig:"UI_LANGUAGE" default:"en"`
	TranslationLanguages []string `envconfig:"TRANSLATION_LANGUAGES"`
	InstalledLanguages   []string `envconfig:"INSTALLED_LANGUAGES" default:"en,de,fr,it,es,nl,pt,pl"`
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cfg.MarkupTagThreshold < 0 {
		return nil, fmt.Errorf("MARKUP_TAG_THRESHOLD must not be negative, got %d", cfg.MarkupTagThreshold)
	}
	cfg.UILanguage = strings.ToLower(strings.TrimSpace(cfg.UILanguage))

	return &cfg, nil
}

// AppConfig returns the AI settings in the key layout of the groupware config table.
func (c *Config) AppConfig() map[string]string {
	return map[string]string{
		"ai_model":        c.AIModel,
		"ai_custom_model": c.AICustomModel,
		"ai_api_url":      c.AIAPIURL,
		"ai_api_key":      c.AIAPIKey,
		"ai_max_tokens":   c.AIMaxTokens,
		"deepl_api_key":   c.DeepLAPIKey,
		"deepl_api_url":   c.DeepLAPIURL,
	}
}
