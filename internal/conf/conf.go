package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/colorcodebot/colorcodebot/internal/biz/usecase"
	"github.com/colorcodebot/colorcodebot/internal/retryutil"
)

// Config represents application configuration
type Config struct {
	// Telegram configuration
	Telegram TelegramConfig

	// Store configuration
	Store StoreConfig

	// Resolver configuration
	Resolver ResolverConfig

	// Classifier configuration
	Classifier ClassifierConfig

	// Render configuration
	Render RenderConfig

	// Server configuration
	Server ServerConfig

	// Log configuration
	Log LogConfig

	// ConfigDir holds the YAML tables and locale
	ConfigDir string `env:"CONFIG_DIR" envDefault:"configs"`

	// Tables and Locale are loaded from ConfigDir
	Tables *Tables `env:"-"`
	Locale *Locale `env:"-"`
}

// TelegramConfig contains Telegram configuration
type TelegramConfig struct {
	APIKey string `env:"TG_API_KEY"`
}

// StoreConfig contains config store settings
type StoreConfig struct {
	DBPath string `env:"DB_PATH"`
}

// ResolverConfig contains syntax resolution settings
type ResolverConfig struct {
	ProbabilityMin    float64       `env:"PROBABILITY_MIN" envDefault:"0.12"`
	ClassifierTimeout time.Duration `env:"CLASSIFIER_TIMEOUT" envDefault:"5s"`
}

// ClassifierConfig selects the classifier backend
type ClassifierConfig struct {
	Backend string `env:"CLASSIFIER" envDefault:"chroma"`
	APIKey  string `env:"OPENAI_API_KEY"`
	BaseURL string `env:"OPENAI_BASE_URL"`
	Model   string `env:"OPENAI_MODEL"`
}

// RenderConfig contains image rendering settings
type RenderConfig struct {
	SiliconPath     string `env:"SILICON_PATH" envDefault:"silicon"`
	BackgroundImage string `env:"BACKGROUND_IMAGE"`
	Dir             string `env:"RENDER_DIR"`
	DarkTheme       string `env:"THEME_DARK" envDefault:"Coldark-Dark"`
	LightTheme      string `env:"THEME_LIGHT" envDefault:"Coldark-Cold"`
}

// ServerConfig contains event loop settings
type ServerConfig struct {
	PromptTTL     time.Duration `env:"PROMPT_TTL" envDefault:"30s"`
	RetryAttempts int           `env:"RETRY_ATTEMPTS" envDefault:"6"`
	RetryDelay    time.Duration `env:"RETRY_DELAY" envDefault:"3s"`
	Workers       int           `env:"WORKERS" envDefault:"8"`
}

// LogConfig contains logging settings
type LogConfig struct {
	JSON  bool `env:"LOG_JSON" envDefault:"true"`
	Debug bool `env:"DEBUG" envDefault:"false"`
}

// LoadFromEnv loads configuration from environment variables and the YAML
// files in CONFIG_DIR
func LoadFromEnv() (*Config, error) {
	return load(env.Options{})
}

// LoadFromMap is LoadFromEnv over an explicit environment
func LoadFromMap(environ map[string]string) (*Config, error) {
	return load(env.Options{Environment: environ})
}

func load(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.Store.DBPath == "" {
		homeDir, _ := os.UserHomeDir()
		cfg.Store.DBPath = filepath.Join(homeDir, ".colorcodebot", "ccb.sqlite")
	}

	tables, err := LoadTables(cfg.ConfigDir)
	if err != nil {
		return nil, err
	}
	cfg.Tables = tables

	locale, err := LoadLocale(cfg.ConfigDir)
	if err != nil {
		return nil, err
	}
	cfg.Locale = locale

	return &cfg, nil
}

// Validate validates the settings every command needs
func (c *Config) Validate() error {
	if c.Resolver.ProbabilityMin < 0 || c.Resolver.ProbabilityMin > 1 {
		return &ConfigError{Field: "PROBABILITY_MIN", Message: "must be between 0 and 1"}
	}
	switch strings.ToLower(c.Classifier.Backend) {
	case "chroma", "none":
	case "openai":
		if c.Classifier.APIKey == "" {
			return &ConfigError{Field: "OPENAI_API_KEY", Message: "required when CLASSIFIER=openai"}
		}
	default:
		return &ConfigError{Field: "CLASSIFIER", Message: "must be chroma, openai or none"}
	}
	if c.Server.RetryAttempts < 1 {
		return &ConfigError{Field: "RETRY_ATTEMPTS", Message: "must be at least 1"}
	}
	if c.Server.Workers < 1 {
		return &ConfigError{Field: "WORKERS", Message: "must be at least 1"}
	}
	return nil
}

// ValidateServe additionally checks what the bot needs to connect
func (c *Config) ValidateServe() error {
	if c.Telegram.APIKey == "" {
		return &ConfigError{Field: "TG_API_KEY", Message: "required"}
	}
	return c.Validate()
}

// ToResolverConfig converts to resolver configuration
func (c *Config) ToResolverConfig() usecase.ResolverConfig {
	return usecase.ResolverConfig{
		ProbabilityMin:    c.Resolver.ProbabilityMin,
		ClassifierTimeout: c.Resolver.ClassifierTimeout,
	}
}

// ToRenderConfig converts to render configuration
func (c *Config) ToRenderConfig() usecase.RenderConfig {
	return usecase.RenderConfig{
		DarkTheme:       c.Render.DarkTheme,
		LightTheme:      c.Render.LightTheme,
		BackgroundImage: c.Render.BackgroundImage,
		Folder:          c.Render.Dir,
	}
}

// ToRetryPolicy converts to the gateway retry policy
func (c *Config) ToRetryPolicy() retryutil.Policy {
	return retryutil.Policy{
		Attempts: c.Server.RetryAttempts,
		Delay:    c.Server.RetryDelay,
	}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
