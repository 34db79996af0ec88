// Package config handles configuration loading for StockPredictor.
// It supports YAML config files, a .env file in the working directory, and
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for all environment overrides.
const EnvPrefix = "STOCKPREDICTOR"

// Environment variables read for the completion credential, in priority order.
const (
	EnvLLMAPIKey  = "STOCKPREDICTOR_LLM_API_KEY"
	EnvGroqAPIKey = "GROQ_API_KEY"
)

// Config represents the complete application configuration.
type Config struct {
	LLM     LLMConfig     `mapstructure:"llm"     yaml:"llm"`
	Quote   QuoteConfig   `mapstructure:"quote"   yaml:"quote"`
	API     APIConfig     `mapstructure:"api"     yaml:"api"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
}

// LLMConfig holds the completion provider configuration.
type LLMConfig struct {
	Provider    string  `mapstructure:"provider"    yaml:"provider"` // "groq" or "openai"
	APIKey      string  `mapstructure:"api_key"     yaml:"api_key"`
	BaseURL     string  `mapstructure:"base_url"    yaml:"base_url"`
	Model       string  `mapstructure:"model"       yaml:"model"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"  yaml:"max_tokens"`
	TimeoutSec  int     `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// QuoteConfig holds quote adapter settings. An empty Endpoint means quotes
// are fetched in-process from the upstream at BaseURL.
type QuoteConfig struct {
	Endpoint   string `mapstructure:"endpoint"    yaml:"endpoint"`
	BaseURL    string `mapstructure:"base_url"    yaml:"base_url"`
	TimeoutSec int    `mapstructure:"timeout_sec" yaml:"timeout_sec"`
	CacheTTL   int    `mapstructure:"cache_ttl"   yaml:"cache_ttl"`  // seconds
	RateLimit  int    `mapstructure:"rate_limit"  yaml:"rate_limit"` // requests per second
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format"` // "text" or "json"
}

// QuoteTimeout returns the quote fetch bound.
func (c QuoteConfig) QuoteTimeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// CacheDuration returns the upstream cache TTL.
func (c QuoteConfig) CacheDuration() time.Duration {
	return time.Duration(c.CacheTTL) * time.Second
}

// RequestTimeout returns the completion HTTP timeout.
func (c LLMConfig) RequestTimeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// Addr returns host:port for the API server.
func (c APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.stockpredictor/config.yaml (home directory)
//  3. /etc/stockpredictor/config.yaml (system)
//
// A .env file in the working directory is loaded into the process
// environment first. Environment variables override config file values.
// Format: STOCKPREDICTOR_<SECTION>_<KEY>, e.g., STOCKPREDICTOR_LLM_MODEL
func Load() (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".stockpredictor"))
	v.AddConfigPath("/etc/stockpredictor")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}
	return decode(v)
}

// Default returns the configuration built from defaults alone, ignoring
// files and the environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always decode.
	_ = v.Unmarshal(&cfg)
	return &cfg
}

// Validate checks values that would make the pipeline misbehave.
func (c *Config) Validate() error {
	var errs []error
	switch c.LLM.Provider {
	case "groq", "openai":
	default:
		errs = append(errs, fmt.Errorf("llm.provider: unknown provider %q", c.LLM.Provider))
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature: %v out of range [0, 2]", c.LLM.Temperature))
	}
	if c.LLM.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("llm.max_tokens: must be positive, got %d", c.LLM.MaxTokens))
	}
	if c.Quote.TimeoutSec <= 0 {
		errs = append(errs, fmt.Errorf("quote.timeout_sec: must be positive, got %d", c.Quote.TimeoutSec))
	}
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, fmt.Errorf("api.port: %d out of range", c.API.Port))
	}
	return errors.Join(errs...)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	return &cfg, nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// LLM defaults (Groq, low temperature for consistent output)
	v.SetDefault("llm.provider", "groq")
	v.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.model", "llama-3.3-70b-versatile")
	v.SetDefault("llm.temperature", 0.1)
	v.SetDefault("llm.max_tokens", 2000)
	v.SetDefault("llm.timeout_sec", 120)

	// Quote defaults
	v.SetDefault("quote.endpoint", "")
	v.SetDefault("quote.base_url", "https://query1.finance.yahoo.com")
	v.SetDefault("quote.timeout_sec", 10)
	v.SetDefault("quote.cache_ttl", 300) // 5 minutes
	v.SetDefault("quote.rate_limit", 5)

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"http://localhost:3000"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if key := os.Getenv(EnvLLMAPIKey); key != "" {
		cfg.LLM.APIKey = key
	} else if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv(EnvGroqAPIKey)
	}
}

// loadDotEnv loads path into the environment without overriding variables
// that are already set. A missing file is not an error.
func loadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("error loading %s: %w", path, err)
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
