package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// TitlePlaceholder marks where the encoded title goes in SourceConfig.RecommendPath.
const TitlePlaceholder = "{title}"

var (
	once     sync.Once
	instance *Config
)

// SourceConfig describes the remote catalog and recommendation service.
type SourceConfig struct {
	BaseURL        string        `yaml:"base_url" split_words:"true"`
	CatalogPath    string        `yaml:"catalog_path" split_words:"true"`
	RecommendPath  string        `yaml:"recommend_path" split_words:"true"`
	AuthorPath     string        `yaml:"author_path" split_words:"true"`
	CategoryPath   string        `yaml:"category_path" split_words:"true"`
	SearchPath     string        `yaml:"search_path" split_words:"true"`
	Limit          int           `yaml:"limit" split_words:"true"`
	Timeout        time.Duration `yaml:"timeout" split_words:"true"`
	RatePerSecond  float64       `yaml:"rate_per_second" split_words:"true"`
	Burst          int           `yaml:"burst" split_words:"true"`
	ValidateSchema bool          `yaml:"validate_schema" split_words:"true"`
}

// BreakerConfig tunes the circuit breaker in front of the remote service.
type BreakerConfig struct {
	MaxRequests  uint32        `yaml:"max_requests" split_words:"true"`
	Interval     time.Duration `yaml:"interval" split_words:"true"`
	Timeout      time.Duration `yaml:"timeout" split_words:"true"`
	MinRequests  uint32        `yaml:"min_requests" split_words:"true"`
	FailureRatio float64       `yaml:"failure_ratio" split_words:"true"`
}

// CLIConfig настройки для интерактивной оболочки
type CLIConfig struct {
	Debug       bool   `yaml:"debug" split_words:"true"`
	Prompt      string `yaml:"prompt" split_words:"true"`
	HistoryFile string `yaml:"history_file" split_words:"true"`
	Spinner     bool   `yaml:"spinner" split_words:"true"`
}

type LogConfig struct {
	Level string `yaml:"level" split_words:"true"`
	Path  string `yaml:"path" split_words:"true"`
}

// MetricsConfig настройки для экспортера метрик
type MetricsConfig struct {
	PushgatewayURL string `yaml:"pushgateway_url" split_words:"true"`
	Job            string `yaml:"job" split_words:"true"`
}

// Config корень дерева конфигурации, соответствующий bookrec.yaml
type Config struct {
	Source  SourceConfig  `yaml:"source" split_words:"true"`
	Breaker BreakerConfig `yaml:"breaker" split_words:"true"`
	CLI     CLIConfig     `yaml:"cli" split_words:"true"`
	Log     LogConfig     `yaml:"log" split_words:"true"`
	Metrics MetricsConfig `yaml:"metrics" split_words:"true"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Source: SourceConfig{
			BaseURL:        "http://localhost:8000",
			CatalogPath:    "/books",
			RecommendPath:  "/recommend/" + TitlePlaceholder,
			AuthorPath:     "/author",
			CategoryPath:   "/category",
			SearchPath:     "/search",
			Limit:          10,
			Timeout:        30 * time.Second,
			RatePerSecond:  5,
			Burst:          1,
			ValidateSchema: true,
		},
		Breaker: BreakerConfig{
			MaxRequests:  1,
			Interval:     time.Minute,
			Timeout:      30 * time.Second,
			MinRequests:  5,
			FailureRatio: 0.6,
		},
		CLI: CLIConfig{
			Prompt:      "bookrec> ",
			HistoryFile: ".bookrec_history",
			Spinner:     true,
		},
		Log: LogConfig{
			Level: "warn",
		},
		Metrics: MetricsConfig{
			Job: "bookrec",
		},
	}
}

// Get возвращает инициализированный объект конфигурации (Singleton)
func Get() *Config {
	once.Do(func() {
		path := os.Getenv("BOOKREC_CONFIG")
		if path == "" {
			path = "bookrec.yaml"
		}

		cfg, err := Load(path)
		if err != nil {
			logrus.Fatalf("[CONFIG ERROR] %v", err)
		}
		instance = cfg
	})
	return instance
}

// Load reads path on top of Default, applies BOOKREC_* overrides and validates.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	f, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(f, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	if err := envconfig.Process("BOOKREC", &cfg); err != nil {
		return nil, fmt.Errorf("env overrides: %w", err)
	}
	cfg.Source.BaseURL = strings.TrimSuffix(cfg.Source.BaseURL, "/")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Source.BaseURL == "" {
		return ErrInvalid("source.base_url is required")
	}
	if !strings.Contains(c.Source.RecommendPath, TitlePlaceholder) {
		return ErrInvalid("source.recommend_path must contain " + TitlePlaceholder)
	}
	if c.Source.CatalogPath == "" {
		return ErrInvalid("source.catalog_path is required")
	}
	if c.Source.Limit < 0 || c.Source.Burst < 0 || c.Source.RatePerSecond < 0 {
		return ErrInvalid("source.limit, source.burst and source.rate_per_second must not be negative")
	}
	if c.Breaker.FailureRatio < 0 || c.Breaker.FailureRatio > 1 {
		return ErrInvalid("breaker.failure_ratio must be within [0, 1]")
	}
	return nil
}

type invalidErr string

func (e invalidErr) Error() string { return string(e) }

// ErrInvalid builds a validation error.
func ErrInvalid(msg string) error { return invalidErr(msg) }
