package app

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/odnalezione/odnalezione-backend/internal/data/cache"
	"github.com/odnalezione/odnalezione-backend/internal/data/db"
	"github.com/odnalezione/odnalezione-backend/internal/observability"
	"github.com/odnalezione/odnalezione-backend/internal/platform/envutil"
	"github.com/odnalezione/odnalezione-backend/internal/platform/openai"
)

// Duration accepts "30s"-style strings or bare seconds in YAML.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	s := strings.TrimSpace(value.Value)
	if s == "" || s == "null" || s == "~" {
		d.Duration = 0
		return nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		d.Duration = time.Duration(n * float64(time.Second))
		return nil
	}
	dd, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("duration must look like \"30s\" or a number of seconds: %w", err)
	}
	d.Duration = dd
	return nil
}

type HTTPConfig struct {
	Addr            string   `yaml:"addr"`
	MaxRequestBytes int64    `yaml:"max_request_bytes"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

type OpenAIConfig struct {
	APIKey      string   `yaml:"api_key"`
	BaseURL     string   `yaml:"base_url"`
	Model       string   `yaml:"model"`
	Temperature *float64 `yaml:"temperature"`
	Timeout     Duration `yaml:"timeout"`
}

func (c OpenAIConfig) client(observer openai.Observer) openai.Config {
	return openai.Config{
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Model:       c.Model,
		Temperature: c.Temperature,
		Timeout:     c.Timeout.Duration,
		Observer:    observer,
	}
}

type Config struct {
	Env     string                   `yaml:"env"`
	HTTP    HTTPConfig               `yaml:"http"`
	OpenAI  OpenAIConfig             `yaml:"openai"`
	DB      db.Config                `yaml:"db"`
	Redis   cache.Config             `yaml:"redis"`
	Otel    observability.OtelConfig `yaml:"otel"`
	Metrics bool                     `yaml:"metrics"`
}

const defaultMaxRequestBytes = 10 << 20

func configFromEnv() *Config {
	oc := openai.ConfigFromEnv()
	return &Config{
		Env: envutil.String("LOG_MODE", "development"),
		HTTP: HTTPConfig{
			Addr:            ":" + envutil.String("PORT", "8080"),
			MaxRequestBytes: envutil.Int64("MAX_REQUEST_BYTES", defaultMaxRequestBytes),
			ShutdownTimeout: Duration{envutil.Seconds("SHUTDOWN_TIMEOUT_SECONDS", 15*time.Second)},
		},
		OpenAI: OpenAIConfig{
			APIKey:      oc.APIKey,
			BaseURL:     oc.BaseURL,
			Model:       oc.Model,
			Temperature: oc.Temperature,
			Timeout:     Duration{oc.Timeout},
		},
		DB: db.ConfigFromEnv(),
		Redis: cache.Config{
			Addr:     envutil.String("REDIS_ADDR", ""),
			Password: envutil.String("REDIS_PASSWORD", ""),
			DB:       envutil.Int("REDIS_DB", 0),
		},
		Otel:    observability.OtelConfigFromEnv(),
		Metrics: observability.Enabled(),
	}
}

// LoadConfig reads the environment, then overlays CONFIG_FILE when it is set.
// Keys present in the file win over the environment.
func LoadConfig() (*Config, error) {
	cfg := configFromEnv()
	if path := envutil.String("CONFIG_FILE", ""); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if strings.TrimSpace(c.Env) == "" {
		c.Env = "development"
	}
	c.HTTP.Addr = strings.TrimSpace(c.HTTP.Addr)
	if c.HTTP.Addr == "" || c.HTTP.Addr == ":" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.MaxRequestBytes <= 0 {
		c.HTTP.MaxRequestBytes = defaultMaxRequestBytes
	}
	if c.HTTP.ShutdownTimeout.Duration <= 0 {
		c.HTTP.ShutdownTimeout.Duration = 15 * time.Second
	}
	if strings.TrimSpace(c.Otel.Environment) == "" {
		c.Otel.Environment = c.Env
	}
}
