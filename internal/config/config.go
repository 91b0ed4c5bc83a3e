// Package config loads service configuration from a YAML file with
// environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all service configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
	Model    ModelConfig    `mapstructure:"model"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Feedback FeedbackConfig `mapstructure:"feedback"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"` // "debug", "info", "warn", "error"
	Mode  string `mapstructure:"mode"`  // "development" or "release"
}

// ModelConfig holds inference backend settings.
type ModelConfig struct {
	Backend     string `mapstructure:"backend"`
	Path        string `mapstructure:"path"`
	LibraryPath string `mapstructure:"library_path"`
	Threads     int    `mapstructure:"threads"`
	Workers     int    `mapstructure:"workers"`
}

// CacheConfig holds model-cache janitor settings.
type CacheConfig struct {
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
	EvictionTTL     time.Duration `mapstructure:"eviction_ttl"`
	ReclaimInterval time.Duration `mapstructure:"reclaim_interval"`
}

// RedisConfig holds the optional detection result cache settings.
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// FeedbackConfig holds feedback forwarding settings. An empty WebhookURL
// keeps feedback in the service log.
type FeedbackConfig struct {
	WebhookURL    string        `mapstructure:"webhook_url"`
	BatchSize     int           `mapstructure:"batch_size"`
	FlushInterval time.Duration `mapstructure:"flush_interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.mode", "development")

	v.SetDefault("model.backend", "onnx")
	v.SetDefault("model.path", "models/yolov8n-waste.onnx")
	v.SetDefault("model.threads", 0)
	v.SetDefault("model.workers", 0)

	v.SetDefault("cache.sweep_interval", 30*time.Second)
	v.SetDefault("cache.eviction_ttl", 10*time.Minute)
	v.SetDefault("cache.reclaim_interval", time.Minute)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", time.Hour)

	v.SetDefault("feedback.batch_size", 20)
	v.SetDefault("feedback.flush_interval", 5*time.Second)
}

// Load reads configuration from path, falling back to defaults when the
// file is absent. Any key can be overridden with an ECOSCAN_ environment
// variable (ECOSCAN_SERVER_PORT, ECOSCAN_MODEL_PATH, ...).
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/ecoscan")
	}

	v.SetEnvPrefix("ECOSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing file is fine unless the caller named it explicitly.
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: read %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d out of range", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("config: server.shutdown_timeout must be positive")
	}
	if c.Model.Path == "" {
		return fmt.Errorf("config: model.path is required")
	}
	if c.Model.Workers < 0 {
		return fmt.Errorf("config: model.workers must not be negative")
	}
	if c.Cache.SweepInterval <= 0 || c.Cache.EvictionTTL <= 0 || c.Cache.ReclaimInterval <= 0 {
		return fmt.Errorf("config: cache intervals must be positive")
	}
	if c.Redis.Enabled && c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required when redis is enabled")
	}
	return nil
}

// Addr returns the listener address in host:port form.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
