// Package config loads and validates generator configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Storage backends.
const (
	BackendGCS    = "gcs"
	BackendLocal  = "local"
	BackendMemory = "memory"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Site      SiteConfig      `mapstructure:"site"`
	DB        DBConfig        `mapstructure:"db"`
	Storage   StorageConfig   `mapstructure:"storage"`
	PubSub    PubSubConfig    `mapstructure:"pubsub"`
	Generator GeneratorConfig `mapstructure:"generator"`
	Verify    VerifyConfig    `mapstructure:"verify"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// ServerConfig controls HTTP server behavior.
type ServerConfig struct {
	Port int `mapstructure:"port"`
	// RunTimeoutSeconds bounds a triggered run. Zero leaves the run unbounded.
	RunTimeoutSeconds int `mapstructure:"run_timeout_seconds"`
}

// AuthConfig defines API authentication toggles.
type AuthConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	APIKey  string `mapstructure:"api_key"`
}

// SiteConfig describes the live site the snapshots stand in for.
type SiteConfig struct {
	BaseURL         string `mapstructure:"base_url"`
	Name            string `mapstructure:"name"`
	Description     string `mapstructure:"description"`
	DefaultImage    string `mapstructure:"default_image"`
	Locale          string `mapstructure:"locale"`
	Currency        string `mapstructure:"currency"`
	RedirectDelayMs int    `mapstructure:"redirect_delay_ms"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN                    string `mapstructure:"dsn"`
	MaxConns               int32  `mapstructure:"max_conns"`
	MinConns               int32  `mapstructure:"min_conns"`
	MaxConnLifetimeMinutes int    `mapstructure:"max_conn_lifetime_minutes"`
	PageSize               int    `mapstructure:"page_size"`
}

// StorageConfig selects and configures the page store.
type StorageConfig struct {
	Backend          string             `mapstructure:"backend"`
	Bucket           string             `mapstructure:"bucket"`
	Prefix           string             `mapstructure:"prefix"`
	CacheControl     string             `mapstructure:"cache_control"`
	UploadsPerSecond float64            `mapstructure:"uploads_per_second"`
	UploadBurst      int                `mapstructure:"upload_burst"`
	Local            LocalStorageConfig `mapstructure:"local"`
}

// LocalStorageConfig configures the filesystem backend.
type LocalStorageConfig struct {
	BaseDir string `mapstructure:"base_dir"`
}

// PubSubConfig holds metadata for run report notifications.
type PubSubConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	ProjectID string `mapstructure:"project_id"`
	TopicName string `mapstructure:"topic_name"`
}

// GeneratorConfig tunes a run.
type GeneratorConfig struct {
	Sitemap     bool `mapstructure:"sitemap"`
	ErrorSample int  `mapstructure:"error_sample"`
}

// VerifyConfig configures the snapshot verifier.
type VerifyConfig struct {
	BaseURL          string `mapstructure:"base_url"`
	UserAgent        string `mapstructure:"user_agent"`
	BrowserUserAgent string `mapstructure:"browser_user_agent"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
	Parallelism      int    `mapstructure:"parallelism"`
	Headless         bool   `mapstructure:"headless"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Level       string `mapstructure:"level"`
}

// TelemetryConfig controls tracing.
type TelemetryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	ServiceName string  `mapstructure:"service_name"`
	SampleRatio float64 `mapstructure:"sample_ratio"`
}

// Load builds a Config from disk/environment. With an empty path the usual
// locations are searched and a missing file is not an error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SNAPSHOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	} else {
		v.SetConfigName("snapshotgen")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/snapshotgen/")
		v.AddConfigPath("$HOME/.snapshotgen")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.run_timeout_seconds", 0)
	v.SetDefault("auth.enabled", false)
	v.SetDefault("auth.api_key", "")
	v.SetDefault("site.base_url", "https://ottocollect.com")
	v.SetDefault("site.name", "OttoCollect")
	v.SetDefault("site.description", "")
	v.SetDefault("site.default_image", "")
	v.SetDefault("site.locale", "en")
	v.SetDefault("site.currency", "USD")
	v.SetDefault("site.redirect_delay_ms", 100)
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("db.min_conns", 0)
	v.SetDefault("db.max_conn_lifetime_minutes", 30)
	v.SetDefault("db.page_size", 1000)
	v.SetDefault("storage.backend", BackendGCS)
	v.SetDefault("storage.bucket", "static-pages")
	v.SetDefault("storage.prefix", "")
	v.SetDefault("storage.cache_control", "public, max-age=3600")
	v.SetDefault("storage.uploads_per_second", 0)
	v.SetDefault("storage.upload_burst", 1)
	v.SetDefault("storage.local.base_dir", "data/static-pages")
	v.SetDefault("pubsub.enabled", false)
	v.SetDefault("pubsub.project_id", "")
	v.SetDefault("pubsub.topic_name", "static-pages-generated")
	v.SetDefault("generator.sitemap", false)
	v.SetDefault("generator.error_sample", 10)
	v.SetDefault("verify.base_url", "")
	v.SetDefault("verify.user_agent", "Mozilla/5.0 (compatible; Googlebot/2.1; +http://www.google.com/bot.html)")
	v.SetDefault("verify.browser_user_agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36")
	v.SetDefault("verify.timeout_seconds", 15)
	v.SetDefault("verify.parallelism", 4)
	v.SetDefault("verify.headless", false)
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.level", "info")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("telemetry.service_name", "seo-snapshot-generator")
	v.SetDefault("telemetry.sample_ratio", 1.0)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Server.RunTimeoutSeconds < 0 {
		return fmt.Errorf("server.run_timeout_seconds must be >= 0")
	}
	if c.Auth.Enabled && c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key must be set when auth is enabled")
	}
	if strings.TrimSpace(c.Site.BaseURL) == "" {
		return fmt.Errorf("site.base_url is required")
	}
	if c.DB.PageSize <= 0 {
		return fmt.Errorf("db.page_size must be > 0")
	}
	switch c.Storage.Backend {
	case BackendGCS:
		if c.Storage.Bucket == "" {
			return fmt.Errorf("storage.bucket is required for the gcs backend")
		}
	case BackendLocal:
		if c.Storage.Local.BaseDir == "" {
			return fmt.Errorf("storage.local.base_dir is required for the local backend")
		}
	case BackendMemory:
	default:
		return fmt.Errorf("storage.backend must be one of gcs, local, memory; got %q", c.Storage.Backend)
	}
	if c.Storage.UploadsPerSecond < 0 {
		return fmt.Errorf("storage.uploads_per_second must be >= 0")
	}
	if c.PubSub.Enabled && (c.PubSub.ProjectID == "" || c.PubSub.TopicName == "") {
		return fmt.Errorf("pubsub.project_id and pubsub.topic_name must be set when pubsub is enabled")
	}
	if c.Generator.ErrorSample <= 0 {
		return fmt.Errorf("generator.error_sample must be > 0")
	}
	if c.Verify.TimeoutSeconds <= 0 {
		return fmt.Errorf("verify.timeout_seconds must be > 0")
	}
	if c.Telemetry.SampleRatio < 0 || c.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("telemetry.sample_ratio must be within [0, 1]")
	}
	return nil
}

// RunTimeout converts server.run_timeout_seconds into a duration.
func (c Config) RunTimeout() time.Duration {
	return time.Duration(c.Server.RunTimeoutSeconds) * time.Second
}

// ConnLifetime converts db.max_conn_lifetime_minutes into a duration.
func (c Config) ConnLifetime() time.Duration {
	return time.Duration(c.DB.MaxConnLifetimeMinutes) * time.Minute
}

// RedirectDelay converts site.redirect_delay_ms into a duration.
func (c Config) RedirectDelay() time.Duration {
	return time.Duration(c.Site.RedirectDelayMs) * time.Millisecond
}

// VerifyTimeout converts verify.timeout_seconds into a duration.
func (c Config) VerifyTimeout() time.Duration {
	return time.Duration(c.Verify.TimeoutSeconds) * time.Second
}

// VerifyBaseURL falls back to the site origin.
func (c Config) VerifyBaseURL() string {
	if c.Verify.BaseURL != "" {
		return c.Verify.BaseURL
	}
	return c.Site.BaseURL
}
