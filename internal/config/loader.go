package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "docr"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "DOCR"
)

// Loader handles loading configuration from files, environment variables and
// bound flags.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a configuration loader on the global viper instance so
// cobra flag bindings are honored.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// Load resolves configuration from a .env file, config files, environment
// variables and defaults, then validates it.
func (l *Loader) Load() (*Config, error) {
	return l.load("")
}

// LoadWithFile is Load with an explicit config file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	if configFile == "" {
		return l.Load()
	}
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configFile)
	}
	return l.load(configFile)
}

func (l *Loader) load(configFile string) (*Config, error) {
	// A local .env file feeds the environment before viper resolves it.
	// Missing files are fine.
	_ = godotenv.Load()

	if configFile != "" {
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		l.addConfigPaths()
	}

	l.v.SetEnvPrefix(EnvPrefix)
	l.v.SetEnvKeyReplacer(keyReplacer())
	l.v.AutomaticEnv()

	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// No config file found; defaults and env vars apply.
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// GetViper exposes the underlying viper instance for flag binding.
func (l *Loader) GetViper() *viper.Viper { return l.v }

func (l *Loader) addConfigPaths() {
	l.v.AddConfigPath(".")
	if home, err := os.UserHomeDir(); err == nil {
		l.v.AddConfigPath(filepath.Join(home, ".config", "docr"))
		l.v.AddConfigPath(home)
	}
	l.v.AddConfigPath("/etc/docr")
}

func (l *Loader) setDefaults() {
	def := DefaultConfig()

	l.v.SetDefault("log_level", def.LogLevel)
	l.v.SetDefault("verbose", def.Verbose)

	l.v.SetDefault("pipeline.engine", def.Pipeline.Engine)
	l.v.SetDefault("pipeline.language", def.Pipeline.Language)
	l.v.SetDefault("pipeline.scale", def.Pipeline.Scale)
	l.v.SetDefault("pipeline.overlay.stroke_color", def.Pipeline.Overlay.StrokeColor)
	l.v.SetDefault("pipeline.overlay.fill_color", def.Pipeline.Overlay.FillColor)
	l.v.SetDefault("pipeline.overlay.stroke_width", def.Pipeline.Overlay.StrokeWidth)

	l.v.SetDefault("output.format", def.Output.Format)
	l.v.SetDefault("output.file", def.Output.File)
	l.v.SetDefault("output.overlay_dir", def.Output.OverlayDir)

	l.v.SetDefault("server.host", def.Server.Host)
	l.v.SetDefault("server.port", def.Server.Port)
	l.v.SetDefault("server.cors_origin", def.Server.CORSOrigin)
	l.v.SetDefault("server.max_upload_mb", def.Server.MaxUploadMB)
	l.v.SetDefault("server.timeout_sec", def.Server.TimeoutSec)
	l.v.SetDefault("server.shutdown_timeout", def.Server.ShutdownTimeout)
	l.v.SetDefault("server.artifacts_dir", def.Server.ArtifactsDir)
	l.v.SetDefault("server.artifacts_base_url", def.Server.ArtifactsBaseURL)
	l.v.SetDefault("server.rate_limit.requests_per_minute", def.Server.RateLimit.RequestsPerMinute)
	l.v.SetDefault("server.rate_limit.requests_per_hour", def.Server.RateLimit.RequestsPerHour)
	l.v.SetDefault("server.rate_limit.max_requests_per_day", def.Server.RateLimit.MaxRequestsPerDay)
	l.v.SetDefault("server.rate_limit.max_upload_mb_per_day", def.Server.RateLimit.MaxUploadMBPerDay)
}

// keyReplacer maps nested config keys to environment variable segments,
// e.g. pipeline.engine -> DOCR_PIPELINE_ENGINE.
func keyReplacer() *strings.Replacer {
	return strings.NewReplacer(".", "_")
}

// GenerateDefaultConfigFile writes the default configuration as YAML.
func GenerateDefaultConfigFile(filename string) error {
	def := DefaultConfig()
	data, err := yaml.Marshal(&def)
	if err != nil {
		return fmt.Errorf("marshal default config: %w", err)
	}
	return os.WriteFile(filename, data, 0o600)
}
