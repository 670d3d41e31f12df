package config

// Config is the complete configuration for the docr application. It covers
// all commands (process, serve) and loads from configuration files,
// environment variables and command-line flags.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Pipeline PipelineConfig `mapstructure:"pipeline" yaml:"pipeline" json:"pipeline"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output" json:"output"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server" json:"server"`
}

// PipelineConfig contains OCR pipeline settings.
type PipelineConfig struct {
	// Engine selects the OCR backend: "tesseract" or "vision".
	Engine   string  `mapstructure:"engine" yaml:"engine" json:"engine"`
	Language string  `mapstructure:"language" yaml:"language" json:"language"`
	Scale    float64 `mapstructure:"scale" yaml:"scale" json:"scale"`

	Overlay OverlayConfig `mapstructure:"overlay" yaml:"overlay" json:"overlay"`
}

// OverlayConfig contains word-box overlay styling.
type OverlayConfig struct {
	StrokeColor string `mapstructure:"stroke_color" yaml:"stroke_color" json:"stroke_color"`
	FillColor   string `mapstructure:"fill_color" yaml:"fill_color" json:"fill_color"`
	StrokeWidth int    `mapstructure:"stroke_width" yaml:"stroke_width" json:"stroke_width"`
}

// OutputConfig contains output settings for the process command.
type OutputConfig struct {
	Format     string `mapstructure:"format" yaml:"format" json:"format"`
	File       string `mapstructure:"file" yaml:"file" json:"file"`
	OverlayDir string `mapstructure:"overlay_dir" yaml:"overlay_dir" json:"overlay_dir"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host             string `mapstructure:"host" yaml:"host" json:"host"`
	Port             int    `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin       string `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	MaxUploadMB      int    `mapstructure:"max_upload_mb" yaml:"max_upload_mb" json:"max_upload_mb"`
	TimeoutSec       int    `mapstructure:"timeout_sec" yaml:"timeout_sec" json:"timeout_sec"`
	ShutdownTimeout  int    `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
	ArtifactsDir     string `mapstructure:"artifacts_dir" yaml:"artifacts_dir" json:"artifacts_dir"`
	ArtifactsBaseURL string `mapstructure:"artifacts_base_url" yaml:"artifacts_base_url" json:"artifacts_base_url"`

	RateLimit RateLimitConfig `mapstructure:"rate_limit" yaml:"rate_limit" json:"rate_limit"`
}

// RateLimitConfig contains per-client limits for the ingestion endpoint.
// All values zero leaves rate limiting disabled.
type RateLimitConfig struct {
	RequestsPerMinute int `mapstructure:"requests_per_minute" yaml:"requests_per_minute" json:"requests_per_minute"`
	RequestsPerHour   int `mapstructure:"requests_per_hour" yaml:"requests_per_hour" json:"requests_per_hour"`
	MaxRequestsPerDay int `mapstructure:"max_requests_per_day" yaml:"max_requests_per_day" json:"max_requests_per_day"`
	MaxUploadMBPerDay int `mapstructure:"max_upload_mb_per_day" yaml:"max_upload_mb_per_day" json:"max_upload_mb_per_day"`
}
