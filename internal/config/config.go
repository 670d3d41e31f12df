package config

import (
	"fmt"
	"slices"

	"github.com/MeKo-Tech/docr/internal/pipeline"
)

// DefaultConfig returns the configuration used when no file, environment
// variable or flag overrides a value.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Pipeline: PipelineConfig{
			Engine:   pipeline.EngineTesseract,
			Language: "eng",
			Scale:    2.0,
			Overlay: OverlayConfig{
				StrokeColor: "#DC1E1E",
				FillColor:   "#DC1E1E28",
				StrokeWidth: 2,
			},
		},
		Output: OutputConfig{
			Format: "json",
		},
		Server: ServerConfig{
			Host:             "localhost",
			Port:             8080,
			CORSOrigin:       "*",
			MaxUploadMB:      50,
			TimeoutSec:       120,
			ShutdownTimeout:  10,
			ArtifactsDir:     "artifacts",
			ArtifactsBaseURL: "/artifacts",
		},
	}
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log_level %q (must be one of %v)", c.LogLevel, validLogLevels)
	}

	validEngines := []string{pipeline.EngineTesseract, pipeline.EngineVision}
	if !slices.Contains(validEngines, c.Pipeline.Engine) {
		return fmt.Errorf("invalid pipeline.engine %q (must be one of %v)", c.Pipeline.Engine, validEngines)
	}
	if c.Pipeline.Scale <= 0 {
		return fmt.Errorf("invalid pipeline.scale %v (must be positive)", c.Pipeline.Scale)
	}
	if c.Pipeline.Language == "" {
		return fmt.Errorf("pipeline.language must not be empty")
	}

	validFormats := []string{"json", "text", "csv"}
	if !slices.Contains(validFormats, c.Output.Format) {
		return fmt.Errorf("invalid output.format %q (must be one of %v)", c.Output.Format, validFormats)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.MaxUploadMB < 1 {
		return fmt.Errorf("invalid server.max_upload_mb %d (must be at least 1)", c.Server.MaxUploadMB)
	}
	if c.Server.TimeoutSec < 1 {
		return fmt.Errorf("invalid server.timeout_sec %d (must be at least 1)", c.Server.TimeoutSec)
	}
	if c.Server.ArtifactsDir == "" {
		return fmt.Errorf("server.artifacts_dir must not be empty")
	}
	rl := c.Server.RateLimit
	if rl.RequestsPerMinute < 0 || rl.RequestsPerHour < 0 ||
		rl.MaxRequestsPerDay < 0 || rl.MaxUploadMBPerDay < 0 {
		return fmt.Errorf("server.rate_limit values must not be negative")
	}

	return nil
}

// ToPipelineConfig maps the application config to the pipeline's own config.
func (c *Config) ToPipelineConfig() pipeline.Config {
	return pipeline.Config{
		Engine:             c.Pipeline.Engine,
		Language:           c.Pipeline.Language,
		Scale:              c.Pipeline.Scale,
		OverlayStroke:      c.Pipeline.Overlay.StrokeColor,
		OverlayFill:        c.Pipeline.Overlay.FillColor,
		OverlayStrokeWidth: c.Pipeline.Overlay.StrokeWidth,
	}
}
