package server

import (
	"context"

	"github.com/MeKo-Tech/docr/internal/ocr"
	"github.com/MeKo-Tech/docr/internal/pipeline"
)

// processor is the slice of the pipeline the server needs.
type processor interface {
	Process(ctx context.Context, data []byte, filename string) (*pipeline.Report, error)
	ProcessWithProgress(ctx context.Context, data []byte, filename string, progress pipeline.ProgressCallback) (*pipeline.Report, error)
}

// Config holds server configuration.
type Config struct {
	Host             string
	Port             int
	CORSOrigin       string
	MaxUploadMB      int64
	TimeoutSec       int
	ArtifactsDir     string
	ArtifactsBaseURL string

	// Rate limiting for the ingestion endpoint. All zero disables it.
	RequestsPerMinute int
	RequestsPerHour   int
	MaxRequestsPerDay int
	MaxUploadMBPerDay int

	PipelineConfig pipeline.Config
}

// rateLimiterFromConfig builds the limiter, or nil when no limit is set.
func rateLimiterFromConfig(config Config) *RateLimiter {
	if config.RequestsPerMinute == 0 && config.RequestsPerHour == 0 &&
		config.MaxRequestsPerDay == 0 && config.MaxUploadMBPerDay == 0 {
		return nil
	}
	return NewRateLimiter(
		config.RequestsPerMinute,
		config.RequestsPerHour,
		config.MaxRequestsPerDay,
		int64(config.MaxUploadMBPerDay)*1024*1024,
	)
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	pipeline    processor
	store       *ArtifactStore
	rateLimiter *RateLimiter
	corsOrigin  string
	maxUploadMB int64
	timeoutSec  int
}

// Response types for API endpoints.

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// HighlightedImage references one persisted annotated page.
type HighlightedImage struct {
	Page int    `json:"page"`
	URL  string `json:"url"`
}

// OCRResponse is the aggregate document result returned to clients.
type OCRResponse struct {
	Success           bool               `json:"success"`
	TotalWords        int                `json:"totalWords"`
	Results           []ocr.Word         `json:"results"`
	HighlightedImages []HighlightedImage `json:"highlightedImages"`
	Error             string             `json:"error,omitempty"`
}
