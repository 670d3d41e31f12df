// Package server implements the HTTP ingestion endpoint for document OCR:
// multipart upload in, aggregated word results plus annotated page URLs out.
package server

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/docr/internal/pipeline"
)

// NewServer builds the pipeline and artifact store from config.
func NewServer(config Config) (*Server, error) {
	pl, err := pipeline.NewBuilder().WithConfig(config.PipelineConfig).Build()
	if err != nil {
		return nil, fmt.Errorf("build pipeline: %w", err)
	}

	store, err := NewArtifactStore(config.ArtifactsDir, config.ArtifactsBaseURL)
	if err != nil {
		return nil, err
	}

	return &Server{
		pipeline:    pl,
		store:       store,
		rateLimiter: rateLimiterFromConfig(config),
		corsOrigin:  config.CORSOrigin,
		maxUploadMB: config.MaxUploadMB,
		timeoutSec:  config.TimeoutSec,
	}, nil
}

// NewServerWithPipeline wires an externally built pipeline. Tests use it to
// substitute deterministic engines and page sources.
func NewServerWithPipeline(config Config, pl *pipeline.Pipeline) (*Server, error) {
	store, err := NewArtifactStore(config.ArtifactsDir, config.ArtifactsBaseURL)
	if err != nil {
		return nil, err
	}

	return &Server{
		pipeline:    pl,
		store:       store,
		rateLimiter: rateLimiterFromConfig(config),
		corsOrigin:  config.CORSOrigin,
		maxUploadMB: config.MaxUploadMB,
		timeoutSec:  config.TimeoutSec,
	}, nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/ocr/document", s.corsMiddleware(s.rateLimitMiddleware(s.ocrDocumentHandler)))
	mux.HandleFunc("/ocr/ws", s.ocrWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/artifacts/", http.StripPrefix("/artifacts/",
		http.FileServer(http.Dir(s.store.Dir()))))
}
