package server

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/MeKo-Tech/docr/internal/ocr"
	"github.com/MeKo-Tech/docr/internal/raster"
	"github.com/MeKo-Tech/docr/internal/version"
)

// healthHandler returns server health status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := HealthResponse{
		Status:  "healthy",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode health response", "error", err)
	}
}

// ocrDocumentHandler processes an uploaded document (image or PDF) and
// returns word-level results plus annotated page URLs.
func (s *Server) ocrDocumentHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)

	if err := r.ParseMultipartForm(s.maxUploadMB * 1024 * 1024); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "body too large") {
			s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		} else {
			s.writeErrorResponse(w, "Failed to parse form data", http.StatusBadRequest)
		}
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		s.writeErrorResponse(w, "No document file provided", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read document data", http.StatusInternalServerError)
		return
	}
	uploadSizeBytes.Observe(float64(len(data)))

	docType := documentType(header.Filename)
	start := time.Now()

	report, err := s.pipeline.Process(r.Context(), data, header.Filename)
	if err != nil {
		ocrRequestsTotal.WithLabelValues(docType, "error").Inc()
		s.writeErrorResponse(w, "Processing failed: "+err.Error(), statusForError(err))
		return
	}

	urls, err := s.store.SaveAll(report.Artifacts)
	if err != nil {
		ocrRequestsTotal.WithLabelValues(docType, "error").Inc()
		s.writeErrorResponse(w, "Processing failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	ocrRequestsTotal.WithLabelValues(docType, "success").Inc()
	ocrProcessingDuration.WithLabelValues(docType).Observe(time.Since(start).Seconds())
	ocrPagesProcessed.WithLabelValues(docType).Observe(float64(len(report.Artifacts)))
	ocrWordsRecognized.WithLabelValues(docType).Observe(float64(report.TotalWords))

	highlighted := make([]HighlightedImage, len(report.Artifacts))
	for i, a := range report.Artifacts {
		highlighted[i] = HighlightedImage{Page: a.Page, URL: urls[i]}
	}

	response := OCRResponse{
		Success:           true,
		TotalWords:        report.TotalWords,
		Results:           report.Words,
		HighlightedImages: highlighted,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode OCR response", "error", err)
	}
}

// documentType labels a request for metrics by upload extension.
func documentType(filename string) string {
	if raster.IsPDFExtension(filepath.Ext(filename)) {
		return "pdf"
	}
	return "image"
}

// statusForError maps pipeline failures onto HTTP status codes: undecodable
// input is the client's fault, everything else is ours.
func statusForError(err error) int {
	var decodeErr *raster.DecodeError
	if errors.As(err, &decodeErr) {
		return http.StatusBadRequest
	}
	var recErr *ocr.RecognitionError
	if errors.As(err, &recErr) {
		return http.StatusInternalServerError
	}
	return http.StatusInternalServerError
}

// writeErrorResponse writes a JSON error body with the given status.
func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	response := OCRResponse{
		Success:           false,
		Results:           []ocr.Word{},
		HighlightedImages: []HighlightedImage{},
		Error:             message,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}
