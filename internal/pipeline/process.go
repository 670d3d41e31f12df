package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MeKo-Tech/docr/internal/annotate"
	"github.com/MeKo-Tech/docr/internal/raster"
)

var errEmptyDocument = errors.New("empty document")

// Process runs the full document flow on an uploaded file: rasterize once,
// then per page in strict page order recognize, stamp page numbers, annotate
// and collect one artifact. The first failing stage aborts the remaining
// pages; a zero-page document is an empty success.
func (p *Pipeline) Process(ctx context.Context, data []byte, filename string) (*Report, error) {
	if p == nil {
		return nil, errNotInitialized
	}
	return p.ProcessWithProgress(ctx, data, filename, p.progress)
}

// ProcessWithProgress is Process with a per-call progress callback,
// overriding the one configured at build time.
func (p *Pipeline) ProcessWithProgress(ctx context.Context, data []byte, filename string, progress ProgressCallback) (*Report, error) {
	if p == nil || p.engine == nil || p.rasterizer == nil {
		return nil, errNotInitialized
	}
	if progress == nil {
		progress = NoOpProgressCallback{}
	}

	start := time.Now()
	ext := strings.ToLower(filepath.Ext(filename))

	// Zero bytes can never be a valid document of any declared type, so the
	// failure is classified like any other undecodable input.
	if len(data) == 0 {
		format := strings.TrimPrefix(ext, ".")
		if format == "" {
			format = "document"
		}
		return nil, fmt.Errorf("rasterize %q: %w", filename,
			&raster.DecodeError{Format: format, Err: errEmptyDocument})
	}

	pages, err := p.rasterizer.Rasterize(data, ext)
	if err != nil {
		return nil, fmt.Errorf("rasterize %q: %w", filename, err)
	}
	if len(pages) == 0 {
		slog.Debug("document has no pages", "filename", filename)
		return EmptyReport(), nil
	}

	// The token makes artifact filenames unique per request, so concurrent
	// uploads of the same document never collide in the artifact store.
	token := uuid.NewString()

	report := EmptyReport()
	progress.OnStart(len(pages))
	for i, page := range pages {
		pageNum := i + 1

		words, err := p.engine.Recognize(ctx, page)
		if err != nil {
			progress.OnError(pageNum, err)
			return nil, fmt.Errorf("recognize page %d: %w", pageNum, err)
		}
		for j := range words {
			words[j].Page = pageNum
		}

		annotated := annotate.Overlay(page, words, p.style)
		if annotated == nil {
			err := fmt.Errorf("annotate page %d: nil surface", pageNum)
			progress.OnError(pageNum, err)
			return nil, err
		}

		report.Words = append(report.Words, words...)
		report.Artifacts = append(report.Artifacts, PageArtifact{
			Page:     pageNum,
			Filename: fmt.Sprintf("%s_page_%d.png", token, pageNum),
			Image:    annotated,
		})
		progress.OnProgress(pageNum, len(pages))
	}
	report.TotalWords = len(report.Words)
	progress.OnComplete()

	slog.Debug("document processed",
		"filename", filename,
		"pages", len(pages),
		"words", report.TotalWords,
		"engine", p.engine.Name(),
		"duration", time.Since(start))
	return report, nil
}
