// Package pipeline orchestrates the document OCR flow: rasterize the upload
// into page surfaces, recognize and annotate each page strictly in page
// order, and aggregate the results into a single report.
package pipeline

import (
	"errors"
	"fmt"

	"github.com/MeKo-Tech/docr/internal/annotate"
	"github.com/MeKo-Tech/docr/internal/ocr"
	"github.com/MeKo-Tech/docr/internal/raster"
)

// Engine names accepted by the builder.
const (
	EngineTesseract = "tesseract"
	EngineVision    = "vision"
)

// Config holds pipeline settings.
type Config struct {
	// Engine selects the OCR backend: "tesseract" (default) or "vision".
	Engine string

	// Language is the fixed recognition language model.
	Language string

	// Scale is the PDF page render scale factor.
	Scale float64

	// Overlay styling.
	OverlayStroke      string
	OverlayFill        string
	OverlayStrokeWidth int
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		Engine:   EngineTesseract,
		Language: ocr.DefaultLanguage,
		Scale:    raster.DefaultScale,
	}
}

// Pipeline drives the per-page OCR and annotation flow. It holds no mutable
// per-request state; one Pipeline may serve concurrent requests.
type Pipeline struct {
	engine     ocr.Engine
	rasterizer raster.Rasterizer
	style      annotate.Style
	progress   ProgressCallback
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg        Config
	engine     ocr.Engine
	rasterizer raster.Rasterizer
	progress   ProgressCallback
}

// NewBuilder creates a pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithEngineName selects the OCR backend by name.
func (b *Builder) WithEngineName(name string) *Builder {
	if name != "" {
		b.cfg.Engine = name
	}
	return b
}

// WithEngine injects a concrete engine, overriding the named selection.
func (b *Builder) WithEngine(e ocr.Engine) *Builder {
	b.engine = e
	return b
}

// WithLanguage sets the fixed recognition language.
func (b *Builder) WithLanguage(lang string) *Builder {
	if lang != "" {
		b.cfg.Language = lang
	}
	return b
}

// WithScale sets the PDF render scale factor.
func (b *Builder) WithScale(scale float64) *Builder {
	if scale > 0 {
		b.cfg.Scale = scale
	}
	return b
}

// WithOverlayStyle sets overlay colors (hex strings) and stroke width.
func (b *Builder) WithOverlayStyle(stroke, fill string, width int) *Builder {
	b.cfg.OverlayStroke = stroke
	b.cfg.OverlayFill = fill
	b.cfg.OverlayStrokeWidth = width
	return b
}

// WithRasterizer injects a page source, replacing the document rasterizer.
func (b *Builder) WithRasterizer(r raster.Rasterizer) *Builder {
	b.rasterizer = r
	return b
}

// WithProgress registers a per-page progress callback.
func (b *Builder) WithProgress(p ProgressCallback) *Builder {
	b.progress = p
	return b
}

// Build assembles the pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	engine := b.engine
	if engine == nil {
		switch b.cfg.Engine {
		case EngineTesseract, "":
			engine = ocr.NewTesseractEngine(b.cfg.Language)
		case EngineVision:
			engine = ocr.NewVisionEngine()
		default:
			return nil, fmt.Errorf("unknown ocr engine %q", b.cfg.Engine)
		}
	}

	rasterizer := b.rasterizer
	if rasterizer == nil {
		rasterizer = &raster.DocumentRasterizer{Scale: b.cfg.Scale}
	}

	style := annotate.DefaultStyle()
	if c := annotate.ParseHexColor(b.cfg.OverlayStroke); c != nil {
		style.Stroke = c
	}
	if c := annotate.ParseHexColor(b.cfg.OverlayFill); c != nil {
		style.Fill = c
	}
	if b.cfg.OverlayStrokeWidth > 0 {
		style.StrokeWidth = b.cfg.OverlayStrokeWidth
	}

	progress := b.progress
	if progress == nil {
		progress = NoOpProgressCallback{}
	}

	return &Pipeline{
		engine:     engine,
		rasterizer: rasterizer,
		style:      style,
		progress:   progress,
	}, nil
}

// Engine exposes the configured engine (for logging).
func (p *Pipeline) Engine() ocr.Engine { return p.engine }

// errNotInitialized guards against a zero-value Pipeline.
var errNotInitialized = errors.New("pipeline not initialized")
