// Package ocr adapts black-box OCR engines to a uniform word-level result
// model. Engines are cheap stateless values; any native resources they need
// are acquired per Recognize call and released before it returns.
package ocr

import (
	"context"
	"errors"
	"fmt"
	"image"
)

var errNilImage = errors.New("nil input image")

// Engine recognizes text on a single raster surface. Implementations must
// preserve the underlying engine's emission order and must not filter words
// by confidence. The Page field of returned words is left zero.
type Engine interface {
	// Recognize runs OCR on the given image and returns the recognized
	// words in engine emission order.
	Recognize(ctx context.Context, img image.Image) ([]Word, error)

	// Name identifies the engine implementation (for logs and errors).
	Name() string
}

// RecognitionError indicates the underlying OCR engine failed to process a
// surface.
type RecognitionError struct {
	Engine string
	Err    error
}

func (e *RecognitionError) Error() string {
	return fmt.Sprintf("ocr: %s engine failed: %v", e.Engine, e.Err)
}

func (e *RecognitionError) Unwrap() error { return e.Err }
