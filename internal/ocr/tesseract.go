package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"

	"github.com/otiai10/gosseract/v2"
)

// DefaultLanguage is the recognition language used when none is configured.
const DefaultLanguage = "eng"

// TesseractEngine wraps the Tesseract OCR engine via gosseract. A fresh
// client is created for every Recognize call and closed on all exit paths,
// so no engine state leaks between pages.
type TesseractEngine struct {
	language string
}

// NewTesseractEngine returns a Tesseract-backed engine configured for a
// single fixed language.
func NewTesseractEngine(language string) *TesseractEngine {
	if language == "" {
		language = DefaultLanguage
	}
	return &TesseractEngine{language: language}
}

// Name implements Engine.
func (e *TesseractEngine) Name() string { return "tesseract" }

// Recognize implements Engine. Word confidences are reported by Tesseract
// on a 0-100 scale and passed through unmodified.
func (e *TesseractEngine) Recognize(ctx context.Context, img image.Image) ([]Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if img == nil {
		return nil, &RecognitionError{Engine: e.Name(), Err: errNilImage}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, &RecognitionError{Engine: e.Name(), Err: fmt.Errorf("encode surface: %w", err)}
	}

	client := gosseract.NewClient()
	defer func() { _ = client.Close() }()

	if err := client.SetLanguage(e.language); err != nil {
		return nil, &RecognitionError{Engine: e.Name(), Err: fmt.Errorf("set language %q: %w", e.language, err)}
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, &RecognitionError{Engine: e.Name(), Err: fmt.Errorf("set image: %w", err)}
	}

	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, &RecognitionError{Engine: e.Name(), Err: fmt.Errorf("word boxes: %w", err)}
	}

	words := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		text := CleanText(b.Word)
		if text == "" {
			continue
		}
		words = append(words, Word{
			Text:       text,
			Confidence: b.Confidence,
			Box: NewBoundingBox(
				float64(b.Box.Min.X), float64(b.Box.Min.Y),
				float64(b.Box.Max.X), float64(b.Box.Max.Y),
			),
		})
	}
	return words, nil
}
