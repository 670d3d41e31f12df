package ocr

import (
	"context"
	"image"
)

// StubEngine returns canned words regardless of input. It backs tests and
// the acceptance suite, where deterministic output matters more than actual
// recognition.
type StubEngine struct {
	// Pages is consumed one entry per Recognize call; when exhausted (or
	// empty) the stub returns no words. Calls counts invocations.
	Pages [][]Word
	Err   error
	Calls int
}

// Name implements Engine.
func (s *StubEngine) Name() string { return "stub" }

// Recognize implements Engine.
func (s *StubEngine) Recognize(ctx context.Context, img image.Image) ([]Word, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	call := s.Calls
	s.Calls++
	if s.Err != nil {
		return nil, &RecognitionError{Engine: s.Name(), Err: s.Err}
	}
	if call >= len(s.Pages) {
		return nil, nil
	}
	// Copy so callers stamping page numbers never mutate the stub's fixture.
	out := make([]Word, len(s.Pages[call]))
	copy(out, s.Pages[call])
	return out, nil
}
