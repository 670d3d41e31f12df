package ocr

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// BoundingBox is an axis-aligned rectangle in the pixel space of the surface
// a word was recognized on. X0 <= X1 and Y0 <= Y1 always hold for boxes built
// through NewBoundingBox.
type BoundingBox struct {
	X0 float64 `json:"x0"`
	Y0 float64 `json:"y0"`
	X1 float64 `json:"x1"`
	Y1 float64 `json:"y1"`
}

// NewBoundingBox constructs a BoundingBox, normalizing coordinate order.
func NewBoundingBox(x0, y0, x1, y1 float64) BoundingBox {
	if x0 > x1 {
		x0, x1 = x1, x0
	}
	if y0 > y1 {
		y0, y1 = y1, y0
	}
	return BoundingBox{X0: x0, Y0: y0, X1: x1, Y1: y1}
}

// Width returns the box width.
func (b BoundingBox) Width() float64 { return b.X1 - b.X0 }

// Height returns the box height.
func (b BoundingBox) Height() float64 { return b.Y1 - b.Y0 }

// Empty reports whether the box has zero area.
func (b BoundingBox) Empty() bool { return b.Width() <= 0 || b.Height() <= 0 }

// Word is a single recognized token. Confidence is on the engine's 0-100
// scale and passed through unfiltered. Page is 1-based and stamped by the
// pipeline, not by engines.
type Word struct {
	Text       string      `json:"text"`
	Confidence float64     `json:"confidence"`
	Box        BoundingBox `json:"bbox"`
	Page       int         `json:"page"`
}

// CleanText normalizes engine-reported token text: NFC normalization plus
// surrounding whitespace removal. No replacements or case folding.
func CleanText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}
