package pipeline

import (
	"image"

	"github.com/MeKo-Tech/docr/internal/ocr"
)

// PageArtifact is the annotated rendering of one processed page, paired with
// a request-unique suggested filename. Persisting the surface (and turning
// the filename into a fetchable URL) is the storage collaborator's job.
type PageArtifact struct {
	Page     int    `json:"page"`
	Filename string `json:"filename"`

	// Image is the annotated surface. The pipeline hands ownership to the
	// artifact; no stage retains a reference after Process returns.
	Image *image.RGBA `json:"-"`
}

// Report aggregates the word-level results and annotated-page artifacts of a
// whole document, in page order.
type Report struct {
	TotalWords int            `json:"total_words"`
	Words      []ocr.Word     `json:"results"`
	Artifacts  []PageArtifact `json:"artifacts"`
}

// EmptyReport returns the success report for a zero-page document.
func EmptyReport() *Report {
	return &Report{Words: []ocr.Word{}, Artifacts: []PageArtifact{}}
}
