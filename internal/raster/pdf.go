package raster

import (
	"bytes"
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const (
	// DefaultScale renders PDF pages at twice their native page units so
	// small glyphs stay legible to the OCR engine.
	DefaultScale = 2.0

	// pdfNativeDPI is the PDF unit resolution the scale factor applies to.
	pdfNativeDPI = 72.0
)

// rasterizePDF renders every page of the document, in page order, at the
// configured fixed scale. A structurally valid document with zero pages
// yields an empty sequence, not an error.
func (r *DocumentRasterizer) rasterizePDF(data []byte) ([]image.Image, error) {
	pageCount, err := validatePDF(data)
	if err != nil {
		return nil, &DecodeError{Format: "pdf", Err: err}
	}
	if pageCount == 0 {
		return nil, nil
	}

	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, &DecodeError{Format: "pdf", Err: err}
	}
	defer func() { _ = doc.Close() }()

	scale := r.Scale
	if scale <= 0 {
		scale = DefaultScale
	}
	dpi := pdfNativeDPI * scale

	pages := make([]image.Image, 0, doc.NumPage())
	for n := range doc.NumPage() {
		img, err := doc.ImageDPI(n, dpi)
		if err != nil {
			return nil, &DecodeError{Format: "pdf", Err: fmt.Errorf("render page %d: %w", n+1, err)}
		}
		pages = append(pages, img)
	}
	return pages, nil
}

// validatePDF checks the container with pdfcpu before any rendering and
// returns the page count. Encrypted or corrupt files surface the decoder's
// message.
func validatePDF(data []byte) (int, error) {
	conf := model.NewDefaultConfiguration()
	count, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return 0, err
	}
	return count, nil
}
