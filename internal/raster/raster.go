// Package raster normalizes uploaded documents into ordered page raster
// surfaces: single images decode to a one-page sequence at native
// resolution, PDFs render one surface per page at a fixed scale.
package raster

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// DecodeError indicates the uploaded bytes could not be parsed as the
// declared document type. It maps to a client error at the HTTP boundary.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("raster: cannot decode %s input: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Rasterizer turns document bytes into ordered page surfaces. The concrete
// implementation is injected into the pipeline so tests can substitute a
// deterministic page source.
type Rasterizer interface {
	Rasterize(data []byte, ext string) ([]image.Image, error)
}

// DocumentRasterizer is the production Rasterizer. The zero value renders
// PDFs at DefaultScale.
type DocumentRasterizer struct {
	// Scale multiplies the PDF's native page units when rendering. Zero
	// means DefaultScale.
	Scale float64
}

// New returns a DocumentRasterizer with the default scale.
func New() *DocumentRasterizer { return &DocumentRasterizer{Scale: DefaultScale} }

// Rasterize decodes data into page order surfaces. The extension decides the
// decode path; it is matched case-insensitively and with or without a
// leading dot.
func (r *DocumentRasterizer) Rasterize(data []byte, ext string) ([]image.Image, error) {
	if IsPDFExtension(ext) {
		return r.rasterizePDF(data)
	}
	return decodeImage(data, ext)
}

// IsPDFExtension reports whether ext declares a PDF document.
func IsPDFExtension(ext string) bool {
	return strings.EqualFold(strings.TrimPrefix(ext, "."), "pdf")
}

// decodeImage decodes a still image at native resolution into a one-element
// page sequence.
func decodeImage(data []byte, ext string) ([]image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		format := strings.TrimPrefix(strings.ToLower(ext), ".")
		if format == "" {
			format = "image"
		}
		return nil, &DecodeError{Format: format, Err: err}
	}
	return []image.Image{img}, nil
}
