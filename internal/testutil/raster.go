package testutil

import "image"

// PageSource is a canned page rasterizer. It returns the same fixed page
// sequence for every document, or a fixed error.
type PageSource struct {
	Pages []image.Image
	Err   error
	Calls int
}

// Rasterize returns the canned pages.
func (p *PageSource) Rasterize(data []byte, ext string) ([]image.Image, error) {
	p.Calls++
	if p.Err != nil {
		return nil, p.Err
	}
	return p.Pages, nil
}
