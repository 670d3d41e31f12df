// Package annotate draws recognized-word overlays onto raster surfaces.
package annotate

import (
	"image"
	"image/color"
	"image/draw"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/docr/internal/ocr"
)

// Style controls the word-box overlay rendering.
type Style struct {
	Stroke      color.Color
	StrokeWidth int
	Fill        color.Color
}

// DefaultStyle returns the standard overlay style: a solid red outline with
// a translucent red fill. Fill uses NRGBA so the alpha blends correctly
// through draw.Over.
func DefaultStyle() Style {
	return Style{
		Stroke:      color.NRGBA{R: 220, G: 30, B: 30, A: 255},
		StrokeWidth: 2,
		Fill:        color.NRGBA{R: 220, G: 30, B: 30, A: 40},
	}
}

// Overlay returns a new surface with word boxes drawn over a copy of img.
// The input surface is never mutated. Words are drawn in the given order, so
// later words occlude earlier ones where boxes overlap. Degenerate
// (zero-size) boxes are silently no-ops.
func Overlay(img image.Image, words []ocr.Word, style Style) *image.RGBA {
	if img == nil {
		return nil
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)

	if style.Stroke == nil || style.Fill == nil || style.StrokeWidth < 1 {
		def := DefaultStyle()
		if style.Stroke == nil {
			style.Stroke = def.Stroke
		}
		if style.Fill == nil {
			style.Fill = def.Fill
		}
		if style.StrokeWidth < 1 {
			style.StrokeWidth = def.StrokeWidth
		}
	}

	for _, w := range words {
		rect := boxRect(w.Box).Intersect(dst.Bounds())
		if rect.Empty() {
			continue
		}
		strokeRect(dst, rect, style.Stroke, style.StrokeWidth)
		draw.Draw(dst, rect, &image.Uniform{C: style.Fill}, image.Point{}, draw.Over)
	}
	return dst
}

func boxRect(b ocr.BoundingBox) image.Rectangle {
	return image.Rect(int(b.X0+0.5), int(b.Y0+0.5), int(b.X1+0.5), int(b.Y1+0.5))
}

// strokeRect draws a rectangle outline of the given thickness, growing
// inward from the rectangle edges.
func strokeRect(dst *image.RGBA, rect image.Rectangle, col color.Color, thickness int) {
	for t := range thickness {
		yTop := rect.Min.Y + t
		yBot := rect.Max.Y - 1 - t
		for x := rect.Min.X; x < rect.Max.X; x++ {
			dst.Set(x, yTop, col)
			dst.Set(x, yBot, col)
		}
		xLeft := rect.Min.X + t
		xRight := rect.Max.X - 1 - t
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			dst.Set(xLeft, y, col)
			dst.Set(xRight, y, col)
		}
	}
}

// ParseHexColor parses "#RRGGBB" or "#RRGGBBAA" (leading '#' optional).
// Returns nil for anything it cannot parse.
func ParseHexColor(s string) color.Color {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return nil
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return nil
	}
	if len(s) == 8 {
		return color.NRGBA{
			R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v),
		}
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}
