package annotate

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/docr/internal/ocr"
	"github.com/MeKo-Tech/docr/internal/testutil"
)

func TestOverlayNilImage(t *testing.T) {
	assert.Nil(t, Overlay(nil, nil, DefaultStyle()))
}

func TestOverlayNoWordsIsPixelCopy(t *testing.T) {
	src := testutil.NewTextImage("hello", 120, 40)

	out := Overlay(src, nil, DefaultStyle())
	require.NotNil(t, out)
	assert.NotSame(t, src, out, "overlay must return a new surface")
	assert.True(t, testutil.SamePixels(src, out), "no words means a pixel-identical copy")
}

func TestOverlayDoesNotMutateInput(t *testing.T) {
	src := testutil.NewImage(100, 50, color.White)
	before := testutil.ClonePixels(src)

	words := []ocr.Word{
		{Text: "Hi", Confidence: 95, Box: ocr.NewBoundingBox(10, 10, 30, 20)},
		{Text: "there", Confidence: 90, Box: ocr.NewBoundingBox(40, 10, 90, 20)},
	}
	out := Overlay(src, words, DefaultStyle())
	require.NotNil(t, out)

	assert.True(t, testutil.SamePixels(before, src), "input surface must not change")
	assert.False(t, testutil.SamePixels(src, out), "overlay should have drawn something")
}

func TestOverlayDrawsStrokeAndFill(t *testing.T) {
	src := testutil.NewImage(100, 50, color.White)
	style := Style{
		Stroke:      color.NRGBA{R: 220, G: 30, B: 30, A: 255},
		StrokeWidth: 2,
		Fill:        color.NRGBA{R: 220, G: 30, B: 30, A: 40},
	}

	out := Overlay(src, []ocr.Word{
		{Text: "Hi", Box: ocr.NewBoundingBox(10, 10, 30, 20)},
	}, style)
	require.NotNil(t, out)

	// A corner pixel of the box carries the stroke color before the
	// translucent fill blends over it.
	r, _, _, _ := out.At(10, 10).RGBA()
	assert.Greater(t, r>>8, uint32(200), "stroke corner should be strongly red")

	// The box interior is white blended with the translucent fill, so red
	// stays at full intensity while green and blue drop.
	_, gIn, bIn, _ := out.At(20, 15).RGBA()
	_, gOut, bOut, _ := out.At(50, 40).RGBA()
	assert.Less(t, gIn, gOut, "fill should tint the interior")
	assert.Less(t, bIn, bOut, "fill should tint the interior")

	// Pixels outside every box are untouched.
	assert.Equal(t, src.At(50, 40), out.At(50, 40))
}

func TestOverlaySkipsDegenerateBoxes(t *testing.T) {
	src := testutil.NewImage(60, 60, color.White)

	out := Overlay(src, []ocr.Word{
		{Text: "line", Box: ocr.NewBoundingBox(10, 10, 30, 10)},
		{Text: "point", Box: ocr.NewBoundingBox(5, 5, 5, 5)},
	}, DefaultStyle())
	require.NotNil(t, out)

	assert.True(t, testutil.SamePixels(src, out), "degenerate boxes draw nothing")
}

func TestOverlayClampsBoxesToSurface(t *testing.T) {
	src := testutil.NewImage(40, 40, color.White)

	// Box extends past the surface on two sides; must not panic and must
	// only touch in-bounds pixels.
	out := Overlay(src, []ocr.Word{
		{Text: "edge", Box: ocr.NewBoundingBox(30, 30, 80, 80)},
	}, DefaultStyle())
	require.NotNil(t, out)
	assert.Equal(t, src.Bounds(), out.Bounds())
}

func TestOverlayZeroStyleFallsBackToDefault(t *testing.T) {
	src := testutil.NewImage(50, 50, color.White)

	out := Overlay(src, []ocr.Word{
		{Text: "x", Box: ocr.NewBoundingBox(10, 10, 40, 40)},
	}, Style{})
	require.NotNil(t, out)
	assert.False(t, testutil.SamePixels(src, out), "zero style still draws with defaults")
}

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  color.Color
	}{
		{"rgb with hash", "#DC1E1E", color.NRGBA{R: 0xDC, G: 0x1E, B: 0x1E, A: 0xFF}},
		{"rgba with hash", "#DC1E1E28", color.NRGBA{R: 0xDC, G: 0x1E, B: 0x1E, A: 0x28}},
		{"rgb without hash", "00FF00", color.NRGBA{G: 0xFF, A: 0xFF}},
		{"lowercase", "#aabbcc", color.NRGBA{R: 0xAA, G: 0xBB, B: 0xCC, A: 0xFF}},
		{"surrounding spaces", " #DC1E1E ", color.NRGBA{R: 0xDC, G: 0x1E, B: 0x1E, A: 0xFF}},
		{"too short", "#FFF", nil},
		{"not hex", "#GGGGGG", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseHexColor(tt.input))
		})
	}
}
