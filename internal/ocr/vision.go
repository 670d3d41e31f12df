package ocr

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"os"

	vision "cloud.google.com/go/vision/apiv1"
	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	"google.golang.org/api/option"
)

// VisionEngine recognizes text through the Google Cloud Vision
// document-text-detection API. The API client is created per Recognize call
// and closed before returning, matching the per-page engine lifecycle of the
// local Tesseract adapter.
type VisionEngine struct {
	// clientOptions are applied when dialing the Vision API. Populated from
	// the environment by NewVisionEngine.
	clientOptions []option.ClientOption
}

// NewVisionEngine returns a Cloud Vision backed engine. Credentials are
// resolved from GOOGLE_CREDENTIALS (inline JSON) or
// GOOGLE_APPLICATION_CREDENTIALS (file path), falling back to application
// default credentials.
func NewVisionEngine() *VisionEngine {
	var opts []option.ClientOption
	if credJSON := os.Getenv("GOOGLE_CREDENTIALS"); credJSON != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	} else if credFile := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); credFile != "" {
		opts = append(opts, option.WithCredentialsFile(credFile))
	}
	return &VisionEngine{clientOptions: opts}
}

// Name implements Engine.
func (e *VisionEngine) Name() string { return "vision" }

// Recognize implements Engine. Vision reports confidences in [0,1]; they are
// mapped onto the 0-100 scale at this adapter boundary so all engines speak
// the same unit.
func (e *VisionEngine) Recognize(ctx context.Context, img image.Image) ([]Word, error) {
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

	client, err := vision.NewImageAnnotatorClient(ctx, e.clientOptions...)
	if err != nil {
		return nil, &RecognitionError{Engine: e.Name(), Err: fmt.Errorf("create client: %w", err)}
	}
	defer func() { _ = client.Close() }()

	annotation, err := client.DetectDocumentText(ctx, &visionpb.Image{Content: buf.Bytes()}, nil)
	if err != nil {
		return nil, &RecognitionError{Engine: e.Name(), Err: fmt.Errorf("detect document text: %w", err)}
	}
	if annotation == nil {
		return nil, nil
	}
	return visionWords(annotation), nil
}

// visionWords flattens a Vision text annotation into word-level results,
// preserving the API's block/paragraph/word emission order.
func visionWords(annotation *visionpb.TextAnnotation) []Word {
	var words []Word
	for _, page := range annotation.GetPages() {
		for _, block := range page.GetBlocks() {
			for _, paragraph := range block.GetParagraphs() {
				for _, w := range paragraph.GetWords() {
					text := CleanText(visionWordText(w))
					if text == "" {
						continue
					}
					words = append(words, Word{
						Text:       text,
						Confidence: float64(w.GetConfidence()) * 100,
						Box:        visionBox(w.GetBoundingBox()),
					})
				}
			}
		}
	}
	return words
}

func visionWordText(w *visionpb.Word) string {
	var b bytes.Buffer
	for _, s := range w.GetSymbols() {
		b.WriteString(s.GetText())
	}
	return b.String()
}

// visionBox reduces a (possibly rotated) bounding polygon to its axis-aligned
// bounding box.
func visionBox(poly *visionpb.BoundingPoly) BoundingBox {
	vertices := poly.GetVertices()
	if len(vertices) == 0 {
		return BoundingBox{}
	}
	minX, minY := float64(vertices[0].GetX()), float64(vertices[0].GetY())
	maxX, maxY := minX, minY
	for _, v := range vertices[1:] {
		x, y := float64(v.GetX()), float64(v.GetY())
		if x < minX {
			minX = x
		}
		if y < minY {
			minY = y
		}
		if x > maxX {
			maxX = x
		}
		if y > maxY {
			maxY = y
		}
	}
	return NewBoundingBox(minX, minY, maxX, maxY)
}
