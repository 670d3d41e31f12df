package server

import (
	"bytes"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/docr/internal/ocr"
	"github.com/MeKo-Tech/docr/internal/pipeline"
	"github.com/MeKo-Tech/docr/internal/raster"
	"github.com/MeKo-Tech/docr/internal/testutil"
)

// newTestServer builds a Server around a stub engine with artifacts rooted in
// a per-test temp dir.
func newTestServer(t *testing.T, engine ocr.Engine) *Server {
	t.Helper()
	return newTestServerWithRasterizer(t, engine, raster.New())
}

func newTestServerWithRasterizer(t *testing.T, engine ocr.Engine, r raster.Rasterizer) *Server {
	t.Helper()

	pl, err := pipeline.NewBuilder().
		WithEngine(engine).
		WithRasterizer(r).
		Build()
	require.NoError(t, err)

	store, err := NewArtifactStore(t.TempDir(), "/artifacts")
	require.NoError(t, err)

	return &Server{
		pipeline:    pl,
		store:       store,
		corsOrigin:  "*",
		maxUploadMB: 10,
		timeoutSec:  5,
	}
}

// multipartUpload builds a POST request carrying data as the "document" form
// file.
func multipartUpload(t *testing.T, url, filename string, data []byte) *http.Request {
	t.Helper()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("document", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, url, &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// stubWordFixture is a one-page stub engine emitting a single word.
func stubWordFixture() *ocr.StubEngine {
	return &ocr.StubEngine{
		Pages: [][]ocr.Word{
			{{Text: "Hi", Confidence: 95, Box: ocr.NewBoundingBox(10, 10, 30, 20)}},
		},
	}
}

// pngFixture returns the PNG bytes of a plain white test page.
func pngFixture(t *testing.T) []byte {
	t.Helper()
	return testutil.EncodePNG(t, testutil.NewImage(100, 50, color.White))
}
