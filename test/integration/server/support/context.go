// Package support provides the shared state and step definitions for the
// document OCR acceptance suite.
package support

import (
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/MeKo-Tech/docr/internal/ocr"
	"github.com/MeKo-Tech/docr/internal/pipeline"
	"github.com/MeKo-Tech/docr/internal/raster"
	"github.com/MeKo-Tech/docr/internal/server"
	"github.com/MeKo-Tech/docr/internal/testutil"
)

// TestContext holds the state for one scenario.
type TestContext struct {
	stub       *ocr.StubEngine
	pageCount  int
	TempDir    string
	testServer *httptest.Server

	LastStatusCode int
	LastBody       []byte
	LastResponse   *server.OCRResponse
}

// NewTestContext creates a fresh scenario context.
func NewTestContext() (*TestContext, error) {
	tempDir, err := os.MkdirTemp("", "docr-acceptance-*")
	if err != nil {
		return nil, fmt.Errorf("create temp dir: %w", err)
	}
	return &TestContext{
		stub:    &ocr.StubEngine{},
		TempDir: tempDir,
	}, nil
}

// Cleanup stops the server and removes scenario artifacts.
func (tc *TestContext) Cleanup() error {
	if tc.testServer != nil {
		tc.testServer.Close()
		tc.testServer = nil
	}
	return os.RemoveAll(tc.TempDir)
}

// startServer builds the HTTP server lazily, on the first request step, so
// earlier steps can still shape the engine fixture and page source.
func (tc *TestContext) startServer() error {
	if tc.testServer != nil {
		return nil
	}

	var pageSource raster.Rasterizer
	if tc.pageCount > 0 {
		pages := make([]image.Image, tc.pageCount)
		for i := range pages {
			pages[i] = testutil.NewImage(100, 50, color.White)
		}
		pageSource = &testutil.PageSource{Pages: pages}
	} else {
		pageSource = raster.New()
	}

	pl, err := pipeline.NewBuilder().
		WithEngine(tc.stub).
		WithRasterizer(pageSource).
		Build()
	if err != nil {
		return fmt.Errorf("build pipeline: %w", err)
	}

	srv, err := server.NewServerWithPipeline(server.Config{
		CORSOrigin:       "*",
		MaxUploadMB:      10,
		TimeoutSec:       10,
		ArtifactsDir:     tc.TempDir,
		ArtifactsBaseURL: "/artifacts",
	}, pl)
	if err != nil {
		return fmt.Errorf("build server: %w", err)
	}

	mux := http.NewServeMux()
	srv.SetupRoutes(mux)
	tc.testServer = httptest.NewServer(mux)
	return nil
}

// record captures an HTTP response, decoding OCR response bodies when they
// parse.
func (tc *TestContext) record(resp *http.Response, body []byte) {
	tc.LastStatusCode = resp.StatusCode
	tc.LastBody = body
	tc.LastResponse = nil

	var decoded server.OCRResponse
	if err := json.Unmarshal(body, &decoded); err == nil {
		tc.LastResponse = &decoded
	}
}
