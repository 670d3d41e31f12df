package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/docr/internal/ocr"
	"github.com/MeKo-Tech/docr/internal/raster"
	"github.com/MeKo-Tech/docr/internal/testutil"
)

func buildPipeline(t *testing.T, engine ocr.Engine, pages ...image.Image) *Pipeline {
	t.Helper()
	pl, err := NewBuilder().
		WithEngine(engine).
		WithRasterizer(&testutil.PageSource{Pages: pages}).
		Build()
	require.NoError(t, err)
	return pl
}

func TestProcessSinglePageImage(t *testing.T) {
	stub := &ocr.StubEngine{
		Pages: [][]ocr.Word{
			{{Text: "Hi", Confidence: 95, Box: ocr.NewBoundingBox(10, 10, 30, 20)}},
		},
	}
	page := testutil.NewImage(100, 50, color.White)

	pl, err := NewBuilder().
		WithEngine(stub).
		WithRasterizer(raster.New()).
		Build()
	require.NoError(t, err)

	report, err := pl.Process(context.Background(), testutil.EncodePNG(t, page), "doc.png")
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, 1, report.TotalWords)
	require.Len(t, report.Words, 1)
	assert.Equal(t, "Hi", report.Words[0].Text)
	assert.InDelta(t, 95.0, report.Words[0].Confidence, 1e-9)
	assert.Equal(t, 1, report.Words[0].Page)
	assert.Equal(t, ocr.NewBoundingBox(10, 10, 30, 20), report.Words[0].Box)

	require.Len(t, report.Artifacts, 1)
	artifact := report.Artifacts[0]
	assert.Equal(t, 1, artifact.Page)
	require.NotNil(t, artifact.Image)
	assert.Equal(t, 100, artifact.Image.Bounds().Dx())
	assert.Equal(t, 50, artifact.Image.Bounds().Dy())
	assert.Contains(t, artifact.Filename, "_page_1.png")
}

func TestProcessMultiPageOrdering(t *testing.T) {
	stub := &ocr.StubEngine{
		Pages: [][]ocr.Word{
			{
				{Text: "alpha", Confidence: 90, Box: ocr.NewBoundingBox(0, 0, 10, 10)},
				{Text: "beta", Confidence: 85, Box: ocr.NewBoundingBox(12, 0, 22, 10)},
			},
			{},
			{
				{Text: "gamma", Confidence: 80, Box: ocr.NewBoundingBox(0, 0, 10, 10)},
			},
		},
	}
	pages := []image.Image{
		testutil.NewImage(50, 50, color.White),
		testutil.NewImage(50, 50, color.White),
		testutil.NewImage(50, 50, color.White),
	}

	pl := buildPipeline(t, stub, pages...)
	report, err := pl.Process(context.Background(), []byte("doc"), "doc.pdf")
	require.NoError(t, err)

	assert.Equal(t, 3, report.TotalWords)
	require.Len(t, report.Words, 3)
	assert.Equal(t, []int{1, 1, 3}, []int{report.Words[0].Page, report.Words[1].Page, report.Words[2].Page})
	assert.Equal(t, "alpha", report.Words[0].Text)
	assert.Equal(t, "beta", report.Words[1].Text)
	assert.Equal(t, "gamma", report.Words[2].Text)

	// One artifact per page, including the wordless page.
	require.Len(t, report.Artifacts, 3)
	for i, a := range report.Artifacts {
		assert.Equal(t, i+1, a.Page)
		assert.Contains(t, a.Filename, fmt.Sprintf("_page_%d.png", i+1))
	}
	assert.Equal(t, 3, stub.Calls)
}

func TestProcessCorruptDocumentFailsBeforeRecognition(t *testing.T) {
	stub := &ocr.StubEngine{}
	pl, err := NewBuilder().
		WithEngine(stub).
		WithRasterizer(raster.New()).
		Build()
	require.NoError(t, err)

	report, err := pl.Process(context.Background(), []byte("not an image"), "doc.png")
	require.Error(t, err)
	assert.Nil(t, report)

	var decodeErr *raster.DecodeError
	assert.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, 0, stub.Calls, "engine must not run on undecodable input")
}

func TestProcessZeroPagesIsEmptySuccess(t *testing.T) {
	stub := &ocr.StubEngine{}
	pl := buildPipeline(t, stub) // no pages

	report, err := pl.Process(context.Background(), []byte("doc"), "empty.pdf")
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.Equal(t, 0, report.TotalWords)
	assert.Empty(t, report.Words)
	assert.Empty(t, report.Artifacts)
	assert.Equal(t, 0, stub.Calls)
}

func TestProcessEmptyDocument(t *testing.T) {
	pl := buildPipeline(t, &ocr.StubEngine{})
	report, err := pl.Process(context.Background(), nil, "doc.png")
	require.Error(t, err)
	assert.Nil(t, report)

	// Zero bytes are undecodable input, not an internal failure.
	var decodeErr *raster.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "png", decodeErr.Format)
}

func TestProcessEmptyDocumentWithoutExtension(t *testing.T) {
	pl := buildPipeline(t, &ocr.StubEngine{})
	_, err := pl.Process(context.Background(), []byte{}, "upload")
	require.Error(t, err)

	var decodeErr *raster.DecodeError
	require.ErrorAs(t, err, &decodeErr)
	assert.Equal(t, "document", decodeErr.Format)
}

func TestProcessFailFastOnRecognitionError(t *testing.T) {
	cause := errors.New("engine crashed")
	stub := &failingEngine{failOn: 2, err: cause}
	pages := []image.Image{
		testutil.NewImage(10, 10, color.White),
		testutil.NewImage(10, 10, color.White),
		testutil.NewImage(10, 10, color.White),
	}

	pl := buildPipeline(t, stub, pages...)
	report, err := pl.Process(context.Background(), []byte("doc"), "doc.pdf")
	require.Error(t, err)
	assert.Nil(t, report, "a mid-document failure discards partial results")
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "page 2")
	assert.Equal(t, 2, stub.calls, "pages after the failing one must not run")
}

func TestProcessArtifactNamesUniquePerRequest(t *testing.T) {
	stub := &ocr.StubEngine{}
	pl := buildPipeline(t, stub, testutil.NewImage(10, 10, color.White))

	first, err := pl.Process(context.Background(), []byte("doc"), "doc.png")
	require.NoError(t, err)
	second, err := pl.Process(context.Background(), []byte("doc"), "doc.png")
	require.NoError(t, err)

	require.Len(t, first.Artifacts, 1)
	require.Len(t, second.Artifacts, 1)
	assert.NotEqual(t, first.Artifacts[0].Filename, second.Artifacts[0].Filename,
		"repeat uploads must not reuse artifact filenames")
}

func TestProcessRepeatedInputYieldsIdenticalResults(t *testing.T) {
	// The stub consumes one fixture entry per page, so two runs over a
	// two-page document need the fixture laid out twice.
	pageWords := [][]ocr.Word{
		{
			{Text: "alpha", Confidence: 90, Box: ocr.NewBoundingBox(0, 0, 10, 10)},
			{Text: "beta", Confidence: 85, Box: ocr.NewBoundingBox(12, 0, 22, 10)},
		},
		{
			{Text: "gamma", Confidence: 80, Box: ocr.NewBoundingBox(0, 0, 10, 10)},
		},
	}
	stub := &ocr.StubEngine{Pages: append(append([][]ocr.Word{}, pageWords...), pageWords...)}
	pages := []image.Image{
		testutil.NewImage(50, 50, color.White),
		testutil.NewImage(50, 50, color.White),
	}
	data := []byte("same document bytes")

	pl := buildPipeline(t, stub, pages...)
	first, err := pl.Process(context.Background(), data, "doc.pdf")
	require.NoError(t, err)
	second, err := pl.Process(context.Background(), data, "doc.pdf")
	require.NoError(t, err)

	assert.Equal(t, first.TotalWords, second.TotalWords)
	assert.Equal(t, first.Words, second.Words, "byte-identical input must aggregate identically")
}

func TestProcessWithProgressCallbacks(t *testing.T) {
	stub := &ocr.StubEngine{
		Pages: [][]ocr.Word{
			{{Text: "a", Box: ocr.NewBoundingBox(0, 0, 5, 5)}},
			{{Text: "b", Box: ocr.NewBoundingBox(0, 0, 5, 5)}},
		},
	}
	pages := []image.Image{
		testutil.NewImage(10, 10, color.White),
		testutil.NewImage(10, 10, color.White),
	}
	rec := &recordingProgress{}

	pl := buildPipeline(t, stub, pages...)
	_, err := pl.ProcessWithProgress(context.Background(), []byte("doc"), "doc.pdf", rec)
	require.NoError(t, err)

	assert.Equal(t, []string{"start 2", "page 1/2", "page 2/2", "complete"}, rec.events)
}

func TestProcessWithProgressReportsError(t *testing.T) {
	stub := &ocr.StubEngine{Err: errors.New("boom")}
	rec := &recordingProgress{}

	pl := buildPipeline(t, stub, testutil.NewImage(10, 10, color.White))
	_, err := pl.ProcessWithProgress(context.Background(), []byte("doc"), "doc.png", rec)
	require.Error(t, err)

	require.NotEmpty(t, rec.events)
	assert.Equal(t, "error 1", rec.events[len(rec.events)-1])
}

func TestProcessNilPipeline(t *testing.T) {
	var pl *Pipeline
	_, err := pl.Process(context.Background(), []byte("doc"), "doc.png")
	assert.ErrorIs(t, err, errNotInitialized)
}

// failingEngine fails on a specific 1-based call number.
type failingEngine struct {
	failOn int
	err    error
	calls  int
}

func (f *failingEngine) Name() string { return "failing" }

func (f *failingEngine) Recognize(ctx context.Context, img image.Image) ([]ocr.Word, error) {
	f.calls++
	if f.calls == f.failOn {
		return nil, &ocr.RecognitionError{Engine: f.Name(), Err: f.err}
	}
	return []ocr.Word{{Text: "ok", Box: ocr.NewBoundingBox(0, 0, 5, 5)}}, nil
}

// recordingProgress captures the callback sequence.
type recordingProgress struct {
	mu     sync.Mutex
	events []string
}

func (r *recordingProgress) OnStart(total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf("start %d", total))
}

func (r *recordingProgress) OnProgress(page, total int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf("page %d/%d", page, total))
}

func (r *recordingProgress) OnComplete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "complete")
}

func (r *recordingProgress) OnError(page int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf("error %d", page))
}
