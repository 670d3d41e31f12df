package support

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/cucumber/godog"

	"github.com/MeKo-Tech/docr/internal/ocr"
	"github.com/MeKo-Tech/docr/internal/testutil"
)

// RegisterSteps wires all step definitions into the scenario context.
func (tc *TestContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a running OCR server$`, tc.aRunningOCRServer)
	sc.Step(`^the engine recognizes "([^"]*)" with confidence (\d+) in box (\d+),(\d+),(\d+),(\d+)$`, tc.theEngineRecognizes)
	sc.Step(`^a (\d+) page document with words "([^"]*)", "([^"]*)"$`, tc.aTwoPageDocument)
	sc.Step(`^a (\d+) page document with words "([^"]*)", "([^"]*)", "([^"]*)"$`, tc.aThreePageDocument)
	sc.Step(`^I request "([^"]*)"$`, tc.iRequest)
	sc.Step(`^I upload a PNG document named "([^"]*)"$`, tc.iUploadAPNGDocument)
	sc.Step(`^I upload the document as "([^"]*)"$`, tc.iUploadTheDocument)
	sc.Step(`^I upload unreadable bytes named "([^"]*)"$`, tc.iUploadUnreadableBytes)
	sc.Step(`^I post an empty form to the OCR endpoint$`, tc.iPostAnEmptyForm)
	sc.Step(`^the response status is (\d+)$`, tc.theResponseStatusIs)
	sc.Step(`^the health status is "([^"]*)"$`, tc.theHealthStatusIs)
	sc.Step(`^the report contains (\d+) words$`, tc.theReportContainsWords)
	sc.Step(`^word (\d+) is "([^"]*)" on page (\d+)$`, tc.wordIsOnPage)
	sc.Step(`^the report references (\d+) annotated pages$`, tc.theReportReferencesAnnotatedPages)
	sc.Step(`^every annotated page is fetchable$`, tc.everyAnnotatedPageIsFetchable)
	sc.Step(`^the response reports failure$`, tc.theResponseReportsFailure)
}

func (tc *TestContext) aRunningOCRServer() error {
	// Actual startup happens on the first request step, once the engine
	// fixture is fully shaped.
	return nil
}

func (tc *TestContext) theEngineRecognizes(text string, confidence, x0, y0, x1, y1 int) error {
	tc.stub.Pages = append(tc.stub.Pages, []ocr.Word{{
		Text:       text,
		Confidence: float64(confidence),
		Box:        ocr.NewBoundingBox(float64(x0), float64(y0), float64(x1), float64(y1)),
	}})
	return nil
}

func (tc *TestContext) aTwoPageDocument(pages int, page1, page2 string) error {
	return tc.cannedDocument(pages, []string{page1, page2})
}

func (tc *TestContext) aThreePageDocument(pages int, page1, page2, page3 string) error {
	return tc.cannedDocument(pages, []string{page1, page2, page3})
}

// cannedDocument shapes the stub engine with one word list per page and makes
// the page source emit the matching number of surfaces.
func (tc *TestContext) cannedDocument(pages int, wordsPerPage []string) error {
	if pages != len(wordsPerPage) {
		return fmt.Errorf("step declares %d pages but lists %d word groups", pages, len(wordsPerPage))
	}
	tc.pageCount = pages
	tc.stub.Pages = nil
	for _, group := range wordsPerPage {
		var words []ocr.Word
		for i, text := range strings.Fields(group) {
			offset := float64(i * 30)
			words = append(words, ocr.Word{
				Text:       text,
				Confidence: 90,
				Box:        ocr.NewBoundingBox(5+offset, 5, 25+offset, 15),
			})
		}
		tc.stub.Pages = append(tc.stub.Pages, words)
	}
	return nil
}

func (tc *TestContext) iRequest(path string) error {
	if err := tc.startServer(); err != nil {
		return err
	}
	resp, err := http.Get(tc.testServer.URL + path)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	tc.record(resp, body)
	return nil
}

func (tc *TestContext) iUploadAPNGDocument(filename string) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testutil.NewImage(100, 50, color.White)); err != nil {
		return err
	}
	return tc.uploadDocument(filename, buf.Bytes())
}

func (tc *TestContext) iUploadTheDocument(filename string) error {
	// The canned page source ignores the bytes; only the filename routes.
	return tc.uploadDocument(filename, []byte("canned document"))
}

func (tc *TestContext) iUploadUnreadableBytes(filename string) error {
	return tc.uploadDocument(filename, []byte("this is not a decodable document"))
}

func (tc *TestContext) uploadDocument(filename string, data []byte) error {
	if err := tc.startServer(); err != nil {
		return err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("document", filename)
	if err != nil {
		return err
	}
	if _, err := part.Write(data); err != nil {
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}

	resp, err := http.Post(tc.testServer.URL+"/ocr/document", writer.FormDataContentType(), &body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	tc.record(resp, respBody)
	return nil
}

func (tc *TestContext) iPostAnEmptyForm() error {
	if err := tc.startServer(); err != nil {
		return err
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	if err := writer.Close(); err != nil {
		return err
	}

	resp, err := http.Post(tc.testServer.URL+"/ocr/document", writer.FormDataContentType(), &body)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	tc.record(resp, respBody)
	return nil
}

func (tc *TestContext) theResponseStatusIs(status int) error {
	if tc.LastStatusCode != status {
		return fmt.Errorf("expected status %d, got %d (body: %s)", status, tc.LastStatusCode, tc.LastBody)
	}
	return nil
}

func (tc *TestContext) theHealthStatusIs(expected string) error {
	if !strings.Contains(string(tc.LastBody), fmt.Sprintf("%q", expected)) {
		return fmt.Errorf("health body %s does not report status %q", tc.LastBody, expected)
	}
	return nil
}

func (tc *TestContext) theReportContainsWords(count int) error {
	if tc.LastResponse == nil {
		return fmt.Errorf("no OCR response recorded (body: %s)", tc.LastBody)
	}
	if tc.LastResponse.TotalWords != count {
		return fmt.Errorf("expected %d words, got %d", count, tc.LastResponse.TotalWords)
	}
	if len(tc.LastResponse.Results) != count {
		return fmt.Errorf("totalWords is %d but results has %d entries", count, len(tc.LastResponse.Results))
	}
	return nil
}

func (tc *TestContext) wordIsOnPage(index int, text string, page int) error {
	if tc.LastResponse == nil {
		return fmt.Errorf("no OCR response recorded")
	}
	if index < 1 || index > len(tc.LastResponse.Results) {
		return fmt.Errorf("word index %d out of range (%d results)", index, len(tc.LastResponse.Results))
	}
	word := tc.LastResponse.Results[index-1]
	if word.Text != text {
		return fmt.Errorf("word %d is %q, expected %q", index, word.Text, text)
	}
	if word.Page != page {
		return fmt.Errorf("word %d is on page %d, expected %d", index, word.Page, page)
	}
	if word.Box.X0 > word.Box.X1 || word.Box.Y0 > word.Box.Y1 {
		return fmt.Errorf("word %d has an unnormalized box: %+v", index, word.Box)
	}
	return nil
}

func (tc *TestContext) theReportReferencesAnnotatedPages(count int) error {
	if tc.LastResponse == nil {
		return fmt.Errorf("no OCR response recorded")
	}
	if len(tc.LastResponse.HighlightedImages) != count {
		return fmt.Errorf("expected %d annotated pages, got %d", count, len(tc.LastResponse.HighlightedImages))
	}
	for i, img := range tc.LastResponse.HighlightedImages {
		if img.Page != i+1 {
			return fmt.Errorf("annotated page %d reports page number %d", i+1, img.Page)
		}
		if !strings.HasPrefix(img.URL, "/artifacts/") {
			return fmt.Errorf("annotated page %d has unexpected URL %q", i+1, img.URL)
		}
	}
	return nil
}

func (tc *TestContext) everyAnnotatedPageIsFetchable() error {
	if tc.LastResponse == nil {
		return fmt.Errorf("no OCR response recorded")
	}
	for _, img := range tc.LastResponse.HighlightedImages {
		resp, err := http.Get(tc.testServer.URL + img.URL)
		if err != nil {
			return err
		}
		_ = resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("fetching %s returned %d", img.URL, resp.StatusCode)
		}
	}
	return nil
}

func (tc *TestContext) theResponseReportsFailure() error {
	if tc.LastResponse == nil {
		return fmt.Errorf("no OCR response recorded (body: %s)", tc.LastBody)
	}
	if tc.LastResponse.Success {
		return fmt.Errorf("response reports success, expected failure")
	}
	if tc.LastResponse.Error == "" {
		return fmt.Errorf("failure response carries no error message")
	}
	return nil
}
