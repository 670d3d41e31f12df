package pipeline

import (
	"fmt"
	"io"
	"sync"
)

// ProgressCallback receives page-level progress during document processing.
type ProgressCallback interface {
	// OnStart is called once with the total page count.
	OnStart(total int)

	// OnProgress is called after each completed page.
	OnProgress(page, total int)

	// OnComplete is called after the last page.
	OnComplete()

	// OnError is called when a page fails, before Process returns.
	OnError(page int, err error)
}

// NoOpProgressCallback is the default callback; it does nothing.
type NoOpProgressCallback struct{}

func (NoOpProgressCallback) OnStart(total int)          {}
func (NoOpProgressCallback) OnProgress(page, total int) {}
func (NoOpProgressCallback) OnComplete()                {}
func (NoOpProgressCallback) OnError(page int, err error) {}

// WriterProgressCallback prints one line per page, for CLI use.
type WriterProgressCallback struct {
	W io.Writer

	mu sync.Mutex
}

func (c *WriterProgressCallback) OnStart(total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.W, "processing %d page(s)\n", total)
}

func (c *WriterProgressCallback) OnProgress(page, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.W, "page %d/%d done\n", page, total)
}

func (c *WriterProgressCallback) OnComplete() {}

func (c *WriterProgressCallback) OnError(page int, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.W, "page %d failed: %v\n", page, err)
}
