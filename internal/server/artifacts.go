package server

import (
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/MeKo-Tech/docr/internal/pipeline"
)

// StoreError indicates an annotated-page artifact could not be written.
type StoreError struct {
	Filename string
	Err      error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("artifact store: write %s: %v", e.Filename, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// ArtifactStore persists annotated page surfaces as PNG files and maps them
// to fetchable URLs. The pipeline suggests the filename; the store owns the
// bytes on disk.
type ArtifactStore struct {
	dir     string
	baseURL string
}

// NewArtifactStore creates a store rooted at dir, serving under baseURL.
func NewArtifactStore(dir, baseURL string) (*ArtifactStore, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create artifacts dir: %w", err)
	}
	return &ArtifactStore{dir: dir, baseURL: baseURL}, nil
}

// Dir returns the store's root directory.
func (s *ArtifactStore) Dir() string { return s.dir }

// Save writes one artifact and returns its public URL.
func (s *ArtifactStore) Save(a pipeline.PageArtifact) (string, error) {
	// The pipeline's suggested name is request-unique already; Base guards
	// against path traversal in case it ever is not.
	name := filepath.Base(a.Filename)
	if err := imaging.Save(a.Image, filepath.Join(s.dir, name)); err != nil {
		return "", &StoreError{Filename: name, Err: err}
	}
	return path.Join(s.baseURL, name), nil
}

// SaveAll persists every artifact in page order, returning their URLs. The
// first failure aborts; already-written files of this request are removed so
// a failed request leaves nothing behind.
func (s *ArtifactStore) SaveAll(artifacts []pipeline.PageArtifact) ([]string, error) {
	urls := make([]string, 0, len(artifacts))
	for i, a := range artifacts {
		url, err := s.Save(a)
		if err != nil {
			for _, prev := range artifacts[:i] {
				_ = os.Remove(filepath.Join(s.dir, filepath.Base(prev.Filename)))
			}
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, nil
}
