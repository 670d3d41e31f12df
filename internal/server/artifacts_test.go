package server

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/docr/internal/pipeline"
	"github.com/MeKo-Tech/docr/internal/testutil"
)

func artifactFixture(page int, name string) pipeline.PageArtifact {
	return pipeline.PageArtifact{
		Page:     page,
		Filename: name,
		Image:    testutil.NewImage(20, 10, color.White),
	}
}

func TestArtifactStoreSave(t *testing.T) {
	dir := t.TempDir()
	store, err := NewArtifactStore(dir, "/artifacts")
	require.NoError(t, err)

	url, err := store.Save(artifactFixture(1, "tok_page_1.png"))
	require.NoError(t, err)
	assert.Equal(t, "/artifacts/tok_page_1.png", url)

	info, err := os.Stat(filepath.Join(dir, "tok_page_1.png"))
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestArtifactStoreSaveStripsPath(t *testing.T) {
	dir := t.TempDir()
	store, err := NewArtifactStore(dir, "/artifacts")
	require.NoError(t, err)

	url, err := store.Save(artifactFixture(1, "../../escape.png"))
	require.NoError(t, err)
	assert.Equal(t, "/artifacts/escape.png", url)

	_, err = os.Stat(filepath.Join(dir, "escape.png"))
	assert.NoError(t, err, "file must land inside the store directory")
}

func TestArtifactStoreSaveUnknownFormat(t *testing.T) {
	store, err := NewArtifactStore(t.TempDir(), "/artifacts")
	require.NoError(t, err)

	_, err = store.Save(artifactFixture(1, "bad.xyz"))
	require.Error(t, err)

	var storeErr *StoreError
	assert.ErrorAs(t, err, &storeErr)
}

func TestArtifactStoreSaveAll(t *testing.T) {
	dir := t.TempDir()
	store, err := NewArtifactStore(dir, "/artifacts")
	require.NoError(t, err)

	urls, err := store.SaveAll([]pipeline.PageArtifact{
		artifactFixture(1, "tok_page_1.png"),
		artifactFixture(2, "tok_page_2.png"),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/artifacts/tok_page_1.png", "/artifacts/tok_page_2.png"}, urls)
}

func TestArtifactStoreSaveAllCleansUpOnFailure(t *testing.T) {
	dir := t.TempDir()
	store, err := NewArtifactStore(dir, "/artifacts")
	require.NoError(t, err)

	urls, err := store.SaveAll([]pipeline.PageArtifact{
		artifactFixture(1, "tok_page_1.png"),
		artifactFixture(2, "tok_page_2.bogus"), // encoder lookup fails
	})
	require.Error(t, err)
	assert.Nil(t, urls)

	entries, readErr := os.ReadDir(dir)
	require.NoError(t, readErr)
	assert.Empty(t, entries, "a failed batch removes its already-written files")
}

func TestNewArtifactStoreCreatesDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "artifacts")
	store, err := NewArtifactStore(dir, "/artifacts")
	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
