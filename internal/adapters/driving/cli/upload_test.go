package cli

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
)

func (e *testEnv) writePNG(t *testing.T, name string) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))
	return path
}

func (e *testEnv) uploads(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir(e.imageDir)
	require.NoError(t, err)
	return len(entries)
}

func TestUpload_Plain(t *testing.T) {
	env := setupTestServices(t)
	path := env.writePNG(t, "photo.png")

	out, _, err := execute(t, "upload", path)

	require.NoError(t, err)
	assert.Contains(t, out, "Uploaded file://")
	assert.Equal(t, 1, env.uploads(t))
}

func TestUpload_NotAnImage(t *testing.T) {
	env := setupTestServices(t)
	path := env.writeDocument(t, "notes.txt", "just text")

	_, _, err := execute(t, "upload", path)

	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	assert.Equal(t, 0, env.uploads(t))
}

func TestUpload_PointsImageObject(t *testing.T) {
	env := setupTestServices(t)
	scene := domain.NewScene(800, 600)
	photo := domain.NewImage("old.png", 10, 10, 100, 100)
	photo.ID = "photo"
	scene.Primitives = []domain.Primitive{photo}
	saved, err := cardService.Save(context.Background(), "", scene, nil)
	require.NoError(t, err)
	path := env.writePNG(t, "new.png")

	out, _, err := execute(t, "upload", path, "--card", saved.ID, "--object", "photo")

	require.NoError(t, err)
	assert.Contains(t, out, "Uploaded file://")
	assert.Contains(t, out, "Saved card "+saved.ID)

	got, ok := loadScene(t, saved.ID).Get("photo")
	require.True(t, ok)
	assert.Contains(t, got.Src, "file://")
	assert.Contains(t, got.Src, ".png")
}

func TestUpload_UnknownObjectLeavesCard(t *testing.T) {
	env := setupTestServices(t)
	id := env.saveCard(t)
	before, err := env.store.Get(context.Background(), id)
	require.NoError(t, err)
	path := env.writePNG(t, "new.png")

	out, _, err := execute(t, "upload", path, "--card", id, "--object", "missing")

	require.NoError(t, err)
	assert.Contains(t, out, "Object missing not found on slide 1; card left unchanged")
	after, err := env.store.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, before.Vector, after.Vector)
}

func TestUpload_CardNeedsObject(t *testing.T) {
	env := setupTestServices(t)
	id := env.saveCard(t)
	path := env.writePNG(t, "new.png")

	_, _, err := execute(t, "upload", path, "--card", id)

	assert.Error(t, err)
}
