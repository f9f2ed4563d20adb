package local

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 1, 1))))
	return buf.Bytes()
}

func TestNew_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	host, err := New("", 0)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".cardstudio", "images"), host.Dir())
	assert.Equal(t, "local", host.Name())
}

func TestHost_Upload(t *testing.T) {
	host, err := New(t.TempDir(), 0)
	require.NoError(t, err)
	data := pngBytes(t)

	asset, err := host.Upload(context.Background(), "photo.jpeg", bytes.NewReader(data))
	require.NoError(t, err)

	assert.True(t, strings.HasSuffix(asset.ID, ".png"))
	u, err := url.Parse(asset.URL)
	require.NoError(t, err)
	assert.Equal(t, "file", u.Scheme)

	stored, err := os.ReadFile(filepath.Join(host.Dir(), asset.ID))
	require.NoError(t, err)
	assert.Equal(t, data, stored)
}

func TestHost_UploadUniqueNames(t *testing.T) {
	host, err := New(t.TempDir(), 0)
	require.NoError(t, err)

	a, err := host.Upload(context.Background(), "a.png", bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)
	b, err := host.Upload(context.Background(), "a.png", bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)

	assert.NotEqual(t, a.ID, b.ID)
}

func TestHost_UploadRejectsNonImages(t *testing.T) {
	host, err := New(t.TempDir(), 0)
	require.NoError(t, err)

	_, err = host.Upload(context.Background(), "notes.png", strings.NewReader("just text"))

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestHost_UploadCancelled(t *testing.T) {
	host, err := New(t.TempDir(), 0.001)
	require.NoError(t, err)
	_, err = host.Upload(context.Background(), "a.png", bytes.NewReader(pngBytes(t)))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = host.Upload(ctx, "a.png", bytes.NewReader(pngBytes(t)))

	assert.Error(t, err)
}
