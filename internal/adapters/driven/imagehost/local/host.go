// Package local stores uploaded images in a directory on disk.
package local

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/cardstudio/internal/adapters/driven/imagehost/ratelimit"
	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/core/ports/driven"
)

// MaxUploadBytes bounds a single upload.
const MaxUploadBytes = 32 << 20

// Ensure Host implements the interface.
var _ driven.ImageHost = (*Host)(nil)

var extensions = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/gif":  ".gif",
	"image/webp": ".webp",
	"image/bmp":  ".bmp",
}

// Host writes uploads into a directory and returns file URLs.
type Host struct {
	dir     string
	limiter *ratelimit.Limiter
}

// New creates a local image host. If dir is empty, defaults to
// ~/.cardstudio/images.
func New(dir string, uploadsPerSecond float64) (*Host, error) {
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".cardstudio", "images")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving image directory: %w", err)
	}
	if err := os.MkdirAll(abs, 0700); err != nil {
		return nil, fmt.Errorf("creating image directory: %w", err)
	}
	return &Host{dir: abs, limiter: ratelimit.New(uploadsPerSecond)}, nil
}

// Name returns the host name.
func (h *Host) Name() string {
	return string(domain.ImageHostLocal)
}

// Dir returns the upload directory.
func (h *Host) Dir() string {
	return h.dir
}

// Upload stores the image under a fresh name. Only image content is
// accepted.
func (h *Host) Upload(ctx context.Context, name string, r io.Reader) (*domain.Asset, error) {
	if err := h.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading upload: %w", err)
	}
	if len(data) > MaxUploadBytes {
		return nil, fmt.Errorf("%w: %s is larger than %d bytes", domain.ErrInvalidInput, name, MaxUploadBytes)
	}

	ext, err := extensionFor(name, data)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString() + ext
	path := filepath.Join(h.dir, id)
	if err := os.WriteFile(path, data, 0600); err != nil {
		return nil, fmt.Errorf("writing image: %w", err)
	}
	return &domain.Asset{
		ID:  id,
		URL: (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String(),
	}, nil
}

// extensionFor picks the file extension from the sniffed content type.
func extensionFor(name string, data []byte) (string, error) {
	ct := http.DetectContentType(data)
	if ext, ok := extensions[ct]; ok {
		return ext, nil
	}
	if strings.HasPrefix(ct, "image/") {
		return strings.ToLower(filepath.Ext(name)), nil
	}
	return "", fmt.Errorf("%w: %s is not an image (%s)", domain.ErrInvalidInput, name, ct)
}
