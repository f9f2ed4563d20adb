package driven

import (
	"context"
	"io"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
)

// ImageHost stores uploaded images and returns a URL image primitives can
// reference.
type ImageHost interface {
	// Upload stores the image read from r under a name derived from name.
	Upload(ctx context.Context, name string, r io.Reader) (*domain.Asset, error)

	// Name returns a short identifier of the host (e.g. "local").
	Name() string
}
