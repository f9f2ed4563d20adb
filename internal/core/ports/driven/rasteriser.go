package driven

import (
	"context"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
)

// Rasteriser flattens a scene into a raster snapshot.
type Rasteriser interface {
	// Rasterise paints the scene at its own size and returns PNG bytes.
	Rasterise(ctx context.Context, scene *domain.Scene) ([]byte, error)
}
