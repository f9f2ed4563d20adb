package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
)

// CardService saves, loads and renders cards.
type CardService interface {
	// Save rasterises and encodes the scene and stores both. When the scene
	// cannot be encoded the card is stored raster-only and the result is
	// marked degraded.
	Save(ctx context.Context, id string, scene *domain.Scene, metadata map[string]any) (*domain.SaveResult, error)

	// SaveDeck stores a multi-slide card. The raster is taken from the
	// slide at index cover.
	SaveDeck(ctx context.Context, id string, slides []domain.Slide, cover int, metadata map[string]any) (*domain.SaveResult, error)

	// Load decodes a stored card and fits it to target.
	// Returns domain.ErrNotFound for unknown IDs and domain.ErrInvalidInput
	// for raster-only cards.
	Load(ctx context.Context, id string, target domain.Size) (*domain.Scene, error)

	// LoadDeck decodes every slide of a stored card without remapping.
	LoadDeck(ctx context.Context, id string) ([]domain.Slide, error)

	// Get retrieves the stored record.
	Get(ctx context.Context, id string) (*domain.CardRecord, error)

	// List returns summaries of all stored cards.
	List(ctx context.Context) ([]domain.CardSummary, error)

	// Delete removes a stored card.
	Delete(ctx context.Context, id string) error

	// Render rasterises a scene without storing it.
	Render(ctx context.Context, scene *domain.Scene) ([]byte, error)

	// Templates returns the names of the available templates.
	Templates() ([]string, error)

	// FromTemplate creates a new scene from a named template fitted to
	// target. Returns domain.ErrNotFound for unknown templates.
	FromTemplate(name string, target domain.Size) (*domain.Scene, error)

	// Upload sends an image to the configured image host.
	// Failures wrap domain.ErrUploadFailed.
	Upload(ctx context.Context, name string, r io.Reader) (*domain.Asset, error)
}
