package driven

import (
	"context"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
)

// CardStore persists cards as (raster, vector, metadata) triples.
type CardStore interface {
	// Save stores a card. An empty ID creates a new card; an existing ID
	// replaces it. Returns the stored card ID.
	Save(ctx context.Context, card *domain.CardRecord) (string, error)

	// Get retrieves a card by ID.
	// Returns domain.ErrNotFound if the card does not exist.
	Get(ctx context.Context, id string) (*domain.CardRecord, error)

	// List returns summaries of all cards, most recently updated first.
	List(ctx context.Context) ([]domain.CardSummary, error)

	// Delete removes a card.
	// Returns domain.ErrNotFound if the card does not exist.
	Delete(ctx context.Context, id string) error
}
