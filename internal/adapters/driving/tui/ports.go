// Package tui provides an interactive terminal card editor.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"context"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/core/ports/driven"
	"github.com/custodia-labs/cardstudio/internal/core/services"
)

// CardPort is the part of the card service the TUI uses.
type CardPort interface {
	List(ctx context.Context) ([]domain.CardSummary, error)
	Delete(ctx context.Context, id string) error
	OpenSession(ctx context.Context, id string, target domain.Size, surface driven.RenderSurface) (*services.Session, error)
	SaveSession(ctx context.Context, id string, session *services.Session, metadata map[string]any) (*domain.SaveResult, error)
}

// Ensure the card service satisfies CardPort.
var _ CardPort = (*services.CardService)(nil)

// Ports aggregates everything the TUI needs.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Cards lists, opens and saves cards.
	Cards CardPort

	// Target is the canvas size cards are edited at.
	Target domain.Size

	// NewSurface returns the surface the editor drives.
	NewSurface func() driven.RenderSurface
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Cards == nil {
		return ErrMissingCardService
	}
	if p.NewSurface == nil {
		return ErrMissingSurface
	}
	return nil
}
