package mcp

import (
	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Cards stores, loads and renders cards.
	Cards driving.CardService

	// Target is the canvas size new cards are created at.
	Target domain.Size

	// DefaultSource is assumed for documents that do not state their size.
	DefaultSource domain.Size
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Cards == nil {
		return ErrMissingCardService
	}
	return nil
}
