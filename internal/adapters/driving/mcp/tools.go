package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/interchange"
)

// ListCardsInput is the input schema for the list_cards tool.
type ListCardsInput struct{}

// ListCardsOutput is the output schema for the list_cards tool.
type ListCardsOutput struct {
	Cards []CardOutput `json:"cards"`
	Count int          `json:"count"`
}

// CardOutput describes one stored card.
type CardOutput struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	URI       string `json:"uri"`
	Degraded  bool   `json:"degraded,omitempty"`
	UpdatedAt string `json:"updated_at"`
}

// RenderCardInput is the input schema for the render_card tool.
type RenderCardInput struct {
	ID     string  `json:"id" jsonschema:"the card to render"`
	Width  float64 `json:"width,omitempty" jsonschema:"render width; with height, fits the card to a new size"`
	Height float64 `json:"height,omitempty" jsonschema:"render height; with width, fits the card to a new size"`
}

// RenderCardOutput is the output schema for the render_card tool.
type RenderCardOutput struct {
	ID    string `json:"id"`
	Bytes int    `json:"bytes"`
}

// RemapInput is the input schema for the remap_document tool.
type RemapInput struct {
	Document string  `json:"document" jsonschema:"a scene document in interchange JSON"`
	Width    float64 `json:"width" jsonschema:"target canvas width"`
	Height   float64 `json:"height" jsonschema:"target canvas height"`
}

// RemapOutput is the output schema for the remap_document tool.
type RemapOutput struct {
	Document string  `json:"document"`
	ScaleX   float64 `json:"scale_x"`
	ScaleY   float64 `json:"scale_y"`
}

// NewCardInput is the input schema for the new_card tool.
type NewCardInput struct {
	Template string `json:"template,omitempty" jsonschema:"template name (default blank)"`
	Title    string `json:"title,omitempty" jsonschema:"card title"`
}

// NewCardOutput is the output schema for the new_card tool.
type NewCardOutput struct {
	ID       string `json:"id"`
	URI      string `json:"uri"`
	Degraded bool   `json:"degraded,omitempty"`
	Warning  string `json:"warning,omitempty"`
}

// ListTemplatesInput is the input schema for the list_templates tool.
type ListTemplatesInput struct{}

// ListTemplatesOutput is the output schema for the list_templates tool.
type ListTemplatesOutput struct {
	Templates []string `json:"templates"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_cards",
		Description: "List all stored cards",
	}, s.handleListCards)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "render_card",
		Description: "Render a stored card as a PNG image",
	}, s.handleRenderCard)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "remap_document",
		Description: "Fit a scene document to a new canvas size",
	}, s.handleRemap)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "new_card",
		Description: "Create and store a card from a template",
	}, s.handleNewCard)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_templates",
		Description: "List the templates new cards can start from",
	}, s.handleListTemplates)
}

func (s *Server) handleListCards(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListCardsInput,
) (*mcp.CallToolResult, ListCardsOutput, error) {
	cards, err := s.ports.Cards.List(ctx)
	if err != nil {
		return nil, ListCardsOutput{}, err
	}

	output := ListCardsOutput{
		Cards: make([]CardOutput, len(cards)),
		Count: len(cards),
	}
	for i, c := range cards {
		output.Cards[i] = CardOutput{
			ID:        c.ID,
			Title:     c.Title,
			URI:       cardURI(c.ID),
			Degraded:  c.Degraded,
			UpdatedAt: c.UpdatedAt.UTC().Format(time.RFC3339),
		}
	}
	return nil, output, nil
}

// handleRenderCard returns the stored snapshot, or a fresh render when a
// size is given.
func (s *Server) handleRenderCard(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RenderCardInput,
) (*mcp.CallToolResult, RenderCardOutput, error) {
	if input.ID == "" {
		return nil, RenderCardOutput{}, fmt.Errorf("%w: id is required", domain.ErrInvalidInput)
	}

	png, err := s.renderCard(ctx, input.ID, domain.Size{Width: input.Width, Height: input.Height})
	if err != nil {
		return nil, RenderCardOutput{}, err
	}

	result := &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.ImageContent{Data: png, MIMEType: "image/png"}},
	}
	return result, RenderCardOutput{ID: input.ID, Bytes: len(png)}, nil
}

func (s *Server) renderCard(ctx context.Context, id string, size domain.Size) ([]byte, error) {
	if !size.Valid() {
		record, err := s.ports.Cards.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(record.Raster) > 0 {
			return record.Raster, nil
		}
	}
	scene, err := s.ports.Cards.Load(ctx, id, size)
	if err != nil {
		return nil, err
	}
	return s.ports.Cards.Render(ctx, scene)
}

func (s *Server) handleRemap(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input RemapInput,
) (*mcp.CallToolResult, RemapOutput, error) {
	scene, err := interchange.Decode([]byte(input.Document))
	if err != nil {
		return nil, RemapOutput{}, err
	}
	scale, err := s.remapper.Fit(scene, domain.Size{Width: input.Width, Height: input.Height})
	if err != nil {
		return nil, RemapOutput{}, err
	}
	data, err := interchange.Marshal(scene)
	if err != nil {
		return nil, RemapOutput{}, err
	}
	return nil, RemapOutput{Document: string(data), ScaleX: scale.X, ScaleY: scale.Y}, nil
}

func (s *Server) handleNewCard(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input NewCardInput,
) (*mcp.CallToolResult, NewCardOutput, error) {
	name := input.Template
	if name == "" {
		name = "blank"
	}
	scene, err := s.ports.Cards.FromTemplate(name, s.ports.Target)
	if err != nil {
		return nil, NewCardOutput{}, err
	}

	var metadata map[string]any
	if input.Title != "" {
		metadata = map[string]any{"title": input.Title}
	}
	result, err := s.ports.Cards.Save(ctx, "", scene, metadata)
	if err != nil {
		return nil, NewCardOutput{}, err
	}
	return nil, NewCardOutput{
		ID:       result.ID,
		URI:      cardURI(result.ID),
		Degraded: result.Degraded,
		Warning:  result.Warning,
	}, nil
}

func (s *Server) handleListTemplates(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ ListTemplatesInput,
) (*mcp.CallToolResult, ListTemplatesOutput, error) {
	names, err := s.ports.Cards.Templates()
	if err != nil {
		return nil, ListTemplatesOutput{}, err
	}
	return nil, ListTemplatesOutput{Templates: names}, nil
}
