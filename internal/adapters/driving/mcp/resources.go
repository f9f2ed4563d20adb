package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for card resources.
	uriScheme = "card://"

	imageSuffix = "/image"
)

func cardURI(id string) string {
	return uriScheme + "cards/" + id
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "cards",
		Name:        "cards",
		Description: "List of all stored cards",
		MIMEType:    "application/json",
	}, s.handleCardsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "cards/{cardId}",
		Name:        "card-document",
		Description: "Scene document of a stored card",
		MIMEType:    "application/json",
	}, s.handleCardResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "cards/{cardId}/image",
		Name:        "card-image",
		Description: "Stored PNG snapshot of a card",
		MIMEType:    "image/png",
	}, s.handleCardResource)
}

// handleCardsResource returns a list of all stored cards.
func (s *Server) handleCardsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	cards, err := s.ports.Cards.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing cards: %w", err)
	}

	type cardInfo struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		URI   string `json:"uri"`
	}

	infos := make([]cardInfo, len(cards))
	for i, c := range cards {
		infos[i] = cardInfo{ID: c.ID, Title: c.Title, URI: cardURI(c.ID)}
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling cards: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleCardResource returns the stored document or snapshot of one card.
func (s *Server) handleCardResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	id, image := extractCardID(req.Params.URI)
	if id == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	record, err := s.ports.Cards.Get(ctx, id)
	if err != nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	contents := &mcp.ResourceContents{URI: req.Params.URI}
	switch {
	case image:
		contents.MIMEType = "image/png"
		contents.Blob = record.Raster
	case len(record.Vector) == 0:
		return nil, fmt.Errorf("card %s was saved as an image only", id)
	default:
		contents.MIMEType = "application/json"
		contents.Text = string(record.Vector)
	}
	return &mcp.ReadResourceResult{Contents: []*mcp.ResourceContents{contents}}, nil
}

// extractCardID extracts the card ID from a URI like card://cards/{id} or
// card://cards/{id}/image.
func extractCardID(uri string) (id string, image bool) {
	const prefix = uriScheme + "cards/"

	if !strings.HasPrefix(uri, prefix) {
		return "", false
	}
	id = strings.TrimPrefix(uri, prefix)
	if strings.HasSuffix(id, imageSuffix) {
		id = strings.TrimSuffix(id, imageSuffix)
		image = true
	}
	if id == "" || strings.Contains(id, "/") {
		return "", false
	}
	return id, image
}
