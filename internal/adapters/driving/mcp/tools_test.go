package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/interchange"
)

func newTestServer(t *testing.T, cards *mockCardService) *Server {
	t.Helper()
	server, err := NewServer(&Ports{
		Cards:         cards,
		Target:        domain.Size{Width: 800, Height: 600},
		DefaultSource: domain.Size{Width: 800, Height: 600},
	})
	require.NoError(t, err)
	return server
}

func TestServer_handleListCards(t *testing.T) {
	ctx := context.Background()

	t.Run("returns cards", func(t *testing.T) {
		updated := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		server := newTestServer(t, &mockCardService{cards: []domain.CardSummary{
			{ID: "card-1", Title: "Launch", UpdatedAt: updated},
			{ID: "card-2", Degraded: true, UpdatedAt: updated},
		}})

		_, output, err := server.handleListCards(ctx, nil, ListCardsInput{})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.Equal(t, "card-1", output.Cards[0].ID)
		assert.Equal(t, "Launch", output.Cards[0].Title)
		assert.Equal(t, "card://cards/card-1", output.Cards[0].URI)
		assert.Equal(t, "2026-03-01T12:00:00Z", output.Cards[0].UpdatedAt)
		assert.True(t, output.Cards[1].Degraded)
	})

	t.Run("returns error on failure", func(t *testing.T) {
		server := newTestServer(t, &mockCardService{err: errors.New("db locked")})

		_, _, err := server.handleListCards(ctx, nil, ListCardsInput{})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "db locked")
	})
}

func TestServer_handleRenderCard(t *testing.T) {
	ctx := context.Background()
	records := map[string]*domain.CardRecord{
		"card-1": {ID: "card-1", Raster: []byte("STORED"), Vector: []byte("{}")},
		"card-2": {ID: "card-2", Vector: []byte("{}")},
	}

	t.Run("returns stored snapshot", func(t *testing.T) {
		server := newTestServer(t, &mockCardService{records: records})

		result, output, err := server.handleRenderCard(ctx, nil, RenderCardInput{ID: "card-1"})

		require.NoError(t, err)
		require.Len(t, result.Content, 1)
		image, ok := result.Content[0].(*mcp.ImageContent)
		require.True(t, ok)
		assert.Equal(t, "image/png", image.MIMEType)
		assert.Equal(t, []byte("STORED"), image.Data)
		assert.Equal(t, 6, output.Bytes)
	})

	t.Run("renders at a new size", func(t *testing.T) {
		cards := &mockCardService{records: records, scene: domain.NewScene(1080, 1080), rendered: []byte("FRESH")}
		server := newTestServer(t, cards)

		result, _, err := server.handleRenderCard(ctx, nil, RenderCardInput{ID: "card-1", Width: 1080, Height: 1080})

		require.NoError(t, err)
		assert.Equal(t, []byte("FRESH"), result.Content[0].(*mcp.ImageContent).Data)
		assert.Equal(t, domain.Size{Width: 1080, Height: 1080}, cards.loadedTarget)
	})

	t.Run("renders when no snapshot is stored", func(t *testing.T) {
		server := newTestServer(t, &mockCardService{records: records, scene: domain.NewScene(800, 600), rendered: []byte("FRESH")})

		_, output, err := server.handleRenderCard(ctx, nil, RenderCardInput{ID: "card-2"})

		require.NoError(t, err)
		assert.Equal(t, 5, output.Bytes)
	})

	t.Run("requires an id", func(t *testing.T) {
		server := newTestServer(t, &mockCardService{})

		_, _, err := server.handleRenderCard(ctx, nil, RenderCardInput{})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})

	t.Run("unknown card", func(t *testing.T) {
		server := newTestServer(t, &mockCardService{records: records})

		_, _, err := server.handleRenderCard(ctx, nil, RenderCardInput{ID: "missing"})

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServer_handleRemap(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t, &mockCardService{})

	t.Run("fits document to target", func(t *testing.T) {
		doc := `{"width":400,"height":300,"objects":[{"type":"rect","id":"r","left":100,"top":50,"width":10,"height":10}]}`

		_, output, err := server.handleRemap(ctx, nil, RemapInput{Document: doc, Width: 800, Height: 600})

		require.NoError(t, err)
		assert.Equal(t, 2.0, output.ScaleX)
		assert.Equal(t, 2.0, output.ScaleY)

		scene, err := interchange.Decode([]byte(output.Document))
		require.NoError(t, err)
		assert.Equal(t, domain.Size{Width: 800, Height: 600}, scene.Size())
		r, ok := scene.Get("r")
		require.True(t, ok)
		assert.Equal(t, 200.0, r.Left)
	})

	t.Run("rejects malformed documents", func(t *testing.T) {
		_, _, err := server.handleRemap(ctx, nil, RemapInput{Document: "not json", Width: 800, Height: 600})

		assert.Error(t, err)
	})

	t.Run("rejects invalid target", func(t *testing.T) {
		_, _, err := server.handleRemap(ctx, nil, RemapInput{Document: `{"objects":[]}`})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestServer_handleNewCard(t *testing.T) {
	ctx := context.Background()

	t.Run("creates from template", func(t *testing.T) {
		cards := &mockCardService{}
		server := newTestServer(t, cards)

		_, output, err := server.handleNewCard(ctx, nil, NewCardInput{Template: "quote", Title: "Monday"})

		require.NoError(t, err)
		assert.Equal(t, "new-card", output.ID)
		assert.Equal(t, "card://cards/new-card", output.URI)
		assert.Equal(t, "quote", cards.template)
		assert.Equal(t, map[string]any{"title": "Monday"}, cards.savedMeta)
	})

	t.Run("defaults to blank", func(t *testing.T) {
		cards := &mockCardService{}
		server := newTestServer(t, cards)

		_, _, err := server.handleNewCard(ctx, nil, NewCardInput{})

		require.NoError(t, err)
		assert.Equal(t, "blank", cards.template)
		assert.Nil(t, cards.savedMeta)
	})

	t.Run("returns template errors", func(t *testing.T) {
		server := newTestServer(t, &mockCardService{err: domain.ErrNotFound})

		_, _, err := server.handleNewCard(ctx, nil, NewCardInput{Template: "nope"})

		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestServer_handleListTemplates(t *testing.T) {
	server := newTestServer(t, &mockCardService{templates: []string{"blank", "quote"}})

	_, output, err := server.handleListTemplates(context.Background(), nil, ListTemplatesInput{})

	require.NoError(t, err)
	assert.Equal(t, []string{"blank", "quote"}, output.Templates)
}
