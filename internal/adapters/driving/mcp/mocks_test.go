package mcp

import (
	"context"
	"io"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/core/ports/driving"
)

// mockCardService is a mock implementation of driving.CardService.
type mockCardService struct {
	cards     []domain.CardSummary
	records   map[string]*domain.CardRecord
	scene     *domain.Scene
	templates []string
	rendered  []byte
	err       error

	loadedTarget domain.Size
	savedMeta    map[string]any
	template     string
}

func (m *mockCardService) Save(_ context.Context, _ string, _ *domain.Scene, metadata map[string]any) (*domain.SaveResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.savedMeta = metadata
	return &domain.SaveResult{ID: "new-card"}, nil
}

func (m *mockCardService) SaveDeck(_ context.Context, _ string, _ []domain.Slide, _ int, _ map[string]any) (*domain.SaveResult, error) {
	return nil, m.err
}

func (m *mockCardService) Load(_ context.Context, id string, target domain.Size) (*domain.Scene, error) {
	if m.err != nil {
		return nil, m.err
	}
	if _, ok := m.records[id]; !ok {
		return nil, domain.ErrNotFound
	}
	m.loadedTarget = target
	return m.scene, nil
}

func (m *mockCardService) LoadDeck(_ context.Context, _ string) ([]domain.Slide, error) {
	return nil, m.err
}

func (m *mockCardService) Get(_ context.Context, id string) (*domain.CardRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	record, ok := m.records[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return record, nil
}

func (m *mockCardService) List(_ context.Context) ([]domain.CardSummary, error) {
	return m.cards, m.err
}

func (m *mockCardService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockCardService) Render(_ context.Context, _ *domain.Scene) ([]byte, error) {
	return m.rendered, m.err
}

func (m *mockCardService) Templates() ([]string, error) {
	return m.templates, m.err
}

func (m *mockCardService) FromTemplate(name string, _ domain.Size) (*domain.Scene, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.template = name
	return domain.NewScene(800, 600), nil
}

func (m *mockCardService) Upload(_ context.Context, _ string, _ io.Reader) (*domain.Asset, error) {
	return nil, m.err
}

// Ensure mocks implement interfaces.
var _ driving.CardService = (*mockCardService)(nil)
