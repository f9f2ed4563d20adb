package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/core/ports/driven"
)

// Ensure CardStore implements the interface.
var _ driven.CardStore = (*CardStore)(nil)

// CardStore is an in-memory implementation of driven.CardStore.
type CardStore struct {
	mu    sync.RWMutex
	cards map[string]domain.CardRecord
	now   func() time.Time
}

// NewCardStore creates a new in-memory card store.
func NewCardStore() *CardStore {
	return &CardStore{
		cards: make(map[string]domain.CardRecord),
		now:   time.Now,
	}
}

// Save stores or replaces a card.
func (s *CardStore) Save(_ context.Context, card *domain.CardRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record := copyRecord(*card)
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := s.now()
	record.CreatedAt = now
	if existing, ok := s.cards[record.ID]; ok {
		record.CreatedAt = existing.CreatedAt
	}
	record.UpdatedAt = now
	s.cards[record.ID] = record
	return record.ID, nil
}

// Get retrieves a card by ID.
func (s *CardStore) Get(_ context.Context, id string) (*domain.CardRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.cards[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := copyRecord(record)
	return &out, nil
}

// List returns summaries of all cards, most recently updated first.
func (s *CardStore) List(_ context.Context) ([]domain.CardSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]domain.CardSummary, 0, len(s.cards))
	for _, c := range s.cards {
		title, _ := c.Metadata["title"].(string)
		summaries = append(summaries, domain.CardSummary{
			ID:         c.ID,
			Title:      title,
			Degraded:   c.Degraded,
			RasterSize: len(c.Raster),
			VectorSize: len(c.Vector),
			UpdatedAt:  c.UpdatedAt,
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].UpdatedAt.Equal(summaries[j].UpdatedAt) {
			return summaries[i].ID < summaries[j].ID
		}
		return summaries[i].UpdatedAt.After(summaries[j].UpdatedAt)
	})
	return summaries, nil
}

// Delete removes a card.
func (s *CardStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cards[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.cards, id)
	return nil
}

func copyRecord(r domain.CardRecord) domain.CardRecord {
	r.Raster = append([]byte(nil), r.Raster...)
	if r.Vector != nil {
		r.Vector = append([]byte(nil), r.Vector...)
	}
	if r.Metadata != nil {
		meta := make(map[string]any, len(r.Metadata))
		for k, v := range r.Metadata {
			meta[k] = v
		}
		r.Metadata = meta
	}
	return r
}
