package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/core/ports/driven"
)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// cardStore implements driven.CardStore.
type cardStore struct {
	store *Store
}

var _ driven.CardStore = (*cardStore)(nil)

// Save stores or replaces a card. Replacing keeps the original created_at.
func (s *cardStore) Save(ctx context.Context, card *domain.CardRecord) (string, error) {
	if card == nil {
		return "", fmt.Errorf("%w: nil card", domain.ErrInvalidInput)
	}
	id := card.ID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := card.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return "", fmt.Errorf("marshalling metadata: %w", err)
	}

	raster := card.Raster
	if raster == nil {
		raster = []byte{}
	}
	now := formatTime(s.store.now())

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO cards (id, raster, vector, metadata, degraded, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			raster = excluded.raster,
			vector = excluded.vector,
			metadata = excluded.metadata,
			degraded = excluded.degraded,
			updated_at = excluded.updated_at
	`, id, raster, nullBytes(card.Vector), string(metaJSON), boolToInt(card.Degraded), now, now)
	if err != nil {
		return "", fmt.Errorf("saving card: %w", err)
	}
	return id, nil
}

// Get retrieves a card by ID.
func (s *cardStore) Get(ctx context.Context, id string) (*domain.CardRecord, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, raster, vector, metadata, degraded, created_at, updated_at
		FROM cards WHERE id = ?
	`, id)

	var (
		record    domain.CardRecord
		vector    []byte
		metaJSON  string
		degraded  int
		createdAt string
		updatedAt string
	)
	err := row.Scan(&record.ID, &record.Raster, &vector, &metaJSON, &degraded, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying card: %w", err)
	}

	if len(vector) > 0 {
		record.Vector = vector
	}
	if err := json.Unmarshal([]byte(metaJSON), &record.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshalling metadata: %w", err)
	}
	record.Degraded = degraded != 0
	record.CreatedAt = parseTime(createdAt)
	record.UpdatedAt = parseTime(updatedAt)
	return &record, nil
}

// List returns summaries of all cards, most recently updated first.
func (s *cardStore) List(ctx context.Context) ([]domain.CardSummary, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id,
			CASE WHEN json_type(metadata, '$.title') = 'text'
				THEN json_extract(metadata, '$.title') ELSE '' END,
			degraded, length(raster), COALESCE(length(vector), 0), updated_at
		FROM cards
		ORDER BY updated_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying cards: %w", err)
	}
	defer rows.Close()

	summaries := []domain.CardSummary{}
	for rows.Next() {
		var (
			summary   domain.CardSummary
			degraded  int
			updatedAt string
		)
		if err := rows.Scan(&summary.ID, &summary.Title, &degraded,
			&summary.RasterSize, &summary.VectorSize, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning card: %w", err)
		}
		summary.Degraded = degraded != 0
		summary.UpdatedAt = parseTime(updatedAt)
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// Delete removes a card.
func (s *cardStore) Delete(ctx context.Context, id string) error {
	result, err := s.store.db.ExecContext(ctx, "DELETE FROM cards WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting card: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting card: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime returns the zero time for values it cannot read.
func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullBytes stores an absent vector payload as NULL.
func nullBytes(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return b
}

// boolToInt converts a bool to 1 (true) or 0 (false).
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
