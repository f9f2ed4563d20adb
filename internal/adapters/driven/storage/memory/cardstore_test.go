package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
)

func TestCardStore_SaveAndGet(t *testing.T) {
	store := NewCardStore()
	ctx := context.Background()

	id, err := store.Save(ctx, &domain.CardRecord{
		Raster:   []byte{1, 2, 3},
		Vector:   []byte(`{"objects":[]}`),
		Metadata: map[string]any{"title": "Welcome"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, []byte{1, 2, 3}, got.Raster)
	assert.Equal(t, `{"objects":[]}`, string(got.Vector))
	assert.Equal(t, "Welcome", got.Metadata["title"])
	assert.False(t, got.CreatedAt.IsZero())
}

func TestCardStore_Save_ReplaceKeepsCreatedAt(t *testing.T) {
	store := NewCardStore()
	ctx := context.Background()

	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return t0 }
	_, err := store.Save(ctx, &domain.CardRecord{ID: "c1", Raster: []byte{1}})
	require.NoError(t, err)

	store.now = func() time.Time { return t0.Add(time.Hour) }
	_, err = store.Save(ctx, &domain.CardRecord{ID: "c1", Raster: []byte{2}, Degraded: true})
	require.NoError(t, err)

	got, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, t0, got.CreatedAt)
	assert.Equal(t, t0.Add(time.Hour), got.UpdatedAt)
	assert.True(t, got.Degraded)
	assert.Nil(t, got.Vector)
}

func TestCardStore_Get_ReturnsCopy(t *testing.T) {
	store := NewCardStore()
	ctx := context.Background()
	_, err := store.Save(ctx, &domain.CardRecord{ID: "c1", Raster: []byte{1}, Metadata: map[string]any{"a": 1}})
	require.NoError(t, err)

	got, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	got.Raster[0] = 9
	got.Metadata["a"] = 2

	again, err := store.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, byte(1), again.Raster[0])
	assert.Equal(t, 1, again.Metadata["a"])
}

func TestCardStore_Get_NotFound(t *testing.T) {
	_, err := NewCardStore().Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCardStore_List_MostRecentFirst(t *testing.T) {
	store := NewCardStore()
	ctx := context.Background()
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"old", "new"} {
		at := t0.Add(time.Duration(i) * time.Minute)
		store.now = func() time.Time { return at }
		_, err := store.Save(ctx, &domain.CardRecord{
			ID:       id,
			Raster:   []byte{1, 2},
			Metadata: map[string]any{"title": id},
		})
		require.NoError(t, err)
	}

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].ID)
	assert.Equal(t, "new", list[0].Title)
	assert.Equal(t, 2, list[0].RasterSize)
	assert.Equal(t, "old", list[1].ID)
}

func TestCardStore_Delete(t *testing.T) {
	store := NewCardStore()
	ctx := context.Background()
	_, err := store.Save(ctx, &domain.CardRecord{ID: "c1"})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "c1"))
	assert.ErrorIs(t, store.Delete(ctx, "c1"), domain.ErrNotFound)

	_, err = store.Get(ctx, "c1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
