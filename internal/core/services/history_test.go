package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
)

// top returns the snapshot at the top of past.
func top(h *History) []byte {
	if len(h.past) == 0 {
		return nil
	}
	return h.past[len(h.past)-1]
}

// applied collects the snapshots a history hands to its apply callback.
type applied struct {
	got []string
}

func (a *applied) apply(b []byte) error {
	a.got = append(a.got, string(b))
	return nil
}

func TestNewHistory_LimitFallback(t *testing.T) {
	assert.Equal(t, DefaultHistoryLimit, NewHistory(0).Limit())
	assert.Equal(t, DefaultHistoryLimit, NewHistory(1).Limit())
	assert.Equal(t, 2, NewHistory(2).Limit())
}

func TestHistory_InitialStateIsNotUndoable(t *testing.T) {
	h := NewHistory(10)
	h.Reset([]byte("s0"))

	var a applied
	ok, err := h.Undo(a.apply)

	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, h.CanUndo())
	assert.Empty(t, a.got)
	assert.Equal(t, "s0", string(top(h)))
}

func TestHistory_UndoRedo(t *testing.T) {
	h := NewHistory(10)
	h.Reset([]byte("s0"))
	h.Record([]byte("s1"))
	h.Record([]byte("s2"))

	var a applied
	ok, err := h.Undo(a.apply)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "s1", string(top(h)))

	ok, err = h.Redo(a.apply)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "s2", string(top(h)))
	assert.Equal(t, []string{"s1", "s2"}, a.got)
	assert.False(t, h.CanRedo())
}

func TestHistory_RecordClearsFuture(t *testing.T) {
	h := NewHistory(10)
	h.Reset([]byte("s0"))
	h.Record([]byte("s1"))

	var a applied
	_, err := h.Undo(a.apply)
	require.NoError(t, err)
	require.True(t, h.CanRedo())

	h.Record([]byte("s1b"))

	assert.False(t, h.CanRedo())
	past, future := h.Depth()
	assert.Equal(t, 2, past)
	assert.Equal(t, 0, future)
}

func TestHistory_EvictsOldestBeyondLimit(t *testing.T) {
	h := NewHistory(DefaultHistoryLimit)
	h.Reset([]byte("s0"))
	for i := 1; i <= 60; i++ {
		h.Record([]byte(fmt.Sprintf("s%d", i)))
	}

	past, _ := h.Depth()
	assert.Equal(t, DefaultHistoryLimit, past)

	var a applied
	undos := 0
	for {
		ok, err := h.Undo(a.apply)
		require.NoError(t, err)
		if !ok {
			break
		}
		undos++
	}
	assert.Equal(t, DefaultHistoryLimit-1, undos)
	assert.Equal(t, "s11", string(top(h)))
}

func TestHistory_IgnoresRecordWhileRestoring(t *testing.T) {
	h := NewHistory(10)
	h.Reset([]byte("s0"))
	h.Record([]byte("s1"))

	var recorded bool
	var state HistoryState
	_, err := h.Undo(func([]byte) error {
		state = h.State()
		recorded = h.Record([]byte("echo"))
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, HistoryRestoring, state)
	assert.False(t, recorded)
	assert.Equal(t, HistoryLive, h.State())
	assert.Equal(t, "s0", string(top(h)))
	assert.True(t, h.CanRedo())
}

func TestHistory_FailedUndoRollsBack(t *testing.T) {
	h := NewHistory(10)
	h.Reset([]byte("s0"))
	h.Record([]byte("s1"))

	ok, err := h.Undo(func([]byte) error { return errors.New("surface gone") })

	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrRestoreFailed)
	assert.Equal(t, "s1", string(top(h)))
	assert.True(t, h.CanUndo())
	assert.False(t, h.CanRedo())
	assert.Equal(t, HistoryLive, h.State())
}

func TestHistory_FailedRedoRollsBack(t *testing.T) {
	h := NewHistory(10)
	h.Reset([]byte("s0"))
	h.Record([]byte("s1"))
	var a applied
	_, err := h.Undo(a.apply)
	require.NoError(t, err)

	ok, err := h.Redo(func([]byte) error { return errors.New("surface gone") })

	assert.False(t, ok)
	assert.ErrorIs(t, err, domain.ErrRestoreFailed)
	assert.Equal(t, "s0", string(top(h)))
	assert.True(t, h.CanRedo())
}

func TestHistory_SnapshotsAreCopied(t *testing.T) {
	h := NewHistory(10)
	snap := []byte("s0")
	h.Reset(snap)
	snap[0] = 'x'

	assert.Equal(t, "s0", string(top(h)))
}

func TestHistoryState_String(t *testing.T) {
	assert.Equal(t, "live", HistoryLive.String())
	assert.Equal(t, "restoring", HistoryRestoring.String())
}
