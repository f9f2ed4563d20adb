package services

import (
	"fmt"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/logger"
)

// DefaultHistoryLimit is the number of snapshots kept when no limit is
// configured.
const DefaultHistoryLimit = 50

// HistoryState tells whether the history is tracking mutations.
type HistoryState int

const (
	// HistoryLive records every snapshot it is given.
	HistoryLive HistoryState = iota

	// HistoryRestoring is set while a snapshot is being applied.
	// Snapshots recorded in this state are ignored.
	HistoryRestoring
)

// String returns the state name.
func (s HistoryState) String() string {
	if s == HistoryRestoring {
		return "restoring"
	}
	return "live"
}

// History is a snapshot-based undo/redo stack.
//
// The top of past is always the current state; its first entry is the
// initial state and is never undone. Snapshots are opaque byte slices
// owned by the History and are never shared with another one.
// History is not safe for concurrent use.
type History struct {
	past   [][]byte
	future [][]byte
	limit  int
	state  HistoryState
}

// NewHistory creates an empty history keeping at most limit snapshots.
// A limit below 2 falls back to DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit < 2 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Reset discards all entries and starts over from initial.
func (h *History) Reset(initial []byte) {
	h.past = [][]byte{clone(initial)}
	h.future = nil
	h.state = HistoryLive
}

// Record pushes a snapshot onto past and clears future.
// It returns false, recording nothing, while a restore is in progress.
func (h *History) Record(snapshot []byte) bool {
	if h.state == HistoryRestoring {
		logger.Debug("history: ignoring snapshot taken while restoring")
		return false
	}
	h.past = append(h.past, clone(snapshot))
	h.future = nil
	if over := len(h.past) - h.limit; over > 0 {
		// Drop the oldest entries first.
		h.past = append([][]byte(nil), h.past[over:]...)
	}
	return true
}

// Undo steps back one snapshot and applies it.
// It is a no-op returning false when there is nothing to undo.
// If apply fails the stacks are left as they were and the error returned.
func (h *History) Undo(apply func([]byte) error) (bool, error) {
	if len(h.past) < 2 || h.state == HistoryRestoring {
		return false, nil
	}

	n := len(h.past)
	current, previous := h.past[n-1], h.past[n-2]
	h.past = h.past[:n-1]
	h.future = append(h.future, current)

	if err := h.restore(apply, previous); err != nil {
		h.future = h.future[:len(h.future)-1]
		h.past = append(h.past, current)
		logger.Warn("history: undo failed: %v", err)
		return false, fmt.Errorf("%w: undo: %v", domain.ErrRestoreFailed, err)
	}
	return true, nil
}

// Redo re-applies the most recently undone snapshot.
// It is a no-op returning false when there is nothing to redo.
// If apply fails the stacks are left as they were and the error returned.
func (h *History) Redo(apply func([]byte) error) (bool, error) {
	if len(h.future) == 0 || h.state == HistoryRestoring {
		return false, nil
	}

	n := len(h.future)
	next := h.future[n-1]
	h.future = h.future[:n-1]
	h.past = append(h.past, next)

	if err := h.restore(apply, next); err != nil {
		h.past = h.past[:len(h.past)-1]
		h.future = append(h.future, next)
		logger.Warn("history: redo failed: %v", err)
		return false, fmt.Errorf("%w: redo: %v", domain.ErrRestoreFailed, err)
	}
	return true, nil
}

func (h *History) restore(apply func([]byte) error, snapshot []byte) error {
	h.state = HistoryRestoring
	defer func() { h.state = HistoryLive }()
	return apply(clone(snapshot))
}

// State returns whether a restore is in progress.
func (h *History) State() HistoryState {
	return h.state
}

// CanUndo reports whether Undo would do anything.
func (h *History) CanUndo() bool {
	return len(h.past) > 1
}

// CanRedo reports whether Redo would do anything.
func (h *History) CanRedo() bool {
	return len(h.future) > 0
}

// Depth returns the number of entries in past and future.
func (h *History) Depth() (past, future int) {
	return len(h.past), len(h.future)
}

// Limit returns the maximum number of entries kept in past.
func (h *History) Limit() int {
	return h.limit
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
