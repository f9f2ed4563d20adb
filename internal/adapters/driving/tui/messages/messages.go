// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/core/services"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewCards lists stored cards.
	ViewCards ViewType = iota
	// ViewEditor edits one card.
	ViewEditor
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewCards:
		return "cards"
	case ViewEditor:
		return "editor"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// CardsLoaded carries the stored card summaries.
type CardsLoaded struct {
	Cards []domain.CardSummary
	Err   error
}

// CardSelected asks for a card to be opened in the editor.
type CardSelected struct {
	ID string
}

// CardDeleted signals a card was deleted.
type CardDeleted struct {
	ID  string
	Err error
}

// SessionOpened carries an editing session for a stored card.
type SessionOpened struct {
	ID      string
	Session *services.Session
	Err     error
}

// CardSaved signals the editor's card was stored.
type CardSaved struct {
	Result *domain.SaveResult
	Err    error
}

// EditorClosed signals the editor released its session.
type EditorClosed struct{}
