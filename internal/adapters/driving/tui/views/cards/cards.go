// Package cards provides the card list view for the TUI.
package cards

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/cardstudio/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/cardstudio/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/cardstudio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/cardstudio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/cardstudio/internal/core/domain"
)

// Store lists and deletes stored cards.
type Store interface {
	List(ctx context.Context) ([]domain.CardSummary, error)
	Delete(ctx context.Context, id string) error
}

// View is the card list view.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap
	store  Store
	list   *list.CardList

	confirm string
	loading bool
	err     error
	width   int
	height  int
}

// NewView creates a new cards view.
func NewView(s *styles.Styles, store Store) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		keymap: keymap.DefaultKeyMap(),
		store:  store,
		list:   list.NewCardList(s),
	}
}

// Init loads the cards.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.load()
}

func (v *View) load() tea.Cmd {
	return func() tea.Msg {
		if v.store == nil {
			return messages.CardsLoaded{Err: fmt.Errorf("card service not available")}
		}
		cards, err := v.store.List(context.Background())
		return messages.CardsLoaded{Cards: cards, Err: err}
	}
}

func (v *View) remove(id string) tea.Cmd {
	return func() tea.Msg {
		if v.store == nil {
			return messages.CardDeleted{ID: id, Err: fmt.Errorf("card service not available")}
		}
		err := v.store.Delete(context.Background(), id)
		return messages.CardDeleted{ID: id, Err: err}
	}
}

// Update handles messages for the cards view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.CardsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.list.SetCards(msg.Cards)
		}
		return v, nil

	case messages.CardDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		return v, v.load()

	case tea.KeyMsg:
		return v.handleKey(msg.String())
	}
	return v, nil
}

func (v *View) handleKey(k string) (*View, tea.Cmd) {
	if v.confirm != "" {
		id := v.confirm
		v.confirm = ""
		if k == "y" {
			return v, v.remove(id)
		}
		return v, nil
	}

	switch {
	case keymap.Matches(k, v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(k, v.keymap.Down):
		v.list.MoveDown()
	case keymap.Matches(k, v.keymap.Select):
		if c := v.list.SelectedCard(); c != nil {
			id := c.ID
			return v, func() tea.Msg { return messages.CardSelected{ID: id} }
		}
	case keymap.Matches(k, v.keymap.Delete):
		if c := v.list.SelectedCard(); c != nil {
			v.confirm = c.ID
		}
	case keymap.Matches(k, v.keymap.Refresh):
		v.loading = true
		return v, v.load()
	}
	return v, nil
}

// View renders the cards view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("cardstudio"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading cards..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render(fmt.Sprintf("Error: %s", v.err.Error())))
	default:
		b.WriteString(v.list.View())
	}
	b.WriteString("\n\n")

	if v.confirm != "" {
		b.WriteString(v.styles.Warning.Render(fmt.Sprintf("Delete card %s? [y/N]", v.confirm)))
		b.WriteString("\n")
	}
	b.WriteString(v.styles.Help.Render("[enter] edit  [x] delete  [R] reload  [?] help  [q] quit"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.list.SetDimensions(width, height-6)
}

// Cards returns the listed cards.
func (v *View) Cards() []domain.CardSummary {
	return v.list.Cards()
}

// Confirming returns the card awaiting delete confirmation, or "".
func (v *View) Confirming() string {
	return v.confirm
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
