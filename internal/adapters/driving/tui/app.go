package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/cardstudio/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/cardstudio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/cardstudio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/cardstudio/internal/adapters/driving/tui/views/cards"
	"github.com/custodia-labs/cardstudio/internal/adapters/driving/tui/views/editor"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	// styles holds the TUI styles.
	styles *styles.Styles

	keymap *keymap.KeyMap

	// cardsView lists stored cards.
	cardsView *cards.View

	// editorView edits the open card.
	editorView *editor.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// previousView is where help returns to.
	previousView messages.ViewType

	// openID is a card to open on start.
	openID string

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      keymap.DefaultKeyMap(),
		cardsView:   cards.NewView(s, ports.Cards),
		editorView:  editor.NewView(s, ports.Cards, ports.Target, ports.NewSurface),
		currentView: messages.ViewCards,
	}, nil
}

// WithContext sets the context for the app.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// WithCard opens the given card in the editor on start.
func (a *App) WithCard(id string) *App {
	a.openID = id
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tea.SetWindowTitle("cardstudio"),
		a.cardsView.Init(),
	}
	if a.openID != "" {
		id := a.openID
		cmds = append(cmds, func() tea.Msg { return messages.CardSelected{ID: id} })
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message handler
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewCards {
			return a, a.cardsView.Init()
		}
		return a, nil

	case messages.CardSelected:
		a.currentView = messages.ViewEditor
		return a, a.editorView.Open(a.ctx, msg.ID)

	case messages.SessionOpened, messages.CardSaved:
		a.editorView, cmd = a.editorView.Update(msg)
		return a, cmd

	case messages.CardsLoaded, messages.CardDeleted:
		a.cardsView, cmd = a.cardsView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return a, nil

	case messages.Quit:
		a.editorView.Close()
		return a, tea.Quit
	}

	if a.currentView == messages.ViewEditor {
		a.editorView, cmd = a.editorView.Update(msg)
	}
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	k := msg.String()

	if k == "ctrl+c" {
		a.editorView.Close()
		return a, tea.Quit
	}

	switch a.currentView {
	case messages.ViewEditor:
		a.editorView, cmd = a.editorView.Update(msg)
		return a, cmd

	case messages.ViewHelp:
		if keymap.Matches(k, a.keymap.Back) || keymap.Matches(k, a.keymap.Help) {
			a.currentView = a.previousView
		}
		return a, nil

	case messages.ViewCards:
		switch {
		case a.cardsView.Confirming() != "":
		case keymap.Matches(k, a.keymap.Quit):
			return a, tea.Quit
		case keymap.Matches(k, a.keymap.Help):
			a.previousView = a.currentView
			a.currentView = messages.ViewHelp
			return a, nil
		}
		a.cardsView, cmd = a.cardsView.Update(msg)
		return a, cmd
	}
	return a, nil
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewEditor:
		return a.editorView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewCards:
	}
	return a.cardsView.View()
}

// viewHelp lists every key binding.
func (a *App) viewHelp() string {
	var b strings.Builder
	b.WriteString(a.styles.Title.Render("Help"))
	b.WriteString("\n\n")
	for _, row := range a.keymap.FullHelp() {
		for _, binding := range row {
			h := binding.Help()
			b.WriteString(fmt.Sprintf("  %-16s %s\n", h.Key, h.Desc))
		}
		b.WriteString("\n")
	}
	b.WriteString(a.styles.Help.Render("[esc] back"))
	return b.String()
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	a.editorView.Close()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Editor returns the editor view.
func (a *App) Editor() *editor.View {
	return a.editorView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.cardsView.SetDimensions(width, height)
	a.editorView.SetDimensions(width, height)
}
