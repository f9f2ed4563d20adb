package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cardstudio/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/cardstudio/internal/adapters/driven/surface/headless"
	"github.com/custodia-labs/cardstudio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/core/ports/driven"
	"github.com/custodia-labs/cardstudio/internal/core/services"
)

type stubRasteriser struct{}

func (stubRasteriser) Rasterise(_ context.Context, _ *domain.Scene) ([]byte, error) {
	return []byte("PNG"), nil
}

func newTestPorts(t *testing.T) (*Ports, string) {
	t.Helper()
	cards := services.NewCardService(memory.NewCardStore(), stubRasteriser{}, nil, domain.DefaultEngineSettings())

	scene := domain.NewScene(800, 600)
	text := domain.NewText("hello", 10, 10, 24)
	text.ID = "greeting"
	scene.Primitives = []domain.Primitive{text}
	result, err := cards.Save(context.Background(), "", scene, map[string]any{"title": "Greeting"})
	require.NoError(t, err)

	return &Ports{
		Cards:      cards,
		Target:     domain.Size{Width: 800, Height: 600},
		NewSurface: func() driven.RenderSurface { return headless.New() },
	}, result.ID
}

func newTestApp(t *testing.T) (*App, string) {
	t.Helper()
	ports, id := newTestPorts(t)
	app, err := NewApp(ports)
	require.NoError(t, err)
	app.SetDimensions(100, 30)
	t.Cleanup(app.Editor().Close)
	return app, id
}

func press(app *App, k string) tea.Cmd {
	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)})
	return cmd
}

// run feeds the result of cmd back into the app until no command remains.
func run(app *App, cmd tea.Cmd) {
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return
		}
		_, cmd = app.Update(msg)
	}
}

func TestNewApp_Success(t *testing.T) {
	app, _ := newTestApp(t)

	assert.Equal(t, messages.ViewCards, app.CurrentView())
	assert.True(t, app.Ready())
}

func TestNewApp_InvalidPorts(t *testing.T) {
	tests := []struct {
		name  string
		ports *Ports
		want  error
	}{
		{"nil", nil, ErrInvalidPorts},
		{"no cards", &Ports{NewSurface: func() driven.RenderSurface { return headless.New() }}, ErrMissingCardService},
		{"no surface", &Ports{Cards: &services.CardService{}}, ErrMissingSurface},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, err := NewApp(tt.ports)

			assert.ErrorIs(t, err, tt.want)
			assert.Nil(t, app)
		})
	}
}

func TestApp_WithContext(t *testing.T) {
	app, _ := newTestApp(t)

	type contextKey string
	ctx := context.WithValue(context.Background(), contextKey("key"), "value")

	assert.Same(t, app, app.WithContext(ctx))
	assert.Equal(t, ctx, app.ctx)
}

func TestApp_Init(t *testing.T) {
	app, _ := newTestApp(t)

	assert.NotNil(t, app.Init())
}

func TestApp_ViewBeforeReady(t *testing.T) {
	ports, _ := newTestPorts(t)
	app, err := NewApp(ports)
	require.NoError(t, err)

	assert.Equal(t, "Initialising...", app.View())
}

func TestApp_ListsCards(t *testing.T) {
	app, _ := newTestApp(t)

	run(app, app.cardsView.Init())

	assert.Contains(t, app.View(), "Greeting")
}

func TestApp_OpenEditAndSave(t *testing.T) {
	app, id := newTestApp(t)
	run(app, app.cardsView.Init())

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	run(app, cmd)

	require.Equal(t, messages.ViewEditor, app.CurrentView())
	require.NotNil(t, app.Editor().Session())
	assert.Contains(t, app.View(), "hello")

	run(app, press(app, "L"))
	run(app, press(app, "s"))
	assert.False(t, app.Editor().Unsaved())

	scene, err := app.ports.Cards.(*services.CardService).Load(context.Background(), id, domain.Size{})
	require.NoError(t, err)
	p, ok := scene.Get("greeting")
	require.True(t, ok)
	assert.Equal(t, 20.0, p.Left)

	_, cmd = app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	run(app, cmd)
	assert.Equal(t, messages.ViewCards, app.CurrentView())
	assert.Nil(t, app.Editor().Session())
}

func TestApp_WithCardOpensEditor(t *testing.T) {
	app, id := newTestApp(t)
	app.WithCard(id)

	run(app, func() tea.Msg { return messages.CardSelected{ID: id} })

	assert.Equal(t, messages.ViewEditor, app.CurrentView())
	assert.Equal(t, id, app.Editor().ID())
}

func TestApp_QInEditorDoesNotQuit(t *testing.T) {
	app, id := newTestApp(t)
	run(app, func() tea.Msg { return messages.CardSelected{ID: id} })

	cmd := press(app, "q")

	assert.Nil(t, cmd)
	assert.Equal(t, messages.ViewEditor, app.CurrentView())
}

func TestApp_QuitFromCards(t *testing.T) {
	app, _ := newTestApp(t)

	cmd := press(app, "q")

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_CtrlCQuitsAnywhere(t *testing.T) {
	app, id := newTestApp(t)
	run(app, func() tea.Msg { return messages.CardSelected{ID: id} })

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
	assert.Nil(t, app.Editor().Session())
}

func TestApp_QuitMessage(t *testing.T) {
	app, _ := newTestApp(t)

	_, cmd := app.Update(messages.Quit{})

	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestApp_Help(t *testing.T) {
	app, _ := newTestApp(t)

	press(app, "?")
	assert.Equal(t, messages.ViewHelp, app.CurrentView())
	view := app.View()
	assert.Contains(t, view, "undo")
	assert.Contains(t, view, "next slide")

	app.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Equal(t, messages.ViewCards, app.CurrentView())
}

func TestApp_DeleteConfirmSwallowsQuit(t *testing.T) {
	app, _ := newTestApp(t)
	run(app, app.cardsView.Init())

	press(app, "x")
	cmd := press(app, "q")

	assert.Nil(t, cmd)
	assert.Empty(t, app.cardsView.Confirming())
}

func TestApp_ErrorOccurred(t *testing.T) {
	app, _ := newTestApp(t)

	app.Update(messages.ErrorOccurred{Err: errors.New("boom")})

	assert.EqualError(t, app.Err(), "boom")
}

func TestApp_WindowSize(t *testing.T) {
	app, _ := newTestApp(t)

	app.Update(tea.WindowSizeMsg{Width: 120, Height: 40})

	assert.Equal(t, 120, app.width)
	assert.Equal(t, 40, app.height)
}
