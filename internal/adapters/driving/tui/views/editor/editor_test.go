package editor

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

// directSurface hides the pointer methods of the headless surface.
type directSurface struct {
	driven.RenderSurface
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newCards(t *testing.T) (*services.CardService, string) {
	t.Helper()
	cards := services.NewCardService(memory.NewCardStore(), stubRasteriser{}, nil, domain.DefaultEngineSettings())

	scene := domain.NewScene(800, 600)
	text := domain.NewText("hello", 10, 10, 24)
	text.ID = "greeting"
	text.ZIndex = 0
	frame := domain.NewRect(0, 0, 100, 100)
	frame.ID = "frame"
	frame.ZIndex = 1
	frame.Selectable = false
	frame.Evented = false
	scene.Primitives = []domain.Primitive{text, frame}

	result, err := cards.Save(context.Background(), "", scene, nil)
	require.NoError(t, err)
	return cards, result.ID
}

func openView(t *testing.T, pointer bool) (*View, *services.CardService) {
	t.Helper()
	cards, id := newCards(t)
	surface := func() driven.RenderSurface {
		if pointer {
			return headless.New()
		}
		return directSurface{headless.New()}
	}
	v := NewView(nil, cards, domain.Size{Width: 800, Height: 600}, surface)

	cmd := v.Open(context.Background(), id)
	require.NotNil(t, cmd)
	v, _ = v.Update(cmd())
	require.NotNil(t, v.Session())
	t.Cleanup(v.Close)
	return v, cards
}

func left(v *View, id string) float64 {
	p, _ := v.Session().Editor().Primitive(id)
	return p.Left
}

func TestView_Open(t *testing.T) {
	v, _ := openView(t, true)

	view := v.View()
	assert.Contains(t, view, "Slide 1")
	assert.Contains(t, view, "hello")
	assert.Contains(t, view, "(locked)")

	p, ok := v.Selected()
	require.True(t, ok)
	assert.Equal(t, "greeting", p.ID)
}

func TestView_OpenError(t *testing.T) {
	cards, _ := newCards(t)
	v := NewView(nil, cards, domain.Size{Width: 800, Height: 600}, func() driven.RenderSurface { return headless.New() })

	v, _ = v.Update(v.Open(context.Background(), "missing")())

	assert.Nil(t, v.Session())
	assert.Error(t, v.Err())
	assert.Contains(t, v.View(), "Could not open card")
}

func TestView_StaleSessionIgnored(t *testing.T) {
	v, _ := openView(t, true)
	current := v.Session()

	v, _ = v.Update(messages.SessionOpened{ID: "other"})

	assert.Same(t, current, v.Session())
}

func TestView_NudgeThroughSurface(t *testing.T) {
	v, _ := openView(t, true)

	v, _ = v.Update(runes("L"))
	v, _ = v.Update(runes("J"))

	p, _ := v.Session().Editor().Primitive("greeting")
	assert.Equal(t, 20.0, p.Left)
	assert.Equal(t, 20.0, p.Top)
	past, _ := v.Session().Editor().HistoryDepth()
	assert.Equal(t, 2, past)
	assert.True(t, v.Unsaved())
}

func TestView_NudgeDirect(t *testing.T) {
	v, _ := openView(t, false)

	v, _ = v.Update(runes("H"))

	assert.Equal(t, 0.0, left(v, "greeting"))
}

func TestView_LockedObjectUntouched(t *testing.T) {
	v, _ := openView(t, true)

	v, _ = v.Update(runes("j"))
	p, _ := v.Selected()
	require.Equal(t, "frame", p.ID)

	v, _ = v.Update(runes("L"))
	v, _ = v.Update(runes("x"))

	assert.Equal(t, 0.0, left(v, "frame"))
	assert.True(t, v.Session().Editor().Scene().Has("frame"))
	assert.Contains(t, v.View(), "frame is locked")
	assert.False(t, v.Unsaved())
}

func TestView_GrowAndShrink(t *testing.T) {
	v, _ := openView(t, true)

	v, _ = v.Update(runes("+"))
	p, _ := v.Session().Editor().Primitive("greeting")
	assert.InDelta(t, 1.1, p.ScaleX, 1e-9)

	v, _ = v.Update(runes("-"))
	p, _ = v.Session().Editor().Primitive("greeting")
	assert.InDelta(t, 1.0, p.ScaleX, 1e-9)
}

func TestView_UndoRedo(t *testing.T) {
	v, _ := openView(t, true)

	v, _ = v.Update(runes("L"))
	require.Equal(t, 20.0, left(v, "greeting"))

	v, _ = v.Update(runes("u"))
	assert.Equal(t, 10.0, left(v, "greeting"))

	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyCtrlY})
	assert.Equal(t, 20.0, left(v, "greeting"))
	assert.Contains(t, v.View(), "undo 1")
}

func TestView_EditTextIsOneStep(t *testing.T) {
	for _, pointer := range []bool{true, false} {
		v, _ := openView(t, pointer)

		v, _ = v.Update(runes("e"))
		require.True(t, v.Typing())
		v, _ = v.Update(runes("!"))
		v, _ = v.Update(tea.KeyMsg{Type: tea.KeyEnter})

		assert.False(t, v.Typing())
		p, _ := v.Session().Editor().Primitive("greeting")
		assert.Equal(t, "hello!", p.Text)
		past, _ := v.Session().Editor().HistoryDepth()
		assert.Equal(t, 1, past, "pointer=%v", pointer)
	}
}

func TestView_EditTextCancelled(t *testing.T) {
	v, _ := openView(t, true)

	v, _ = v.Update(runes("e"))
	v, _ = v.Update(runes("zzz"))
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	p, _ := v.Session().Editor().Primitive("greeting")
	assert.Equal(t, "hello", p.Text)
	assert.False(t, v.Typing())
}

func TestView_EditTextNeedsText(t *testing.T) {
	v, _ := openView(t, true)

	v, _ = v.Update(runes("j"))
	v, _ = v.Update(runes("e"))

	assert.False(t, v.Typing())
}

func TestView_AddText(t *testing.T) {
	v, _ := openView(t, true)

	v, _ = v.Update(runes("t"))
	require.True(t, v.Typing())
	v, _ = v.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Len(t, v.Session().Editor().Scene().Primitives, 3)
	p, ok := v.Selected()
	require.True(t, ok)
	assert.Equal(t, "Text", p.Text)
	assert.Equal(t, 2, p.ZIndex)
}

func TestView_DuplicateFrontDelete(t *testing.T) {
	v, _ := openView(t, true)

	v, _ = v.Update(runes("d"))
	assert.Len(t, v.Session().Editor().Scene().Primitives, 3)
	dup, _ := v.Selected()
	assert.NotEqual(t, "greeting", dup.ID)
	assert.Equal(t, 30.0, dup.Left)

	v, _ = v.Update(runes("k"))
	v, _ = v.Update(runes("k"))
	first, _ := v.Selected()
	require.Equal(t, "greeting", first.ID)
	v, _ = v.Update(runes("f"))
	objs := v.Session().Editor().Scene().Ordered()
	assert.Equal(t, "greeting", objs[len(objs)-1].ID)

	v, _ = v.Update(runes("x"))
	assert.False(t, v.Session().Editor().Scene().Has("greeting"))
}

func TestView_Slides(t *testing.T) {
	v, _ := openView(t, true)

	v, _ = v.Update(runes("a"))
	assert.Equal(t, 2, v.Session().Len())
	assert.Equal(t, 1, v.Session().Active())
	assert.Contains(t, v.View(), "Slide 2")

	v, _ = v.Update(runes("["))
	assert.Equal(t, 0, v.Session().Active())

	v, _ = v.Update(runes("["))
	assert.Equal(t, 0, v.Session().Active())
}

func TestView_Save(t *testing.T) {
	v, cards := openView(t, true)
	v, _ = v.Update(runes("L"))

	v, cmd := v.Update(runes("s"))
	require.NotNil(t, cmd)
	msg := cmd()
	saved, ok := msg.(messages.CardSaved)
	require.True(t, ok)
	require.NoError(t, saved.Err)

	v, _ = v.Update(msg)
	assert.False(t, v.Unsaved())

	scene, err := cards.Load(context.Background(), saved.Result.ID, domain.Size{})
	require.NoError(t, err)
	p, _ := scene.Get("greeting")
	assert.Equal(t, 20.0, p.Left)
}

func TestView_SaveError(t *testing.T) {
	v, _ := openView(t, true)

	v, _ = v.Update(messages.CardSaved{Err: errors.New("disk full")})

	assert.Contains(t, v.View(), "disk full")
}

func TestView_BackWarnsOnUnsaved(t *testing.T) {
	v, _ := openView(t, true)
	v, _ = v.Update(runes("L"))

	v, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.Nil(t, cmd)
	assert.NotNil(t, v.Session())
	assert.Contains(t, v.View(), "Unsaved changes")

	v, cmd = v.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewCards}, cmd())
	assert.Nil(t, v.Session())
}

func TestView_BackWithoutChanges(t *testing.T) {
	v, _ := openView(t, true)

	_, cmd := v.Update(tea.KeyMsg{Type: tea.KeyEsc})

	require.NotNil(t, cmd)
	assert.Equal(t, messages.ViewChanged{View: messages.ViewCards}, cmd())
}

func TestSummary(t *testing.T) {
	assert.Equal(t, `@1,2 "hi"`, summary(domain.NewText("hi", 1, 2, 10)))
	assert.Equal(t, "@0,0 r=5", summary(domain.Primitive{Kind: domain.KindCircle, Radius: 5}))
	assert.Equal(t, "@0,0 4x6", summary(domain.Primitive{Kind: domain.KindRect, Width: 2, Height: 3, ScaleX: 2, ScaleY: 2}))
}

func TestShort(t *testing.T) {
	assert.Equal(t, "abc", short("abc", 5))
	assert.Equal(t, "abcd…", short("abcdefgh", 5))
}
