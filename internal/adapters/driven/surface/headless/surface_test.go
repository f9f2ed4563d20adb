package headless

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
)

func loaded(t *testing.T) *Surface {
	t.Helper()
	scene := domain.NewScene(800, 600)
	title := domain.NewText("Hello", 10, 10, 20)
	title.ID = "title"
	box := domain.NewRect(0, 0, 100, 50)
	box.ID = "box"
	scene.Primitives = append(scene.Primitives, title, box)

	s := New()
	require.NoError(t, s.Load(context.Background(), scene))
	return s
}

func record(s *Surface) *[]domain.SurfaceEvent {
	var events []domain.SurfaceEvent
	s.Subscribe(func(ev domain.SurfaceEvent) { events = append(events, ev) })
	return &events
}

func TestSurface_LoadAndExport(t *testing.T) {
	s := loaded(t)

	out, err := s.Export()
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "box"}, out.IDs())
	assert.Equal(t, 1, s.Loads())
}

func TestSurface_LoadCopiesScene(t *testing.T) {
	scene := domain.NewScene(10, 10)
	scene.Primitives = append(scene.Primitives, domain.NewRect(0, 0, 1, 1))
	scene.Primitives[0].ID = "r"

	s := New()
	require.NoError(t, s.Load(context.Background(), scene))
	scene.Primitives[0].Left = 99

	p, ok := s.Object("r")
	require.True(t, ok)
	assert.Equal(t, 0.0, p.Left)
}

func TestSurface_LoadCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := New().Load(ctx, domain.NewScene(1, 1))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestSurface_AddAndRemoveRaiseEvents(t *testing.T) {
	s := loaded(t)
	events := record(s)

	dot := domain.NewCircle(5, 5, 3)
	dot.ID = "dot"
	require.NoError(t, s.AddObject(dot))
	require.NoError(t, s.RemoveObject("box"))

	assert.Equal(t, []domain.SurfaceEvent{
		{Type: domain.EventObjectAdded, ObjectID: "dot"},
		{Type: domain.EventObjectRemoved, ObjectID: "box"},
	}, *events)
	assert.Error(t, s.AddObject(dot))
	assert.ErrorIs(t, s.RemoveObject("box"), domain.ErrNotFound)
}

func TestSurface_SetRaisesNothing(t *testing.T) {
	s := loaded(t)
	events := record(s)

	require.NoError(t, s.Set("box", "fill", "#ff0000"))

	p, _ := s.Object("box")
	assert.Equal(t, "#ff0000", p.Fill)
	assert.Empty(t, *events)
	assert.ErrorIs(t, s.Set("missing", "fill", "#fff"), domain.ErrNotFound)
}

func TestSurface_ModifyRaisesModified(t *testing.T) {
	s := loaded(t)
	events := record(s)

	require.NoError(t, s.Modify("box", domain.Fields{"left": 40.0}))

	p, _ := s.Object("box")
	assert.Equal(t, 40.0, p.Left)
	assert.Equal(t, 40.0, p.Bounds.Left)
	assert.Equal(t, []domain.SurfaceEvent{{Type: domain.EventObjectModified, ObjectID: "box"}}, *events)
}

func TestSurface_TextEditBlocksExport(t *testing.T) {
	s := loaded(t)
	events := record(s)

	require.NoError(t, s.BeginTextEdit("title"))
	require.NoError(t, s.Type("Hello world"))

	_, err := s.Export()
	assert.ErrorIs(t, err, ErrTextEditing)

	s.EndTextEdit()
	out, err := s.Export()
	require.NoError(t, err)
	p, _ := out.Get("title")
	assert.Equal(t, "Hello world", p.Text)

	types := make([]domain.EventType, 0, len(*events))
	for _, ev := range *events {
		types = append(types, ev.Type)
	}
	assert.Equal(t, []domain.EventType{
		domain.EventEditingEntered, domain.EventTextChanged, domain.EventEditingExited,
	}, types)
}

func TestSurface_BeginTextEditNeedsText(t *testing.T) {
	s := loaded(t)

	assert.ErrorIs(t, s.BeginTextEdit("box"), domain.ErrNotFound)
	assert.ErrorIs(t, s.Type("x"), domain.ErrInvalidInput)
}

func TestSurface_Unsubscribe(t *testing.T) {
	s := loaded(t)
	calls := 0
	unsubscribe := s.Subscribe(func(domain.SurfaceEvent) { calls++ })
	assert.Equal(t, 1, s.Subscribers())

	s.Select("box")
	unsubscribe()
	s.Select("box")

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, s.Subscribers())
}

func TestSurface_InjectedFailures(t *testing.T) {
	s := loaded(t)
	boom := errors.New("boom")

	s.FailExport(boom)
	_, err := s.Export()
	assert.ErrorIs(t, err, boom)

	s.FailLoad(boom)
	assert.ErrorIs(t, s.Load(context.Background(), domain.NewScene(1, 1)), boom)

	s.FailSet(boom)
	assert.ErrorIs(t, s.Set("box", "fill", "#fff"), boom)

	s.FailExport(nil)
	s.FailLoad(nil)
	s.FailSet(nil)
	_, err = s.Export()
	assert.NoError(t, err)
}

func TestSurface_SubscriberMayReadSurface(t *testing.T) {
	s := loaded(t)
	var seen float64
	s.Subscribe(func(ev domain.SurfaceEvent) {
		if p, ok := s.Object(ev.ObjectID); ok {
			seen = p.Left
		}
	})

	require.NoError(t, s.Modify("box", domain.Fields{"left": 7.0}))

	assert.Equal(t, 7.0, seen)
}

func TestSurface_RenderAllCounts(t *testing.T) {
	s := New()
	s.RenderAll()
	s.RenderAll()
	assert.Equal(t, 2, s.Renders())
}
