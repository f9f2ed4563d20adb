// Package headless provides an in-memory driven.RenderSurface.
//
// The surface keeps primitives in memory and raises the same events an
// interactive canvas would. The user-side methods (Modify, Remove, Select,
// BeginTextEdit, Type, EndTextEdit) simulate pointer and keyboard input, so
// the CLI, the TUI and tests can drive an editor without a display.
package headless

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/core/ports/driven"
)

// ErrTextEditing is returned by Export while a text edit is in progress.
var ErrTextEditing = errors.New("headless: text edit in progress")

// Ensure Surface implements the interface.
var _ driven.RenderSurface = (*Surface)(nil)

// Surface is an in-memory rendering surface.
type Surface struct {
	mu      sync.Mutex
	scene   *domain.Scene
	editing string
	renders int
	loads   int

	subscribers map[int]func(domain.SurfaceEvent)
	nextSub     int

	failLoad   error
	failExport error
	failSet    error
}

// New creates an empty surface.
func New() *Surface {
	return &Surface{
		scene:       domain.NewScene(0, 0),
		subscribers: make(map[int]func(domain.SurfaceEvent)),
	}
}

// Load replaces the surface contents.
func (s *Surface) Load(ctx context.Context, scene *domain.Scene) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if scene == nil {
		return fmt.Errorf("%w: nil scene", domain.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failLoad != nil {
		return s.failLoad
	}
	s.scene = scene.Clone()
	s.editing = ""
	s.loads++
	return nil
}

// Export returns a copy of the current contents.
func (s *Surface) Export() (*domain.Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failExport != nil {
		return nil, s.failExport
	}
	if s.editing != "" {
		return nil, ErrTextEditing
	}
	out := s.scene.Clone()
	out.SelectedID = ""
	return out, nil
}

// Object returns a copy of one primitive.
func (s *Surface) Object(id string) (*domain.Primitive, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.scene.Get(id)
	if !ok {
		return nil, false
	}
	out := p.Clone()
	return &out, true
}

// AddObject adds a primitive and raises object:added.
func (s *Surface) AddObject(p domain.Primitive) error {
	s.mu.Lock()
	if s.scene.Has(p.ID) {
		s.mu.Unlock()
		return fmt.Errorf("headless: object %s already exists", p.ID)
	}
	s.scene.Primitives = append(s.scene.Primitives, p.Clone())
	s.mu.Unlock()

	s.emit(domain.SurfaceEvent{Type: domain.EventObjectAdded, ObjectID: p.ID})
	return nil
}

// RemoveObject removes a primitive and raises object:removed.
func (s *Surface) RemoveObject(id string) error {
	if !s.drop(id) {
		return fmt.Errorf("%w: object %s", domain.ErrNotFound, id)
	}
	s.emit(domain.SurfaceEvent{Type: domain.EventObjectRemoved, ObjectID: id})
	return nil
}

// Set assigns one field. Like a canvas property write it raises no event.
func (s *Surface) Set(id, field string, value any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failSet != nil {
		return s.failSet
	}
	p, ok := s.scene.Get(id)
	if !ok {
		return fmt.Errorf("%w: object %s", domain.ErrNotFound, id)
	}
	return p.Set(field, value)
}

// RenderAll counts a repaint.
func (s *Surface) RenderAll() {
	s.mu.Lock()
	s.renders++
	s.mu.Unlock()
}

// Subscribe registers fn for surface events.
func (s *Surface) Subscribe(fn func(domain.SurfaceEvent)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// Renders returns how many times RenderAll was called.
func (s *Surface) Renders() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.renders
}

// Loads returns how many times Load succeeded.
func (s *Surface) Loads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}

// Subscribers returns the number of active subscriptions.
func (s *Surface) Subscribers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subscribers)
}

// FailLoad makes Load return err until it is called again with nil.
func (s *Surface) FailLoad(err error) {
	s.mu.Lock()
	s.failLoad = err
	s.mu.Unlock()
}

// FailExport makes Export return err until it is called again with nil.
func (s *Surface) FailExport(err error) {
	s.mu.Lock()
	s.failExport = err
	s.mu.Unlock()
}

// FailSet makes Set return err until it is called again with nil.
func (s *Surface) FailSet(err error) {
	s.mu.Lock()
	s.failSet = err
	s.mu.Unlock()
}

// Modify applies fields as a user manipulation would and raises
// object:modified.
func (s *Surface) Modify(id string, fields domain.Fields) error {
	s.mu.Lock()
	p, ok := s.scene.Get(id)
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: object %s", domain.ErrNotFound, id)
	}
	next := p.Clone()
	if err := next.Apply(fields); err != nil {
		s.mu.Unlock()
		return err
	}
	next.SetCoords()
	*p = next
	s.mu.Unlock()

	s.emit(domain.SurfaceEvent{Type: domain.EventObjectModified, ObjectID: id})
	return nil
}

// Remove deletes an object as a user would, raising object:removed.
// Unlike the engine, a user can remove anything the surface holds.
func (s *Surface) Remove(id string) bool {
	if !s.drop(id) {
		return false
	}
	s.emit(domain.SurfaceEvent{Type: domain.EventObjectRemoved, ObjectID: id})
	return true
}

// Select raises selection:created for id.
func (s *Surface) Select(id string) {
	s.emit(domain.SurfaceEvent{Type: domain.EventSelectionCreated, ObjectID: id})
}

// ClearSelection raises selection:cleared.
func (s *Surface) ClearSelection() {
	s.emit(domain.SurfaceEvent{Type: domain.EventSelectionCleared})
}

// BeginTextEdit enters text editing on id. Export fails until EndTextEdit.
func (s *Surface) BeginTextEdit(id string) error {
	s.mu.Lock()
	p, ok := s.scene.Get(id)
	if !ok || p.Kind != domain.KindText {
		s.mu.Unlock()
		return fmt.Errorf("%w: text object %s", domain.ErrNotFound, id)
	}
	s.editing = id
	s.mu.Unlock()

	s.emit(domain.SurfaceEvent{Type: domain.EventEditingEntered, ObjectID: id})
	return nil
}

// Type replaces the text under edit and raises text:changed.
func (s *Surface) Type(text string) error {
	s.mu.Lock()
	id := s.editing
	p, ok := s.scene.Get(id)
	if id == "" || !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: no text edit in progress", domain.ErrInvalidInput)
	}
	p.Text = text
	s.mu.Unlock()

	s.emit(domain.SurfaceEvent{Type: domain.EventTextChanged, ObjectID: id})
	return nil
}

// EndTextEdit leaves text editing and raises editing:exited.
func (s *Surface) EndTextEdit() {
	s.mu.Lock()
	id := s.editing
	s.editing = ""
	s.mu.Unlock()

	if id != "" {
		s.emit(domain.SurfaceEvent{Type: domain.EventEditingExited, ObjectID: id})
	}
}

func (s *Surface) drop(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.scene.Index(id)
	if i < 0 {
		return false
	}
	s.scene.Primitives = append(s.scene.Primitives[:i], s.scene.Primitives[i+1:]...)
	if s.editing == id {
		s.editing = ""
	}
	return true
}

// emit calls subscribers outside the lock so they may read the surface.
func (s *Surface) emit(ev domain.SurfaceEvent) {
	s.mu.Lock()
	fns := make([]func(domain.SurfaceEvent), 0, len(s.subscribers))
	for i := 0; i < s.nextSub; i++ {
		if fn, ok := s.subscribers[i]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
