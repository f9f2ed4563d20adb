package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/core/ports/driven"
	"github.com/custodia-labs/cardstudio/internal/interchange"
	"github.com/custodia-labs/cardstudio/internal/logger"
)

// DefaultDuplicateOffset is how far Duplicate moves the copy right and down.
const DefaultDuplicateOffset = 20.0

// ImageTicket identifies an image fetch started for a primitive. The result
// is only applied if the editor that issued the ticket is still alive.
type ImageTicket struct {
	PrimitiveID string
	epoch       uint64
}

// Editor owns one scene, its history and the rendering surface showing it.
// Every mutation goes through the editor and is recorded as one history
// snapshot.
//
// Editor is not safe for concurrent use. Callers drive it from a single
// goroutine, the way a UI event loop does.
type Editor struct {
	scene    *domain.Scene
	history  *History
	surface  driven.RenderSurface
	remapper *Remapper
	offset   float64

	unsubscribe func()
	disposed    bool
	epoch       uint64

	// quiet is set while the editor itself mutates the surface, so the
	// resulting surface events are not mirrored back.
	quiet   bool
	editing string
}

// NewEditor creates an editor for a copy of scene. A nil scene starts an
// empty canvas of the target size. surface may be nil for headless
// editing; the editor then works on its own scene only.
func NewEditor(scene *domain.Scene, surface driven.RenderSurface, settings domain.EngineSettings) *Editor {
	if scene == nil {
		scene = domain.NewScene(settings.Target.Width, settings.Target.Height)
	} else {
		scene = scene.Clone()
	}
	scene.SelectedID = ""
	scene.SetCoords()

	offset := settings.DuplicateOffset
	if offset == 0 {
		offset = DefaultDuplicateOffset
	}

	e := &Editor{
		scene:    scene,
		history:  NewHistory(settings.HistoryLimit),
		surface:  surface,
		remapper: NewRemapper(settings.DefaultSource),
		offset:   offset,
	}
	initial, err := e.snapshot()
	if err != nil {
		logger.Warn("editor: initial snapshot failed: %v", err)
	}
	e.history.Reset(initial)
	return e
}

// Mount loads the scene into the surface and starts mirroring surface
// events. It is a no-op without a surface.
func (e *Editor) Mount(ctx context.Context) error {
	if e.disposed {
		return domain.ErrDisposed
	}
	if e.surface == nil {
		return nil
	}
	if err := e.loadSurface(ctx, e.scene); err != nil {
		return err
	}
	if e.unsubscribe == nil {
		e.unsubscribe = e.surface.Subscribe(e.HandleEvent)
	}
	return nil
}

// Dispose tears the editor down. Later calls that would change the scene
// return domain.ErrDisposed; pending image results are discarded.
func (e *Editor) Dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	e.epoch++
	if e.unsubscribe != nil {
		e.unsubscribe()
		e.unsubscribe = nil
	}
	e.history.Reset(nil)
}

// Disposed reports whether Dispose has been called.
func (e *Editor) Disposed() bool {
	return e.disposed
}

// Scene returns a copy of the committed scene.
func (e *Editor) Scene() *domain.Scene {
	return e.scene.Clone()
}

// Primitive returns a copy of one primitive.
func (e *Editor) Primitive(id string) (domain.Primitive, bool) {
	p, ok := e.scene.Get(id)
	if !ok {
		return domain.Primitive{}, false
	}
	return p.Clone(), true
}

// Selected returns the selected primitive ID, or "".
func (e *Editor) Selected() string {
	return e.scene.SelectedID
}

// Insert adds a primitive and returns its ID. An empty or colliding ID is
// replaced with a fresh one; an existing primitive is never overwritten.
// A negative ZIndex places the primitive on top.
func (e *Editor) Insert(p domain.Primitive) (string, error) {
	if e.disposed {
		return "", domain.ErrDisposed
	}
	if err := p.Validate(); err != nil {
		return "", err
	}

	p = p.Clone()
	if p.ID == "" || e.scene.Has(p.ID) {
		if p.ID != "" {
			logger.Debug("editor: id %s taken, minting a new one", p.ID)
		}
		p.ID = uuid.NewString()
	}
	if p.ZIndex < 0 {
		p.ZIndex = e.scene.NextZIndex()
	}
	p.SetCoords()

	if err := e.withSurface(func(s driven.RenderSurface) error { return s.AddObject(p) }); err != nil {
		return "", err
	}
	e.scene.Primitives = append(e.scene.Primitives, p)
	e.commit()
	return p.ID, nil
}

// Update applies fields to one primitive, all or nothing.
// Unknown and frozen primitives are left alone and false is returned.
func (e *Editor) Update(id string, fields domain.Fields) (bool, error) {
	if e.disposed {
		return false, domain.ErrDisposed
	}
	p, ok := e.scene.Get(id)
	if !ok {
		logger.Debug("editor: update of unknown primitive %s ignored", id)
		return false, nil
	}
	if p.Frozen() {
		logger.Debug("editor: update of frozen primitive %s ignored", id)
		return false, nil
	}
	if len(fields) == 0 {
		return false, nil
	}

	updated := p.Clone()
	if err := updated.Apply(fields); err != nil {
		return false, err
	}
	if err := updated.Validate(); err != nil {
		return false, err
	}
	updated.SetCoords()

	err := e.withSurface(func(s driven.RenderSurface) error {
		for _, k := range fields.Keys() {
			if err := s.Set(id, k, fields[k]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		e.resyncObject(*p)
		return false, err
	}

	*p = updated
	e.commit()
	return true, nil
}

// Remove deletes primitives by ID and returns how many were removed.
// Frozen and unknown IDs are skipped. The whole batch is one history entry.
func (e *Editor) Remove(ids ...string) (int, error) {
	if e.disposed {
		return 0, domain.ErrDisposed
	}

	doomed := make(map[string]bool, len(ids))
	for _, id := range ids {
		p, ok := e.scene.Get(id)
		if !ok {
			continue
		}
		if p.Frozen() {
			logger.Debug("editor: refusing to remove frozen primitive %s", id)
			continue
		}
		doomed[id] = true
	}
	if len(doomed) == 0 {
		return 0, nil
	}

	if e.surface != nil {
		e.quiet = true
		for id := range doomed {
			if err := e.surface.RemoveObject(id); err != nil {
				logger.Warn("editor: surface could not remove %s: %v", id, err)
			}
		}
		e.quiet = false
	}

	kept := e.scene.Primitives[:0]
	for _, p := range e.scene.Primitives {
		if !doomed[p.ID] {
			kept = append(kept, p)
		}
	}
	e.scene.Primitives = kept
	if doomed[e.scene.SelectedID] {
		e.scene.SelectedID = ""
	}
	e.commit()
	return len(doomed), nil
}

// Duplicate copies a primitive, offset right and down, under a fresh ID.
// Every other field is copied verbatim. Unknown and frozen primitives are
// not duplicated and "" is returned.
func (e *Editor) Duplicate(id string) (string, error) {
	if e.disposed {
		return "", domain.ErrDisposed
	}
	p, ok := e.scene.Get(id)
	if !ok || p.Frozen() {
		return "", nil
	}

	dup := p.Clone()
	dup.ID = uuid.NewString()
	dup.Left += e.offset
	dup.Top += e.offset
	if dup.Kind == domain.KindLine {
		dup.X1 += e.offset
		dup.X2 += e.offset
		dup.Y1 += e.offset
		dup.Y2 += e.offset
	}
	dup.SetCoords()

	if err := e.withSurface(func(s driven.RenderSurface) error { return s.AddObject(dup) }); err != nil {
		return "", err
	}
	e.scene.Primitives = append(e.scene.Primitives, dup)
	e.commit()
	return dup.ID, nil
}

// BringToFront moves a primitive above all others.
func (e *Editor) BringToFront(id string) (bool, error) {
	if e.disposed {
		return false, domain.ErrDisposed
	}
	p, ok := e.scene.Get(id)
	if !ok {
		return false, nil
	}
	top := e.scene.NextZIndex()
	if p.ZIndex == top-1 && e.onlyAt(p.ZIndex) {
		return false, nil
	}
	return e.Update(id, domain.Fields{"zIndex": top})
}

func (e *Editor) onlyAt(z int) bool {
	n := 0
	for i := range e.scene.Primitives {
		if e.scene.Primitives[i].ZIndex == z {
			n++
		}
	}
	return n == 1
}

// Select makes id the active selection. Returns false for unknown IDs.
func (e *Editor) Select(id string) bool {
	if e.disposed || !e.scene.Has(id) {
		return false
	}
	e.scene.SelectedID = id
	return true
}

// ClearSelection drops the active selection.
func (e *Editor) ClearSelection() {
	e.scene.SelectedID = ""
}

// SetBackground changes the canvas background. Background changes are not
// recorded in history.
func (e *Editor) SetBackground(ctx context.Context, color, image string) error {
	if e.disposed {
		return domain.ErrDisposed
	}
	next := e.scene.Clone()
	next.Background = color
	next.BackgroundImage = image
	if e.surface != nil {
		if err := e.loadSurface(ctx, next); err != nil {
			return err
		}
	}
	e.scene = next
	return nil
}

// Undo reverts the last recorded mutation.
// Returns false when there is nothing to undo.
func (e *Editor) Undo(ctx context.Context) (bool, error) {
	if e.disposed {
		return false, domain.ErrDisposed
	}
	return e.history.Undo(func(snapshot []byte) error { return e.restore(ctx, snapshot) })
}

// Redo re-applies the last undone mutation.
// Returns false when there is nothing to redo.
func (e *Editor) Redo(ctx context.Context) (bool, error) {
	if e.disposed {
		return false, domain.ErrDisposed
	}
	return e.history.Redo(func(snapshot []byte) error { return e.restore(ctx, snapshot) })
}

// CanUndo reports whether Undo would do anything.
func (e *Editor) CanUndo() bool {
	return !e.disposed && e.history.CanUndo()
}

// CanRedo reports whether Redo would do anything.
func (e *Editor) CanRedo() bool {
	return !e.disposed && e.history.CanRedo()
}

// HistoryDepth returns the number of undo and redo entries.
func (e *Editor) HistoryDepth() (past, future int) {
	return e.history.Depth()
}

// Remap fits the scene onto target and records the result as one history
// entry. Fitting an already stamped scene to the same size is a no-op.
func (e *Editor) Remap(ctx context.Context, target domain.Size) (Scale, error) {
	if e.disposed {
		return Scale{X: 1, Y: 1}, domain.ErrDisposed
	}
	next := e.scene.Clone()
	s, err := e.remapper.Fit(next, target)
	if err != nil {
		return s, err
	}
	if s.Identity() {
		e.scene.Width, e.scene.Height = next.Width, next.Height
		return s, nil
	}
	if e.surface != nil {
		if err := e.loadSurface(ctx, next); err != nil {
			return Scale{X: 1, Y: 1}, err
		}
	}
	e.scene = next
	e.commit()
	return s, nil
}

// Export asks the surface for its current contents. Without a surface it
// returns the committed scene. It fails when the surface cannot produce a
// snapshot, e.g. in the middle of a text edit.
func (e *Editor) Export() (*domain.Scene, error) {
	if e.disposed {
		return nil, domain.ErrDisposed
	}
	if e.surface == nil {
		return e.Scene(), nil
	}
	scene, err := e.surface.Export()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSurfaceUnavailable, err)
	}
	if scene.Metadata == nil && e.scene.Metadata != nil {
		scene.Metadata = e.scene.Clone().Metadata
	}
	scene.SelectedID = ""
	return scene, nil
}

// BeginImage starts an asynchronous image fetch for a primitive.
func (e *Editor) BeginImage(id string) ImageTicket {
	return ImageTicket{PrimitiveID: id, epoch: e.epoch}
}

// CompleteImage points the ticket's primitive at url. It returns false,
// changing nothing, when the editor was disposed after the ticket was
// issued or the primitive is gone.
func (e *Editor) CompleteImage(ticket ImageTicket, url string) (bool, error) {
	if e.disposed || ticket.epoch != e.epoch {
		logger.Debug("editor: discarding image for %s, editor is gone", ticket.PrimitiveID)
		return false, nil
	}
	return e.Update(ticket.PrimitiveID, domain.Fields{"src": url})
}

// HandleEvent mirrors a surface event into the scene. Events raised while
// the editor itself is changing the surface or restoring a snapshot are
// ignored.
func (e *Editor) HandleEvent(ev domain.SurfaceEvent) {
	if e.disposed || e.quiet || e.history.State() == HistoryRestoring {
		return
	}

	switch ev.Type {
	case domain.EventObjectAdded, domain.EventObjectModified:
		if e.pull(ev.ObjectID) {
			e.commit()
		}
	case domain.EventTextChanged:
		// Keystrokes are committed as one entry when editing ends.
		e.pull(ev.ObjectID)
	case domain.EventObjectRemoved:
		e.dropMirrored(ev.ObjectID)
	case domain.EventSelectionCreated, domain.EventSelectionUpdated:
		e.Select(ev.ObjectID)
	case domain.EventSelectionCleared:
		e.ClearSelection()
	case domain.EventEditingEntered:
		e.enterEditing(ev.ObjectID)
	case domain.EventEditingExited:
		e.editing = ""
		if e.pull(ev.ObjectID) {
			if p, ok := e.scene.Get(ev.ObjectID); ok {
				p.CharStyles = p.CharStyles.Prune()
			}
			e.commit()
		}
	default:
		logger.Debug("editor: ignoring surface event %s", ev.Type)
	}
}

// pull copies one primitive's surface state into the scene.
func (e *Editor) pull(id string) bool {
	if e.surface == nil || id == "" {
		return false
	}
	obj, ok := e.surface.Object(id)
	if !ok {
		return false
	}
	if err := obj.Validate(); err != nil {
		logger.Warn("editor: ignoring invalid surface state of %s: %v", id, err)
		return false
	}
	obj.SetCoords()

	if p, ok := e.scene.Get(id); ok {
		if p.Frozen() {
			logger.Warn("editor: surface changed frozen primitive %s, reverting it", id)
			e.resyncObject(*p)
			return false
		}
		*p = obj.Clone()
		return true
	}
	if obj.ZIndex < 0 {
		obj.ZIndex = e.scene.NextZIndex()
	}
	e.scene.Primitives = append(e.scene.Primitives, obj.Clone())
	return true
}

func (e *Editor) dropMirrored(id string) {
	i := e.scene.Index(id)
	if i < 0 {
		return
	}
	if p := e.scene.Primitives[i]; p.Frozen() {
		logger.Warn("editor: surface removed frozen primitive %s, putting it back", id)
		if err := e.withSurface(func(s driven.RenderSurface) error {
			return s.AddObject(p.Clone())
		}); err != nil {
			logger.Warn("editor: surface out of sync for %s: %v", id, err)
		}
		return
	}
	e.scene.Primitives = append(e.scene.Primitives[:i], e.scene.Primitives[i+1:]...)
	if e.scene.SelectedID == id {
		e.scene.SelectedID = ""
	}
	e.commit()
}

// enterEditing backfills per-character styles so every character of the
// text can be addressed during editing.
func (e *Editor) enterEditing(id string) {
	p, ok := e.scene.Get(id)
	if !ok || p.Kind != domain.KindText {
		return
	}
	e.editing = id
	p.CharStyles = domain.BackfillCharStyles(p.CharStyles, p.Text)
	if err := e.withSurface(func(s driven.RenderSurface) error {
		return s.Set(id, "styles", p.CharStyles)
	}); err != nil {
		logger.Warn("editor: could not prepare %s for editing: %v", id, err)
	}
}

// Editing returns the ID of the text primitive being edited, or "".
func (e *Editor) Editing() string {
	return e.editing
}

// commit records the scene in history and repaints.
func (e *Editor) commit() {
	snapshot, err := e.snapshot()
	if err != nil {
		logger.Warn("editor: snapshot skipped: %v", err)
	} else {
		e.history.Record(snapshot)
	}
	if e.surface != nil {
		e.surface.RenderAll()
	}
}

func (e *Editor) snapshot() ([]byte, error) {
	return interchange.EncodeObjects(e.scene.Primitives)
}

// restore replaces the primitives with a snapshot. The scene is only
// swapped once the surface accepted it.
func (e *Editor) restore(ctx context.Context, snapshot []byte) error {
	prims, err := interchange.DecodeObjects(snapshot)
	if err != nil {
		return err
	}
	next := e.scene.Clone()
	next.Primitives = prims
	next.SetCoords()
	if !next.Has(next.SelectedID) {
		next.SelectedID = ""
	}

	if e.surface != nil {
		if err := e.loadSurface(ctx, next); err != nil {
			if rerr := e.loadSurface(ctx, e.scene); rerr != nil {
				logger.Error("editor: surface could not be restored: %v", rerr)
			}
			return err
		}
		e.surface.RenderAll()
	}
	e.scene = next
	e.editing = ""
	return nil
}

func (e *Editor) loadSurface(ctx context.Context, scene *domain.Scene) error {
	e.quiet = true
	defer func() { e.quiet = false }()
	if err := e.surface.Load(ctx, scene.Clone()); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSurfaceUnavailable, err)
	}
	return nil
}

func (e *Editor) withSurface(fn func(s driven.RenderSurface) error) error {
	if e.surface == nil {
		return nil
	}
	e.quiet = true
	defer func() { e.quiet = false }()
	if err := fn(e.surface); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrSurfaceUnavailable, err)
	}
	return nil
}

// resyncObject puts the committed state of p back onto the surface after a
// partially applied update or a change the surface was not allowed to make.
func (e *Editor) resyncObject(p domain.Primitive) {
	err := e.withSurface(func(s driven.RenderSurface) error {
		if err := s.RemoveObject(p.ID); err != nil {
			return err
		}
		return s.AddObject(p)
	})
	if err != nil {
		logger.Warn("editor: surface out of sync for %s: %v", p.ID, err)
	}
}
