package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/core/ports/driven"
	"github.com/custodia-labs/cardstudio/internal/interchange"
	"github.com/custodia-labs/cardstudio/internal/logger"
)

// Session holds the slides of a multi-slide card and the one editor that
// shows the active slide on the shared surface.
//
// The session owns the surface handle for its lifetime; Close releases it.
// Session is not safe for concurrent use.
type Session struct {
	slides   []domain.Slide
	active   int
	target   domain.Size
	surface  driven.RenderSurface
	settings domain.EngineSettings
	remapper *Remapper
	editor   *Editor
	closed   bool
}

// NewSession opens slide 0 for editing. At least one slide is required;
// an empty list starts a deck with one blank slide.
func NewSession(ctx context.Context, slides []domain.Slide, target domain.Size,
	surface driven.RenderSurface, settings domain.EngineSettings) (*Session, error) {
	if !target.Valid() {
		target = settings.Target
	}
	if !target.Valid() {
		return nil, fmt.Errorf("%w: target size %vx%v", domain.ErrInvalidInput, target.Width, target.Height)
	}

	s := &Session{
		target:   target,
		surface:  surface,
		settings: settings,
		remapper: NewRemapper(settings.DefaultSource),
	}
	for _, sl := range slides {
		s.slides = append(s.slides, sl.Clone())
	}
	if len(s.slides) == 0 {
		s.slides = []domain.Slide{{Name: interchange.SlideName(0)}}
	}

	if err := s.open(ctx, 0); err != nil {
		return nil, err
	}
	return s, nil
}

// Active returns the index of the active slide.
func (s *Session) Active() int {
	return s.active
}

// Len returns the number of slides.
func (s *Session) Len() int {
	return len(s.slides)
}

// Target returns the size of the shared editing surface.
func (s *Session) Target() domain.Size {
	return s.target
}

// Editor returns the editor of the active slide.
func (s *Session) Editor() *Editor {
	return s.editor
}

// SwitchTo makes slide i active. The active slide's current state is
// flushed into its slot first; if the surface cannot produce it, the last
// committed state is kept instead and navigation proceeds.
func (s *Session) SwitchTo(ctx context.Context, i int) error {
	if s.closed {
		return domain.ErrDisposed
	}
	if i == s.active {
		return nil
	}
	if i < 0 || i >= len(s.slides) {
		return fmt.Errorf("%w: slide %d of %d", domain.ErrInvalidInput, i, len(s.slides))
	}

	s.flush()
	s.editor.Dispose()
	s.editor = nil
	return s.open(ctx, i)
}

// AddSlide appends a blank slide of the target size and returns its index.
func (s *Session) AddSlide(name string) (int, error) {
	if s.closed {
		return 0, domain.ErrDisposed
	}
	if name == "" {
		name = interchange.SlideName(len(s.slides))
	}
	s.slides = append(s.slides, domain.Slide{
		Name:  name,
		Scene: domain.NewScene(s.target.Width, s.target.Height),
	})
	return len(s.slides) - 1, nil
}

// RemoveSlide deletes slide i. The last remaining slide cannot be removed.
// Removing the active slide activates its neighbour.
func (s *Session) RemoveSlide(ctx context.Context, i int) error {
	if s.closed {
		return domain.ErrDisposed
	}
	if i < 0 || i >= len(s.slides) {
		return fmt.Errorf("%w: slide %d of %d", domain.ErrInvalidInput, i, len(s.slides))
	}
	if len(s.slides) == 1 {
		return fmt.Errorf("%w: cannot remove the only slide", domain.ErrInvalidInput)
	}

	if i != s.active {
		s.slides = append(s.slides[:i], s.slides[i+1:]...)
		if i < s.active {
			s.active--
		}
		return nil
	}

	s.editor.Dispose()
	s.editor = nil
	s.slides = append(s.slides[:i], s.slides[i+1:]...)
	next := i
	if next >= len(s.slides) {
		next = len(s.slides) - 1
	}
	return s.open(ctx, next)
}

// Slides returns copies of all slides with the active one flushed.
func (s *Session) Slides() []domain.Slide {
	if !s.closed {
		s.flush()
	}
	out := make([]domain.Slide, len(s.slides))
	for i, sl := range s.slides {
		out[i] = sl.Clone()
	}
	return out
}

// Names returns the slide names in order without flushing.
func (s *Session) Names() []string {
	out := make([]string, len(s.slides))
	for i, sl := range s.slides {
		out[i] = sl.Name
	}
	return out
}

// Close flushes the active slide and disposes its editor. The session
// cannot be used afterwards.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.flush()
	s.editor.Dispose()
	s.editor = nil
	s.closed = true
}

// flush writes the active editor's state into its slide slot.
func (s *Session) flush() {
	if s.editor == nil {
		return
	}
	scene, err := s.editor.Export()
	if err != nil {
		logger.Warn("session: flushing slide %d failed, keeping last good state: %v", s.active, err)
		scene = s.editor.Scene()
	}
	s.slides[s.active].Scene = scene
}

func (s *Session) open(ctx context.Context, i int) error {
	scene := s.slides[i].Scene
	if scene == nil {
		scene = domain.NewScene(s.target.Width, s.target.Height)
	} else {
		scene = scene.Clone()
	}
	if scene.Size() != s.target {
		if _, err := s.remapper.Fit(scene, s.target); err != nil {
			return err
		}
		s.slides[i].Scene = scene.Clone()
	}

	s.editor = NewEditor(scene, s.surface, s.settings)
	s.active = i
	if err := s.editor.Mount(ctx); err != nil {
		logger.Error("session: mounting slide %d: %v", i, err)
		return err
	}
	return nil
}
