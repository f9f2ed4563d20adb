package domain

import (
	"math"
	"sort"
)

// Size is a canvas size in pixels.
type Size struct {
	Width  float64
	Height float64
}

// IsZero returns true if either dimension is unset.
func (s Size) IsZero() bool {
	return s.Width == 0 || s.Height == 0
}

// Valid returns true if both dimensions are finite and positive.
func (s Size) Valid() bool {
	return s.Width > 0 && s.Height > 0 &&
		!math.IsInf(s.Width, 0) && !math.IsInf(s.Height, 0)
}

// Scene is the full editable state of one canvas: its dimensions,
// background and primitives. It is the unit of truth for an editor.
type Scene struct {
	// Width and Height are the canvas pixel dimensions. They only change
	// through an explicit remap.
	Width  float64
	Height float64

	// Background is the canvas background colour.
	Background string

	// BackgroundImage is an optional background image URL.
	BackgroundImage string

	// Primitives are kept in insertion order. Stacking follows ZIndex.
	Primitives []Primitive

	// SelectedID is the active selection. Transient; never persisted.
	SelectedID string

	// Metadata holds envelope metadata carried through save/load.
	Metadata map[string]any
}

// NewScene creates an empty scene of the given size.
func NewScene(width, height float64) *Scene {
	return &Scene{
		Width:      width,
		Height:     height,
		Background: "#ffffff",
		Primitives: []Primitive{},
	}
}

// Size returns the canvas size.
func (s *Scene) Size() Size {
	return Size{Width: s.Width, Height: s.Height}
}

// Index returns the position of the primitive with the given ID, or -1.
func (s *Scene) Index(id string) int {
	for i := range s.Primitives {
		if s.Primitives[i].ID == id {
			return i
		}
	}
	return -1
}

// Get returns the primitive with the given ID.
// The pointer refers into the scene and is invalidated by insert or remove.
func (s *Scene) Get(id string) (*Primitive, bool) {
	i := s.Index(id)
	if i < 0 {
		return nil, false
	}
	return &s.Primitives[i], true
}

// Has reports whether a primitive with the given ID exists.
func (s *Scene) Has(id string) bool {
	return s.Index(id) >= 0
}

// IDs returns primitive IDs in insertion order.
func (s *Scene) IDs() []string {
	ids := make([]string, len(s.Primitives))
	for i := range s.Primitives {
		ids[i] = s.Primitives[i].ID
	}
	return ids
}

// Ordered returns the primitives in paint order: ascending ZIndex, ties
// broken by insertion order.
func (s *Scene) Ordered() []Primitive {
	out := make([]Primitive, len(s.Primitives))
	copy(out, s.Primitives)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ZIndex < out[j].ZIndex
	})
	return out
}

// NextZIndex returns a z-index above every existing primitive.
func (s *Scene) NextZIndex() int {
	if len(s.Primitives) == 0 {
		return 0
	}
	top := s.Primitives[0].ZIndex
	for i := range s.Primitives {
		if s.Primitives[i].ZIndex > top {
			top = s.Primitives[i].ZIndex
		}
	}
	return top + 1
}

// Clone returns a deep copy of the scene.
func (s *Scene) Clone() *Scene {
	c := *s
	c.Primitives = make([]Primitive, len(s.Primitives))
	for i := range s.Primitives {
		c.Primitives[i] = s.Primitives[i].Clone()
	}
	if s.Metadata != nil {
		c.Metadata = make(map[string]any, len(s.Metadata))
		for k, v := range s.Metadata {
			c.Metadata[k] = v
		}
	}
	return &c
}

// SetCoords refreshes the cached bounds of every primitive.
func (s *Scene) SetCoords() {
	for i := range s.Primitives {
		s.Primitives[i].SetCoords()
	}
}
