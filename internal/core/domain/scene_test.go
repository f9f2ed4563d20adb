package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sceneWith(prims ...Primitive) *Scene {
	s := NewScene(800, 600)
	s.Primitives = append(s.Primitives, prims...)
	return s
}

func TestNewScene(t *testing.T) {
	s := NewScene(1080, 1920)

	assert.Equal(t, Size{Width: 1080, Height: 1920}, s.Size())
	assert.Empty(t, s.Primitives)
	assert.Equal(t, 0, s.NextZIndex())
}

func TestScene_IndexAndGet(t *testing.T) {
	a := NewRect(0, 0, 1, 1)
	a.ID = "a"
	b := NewRect(0, 0, 1, 1)
	b.ID = "b"
	s := sceneWith(a, b)

	assert.Equal(t, 1, s.Index("b"))
	assert.Equal(t, -1, s.Index("missing"))
	assert.True(t, s.Has("a"))
	assert.Equal(t, []string{"a", "b"}, s.IDs())

	p, ok := s.Get("a")
	require.True(t, ok)
	p.Left = 99
	assert.Equal(t, 99.0, s.Primitives[0].Left)
}

func TestScene_Ordered(t *testing.T) {
	mk := func(id string, z int) Primitive {
		p := NewRect(0, 0, 1, 1)
		p.ID = id
		p.ZIndex = z
		return p
	}
	s := sceneWith(mk("top", 5), mk("low", 0), mk("tie-1", 2), mk("tie-2", 2))

	ordered := s.Ordered()

	ids := make([]string, len(ordered))
	for i := range ordered {
		ids[i] = ordered[i].ID
	}
	assert.Equal(t, []string{"low", "tie-1", "tie-2", "top"}, ids)
	assert.Equal(t, "top", s.Primitives[0].ID, "insertion order is untouched")
	assert.Equal(t, 6, s.NextZIndex())
}

func TestScene_Clone(t *testing.T) {
	p := NewText("x", 0, 0, 10)
	p.ID = "t"
	s := sceneWith(p)
	s.Metadata = map[string]any{"title": "hello"}

	c := s.Clone()
	c.Primitives[0].Text = "changed"
	c.Metadata["title"] = "other"

	assert.Equal(t, "x", s.Primitives[0].Text)
	assert.Equal(t, "hello", s.Metadata["title"])
}

func TestSize(t *testing.T) {
	assert.True(t, Size{}.IsZero())
	assert.True(t, Size{Width: 10}.IsZero())
	assert.False(t, Size{Width: 10, Height: 5}.IsZero())
	assert.True(t, Size{Width: 10, Height: 5}.Valid())
	assert.False(t, Size{Width: -1, Height: 5}.Valid())
}

func TestDefaultEngineSettings(t *testing.T) {
	s := DefaultEngineSettings()

	assert.Equal(t, 50, s.HistoryLimit)
	assert.Equal(t, 20.0, s.DuplicateOffset)
	assert.Equal(t, Size{Width: 800, Height: 600}, s.DefaultSource)
	assert.True(t, s.ImageHost.IsValid())
	assert.False(t, ImageHostType("s3").IsValid())
}
