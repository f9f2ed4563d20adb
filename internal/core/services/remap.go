package services

import (
	"fmt"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/logger"
)

// DefaultSourceSize is the authoring size assumed for documents that do not
// carry their own.
var DefaultSourceSize = domain.Size{Width: 800, Height: 600}

// Scale holds the per-axis factors of a remap.
type Scale struct {
	X float64
	Y float64
}

// Identity reports whether the scale changes nothing.
func (s Scale) Identity() bool {
	return s.X == 1 && s.Y == 1
}

// Average is the uniform factor used for round shapes, font sizes and
// stroke widths.
func (s Scale) Average() float64 {
	return (s.X + s.Y) / 2
}

// ScaleBetween returns the factors mapping from onto to.
func ScaleBetween(from, to domain.Size) Scale {
	return Scale{X: to.Width / from.Width, Y: to.Height / from.Height}
}

// RemapPrimitive rescales one primitive's geometry and style magnitudes and
// refreshes its bounds. Applying it twice compounds the scale.
//
// Radius, font size and stroke width use the average of both factors, so a
// circle stays a circle under a non-uniform remap.
func RemapPrimitive(p *domain.Primitive, s Scale) {
	avg := s.Average()

	p.Left *= s.X
	p.Top *= s.Y
	p.Width *= s.X
	p.Height *= s.Y

	switch p.Kind {
	case domain.KindCircle:
		p.Radius *= avg
	case domain.KindText:
		p.FontSize *= avg
	case domain.KindLine:
		p.X1 *= s.X
		p.X2 *= s.X
		p.Y1 *= s.Y
		p.Y2 *= s.Y
	case domain.KindRect:
		if p.RX > 0 {
			p.RX *= s.X
		}
		if p.RY > 0 {
			p.RY *= s.Y
		}
	}

	if p.StrokeWidth > 0 {
		p.StrokeWidth *= avg
	}

	p.SetCoords()
}

// ApplyScale rescales every evented primitive of the scene. It does not
// touch the scene size.
func ApplyScale(scene *domain.Scene, s Scale) int {
	n := 0
	for i := range scene.Primitives {
		p := &scene.Primitives[i]
		if !p.Evented {
			// Background objects keep their geometry.
			p.SetCoords()
			continue
		}
		RemapPrimitive(p, s)
		n++
	}
	return n
}

// Remapper fits scenes authored at one size onto a canvas of another.
type Remapper struct {
	// DefaultSource is used for scenes that carry no size.
	DefaultSource domain.Size
}

// NewRemapper creates a remapper with the given default source size.
// An invalid size falls back to DefaultSourceSize.
func NewRemapper(defaultSource domain.Size) *Remapper {
	if !defaultSource.Valid() {
		defaultSource = DefaultSourceSize
	}
	return &Remapper{DefaultSource: defaultSource}
}

// Source returns the authoring size of a scene.
func (r *Remapper) Source(scene *domain.Scene) domain.Size {
	if size := scene.Size(); size.Valid() {
		return size
	}
	if r.DefaultSource.Valid() {
		return r.DefaultSource
	}
	return DefaultSourceSize
}

// Fit rescales the scene from its authoring size to target and stamps the
// scene with target, so fitting again to the same size changes nothing.
func (r *Remapper) Fit(scene *domain.Scene, target domain.Size) (Scale, error) {
	if scene == nil {
		return Scale{X: 1, Y: 1}, fmt.Errorf("%w: nil scene", domain.ErrInvalidInput)
	}
	if !target.Valid() {
		return Scale{X: 1, Y: 1}, fmt.Errorf("%w: target size %vx%v", domain.ErrInvalidInput, target.Width, target.Height)
	}

	source := r.Source(scene)
	s := ScaleBetween(source, target)
	if !s.Identity() {
		n := ApplyScale(scene, s)
		logger.Debug("remap: %vx%v -> %vx%v (%.3f, %.3f), %d primitives",
			source.Width, source.Height, target.Width, target.Height, s.X, s.Y, n)
	} else {
		scene.SetCoords()
	}

	scene.Width = target.Width
	scene.Height = target.Height
	return s, nil
}
