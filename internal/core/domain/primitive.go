package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Kind identifies what a primitive draws. The set is closed.
type Kind string

// Available primitive kinds.
const (
	// KindText is a block of text.
	KindText Kind = "text"

	// KindImage is a raster image referenced by URL.
	KindImage Kind = "image"

	// KindRect is a rectangle with optional rounded corners.
	KindRect Kind = "rect"

	// KindCircle is a circle described by its radius.
	KindCircle Kind = "circle"

	// KindLine is a straight segment between two endpoints.
	KindLine Kind = "line"
)

// IsValid returns true if the kind is recognised.
func (k Kind) IsValid() bool {
	switch k {
	case KindText, KindImage, KindRect, KindCircle, KindLine:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k Kind) String() string {
	return string(k)
}

// KindFromTag maps a payload type tag onto a Kind.
// An empty tag is a text primitive. The second return value is false for
// tags that name no known kind.
func KindFromTag(tag string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(tag)) {
	case "", "text", "textbox", "i-text", "itext":
		return KindText, true
	case "image", "img":
		return KindImage, true
	case "rect", "rectangle":
		return KindRect, true
	case "circle":
		return KindCircle, true
	case "line":
		return KindLine, true
	default:
		return "", false
	}
}

// Origin anchors for the position of a primitive.
const (
	OriginLeft   = "left"
	OriginCenter = "center"
	OriginRight  = "right"
	OriginTop    = "top"
	OriginBottom = "bottom"
)

// Rect is an axis-aligned box in canvas pixel space.
type Rect struct {
	Left   float64
	Top    float64
	Width  float64
	Height float64
}

// Primitive is one graphical object within a Scene.
type Primitive struct {
	// ID is stable across save/load round-trips and unique within a Scene.
	ID string

	// Kind is what the primitive draws.
	Kind Kind

	// TypeTag is the type tag the primitive was decoded from (e.g. "textbox").
	// It is written back verbatim on encode. Empty means string(Kind).
	TypeTag string

	// Geometry in canvas pixel space.
	Left    float64
	Top     float64
	Width   float64
	Height  float64
	ScaleX  float64
	ScaleY  float64
	Angle   float64 // degrees
	OriginX string
	OriginY string

	// ZIndex is the paint order. Ties are broken by insertion order.
	// A negative value asks the editor to assign one on insert.
	ZIndex int

	// Selectable and Evented control hit-testing and manipulation.
	// A primitive with both unset is frozen (a background object).
	Selectable bool
	Evented    bool

	// Style.
	Fill        string
	Stroke      string
	StrokeWidth float64
	Opacity     float64

	// Text fields.
	Text       string
	FontSize   float64
	FontFamily string
	FontWeight string
	FontStyle  string
	TextAlign  string
	CharStyles CharStyles

	// Image fields.
	Src string

	// Circle fields.
	Radius float64

	// Rectangle corner radii.
	RX float64
	RY float64

	// Line endpoints.
	X1 float64
	Y1 float64
	X2 float64
	Y2 float64

	// Extra holds fields this version does not understand, verbatim.
	Extra map[string]json.RawMessage

	// Bounds is the cached bounding box. It is refreshed by SetCoords and
	// is never persisted.
	Bounds Rect
}

// NewPrimitive returns a primitive of the given kind with editor defaults:
// unit scale, top-left origin, interactive, fully opaque and an unassigned
// z-index.
func NewPrimitive(kind Kind) Primitive {
	return Primitive{
		Kind:       kind,
		ScaleX:     1,
		ScaleY:     1,
		OriginX:    OriginLeft,
		OriginY:    OriginTop,
		ZIndex:     -1,
		Selectable: true,
		Evented:    true,
		Opacity:    1,
	}
}

// NewText returns a text primitive at the given position.
func NewText(text string, left, top, fontSize float64) Primitive {
	p := NewPrimitive(KindText)
	p.Text = text
	p.Left = left
	p.Top = top
	p.FontSize = fontSize
	p.Fill = "#000000"
	return p
}

// NewRect returns a rectangle primitive.
func NewRect(left, top, width, height float64) Primitive {
	p := NewPrimitive(KindRect)
	p.Left = left
	p.Top = top
	p.Width = width
	p.Height = height
	return p
}

// NewCircle returns a circle primitive whose bounding box starts at left/top.
func NewCircle(left, top, radius float64) Primitive {
	p := NewPrimitive(KindCircle)
	p.Left = left
	p.Top = top
	p.Radius = radius
	p.Width = radius * 2
	p.Height = radius * 2
	return p
}

// NewImage returns an image primitive referencing src.
func NewImage(src string, left, top, width, height float64) Primitive {
	p := NewPrimitive(KindImage)
	p.Src = src
	p.Left = left
	p.Top = top
	p.Width = width
	p.Height = height
	return p
}

// NewLine returns a line primitive between two endpoints.
func NewLine(x1, y1, x2, y2 float64) Primitive {
	p := NewPrimitive(KindLine)
	p.X1, p.Y1, p.X2, p.Y2 = x1, y1, x2, y2
	p.Left = math.Min(x1, x2)
	p.Top = math.Min(y1, y2)
	p.Width = math.Abs(x2 - x1)
	p.Height = math.Abs(y2 - y1)
	return p
}

// Frozen reports whether the primitive is a background object that the
// primitive model must never update or remove.
func (p *Primitive) Frozen() bool {
	return !p.Selectable && !p.Evented
}

// Tag returns the payload type tag for the primitive.
func (p *Primitive) Tag() string {
	if p.TypeTag != "" {
		return p.TypeTag
	}
	return string(p.Kind)
}

// Validate checks the numeric invariants of the primitive.
func (p *Primitive) Validate() error {
	if !p.Kind.IsValid() {
		return fmt.Errorf("%w: kind %q", ErrUnsupportedType, p.Kind)
	}

	numbers := map[string]float64{
		"left": p.Left, "top": p.Top, "width": p.Width, "height": p.Height,
		"scaleX": p.ScaleX, "scaleY": p.ScaleY, "angle": p.Angle,
		"strokeWidth": p.StrokeWidth, "opacity": p.Opacity, "fontSize": p.FontSize,
		"radius": p.Radius, "rx": p.RX, "ry": p.RY,
		"x1": p.X1, "y1": p.Y1, "x2": p.X2, "y2": p.Y2,
	}
	for name, v := range numbers {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidInput, name)
		}
	}

	nonNegative := map[string]float64{
		"width": p.Width, "height": p.Height, "radius": p.Radius,
		"strokeWidth": p.StrokeWidth, "fontSize": p.FontSize,
		"rx": p.RX, "ry": p.RY,
	}
	for name, v := range nonNegative {
		if v < 0 {
			return fmt.Errorf("%w: %s must not be negative", ErrInvalidInput, name)
		}
	}
	return nil
}

// Clone returns a deep copy of the primitive.
func (p *Primitive) Clone() Primitive {
	c := *p
	c.CharStyles = p.CharStyles.Clone()
	if p.Extra != nil {
		c.Extra = make(map[string]json.RawMessage, len(p.Extra))
		for k, v := range p.Extra {
			c.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return c
}

// SetCoords recomputes the cached bounding box from the current geometry.
// The box accounts for scale, origin and rotation about the origin point.
func (p *Primitive) SetCoords() {
	if p.Kind == KindLine {
		p.Bounds = Rect{
			Left:   math.Min(p.X1, p.X2),
			Top:    math.Min(p.Y1, p.Y2),
			Width:  math.Abs(p.X2 - p.X1),
			Height: math.Abs(p.Y2 - p.Y1),
		}
		return
	}

	w, h := p.Width, p.Height
	if p.Kind == KindCircle && w == 0 && h == 0 {
		w, h = p.Radius*2, p.Radius*2
	}
	w *= math.Abs(scaleOrOne(p.ScaleX))
	h *= math.Abs(scaleOrOne(p.ScaleY))

	x0 := p.Left - originOffset(p.OriginX, OriginCenter, OriginRight)*w
	y0 := p.Top - originOffset(p.OriginY, OriginCenter, OriginBottom)*h

	if p.Angle == 0 {
		p.Bounds = Rect{Left: x0, Top: y0, Width: w, Height: h}
		return
	}

	rad := p.Angle * math.Pi / 180
	sin, cos := math.Sincos(rad)
	corners := [4][2]float64{{x0, y0}, {x0 + w, y0}, {x0, y0 + h}, {x0 + w, y0 + h}}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range corners {
		dx, dy := c[0]-p.Left, c[1]-p.Top
		x := p.Left + dx*cos - dy*sin
		y := p.Top + dx*sin + dy*cos
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	p.Bounds = Rect{Left: minX, Top: minY, Width: maxX - minX, Height: maxY - minY}
}

func scaleOrOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

func originOffset(origin, center, far string) float64 {
	switch origin {
	case center:
		return 0.5
	case far:
		return 1
	default:
		return 0
	}
}
