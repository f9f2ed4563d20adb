package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/fogleman/gg"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/core/ports/driven"
	"github.com/custodia-labs/cardstudio/internal/logger"
)

// Ensure Renderer implements the interface.
var _ driven.Rasteriser = (*Renderer)(nil)

// MaxSide is the largest canvas edge the renderer will allocate.
const MaxSide = 8192

// lineHeight is the text line advance as a multiple of the font size.
const lineHeight = 1.16

// Renderer paints scenes to PNG.
type Renderer struct {
	fallback domain.Size
	loader   ImageLoader
	faces    *faces
}

// New creates a renderer. Scenes without a usable size are painted at
// fallback. A nil loader uses NewDefaultLoader.
func New(fallback domain.Size, loader ImageLoader) *Renderer {
	if !fallback.Valid() {
		fallback = domain.Size{Width: 800, Height: 600}
	}
	if loader == nil {
		loader = NewDefaultLoader()
	}
	return &Renderer{fallback: fallback, loader: loader, faces: newFaces()}
}

// Rasterise paints the scene and returns it PNG encoded.
func (r *Renderer) Rasterise(ctx context.Context, scene *domain.Scene) ([]byte, error) {
	dc, err := r.Paint(ctx, scene)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encoding png: %w", err)
	}
	return buf.Bytes(), nil
}

// Paint draws the scene onto a new context.
func (r *Renderer) Paint(ctx context.Context, scene *domain.Scene) (*gg.Context, error) {
	if scene == nil {
		return nil, fmt.Errorf("%w: nil scene", domain.ErrInvalidInput)
	}
	size := scene.Size()
	if !size.Valid() {
		size = r.fallback
	}
	w, h := int(math.Ceil(size.Width)), int(math.Ceil(size.Height))
	if w > MaxSide || h > MaxSide {
		return nil, fmt.Errorf("%w: canvas %dx%d exceeds %d pixels per side", domain.ErrInvalidInput, w, h, MaxSide)
	}

	r.faces.mu.Lock()
	defer r.faces.mu.Unlock()

	p := &painter{
		ctx:    ctx,
		dc:     gg.NewContext(w, h),
		faces:  r.faces,
		loader: r.loader,
		images: make(map[string]image.Image),
	}
	p.background(scene)
	for _, prim := range scene.Ordered() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p.primitive(prim)
	}
	return p.dc, nil
}

// painter holds the state of one render.
type painter struct {
	ctx    context.Context
	dc     *gg.Context
	faces  *faces
	loader ImageLoader
	images map[string]image.Image
}

func (p *painter) background(scene *domain.Scene) {
	bg := scene.Background
	if bg == "" {
		bg = "#ffffff"
	}
	if c, ok := p.color(bg, 1); ok {
		p.dc.SetColor(c)
		p.dc.Clear()
	}
	if scene.BackgroundImage == "" {
		return
	}
	img, ok := p.image(scene.BackgroundImage)
	if !ok {
		return
	}

	// Cover the canvas, centred.
	b := img.Bounds()
	cw, ch := float64(p.dc.Width()), float64(p.dc.Height())
	s := math.Max(cw/float64(b.Dx()), ch/float64(b.Dy()))
	p.dc.Push()
	p.dc.Translate((cw-float64(b.Dx())*s)/2, (ch-float64(b.Dy())*s)/2)
	p.dc.Scale(s, s)
	p.dc.DrawImage(img, 0, 0)
	p.dc.Pop()
}

func (p *painter) primitive(prim domain.Primitive) {
	if prim.Kind == domain.KindLine {
		p.line(prim)
		return
	}

	w, h := prim.Width, prim.Height
	if prim.Kind == domain.KindCircle && w == 0 && h == 0 {
		w, h = prim.Radius*2, prim.Radius*2
	}
	x0 := -originFactor(prim.OriginX, domain.OriginCenter, domain.OriginRight) * w
	y0 := -originFactor(prim.OriginY, domain.OriginCenter, domain.OriginBottom) * h

	p.dc.Push()
	defer p.dc.Pop()
	p.dc.Translate(prim.Left, prim.Top)
	if prim.Angle != 0 {
		p.dc.Rotate(gg.Radians(prim.Angle))
	}
	p.dc.Scale(scaleOrOne(prim.ScaleX), scaleOrOne(prim.ScaleY))

	switch prim.Kind {
	case domain.KindRect:
		if r := math.Max(prim.RX, prim.RY); r > 0 {
			p.dc.DrawRoundedRectangle(x0, y0, w, h, r)
		} else {
			p.dc.DrawRectangle(x0, y0, w, h)
		}
		p.fillAndStroke(prim)
	case domain.KindCircle:
		r := prim.Radius
		if r == 0 {
			r = math.Min(w, h) / 2
		}
		p.dc.DrawEllipse(x0+w/2, y0+h/2, r, r*safeRatio(h, w))
		p.fillAndStroke(prim)
	case domain.KindImage:
		p.drawImage(prim, x0, y0, w, h)
	case domain.KindText:
		p.text(prim, x0, y0, w)
	}
}

func (p *painter) fillAndStroke(prim domain.Primitive) {
	fill, hasFill := p.color(prim.Fill, prim.Opacity)
	stroke, hasStroke := p.color(prim.Stroke, prim.Opacity)
	hasStroke = hasStroke && prim.StrokeWidth > 0

	if hasFill {
		p.dc.SetColor(fill)
		if hasStroke {
			p.dc.FillPreserve()
		} else {
			p.dc.Fill()
		}
	}
	if hasStroke {
		p.dc.SetColor(stroke)
		p.dc.SetLineWidth(prim.StrokeWidth)
		p.dc.Stroke()
	}
	p.dc.ClearPath()
}

func (p *painter) line(prim domain.Primitive) {
	c, ok := p.color(prim.Stroke, prim.Opacity)
	if !ok {
		c, ok = p.color(prim.Fill, prim.Opacity)
	}
	if !ok {
		c = withOpacity(color.NRGBA{A: 255}, prim.Opacity)
	}
	width := prim.StrokeWidth
	if width <= 0 {
		width = 1
	}
	p.dc.SetColor(c)
	p.dc.SetLineWidth(width)
	p.dc.DrawLine(prim.X1, prim.Y1, prim.X2, prim.Y2)
	p.dc.Stroke()
}

func (p *painter) drawImage(prim domain.Primitive, x0, y0, w, h float64) {
	img, ok := p.image(prim.Src)
	if !ok {
		// Placeholder keeps the layout readable.
		p.dc.SetColor(withOpacity(color.NRGBA{R: 204, G: 204, B: 204, A: 255}, prim.Opacity))
		p.dc.DrawRectangle(x0, y0, w, h)
		p.dc.Fill()
		return
	}

	b := img.Bounds()
	if w == 0 || h == 0 {
		w, h = float64(b.Dx()), float64(b.Dy())
	}
	p.dc.Push()
	p.dc.Translate(x0, y0)
	p.dc.Scale(w/float64(b.Dx()), h/float64(b.Dy()))
	p.dc.DrawImage(img, 0, 0)
	p.dc.Pop()
}

// run is a stretch of one text line painted with one face and colour.
type run struct {
	text  string
	style textStyle
	width float64
}

type textStyle struct {
	fill   string
	size   float64
	weight string
	style  string
}

func (p *painter) text(prim domain.Primitive, x0, y0, boxWidth float64) {
	base := textStyle{fill: prim.Fill, size: prim.FontSize, weight: prim.FontWeight, style: prim.FontStyle}
	if base.size <= 0 {
		base.size = 40
	}
	if base.fill == "" {
		base.fill = "#000000"
	}

	y := y0
	for li, content := range strings.Split(prim.Text, "\n") {
		runs, lineSize := p.layoutLine(content, prim.CharStyles[li], base)
		total := 0.0
		for _, r := range runs {
			total += r.width
		}

		x := x0
		switch prim.TextAlign {
		case "center":
			x = x0 + (boxWidth-total)/2
		case "right":
			x = x0 + boxWidth - total
		}

		y += lineSize
		for _, r := range runs {
			if c, ok := p.color(r.style.fill, prim.Opacity); ok {
				face, err := p.faces.face(variantFor(r.style.weight, r.style.style), r.style.size)
				if err == nil {
					p.dc.SetFontFace(face)
					p.dc.SetColor(c)
					p.dc.DrawString(r.text, x, y)
				}
			}
			x += r.width
		}
		y += lineSize * (lineHeight - 1)
	}
}

// layoutLine splits a line into runs of equal style and returns them with
// the tallest font size used.
func (p *painter) layoutLine(content string, styles map[int]domain.CharStyle, base textStyle) ([]run, float64) {
	var runs []run
	lineSize := base.size
	col := 0
	for _, ch := range content {
		st := mergeStyle(base, styles[col])
		col++
		if st.size > lineSize {
			lineSize = st.size
		}
		if n := len(runs); n > 0 && runs[n-1].style == st {
			runs[n-1].text += string(ch)
			continue
		}
		runs = append(runs, run{text: string(ch), style: st})
	}

	for i := range runs {
		face, err := p.faces.face(variantFor(runs[i].style.weight, runs[i].style.style), runs[i].style.size)
		if err != nil {
			logger.Warn("raster: %v", err)
			continue
		}
		p.dc.SetFontFace(face)
		runs[i].width, _ = p.dc.MeasureString(runs[i].text)
	}
	return runs, lineSize
}

func mergeStyle(base textStyle, cs domain.CharStyle) textStyle {
	if len(cs) == 0 {
		return base
	}
	if v, ok := cs["fill"].(string); ok {
		base.fill = v
	}
	switch v := cs["fontSize"].(type) {
	case float64:
		base.size = v
	case int:
		base.size = float64(v)
	}
	switch v := cs["fontWeight"].(type) {
	case string:
		base.weight = v
	case float64:
		base.weight = fmt.Sprint(int(v))
	}
	if v, ok := cs["fontStyle"].(string); ok {
		base.style = v
	}
	return base
}

// image loads src once per render. Failures are logged and cached.
func (p *painter) image(src string) (image.Image, bool) {
	if img, ok := p.images[src]; ok {
		return img, img != nil
	}
	img, err := p.loader.Load(p.ctx, src)
	if err != nil {
		logger.Warn("raster: image %s: %v", truncate(src, 64), err)
		img = nil
	}
	p.images[src] = img
	return img, img != nil
}

func (p *painter) color(s string, opacity float64) (color.NRGBA, bool) {
	c, ok, err := ParseColor(s)
	if err != nil {
		logger.Debug("raster: %v", err)
		return color.NRGBA{}, false
	}
	if !ok {
		return color.NRGBA{}, false
	}
	return withOpacity(c, opacity), true
}

func originFactor(origin, center, far string) float64 {
	switch origin {
	case center:
		return 0.5
	case far:
		return 1
	default:
		return 0
	}
}

func scaleOrOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

func safeRatio(a, b float64) float64 {
	if a == 0 || b == 0 {
		return 1
	}
	return a / b
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
