package interchange

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
)

var errNull = errors.New("null value")

// fieldCodec moves one typed primitive field between its payload form and
// the domain struct.
type fieldCodec struct {
	decode func(p *domain.Primitive, raw json.RawMessage) error
	encode func(p *domain.Primitive) any
	// write reports whether the field belongs in the encoded object.
	write func(p *domain.Primitive) bool
}

func always(*domain.Primitive) bool { return true }

func forKind(kind domain.Kind, isZero func(p *domain.Primitive) bool) func(p *domain.Primitive) bool {
	return func(p *domain.Primitive) bool {
		return p.Kind == kind || !isZero(p)
	}
}

func floatField(get func(p *domain.Primitive) *float64) fieldCodec {
	return fieldCodec{
		decode: func(p *domain.Primitive, raw json.RawMessage) error {
			if isNull(raw) {
				return errNull
			}
			var v float64
			if err := json.Unmarshal(raw, &v); err != nil {
				return err
			}
			*get(p) = v
			return nil
		},
		encode: func(p *domain.Primitive) any { return *get(p) },
		write:  always,
	}
}

func stringField(get func(p *domain.Primitive) *string) fieldCodec {
	return fieldCodec{
		decode: func(p *domain.Primitive, raw json.RawMessage) error {
			if isNull(raw) {
				return errNull
			}
			var v string
			if err := json.Unmarshal(raw, &v); err != nil {
				return err
			}
			*get(p) = v
			return nil
		},
		encode: func(p *domain.Primitive) any { return *get(p) },
		write:  func(p *domain.Primitive) bool { return *get(p) != "" },
	}
}

func boolField(get func(p *domain.Primitive) *bool) fieldCodec {
	return fieldCodec{
		decode: func(p *domain.Primitive, raw json.RawMessage) error {
			if isNull(raw) {
				return errNull
			}
			var v bool
			if err := json.Unmarshal(raw, &v); err != nil {
				return err
			}
			*get(p) = v
			return nil
		},
		encode: func(p *domain.Primitive) any { return *get(p) },
		write:  always,
	}
}

// kindFloat is a float field written for its own kind, or for any other
// kind when it is set.
func kindFloat(kind domain.Kind, get func(p *domain.Primitive) *float64) fieldCodec {
	c := floatField(get)
	c.write = forKind(kind, func(p *domain.Primitive) bool { return *get(p) == 0 })
	return c
}

func kindString(kind domain.Kind, get func(p *domain.Primitive) *string) fieldCodec {
	c := stringField(get)
	c.write = forKind(kind, func(p *domain.Primitive) bool { return *get(p) == "" })
	return c
}

// codecs lists every typed primitive field by payload name. "id", "type"
// and "styles" are handled by the decoder and encoder directly.
var codecs = map[string]fieldCodec{
	"left":        floatField(func(p *domain.Primitive) *float64 { return &p.Left }),
	"top":         floatField(func(p *domain.Primitive) *float64 { return &p.Top }),
	"width":       floatField(func(p *domain.Primitive) *float64 { return &p.Width }),
	"height":      floatField(func(p *domain.Primitive) *float64 { return &p.Height }),
	"scaleX":      floatField(func(p *domain.Primitive) *float64 { return &p.ScaleX }),
	"scaleY":      floatField(func(p *domain.Primitive) *float64 { return &p.ScaleY }),
	"angle":       floatField(func(p *domain.Primitive) *float64 { return &p.Angle }),
	"originX":     stringField(func(p *domain.Primitive) *string { return &p.OriginX }),
	"originY":     stringField(func(p *domain.Primitive) *string { return &p.OriginY }),
	"zIndex":      zIndexField(),
	"selectable":  boolField(func(p *domain.Primitive) *bool { return &p.Selectable }),
	"evented":     boolField(func(p *domain.Primitive) *bool { return &p.Evented }),
	"fill":        stringField(func(p *domain.Primitive) *string { return &p.Fill }),
	"stroke":      stringField(func(p *domain.Primitive) *string { return &p.Stroke }),
	"strokeWidth": floatField(func(p *domain.Primitive) *float64 { return &p.StrokeWidth }),
	"opacity":     floatField(func(p *domain.Primitive) *float64 { return &p.Opacity }),
	"text":        kindString(domain.KindText, func(p *domain.Primitive) *string { return &p.Text }),
	"fontSize":    kindFloat(domain.KindText, func(p *domain.Primitive) *float64 { return &p.FontSize }),
	"fontFamily":  kindString(domain.KindText, func(p *domain.Primitive) *string { return &p.FontFamily }),
	"fontWeight":  fontWeightField(),
	"fontStyle":   kindString(domain.KindText, func(p *domain.Primitive) *string { return &p.FontStyle }),
	"textAlign":   kindString(domain.KindText, func(p *domain.Primitive) *string { return &p.TextAlign }),
	"src":         kindString(domain.KindImage, func(p *domain.Primitive) *string { return &p.Src }),
	"radius":      kindFloat(domain.KindCircle, func(p *domain.Primitive) *float64 { return &p.Radius }),
	"rx":          kindFloat(domain.KindRect, func(p *domain.Primitive) *float64 { return &p.RX }),
	"ry":          kindFloat(domain.KindRect, func(p *domain.Primitive) *float64 { return &p.RY }),
	"x1":          kindFloat(domain.KindLine, func(p *domain.Primitive) *float64 { return &p.X1 }),
	"y1":          kindFloat(domain.KindLine, func(p *domain.Primitive) *float64 { return &p.Y1 }),
	"x2":          kindFloat(domain.KindLine, func(p *domain.Primitive) *float64 { return &p.X2 }),
	"y2":          kindFloat(domain.KindLine, func(p *domain.Primitive) *float64 { return &p.Y2 }),
}

func zIndexField() fieldCodec {
	return fieldCodec{
		decode: func(p *domain.Primitive, raw json.RawMessage) error {
			if isNull(raw) {
				return errNull
			}
			var v float64
			if err := json.Unmarshal(raw, &v); err != nil {
				return err
			}
			p.ZIndex = int(v)
			return nil
		},
		encode: func(p *domain.Primitive) any { return p.ZIndex },
		write:  always,
	}
}

// fontWeightField accepts named ("bold") and numeric (700) weights and
// writes numeric weights back as numbers.
func fontWeightField() fieldCodec {
	return fieldCodec{
		decode: func(p *domain.Primitive, raw json.RawMessage) error {
			if isNull(raw) {
				return errNull
			}
			var s string
			if err := json.Unmarshal(raw, &s); err == nil {
				p.FontWeight = s
				return nil
			}
			var n float64
			if err := json.Unmarshal(raw, &n); err != nil {
				return err
			}
			p.FontWeight = strconv.FormatFloat(n, 'f', -1, 64)
			return nil
		},
		encode: func(p *domain.Primitive) any {
			if n, err := strconv.ParseFloat(p.FontWeight, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
				return n
			}
			return p.FontWeight
		},
		write: forKind(domain.KindText, func(p *domain.Primitive) bool { return p.FontWeight == "" }),
	}
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
