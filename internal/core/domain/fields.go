package domain

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Fields is a partial update keyed by payload field name (e.g. "left",
// "fontSize"). Names this version does not know land in Primitive.Extra.
type Fields map[string]any

// Keys returns the field names in a stable order.
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Set assigns one field by its payload name.
// Identity fields ("id", "type") cannot be changed.
//
//nolint:gocyclo // flat dispatch over the field table
func (p *Primitive) Set(field string, value any) error {
	var err error
	switch field {
	case "id", "type", "kind":
		return fmt.Errorf("%w: %s cannot be changed", ErrInvalidInput, field)
	case "left":
		p.Left, err = toFloat(field, value)
	case "top":
		p.Top, err = toFloat(field, value)
	case "width":
		p.Width, err = toFloat(field, value)
	case "height":
		p.Height, err = toFloat(field, value)
	case "scaleX":
		p.ScaleX, err = toFloat(field, value)
	case "scaleY":
		p.ScaleY, err = toFloat(field, value)
	case "angle":
		p.Angle, err = toFloat(field, value)
	case "originX":
		p.OriginX, err = toString(field, value)
	case "originY":
		p.OriginY, err = toString(field, value)
	case "zIndex":
		var z float64
		z, err = toFloat(field, value)
		p.ZIndex = int(z)
	case "selectable":
		p.Selectable, err = toBool(field, value)
	case "evented":
		p.Evented, err = toBool(field, value)
	case "fill":
		p.Fill, err = toString(field, value)
	case "stroke":
		p.Stroke, err = toString(field, value)
	case "strokeWidth":
		p.StrokeWidth, err = toFloat(field, value)
	case "opacity":
		p.Opacity, err = toFloat(field, value)
	case "text":
		p.Text, err = toString(field, value)
	case "fontSize":
		p.FontSize, err = toFloat(field, value)
	case "fontFamily":
		p.FontFamily, err = toString(field, value)
	case "fontWeight":
		p.FontWeight, err = toWeight(field, value)
	case "fontStyle":
		p.FontStyle, err = toString(field, value)
	case "textAlign":
		p.TextAlign, err = toString(field, value)
	case "styles":
		styles, ok := value.(CharStyles)
		if !ok && value != nil {
			return fmt.Errorf("%w: styles must be CharStyles", ErrInvalidInput)
		}
		p.CharStyles = styles.Clone()
	case "src":
		p.Src, err = toString(field, value)
	case "radius":
		p.Radius, err = toFloat(field, value)
	case "rx":
		p.RX, err = toFloat(field, value)
	case "ry":
		p.RY, err = toFloat(field, value)
	case "x1":
		p.X1, err = toFloat(field, value)
	case "y1":
		p.Y1, err = toFloat(field, value)
	case "x2":
		p.X2, err = toFloat(field, value)
	case "y2":
		p.Y2, err = toFloat(field, value)
	default:
		raw, mErr := json.Marshal(value)
		if mErr != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidInput, field, mErr)
		}
		if p.Extra == nil {
			p.Extra = make(map[string]json.RawMessage)
		}
		p.Extra[field] = raw
		return nil
	}
	if err == nil {
		// A typed value supersedes a raw one kept from decoding.
		delete(p.Extra, field)
	}
	return err
}

// Apply assigns every field in order. It stops at the first error, leaving
// the primitive partially updated; callers apply to a clone.
func (p *Primitive) Apply(fields Fields) error {
	for _, k := range fields.Keys() {
		if err := p.Set(k, fields[k]); err != nil {
			return err
		}
	}
	return nil
}

func toFloat(field string, value any) (float64, error) {
	var f float64
	switch v := value.(type) {
	case float64:
		f = v
	case float32:
		f = float64(v)
	case int:
		f = float64(v)
	case int32:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %s: %v", ErrInvalidInput, field, err)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("%w: %s must be a number, got %T", ErrInvalidInput, field, value)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("%w: %s is not finite", ErrInvalidInput, field)
	}
	return f, nil
}

func toString(field string, value any) (string, error) {
	s, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrInvalidInput, field, value)
	}
	return s, nil
}

func toBool(field string, value any) (bool, error) {
	b, ok := value.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s must be a boolean, got %T", ErrInvalidInput, field, value)
	}
	return b, nil
}

// toWeight accepts both named ("bold") and numeric (700) font weights.
func toWeight(field string, value any) (string, error) {
	if s, ok := value.(string); ok {
		return s, nil
	}
	f, err := toFloat(field, value)
	if err != nil {
		return "", err
	}
	return strconv.FormatFloat(f, 'f', -1, 64), nil
}
