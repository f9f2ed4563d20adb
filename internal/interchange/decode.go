package interchange

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/logger"
)

// Decode parses a payload in any accepted shape into a scene.
// A payload without dimensions yields a scene of zero size; the remapper
// substitutes its default source size for those.
func Decode(data []byte) (*domain.Scene, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty", ErrMalformed)
	}

	switch data[0] {
	case '[':
		prims, err := DecodeObjects(data)
		if err != nil {
			return nil, err
		}
		scene := &domain.Scene{Primitives: prims}
		return scene, nil
	case '{':
		var top map[string]json.RawMessage
		if err := json.Unmarshal(data, &top); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if isEnvelope(top) {
			return decodeEnvelope(top)
		}
		return decodeDocument(top)
	default:
		return nil, fmt.Errorf("%w: expected an object or a list", ErrMalformed)
	}
}

// isEnvelope reports whether a top-level object is the split form.
func isEnvelope(top map[string]json.RawMessage) bool {
	if _, ok := top[keyVector]; ok {
		return true
	}
	_, hasMeta := top[keyMetadata]
	_, hasObjects := top[keyObjects]
	return hasMeta && !hasObjects
}

func decodeEnvelope(top map[string]json.RawMessage) (*domain.Scene, error) {
	scene := &domain.Scene{Primitives: []domain.Primitive{}}

	if raw, ok := top[keyVector]; ok && !isNull(raw) {
		vector, err := unwrapString(raw)
		if err != nil {
			return nil, err
		}
		if len(vector) > 0 {
			decoded, err := Decode(vector)
			if err != nil {
				return nil, fmt.Errorf("vector: %w", err)
			}
			scene = decoded
		}
	}

	if raw, ok := top[keyMetadata]; ok && !isNull(raw) {
		meta, err := unwrapString(raw)
		if err != nil {
			return nil, err
		}
		var fields map[string]json.RawMessage
		if len(meta) > 0 {
			if err := json.Unmarshal(meta, &fields); err != nil {
				return nil, fmt.Errorf("%w: metadata: %v", ErrMalformed, err)
			}
		}
		applySceneFields(scene, fields, false)
	}

	return scene, nil
}

// unwrapString returns the JSON inside a string value, or raw unchanged.
func unwrapString(raw json.RawMessage) ([]byte, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return raw, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return bytes.TrimSpace([]byte(s)), nil
}

func decodeDocument(top map[string]json.RawMessage) (*domain.Scene, error) {
	scene := &domain.Scene{Primitives: []domain.Primitive{}}
	if raw, ok := top[keyObjects]; ok && !isNull(raw) {
		prims, err := DecodeObjects(raw)
		if err != nil {
			return nil, err
		}
		scene.Primitives = prims
	}
	applySceneFields(scene, top, true)
	return scene, nil
}

// applySceneFields copies scene-level fields onto scene. When override is
// false, values already present on the scene win, which is how envelope
// metadata fills the gaps a vector document left.
func applySceneFields(scene *domain.Scene, fields map[string]json.RawMessage, override bool) {
	for key, raw := range fields {
		switch key {
		case keyObjects:
			continue
		case keyWidth, keyHeight:
			var v float64
			if err := json.Unmarshal(raw, &v); err != nil || v < 0 {
				logger.Debug("interchange: ignoring %s %s", key, string(raw))
				continue
			}
			dst := &scene.Width
			if key == keyHeight {
				dst = &scene.Height
			}
			if override || *dst == 0 {
				*dst = v
			}
			continue
		case keyBackground, keyBackgroundColor:
			var v string
			if err := json.Unmarshal(raw, &v); err == nil {
				if override || scene.Background == "" {
					scene.Background = v
				}
				continue
			}
		case keyBackgroundImage:
			var v string
			if err := json.Unmarshal(raw, &v); err == nil {
				if override || scene.BackgroundImage == "" {
					scene.BackgroundImage = v
				}
				continue
			}
		}

		// Anything else, including backgrounds of an unexpected shape, is
		// carried as metadata.
		var v any
		if err := json.Unmarshal(raw, &v); err != nil {
			continue
		}
		if scene.Metadata == nil {
			scene.Metadata = make(map[string]any)
		}
		if _, exists := scene.Metadata[key]; override || !exists {
			scene.Metadata[key] = v
		}
	}
}

// DecodeObjects parses a JSON list of objects into primitives. Objects of an
// unknown type are dropped with a warning; missing or duplicate ids are
// replaced with fresh ones.
func DecodeObjects(data []byte) ([]domain.Primitive, error) {
	var list []json.RawMessage
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("%w: objects: %v", ErrMalformed, err)
	}

	prims := make([]domain.Primitive, 0, len(list))
	seen := make(map[string]bool, len(list))
	for i, raw := range list {
		var obj Object
		if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
			logger.Warn("interchange: skipping object %d: not an object", i)
			continue
		}
		p, ok := DecodeObject(obj, i)
		if !ok {
			continue
		}
		if p.ID == "" || seen[p.ID] {
			if p.ID != "" {
				logger.Debug("interchange: duplicate id %s at %d, minting a new one", p.ID, i)
			}
			p.ID = uuid.NewString()
		}
		seen[p.ID] = true
		prims = append(prims, p)
	}
	return prims, nil
}

// DecodeObject builds one primitive from its payload object. index is its
// position in the list and becomes the z-index when none is given. The
// second return value is false when the type tag names no known kind.
func DecodeObject(obj Object, index int) (domain.Primitive, bool) {
	var tag string
	if raw, ok := obj["type"]; ok && !isNull(raw) {
		if err := json.Unmarshal(raw, &tag); err != nil {
			logger.Warn("interchange: skipping object %d: type is not a string", index)
			return domain.Primitive{}, false
		}
	}
	kind, ok := domain.KindFromTag(tag)
	if !ok {
		logger.Warn("interchange: skipping object %d: unsupported type %q", index, tag)
		return domain.Primitive{}, false
	}

	p := domain.NewPrimitive(kind)
	if tag != string(kind) {
		p.TypeTag = tag
	}
	p.ZIndex = index

	if raw, ok := obj["id"]; ok {
		if err := json.Unmarshal(raw, &p.ID); err != nil {
			// Numeric ids are kept by their textual form.
			p.ID = string(bytes.TrimSpace(raw))
			if p.ID == "null" {
				p.ID = ""
			}
		}
	}

	for key, raw := range obj {
		switch key {
		case "id", "type", "styles":
			continue
		}
		codec, known := codecs[key]
		if known {
			if err := codec.decode(&p, raw); err == nil {
				continue
			}
			logger.Debug("interchange: keeping %s of object %d verbatim", key, index)
		}
		if p.Extra == nil {
			p.Extra = make(map[string]json.RawMessage)
		}
		p.Extra[key] = append(json.RawMessage(nil), raw...)
	}

	if raw, ok := obj["styles"]; ok {
		p.CharStyles = NormaliseCharStyles(raw, p.Text)
	}

	if kind == domain.KindCircle && p.Width == 0 && p.Height == 0 {
		p.Width = p.Radius * 2
		p.Height = p.Radius * 2
	}

	p.SetCoords()
	return p, true
}
