package interchange

import (
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
)

// Encode converts a scene into its plain document form.
// Transient state (selection, cached bounds) is not written.
func Encode(scene *domain.Scene) (*Document, error) {
	if scene == nil {
		return nil, fmt.Errorf("%w: nil scene", ErrUnserialisable)
	}
	objects := make([]Object, 0, len(scene.Primitives))
	for i := range scene.Primitives {
		obj, err := EncodeObject(&scene.Primitives[i])
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}

	doc := &Document{
		Width:           scene.Width,
		Height:          scene.Height,
		Background:      scene.Background,
		BackgroundImage: scene.BackgroundImage,
		Objects:         objects,
	}
	if len(scene.Metadata) > 0 {
		doc.Extra = make(map[string]any, len(scene.Metadata))
		for k, v := range scene.Metadata {
			doc.Extra[k] = v
		}
	}
	return doc, nil
}

// Marshal encodes a scene straight to JSON.
func Marshal(scene *domain.Scene) ([]byte, error) {
	doc, err := Encode(scene)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnserialisable, err)
	}
	return data, nil
}

// EncodeEnvelope converts a scene into the split form: the objects go into
// the vector part and the canvas fields and metadata into the other.
func EncodeEnvelope(scene *domain.Scene) (*Envelope, error) {
	doc, err := Encode(scene)
	if err != nil {
		return nil, err
	}
	meta := &Metadata{
		Width:           doc.Width,
		Height:          doc.Height,
		Background:      doc.Background,
		BackgroundImage: doc.BackgroundImage,
		Extra:           doc.Extra,
	}
	doc.Extra = nil
	return &Envelope{Vector: doc, Metadata: meta}, nil
}

// MarshalEnvelope encodes a scene in the split form straight to JSON.
func MarshalEnvelope(scene *domain.Scene) ([]byte, error) {
	env, err := EncodeEnvelope(scene)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnserialisable, err)
	}
	return data, nil
}

// EncodeObjects encodes primitives as a bare JSON list. History snapshots
// use this form.
func EncodeObjects(prims []domain.Primitive) ([]byte, error) {
	objects := make([]Object, 0, len(prims))
	for i := range prims {
		obj, err := EncodeObject(&prims[i])
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}
	data, err := json.Marshal(objects)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnserialisable, err)
	}
	return data, nil
}

// EncodeObject converts one primitive into its payload object.
// Pass-through fields are written first and are never shadowed by a typed
// field of the same name.
func EncodeObject(p *domain.Primitive) (Object, error) {
	obj := make(Object, len(codecs)+len(p.Extra)+3)
	for k, raw := range p.Extra {
		if !json.Valid(raw) {
			return nil, fmt.Errorf("%w: object %s: field %s is not valid JSON", ErrUnserialisable, p.ID, k)
		}
		obj[k] = append(json.RawMessage(nil), raw...)
	}

	put := func(key string, v any) error {
		if _, kept := obj[key]; kept {
			return nil
		}
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("%w: object %s: %s: %v", ErrUnserialisable, p.ID, key, err)
		}
		obj[key] = data
		return nil
	}

	if err := put("id", p.ID); err != nil {
		return nil, err
	}
	if err := put("type", p.Tag()); err != nil {
		return nil, err
	}
	for key, codec := range codecs {
		if !codec.write(p) {
			continue
		}
		if err := put(key, codec.encode(p)); err != nil {
			return nil, err
		}
	}
	if styles := encodeCharStyles(p.CharStyles); styles != nil {
		if err := put("styles", styles); err != nil {
			return nil, err
		}
	}
	return obj, nil
}
