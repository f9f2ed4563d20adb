package interchange

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
)

// ErrUnserialisable is returned by the encoder when a primitive cannot be
// represented in the payload. It wraps domain.ErrUnserialisable.
var ErrUnserialisable = fmt.Errorf("interchange: %w", domain.ErrUnserialisable)

// ErrMalformed is returned by the decoder when the payload is not JSON or
// has no recognisable shape.
var ErrMalformed = errors.New("interchange: malformed payload")

// Object is one encoded primitive, keyed by field name.
type Object map[string]json.RawMessage

// Document is the plain payload form of a scene.
type Document struct {
	Width           float64  `json:"width"`
	Height          float64  `json:"height"`
	Background      string   `json:"background,omitempty"`
	BackgroundImage string   `json:"backgroundImage,omitempty"`
	Objects         []Object `json:"objects"`

	// Extra holds top-level fields other than the ones above.
	Extra map[string]any `json:"-"`
}

// Metadata is the metadata half of a split envelope.
type Metadata struct {
	Width           float64 `json:"width,omitempty"`
	Height          float64 `json:"height,omitempty"`
	Background      string  `json:"background,omitempty"`
	BackgroundImage string  `json:"backgroundImage,omitempty"`

	Extra map[string]any `json:"-"`
}

// Envelope is the split payload form: a vector part and a metadata part.
type Envelope struct {
	Vector   *Document `json:"vector,omitempty"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// Top-level document keys understood by the codec.
const (
	keyWidth           = "width"
	keyHeight          = "height"
	keyBackground      = "background"
	keyBackgroundColor = "backgroundColor"
	keyBackgroundImage = "backgroundImage"
	keyObjects         = "objects"
	keyVector          = "vector"
	keyMetadata        = "metadata"
	keySlides          = "slides"
)

// MarshalJSON writes the document with its extra top-level fields inlined.
func (d Document) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(d.Extra)+5)
	for k, v := range d.Extra {
		out[k] = v
	}
	out[keyWidth] = d.Width
	out[keyHeight] = d.Height
	if d.Background != "" {
		out[keyBackground] = d.Background
	}
	if d.BackgroundImage != "" {
		out[keyBackgroundImage] = d.BackgroundImage
	}
	objects := d.Objects
	if objects == nil {
		objects = []Object{}
	}
	out[keyObjects] = objects
	return json.Marshal(out)
}

// MarshalJSON writes the metadata with its extra fields inlined.
func (m Metadata) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Extra)+4)
	for k, v := range m.Extra {
		out[k] = v
	}
	if m.Width != 0 {
		out[keyWidth] = m.Width
	}
	if m.Height != 0 {
		out[keyHeight] = m.Height
	}
	if m.Background != "" {
		out[keyBackground] = m.Background
	}
	if m.BackgroundImage != "" {
		out[keyBackgroundImage] = m.BackgroundImage
	}
	return json.Marshal(out)
}
