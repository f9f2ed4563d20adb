package interchange

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
)

// Deck is the payload of a multi-slide session.
type Deck struct {
	Slides []DeckSlide `json:"slides"`
}

// DeckSlide is one slide of a deck payload.
type DeckSlide struct {
	Name            string    `json:"name,omitempty"`
	PrimaryImage    string    `json:"primaryImage,omitempty"`
	BackgroundImage string    `json:"backgroundImage,omitempty"`
	Document        *Document `json:"document"`
}

// EncodeDeck encodes slides as a deck payload. A slide without a scene is
// written as an empty document.
func EncodeDeck(slides []domain.Slide) ([]byte, error) {
	deck := Deck{Slides: make([]DeckSlide, 0, len(slides))}
	for i, s := range slides {
		scene := s.Scene
		if scene == nil {
			scene = &domain.Scene{}
		}
		doc, err := Encode(scene)
		if err != nil {
			return nil, fmt.Errorf("slide %d: %w", i, err)
		}
		deck.Slides = append(deck.Slides, DeckSlide{
			Name:            s.Name,
			PrimaryImage:    s.PrimaryImage,
			BackgroundImage: s.BackgroundImage,
			Document:        doc,
		})
	}
	data, err := json.Marshal(deck)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnserialisable, err)
	}
	return data, nil
}

// DecodeDeck parses a deck payload. Any single-document payload accepted by
// Decode is read as a deck of one slide.
func DecodeDeck(data []byte) ([]domain.Slide, error) {
	data = bytes.TrimSpace(data)

	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err == nil {
		if raw, ok := deckSlides(top); ok {
			return decodeSlides(raw)
		}
	}

	scene, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return []domain.Slide{{Name: SlideName(0), Scene: scene}}, nil
}

// deckSlides returns the slide list of a deck. A document may carry its own
// "slides" field, so only an array next to no objects or vector part counts.
func deckSlides(top map[string]json.RawMessage) (json.RawMessage, bool) {
	raw, ok := top[keySlides]
	if !ok {
		return nil, false
	}
	if _, ok := top[keyObjects]; ok {
		return nil, false
	}
	if _, ok := top[keyVector]; ok {
		return nil, false
	}
	raw = bytes.TrimSpace(raw)
	return raw, len(raw) > 0 && raw[0] == '['
}

func decodeSlides(raw json.RawMessage) ([]domain.Slide, error) {
	var entries []struct {
		Name            string          `json:"name"`
		PrimaryImage    string          `json:"primaryImage"`
		BackgroundImage string          `json:"backgroundImage"`
		Document        json.RawMessage `json:"document"`
	}
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("%w: slides: %v", ErrMalformed, err)
	}

	slides := make([]domain.Slide, 0, len(entries))
	for i, e := range entries {
		scene := &domain.Scene{Primitives: []domain.Primitive{}}
		if len(e.Document) > 0 && !isNull(e.Document) {
			decoded, err := Decode(e.Document)
			if err != nil {
				return nil, fmt.Errorf("slide %d: %w", i, err)
			}
			scene = decoded
		}
		name := e.Name
		if name == "" {
			name = SlideName(i)
		}
		slides = append(slides, domain.Slide{
			Name:            name,
			Scene:           scene,
			PrimaryImage:    e.PrimaryImage,
			BackgroundImage: e.BackgroundImage,
		})
	}
	return slides, nil
}

// SlideName returns the default name of the slide at index i.
func SlideName(i int) string {
	return fmt.Sprintf("Slide %d", i+1)
}
