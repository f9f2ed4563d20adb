package raster

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

type variant int

const (
	regular variant = iota
	bold
	italic
	boldItalic
)

var fontData = map[variant][]byte{
	regular:    goregular.TTF,
	bold:       gobold.TTF,
	italic:     goitalic.TTF,
	boldItalic: gobolditalic.TTF,
}

// variantFor maps CSS font weight and style onto one of the Go fonts.
// Numeric weights of 600 and above are bold.
func variantFor(weight, style string) variant {
	isBold := false
	switch w := strings.ToLower(weight); w {
	case "bold", "bolder":
		isBold = true
	default:
		if n, err := strconv.Atoi(w); err == nil && n >= 600 {
			isBold = true
		}
	}
	isItalic := strings.EqualFold(style, "italic") || strings.EqualFold(style, "oblique")

	switch {
	case isBold && isItalic:
		return boldItalic
	case isBold:
		return bold
	case isItalic:
		return italic
	default:
		return regular
	}
}

type faceKey struct {
	v    variant
	size float64
}

// faces caches parsed fonts and sized faces. Faces are not safe for
// concurrent use, so a renderer holds the cache lock for a whole render.
type faces struct {
	mu    sync.Mutex
	fonts map[variant]*truetype.Font
	sized map[faceKey]font.Face
}

func newFaces() *faces {
	return &faces{
		fonts: make(map[variant]*truetype.Font),
		sized: make(map[faceKey]font.Face),
	}
}

// face returns the face for v at size. Caller holds f.mu.
func (f *faces) face(v variant, size float64) (font.Face, error) {
	if size <= 0 {
		size = 1
	}
	key := faceKey{v: v, size: size}
	if face, ok := f.sized[key]; ok {
		return face, nil
	}

	parsed, ok := f.fonts[v]
	if !ok {
		var err error
		parsed, err = truetype.Parse(fontData[v])
		if err != nil {
			return nil, fmt.Errorf("parsing font: %w", err)
		}
		f.fonts[v] = parsed
	}

	face := truetype.NewFace(parsed, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	f.sized[key] = face
	return face, nil
}
