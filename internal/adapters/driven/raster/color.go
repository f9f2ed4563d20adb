package raster

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"
)

// ParseColor converts a CSS colour into a color.NRGBA. It accepts #rgb,
// #rgba, #rrggbb, #rrggbbaa, rgb(), rgba() and the CSS colour names.
// The second return value is false for "", "none" and "transparent",
// which paint nothing.
func ParseColor(s string) (color.NRGBA, bool, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "", "none", "transparent":
		return color.NRGBA{}, false, nil
	}

	if strings.HasPrefix(s, "#") {
		c, err := parseHex(s[1:])
		return c, err == nil, err
	}
	if strings.HasPrefix(s, "rgb") {
		c, err := parseFunc(s)
		return c, err == nil, err
	}
	if named, ok := colornames.Map[s]; ok {
		return color.NRGBA{R: named.R, G: named.G, B: named.B, A: named.A}, true, nil
	}
	return color.NRGBA{}, false, fmt.Errorf("unknown colour %q", s)
}

func parseHex(h string) (color.NRGBA, error) {
	switch len(h) {
	case 3, 4:
		var expanded strings.Builder
		for _, r := range h {
			expanded.WriteRune(r)
			expanded.WriteRune(r)
		}
		h = expanded.String()
	case 6, 8:
	default:
		return color.NRGBA{}, fmt.Errorf("bad hex colour #%s", h)
	}
	if len(h) == 6 {
		h += "ff"
	}
	n, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("bad hex colour #%s", h)
	}
	return color.NRGBA{R: uint8(n >> 24), G: uint8(n >> 16), B: uint8(n >> 8), A: uint8(n)}, nil
}

// parseFunc reads rgb(r, g, b) and rgba(r, g, b, a) with a in [0, 1].
func parseFunc(s string) (color.NRGBA, error) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return color.NRGBA{}, fmt.Errorf("bad colour %q", s)
	}
	parts := strings.Split(s[open+1:end], ",")
	if len(parts) != 3 && len(parts) != 4 {
		return color.NRGBA{}, fmt.Errorf("bad colour %q", s)
	}

	var ch [4]uint8
	ch[3] = 255
	for i, part := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("bad colour %q", s)
		}
		if i == 3 {
			f *= 255
		}
		ch[i] = uint8(clamp(f, 0, 255) + 0.5)
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}

// withOpacity scales the alpha of c by opacity.
func withOpacity(c color.NRGBA, opacity float64) color.NRGBA {
	c.A = uint8(float64(c.A)*clamp(opacity, 0, 1) + 0.5)
	return c
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
