package domain

import (
	"strings"
	"unicode/utf8"
)

// CharStyle holds the style overrides of a single character
// (e.g. {"fill": "#ff0000", "fontWeight": "bold"}).
type CharStyle map[string]any

// CharStyles is a sparse map of per-character style overrides, indexed by
// line and then by column (in runes).
type CharStyles map[int]map[int]CharStyle

// Clone returns a deep copy. Style values are copied shallowly.
func (c CharStyles) Clone() CharStyles {
	if c == nil {
		return nil
	}
	out := make(CharStyles, len(c))
	for line, cols := range c {
		row := make(map[int]CharStyle, len(cols))
		for col, style := range cols {
			s := make(CharStyle, len(style))
			for k, v := range style {
				s[k] = v
			}
			row[col] = s
		}
		out[line] = row
	}
	return out
}

// Prune drops empty style entries and empty lines.
func (c CharStyles) Prune() CharStyles {
	for line, cols := range c {
		for col, style := range cols {
			if len(style) == 0 {
				delete(cols, col)
			}
		}
		if len(cols) == 0 {
			delete(c, line)
		}
	}
	return c
}

// Len returns the number of styled characters.
func (c CharStyles) Len() int {
	n := 0
	for _, cols := range c {
		n += len(cols)
	}
	return n
}

// BackfillCharStyles ensures styles has an entry for every (line, column)
// of text, so editing code can address any character without a nil check.
// Entries beyond the end of the text are left untouched.
func BackfillCharStyles(styles CharStyles, text string) CharStyles {
	if styles == nil {
		styles = make(CharStyles)
	}
	for line, content := range strings.Split(text, "\n") {
		row := styles[line]
		if row == nil {
			row = make(map[int]CharStyle)
			styles[line] = row
		}
		for col := 0; col < utf8.RuneCountInString(content); col++ {
			if row[col] == nil {
				row[col] = CharStyle{}
			}
		}
	}
	return styles
}
