package interchange

import (
	"encoding/json"
	"strconv"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/logger"
)

// styleRange is the array form of per-character styles, where start and
// end are character offsets into the whole text (newlines included).
type styleRange struct {
	Start *int           `json:"start"`
	End   *int           `json:"end"`
	Style map[string]any `json:"style"`
}

type charPos struct {
	line, col int
	newline   bool
}

// NormaliseCharStyles turns a decoded "styles" value into a valid
// CharStyles. It accepts the nested object form
// {"line": {"col": {...}}} and the range array form
// [{"start", "end", "style"}], which needs the text to resolve offsets.
// Malformed parts are dropped. The result is nil when nothing survives.
func NormaliseCharStyles(raw json.RawMessage, text string) domain.CharStyles {
	if len(raw) == 0 || isNull(raw) {
		return nil
	}

	var nested map[string]json.RawMessage
	if err := json.Unmarshal(raw, &nested); err == nil {
		return fromNested(nested)
	}

	var ranges []json.RawMessage
	if err := json.Unmarshal(raw, &ranges); err == nil {
		return fromRanges(ranges, text)
	}

	logger.Debug("interchange: discarding styles of unexpected shape")
	return nil
}

func fromNested(lines map[string]json.RawMessage) domain.CharStyles {
	out := make(domain.CharStyles)
	for lineKey, rawCols := range lines {
		line, err := strconv.Atoi(lineKey)
		if err != nil || line < 0 {
			continue
		}
		var cols map[string]json.RawMessage
		if err := json.Unmarshal(rawCols, &cols); err != nil {
			continue
		}
		for colKey, rawStyle := range cols {
			col, err := strconv.Atoi(colKey)
			if err != nil || col < 0 {
				continue
			}
			var style map[string]any
			if err := json.Unmarshal(rawStyle, &style); err != nil {
				continue
			}
			setStyle(out, line, col, style)
		}
	}
	return finish(out)
}

func fromRanges(ranges []json.RawMessage, text string) domain.CharStyles {
	if text == "" {
		return nil
	}

	// Map each character offset onto its (line, column).
	var positions []charPos
	line, col := 0, 0
	for _, r := range text {
		positions = append(positions, charPos{line: line, col: col, newline: r == '\n'})
		if r == '\n' {
			line++
			col = 0
			continue
		}
		col++
	}

	out := make(domain.CharStyles)
	for _, rawRange := range ranges {
		var sr styleRange
		if err := json.Unmarshal(rawRange, &sr); err != nil || sr.Start == nil || sr.End == nil {
			continue
		}
		start, end := *sr.Start, *sr.End
		if start < 0 {
			start = 0
		}
		if end > len(positions) {
			end = len(positions)
		}
		for i := start; i < end; i++ {
			if positions[i].newline {
				continue
			}
			setStyle(out, positions[i].line, positions[i].col, sr.Style)
		}
	}
	return finish(out)
}

func setStyle(out domain.CharStyles, line, col int, style map[string]any) {
	clean := sanitiseStyle(style)
	if len(clean) == 0 {
		return
	}
	row := out[line]
	if row == nil {
		row = make(map[int]domain.CharStyle)
		out[line] = row
	}
	existing := row[col]
	if existing == nil {
		existing = make(domain.CharStyle, len(clean))
		row[col] = existing
	}
	for k, v := range clean {
		existing[k] = v
	}
}

// sanitiseStyle keeps only style properties that survive JSON encoding.
func sanitiseStyle(style map[string]any) domain.CharStyle {
	out := make(domain.CharStyle, len(style))
	for k, v := range style {
		if !encodable(v) {
			continue
		}
		out[k] = v
	}
	return out
}

// encodable rejects NaN and Inf too, since encoding/json refuses them.
func encodable(v any) bool {
	_, err := json.Marshal(v)
	return err == nil
}

func finish(out domain.CharStyles) domain.CharStyles {
	out.Prune()
	if len(out) == 0 {
		return nil
	}
	return out
}

// encodeCharStyles writes styles in nested object form, dropping whatever
// cannot be represented.
func encodeCharStyles(styles domain.CharStyles) map[string]map[string]domain.CharStyle {
	if len(styles) == 0 {
		return nil
	}
	out := make(map[string]map[string]domain.CharStyle, len(styles))
	for line, cols := range styles {
		if line < 0 {
			continue
		}
		row := make(map[string]domain.CharStyle, len(cols))
		for col, style := range cols {
			if col < 0 {
				continue
			}
			clean := sanitiseStyle(style)
			if len(clean) == 0 {
				continue
			}
			row[strconv.Itoa(col)] = clean
		}
		if len(row) > 0 {
			out[strconv.Itoa(line)] = row
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
