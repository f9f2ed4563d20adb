// Package list provides list display components for the TUI.
package list

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/cardstudio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/cardstudio/internal/core/domain"
)

// CardList displays stored cards in a navigable list.
type CardList struct {
	cards    []domain.CardSummary
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// NewCardList creates a new card list component.
func NewCardList(s *styles.Styles) *CardList {
	if s == nil {
		s = styles.DefaultStyles()
	}

	return &CardList{
		styles: s,
		width:  80,
		height: 10,
	}
}

// View renders the card list.
func (l *CardList) View() string {
	if len(l.cards) == 0 {
		return l.styles.Muted.Render("No cards yet. Create one with: cardstudio card new")
	}

	lines := make([]string, 0, len(l.cards)+2)
	lines = append(lines, l.styles.Subtitle.Render(fmt.Sprintf("Cards (%d)", len(l.cards))), "")

	// Each card takes two lines.
	visible := (l.height - 4) / 2
	if visible < 1 {
		visible = 1
	}
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := start + visible
	if end > len(l.cards) {
		end = len(l.cards)
	}

	for i := start; i < end; i++ {
		lines = append(lines, l.renderCard(i, &l.cards[i]))
	}
	return strings.Join(lines, "\n")
}

func (l *CardList) renderCard(index int, c *domain.CardSummary) string {
	indicator := "  "
	if index == l.selected {
		indicator = "> "
	}

	title := c.Title
	if title == "" {
		title = "(Untitled)"
	}
	maxTitle := l.width - 24
	if maxTitle < 10 {
		maxTitle = 10
	}
	if len(title) > maxTitle {
		title = title[:maxTitle-3] + "..."
	}

	updated := c.UpdatedAt.Local().Format("2006-01-02 15:04")
	var titleLine string
	if index == l.selected {
		titleLine = l.styles.Selected.Render(fmt.Sprintf("%s%-*s  %s", indicator, maxTitle, title, updated))
	} else {
		titleLine = l.styles.Normal.Render(fmt.Sprintf("%s%-*s  ", indicator, maxTitle, title)) +
			l.styles.Muted.Render(updated)
	}

	detail := l.styles.Muted.Render("    " + c.ID)
	if c.Degraded {
		detail += " " + l.styles.Warning.Render("image only")
	}
	return titleLine + "\n" + detail
}

// SetCards replaces the list contents, keeping the cursor in range.
func (l *CardList) SetCards(cards []domain.CardSummary) {
	l.cards = cards
	if l.selected >= len(cards) {
		l.selected = len(cards) - 1
	}
	if l.selected < 0 {
		l.selected = 0
	}
}

// Cards returns the current cards.
func (l *CardList) Cards() []domain.CardSummary {
	return l.cards
}

// Selected returns the index of the highlighted card.
func (l *CardList) Selected() int {
	return l.selected
}

// SelectedCard returns the highlighted card, or nil if the list is empty.
func (l *CardList) SelectedCard() *domain.CardSummary {
	if len(l.cards) == 0 {
		return nil
	}
	return &l.cards[l.selected]
}

// MoveUp moves the cursor up.
func (l *CardList) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves the cursor down.
func (l *CardList) MoveDown() {
	if l.selected < len(l.cards)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *CardList) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}
