// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/cardstudio/internal/adapters/driving/tui/styles"
)

// TextInput wraps a bubbles textinput for editing the content of a text
// object on the canvas.
type TextInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	label     string
	width     int
}

// NewTextInput creates a new text input component.
func NewTextInput(s *styles.Styles) *TextInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Type text..."
	ti.CharLimit = 1024
	ti.Width = 50

	return &TextInput{
		textinput: ti,
		styles:    s,
		label:     "Text: ",
		width:     50,
	}
}

// Update handles input messages.
func (t *TextInput) Update(msg tea.Msg) (*TextInput, tea.Cmd) {
	var cmd tea.Cmd
	t.textinput, cmd = t.textinput.Update(msg)
	return t, cmd
}

// View renders the text input.
func (t *TextInput) View() string {
	label := t.styles.Title.Render(t.label)
	field := t.styles.InputField.Render(t.textinput.View())
	//nolint:misspell // lipgloss.Center is the correct constant from the library
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Start focuses the input with an initial value.
func (t *TextInput) Start(label, value string) tea.Cmd {
	if label != "" {
		t.label = label + ": "
	}
	t.textinput.SetValue(value)
	t.textinput.CursorEnd()
	return t.textinput.Focus()
}

// Stop removes focus and returns the final value.
func (t *TextInput) Stop() string {
	value := t.textinput.Value()
	t.textinput.Blur()
	t.textinput.Reset()
	return value
}

// Value returns the current input value.
func (t *TextInput) Value() string {
	return t.textinput.Value()
}

// Focused returns whether the input is focused.
func (t *TextInput) Focused() bool {
	return t.textinput.Focused()
}

// SetWidth sets the width of the input.
func (t *TextInput) SetWidth(width int) {
	t.width = width
	inputWidth := width - 12
	if inputWidth < 20 {
		inputWidth = 20
	}
	t.textinput.Width = inputWidth
}

// Width returns the current width.
func (t *TextInput) Width() int {
	return t.width
}
