// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help shows the help view.
	Help key.Binding

	// Back returns to the previous view.
	Back key.Binding

	// Up and Down navigate lists.
	Up   key.Binding
	Down key.Binding

	// Select opens the highlighted card.
	Select key.Binding

	// Delete removes the highlighted card or object.
	Delete key.Binding

	// Refresh reloads the card list.
	Refresh key.Binding

	// MoveLeft, MoveRight, MoveUp and MoveDown nudge the selected object.
	MoveLeft  key.Binding
	MoveRight key.Binding
	MoveUp    key.Binding
	MoveDown  key.Binding

	// Grow and Shrink resize the selected object.
	Grow   key.Binding
	Shrink key.Binding

	// AddText inserts a text object.
	AddText key.Binding

	// EditText edits the selected text object.
	EditText key.Binding

	// Duplicate copies the selected object.
	Duplicate key.Binding

	// Front brings the selected object to the front.
	Front key.Binding

	// Undo and Redo walk the editing history.
	Undo key.Binding
	Redo key.Binding

	// NextSlide, PrevSlide and AddSlide manage slides.
	NextSlide key.Binding
	PrevSlide key.Binding
	AddSlide  key.Binding

	// Save stores the card.
	Save key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Select: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Delete: key.NewBinding(
			key.WithKeys("x", "delete"),
			key.WithHelp("x", "delete"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "refresh"),
		),
		MoveLeft: key.NewBinding(
			key.WithKeys("H", "shift+left"),
			key.WithHelp("H", "move left"),
		),
		MoveRight: key.NewBinding(
			key.WithKeys("L", "shift+right"),
			key.WithHelp("L", "move right"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "move up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "move down"),
		),
		Grow: key.NewBinding(
			key.WithKeys("+", "="),
			key.WithHelp("+", "grow"),
		),
		Shrink: key.NewBinding(
			key.WithKeys("-"),
			key.WithHelp("-", "shrink"),
		),
		AddText: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "add text"),
		),
		EditText: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit text"),
		),
		Duplicate: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "duplicate"),
		),
		Front: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "to front"),
		),
		Undo: key.NewBinding(
			key.WithKeys("u", "ctrl+z"),
			key.WithHelp("u", "undo"),
		),
		Redo: key.NewBinding(
			key.WithKeys("ctrl+r", "ctrl+y"),
			key.WithHelp("ctrl+r", "redo"),
		),
		NextSlide: key.NewBinding(
			key.WithKeys("]", "tab"),
			key.WithHelp("]", "next slide"),
		),
		PrevSlide: key.NewBinding(
			key.WithKeys("[", "shift+tab"),
			key.WithHelp("[", "prev slide"),
		),
		AddSlide: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add slide"),
		),
		Save: key.NewBinding(
			key.WithKeys("s", "ctrl+s"),
			key.WithHelp("s", "save"),
		),
	}
}

// ShortHelp returns a short list of keybindings for the status bar.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit, k.Help}
}

// EditorHelp returns keybindings for the editor status bar.
func (k *KeyMap) EditorHelp() []key.Binding {
	return []key.Binding{k.Undo, k.Redo, k.Save, k.Back}
}

// FullHelp returns the full list of keybindings for the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Delete, k.Refresh},
		{k.MoveLeft, k.MoveRight, k.MoveUp, k.MoveDown, k.Grow, k.Shrink},
		{k.AddText, k.EditText, k.Duplicate, k.Front},
		{k.Undo, k.Redo, k.NextSlide, k.PrevSlide, k.AddSlide, k.Save},
		{k.Back, k.Help, k.Quit},
	}
}

// Matches checks if a key string matches a binding.
func Matches(keyStr string, binding key.Binding) bool {
	for _, k := range binding.Keys() {
		if k == keyStr {
			return true
		}
	}
	return false
}
