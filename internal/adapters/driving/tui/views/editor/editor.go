// Package editor provides the card editing view for the TUI.
package editor

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/cardstudio/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/cardstudio/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/cardstudio/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/cardstudio/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/cardstudio/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/core/ports/driven"
	"github.com/custodia-labs/cardstudio/internal/core/services"
)

// nudge is how far one move key shifts an object, in canvas pixels.
const nudge = 10

// Pointer is implemented by surfaces that accept user manipulation. When
// the surface is a Pointer, edits go through it the way a mouse would and
// reach the engine as surface events; otherwise the engine is called
// directly.
type Pointer interface {
	Modify(id string, fields domain.Fields) error
	Remove(id string) bool
	Select(id string)
	BeginTextEdit(id string) error
	Type(text string) error
	EndTextEdit()
}

// Sessions opens and stores editing sessions.
type Sessions interface {
	OpenSession(ctx context.Context, id string, target domain.Size, surface driven.RenderSurface) (*services.Session, error)
	SaveSession(ctx context.Context, id string, session *services.Session, metadata map[string]any) (*domain.SaveResult, error)
}

// View edits one card.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	cards      Sessions
	target     domain.Size
	newSurface func() driven.RenderSurface

	ctx     context.Context
	id      string
	session *services.Session
	surface driven.RenderSurface
	pointer Pointer

	cursor   int
	typing   string
	input    *input.TextInput
	status   *status.Bar
	notice   string
	unsaved  bool
	leaving  bool
	err      error
	width    int
	height   int
}

// NewView creates a new editor view.
func NewView(s *styles.Styles, cards Sessions, target domain.Size, newSurface func() driven.RenderSurface) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	km := keymap.DefaultKeyMap()
	return &View{
		styles:     s,
		keymap:     km,
		cards:      cards,
		target:     target,
		newSurface: newSurface,
		ctx:        context.Background(),
		input:      input.NewTextInput(s),
		status:     status.NewBar(s, km),
		width:      80,
		height:     24,
	}
}

// Open returns a command that opens card id on a fresh surface.
func (v *View) Open(ctx context.Context, id string) tea.Cmd {
	v.Close()
	v.ctx = ctx
	v.id = id
	v.surface = v.newSurface()
	v.pointer, _ = v.surface.(Pointer)
	surface := v.surface
	return func() tea.Msg {
		session, err := v.cards.OpenSession(ctx, id, v.target, surface)
		return messages.SessionOpened{ID: id, Session: session, Err: err}
	}
}

// Close releases the session.
func (v *View) Close() {
	if v.session != nil {
		v.session.Close()
	}
	v.session = nil
	v.surface = nil
	v.pointer = nil
	v.cursor = 0
	v.typing = ""
	v.notice = ""
	v.unsaved = false
	v.leaving = false
	v.err = nil
	v.status.Clear()
}

// Update handles messages for the editor view.
//
//nolint:gocyclo // one branch per key binding
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SessionOpened:
		if msg.ID != v.id {
			if msg.Session != nil {
				msg.Session.Close()
			}
			return v, nil
		}
		if msg.Err != nil {
			v.fail(msg.Err)
			return v, nil
		}
		v.session = msg.Session
		v.status.SetState(status.StateEditing)
		v.refresh("")
		return v, nil

	case messages.CardSaved:
		if msg.Err != nil {
			v.fail(msg.Err)
			return v, nil
		}
		v.id = msg.Result.ID
		v.unsaved = false
		v.status.SetState(status.StateEditing)
		text := "Saved"
		if msg.Result.Degraded {
			text = "Saved as image only: " + msg.Result.Warning
		}
		v.refresh(text)
		return v, nil

	case tea.KeyMsg:
		if v.typing != "" {
			return v.updateTyping(msg)
		}
		return v.updateKey(msg)
	}

	if v.typing != "" {
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *View) updateKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	k := msg.String()

	if keymap.Matches(k, v.keymap.Back) {
		if v.unsaved && !v.leaving && v.session != nil {
			v.leaving = true
			v.status.SetMessage("Unsaved changes: esc again to discard, s to save")
			return v, nil
		}
		v.Close()
		return v, func() tea.Msg { return messages.ViewChanged{View: messages.ViewCards} }
	}
	v.leaving = false

	if v.session == nil {
		return v, nil
	}
	editor := v.session.Editor()

	var err error
	switch {
	case keymap.Matches(k, v.keymap.Up):
		v.moveCursor(-1)
	case keymap.Matches(k, v.keymap.Down):
		v.moveCursor(1)
	case keymap.Matches(k, v.keymap.MoveLeft):
		err = v.nudge(-nudge, 0)
	case keymap.Matches(k, v.keymap.MoveRight):
		err = v.nudge(nudge, 0)
	case keymap.Matches(k, v.keymap.MoveUp):
		err = v.nudge(0, -nudge)
	case keymap.Matches(k, v.keymap.MoveDown):
		err = v.nudge(0, nudge)
	case keymap.Matches(k, v.keymap.Grow):
		err = v.resize(1.1)
	case keymap.Matches(k, v.keymap.Shrink):
		err = v.resize(1 / 1.1)
	case keymap.Matches(k, v.keymap.AddText):
		return v, v.addText()
	case keymap.Matches(k, v.keymap.EditText):
		return v, v.beginTyping()
	case keymap.Matches(k, v.keymap.Duplicate):
		err = v.withSelected(func(p domain.Primitive) error {
			id, err := editor.Duplicate(p.ID)
			if id != "" {
				v.selectID(id)
			}
			return err
		})
	case keymap.Matches(k, v.keymap.Front):
		err = v.withSelected(func(p domain.Primitive) error {
			_, err := editor.BringToFront(p.ID)
			return err
		})
	case keymap.Matches(k, v.keymap.Delete):
		err = v.remove()
	case keymap.Matches(k, v.keymap.Undo):
		_, err = editor.Undo(v.ctx)
	case keymap.Matches(k, v.keymap.Redo):
		_, err = editor.Redo(v.ctx)
	case keymap.Matches(k, v.keymap.NextSlide):
		err = v.switchSlide(v.session.Active() + 1)
	case keymap.Matches(k, v.keymap.PrevSlide):
		err = v.switchSlide(v.session.Active() - 1)
	case keymap.Matches(k, v.keymap.AddSlide):
		var i int
		if i, err = v.session.AddSlide(""); err == nil {
			v.unsaved = true
			err = v.switchSlide(i)
		}
	case keymap.Matches(k, v.keymap.Save):
		return v, v.save()
	default:
		return v, nil
	}

	if err != nil {
		v.fail(err)
		return v, nil
	}
	v.status.SetState(status.StateEditing)
	v.refresh("")
	return v, nil
}

func (v *View) updateTyping(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		v.finishTyping(true)
		return v, nil
	case tea.KeyEsc:
		v.finishTyping(false)
		return v, nil
	case tea.KeyCtrlC:
		return v, nil
	}
	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// objects returns the slide's primitives in paint order.
func (v *View) objects() []domain.Primitive {
	if v.session == nil {
		return nil
	}
	return v.session.Editor().Scene().Ordered()
}

// Selected returns the primitive under the cursor.
func (v *View) Selected() (domain.Primitive, bool) {
	objs := v.objects()
	if v.cursor < 0 || v.cursor >= len(objs) {
		return domain.Primitive{}, false
	}
	return objs[v.cursor], true
}

func (v *View) moveCursor(delta int) {
	n := len(v.objects())
	v.cursor += delta
	if v.cursor >= n {
		v.cursor = n - 1
	}
	if v.cursor < 0 {
		v.cursor = 0
	}
	if p, ok := v.Selected(); ok {
		v.selectID(p.ID)
	}
}

func (v *View) selectID(id string) {
	for i, p := range v.objects() {
		if p.ID == id {
			v.cursor = i
		}
	}
	if v.pointer != nil {
		v.pointer.Select(id)
		return
	}
	v.session.Editor().Select(id)
}

// withSelected runs fn on the selected primitive unless it is locked.
func (v *View) withSelected(fn func(p domain.Primitive) error) error {
	p, ok := v.Selected()
	if !ok {
		return nil
	}
	if p.Frozen() {
		v.notice = p.ID + " is locked"
		return nil
	}
	v.unsaved = true
	return fn(p)
}

// modify applies a user manipulation to the selected primitive.
func (v *View) modify(fields func(p domain.Primitive) domain.Fields) error {
	return v.withSelected(func(p domain.Primitive) error {
		f := fields(p)
		if v.pointer != nil {
			return v.pointer.Modify(p.ID, f)
		}
		_, err := v.session.Editor().Update(p.ID, f)
		return err
	})
}

func (v *View) nudge(dx, dy float64) error {
	return v.modify(func(p domain.Primitive) domain.Fields {
		f := domain.Fields{"left": p.Left + dx, "top": p.Top + dy}
		if p.Kind == domain.KindLine {
			f["x1"], f["x2"] = p.X1+dx, p.X2+dx
			f["y1"], f["y2"] = p.Y1+dy, p.Y2+dy
		}
		return f
	})
}

func (v *View) resize(factor float64) error {
	return v.modify(func(p domain.Primitive) domain.Fields {
		return domain.Fields{"scaleX": p.ScaleX * factor, "scaleY": p.ScaleY * factor}
	})
}

func (v *View) remove() error {
	return v.withSelected(func(p domain.Primitive) error {
		if v.pointer != nil && v.pointer.Remove(p.ID) {
			return nil
		}
		_, err := v.session.Editor().Remove(p.ID)
		return err
	})
}

func (v *View) addText() tea.Cmd {
	size := v.session.Editor().Scene().Size()
	id, err := v.session.Editor().Insert(domain.NewText("Text", size.Width/10, size.Height/10, 32))
	if err != nil {
		v.fail(err)
		return nil
	}
	v.unsaved = true
	v.selectID(id)
	return v.beginTyping()
}

func (v *View) beginTyping() tea.Cmd {
	p, ok := v.Selected()
	if !ok || p.Kind != domain.KindText {
		v.notice = "select a text object to edit"
		v.refresh("")
		return nil
	}
	if p.Frozen() {
		v.notice = p.ID + " is locked"
		v.refresh("")
		return nil
	}
	if v.pointer != nil {
		if err := v.pointer.BeginTextEdit(p.ID); err != nil {
			v.fail(err)
			return nil
		}
	}
	v.typing = p.ID
	v.status.SetState(status.StateTyping)
	return v.input.Start(p.ID, p.Text)
}

// finishTyping leaves text editing. The engine records the edit as one
// history entry.
func (v *View) finishTyping(apply bool) {
	id := v.typing
	text := v.input.Stop()
	v.typing = ""

	var err error
	switch {
	case v.pointer != nil:
		if apply {
			err = v.pointer.Type(text)
		}
		v.pointer.EndTextEdit()
	case apply:
		_, err = v.session.Editor().Update(id, domain.Fields{"text": text})
	}
	if err != nil {
		v.fail(err)
		return
	}
	if apply {
		v.unsaved = true
	}
	v.status.SetState(status.StateEditing)
	v.refresh("")
}

func (v *View) switchSlide(i int) error {
	if i < 0 || i >= v.session.Len() || i == v.session.Active() {
		return nil
	}
	if err := v.session.SwitchTo(v.ctx, i); err != nil {
		return err
	}
	v.cursor = 0
	return nil
}

// save stores the card synchronously, since the session must not be used
// from another goroutine, and reports through a message.
func (v *View) save() tea.Cmd {
	v.status.SetState(status.StateSaving)
	result, err := v.cards.SaveSession(v.ctx, v.id, v.session, nil)
	return func() tea.Msg {
		return messages.CardSaved{Result: result, Err: err}
	}
}

func (v *View) fail(err error) {
	v.err = err
	v.status.SetState(status.StateError)
	v.status.SetMessage(err.Error())
}

func (v *View) refresh(message string) {
	if v.session == nil {
		return
	}
	past, future := v.session.Editor().HistoryDepth()
	v.status.SetHistory(past, future)
	if message == "" {
		message, v.notice = v.notice, ""
	}
	if message == "" {
		message = v.session.Names()[v.session.Active()]
	}
	v.status.SetMessage(message)
}

// View renders the editor.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Card " + v.id))
	b.WriteString("\n\n")

	if v.session == nil {
		if v.err != nil {
			b.WriteString(v.styles.Error.Render("Could not open card: " + v.err.Error()))
		} else {
			b.WriteString(v.styles.Muted.Render("Opening..."))
		}
		b.WriteString("\n\n")
		b.WriteString(v.status.View())
		return b.String()
	}

	b.WriteString(v.renderTabs())
	b.WriteString("\n\n")

	scene := v.session.Editor().Scene()
	b.WriteString(v.styles.Muted.Render(fmt.Sprintf("%gx%g  background %s", scene.Width, scene.Height, scene.Background)))
	b.WriteString("\n\n")

	objs := v.objects()
	if len(objs) == 0 {
		b.WriteString(v.styles.Muted.Render("Empty slide. Press t to add text."))
		b.WriteString("\n")
	}
	for i, p := range objs {
		b.WriteString(v.renderObject(i, p))
		b.WriteString("\n")
	}

	if v.typing != "" {
		b.WriteString("\n")
		b.WriteString(v.input.View())
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(v.status.View())
	return b.String()
}

func (v *View) renderTabs() string {
	names := v.session.Names()
	tabs := make([]string, len(names))
	for i, name := range names {
		if i == v.session.Active() {
			tabs[i] = v.styles.ActiveTab.Render(name)
		} else {
			tabs[i] = v.styles.Tab.Render(name)
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

func (v *View) renderObject(i int, p domain.Primitive) string {
	indicator := "  "
	if i == v.cursor {
		indicator = "> "
	}
	line := fmt.Sprintf("%s%-10s %-6s %s", indicator, short(p.ID, 10), p.Kind, summary(p))
	switch {
	case i == v.cursor:
		return v.styles.Selected.Render(line)
	case p.Frozen():
		return v.styles.Locked.Render(line + " (locked)")
	default:
		return v.styles.Normal.Render(line)
	}
}

func summary(p domain.Primitive) string {
	pos := fmt.Sprintf("@%g,%g", p.Left, p.Top)
	switch p.Kind {
	case domain.KindText:
		return fmt.Sprintf("%s %q", pos, short(strings.ReplaceAll(p.Text, "\n", " "), 30))
	case domain.KindImage:
		return fmt.Sprintf("%s %s", pos, short(p.Src, 30))
	case domain.KindCircle:
		return fmt.Sprintf("%s r=%g", pos, p.Radius)
	case domain.KindRect, domain.KindLine:
	}
	return fmt.Sprintf("%s %gx%g", pos, p.Width*p.ScaleX, p.Height*p.ScaleY)
}

func short(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.status.SetWidth(width)
	v.input.SetWidth(width)
}

// Session returns the open session, or nil.
func (v *View) Session() *services.Session {
	return v.session
}

// ID returns the card being edited.
func (v *View) ID() string {
	return v.id
}

// Typing reports whether a text edit is in progress.
func (v *View) Typing() bool {
	return v.typing != ""
}

// Unsaved reports whether there are edits since the last save.
func (v *View) Unsaved() bool {
	return v.unsaved
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}

