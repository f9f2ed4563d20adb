package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/core/services"
)

var editCmd = &cobra.Command{
	Use:   "edit [card-id]",
	Short: "Apply edits to a stored card",
	Long: `Open a stored card, apply edits and save it back.

Edits are applied in this order: additions, field changes, duplicates,
bring-to-front, removals, background, then undo and redo. Locked
background objects are never changed or removed.

Examples:
  cardstudio edit 3f2a --add-text "Hello" --set title.fill=#ff0000
  cardstudio edit 3f2a --slide 2 --remove logo --undo 1
  cardstudio edit 3f2a --set title.fontSize=48 --set title.left=120`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

// Flags for the edit command.
var (
	editSlide      int
	editAddText    []string
	editAddRect    []string
	editAddImage   []string
	editSet        []string
	editDuplicate  []string
	editFront      []string
	editRemove     []string
	editBackground string
	editUndo       int
	editRedo       int
	editAddSlide   string
)

func init() {
	f := editCmd.Flags()
	f.IntVar(&editSlide, "slide", 1, "Slide to edit (1-based)")
	f.StringArrayVar(&editAddText, "add-text", nil, "Add a text object")
	f.StringArrayVar(&editAddRect, "add-rect", nil, "Add a rectangle: left,top,width,height")
	f.StringArrayVar(&editAddImage, "add-image", nil, "Add an image: src,left,top,width,height")
	f.StringArrayVar(&editSet, "set", nil, "Set a field: object.field=value")
	f.StringArrayVar(&editDuplicate, "duplicate", nil, "Duplicate an object")
	f.StringArrayVar(&editFront, "front", nil, "Bring an object to the front")
	f.StringArrayVar(&editRemove, "remove", nil, "Remove an object")
	f.StringVar(&editBackground, "background", "", "Set the background colour")
	f.IntVar(&editUndo, "undo", 0, "Undo this many steps")
	f.IntVar(&editRedo, "redo", 0, "Redo this many steps")
	f.StringVar(&editAddSlide, "add-slide", "", "Append a slide with this name and edit it")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	if err := requireCards(); err != nil {
		return err
	}

	ctx := cmd.Context()
	id := args[0]

	session, err := cardService.OpenSession(ctx, id, engineSettings.Target, newSurface())
	if err != nil {
		return fmt.Errorf("failed to open card: %w", err)
	}
	defer session.Close()

	slide := editSlide - 1
	if editAddSlide != "" {
		if slide, err = session.AddSlide(editAddSlide); err != nil {
			return fmt.Errorf("failed to add slide: %w", err)
		}
	}
	if slide != session.Active() {
		if err := session.SwitchTo(ctx, slide); err != nil {
			return fmt.Errorf("failed to open slide %d: %w", editSlide, err)
		}
	}

	if err := applyEdits(cmd, session.Editor()); err != nil {
		return err
	}

	result, err := cardService.SaveSession(ctx, id, session, nil)
	if err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}
	past, future := session.Editor().HistoryDepth()
	cmd.Printf("History: %d undo, %d redo\n", past, future)
	printSaveResult(cmd, result)
	return nil
}

//nolint:gocyclo // one branch per flag
func applyEdits(cmd *cobra.Command, editor *services.Editor) error {
	ctx := cmd.Context()
	target := editor.Scene().Size()

	for _, text := range editAddText {
		p := domain.NewText(text, target.Width/10, target.Height/10, 32)
		id, err := editor.Insert(p)
		if err != nil {
			return fmt.Errorf("failed to add text: %w", err)
		}
		cmd.Printf("Added text %s\n", id)
	}
	for _, spec := range editAddRect {
		v, err := parseNumbers(spec, 4)
		if err != nil {
			return fmt.Errorf("invalid --add-rect %q: %w", spec, err)
		}
		id, err := editor.Insert(domain.NewRect(v[0], v[1], v[2], v[3]))
		if err != nil {
			return fmt.Errorf("failed to add rect: %w", err)
		}
		cmd.Printf("Added rect %s\n", id)
	}
	for _, spec := range editAddImage {
		src, rest, ok := strings.Cut(spec, ",")
		if !ok {
			return fmt.Errorf("invalid --add-image %q: want src,left,top,width,height", spec)
		}
		v, err := parseNumbers(rest, 4)
		if err != nil {
			return fmt.Errorf("invalid --add-image %q: %w", spec, err)
		}
		id, err := editor.Insert(domain.NewImage(src, v[0], v[1], v[2], v[3]))
		if err != nil {
			return fmt.Errorf("failed to add image: %w", err)
		}
		cmd.Printf("Added image %s\n", id)
	}

	updates, order, err := parseSets(editSet)
	if err != nil {
		return err
	}
	for _, id := range order {
		applied, err := editor.Update(id, updates[id])
		if err != nil {
			return fmt.Errorf("failed to update %s: %w", id, err)
		}
		if !applied {
			cmd.Printf("Skipped %s: not found or locked\n", id)
		}
	}

	for _, id := range editDuplicate {
		copyID, err := editor.Duplicate(id)
		if err != nil {
			return fmt.Errorf("failed to duplicate %s: %w", id, err)
		}
		if copyID == "" {
			cmd.Printf("Skipped duplicate of %s: not found or locked\n", id)
			continue
		}
		cmd.Printf("Duplicated %s as %s\n", id, copyID)
	}
	for _, id := range editFront {
		if _, err := editor.BringToFront(id); err != nil {
			return fmt.Errorf("failed to bring %s to front: %w", id, err)
		}
	}
	if len(editRemove) > 0 {
		n, err := editor.Remove(editRemove...)
		if err != nil {
			return fmt.Errorf("failed to remove: %w", err)
		}
		cmd.Printf("Removed %d objects\n", n)
	}
	if editBackground != "" {
		if err := editor.SetBackground(ctx, editBackground, editor.Scene().BackgroundImage); err != nil {
			return fmt.Errorf("failed to set background: %w", err)
		}
	}

	for i := 0; i < editUndo; i++ {
		ok, err := editor.Undo(ctx)
		if err != nil {
			return fmt.Errorf("undo failed: %w", err)
		}
		if !ok {
			break
		}
	}
	for i := 0; i < editRedo; i++ {
		ok, err := editor.Redo(ctx)
		if err != nil {
			return fmt.Errorf("redo failed: %w", err)
		}
		if !ok {
			break
		}
	}
	return nil
}

// parseSets groups "object.field=value" assignments by object, keeping the
// order objects first appear in so each object is one update.
func parseSets(sets []string) (map[string]domain.Fields, []string, error) {
	updates := make(map[string]domain.Fields)
	var order []string
	for _, s := range sets {
		path, raw, ok := strings.Cut(s, "=")
		if !ok {
			return nil, nil, fmt.Errorf("invalid --set %q: want object.field=value", s)
		}
		id, field, ok := strings.Cut(path, ".")
		if !ok || id == "" || field == "" {
			return nil, nil, fmt.Errorf("invalid --set %q: want object.field=value", s)
		}
		if _, seen := updates[id]; !seen {
			updates[id] = domain.Fields{}
			order = append(order, id)
		}
		updates[id][field] = parseValue(raw)
	}
	return updates, order, nil
}

// parseValue reads numbers, booleans, null and JSON strings as typed values
// and anything else as a plain string.
func parseValue(raw string) any {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err == nil {
		switch v.(type) {
		case float64, bool, string, nil:
			return v
		}
	}
	return raw
}

func parseNumbers(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("want %d comma-separated numbers", n)
	}
	out := make([]float64, n)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
