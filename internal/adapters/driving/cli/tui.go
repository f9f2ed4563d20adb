package cli

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cardstudio/internal/adapters/driving/tui"
)

// tuiCmd represents the tui command.
var tuiCmd = &cobra.Command{
	Use:   "tui [card-id]",
	Short: "Launch the interactive card editor",
	Long: `Launch the interactive terminal editor.

Cards are listed on start; pass a card ID to open it directly.

Controls:
  ↑/k, ↓/j       - Select card or object
  H/J/K/L        - Move the selected object
  +/-            - Grow / shrink
  t, e           - Add / edit text
  u, ctrl+r      - Undo / redo
  [, ], a        - Previous / next / add slide
  s              - Save
  Esc            - Back
  ?              - Help
  q              - Quit`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
			err = fmt.Errorf("TUI panicked: %v", r)
		}
	}()

	ports := &tui.Ports{
		Target:     engineSettings.Target,
		NewSurface: newSurface,
	}
	if cardService != nil {
		ports.Cards = cardService
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}
	app.WithContext(cmd.Context())
	if len(args) == 1 {
		app.WithCard(args[0])
	}

	if err := app.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
