// Package cli implements the cardstudio command line on top of cobra.
//
// Commands read their dependencies from package state set by Configure, so
// tests can swap in memory adapters before executing rootCmd.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/cardstudio/internal/adapters/driven/surface/headless"
	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/core/ports/driven"
	"github.com/custodia-labs/cardstudio/internal/core/ports/driving"
	"github.com/custodia-labs/cardstudio/internal/core/services"
	"github.com/custodia-labs/cardstudio/internal/logger"
)

// version is set at build time with -ldflags.
var version = "dev"

// Config holds the services the commands drive.
type Config struct {
	Cards    *services.CardService
	Settings driving.SettingsService
	Engine   domain.EngineSettings

	// NewSurface returns the surface editing commands work on.
	// Defaults to a headless surface.
	NewSurface func() driven.RenderSurface
}

var (
	cardService     *services.CardService
	settingsService driving.SettingsService
	engineSettings  = domain.DefaultEngineSettings()
	newSurface      = defaultSurface
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "cardstudio",
	Short: "Edit, render and store cards",
	Long: `cardstudio edits layered cards made of text, shapes, images and lines.

Cards are stored locally with a PNG preview and an editable document, can be
rendered at any resolution and edited with undo and redo from the terminal.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug output")
}

// Configure sets the services used by every command.
func Configure(cfg Config) {
	cardService = cfg.Cards
	settingsService = cfg.Settings
	engineSettings = cfg.Engine
	newSurface = cfg.NewSurface
	if newSurface == nil {
		newSurface = defaultSurface
	}
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func defaultSurface() driven.RenderSurface {
	return headless.New()
}
