// Command cardstudio edits, renders and stores cards.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/custodia-labs/cardstudio/internal/adapters/driven/config/file"
	"github.com/custodia-labs/cardstudio/internal/adapters/driven/imagehost"
	"github.com/custodia-labs/cardstudio/internal/adapters/driven/raster"
	"github.com/custodia-labs/cardstudio/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/cardstudio/internal/adapters/driving/cli"
	"github.com/custodia-labs/cardstudio/internal/core/ports/driven"
	"github.com/custodia-labs/cardstudio/internal/core/services"
	"github.com/custodia-labs/cardstudio/internal/logger"
)

// version is set at build time with -ldflags "-X main.version=...".
var version string

func main() {
	closeStore, err := setup()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	err = cli.Execute()
	closeStore()
	if err != nil {
		// cobra has already printed the error.
		os.Exit(1)
	}
}

// setup wires the adapters into the CLI and returns a func releasing them.
func setup() (func(), error) {
	ctx := context.Background()

	configStore, err := file.NewConfigStore("")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}

	store, err := sqlite.NewStore("")
	if err != nil {
		return nil, fmt.Errorf("opening card store: %w", err)
	}

	// A broken image host only disables uploads.
	var host driven.ImageHost
	if h, err := imagehost.New(ctx, *settings); err != nil {
		logger.Warn("image host unavailable: %v", err)
	} else {
		host = h
	}

	cards := services.NewCardService(store.CardStore(), raster.New(settings.DefaultSource, raster.NewDefaultLoader()), host, *settings)
	templates, err := file.NewTemplateStore("")
	if err != nil {
		logger.Warn("templates unavailable: %v", err)
	} else {
		cards.SetTemplateStore(templates)
	}

	cli.Configure(cli.Config{
		Cards:    cards,
		Settings: settingsService,
		Engine:   *settings,
	})
	cli.SetVersion(version)
	return func() { _ = store.Close() }, nil
}
