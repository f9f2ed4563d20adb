package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/cardstudio/internal/adapters/driven/config/file"
	"github.com/custodia-labs/cardstudio/internal/adapters/driven/imagehost/local"
	"github.com/custodia-labs/cardstudio/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/core/services"
	"github.com/custodia-labs/cardstudio/internal/logger"
)

// stubRasteriser implements driven.Rasteriser and encodes the scene size.
type stubRasteriser struct{}

func (stubRasteriser) Rasterise(_ context.Context, scene *domain.Scene) ([]byte, error) {
	return []byte(fmt.Sprintf("PNG %gx%g", scene.Width, scene.Height)), nil
}

// testEnv holds the adapters behind the configured services.
type testEnv struct {
	store    *memory.CardStore
	config   *memory.ConfigStore
	imageDir string
	dir      string
}

// setupTestServices configures every command with memory adapters and
// restores the package state when the test ends.
func setupTestServices(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		store:    memory.NewCardStore(),
		config:   memory.NewConfigStore(),
		imageDir: filepath.Join(t.TempDir(), "images"),
		dir:      t.TempDir(),
	}
	host, err := local.New(env.imageDir, 100)
	require.NoError(t, err)

	settings := domain.DefaultEngineSettings()
	cards := services.NewCardService(env.store, stubRasteriser{}, host, settings)
	templates, err := file.NewTemplateStore(filepath.Join(t.TempDir(), "templates"))
	require.NoError(t, err)
	cards.SetTemplateStore(templates)

	Configure(Config{
		Cards:    cards,
		Settings: services.NewSettingsService(env.config),
		Engine:   settings,
	})

	t.Cleanup(func() {
		Configure(Config{Engine: domain.DefaultEngineSettings()})
		resetFlags(rootCmd)
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		logger.SetVerbose(false)
	})
	return env
}

// resetFlags returns every flag to its default so commands sharing flag
// variables do not leak values between tests.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// execute runs rootCmd with args and returns what it printed.
func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	out := new(bytes.Buffer)
	errOut := new(bytes.Buffer)
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		resetFlags(rootCmd)
	}()

	err = rootCmd.Execute()
	return out.String(), errOut.String(), err
}

// writeDocument writes a document file into the test directory.
func (e *testEnv) writeDocument(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// saveCard stores a card with a text "title" and a locked "frame".
func (e *testEnv) saveCard(t *testing.T) string {
	t.Helper()
	scene := domain.NewScene(800, 600)
	title := domain.NewText("Hello", 100, 100, 40)
	title.ID = "title"
	title.ZIndex = 1
	frame := domain.NewRect(0, 0, 800, 600)
	frame.ID = "frame"
	frame.ZIndex = 0
	frame.Selectable = false
	frame.Evented = false
	scene.Primitives = []domain.Primitive{frame, title}

	result, err := cardService.Save(context.Background(), "", scene, map[string]any{"title": "Greeting"})
	require.NoError(t, err)
	return result.ID
}

func TestRootCmd_Use(t *testing.T) {
	assert.Equal(t, "cardstudio", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage)
}

func TestRootCmd_VerboseFlag(t *testing.T) {
	setupTestServices(t)

	flag := rootCmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, flag)
	assert.Equal(t, "v", flag.Shorthand)

	_, _, err := execute(t, "--verbose", "version")
	require.NoError(t, err)
	assert.True(t, logger.IsVerbose())
}

func TestRootCmd_SubcommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"card", "edit", "render", "remap", "watch", "upload", "settings", "tui", "mcp", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestConfigure_DefaultsSurface(t *testing.T) {
	setupTestServices(t)

	Configure(Config{})

	require.NotNil(t, newSurface)
	assert.NotNil(t, newSurface())
}

func TestCommands_RequireServices(t *testing.T) {
	Configure(Config{Engine: domain.DefaultEngineSettings()})
	defer resetFlags(rootCmd)

	_, _, err := execute(t, "card", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "card service not configured")

	_, _, err = execute(t, "settings", "show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings service not configured")
}
