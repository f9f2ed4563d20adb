package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/core/services"
	"github.com/custodia-labs/cardstudio/internal/interchange"
)

var renderCmd = &cobra.Command{
	Use:   "render [file]",
	Short: "Render a document file to PNG",
	Long: `Render a JSON document to a PNG image without storing it.

The document is fitted to --width and --height when given, otherwise it is
rendered at its own size.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

var remapCmd = &cobra.Command{
	Use:   "remap [file]",
	Short: "Fit a document file to a new size",
	Long: `Scale every object of a JSON document so the layout fills a canvas of
--width by --height, and write the result. Background objects keep their
position and size.`,
	Args: cobra.ExactArgs(1),
	RunE: runRemap,
}

// Flags shared by render, remap and watch.
var (
	renderOutput string
	renderSlide  int
	renderWidth  float64
	renderHeight float64
)

func init() {
	for _, cmd := range []*cobra.Command{renderCmd, remapCmd} {
		cmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Output file (default stdout)")
		cmd.Flags().IntVar(&renderSlide, "slide", 1, "Slide of a deck to use (1-based)")
		cmd.Flags().Float64Var(&renderWidth, "width", 0, "Target width in pixels")
		cmd.Flags().Float64Var(&renderHeight, "height", 0, "Target height in pixels")
	}
	_ = remapCmd.MarkFlagRequired("width")
	_ = remapCmd.MarkFlagRequired("height")

	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(remapCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	if err := requireCards(); err != nil {
		return err
	}

	data, err := renderFile(cmd.Context(), args[0], renderSize(), renderSlide)
	if err != nil {
		return err
	}
	return writeOutput(cmd, renderOutput, data)
}

func runRemap(cmd *cobra.Command, args []string) error {
	target := renderSize()
	if !target.Valid() {
		return fmt.Errorf("%w: --width and --height must be positive", domain.ErrInvalidInput)
	}

	scene, err := readScene(args[0], renderSlide)
	if err != nil {
		return err
	}
	scale, err := services.NewRemapper(engineSettings.DefaultSource).Fit(scene, target)
	if err != nil {
		return fmt.Errorf("failed to remap: %w", err)
	}
	cmd.PrintErrf("Scaled by %.4g x %.4g\n", scale.X, scale.Y)

	data, err := interchange.Marshal(scene)
	if err != nil {
		return fmt.Errorf("failed to encode: %w", err)
	}
	return writeOutput(cmd, renderOutput, data)
}

func renderSize() domain.Size {
	return domain.Size{Width: renderWidth, Height: renderHeight}
}

// renderFile reads one slide of a document file, fits it to target when
// target is valid and rasterises it.
func renderFile(ctx context.Context, path string, target domain.Size, slide int) ([]byte, error) {
	scene, err := readScene(path, slide)
	if err != nil {
		return nil, err
	}
	if target.Valid() {
		if _, err := services.NewRemapper(engineSettings.DefaultSource).Fit(scene, target); err != nil {
			return nil, fmt.Errorf("failed to remap: %w", err)
		}
	}
	data, err := cardService.Render(ctx, scene)
	if err != nil {
		return nil, fmt.Errorf("failed to render %s: %w", path, err)
	}
	return data, nil
}

// readScene decodes slide (1-based) of a document file.
func readScene(path string, slide int) (*domain.Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	slides, err := interchange.DecodeDeck(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	if slide < 1 || slide > len(slides) {
		return nil, fmt.Errorf("%w: %s has %d slides", domain.ErrInvalidInput, path, len(slides))
	}
	return slides[slide-1].Scene, nil
}
