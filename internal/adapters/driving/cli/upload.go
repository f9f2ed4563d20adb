package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload [image]",
	Short: "Upload an image to the configured image host",
	Long: `Upload an image and print the URL it can be referenced by.

With --card and --object the image object of the stored card is pointed at
the uploaded image and the card is saved.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

var (
	uploadCard   string
	uploadObject string
	uploadSlide  int
)

func init() {
	uploadCmd.Flags().StringVar(&uploadCard, "card", "", "Card to update")
	uploadCmd.Flags().StringVar(&uploadObject, "object", "", "Image object to point at the upload")
	uploadCmd.Flags().IntVar(&uploadSlide, "slide", 1, "Slide of the card holding the object (1-based)")
	uploadCmd.MarkFlagsRequiredTogether("card", "object")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if err := requireCards(); err != nil {
		return err
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", args[0], err)
	}
	defer f.Close()

	ctx := cmd.Context()
	name := filepath.Base(args[0])

	if uploadCard == "" {
		asset, err := cardService.Upload(ctx, name, f)
		if err != nil {
			return fmt.Errorf("failed to upload: %w", err)
		}
		cmd.Printf("Uploaded %s\n", asset.URL)
		return nil
	}

	session, err := cardService.OpenSession(ctx, uploadCard, engineSettings.Target, newSurface())
	if err != nil {
		return fmt.Errorf("failed to open card: %w", err)
	}
	defer session.Close()

	if slide := uploadSlide - 1; slide != session.Active() {
		if err := session.SwitchTo(ctx, slide); err != nil {
			return fmt.Errorf("failed to open slide %d: %w", uploadSlide, err)
		}
	}

	asset, applied, err := cardService.UploadImage(ctx, session.Editor(), uploadObject, name, f)
	if err != nil {
		return fmt.Errorf("failed to upload: %w", err)
	}
	cmd.Printf("Uploaded %s\n", asset.URL)
	if !applied {
		cmd.Printf("Object %s not found on slide %d; card left unchanged\n", uploadObject, uploadSlide)
		return nil
	}

	result, err := cardService.SaveSession(ctx, uploadCard, session, nil)
	if err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}
	printSaveResult(cmd, result)
	return nil
}
