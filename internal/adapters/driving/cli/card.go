package cli

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/core/ports/driven"
	"github.com/custodia-labs/cardstudio/internal/interchange"
)

var cardCmd = &cobra.Command{
	Use:   "card",
	Short: "Manage stored cards",
	Long:  `List, create, import, export or delete stored cards.`,
}

var cardListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored cards",
	Args:  cobra.NoArgs,
	RunE:  runCardList,
}

var cardShowCmd = &cobra.Command{
	Use:   "show [card-id]",
	Short: "Show a card's slides and objects",
	Args:  cobra.ExactArgs(1),
	RunE:  runCardShow,
}

var cardNewCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a card from a template",
	Long: `Create a new card from a template and store it.

Templates live in ~/.cardstudio/templates and can be edited or added to.
Use "cardstudio card templates" to list them.`,
	Args: cobra.NoArgs,
	RunE: runCardNew,
}

var cardTemplatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List card templates",
	Args:  cobra.NoArgs,
	RunE:  runCardTemplates,
}

var cardImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Store a card from a document file",
	Long: `Store a card from a JSON document. Plain documents, split envelopes and
multi-slide decks are accepted. Use --id to replace an existing card.`,
	Args: cobra.ExactArgs(1),
	RunE: runCardImport,
}

var cardExportCmd = &cobra.Command{
	Use:   "export [card-id]",
	Short: "Write a card's document or image to a file",
	Long: `Write a stored card to a file.

With --png the stored preview is written, or a fresh render when --width and
--height are given. Otherwise the editable document is written, fitted to
--width and --height when given. With --split the document is written as a
vector part and a metadata part, the form "card import" also reads.`,
	Args: cobra.ExactArgs(1),
	RunE: runCardExport,
}

var cardDeleteCmd = &cobra.Command{
	Use:   "delete [card-id]",
	Short: "Delete a stored card",
	Args:  cobra.ExactArgs(1),
	RunE:  runCardDelete,
}

// Flags for card subcommands.
var (
	cardTemplate string
	cardTitle    string
	cardID       string
	cardOutput   string
	cardPNG      bool
	cardSplit    bool
	cardWidth    float64
	cardHeight   float64
)

func init() {
	cardNewCmd.Flags().StringVarP(&cardTemplate, "template", "t", driven.TemplateBlank, "Template to start from")
	cardNewCmd.Flags().StringVar(&cardTitle, "title", "", "Card title")
	addSizeFlags(cardNewCmd)

	cardImportCmd.Flags().StringVar(&cardID, "id", "", "Replace the card with this ID")
	cardImportCmd.Flags().StringVar(&cardTitle, "title", "", "Card title")

	cardExportCmd.Flags().StringVarP(&cardOutput, "output", "o", "", "Output file (default stdout)")
	cardExportCmd.Flags().BoolVar(&cardPNG, "png", false, "Export the image instead of the document")
	cardExportCmd.Flags().BoolVar(&cardSplit, "split", false, "Write the document as separate vector and metadata parts")
	addSizeFlags(cardExportCmd)

	cardCmd.AddCommand(cardListCmd)
	cardCmd.AddCommand(cardShowCmd)
	cardCmd.AddCommand(cardNewCmd)
	cardCmd.AddCommand(cardTemplatesCmd)
	cardCmd.AddCommand(cardImportCmd)
	cardCmd.AddCommand(cardExportCmd)
	cardCmd.AddCommand(cardDeleteCmd)
	rootCmd.AddCommand(cardCmd)
}

func addSizeFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&cardWidth, "width", 0, "Target width in pixels")
	cmd.Flags().Float64Var(&cardHeight, "height", 0, "Target height in pixels")
}

func flagSize() domain.Size {
	return domain.Size{Width: cardWidth, Height: cardHeight}
}

func requireCards() error {
	if cardService == nil {
		return errors.New("card service not configured")
	}
	return nil
}

func runCardList(cmd *cobra.Command, _ []string) error {
	if err := requireCards(); err != nil {
		return err
	}

	cards, err := cardService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list cards: %w", err)
	}

	if len(cards) == 0 {
		cmd.Println("No cards stored.")
		return nil
	}

	cmd.Println("Cards:")
	cmd.Println()
	for _, c := range cards {
		title := c.Title
		if title == "" {
			title = "(untitled)"
		}
		cmd.Printf("  %s\n", c.ID)
		cmd.Printf("    Title: %s\n", title)
		cmd.Printf("    Updated: %s\n", c.UpdatedAt.Local().Format("2006-01-02 15:04"))
		if c.Degraded {
			cmd.Println("    Image only: not re-editable")
		}
		cmd.Println()
	}

	cmd.Printf("Total: %d cards\n", len(cards))
	return nil
}

func runCardShow(cmd *cobra.Command, args []string) error {
	if err := requireCards(); err != nil {
		return err
	}

	record, err := cardService.Get(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to get card: %w", err)
	}

	cmd.Printf("Card: %s\n", record.ID)
	cmd.Printf("  Created: %s\n", record.CreatedAt.Local().Format("2006-01-02 15:04"))
	cmd.Printf("  Updated: %s\n", record.UpdatedAt.Local().Format("2006-01-02 15:04"))
	cmd.Printf("  Preview: %d bytes\n", len(record.Raster))
	printMetadata(cmd, record.Metadata)

	if record.Degraded || len(record.Vector) == 0 {
		cmd.Println()
		cmd.Println("This card was stored as an image only and has no editable document.")
		return nil
	}

	slides, err := cardService.LoadDeck(cmd.Context(), record.ID)
	if err != nil {
		return fmt.Errorf("failed to decode card: %w", err)
	}
	for i, sl := range slides {
		cmd.Println()
		cmd.Printf("[%d] %s (%gx%g)\n", i+1, sl.Name, sl.Scene.Width, sl.Scene.Height)
		for _, p := range sl.Scene.Ordered() {
			cmd.Printf("    %-12s %-6s %s\n", p.ID, p.Kind, describe(p))
		}
	}
	return nil
}

func runCardNew(cmd *cobra.Command, _ []string) error {
	if err := requireCards(); err != nil {
		return err
	}

	target := flagSize()
	if !target.Valid() {
		target = engineSettings.Target
	}
	scene, err := cardService.FromTemplate(cardTemplate, target)
	if err != nil {
		return fmt.Errorf("failed to create card: %w", err)
	}

	result, err := cardService.Save(cmd.Context(), "", scene, titleMetadata(cardTitle))
	if err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}
	cmd.Printf("Created card %s from template %q\n", result.ID, cardTemplate)
	return nil
}

func runCardTemplates(cmd *cobra.Command, _ []string) error {
	if err := requireCards(); err != nil {
		return err
	}

	names, err := cardService.Templates()
	if err != nil {
		return fmt.Errorf("failed to list templates: %w", err)
	}
	cmd.Println("Templates:")
	for _, name := range names {
		cmd.Printf("  %s\n", name)
	}
	return nil
}

func runCardImport(cmd *cobra.Command, args []string) error {
	if err := requireCards(); err != nil {
		return err
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	slides, err := interchange.DecodeDeck(data)
	if err != nil {
		return fmt.Errorf("failed to decode %s: %w", args[0], err)
	}

	var result *domain.SaveResult
	if len(slides) == 1 {
		result, err = cardService.Save(cmd.Context(), cardID, slides[0].Scene, titleMetadata(cardTitle))
	} else {
		result, err = cardService.SaveDeck(cmd.Context(), cardID, slides, 0, titleMetadata(cardTitle))
	}
	if err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}

	printSaveResult(cmd, result)
	return nil
}

func runCardExport(cmd *cobra.Command, args []string) error {
	if err := requireCards(); err != nil {
		return err
	}

	ctx := cmd.Context()
	id := args[0]
	target := flagSize()

	if cardPNG && cardSplit {
		return errors.New("--png and --split cannot be combined")
	}

	var data []byte
	switch {
	case cardPNG && !target.Valid():
		record, err := cardService.Get(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to get card: %w", err)
		}
		data = record.Raster
	case cardPNG:
		scene, err := cardService.Load(ctx, id, target)
		if err != nil {
			return fmt.Errorf("failed to load card: %w", err)
		}
		if data, err = cardService.Render(ctx, scene); err != nil {
			return fmt.Errorf("failed to render card: %w", err)
		}
	default:
		var err error
		if data, err = exportDocument(cmd, id, target); err != nil {
			return err
		}
	}

	return writeOutput(cmd, cardOutput, data)
}

// exportDocument returns the card's document. Decks are written whole unless
// a target size asks for the fitted first slide.
func exportDocument(cmd *cobra.Command, id string, target domain.Size) ([]byte, error) {
	ctx := cmd.Context()
	if target.Valid() {
		scene, err := cardService.Load(ctx, id, target)
		if err != nil {
			return nil, fmt.Errorf("failed to load card: %w", err)
		}
		return marshalScene(scene)
	}
	slides, err := cardService.LoadDeck(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load card: %w", err)
	}
	if len(slides) == 1 {
		return marshalScene(slides[0].Scene)
	}
	if cardSplit {
		return nil, fmt.Errorf("card %s has %d slides; --split needs --width and --height to pick the first", id, len(slides))
	}
	return interchange.EncodeDeck(slides)
}

func marshalScene(scene *domain.Scene) ([]byte, error) {
	if cardSplit {
		return interchange.MarshalEnvelope(scene)
	}
	return interchange.Marshal(scene)
}

func runCardDelete(cmd *cobra.Command, args []string) error {
	if err := requireCards(); err != nil {
		return err
	}

	if err := cardService.Delete(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("failed to delete card: %w", err)
	}
	cmd.Printf("Deleted card %s\n", args[0])
	return nil
}

// Helper functions.

func titleMetadata(title string) map[string]any {
	if title == "" {
		return nil
	}
	return map[string]any{"title": title}
}

func printSaveResult(cmd *cobra.Command, result *domain.SaveResult) {
	cmd.Printf("Saved card %s\n", result.ID)
	if result.Degraded {
		cmd.Printf("Warning: %s\n", result.Warning)
	}
}

func printMetadata(cmd *cobra.Command, metadata map[string]any) {
	if len(metadata) == 0 {
		return
	}
	keys := make([]string, 0, len(metadata))
	for k := range metadata {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	cmd.Println("  Metadata:")
	for _, k := range keys {
		cmd.Printf("    %s: %v\n", k, metadata[k])
	}
}

func describe(p domain.Primitive) string {
	var b strings.Builder
	fmt.Fprintf(&b, "at %g,%g", p.Left, p.Top)
	switch p.Kind {
	case domain.KindText:
		text := strings.ReplaceAll(p.Text, "\n", " ")
		if len(text) > 40 {
			text = text[:37] + "..."
		}
		fmt.Fprintf(&b, " %q size %g", text, p.FontSize)
	case domain.KindRect, domain.KindImage:
		fmt.Fprintf(&b, " %gx%g", p.Width, p.Height)
	case domain.KindCircle:
		fmt.Fprintf(&b, " r=%g", p.Radius)
	case domain.KindLine:
		fmt.Fprintf(&b, " to %g,%g", p.X2, p.Y2)
	}
	if p.Frozen() {
		b.WriteString(" (locked)")
	}
	return b.String()
}

func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	cmd.PrintErrf("Wrote %s (%d bytes)\n", path, len(data))
	return nil
}
