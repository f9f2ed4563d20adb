package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/oauth2"
	"golang.org/x/term"

	"github.com/custodia-labs/cardstudio/internal/adapters/driven/imagehost/gdrive"
	"github.com/custodia-labs/cardstudio/internal/adapters/driving/oauth"
	"github.com/custodia-labs/cardstudio/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the editor, canvas and image host settings.

Settings are stored in ~/.cardstudio/config.toml.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Change one setting",
	Long: `Change one setting. Run "cardstudio settings keys" for the list of keys.

Examples:
  cardstudio settings set canvas.width 1080
  cardstudio settings set imagehost.type gdrive`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsDriveCmd = &cobra.Command{
	Use:   "drive",
	Short: "Configure the Google Drive image host",
	Long: `Configure Google Drive as the image host.

You need an OAuth client ID and secret from the Google Cloud console and a
refresh token for the drive.file scope. Secrets are read without echo.

With --browser the refresh token is obtained by signing in to Google in the
browser instead of being pasted.`,
	Args: cobra.NoArgs,
	RunE: runSettingsDrive,
}

var settingsDriveBrowser bool

// authorize runs the browser sign-in; tests replace it.
var authorize = func(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	return oauth.Authorize(ctx, cfg, oauth.OpenBrowser)
}

func init() {
	settingsDriveCmd.Flags().BoolVar(&settingsDriveBrowser, "browser", false, "Sign in with the browser to get the refresh token")
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsDriveCmd)
	rootCmd.AddCommand(settingsCmd)
}

func requireSettings() error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	return nil
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Editor]")
	cmd.Printf("  History limit: %d\n", settings.HistoryLimit)
	cmd.Printf("  Duplicate offset: %g\n", settings.DuplicateOffset)
	cmd.Println()

	cmd.Println("[Canvas]")
	cmd.Printf("  Size: %gx%g\n", settings.Target.Width, settings.Target.Height)
	cmd.Printf("  Default source size: %gx%g\n", settings.DefaultSource.Width, settings.DefaultSource.Height)
	cmd.Println()

	cmd.Println("[Image Host]")
	cmd.Printf("  Type: %s\n", settings.ImageHost)
	cmd.Printf("  Uploads per second: %g\n", settings.UploadsPerSecond)
	switch settings.ImageHost {
	case domain.ImageHostLocal:
		dir := settings.ImageDir
		if dir == "" {
			dir = "~/.cardstudio/images"
		}
		cmd.Printf("  Directory: %s\n", dir)
	case domain.ImageHostDrive:
		d := settings.Drive
		cmd.Printf("  Folder: %s\n", orNotSet(d.FolderID))
		cmd.Printf("  Client ID: %s\n", orNotSet(d.ClientID))
		cmd.Printf("  Client secret: %s\n", maskSecret(d.ClientSecret))
		cmd.Printf("  Refresh token: %s\n", maskSecret(d.RefreshToken))
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s\n", args[0])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsDrive(cmd *cobra.Command, _ []string) error {
	if err := requireSettings(); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	reader := bufio.NewReader(cmd.InOrStdin())
	d := &settings.Drive

	cmd.Println("Google Drive Image Host")
	cmd.Println("-----------------------")
	cmd.Printf("Folder ID [%s]: ", d.FolderID)
	if v := readLine(reader); v != "" {
		d.FolderID = v
	}
	cmd.Printf("Client ID [%s]: ", d.ClientID)
	if v := readLine(reader); v != "" {
		d.ClientID = v
	}
	cmd.Print("Client secret (leave empty to keep): ")
	if v := readSecret(reader); v != "" {
		d.ClientSecret = v
	}
	cmd.Println()
	if settingsDriveBrowser {
		cmd.Println("Opening the browser to sign in to Google...")
		token, err := authorize(cmd.Context(), gdrive.OAuthConfig(*d))
		if err != nil {
			return fmt.Errorf("failed to authorise: %w", err)
		}
		d.RefreshToken = token.RefreshToken
	} else {
		cmd.Print("Refresh token (leave empty to keep): ")
		if v := readSecret(reader); v != "" {
			d.RefreshToken = v
		}
		cmd.Println()
	}

	settings.ImageHost = domain.ImageHostDrive
	if err := settingsService.Save(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		return nil
	}
	cmd.Println("Google Drive image host configured.")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// readSecret reads without echo when stdin is a terminal and falls back to
// a plain line otherwise.
func readSecret(reader *bufio.Reader) string {
	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(secret))
		}
	}
	return readLine(reader)
}

func maskSecret(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 8 {
		return "****"
	}
	return secret[:4] + "..." + secret[len(secret)-4:]
}

func orNotSet(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}
