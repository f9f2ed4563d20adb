package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/cardstudio/internal/core/domain"
	"github.com/custodia-labs/cardstudio/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Re-render a document file whenever it changes",
	Long: `Watch a JSON document and write a fresh PNG to --output every time the
file is saved. Bursts of saves are coalesced; at most one render happens per
--interval. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

var watchInterval time.Duration

func init() {
	watchCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Output PNG file")
	watchCmd.Flags().IntVar(&renderSlide, "slide", 1, "Slide of a deck to use (1-based)")
	watchCmd.Flags().Float64Var(&renderWidth, "width", 0, "Target width in pixels")
	watchCmd.Flags().Float64Var(&renderHeight, "height", 0, "Target height in pixels")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 500*time.Millisecond, "Minimum time between renders")
	_ = watchCmd.MarkFlagRequired("output")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if err := requireCards(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s (Ctrl+C to stop)\n", args[0])
	return watchFile(ctx, args[0], renderOutput, renderSize(), renderSlide, watchInterval, func(msg string) {
		cmd.Println(msg)
	})
}

// watchFile renders path to out once and again after every change until ctx
// is done. The parent directory is watched so editors that save by rename
// are seen too.
func watchFile(
	ctx context.Context,
	path, out string,
	target domain.Size,
	slide int,
	interval time.Duration,
	report func(string),
) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	limiter := rate.NewLimiter(rate.Every(interval), 1)
	render := func() {
		data, err := renderFile(ctx, abs, target, slide)
		if err != nil {
			logger.Warn("watch: %v", err)
			report(fmt.Sprintf("Render failed: %v", err))
			return
		}
		if err := os.WriteFile(out, data, 0600); err != nil {
			report(fmt.Sprintf("Write failed: %v", err))
			return
		}
		report(fmt.Sprintf("Rendered %s (%d bytes)", out, len(data)))
	}

	limiter.Allow()
	render()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !touches(ev, abs) {
				continue
			}
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
			drain(watcher.Events)
			render()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)
		}
	}
}

// touches reports whether ev changed the contents of the file at abs.
func touches(ev fsnotify.Event, abs string) bool {
	if filepath.Clean(ev.Name) != abs {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)
}

// drain discards events queued while waiting for the limiter.
func drain(events <-chan fsnotify.Event) {
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		default:
			return
		}
	}
}
