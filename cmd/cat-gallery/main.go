package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/handiism/cat-gallery/internal/catapi"
	"github.com/handiism/cat-gallery/internal/config"
	"github.com/handiism/cat-gallery/internal/export"
	"github.com/handiism/cat-gallery/internal/gallery"
	"github.com/handiism/cat-gallery/internal/http"
	ioutils "github.com/handiism/cat-gallery/internal/io"
	"github.com/handiism/cat-gallery/internal/logging"
	"github.com/handiism/cat-gallery/internal/model"
)

func main() {
	// Command line flags
	var (
		configFlag  = flag.String("config", "", "Path to config file")
		countFlag   = flag.Int("count", 0, "Images per batch (overrides config)")
		batchesFlag = flag.Int("batches", 1, "Number of batches to load")
		saveFlag    = flag.String("save", "", "Directory to save loaded images to")
		apiFlag     = flag.String("api", "", "Image search endpoint (overrides config)")
		verboseFlag = flag.Bool("verbose", false, "Show verbose output")
	)

	flag.Parse()

	settings, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	// Apply flags
	if *countFlag > 0 {
		settings.BatchSize = *countFlag
	}
	if *apiFlag != "" {
		settings.APIURL = *apiFlag
	}

	logger, closer, err := logging.Setup(settings.LogFile, settings.LogLevel)
	if err != nil {
		logger = logging.Null()
	} else {
		defer closer.Close()
	}

	// Handle interrupts
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nInterrupted, cancelling...")
		cancel()
	}()

	onProgress := func(event gallery.ProgressEvent) {
		if event.Level == gallery.LevelVerbose && !*verboseFlag {
			return
		}

		prefix := ""
		switch event.Level {
		case gallery.LevelError:
			prefix = "❌ "
		case gallery.LevelWarning:
			prefix = "⚠️  "
		case gallery.LevelSuccess:
			prefix = "✅ "
		case gallery.LevelInfo:
			prefix = "ℹ️  "
		default:
			prefix = "   "
		}

		fmt.Println(prefix + event.Message)
	}

	client := http.NewClient(settings.Timeout(), settings.APIKey)
	board := gallery.NewBoard(nil)
	loader := gallery.NewLoader(
		catapi.NewClient(client, settings.APIURL),
		gallery.NewHTTPPreloader(client, ioutils.NewImageService(), settings.ThumbnailWidth, settings.ThumbnailHeight),
		board,
		gallery.Options{
			BatchSize:          settings.BatchSize,
			MaxConcurrentLoads: settings.MaxConcurrentLoads,
			FallbackBaseURL:    settings.FallbackBaseURL,
			Logger:             logger,
			OnProgress:         onProgress,
		},
	)

	fmt.Println("🐱 Cat Gallery")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	for i := 0; i < max(*batchesFlag, 1) && ctx.Err() == nil; i++ {
		loader.RequestBatch(ctx, settings.BatchSize)
	}

	snap := board.Snapshot()
	fmt.Println()
	for _, entry := range snap.Entries {
		marker := "✓"
		if entry.Status == model.StatusFallback {
			marker = "!"
		}
		fmt.Printf("%s %3d  %s\n", marker, entry.DisplayIndex, entry.SourceURL)
	}
	fmt.Println()
	fmt.Printf("Cats displayed: %d\n", snap.Count)

	if *saveFlag == "" {
		return
	}

	fmt.Println("\n📥 Saving images...")
	saver := export.NewSaver(settings, client, logger, onProgress)
	result, err := saver.Save(ctx, *saveFlag, snap.Entries)
	if err != nil {
		if ctx.Err() != nil {
			fmt.Println("\nSave cancelled.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error saving images: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("✨ Saved %d image(s) to %s (%d skipped, %d failed)\n", result.Saved, *saveFlag, result.Skipped, result.Failed)
}
