package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/handiism/cat-gallery/internal/catapi"
	"github.com/handiism/cat-gallery/internal/config"
	"github.com/handiism/cat-gallery/internal/gallery"
	"github.com/handiism/cat-gallery/internal/http"
	ioutils "github.com/handiism/cat-gallery/internal/io"
	"github.com/handiism/cat-gallery/internal/logging"
	"github.com/handiism/cat-gallery/internal/tui"
)

func main() {
	configFlag := flag.String("config", "", "Path to config file")
	scrollFlag := flag.Bool("infinite-scroll", false, "Load more cats when scrolling near the bottom")
	flag.Parse()

	if err := run(*configFlag, *scrollFlag); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, infiniteScroll bool) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if infiniteScroll {
		settings.InfiniteScroll = true
	}

	logger, closer, err := logging.Setup(settings.LogFile, settings.LogLevel)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = logging.Null()
	} else {
		defer closer.Close()
	}
	logger.Info("starting cat gallery", "api", settings.APIURL, "batch_size", settings.BatchSize)

	client := http.NewClient(settings.Timeout(), settings.APIKey)

	return tui.Run(tui.Deps{
		Settings:  settings,
		Searcher:  catapi.NewClient(client, settings.APIURL),
		Preloader: gallery.NewHTTPPreloader(client, ioutils.NewImageService(), settings.ThumbnailWidth, settings.ThumbnailHeight),
		Logger:    logger,
	})
}
