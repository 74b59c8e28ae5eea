package gallery

import (
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/handiism/cat-gallery/internal/catapi"
	"github.com/handiism/cat-gallery/internal/model"
	"golang.org/x/sync/errgroup"
)

// DefaultBatchSize is used when a batch is requested with a non-positive count.
const DefaultBatchSize = 8

// State is the Loader's lifecycle state.
type State int

const (
	StateIdle State = iota
	StateLoading
)

// Searcher fetches an ordered list of image URLs. *catapi.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, limit int) ([]string, error)
}

// Preloader fetches and decodes one image.
type Preloader interface {
	Preload(ctx context.Context, url string) (image.Image, error)
}

// Options configures a Loader.
type Options struct {
	// BatchSize is the default number of images per batch.
	BatchSize int

	// MaxConcurrentLoads bounds parallel preloads within a batch.
	// Zero or negative means unbounded.
	MaxConcurrentLoads int

	// FallbackBaseURL is the host used for fallback image URLs.
	FallbackBaseURL string

	// Logger receives diagnostics. Nil discards them.
	Logger *slog.Logger

	// OnProgress receives user-facing progress events. May be nil.
	OnProgress func(ProgressEvent)

	// Now returns the current time; used to stamp fallback URLs.
	Now func() time.Time
}

// Batch describes one completed fetch-and-render cycle.
type Batch struct {
	ID        string
	Requested int
	Rendered  int

	// SearchFailed is true when the endpoint failed and fallback URLs were
	// rendered instead.
	SearchFailed bool

	// FailedImages counts entries that ended up as fallbacks.
	FailedImages int
}

// Loader fetches batches of images and renders them into a View.
//
// At most one batch is in flight at a time. Requests arriving while a batch
// runs are dropped, not queued. Every failure is absorbed into fallback
// imagery; nothing surfaces to the caller as an error.
//
// Example usage:
//
//	board := gallery.NewBoard(nil)
//	loader := gallery.NewLoader(catapi.NewClient(httpClient, endpoint), preloader, board, gallery.Options{
//	    BatchSize:       8,
//	    FallbackBaseURL: "https://picsum.photos",
//	})
//
//	loader.RequestBatch(ctx, 0) // loads the default batch size
//	loader.Reset(ctx)           // clears the board and loads a fresh batch
type Loader struct {
	searcher  Searcher
	preloader Preloader
	view      View
	opts      Options
	logger    *slog.Logger

	mu        sync.Mutex
	state     State
	displayed int
}

// NewLoader creates a Loader rendering into view.
func NewLoader(searcher Searcher, preloader Preloader, view View, opts Options) *Loader {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Loader{
		searcher:  searcher,
		preloader: preloader,
		view:      view,
		opts:      opts,
		logger:    logger.With("component", "gallery"),
	}
}

// Count returns the number of images displayed since the last reset.
func (l *Loader) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.displayed
}

// IsLoading reports whether a batch is in flight.
func (l *Loader) IsLoading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == StateLoading
}

// RequestBatch fetches count images and renders them, blocking until every
// entry of the batch is rendered. A non-positive count uses the default
// batch size.
//
// If a batch is already in flight the call does nothing and returns false.
func (l *Loader) RequestBatch(ctx context.Context, count int) (Batch, bool) {
	if !l.begin() {
		l.logger.Debug("batch request dropped, already loading")
		return Batch{}, false
	}
	return l.run(ctx, count), true
}

// Reset clears the view, zeroes the counter and loads one fresh batch of the
// default size. It returns false without touching anything if a batch is in
// flight.
func (l *Loader) Reset(ctx context.Context) (Batch, bool) {
	if !l.begin() {
		l.logger.Debug("reset dropped, already loading")
		return Batch{}, false
	}

	l.mu.Lock()
	l.displayed = 0
	l.mu.Unlock()
	l.view.Clear()
	l.logger.Info("gallery reset")

	return l.run(ctx, l.opts.BatchSize), true
}

// begin performs the Idle -> Loading transition.
func (l *Loader) begin() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state == StateLoading {
		return false
	}
	l.state = StateLoading
	return true
}

// run executes one batch. The caller must hold the Loading state.
func (l *Loader) run(ctx context.Context, count int) (batch Batch) {
	if count <= 0 {
		count = l.opts.BatchSize
	}
	batch = Batch{ID: uuid.NewString(), Requested: count}
	logger := l.logger.With("batch", batch.ID)

	defer func() {
		l.mu.Lock()
		l.displayed += batch.Rendered
		total := l.displayed
		l.mu.Unlock()

		l.view.SetCount(total)
		l.view.SetBusy(false)

		l.mu.Lock()
		l.state = StateIdle
		l.mu.Unlock()

		logger.Info("batch finished",
			"rendered", batch.Rendered,
			"failed_images", batch.FailedImages,
			"total", total)
	}()

	l.view.SetBusy(true)
	l.progress(ProgressEvent{Message: fmt.Sprintf("Fetching %d cat images...", count), Level: LevelInfo})

	urls, err := l.searcher.Search(ctx, count)
	if err != nil {
		logger.Warn("image search failed, using fallback images", "error", err, "count", count)
		l.progress(ProgressEvent{Message: fmt.Sprintf("Image search failed: %v", err), Level: LevelWarning})
		urls = catapi.FallbackURLs(l.opts.FallbackBaseURL, count, l.opts.Now())
		batch.SearchFailed = true
	}

	base := l.Count()
	entries := make([]*model.ImageEntry, len(urls))
	for i, u := range urls {
		entries[i] = model.NewImageEntry(u, base+i+1)
	}

	placeholders := make([]*model.ImageEntry, len(entries))
	for i, e := range entries {
		placeholders[i] = e.Clone()
	}
	l.view.Append(placeholders)
	batch.Rendered = len(entries)

	batch.FailedImages = l.preloadAll(ctx, logger, entries)

	l.progress(ProgressEvent{
		Message: fmt.Sprintf("Loaded %d new cat images. Total: %d", batch.Rendered, base+batch.Rendered),
		Level:   LevelSuccess,
	})
	return batch
}

// preloadAll resolves every entry concurrently and returns how many fell
// back. Entries are independent; completion order is unspecified.
func (l *Loader) preloadAll(ctx context.Context, logger *slog.Logger, entries []*model.ImageEntry) int {
	var g errgroup.Group
	if l.opts.MaxConcurrentLoads > 0 {
		g.SetLimit(l.opts.MaxConcurrentLoads)
	}

	var failed int32
	for _, entry := range entries {
		entry := entry
		g.Go(func() error {
			if !l.preloadOne(ctx, logger, entry) {
				atomic.AddInt32(&failed, 1)
			}
			return nil
		})
	}
	g.Wait()

	return int(failed)
}

func (l *Loader) preloadOne(ctx context.Context, logger *slog.Logger, entry *model.ImageEntry) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("image preload panicked", "index", entry.DisplayIndex, "url", entry.SourceURL, "panic", r)
			entry.Fail(catapi.FallbackURL(l.opts.FallbackBaseURL, entry.DisplayIndex))
			ok = false
		}
		l.view.Update(entry.Clone())
	}()

	img, err := l.preloader.Preload(ctx, entry.SourceURL)
	if err != nil {
		logger.Warn("failed to load cat image", "index", entry.DisplayIndex, "url", entry.SourceURL, "error", err)
		l.progress(ProgressEvent{Message: fmt.Sprintf("Failed to load cat image %d", entry.DisplayIndex), Level: LevelVerbose})
		entry.Fail(catapi.FallbackURL(l.opts.FallbackBaseURL, entry.DisplayIndex))
		return false
	}

	entry.Resolve(img)
	logger.Debug("image loaded", "index", entry.DisplayIndex, "url", entry.SourceURL)
	return true
}

func (l *Loader) progress(event ProgressEvent) {
	if l.opts.OnProgress != nil {
		l.opts.OnProgress(event)
	}
}
