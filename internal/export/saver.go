package export

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/handiism/cat-gallery/internal/config"
	"github.com/handiism/cat-gallery/internal/gallery"
	ioutils "github.com/handiism/cat-gallery/internal/io"
	"github.com/handiism/cat-gallery/internal/model"
	"golang.org/x/sync/errgroup"
)

// Downloader fetches images either into memory or straight to disk.
// *http.Client from internal/http satisfies it.
type Downloader interface {
	DownloadBytes(ctx context.Context, url string) ([]byte, error)
	DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error
}

// Result summarizes a Save run.
type Result struct {
	Saved   int
	Skipped int
	Failed  int
	Paths   []string
}

// Saver writes gallery entries to a directory.
type Saver struct {
	settings   *config.Settings
	downloader Downloader
	images     *ioutils.ImageService
	logger     *slog.Logger
	onProgress func(gallery.ProgressEvent)
	sleep      func(ctx context.Context, d time.Duration)
}

// NewSaver creates a Saver. logger and onProgress may be nil.
func NewSaver(settings *config.Settings, d Downloader, logger *slog.Logger, onProgress func(gallery.ProgressEvent)) *Saver {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Saver{
		settings:   settings,
		downloader: d,
		images:     ioutils.NewImageService(),
		logger:     logger.With("component", "export"),
		onProgress: onProgress,
		sleep:      waitFor,
	}
}

// Save downloads every loaded entry into dir.
//
// Placeholder and fallback entries are skipped. Downloads run concurrently,
// bounded by MaxConcurrentLoads, and each is retried with exponential
// backoff. A failed entry does not stop the others; Save only returns an
// error if dir cannot be created or ctx is cancelled.
func (s *Saver) Save(ctx context.Context, dir string, entries []*model.ImageEntry) (Result, error) {
	if err := ioutils.EnsureDir(dir); err != nil {
		return Result{}, fmt.Errorf("failed to create export directory: %w", err)
	}

	g, ctx := errgroup.WithContext(ctx)
	if s.settings.MaxConcurrentLoads > 0 {
		g.SetLimit(s.settings.MaxConcurrentLoads)
	}

	paths := make([]string, len(entries))
	var saved, skipped, failed int32
	for i, entry := range entries {
		if entry.Status != model.StatusLoaded {
			skipped++
			continue
		}
		i, entry := i, entry
		g.Go(func() error {
			path, err := s.saveEntry(ctx, dir, entry)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				atomic.AddInt32(&failed, 1)
				s.logger.Warn("failed to save image", "index", entry.DisplayIndex, "url", entry.SourceURL, "error", err)
				s.progress(gallery.ProgressEvent{Message: fmt.Sprintf("Error saving cat %d: %v", entry.DisplayIndex, err), Level: gallery.LevelError})
				return nil // Continue with other entries
			}
			atomic.AddInt32(&saved, 1)
			paths[i] = path
			s.progress(gallery.ProgressEvent{Message: fmt.Sprintf("Saved: %s", filepath.Base(path)), Level: gallery.LevelVerbose})
			return nil
		})
	}

	err := g.Wait()

	result := Result{Saved: int(saved), Skipped: int(skipped), Failed: int(failed)}
	for _, p := range paths {
		if p != "" {
			result.Paths = append(result.Paths, p)
		}
	}
	return result, err
}

func (s *Saver) saveEntry(ctx context.Context, dir string, entry *model.ImageEntry) (string, error) {
	name := FileName(s.settings.FileNameFormat, entry)

	if !s.settings.ConvertSavedToJPEG {
		path := filepath.Join(dir, name+extensionOf(entry.SourceURL))
		err := s.withRetry(ctx, entry, func() error {
			return s.downloader.DownloadFile(ctx, entry.SourceURL, path, s.byteProgress(entry))
		})
		if err != nil {
			os.Remove(path)
			return "", err
		}
		return path, nil
	}

	var data []byte
	err := s.withRetry(ctx, entry, func() error {
		var err error
		data, err = s.downloader.DownloadBytes(ctx, entry.SourceURL)
		return err
	})
	if err != nil {
		return "", err
	}

	converted, err := s.images.ConvertToJPEG(ctx, data)
	if err != nil {
		return "", err
	}

	path := filepath.Join(dir, name+".jpg")
	if err := ioutils.WriteFile(ctx, path, converted); err != nil {
		return "", err
	}
	return path, nil
}

// withRetry runs download up to SaveMaxRetries times, backing off between
// attempts.
func (s *Saver) withRetry(ctx context.Context, entry *model.ImageEntry, download func() error) error {
	var err error
	tries := max(s.settings.SaveMaxRetries, 1)
	for try := 0; try < tries; try++ {
		if err = download(); err == nil {
			return nil
		}
		if try < tries-1 {
			s.progress(gallery.ProgressEvent{Message: fmt.Sprintf("Retry %d/%d for cat %d", try+1, tries, entry.DisplayIndex), Level: gallery.LevelWarning})
			s.sleep(ctx, s.settings.RetryDelay(try))
		}
	}
	return err
}

// byteProgress reports a streamed download in quarter steps. Downloads
// without a Content-Length report nothing.
func (s *Saver) byteProgress(entry *model.ImageEntry) func(written, total int64) {
	last := 0
	return func(written, total int64) {
		if total <= 0 {
			return
		}
		step := int(written*100/total) / 25 * 25
		if step <= last {
			return
		}
		last = step
		s.progress(gallery.ProgressEvent{Message: fmt.Sprintf("Downloading cat %d: %d%%", entry.DisplayIndex, step), Level: gallery.LevelVerbose})
	}
}

// FileName expands format for entry. Supported placeholders are {index}
// (zero-padded display index) and {name} (base name of the source URL
// without extension). The result is sanitized for the file system.
func FileName(format string, entry *model.ImageEntry) string {
	base := filepath.Base(strings.SplitN(entry.SourceURL, "?", 2)[0])
	name := strings.TrimSuffix(base, filepath.Ext(base))

	r := strings.NewReplacer(
		"{index}", fmt.Sprintf("%03d", entry.DisplayIndex),
		"{name}", name,
	)
	out := ioutils.SanitizeFileName(r.Replace(format))
	if out == "" {
		out = "cat-" + strconv.Itoa(entry.DisplayIndex)
	}
	return out
}

func extensionOf(url string) string {
	ext := strings.ToLower(filepath.Ext(strings.SplitN(url, "?", 2)[0]))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return ext
	default:
		return ".img"
	}
}

func waitFor(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

func (s *Saver) progress(event gallery.ProgressEvent) {
	if s.onProgress != nil {
		s.onProgress(event)
	}
}
