package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/handiism/cat-gallery/internal/config"
	"github.com/handiism/cat-gallery/internal/gallery"
	"github.com/handiism/cat-gallery/internal/model"
)

type fakeDownloader struct {
	mu       sync.Mutex
	data     []byte
	failures map[string]int // url -> remaining failures
	calls    map[string]int
}

func (f *fakeDownloader) attempt(url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.calls == nil {
		f.calls = map[string]int{}
	}
	f.calls[url]++
	if f.failures[url] > 0 {
		f.failures[url]--
		return errors.New("connection reset")
	}
	return nil
}

func (f *fakeDownloader) DownloadBytes(ctx context.Context, url string) ([]byte, error) {
	if err := f.attempt(url); err != nil {
		return nil, err
	}
	return f.data, nil
}

func (f *fakeDownloader) DownloadFile(ctx context.Context, url, destPath string, onProgress func(written, total int64)) error {
	if err := f.attempt(url); err != nil {
		return err
	}
	if err := os.WriteFile(destPath, f.data, 0644); err != nil {
		return err
	}
	if onProgress != nil {
		total := int64(len(f.data))
		onProgress(total/2, total)
		onProgress(total, total)
	}
	return nil
}

func loadedEntry(url string, index int) *model.ImageEntry {
	e := model.NewImageEntry(url, index)
	e.Resolve(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	return e
}

func testSettings() *config.Settings {
	s := config.DefaultSettings()
	s.SaveMaxRetries = 3
	s.MaxConcurrentLoads = 2
	return s
}

func newTestSaver(settings *config.Settings, d Downloader) *Saver {
	s := NewSaver(settings, d, nil, nil)
	s.sleep = func(context.Context, time.Duration) {}
	return s
}

func pngData(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestSaver_SavesLoadedEntriesOnly(t *testing.T) {
	dir := t.TempDir()
	fallback := model.NewImageEntry("https://cdn.test/c.jpg", 3)
	fallback.Fail("https://picsum.photos/300/300?fallback=3")

	entries := []*model.ImageEntry{
		loadedEntry("https://cdn.test/a.png", 1),
		model.NewImageEntry("https://cdn.test/b.png", 2),
		fallback,
	}

	saver := newTestSaver(testSettings(), &fakeDownloader{data: pngData(t)})
	result, err := saver.Save(context.Background(), dir, entries)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if result.Saved != 1 || result.Skipped != 2 || result.Failed != 0 {
		t.Errorf("result = %+v", result)
	}
	want := filepath.Join(dir, "cat-001.jpg")
	if len(result.Paths) != 1 || result.Paths[0] != want {
		t.Errorf("Paths = %v, want [%s]", result.Paths, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("expected file %s: %v", want, err)
	}
}

func TestSaver_RetriesThenSucceeds(t *testing.T) {
	dl := &fakeDownloader{
		data:     pngData(t),
		failures: map[string]int{"https://cdn.test/a.png": 2},
	}

	result, err := newTestSaver(testSettings(), dl).Save(context.Background(), t.TempDir(), []*model.ImageEntry{
		loadedEntry("https://cdn.test/a.png", 1),
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if result.Saved != 1 {
		t.Errorf("Saved = %d, want 1", result.Saved)
	}
	if dl.calls["https://cdn.test/a.png"] != 3 {
		t.Errorf("calls = %d, want 3", dl.calls["https://cdn.test/a.png"])
	}
}

func TestSaver_FailureDoesNotStopOthers(t *testing.T) {
	dl := &fakeDownloader{
		data:     pngData(t),
		failures: map[string]int{"https://cdn.test/bad.png": 10},
	}

	result, err := newTestSaver(testSettings(), dl).Save(context.Background(), t.TempDir(), []*model.ImageEntry{
		loadedEntry("https://cdn.test/bad.png", 1),
		loadedEntry("https://cdn.test/good.png", 2),
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if result.Saved != 1 || result.Failed != 1 {
		t.Errorf("result = %+v, want 1 saved 1 failed", result)
	}
}

func TestSaver_KeepsOriginalFormat(t *testing.T) {
	settings := testSettings()
	settings.ConvertSavedToJPEG = false
	settings.FileNameFormat = "{name}"
	dir := t.TempDir()

	result, err := newTestSaver(settings, &fakeDownloader{data: []byte("raw")}).Save(context.Background(), dir, []*model.ImageEntry{
		loadedEntry("https://cdn.test/images/abc.gif?x=1", 1),
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	want := filepath.Join(dir, "abc.gif")
	if len(result.Paths) != 1 || result.Paths[0] != want {
		t.Errorf("Paths = %v, want [%s]", result.Paths, want)
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		format string
		url    string
		index  int
		want   string
	}{
		{"cat-{index}", "https://cdn.test/a.jpg", 7, "cat-007"},
		{"{name}", "https://cdn.test/images/MTY3ODIyMQ.jpg", 1, "MTY3ODIyMQ"},
		{"{index} {name}", "https://picsum.photos/300/300?fallback=2", 2, "002 300"},
		{"cat:{index}", "https://cdn.test/a.jpg", 1, "cat_001"},
		{"...", "https://cdn.test/a.jpg", 4, "cat-4"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := FileName(tt.format, model.NewImageEntry(tt.url, tt.index))
			if got != tt.want {
				t.Errorf("FileName(%q) = %q, want %q", tt.format, got, tt.want)
			}
		})
	}
}

func TestSaver_StreamsOriginalFormatWithProgress(t *testing.T) {
	settings := testSettings()
	settings.ConvertSavedToJPEG = false
	dir := t.TempDir()
	dl := &fakeDownloader{
		data:     []byte("GIF89a.."),
		failures: map[string]int{"https://cdn.test/a.gif": 1},
	}

	var mu sync.Mutex
	var messages []string
	saver := NewSaver(settings, dl, nil, func(e gallery.ProgressEvent) {
		mu.Lock()
		defer mu.Unlock()
		if e.Level == gallery.LevelVerbose {
			messages = append(messages, e.Message)
		}
	})
	saver.sleep = func(context.Context, time.Duration) {}

	result, err := saver.Save(context.Background(), dir, []*model.ImageEntry{
		loadedEntry("https://cdn.test/a.gif", 1),
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	want := filepath.Join(dir, "cat-001.gif")
	if len(result.Paths) != 1 || result.Paths[0] != want {
		t.Fatalf("Paths = %v, want [%s]", result.Paths, want)
	}
	got, err := os.ReadFile(want)
	if err != nil || string(got) != "GIF89a.." {
		t.Errorf("file content = %q, %v", got, err)
	}
	if dl.calls["https://cdn.test/a.gif"] != 2 {
		t.Errorf("calls = %d, want 2", dl.calls["https://cdn.test/a.gif"])
	}

	wantMessages := []string{"Downloading cat 1: 50%", "Downloading cat 1: 100%", "Saved: cat-001.gif"}
	if strings.Join(messages, "|") != strings.Join(wantMessages, "|") {
		t.Errorf("verbose events = %v, want %v", messages, wantMessages)
	}
}

func TestSaver_RemovesPartialFileAfterFailure(t *testing.T) {
	settings := testSettings()
	settings.ConvertSavedToJPEG = false
	dir := t.TempDir()
	dl := &fakeDownloader{failures: map[string]int{"https://cdn.test/a.png": 10}}

	result, err := newTestSaver(settings, dl).Save(context.Background(), dir, []*model.ImageEntry{
		loadedEntry("https://cdn.test/a.png", 1),
	})
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if result.Failed != 1 {
		t.Errorf("Failed = %d, want 1", result.Failed)
	}
	if _, err := os.Stat(filepath.Join(dir, "cat-001.png")); !os.IsNotExist(err) {
		t.Errorf("expected no file after failure, stat err = %v", err)
	}
}
