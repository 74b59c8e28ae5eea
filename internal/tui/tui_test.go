package tui

import (
	"context"
	"errors"
	"image"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/handiism/cat-gallery/internal/config"
)

type stubSearcher struct {
	urls []string
	err  error
}

func (s stubSearcher) Search(ctx context.Context, limit int) ([]string, error) {
	return s.urls, s.err
}

type stubPreloader struct{}

func (stubPreloader) Preload(ctx context.Context, url string) (image.Image, error) {
	return image.NewRGBA(image.Rect(0, 0, 4, 4)), nil
}

func newTestModel(t *testing.T, settings *config.Settings, s stubSearcher) Model {
	t.Helper()
	if settings == nil {
		settings = config.DefaultSettings()
	}
	m := NewModel(Deps{Settings: settings, Searcher: s, Preloader: stubPreloader{}})
	t.Cleanup(m.cancel)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return updated.(Model)
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// loadBatch runs a load-more command synchronously and applies the result.
func loadBatch(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	msg := cmd()
	updated, _ := m.Update(msg)
	updated, _ = updated.Update(boardChangedMsg{})
	return updated.(Model)
}

func TestModel_LoadMoreRendersCounter(t *testing.T) {
	m := newTestModel(t, nil, stubSearcher{urls: []string{"a", "b"}})

	updated, cmd := m.Update(keyMsg("l"))
	m = loadBatch(t, updated.(Model), cmd)

	view := m.View()
	if !strings.Contains(view, "Cats displayed: 2") {
		t.Errorf("view missing counter:\n%s", view)
	}
	if !strings.Contains(view, "Beautiful Cat 2 from API") {
		t.Errorf("view missing entry caption:\n%s", view)
	}
	if !strings.Contains(view, "View More Cats") {
		t.Errorf("load-more button should be idle:\n%s", view)
	}
}

func TestModel_FailedSearchShowsFallbacks(t *testing.T) {
	settings := config.DefaultSettings()
	settings.BatchSize = 3
	m := newTestModel(t, settings, stubSearcher{err: errors.New("offline")})

	updated, cmd := m.Update(keyMsg("l"))
	m = loadBatch(t, updated.(Model), cmd)

	if got := len(m.snap.Entries); got != 3 {
		t.Errorf("entries = %d, want 3", got)
	}
	if !strings.Contains(m.View(), "Cats displayed: 3") {
		t.Errorf("view missing counter:\n%s", m.View())
	}
}

func TestModel_RefreshResetsGallery(t *testing.T) {
	m := newTestModel(t, nil, stubSearcher{urls: []string{"a", "b"}})

	updated, cmd := m.Update(keyMsg("l"))
	m = loadBatch(t, updated.(Model), cmd)
	updated, cmd = m.Update(keyMsg("l"))
	m = loadBatch(t, updated.(Model), cmd)
	if m.snap.Count != 4 {
		t.Fatalf("Count = %d, want 4", m.snap.Count)
	}

	updated, cmd = m.Update(keyMsg("r"))
	m = updated.(Model)
	if !m.refreshing {
		t.Error("refresh button should show the busy label")
	}
	m = loadBatch(t, m, cmd)

	if m.refreshing {
		t.Error("refresh button should be idle after the reset batch")
	}
	if m.snap.Count != 2 || len(m.snap.Entries) != 2 {
		t.Errorf("count=%d entries=%d, want 2/2", m.snap.Count, len(m.snap.Entries))
	}
}

func TestModel_Lightbox(t *testing.T) {
	m := newTestModel(t, nil, stubSearcher{urls: []string{"https://cdn.test/a.jpg"}})

	// Nothing to open yet
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if updated.(Model).state != StateGallery {
		t.Fatal("lightbox should not open on an empty gallery")
	}

	updated, cmd := m.Update(keyMsg("l"))
	m = loadBatch(t, updated.(Model), cmd)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	if m.state != StateLightbox {
		t.Fatal("enter should open the lightbox")
	}
	if !strings.Contains(m.View(), "https://cdn.test/a.jpg") {
		t.Errorf("lightbox should show the source URL:\n%s", m.View())
	}

	// Load more is ignored while the lightbox is open
	if _, cmd := m.Update(keyMsg("l")); cmd != nil {
		t.Error("keys other than close should be ignored in the lightbox")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if updated.(Model).state != StateGallery {
		t.Error("esc should close the lightbox")
	}
}

func TestModel_SelectionClamps(t *testing.T) {
	m := newTestModel(t, nil, stubSearcher{urls: []string{"a", "b", "c"}})
	updated, cmd := m.Update(keyMsg("l"))
	m = loadBatch(t, updated.(Model), cmd)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	if got := updated.(Model).selected; got != 0 {
		t.Errorf("selected = %d, want 0", got)
	}

	for i := 0; i < 5; i++ {
		updated, _ = updated.Update(tea.KeyMsg{Type: tea.KeyRight})
	}
	if got := updated.(Model).selected; got != 2 {
		t.Errorf("selected = %d, want 2", got)
	}
}

func TestModel_InfiniteScroll(t *testing.T) {
	settings := config.DefaultSettings()
	settings.InfiniteScroll = true
	m := newTestModel(t, settings, stubSearcher{urls: []string{"a"}})

	// Empty gallery never auto-loads
	updated, _ := m.Update(scrollCheckMsg{Seq: m.scrollSeq})
	if updated.(Model).loader.Count() != 0 {
		t.Fatal("scroll check must not load into an empty gallery")
	}

	updated, cmd := m.Update(keyMsg("l"))
	m = loadBatch(t, updated.(Model), cmd)

	// Moving the selection schedules a debounced check
	updated, cmd = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("scrolling should schedule a check")
	}

	// A stale check is ignored
	if _, cmd := m.Update(scrollCheckMsg{Seq: m.scrollSeq - 1}); cmd != nil {
		t.Error("stale scroll check should do nothing")
	}

	// The current check loads more: one short row is always near the bottom
	_, cmd = m.Update(scrollCheckMsg{Seq: m.scrollSeq})
	if cmd == nil {
		t.Fatal("scroll check near the bottom should load more")
	}
	if msg, ok := cmd().(batchDoneMsg); !ok || !msg.Ran {
		t.Errorf("expected a batch to run, got %#v", msg)
	}
	if m.loader.Count() != 2 {
		t.Errorf("Count = %d, want 2", m.loader.Count())
	}
}

func TestModel_InfiniteScrollDisabled(t *testing.T) {
	m := newTestModel(t, nil, stubSearcher{urls: []string{"a"}})
	updated, cmd := m.Update(keyMsg("l"))
	m = loadBatch(t, updated.(Model), cmd)

	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyDown}); cmd != nil {
		t.Error("no scroll check should be scheduled when infinite scroll is off")
	}
}

func TestModel_Quit(t *testing.T) {
	m := newTestModel(t, nil, stubSearcher{})
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
	if m.ctx.Err() == nil {
		t.Error("quitting should cancel in-flight work")
	}
}
