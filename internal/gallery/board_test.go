package gallery

import (
	"sync/atomic"
	"testing"

	"github.com/handiism/cat-gallery/internal/model"
)

func TestBoard_AppendKeepsOrder(t *testing.T) {
	board := NewBoard(nil)
	board.Append([]*model.ImageEntry{
		model.NewImageEntry("a", 1),
		model.NewImageEntry("b", 2),
	})
	board.Append([]*model.ImageEntry{model.NewImageEntry("c", 3)})

	entries := board.Snapshot().Entries
	for i, want := range []string{"a", "b", "c"} {
		if entries[i].SourceURL != want {
			t.Errorf("entries[%d] = %q, want %q", i, entries[i].SourceURL, want)
		}
	}
}

func TestBoard_UpdateSwapsByDisplayIndex(t *testing.T) {
	board := NewBoard(nil)
	board.Append([]*model.ImageEntry{
		model.NewImageEntry("a", 1),
		model.NewImageEntry("b", 2),
	})

	swapped := model.NewImageEntry("b", 2)
	swapped.Fail("fallback")
	board.Update(swapped)
	board.Update(model.NewImageEntry("ghost", 99))

	entries := board.Snapshot().Entries
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[1].SourceURL != "fallback" || entries[1].Status != model.StatusFallback {
		t.Errorf("entries[1] = %+v", entries[1])
	}
	if entries[0].Status != model.StatusPlaceholder {
		t.Errorf("entries[0] should be untouched, got %v", entries[0].Status)
	}
}

func TestBoard_ClearZeroesCounter(t *testing.T) {
	board := NewBoard(nil)
	board.Append([]*model.ImageEntry{model.NewImageEntry("a", 1)})
	board.SetCount(1)
	board.Clear()

	snap := board.Snapshot()
	if len(snap.Entries) != 0 || snap.Count != 0 {
		t.Errorf("after Clear entries=%d count=%d", len(snap.Entries), snap.Count)
	}

	// Indexes restart after a clear
	board.Append([]*model.ImageEntry{model.NewImageEntry("x", 1)})
	updated := model.NewImageEntry("x", 1)
	updated.Fail("y")
	board.Update(updated)
	if got := board.Snapshot().Entries[0].SourceURL; got != "y" {
		t.Errorf("SourceURL = %q, want %q", got, "y")
	}
}

func TestBoard_SnapshotIsACopy(t *testing.T) {
	board := NewBoard(nil)
	board.Append([]*model.ImageEntry{model.NewImageEntry("a", 1)})

	snap := board.Snapshot()
	snap.Entries[0].SourceURL = "mutated"

	if got := board.Snapshot().Entries[0].SourceURL; got != "a" {
		t.Errorf("board entry changed through snapshot: %q", got)
	}
}

func TestBoard_OnChangeAndVersion(t *testing.T) {
	var changes int32
	board := NewBoard(func() { atomic.AddInt32(&changes, 1) })

	board.SetBusy(true)
	board.SetCount(3)
	board.SetBusy(false)

	if changes != 3 {
		t.Errorf("onChange called %d times, want 3", changes)
	}
	if v := board.Snapshot().Version; v != 3 {
		t.Errorf("Version = %d, want 3", v)
	}
}
