package gallery

import (
	"sync"

	"github.com/handiism/cat-gallery/internal/model"
)

// View is the rendering surface a Loader drives.
//
// Implementations must be safe for concurrent use: Update is called from
// preload goroutines. Entries passed in are owned by the view.
type View interface {
	// Append adds placeholder entries in the given order.
	Append(entries []*model.ImageEntry)

	// Update replaces the entry with the same DisplayIndex.
	Update(entry *model.ImageEntry)

	// SetCount shows the displayed-images counter.
	SetCount(n int)

	// Clear removes every entry and shows a zero counter as one step, so no
	// observer sees an empty container next to a stale count.
	Clear()

	// SetBusy toggles the load-more control between busy and idle.
	SetBusy(busy bool)
}

// Snapshot is a consistent copy of a Board's contents.
type Snapshot struct {
	Entries []*model.ImageEntry
	Count   int
	Busy    bool
	Version uint64
}

// Board is an in-memory View. Readers take Snapshots; every mutation bumps
// Version and invokes the change callback outside the lock.
//
// Example:
//
//	board := gallery.NewBoard(func() { program.Send(boardChangedMsg{}) })
//	loader := gallery.NewLoader(search, preloader, board, opts)
//	snap := board.Snapshot()
type Board struct {
	mu       sync.RWMutex
	entries  []*model.ImageEntry
	index    map[int]int // DisplayIndex -> position in entries
	count    int
	busy     bool
	version  uint64
	onChange func()
}

// NewBoard creates an empty Board. onChange may be nil.
func NewBoard(onChange func()) *Board {
	return &Board{
		index:    make(map[int]int),
		onChange: onChange,
	}
}

func (b *Board) mutate(fn func()) {
	b.mu.Lock()
	fn()
	b.version++
	b.mu.Unlock()

	if b.onChange != nil {
		b.onChange()
	}
}

// Append implements View.
func (b *Board) Append(entries []*model.ImageEntry) {
	b.mutate(func() {
		for _, e := range entries {
			b.index[e.DisplayIndex] = len(b.entries)
			b.entries = append(b.entries, e)
		}
	})
}

// Update implements View. Unknown indexes are ignored.
func (b *Board) Update(entry *model.ImageEntry) {
	b.mutate(func() {
		if pos, ok := b.index[entry.DisplayIndex]; ok {
			b.entries[pos] = entry
		}
	})
}

// SetCount implements View.
func (b *Board) SetCount(n int) {
	b.mutate(func() { b.count = n })
}

// Clear implements View.
func (b *Board) Clear() {
	b.mutate(func() {
		b.entries = nil
		b.index = make(map[int]int)
		b.count = 0
	})
}

// SetBusy implements View.
func (b *Board) SetBusy(busy bool) {
	b.mutate(func() { b.busy = busy })
}

// Snapshot returns a copy of the board safe to read without locking.
func (b *Board) Snapshot() Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	entries := make([]*model.ImageEntry, len(b.entries))
	for i, e := range b.entries {
		entries[i] = e.Clone()
	}
	return Snapshot{
		Entries: entries,
		Count:   b.count,
		Busy:    b.busy,
		Version: b.version,
	}
}
