package model

import (
	"fmt"
	"image"
)

// EntryStatus is the render state of an ImageEntry.
type EntryStatus int

const (
	// StatusPlaceholder means the entry is appended but its image is still
	// preloading. Placeholders are rendered invisible/dimmed.
	StatusPlaceholder EntryStatus = iota

	// StatusLoaded means the real image preloaded and replaced the placeholder.
	StatusLoaded

	// StatusFallback means the real image failed and a fallback source is shown.
	StatusFallback
)

// String returns a lowercase name for logs.
func (s EntryStatus) String() string {
	switch s {
	case StatusPlaceholder:
		return "placeholder"
	case StatusLoaded:
		return "loaded"
	case StatusFallback:
		return "fallback"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ImageEntry is one rendered image unit within the gallery.
//
// An entry is created as a placeholder when its batch arrives and is swapped
// exactly once, to either StatusLoaded or StatusFallback. After it is handed
// to a view the view owns it; the loader only mutates it through Resolve and
// Fail before calling the view's Update.
//
// Example:
//
//	entry := model.NewImageEntry("https://cdn2.thecatapi.com/images/abc.jpg", 3)
//	entry.Alt // "Loading cat 3..."
//	entry.Resolve(thumb)
//	entry.Alt // "Beautiful Cat 3 from API"
type ImageEntry struct {
	// SourceURL is the image currently shown. It starts as the fetched URL
	// and is replaced by a fallback URL on failure.
	SourceURL string

	// DisplayIndex is the 1-based position in the gallery, used for labels.
	DisplayIndex int

	// Status is the current render state.
	Status EntryStatus

	// Alt is the human readable label.
	Alt string

	// Thumbnail is the decoded, resized image. Nil unless Status is
	// StatusLoaded.
	Thumbnail image.Image
}

// NewImageEntry creates a placeholder entry for url at position index.
func NewImageEntry(url string, index int) *ImageEntry {
	return &ImageEntry{
		SourceURL:    url,
		DisplayIndex: index,
		Status:       StatusPlaceholder,
		Alt:          fmt.Sprintf("Loading cat %d...", index),
	}
}

// Resolve marks the entry loaded with the preloaded thumbnail.
func (e *ImageEntry) Resolve(thumb image.Image) {
	e.Thumbnail = thumb
	e.Status = StatusLoaded
	e.Alt = fmt.Sprintf("Beautiful Cat %d from API", e.DisplayIndex)
}

// Fail swaps the entry to fallbackURL.
func (e *ImageEntry) Fail(fallbackURL string) {
	e.SourceURL = fallbackURL
	e.Thumbnail = nil
	e.Status = StatusFallback
	e.Alt = fmt.Sprintf("Cat %d (Fallback)", e.DisplayIndex)
}

// Clone returns a shallow copy safe to hand to readers.
func (e *ImageEntry) Clone() *ImageEntry {
	c := *e
	return &c
}
