// Package model defines the core data structures shared by the gallery
// loader, its views and the exporter.
//
// # ImageEntry
//
// ImageEntry is one image in the gallery. It starts as a placeholder and
// is swapped once its image preloads or fails:
//
//	entry := model.NewImageEntry(url, 1)  // StatusPlaceholder
//	entry.Resolve(thumbnail)              // StatusLoaded
//	// or
//	entry.Fail(fallbackURL)               // StatusFallback
//
// # Batch
//
// A batch is one fetch-and-render cycle producing zero or more entries.
// Entries carry 1-based display indexes that keep counting across batches
// until the gallery is reset.
package model
