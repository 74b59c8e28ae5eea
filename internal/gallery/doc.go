// Package gallery implements the batch image loader behind the cat gallery.
//
// # Loader
//
// The Loader runs one batch at a time:
//
//  1. Transition Idle -> Loading (or drop the request if already loading)
//  2. Mark the view busy
//  3. Ask the Searcher for N image URLs, or synthesize N fallback URLs if
//     the search fails for any reason
//  4. Append one placeholder per URL, in result order
//  5. Preload every image concurrently; each entry is swapped to the loaded
//     image or to a fallback independently of its siblings
//  6. Add the rendered count, update the counter, mark the view idle and
//     return to Idle
//
// Step 6 is deferred so it runs on every exit path.
//
// # Reset
//
// Reset clears the view and the counter in a single View.Clear call and then
// runs a default-sized batch. Like RequestBatch it is dropped while a batch
// is in flight.
//
// # Views
//
// Board is the in-memory View used by the TUI and the CLI. It is safe for
// concurrent use and hands out consistent Snapshots.
package gallery
