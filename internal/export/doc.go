// Package export saves loaded gallery images to disk.
//
// # Basic Usage
//
//	saver := export.NewSaver(settings, httpClient, logger, func(e gallery.ProgressEvent) {
//	    fmt.Println(e.Message)
//	})
//
//	result, err := saver.Save(ctx, "/tmp/cats", board.Snapshot().Entries)
//	fmt.Printf("saved %d, skipped %d, failed %d\n", result.Saved, result.Skipped, result.Failed)
//
// # Retry Logic
//
// Failed downloads are retried with exponential backoff, configurable via
// settings.SaveMaxRetries, SaveRetryCooldown and SaveRetryExponent.
//
// # File Names
//
// settings.FileNameFormat supports {index} and {name}:
//
//	"cat-{index}"   -> cat-001.jpg
//	"{name}"        -> abc123.jpg
package export
