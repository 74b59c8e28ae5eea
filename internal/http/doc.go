// Package http provides the HTTP client shared by the image-search client,
// the image preloader and the exporter.
//
// The Client in this package handles:
//   - User-Agent and optional API key headers
//   - Timeout handling
//   - Non-2xx responses as *StatusError
//   - File downloads with progress tracking
//
// # Basic Usage
//
//	client := http.NewClient(30*time.Second, "")
//
//	// Fetch JSON payload
//	body, err := client.Get(ctx, "https://api.thecatapi.com/v1/images/search?limit=8")
//
//	// Download file with progress callback
//	client.DownloadFile(ctx, imageURL, "/path/to/cat.jpg", func(written, total int64) {
//	    fmt.Printf("%.1f%%\n", float64(written)/float64(total)*100)
//	})
package http
