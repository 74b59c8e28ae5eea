package gallery

import (
	"context"
	"image"

	ioutils "github.com/handiism/cat-gallery/internal/io"
)

// Downloader fetches raw bytes. *http.Client from internal/http satisfies it.
type Downloader interface {
	DownloadBytes(ctx context.Context, url string) ([]byte, error)
}

// HTTPPreloader downloads an image and scales it to a thumbnail.
type HTTPPreloader struct {
	downloader Downloader
	images     *ioutils.ImageService
	maxWidth   int
	maxHeight  int
}

// NewHTTPPreloader creates a Preloader producing thumbnails that fit within
// maxWidth x maxHeight pixels.
func NewHTTPPreloader(d Downloader, images *ioutils.ImageService, maxWidth, maxHeight int) *HTTPPreloader {
	return &HTTPPreloader{
		downloader: d,
		images:     images,
		maxWidth:   max(maxWidth, 1),
		maxHeight:  max(maxHeight, 1),
	}
}

// Preload implements Preloader.
func (p *HTTPPreloader) Preload(ctx context.Context, url string) (image.Image, error) {
	data, err := p.downloader.DownloadBytes(ctx, url)
	if err != nil {
		return nil, err
	}
	return p.images.Thumbnail(ctx, data, p.maxWidth, p.maxHeight)
}
