package ioutils

import (
	"bytes"
	"context"
	"errors"
	"image"
	_ "image/gif" // GIF decoder registration
	"image/jpeg"
	_ "image/png" // PNG decoder registration

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // WebP decoder registration
)

// ErrEmptyImage is returned when decoding yields a zero-sized image.
var ErrEmptyImage = errors.New("image has no pixels")

// ImageService provides image processing for gallery thumbnails and exports.
//
// ImageService is used to:
//   - Decode downloaded images (JPEG, PNG, GIF, WebP)
//   - Scale them into a thumbnail box for terminal rendering
//   - Convert images to JPEG when saving
//
// Example usage:
//
//	svc := NewImageService()
//
//	data, _ := client.DownloadBytes(ctx, url)
//	thumb, err := svc.Thumbnail(ctx, data, 24, 24)
type ImageService struct{}

// NewImageService creates a new ImageService.
func NewImageService() *ImageService {
	return &ImageService{}
}

// Decode decodes image data in any registered format.
func (s *ImageService) Decode(ctx context.Context, data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if img.Bounds().Empty() {
		return nil, ErrEmptyImage
	}
	return img, nil
}

// Thumbnail decodes data and scales it to fit within maxWidth x maxHeight.
//
// The aspect ratio is preserved and images smaller than the box are not
// upscaled. The Catmull-Rom kernel is used for scaling.
//
// Example:
//
//	// A 500x375 image in a 24x24 box becomes 24x18
//	thumb, err := svc.Thumbnail(ctx, data, 24, 24)
func (s *ImageService) Thumbnail(ctx context.Context, data []byte, maxWidth, maxHeight int) (image.Image, error) {
	img, err := s.Decode(ctx, data)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	width, height := FitWithin(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)

	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst, nil
}

// FitWithin returns width x height scaled down to fit the max box, keeping
// the aspect ratio. Results are at least 1x1.
func FitWithin(width, height, maxWidth, maxHeight int) (int, int) {
	if width > maxWidth || height > maxHeight {
		ratio := float64(width) / float64(height)
		if float64(maxWidth)/float64(maxHeight) > ratio {
			// Height is the limiting factor
			width = int(float64(maxHeight) * ratio)
			height = maxHeight
		} else {
			// Width is the limiting factor
			height = int(float64(maxWidth) / ratio)
			width = maxWidth
		}
	}
	return max(width, 1), max(height, 1)
}

// ConvertToJPEG converts an image to JPEG format with 90% quality.
//
// Saved gallery images are normalized to JPEG so the export directory has a
// single extension regardless of what the API served.
func (s *ImageService) ConvertToJPEG(ctx context.Context, data []byte) ([]byte, error) {
	img, err := s.Decode(ctx, data)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
