// Package ioutils provides file system and image processing utilities.
//
// # File Operations
//
//	err := ioutils.WriteFile(ctx, "/path/to/cat.jpg", data)
//	err := ioutils.EnsureDir("/path/to/export")
//
// # Filename Sanitization
//
//	safe := ioutils.SanitizeFileName("cat: 1/2") // Returns "cat_ 1_2"
//
// # Image Processing
//
// The ImageService decodes downloaded images and produces thumbnails:
//
//	svc := ioutils.NewImageService()
//
//	// Scale to fit within 24x24 for terminal rendering
//	thumb, _ := svc.Thumbnail(ctx, imageData, 24, 24)
//
//	// Normalize to JPEG when saving
//	jpeg, _ := svc.ConvertToJPEG(ctx, pngData)
package ioutils
