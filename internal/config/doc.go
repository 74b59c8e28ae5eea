// Package config provides configuration management for cat-gallery.
//
// This package handles:
//   - Loading and saving settings from JSON files
//   - Default configuration values
//   - Environment variable overrides (CATGALLERY_*)
//
// # Default Settings
//
// Use DefaultSettings() to get sensible defaults:
//
//	settings := config.DefaultSettings()
//	// Images from api.thecatapi.com, 8 per batch
//	// Fallback images from picsum.photos
//	// Infinite scroll disabled
//
// # Loading from File
//
//	settings, err := config.Load("/path/to/config.json")
//	if err != nil {
//	    // Malformed file or bad environment override
//	}
//
// # Environment Overrides
//
// Every JSON key can be overridden by an upper-cased variable with the
// CATGALLERY_ prefix:
//
//	CATGALLERY_BATCH_SIZE=12 CATGALLERY_INFINITE_SCROLL=true cat-gallery-tui
//
// # Saving Settings
//
//	settings.BatchSize = 12
//	err := settings.Save("/path/to/config.json")
package config
