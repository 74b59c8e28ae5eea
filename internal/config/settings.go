package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides.
// CATGALLERY_BATCH_SIZE=12 overrides batch_size, and so on.
const EnvPrefix = "CATGALLERY"

// Settings holds all configuration options.
type Settings struct {
	// API settings
	APIURL          string  `json:"api_url" mapstructure:"api_url"`
	APIKey          string  `json:"api_key" mapstructure:"api_key"`
	FallbackBaseURL string  `json:"fallback_base_url" mapstructure:"fallback_base_url"`
	RequestTimeout  float64 `json:"request_timeout" mapstructure:"request_timeout"` // seconds

	// Gallery settings
	BatchSize          int  `json:"batch_size" mapstructure:"batch_size"`
	MaxConcurrentLoads int  `json:"max_concurrent_loads" mapstructure:"max_concurrent_loads"`
	ThumbnailWidth     int  `json:"thumbnail_width" mapstructure:"thumbnail_width"`
	ThumbnailHeight    int  `json:"thumbnail_height" mapstructure:"thumbnail_height"`
	InfiniteScroll     bool `json:"infinite_scroll" mapstructure:"infinite_scroll"`
	ScrollThreshold    int  `json:"scroll_threshold" mapstructure:"scroll_threshold"` // rows from bottom

	// Export settings
	SaveMaxRetries     int     `json:"save_max_retries" mapstructure:"save_max_retries"`
	SaveRetryCooldown  float64 `json:"save_retry_cooldown" mapstructure:"save_retry_cooldown"`
	SaveRetryExponent  float64 `json:"save_retry_exponent" mapstructure:"save_retry_exponent"`
	FileNameFormat     string  `json:"file_name_format" mapstructure:"file_name_format"` // {index}, {name}
	ConvertSavedToJPEG bool    `json:"convert_saved_to_jpg" mapstructure:"convert_saved_to_jpg"`

	// Logging settings
	LogFile  string `json:"log_file" mapstructure:"log_file"`
	LogLevel string `json:"log_level" mapstructure:"log_level"`
}

// DefaultSettings returns settings with default values.
func DefaultSettings() *Settings {
	return &Settings{
		APIURL:          "https://api.thecatapi.com/v1/images/search",
		FallbackBaseURL: "https://picsum.photos",
		RequestTimeout:  60,

		BatchSize:          8,
		MaxConcurrentLoads: 8,
		ThumbnailWidth:     24,
		ThumbnailHeight:    24,
		InfiniteScroll:     false,
		ScrollThreshold:    4,

		SaveMaxRetries:     3,
		SaveRetryCooldown:  0.2,
		SaveRetryExponent:  4.0,
		FileNameFormat:     "cat-{index}",
		ConvertSavedToJPEG: true,

		LogFile:  defaultLogPath(),
		LogLevel: "INFO",
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "cat-gallery", "cat-gallery.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "cat-gallery", "cat-gallery.log")
	}
}

// Load reads settings from a JSON file and applies environment overrides.
//
// A missing file is not an error; defaults are used instead. An empty path
// skips the file entirely.
func Load(path string) (*Settings, error) {
	settings := DefaultSettings()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		if err == nil {
			if err := json.Unmarshal(data, settings); err != nil {
				return nil, err
			}
		}
	}

	if err := applyEnv(settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// applyEnv overlays CATGALLERY_* environment variables onto s.
func applyEnv(s *Settings) error {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so seed
	// every key with the current value.
	var seed map[string]any
	data, err := json.Marshal(s)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, &seed); err != nil {
		return err
	}
	for k, val := range seed {
		v.SetDefault(k, val)
	}

	return v.Unmarshal(s)
}

// Save writes settings to a JSON file.
func (s *Settings) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Timeout returns RequestTimeout as a duration.
func (s *Settings) Timeout() time.Duration {
	if s.RequestTimeout <= 0 {
		return 60 * time.Second
	}
	return time.Duration(s.RequestTimeout * float64(time.Second))
}

// RetryDelay returns the backoff before retry number tries (0-based).
func (s *Settings) RetryDelay(tries int) time.Duration {
	cooldown := s.SaveRetryCooldown
	for i := 0; i < tries; i++ {
		cooldown *= s.SaveRetryExponent
	}
	return time.Duration(cooldown * float64(time.Second))
}
