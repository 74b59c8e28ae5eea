package catapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

var (
	// ErrNetwork wraps transport failures and non-2xx responses.
	ErrNetwork = errors.New("image search request failed")

	// ErrDecode wraps payloads that are not a JSON array of objects with a url.
	ErrDecode = errors.New("image search response malformed")
)

// Fetcher is the transport the Client needs. *http.Client from
// internal/http satisfies it.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Client queries an image-search endpoint for random image URLs.
//
// Example usage:
//
//	client := catapi.NewClient(httpClient, "https://api.thecatapi.com/v1/images/search")
//
//	urls, err := client.Search(ctx, 8)
//	if err != nil {
//	    urls = catapi.FallbackURLs(fallbackBase, 8, time.Now())
//	}
type Client struct {
	fetcher  Fetcher
	endpoint string
}

// NewClient creates a new Client for the given endpoint.
func NewClient(fetcher Fetcher, endpoint string) *Client {
	return &Client{fetcher: fetcher, endpoint: endpoint}
}

// Search requests up to limit image URLs.
//
// The result preserves response order and may hold fewer than limit URLs.
// Returns an error wrapping ErrNetwork if the request fails or the status is
// not 2xx, or wrapping ErrDecode if the body is not a JSON array whose
// elements all carry a non-empty url field.
func (c *Client) Search(ctx context.Context, limit int) ([]string, error) {
	reqURL, err := c.searchURL(limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}

	body, err := c.fetcher.Get(ctx, reqURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}

	urls, err := parseImages(body)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(urls) > limit {
		urls = urls[:limit]
	}
	return urls, nil
}

func (c *Client) searchURL(limit int) (string, error) {
	u, err := url.Parse(c.endpoint)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set("limit", strconv.Itoa(limit))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func parseImages(body []byte) ([]string, error) {
	var images []jsonImage
	if err := json.Unmarshal(body, &images); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if images == nil {
		return nil, fmt.Errorf("%w: payload is not an array", ErrDecode)
	}

	urls := make([]string, 0, len(images))
	for i, img := range images {
		if img.URL == nil || *img.URL == "" {
			return nil, fmt.Errorf("%w: element %d has no url", ErrDecode, i)
		}
		urls = append(urls, *img.URL)
	}
	return urls, nil
}

// FallbackURLs synthesizes count placeholder image URLs for a failed batch.
//
// Each URL is unique per call through the timestamp and index:
//
//	<base>/300/300?random=<unix millis>-<i>
func FallbackURLs(base string, count int, now time.Time) []string {
	stamp := now.UnixMilli()
	urls := make([]string, count)
	for i := range urls {
		urls[i] = fmt.Sprintf("%s/300/300?random=%d-%d", base, stamp, i)
	}
	return urls
}

// FallbackURL returns the substitute for an image that failed to load.
func FallbackURL(base string, index int) string {
	return fmt.Sprintf("%s/300/300?fallback=%d", base, index)
}
