// Package preview downloads and decodes breed images for the terminal
// preview, keeping recently decoded images in memory.
package preview

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"woof/internal/metrics"
)

// DefaultCacheSize is the number of decoded images kept in memory.
const DefaultCacheSize = 64

// maxImageBytes caps a single download.
const maxImageBytes = 10 << 20

// Loader fetches images by URL.
type Loader struct {
	httpClient *http.Client
	cache      *lru.Cache[string, image.Image]
	recorder   metrics.Recorder
}

// NewLoader creates a loader with the given request timeout and cache size.
func NewLoader(timeout time.Duration, cacheSize int, recorder metrics.Recorder) (*Loader, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, image.Image](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create preview cache: %w", err)
	}
	return &Loader{
		httpClient: &http.Client{Timeout: timeout},
		cache:      cache,
		recorder:   metrics.OrNoop(recorder),
	}, nil
}

// Load returns the decoded image at url, downloading it on a cache miss.
func (l *Loader) Load(ctx context.Context, url string) (image.Image, error) {
	if img, ok := l.cache.Get(url); ok {
		return img, nil
	}

	start := time.Now()
	img, err := l.fetch(ctx, url)
	l.recorder.ObserveFetchDuration(metrics.OpPreviewImage, time.Since(start), err == nil)
	if err != nil {
		return nil, err
	}

	l.cache.Add(url, img)
	return img, nil
}

func (l *Loader) fetch(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("request creation failed: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("image error: status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return nil, fmt.Errorf("image decode error: %w", err)
	}
	return img, nil
}
