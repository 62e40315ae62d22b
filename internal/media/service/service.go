// Package service provides the implementation of image proxying business logic.
package service

import (
	"context"
	"fmt"

	"github.com/akopato/storefront/internal/media/cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"
)

// MediaService defines the image proxy operations.
type MediaService interface {
	// ImageData returns the inline payload for the locator, fetching and
	// caching it on first use. Returns ErrUnknownLocator for locators
	// outside the storage namespace and ErrFetchFailed on remote failures.
	ImageData(ctx context.Context, locator string) (string, error)

	// UploadImage stores raw image bytes in the remote storage and returns
	// the locator assigned to them.
	UploadImage(ctx context.Context, name string, content []byte) (string, error)
}

// Fetcher fetches and caches a single remote image.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) (string, error)
}

// Uploader pushes image bytes to the remote storage.
type Uploader interface {
	Upload(ctx context.Context, name string, content []byte) (string, error)
}

// Service implements MediaService. Concurrent requests for the same uncached
// locator are coalesced into a single remote fetch.
type Service struct {
	cache    *cache.ImageCache
	fetcher  Fetcher
	uploader Uploader
	group    singleflight.Group

	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	fetchFailures prometheus.Counter
}

// NewService creates a MediaService and registers its metrics with reg.
func NewService(imageCache *cache.ImageCache, fetcher Fetcher, uploader Uploader, reg prometheus.Registerer) *Service {
	factory := promauto.With(reg)
	return &Service{
		cache:    imageCache,
		fetcher:  fetcher,
		uploader: uploader,
		cacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "image_cache_hits_total",
			Help: "Number of image requests served from the in-process cache.",
		}),
		cacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "image_cache_misses_total",
			Help: "Number of image requests that required a remote fetch.",
		}),
		fetchFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "image_fetch_failures_total",
			Help: "Number of remote image fetches that failed.",
		}),
	}
}

// ImageData returns the inline payload for the locator.
func (s *Service) ImageData(ctx context.Context, locator string) (string, error) {
	if payload, ok := s.cache.Get(locator); ok {
		s.cacheHits.Inc()
		return payload, nil
	}
	s.cacheMisses.Inc()

	payload, err, _ := s.group.Do(locator, func() (any, error) {
		return s.fetcher.Fetch(ctx, locator)
	})
	if err != nil {
		s.fetchFailures.Inc()
		return "", fmt.Errorf("failed to fetch image %s: %w", locator, err)
	}
	return payload.(string), nil
}

// UploadImage stores raw image bytes remotely and returns their locator.
func (s *Service) UploadImage(ctx context.Context, name string, content []byte) (string, error) {
	locator, err := s.uploader.Upload(ctx, name, content)
	if err != nil {
		return "", fmt.Errorf("failed to upload image %s: %w", name, err)
	}
	return locator, nil
}
