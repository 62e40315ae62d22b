// Package fetch turns remote image locators into inline, browser-renderable
// payloads, using local scratch space as a transit buffer.
package fetch

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/akopato/storefront/internal/media/cache"
	mediaerrors "github.com/akopato/storefront/internal/media/errors"
	"github.com/akopato/storefront/internal/media/remote"
	"github.com/akopato/storefront/pkg/config"
	"github.com/akopato/storefront/pkg/retry"
	"github.com/sony/gobreaker/v2"
)

// InlinePrefix is the header every fetched payload starts with. Image bytes
// are always delivered as jpeg data URIs, matching what the catalog stores.
const InlinePrefix = "data:image/jpeg;base64,"

// RemoteClient is the part of the storage client the fetcher needs.
type RemoteClient interface {
	Owns(locator string) bool
	Resolve(ctx context.Context, locator string) (*remote.FileRef, error)
	Download(ctx context.Context, ref *remote.FileRef) (io.ReadCloser, error)
}

// Fetcher downloads remote images and encodes them for inline delivery.
// Fetched payloads are inserted into the shared image cache.
type Fetcher struct {
	client     RemoteClient
	cache      *cache.ImageCache
	scratchDir string
	timeout    time.Duration
	retryCfg   retry.Config
	breaker    *gobreaker.CircuitBreaker[string]
}

// NewFetcher creates a Fetcher backed by the given client and cache.
func NewFetcher(client RemoteClient, imageCache *cache.ImageCache, cfg config.StorageConfig) *Fetcher {
	st := gobreaker.Settings{
		Name:    "storage-fetch",
		Timeout: cfg.Breaker.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > cfg.Breaker.ConsecutiveFailures
		},
		IsSuccessful: func(err error) bool {
			// Missing objects and foreign locators are caller errors,
			// not storage outages. They must not trip the breaker.
			return err == nil ||
				errors.Is(err, mediaerrors.ErrObjectNotFound) ||
				errors.Is(err, mediaerrors.ErrUnknownLocator)
		},
	}
	return &Fetcher{
		client:     client,
		cache:      imageCache,
		scratchDir: cfg.ScratchDir,
		timeout:    cfg.FetchTimeout,
		retryCfg: retry.Config{
			MaxAttempts: cfg.Retry.MaxAttempts,
			Backoff:     retry.ExponentialBackoff(cfg.Retry.InitialBackoff),
			ShouldRetry: func(err error) bool {
				return !errors.Is(err, mediaerrors.ErrObjectNotFound)
			},
		},
		breaker: gobreaker.NewCircuitBreaker[string](st),
	}
}

// Fetch returns the inline payload for the locator. A cached payload is
// returned immediately; otherwise the object is downloaded, encoded, cached
// and returned. The whole remote path runs under a bounded timeout.
func (f *Fetcher) Fetch(ctx context.Context, locator string) (string, error) {
	if payload, ok := f.cache.Get(locator); ok {
		return payload, nil
	}

	if !f.client.Owns(locator) {
		return "", fmt.Errorf("%w: %s", mediaerrors.ErrUnknownLocator, locator)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	payload, err := f.breaker.Execute(func() (string, error) {
		return retry.DoWithResult(fetchCtx, f.retryCfg, func() (string, error) {
			return f.download(fetchCtx, locator)
		})
	})
	if err != nil {
		if errors.Is(err, mediaerrors.ErrObjectNotFound) {
			return "", err
		}
		return "", fmt.Errorf("%w: %w", mediaerrors.ErrFetchFailed, err)
	}

	f.cache.Put(locator, payload)
	return payload, nil
}

// download performs one resolve+download round trip through scratch storage.
func (f *Fetcher) download(ctx context.Context, locator string) (string, error) {
	ref, err := f.client.Resolve(ctx, locator)
	if err != nil {
		return "", err
	}

	body, err := f.client.Download(ctx, ref)
	if err != nil {
		return "", err
	}
	defer func() { _ = body.Close() }()

	tmp, err := os.CreateTemp(f.scratchDir, "imgfetch-*")
	if err != nil {
		return "", fmt.Errorf("failed to create scratch file: %w", err)
	}
	// The scratch file is removed on every path, including mid-stream failures.
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}()

	if _, err := io.Copy(tmp, body); err != nil {
		return "", fmt.Errorf("failed to stream object to scratch file: %w", err)
	}

	raw, err := os.ReadFile(tmp.Name())
	if err != nil {
		return "", fmt.Errorf("failed to read scratch file: %w", err)
	}

	return Encode(raw), nil
}

// Encode wraps raw image bytes into an inline data URI payload.
func Encode(raw []byte) string {
	return InlinePrefix + base64.StdEncoding.EncodeToString(raw)
}

// Decode recovers the original image bytes from an inline payload.
func Decode(payload string) ([]byte, error) {
	encoded, ok := strings.CutPrefix(payload, InlinePrefix)
	if !ok {
		return nil, fmt.Errorf("payload does not start with %q", InlinePrefix)
	}
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode payload: %w", err)
	}
	return raw, nil
}
