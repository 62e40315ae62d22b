// Package remote implements the HTTP client for the third-party file storage
// that product and profile images live in.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	mediaerrors "github.com/akopato/storefront/internal/media/errors"
	"github.com/akopato/storefront/pkg/config"
)

// FileRef is a resolved handle to a stored object.
type FileRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Client talks to the storage provider's REST API. The authenticated session
// is process-wide: the bearer token is obtained lazily, cached until close to
// expiry and refreshed once on a 401 before the call is replayed.
type Client struct {
	httpClient      *http.Client
	apiEndpoint     string
	contentEndpoint string
	linkPrefix      string
	appKey          string
	appSecret       string

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
}

// tokenExpirySkew keeps us from using a token that is about to lapse mid-call.
const tokenExpirySkew = 30 * time.Second

// NewClient creates a Client from the storage configuration.
func NewClient(cfg config.StorageConfig) *Client {
	return &Client{
		httpClient:      &http.Client{},
		apiEndpoint:     strings.TrimSuffix(cfg.APIEndpoint, "/"),
		contentEndpoint: strings.TrimSuffix(cfg.ContentEndpoint, "/"),
		linkPrefix:      cfg.LinkPrefix,
		appKey:          cfg.AppKey,
		appSecret:       cfg.AppSecret,
	}
}

// Owns reports whether the locator belongs to this provider's namespace.
func (c *Client) Owns(locator string) bool {
	return strings.HasPrefix(locator, c.linkPrefix)
}

// Resolve turns a share locator into a file handle.
// Returns ErrObjectNotFound if the provider has no object for the locator.
func (c *Client) Resolve(ctx context.Context, locator string) (*FileRef, error) {
	body, err := json.Marshal(map[string]string{"url": locator})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resolve request: %w", err)
	}

	resp, err := c.doAuthenticated(ctx, func(token string) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiEndpoint+"/files/resolve", bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, mediaerrors.ErrObjectNotFound
	default:
		return nil, fmt.Errorf("resolve returned status %d", resp.StatusCode)
	}

	var ref FileRef
	if err := json.NewDecoder(resp.Body).Decode(&ref); err != nil {
		return nil, fmt.Errorf("failed to decode resolve response: %w", err)
	}
	if ref.ID == "" {
		return nil, fmt.Errorf("resolve response has no file id")
	}
	return &ref, nil
}

// Download opens a byte stream for the referenced object.
// The caller owns the returned body and must close it.
func (c *Client) Download(ctx context.Context, ref *FileRef) (io.ReadCloser, error) {
	resp, err := c.doAuthenticated(ctx, func(token string) (*http.Request, error) {
		u := c.contentEndpoint + "/files/download?id=" + url.QueryEscape(ref.ID)
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return req, nil
	})
	if err != nil {
		return nil, err
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return resp.Body, nil
	case http.StatusNotFound:
		_ = resp.Body.Close()
		return nil, mediaerrors.ErrObjectNotFound
	default:
		_ = resp.Body.Close()
		return nil, fmt.Errorf("download returned status %d", resp.StatusCode)
	}
}

// Upload stores the content under the given name and returns the share
// locator assigned by the provider.
func (c *Client) Upload(ctx context.Context, name string, content []byte) (string, error) {
	resp, err := c.doAuthenticated(ctx, func(token string) (*http.Request, error) {
		u := c.contentEndpoint + "/files/upload?name=" + url.QueryEscape(name)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(content))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/octet-stream")
		return req, nil
	})
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("upload returned status %d", resp.StatusCode)
	}

	var result struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode upload response: %w", err)
	}
	if result.URL == "" {
		return "", fmt.Errorf("upload response has no url")
	}
	return result.URL, nil
}

// doAuthenticated executes the request built by build with a valid token,
// re-authenticating and replaying once if the provider rejects the session.
func (c *Client) doAuthenticated(ctx context.Context, build func(token string) (*http.Request, error)) (*http.Response, error) {
	token, err := c.getToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := build(token)
	if err != nil {
		return nil, fmt.Errorf("failed to build storage request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage request failed: %w", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	_ = resp.Body.Close()

	// Session expired server-side. Drop it and replay once with a fresh token.
	c.invalidateToken(token)
	token, err = c.getToken(ctx)
	if err != nil {
		return nil, err
	}
	req, err = build(token)
	if err != nil {
		return nil, fmt.Errorf("failed to build storage request: %w", err)
	}
	resp, err = c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage request failed: %w", err)
	}
	return resp, nil
}

// getToken returns the cached session token, authenticating if it is missing
// or near expiry. Only one goroutine authenticates at a time.
func (c *Client) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken != "" && time.Until(c.tokenExpiry) > tokenExpirySkew {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.appKey)
	form.Set("client_secret", c.appSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiEndpoint+"/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("storage authentication failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("storage authentication returned status %d", resp.StatusCode)
	}

	var tokenResp struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("failed to decode auth response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("auth response has no access token")
	}

	c.accessToken = tokenResp.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(tokenResp.ExpiresIn) * time.Second)
	return c.accessToken, nil
}

// invalidateToken clears the cached token if it is still the stale one.
func (c *Client) invalidateToken(stale string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken == stale {
		c.accessToken = ""
		c.tokenExpiry = time.Time{}
	}
}
