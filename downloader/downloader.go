// Package downloader fetches the upstream static archive and the
// three GTFS-RT protocol-buffer feeds over HTTP, authenticating with
// a shared API key passed as a query parameter.
package downloader

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"caltrain.dev/transit/secretredact"
)

// GetOptions controls a single fetch.
type GetOptions struct {
	MaxSize int
	Timeout time.Duration
}

// Downloader fetches a URL's body, authenticating with apiKey.
type Downloader interface {
	Get(ctx context.Context, rawURL string, apiKey string, options GetOptions) ([]byte, error)
}

// HTTPGet performs a single authenticated GET. apiKey is appended as
// the "key" query parameter, the upstream's legacy auth scheme. Any
// error returned has apiKey scrubbed from its message, since the URL
// (and therefore the key) is part of what net/http reports on
// failure.
func HTTPGet(ctx context.Context, rawURL string, apiKey string, options GetOptions) ([]byte, error) {
	authed, err := withAPIKey(rawURL, apiKey)
	if err != nil {
		return nil, secretredact.Err(fmt.Errorf("building request url: %w", err), apiKey)
	}

	client := &http.Client{Timeout: options.Timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, authed, nil)
	if err != nil {
		return nil, secretredact.Err(fmt.Errorf("creating request: %w", err), apiKey)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, secretredact.Err(fmt.Errorf("making request: %w", err), apiKey)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, secretredact.Err(fmt.Errorf("status %d fetching %s", resp.StatusCode, rawURL), apiKey)
	}

	var reader io.Reader = resp.Body
	if options.MaxSize > 0 {
		reader = io.LimitReader(resp.Body, int64(options.MaxSize))
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, secretredact.Err(fmt.Errorf("reading body: %w", err), apiKey)
	}

	return body, nil
}

func withAPIKey(rawURL, apiKey string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parsing url: %w", err)
	}

	q := u.Query()
	q.Set("key", apiKey)
	u.RawQuery = q.Encode()

	return u.String(), nil
}
