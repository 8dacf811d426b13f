package transport

import (
	"context"
	"fmt"
	"net/http"
)

// apiVersion pins the GitHub REST API version.
const apiVersion = "2022-11-28"

// MediaTypeJSON is the default Accept header for API calls.
const MediaTypeJSON = "application/vnd.github+json"

// MediaTypeOctetStream asks the assets endpoint for raw bytes.
const MediaTypeOctetStream = "application/octet-stream"

// Client issues GET requests carrying the run's static credential and
// standard API headers.
type Client struct {
	fetcher   HTTPFetcher
	token     string
	userAgent string
}

// NewClient creates a client. An empty token sends unauthenticated requests.
func NewClient(fetcher HTTPFetcher, token, userAgent string) *Client {
	return &Client{fetcher: fetcher, token: token, userAgent: userAgent}
}

// Get fetches url. Values in header override the defaults. The caller must
// close the response body.
func (c *Client) Get(ctx context.Context, url string, header http.Header) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", MediaTypeJSON)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, vs := range header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	return c.fetcher.Do(req)
}
