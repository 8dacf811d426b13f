package transport

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// DefaultTimeout bounds connecting and waiting for response headers. Reading
// the body is never bounded, so large downloads run to completion.
const DefaultTimeout = 30 * time.Second

// HTTPFetcher abstracts HTTP calls for testability
type HTTPFetcher interface {
	Do(req *http.Request) (*http.Response, error)
}

// RealHTTPFetcher wraps http.Client for production use
type RealHTTPFetcher struct {
	client *http.Client
}

// NewRealHTTPFetcher creates a production HTTP fetcher
func NewRealHTTPFetcher(client *http.Client) HTTPFetcher {
	return &RealHTTPFetcher{client: client}
}

// NewDefaultHTTPFetcher returns a fetcher with a TLS 1.2 floor. timeout
// applies to dialing, the TLS handshake and the wait for response headers;
// zero disables all three.
func NewDefaultHTTPFetcher(timeout time.Duration) HTTPFetcher {
	if timeout < 0 {
		timeout = 0
	}
	dialer := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}
	client := &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
		},
	}
	return NewRealHTTPFetcher(client)
}

func (f *RealHTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	return f.client.Do(req)
}
