package transport

import (
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
)

// MockResponse is one canned reply of a MockHTTPFetcher.
type MockResponse struct {
	StatusCode int
	Body       string
	Header     http.Header
}

// MockHTTPFetcher simulates HTTP responses for testing. Responses are keyed
// by URL; several responses registered for the same URL are served in
// order, the last one repeating. Every request is recorded.
type MockHTTPFetcher struct {
	mu        sync.Mutex
	responses map[string][]MockResponse
	served    map[string]int
	errors    map[string]error
	requests  []*http.Request
}

// NewMockHTTPFetcher creates a mock HTTP fetcher
func NewMockHTTPFetcher() *MockHTTPFetcher {
	return &MockHTTPFetcher{
		responses: make(map[string][]MockResponse),
		served:    make(map[string]int),
		errors:    make(map[string]error),
	}
}

// AddResponse registers a mock response for a URL
func (m *MockHTTPFetcher) AddResponse(urlStr string, statusCode int, body string) {
	m.AddResponseWithHeaders(urlStr, statusCode, body, nil)
}

// AddResponseWithHeaders registers a mock response carrying headers.
func (m *MockHTTPFetcher) AddResponseWithHeaders(urlStr string, statusCode int, body string, header http.Header) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[urlStr] = append(m.responses[urlStr], MockResponse{
		StatusCode: statusCode,
		Body:       body,
		Header:     header,
	})
}

// AddError registers a mock error for a URL
func (m *MockHTTPFetcher) AddError(urlStr string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[urlStr] = err
}

// Requests returns the requests seen so far, in order.
func (m *MockHTTPFetcher) Requests() []*http.Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*http.Request, len(m.requests))
	copy(out, m.requests)
	return out
}

// RequestCount returns how many requests targeted urlStr.
func (m *MockHTTPFetcher) RequestCount(urlStr string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.requests {
		if r.URL.String() == urlStr {
			n++
		}
	}
	return n
}

func (m *MockHTTPFetcher) Do(req *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	urlStr := req.URL.String()
	m.requests = append(m.requests, req)

	if err, ok := m.errors[urlStr]; ok {
		return nil, err
	}

	queue, ok := m.responses[urlStr]
	if !ok || len(queue) == 0 {
		// Return 404 for unknown URLs
		return newMockResponse(req.URL, MockResponse{StatusCode: http.StatusNotFound, Body: "Not Found"}), nil
	}

	idx := m.served[urlStr]
	if idx >= len(queue) {
		idx = len(queue) - 1
	}
	m.served[urlStr]++
	return newMockResponse(req.URL, queue[idx]), nil
}

func newMockResponse(u *url.URL, r MockResponse) *http.Response {
	header := make(http.Header)
	for k, vs := range r.Header {
		header[k] = append([]string(nil), vs...)
	}
	return &http.Response{
		StatusCode: r.StatusCode,
		Status:     http.StatusText(r.StatusCode),
		Body:       io.NopCloser(strings.NewReader(r.Body)),
		Header:     header,
		Request:    &http.Request{URL: u},
	}
}
