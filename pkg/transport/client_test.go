package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Get_DefaultHeaders(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddResponse("https://api.example.test/r", http.StatusOK, "{}")

	c := NewClient(mock, "secret", "relinfo/test")
	resp, err := c.Get(context.Background(), "https://api.example.test/r", nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	reqs := mock.Requests()
	require.Len(t, reqs, 1)
	h := reqs[0].Header
	assert.Equal(t, "Bearer secret", h.Get("Authorization"))
	assert.Equal(t, "relinfo/test", h.Get("User-Agent"))
	assert.Equal(t, MediaTypeJSON, h.Get("Accept"))
	assert.Equal(t, apiVersion, h.Get("X-GitHub-Api-Version"))
	assert.Equal(t, http.MethodGet, reqs[0].Method)
}

func TestClient_Get_NoToken(t *testing.T) {
	mock := NewMockHTTPFetcher()
	c := NewClient(mock, "", "relinfo/test")

	resp, err := c.Get(context.Background(), "https://api.example.test/missing", nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Empty(t, mock.Requests()[0].Header.Get("Authorization"))
}

func TestClient_Get_HeaderOverrides(t *testing.T) {
	mock := NewMockHTTPFetcher()
	c := NewClient(mock, "tok", "ua")

	extra := http.Header{}
	extra.Set("Accept", MediaTypeOctetStream)
	extra.Set("If-None-Match", `"abc"`)

	resp, err := c.Get(context.Background(), "https://api.example.test/asset", extra)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	h := mock.Requests()[0].Header
	assert.Equal(t, []string{MediaTypeOctetStream}, h.Values("Accept"))
	assert.Equal(t, `"abc"`, h.Get("If-None-Match"))
}

func TestClient_Get_TransportError(t *testing.T) {
	mock := NewMockHTTPFetcher()
	boom := errors.New("connection refused")
	mock.AddError("https://api.example.test/down", boom)

	c := NewClient(mock, "", "ua")
	_, err := c.Get(context.Background(), "https://api.example.test/down", nil)
	assert.ErrorIs(t, err, boom)
}

func TestClient_Get_InvalidURL(t *testing.T) {
	c := NewClient(NewMockHTTPFetcher(), "", "ua")
	_, err := c.Get(context.Background(), "://bad", nil)
	assert.Error(t, err)
}

func TestClient_Get_RealFetcher(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer live", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"ok":true}`)
	}))
	defer srv.Close()

	c := NewClient(NewDefaultHTTPFetcher(0), "live", "ua")
	resp, err := c.Get(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, `{"ok":true}`, string(body))
}

func TestMockHTTPFetcher_SequencedResponses(t *testing.T) {
	mock := NewMockHTTPFetcher()
	mock.AddResponse("https://x.test/a", http.StatusOK, "first")
	mock.AddResponseWithHeaders("https://x.test/a", http.StatusNotModified, "", http.Header{"Etag": {`"v1"`}})

	c := NewClient(mock, "", "ua")

	read := func() (int, string, string) {
		resp, err := c.Get(context.Background(), "https://x.test/a", nil)
		require.NoError(t, err)
		defer func() { _ = resp.Body.Close() }()
		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(b), resp.Header.Get("ETag")
	}

	code, body, _ := read()
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "first", body)

	code, _, etag := read()
	assert.Equal(t, http.StatusNotModified, code)
	assert.Equal(t, `"v1"`, etag)

	// last response repeats
	code, _, _ = read()
	assert.Equal(t, http.StatusNotModified, code)
	assert.Equal(t, 3, mock.RequestCount("https://x.test/a"))
}
