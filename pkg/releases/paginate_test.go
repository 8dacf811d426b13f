package releases

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fulmenhq/relinfo/pkg/transport"
)

const listBase = "https://api.example.test/repos/octo/widgets/releases"

func pageURL(n int) string {
	if n == 1 {
		return listBase
	}
	return fmt.Sprintf("%s?page=%d", listBase, n)
}

func nextLink(n int) http.Header {
	return http.Header{"Link": {fmt.Sprintf(`<%s>; rel="next", <%s>; rel="last"`, pageURL(n), pageURL(3))}}
}

// threePages registers a three-page list of releases 1..6.
func threePages(mock *transport.MockHTTPFetcher) {
	mock.AddResponseWithHeaders(pageURL(1), http.StatusOK, `[{"id": 1}, {"id": 2}]`, nextLink(2))
	mock.AddResponseWithHeaders(pageURL(2), http.StatusOK, `[{"id": 3}, {"id": 4}]`, nextLink(3))
	mock.AddResponse(pageURL(3), http.StatusOK, `[{"id": 5}, {"id": 6}]`)
}

func ids(list []Release) []string {
	out := make([]string, 0, len(list))
	for _, r := range list {
		out = append(out, fmt.Sprint(r["id"]))
	}
	return out
}

func newWalker(mock *transport.MockHTTPFetcher, r *Redactor) *PageWalker {
	if r == nil {
		r = NewRedactor(nil, nil, false)
	}
	return NewPageWalker(transport.NewClient(mock, "", "test"), r)
}

func TestPageWalker_AllPages(t *testing.T) {
	mock := transport.NewMockHTTPFetcher()
	threePages(mock)

	listing, err := newWalker(mock, nil).Walk(context.Background(), listBase, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2", "3", "4", "5", "6"}, ids(listing.Releases))
	assert.Equal(t, 3, listing.Pages)
	assert.NotEmpty(t, listing.FirstHeader.Get("Link"))
}

func TestPageWalker_TwoPagesConcatenate(t *testing.T) {
	mock := transport.NewMockHTTPFetcher()
	mock.AddResponseWithHeaders(pageURL(1), http.StatusOK, `[{"id": 1}, {"id": 2}]`, nextLink(2))
	mock.AddResponse(pageURL(2), http.StatusOK, `[{"id": 3}]`)

	list, err := newWalker(mock, nil).FetchAllPages(context.Background(), listBase, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3"}, ids(list))
}

func TestPageWalker_PageLimit(t *testing.T) {
	tests := []struct {
		limit    int
		wantIDs  []string
		requests int
	}{
		{limit: 1, wantIDs: []string{"1", "2"}, requests: 1},
		{limit: 2, wantIDs: []string{"1", "2", "3", "4"}, requests: 2},
		{limit: 3, wantIDs: []string{"1", "2", "3", "4", "5", "6"}, requests: 3},
		{limit: 10, wantIDs: []string{"1", "2", "3", "4", "5", "6"}, requests: 3},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("limit %d", tt.limit), func(t *testing.T) {
			mock := transport.NewMockHTTPFetcher()
			threePages(mock)

			list, err := newWalker(mock, nil).FetchAllPages(context.Background(), listBase, tt.limit)
			require.NoError(t, err)
			assert.Equal(t, tt.wantIDs, ids(list))
			assert.Len(t, mock.Requests(), tt.requests)
		})
	}
}

func TestPageWalker_NegativeLimit(t *testing.T) {
	mock := transport.NewMockHTTPFetcher()
	_, err := newWalker(mock, nil).FetchAllPages(context.Background(), listBase, -1)
	assert.Error(t, err)
	assert.Empty(t, mock.Requests())
}

func TestPageWalker_FirstPageStatus(t *testing.T) {
	mock := transport.NewMockHTTPFetcher()
	mock.AddResponse(pageURL(1), http.StatusInternalServerError, "boom")

	list, err := newWalker(mock, nil).FetchAllPages(context.Background(), listBase, 0)
	assert.Nil(t, list)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
	assert.Equal(t, "release list page 1", statusErr.Resource)
}

func TestPageWalker_LaterPageFailureDiscardsEverything(t *testing.T) {
	mock := transport.NewMockHTTPFetcher()
	mock.AddResponseWithHeaders(pageURL(1), http.StatusOK, `[{"id": 1}]`, nextLink(2))
	mock.AddResponse(pageURL(2), http.StatusBadGateway, "")

	list, err := newWalker(mock, nil).FetchAllPages(context.Background(), listBase, 0)
	assert.Nil(t, list)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, "release list page 2", statusErr.Resource)
}

func TestPageWalker_ShapeValidatedOnEveryPage(t *testing.T) {
	tests := []struct {
		name  string
		setup func(m *transport.MockHTTPFetcher)
	}{
		{
			name: "first page object",
			setup: func(m *transport.MockHTTPFetcher) {
				m.AddResponse(pageURL(1), http.StatusOK, `{"message": "Moved"}`)
			},
		},
		{
			name: "second page object",
			setup: func(m *transport.MockHTTPFetcher) {
				m.AddResponseWithHeaders(pageURL(1), http.StatusOK, `[{"id": 1}]`, nextLink(2))
				m.AddResponse(pageURL(2), http.StatusOK, `{"id": 2}`)
			},
		},
		{
			name: "non-object entry",
			setup: func(m *transport.MockHTTPFetcher) {
				m.AddResponse(pageURL(1), http.StatusOK, `[{"id": 1}, 7]`)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := transport.NewMockHTTPFetcher()
			tt.setup(mock)

			list, err := newWalker(mock, nil).FetchAllPages(context.Background(), listBase, 0)
			assert.Nil(t, list)
			var schemaErr *SchemaError
			assert.ErrorAs(t, err, &schemaErr)
		})
	}
}

func TestPageWalker_InvalidJSON(t *testing.T) {
	mock := transport.NewMockHTTPFetcher()
	mock.AddResponse(pageURL(1), http.StatusOK, `[{"id": 1}`)

	_, err := newWalker(mock, nil).FetchAllPages(context.Background(), listBase, 0)
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestPageWalker_RateLimited(t *testing.T) {
	mock := transport.NewMockHTTPFetcher()
	mock.AddResponseWithHeaders(pageURL(1), http.StatusForbidden, `{"message": "API rate limit exceeded"}`, http.Header{
		"X-Ratelimit-Limit":     {"60"},
		"X-Ratelimit-Remaining": {"0"},
		"X-Ratelimit-Reset":     {"1700000000"},
	})

	_, err := newWalker(mock, nil).FetchAllPages(context.Background(), listBase, 0)
	require.Error(t, err)
	assert.True(t, IsRateLimitError(err))

	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 60, rl.Limit)
	assert.Equal(t, 0, rl.Remaining)
	assert.Equal(t, int64(1700000000), rl.RetryAfter.Unix())
}

func TestPageWalker_FiltersAndSanitizes(t *testing.T) {
	mock := transport.NewMockHTTPFetcher()
	mock.AddResponseWithHeaders(pageURL(1), http.StatusOK,
		`[{"id": 1, "draft": true, "author": "a"}, {"id": 2, "draft": false, "author": "b", "assets": [{"uploader": "u", "name": "x"}]}]`,
		nextLink(2))
	mock.AddResponse(pageURL(2), http.StatusOK, `[{"id": 3, "draft": true}, {"id": 4, "author": "d"}]`)

	r := NewRedactor([]string{"author"}, []string{"uploader"}, true)
	list, err := newWalker(mock, r).FetchAllPages(context.Background(), listBase, 0)
	require.NoError(t, err)

	assert.Equal(t, []string{"2", "4"}, ids(list))
	for _, rel := range list {
		assert.NotContains(t, rel, "author")
	}
	assert.Equal(t, []map[string]interface{}{{"name": "x"}}, list[0].Assets())
}

func TestPageWalker_EmptyList(t *testing.T) {
	mock := transport.NewMockHTTPFetcher()
	mock.AddResponse(pageURL(1), http.StatusOK, `[]`)

	list, err := newWalker(mock, nil).FetchAllPages(context.Background(), listBase, 0)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)
}
