package releases

import (
	"context"
	"fmt"
	"net/http"

	"github.com/fulmenhq/relinfo/pkg/logger"
	"github.com/fulmenhq/relinfo/pkg/transport"
)

// Listing is the result of a complete walk.
type Listing struct {
	Releases []Release
	Pages    int
	// FirstHeader holds the first page's response headers.
	FirstHeader http.Header
}

// PageWalker follows rel="next" links through the release list.
type PageWalker struct {
	client   *transport.Client
	redactor *Redactor
}

// NewPageWalker creates a walker whose result passes through redactor.
func NewPageWalker(client *transport.Client, redactor *Redactor) *PageWalker {
	return &PageWalker{client: client, redactor: redactor}
}

// FetchAllPages returns every release reachable from listURL, at most
// pageLimit pages (0 = no limit), filtered and sanitized. Any failing page
// aborts the walk with no partial result.
func (w *PageWalker) FetchAllPages(ctx context.Context, listURL string, pageLimit int) ([]Release, error) {
	listing, err := w.Walk(ctx, listURL, pageLimit)
	if err != nil {
		return nil, err
	}
	return listing.Releases, nil
}

// Walk is FetchAllPages with page accounting.
func (w *PageWalker) Walk(ctx context.Context, listURL string, pageLimit int) (*Listing, error) {
	if pageLimit < 0 {
		return nil, fmt.Errorf("page limit must not be negative: %d", pageLimit)
	}

	listing := &Listing{}
	var all []Release
	next := listURL

	for next != "" {
		page := listing.Pages + 1
		releases, header, err := w.fetchPage(ctx, next, page)
		if err != nil {
			return nil, err
		}
		if page == 1 {
			listing.FirstHeader = header
		}
		all = append(all, releases...)
		listing.Pages = page

		next = transport.ParseLinkNext(header.Get("Link"))
		if pageLimit > 0 && listing.Pages >= pageLimit {
			if next != "" {
				logger.Debug("Page limit reached", logger.Int("limit", pageLimit))
			}
			break
		}
	}

	listing.Releases = w.redactor.SanitizeReleaseList(all)
	return listing, nil
}

func (w *PageWalker) fetchPage(ctx context.Context, url string, page int) ([]Release, http.Header, error) {
	resource := fmt.Sprintf("release list page %d", page)
	logger.Debug("Fetching release list page", logger.Int("page", page), logger.String("url", url))

	resp, err := w.client.Get(ctx, url, nil)
	if err != nil {
		return nil, nil, &NetworkError{Source: "github", URL: url, Wrapped: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp, resource, url); err != nil {
		// No validators are sent on list pages
		if IsNotModified(err) {
			err = &StatusError{Resource: resource, URL: url, StatusCode: resp.StatusCode}
		}
		logger.Error("Failed to retrieve release list",
			logger.Int("page", page), logger.Int("status", resp.StatusCode))
		return nil, nil, err
	}

	releases, err := decodeReleaseList(resp.Body, resource)
	if err != nil {
		logger.Error("Unexpected release list response", logger.Int("page", page), logger.Err(err))
		return nil, nil, err
	}
	return releases, resp.Header, nil
}
