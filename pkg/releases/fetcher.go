package releases

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/fulmenhq/relinfo/pkg/logger"
	"github.com/fulmenhq/relinfo/pkg/safeio"
	"github.com/fulmenhq/relinfo/pkg/transport"
)

// IndexName is the artifact name of the release list.
const IndexName = "index"

// IndexCacheKey is the reserved validator key for the release list. The
// record is informational (see "relinfo cache show _index"): the index walk
// always fetches every page unconditionally and never reads it back.
const IndexCacheKey = "_index"

// Options are the per-run settings of a Fetcher.
type Options struct {
	Repo    string // owner/name
	APIBase string // e.g. https://api.github.com
	PerPage int    // list page size; 0 leaves the server default
}

// Fetcher composes the cache, redaction, digest and storage steps for one
// repository.
type Fetcher struct {
	client     *transport.Client
	opts       Options
	redactor   *Redactor
	validators *ValidatorStore
	artifacts  *safeio.ArtifactStore
	digests    *DigestCalculator
	walker     *PageWalker
}

// NewFetcher wires a Fetcher from its collaborators.
func NewFetcher(client *transport.Client, opts Options, redactor *Redactor, validators *ValidatorStore, artifacts *safeio.ArtifactStore) *Fetcher {
	opts.APIBase = strings.TrimRight(opts.APIBase, "/")
	return &Fetcher{
		client:     client,
		opts:       opts,
		redactor:   redactor,
		validators: validators,
		artifacts:  artifacts,
		digests:    NewDigestCalculator(client),
		walker:     NewPageWalker(client, redactor),
	}
}

// ReleaseURL is the API endpoint of a release identifier ("latest",
// "tags/<tag>" or a numeric id).
func (f *Fetcher) ReleaseURL(releaseID string) string {
	return fmt.Sprintf("%s/repos/%s/releases/%s", f.opts.APIBase, f.opts.Repo, releaseID)
}

// ListURL is the first page of the release list.
func (f *Fetcher) ListURL() string {
	u := fmt.Sprintf("%s/repos/%s/releases", f.opts.APIBase, f.opts.Repo)
	if f.opts.PerPage > 0 {
		u += "?" + url.Values{"per_page": {strconv.Itoa(f.opts.PerPage)}}.Encode()
	}
	return u
}

// FetchOne retrieves a single release. A 304 answer to the conditional
// request yields OutcomeNotModified and touches nothing on disk. Otherwise
// the sanitized (and optionally digested) release is written first and its
// validators saved after.
func (f *Fetcher) FetchOne(ctx context.Context, releaseID string, calculateAssetInfo bool) (Outcome, error) {
	name, err := safeio.CleanRelativeName(releaseID)
	if err != nil {
		return OutcomeFailed, fmt.Errorf("invalid release id: %w", err)
	}

	apiURL := f.ReleaseURL(name)
	resource := "release " + name

	resp, err := f.client.Get(ctx, apiURL, f.validators.Load(name))
	if err != nil {
		logger.Error("Failed to retrieve release", logger.String("release", name), logger.Err(err))
		return OutcomeFailed, &NetworkError{Source: "github", URL: apiURL, Wrapped: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if err := checkStatus(resp, resource, apiURL); err != nil {
		if IsNotModified(err) {
			logger.Info("Not modified", logger.String("release", name))
			return OutcomeNotModified, nil
		}
		logger.Error("Failed to retrieve release",
			logger.String("release", name), logger.Int("status", resp.StatusCode))
		return OutcomeFailed, err
	}

	release, err := decodeRelease(resp.Body, resource)
	if err != nil {
		logger.Error("Unexpected release response", logger.String("release", name), logger.Err(err))
		return OutcomeFailed, err
	}

	f.redactor.SanitizeRelease(release)

	if calculateAssetInfo {
		if err := f.digests.Annotate(ctx, release); err != nil {
			logger.Error("Failed to calculate asset digests", logger.String("release", name), logger.Err(err))
			return OutcomeFailed, err
		}
	}

	path, err := f.artifacts.Write(name, release)
	if err != nil {
		logger.Error("Failed to write release", logger.String("release", name), logger.Err(err))
		return OutcomeFailed, err
	}
	logger.Info("Release written", logger.String("release", name), logger.String("path", path))

	// Validators are saved only once the artifact is on disk
	if err := f.validators.Save(name, resp.Header); err != nil {
		logger.Warn("Failed to save cache validators", logger.String("release", name), logger.Err(err))
	}

	return OutcomeFetched, nil
}

// FetchIndex walks the full release list and writes it as the index
// artifact. Returns the number of releases written.
func (f *Fetcher) FetchIndex(ctx context.Context, pageLimit int) (int, error) {
	listing, err := f.walker.Walk(ctx, f.ListURL(), pageLimit)
	if err != nil {
		return 0, err
	}

	path, err := f.artifacts.Write(IndexName, listing.Releases)
	if err != nil {
		logger.Error("Failed to write release index", logger.Err(err))
		return 0, err
	}
	logger.Info("Release index written",
		logger.String("path", path),
		logger.Int("releases", len(listing.Releases)),
		logger.Int("pages", listing.Pages))

	if err := f.validators.Save(IndexCacheKey, listing.FirstHeader); err != nil {
		logger.Warn("Failed to save index validators", logger.Err(err))
	}

	return len(listing.Releases), nil
}
