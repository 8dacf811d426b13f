// Package releases fetches GitHub release metadata and persists it as
// stable JSON artifacts.
//
// # Overview
//
// A run fetches one release (by id, "latest" or "tags/<tag>") and optionally
// the full paginated release list. Each record passes through a Redactor
// that removes configured fields, and can be annotated with asset digests
// computed from the downloaded bytes.
//
// # Architecture
//
//   - Fetcher: orchestrates a single-release fetch and the index walk
//   - ValidatorStore: ETag / Last-Modified records used for conditional GETs
//   - Redactor: field removal and draft exclusion
//   - DigestCalculator: sha256, sha512 and BLAKE2b-512 over one stream
//   - PageWalker: follows Link rel="next" headers
//
// # Conditional Requests
//
// Before fetching a release the stored validator is turned into an
// If-None-Match (preferred) or If-Modified-Since header. A 304 answer ends
// the fetch with OutcomeNotModified and leaves the artifact and the cache
// untouched. On 200 the artifact is written first and the new validators are
// saved after, so an interrupted run never records a validator for data that
// was not persisted.
//
// # Basic Usage
//
//	client := transport.NewClient(transport.NewDefaultHTTPFetcher(0), token, buildinfo.UserAgent())
//	fs := afero.NewOsFs()
//	f := releases.NewFetcher(client,
//		releases.Options{Repo: "octo/widgets", APIBase: "https://api.github.com"},
//		releases.NewRedactor([]string{"author"}, []string{"uploader"}, true),
//		releases.NewValidatorStore(fs, "_cache_data/releases"),
//		safeio.NewArtifactStore(fs, "releases", "json"))
//
//	outcome, err := f.FetchOne(ctx, "latest", false)
//
// # Testing
//
// All network access goes through transport.HTTPFetcher:
//
//	mock := transport.NewMockHTTPFetcher()
//	mock.AddResponse("https://api.github.com/repos/octo/widgets/releases/latest", 200, body)
package releases
