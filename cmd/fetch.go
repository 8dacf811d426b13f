package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/fulmenhq/relinfo/pkg/buildinfo"
	"github.com/fulmenhq/relinfo/pkg/config"
	"github.com/fulmenhq/relinfo/pkg/logger"
	"github.com/fulmenhq/relinfo/pkg/releases"
	"github.com/fulmenhq/relinfo/pkg/safeio"
	"github.com/fulmenhq/relinfo/pkg/transport"
)

func newFetchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fetch",
		Short: "Fetch a release (and optionally the release index)",
		Long: `Fetch one release into <output-dir>/<release-id>.<ext>, skipping it when the
cached ETag / Last-Modified validators show it is unchanged. With --index the
full release list is also written to <output-dir>/index.<ext>.

Every flag can also be set through INPUT_<KEY> environment variables
(e.g. INPUT_GITHUB_RELEASE_ID) or a config file.`,
		Args: cobra.NoArgs,
		RunE: runFetch,
	}

	f := cmd.Flags()
	f.String("repo", "", "Repository in owner/name form (env INPUT_GITHUB_REPO or GITHUB_REPOSITORY)")
	f.String("release-id", "latest", "Release to fetch: latest, tags/<tag> or a numeric id")
	f.String("output-dir", "releases", "Directory for release artifacts")
	f.String("cache-dir", "_cache_data/releases", "Directory for cached validators")
	f.String("ext", "json", "Artifact file extension")
	f.Bool("index", false, "Also fetch the full release index")
	f.Bool("filter-drafts", true, "Drop draft releases from the index")
	f.String("release-keys", `["author"]`, "JSON array of release fields to remove, or false")
	f.String("asset-keys", `["uploader", "download_count"]`, "JSON array of asset fields to remove, or false")
	f.Bool("asset-info", false, "Download assets and record sha256, sha512 and blake2b digests")
	f.String("api-base", config.DefaultAPIBase, "GitHub API base URL")
	f.Int("page-limit", 0, "Maximum index pages to fetch (0 = all)")
	f.Int("per-page", 0, "Index page size (0 = server default)")
	f.Duration("timeout", transport.DefaultTimeout, "Connect and response-header timeout (0 = none); body downloads are unbounded")

	return cmd
}

func loadConfig(cmd *cobra.Command, partial bool) (*config.Config, error) {
	configFile, _ := cmd.Flags().GetString("config")
	return config.Load(config.Options{
		ConfigFile: configFile,
		Flags:      cmd.Flags(),
		Partial:    partial,
	})
}

func runFetch(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}

	logger.Info("Fetching release information",
		logger.String("repo", cfg.Repo),
		logger.String("release", cfg.ReleaseID),
		logger.Bool("index", cfg.FetchReleaseIndex))

	fs := afero.NewOsFs()
	client := transport.NewClient(transport.NewDefaultHTTPFetcher(cfg.Timeout), cfg.Token, buildinfo.UserAgent())
	fetcher := releases.NewFetcher(
		client,
		releases.Options{Repo: cfg.Repo, APIBase: cfg.APIBase, PerPage: cfg.IndexPerPage},
		releases.NewRedactor(cfg.FilterReleaseKeys, cfg.FilterAssetKeys, cfg.FilterDraftReleases),
		releases.NewValidatorStore(fs, cfg.CacheDirectory),
		safeio.NewArtifactStore(fs, cfg.OutputDirectory, cfg.OutputFileExtension),
	)

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	var errs error

	// An index failure does not prevent the release fetch
	if cfg.FetchReleaseIndex {
		n, err := fetcher.FetchIndex(ctx, cfg.IndexPageLimit)
		if err != nil {
			logger.Error("Release index failed", logger.Err(err))
			errs = multierr.Append(errs, fmt.Errorf("index: %w", err))
		} else {
			_, _ = fmt.Fprintf(out, "index: %d releases\n", n)
		}
	}

	outcome, err := fetcher.FetchOne(ctx, cfg.ReleaseID, cfg.CalculateAssetInfo)
	if err != nil {
		errs = multierr.Append(errs, fmt.Errorf("release %s: %w", cfg.ReleaseID, err))
	}
	_, _ = fmt.Fprintf(out, "release %s: %s\n", cfg.ReleaseID, outcome)

	return errs
}
