package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds all configuration for a relinfo run
type Config struct {
	Repo                string        `json:"github_repo" yaml:"github_repo" toml:"github_repo"`
	Token               string        `json:"github_token" yaml:"github_token" toml:"github_token"`
	ReleaseID           string        `json:"github_release_id" yaml:"github_release_id" toml:"github_release_id"`
	OutputDirectory     string        `json:"output_directory" yaml:"output_directory" toml:"output_directory"`
	CacheDirectory      string        `json:"cache_directory" yaml:"cache_directory" toml:"cache_directory"`
	OutputFileExtension string        `json:"output_file_extension" yaml:"output_file_extension" toml:"output_file_extension"`
	FetchReleaseIndex   bool          `json:"fetch_release_index" yaml:"fetch_release_index" toml:"fetch_release_index"`
	FilterDraftReleases bool          `json:"filter_draft_releases" yaml:"filter_draft_releases" toml:"filter_draft_releases"`
	FilterReleaseKeys   []string      `json:"filter_release_keys" yaml:"filter_release_keys" toml:"filter_release_keys"`
	FilterAssetKeys     []string      `json:"filter_asset_keys" yaml:"filter_asset_keys" toml:"filter_asset_keys"`
	CalculateAssetInfo  bool          `json:"calculate_asset_info" yaml:"calculate_asset_info" toml:"calculate_asset_info"`
	APIBase             string        `json:"api_base" yaml:"api_base" toml:"api_base"`
	IndexPageLimit      int           `json:"index_page_limit" yaml:"index_page_limit" toml:"index_page_limit"`
	IndexPerPage        int           `json:"index_per_page" yaml:"index_per_page" toml:"index_per_page"`
	Timeout             time.Duration `json:"timeout" yaml:"timeout" toml:"timeout"`
}

// Configuration keys
const (
	KeyRepo                = "github_repo"
	KeyToken               = "github_token"
	KeyReleaseID           = "github_release_id"
	KeyOutputDirectory     = "output_directory"
	KeyCacheDirectory      = "cache_directory"
	KeyOutputFileExtension = "output_file_extension"
	KeyFetchReleaseIndex   = "fetch_release_index"
	KeyFilterDraftReleases = "filter_draft_releases"
	KeyFilterReleaseKeys   = "filter_release_keys"
	KeyFilterAssetKeys     = "filter_asset_keys"
	KeyCalculateAssetInfo  = "calculate_asset_info"
	KeyAPIBase             = "api_base"
	KeyIndexPageLimit      = "index_page_limit"
	KeyIndexPerPage        = "index_per_page"
	KeyTimeout             = "timeout"
)

// EnvPrefix is prepended to every key when read from the environment.
const EnvPrefix = "INPUT"

// DefaultAPIBase is the public GitHub REST endpoint.
const DefaultAPIBase = "https://api.github.com"

var defaults = map[string]interface{}{
	KeyReleaseID:           "latest",
	KeyOutputDirectory:     "releases",
	KeyCacheDirectory:      "_cache_data/releases",
	KeyOutputFileExtension: "json",
	KeyFetchReleaseIndex:   false,
	KeyFilterDraftReleases: true,
	KeyFilterReleaseKeys:   `["author"]`,
	KeyFilterAssetKeys:     `["uploader", "download_count"]`,
	KeyCalculateAssetInfo:  false,
	KeyAPIBase:             DefaultAPIBase,
	KeyIndexPageLimit:      0,
	KeyIndexPerPage:        0,
	KeyTimeout:             30 * time.Second,
}

// FlagKeys maps command-line flag names to configuration keys.
var FlagKeys = map[string]string{
	"repo":          KeyRepo,
	"release-id":    KeyReleaseID,
	"output-dir":    KeyOutputDirectory,
	"cache-dir":     KeyCacheDirectory,
	"ext":           KeyOutputFileExtension,
	"index":         KeyFetchReleaseIndex,
	"filter-drafts": KeyFilterDraftReleases,
	"release-keys":  KeyFilterReleaseKeys,
	"asset-keys":    KeyFilterAssetKeys,
	"asset-info":    KeyCalculateAssetInfo,
	"api-base":      KeyAPIBase,
	"page-limit":    KeyIndexPageLimit,
	"per-page":      KeyIndexPerPage,
	"timeout":       KeyTimeout,
}

// Options controls where configuration is read from.
type Options struct {
	// ConfigFile is an explicit config file; empty searches "." and $HOME
	// for relinfo.{yaml,toml,json}.
	ConfigFile string
	// Flags, when set, override every other source for flags the user changed.
	Flags *pflag.FlagSet
	// Partial skips Validate, for commands that never contact the API.
	Partial bool
}

// Load resolves configuration from flags, environment, config file and
// defaults, in that order of precedence, and validates it.
func Load(opts Options) (*Config, error) {
	v := viper.New()

	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("relinfo")
		v.AddConfigPath(".")     // Current directory
		v.AddConfigPath("$HOME") // Home directory
	}

	// Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	// Repository and token fall back to the workflow-provided variables
	if err := v.BindEnv(KeyRepo, EnvPrefix+"_GITHUB_REPO", "GITHUB_REPOSITORY"); err != nil {
		return nil, err
	}
	if err := v.BindEnv(KeyToken, EnvPrefix+"_GITHUB_TOKEN", "GITHUB_TOKEN"); err != nil {
		return nil, err
	}

	if opts.Flags != nil {
		for name, key := range FlagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("failed to bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// A missing optional file is fine; an explicit or malformed one is not
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return nil, &Error{Key: "config file", Message: "cannot read", Wrapped: err}
		}
	}

	cfg := &Config{
		Repo:                strings.TrimSpace(v.GetString(KeyRepo)),
		Token:               v.GetString(KeyToken),
		ReleaseID:           strings.TrimSpace(v.GetString(KeyReleaseID)),
		OutputDirectory:     filepath.Clean(v.GetString(KeyOutputDirectory)),
		CacheDirectory:      filepath.Clean(v.GetString(KeyCacheDirectory)),
		OutputFileExtension: strings.TrimPrefix(strings.TrimSpace(v.GetString(KeyOutputFileExtension)), "."),
		FetchReleaseIndex:   v.GetBool(KeyFetchReleaseIndex),
		FilterDraftReleases: v.GetBool(KeyFilterDraftReleases),
		CalculateAssetInfo:  v.GetBool(KeyCalculateAssetInfo),
		APIBase:             strings.TrimRight(strings.TrimSpace(v.GetString(KeyAPIBase)), "/"),
		IndexPageLimit:      v.GetInt(KeyIndexPageLimit),
		IndexPerPage:        v.GetInt(KeyIndexPerPage),
		Timeout:             v.GetDuration(KeyTimeout),
	}

	var err error
	if cfg.FilterReleaseKeys, err = ParseFilterSet(KeyFilterReleaseKeys, v.Get(KeyFilterReleaseKeys)); err != nil {
		return nil, err
	}
	if cfg.FilterAssetKeys, err = ParseFilterSet(KeyFilterAssetKeys, v.Get(KeyFilterAssetKeys)); err != nil {
		return nil, err
	}

	if opts.Partial {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c *Config) Validate() error {
	if c.Repo == "" {
		return &Error{Key: KeyRepo, Message: "missing (set INPUT_GITHUB_REPO or GITHUB_REPOSITORY)"}
	}
	owner, name, ok := strings.Cut(c.Repo, "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return &Error{Key: KeyRepo, Message: fmt.Sprintf("%q is not in owner/name form", c.Repo)}
	}
	if c.ReleaseID == "" {
		return &Error{Key: KeyReleaseID, Message: "must not be empty"}
	}
	if c.OutputFileExtension == "" {
		return &Error{Key: KeyOutputFileExtension, Message: "must not be empty"}
	}
	if c.APIBase == "" {
		return &Error{Key: KeyAPIBase, Message: "must not be empty"}
	}
	if c.IndexPageLimit < 0 {
		return &Error{Key: KeyIndexPageLimit, Message: "must be zero (unbounded) or positive"}
	}
	if c.IndexPerPage < 0 || c.IndexPerPage > 100 {
		return &Error{Key: KeyIndexPerPage, Message: "must be between 0 and 100"}
	}
	if c.Timeout < 0 {
		return &Error{Key: KeyTimeout, Message: "must not be negative"}
	}
	return nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	out := *c
	if out.Token != "" {
		out.Token = "***"
	}
	return &out
}
