package cmd

import (
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/fulmenhq/relinfo/pkg/releases"
	"github.com/fulmenhq/relinfo/pkg/safeio"
)

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear cached ETag / Last-Modified validators",
		Long: `Validators are stored per release id under the cache directory. The release
index uses the reserved key "_index". Without a key the configured release id
is used.`,
	}
	cmd.PersistentFlags().String("cache-dir", "_cache_data/releases", "Directory for cached validators")
	cmd.PersistentFlags().String("release-id", "latest", "Default key")

	cmd.AddCommand(&cobra.Command{
		Use:   "show [key]",
		Short: "Show stored validators for a key",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCacheShow,
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear [key]",
		Short: "Remove stored validators so the next fetch is unconditional",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCacheClear,
	})

	return cmd
}

func cacheStore(cmd *cobra.Command, args []string) (*releases.ValidatorStore, string, error) {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return nil, "", err
	}
	key := cfg.ReleaseID
	if len(args) == 1 {
		key = args[0]
	}
	return releases.NewValidatorStore(afero.NewOsFs(), cfg.CacheDirectory), key, nil
}

func runCacheShow(cmd *cobra.Command, args []string) error {
	store, key, err := cacheStore(cmd, args)
	if err != nil {
		return err
	}
	v, ok := store.Lookup(key)
	if !ok {
		return fmt.Errorf("no cached validators for %q in %s", key, store.Dir())
	}
	data, err := safeio.MarshalStable(v)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store, key, err := cacheStore(cmd, args)
	if err != nil {
		return err
	}
	if err := store.Remove(key); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "cleared %s\n", key)
	return nil
}
