package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fulmenhq/relinfo/pkg/config"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect relinfo configuration",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Long: `Show the configuration a fetch would use, after applying defaults, the
config file and INPUT_* environment variables. The token is masked.`,
		Args: cobra.NoArgs,
		RunE: runConfigShow,
	}
	show.Flags().String("format", "yaml", "Output format (json|yaml|toml)")
	cmd.AddCommand(show)

	return cmd
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	format, _ := cmd.Flags().GetString("format")

	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}
	return renderConfig(cmd.OutOrStdout(), cfg.Redacted(), format)
}

// renderConfig writes cfg in the requested format.
func renderConfig(w io.Writer, cfg *config.Config, format string) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(cfg)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	case "toml":
		return toml.NewEncoder(w).Encode(cfg)
	default:
		return &config.Error{Key: "format", Message: fmt.Sprintf("unsupported format %q (json|yaml|toml)", format)}
	}
}
