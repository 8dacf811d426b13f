package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/relinfo/pkg/buildinfo"
)

type versionInfo struct {
	Version       string `json:"version"`
	ModuleVersion string `json:"moduleVersion,omitempty"`
	GoVersion     string `json:"goVersion"`
	Platform      string `json:"platform"`
}

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show relinfo version",
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
	cmd.Flags().Bool("json", false, "Output version information in JSON format")
	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	info := versionInfo{
		Version:       buildinfo.BinaryVersion,
		ModuleVersion: buildinfo.ModuleVersion(),
		GoVersion:     runtime.Version(),
		Platform:      fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	_, _ = fmt.Fprintf(out, "relinfo %s\n", info.Version)
	_, _ = fmt.Fprintf(out, "Go: %s (%s)\n", info.GoVersion, info.Platform)
	return nil
}
