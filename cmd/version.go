package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/viewfinder/internal/config"
	"github.com/conneroisu/viewfinder/internal/version"
)

var (
	versionFormat string
	versionShort  bool
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Long: `Display version information for viewfinder including:

- Semantic version number
- Git commit hash
- Build timestamp
- Go version and target platform

Examples:
  viewfinder version              # Show version details
  viewfinder version --short      # Show the version number only
  viewfinder version --format json # Output as JSON`,
	Args: cobra.NoArgs,
	RunE: runVersionCommand,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	AddFormatFlag(versionCmd, &versionFormat, "text", config.OutputFormats)
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Show short version only")
}

func runVersionCommand(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	info := version.GetBuildInfo()

	switch versionFormat {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(info)
	case "yaml":
		encoder := yaml.NewEncoder(out)
		defer encoder.Close()
		return encoder.Encode(info)
	default:
		return outputVersionText(out, info)
	}
}

func outputVersionText(out io.Writer, info *version.BuildInfo) error {
	if versionShort {
		_, err := fmt.Fprintln(out, version.GetShortVersion())
		return err
	}

	buildType := "development"
	if version.IsRelease() {
		buildType = "release"
	}
	_, err := fmt.Fprintf(out, "viewfinder %s\n%s\nBuild type: %s\n", info.Version, info.String(), buildType)
	return err
}
