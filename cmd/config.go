package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/viewfinder/internal/config"
	"github.com/conneroisu/viewfinder/internal/resolver"
	"github.com/conneroisu/viewfinder/internal/routes"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect viewfinder configuration",
	Long: `Inspect the configuration viewfinder runs with.

Examples:
  viewfinder config show                # Show the effective configuration
  viewfinder config show --format json  # As JSON
  viewfinder config check               # Check the project layout and route table`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Display the effective configuration after the configuration file,
environment variables, command-line flags and defaults are combined. The
project root is shown as resolved from the working directory.`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the project layout and route table",
	Long: `Check that the configuration is valid, the views directory exists, and
the route table parses. Every route whose view cannot be found is listed.

The command exits with status 1 when a check fails. Warnings never fail it
unless --strict is given.`,
	Args: cobra.NoArgs,
	RunE: runConfigCheck,
}

var (
	configFormat string
	configStrict bool
)

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configCheckCmd)

	AddFormatFlag(configShowCmd, &configFormat, "yaml", []string{"yaml", "json"})
	configCheckCmd.Flags().BoolVar(&configStrict, "strict", false, "Treat warnings as errors")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch configFormat {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(cfg)
	default:
		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Fprintf(out, "# Loaded from %s\n", used)
		}
		encoder := yaml.NewEncoder(out)
		defer encoder.Close()
		return encoder.Encode(cfg)
	}
}

// checkStatus grades one check.
type checkStatus string

const (
	checkOK   checkStatus = "ok"
	checkWarn checkStatus = "warn"
	checkFail checkStatus = "fail"
)

type checkResult struct {
	Name    string
	Status  checkStatus
	Message string
	Details []string
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := loadConfig()
	if err != nil {
		printCheck(out, checkResult{Name: "configuration", Status: checkFail, Message: err.Error()})
		return errors.New("configuration check failed")
	}

	results := []checkResult{
		checkConfiguration(),
		checkProjectRoot(cfg),
		checkViews(cfg),
		checkRoutes(cfg),
	}

	var failed, warned int
	for _, r := range results {
		printCheck(out, r)
		switch r.Status {
		case checkFail:
			failed++
		case checkWarn:
			warned++
		}
	}

	switch {
	case failed > 0:
		return fmt.Errorf("%d check(s) failed", failed)
	case warned > 0 && configStrict:
		return fmt.Errorf("%d warning(s) in strict mode", warned)
	}
	return nil
}

func printCheck(w io.Writer, r checkResult) {
	fmt.Fprintf(w, "[%-4s] %s: %s\n", r.Status, r.Name, r.Message)
	for _, d := range r.Details {
		fmt.Fprintf(w, "       - %s\n", d)
	}
}

func checkConfiguration() checkResult {
	used := viper.ConfigFileUsed()
	if used == "" {
		return checkResult{Name: "configuration", Status: checkOK, Message: "valid (no configuration file, using defaults)"}
	}
	return checkResult{Name: "configuration", Status: checkOK, Message: "valid (" + used + ")"}
}

func checkProjectRoot(cfg *config.Config) checkResult {
	marker := filepath.Join(cfg.Root, "config", "application.rb")
	if ok, _ := afero.Exists(appFs, marker); !ok {
		return checkResult{
			Name:    "project root",
			Status:  checkWarn,
			Message: cfg.Root + " has no config/application.rb",
		}
	}
	return checkResult{Name: "project root", Status: checkOK, Message: cfg.Root}
}

func checkViews(cfg *config.Config) checkResult {
	root := cfg.ViewsRoot()
	if ok, _ := afero.DirExists(appFs, root); !ok {
		return checkResult{Name: "views", Status: checkFail, Message: root + " is not a directory"}
	}

	var templates, partials int
	err := afero.Walk(appFs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || !hasViewExtension(info.Name(), cfg.Views.Extensions) {
			return err
		}
		if strings.HasPrefix(info.Name(), "_") {
			partials++
		} else {
			templates++
		}
		return nil
	})
	if err != nil {
		return checkResult{Name: "views", Status: checkFail, Message: err.Error()}
	}

	return checkResult{
		Name:    "views",
		Status:  checkOK,
		Message: fmt.Sprintf("%s (%d templates, %d partials)", root, templates, partials),
	}
}

func checkRoutes(cfg *config.Config) checkResult {
	table, err := routes.Load(appFs, cfg.RoutesFile())
	switch {
	case errors.Is(err, iofs.ErrNotExist):
		return checkResult{
			Name:    "routes",
			Status:  checkWarn,
			Message: cfg.RoutesFile() + " not found, only template paths can be used",
		}
	case err != nil:
		return checkResult{Name: "routes", Status: checkFail, Message: err.Error()}
	}

	res := resolver.New(appFs, cfg.ViewsRoot(), cfg.Views.Extensions)
	var missing []string
	for _, r := range table.Filter(cfg.Resolve.Namespace) {
		if r.Name == "" || r.Controller == "" || r.Action == "" {
			continue
		}
		if _, ok := res.ResolveTemplate(r.ViewPath()); !ok {
			missing = append(missing, fmt.Sprintf("%s -> %s", r.Name, r.ViewPath()))
		}
	}

	result := checkResult{
		Name:    "routes",
		Status:  checkOK,
		Message: fmt.Sprintf("%s (%d routes)", cfg.RoutesFile(), table.Len()),
	}
	if len(missing) > 0 {
		result.Status = checkWarn
		result.Message += fmt.Sprintf(", %d without a view", len(missing))
		result.Details = missing
	}
	return result
}

func hasViewExtension(name string, extensions []string) bool {
	for _, ext := range extensions {
		if strings.HasSuffix(name, ext) && len(name) > len(ext) {
			return true
		}
	}
	return false
}
