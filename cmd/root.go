package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "viewfinder",
	Short: "Expand Rails views and their partials without booting the app",
	Long: `viewfinder resolves a view template, or the view behind a route, to the
template text it renders. Every partial it references is followed, either
inlined where it is rendered or listed after it, with comments marking
where each piece came from.

Quick Start:
  viewfinder find users/show              Inline every partial of a view
  viewfinder find users_path              Find the view behind a route
  viewfinder find --no-embed users/show   One entry per template instead
  viewfinder list users/show              Table of every template touched
  viewfinder routes                       Show the route table
  viewfinder watch users/show             Re-run find whenever a view changes`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .viewfinder.yml, can also use VIEWFINDER_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json)")
	rootCmd.PersistentFlags().String("root", "", "project root (default: nearest directory with config/application.rb)")
	rootCmd.PersistentFlags().String("views", "app/views", "views directory, relative to the project root")
	rootCmd.PersistentFlags().String("routes", "config/routes.yml", "route table file: YAML, or saved rails routes output")
	rootCmd.PersistentFlags().StringP("namespace", "n", "", "only match routes whose controller lives in this namespace")

	bindRootFlags()
}

// bindRootFlags maps the persistent flags onto configuration keys.
func bindRootFlags() {
	bindings := map[string]string{
		"log-level":  "log.level",
		"log-format": "log.format",
		"root":       "root",
		"views":      "views.path",
		"routes":     "routes.file",
		"namespace":  "resolve.namespace",
	}
	for flag, key := range bindings {
		_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
	}
}

// initConfig initializes the configuration system.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag: Explicitly specified config file path
//  2. VIEWFINDER_CONFIG_FILE environment variable: Custom config file path
//  3. Default: .viewfinder.yml in current directory
//
// Every key can also be set from the environment with the VIEWFINDER_ prefix,
// dots replaced by underscores (VIEWFINDER_RESOLVE_MAX_DEPTH=16).
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("VIEWFINDER_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".viewfinder")
	}

	viper.SetEnvPrefix("VIEWFINDER")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing or unreadable config file leaves the defaults in place
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
