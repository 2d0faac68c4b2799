// Package config provides configuration management for viewfinder using Viper
// for flexible configuration loading from files, environment variables, and
// command-line flags.
//
// The configuration describes where the project and its views live, which
// file extensions are tried when resolving templates, how partials are
// expanded, and where the route table is read from.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/conneroisu/viewfinder/internal/validation"
)

// DefaultExtensions is the lookup priority order for template files.
var DefaultExtensions = []string{".html.erb", ".erb", ".builder", ".slim"}

// DefaultMaxDepth bounds render nesting when the configuration does not.
const DefaultMaxDepth = 64

// rootMarker identifies a Rails project root.
const rootMarker = "config/application.rb"

type Config struct {
	Root    string        `mapstructure:"root" json:"root" yaml:"root"`
	Views   ViewsConfig   `mapstructure:"views" json:"views" yaml:"views"`
	Resolve ResolveConfig `mapstructure:"resolve" json:"resolve" yaml:"resolve"`
	Routes  RoutesConfig  `mapstructure:"routes" json:"routes" yaml:"routes"`
	Output  OutputConfig  `mapstructure:"output" json:"output" yaml:"output"`
	Log     LogConfig     `mapstructure:"log" json:"log" yaml:"log"`
}

type ViewsConfig struct {
	Path       string   `mapstructure:"path" json:"path" yaml:"path"`
	Extensions []string `mapstructure:"extensions" json:"extensions" yaml:"extensions"`
}

type ResolveConfig struct {
	Partials  bool   `mapstructure:"partials" json:"partials" yaml:"partials"`
	Embed     bool   `mapstructure:"embed" json:"embed" yaml:"embed"`
	Namespace string `mapstructure:"namespace" json:"namespace" yaml:"namespace"`
	MaxDepth  int    `mapstructure:"max_depth" json:"max_depth" yaml:"max_depth"`
}

type RoutesConfig struct {
	File string `mapstructure:"file" json:"file" yaml:"file"`
}

type OutputConfig struct {
	Format string `mapstructure:"format" json:"format" yaml:"format"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" json:"level" yaml:"level"`
	Format string `mapstructure:"format" json:"format" yaml:"format"`
}

// SetDefaults registers every key with viper. Keys viper knows about can be
// overridden from the environment.
func SetDefaults() {
	viper.SetDefault("views.path", "app/views")
	viper.SetDefault("views.extensions", DefaultExtensions)
	viper.SetDefault("resolve.partials", true)
	viper.SetDefault("resolve.embed", true)
	viper.SetDefault("resolve.max_depth", DefaultMaxDepth)
	viper.SetDefault("routes.file", "config/routes.yml")
	viper.SetDefault("output.format", "text")
	viper.SetDefault("log.level", "warn")
	viper.SetDefault("log.format", "text")
}

// Load reads the configuration from viper, filling in defaults and
// validating the result.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Views.Path == "" {
		config.Views.Path = "app/views"
	}

	// Handle extensions set via viper (workaround for viper slice handling)
	if viper.IsSet("views.extensions") && len(config.Views.Extensions) == 0 {
		config.Views.Extensions = viper.GetStringSlice("views.extensions")
	}
	if len(config.Views.Extensions) == 0 {
		config.Views.Extensions = append([]string(nil), DefaultExtensions...)
	}

	// Booleans default to true, so only an explicit setting may turn them off
	if viper.IsSet("resolve.partials") {
		config.Resolve.Partials = viper.GetBool("resolve.partials")
	} else {
		config.Resolve.Partials = true
	}
	if viper.IsSet("resolve.embed") {
		config.Resolve.Embed = viper.GetBool("resolve.embed")
	} else {
		config.Resolve.Embed = true
	}

	if viper.IsSet("resolve.max_depth") {
		config.Resolve.MaxDepth = viper.GetInt("resolve.max_depth")
	} else {
		config.Resolve.MaxDepth = DefaultMaxDepth
	}

	if config.Routes.File == "" {
		config.Routes.File = "config/routes.yml"
	}

	if config.Output.Format == "" {
		config.Output.Format = "text"
	}

	if config.Log.Level == "" {
		config.Log.Level = "warn"
	}
	if config.Log.Format == "" {
		config.Log.Format = "text"
	}

	// Validate configuration values
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// ResolveRoot fills in Root when it was not configured, walking up from cwd to
// the first directory that contains config/application.rb. When no such
// directory exists cwd itself is used.
func (c *Config) ResolveRoot(fs afero.Fs, cwd string) string {
	if c.Root != "" {
		if !filepath.IsAbs(c.Root) {
			c.Root = filepath.Join(cwd, c.Root)
		}
		return c.Root
	}

	if root, ok := FindProjectRoot(fs, cwd); ok {
		c.Root = root
	} else {
		c.Root = cwd
	}
	return c.Root
}

// ViewsRoot returns the absolute views directory.
func (c *Config) ViewsRoot() string {
	if filepath.IsAbs(c.Views.Path) {
		return filepath.Clean(c.Views.Path)
	}
	return filepath.Join(c.Root, c.Views.Path)
}

// RoutesFile returns the route table location.
func (c *Config) RoutesFile() string {
	if filepath.IsAbs(c.Routes.File) {
		return c.Routes.File
	}
	return filepath.Join(c.Root, c.Routes.File)
}

// FindProjectRoot walks up from start looking for config/application.rb.
func FindProjectRoot(fs afero.Fs, start string) (string, bool) {
	dir := filepath.Clean(start)
	for {
		if ok, _ := afero.Exists(fs, filepath.Join(dir, rootMarker)); ok {
			return dir, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// validateConfig validates configuration values for correctness
func validateConfig(config *Config) error {
	if err := validateViewsConfig(&config.Views); err != nil {
		return fmt.Errorf("views config: %w", err)
	}

	if err := validateResolveConfig(&config.Resolve); err != nil {
		return fmt.Errorf("resolve config: %w", err)
	}

	if err := ValidateFormat(config.Output.Format, OutputFormats); err != nil {
		return fmt.Errorf("output config: %w", err)
	}

	return nil
}

func validateViewsConfig(config *ViewsConfig) error {
	seen := make(map[string]bool, len(config.Extensions))
	for _, ext := range config.Extensions {
		if err := validation.ValidateExtension(ext); err != nil {
			return err
		}
		if seen[ext] {
			return fmt.Errorf("extension %q listed twice", ext)
		}
		seen[ext] = true
	}
	return nil
}

func validateResolveConfig(config *ResolveConfig) error {
	if config.MaxDepth < 1 {
		return fmt.Errorf("max_depth must be at least 1, got %d", config.MaxDepth)
	}
	return nil
}

// OutputFormats lists the formats the find command understands.
var OutputFormats = []string{"text", "json", "yaml"}

// ValidateFormat checks format against the allowed list, suggesting the
// closest candidate when it is a simple typo.
func ValidateFormat(format string, allowed []string) error {
	for _, f := range allowed {
		if format == f {
			return nil
		}
	}
	for _, f := range allowed {
		if strings.HasPrefix(f, strings.ToLower(format)) && format != "" {
			return fmt.Errorf("invalid format %q, did you mean %q?", format, f)
		}
	}
	return fmt.Errorf("invalid format %q, must be one of: %s", format, strings.Join(allowed, ", "))
}
