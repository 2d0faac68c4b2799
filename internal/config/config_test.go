package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		setup       func()
		expectError bool
		check       func(t *testing.T, cfg *Config)
	}{
		{
			name:  "defaults",
			setup: func() { viper.Reset() },
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "app/views", cfg.Views.Path)
				assert.Equal(t, []string{".html.erb", ".erb", ".builder", ".slim"}, cfg.Views.Extensions)
				assert.True(t, cfg.Resolve.Partials)
				assert.True(t, cfg.Resolve.Embed)
				assert.Empty(t, cfg.Resolve.Namespace)
				assert.Equal(t, DefaultMaxDepth, cfg.Resolve.MaxDepth)
				assert.Equal(t, "config/routes.yml", cfg.Routes.File)
				assert.Equal(t, "text", cfg.Output.Format)
				assert.Equal(t, "warn", cfg.Log.Level)
			},
		},
		{
			name: "explicit false booleans",
			setup: func() {
				viper.Reset()
				viper.Set("resolve.partials", false)
				viper.Set("resolve.embed", false)
				viper.Set("resolve.namespace", "admin")
			},
			check: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.Resolve.Partials)
				assert.False(t, cfg.Resolve.Embed)
				assert.Equal(t, "admin", cfg.Resolve.Namespace)
			},
		},
		{
			name: "custom extensions",
			setup: func() {
				viper.Reset()
				viper.Set("views.extensions", []string{".slim", ".erb"})
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{".slim", ".erb"}, cfg.Views.Extensions)
			},
		},
		{
			name: "invalid max depth type",
			setup: func() {
				viper.Reset()
				viper.Set("resolve.max_depth", "deep")
			},
			expectError: true,
		},
		{
			name: "zero max depth",
			setup: func() {
				viper.Reset()
				viper.Set("resolve.max_depth", 0)
			},
			expectError: true,
		},
		{
			name: "extension without dot",
			setup: func() {
				viper.Reset()
				viper.Set("views.extensions", []string{"erb"})
			},
			expectError: true,
		},
		{
			name: "duplicate extension",
			setup: func() {
				viper.Reset()
				viper.Set("views.extensions", []string{".erb", ".erb"})
			},
			expectError: true,
		},
		{
			name: "unknown output format",
			setup: func() {
				viper.Reset()
				viper.Set("output.format", "xml")
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer viper.Reset()

			config, err := Load()

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, config)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, config)
			tt.check(t, config)
		})
	}
}

// TestLoadWithEnvironment tests loading config with environment variables
func TestLoadWithEnvironment(t *testing.T) {
	t.Setenv("VIEWFINDER_RESOLVE_NAMESPACE", "admin")
	t.Setenv("VIEWFINDER_RESOLVE_EMBED", "false")

	viper.Reset()
	defer viper.Reset()
	viper.SetEnvPrefix("VIEWFINDER")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	// AutomaticEnv only applies to keys viper already knows about
	viper.SetDefault("resolve.namespace", "")
	viper.SetDefault("resolve.embed", true)

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "admin", config.Resolve.Namespace)
	assert.False(t, config.Resolve.Embed)
}

func TestSetDefaultsExposesKeysToEnvironment(t *testing.T) {
	t.Setenv("VIEWFINDER_RESOLVE_MAX_DEPTH", "12")
	t.Setenv("VIEWFINDER_OUTPUT_FORMAT", "json")

	viper.Reset()
	defer viper.Reset()
	viper.SetEnvPrefix("VIEWFINDER")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	SetDefaults()

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 12, config.Resolve.MaxDepth)
	assert.Equal(t, "json", config.Output.Format)
	assert.True(t, config.Resolve.Partials)
	assert.True(t, config.Resolve.Embed)
	assert.Equal(t, DefaultExtensions, config.Views.Extensions)
	assert.Equal(t, "config/routes.yml", config.Routes.File)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".viewfinder.yml")
	content := `views:
  path: views
  extensions: [.erb]
resolve:
  max_depth: 8
routes:
  file: routes.txt
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	viper.Reset()
	defer viper.Reset()
	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())

	config, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "views", config.Views.Path)
	assert.Equal(t, []string{".erb"}, config.Views.Extensions)
	assert.Equal(t, 8, config.Resolve.MaxDepth)
	assert.Equal(t, "routes.txt", config.Routes.File)
}

func TestResolveRoot(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/srv/shop/config/application.rb", []byte("# app"), 0644))
	require.NoError(t, fs.MkdirAll("/srv/shop/app/views/users", 0755))

	t.Run("discovered from nested directory", func(t *testing.T) {
		cfg := &Config{Views: ViewsConfig{Path: "app/views"}, Routes: RoutesConfig{File: "config/routes.yml"}}
		root := cfg.ResolveRoot(fs, "/srv/shop/app/views/users")

		assert.Equal(t, "/srv/shop", root)
		assert.Equal(t, "/srv/shop/app/views", cfg.ViewsRoot())
		assert.Equal(t, "/srv/shop/config/routes.yml", cfg.RoutesFile())
	})

	t.Run("falls back to cwd", func(t *testing.T) {
		cfg := &Config{Views: ViewsConfig{Path: "app/views"}}
		assert.Equal(t, "/tmp/elsewhere", cfg.ResolveRoot(fs, "/tmp/elsewhere"))
	})

	t.Run("relative configured root", func(t *testing.T) {
		cfg := &Config{Root: "shop", Views: ViewsConfig{Path: "/abs/views"}}
		assert.Equal(t, "/srv/shop", cfg.ResolveRoot(fs, "/srv"))
		assert.Equal(t, "/abs/views", cfg.ViewsRoot())
	})
}

func TestValidateFormat(t *testing.T) {
	assert.NoError(t, ValidateFormat("json", OutputFormats))

	err := ValidateFormat("js", OutputFormats)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "json"`)

	err = ValidateFormat("xml", OutputFormats)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "text, json, yaml")
}
