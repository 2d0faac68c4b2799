package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/conneroisu/viewfinder/internal/config"
	"github.com/conneroisu/viewfinder/internal/finder"
	"github.com/conneroisu/viewfinder/internal/logging"
	"github.com/conneroisu/viewfinder/internal/routes"
)

// appFs is the filesystem every command reads views and routes from.
var appFs afero.Fs = afero.NewOsFs()

// app bundles what the commands share once configuration is loaded.
type app struct {
	cfg    *config.Config
	fs     afero.Fs
	logger *logging.ViewLogger
	routes *routes.Table
	stdout io.Writer
	stderr io.Writer
}

func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:     level,
		Format:    cfg.Log.Format,
		Output:    cmd.ErrOrStderr(),
		Component: "viewfinder",
	})

	a := &app{
		cfg:    cfg,
		fs:     appFs,
		logger: logger,
		stdout: cmd.OutOrStdout(),
		stderr: cmd.ErrOrStderr(),
	}
	if err := a.reloadRoutes(commandContext(cmd)); err != nil {
		return nil, err
	}

	logger.Debug(commandContext(cmd), "Configuration loaded",
		"root", cfg.Root, "views", cfg.ViewsRoot(), "routes", cfg.RoutesFile())
	return a, nil
}

// loadConfig reads the configuration and settles the project root.
func loadConfig() (*config.Config, error) {
	config.SetDefaults()
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	cfg.ResolveRoot(appFs, cwd)
	return cfg, nil
}

// reloadRoutes reads the route table. A missing file means no routes.
func (a *app) reloadRoutes(ctx context.Context) error {
	table, err := routes.Load(a.fs, a.cfg.RoutesFile())
	switch {
	case errors.Is(err, iofs.ErrNotExist):
		a.logger.Debug(ctx, "No route table", "path", a.cfg.RoutesFile())
		table = routes.NewTable(nil)
	case err != nil:
		return err
	}

	a.routes = table
	return nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func (a *app) finder(opts finder.Options) *finder.Finder {
	return finder.New(a.fs, a.cfg,
		finder.WithRoutes(a.routes),
		finder.WithLogger(a.logger),
		finder.WithOptions(opts),
	)
}

// warn prints diagnostics the way they are shown to users.
func (a *app) warn(res *finder.Result) {
	for _, d := range res.Diagnostics {
		fmt.Fprintln(a.stderr, d.String())
	}
}
