// Package finder resolves a view template or a route name to the template
// text it renders, following every partial it references.
//
// Two assembly modes exist. Inline mode substitutes each render tag with the
// expanded partial, producing one composed document. Flat mode returns the
// requested template followed by every partial it reaches, depth first, each
// as its own entry.
//
// Every call owns a session that threads through the whole recursion, so
// self-referencing partials terminate in both modes and nothing is shared
// between concurrent calls.
package finder

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/conneroisu/viewfinder/internal/config"
	vferrors "github.com/conneroisu/viewfinder/internal/errors"
	"github.com/conneroisu/viewfinder/internal/format"
	"github.com/conneroisu/viewfinder/internal/logging"
	"github.com/conneroisu/viewfinder/internal/resolver"
	"github.com/conneroisu/viewfinder/internal/routes"
	"github.com/conneroisu/viewfinder/internal/scanner"
	"github.com/conneroisu/viewfinder/internal/types"
	"github.com/conneroisu/viewfinder/internal/validation"
)

// Options select what a call produces.
type Options struct {
	// Partials disables all expansion when false: only the requested template is returned
	Partials bool
	// Embed selects inline mode; false selects flat mode
	Embed bool
	// Namespace is forwarded to the route resolver
	Namespace string
	// MaxDepth bounds render nesting
	MaxDepth int
}

// OptionsFromConfig extracts finder options from the resolve section of cfg.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Partials:  cfg.Resolve.Partials,
		Embed:     cfg.Resolve.Embed,
		Namespace: cfg.Resolve.Namespace,
		MaxDepth:  cfg.Resolve.MaxDepth,
	}
}

// Result is the outcome of one Find call.
type Result struct {
	// Entries holds one composed entry in inline mode, or one per template in flat mode
	Entries []types.Entry `json:"entries" yaml:"entries"`
	// Diagnostics are the warnings raised along the way
	Diagnostics []types.Diagnostic `json:"diagnostics,omitempty" yaml:"diagnostics,omitempty"`
	// Touched lists every distinct resolved path, relative to the views root, in discovery order
	Touched []string `json:"touched" yaml:"touched"`
}

// String returns the entries' text concatenated in order.
func (r *Result) String() string {
	var b strings.Builder
	for _, e := range r.Entries {
		b.WriteString(e.Text)
	}
	return b.String()
}

// Empty reports whether nothing was found.
func (r *Result) Empty() bool {
	return len(r.Entries) == 0
}

// Finder is safe for concurrent use; all per-call state lives in a session.
type Finder struct {
	fs        afero.Fs
	root      string
	resolver  *resolver.PathResolver
	scanner   scanner.ReferenceScanner
	formatter *format.Formatter
	routes    routes.Resolver
	logger    logging.Logger
	opts      Options
}

// Option customizes a Finder.
type Option func(*Finder)

// WithScanner replaces the reference scanner.
func WithScanner(s scanner.ReferenceScanner) Option {
	return func(f *Finder) { f.scanner = s }
}

// WithFormatter replaces the formatter.
func WithFormatter(fm *format.Formatter) Option {
	return func(f *Finder) { f.formatter = fm }
}

// WithRoutes sets the route resolver used by FindRoute.
func WithRoutes(r routes.Resolver) Option {
	return func(f *Finder) { f.routes = r }
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(f *Finder) { f.logger = l }
}

// WithOptions overrides the options taken from the configuration.
func WithOptions(o Options) Option {
	return func(f *Finder) { f.opts = o }
}

// New creates a finder for the project described by cfg. cfg.Root must
// already be resolved.
func New(fs afero.Fs, cfg *config.Config, opts ...Option) *Finder {
	f := &Finder{
		fs:        fs,
		root:      filepath.Clean(cfg.Root),
		resolver:  resolver.New(fs, cfg.ViewsRoot(), cfg.Views.Extensions),
		scanner:   scanner.New(),
		formatter: format.New(),
		logger:    logging.NewNopLogger(),
		opts:      OptionsFromConfig(cfg),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.opts.MaxDepth < 1 {
		f.opts.MaxDepth = config.DefaultMaxDepth
	}
	f.logger = f.logger.WithComponent("finder")
	return f
}

// Resolver exposes the path resolver.
func (f *Finder) Resolver() *resolver.PathResolver {
	return f.resolver
}

// Options returns the options in effect.
func (f *Finder) Options() Options {
	return f.opts
}

// Find treats input as a template path when <root>/<input> exists. Otherwise
// a matching route wins, and a view identifier such as "users/show" is the
// last resort.
func (f *Finder) Find(ctx context.Context, input string) (*Result, error) {
	input = strings.TrimSpace(input)
	if p, ok := f.projectPath(input); ok && f.isFile(p) {
		return f.FindTemplate(ctx, input)
	}
	if _, ok := f.lookupRoute(input); !ok {
		if _, ok := f.resolver.ResolveTemplate(input); ok {
			return f.FindTemplate(ctx, input)
		}
	}
	return f.FindRoute(ctx, input)
}

// FindRoute resolves a route name such as "users_path" to its controller
// action and finds the view rendered by it. An unknown route yields an empty
// result carrying a diagnostic.
func (f *Finder) FindRoute(ctx context.Context, name string) (*Result, error) {
	route, ok := f.lookupRoute(name)
	if !ok {
		err := vferrors.ErrUnresolvedRoute(name)
		f.logger.Warn(ctx, err, "No route matches", "route", name, "namespace", f.opts.Namespace)
		s := f.newSession()
		s.diagnostics.AddError(err)
		return s.result(), nil
	}

	f.logger.Debug(ctx, "Route resolved", "route", name, "controller", route.Controller, "action", route.Action)
	return f.FindTemplate(ctx, route.ViewPath())
}

func (f *Finder) lookupRoute(name string) (routes.Route, bool) {
	if f.routes == nil {
		return routes.Route{}, false
	}
	return f.routes.Lookup(name, f.opts.Namespace)
}

// FindTemplate finds a template by identifier: a path under the project root,
// a path under the views root, or an extension-less view identifier such as
// "users/show".
func (f *Finder) FindTemplate(ctx context.Context, identifier string) (*Result, error) {
	s := f.newSession()

	path, ok := f.locateTemplate(identifier)
	if !ok {
		err := vferrors.ErrTemplateNotFound(identifier)
		f.logger.Warn(ctx, err, "Could not find template", "template", identifier)
		s.diagnostics.AddError(err)
		return s.result(), nil
	}

	var err error
	switch {
	case !f.opts.Partials:
		err = f.single(ctx, s, identifier, path)
	case f.opts.Embed:
		err = f.inline(ctx, s, identifier, path)
	default:
		err = f.collect(ctx, s, identifier, path, 0)
	}
	if err != nil {
		return nil, err
	}
	return s.result(), nil
}

// locateTemplate tries <root>/<id>, then the views root lookup.
func (f *Finder) locateTemplate(identifier string) (string, bool) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return "", false
	}
	if p, ok := f.projectPath(identifier); ok && f.isFile(p) {
		return p, true
	}
	return f.resolver.ResolveTemplate(identifier)
}

// projectPath maps input to a path under the project root. Absolute inputs
// are accepted only when they lie inside it.
func (f *Finder) projectPath(input string) (string, bool) {
	p := filepath.Join(f.root, filepath.FromSlash(input))
	if filepath.IsAbs(input) {
		p = filepath.Clean(input)
	}
	if err := validation.ContainedIn(f.root, p); err != nil {
		return "", false
	}
	return p, true
}

func (f *Finder) isFile(p string) bool {
	info, err := f.fs.Stat(p)
	return err == nil && !info.IsDir()
}

// single returns only the requested template.
func (f *Finder) single(ctx context.Context, s *session, identifier, path string) error {
	s.touch(path)
	tpl, ok := f.read(ctx, s, identifier, path)
	if !ok {
		return nil
	}
	s.entries = append(s.entries, types.Entry{
		Path: tpl.RelPath,
		Size: int64(len(tpl.Content)),
		Text: f.formatter.Template(tpl.RelPath, tpl.Content),
	})
	return nil
}

// read loads the file path resolved from identifier. Failures are recorded
// and logged; the caller drops the branch.
func (f *Finder) read(ctx context.Context, s *session, identifier, path string) (types.ResolvedTemplate, bool) {
	rel := f.resolver.Rel(path)
	data, err := afero.ReadFile(f.fs, path)
	if err != nil {
		rerr := vferrors.ErrReadFailure(rel, err)
		f.logger.Error(ctx, rerr, "Error processing template", "path", path, "identifier", identifier)
		s.diagnostics.AddError(rerr)
		return types.ResolvedTemplate{}, false
	}
	return types.ResolvedTemplate{
		Identifier: identifier,
		Path:       path,
		RelPath:    rel,
		Content:    string(data),
	}, true
}

// unresolved records a reference that matched no file.
func (f *Finder) unresolved(ctx context.Context, s *session, target, from string) {
	err := vferrors.ErrUnresolvedReference(target).WithTemplate(from)
	f.logger.Warn(ctx, err, "Could not find partial", "partial", target, "template", from)
	s.diagnostics.AddError(err)
}
