// Package routes maps route names to controller actions.
//
// The finder never boots the application it inspects, so routes come from a
// file: either a YAML table or the saved text output of `rails routes`.
package routes

import (
	"bufio"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"

	vferrors "github.com/conneroisu/viewfinder/internal/errors"
)

// Route is one entry of the route table.
type Route struct {
	Name       string `yaml:"name" json:"name"`
	Verb       string `yaml:"verb,omitempty" json:"verb,omitempty"`
	Path       string `yaml:"path,omitempty" json:"path,omitempty"`
	Controller string `yaml:"controller" json:"controller"`
	Action     string `yaml:"action" json:"action"`
}

// ViewPath derives the view identifier rendered by the route's action.
func (r Route) ViewPath() string {
	return r.Controller + "/" + r.Action
}

// Namespace is the first segment of the controller path, e.g. "admin" for
// "admin/users".
func (r Route) Namespace() string {
	ns, _, _ := strings.Cut(r.Controller, "/")
	return ns
}

// Matches reports whether input names this route directly or through its
// _path or _url helper.
func (r Route) Matches(input string) bool {
	if r.Name == "" {
		return false
	}
	return input == r.Name || input == r.Name+"_path" || input == r.Name+"_url"
}

// Resolver looks up the controller action behind a route name. namespace,
// when non-empty, restricts matches to controllers under that namespace.
type Resolver interface {
	Lookup(name, namespace string) (Route, bool)
}

// Table is an ordered, in-memory route table. The first matching route wins.
type Table struct {
	routes []Route
}

// NewTable creates a table from routes, preserving their order.
func NewTable(routes []Route) *Table {
	return &Table{routes: append([]Route(nil), routes...)}
}

// Routes returns a copy of the table's routes.
func (t *Table) Routes() []Route {
	return append([]Route(nil), t.routes...)
}

// Len returns the number of routes.
func (t *Table) Len() int {
	return len(t.routes)
}

// Lookup implements Resolver.
func (t *Table) Lookup(name, namespace string) (Route, bool) {
	name = strings.TrimSpace(name)
	for _, route := range t.routes {
		if route.Controller == "" || route.Action == "" {
			continue
		}
		if namespace != "" && route.Namespace() != namespace {
			continue
		}
		if route.Matches(name) {
			return route, true
		}
	}
	return Route{}, false
}

// Filter returns the routes under namespace, or all of them when it is empty.
func (t *Table) Filter(namespace string) []Route {
	if namespace == "" {
		return t.Routes()
	}
	var filtered []Route
	for _, route := range t.routes {
		if route.Namespace() == namespace {
			filtered = append(filtered, route)
		}
	}
	return filtered
}

type yamlTable struct {
	Routes []Route `yaml:"routes"`
}

// Load reads a route table from path. Files ending in .yml or .yaml are read
// as YAML, anything else as `rails routes` output.
func Load(fs afero.Fs, path string) (*Table, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading routes file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return ParseYAML(data)
	default:
		return ParseRailsRoutes(string(data))
	}
}

// ParseYAML accepts either a top-level list of routes or a mapping with a
// `routes` key.
func ParseYAML(data []byte) (*Table, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, invalidRoutes(err)
	}
	if len(doc.Content) == 0 {
		return NewTable(nil), nil
	}

	var routes []Route
	switch doc.Content[0].Kind {
	case yaml.SequenceNode:
		if err := doc.Content[0].Decode(&routes); err != nil {
			return nil, invalidRoutes(err)
		}
	default:
		var table yamlTable
		if err := doc.Content[0].Decode(&table); err != nil {
			return nil, invalidRoutes(err)
		}
		routes = table.Routes
	}

	for i, route := range routes {
		if route.Controller == "" || route.Action == "" {
			return nil, invalidRoutes(fmt.Errorf("route %d (%q) needs both controller and action", i, route.Name))
		}
	}
	return NewTable(routes), nil
}

var (
	controllerAction = regexp.MustCompile(`^([\w/]+)#(\w+)$`)
	httpVerb         = regexp.MustCompile(`^(GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS)(\|(GET|POST|PUT|PATCH|DELETE|HEAD|OPTIONS))*$`)
)

// ParseRailsRoutes reads the table printed by `rails routes`. Lines without a
// controller#action column (headers, engine banners, redirects) are skipped.
func ParseRailsRoutes(text string) (*Table, error) {
	var routes []Route

	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		fields := strings.Fields(sc.Text())
		if len(fields) > 0 && fields[0] == "Prefix" {
			continue
		}
		caIdx := -1
		for i, f := range fields {
			if controllerAction.MatchString(f) {
				caIdx = i
				break
			}
		}
		// The URI pattern always precedes controller#action
		if caIdx < 1 {
			continue
		}

		m := controllerAction.FindStringSubmatch(fields[caIdx])
		route := Route{
			Path:       fields[caIdx-1],
			Controller: m[1],
			Action:     m[2],
		}

		rest := fields[:caIdx-1]
		switch len(rest) {
		case 0:
		case 1:
			if httpVerb.MatchString(rest[0]) {
				route.Verb = rest[0]
			} else {
				route.Name = rest[0]
			}
		default:
			route.Name = rest[0]
			route.Verb = rest[1]
		}
		routes = append(routes, route)
	}
	if err := sc.Err(); err != nil {
		return nil, invalidRoutes(err)
	}

	return NewTable(routes), nil
}

func invalidRoutes(cause error) error {
	return fmt.Errorf("%w: %v", vferrors.NewConfigError(vferrors.ErrCodeRoutesInvalid, "invalid route table"), cause)
}
