// Package resolver maps logical template and partial names onto files under
// a views root.
//
// Names containing a slash are looked up from the views root; bare names are
// looked up in the directory of the template that references them. Partials
// carry exactly one leading underscore on disk regardless of how many the
// reference spelled. Extensions are tried in a fixed priority order and the
// first regular file found wins.
package resolver

import (
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/conneroisu/viewfinder/internal/validation"
)

// PathResolver resolves names against a single views root. It holds no state
// besides its inputs and is safe for concurrent use.
type PathResolver struct {
	fs         afero.Fs
	root       string
	extensions []string
}

// New creates a resolver for viewsRoot on fs, trying extensions in order.
func New(fs afero.Fs, viewsRoot string, extensions []string) *PathResolver {
	return &PathResolver{
		fs:         fs,
		root:       filepath.Clean(viewsRoot),
		extensions: append([]string(nil), extensions...),
	}
}

// Root returns the views root.
func (r *PathResolver) Root() string {
	return r.root
}

// Extensions returns the lookup order.
func (r *PathResolver) Extensions() []string {
	return append([]string(nil), r.extensions...)
}

// IsAbsoluteName reports whether a partial name is rooted at the views root
// rather than at the referencing template's directory.
func IsAbsoluteName(name string) bool {
	return strings.Contains(name, "/")
}

// NormalizeName strips control characters, a leading slash and any leading
// underscores from a partial reference. The underscore is added back by
// PartialFileName.
func NormalizeName(name string) string {
	name = strings.TrimSpace(validation.SanitizeName(name))
	name = strings.TrimPrefix(name, "/")
	return strings.TrimLeft(name, "_")
}

// PartialFileName applies the partial naming convention to a base name:
// all leading underscores removed, then exactly one prepended.
func PartialFileName(base string) string {
	return "_" + strings.TrimLeft(base, "_")
}

// PartialStem returns the extension-less slash path of a partial relative to
// the views root, e.g. ("header", "users") -> "users/_header" and
// ("shared/header", "users") -> "shared/_header".
func PartialStem(name, dirContext string) string {
	absolute := IsAbsoluteName(name)
	name = NormalizeName(name)

	dir, base := path.Split(name)
	base = PartialFileName(base)

	if absolute {
		return path.Join(dir, base)
	}

	if dirContext == "" {
		dirContext = "."
	}
	return path.Join(dirContext, dir, base)
}

// ResolvePartial resolves a partial reference made from a template living in
// dirContext (a slash path relative to the views root). The returned path is
// a filesystem path; ok is false when no candidate exists.
func (r *PathResolver) ResolvePartial(name, dirContext string) (string, bool) {
	return r.firstExisting(PartialStem(name, dirContext))
}

// ResolveTemplate resolves a top-level template identifier such as
// "users/show". The identifier is tried as given, then with each extension.
// No underscore convention is applied.
func (r *PathResolver) ResolveTemplate(identifier string) (string, bool) {
	stem := strings.TrimPrefix(filepath.ToSlash(identifier), "/")
	if stem == "" {
		return "", false
	}

	direct := filepath.Join(r.root, filepath.FromSlash(stem))
	if validation.ContainedIn(r.root, direct) != nil {
		return "", false
	}
	if r.isFile(direct) {
		return direct, true
	}
	return r.firstExisting(stem)
}

// Candidates lists the files tried for stem, in priority order.
func (r *PathResolver) Candidates(stem string) []string {
	candidates := make([]string, 0, len(r.extensions))
	base := filepath.Join(r.root, filepath.FromSlash(stem))
	for _, ext := range r.extensions {
		candidates = append(candidates, base+ext)
	}
	return candidates
}

// firstExisting never looks outside the views root.
func (r *PathResolver) firstExisting(stem string) (string, bool) {
	if validation.ContainedIn(r.root, filepath.Join(r.root, filepath.FromSlash(stem))) != nil {
		return "", false
	}
	for _, candidate := range r.Candidates(stem) {
		if r.isFile(candidate) {
			return candidate, true
		}
	}
	return "", false
}

func (r *PathResolver) isFile(p string) bool {
	info, err := r.fs.Stat(p)
	return err == nil && !info.IsDir()
}

// Rel returns p relative to the views root as a slash path. Paths outside the
// root are returned cleaned but otherwise unchanged.
func (r *PathResolver) Rel(p string) string {
	rel, err := filepath.Rel(r.root, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(filepath.Clean(p))
	}
	return filepath.ToSlash(rel)
}

// DirContext returns the directory of p relative to the views root, which is
// the context bare partial names are resolved against.
func (r *PathResolver) DirContext(p string) string {
	return path.Dir(r.Rel(p))
}
