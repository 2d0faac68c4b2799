package finder

import (
	vferrors "github.com/conneroisu/viewfinder/internal/errors"
	"github.com/conneroisu/viewfinder/internal/resolver"
	"github.com/conneroisu/viewfinder/internal/types"
)

// session is the state of one top-level call. It is never shared.
type session struct {
	resolver *resolver.PathResolver

	// visited holds every path already collected or expanded
	visited map[string]bool

	touched     []string
	seen        map[string]bool
	entries     []types.Entry
	diagnostics *vferrors.DiagnosticCollector
}

func (f *Finder) newSession() *session {
	return &session{
		resolver:    f.resolver,
		visited:     make(map[string]bool),
		seen:        make(map[string]bool),
		diagnostics: vferrors.NewDiagnosticCollector(),
	}
}

// touch records path as discovered, once.
func (s *session) touch(path string) {
	if s.seen[path] {
		return
	}
	s.seen[path] = true
	s.touched = append(s.touched, s.resolver.Rel(path))
}

func (s *session) result() *Result {
	return &Result{
		Entries:     s.entries,
		Diagnostics: s.diagnostics.GetDiagnostics(),
		Touched:     s.touched,
	}
}
