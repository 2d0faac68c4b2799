package finder

import (
	"context"

	vferrors "github.com/conneroisu/viewfinder/internal/errors"
	"github.com/conneroisu/viewfinder/internal/scanner"
	"github.com/conneroisu/viewfinder/internal/types"
)

// collect appends the template at path, then depth first every partial it
// references. Each path is collected once per call.
func (f *Finder) collect(ctx context.Context, s *session, name, path string, depth int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.visited[path] {
		return nil
	}
	if depth > f.opts.MaxDepth {
		return vferrors.ErrMaxDepth(f.resolver.Rel(path), f.opts.MaxDepth)
	}
	s.visited[path] = true
	s.touch(path)

	tpl, ok := f.read(ctx, s, name, path)
	if !ok {
		return nil
	}

	s.entries = append(s.entries, types.Entry{
		Path:  tpl.RelPath,
		Depth: depth,
		Size:  int64(len(tpl.Content)),
		Text:  f.formatter.Template(tpl.RelPath, tpl.Content),
	})

	dir := f.resolver.DirContext(path)
	for _, target := range scanner.Targets(f.scanner, tpl.Content) {
		resolved, ok := f.resolver.ResolvePartial(target, dir)
		if !ok {
			f.unresolved(ctx, s, target, tpl.RelPath)
			continue
		}
		if err := f.collect(ctx, s, target, resolved, depth+1); err != nil {
			return err
		}
	}
	return nil
}
