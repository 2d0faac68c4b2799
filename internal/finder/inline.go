package finder

import (
	"context"

	vferrors "github.com/conneroisu/viewfinder/internal/errors"
	"github.com/conneroisu/viewfinder/internal/scanner"
	"github.com/conneroisu/viewfinder/internal/types"
)

// inline composes the template at path into a single entry.
func (f *Finder) inline(ctx context.Context, s *session, identifier, path string) error {
	s.visited[path] = true
	s.touch(path)
	tpl, ok := f.read(ctx, s, identifier, path)
	if !ok {
		return nil
	}

	expanded, err := f.expand(ctx, s, tpl, 0)
	if err != nil {
		return err
	}

	s.entries = append(s.entries, types.Entry{
		Path: tpl.RelPath,
		Size: int64(len(tpl.Content)),
		Text: f.formatter.Template(tpl.RelPath, expanded),
	})
	return nil
}

// expand replaces every render tag in tpl with the expanded partial it names.
// Unresolvable tags are kept verbatim. Each partial is expanded at most once
// per call; later references to it, cyclic or not, expand to nothing.
func (f *Finder) expand(ctx context.Context, s *session, tpl types.ResolvedTemplate, depth int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	dir := f.resolver.DirContext(tpl.Path)

	var firstErr error
	out := scanner.Replace(tpl.Content, f.scanner.ScanTags(tpl.Content), func(ref types.PartialReference) string {
		if firstErr != nil {
			return ref.Raw
		}

		target, ok := f.resolver.ResolvePartial(ref.Target, dir)
		if !ok {
			f.unresolved(ctx, s, ref.Target, tpl.RelPath)
			return ref.Raw
		}
		s.touch(target)

		if s.visited[target] {
			f.logger.Debug(ctx, "Skipping partial already expanded", "partial", f.resolver.Rel(target), "template", tpl.RelPath)
			return ""
		}
		if depth+1 > f.opts.MaxDepth {
			firstErr = vferrors.ErrMaxDepth(f.resolver.Rel(target), f.opts.MaxDepth)
			return ref.Raw
		}
		s.visited[target] = true

		partial, ok := f.read(ctx, s, ref.Target, target)
		if !ok {
			return ""
		}

		inner, err := f.expand(ctx, s, partial, depth+1)
		if err != nil {
			firstErr = err
			return ref.Raw
		}
		return f.formatter.Partial(partial.RelPath, scanner.LocalsSuffix(ref), inner)
	})

	return out, firstErr
}
