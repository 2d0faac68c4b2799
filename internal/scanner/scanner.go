// Package scanner finds partial references in ERB-style template text.
//
// Two views of the same marker convention are offered. Scan reports every
// render call by its target, which is enough to walk the reference graph.
// ScanTags additionally requires the closing `%>` and reports the exact tag
// span, which is what in-place substitution needs. Both are exposed through
// the ReferenceScanner interface so a real parser can replace the regular
// expressions without touching the finder.
package scanner

import (
	"regexp"
	"sort"
	"strings"

	"github.com/conneroisu/viewfinder/internal/types"
)

// ReferenceScanner extracts partial references from template text.
type ReferenceScanner interface {
	// Scan returns every render call in order of appearance, duplicates included.
	Scan(text string) []types.PartialReference
	// ScanTags returns complete render tags, with offsets suitable for
	// replacing them verbatim.
	ScanTags(text string) []types.PartialReference
}

var (
	// referencePattern matches the opening of a render call naming a partial.
	referencePattern = regexp.MustCompile(`<%=\s*render\s+(?:partial:\s*)?['"]([^'"]+)['"]`)

	// tagPattern matches a whole render tag. Options may span lines but stop
	// at the first `%`, so the match never runs past the tag's own `%>`.
	tagPattern = regexp.MustCompile(`<%=\s*render\s+(?:partial:\s*)?['"]([^'"]+)['"]([^%]*?)\s*%>`)

	// localsPattern captures the raw inner text of a locals hash.
	localsPattern = regexp.MustCompile(`(?s)locals:\s*\{(.*?)\}`)
)

// RegexScanner is the regular-expression ReferenceScanner.
type RegexScanner struct{}

// New returns the default scanner.
func New() *RegexScanner {
	return &RegexScanner{}
}

// Scan implements ReferenceScanner.
func (s *RegexScanner) Scan(text string) []types.PartialReference {
	matches := referencePattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	// Complete tags starting at the same offset contribute their options
	tags := make(map[int]types.PartialReference)
	for _, tag := range s.ScanTags(text) {
		tags[tag.Start] = tag
	}

	refs := make([]types.PartialReference, 0, len(matches))
	for _, m := range matches {
		if tag, ok := tags[m[0]]; ok {
			refs = append(refs, tag)
			continue
		}
		target := cleanTarget(text[m[2]:m[3]])
		if target == "" {
			continue
		}
		refs = append(refs, types.PartialReference{
			Target: target,
			Raw:    text[m[0]:m[1]],
			Start:  m[0],
			End:    m[1],
		})
	}
	return refs
}

// ScanTags implements ReferenceScanner.
func (s *RegexScanner) ScanTags(text string) []types.PartialReference {
	matches := tagPattern.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	refs := make([]types.PartialReference, 0, len(matches))
	for _, m := range matches {
		target := cleanTarget(text[m[2]:m[3]])
		if target == "" {
			continue
		}
		options := strings.TrimSpace(text[m[4]:m[5]])
		ref := types.PartialReference{
			Target:  target,
			Options: options,
			Raw:     text[m[0]:m[1]],
			Start:   m[0],
			End:     m[1],
		}
		if lm := localsPattern.FindStringSubmatch(options); lm != nil {
			ref.Locals = strings.TrimSpace(lm[1])
			ref.HasLocals = true
		}
		refs = append(refs, ref)
	}
	return refs
}

// Targets is a convenience returning only the target names of Scan.
func Targets(s ReferenceScanner, text string) []string {
	refs := s.Scan(text)
	targets := make([]string, len(refs))
	for i, ref := range refs {
		targets[i] = ref.Target
	}
	return targets
}

// Replace rebuilds text with each ref's span swapped for replace(ref). Refs
// must come from scanning text itself; overlapping refs are skipped.
func Replace(text string, refs []types.PartialReference, replace func(types.PartialReference) string) string {
	if len(refs) == 0 {
		return text
	}

	sorted := append([]types.PartialReference(nil), refs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })

	var b strings.Builder
	b.Grow(len(text))
	last := 0
	for _, ref := range sorted {
		if ref.Start < last || ref.End > len(text) {
			continue
		}
		b.WriteString(text[last:ref.Start])
		b.WriteString(replace(ref))
		last = ref.End
	}
	b.WriteString(text[last:])
	return b.String()
}

// LocalsSuffix renders the locals part of a BEGIN PARTIAL comment.
func LocalsSuffix(ref types.PartialReference) string {
	if !ref.HasLocals {
		return ""
	}
	return ", locals: { " + ref.Locals + " }"
}

func cleanTarget(target string) string {
	return strings.Trim(strings.TrimSpace(target), `'"`)
}
