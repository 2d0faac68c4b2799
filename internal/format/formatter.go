// Package format wraps resolved template text in provenance comments and
// reindents it for reading.
//
// Reindentation is a line-based heuristic, not a parser. It only ever changes
// the whitespace at the start of a line.
package format

import (
	"regexp"
	"strings"
)

const (
	templateLabel = "TEMPLATE"
	partialLabel  = "PARTIAL"
)

// Formatter renders provenance comments around template content.
type Formatter struct {
	// Indent is the unit prepended once per nesting level
	Indent string
	// Reindent toggles the whitespace pass in Template
	Reindent bool
}

// New returns a formatter with two-space reindentation enabled.
func New() *Formatter {
	return &Formatter{Indent: "  ", Reindent: true}
}

// Template wraps the content of a top-level template or a flat-mode entry.
func (f *Formatter) Template(relPath, content string) string {
	if f.Reindent {
		content = f.Prettify(content)
	}
	return wrap(templateLabel, relPath, "", content)
}

// Partial wraps the expanded content of an inlined partial. locals is the
// already rendered `, locals: { ... }` suffix, or empty.
func (f *Formatter) Partial(relPath, locals, content string) string {
	return wrap(partialLabel, relPath, locals, content)
}

func wrap(label, relPath, suffix, content string) string {
	var b strings.Builder
	b.Grow(len(content) + 2*len(relPath) + len(suffix) + 48)
	b.WriteString("\n<!-- BEGIN ")
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(relPath)
	b.WriteString(suffix)
	b.WriteString(" -->\n")
	b.WriteString(content)
	b.WriteString("\n<!-- END ")
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(relPath)
	b.WriteString(" -->\n")
	return b.String()
}

var (
	erbEnd       = regexp.MustCompile(`^<%-?\s*(end|\})\s*-?%>$`)
	erbMiddle    = regexp.MustCompile(`^<%-?\s*(else|elsif|when|rescue|ensure)\b`)
	erbOpen      = regexp.MustCompile(`^<%-?\s*(if|unless|while|until|for|case|begin)\b`)
	blockOpen    = regexp.MustCompile(`\bdo\s*(\|[^|]*\|)?\s*(-?%>)?$`)
	bareEnd      = regexp.MustCompile(`^end$`)
	inlineEnd    = regexp.MustCompile(`<%-?\s*end\s*-?%>`)
	openTagStart = regexp.MustCompile(`^<([a-zA-Z][a-zA-Z0-9-]*)`)
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Prettify reindents content. Lines that close an element or an ERB block
// are moved out one level; lines that open one move the following lines in.
// Blank lines stay empty and nothing but leading whitespace is touched.
func (f *Formatter) Prettify(content string) string {
	lines := strings.Split(content, "\n")
	level := 0

	for i, line := range lines {
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			lines[i] = ""
			continue
		}
		probe := strings.TrimRight(trimmed, " \t\r")

		if closesBlock(probe) || erbMiddle.MatchString(probe) {
			level--
		}
		if level < 0 {
			level = 0
		}

		lines[i] = strings.Repeat(f.Indent, level) + trimmed

		if opensBlock(probe) || erbMiddle.MatchString(probe) {
			level++
		}
	}

	return strings.Join(lines, "\n")
}

func closesBlock(line string) bool {
	if strings.HasPrefix(line, "</") {
		return true
	}
	return erbEnd.MatchString(line) || bareEnd.MatchString(line)
}

func opensBlock(line string) bool {
	if erbOpen.MatchString(line) || blockOpen.MatchString(line) {
		// <% if x %>yes<% end %> is balanced on one line
		return !inlineEnd.MatchString(line)
	}

	m := openTagStart.FindStringSubmatch(line)
	if m == nil || !strings.HasSuffix(line, ">") || strings.HasSuffix(line, "/>") {
		return false
	}
	tag := strings.ToLower(m[1])
	if voidElements[tag] {
		return false
	}
	// <li>item</li> opens and closes on one line
	return !strings.Contains(strings.ToLower(line), "</"+tag)
}
