// Package types provides common type definitions used throughout viewfinder.
// This package contains shared types to avoid circular dependencies between packages.
package types

// ResolvedTemplate is a template or partial that was located on disk and read
// during a single resolution pass.
type ResolvedTemplate struct {
	// Identifier is the logical name the template was requested by (e.g. "users/show")
	Identifier string
	// Path is the file location as seen by the filesystem the finder reads from
	Path string
	// RelPath is Path relative to the views root, used in provenance comments
	RelPath string
	// Content is the raw template text
	Content string
}

// PartialReference is a single render call found in template text.
type PartialReference struct {
	// Target is the partial name as written between the quotes
	Target string
	// Options is the raw option text following the target, up to the closing tag
	Options string
	// Locals is the unparsed inner text of a `locals: { ... }` option, if any
	Locals string
	// HasLocals reports whether a locals fragment was present
	HasLocals bool
	// Raw is the full matched tag text, used to preserve broken references verbatim
	Raw string
	// Start and End are byte offsets of Raw within the scanned text
	Start int
	End   int
}

// Entry is one unit of finder output: the formatted text contributed by a
// template, together with where it came from.
type Entry struct {
	// Path is the template path relative to the views root
	Path string `json:"path" yaml:"path"`
	// Depth is 0 for the requested template and grows by one per render hop
	Depth int `json:"depth" yaml:"depth"`
	// Size is the raw content size in bytes
	Size int64 `json:"size" yaml:"size"`
	// Text is the formatted output for this entry
	Text string `json:"text,omitempty" yaml:"text,omitempty"`
}

// DiagnosticKind classifies a non-fatal problem found while resolving.
type DiagnosticKind string

const (
	DiagnosticUnresolvedReference DiagnosticKind = "unresolved_reference"
	DiagnosticUnresolvedRoute     DiagnosticKind = "unresolved_route"
	DiagnosticReadFailure         DiagnosticKind = "read_failure"
	DiagnosticTemplateNotFound    DiagnosticKind = "template_not_found"
)

// Diagnostic is a human-readable warning emitted alongside finder output.
type Diagnostic struct {
	Kind DiagnosticKind `json:"kind" yaml:"kind"`
	// Template is the referencing template, relative to the views root
	Template string `json:"template,omitempty" yaml:"template,omitempty"`
	// Target is the partial, template or route that could not be used
	Target  string `json:"target" yaml:"target"`
	Message string `json:"message" yaml:"message"`
}

// String renders the diagnostic as a single warning line.
func (d Diagnostic) String() string {
	return "Warning: " + d.Message
}
