// Package internal contains the implementation packages for viewfinder.
//
// # Package Organization
//
//   - config: Configuration loading, defaults and project root discovery
//   - errors: Structured errors and the diagnostics collected during a run
//   - finder: Expansion of a template or route into entries
//   - format: BEGIN/END provenance comments and template reindentation
//   - logging: Structured logging on log/slog
//   - resolver: Name to file resolution under the views root
//   - routes: Route table parsing and route name lookup
//   - scanner: Extraction of render references from template text
//   - types: Values shared between the packages above
//   - validation: Path containment and name checks
//   - version: Build metadata
//   - watcher: Debounced file system monitoring
//
// All file access goes through an afero.Fs so that every package can be
// tested against an in-memory filesystem.
package internal
