// Package docs describes viewfinder, a CLI that shows the full template text
// behind a Rails view without booting the application.
//
// Given a template identifier such as users/show, a path to a view file, or a
// route name such as users_path, viewfinder finds the view and follows every
// render call it contains. Partials are either inlined where they are
// rendered or listed one after another, and every piece is wrapped in
// comments naming the file it came from:
//
//	<!-- BEGIN TEMPLATE: users/show.html.erb -->
//	<h1>User</h1>
//	<!-- BEGIN PARTIAL: users/_details.html.erb, locals: { user: @user } -->
//	...
//	<!-- END PARTIAL: users/_details.html.erb -->
//	<!-- END TEMPLATE: users/show.html.erb -->
//
// # Quick Start
//
//	// Inline every partial of a view
//	viewfinder find users/show
//
//	// The view behind a route, one entry per template
//	viewfinder find users_path --no-embed
//
//	// Which templates a view touches, with depth and size
//	viewfinder list users/show
//
//	// Keep the output current while editing
//	viewfinder watch users/show
//
// # Architecture
//
//   - CLI Commands (cmd/): Cobra-based command interface
//   - Finder (internal/finder/): Inline and flat expansion with cycle and depth limits
//   - Resolver (internal/resolver/): Partial and template name to file lookup
//   - Scanner (internal/scanner/): render call extraction from ERB text
//   - Routes (internal/routes/): Route tables from YAML or rails routes output
//   - Formatter (internal/format/): Provenance comments and reindentation
//   - File Watcher (internal/watcher/): Debounced file system monitoring
//   - Configuration (internal/config/): Viper-based configuration management
//
// # Configuration
//
// viewfinder reads .viewfinder.yml, VIEWFINDER_* environment variables and
// command-line flags:
//
//	views:
//	  path: app/views
//	  extensions: [".html.erb", ".erb", ".builder", ".slim"]
//
//	resolve:
//	  partials: true
//	  embed: true
//	  max_depth: 64
//
//	routes:
//	  file: config/routes.yml
//
//	output:
//	  format: text
//
// The route table is either YAML:
//
//	routes:
//	  - name: users
//	    verb: GET
//	    path: /users
//	    controller: users
//	    action: index
//
// or the saved output of bin/rails routes.
//
// For more information, see the individual package documentation.
package docs
