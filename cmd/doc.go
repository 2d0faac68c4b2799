// Package cmd provides the command-line interface for viewfinder.
//
// The commands are built with Cobra and read their settings through Viper.
//
// # Available Commands
//
//   - find: Expand a view, or the view behind a route, with its partials
//   - list: List every template a view renders with depth and size
//   - routes: Show the route table and the view of each route
//   - watch: Re-run find whenever a view or the route table changes
//   - version: Show build information
//
// # Command Examples
//
//	// Inline every partial of a view
//	viewfinder find users/show
//
//	// The view behind a route helper, one entry per template
//	viewfinder find users_path --no-embed
//
//	// Routes of one namespace as JSON
//	viewfinder routes --namespace admin --format json
//
// # Configuration
//
// Settings come from these sources, highest priority first:
//
//  1. Command-line flags (--root, --views, --routes, --namespace, ...)
//  2. Environment variables following VIEWFINDER_<SECTION>_<OPTION>,
//     for example VIEWFINDER_RESOLVE_EMBED=false
//  3. The configuration file: --config, VIEWFINDER_CONFIG_FILE, or
//     .viewfinder.yml in the working directory
//  4. Default values
//
// Without --root the project root is the nearest directory at or above the
// working directory that contains config/application.rb.
//
// # Errors
//
// References that cannot be resolved are reported on stderr as warnings and
// do not fail the command. Exceeding --max-depth, an unreadable route table
// and invalid flags exit with status 1.
package cmd
