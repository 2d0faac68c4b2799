package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/viewfinder/internal/routes"
)

var routesCmd = &cobra.Command{
	Use:     "routes",
	Aliases: []string{"r"},
	Short:   "Show the route table",
	Long: `Show the routes viewfinder matches route names against, together with the
view each one renders. --namespace limits the table to one controller
namespace, exactly as it limits route lookups in find.

Examples:
  viewfinder routes
  viewfinder routes --namespace admin
  viewfinder routes --routes tmp/routes.txt -f json`,
	Args: cobra.NoArgs,
	RunE: runRoutes,
}

var routesFormat string

func init() {
	rootCmd.AddCommand(routesCmd)

	AddFormatFlag(routesCmd, &routesFormat, "table", listFormats)
}

// routeRow is a route as printed by the routes command.
type routeRow struct {
	routes.Route `yaml:",inline"`
	View         string `json:"view" yaml:"view"`
}

func runRoutes(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	filtered := a.routes.Filter(a.cfg.Resolve.Namespace)
	rows := make([]routeRow, len(filtered))
	for i, r := range filtered {
		rows[i] = routeRow{Route: r, View: r.ViewPath()}
	}

	switch routesFormat {
	case "json":
		encoder := json.NewEncoder(a.stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rows)
	case "yaml":
		encoder := yaml.NewEncoder(a.stdout)
		defer encoder.Close()
		return encoder.Encode(rows)
	default:
		return outputRoutesTable(a.stdout, rows)
	}
}

func outputRoutesTable(out io.Writer, rows []routeRow) error {
	if len(rows) == 0 {
		fmt.Fprintln(out, "No routes found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERB\tPATH\tCONTROLLER#ACTION\tVIEW")
	fmt.Fprintln(w, strings.Join([]string{
		strings.Repeat("-", 4), strings.Repeat("-", 4), strings.Repeat("-", 4),
		strings.Repeat("-", 17), strings.Repeat("-", 4),
	}, "\t"))

	for _, r := range rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s#%s\t%s\n", r.Name, r.Verb, r.Path, r.Controller, r.Action, r.View)
	}
	fmt.Fprintf(w, "\nTotal: %d routes\n", len(rows))

	return w.Flush()
}
