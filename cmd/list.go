package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/viewfinder/internal/finder"
	"github.com/conneroisu/viewfinder/internal/types"
)

var listCmd = &cobra.Command{
	Use:     "list <template-or-route>",
	Aliases: []string{"l"},
	Short:   "List every template a view renders",
	Long: `List the requested template and every partial it reaches, depth first, with
the nesting depth and size of each. Nothing is inlined.

Examples:
  viewfinder list users/show              # Table
  viewfinder list users_path -f json      # Output as JSON
  viewfinder list users/show -f yaml      # Output as YAML`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

var (
	listFlags  *ResolveFlags
	listFormat string
)

// listFormats are the formats the list command understands.
var listFormats = []string{"table", "json", "yaml"}

func init() {
	rootCmd.AddCommand(listCmd)

	listFlags = AddResolveFlags(listCmd, false)
	AddFormatFlag(listCmd, &listFormat, "table", listFormats)
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	opts := listFlags.Apply(finder.OptionsFromConfig(a.cfg))
	opts.Embed = false

	res, err := a.finder(opts).Find(commandContext(cmd), args[0])
	if err != nil {
		return err
	}
	a.warn(res)

	// Listings carry metadata only
	entries := make([]types.Entry, len(res.Entries))
	for i, e := range res.Entries {
		e.Text = ""
		entries[i] = e
	}

	switch strings.ToLower(listFormat) {
	case "json":
		return outputListJSON(a.stdout, entries)
	case "yaml":
		return outputListYAML(a.stdout, entries)
	default:
		return outputListTable(a.stdout, entries)
	}
}

func outputListJSON(w io.Writer, entries []types.Entry) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

func outputListYAML(w io.Writer, entries []types.Entry) error {
	encoder := yaml.NewEncoder(w)
	defer encoder.Close()
	return encoder.Encode(entries)
}

func outputListTable(out io.Writer, entries []types.Entry) error {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No templates found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintln(w, "TEMPLATE\tDEPTH\tSIZE")
	fmt.Fprintln(w, strings.Repeat("-", 8)+"\t"+strings.Repeat("-", 5)+"\t"+strings.Repeat("-", 4))

	var total int64
	for _, e := range entries {
		// Indent by depth so the render tree reads top-down
		name := strings.Repeat("  ", e.Depth) + e.Path
		fmt.Fprintf(w, "%s\t%d\t%s\n", name, e.Depth, humanize.Bytes(uint64(e.Size)))
		total += e.Size
	}

	fmt.Fprintf(w, "\nTotal: %d templates, %s\n", len(entries), humanize.Bytes(uint64(total)))

	return w.Flush()
}
