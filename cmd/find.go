package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/viewfinder/internal/config"
	"github.com/conneroisu/viewfinder/internal/finder"
)

var findCmd = &cobra.Command{
	Use:     "find <template-or-route>...",
	Aliases: []string{"f"},
	Short:   "Expand a view and every partial it renders",
	Long: `Resolve each argument to the template text it renders. An argument that names
a file under the project root is used as a template. Anything else is looked
up in the route table (users, users_path and users_url all match the route
named users) and the view of its controller action is used. When no route
matches, a view identifier such as users/show is looked up under the views
directory.

By default partials are inlined where they are rendered, each wrapped in
BEGIN/END PARTIAL comments. With --no-embed every template is printed on its
own, the requested one first, then its partials depth first.

Examples:
  viewfinder find app/views/users/show.html.erb
  viewfinder find users/show
  viewfinder find users_path --namespace admin
  viewfinder find users/show --no-embed
  viewfinder find users/show --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFind,
}

var (
	findFlags  *ResolveFlags
	findFormat string
)

func init() {
	rootCmd.AddCommand(findCmd)

	findFlags = AddResolveFlags(findCmd, true)
	AddFormatFlag(findCmd, &findFormat, "", config.OutputFormats)
}

// findOutput is the structured form of one argument's result.
type findOutput struct {
	Input         string `json:"input" yaml:"input"`
	finder.Result `yaml:",inline"`
}

func runFind(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}

	format := findFormat
	if format == "" {
		format = a.cfg.Output.Format
	}

	outputs, err := a.findAll(commandContext(cmd), findFlags.Apply(finder.OptionsFromConfig(a.cfg)), args)
	if err != nil {
		return err
	}

	return writeFindOutput(a.stdout, format, outputs)
}

// findAll runs find for every input with one finder, so the routes in
// effect when it is called apply to the whole run.
func (a *app) findAll(ctx context.Context, opts finder.Options, inputs []string) ([]findOutput, error) {
	f := a.finder(opts)
	outputs := make([]findOutput, 0, len(inputs))
	for _, input := range inputs {
		op := a.logger.StartOperation("find")
		res, err := f.Find(ctx, input)
		if err != nil {
			op.EndWithError(ctx, err)
			return nil, fmt.Errorf("%s: %w", input, err)
		}
		op.End(ctx)

		a.warn(res)
		outputs = append(outputs, findOutput{Input: input, Result: *res})
	}
	return outputs, nil
}

func writeFindOutput(w io.Writer, format string, outputs []findOutput) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(outputs)
	case "yaml":
		encoder := yaml.NewEncoder(w)
		defer encoder.Close()
		return encoder.Encode(outputs)
	default:
		for _, out := range outputs {
			if _, err := io.WriteString(w, out.String()); err != nil {
				return err
			}
		}
		return nil
	}
}
