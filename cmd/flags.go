package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/conneroisu/viewfinder/internal/config"
	"github.com/conneroisu/viewfinder/internal/finder"
)

// ResolveFlags are the expansion switches shared by find, list and watch.
type ResolveFlags struct {
	NoPartials bool
	NoEmbed    bool
	MaxDepth   int

	cmd *cobra.Command
}

// AddResolveFlags adds the expansion flags to a command. embed controls
// whether --no-embed is offered.
func AddResolveFlags(cmd *cobra.Command, embed bool) *ResolveFlags {
	flags := &ResolveFlags{cmd: cmd}

	cmd.Flags().BoolVar(&flags.NoPartials, "no-partials", false, "Return only the requested template")
	if embed {
		cmd.Flags().BoolVar(&flags.NoEmbed, "no-embed", false, "List partials after the template instead of inlining them")
	}
	cmd.Flags().IntVar(&flags.MaxDepth, "max-depth", config.DefaultMaxDepth, "Maximum render nesting")

	AddFlagValidation(cmd, "max-depth", ValidatePositiveInt)
	return flags
}

// Apply overlays the flags the user set on options from the configuration.
func (f *ResolveFlags) Apply(opts finder.Options) finder.Options {
	if f.NoPartials {
		opts.Partials = false
	}
	if f.NoEmbed {
		opts.Embed = false
	}
	if f.cmd != nil && f.cmd.Flags().Changed("max-depth") {
		opts.MaxDepth = f.MaxDepth
	}
	return opts
}

// AddFormatFlag adds a validated --format/-f flag.
func AddFormatFlag(cmd *cobra.Command, target *string, def string, allowed []string) {
	cmd.Flags().StringVarP(target, "format", "f", def, fmt.Sprintf("Output format (%s)", strings.Join(allowed, "|")))
	AddFlagValidation(cmd, "format", func(format string) error {
		return config.ValidateFormat(format, allowed)
	})
}

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}

	originalSet := flag.Value.Set

	flag.Value = &validatingValue{
		Value:       flag.Value,
		validator:   validator,
		originalSet: originalSet,
	}
}

type validatingValue struct {
	pflag.Value
	validator   func(string) error
	originalSet func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.originalSet(val)
}

// ValidatePositiveInt accepts integers of at least 1.
func ValidatePositiveInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("invalid number: %s", s)
	}
	if n < 1 {
		return fmt.Errorf("must be at least 1, got %d", n)
	}
	return nil
}
