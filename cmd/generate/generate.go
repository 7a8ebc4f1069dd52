// Package generate implements the generate command.
package generate

import (
	"fmt"

	"github.com/charmbracelet/soft-pages/cmd"
	"github.com/charmbracelet/soft-pages/pkg/site"
	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"
)

var (
	ref        string
	workers    int
	maxCommits int
	exclude    []string
	statsPath  string

	// Command is the generate command.
	Command = &cobra.Command{
		Use:                "generate REPOSITORY OUTPUT",
		Short:              "Generate the static site of a repository",
		Args:               cobra.ExactArgs(2),
		PersistentPreRunE:  cmd.InitContext,
		PersistentPostRunE: cmd.CloseContext,
		RunE:               Run,
	}
)

func init() {
	Command.Flags().StringVarP(&ref, "ref", "r", "", "branch, tag or commit to generate the site from")
	Command.Flags().IntVarP(&workers, "workers", "w", 0, "number of commits rendered concurrently")
	Command.Flags().IntVarP(&maxCommits, "max-commits", "n", 0, "maximum number of commits to render")
	Command.Flags().StringSliceVarP(&exclude, "exclude", "x", nil, "glob of paths that get no page")
	Command.Flags().StringVar(&statsPath, "stats", "", "write run counters to this file")
}

// Run generates the site of args[0] into args[1]. Flags set on c override
// the config.
func Run(c *cobra.Command, args []string) error {
	ctx := c.Context()
	cfg, err := cmd.Config(c)
	if err != nil {
		return err
	}

	flags := c.Flags()
	if flags.Changed("ref") {
		cfg.Ref = ref
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("max-commits") {
		cfg.MaxCommits = maxCommits
	}
	if flags.Changed("exclude") {
		cfg.Exclude = append(cfg.Exclude, exclude...)
	}
	if flags.Changed("stats") {
		cfg.Stats.Path = statsPath
	}

	g := site.New(ctx, cfg)
	if err := g.Generate(ctx, args[0], args[1]); err != nil {
		return err
	}

	sum := g.Stats().Summary()
	fmt.Fprintf(c.OutOrStdout(), "Rendered %s, wrote %s (%s unchanged, %s).\n",
		english.Plural(int(sum.Commits), "commit", ""),
		english.Plural(int(sum.Pages), "page", ""),
		humanize.Comma(sum.Unchanged),
		humanize.IBytes(uint64(sum.Bytes)),
	)
	return nil
}
