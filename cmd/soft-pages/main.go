package main

import (
	"context"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/soft-pages/cmd"
	"github.com/charmbracelet/soft-pages/cmd/generate"
	"github.com/charmbracelet/soft-pages/cmd/preview"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
)

var (
	// Version contains the application version number. It's set via ldflags
	// when building.
	Version = ""

	// CommitSHA contains the SHA of the commit that this application was built
	// against. It's set via ldflags when building.
	CommitSHA = ""

	configPath string

	rootCmd = &cobra.Command{
		Use:   "soft-pages [REPOSITORY OUTPUT]",
		Short: "Generate a static website from a Git repository",
		Long: "Soft Pages renders the history and the files of a Git repository as a\n" +
			"static website of plain HTML pages.",
		Args:               cobra.MatchAll(cobra.MaximumNArgs(2), rootArgs),
		SilenceUsage:       true,
		PersistentPreRunE:  cmd.InitContext,
		PersistentPostRunE: cmd.CloseContext,
		RunE: func(c *cobra.Command, args []string) error {
			if len(args) == 0 {
				return c.Help()
			}
			return generate.Run(c, args)
		},
	}
)

func rootArgs(c *cobra.Command, args []string) error {
	if len(args) == 1 {
		return cobra.ExactArgs(2)(c, args)
	}
	return nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config file")
	rootCmd.AddCommand(
		generate.Command,
		preview.Command,
		initCmd,
		manCmd,
	)

	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		if info, ok := debug.ReadBuildInfo(); ok && info.Main.Sum != "" {
			Version = info.Main.Version
		} else {
			Version = "unknown (built from source)"
		}
	}
	rootCmd.Version = Version
}

func run() int {
	// Set the max number of processes to the number of CPUs
	// This is useful when running in a container
	if _, err := maxprocs.Set(maxprocs.Logger(log.Debugf)); err != nil {
		log.Warn("couldn't set automaxprocs", "error", err)
	}

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		return 1
	}
	return 0
}

func main() {
	os.Exit(run())
}
