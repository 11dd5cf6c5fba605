// Package cli provides the Cobra command structure for mdedit.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdedit/internal/logging"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// NewRootCommand creates the root mdedit command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	var debug bool
	var color string

	rootCmd := &cobra.Command{
		Use:   "mdedit",
		Short: "A Markdown editing surface for the terminal",
		Long: `mdedit is a Markdown editing surface driven from the command line.

Every document is parsed into a syntax tree that drives highlighting,
block backgrounds, header navigation and the visible-block locator. The
editing commands (markup toggles, smart paste, snippets, find and replace)
run against that surface, and documents are loaded and saved with
configurable encodings, line endings, backups and HTML export.`,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if debug {
				logging.SetLevel("debug")
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags.
	flags := rootCmd.PersistentFlags()
	flags.BoolVar(&debug, "debug", false, "enable debug logging")
	flags.String("config", "", "path to config file")
	flags.StringVar(&color, "color", "auto", "colorize output: auto, always, never")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("flavor", "", "Markdown flavor: commonmark, gfm")
	flags.String("theme", "", "color theme: dark, light, plain")
	flags.String("encoding", "", "encoding used to read files, or auto")
	flags.String("line-ending", "", "line ending used to save files: crlf, cr, lf")
	flags.String("session", "", "path to the session file")
	flags.Bool("no-backups", false, "disable backup creation when saving")

	addCommandGroups(rootCmd)
	for _, sub := range []struct {
		cmd   *cobra.Command
		group string
	}{
		{newViewCommand(), groupView},
		{newLocateCommand(), groupView},
		{newTreeCommand(), groupView},
		{newOutlineCommand(), groupView},
		{newEditCommand(), groupEdit},
		{newConvertCommand(), groupEdit},
		{newPasteCommand(), groupEdit},
		{newExpandCommand(), groupEdit},
		{newExportCommand(), groupFile},
		{newRecentCommand(), groupFile},
		{newInitCommand(), groupFile},
		{newVersionCommand(info), ""},
	} {
		sub.cmd.GroupID = sub.group
		rootCmd.AddCommand(sub.cmd)
	}

	// Apply styled help formatting.
	helpFormatter := NewHelpFormatter(color, os.Stdout)
	helpFormatter.ApplyToCommand(rootCmd)

	return rootCmd
}
