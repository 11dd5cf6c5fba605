package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdedit/internal/logging"
)

func newRecentCommand() *cobra.Command {
	var last bool

	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently opened files",
		Long: `List the files recorded in the session, most recent first, with the
caret offset each was left at.

--last prints the last opened file as "path|offset", ready to pass back to
any command that takes a file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w, err := openWorkspace(cmd, nil)
			if err != nil {
				return err
			}
			w.logger.Debug("reading session", logging.FieldPath, w.session.Path())

			if last {
				if spec := w.session.LastOpen(); spec != "" {
					fmt.Fprintln(w.out, spec)
				}
				return nil
			}

			fmt.Fprint(w.out, w.styles.FormatRecentFiles(w.session.Recent()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&last, "last", false, "print only the last opened file")

	return cmd
}
