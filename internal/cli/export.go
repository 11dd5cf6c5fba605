package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdedit/internal/logging"
	"github.com/yaklabco/mdedit/pkg/loadsave"
)

type exportFlags struct {
	output  string
	suggest bool
}

func newExportCommand() *cobra.Command {
	flags := &exportFlags{}

	cmd := &cobra.Command{
		Use:   "export <file>",
		Short: "Export a Markdown document as HTML",
		Long: `Render a document to HTML. YAML front matter is dropped and the result
is wrapped in the HTML template, if one is configured. The template marks
where the rendered document goes with {{content}}.

Without --output the HTML is written next to the document. With --suggest
the file is named after the document's title instead.`,
		Example: `  mdedit export README.md
  mdedit export README.md -o site/index.html --html-template page.html
  mdedit export notes.md --suggest`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output path (default: <file>.html)")
	cmd.Flags().BoolVar(&flags.suggest, "suggest", false, "name the output after the document title")
	cmd.Flags().String("html-template", "", "path to an HTML template")
	cmd.MarkFlagsMutuallyExclusive("output", "suggest")

	return cmd
}

func runExport(cmd *cobra.Command, spec string, flags *exportFlags) error {
	ctx := commandContext(cmd)

	w, err := openWorkspace(cmd, nil)
	if err != nil {
		return err
	}
	defer w.close(ctx)

	if err := w.open(ctx, spec); err != nil {
		return err
	}

	output := flags.output
	if output == "" {
		output = exportPath(w.editor.FileName(), w.editor.Text(), flags.suggest)
	}

	if err := w.manager.SaveAs(ctx, w.editor, output, loadsave.KindHTML); err != nil {
		return err
	}

	w.logger.Info("exported document", logging.FieldPath, w.editor.FileName(), logging.FieldOutput, output)
	fmt.Fprintln(w.out, output)
	return nil
}

// exportPath picks the HTML path for a document: the document path with an
// .html extension, or the title-derived name in the same directory.
func exportPath(path, text string, suggest bool) string {
	dir := filepath.Dir(path)
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	if suggest {
		if name := loadsave.SuggestFilenameFromTitle(text); name != "" {
			base = strings.TrimSuffix(name, filepath.Ext(name))
		}
	}
	return filepath.Join(dir, base+".html")
}
