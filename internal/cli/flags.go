package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdedit/internal/logging"
	"github.com/yaklabco/mdedit/pkg/loadsave"
	"github.com/yaklabco/mdedit/pkg/textedit"
)

// caretFlags place the caret and selection before an editing command runs.
type caretFlags struct {
	at     int
	line   int
	length int
}

func addCaretFlags(cmd *cobra.Command, flags *caretFlags) {
	cmd.Flags().IntVar(&flags.at, "at", -1, "caret byte offset (default: end of document)")
	cmd.Flags().IntVar(&flags.line, "line", 0, "put the caret at the start of this line")
	cmd.Flags().IntVar(&flags.length, "select", 0, "select this many bytes from the caret")
}

// apply moves the caret. --line wins over --at; with neither the caret goes
// to the end of the document.
func (f *caretFlags) apply(w *workspace) {
	offset := len(w.editor.Text())
	switch {
	case f.line > 0:
		offset = w.editor.LineStart(f.line)
	case f.at >= 0:
		offset = min(f.at, offset)
	}

	if f.length > 0 {
		w.editor.Select(offset, f.length)
		return
	}
	w.editor.SetCaret(offset)
}

// outputFlags choose what happens to the edited document.
type outputFlags struct {
	write  bool
	output string
	diff   bool
	ask    bool
}

func addOutputFlags(cmd *cobra.Command, flags *outputFlags) {
	cmd.Flags().BoolVarP(&flags.write, "write", "w", false, "save the result back to the file")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "save the result to this path (.html exports)")
	cmd.Flags().BoolVar(&flags.diff, "diff", false, "print a unified diff of the changes")
	cmd.Flags().BoolVar(&flags.ask, "ask", false, "ask whether to save the changes")
	cmd.MarkFlagsMutuallyExclusive("write", "output", "ask")
}

// finish prints or saves the edited document. original is the text before
// the command ran. Without any output flag the document goes to stdout and
// is saved only when auto_save is enabled.
func (f *outputFlags) finish(ctx context.Context, w *workspace, original string) error {
	if f.diff {
		diff := textedit.NewDiff(w.editor.FileName(), []byte(original), []byte(w.editor.Text()))
		fmt.Fprint(w.out, w.styles.FormatDiff(diff))
	}

	switch {
	case f.output != "":
		if err := w.manager.SaveAs(ctx, w.editor, f.output, loadsave.KindForPath(f.output)); err != nil {
			return err
		}
		w.logger.Info("saved document", logging.FieldPath, f.output)
	case f.write:
		if err := w.manager.SaveFile(ctx, w.editor); err != nil {
			return err
		}
		w.logger.Info("saved document", logging.FieldPath, w.editor.FileName())
	case f.ask:
		if !w.manager.SaveIfModified(ctx, w.editor) {
			return loadsave.ErrCanceled
		}
	default:
		if !f.diff {
			fmt.Fprint(w.out, w.editor.Text())
		}
		w.flushAutoSave()
	}
	return nil
}
