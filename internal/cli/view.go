package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdedit/internal/ui/pretty"
)

// viewFlags holds the flags shared by view and locate.
type viewFlags struct {
	line        int
	scroll      int
	height      int
	lineNumbers bool
	noStatus    bool
	porcelain   bool
}

func addViewportFlags(cmd *cobra.Command, flags *viewFlags) {
	cmd.Flags().IntVar(&flags.line, "line", 0, "scroll this line to the top of the viewport")
	cmd.Flags().IntVar(&flags.scroll, "scroll", 0, "scroll offset from the top of the document")
	cmd.Flags().IntVar(&flags.height, "height", 0, "viewport height in lines (default: terminal height)")
}

// scrollTo sizes the viewport and scrolls it. --scroll wins over --line.
func (f *viewFlags) scrollTo(cmd *cobra.Command, w *workspace) {
	if f.height > 0 {
		w.editor.Resize(f.height)
	}
	switch {
	case cmd.Flags().Changed("scroll"):
		w.editor.SetScrollOffset(f.scroll)
	case f.line > 0:
		w.editor.ScrollToLine(f.line)
	}
}

func newViewCommand() *cobra.Command {
	flags := &viewFlags{}

	cmd := &cobra.Command{
		Use:   "view <file>[|offset]",
		Short: "Render a viewport of a Markdown document",
		Long: `Render the lines of a document that fit in the viewport, with syntax
highlighting, block backgrounds and a status bar.`,
		Example: `  mdedit view README.md                  Show the top of README.md
  mdedit view README.md --line 40        Scroll line 40 to the top
  mdedit view README.md -n --height 10   Ten lines with line numbers`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, args[0], flags)
		},
	}

	addViewportFlags(cmd, flags)
	cmd.Flags().BoolVarP(&flags.lineNumbers, "line-numbers", "n", false, "show line numbers")
	cmd.Flags().BoolVar(&flags.noStatus, "no-status", false, "hide the status bar")

	return cmd
}

func runView(cmd *cobra.Command, spec string, flags *viewFlags) error {
	ctx := commandContext(cmd)

	w, err := openWorkspace(cmd, nil)
	if err != nil {
		return err
	}
	defer w.close(ctx)

	if err := w.open(ctx, spec); err != nil {
		return err
	}
	flags.scrollTo(cmd, w)

	caretLine, _ := w.editor.CaretPosition()
	frame := w.editor.VisibleFrame()
	fmt.Fprint(w.out, w.styles.RenderFrame(frame, pretty.ViewOptions{
		Width:       w.width,
		LineNumbers: flags.lineNumbers,
		CaretLine:   caretLine,
	}))

	if !flags.noStatus {
		fmt.Fprintln(w.out, w.styles.FormatStatus(pretty.StatusOf(w.editor), w.width))
	}
	return nil
}

func newLocateCommand() *cobra.Command {
	flags := &viewFlags{}

	cmd := &cobra.Command{
		Use:   "locate <file>",
		Short: "Print the block at the top of the viewport",
		Long: `Print the number of the Markdown block shown at the top of the viewport
and how many lines into that block the viewport starts. A preview pane
uses the pair to scroll to the matching rendered element.

When the viewport is scrolled to the end of the document the block is
reported as "end".`,
		Example: `  mdedit locate README.md --height 20 --line 35
  mdedit locate README.md --height 20 --scroll 12 --porcelain`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLocate(cmd, args[0], flags)
		},
	}

	addViewportFlags(cmd, flags)
	cmd.Flags().BoolVar(&flags.porcelain, "porcelain", false, `print "<block> <offset>" or "end"`)

	return cmd
}

func runLocate(cmd *cobra.Command, spec string, flags *viewFlags) error {
	ctx := commandContext(cmd)

	w, err := openWorkspace(cmd, nil)
	if err != nil {
		return err
	}
	defer w.close(ctx)

	if err := w.open(ctx, spec); err != nil {
		return err
	}
	flags.scrollTo(cmd, w)

	ref := w.editor.VisibleBlockNumber()
	switch {
	case !flags.porcelain:
		fmt.Fprintln(w.out, pretty.FormatBlockRef(ref))
	case ref.IsLast():
		fmt.Fprintln(w.out, "end")
	default:
		fmt.Fprintln(w.out, strconv.Itoa(ref.Number), strconv.Itoa(ref.Offset))
	}
	return nil
}

func newTreeCommand() *cobra.Command {
	var opts pretty.TreeOptions

	cmd := &cobra.Command{
		Use:   "tree <file>",
		Short: "Print the syntax tree of a Markdown document",
		Long: `Print the block structure of a document as parsed for highlighting.

Blocks the locator counts are marked with their number (#N) when --numbers
is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			w, err := openWorkspace(cmd, nil)
			if err != nil {
				return err
			}
			defer w.close(ctx)

			if err := w.open(ctx, args[0]); err != nil {
				return err
			}

			fmt.Fprint(w.out, w.styles.FormatTree(w.editor.Tree(), opts))
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Inlines, "inlines", false, "include inline nodes")
	cmd.Flags().BoolVar(&opts.Numbers, "numbers", false, "show locator block numbers")

	return cmd
}

func newOutlineCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "outline <file>",
		Short: "List the headings of a Markdown document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)

			w, err := openWorkspace(cmd, nil)
			if err != nil {
				return err
			}
			defer w.close(ctx)

			if err := w.open(ctx, args[0]); err != nil {
				return err
			}

			var rows [][]string
			w.editor.SetCaret(0)
			for w.editor.SelectNextHeader() {
				start, _ := w.editor.Selection()
				line, _ := w.editor.Tree().LineAt(start)
				rows = append(rows, []string{strconv.Itoa(line), w.editor.SelectedText()})
			}

			if len(rows) == 0 {
				fmt.Fprintln(w.out, "no headings")
				return nil
			}
			fmt.Fprint(w.out, w.styles.FormatTable([]string{"LINE", "HEADING"}, rows))
			return nil
		},
	}
}
