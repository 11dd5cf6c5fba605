package cli

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/yaklabco/mdedit/internal/logging"
	"github.com/yaklabco/mdedit/pkg/paste"
)

type editFlags struct {
	find       string
	bold       bool
	italic     bool
	code       bool
	header     int
	insertFile string
	caret      caretFlags
	output     outputFlags
}

func newEditCommand() *cobra.Command {
	flags := &editFlags{}

	cmd := &cobra.Command{
		Use:   "edit <file> [flags]",
		Short: "Run markup commands on a Markdown document",
		Long: `Run the editor's markup commands at a caret position or selection.

--find selects the first match after the caret before the other commands
run, so a match can be made bold or turned into a heading. The edited
document is printed unless --write, --output or --ask is given.`,
		Example: `  mdedit edit notes.md --find 'TODO' --bold -w
  mdedit edit notes.md --line 3 --header 2 --diff
  mdedit edit notes.md --at 0 --insert-file header.md -w`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEdit(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.find, "find", "", "select the next match of this regular expression")
	cmd.Flags().BoolVar(&flags.bold, "bold", false, "toggle bold on the selection or word")
	cmd.Flags().BoolVar(&flags.italic, "italic", false, "toggle italic on the selection or word")
	cmd.Flags().BoolVar(&flags.code, "code", false, "toggle inline code on the selection or word")
	cmd.Flags().IntVar(&flags.header, "header", 0, "insert a heading marker of this level (1-6)")
	cmd.Flags().StringVar(&flags.insertFile, "insert-file", "", "insert the content of a file at the caret")
	addCaretFlags(cmd, &flags.caret)
	addOutputFlags(cmd, &flags.output)

	return cmd
}

func runEdit(cmd *cobra.Command, spec string, flags *editFlags) error {
	if !flags.bold && !flags.italic && !flags.code && flags.header == 0 &&
		flags.find == "" && flags.insertFile == "" {
		return fmt.Errorf("%w: no edit given", ErrInvalidUsage)
	}
	if flags.header < 0 || flags.header > 6 {
		return fmt.Errorf("%w: header level %d is not between 1 and 6", ErrInvalidUsage, flags.header)
	}

	var re *regexp.Regexp
	if flags.find != "" {
		var err error
		if re, err = regexp.Compile(flags.find); err != nil {
			return fmt.Errorf("%w: --find: %w", ErrInvalidUsage, err)
		}
	}

	ctx := commandContext(cmd)
	w, err := openWorkspace(cmd, newLinePrompter(cmd.InOrStdin(), cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer w.close(ctx)

	if err := w.open(ctx, spec); err != nil {
		return err
	}
	original := w.editor.Text()
	flags.caret.apply(w)

	if flags.insertFile != "" {
		if err := w.manager.InsertFile(ctx, w.editor, flags.insertFile); err != nil {
			return err
		}
	}
	if re != nil && !w.editor.Find(re) {
		w.logger.Warn("no match", "pattern", flags.find)
	}
	if flags.bold {
		w.editor.Bold()
	}
	if flags.italic {
		w.editor.Italic()
	}
	if flags.code {
		w.editor.Code()
	}
	if flags.header > 0 {
		w.editor.InsertHeader(flags.header)
	}

	return flags.output.finish(ctx, w, original)
}

type convertFlags struct {
	toCase     string
	smartChars bool
	find       string
	replace    string
	all        bool
	caret      caretFlags
	output     outputFlags
}

func newConvertCommand() *cobra.Command {
	flags := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert <file> [flags]",
		Short: "Rewrite the text of a Markdown document",
		Long: `Rewrite a document: change letter case, fold typographic characters to
ASCII, or replace regular expression matches.

Conversions apply to the selection (--at with --select) or to the whole
document. Saving with --write also re-encodes the file as UTF-8 with the
configured line ending, so a bare "convert -w --line-ending lf" only
normalizes line endings.`,
		Example: `  mdedit convert notes.md --case upper --at 10 --select 5
  mdedit convert notes.md --smart-chars --diff
  mdedit convert notes.md --find 'colou?r' --replace 'color' --all -w
  mdedit convert notes.md --line-ending lf -w`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.toCase, "case", "", "convert letter case: upper, lower, title")
	cmd.Flags().BoolVar(&flags.smartChars, "smart-chars", false, "fold smart quotes, dashes and ellipses to ASCII")
	cmd.Flags().StringVar(&flags.find, "find", "", "regular expression to replace")
	cmd.Flags().StringVar(&flags.replace, "replace", "", "replacement text; $1 refers to submatches")
	cmd.Flags().BoolVar(&flags.all, "all", false, "replace every match instead of the next one")
	addCaretFlags(cmd, &flags.caret)
	addOutputFlags(cmd, &flags.output)

	return cmd
}

// caseConverter returns the converter for a --case value.
func caseConverter(name string) (func(string) string, error) {
	var caser cases.Caser
	switch strings.ToLower(name) {
	case "upper":
		caser = cases.Upper(language.Und)
	case "lower":
		caser = cases.Lower(language.Und)
	case "title":
		caser = cases.Title(language.Und, cases.NoLower)
	default:
		return nil, fmt.Errorf("%w: unknown case %q: must be upper, lower or title", ErrInvalidUsage, name)
	}
	return caser.String, nil
}

func runConvert(cmd *cobra.Command, spec string, flags *convertFlags) error {
	var converters []func(string) string
	if flags.toCase != "" {
		convert, err := caseConverter(flags.toCase)
		if err != nil {
			return err
		}
		converters = append(converters, convert)
	}
	if flags.smartChars {
		converters = append(converters, paste.ReplaceSmartChars)
	}

	var re *regexp.Regexp
	if flags.find != "" {
		var err error
		if re, err = regexp.Compile(flags.find); err != nil {
			return fmt.Errorf("%w: --find: %w", ErrInvalidUsage, err)
		}
	}

	ctx := commandContext(cmd)
	w, err := openWorkspace(cmd, newLinePrompter(cmd.InOrStdin(), cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer w.close(ctx)

	if err := w.open(ctx, spec); err != nil {
		return err
	}
	original := w.editor.Text()
	flags.caret.apply(w)

	for _, convert := range converters {
		w.editor.FormatText(convert, false)
	}
	if re != nil {
		w.replace(re, flags.replace, flags.all)
	}

	return flags.output.finish(ctx, w, original)
}

// replace replaces the next match after the caret, or every match.
func (w *workspace) replace(re *regexp.Regexp, repl string, all bool) {
	if all {
		n := w.editor.ReplaceAll(re, repl)
		w.logger.Info("replaced matches", "count", n)
		return
	}
	if !w.editor.Find(re) {
		w.logger.Warn("no match", "pattern", re.String())
		return
	}
	w.editor.ReplaceNext(re, repl)
}

type pasteFlags struct {
	text   string
	caret  caretFlags
	output outputFlags
}

func newPasteCommand() *cobra.Command {
	flags := &pasteFlags{}

	cmd := &cobra.Command{
		Use:   "paste <file> [flags]",
		Short: "Smart-paste text into a Markdown document",
		Long: `Paste text at the caret, replacing the selection, the way the editor
pastes from the clipboard. URLs become links or images unless the caret is
inside code or an existing link, and source code can be wrapped in a fenced
code block.

The text comes from --text or standard input.`,
		Example: `  mdedit paste notes.md --at 42 --select 4 --text https://example.com
  pbpaste | mdedit paste notes.md --line 10 --fence-code -w`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPaste(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVar(&flags.text, "text", "", "text to paste (default: read standard input)")
	cmd.Flags().Bool("remove-special-characters", false, "fold typographic characters to ASCII")
	cmd.Flags().Bool("fence-code", false, "wrap pasted source code in a fenced code block")
	addCaretFlags(cmd, &flags.caret)
	addOutputFlags(cmd, &flags.output)

	return cmd
}

func runPaste(cmd *cobra.Command, spec string, flags *pasteFlags) error {
	text := flags.text
	if !cmd.Flags().Changed("text") {
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read standard input: %w", err)
		}
		text = string(content)
	}

	ctx := commandContext(cmd)
	w, err := openWorkspace(cmd, newLinePrompter(cmd.InOrStdin(), cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer w.close(ctx)

	if err := w.open(ctx, spec); err != nil {
		return err
	}
	original := w.editor.Text()
	flags.caret.apply(w)

	w.editor.Paste(text)
	w.logger.Debug("pasted", logging.FieldBytes, len(text), logging.FieldOffset, w.editor.Caret())

	return flags.output.finish(ctx, w, original)
}

type expandFlags struct {
	list   bool
	caret  caretFlags
	output outputFlags
}

func newExpandCommand() *cobra.Command {
	flags := &expandFlags{}

	cmd := &cobra.Command{
		Use:   "expand <file> [flags]",
		Short: "Expand the snippet before the caret",
		Long: `Expand the snippet whose trigger is the word before the caret, as Tab
does in the editor. Without a matching trigger, indentation is inserted.

Snippets come from the snippets file in the configuration or --snippets,
and fall back to the built-in set. --list prints the available triggers.`,
		Example: `  mdedit expand notes.md --at 17 -w
  mdedit expand --list --snippets my.snippets`,
		Args: func(cmd *cobra.Command, args []string) error {
			if flags.list {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.list {
				return runListSnippets(cmd)
			}
			return runExpand(cmd, args[0], flags)
		},
	}

	cmd.Flags().BoolVar(&flags.list, "list", false, "list the snippet triggers")
	cmd.Flags().String("snippets", "", "path to a snippets file")
	addCaretFlags(cmd, &flags.caret)
	addOutputFlags(cmd, &flags.output)

	return cmd
}

func runExpand(cmd *cobra.Command, spec string, flags *expandFlags) error {
	ctx := commandContext(cmd)
	w, err := openWorkspace(cmd, newLinePrompter(cmd.InOrStdin(), cmd.ErrOrStderr()))
	if err != nil {
		return err
	}
	defer w.close(ctx)

	if err := w.open(ctx, spec); err != nil {
		return err
	}
	original := w.editor.Text()
	flags.caret.apply(w)

	if w.editor.TabExpand() {
		w.logger.Debug("expanded snippet", logging.FieldOffset, w.editor.Caret())
	} else {
		w.logger.Info("no snippet before the caret; inserted indentation")
	}

	return flags.output.finish(ctx, w, original)
}

func runListSnippets(cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	w, err := openWorkspace(cmd, nil)
	if err != nil {
		return err
	}
	defer w.close(ctx)

	triggers := w.snips.Triggers()
	rows := make([][]string, 0, len(triggers))
	for _, trigger := range triggers {
		expansion, _ := w.snips.Lookup(trigger)
		rows = append(rows, []string{trigger, strings.ReplaceAll(expansion, "\n", `\n`)})
	}
	fmt.Fprint(w.out, w.styles.FormatTable([]string{"TRIGGER", "EXPANSION"}, rows))
	return nil
}
