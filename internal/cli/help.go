// Package cli provides the Cobra command structure for mdedit.
package cli

import (
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/yaklabco/mdedit/internal/ui/pretty"
	"github.com/yaklabco/mdedit/pkg/theme"
)

// Command groups shown in the root help.
const (
	groupView = "view"
	groupEdit = "edit"
	groupFile = "file"
)

// HelpStyles contains Lipgloss styles for command help formatting. They are
// taken from an editor theme so help text uses the same palette as documents.
type HelpStyles struct {
	Command    lipgloss.Style
	Heading    lipgloss.Style
	Subcommand lipgloss.Style
	Flag       lipgloss.Style
	Example    lipgloss.Style
	Dim        lipgloss.Style
}

// NewHelpStyles derives help styles from a theme. A nil theme yields
// unstyled help.
func NewHelpStyles(t *theme.Theme) *HelpStyles {
	if t == nil {
		plain := lipgloss.NewStyle()
		return &HelpStyles{plain, plain, plain, plain, plain, plain}
	}
	return &HelpStyles{
		Command:    t.Style(theme.ClassStrong),
		Heading:    t.Style(theme.ClassHeading),
		Subcommand: t.Style(theme.ClassListMarker).UnsetBold(),
		Flag:       t.Style(theme.ClassCodeSpan),
		Example:    t.Style(theme.ClassCodeBlock),
		Dim:        t.Style(theme.ClassBlockquote),
	}
}

// HelpFormatter renders styled help output for Cobra commands.
type HelpFormatter struct {
	styles *HelpStyles
}

// NewHelpFormatter creates a help formatter. Help is styled with the dark
// theme when color is enabled for writer.
func NewHelpFormatter(colorMode string, writer io.Writer) *HelpFormatter {
	var t *theme.Theme
	if pretty.IsColorEnabled(colorMode, writer) {
		t = theme.Dark()
	}
	return &HelpFormatter{styles: NewHelpStyles(t)}
}

const usageTemplate = `{{ heading "Usage:" }}
  {{if .Runnable}}{{ command .UseLine }}{{end}}
  {{if .HasAvailableSubCommands}}{{ command .CommandPath }} [command]{{end}}

{{- if .HasExample}}

{{ heading "Examples:" }}
{{ example .Example }}
{{- end}}

{{- if .HasAvailableSubCommands}}{{ $cmds := .Commands }}
{{- range $group := .Groups}}

{{ heading $group.Title }}{{range $cmds}}{{if and (eq .GroupID $group.ID) .IsAvailableCommand}}
  {{ subcommand (rpad .Name .NamePadding) }} {{ .Short }}{{end}}{{end}}
{{- end}}

{{ heading "Other Commands:" }}{{range $cmds}}{{if and (eq .GroupID "") (or .IsAvailableCommand (eq .Name "help"))}}
  {{ subcommand (rpad .Name .NamePadding) }} {{ .Short }}{{end}}{{end}}
{{- end}}

{{- if .HasAvailableLocalFlags}}

{{ heading "Flags:" }}
{{ flags .LocalFlags }}
{{- end}}

{{- if .HasAvailableInheritedFlags}}

{{ heading "Global Flags:" }}
{{ flags .InheritedFlags }}
{{- end}}

{{- if .HasAvailableSubCommands}}

Use "{{ command (print .CommandPath " [command] --help") }}" for more information about a command.
{{- end}}
`

const helpTemplate = `{{if or .Runnable .HasSubCommands}}{{ command .CommandPath }}{{if .Version}} {{ dim .Version }}{{end}}

{{end}}{{with (or .Long .Short)}}{{ trimRight . }}

{{end}}` + usageTemplate

func (h *HelpFormatter) funcs() template.FuncMap {
	return template.FuncMap{
		"command":    h.styles.Command.Render,
		"heading":    h.styles.Heading.Render,
		"subcommand": h.styles.Subcommand.Render,
		"example":    h.styles.Example.Render,
		"dim":        h.styles.Dim.Render,
		"flags":      h.formatFlags,
		"rpad":       rpad,
		"trimRight":  trimTrailingWhitespace,
	}
}

// formatFlags styles pflag usage lines. Flag names take the flag style and
// value placeholders are dimmed; descriptions keep their alignment.
func (h *HelpFormatter) formatFlags(set *pflag.FlagSet) string {
	usages := strings.TrimSuffix(set.FlagUsages(), "\n")
	if usages == "" {
		return ""
	}

	lines := strings.Split(usages, "\n")
	for i, line := range lines {
		names, desc, ok := splitFlagLine(line)
		if !ok {
			continue
		}
		lines[i] = h.styleNames(names) + desc
	}
	return strings.Join(lines, "\n")
}

func (h *HelpFormatter) styleNames(names string) string {
	var b strings.Builder
	for _, field := range strings.SplitAfter(names, " ") {
		token := strings.TrimRight(field, " ,")
		rest := field[len(token):]
		switch {
		case token == "":
			b.WriteString(field)
		case strings.HasPrefix(token, "-"):
			b.WriteString(h.styles.Flag.Render(token) + rest)
		default:
			b.WriteString(h.styles.Dim.Render(token) + rest)
		}
	}
	return b.String()
}

// splitFlagLine splits "  -o, --output string   output path" before the
// description gap, which is the first run of at least two spaces after the
// flag names.
func splitFlagLine(line string) (names, desc string, ok bool) {
	trimmed := strings.TrimLeft(line, " ")
	if trimmed == "" {
		return "", "", false
	}
	indent := len(line) - len(trimmed)

	idx := strings.Index(trimmed, "  ")
	if idx < 0 {
		return "", "", false
	}
	return line[:indent+idx], line[indent+idx:], true
}

// ApplyToCommand installs the styled help and usage functions on cmd. Cobra
// inherits them in every subcommand.
func (h *HelpFormatter) ApplyToCommand(cmd *cobra.Command) {
	funcs := h.funcs()

	render := func(name, text string, out io.Writer, c *cobra.Command) error {
		tmpl, err := template.New(name).Funcs(funcs).Parse(text)
		if err != nil {
			return fmt.Errorf("parse %s template: %w", name, err)
		}
		return tmpl.Execute(out, c)
	}

	cmd.SetUsageFunc(func(c *cobra.Command) error {
		return render("usage", usageTemplate, c.OutOrStderr(), c)
	})
	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		if err := render("help", helpTemplate, c.OutOrStdout(), c); err != nil {
			c.PrintErrln(err)
		}
	})
}

func addCommandGroups(cmd *cobra.Command) {
	cmd.AddGroup(
		&cobra.Group{ID: groupView, Title: "Viewing Commands:"},
		&cobra.Group{ID: groupEdit, Title: "Editing Commands:"},
		&cobra.Group{ID: groupFile, Title: "File Commands:"},
	)
}

func rpad(str string, padding int) string {
	if len(str) >= padding {
		return str
	}
	return str + strings.Repeat(" ", padding-len(str))
}

func trimTrailingWhitespace(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return strings.Join(lines, "\n")
}
