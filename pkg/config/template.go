package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// commentWrapWidth is the maximum width for wrapped comments in templates.
const commentWrapWidth = 70

// TemplateOptions controls configuration template generation.
type TemplateOptions struct {
	// Full documents every key. If false, generates a minimal template.
	Full bool

	// Format is the output format: "yaml" or "json".
	Format string
}

// setting documents one configuration key for the full template.
type setting struct {
	key         string
	value       string
	description string
}

//nolint:gochecknoglobals // Read-only template table.
var settings = []setting{
	{"flavor", "commonmark", "Markdown flavor used for highlighting and export: commonmark or gfm."},
	{"theme", DefaultTheme, "Built-in color theme: dark, light or plain."},
	{"theme_file", `""`, "YAML theme file. When set it replaces the built-in theme."},
	{"encoding", DefaultEncoding, "Encoding used to read documents. auto detects UTF-8, UTF-16 byte order marks and falls back to windows-1252."},
	{"line_ending", DefaultLineEnding, "Line ending written on save: crlf, cr or lf."},
	{"auto_save", "false", "Save modified documents after a quiet period."},
	{"auto_save_delay_ms", fmt.Sprint(DefaultAutoSaveDelayMS), "Quiet period in milliseconds before an automatic save."},
	{"format_on_save", "false", "Replace typographic quotes, dashes and ellipses before every save."},
	{"open_last_cursor_position", "true", "Restore the caret position when a recent file is reopened."},
	{"remove_special_characters", "true", "Replace typographic quotes, dashes and ellipses when pasting."},
	{"snippets_file", `""`, "File of trigger/expansion snippets. The built-in snippets are used when empty."},
	{"html_template", `""`, "HTML page used for export. The text {{content}} is replaced by the rendered document."},
	{"session_file", `""`, "File recording recent documents and caret positions."},
}

// GenerateTemplate creates a configuration file template.
func GenerateTemplate(opts TemplateOptions) ([]byte, error) {
	if opts.Format == "json" {
		return templateToJSON()
	}
	if opts.Full {
		return generateFullTemplate(), nil
	}
	return generateMinimalTemplate(), nil
}

// generateMinimalTemplate creates a minimal commented template.
func generateMinimalTemplate() []byte {
	var buf bytes.Buffer

	buf.WriteString(`# mdedit configuration
# See: https://github.com/yaklabco/mdedit

# Markdown flavor: commonmark or gfm
flavor: commonmark

# Color theme: dark, light or plain
theme: dark

# Line ending written on save: crlf, cr or lf
# line_ending: crlf

# Save modified documents automatically
# auto_save: false
# auto_save_delay_ms: 4000

# Fold typographic characters to ASCII before every save
# format_on_save: false

# Smart paste
# paste:
#   fence_code: true
`)

	return buf.Bytes()
}

// generateFullTemplate creates a template documenting every key.
func generateFullTemplate() []byte {
	var buf bytes.Buffer

	buf.WriteString(`# mdedit configuration - Full Template
# See: https://github.com/yaklabco/mdedit
#
# Every setting is listed with its default value.
`)

	for _, s := range settings {
		fmt.Fprintf(&buf, "\n# %s\n", wrapComment(s.description, commentWrapWidth))
		fmt.Fprintf(&buf, "%s: %s\n", s.key, s.value)
	}

	buf.WriteString(`
# Smart paste
paste:
  # Wrap pasted source code in a fenced code block.
  fence_code: true

# Backup of the previous version, written before each save
backups:
  enabled: true
  # sidecar keeps name.md.bak next to the document; none disables backups.
  mode: sidecar
`)

	return buf.Bytes()
}

// wrapComment wraps text at maxWidth, continuing on new comment lines.
func wrapComment(text string, maxWidth int) string {
	if len(text) <= maxWidth {
		return text
	}

	var lines []string
	currentLine := ""

	for _, word := range strings.Fields(text) {
		switch {
		case currentLine == "":
			currentLine = word
		case len(currentLine)+1+len(word) <= maxWidth:
			currentLine += " " + word
		default:
			lines = append(lines, currentLine)
			currentLine = word
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}

	return strings.Join(lines, "\n# ")
}

// templateToJSON renders the default configuration as JSON.
func templateToJSON() ([]byte, error) {
	cfg := NewConfig()

	data, err := json.MarshalIndent(map[string]any{
		"flavor":                    cfg.Flavor,
		"theme":                     cfg.Theme,
		"encoding":                  cfg.Encoding,
		"line_ending":               cfg.LineEnding,
		"auto_save":                 cfg.AutoSaveEnabled(),
		"auto_save_delay_ms":        cfg.AutoSaveDelayMS,
		"format_on_save":            cfg.FormatOnSaveEnabled(),
		"open_last_cursor_position": BoolValue(cfg.OpenLastCursorPosition, true),
		"remove_special_characters": BoolValue(cfg.RemoveSpecialCharacters, true),
		"paste": map[string]any{
			"fence_code": BoolValue(cfg.Paste.FenceCode, true),
		},
		"backups": map[string]any{
			"enabled": cfg.BackupsEnabled(),
			"mode":    cfg.Backups.Mode,
		},
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal JSON: %w", err)
	}

	return append(data, '\n'), nil
}

// DefaultTemplateHeader returns the default header for generated configs.
func DefaultTemplateHeader() string {
	return `# mdedit configuration
# Generated by: mdedit init`
}
