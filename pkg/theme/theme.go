// Package theme describes the colors and text attributes used to paint a
// Markdown document: per-construct foreground styles for the colorizer and
// block background colors for the band renderer.
//
// A Theme is a value object. It is never mutated after construction, so one
// pointer can be shared by every render consumer and swapped atomically.
package theme

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Class identifies a highlighted Markdown construct.
type Class uint8

// Highlight classes.
const (
	ClassNone Class = iota
	ClassHeading
	ClassEmphasis
	ClassStrong
	ClassStrikethrough
	ClassCodeSpan
	ClassCodeBlock
	ClassLink
	ClassImage
	ClassBlockquote
	ClassListMarker
	ClassHTML
	ClassThematicBreak
	ClassTable
)

//nolint:gochecknoglobals // Read-only lookup table.
var classNames = [...]string{
	ClassNone:          "none",
	ClassHeading:       "heading",
	ClassEmphasis:      "emphasis",
	ClassStrong:        "strong",
	ClassStrikethrough: "strikethrough",
	ClassCodeSpan:      "code_span",
	ClassCodeBlock:     "code_block",
	ClassLink:          "link",
	ClassImage:         "image",
	ClassBlockquote:    "blockquote",
	ClassListMarker:    "list_marker",
	ClassHTML:          "html",
	ClassThematicBreak: "thematic_break",
	ClassTable:         "table",
}

// String returns the configuration name of the class.
func (c Class) String() string {
	if int(c) < len(classNames) {
		return classNames[c]
	}
	return "unknown"
}

// ParseClass converts a configuration name into a Class.
func ParseClass(name string) (Class, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for idx, n := range classNames {
		if n == normalized && Class(idx) != ClassNone {
			return Class(idx), nil
		}
	}
	return ClassNone, fmt.Errorf("unknown highlight class %q", name)
}

// StyleSpec is the serializable description of a text style.
// Colors are lipgloss color strings: ANSI indexes ("12") or hex ("#ff8800").
type StyleSpec struct {
	Foreground    string `yaml:"foreground,omitempty"`
	Background    string `yaml:"background,omitempty"`
	Bold          bool   `yaml:"bold,omitempty"`
	Italic        bool   `yaml:"italic,omitempty"`
	Underline     bool   `yaml:"underline,omitempty"`
	Strikethrough bool   `yaml:"strikethrough,omitempty"`
	Faint         bool   `yaml:"faint,omitempty"`
}

// Style converts the spec into a lipgloss style.
func (s StyleSpec) Style() lipgloss.Style {
	style := lipgloss.NewStyle()
	if s.Foreground != "" {
		style = style.Foreground(lipgloss.Color(s.Foreground))
	}
	if s.Background != "" {
		style = style.Background(lipgloss.Color(s.Background))
	}
	if s.Bold {
		style = style.Bold(true)
	}
	if s.Italic {
		style = style.Italic(true)
	}
	if s.Underline {
		style = style.Underline(true)
	}
	if s.Strikethrough {
		style = style.Strikethrough(true)
	}
	if s.Faint {
		style = style.Faint(true)
	}
	return style
}

// Theme is an immutable set of styles.
type Theme struct {
	name        string
	foreground  string
	background  string
	styles      map[Class]StyleSpec
	backgrounds map[Class]string
}

// New creates a theme. The maps are copied.
func New(name, foreground, background string, styles map[Class]StyleSpec, backgrounds map[Class]string) *Theme {
	th := &Theme{
		name:        name,
		foreground:  foreground,
		background:  background,
		styles:      make(map[Class]StyleSpec, len(styles)),
		backgrounds: make(map[Class]string, len(backgrounds)),
	}
	for k, v := range styles {
		th.styles[k] = v
	}
	for k, v := range backgrounds {
		th.backgrounds[k] = v
	}
	return th
}

// Name returns the display name of the theme.
func (t *Theme) Name() string {
	return t.name
}

// Foreground returns the default text color, or "" for the terminal default.
func (t *Theme) Foreground() string {
	return t.foreground
}

// Background returns the editor background color, or "" for the terminal default.
func (t *Theme) Background() string {
	return t.background
}

// Spec returns the style spec for a class. Unknown classes use the default
// foreground.
func (t *Theme) Spec(c Class) StyleSpec {
	if spec, ok := t.styles[c]; ok {
		return spec
	}
	return StyleSpec{Foreground: t.foreground}
}

// Style returns the lipgloss style for a class.
func (t *Theme) Style(c Class) lipgloss.Style {
	return t.Spec(c).Style()
}

// BandColor returns the block background color for a class.
func (t *Theme) BandColor(c Class) (lipgloss.Color, bool) {
	color, ok := t.backgrounds[c]
	if !ok || color == "" {
		return "", false
	}
	return lipgloss.Color(color), true
}

// Classes returns the classes that carry an explicit style, sorted.
func (t *Theme) Classes() []Class {
	out := make([]Class, 0, len(t.styles))
	for c := range t.styles {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// With returns a copy of the theme with overrides applied.
func (t *Theme) With(name string, styles map[Class]StyleSpec, backgrounds map[Class]string) *Theme {
	cp := New(name, t.foreground, t.background, t.styles, t.backgrounds)
	for k, v := range styles {
		cp.styles[k] = v
	}
	for k, v := range backgrounds {
		cp.backgrounds[k] = v
	}
	return cp
}
