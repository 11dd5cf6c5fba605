package theme

import (
	"fmt"
	"sort"
	"strings"
)

// Built-in theme names.
const (
	NameDark  = "dark"
	NameLight = "light"
	NamePlain = "plain"
)

// Dark returns the default dark theme using ANSI 256 colors.
func Dark() *Theme {
	return New("Dark", "252", "", map[Class]StyleSpec{
		ClassHeading:       {Foreground: "12", Bold: true},
		ClassEmphasis:      {Italic: true},
		ClassStrong:        {Bold: true},
		ClassStrikethrough: {Strikethrough: true, Faint: true},
		ClassCodeSpan:      {Foreground: "214"},
		ClassCodeBlock:     {Foreground: "180"},
		ClassLink:          {Foreground: "39", Underline: true},
		ClassImage:         {Foreground: "170"},
		ClassBlockquote:    {Foreground: "8"},
		ClassListMarker:    {Foreground: "11", Bold: true},
		ClassHTML:          {Foreground: "13"},
		ClassThematicBreak: {Foreground: "8"},
		ClassTable:         {Foreground: "14"},
	}, map[Class]string{
		ClassCodeBlock:  "235",
		ClassBlockquote: "236",
		ClassHTML:       "235",
		ClassTable:      "234",
	})
}

// Light returns a theme for light terminal backgrounds.
func Light() *Theme {
	return New("Light", "0", "", map[Class]StyleSpec{
		ClassHeading:       {Foreground: "4", Bold: true},
		ClassEmphasis:      {Italic: true},
		ClassStrong:        {Bold: true},
		ClassStrikethrough: {Strikethrough: true},
		ClassCodeSpan:      {Foreground: "88"},
		ClassCodeBlock:     {Foreground: "94"},
		ClassLink:          {Foreground: "25", Underline: true},
		ClassImage:         {Foreground: "90"},
		ClassBlockquote:    {Foreground: "242"},
		ClassListMarker:    {Foreground: "130", Bold: true},
		ClassHTML:          {Foreground: "127"},
		ClassThematicBreak: {Foreground: "245"},
		ClassTable:         {Foreground: "30"},
	}, map[Class]string{
		ClassCodeBlock:  "255",
		ClassBlockquote: "254",
		ClassHTML:       "255",
		ClassTable:      "254",
	})
}

// Plain returns a theme with no colors, used when color output is disabled.
func Plain() *Theme {
	return New("Plain", "", "", nil, nil)
}

//nolint:gochecknoglobals // Read-only registry of constructors.
var builtins = map[string]func() *Theme{
	NameDark:  Dark,
	NameLight: Light,
	NamePlain: Plain,
}

// Named returns a built-in theme by name (case-insensitive).
func Named(name string) (*Theme, error) {
	ctor, ok := builtins[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("unknown theme %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return ctor(), nil
}

// Names returns the sorted names of the built-in themes.
func Names() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
