package theme

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/yaklabco/mdedit/pkg/fsutil"
)

// File is the YAML representation of a theme.
//
//	name: solarized
//	extends: dark
//	foreground: "#839496"
//	styles:
//	  heading: {foreground: "#268bd2", bold: true}
//	backgrounds:
//	  code_block: "#073642"
type File struct {
	Name        string               `yaml:"name"`
	Extends     string               `yaml:"extends,omitempty"`
	Foreground  string               `yaml:"foreground,omitempty"`
	Background  string               `yaml:"background,omitempty"`
	Styles      map[string]StyleSpec `yaml:"styles,omitempty"`
	Backgrounds map[string]string    `yaml:"backgrounds,omitempty"`
}

// ErrInvalidTheme is returned for theme files that cannot be used.
var ErrInvalidTheme = errors.New("invalid theme")

// Parse builds a theme from YAML data.
func Parse(data []byte) (*Theme, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidTheme, err)
	}
	return file.Build()
}

// Build resolves the base theme and applies the file's overrides.
func (f *File) Build() (*Theme, error) {
	base := Plain()
	if f.Extends != "" {
		named, err := Named(f.Extends)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidTheme, err)
		}
		base = named
	}

	styles := make(map[Class]StyleSpec, len(f.Styles))
	for name, spec := range f.Styles {
		class, err := ParseClass(name)
		if err != nil {
			return nil, fmt.Errorf("%w: styles: %w", ErrInvalidTheme, err)
		}
		styles[class] = spec
	}

	backgrounds := make(map[Class]string, len(f.Backgrounds))
	for name, color := range f.Backgrounds {
		class, err := ParseClass(name)
		if err != nil {
			return nil, fmt.Errorf("%w: backgrounds: %w", ErrInvalidTheme, err)
		}
		backgrounds[class] = color
	}

	name := f.Name
	if name == "" {
		name = base.Name()
	}

	th := base.With(name, styles, backgrounds)
	if f.Foreground != "" {
		th.foreground = f.Foreground
	}
	if f.Background != "" {
		th.background = f.Background
	}

	return th, nil
}

// LoadFile reads a YAML theme from path.
func LoadFile(ctx context.Context, path string) (*Theme, error) {
	data, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("read theme: %w", err)
	}

	th, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return th, nil
}

// Resolve returns the theme named by name, or the theme file at path when
// path is set. Empty inputs resolve to the dark theme.
func Resolve(ctx context.Context, name, path string) (*Theme, error) {
	if path != "" {
		return LoadFile(ctx, path)
	}
	if name == "" {
		return Dark(), nil
	}
	return Named(name)
}

// Marshal encodes a theme as YAML.
func Marshal(t *Theme) ([]byte, error) {
	file := File{
		Name:        t.name,
		Foreground:  t.foreground,
		Background:  t.background,
		Styles:      make(map[string]StyleSpec, len(t.styles)),
		Backgrounds: make(map[string]string, len(t.backgrounds)),
	}
	for c, spec := range t.styles {
		file.Styles[c.String()] = spec
	}
	for c, color := range t.backgrounds {
		file.Backgrounds[c.String()] = color
	}

	data, err := yaml.Marshal(&file)
	if err != nil {
		return nil, fmt.Errorf("marshal theme: %w", err)
	}
	return data, nil
}
