// Package config defines core configuration types for mdedit.
// These types are pure data structures with no dependency on the loaders
// that discover and merge them.
package config

import "time"

// Flavor specifies the Markdown flavor to use for parsing.
type Flavor string

const (
	FlavorCommonMark Flavor = "commonmark"
	FlavorGFM        Flavor = "gfm"
)

// IsValid reports whether the flavor is known.
func (f Flavor) IsValid() bool {
	switch f {
	case FlavorCommonMark, FlavorGFM:
		return true
	default:
		return false
	}
}

// Defaults applied by NewConfig.
const (
	DefaultTheme           = "dark"
	DefaultEncoding        = "auto"
	DefaultLineEnding      = "crlf"
	DefaultAutoSaveDelayMS = 4000
	DefaultBackupMode      = "sidecar"
)

// BackupsConfig controls the copy kept of a document before it is overwritten.
type BackupsConfig struct {
	Enabled *bool  `mapstructure:"enabled" yaml:"enabled,omitempty"`
	Mode    string `mapstructure:"mode" yaml:"mode,omitempty"` // "sidecar" or "none"
}

// PasteConfig controls smart paste.
type PasteConfig struct {
	// FenceCode wraps pasted text that looks like source code in a fenced block.
	FenceCode *bool `mapstructure:"fence_code" yaml:"fence_code,omitempty"`
}

// Config is the root configuration structure for mdedit.
//
// Booleans are pointers so that a layer can set false explicitly and still
// override a lower layer that set true.
type Config struct {
	// Flavor specifies the Markdown flavor ("commonmark" or "gfm").
	Flavor Flavor `mapstructure:"flavor" yaml:"flavor,omitempty"`

	// Theme names a built-in theme; ThemeFile points at a YAML theme and wins.
	Theme     string `mapstructure:"theme" yaml:"theme,omitempty"`
	ThemeFile string `mapstructure:"theme_file" yaml:"theme_file,omitempty"`

	// Encoding is the encoding used to read files, or "auto" to detect it.
	Encoding string `mapstructure:"encoding" yaml:"encoding,omitempty"`

	// LineEnding is "crlf", "cr" or "lf" and applies when saving.
	LineEnding string `mapstructure:"line_ending" yaml:"line_ending,omitempty"`

	AutoSave        *bool `mapstructure:"auto_save" yaml:"auto_save,omitempty"`
	AutoSaveDelayMS int   `mapstructure:"auto_save_delay_ms" yaml:"auto_save_delay_ms,omitempty"`

	// FormatOnSave folds typographic characters to ASCII before every save.
	FormatOnSave *bool `mapstructure:"format_on_save" yaml:"format_on_save,omitempty"`

	// OpenLastCursorPosition restores the caret from the session when a
	// recent file is reopened.
	OpenLastCursorPosition *bool `mapstructure:"open_last_cursor_position" yaml:"open_last_cursor_position,omitempty"`

	// RemoveSpecialCharacters replaces typographic quotes and dashes on paste.
	RemoveSpecialCharacters *bool `mapstructure:"remove_special_characters" yaml:"remove_special_characters,omitempty"`

	Paste PasteConfig `mapstructure:"paste" yaml:"paste,omitempty"`

	SnippetsFile string `mapstructure:"snippets_file" yaml:"snippets_file,omitempty"`

	// HTMLTemplate is a file holding the page used for HTML export.
	HTMLTemplate string `mapstructure:"html_template" yaml:"html_template,omitempty"`

	SessionFile string `mapstructure:"session_file" yaml:"session_file,omitempty"`

	Backups BackupsConfig `mapstructure:"backups" yaml:"backups,omitempty"`

	// CLI-level options (not persisted to config files).

	// LogLevel is the minimum level written to the log.
	LogLevel string `mapstructure:"-" yaml:"-"`

	// NoColor disables styled terminal output.
	NoColor bool `mapstructure:"-" yaml:"-"`

	// NoBackups disables backup creation regardless of Backups.
	NoBackups bool `mapstructure:"-" yaml:"-"`
}

// NewConfig returns a Config with the default settings.
func NewConfig() *Config {
	return &Config{
		Flavor:                  FlavorCommonMark,
		Theme:                   DefaultTheme,
		Encoding:                DefaultEncoding,
		LineEnding:              DefaultLineEnding,
		AutoSave:                Bool(false),
		AutoSaveDelayMS:         DefaultAutoSaveDelayMS,
		FormatOnSave:            Bool(false),
		OpenLastCursorPosition:  Bool(true),
		RemoveSpecialCharacters: Bool(true),
		Paste:                   PasteConfig{FenceCode: Bool(true)},
		Backups: BackupsConfig{
			Enabled: Bool(true),
			Mode:    DefaultBackupMode,
		},
		LogLevel: "warn",
	}
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}

// BoolValue dereferences p, returning def when p is nil.
func BoolValue(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// FormatOnSaveEnabled reports whether documents are reformatted on save.
func (c *Config) FormatOnSaveEnabled() bool {
	return BoolValue(c.FormatOnSave, false)
}

// AutoSaveEnabled reports whether modified documents are saved automatically.
func (c *Config) AutoSaveEnabled() bool {
	return BoolValue(c.AutoSave, false)
}

// AutoSaveDelay returns the quiet period before an automatic save.
func (c *Config) AutoSaveDelay() time.Duration {
	if c.AutoSaveDelayMS <= 0 {
		return DefaultAutoSaveDelayMS * time.Millisecond
	}
	return time.Duration(c.AutoSaveDelayMS) * time.Millisecond
}

// BackupsEnabled reports whether saves keep a backup of the previous version.
func (c *Config) BackupsEnabled() bool {
	if c.NoBackups || c.Backups.Mode == "none" {
		return false
	}
	return BoolValue(c.Backups.Enabled, true)
}
