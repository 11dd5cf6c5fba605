package configloader

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/mdedit/pkg/config"
	"github.com/yaklabco/mdedit/pkg/fsutil"
	"github.com/yaklabco/mdedit/pkg/loadsave"
	"github.com/yaklabco/mdedit/pkg/theme"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	// Field is the path to the invalid field (e.g., "backups.mode").
	Field string

	// Value is the invalid value.
	Value any

	// Message describes the validation error.
	Message string

	// FilePath is the config file containing the error (if known).
	FilePath string

	// Line is the line number in the config file (if known).
	Line int
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	var parts []string

	if e.FilePath != "" {
		if e.Line > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", e.FilePath, e.Line))
		} else {
			parts = append(parts, e.FilePath)
		}
	}

	if e.Field != "" {
		parts = append(parts, e.Field)
	}

	parts = append(parts, e.Message)

	return strings.Join(parts, ": ")
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	// Errors are validation failures that prevent loading.
	Errors []ValidationError

	// Warnings are non-fatal issues (e.g., unknown fields).
	Warnings []ValidationError
}

// Valid returns true if there are no errors.
func (r *ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// HasWarnings returns true if there are any warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// AllMessages returns all error and warning messages combined.
func (r *ValidationResult) AllMessages() []string {
	messages := make([]string, 0, len(r.Errors)+len(r.Warnings))
	for _, e := range r.Errors {
		messages = append(messages, "error: "+e.Error())
	}
	for _, w := range r.Warnings {
		messages = append(messages, "warning: "+w.Error())
	}
	return messages
}

// Validate checks a configuration for errors and warnings.
func Validate(cfg *config.Config) *ValidationResult {
	if cfg == nil {
		return &ValidationResult{}
	}

	result := &ValidationResult{}

	if cfg.Flavor != "" && !cfg.Flavor.IsValid() {
		result.addError("flavor", cfg.Flavor,
			fmt.Sprintf("invalid flavor %q; must be one of: commonmark, gfm", cfg.Flavor))
	}

	if !loadsave.IsValidLineEnding(cfg.LineEnding) {
		result.addError("line_ending", cfg.LineEnding,
			fmt.Sprintf("invalid line ending %q; must be one of: crlf, cr, lf", cfg.LineEnding))
	}

	if !loadsave.IsValidEncoding(cfg.Encoding) {
		result.addError("encoding", cfg.Encoding,
			fmt.Sprintf("unknown encoding %q", cfg.Encoding))
	}

	if cfg.Theme != "" && !IsValidTheme(cfg.Theme) {
		msg := fmt.Sprintf("unknown theme %q; must be one of: %s", cfg.Theme, strings.Join(theme.Names(), ", "))
		if cfg.ThemeFile != "" {
			result.addWarning("theme", cfg.Theme, msg+"; theme_file is used instead")
		} else {
			result.addError("theme", cfg.Theme, msg)
		}
	}

	if cfg.AutoSaveDelayMS < 0 {
		result.addError("auto_save_delay_ms", cfg.AutoSaveDelayMS, "auto_save_delay_ms must be >= 0")
	}

	if cfg.Backups.Mode != "" && !fsutil.IsValidBackupMode(cfg.Backups.Mode) {
		result.addError("backups.mode", cfg.Backups.Mode,
			fmt.Sprintf("invalid backup mode %q; must be one of: sidecar, none", cfg.Backups.Mode))
	}

	if cfg.LogLevel != "" {
		if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
			result.addError("log_level", cfg.LogLevel,
				fmt.Sprintf("invalid log level %q; must be one of: debug, info, warn, error", cfg.LogLevel))
		}
	}

	if cfg.AutoSaveEnabled() && cfg.AutoSaveDelayMS > 0 && cfg.AutoSaveDelayMS < minAutoSaveDelayMS {
		result.addWarning("auto_save_delay_ms", cfg.AutoSaveDelayMS,
			fmt.Sprintf("auto-save delay below %dms saves on nearly every keystroke", minAutoSaveDelayMS))
	}

	return result
}

// minAutoSaveDelayMS is the delay below which a warning is reported.
const minAutoSaveDelayMS = 250

func (r *ValidationResult) addError(field string, value any, msg string) {
	r.Errors = append(r.Errors, ValidationError{Field: field, Value: value, Message: msg})
}

func (r *ValidationResult) addWarning(field string, value any, msg string) {
	r.Warnings = append(r.Warnings, ValidationError{Field: field, Value: value, Message: msg})
}

// ValidateWithFile validates configuration and includes file path in errors.
func ValidateWithFile(cfg *config.Config, filePath string) *ValidationResult {
	result := Validate(cfg)

	for i := range result.Errors {
		result.Errors[i].FilePath = filePath
	}
	for i := range result.Warnings {
		result.Warnings[i].FilePath = filePath
	}

	return result
}

// IsValidTheme reports whether name is a built-in theme.
func IsValidTheme(name string) bool {
	_, err := theme.Named(name)
	return err == nil
}
