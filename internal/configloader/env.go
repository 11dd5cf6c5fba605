package configloader

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"github.com/yaklabco/mdedit/pkg/config"
)

// envVarPrefix is the prefix for all mdedit environment variables.
const envVarPrefix = "MDEDIT_"

// envFieldType represents the type of a configuration field.
type envFieldType int

const (
	envTypeString envFieldType = iota
	envTypeBool
	envTypeInt
)

// envMapping defines environment variable to config field mappings.
type envMapping struct {
	field       string
	typ         envFieldType
	description string
}

// envMappings maps environment variable names (without prefix) to config fields.
//
//nolint:gochecknoglobals // Read-only lookup table.
var envMappings = map[string]envMapping{
	"FLAVOR":                    {"flavor", envTypeString, "Markdown flavor: commonmark or gfm"},
	"THEME":                     {"theme", envTypeString, "Built-in theme: dark, light or plain"},
	"THEME_FILE":                {"theme_file", envTypeString, "Path to a YAML theme file"},
	"ENCODING":                  {"encoding", envTypeString, "Encoding for reading files, or auto"},
	"LINE_ENDING":               {"line_ending", envTypeString, "Line ending on save: crlf, cr or lf"},
	"AUTO_SAVE":                 {"auto_save", envTypeBool, "Save modified documents automatically: true or false"},
	"AUTO_SAVE_DELAY_MS":        {"auto_save_delay_ms", envTypeInt, "Quiet period before an automatic save, in milliseconds"},
	"FORMAT_ON_SAVE":            {"format_on_save", envTypeBool, "Fold typographic characters before saving: true or false"},
	"OPEN_LAST_CURSOR_POSITION": {"open_last_cursor_position", envTypeBool, "Restore the caret of recent files: true or false"},
	"REMOVE_SPECIAL_CHARACTERS": {"remove_special_characters", envTypeBool, "Replace typographic characters on paste: true or false"},
	"PASTE_FENCE_CODE":          {"paste.fence_code", envTypeBool, "Fence pasted source code: true or false"},
	"SNIPPETS_FILE":             {"snippets_file", envTypeString, "Path to a snippets file"},
	"HTML_TEMPLATE":             {"html_template", envTypeString, "Path to the HTML export template"},
	"SESSION_FILE":              {"session_file", envTypeString, "Path to the session file"},
	"BACKUPS_ENABLED":           {"backups.enabled", envTypeBool, "Keep a backup before each save: true or false"},
	"BACKUPS_MODE":              {"backups.mode", envTypeString, "Backup mode: sidecar or none"},
	"NO_BACKUPS":                {"no_backups", envTypeBool, "Disable backups: true or false"},
	"LOG_LEVEL":                 {"log_level", envTypeString, "Log level: debug, info, warn or error"},
}

// LoadFromEnv applies environment variable overrides to the configuration.
// Environment variables are prefixed with MDEDIT_ (e.g., MDEDIT_FLAVOR).
func LoadFromEnv(cfg *config.Config) error {
	if cfg == nil {
		return nil
	}

	for envSuffix, mapping := range envMappings {
		envVar := envVarPrefix + envSuffix
		value := os.Getenv(envVar)
		if value == "" {
			continue
		}

		if err := applyEnvValue(cfg, mapping, value, envVar); err != nil {
			return err
		}
	}

	return nil
}

// applyEnvValue applies a single environment variable value to the config.
func applyEnvValue(cfg *config.Config, mapping envMapping, value, envVar string) error {
	switch mapping.typ {
	case envTypeString:
		return setStringField(cfg, mapping.field, value)
	case envTypeBool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean for %s: %q (expected true/false/1/0)", envVar, value)
		}
		return setBoolField(cfg, mapping.field, b)
	case envTypeInt:
		i, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer for %s: %q", envVar, value)
		}
		return setIntField(cfg, mapping.field, i)
	default:
		return fmt.Errorf("unknown field type for %s", envVar)
	}
}

// setStringField sets a string field on the config by field path.
func setStringField(cfg *config.Config, field, value string) error {
	switch field {
	case "flavor":
		cfg.Flavor = config.Flavor(value)
	case "theme":
		cfg.Theme = value
	case "theme_file":
		cfg.ThemeFile = value
	case "encoding":
		cfg.Encoding = value
	case "line_ending":
		cfg.LineEnding = value
	case "snippets_file":
		cfg.SnippetsFile = value
	case "html_template":
		cfg.HTMLTemplate = value
	case "session_file":
		cfg.SessionFile = value
	case "backups.mode":
		cfg.Backups.Mode = value
	case "log_level":
		cfg.LogLevel = value
	default:
		return fmt.Errorf("unknown string field: %s", field)
	}
	return nil
}

// setBoolField sets a boolean field on the config by field path.
func setBoolField(cfg *config.Config, field string, value bool) error {
	switch field {
	case "auto_save":
		cfg.AutoSave = config.Bool(value)
	case "format_on_save":
		cfg.FormatOnSave = config.Bool(value)
	case "open_last_cursor_position":
		cfg.OpenLastCursorPosition = config.Bool(value)
	case "remove_special_characters":
		cfg.RemoveSpecialCharacters = config.Bool(value)
	case "paste.fence_code":
		cfg.Paste.FenceCode = config.Bool(value)
	case "backups.enabled":
		cfg.Backups.Enabled = config.Bool(value)
	case "no_backups":
		cfg.NoBackups = value
	default:
		return fmt.Errorf("unknown boolean field: %s", field)
	}
	return nil
}

// setIntField sets an integer field on the config by field path.
func setIntField(cfg *config.Config, field string, value int) error {
	switch field {
	case "auto_save_delay_ms":
		cfg.AutoSaveDelayMS = value
	default:
		return fmt.Errorf("unknown integer field: %s", field)
	}
	return nil
}

// GetEnvVarName returns the full environment variable name for a config field.
func GetEnvVarName(field string) string {
	for suffix, mapping := range envMappings {
		if mapping.field == field {
			return envVarPrefix + suffix
		}
	}
	return ""
}

// EnvVar describes a supported environment variable.
type EnvVar struct {
	Name        string
	Description string
}

// ListEnvVars returns all supported environment variables sorted by name.
func ListEnvVars() []EnvVar {
	vars := make([]EnvVar, 0, len(envMappings))
	for suffix, mapping := range envMappings {
		vars = append(vars, EnvVar{Name: envVarPrefix + suffix, Description: mapping.description})
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })
	return vars
}
