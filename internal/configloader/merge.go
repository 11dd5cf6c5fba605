package configloader

import "github.com/yaklabco/mdedit/pkg/config"

// merge combines two configurations, with override taking precedence over base.
// The merge follows these rules:
//   - Strings and integers: override overwrites base if non-zero
//   - Boolean pointers: override overwrites base if non-nil
//   - Nested sections merge field by field
func merge(base, override *config.Config) *config.Config {
	if base == nil {
		return override
	}
	if override == nil {
		return base
	}

	result := base.Clone()

	mergeString(&result.Theme, override.Theme)
	mergeString(&result.ThemeFile, override.ThemeFile)
	mergeString(&result.Encoding, override.Encoding)
	mergeString(&result.LineEnding, override.LineEnding)
	mergeString(&result.SnippetsFile, override.SnippetsFile)
	mergeString(&result.HTMLTemplate, override.HTMLTemplate)
	mergeString(&result.SessionFile, override.SessionFile)
	mergeString(&result.Backups.Mode, override.Backups.Mode)
	mergeString(&result.LogLevel, override.LogLevel)

	if override.Flavor != "" {
		result.Flavor = override.Flavor
	}
	if override.AutoSaveDelayMS != 0 {
		result.AutoSaveDelayMS = override.AutoSaveDelayMS
	}

	mergeBool(&result.AutoSave, override.AutoSave)
	mergeBool(&result.FormatOnSave, override.FormatOnSave)
	mergeBool(&result.OpenLastCursorPosition, override.OpenLastCursorPosition)
	mergeBool(&result.RemoveSpecialCharacters, override.RemoveSpecialCharacters)
	mergeBool(&result.Paste.FenceCode, override.Paste.FenceCode)
	mergeBool(&result.Backups.Enabled, override.Backups.Enabled)

	// CLI switches can only be turned on.
	if override.NoColor {
		result.NoColor = true
	}
	if override.NoBackups {
		result.NoBackups = true
	}

	return result
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func mergeBool(dst **bool, v *bool) {
	if v != nil {
		b := *v
		*dst = &b
	}
}

// MergeAll merges multiple configurations in order, with later configs taking precedence.
func MergeAll(configs ...*config.Config) *config.Config {
	if len(configs) == 0 {
		return nil
	}

	result := configs[0]
	for i := 1; i < len(configs); i++ {
		result = merge(result, configs[i])
	}
	return result
}
