package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yaklabco/mdedit/internal/logging"
	"github.com/yaklabco/mdedit/pkg/config"
	"github.com/yaklabco/mdedit/pkg/snippets"
)

// configFilePermissions is the file mode for configuration files (world-readable).
const configFilePermissions = 0644

// defaultSnippetsFile is where init --snippets writes the built-in snippets.
const defaultSnippetsFile = "mdedit.snippets"

// initFlags holds the flags for the init command.
type initFlags struct {
	force    bool
	full     bool
	format   string
	output   string
	snippets bool
}

func newInitCommand() *cobra.Command {
	flags := &initFlags{}

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new mdedit configuration file",
		Long: `Create a new .mdedit.yml configuration file in the current directory
with the default settings. The file can be customized to pick a theme,
encoding, line ending, auto-save delay and the other editor options.`,
		Example: `  mdedit init                       Create minimal .mdedit.yml
  mdedit init --full                Create full config with every setting documented
  mdedit init --format json         Create .mdedit.json instead
  mdedit init --snippets            Also write the built-in snippets to mdedit.snippets
  mdedit init --output custom.yml   Write to a custom file path`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runInit(flags)
		},
	}

	cmd.Flags().BoolVarP(&flags.force, "force", "f", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&flags.full, "full", false, "Generate full template with every setting documented")
	cmd.Flags().StringVar(&flags.format, "format", "yaml", "Output format: yaml or json")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file path (default: .mdedit.yml or .mdedit.json)")
	cmd.Flags().BoolVar(&flags.snippets, "snippets", false, "Also write the built-in snippets to "+defaultSnippetsFile)

	return cmd
}

func runInit(flags *initFlags) error {
	logger := logging.NewInteractive()

	// Validate format
	if flags.format != "yaml" && flags.format != "json" {
		return fmt.Errorf("%w: invalid format %q: must be yaml or json", ErrInvalidUsage, flags.format)
	}

	// Determine output path
	outputPath := flags.output
	if outputPath == "" {
		if flags.format == "json" {
			outputPath = ".mdedit.json"
		} else {
			outputPath = ".mdedit.yml"
		}
	}

	content, err := config.GenerateTemplate(config.TemplateOptions{
		Full:   flags.full,
		Format: flags.format,
	})
	if err != nil {
		return fmt.Errorf("generate template: %w", err)
	}

	if err := writeNewFile(outputPath, content, flags.force); err != nil {
		return err
	}
	logger.Info("created configuration file", logging.FieldPath, outputPath)

	if flags.snippets {
		snippetsPath := filepath.Join(filepath.Dir(outputPath), defaultSnippetsFile)
		if err := writeNewFile(snippetsPath, []byte(snippets.Format(snippets.Builtin())), flags.force); err != nil {
			return err
		}
		logger.Info("created snippets file", logging.FieldPath, snippetsPath)
		logger.Info("set snippets_file in the configuration to use it")
	}

	logger.Info("customize your configuration by editing the file")

	return nil
}

// writeNewFile writes content to path, refusing to replace an existing file
// unless force is set.
func writeNewFile(path string, content []byte, force bool) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	if _, err := os.Stat(absPath); err == nil {
		if !force {
			return fmt.Errorf("file %q already exists; use --force to overwrite", path)
		}
		logging.NewInteractive().Warn("overwriting existing file", logging.FieldPath, path)
	}

	if err := os.WriteFile(absPath, content, configFilePermissions); err != nil {
		return fmt.Errorf("write file: %w", err)
	}
	return nil
}
