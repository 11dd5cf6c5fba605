package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/yaklabco/mdedit/internal/configloader"
	"github.com/yaklabco/mdedit/internal/logging"
	"github.com/yaklabco/mdedit/internal/ui/pretty"
	"github.com/yaklabco/mdedit/pkg/autosave"
	"github.com/yaklabco/mdedit/pkg/config"
	"github.com/yaklabco/mdedit/pkg/fsutil"
	"github.com/yaklabco/mdedit/pkg/loadsave"
	"github.com/yaklabco/mdedit/pkg/paste"
	"github.com/yaklabco/mdedit/pkg/snippets"
	"github.com/yaklabco/mdedit/pkg/surface"
	"github.com/yaklabco/mdedit/pkg/theme"
)

// ErrConfig marks failures to load or validate the configuration.
var ErrConfig = errors.New("failed to load configuration")

// workspace is an editor configured from the resolved configuration, plus
// the document commands bound to it.
type workspace struct {
	cfg     *config.Config
	editor  *surface.Editor
	manager *loadsave.Manager
	session *loadsave.Session
	snips   *snippets.Manager
	styles  *pretty.Styles
	logger  *log.Logger
	out     io.Writer
	width   int

	// autoSave is set once a document is open and auto_save is enabled.
	autoSave *autosave.Debouncer
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

// cliConfig collects the configuration flags that were set explicitly.
func cliConfig(cmd *cobra.Command) *config.Config {
	flags := cmd.Flags()
	cfg := &config.Config{}

	if v, err := flags.GetString("flavor"); err == nil && flags.Changed("flavor") {
		cfg.Flavor = config.Flavor(v)
	}
	if v, err := flags.GetString("theme"); err == nil && flags.Changed("theme") {
		cfg.Theme = v
	}
	if v, err := flags.GetString("log-level"); err == nil && flags.Changed("log-level") {
		cfg.LogLevel = v
	}
	if v, err := flags.GetString("session"); err == nil && flags.Changed("session") {
		cfg.SessionFile = v
	}
	if v, err := flags.GetString("encoding"); err == nil && flags.Changed("encoding") {
		cfg.Encoding = v
	}
	if v, err := flags.GetString("line-ending"); err == nil && flags.Changed("line-ending") {
		cfg.LineEnding = v
	}

	// Command-local flags.
	if v, err := flags.GetString("html-template"); err == nil && flags.Changed("html-template") {
		cfg.HTMLTemplate = v
	}
	if v, err := flags.GetString("snippets"); err == nil && flags.Changed("snippets") {
		cfg.SnippetsFile = v
	}
	if v, err := flags.GetBool("remove-special-characters"); err == nil && flags.Changed("remove-special-characters") {
		cfg.RemoveSpecialCharacters = config.Bool(v)
	}
	if v, err := flags.GetBool("fence-code"); err == nil && flags.Changed("fence-code") {
		cfg.Paste.FenceCode = config.Bool(v)
	}

	if v, err := flags.GetBool("no-backups"); err == nil {
		cfg.NoBackups = v
	}
	if v, err := flags.GetString("color"); err == nil && v == "never" {
		cfg.NoColor = true
	}
	return cfg
}

// loadConfig resolves the configuration for cmd and applies its log level.
func loadConfig(ctx context.Context, cmd *cobra.Command) (*config.Config, error) {
	logger := logging.Default()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("get config flag: %w", err)
	}

	workDir, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}

	result, err := configloader.Load(ctx, configloader.LoadOptions{
		WorkingDir:   workDir,
		ExplicitPath: configPath,
		CLIConfig:    cliConfig(cmd),
	})
	if err != nil {
		return nil, errors.Join(ErrConfig, err)
	}

	cfg := result.Config
	if debug, _ := cmd.Flags().GetBool("debug"); !debug && cfg.LogLevel != "" {
		logging.SetLevel(cfg.LogLevel)
	}

	for _, warning := range result.Warnings {
		logger.Warn(warning)
	}
	if len(result.LoadedFrom) > 0 {
		logger.Debug("loaded configuration from", "files", result.LoadedFrom)
	}
	logger.Debug("configuration loaded",
		logging.FieldFlavor, cfg.Flavor,
		logging.FieldTheme, cfg.Theme,
		logging.FieldEncoding, cfg.Encoding,
		logging.FieldLineEnding, cfg.LineEnding,
	)

	return cfg, nil
}

// openWorkspace loads the configuration and builds the editor and the
// document manager. prompter may be nil.
func openWorkspace(cmd *cobra.Command, prompter loadsave.Prompter) (*workspace, error) {
	ctx := commandContext(cmd)
	logger := logging.Default()

	cfg, err := loadConfig(ctx, cmd)
	if err != nil {
		return nil, err
	}

	th, err := theme.Resolve(ctx, cfg.Theme, cfg.ThemeFile)
	if err != nil {
		return nil, errors.Join(ErrConfig, err)
	}

	snips := snippets.Default()
	if cfg.SnippetsFile != "" {
		snips, err = snippets.LoadFile(ctx, cfg.SnippetsFile)
		if err != nil {
			return nil, errors.Join(ErrConfig, err)
		}
	}

	var template string
	if cfg.HTMLTemplate != "" {
		content, _, err := fsutil.ReadFile(ctx, cfg.HTMLTemplate)
		if err != nil {
			return nil, errors.Join(ErrConfig, fmt.Errorf("html template: %w", err))
		}
		template = string(content)
	}

	sessionPath := cfg.SessionFile
	if sessionPath == "" {
		sessionPath = configloader.DefaultSessionFile()
	}
	session, err := loadsave.LoadSession(ctx, sessionPath)
	if err != nil {
		logger.Warn("ignoring unreadable session", logging.FieldPath, sessionPath, logging.FieldError, err)
		session = loadsave.NewSession(sessionPath)
	}

	out := cmd.OutOrStdout()
	color, _ := cmd.Flags().GetString("color")
	width, height := pretty.TerminalSize(out)

	notifier := surface.LogNotifier{Logger: logger}
	editor := surface.New(surface.Options{
		Flavor:         string(cfg.Flavor),
		Theme:          th,
		Notifier:       notifier,
		ViewportHeight: max(height-1, 1),
		Snippets:       snips,
		Paste: paste.Options{
			RemoveSpecialCharacters: config.BoolValue(cfg.RemoveSpecialCharacters, false),
			FenceCode:               config.BoolValue(cfg.Paste.FenceCode, false),
		},
	})
	editor.SetAutoSave(cfg.AutoSaveEnabled())

	options := []loadsave.ManagerOption{
		loadsave.WithSession(session),
		loadsave.WithLogger(logger),
		loadsave.WithNotifier(notifier),
	}
	if prompter != nil {
		options = append(options, loadsave.WithPrompter(prompter))
	}
	var format func(string) string
	if cfg.FormatOnSaveEnabled() {
		format = paste.ReplaceSmartChars
	}

	manager := loadsave.NewManager(loadsave.Options{
		Encoding:               cfg.Encoding,
		LineEnding:             cfg.LineEnding,
		OpenLastCursorPosition: config.BoolValue(cfg.OpenLastCursorPosition, false),
		Backup: fsutil.BackupConfig{
			Enabled: cfg.BackupsEnabled(),
			Mode:    fsutil.BackupMode(cfg.Backups.Mode),
		},
		Flavor:       string(cfg.Flavor),
		HTMLTemplate: template,
		FormatOnSave: format,
	}, options...)

	return &workspace{
		cfg:     cfg,
		editor:  editor,
		manager: manager,
		session: session,
		snips:   snips,
		styles:  pretty.NewStyles(!cfg.NoColor && pretty.IsColorEnabled(color, out)),
		logger:  logger,
		out:     out,
		width:   width,
	}, nil
}

// open loads a document given as "path" or "path|offset".
func (w *workspace) open(ctx context.Context, spec string) error {
	if err := w.manager.LoadFile(ctx, w.editor, spec, true); err != nil {
		return err
	}
	w.logger.Debug("opened document",
		logging.FieldPath, w.editor.FileName(),
		logging.FieldEncoding, w.editor.Encoding(),
		logging.FieldLines, w.editor.LineCount(),
	)

	if w.cfg.AutoSaveEnabled() {
		w.autoSave = w.manager.EnableAutoSave(ctx, w.editor, w.cfg.AutoSaveDelay())
	}
	return nil
}

// flushAutoSave saves pending edits now instead of after the quiet period.
func (w *workspace) flushAutoSave() {
	if w.autoSave != nil {
		w.autoSave.Flush()
	}
}

// close stops auto-save and persists the session. Failures are logged, not
// returned.
func (w *workspace) close(ctx context.Context) {
	if w.autoSave != nil {
		w.autoSave.Stop()
	}
	if err := w.session.Save(ctx); err != nil {
		w.logger.Warn("could not save session", logging.FieldPath, w.session.Path(), logging.FieldError, err)
	}
}
