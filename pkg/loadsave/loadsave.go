// Package loadsave moves documents between the editing surface and disk:
// loading with encoding detection, saving with a line ending policy, HTML
// export, the remembered session and auto-save.
package loadsave

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/mdedit/pkg/autosave"
	"github.com/yaklabco/mdedit/pkg/fsutil"
	"github.com/yaklabco/mdedit/pkg/surface"
)

// Line ending policies.
const (
	LineEndingCRLF = "crlf"
	LineEndingCR   = "cr"
	LineEndingLF   = "lf"
)

// Sentinel errors.
var (
	// ErrNoFileName is returned when a document has no file to load or save.
	ErrNoFileName = errors.New("no file name")

	// ErrHTMLUnsupported is returned when loading an HTML file.
	ErrHTMLUnsupported = errors.New("loading HTML files is not supported")

	// ErrCanceled is returned when the user cancels a prompt.
	ErrCanceled = errors.New("canceled")
)

// Kind is the format a document is saved in.
type Kind int

// Save formats.
const (
	KindMarkdown Kind = iota
	KindHTML
)

// KindForPath picks KindHTML for .html and .htm paths.
func KindForPath(path string) Kind {
	if isHTMLFile(path) {
		return KindHTML
	}
	return KindMarkdown
}

// Answer is a reply to "Save your changes?".
type Answer int

// Answers.
const (
	AnswerCancel Answer = iota
	AnswerYes
	AnswerNo
)

// Prompter asks the user questions on behalf of the document commands.
type Prompter interface {
	// ConfirmSave asks whether to save changes to the named document.
	ConfirmSave(name string) Answer

	// SavePath asks where to save. suggested may be empty. ok is false
	// when the user cancels.
	SavePath(suggested string) (path string, kind Kind, ok bool)
}

// Document is the editing surface as seen by load and save.
type Document interface {
	Text() string
	SetText(text string)
	Snapshot() (lines []string, caret int, version uint64)
	MarkSaved(version uint64)
	Caret() int
	SetCaret(offset int)
	Insert(offset int, text string) error
	ScrollToHome()
	IsModified() bool
	SetModified(modified bool)
	FileName() string
	SetFileName(name string)
	DisplayName() string
	SetEncoding(name string)
	ShouldAutoSave() bool
	SetAutoSaver(trigger surface.AutoSaveTrigger)
}

// Options controls loading and saving.
type Options struct {
	// Encoding is the label used to read files, or "auto".
	Encoding string

	// LineEnding is "crlf", "cr" or "lf". Empty selects crlf.
	LineEnding string

	// OpenLastCursorPosition restores the caret from "path|offset" specs.
	OpenLastCursorPosition bool

	// Backup copies the previous file aside on every save.
	Backup fsutil.BackupConfig

	// Flavor is the Markdown flavor used for HTML export.
	Flavor string

	// HTMLTemplate wraps exported HTML; see ContentPlaceholder.
	HTMLTemplate string

	// FormatOnSave, when set, rewrites the editor text before every save.
	// The rewritten text is what gets written.
	FormatOnSave func(string) string
}

// Manager runs the document commands.
type Manager struct {
	opts     Options
	prompter Prompter
	session  *Session
	notifier surface.Notifier
	logger   *log.Logger

	mu sync.Mutex
	// disk holds the on-disk state of files as last read or written.
	disk map[string]*fsutil.FileInfo
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithPrompter sets the prompter. Without one, unsaved changes are never
// discarded and save-as is impossible.
func WithPrompter(p Prompter) ManagerOption {
	return func(m *Manager) { m.prompter = p }
}

// WithSession records opened and saved files in s.
func WithSession(s *Session) ManagerOption {
	return func(m *Manager) { m.session = s }
}

// WithNotifier sets where auto-save failures are reported.
func WithNotifier(n surface.Notifier) ManagerOption {
	return func(m *Manager) { m.notifier = n }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) ManagerOption {
	return func(m *Manager) { m.logger = l }
}

// NewManager creates a Manager.
func NewManager(opts Options, options ...ManagerOption) *Manager {
	m := &Manager{
		opts: opts,
		disk: make(map[string]*fsutil.FileInfo),
	}
	for _, o := range options {
		o(m)
	}
	if m.logger == nil {
		m.logger = log.Default()
	}
	if m.session == nil {
		m.session = NewSession("")
	}
	if m.notifier == nil {
		m.notifier = surface.LogNotifier{Logger: m.logger}
	}
	return m
}

// Session returns the session the manager records into.
func (m *Manager) Session() *Session {
	return m.session
}

// LineEnding returns the byte sequence for a line ending policy.
func LineEnding(policy string) string {
	switch {
	case strings.EqualFold(policy, LineEndingCR):
		return "\r"
	case strings.EqualFold(policy, LineEndingLF):
		return "\n"
	default:
		return "\r\n"
	}
}

// IsValidLineEnding reports whether policy is a known line ending policy.
func IsValidLineEnding(policy string) bool {
	switch strings.ToLower(policy) {
	case "", LineEndingCRLF, LineEndingCR, LineEndingLF:
		return true
	default:
		return false
	}
}

func isHTMLFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".html" || ext == ".htm"
}

// NewFile clears the document after offering to save changes. It reports
// false when the user cancels.
func (m *Manager) NewFile(ctx context.Context, doc Document) bool {
	if !m.SaveIfModified(ctx, doc) {
		return false
	}
	doc.SetText("")
	doc.SetModified(false)
	doc.SetFileName("")
	m.session.SetLastOpen("")
	return true
}

// OpenFile loads spec after offering to save changes.
func (m *Manager) OpenFile(ctx context.Context, doc Document, spec string) error {
	if !m.SaveIfModified(ctx, doc) {
		return ErrCanceled
	}
	return m.LoadFile(ctx, doc, spec, true)
}

// LoadFile replaces the document with the file named by spec, "path" or
// "path|offset". With updateCursor the caret moves to offset when
// OpenLastCursorPosition is set, and the view scrolls home otherwise.
func (m *Manager) LoadFile(ctx context.Context, doc Document, spec string, updateCursor bool) error {
	if strings.TrimSpace(spec) == "" {
		return ErrNoFileName
	}

	path, offset := ParseFileSpec(spec)
	if isHTMLFile(path) {
		return fmt.Errorf("%w: %s", ErrHTMLUnsupported, path)
	}

	content, info, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	text, encoding, err := Decode(content, m.opts.Encoding)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}

	doc.SetText(text)
	doc.SetEncoding(encoding)

	if updateCursor {
		if m.opts.OpenLastCursorPosition {
			doc.SetCaret(offset)
		} else {
			doc.ScrollToHome()
		}
	}

	m.session.SetLastOpen(spec)
	m.session.AddRecent(path, offset)
	m.remember(path, info)

	doc.SetModified(false)
	doc.SetFileName(path)

	m.logger.Debug("loaded document", "path", path, "encoding", encoding, "bytes", len(content))
	return nil
}

// SaveFile saves to the document's file, or asks for one.
func (m *Manager) SaveFile(ctx context.Context, doc Document) error {
	if strings.TrimSpace(doc.FileName()) == "" {
		return m.SaveFileAs(ctx, doc)
	}
	return m.save(ctx, doc)
}

// SaveFileAs asks for a destination and saves there.
func (m *Manager) SaveFileAs(ctx context.Context, doc Document) error {
	if m.prompter == nil {
		return ErrNoFileName
	}
	path, kind, ok := m.prompter.SavePath(SuggestFilenameFromTitle(doc.Text()))
	if !ok {
		return ErrCanceled
	}
	return m.SaveAs(ctx, doc, path, kind)
}

// SaveAs saves the document to path. Markdown saves adopt path as the
// document's file and reload it; HTML exports leave the document alone.
func (m *Manager) SaveAs(ctx context.Context, doc Document, path string, kind Kind) error {
	if strings.TrimSpace(path) == "" {
		return ErrNoFileName
	}
	if kind == KindHTML {
		return SaveAsHTML(ctx, doc.Text(), path, m.opts)
	}

	previous := doc.FileName()
	offset := doc.Caret()

	doc.SetFileName(path)
	if err := m.save(ctx, doc); err != nil {
		doc.SetFileName(previous)
		return err
	}
	if err := m.LoadFile(ctx, doc, path, false); err != nil {
		doc.SetFileName(previous)
		return err
	}

	doc.SetCaret(min(offset, len(doc.Text())))
	return nil
}

// SaveIfModified offers to save changes. It reports whether the caller may
// go on to discard the document.
func (m *Manager) SaveIfModified(ctx context.Context, doc Document) bool {
	if !doc.IsModified() {
		return true
	}
	if m.prompter == nil {
		return false
	}

	switch m.prompter.ConfirmSave(doc.DisplayName()) {
	case AnswerYes:
		if err := m.SaveFile(ctx, doc); err != nil {
			m.notifier.Alert(err.Error())
			return false
		}
		return true
	case AnswerNo:
		return true
	default:
		return false
	}
}

// InsertFile inserts the decoded content of path at the caret.
func (m *Manager) InsertFile(ctx context.Context, doc Document, path string) error {
	if strings.TrimSpace(path) == "" {
		return ErrNoFileName
	}

	content, _, err := fsutil.ReadFile(ctx, path)
	if err != nil {
		return fmt.Errorf("inserting %s: %w", path, err)
	}
	text, _, err := Decode(content, m.opts.Encoding)
	if err != nil {
		return fmt.Errorf("inserting %s: %w", path, err)
	}
	return doc.Insert(doc.Caret(), text)
}

// Render joins lines with the line ending policy, trimming stray line
// ending characters from each line.
func Render(lines []string, policy string) string {
	trimmed := make([]string, len(lines))
	for i, line := range lines {
		trimmed[i] = strings.Trim(line, "\r\n")
	}
	return strings.Join(trimmed, LineEnding(policy))
}

func (m *Manager) save(ctx context.Context, doc Document) error {
	path := doc.FileName()
	if strings.TrimSpace(path) == "" {
		return ErrNoFileName
	}

	if m.opts.FormatOnSave != nil {
		text := doc.Text()
		if formatted := m.opts.FormatOnSave(text); formatted != text {
			caret := doc.Caret()
			doc.SetText(formatted)
			doc.SetCaret(min(caret, len(formatted)))
		}
	}

	lines, caret, version := doc.Snapshot()
	content := []byte(Render(lines, m.opts.LineEnding))

	info, err := fsutil.WriteFile(ctx, path, content, fsutil.WriteOptions{
		Backup: m.opts.Backup,
		Expect: m.expected(path),
	})
	if err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}

	m.remember(path, info)
	m.session.AddRecent(path, caret)
	m.session.SetLastOpen(FileSpec(path, caret))
	doc.MarkSaved(version)

	m.logger.Debug("saved document", "path", path, "bytes", len(content))
	return nil
}

func (m *Manager) remember(path string, info *fsutil.FileInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disk[path] = info
}

func (m *Manager) expected(path string) *fsutil.FileInfo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.disk[path]
}

// ExecuteAutoSave saves the document when auto-save is enabled and the
// document is a modified file. Failures go to the notifier.
func (m *Manager) ExecuteAutoSave(ctx context.Context, doc Document) {
	if !doc.ShouldAutoSave() {
		return
	}
	if err := m.save(ctx, doc); err != nil {
		m.notifier.Alert(err.Error())
	}
}

// EnableAutoSave wires a debounced auto-save to the document. The caller
// stops the returned debouncer when the document closes.
func (m *Manager) EnableAutoSave(ctx context.Context, doc Document, delay time.Duration) *autosave.Debouncer {
	d := autosave.New(delay, func() { m.ExecuteAutoSave(ctx, doc) })
	doc.SetAutoSaver(d)
	return d
}
