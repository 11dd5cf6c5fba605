// Package surface is the Markdown editing surface: a text buffer and a
// viewport wired to the parse pipeline, the colorizer and the background
// band renderer, plus the editing commands built on top of them.
//
// Every text change reparses the whole document synchronously, publishes the
// tree through a TreeHandle and hands it to both render consumers before a
// redraw is requested.
package surface

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/yaklabco/mdedit/pkg/background"
	"github.com/yaklabco/mdedit/pkg/highlight"
	"github.com/yaklabco/mdedit/pkg/locate"
	"github.com/yaklabco/mdedit/pkg/mdast"
	"github.com/yaklabco/mdedit/pkg/parser/goldmark"
	"github.com/yaklabco/mdedit/pkg/paste"
	"github.com/yaklabco/mdedit/pkg/snippets"
	"github.com/yaklabco/mdedit/pkg/theme"
)

// Defaults for a new editor.
const (
	DefaultViewportHeight = 24
	DefaultTabWidth       = 2
	DefaultEncoding       = "utf-8"
	NewDocumentName       = "New Document"
	HelpDocumentName      = "Help"
)

// ErrOutOfRange is returned for edits outside the text.
var ErrOutOfRange = errors.New("offset out of range")

// AutoSaveTrigger is told about every text change.
type AutoSaveTrigger interface {
	Trigger()
}

// Options configures an Editor. The zero value is usable.
type Options struct {
	// Flavor selects the Markdown flavor when Provider is nil.
	Flavor string

	// Provider parses the text. Nil uses goldmark.
	Provider TreeProvider

	// Theme colors the document. Nil uses the dark theme.
	Theme *theme.Theme

	// Notifier receives non-fatal alerts. Nil logs them.
	Notifier Notifier

	// ViewportHeight and LineHeight size the viewport.
	ViewportHeight int
	LineHeight     int

	// Snippets expands words on Tab. Nil uses the built-in snippets.
	Snippets *snippets.Manager

	// Paste selects the smart paste rewrites.
	Paste paste.Options

	// TabWidth is the number of spaces Tab inserts when no snippet matches.
	TabWidth int

	// Clock supplies the time for snippet placeholders. Nil uses time.Now.
	Clock func() time.Time
}

// editorState is the document saved while help is shown.
type editorState struct {
	text        string
	fileName    string
	displayName string
	encoding    string
	modified    bool
	caret       int
}

// Editor composes the buffer, viewport, parse pipeline and render consumers.
// All methods are safe for concurrent use; they run one at a time.
type Editor struct {
	mu sync.Mutex

	buf        *Buffer
	view       *Viewport
	pipeline   *Pipeline
	colorizer  *highlight.Colorizer
	background *background.Renderer
	theme      *theme.Theme
	notifier   Notifier

	snippets *snippets.Manager
	paste    paste.Options
	tabWidth int
	clock    func() time.Time

	autoSave        AutoSaveTrigger
	autoSaveEnabled bool

	fileName    string
	displayName string
	encoding    string
	help        *editorState

	listeners []func()
}

// New creates an empty editor.
func New(opts Options) *Editor {
	th := opts.Theme
	if th == nil {
		th = theme.Dark()
	}
	provider := opts.Provider
	if provider == nil {
		provider = goldmark.New(opts.Flavor)
	}
	notifier := opts.Notifier
	if notifier == nil {
		notifier = LogNotifier{}
	}
	height := opts.ViewportHeight
	if height <= 0 {
		height = DefaultViewportHeight
	}
	tabWidth := opts.TabWidth
	if tabWidth <= 0 {
		tabWidth = DefaultTabWidth
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	snips := opts.Snippets
	if snips == nil {
		snips = snippets.Default()
	}

	e := &Editor{
		buf:        NewBuffer(""),
		colorizer:  highlight.New(th),
		background: background.New(th),
		theme:      th,
		notifier:   notifier,
		snippets:   snips,
		paste:      opts.Paste,
		tabWidth:   tabWidth,
		clock:      clock,
		encoding:   DefaultEncoding,
	}
	e.view = NewViewport(e.buf, height, opts.LineHeight)
	e.pipeline = NewPipeline(provider, &TreeHandle{}, PipelineOptions{
		Consumers: []TreeConsumer{e.colorizer, e.background},
		Redraw:    e.view,
		Notifier:  notifier,
	})
	e.buf.Subscribe(e.onChange)

	return e
}

// onChange runs with e.mu held after every buffer change.
func (e *Editor) onChange(Change) {
	//nolint:errcheck // Failures are reported through the notifier.
	e.pipeline.Regenerate(context.Background(), e.buf.Bytes())

	if e.autoSave != nil {
		e.autoSave.Trigger()
	}
}

// edit runs fn under the lock and notifies listeners if the text changed.
func (e *Editor) edit(fn func() error) error {
	e.mu.Lock()
	before := e.buf.Version()
	err := fn()
	changed := e.buf.Version() != before
	listeners := append([]func(){}, e.listeners...)
	e.mu.Unlock()

	if changed {
		for _, l := range listeners {
			l()
		}
	}
	return err
}

// OnTextChanged registers fn to run after every text change, outside the
// editor lock.
func (e *Editor) OnTextChanged(fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners = append(e.listeners, fn)
}

// Text returns the document text.
func (e *Editor) Text() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.Text()
}

// SetText replaces the document text.
func (e *Editor) SetText(text string) {
	//nolint:errcheck // SetText cannot fail.
	e.edit(func() error {
		e.buf.SetText(text)
		return nil
	})
}

// Insert inserts text at offset.
func (e *Editor) Insert(offset int, text string) error {
	return e.edit(func() error { return e.buf.Insert(offset, text) })
}

// Replace replaces length bytes at offset with text.
func (e *Editor) Replace(offset, length int, text string) error {
	return e.edit(func() error { return e.buf.Replace(offset, length, text) })
}

// Delete removes length bytes at offset.
func (e *Editor) Delete(offset, length int) error {
	return e.edit(func() error { return e.buf.Delete(offset, length) })
}

// ReplaceSelection replaces the selection, or inserts at the caret.
func (e *Editor) ReplaceSelection(text string) {
	//nolint:errcheck // The selection always lies inside the text.
	e.edit(func() error {
		start, length := e.buf.Selection()
		return e.buf.Replace(start, length, text)
	})
}

// Lines returns the document lines without line endings.
func (e *Editor) Lines() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.Lines()
}

// LineCount returns the number of document lines.
func (e *Editor) LineCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.LineCount()
}

// Caret returns the caret offset.
func (e *Editor) Caret() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.Caret()
}

// CaretPosition returns the caret's 1-based line and byte column.
func (e *Editor) CaretPosition() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	caret := e.buf.Caret()
	line := e.buf.LineOfOffset(caret)
	return line, caret - e.buf.LineStart(line) + 1
}

// LineStart returns the offset of a 1-based line, clamped to the document.
func (e *Editor) LineStart(line int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.LineStart(line)
}

// SetCaret moves the caret and scrolls its line into view.
func (e *Editor) SetCaret(offset int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buf.SetCaret(offset)
	e.scrollIntoView(e.buf.LineOfOffset(e.buf.Caret()))
}

// Select selects length bytes at start.
func (e *Editor) Select(start, length int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buf.Select(start, length)
}

// Selection returns the selection start and length.
func (e *Editor) Selection() (int, int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.Selection()
}

// SelectedText returns the selected text.
func (e *Editor) SelectedText() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.SelectedText()
}

// IsModified reports whether the text changed since it was loaded or saved.
func (e *Editor) IsModified() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.IsModified()
}

// SetModified sets the modified flag.
func (e *Editor) SetModified(modified bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buf.SetModified(modified)
}

// Version increases on every text change.
func (e *Editor) Version() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.Version()
}

// Snapshot returns the lines, caret and version as of one instant.
func (e *Editor) Snapshot() ([]string, int, uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buf.Lines(), e.buf.Caret(), e.buf.Version()
}

// MarkSaved clears the modified flag unless the text changed after version.
func (e *Editor) MarkSaved(version uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.buf.Version() == version {
		e.buf.SetModified(false)
	}
}

// FileName returns the document's file, or "" for a new document.
func (e *Editor) FileName() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fileName
}

// SetFileName sets the document's file.
func (e *Editor) SetFileName(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.fileName = name
}

// DisplayName returns the explicit display name, the file's base name, or
// NewDocumentName.
func (e *Editor) DisplayName() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	switch {
	case e.displayName != "":
		return e.displayName
	case e.fileName == "":
		return NewDocumentName
	default:
		return filepath.Base(e.fileName)
	}
}

// SetDisplayName overrides the display name. "" restores the default.
func (e *Editor) SetDisplayName(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.displayName = name
}

// Encoding returns the name of the encoding the document was loaded with.
func (e *Editor) Encoding() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.encoding
}

// SetEncoding records the document encoding.
func (e *Editor) SetEncoding(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.encoding = name
}

// SetAutoSaver registers the trigger told about every text change.
func (e *Editor) SetAutoSaver(trigger AutoSaveTrigger) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.autoSave = trigger
}

// SetAutoSave enables or disables auto-save.
func (e *Editor) SetAutoSave(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.autoSaveEnabled = enabled
}

// ShouldAutoSave reports whether auto-save is enabled and the document is a
// modified file.
func (e *Editor) ShouldAutoSave() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.autoSaveEnabled && e.buf.IsModified() && e.fileName != ""
}

// SetPasteOptions selects the smart paste rewrites.
func (e *Editor) SetPasteOptions(opts paste.Options) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paste = opts
}

// SetSnippets replaces the snippet set.
func (e *Editor) SetSnippets(m *snippets.Manager) {
	if m == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.snippets = m
}

// Tree returns the current tree, or nil before the first successful parse.
func (e *Editor) Tree() *mdast.Document {
	return e.pipeline.Handle().Current()
}

// Pipeline returns the parse pipeline.
func (e *Editor) Pipeline() *Pipeline {
	return e.pipeline
}

// Theme returns the current theme.
func (e *Editor) Theme() *theme.Theme {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.theme
}

// SetTheme swaps the theme of both render consumers.
func (e *Editor) SetTheme(th *theme.Theme) {
	if th == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.theme = th
	e.pipeline.SetTheme(th)
}

// Resize changes the viewport height.
func (e *Editor) Resize(height int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.SetHeight(height)
}

// ScrollOffset returns the viewport scroll offset.
func (e *Editor) ScrollOffset() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view.ScrollOffset()
}

// SetScrollOffset scrolls the viewport.
func (e *Editor) SetScrollOffset(y int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.SetScrollOffset(y)
}

// ScrollToLine scrolls a 1-based line to the top of the viewport.
func (e *Editor) ScrollToLine(line int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.ScrollToLine(line)
}

// ScrollToHome scrolls to the top of the document.
func (e *Editor) ScrollToHome() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.view.ScrollToHome()
}

// ScrollableHeight returns the largest scroll offset.
func (e *Editor) ScrollableHeight() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.view.ScrollableHeight()
}

// Redraws returns the number of full repaints requested so far.
func (e *Editor) Redraws() int64 {
	return e.view.Redraws()
}

func (e *Editor) scrollIntoView(line int) {
	first, last := e.view.VisibleLines()
	if line < first || line > last {
		e.view.ScrollToLine(line)
	}
}

// VisibleBlockNumber returns the block at the top of the viewport.
func (e *Editor) VisibleBlockNumber() locate.BlockRef {
	e.mu.Lock()
	defer e.mu.Unlock()
	return locate.Locate(e.view.ScrollOffset(), e.view.ScrollableHeight(), e.view, e.Tree())
}

// ToggleHelp shows help in place of the document, or restores the document
// when help is already shown.
func (e *Editor) ToggleHelp(help string) {
	e.mu.Lock()
	saved := e.help
	e.mu.Unlock()

	if saved != nil {
		e.CloseHelp()
		return
	}

	e.mu.Lock()
	e.help = &editorState{
		text:        e.buf.Text(),
		fileName:    e.fileName,
		displayName: e.displayName,
		encoding:    e.encoding,
		modified:    e.buf.IsModified(),
		caret:       e.buf.Caret(),
	}
	e.fileName = ""
	e.mu.Unlock()

	e.SetText(help)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.buf.SetModified(false)
	e.displayName = HelpDocumentName
}

// CloseHelp restores the document hidden by ToggleHelp.
func (e *Editor) CloseHelp() {
	e.mu.Lock()
	saved := e.help
	e.help = nil
	e.mu.Unlock()

	if saved == nil {
		return
	}

	e.SetText(saved.text)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.fileName = saved.fileName
	e.displayName = saved.displayName
	e.encoding = saved.encoding
	e.buf.SetModified(saved.modified)
	e.buf.SetCaret(saved.caret)
}

// ShowingHelp reports whether help replaces the document.
func (e *Editor) ShowingHelp() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.help != nil
}
