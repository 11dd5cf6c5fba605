package loadsave_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdedit/pkg/fsutil"
	"github.com/yaklabco/mdedit/pkg/loadsave"
	"github.com/yaklabco/mdedit/pkg/surface"
)

type quietNotifier struct {
	mu   sync.Mutex
	msgs []string
}

func (n *quietNotifier) Alert(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

type fakePrompter struct {
	answer  loadsave.Answer
	path    string
	kind    loadsave.Kind
	asked   []string
	suggest []string
}

func (p *fakePrompter) ConfirmSave(name string) loadsave.Answer {
	p.asked = append(p.asked, name)
	return p.answer
}

func (p *fakePrompter) SavePath(suggested string) (string, loadsave.Kind, bool) {
	p.suggest = append(p.suggest, suggested)
	return p.path, p.kind, p.path != ""
}

func newEditor() *surface.Editor {
	return surface.New(surface.Options{Notifier: &quietNotifier{}})
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := writeFile(t, t.TempDir(), "doc.md", "# Title\r\n\r\nbody\r\n")

	m := loadsave.NewManager(loadsave.Options{OpenLastCursorPosition: true})
	ed := newEditor()

	require.NoError(t, m.LoadFile(ctx, ed, loadsave.FileSpec(path, 9), true))

	assert.Equal(t, "# Title\r\n\r\nbody\r\n", ed.Text())
	assert.Equal(t, path, ed.FileName())
	assert.Equal(t, "doc.md", ed.DisplayName())
	assert.Equal(t, "utf-8", ed.Encoding())
	assert.Equal(t, 9, ed.Caret())
	assert.False(t, ed.IsModified())
	assert.NotNil(t, ed.Tree())

	assert.Equal(t, path+"|9", m.Session().LastOpen())
	assert.Equal(t, []loadsave.RecentFile{{Path: path, Offset: 9}}, m.Session().Recent())
}

func TestLoadFile_ScrollsHomeWithoutCursorRestore(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "doc.md", strings.Repeat("line\n", 100))
	ed := newEditor()
	ed.SetText(strings.Repeat("x\n", 100))
	ed.SetScrollOffset(50)

	m := loadsave.NewManager(loadsave.Options{})
	require.NoError(t, m.LoadFile(context.Background(), ed, path+"|40", true))

	assert.Equal(t, 0, ed.ScrollOffset())
	assert.Equal(t, 0, ed.Caret())
}

func TestLoadFile_Errors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()
	m := loadsave.NewManager(loadsave.Options{})
	ed := newEditor()

	require.ErrorIs(t, m.LoadFile(ctx, ed, "  ", true), loadsave.ErrNoFileName)

	html := writeFile(t, dir, "page.HTML", "<p>x</p>")
	require.ErrorIs(t, m.LoadFile(ctx, ed, html, true), loadsave.ErrHTMLUnsupported)

	require.ErrorIs(t, m.LoadFile(ctx, ed, filepath.Join(dir, "missing.md"), true), fsutil.ErrNotFound)
	assert.Empty(t, ed.FileName())
}

func TestLoadFile_Windows1252(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "legacy.md")
	require.NoError(t, os.WriteFile(path, []byte("caf\xe9 \x93quoted\x94"), 0o644))

	m := loadsave.NewManager(loadsave.Options{Encoding: loadsave.EncodingAuto})
	ed := newEditor()
	require.NoError(t, m.LoadFile(context.Background(), ed, path, true))

	assert.Equal(t, "café “quoted”", ed.Text())
	assert.Equal(t, "windows-1252", ed.Encoding())
}

func TestSave_LineEndings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		policy string
		want   string
	}{
		{policy: "", want: "a\r\nb\r\n\r\nc"},
		{policy: loadsave.LineEndingCRLF, want: "a\r\nb\r\n\r\nc"},
		{policy: loadsave.LineEndingCR, want: "a\rb\r\rc"},
		{policy: "LF", want: "a\nb\n\nc"},
	}

	for _, tt := range tests {
		t.Run(tt.policy, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "out.md")
			m := loadsave.NewManager(loadsave.Options{LineEnding: tt.policy})
			ed := newEditor()
			ed.SetText("a\r\nb\n\rc")
			ed.SetFileName(path)

			require.NoError(t, m.SaveFile(context.Background(), ed))
			assert.Equal(t, tt.want, readFile(t, path))
			assert.False(t, ed.IsModified())
		})
	}
}

func TestSave_RoundTripLF(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := writeFile(t, t.TempDir(), "doc.md", "# Title\n\nfirst\n")

	m := loadsave.NewManager(loadsave.Options{LineEnding: loadsave.LineEndingLF})
	ed := newEditor()
	require.NoError(t, m.LoadFile(ctx, ed, path, true))

	require.NoError(t, ed.Insert(len(ed.Text()), "second  \n"))
	want := ed.Lines()
	require.NoError(t, m.SaveFile(ctx, ed))

	reloaded := newEditor()
	require.NoError(t, m.LoadFile(ctx, reloaded, path, true))
	assert.Equal(t, want, reloaded.Lines())
	assert.Equal(t, "# Title\n\nfirst\nsecond  \n", readFile(t, path))
}

func TestSave_FormatOnSave(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := writeFile(t, t.TempDir(), "doc.md", "plain\n")

	m := loadsave.NewManager(loadsave.Options{
		LineEnding:   loadsave.LineEndingLF,
		FormatOnSave: func(s string) string { return strings.ReplaceAll(s, "\u201c", "\"") },
	})
	ed := newEditor()
	require.NoError(t, m.LoadFile(ctx, ed, path, true))

	require.NoError(t, ed.Insert(0, "\u201cquoted "))
	ed.SetCaret(len(ed.Text()))
	require.NoError(t, m.SaveFile(ctx, ed))

	assert.Equal(t, "\"quoted plain\n", readFile(t, path))
	assert.Equal(t, "\"quoted plain\n", ed.Text())
	assert.Equal(t, len(ed.Text()), ed.Caret())
	assert.False(t, ed.IsModified())
}

func TestSave_DetectsExternalChange(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := writeFile(t, t.TempDir(), "doc.md", "original\n")

	m := loadsave.NewManager(loadsave.Options{LineEnding: loadsave.LineEndingLF})
	ed := newEditor()
	require.NoError(t, m.LoadFile(ctx, ed, path, true))

	require.NoError(t, os.WriteFile(path, []byte("someone else\n"), 0o644))
	require.NoError(t, ed.Insert(0, "mine "))

	require.ErrorIs(t, m.SaveFile(ctx, ed), fsutil.ErrChangedOnDisk)
	assert.True(t, ed.IsModified())
	assert.Equal(t, "someone else\n", readFile(t, path))
}

func TestSave_Backup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := writeFile(t, t.TempDir(), "doc.md", "v1\n")

	m := loadsave.NewManager(loadsave.Options{
		LineEnding: loadsave.LineEndingLF,
		Backup:     fsutil.BackupConfig{Enabled: true, Mode: fsutil.BackupModeSidecar},
	})
	ed := newEditor()
	require.NoError(t, m.LoadFile(ctx, ed, path, true))
	ed.SetText("v2\n")
	require.NoError(t, m.SaveFile(ctx, ed))

	assert.Equal(t, "v2\n", readFile(t, path))
	assert.Equal(t, "v1\n", readFile(t, path+fsutil.BackupSuffix))
}

func TestSaveFile_AsksForPath(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	dir := t.TempDir()

	t.Run("no prompter", func(t *testing.T) {
		t.Parallel()
		ed := newEditor()
		ed.SetText("x")
		require.ErrorIs(t, loadsave.NewManager(loadsave.Options{}).SaveFile(ctx, ed), loadsave.ErrNoFileName)
	})

	t.Run("canceled", func(t *testing.T) {
		t.Parallel()
		ed := newEditor()
		ed.SetText("# My Notes\n")
		p := &fakePrompter{}
		m := loadsave.NewManager(loadsave.Options{}, loadsave.WithPrompter(p))
		require.ErrorIs(t, m.SaveFile(ctx, ed), loadsave.ErrCanceled)
		assert.Equal(t, []string{"My Notes.md"}, p.suggest)
	})

	t.Run("markdown", func(t *testing.T) {
		t.Parallel()
		ed := newEditor()
		ed.SetText("# Notes\n\ntext")
		ed.SetCaret(5)
		path := filepath.Join(dir, "notes.md")
		m := loadsave.NewManager(loadsave.Options{LineEnding: loadsave.LineEndingLF},
			loadsave.WithPrompter(&fakePrompter{path: path}))

		require.NoError(t, m.SaveFile(ctx, ed))
		assert.Equal(t, path, ed.FileName())
		assert.Equal(t, 5, ed.Caret())
		assert.False(t, ed.IsModified())
		assert.Equal(t, "# Notes\n\ntext", readFile(t, path))
	})

	t.Run("html", func(t *testing.T) {
		t.Parallel()
		ed := newEditor()
		ed.SetText("---\ntitle: T\n---\n# Notes\n")
		path := filepath.Join(dir, "notes.html")
		m := loadsave.NewManager(loadsave.Options{HTMLTemplate: "<body>{{content}}</body>"},
			loadsave.WithPrompter(&fakePrompter{path: path, kind: loadsave.KindHTML}))

		require.NoError(t, m.SaveFile(ctx, ed))
		assert.Empty(t, ed.FileName())
		assert.True(t, ed.IsModified())
		assert.Equal(t, "<body><h1>Notes</h1>\n</body>", readFile(t, path))
	})
}

func TestSaveIfModified(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	clean := newEditor()
	assert.True(t, loadsave.NewManager(loadsave.Options{}).SaveIfModified(ctx, clean))

	tests := []struct {
		name   string
		answer loadsave.Answer
		want   bool
	}{
		{name: "no discards", answer: loadsave.AnswerNo, want: true},
		{name: "cancel keeps", answer: loadsave.AnswerCancel, want: false},
		{name: "yes saves", answer: loadsave.AnswerYes, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(t.TempDir(), "doc.md")
			ed := newEditor()
			ed.SetText("changed")
			ed.SetFileName(path)

			p := &fakePrompter{answer: tt.answer}
			m := loadsave.NewManager(loadsave.Options{}, loadsave.WithPrompter(p))
			assert.Equal(t, tt.want, m.SaveIfModified(ctx, ed))
			assert.Equal(t, []string{"doc.md"}, p.asked)
			assert.Equal(t, tt.answer == loadsave.AnswerYes, fsutil.Exists(path))
		})
	}

	modified := newEditor()
	modified.SetText("x")
	assert.False(t, loadsave.NewManager(loadsave.Options{}).SaveIfModified(ctx, modified))
}

func TestNewFile(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	ed := newEditor()
	ed.SetText("draft")
	ed.SetFileName("/tmp/draft.md")

	m := loadsave.NewManager(loadsave.Options{}, loadsave.WithPrompter(&fakePrompter{answer: loadsave.AnswerNo}))
	m.Session().SetLastOpen("/tmp/draft.md|3")

	require.True(t, m.NewFile(ctx, ed))
	assert.Empty(t, ed.Text())
	assert.Empty(t, ed.FileName())
	assert.False(t, ed.IsModified())
	assert.Empty(t, m.Session().LastOpen())
}

func TestInsertFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, t.TempDir(), "part.md", "inserted ")
	ed := newEditor()
	ed.SetText("before after")
	ed.SetCaret(7)

	m := loadsave.NewManager(loadsave.Options{})
	require.NoError(t, m.InsertFile(context.Background(), ed, path))
	assert.Equal(t, "before inserted after", ed.Text())

	require.ErrorIs(t, m.InsertFile(context.Background(), ed, ""), loadsave.ErrNoFileName)
}

func TestAutoSave(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := writeFile(t, t.TempDir(), "doc.md", "start\n")

	notes := &quietNotifier{}
	m := loadsave.NewManager(loadsave.Options{LineEnding: loadsave.LineEndingLF}, loadsave.WithNotifier(notes))
	ed := newEditor()
	require.NoError(t, m.LoadFile(ctx, ed, path, true))

	d := m.EnableAutoSave(ctx, ed, 20*time.Millisecond)
	defer d.Stop()

	require.NoError(t, ed.Insert(0, "edited "))
	d.Flush()
	assert.Equal(t, "start\n", readFile(t, path), "auto-save disabled")

	ed.SetAutoSave(true)
	require.NoError(t, ed.Insert(0, "now "))

	assert.Eventually(t, func() bool {
		return readFile(t, path) == "now edited start\n"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return !ed.IsModified() }, time.Second, 10*time.Millisecond)
	assert.Empty(t, notes.msgs)
}
