package cli_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdedit/internal/cli"
	"github.com/yaklabco/mdedit/pkg/loadsave"
)

const testDocument = "# Title\n\npara one\nline two\n\npara three\n\nlast\n"

// testEnv is a temp directory with a config that saves with LF line endings
// and a private session file.
type testEnv struct {
	dir     string
	config  string
	session string
}

func newTestEnv(t *testing.T, config string) *testEnv {
	t.Helper()

	dir := t.TempDir()
	env := &testEnv{
		dir:     dir,
		config:  filepath.Join(dir, "config.yml"),
		session: filepath.Join(dir, "session.yaml"),
	}
	require.NoError(t, os.WriteFile(env.config, []byte("line_ending: lf\ntheme: plain\n"+config), 0o644))
	return env
}

func (e *testEnv) write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(e.dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func (e *testEnv) read(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(content)
}

// run executes mdedit with args and stdin and returns stdout.
func (e *testEnv) run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cmd := cli.NewRootCommand(cli.BuildInfo{Version: "test", Commit: "test", Date: "test"})

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append(args,
		"--config", e.config,
		"--session", e.session,
		"--color", "never",
	))

	err := cmd.Execute()
	return stdout.String(), err
}

func TestIntegration_View(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	doc := env.write(t, "doc.md", testDocument)

	t.Run("viewport lines", func(t *testing.T) {
		t.Parallel()

		out, err := env.run(t, "", "view", doc, "--height", "3", "--no-status")
		require.NoError(t, err)
		assert.Equal(t, "# Title\n\npara one\n", out)
	})

	t.Run("line numbers", func(t *testing.T) {
		t.Parallel()

		out, err := env.run(t, "", "view", doc, "--height", "2", "-n", "--no-status")
		require.NoError(t, err)
		assert.Equal(t, "1 # Title\n2 \n", out)
	})

	t.Run("scrolled", func(t *testing.T) {
		t.Parallel()

		out, err := env.run(t, "", "view", doc, "--height", "2", "--line", "6", "--no-status")
		require.NoError(t, err)
		assert.Equal(t, "para three\n\n", out)
	})

	t.Run("status bar", func(t *testing.T) {
		t.Parallel()

		out, err := env.run(t, "", "view", doc, "--height", "2")
		require.NoError(t, err)
		assert.Contains(t, out, "doc.md")
		assert.Contains(t, out, "Ln 1, Col 1")
		assert.Contains(t, out, "9 lines")
		assert.Contains(t, out, "block 1")
	})
}

func TestIntegration_Locate(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	doc := env.write(t, "doc.md", testDocument)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "top", args: []string{"--line", "1"}, want: "block 1\n"},
		{name: "inside second block", args: []string{"--line", "4"}, want: "block 2+1\n"},
		{name: "porcelain", args: []string{"--line", "4", "--porcelain"}, want: "2 1\n"},
		{name: "scroll offset", args: []string{"--scroll", "5"}, want: "block 3\n"},
		{name: "end of document", args: []string{"--scroll", "100"}, want: "block end\n"},
		{name: "end porcelain", args: []string{"--scroll", "100", "--porcelain"}, want: "end\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			args := append([]string{"locate", doc, "--height", "2"}, tt.args...)
			out, err := env.run(t, "", args...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestIntegration_TreeAndOutline(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	doc := env.write(t, "doc.md", "# A\n\ntext\n\n## B\n")

	out, err := env.run(t, "", "tree", doc, "--numbers")
	require.NoError(t, err)
	assert.Contains(t, out, "Document")
	assert.Contains(t, out, "#1 Heading h1")
	assert.Contains(t, out, "#2 Paragraph")
	assert.Contains(t, out, "#3 Heading h2")

	out, err = env.run(t, "", "outline", doc)
	require.NoError(t, err)
	assert.Contains(t, out, "# A")
	assert.Contains(t, out, "## B")
	assert.Contains(t, out, "LINE")
}

func TestIntegration_Edit(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		args []string
		want string
	}{
		{
			name: "bold a match",
			doc:  "hello world\n",
			args: []string{"--find", "world", "--bold"},
			want: "hello **world**\n",
		},
		{
			name: "italic the word at the caret",
			doc:  "hello world\n",
			args: []string{"--at", "2", "--italic"},
			want: "*hello* world\n",
		},
		{
			name: "code a selection",
			doc:  "run go test now\n",
			args: []string{"--at", "4", "--select", "7", "--code"},
			want: "run `go test` now\n",
		},
		{
			name: "header on a line",
			doc:  "intro\n\nTitle\n",
			args: []string{"--line", "3", "--header", "2"},
			want: "intro\n\n## Title\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, "")
			doc := env.write(t, "doc.md", tt.doc)

			out, err := env.run(t, "", append([]string{"edit", doc}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
			assert.Equal(t, tt.doc, env.read(t, doc), "file must not change without --write")
		})
	}
}

func TestIntegration_EditWrite(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	doc := env.write(t, "doc.md", "hello world\n")

	out, err := env.run(t, "", "edit", doc, "--find", "hello", "--bold", "-w")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, "**hello** world\n", env.read(t, doc))
}

func TestIntegration_EditAutoSave(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "auto_save: true\nauto_save_delay_ms: 60000\n")
	doc := env.write(t, "doc.md", "hello world\n")

	out, err := env.run(t, "", "edit", doc, "--find", "world", "--italic")
	require.NoError(t, err)
	assert.Equal(t, "hello *world*\n", out)
	assert.Equal(t, "hello *world*\n", env.read(t, doc))

	_, err = env.run(t, "", "edit", doc, "--find", "hello", "--code", "--diff")
	require.NoError(t, err)
	assert.Equal(t, "`hello` *world*\n", env.read(t, doc))
}

func TestIntegration_FormatOnSave(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "format_on_save: true\n")
	doc := env.write(t, "doc.md", "\u201chello\u201d \u2014 world\n")

	_, err := env.run(t, "", "edit", doc, "--find", "world", "--bold", "-w")
	require.NoError(t, err)
	assert.Equal(t, "\"hello\" - **world**\n", env.read(t, doc))

	plain := newTestEnv(t, "")
	other := plain.write(t, "doc.md", "\u201chello\u201d\n")
	_, err = plain.run(t, "", "edit", other, "--find", "hello", "--italic", "-w")
	require.NoError(t, err)
	assert.Equal(t, "\u201c*hello*\u201d\n", plain.read(t, other))
}

func TestIntegration_EditInsertFile(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	doc := env.write(t, "doc.md", "body\n")
	header := env.write(t, "header.md", "# Header\n\n")

	out, err := env.run(t, "", "edit", doc, "--at", "0", "--insert-file", header)
	require.NoError(t, err)
	assert.Equal(t, "# Header\n\nbody\n", out)
}

func TestIntegration_EditErrors(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	doc := env.write(t, "doc.md", "text\n")

	_, err := env.run(t, "", "edit", doc)
	require.ErrorIs(t, err, cli.ErrInvalidUsage)
	assert.Equal(t, cli.ExitInvalidUsage, cli.ExitCodeFromError(err))

	_, err = env.run(t, "", "edit", doc, "--header", "7")
	require.ErrorIs(t, err, cli.ErrInvalidUsage)

	_, err = env.run(t, "", "edit", doc, "--find", "(")
	require.ErrorIs(t, err, cli.ErrInvalidUsage)

	_, err = env.run(t, "", "edit", filepath.Join(env.dir, "missing.md"), "--bold")
	require.Error(t, err)
	assert.Equal(t, cli.ExitNoInput, cli.ExitCodeFromError(err))

	page := env.write(t, "page.html", "<p>hi</p>")
	_, err = env.run(t, "", "edit", page, "--bold")
	require.ErrorIs(t, err, loadsave.ErrHTMLUnsupported)
	assert.Equal(t, cli.ExitNoInput, cli.ExitCodeFromError(err))
}

func TestIntegration_EditAsk(t *testing.T) {
	t.Parallel()

	t.Run("yes saves", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, "")
		doc := env.write(t, "doc.md", "hello\n")

		_, err := env.run(t, "y\n", "edit", doc, "--at", "0", "--bold", "--ask")
		require.NoError(t, err)
		assert.Equal(t, "**hello**\n", env.read(t, doc))
	})

	t.Run("no discards", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, "")
		doc := env.write(t, "doc.md", "hello\n")

		_, err := env.run(t, "n\n", "edit", doc, "--at", "0", "--bold", "--ask")
		require.NoError(t, err)
		assert.Equal(t, "hello\n", env.read(t, doc))
	})

	t.Run("cancel", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, "")
		doc := env.write(t, "doc.md", "hello\n")

		_, err := env.run(t, "c\n", "edit", doc, "--at", "0", "--bold", "--ask")
		require.ErrorIs(t, err, loadsave.ErrCanceled)
		assert.Equal(t, cli.ExitCanceled, cli.ExitCodeFromError(err))
		assert.Equal(t, "hello\n", env.read(t, doc))
	})
}

func TestIntegration_Convert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
		args []string
		want string
	}{
		{
			name: "upper case selection",
			doc:  "abc def\n",
			args: []string{"--case", "upper", "--at", "4", "--select", "3"},
			want: "abc DEF\n",
		},
		{
			name: "title case document",
			doc:  "a tale of two cities\n",
			args: []string{"--case", "title"},
			want: "A Tale Of Two Cities\n",
		},
		{
			name: "smart characters",
			doc:  "“quoted” — done…\n",
			args: []string{"--smart-chars"},
			want: "\"quoted\" - done...\n",
		},
		{
			name: "replace all",
			doc:  "colour and colour\n",
			args: []string{"--find", "colou?r", "--replace", "color", "--all"},
			want: "color and color\n",
		},
		{
			name: "replace next with submatch",
			doc:  "a1 a2\n",
			args: []string{"--at", "0", "--find", `a(\d)`, "--replace", "b$1"},
			want: "b1 a2\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, "")
			doc := env.write(t, "doc.md", tt.doc)

			out, err := env.run(t, "", append([]string{"convert", doc}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestIntegration_ConvertDiff(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	doc := env.write(t, "doc.md", "colour\n")

	out, err := env.run(t, "", "convert", doc, "--find", "colour", "--replace", "color", "--all", "--diff")
	require.NoError(t, err)
	assert.Contains(t, out, "-colour")
	assert.Contains(t, out, "+color")
	assert.Equal(t, "colour\n", env.read(t, doc))
}

func TestIntegration_ConvertLineEndings(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	doc := env.write(t, "doc.md", "a\nb\n")

	_, err := env.run(t, "", "convert", doc, "--line-ending", "crlf", "-w")
	require.NoError(t, err)
	assert.Equal(t, "a\r\nb\r\n", env.read(t, doc))

	_, err = env.run(t, "", "convert", doc, "-w")
	require.NoError(t, err)
	assert.Equal(t, "a\nb\n", env.read(t, doc))
}

func TestIntegration_ConvertBackup(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "backups:\n  enabled: true\n")
	doc := env.write(t, "doc.md", "old\n")

	_, err := env.run(t, "", "convert", doc, "--case", "upper", "-w")
	require.NoError(t, err)
	assert.Equal(t, "OLD\n", env.read(t, doc))
	assert.Equal(t, "old\n", env.read(t, doc+".bak"))

	other := env.write(t, "other.md", "old\n")
	_, err = env.run(t, "", "convert", other, "--case", "upper", "-w", "--no-backups")
	require.NoError(t, err)
	assert.NoFileExists(t, other+".bak")
}

func TestIntegration_ConvertInvalidCase(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	doc := env.write(t, "doc.md", "text\n")

	_, err := env.run(t, "", "convert", doc, "--case", "sideways")
	require.ErrorIs(t, err, cli.ErrInvalidUsage)
}

func TestIntegration_Paste(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		doc   string
		stdin string
		args  []string
		want  string
	}{
		{
			name: "link over selection",
			doc:  "see docs\n",
			args: []string{"--at", "4", "--select", "4", "--text", "https://example.com"},
			want: "see [docs](https://example.com)\n",
		},
		{
			name: "autolink at caret",
			doc:  "see \n",
			args: []string{"--at", "4", "--text", "https://example.com"},
			want: "see <https://example.com>\n",
		},
		{
			name:  "plain text from stdin",
			doc:   "world\n",
			stdin: "hello ",
			args:  []string{"--at", "0"},
			want:  "hello world\n",
		},
		{
			name: "special characters removed",
			doc:  "\n",
			args: []string{"--at", "0", "--text", "“ok”", "--remove-special-characters"},
			want: "\"ok\"\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, "")
			doc := env.write(t, "doc.md", tt.doc)

			out, err := env.run(t, tt.stdin, append([]string{"paste", doc}, tt.args...)...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestIntegration_Expand(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	snippetsFile := env.write(t, "my.snippets", "# greetings\nhi Hello, world!\n")
	doc := env.write(t, "doc.md", "hi\n")

	out, err := env.run(t, "", "expand", doc, "--at", "2", "--snippets", snippetsFile)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world!\n", out)

	out, err = env.run(t, "", "expand", doc, "--at", "0", "--snippets", snippetsFile)
	require.NoError(t, err)
	assert.Equal(t, "  hi\n", out)

	out, err = env.run(t, "", "expand", "--list", "--snippets", snippetsFile)
	require.NoError(t, err)
	assert.Contains(t, out, "TRIGGER")
	assert.Contains(t, out, "Hello, world!")
}

func TestIntegration_ExpandInvalidSnippets(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	snippetsFile := env.write(t, "bad.snippets", "lonely\n")
	doc := env.write(t, "doc.md", "hi\n")

	_, err := env.run(t, "", "expand", doc, "--snippets", snippetsFile)
	require.Error(t, err)
	assert.Equal(t, cli.ExitConfigError, cli.ExitCodeFromError(err))
}

func TestIntegration_Export(t *testing.T) {
	t.Parallel()

	t.Run("next to the document", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, "")
		doc := env.write(t, "doc.md", "---\ntitle: Front\n---\n# Title\n\ntext\n")

		out, err := env.run(t, "", "export", doc)
		require.NoError(t, err)

		htmlPath := filepath.Join(env.dir, "doc.html")
		assert.Equal(t, htmlPath+"\n", out)
		html := env.read(t, htmlPath)
		assert.Contains(t, html, "<h1>Title</h1>")
		assert.NotContains(t, html, "title: Front")
	})

	t.Run("template and output path", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, "")
		doc := env.write(t, "doc.md", "# Title\n")
		tmpl := env.write(t, "page.html", "<body>{{content}}</body>")
		output := filepath.Join(env.dir, "site.html")

		_, err := env.run(t, "", "export", doc, "-o", output, "--html-template", tmpl)
		require.NoError(t, err)
		assert.Contains(t, env.read(t, output), "<body><h1>Title</h1>")
	})

	t.Run("suggested name", func(t *testing.T) {
		t.Parallel()

		env := newTestEnv(t, "")
		doc := env.write(t, "doc.md", "# My Notes\n")

		out, err := env.run(t, "", "export", doc, "--suggest")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(env.dir, "My Notes.html")+"\n", out)
		assert.FileExists(t, filepath.Join(env.dir, "My Notes.html"))
	})
}

func TestIntegration_Recent(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	first := env.write(t, "first.md", "one\n")
	second := env.write(t, "second.md", "two\n")

	out, err := env.run(t, "", "recent")
	require.NoError(t, err)
	assert.Contains(t, out, "no recent files")

	_, err = env.run(t, "", "view", first)
	require.NoError(t, err)
	_, err = env.run(t, "", "view", second)
	require.NoError(t, err)

	out, err = env.run(t, "", "recent")
	require.NoError(t, err)
	assert.Contains(t, out, first)
	assert.Contains(t, out, second)
	assert.Less(t, strings.Index(out, second), strings.Index(out, first), "most recent first")

	out, err = env.run(t, "", "recent", "--last")
	require.NoError(t, err)
	assert.Equal(t, second+"\n", out)
}

func TestIntegration_RecentFreshSessionDirectory(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	env.session = filepath.Join(env.dir, "state", "mdedit", "session.yaml")
	doc := env.write(t, "doc.md", "one\n")

	_, err := env.run(t, "", "view", doc)
	require.NoError(t, err)
	require.FileExists(t, env.session)

	out, err := env.run(t, "", "recent", "--last")
	require.NoError(t, err)
	assert.Equal(t, doc+"\n", out)
}

func TestIntegration_ConfigErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		config string
	}{
		{name: "unknown key", config: "bogus: 1\n"},
		{name: "invalid line ending", config: "line_ending: nel\n"},
		{name: "invalid encoding", config: "encoding: klingon\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			env := newTestEnv(t, "")
			doc := env.write(t, "doc.md", "text\n")
			require.NoError(t, os.WriteFile(env.config, []byte(tt.config), 0o644))

			_, err := env.run(t, "", "view", doc)
			require.ErrorIs(t, err, cli.ErrConfig)
			assert.Equal(t, cli.ExitConfigError, cli.ExitCodeFromError(err))
		})
	}
}

func TestIntegration_Init(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t, "")
	output := filepath.Join(env.dir, "new", ".mdedit.yml")
	require.NoError(t, os.MkdirAll(filepath.Dir(output), 0o755))

	_, err := env.run(t, "", "init", "--output", output, "--snippets")
	require.NoError(t, err)
	assert.Contains(t, env.read(t, output), "theme")
	assert.Contains(t, env.read(t, filepath.Join(env.dir, "new", "mdedit.snippets")), "$END$")

	_, err = env.run(t, "", "init", "--output", output)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = env.run(t, "", "init", "--output", output, "--force", "--full")
	require.NoError(t, err)

	_, err = env.run(t, "", "init", "--output", output, "--force", "--format", "toml")
	require.ErrorIs(t, err, cli.ErrInvalidUsage)
}
