package surface_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdedit/pkg/paste"
)

func TestEditor_ToggleMarkers(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		text       string
		selStart   int
		selLen     int
		caret      int
		apply      func(e interface{ Bold(); Italic(); Code() })
		want       string
		wantSelect string
	}{
		{
			name: "bold selection", text: "make this bold", selStart: 5, selLen: 4,
			apply: func(e interface{ Bold(); Italic(); Code() }) { e.Bold() },
			want:  "make **this** bold", wantSelect: "this",
		},
		{
			name: "unbold surrounded selection", text: "make **this** bold", selStart: 7, selLen: 4,
			apply: func(e interface{ Bold(); Italic(); Code() }) { e.Bold() },
			want:  "make this bold", wantSelect: "this",
		},
		{
			name: "unbold wrapped selection", text: "make **this** bold", selStart: 5, selLen: 8,
			apply: func(e interface{ Bold(); Italic(); Code() }) { e.Bold() },
			want:  "make this bold", wantSelect: "this",
		},
		{
			name: "italic word at caret", text: "an word here", caret: 4,
			apply: func(e interface{ Bold(); Italic(); Code() }) { e.Italic() },
			want:  "an *word* here", wantSelect: "word",
		},
		{
			name: "code word at caret", text: "run fmt now", caret: 7,
			apply: func(e interface{ Bold(); Italic(); Code() }) { e.Code() },
			want:  "run `fmt` now", wantSelect: "fmt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e := newEditor(t, tt.text)
			if tt.selLen > 0 {
				e.Select(tt.selStart, tt.selLen)
			} else {
				e.SetCaret(tt.caret)
			}
			tt.apply(e)

			assert.Equal(t, tt.want, e.Text())
			assert.Equal(t, tt.wantSelect, e.SelectedText())
		})
	}
}

func TestEditor_ToggleEmptyInsertsPair(t *testing.T) {
	t.Parallel()

	e := newEditor(t, "a  b")
	e.SetCaret(2)
	e.Bold()

	assert.Equal(t, "a **** b", e.Text())
	assert.Equal(t, 4, e.Caret())
}

func TestEditor_InsertHeader(t *testing.T) {
	t.Parallel()

	e := newEditor(t, "intro\nTitle here\n")
	e.SetCaret(9)
	e.InsertHeader(2)

	assert.Equal(t, "intro\n## Title here\n", e.Text())
	assert.Equal(t, 12, e.Caret())

	e.SetCaret(0)
	e.InsertHeader(9)
	assert.True(t, strings.HasPrefix(e.Text(), "###### intro"))
}

func TestEditor_SelectHeaders(t *testing.T) {
	t.Parallel()

	e := newEditor(t, "# One\n\ntext\n\n## Two\n\nmore\n")

	require.True(t, e.SelectNextHeader())
	assert.Equal(t, "# One", e.SelectedText())

	require.True(t, e.SelectNextHeader())
	assert.Equal(t, "## Two", e.SelectedText())

	assert.False(t, e.SelectNextHeader())

	require.True(t, e.SelectPreviousHeader())
	assert.Equal(t, "# One", e.SelectedText())

	assert.False(t, e.SelectPreviousHeader())
}

func TestEditor_Find(t *testing.T) {
	t.Parallel()

	e := newEditor(t, "cat dog cat bird")
	re := regexp.MustCompile(`cat`)

	require.True(t, e.Find(re))
	start, _ := e.Selection()
	assert.Equal(t, 0, start)

	require.True(t, e.Find(re))
	start, _ = e.Selection()
	assert.Equal(t, 8, start)

	require.True(t, e.Find(re))
	start, _ = e.Selection()
	assert.Equal(t, 0, start, "wraps around")

	assert.False(t, e.Find(regexp.MustCompile(`fish`)))
	assert.False(t, e.Find(regexp.MustCompile(`x*`)))
}

func TestEditor_ReplaceNext(t *testing.T) {
	t.Parallel()

	e := newEditor(t, "a1 b2 c3")
	re := regexp.MustCompile(`([a-z])(\d)`)

	// Nothing selected yet, so the first call only finds.
	require.True(t, e.ReplaceNext(re, "$2$1"))
	assert.Equal(t, "a1 b2 c3", e.Text())
	assert.Equal(t, "a1", e.SelectedText())

	require.True(t, e.ReplaceNext(re, "$2$1"))
	assert.Equal(t, "1a b2 c3", e.Text())
	assert.Equal(t, "b2", e.SelectedText())
}

func TestEditor_ReplaceAll(t *testing.T) {
	t.Parallel()

	e := newEditor(t, "a1 b2 c3")
	n := e.ReplaceAll(regexp.MustCompile(`([a-z])(\d)`), "$2$1")

	assert.Equal(t, 3, n)
	assert.Equal(t, "1a 2b 3c", e.Text())
	assert.Equal(t, 0, e.ReplaceAll(regexp.MustCompile(`zz`), "y"))
}

func TestEditor_FormatText(t *testing.T) {
	t.Parallel()

	e := newEditor(t, "one two three")
	e.Select(4, 3)
	require.True(t, e.FormatText(strings.ToUpper, false))
	assert.Equal(t, "one TWO three", e.Text())
	assert.Equal(t, "TWO", e.SelectedText())

	e.SetCaret(13)
	require.True(t, e.FormatText(func(string) string { return "short" }, true))
	assert.Equal(t, "short", e.Text())
	assert.Equal(t, 5, e.Caret())

	assert.False(t, e.FormatText(func(s string) string { return s }, true))
}

func TestEditor_TabExpand(t *testing.T) {
	t.Parallel()

	e := newEditor(t, "x date")
	e.SetCaret(6)
	require.True(t, e.TabExpand())
	assert.Equal(t, "x 2024-03-09", e.Text())

	e.SetText("plain")
	e.SetCaret(0)
	assert.False(t, e.TabExpand())
	assert.Equal(t, "  plain", e.Text())
	assert.Equal(t, 2, e.Caret())
}

func TestEditor_Paste(t *testing.T) {
	t.Parallel()

	e := newEditor(t, "see here")
	e.Select(4, 4)
	e.Paste("https://example.com")
	assert.Equal(t, "see [here](https://example.com)", e.Text())

	e.SetText("")
	e.SetPasteOptions(paste.Options{RemoveSpecialCharacters: true})
	e.Paste("“quoted”\r\n")
	assert.Equal(t, "\"quoted\"\n", e.Text())
}
