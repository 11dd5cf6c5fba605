package surface

import (
	"fmt"
	"strings"

	"github.com/yaklabco/mdedit/pkg/mdast"
	"github.com/yaklabco/mdedit/pkg/textedit"
)

// Change describes one committed edit: Removed bytes at Offset were replaced
// by Inserted bytes.
type Change struct {
	Offset   int
	Removed  int
	Inserted int
}

// Buffer is the in-memory document text with a caret and a selection.
// Offsets are byte offsets. Buffer is not safe for concurrent use; Editor
// serializes access to it.
type Buffer struct {
	text     []byte
	lines    []mdast.LineInfo
	caret    int
	selStart int
	selLen   int
	modified bool
	version  uint64

	subscribers []func(Change)
}

// NewBuffer creates a buffer holding text. It starts unmodified.
func NewBuffer(text string) *Buffer {
	b := &Buffer{text: []byte(text)}
	b.lines = mdast.BuildLines(b.text)
	return b
}

// Subscribe registers fn to run after every change.
func (b *Buffer) Subscribe(fn func(Change)) {
	b.subscribers = append(b.subscribers, fn)
}

// Text returns the document text.
func (b *Buffer) Text() string {
	return string(b.text)
}

// Bytes returns a copy of the document text.
func (b *Buffer) Bytes() []byte {
	out := make([]byte, len(b.text))
	copy(out, b.text)
	return out
}

// Len returns the text length in bytes.
func (b *Buffer) Len() int {
	return len(b.text)
}

// Version increases on every change.
func (b *Buffer) Version() uint64 {
	return b.version
}

// IsModified reports whether the text changed since the last SetModified(false).
func (b *Buffer) IsModified() bool {
	return b.modified
}

// SetModified sets the modified flag.
func (b *Buffer) SetModified(modified bool) {
	b.modified = modified
}

// SetText replaces the whole text and puts the caret at the start.
func (b *Buffer) SetText(text string) {
	removed := len(b.text)
	b.text = []byte(text)
	b.caret, b.selStart, b.selLen = 0, 0, 0
	b.commit(Change{Offset: 0, Removed: removed, Inserted: len(text)})
}

// Insert inserts text at offset and moves the caret after it.
func (b *Buffer) Insert(offset int, text string) error {
	return b.Replace(offset, 0, text)
}

// Delete removes length bytes at offset.
func (b *Buffer) Delete(offset, length int) error {
	return b.Replace(offset, length, "")
}

// Replace replaces length bytes at offset with text. The caret moves to the
// end of the inserted text and the selection is cleared.
func (b *Buffer) Replace(offset, length int, text string) error {
	if offset < 0 || length < 0 || offset+length > len(b.text) {
		return fmt.Errorf("%w: [%d:%d] in %d bytes", ErrOutOfRange, offset, offset+length, len(b.text))
	}

	out := make([]byte, 0, len(b.text)-length+len(text))
	out = append(out, b.text[:offset]...)
	out = append(out, text...)
	out = append(out, b.text[offset+length:]...)
	b.text = out

	b.caret = offset + len(text)
	b.selStart, b.selLen = b.caret, 0
	b.commit(Change{Offset: offset, Removed: length, Inserted: len(text)})
	return nil
}

// Apply applies several edits as one change. The caret and selection are
// mapped through the edits.
func (b *Buffer) Apply(edits []textedit.TextEdit) error {
	prepared, err := textedit.Prepare(edits, len(b.text))
	if err != nil {
		return fmt.Errorf("applying edits: %w", err)
	}
	if len(prepared) == 0 {
		return nil
	}

	first := prepared[0].StartOffset
	last := prepared[len(prepared)-1].EndOffset
	delta := 0
	for _, e := range prepared {
		delta += e.Delta()
	}

	selEnd := textedit.MapOffset(b.selStart+b.selLen, prepared)
	b.selStart = textedit.MapOffset(b.selStart, prepared)
	b.selLen = max(selEnd-b.selStart, 0)
	b.caret = textedit.MapOffset(b.caret, prepared)

	b.text = textedit.Apply(b.text, prepared)
	b.commit(Change{Offset: first, Removed: last - first, Inserted: last - first + delta})
	return nil
}

func (b *Buffer) commit(c Change) {
	b.lines = mdast.BuildLines(b.text)
	b.modified = true
	b.version++
	for _, fn := range b.subscribers {
		fn(c)
	}
}

// Caret returns the caret offset.
func (b *Buffer) Caret() int {
	return b.caret
}

// SetCaret moves the caret, clamped to the text, and clears the selection.
func (b *Buffer) SetCaret(offset int) {
	b.caret = clamp(offset, 0, len(b.text))
	b.selStart, b.selLen = b.caret, 0
}

// Selection returns the selection start and length.
func (b *Buffer) Selection() (int, int) {
	return b.selStart, b.selLen
}

// Select selects length bytes at start, clamped to the text. The caret
// moves to the end of the selection.
func (b *Buffer) Select(start, length int) {
	start = clamp(start, 0, len(b.text))
	end := clamp(start+length, start, len(b.text))
	b.selStart, b.selLen = start, end-start
	b.caret = end
}

// SelectedText returns the selected text.
func (b *Buffer) SelectedText() string {
	return string(b.text[b.selStart : b.selStart+b.selLen])
}

// LineCount returns the number of lines. An empty buffer has one line.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// Line returns the 1-based line without its line ending.
func (b *Buffer) Line(line int) string {
	if line < 1 || line > len(b.lines) {
		return ""
	}
	info := b.lines[line-1]
	return string(b.text[info.StartOffset:info.NewlineStart])
}

// Lines returns every line without line endings.
func (b *Buffer) Lines() []string {
	lines := make([]string, len(b.lines))
	for i := range b.lines {
		lines[i] = b.Line(i + 1)
	}
	return lines
}

// LineStart returns the offset of the first byte of a 1-based line.
func (b *Buffer) LineStart(line int) int {
	line = clamp(line, 1, len(b.lines))
	return b.lines[line-1].StartOffset
}

// LineEnd returns the offset of the line ending of a 1-based line.
func (b *Buffer) LineEnd(line int) int {
	line = clamp(line, 1, len(b.lines))
	return b.lines[line-1].NewlineStart
}

// LineOfOffset returns the 1-based line holding offset.
func (b *Buffer) LineOfOffset(offset int) int {
	offset = clamp(offset, 0, len(b.text))
	lo, hi := 0, len(b.lines)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if b.lines[mid].StartOffset <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo + 1
}

// WordAt returns the bounds of the word around offset. Words are runs of
// letters, digits and underscores. An empty range means no word.
func (b *Buffer) WordAt(offset int) (int, int) {
	offset = clamp(offset, 0, len(b.text))
	start, end := offset, offset
	for start > 0 && isWordByte(b.text[start-1]) {
		start--
	}
	for end < len(b.text) && isWordByte(b.text[end]) {
		end++
	}
	return start, end
}

func isWordByte(c byte) bool {
	return c == '_' || c >= 0x80 ||
		('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') || ('0' <= c && c <= '9')
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}

// normalizeNewlines converts CRLF and CR to LF.
func normalizeNewlines(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
