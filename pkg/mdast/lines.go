package mdast

import "sort"

// BuildLines constructs line metadata from text.
// It recognises LF, CRLF and lone CR line endings. The result always holds at
// least one line; empty text yields a single empty line.
func BuildLines(text []byte) []LineInfo {
	lines := make([]LineInfo, 0, 1+len(text)/40)
	lineStart := 0

	for idx := 0; idx < len(text); idx++ {
		switch text[idx] {
		case '\n':
			lines = append(lines, LineInfo{StartOffset: lineStart, NewlineStart: idx, EndOffset: idx + 1})
			lineStart = idx + 1
		case '\r':
			end := idx + 1
			if end < len(text) && text[end] == '\n' {
				end++
			}
			lines = append(lines, LineInfo{StartOffset: lineStart, NewlineStart: idx, EndOffset: end})
			lineStart = end
			idx = end - 1
		}
	}

	lines = append(lines, LineInfo{
		StartOffset:  lineStart,
		NewlineStart: len(text),
		EndOffset:    len(text),
	})

	return lines
}

// LineCount returns the number of lines in the document.
func (d *Document) LineCount() int {
	return len(d.Lines)
}

// LineIndex returns the 0-based index of the line containing offset.
// Offsets past the end map to the last line; negative offsets map to 0.
func (d *Document) LineIndex(offset int) int {
	if offset <= 0 || len(d.Lines) == 0 {
		return 0
	}
	idx := sort.Search(len(d.Lines), func(i int) bool {
		return d.Lines[i].EndOffset > offset
	})
	if idx >= len(d.Lines) {
		idx = len(d.Lines) - 1
	}
	return idx
}

// LineAt converts a byte offset to 1-based line and column numbers.
// Column counts bytes, not runes.
// Returns (0, 0) if the offset is negative.
func (d *Document) LineAt(offset int) (int, int) {
	if offset < 0 || len(d.Lines) == 0 {
		return 0, 0
	}

	idx := d.LineIndex(offset)
	return idx + 1, offset - d.Lines[idx].StartOffset + 1
}

// LineStart returns the byte offset where the 1-based line begins.
// Returns (0, false) if the line is out of range.
func (d *Document) LineStart(line int) (int, bool) {
	if line < 1 || line > len(d.Lines) {
		return 0, false
	}
	return d.Lines[line-1].StartOffset, true
}

// Offset converts 1-based line and column numbers to a byte offset.
// Returns (offset, true) on success, or (0, false) if out of range.
func (d *Document) Offset(line, col int) (int, bool) {
	if line < 1 || line > len(d.Lines) || col < 1 {
		return 0, false
	}

	lineInfo := d.Lines[line-1]
	offset := lineInfo.StartOffset + col - 1

	// Column may point just past the line content for cursor placement.
	if offset > lineInfo.NewlineStart {
		return 0, false
	}

	return offset, true
}

// LineContent returns the content of a 1-based line number, excluding the newline.
// Returns nil if the line number is out of range.
func (d *Document) LineContent(line int) []byte {
	if line < 1 || line > len(d.Lines) {
		return nil
	}

	lineInfo := d.Lines[line-1]
	return d.Text[lineInfo.StartOffset:lineInfo.NewlineStart]
}

// LineStartAt returns the start offset of the line containing offset.
func (d *Document) LineStartAt(offset int) int {
	if len(d.Lines) == 0 {
		return 0
	}
	return d.Lines[d.LineIndex(offset)].StartOffset
}

// IsBlankLine reports whether the 1-based line holds only spaces and tabs.
func (d *Document) IsBlankLine(line int) bool {
	content := d.LineContent(line)
	for _, c := range content {
		if c != ' ' && c != '\t' {
			return false
		}
	}
	return true
}
