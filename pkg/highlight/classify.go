package highlight

import (
	"github.com/yaklabco/mdedit/pkg/mdast"
	"github.com/yaklabco/mdedit/pkg/theme"
)

// mark is a classified byte range of the document text. Deeper marks win
// where they overlap shallower ones.
type mark struct {
	start, end int
	class      theme.Class
	depth      int
}

// classOf maps node kinds to highlight classes. Containers whose own text is
// only markers (lists, blockquotes) are handled separately.
//
//nolint:gochecknoglobals // Read-only lookup table.
var classOf = map[mdast.NodeKind]theme.Class{
	mdast.NodeHeading:       theme.ClassHeading,
	mdast.NodeCodeBlock:     theme.ClassCodeBlock,
	mdast.NodeHTMLBlock:     theme.ClassHTML,
	mdast.NodeThematicBreak: theme.ClassThematicBreak,
	mdast.NodeTableRow:      theme.ClassTable,
	mdast.NodeEmphasis:      theme.ClassEmphasis,
	mdast.NodeStrong:        theme.ClassStrong,
	mdast.NodeStrikethrough: theme.ClassStrikethrough,
	mdast.NodeCodeSpan:      theme.ClassCodeSpan,
	mdast.NodeLink:          theme.ClassLink,
	mdast.NodeAutoLink:      theme.ClassLink,
	mdast.NodeImage:         theme.ClassImage,
	mdast.NodeHTMLInline:    theme.ClassHTML,
	mdast.NodeTaskCheckBox:  theme.ClassListMarker,
}

// index computes the spans of every line of doc.
func index(doc *mdast.Document) [][]Span {
	marks := collect(doc)

	perLine := make([][]mark, doc.LineCount())
	for _, m := range marks {
		first := doc.LineIndex(m.start)
		last := doc.LineIndex(max(m.end-1, m.start))
		for idx := first; idx <= last && idx < len(perLine); idx++ {
			perLine[idx] = append(perLine[idx], m)
		}
	}

	lines := make([][]Span, doc.LineCount())
	for idx, lineMarks := range perLine {
		if len(lineMarks) == 0 {
			continue
		}
		info := doc.Lines[idx]
		lines[idx] = paint(lineMarks, info.StartOffset, info.NewlineStart)
	}
	return lines
}

// collect walks the tree and returns the marks of every classified node.
func collect(doc *mdast.Document) []mark {
	var marks []mark
	depth := 0

	enter := func(n *mdast.Node) error {
		depth++
		r := n.Range.Clip(len(doc.Text))
		if r.IsEmpty() {
			return nil
		}

		if class, ok := classOf[n.Kind]; ok {
			marks = append(marks, mark{start: r.StartOffset, end: r.EndOffset, class: class, depth: depth})
		}

		switch n.Kind {
		case mdast.NodeBlockquote:
			marks = append(marks, quoteMarkers(doc, r, depth)...)
		case mdast.NodeListItem:
			if m, ok := listMarker(doc, r.StartOffset, depth); ok {
				marks = append(marks, m)
			}
		default:
		}
		return nil
	}
	leave := func(*mdast.Node) error {
		depth--
		return nil
	}

	//nolint:errcheck,revive // callbacks never fail
	mdast.WalkWithContext(doc.Root, enter, leave)
	return marks
}

// quoteMarkers marks the leading "> " run of every line in r.
func quoteMarkers(doc *mdast.Document, r mdast.SourceRange, depth int) []mark {
	var marks []mark
	last := doc.LineIndex(max(r.EndOffset-1, r.StartOffset))
	for idx := doc.LineIndex(r.StartOffset); idx <= last; idx++ {
		info := doc.Lines[idx]
		end := info.StartOffset
		for end < info.NewlineStart {
			c := doc.Text[end]
			if c != '>' && c != ' ' && c != '\t' {
				break
			}
			end++
		}
		if end > info.StartOffset && hasQuote(doc.Text[info.StartOffset:end]) {
			marks = append(marks, mark{start: info.StartOffset, end: end, class: theme.ClassBlockquote, depth: depth})
		}
	}
	return marks
}

func hasQuote(b []byte) bool {
	for _, c := range b {
		if c == '>' {
			return true
		}
	}
	return false
}

// listMarker finds the bullet or number of a list item starting on the line
// at lineStart, skipping indentation and blockquote markers.
func listMarker(doc *mdast.Document, lineStart, depth int) (mark, bool) {
	end := doc.Lines[doc.LineIndex(lineStart)].NewlineStart
	text := doc.Text

	pos := lineStart
	for pos < end && (text[pos] == ' ' || text[pos] == '\t' || text[pos] == '>') {
		pos++
	}
	if pos >= end {
		return mark{}, false
	}

	start := pos
	switch text[pos] {
	case '-', '+', '*':
		pos++
	default:
		for pos < end && text[pos] >= '0' && text[pos] <= '9' {
			pos++
		}
		if pos == start || pos >= end || (text[pos] != '.' && text[pos] != ')') {
			return mark{}, false
		}
		pos++
	}

	return mark{start: start, end: pos, class: theme.ClassListMarker, depth: depth}, true
}

// paint flattens marks on one line into sorted, non-overlapping spans.
func paint(marks []mark, lineStart, lineEnd int) []Span {
	width := lineEnd - lineStart
	if width <= 0 {
		return nil
	}

	classes := make([]theme.Class, width)
	depths := make([]int, width)

	for _, m := range marks {
		from := max(m.start, lineStart) - lineStart
		to := min(m.end, lineEnd) - lineStart
		for i := from; i < to; i++ {
			if m.depth >= depths[i] {
				classes[i] = m.class
				depths[i] = m.depth
			}
		}
	}

	var spans []Span
	for i := 0; i < width; {
		if classes[i] == theme.ClassNone {
			i++
			continue
		}
		j := i + 1
		for j < width && classes[j] == classes[i] {
			j++
		}
		spans = append(spans, Span{Start: i, End: j, Class: classes[i]})
		i = j
	}
	return spans
}
