package goldmark

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"

	"github.com/yaklabco/mdedit/pkg/mdast"
)

// mapInlines maps the inline content of a leaf block.
func (m *mapper) mapInlines(gmBlock ast.Node, block *mdast.Node) {
	cursor := unresolved
	if lines := gmBlock.Lines(); lines != nil && lines.Len() > 0 {
		cursor = lines.At(0).Start
	}
	m.mapInlineRun(gmBlock, block, cursor)
}

// mapInlineRun maps the inline children of gmParent under parent.
// cursor is the offset the first child is searched from; the returned value
// is the end of the last mapped child.
func (m *mapper) mapInlineRun(gmParent ast.Node, parent *mdast.Node, cursor int) int {
	for child := gmParent.FirstChild(); child != nil; child = child.NextSibling() {
		if child.Type() != ast.TypeInline {
			continue
		}
		cursor = m.mapInline(child, parent, cursor)
	}
	return cursor
}

// mapInline converts a single goldmark inline node and appends it to parent.
// Ranges include the Markdown delimiters of the construct.
func (m *mapper) mapInline(gmNode ast.Node, parent *mdast.Node, cursor int) int {
	switch gmn := gmNode.(type) {
	case *ast.Text:
		return m.mapText(gmn, parent)

	case *ast.String:
		at := max(cursor, 0)
		node := mdast.NewInline(mdast.NodeText, at, at)
		node.Inline.WithText(gmn.Value)
		mdast.AppendChild(parent, node)
		return cursor

	case *ast.Emphasis:
		kind := mdast.NodeEmphasis
		if gmn.Level >= 2 {
			kind = mdast.NodeStrong
		}
		node := m.wrapInline(kind, gmNode, parent, cursor, gmn.Level, gmn.Level)
		node.Inline.WithEmphasisLevel(gmn.Level)
		return m.endOf(node, cursor)

	case *east.Strikethrough:
		tildes := m.countBefore(m.firstChildStart(gmNode), '~')
		node := m.wrapInline(mdast.NodeStrikethrough, gmNode, parent, cursor, tildes, tildes)
		return m.endOf(node, cursor)

	case *ast.CodeSpan:
		return m.mapCodeSpan(gmn, parent, cursor)

	case *ast.Link:
		node := m.wrapInline(mdast.NodeLink, gmNode, parent, cursor, 1, 0)
		node.Inline.WithLink(&mdast.LinkAttrs{Destination: string(gmn.Destination), Title: string(gmn.Title)})
		node.Range.EndOffset = m.linkTail(node.Range.EndOffset)
		return m.endOf(node, cursor)

	case *ast.Image:
		node := m.wrapInline(mdast.NodeImage, gmNode, parent, cursor, 2, 0)
		node.Inline.WithLink(&mdast.LinkAttrs{Destination: string(gmn.Destination), Title: string(gmn.Title)})
		node.Range.EndOffset = m.linkTail(node.Range.EndOffset)
		return m.endOf(node, cursor)

	case *ast.AutoLink:
		return m.mapAutoLink(gmn, parent, cursor)

	case *ast.RawHTML:
		start, end := cursor, cursor
		if segs := gmn.Segments; segs != nil && segs.Len() > 0 {
			start = segs.At(0).Start
			end = segs.At(segs.Len() - 1).Stop
		}
		node := mdast.NewInline(mdast.NodeHTMLInline, max(start, 0), max(end, 0))
		mdast.AppendChild(parent, node)
		return m.endOf(node, cursor)

	case *east.TaskCheckBox:
		start := m.lineStart(max(cursor, 0))
		if idx := bytes.IndexByte(m.content[min(start, len(m.content)):], '['); idx >= 0 {
			start += idx
		}
		end := min(start+3, len(m.content))
		node := mdast.NewInline(mdast.NodeTaskCheckBox, start, end)
		node.Inline.Checked = gmn.IsChecked
		mdast.AppendChild(parent, node)
		return end

	default:
		node := mdast.NewInline(mdast.NodeRaw, max(cursor, 0), max(cursor, 0))
		mdast.AppendChild(parent, node)
		return m.mapInlineRun(gmNode, node, cursor)
	}
}

// mapText maps a text segment, adding a break node when the text ends a line.
func (m *mapper) mapText(textNode *ast.Text, parent *mdast.Node) int {
	seg := textNode.Segment
	node := mdast.NewInline(mdast.NodeText, seg.Start, seg.Stop)
	node.Inline.WithText(seg.Value(m.content))
	mdast.AppendChild(parent, node)

	switch {
	case textNode.HardLineBreak():
		mdast.AppendChild(parent, mdast.NewInline(mdast.NodeHardBreak, seg.Stop, seg.Stop))
	case textNode.SoftLineBreak():
		mdast.AppendChild(parent, mdast.NewInline(mdast.NodeSoftBreak, seg.Stop, seg.Stop))
	}

	return seg.Stop
}

// wrapInline maps a container inline whose range is its children's range
// widened by the given number of delimiter bytes on each side.
func (m *mapper) wrapInline(kind mdast.NodeKind, gmNode ast.Node, parent *mdast.Node, cursor, open, closing int) *mdast.Node {
	node := mdast.NewInline(kind, max(cursor, 0), max(cursor, 0))
	mdast.AppendChild(parent, node)

	end := m.mapInlineRun(gmNode, node, cursor+open)

	if first := node.FirstChild; first != nil {
		node.Range.StartOffset = max(first.Range.StartOffset-open, 0)
		node.Range.EndOffset = min(end+closing, len(m.content))
	} else {
		node.Range.EndOffset = min(max(cursor, 0)+open+closing, len(m.content))
	}

	return node
}

// mapCodeSpan maps a code span including its backtick runs.
func (m *mapper) mapCodeSpan(codeSpan *ast.CodeSpan, parent *mdast.Node, cursor int) int {
	var text []byte
	start, end := unresolved, unresolved

	for child := codeSpan.FirstChild(); child != nil; child = child.NextSibling() {
		t, ok := child.(*ast.Text)
		if !ok {
			continue
		}
		text = append(text, t.Segment.Value(m.content)...)
		if start == unresolved {
			start = t.Segment.Start
		}
		end = t.Segment.Stop
	}

	if start == unresolved {
		start, end = max(cursor, 0), max(cursor, 0)
	}

	// Widen over one optional padding space and the backtick run.
	if start > 0 && m.content[start-1] == ' ' && m.countBefore(start-1, '`') > 0 {
		start--
	}
	ticks := m.countBefore(start, '`')
	start -= ticks
	if end < len(m.content) && m.content[end] == ' ' && m.countAfter(end+1, '`') >= ticks {
		end++
	}
	end = min(end+min(ticks, m.countAfter(end, '`')), len(m.content))

	node := mdast.NewInline(mdast.NodeCodeSpan, start, end)
	node.Inline.WithText(text)
	mdast.AppendChild(parent, node)

	return end
}

// mapAutoLink locates "<url>" or a bare URL starting at cursor.
func (m *mapper) mapAutoLink(autoLink *ast.AutoLink, parent *mdast.Node, cursor int) int {
	label := autoLink.Label(m.content)
	from := min(max(cursor, 0), len(m.content))

	start, end := from, from
	if idx := bytes.Index(m.content[from:], label); idx >= 0 {
		start = from + idx
		end = start + len(label)
		if start > 0 && m.content[start-1] == '<' && end < len(m.content) && m.content[end] == '>' {
			start--
			end++
		}
	}

	node := mdast.NewInline(mdast.NodeAutoLink, start, end)
	node.Inline.WithLink(&mdast.LinkAttrs{Destination: string(autoLink.URL(m.content))})
	textNode := mdast.NewInline(mdast.NodeText, start, end)
	textNode.Inline.WithText(label)
	mdast.AppendChild(node, textNode)
	mdast.AppendChild(parent, node)

	return end
}

// linkTail extends a link range from just after its label over "]" and the
// "(destination)" or "[reference]" that follows.
func (m *mapper) linkTail(labelEnd int) int {
	pos := labelEnd
	if pos >= len(m.content) || m.content[pos] != ']' {
		return pos
	}
	pos++
	if pos >= len(m.content) {
		return pos
	}

	var open, closing byte
	switch m.content[pos] {
	case '(':
		open, closing = '(', ')'
	case '[':
		open, closing = '[', ']'
	default:
		return pos
	}

	depth := 0
	for i := pos; i < len(m.content); i++ {
		switch m.content[i] {
		case '\\':
			i++
		case open:
			depth++
		case closing:
			depth--
			if depth == 0 {
				return i + 1
			}
		case '\n', '\r':
			if open == '[' {
				return pos
			}
		}
	}

	return pos
}

// firstChildStart returns the start of the first text descendant of gmNode.
func (m *mapper) firstChildStart(gmNode ast.Node) int {
	for child := gmNode.FirstChild(); child != nil; child = child.FirstChild() {
		if t, ok := child.(*ast.Text); ok {
			return t.Segment.Start
		}
	}
	return 0
}

// countBefore counts consecutive c bytes ending just before offset.
func (m *mapper) countBefore(offset int, c byte) int {
	n := 0
	for i := min(offset, len(m.content)) - 1; i >= 0 && m.content[i] == c; i-- {
		n++
	}
	return n
}

// countAfter counts consecutive c bytes starting at offset.
func (m *mapper) countAfter(offset int, c byte) int {
	n := 0
	for i := max(offset, 0); i < len(m.content) && m.content[i] == c; i++ {
		n++
	}
	return n
}

// endOf returns the end of node, or cursor when the node could not be placed.
func (m *mapper) endOf(node *mdast.Node, cursor int) int {
	if node.Range.EndOffset < cursor {
		return cursor
	}
	return node.Range.EndOffset
}
