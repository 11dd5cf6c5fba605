package goldmark

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	east "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/mdedit/pkg/mdast"
)

// unresolved marks a block whose offset could not be read from goldmark segments.
const unresolved = -1

// mapper converts a goldmark AST into an mdast tree with byte ranges.
type mapper struct {
	doc     *mdast.Document
	content []byte
}

// newMapper creates a new mapper for the given document shell.
func newMapper(doc *mdast.Document) *mapper {
	return &mapper{doc: doc, content: doc.Text}
}

// mapDocument fills doc.Root from the goldmark document node.
func (m *mapper) mapDocument(gmDoc ast.Node) {
	root := m.doc.Root
	root.Range = mdast.SourceRange{StartOffset: 0, EndOffset: len(m.content)}
	m.mapBlockChildren(gmDoc, root)
	m.resolve(root)
}

// mapBlockChildren maps the block children of gmParent under parent.
func (m *mapper) mapBlockChildren(gmParent ast.Node, parent *mdast.Node) {
	for child := gmParent.FirstChild(); child != nil; child = child.NextSibling() {
		if child.Type() == ast.TypeInline {
			continue
		}
		m.mapBlock(child, parent)
	}
}

// mapBlock converts a single goldmark block node and appends it to parent.
func (m *mapper) mapBlock(gmNode ast.Node, parent *mdast.Node) {
	var node *mdast.Node

	switch gmn := gmNode.(type) {
	case *ast.Heading:
		node = m.newBlock(mdast.NodeHeading, gmNode)
		node.Block.WithHeadingLevel(gmn.Level)
		m.mapInlines(gmNode, node)

	case *ast.Paragraph, *ast.TextBlock:
		node = m.newBlock(mdast.NodeParagraph, gmNode)
		m.mapInlines(gmNode, node)

	case *ast.List:
		node = m.newBlock(mdast.NodeList, gmNode)
		node.Block.WithList(listAttrs(gmn))
		m.mapBlockChildren(gmNode, node)

	case *ast.ListItem:
		node = m.newBlock(mdast.NodeListItem, gmNode)
		m.mapBlockChildren(gmNode, node)

	case *ast.Blockquote:
		node = m.newBlock(mdast.NodeBlockquote, gmNode)
		m.mapBlockChildren(gmNode, node)

	case *ast.FencedCodeBlock:
		node = m.mapFencedCodeBlock(gmn)

	case *ast.CodeBlock:
		node = m.newBlock(mdast.NodeCodeBlock, gmNode)
		node.Block.WithCodeBlock(&mdast.CodeBlockAttrs{Indented: true})

	case *ast.ThematicBreak:
		node = m.newBlock(mdast.NodeThematicBreak, gmNode)

	case *ast.HTMLBlock:
		node = m.newBlock(mdast.NodeHTMLBlock, gmNode)
		if gmn.HasClosure() {
			node.Range.EndOffset = max(node.Range.EndOffset, m.lineEnd(gmn.ClosureLine.Start))
		}

	case *east.Table:
		node = m.newBlock(mdast.NodeTable, gmNode)
		m.mapBlockChildren(gmNode, node)

	case *east.TableHeader, *east.TableRow:
		node = m.newBlock(mdast.NodeTableRow, gmNode)
		m.mapTableCells(gmNode, node)

	default:
		node = m.newBlock(mdast.NodeRaw, gmNode)
		m.mapBlockChildren(gmNode, node)
	}

	mdast.AppendChild(parent, node)
	m.deriveFromChildren(node)
}

// newBlock creates a block node positioned from the goldmark line segments.
// Blocks without segments stay unresolved until resolve runs.
func (m *mapper) newBlock(kind mdast.NodeKind, gmNode ast.Node) *mdast.Node {
	node := mdast.NewBlock(kind, unresolved, unresolved)

	lines := gmNode.Lines()
	if lines == nil || lines.Len() == 0 {
		return node
	}

	first := lines.At(0)
	last := lines.At(lines.Len() - 1)
	node.Range.StartOffset = m.lineStart(first.Start)
	node.Range.EndOffset = m.segmentLineEnd(last)

	return node
}

// deriveFromChildren positions container blocks from their first block child
// and extends them over every child.
func (m *mapper) deriveFromChildren(node *mdast.Node) {
	if first := node.FirstChild; first != nil && first.IsBlock() && first.Range.StartOffset != unresolved {
		if node.Range.StartOffset == unresolved || first.Range.StartOffset < node.Range.StartOffset {
			node.Range.StartOffset = first.Range.StartOffset
		}
	}
	for child := node.FirstChild; child != nil; child = child.Next {
		if child.Range.EndOffset > node.Range.EndOffset {
			node.Range.EndOffset = child.Range.EndOffset
		}
	}
}

// resolve assigns offsets to blocks goldmark left without segments
// (thematic breaks, empty headings, empty list items). Each one starts at the
// first non-blank line after its previous sibling, never past the next
// positioned block.
func (m *mapper) resolve(root *mdast.Node) {
	var blocks []*mdast.Node

	//nolint:errcheck,revive // callback never fails
	mdast.WalkBlocks(root, func(n *mdast.Node) error {
		blocks = append(blocks, n)
		return nil
	})

	for idx, node := range blocks {
		if node.Range.StartOffset != unresolved {
			continue
		}

		floor := 0
		if node.Parent != nil && node.Parent.Range.StartOffset != unresolved {
			floor = node.Parent.Range.StartOffset
		}
		if prev := node.Prev; prev != nil && prev.Range.EndOffset != unresolved {
			floor = max(floor, m.nextLineStart(prev.Range.EndOffset))
		}
		if idx > 0 {
			floor = max(floor, blocks[idx-1].Range.StartOffset)
		}

		start := m.nextNonBlankLine(floor)
		for _, later := range blocks[idx+1:] {
			if later.Range.StartOffset != unresolved {
				start = min(start, later.Range.StartOffset)
				break
			}
		}
		start = max(start, floor)
		if idx > 0 {
			start = max(start, blocks[idx-1].Range.StartOffset)
		}

		node.Range.StartOffset = min(start, len(m.content))
		if node.Range.EndOffset < node.Range.StartOffset {
			node.Range.EndOffset = m.lineEnd(node.Range.StartOffset)
		}
		mdast.ExtendEnd(node, node.Range.EndOffset)
	}
}

// listAttrs extracts list attributes from a goldmark List.
func listAttrs(list *ast.List) *mdast.ListAttrs {
	return &mdast.ListAttrs{
		Ordered:      list.IsOrdered(),
		BulletMarker: string(list.Marker),
		StartNumber:  list.Start,
		Tight:        list.IsTight,
	}
}

// mapFencedCodeBlock positions a fenced code block on its opening fence line.
func (m *mapper) mapFencedCodeBlock(codeBlock *ast.FencedCodeBlock) *mdast.Node {
	node := m.newBlock(mdast.NodeCodeBlock, codeBlock)

	info := ""
	fenceLine := unresolved
	if codeBlock.Info != nil {
		info = string(codeBlock.Info.Segment.Value(m.content))
		fenceLine = m.lineStart(codeBlock.Info.Segment.Start)
	} else if lines := codeBlock.Lines(); lines.Len() > 0 {
		fenceLine = m.previousLineStart(lines.At(0).Start)
	}

	fenceChar, fenceLength := byte('`'), 3
	if fenceLine != unresolved {
		if c, n := m.extractFence(fenceLine); c != 0 {
			fenceChar, fenceLength = c, n
		}
		node.Range.StartOffset = fenceLine
		node.Range.EndOffset = max(node.Range.EndOffset, m.lineEnd(fenceLine))
	}

	// Include the closing fence line when present.
	if node.Range.EndOffset != unresolved && node.Range.EndOffset < len(m.content) {
		closing := m.nextLineStart(node.Range.EndOffset)
		if c, n := m.extractFence(closing); c == fenceChar && n >= fenceLength {
			node.Range.EndOffset = m.lineEnd(closing)
		}
	}

	node.Block.WithCodeBlock(&mdast.CodeBlockAttrs{
		FenceChar:   fenceChar,
		FenceLength: fenceLength,
		Info:        info,
	})

	return node
}

// extractFence returns the fence character and length of the line at start,
// skipping indentation and blockquote markers.
// Non-fence lines return (0, 0).
func (m *mapper) extractFence(start int) (byte, int) {
	end := m.lineEnd(start)
	pos := start
	for pos < end && (m.content[pos] == ' ' || m.content[pos] == '\t' || m.content[pos] == '>') {
		pos++
	}
	if pos >= end {
		return 0, 0
	}

	fenceChar := m.content[pos]
	if fenceChar != '`' && fenceChar != '~' {
		return 0, 0
	}

	length := 0
	for pos < end && m.content[pos] == fenceChar {
		length++
		pos++
	}
	if length < 3 {
		return 0, 0
	}

	return fenceChar, length
}

// mapTableCells flattens the inline content of each cell into the row.
func (m *mapper) mapTableCells(gmRow ast.Node, row *mdast.Node) {
	for cell := gmRow.FirstChild(); cell != nil; cell = cell.NextSibling() {
		cursor := unresolved
		if lines := cell.Lines(); lines != nil && lines.Len() > 0 {
			seg := lines.At(0)
			cursor = seg.Start
			if row.Range.StartOffset == unresolved {
				row.Range.StartOffset = m.lineStart(seg.Start)
			}
			row.Range.EndOffset = max(row.Range.EndOffset, m.segmentLineEnd(lines.At(lines.Len()-1)))
		}
		m.mapInlineRun(cell, row, cursor)
	}
}

// lineStart returns the start of the line containing offset.
func (m *mapper) lineStart(offset int) int {
	return m.doc.LineStartAt(offset)
}

// lineEnd returns the offset of the newline ending the line containing offset.
func (m *mapper) lineEnd(offset int) int {
	return m.doc.Lines[m.doc.LineIndex(offset)].NewlineStart
}

// segmentLineEnd returns the end of the line the segment finishes on.
func (m *mapper) segmentLineEnd(seg text.Segment) int {
	last := seg.Stop - 1
	if last < seg.Start {
		last = seg.Start
	}
	return m.lineEnd(last)
}

// previousLineStart returns the start of the line before the one containing offset.
func (m *mapper) previousLineStart(offset int) int {
	idx := m.doc.LineIndex(offset)
	if idx == 0 {
		return 0
	}
	return m.doc.Lines[idx-1].StartOffset
}

// nextLineStart returns the start of the line after the one containing offset.
func (m *mapper) nextLineStart(offset int) int {
	idx := m.doc.LineIndex(offset)
	if idx+1 >= len(m.doc.Lines) {
		return m.doc.Lines[idx].StartOffset
	}
	return m.doc.Lines[idx+1].StartOffset
}

// nextNonBlankLine returns the start of the first non-blank line at or after offset.
func (m *mapper) nextNonBlankLine(offset int) int {
	for idx := m.doc.LineIndex(offset); idx < len(m.doc.Lines); idx++ {
		line := m.doc.Lines[idx]
		if len(bytes.TrimSpace(m.content[line.StartOffset:line.NewlineStart])) > 0 {
			return line.StartOffset
		}
	}
	return len(m.content)
}
