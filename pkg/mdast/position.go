package mdast

// SourceRange represents a byte range in the source content.
type SourceRange struct {
	// StartOffset is the byte index where the range begins (inclusive).
	StartOffset int

	// EndOffset is the byte index where the range ends (exclusive).
	EndOffset int
}

// Len returns the length of the range in bytes.
func (r SourceRange) Len() int {
	return r.EndOffset - r.StartOffset
}

// IsEmpty returns true if the range has zero length.
func (r SourceRange) IsEmpty() bool {
	return r.StartOffset >= r.EndOffset
}

// Contains returns true if the given offset is within this range.
func (r SourceRange) Contains(offset int) bool {
	return offset >= r.StartOffset && offset < r.EndOffset
}

// Overlaps reports whether the two ranges share at least one byte.
func (r SourceRange) Overlaps(other SourceRange) bool {
	return r.StartOffset < other.EndOffset && other.StartOffset < r.EndOffset
}

// Clip returns the range restricted to [0, limit).
func (r SourceRange) Clip(limit int) SourceRange {
	if r.StartOffset < 0 {
		r.StartOffset = 0
	}
	if r.EndOffset > limit {
		r.EndOffset = limit
	}
	if r.EndOffset < r.StartOffset {
		r.EndOffset = r.StartOffset
	}
	return r
}

// Position represents a 1-based line and column in a file.
type Position struct {
	Line   int
	Column int
}

// IsValid returns true if this position has valid (positive) values.
func (p Position) IsValid() bool {
	return p.Line > 0 && p.Column > 0
}

// SourcePosition represents a range in terms of line/column positions.
type SourcePosition struct {
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// Start returns the start position.
func (sp SourcePosition) Start() Position {
	return Position{Line: sp.StartLine, Column: sp.StartColumn}
}

// End returns the end position.
func (sp SourcePosition) End() Position {
	return Position{Line: sp.EndLine, Column: sp.EndColumn}
}

// IsSingleLine returns true if start and end are on the same line.
func (sp SourcePosition) IsSingleLine() bool {
	return sp.StartLine == sp.EndLine
}

// Position returns the line/column range of a node within doc.
func (d *Document) Position(n *Node) SourcePosition {
	startLine, startCol := d.LineAt(n.Range.StartOffset)
	endLine, endCol := d.LineAt(n.Range.EndOffset)

	return SourcePosition{
		StartLine:   startLine,
		StartColumn: startCol,
		EndLine:     endLine,
		EndColumn:   endCol,
	}
}

// NodeText returns the source text covered by the node.
// Returns nil if the node range lies outside the document.
func (d *Document) NodeText(n *Node) []byte {
	r := n.Range
	if r.StartOffset < 0 || r.EndOffset > len(d.Text) || r.IsEmpty() {
		return nil
	}
	return d.Text[r.StartOffset:r.EndOffset]
}
