// Package mdast provides the Markdown block tree consumed by the editing surface.
// It defines an immutable view of one parse of the document text:
//   - Document: the text, its line table and the AST root
//   - Node: block and inline nodes carrying byte ranges into the text
package mdast

import "fmt"

// Document is an immutable snapshot of one parse of the document text.
// A Document is never mutated after it has been published.
type Document struct {
	// Text is the document content the tree was built from.
	Text []byte

	// Lines contains metadata for each line in Text.
	Lines []LineInfo

	// Root is the AST root node (NodeDocument).
	Root *Node

	// Flavor is the Markdown flavor used to build the tree.
	Flavor string

	// Generation orders published trees; zero means unpublished.
	Generation uint64
}

// LineInfo holds metadata for a single line.
type LineInfo struct {
	// StartOffset is the byte index of the line start.
	StartOffset int

	// NewlineStart is the byte index where newline characters begin.
	// For lines without a trailing newline (e.g., last line), this equals EndOffset.
	NewlineStart int

	// EndOffset is the byte index just after the newline (or end of text).
	EndOffset int
}

// NewDocument creates a Document shell for text.
// It builds the line index and an empty root; parsers fill in the tree.
func NewDocument(text []byte) *Document {
	return &Document{
		Text:  text,
		Lines: BuildLines(text),
		Root:  NewNode(NodeDocument),
	}
}

// WithGeneration returns a shallow copy of the document stamped with gen.
func (d *Document) WithGeneration(gen uint64) *Document {
	cp := *d
	cp.Generation = gen
	return &cp
}

// IsEmpty reports whether the tree has no blocks.
func (d *Document) IsEmpty() bool {
	return d == nil || d.Root == nil || d.Root.FirstChild == nil
}

// CheckOrder verifies that block source offsets never decrease in document
// order and that every block lies inside the text.
func (d *Document) CheckOrder() error {
	last := 0
	return WalkBlocks(d.Root, func(n *Node) error {
		if n.Kind == NodeDocument {
			return nil
		}
		off := n.SourceOffset()
		if off < last {
			return fmt.Errorf("%s at offset %d precedes offset %d", n.Kind, off, last)
		}
		if off > len(d.Text) {
			return fmt.Errorf("%s at offset %d is past end of text (%d)", n.Kind, off, len(d.Text))
		}
		last = off
		return nil
	})
}
