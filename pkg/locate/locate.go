// Package locate finds the Markdown block shown at the top of a viewport.
//
// The result is a block number and a line offset into that block, which a
// preview pane uses to scroll to the matching rendered element.
package locate

import (
	"math"

	"github.com/yaklabco/mdedit/pkg/mdast"
)

// LastBlock is the block number reported when the end of the document is in view.
const LastBlock = math.MaxInt

// BlockRef identifies a navigable block and a line offset inside it.
type BlockRef struct {
	// Number is the 1-based index of the block, or LastBlock.
	Number int

	// Offset is the number of lines between the block's first line and the
	// line at the top of the viewport.
	Offset int
}

// IsLast reports whether the reference points at the end of the document.
func (r BlockRef) IsLast() bool {
	return r.Number == LastBlock
}

// LineLocator maps a vertical scroll position to a document line.
type LineLocator interface {
	// LineAtVisualTop returns the 1-based document line drawn at y.
	LineAtVisualTop(y int) int
}

// Locate returns the block at the top of the viewport scrolled to scrollY.
// scrollable is the largest scroll position; reaching it reports LastBlock.
//
// Blocks are counted in document order. Top-level blocks count once each;
// list items count only when their own list is loose, and lists nested inside
// list items are visited the same way.
func Locate(scrollY, scrollable int, view LineLocator, doc *mdast.Document) BlockRef {
	if doc.IsEmpty() {
		return BlockRef{Number: 1}
	}
	if scrollY >= scrollable {
		return BlockRef{Number: LastBlock}
	}

	line := min(max(view.LineAtVisualTop(scrollY), 1), doc.LineCount())
	target, _ := doc.LineStart(line)

	number := 0
	startLine := line
	for _, block := range Blocks(doc) {
		if block.SourceOffset() > target {
			break
		}
		if !Counts(block) {
			continue
		}
		number++
		startLine, _ = doc.LineAt(block.SourceOffset())
	}

	if number == 0 {
		return BlockRef{Number: 1}
	}
	return BlockRef{Number: number, Offset: line - startLine}
}

// Blocks returns the navigable blocks of doc in document order: top-level
// blocks, the items of every list, and lists nested directly in list items.
func Blocks(doc *mdast.Document) []*mdast.Node {
	if doc.IsEmpty() {
		return nil
	}

	var blocks []*mdast.Node
	for n := doc.Root.FirstChild; n != nil; n = n.Next {
		if !n.IsBlock() {
			continue
		}
		blocks = append(blocks, n)
		if n.Kind == mdast.NodeList {
			blocks = appendItems(blocks, n)
		}
	}
	return blocks
}

func appendItems(blocks []*mdast.Node, list *mdast.Node) []*mdast.Node {
	for item := list.FirstChild; item != nil; item = item.Next {
		if item.Kind != mdast.NodeListItem {
			continue
		}
		blocks = append(blocks, item)
		for child := item.FirstChild; child != nil; child = child.Next {
			if child.Kind == mdast.NodeList {
				blocks = append(blocks, child)
				blocks = appendItems(blocks, child)
			}
		}
	}
	return blocks
}

// Counts reports whether block advances the block number. Items of a tight
// list fold into the list itself; tightness is read from the item's own list.
func Counts(block *mdast.Node) bool {
	if block.Kind != mdast.NodeListItem {
		return true
	}
	return block.Parent == nil || !block.Parent.IsTightList()
}
