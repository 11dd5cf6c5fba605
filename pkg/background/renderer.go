// Package background computes background bands for block-level Markdown
// constructs: code blocks, blockquotes, HTML blocks and tables.
package background

import (
	"sort"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/mdedit/pkg/mdast"
	"github.com/yaklabco/mdedit/pkg/theme"
)

// TextView is the part of the editing surface the renderer clips against.
type TextView interface {
	// LineCount returns the number of lines currently in the document.
	LineCount() int
}

// Band is a background rectangle spanning whole lines, 1-based and inclusive.
type Band struct {
	FirstLine int
	LastLine  int
	Class     theme.Class
	Color     lipgloss.Color

	// Depth is the nesting level of the block, 1 for top-level blocks.
	Depth int
}

// Contains reports whether the band covers line.
func (b Band) Contains(line int) bool {
	return line >= b.FirstLine && line <= b.LastLine
}

// blockRange is a band computed from a tree, before clipping and theming.
type blockRange struct {
	first, last int
	class       theme.Class
	depth       int
}

//nolint:gochecknoglobals // Read-only lookup table.
var bandClasses = map[mdast.NodeKind]theme.Class{
	mdast.NodeCodeBlock:  theme.ClassCodeBlock,
	mdast.NodeBlockquote: theme.ClassBlockquote,
	mdast.NodeHTMLBlock:  theme.ClassHTML,
	mdast.NodeTable:      theme.ClassTable,
}

// Renderer computes bands from the latest tree it was given.
type Renderer struct {
	mu sync.RWMutex

	doc    *mdast.Document
	theme  *theme.Theme
	ranges []blockRange
}

// New creates a renderer. A nil theme selects the dark theme.
func New(th *theme.Theme) *Renderer {
	if th == nil {
		th = theme.Dark()
	}
	return &Renderer{theme: th}
}

// UpdateTree replaces the tree. Trees older than the one already held are ignored.
func (r *Renderer) UpdateTree(doc *mdast.Document) {
	if doc == nil {
		return
	}

	ranges := blockRanges(doc)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.doc != nil && doc.Generation < r.doc.Generation {
		return
	}
	r.doc = doc
	r.ranges = ranges
}

// OnThemeChanged swaps the theme that colors the bands.
func (r *Renderer) OnThemeChanged(th *theme.Theme) {
	if th == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.theme = th
}

// Generation returns the generation of the tree in use, or 0 when none.
func (r *Renderer) Generation() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.doc == nil {
		return 0
	}
	return r.doc.Generation
}

// Bands returns the bands intersecting [firstLine, lastLine], clipped to the
// view's current line count. Bands whose class has no theme color are skipped.
// The result is ordered by first line, outer blocks before inner ones.
func (r *Renderer) Bands(view TextView, firstLine, lastLine int) []Band {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lineCount := view.LineCount()
	if lineCount < 1 || len(r.ranges) == 0 {
		return nil
	}

	firstLine = max(firstLine, 1)
	lastLine = min(lastLine, lineCount)

	var bands []Band
	for _, br := range r.ranges {
		first := max(br.first, firstLine)
		last := min(br.last, lastLine)
		if first > last {
			continue
		}

		color, ok := r.theme.BandColor(br.class)
		if !ok {
			continue
		}

		bands = append(bands, Band{
			FirstLine: first,
			LastLine:  last,
			Class:     br.class,
			Color:     color,
			Depth:     br.depth,
		})
	}

	return bands
}

// BandAt returns the innermost band covering line, if any.
func (r *Renderer) BandAt(view TextView, line int) (Band, bool) {
	bands := r.Bands(view, line, line)
	if len(bands) == 0 {
		return Band{}, false
	}
	return bands[len(bands)-1], true
}

// blockRanges computes the line range of every banded block in doc.
func blockRanges(doc *mdast.Document) []blockRange {
	var ranges []blockRange
	collectRanges(doc, doc.Root, 0, &ranges)

	sort.SliceStable(ranges, func(i, j int) bool {
		if ranges[i].first != ranges[j].first {
			return ranges[i].first < ranges[j].first
		}
		return ranges[i].depth < ranges[j].depth
	})
	return ranges
}

func collectRanges(doc *mdast.Document, parent *mdast.Node, depth int, out *[]blockRange) {
	for n := parent.FirstChild; n != nil; n = n.Next {
		if !n.IsBlock() {
			continue
		}

		if class, ok := bandClasses[n.Kind]; ok {
			if br, ok := lineRange(doc, n, parent); ok {
				br.class = class
				br.depth = depth + 1
				*out = append(*out, br)
			}
		}

		collectRanges(doc, n, depth+1, out)
	}
}

// lineRange maps a block to lines: from its source offset up to the next
// sibling's offset, or the parent's end for the last child, with trailing
// blank lines trimmed.
func lineRange(doc *mdast.Document, n, parent *mdast.Node) (blockRange, bool) {
	start := n.SourceOffset()
	end := parent.Range.EndOffset
	if parent.Kind == mdast.NodeDocument {
		end = len(doc.Text)
	}
	if next := nextBlock(n); next != nil {
		end = next.SourceOffset()
	}

	if start < 0 || start > len(doc.Text) {
		return blockRange{}, false
	}
	end = min(max(end, start), len(doc.Text))

	first := doc.LineIndex(start) + 1
	last := first
	if end > start {
		last = doc.LineIndex(end-1) + 1
	}

	for last > first && doc.IsBlankLine(last) {
		last--
	}

	return blockRange{first: first, last: last}, true
}

func nextBlock(n *mdast.Node) *mdast.Node {
	for next := n.Next; next != nil; next = next.Next {
		if next.IsBlock() {
			return next
		}
	}
	return nil
}
