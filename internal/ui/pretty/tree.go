package pretty

import (
	"fmt"

	"github.com/charmbracelet/lipgloss/tree"

	"github.com/yaklabco/mdedit/pkg/locate"
	"github.com/yaklabco/mdedit/pkg/mdast"
)

// TreeOptions controls syntax tree rendering.
type TreeOptions struct {
	// Inlines includes inline nodes; otherwise only blocks are shown.
	Inlines bool

	// Numbers prefixes navigable blocks with their block number.
	Numbers bool
}

// FormatTree renders the syntax tree of doc with line:column ranges.
func (s *Styles) FormatTree(doc *mdast.Document, opts TreeOptions) string {
	if doc == nil || doc.Root == nil {
		return s.Dim.Render("(no tree)") + "\n"
	}

	numbers := map[*mdast.Node]int{}
	if opts.Numbers {
		n := 0
		for _, block := range locate.Blocks(doc) {
			if locate.Counts(block) {
				n++
				numbers[block] = n
			}
		}
	}

	root := tree.Root(s.nodeLabel(doc, doc.Root, numbers)).
		EnumeratorStyle(s.Dim)
	s.addChildren(root, doc, doc.Root, numbers, opts)
	return root.String() + "\n"
}

// addChildren adds the visible children of parent to t and reports how many.
func (s *Styles) addChildren(t *tree.Tree, doc *mdast.Document, parent *mdast.Node, numbers map[*mdast.Node]int, opts TreeOptions) int {
	added := 0
	for n := parent.FirstChild; n != nil; n = n.Next {
		if !opts.Inlines && !n.IsBlock() {
			continue
		}
		label := s.nodeLabel(doc, n, numbers)
		sub := tree.Root(label)
		if s.addChildren(sub, doc, n, numbers, opts) > 0 {
			t.Child(sub)
		} else {
			t.Child(label)
		}
		added++
	}
	return added
}

func (s *Styles) nodeLabel(doc *mdast.Document, n *mdast.Node, numbers map[*mdast.Node]int) string {
	label := s.TreeKind.Render(n.Kind.String())
	if level := n.HeadingLevel(); level > 0 {
		label += s.Dim.Render(fmt.Sprintf(" h%d", level))
	}
	if n.Kind == mdast.NodeList {
		if n.IsTightList() {
			label += s.Dim.Render(" tight")
		} else {
			label += s.Dim.Render(" loose")
		}
	}

	pos := doc.Position(n)
	label += " " + s.TreeRange.Render(fmt.Sprintf("%d:%d-%d:%d",
		pos.StartLine, pos.StartColumn, pos.EndLine, pos.EndColumn))

	if num, ok := numbers[n]; ok {
		label = s.TreeMark.Render(fmt.Sprintf("#%d", num)) + " " + label
	}
	return label
}
