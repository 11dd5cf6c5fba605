package mdast_test

import (
	"errors"
	"testing"

	"github.com/yaklabco/mdedit/pkg/mdast"
)

// Document
//   Heading
//     Text
//   List
//     ListItem
//       Paragraph
//         Emphasis
//           Text
func buildTestTree() *mdast.Node {
	root := mdast.NewNode(mdast.NodeDocument)
	heading := mdast.NewNode(mdast.NodeHeading)
	mdast.AppendChild(heading, mdast.NewNode(mdast.NodeText))
	mdast.AppendChild(root, heading)

	list := mdast.NewNode(mdast.NodeList)
	item := mdast.NewNode(mdast.NodeListItem)
	para := mdast.NewNode(mdast.NodeParagraph)
	emph := mdast.NewNode(mdast.NodeEmphasis)
	mdast.AppendChild(emph, mdast.NewNode(mdast.NodeText))
	mdast.AppendChild(para, emph)
	mdast.AppendChild(item, para)
	mdast.AppendChild(list, item)
	mdast.AppendChild(root, list)

	return root
}

func kinds(nodes []*mdast.Node) []mdast.NodeKind {
	out := make([]mdast.NodeKind, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.Kind)
	}
	return out
}

func equalKinds(a, b []mdast.NodeKind) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestWalk(t *testing.T) {
	t.Parallel()

	var visited []*mdast.Node
	err := mdast.Walk(buildTestTree(), func(n *mdast.Node) error {
		visited = append(visited, n)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []mdast.NodeKind{
		mdast.NodeDocument, mdast.NodeHeading, mdast.NodeText, mdast.NodeList,
		mdast.NodeListItem, mdast.NodeParagraph, mdast.NodeEmphasis, mdast.NodeText,
	}
	if got := kinds(visited); !equalKinds(got, want) {
		t.Errorf("visit order = %v, want %v", got, want)
	}

	if err := mdast.Walk(nil, func(*mdast.Node) error { return nil }); err != nil {
		t.Errorf("nil root should walk cleanly: %v", err)
	}
}

func TestWalk_SkipChildrenAndStop(t *testing.T) {
	t.Parallel()

	count := 0
	err := mdast.Walk(buildTestTree(), func(n *mdast.Node) error {
		count++
		if n.Kind == mdast.NodeList {
			return mdast.ErrSkipChildren
		}
		return nil
	})
	if err != nil {
		t.Fatalf("skip should not surface as error: %v", err)
	}
	if count != 4 {
		t.Errorf("visited %d nodes, want 4", count)
	}

	stop := errors.New("stop")
	err = mdast.Walk(buildTestTree(), func(n *mdast.Node) error {
		if n.Kind == mdast.NodeHeading {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) {
		t.Errorf("expected stop error, got %v", err)
	}
}

func TestWalkWithContext(t *testing.T) {
	t.Parallel()

	var events []string
	enter := func(n *mdast.Node) error {
		events = append(events, "+"+n.Kind.String())
		if n.Kind == mdast.NodeHeading {
			return mdast.ErrSkipChildren
		}
		return nil
	}
	leave := func(n *mdast.Node) error {
		events = append(events, "-"+n.Kind.String())
		return nil
	}

	root := mdast.NewNode(mdast.NodeDocument)
	heading := mdast.NewNode(mdast.NodeHeading)
	mdast.AppendChild(heading, mdast.NewNode(mdast.NodeText))
	mdast.AppendChild(root, heading)

	if err := mdast.WalkWithContext(root, enter, leave); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"+Document", "+Heading", "-Heading", "-Document"}
	if len(events) != len(want) {
		t.Fatalf("events = %v, want %v", events, want)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, events[i], want[i])
		}
	}

	if err := mdast.WalkWithContext(root, nil, nil); err != nil {
		t.Errorf("nil callbacks should be allowed: %v", err)
	}
}

func TestWalkBlocksAndInlines(t *testing.T) {
	t.Parallel()

	var blocks []*mdast.Node
	if err := mdast.WalkBlocks(buildTestTree(), func(n *mdast.Node) error {
		blocks = append(blocks, n)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	wantBlocks := []mdast.NodeKind{
		mdast.NodeDocument, mdast.NodeHeading, mdast.NodeList, mdast.NodeListItem, mdast.NodeParagraph,
	}
	if got := kinds(blocks); !equalKinds(got, wantBlocks) {
		t.Errorf("blocks = %v, want %v", got, wantBlocks)
	}

	var inlines []*mdast.Node
	if err := mdast.WalkInlines(buildTestTree(), func(n *mdast.Node) error {
		inlines = append(inlines, n)
		return nil
	}); err != nil {
		t.Fatal(err)
	}
	if len(inlines) != 3 {
		t.Errorf("found %d inlines, want 3", len(inlines))
	}
}

func TestFind(t *testing.T) {
	t.Parallel()

	root := buildTestTree()

	if got := len(mdast.FindByKind(root, mdast.NodeText)); got != 2 {
		t.Errorf("FindByKind(Text) = %d, want 2", got)
	}

	first := mdast.FindFirst(root, func(n *mdast.Node) bool { return n.Kind == mdast.NodeText })
	if first == nil || first.Parent.Kind != mdast.NodeHeading {
		t.Error("FindFirst should return the heading text")
	}

	if mdast.FindFirst(root, func(n *mdast.Node) bool { return n.Kind == mdast.NodeTable }) != nil {
		t.Error("expected no table")
	}
}
