package locate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdedit/pkg/locate"
	"github.com/yaklabco/mdedit/pkg/mdast"
	"github.com/yaklabco/mdedit/pkg/parser/goldmark"
)

// topLine reports the same document line for every scroll position.
type topLine int

func (l topLine) LineAtVisualTop(int) int { return int(l) }

func parse(t *testing.T, src string) *mdast.Document {
	t.Helper()

	doc, err := goldmark.New(goldmark.FlavorCommonMark).Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	return doc
}

func paragraph(start, end int) *mdast.Node {
	return mdast.NewBlock(mdast.NodeParagraph, start, end)
}

func list(tight bool, start, end int, items ...*mdast.Node) *mdast.Node {
	n := mdast.NewBlock(mdast.NodeList, start, end)
	n.Block.WithList(&mdast.ListAttrs{BulletMarker: "-", Tight: tight})
	for _, item := range items {
		mdast.AppendChild(n, item)
	}
	return n
}

func item(start, end int, children ...*mdast.Node) *mdast.Node {
	n := mdast.NewBlock(mdast.NodeListItem, start, end)
	for _, child := range children {
		mdast.AppendChild(n, child)
	}
	return n
}

func document(text string, blocks ...*mdast.Node) *mdast.Document {
	doc := mdast.NewDocument([]byte(text))
	doc.Root.Range = mdast.SourceRange{StartOffset: 0, EndOffset: len(text)}
	for _, b := range blocks {
		mdast.AppendChild(doc.Root, b)
	}
	return doc
}

func TestLocate_BlockOffsets(t *testing.T) {
	t.Parallel()

	// Lines start at 0, 19, 20, 30, 44 and 45.
	text := "aaaaaaaaaaaaaaaaaa\n\nbbbbbbbbb\nccccccccccccc\n\nddd"
	doc := document(text, paragraph(0, 18), paragraph(20, 43), paragraph(45, 48))

	tests := []struct {
		name string
		line int
		want locate.BlockRef
	}{
		{name: "first block", line: 1, want: locate.BlockRef{Number: 1, Offset: 0}},
		{name: "blank line after first", line: 2, want: locate.BlockRef{Number: 1, Offset: 1}},
		{name: "start of second", line: 3, want: locate.BlockRef{Number: 2, Offset: 0}},
		{name: "inside second", line: 4, want: locate.BlockRef{Number: 2, Offset: 1}},
		{name: "third", line: 6, want: locate.BlockRef{Number: 3, Offset: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, locate.Locate(0, 100, topLine(tt.line), doc))
		})
	}
}

func TestLocate_EndOfDocument(t *testing.T) {
	t.Parallel()

	doc := parse(t, "# Title\n\nSome text\n")

	for _, scrollY := range []int{40, 41, 1000} {
		ref := locate.Locate(scrollY, 40, topLine(1), doc)
		assert.Equal(t, locate.BlockRef{Number: locate.LastBlock}, ref)
		assert.True(t, ref.IsLast())
	}
}

func TestLocate_EmptyTree(t *testing.T) {
	t.Parallel()

	assert.Equal(t, locate.BlockRef{Number: 1}, locate.Locate(0, 10, topLine(1), nil))
	assert.Equal(t, locate.BlockRef{Number: 1}, locate.Locate(0, 0, topLine(1), parse(t, "")))
	assert.Equal(t, locate.BlockRef{Number: 1}, locate.Locate(5, 0, topLine(1), parse(t, "\n\n")))
}

func TestLocate_TitleScenario(t *testing.T) {
	t.Parallel()

	doc := parse(t, "# Title\n\nSome text")
	require.GreaterOrEqual(t, doc.Root.ChildCount(), 2)

	assert.Equal(t, locate.BlockRef{Number: 2, Offset: 0}, locate.Locate(2, 10, topLine(3), doc))
	assert.Equal(t, locate.BlockRef{Number: 1, Offset: 0}, locate.Locate(0, 10, topLine(1), doc))
}

func TestLocate_LeadingBlankLines(t *testing.T) {
	t.Parallel()

	doc := parse(t, "\n\n# Heading\n")
	assert.Equal(t, locate.BlockRef{Number: 1}, locate.Locate(0, 10, topLine(1), doc))
	assert.Equal(t, locate.BlockRef{Number: 1}, locate.Locate(0, 10, topLine(3), doc))
}

func TestLocate_ClampsViewLine(t *testing.T) {
	t.Parallel()

	doc := parse(t, "one\n\ntwo")
	assert.Equal(t, locate.BlockRef{Number: 2}, locate.Locate(0, 10, topLine(99), doc))
	assert.Equal(t, locate.BlockRef{Number: 1}, locate.Locate(0, 10, topLine(-3), doc))
}

func TestLocate_TightListItemsDoNotCount(t *testing.T) {
	t.Parallel()

	// Lines start at 0, 4, 8, 12 and 13.
	text := "- a\n- b\n- c\n\npara"
	build := func(tight bool) *mdast.Document {
		return document(text,
			list(tight, 0, 11, item(0, 3), item(4, 7), item(8, 11)),
			paragraph(13, 17),
		)
	}

	tight := build(true)
	loose := build(false)

	assert.Equal(t, locate.BlockRef{Number: 2}, locate.Locate(0, 10, topLine(5), tight))
	assert.Equal(t, locate.BlockRef{Number: 5}, locate.Locate(0, 10, topLine(5), loose))

	assert.Equal(t, locate.BlockRef{Number: 1, Offset: 2}, locate.Locate(0, 10, topLine(3), tight))
	assert.Equal(t, locate.BlockRef{Number: 4, Offset: 0}, locate.Locate(0, 10, topLine(3), loose))
}

func TestLocate_LooseListAndFirstItemShareALine(t *testing.T) {
	t.Parallel()

	// The list and its first item both start at offset 0. Every counted
	// block at or before the top line is included, so a loose list's first
	// line reports the item, not the list.
	text := "- a\n\n- b\n"
	build := func(tight bool) *mdast.Document {
		return document(text, list(tight, 0, 9, item(0, 3), item(5, 8)))
	}

	assert.Equal(t, locate.BlockRef{Number: 2}, locate.Locate(0, 10, topLine(1), build(false)))
	assert.Equal(t, locate.BlockRef{Number: 1}, locate.Locate(0, 10, topLine(1), build(true)))
	assert.Equal(t, locate.BlockRef{Number: 3}, locate.Locate(0, 10, topLine(3), build(false)))
	assert.Equal(t, locate.BlockRef{Number: 1, Offset: 2}, locate.Locate(0, 10, topLine(3), build(true)))
}

func TestLocate_SiblingListsKeepTheirOwnTightness(t *testing.T) {
	t.Parallel()

	// Lines start at 0, 4, 8, 9, 13, 14, 18 and 19.
	text := "- a\n- b\n\n* c\n\n* d\n\npara"
	build := func(firstTight, secondTight bool) *mdast.Document {
		return document(text,
			list(firstTight, 0, 7, item(0, 3), item(4, 7)),
			list(secondTight, 9, 17, item(9, 12), item(14, 17)),
			paragraph(19, 23),
		)
	}

	tightThenLoose := build(true, false)
	looseThenTight := build(false, true)

	tests := []struct {
		name string
		doc  *mdast.Document
		line int
		want locate.BlockRef
	}{
		{name: "tight first list folds", doc: tightThenLoose, line: 2, want: locate.BlockRef{Number: 1, Offset: 1}},
		{name: "loose second list counts items", doc: tightThenLoose, line: 6, want: locate.BlockRef{Number: 4}},
		{name: "after both, tight then loose", doc: tightThenLoose, line: 8, want: locate.BlockRef{Number: 5}},
		{name: "loose first list counts items", doc: looseThenTight, line: 2, want: locate.BlockRef{Number: 3}},
		{name: "tight second list folds", doc: looseThenTight, line: 6, want: locate.BlockRef{Number: 4, Offset: 2}},
		{name: "after both, loose then tight", doc: looseThenTight, line: 8, want: locate.BlockRef{Number: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, locate.Locate(0, 100, topLine(tt.line), tt.doc))
		})
	}
}

func TestLocate_NestedListInTightItem(t *testing.T) {
	t.Parallel()

	// Lines start at 0, 4, 10, 11 and 17.
	text := "- a\n  - b\n\n  - c\n"
	nested := list(false, 4, 16, item(4, 9), item(11, 16))
	doc := document(text, list(true, 0, 16, item(0, 16, paragraph(2, 3), nested)))

	blocks := locate.Blocks(doc)
	kinds := make([]mdast.NodeKind, len(blocks))
	for i, b := range blocks {
		kinds[i] = b.Kind
	}
	assert.Equal(t, []mdast.NodeKind{
		mdast.NodeList, mdast.NodeListItem, mdast.NodeList, mdast.NodeListItem, mdast.NodeListItem,
	}, kinds)

	assert.Equal(t, locate.BlockRef{Number: 3}, locate.Locate(0, 10, topLine(2), doc))
	assert.Equal(t, locate.BlockRef{Number: 3, Offset: 1}, locate.Locate(0, 10, topLine(3), doc))
	assert.Equal(t, locate.BlockRef{Number: 4}, locate.Locate(0, 10, topLine(4), doc))
}

func TestLocate_ParsedLists(t *testing.T) {
	t.Parallel()

	tight := parse(t, "- a\n- b\n- c\n\npara\n")
	loose := parse(t, "- a\n\n- b\n\n- c\n\npara\n")

	lists := mdast.FindByKind(tight.Root, mdast.NodeList)
	require.Len(t, lists, 1)
	require.True(t, lists[0].IsTightList())

	assert.Equal(t, locate.BlockRef{Number: 2}, locate.Locate(0, 10, topLine(5), tight))
	assert.Equal(t, locate.BlockRef{Number: 5}, locate.Locate(0, 10, topLine(7), loose))
}
