package goldmark

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdedit/pkg/mdast"
)

func parse(t *testing.T, flavor, src string) *mdast.Document {
	t.Helper()

	doc, err := New(flavor).Parse(context.Background(), []byte(src))
	require.NoError(t, err)
	require.NotNil(t, doc)

	return doc
}

func TestMapper_TopLevelBlocks(t *testing.T) {
	t.Parallel()

	doc := parse(t, FlavorCommonMark, "# Title\n\nSome text")
	blocks := doc.Root.Children()

	require.Len(t, blocks, 2)
	assert.Equal(t, mdast.NodeHeading, blocks[0].Kind)
	assert.Equal(t, 1, blocks[0].HeadingLevel())
	assert.Equal(t, 0, blocks[0].SourceOffset())
	assert.Equal(t, mdast.NodeParagraph, blocks[1].Kind)
	assert.Equal(t, 9, blocks[1].SourceOffset())
}

func TestMapper_Lists(t *testing.T) {
	t.Parallel()

	t.Run("tight", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, FlavorCommonMark, "- a\n- b\n")
		list := doc.Root.FirstChild
		require.Equal(t, mdast.NodeList, list.Kind)
		assert.True(t, list.IsTightList())
		assert.Equal(t, "-", list.Block.List.BulletMarker)

		items := list.Children()
		require.Len(t, items, 2)
		assert.Equal(t, 0, items[0].SourceOffset())
		assert.Equal(t, 4, items[1].SourceOffset())
		assert.Equal(t, mdast.NodeParagraph, items[0].FirstChild.Kind)
	})

	t.Run("loose", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, FlavorCommonMark, "1. a\n\n2. b\n")
		list := doc.Root.FirstChild
		require.Equal(t, mdast.NodeList, list.Kind)
		assert.False(t, list.IsTightList())
		assert.True(t, list.Block.List.Ordered)
		assert.Equal(t, 1, list.Block.List.StartNumber)
		assert.Equal(t, 6, list.Children()[1].SourceOffset())
	})

	t.Run("nested", func(t *testing.T) {
		t.Parallel()

		doc := parse(t, FlavorCommonMark, "- a\n  - b\n")
		outer := doc.Root.FirstChild
		inner := mdast.FindByKind(outer.FirstChild, mdast.NodeList)
		require.Len(t, inner, 1)
		assert.Equal(t, 4, inner[0].SourceOffset())
	})
}

func TestMapper_FencedCodeBlock(t *testing.T) {
	t.Parallel()

	src := "intro\n\n```go\ncode\n```\n\nafter\n"
	doc := parse(t, FlavorCommonMark, src)
	blocks := doc.Root.Children()
	require.Len(t, blocks, 3)

	code := blocks[1]
	require.Equal(t, mdast.NodeCodeBlock, code.Kind)
	assert.Equal(t, 7, code.SourceOffset())
	assert.Equal(t, "go", code.Block.CodeBlock.Info)
	assert.Equal(t, byte('`'), code.Block.CodeBlock.FenceChar)
	assert.Equal(t, 3, code.Block.CodeBlock.FenceLength)
	assert.Equal(t, "```go\ncode\n```", string(doc.NodeText(code)))
	assert.Equal(t, 23, blocks[2].SourceOffset())
}

func TestMapper_FencedCodeBlockWithoutInfo(t *testing.T) {
	t.Parallel()

	doc := parse(t, FlavorCommonMark, "~~~~\nx\n~~~~\n")
	code := doc.Root.FirstChild
	require.Equal(t, mdast.NodeCodeBlock, code.Kind)
	assert.Equal(t, 0, code.SourceOffset())
	assert.Equal(t, byte('~'), code.Block.CodeBlock.FenceChar)
	assert.Equal(t, 4, code.Block.CodeBlock.FenceLength)
}

func TestMapper_ThematicBreakIsPositioned(t *testing.T) {
	t.Parallel()

	doc := parse(t, FlavorCommonMark, "para\n\n---\n\nafter")
	blocks := doc.Root.Children()
	require.Len(t, blocks, 3)
	assert.Equal(t, mdast.NodeThematicBreak, blocks[1].Kind)
	assert.Equal(t, 6, blocks[1].SourceOffset())
	assert.Equal(t, 11, blocks[2].SourceOffset())
}

func TestMapper_BlockquoteAndIndentedCode(t *testing.T) {
	t.Parallel()

	doc := parse(t, FlavorCommonMark, "> quote\n\n    code\n")
	blocks := doc.Root.Children()
	require.Len(t, blocks, 2)
	assert.Equal(t, mdast.NodeBlockquote, blocks[0].Kind)
	assert.Equal(t, 0, blocks[0].SourceOffset())
	assert.Equal(t, mdast.NodeCodeBlock, blocks[1].Kind)
	assert.True(t, blocks[1].Block.CodeBlock.Indented)
	assert.Equal(t, 9, blocks[1].SourceOffset())
}

func TestMapper_InlineRanges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		flavor string
		src    string
		kind   mdast.NodeKind
		want   string
	}{
		{"emphasis", FlavorCommonMark, "Some *em* text", mdast.NodeEmphasis, "*em*"},
		{"strong", FlavorCommonMark, "**bold** end", mdast.NodeStrong, "**bold**"},
		{"code span", FlavorCommonMark, "run `go test` now", mdast.NodeCodeSpan, "`go test`"},
		{"link", FlavorCommonMark, "see [docs](http://x.io) here", mdast.NodeLink, "[docs](http://x.io)"},
		{"image", FlavorCommonMark, "![alt](a.png)", mdast.NodeImage, "![alt](a.png)"},
		{"autolink", FlavorCommonMark, "go <http://x.io> now", mdast.NodeAutoLink, "<http://x.io>"},
		{"strikethrough", FlavorGFM, "a ~~gone~~ b", mdast.NodeStrikethrough, "~~gone~~"},
		{"inline html", FlavorCommonMark, "a <b>x</b>", mdast.NodeHTMLInline, "<b>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := parse(t, tt.flavor, tt.src)
			nodes := mdast.FindByKind(doc.Root, tt.kind)
			require.NotEmpty(t, nodes)
			assert.Equal(t, tt.want, string(doc.NodeText(nodes[0])))
		})
	}
}

func TestMapper_SoftBreak(t *testing.T) {
	t.Parallel()

	doc := parse(t, FlavorCommonMark, "one\ntwo")
	para := doc.Root.FirstChild
	kinds := []mdast.NodeKind{}
	for _, c := range para.Children() {
		kinds = append(kinds, c.Kind)
	}
	assert.Equal(t, []mdast.NodeKind{mdast.NodeText, mdast.NodeSoftBreak, mdast.NodeText}, kinds)
}

func TestMapper_GFMTableAndTasks(t *testing.T) {
	t.Parallel()

	doc := parse(t, FlavorGFM, "| a | b |\n|---|---|\n| 1 | 2 |\n\n- [x] done\n")
	blocks := doc.Root.Children()
	require.Len(t, blocks, 2)
	assert.Equal(t, mdast.NodeTable, blocks[0].Kind)
	assert.Equal(t, 0, blocks[0].SourceOffset())
	assert.GreaterOrEqual(t, blocks[0].ChildCount(), 2)

	boxes := mdast.FindByKind(doc.Root, mdast.NodeTaskCheckBox)
	require.Len(t, boxes, 1)
	assert.True(t, boxes[0].Inline.Checked)
	assert.Equal(t, "[x]", string(doc.NodeText(boxes[0])))
}

func TestMapper_CRLF(t *testing.T) {
	t.Parallel()

	doc := parse(t, FlavorCommonMark, "# A\r\n\r\nbody\r\n")
	blocks := doc.Root.Children()
	require.Len(t, blocks, 2)
	assert.Equal(t, 0, blocks[0].SourceOffset())
	assert.Equal(t, 7, blocks[1].SourceOffset())
}
