// Package goldmark builds mdast documents from Markdown text using goldmark.
package goldmark

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"

	"github.com/yaklabco/mdedit/pkg/mdast"
)

// Flavor identifies the Markdown flavor supported by the parser.
const (
	FlavorCommonMark = "commonmark"
	FlavorGFM        = "gfm"
)

// ErrParse is returned when the text could not be turned into a valid tree.
var ErrParse = errors.New("parse failed")

// Parser turns document text into an mdast.Document.
// A Parser is safe for concurrent use.
type Parser struct {
	flavor string
	md     goldmark.Markdown
}

// New creates a new goldmark-based parser for the given flavor.
// Supported flavors are "commonmark" and "gfm".
// Invalid flavors default to "commonmark".
func New(flavor string) *Parser {
	f := flavorOrDefault(flavor)
	return &Parser{
		flavor: f,
		md:     NewMarkdown(f),
	}
}

// Flavor returns the configured Markdown flavor.
func (p *Parser) Flavor() string {
	return p.flavor
}

// Markdown returns the underlying goldmark instance, for rendering.
//
//nolint:ireturn // goldmark.Markdown is an external interface type
func (p *Parser) Markdown() goldmark.Markdown {
	return p.md
}

// Parse converts document text into a fully-populated Document.
//
// The method:
//  1. Checks for context cancellation.
//  2. Builds a Document shell with a private copy of the text and its lines.
//  3. Parses the text with goldmark.
//  4. Maps the goldmark AST to mdast nodes with byte ranges.
//  5. Verifies that block offsets never decrease.
//
// Panics raised while parsing or mapping are returned as ErrParse.
func (p *Parser) Parse(ctx context.Context, src []byte) (doc *mdast.Document, err error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	defer func() {
		if r := recover(); r != nil {
			doc = nil
			err = fmt.Errorf("%w: %v", ErrParse, r)
		}
	}()

	doc = mdast.NewDocument(copyContent(src))
	doc.Flavor = p.flavor

	reader := text.NewReader(doc.Text)
	gmDoc := p.md.Parser().Parse(reader, parser.WithContext(parser.NewContext()))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("parse cancelled: %w", err)
	}

	newMapper(doc).mapDocument(gmDoc)

	if err := doc.CheckOrder(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParse, err)
	}

	return doc, nil
}

// flavorOrDefault returns the flavor if valid, otherwise defaults to CommonMark.
func flavorOrDefault(flavor string) string {
	switch flavor {
	case FlavorCommonMark, FlavorGFM:
		return flavor
	default:
		return FlavorCommonMark
	}
}

// IsValidFlavor reports whether flavor names a supported Markdown flavor.
func IsValidFlavor(flavor string) bool {
	return flavor == FlavorCommonMark || flavor == FlavorGFM
}

// NewMarkdown creates a configured goldmark.Markdown instance.
//
//nolint:ireturn // goldmark.Markdown is an external interface type
func NewMarkdown(flavor string) goldmark.Markdown {
	var opts []goldmark.Option

	switch flavorOrDefault(flavor) {
	case FlavorGFM:
		opts = append(opts, goldmark.WithExtensions(extension.GFM))
	case FlavorCommonMark:
		// No extensions for pure CommonMark.
	}

	return goldmark.New(opts...)
}

// copyContent creates a copy of the content slice to ensure immutability.
func copyContent(content []byte) []byte {
	if content == nil {
		return []byte{}
	}
	cp := make([]byte, len(content))
	copy(cp, content)
	return cp
}
