// Package paste rewrites clipboard text before it is inserted into a
// Markdown document.
//
// URLs become links or images, typographic characters can be folded to
// ASCII, and pasted source code can be wrapped in a fenced code block.
package paste

import (
	"net/url"
	"path"
	"strings"
	"unicode"

	"github.com/yaklabco/mdedit/pkg/langdetect"
	"github.com/yaklabco/mdedit/pkg/mdast"
)

// Options selects the optional rewrites.
type Options struct {
	// RemoveSpecialCharacters folds smart quotes, dashes and similar
	// characters to ASCII. It takes precedence over link rewriting.
	RemoveSpecialCharacters bool

	// FenceCode wraps multi-line source code in a fenced code block.
	FenceCode bool
}

// Target describes where the text is pasted.
type Target struct {
	// Tree is the latest parse of the document, or nil.
	Tree *mdast.Document

	// SelectionStart and SelectionLength are byte offsets of the selection
	// the paste replaces. An empty selection is a plain caret.
	SelectionStart  int
	SelectionLength int

	// SelectedText is the text of the selection.
	SelectedText string

	// AtLineStart reports whether the selection starts at a line start.
	AtLineStart bool
}

// Transform returns the text to insert for a paste of text at target.
// changed is false when text should be inserted as is.
func Transform(text string, target Target, opts Options) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return text, false
	}

	if opts.RemoveSpecialCharacters {
		replaced := ReplaceSmartChars(text)
		return replaced, replaced != text
	}

	safe := PositionSafeForSmartLink(target.Tree, target.SelectionStart, target.SelectionLength)

	if IsWellFormedURL(text) && safe {
		return Link(text, target.SelectedText), true
	}

	if opts.FenceCode && safe && target.SelectionLength == 0 {
		if fenced, ok := FenceCode(text, target.AtLineStart); ok {
			return fenced, true
		}
	}

	return text, false
}

// Link formats url as Markdown. Image URLs become an image line, a bare
// URL with no selection becomes an autolink, and otherwise the selection
// becomes the link text.
func Link(rawURL, selected string) string {
	switch {
	case IsImageURL(strings.TrimRightFunc(rawURL, unicode.IsSpace)):
		return "![" + selected + "](" + rawURL + ")\n"
	case selected == "":
		return "<" + rawURL + ">"
	default:
		return "[" + selected + "](" + rawURL + ")"
	}
}

// FenceCode wraps text in a fenced code block tagged with its detected
// language. ok is false when text does not look like source code.
func FenceCode(text string, atLineStart bool) (string, bool) {
	lang, ok := langdetect.DetectCode([]byte(text))
	if !ok {
		return "", false
	}

	fence := "```"
	for strings.Contains(text, fence) {
		fence += "`"
	}

	var sb strings.Builder
	if !atLineStart {
		sb.WriteByte('\n')
	}
	sb.WriteString(fence)
	sb.WriteString(lang)
	sb.WriteByte('\n')
	sb.WriteString(strings.TrimRight(text, "\r\n"))
	sb.WriteByte('\n')
	sb.WriteString(fence)
	sb.WriteByte('\n')
	return sb.String(), true
}

// IsWellFormedURL reports whether s is a single absolute URL with a scheme
// and, for hierarchical schemes, a host.
func IsWellFormedURL(s string) bool {
	if s == "" || strings.IndexFunc(s, unicode.IsSpace) >= 0 {
		return false
	}

	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() {
		return false
	}
	if u.Opaque != "" {
		return u.Scheme == "mailto"
	}
	return u.Host != ""
}

//nolint:gochecknoglobals // Read-only lookup table.
var imageExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".svg": true, ".webp": true, ".tif": true, ".tiff": true, ".ico": true,
}

// IsImageURL reports whether the URL path ends in an image extension.
func IsImageURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return imageExtensions[strings.ToLower(path.Ext(u.Path))]
}

//nolint:gochecknoglobals // Read-only lookup table.
var unsafeKinds = map[mdast.NodeKind]bool{
	mdast.NodeCodeBlock:  true,
	mdast.NodeHTMLBlock:  true,
	mdast.NodeCodeSpan:   true,
	mdast.NodeLink:       true,
	mdast.NodeImage:      true,
	mdast.NodeAutoLink:   true,
	mdast.NodeHTMLInline: true,
}

// PositionSafeForSmartLink reports whether a link may be inserted over the
// selection [start, start+length). Positions inside code, HTML, links and
// images are unsafe. A nil tree is always safe.
func PositionSafeForSmartLink(tree *mdast.Document, start, length int) bool {
	if tree == nil || tree.Root == nil {
		return true
	}

	end := start + max(length, 0)
	unsafe := mdast.FindFirst(tree.Root, func(n *mdast.Node) bool {
		if !unsafeKinds[n.Kind] {
			return false
		}
		r := n.Range
		if end == start {
			return r.StartOffset < start && start < r.EndOffset
		}
		return r.StartOffset < end && start < r.EndOffset
	})
	return unsafe == nil
}

//nolint:gochecknoglobals // Read-only replacer.
var smartChars = strings.NewReplacer(
	"\u00a0", " ", // no-break space
	"–", "-", // en dash
	"—", "-", // em dash
	"―", "-", // horizontal bar
	"‗", "_", // double low line
	"‘", "'", // left single quote
	"’", "'", // right single quote
	"‚", ",", // single low-9 quote
	"‛", "'", // single high-reversed-9 quote
	"“", `"`, // left double quote
	"”", `"`, // right double quote
	"„", `"`, // double low-9 quote
	"…", "...", // ellipsis
	"′", "'", // prime
	"″", `"`, // double prime
	"«", `"`, // left guillemet
	"»", `"`, // right guillemet
)

// ReplaceSmartChars folds typographic punctuation to its ASCII form.
func ReplaceSmartChars(s string) string {
	return smartChars.Replace(s)
}
