// Package highlight assigns Markdown highlight classes to the lines of a
// document from its parsed tree.
package highlight

import (
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/mdedit/pkg/mdast"
	"github.com/yaklabco/mdedit/pkg/theme"
)

// Span is a classified byte range of one line. Start and End are 0-based
// byte columns, End exclusive.
type Span struct {
	Start int
	End   int
	Class theme.Class
}

// StyledSpan is a span with the theme style for its class.
type StyledSpan struct {
	Span
	Style lipgloss.Style
}

// Colorizer classifies line spans from the latest tree it was given.
// It never reads or changes document text beyond the tree's own snapshot.
type Colorizer struct {
	mu sync.RWMutex

	doc   *mdast.Document
	theme *theme.Theme

	// lines holds the spans of each line, indexed by line-1.
	lines [][]Span
}

// New creates a colorizer. A nil theme selects the dark theme.
func New(th *theme.Theme) *Colorizer {
	if th == nil {
		th = theme.Dark()
	}
	return &Colorizer{theme: th}
}

// UpdateTree replaces the tree the colorizer reads from. Trees older than the
// one already held are ignored.
func (c *Colorizer) UpdateTree(doc *mdast.Document) {
	if doc == nil {
		return
	}

	c.mu.RLock()
	stale := c.doc != nil && doc.Generation < c.doc.Generation
	c.mu.RUnlock()
	if stale {
		return
	}

	lines := index(doc)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.doc != nil && doc.Generation < c.doc.Generation {
		return
	}
	c.doc = doc
	c.lines = lines
}

// OnThemeChanged swaps the theme used by StyledLine.
func (c *Colorizer) OnThemeChanged(th *theme.Theme) {
	if th == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.theme = th
}

// Theme returns the current theme.
func (c *Colorizer) Theme() *theme.Theme {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.theme
}

// Generation returns the generation of the tree in use, or 0 when none.
func (c *Colorizer) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.doc == nil {
		return 0
	}
	return c.doc.Generation
}

// ColorizeLine returns the spans of a 1-based line, clipped to lineLen.
// The result is sorted and non-overlapping; nil means render unstyled.
func (c *Colorizer) ColorizeLine(line, lineLen int) []Span {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return clip(c.lines, line, lineLen)
}

// StyledLine returns ColorizeLine's spans with their theme styles.
func (c *Colorizer) StyledLine(line, lineLen int) []StyledSpan {
	c.mu.RLock()
	defer c.mu.RUnlock()

	spans := clip(c.lines, line, lineLen)
	if spans == nil {
		return nil
	}

	styled := make([]StyledSpan, len(spans))
	for i, s := range spans {
		styled[i] = StyledSpan{Span: s, Style: c.theme.Style(s.Class)}
	}
	return styled
}

// Render paints content, the text of a 1-based line, with its styles.
func (c *Colorizer) Render(line int, content string) string {
	spans := c.StyledLine(line, len(content))
	if len(spans) == 0 {
		return content
	}

	var sb strings.Builder
	pos := 0
	for _, s := range spans {
		sb.WriteString(content[pos:s.Start])
		sb.WriteString(s.Style.Render(content[s.Start:s.End]))
		pos = s.End
	}
	sb.WriteString(content[pos:])
	return sb.String()
}

func clip(lines [][]Span, line, lineLen int) []Span {
	if line < 1 || line > len(lines) || lineLen <= 0 {
		return nil
	}

	src := lines[line-1]
	out := make([]Span, 0, len(src))
	for _, s := range src {
		if s.Start >= lineLen {
			break
		}
		if s.End > lineLen {
			s.End = lineLen
		}
		out = append(out, s)
	}

	if len(out) == 0 {
		return nil
	}
	return out
}
