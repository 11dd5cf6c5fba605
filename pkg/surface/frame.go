package surface

import (
	"github.com/yaklabco/mdedit/pkg/background"
	"github.com/yaklabco/mdedit/pkg/highlight"
	"github.com/yaklabco/mdedit/pkg/locate"
	"github.com/yaklabco/mdedit/pkg/mdast"
)

// FrameLine is one document line ready to paint.
type FrameLine struct {
	Number int
	Text   string
	Spans  []highlight.StyledSpan
}

// Frame is everything needed to paint a range of lines. Spans and bands
// come from the same tree generation.
type Frame struct {
	Generation uint64
	First      int
	Last       int
	Lines      []FrameLine
	Bands      []background.Band
	Block      locate.BlockRef
}

// Frame captures lines first through last, clamped to the document.
func (e *Editor) Frame(first, last int) Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameLocked(first, last)
}

// VisibleFrame captures the lines in the viewport.
func (e *Editor) VisibleFrame() Frame {
	e.mu.Lock()
	defer e.mu.Unlock()
	first, last := e.view.VisibleLines()
	return e.frameLocked(first, last)
}

func (e *Editor) frameLocked(first, last int) Frame {
	first = clamp(first, 1, e.buf.LineCount())
	last = clamp(last, first, e.buf.LineCount())

	var f Frame
	e.pipeline.Read(func(doc *mdast.Document) {
		f = Frame{First: first, Last: last}
		if doc != nil {
			f.Generation = doc.Generation
		}

		f.Lines = make([]FrameLine, 0, last-first+1)
		for line := first; line <= last; line++ {
			text := e.buf.Line(line)
			f.Lines = append(f.Lines, FrameLine{
				Number: line,
				Text:   text,
				Spans:  e.colorizer.StyledLine(line, len(text)),
			})
		}
		f.Bands = e.background.Bands(e.buf, first, last)
		f.Block = locate.Locate(e.view.ScrollOffset(), e.view.ScrollableHeight(), e.view, doc)
	})
	return f
}
