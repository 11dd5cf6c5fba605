package pretty

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/mdedit/pkg/background"
	"github.com/yaklabco/mdedit/pkg/locate"
	"github.com/yaklabco/mdedit/pkg/surface"
)

// ViewOptions controls how a frame is painted.
type ViewOptions struct {
	// Width is the terminal width. Banded lines are padded to it.
	Width int

	// LineNumbers draws a gutter with document line numbers.
	LineNumbers bool

	// CaretLine highlights this line's number in the gutter.
	CaretLine int
}

// RenderFrame paints the lines of a frame: highlight spans as foreground
// styles, background bands behind whole lines.
func (s *Styles) RenderFrame(f surface.Frame, opts ViewOptions) string {
	gutterWidth := 0
	if opts.LineNumbers {
		gutterWidth = len(strconv.Itoa(f.Last)) + 1
	}

	var sb strings.Builder
	for _, line := range f.Lines {
		if opts.LineNumbers {
			style := s.Gutter
			if line.Number == opts.CaretLine {
				style = s.GutterActive
			}
			sb.WriteString(style.Render(fmt.Sprintf("%*d", gutterWidth-1, line.Number)))
			sb.WriteByte(' ')
		}

		band, banded := innermostBand(f.Bands, line.Number)
		sb.WriteString(s.renderLine(line, band, banded, opts.Width-gutterWidth))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// renderLine styles the spans of one line. Spans are sorted and disjoint;
// overlapping or out-of-range spans are skipped.
func (s *Styles) renderLine(line surface.FrameLine, band background.Band, banded bool, width int) string {
	if !s.color {
		return line.Text
	}

	base := lipgloss.NewStyle()
	if banded {
		base = base.Background(band.Color)
	}

	var sb strings.Builder
	pos := 0
	for _, span := range line.Spans {
		start, end := span.Start, min(span.End, len(line.Text))
		if start < pos || start >= end {
			continue
		}
		if start > pos {
			sb.WriteString(base.Render(line.Text[pos:start]))
		}
		style := span.Style
		if banded {
			style = style.Background(band.Color)
		}
		sb.WriteString(style.Render(line.Text[start:end]))
		pos = end
	}
	if pos < len(line.Text) {
		sb.WriteString(base.Render(line.Text[pos:]))
	}

	if banded {
		if pad := width - lipgloss.Width(line.Text); pad > 0 {
			sb.WriteString(base.Render(strings.Repeat(" ", pad)))
		}
	}
	return sb.String()
}

// innermostBand returns the deepest band covering line.
func innermostBand(bands []background.Band, line int) (background.Band, bool) {
	var best background.Band
	found := false
	for _, b := range bands {
		if b.Contains(line) && (!found || b.Depth >= best.Depth) {
			best, found = b, true
		}
	}
	return best, found
}

// Status is the information shown in the status bar below a viewport.
type Status struct {
	Name     string
	Modified bool
	Encoding string
	Line     int
	Column   int
	Lines    int
	Block    locate.BlockRef
}

// StatusOf collects the status of an editor.
func StatusOf(e *surface.Editor) Status {
	line, col := e.CaretPosition()
	return Status{
		Name:     e.DisplayName(),
		Modified: e.IsModified(),
		Encoding: e.Encoding(),
		Line:     line,
		Column:   col,
		Lines:    e.LineCount(),
		Block:    e.VisibleBlockNumber(),
	}
}

// FormatStatus renders a one-line status bar, padded to width.
func (s *Styles) FormatStatus(st Status, width int) string {
	name := s.FilePath.Render(st.Name)
	if st.Modified {
		name += " " + s.Modified.Render("[+]")
	}

	right := fmt.Sprintf("%s  Ln %d, Col %d  %d lines  %s",
		st.Encoding, st.Line, st.Column, st.Lines, FormatBlockRef(st.Block))

	bar := name + "  " + right
	if pad := width - lipgloss.Width(bar); pad > 0 {
		bar = name + strings.Repeat(" ", pad+2) + right
	}
	return s.StatusBar.Render(bar)
}

// FormatBlockRef renders a block reference such as "block 3+2" or "block end".
func FormatBlockRef(ref locate.BlockRef) string {
	if ref.IsLast() {
		return "block end"
	}
	if ref.Offset == 0 {
		return fmt.Sprintf("block %d", ref.Number)
	}
	return fmt.Sprintf("block %d+%d", ref.Number, ref.Offset)
}
