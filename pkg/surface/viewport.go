package surface

import "sync/atomic"

// LineCounter reports the current number of document lines.
type LineCounter interface {
	LineCount() int
}

// Viewport maps scroll positions to document lines. Positions are in the
// same unit as LineHeight: 1 for a terminal, pixels for a GUI.
type Viewport struct {
	lines      LineCounter
	lineHeight int
	height     int
	scrollY    int

	redraws atomic.Int64
}

// NewViewport creates a viewport height units tall over lines.
// A non-positive lineHeight selects 1.
func NewViewport(lines LineCounter, height, lineHeight int) *Viewport {
	if lineHeight <= 0 {
		lineHeight = 1
	}
	return &Viewport{lines: lines, lineHeight: lineHeight, height: max(height, 0)}
}

// Height returns the visible height.
func (v *Viewport) Height() int {
	return v.height
}

// SetHeight resizes the viewport and keeps the scroll offset in range.
func (v *Viewport) SetHeight(height int) {
	v.height = max(height, 0)
	v.SetScrollOffset(v.scrollY)
}

// LineHeight returns the height of one line.
func (v *Viewport) LineHeight() int {
	return v.lineHeight
}

// ExtentHeight returns the height of the whole document.
func (v *Viewport) ExtentHeight() int {
	return v.lines.LineCount() * v.lineHeight
}

// ScrollableHeight returns the largest scroll offset.
func (v *Viewport) ScrollableHeight() int {
	return max(v.ExtentHeight()-v.height, 0)
}

// ScrollOffset returns the scroll offset from the top of the document.
func (v *Viewport) ScrollOffset() int {
	return v.scrollY
}

// SetScrollOffset scrolls to y, clamped to [0, ScrollableHeight].
func (v *Viewport) SetScrollOffset(y int) {
	v.scrollY = clamp(y, 0, v.ScrollableHeight())
}

// ScrollBy scrolls by dy.
func (v *Viewport) ScrollBy(dy int) {
	v.SetScrollOffset(v.scrollY + dy)
}

// ScrollToLine scrolls so a 1-based line is at the top, as far as possible.
func (v *Viewport) ScrollToLine(line int) {
	v.SetScrollOffset((line - 1) * v.lineHeight)
}

// ScrollToHome scrolls to the top of the document.
func (v *Viewport) ScrollToHome() {
	v.scrollY = 0
}

// LineAtVisualTop returns the 1-based document line drawn at y.
func (v *Viewport) LineAtVisualTop(y int) int {
	return clamp(y/v.lineHeight+1, 1, max(v.lines.LineCount(), 1))
}

// VisibleLines returns the first and last 1-based lines in view.
func (v *Viewport) VisibleLines() (int, int) {
	first := v.LineAtVisualTop(v.scrollY)
	rows := max((v.height+v.lineHeight-1)/v.lineHeight, 1)
	last := min(first+rows-1, max(v.lines.LineCount(), 1))
	return first, last
}

// Redraw records a full repaint request.
func (v *Viewport) Redraw() {
	v.redraws.Add(1)
}

// Redraws returns the number of repaint requests so far.
func (v *Viewport) Redraws() int64 {
	return v.redraws.Load()
}
