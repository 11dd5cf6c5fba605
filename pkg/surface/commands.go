package surface

import (
	"regexp"
	"strings"

	"github.com/yaklabco/mdedit/pkg/mdast"
	"github.com/yaklabco/mdedit/pkg/paste"
	"github.com/yaklabco/mdedit/pkg/textedit"
)

// Inline markers toggled by the formatting commands.
const (
	MarkerBold   = "**"
	MarkerItalic = "*"
	MarkerCode   = "`"
)

// MaxHeadingLevel is the deepest ATX heading.
const MaxHeadingLevel = 6

// Bold toggles strong emphasis around the selection or the word at the caret.
func (e *Editor) Bold() { e.toggle(MarkerBold) }

// Italic toggles emphasis around the selection or the word at the caret.
func (e *Editor) Italic() { e.toggle(MarkerItalic) }

// Code toggles a code span around the selection or the word at the caret.
func (e *Editor) Code() { e.toggle(MarkerCode) }

func (e *Editor) toggle(marker string) {
	//nolint:errcheck // Edits are built from offsets inside the text.
	e.edit(func() error { return e.toggleLocked(marker) })
}

// toggleLocked removes marker when it wraps the target, inside or just
// outside it, and adds it otherwise. The target stays selected.
func (e *Editor) toggleLocked(marker string) error {
	b := e.buf
	m := len(marker)

	start, length := b.Selection()
	end := start + length
	if length == 0 {
		start, end = b.WordAt(b.Caret())
		if start == end {
			caret := b.Caret()
			if err := b.Insert(caret, marker+marker); err != nil {
				return err
			}
			b.SetCaret(caret + m)
			return nil
		}
	}

	text := b.text
	inner := string(text[start:end])
	edits := textedit.NewBuilder()

	switch {
	case len(inner) >= 2*m && strings.HasPrefix(inner, marker) && strings.HasSuffix(inner, marker):
		edits.Delete(end-m, end)
		edits.Delete(start, start+m)
		if err := b.Apply(edits.Edits); err != nil {
			return err
		}
		b.Select(start, end-start-2*m)

	case start >= m && end+m <= len(text) &&
		string(text[start-m:start]) == marker && string(text[end:end+m]) == marker:
		edits.Delete(end, end+m)
		edits.Delete(start-m, start)
		if err := b.Apply(edits.Edits); err != nil {
			return err
		}
		b.Select(start-m, end-start)

	default:
		edits.Insert(start, marker)
		edits.Insert(end, marker)
		if err := b.Apply(edits.Edits); err != nil {
			return err
		}
		b.Select(start+m, end-start)
	}
	return nil
}

// InsertHeader inserts an ATX heading marker of the given level at the start
// of the caret's line. Levels are clamped to 1..6.
func (e *Editor) InsertHeader(level int) {
	level = clamp(level, 1, MaxHeadingLevel)

	//nolint:errcheck // The line start always lies inside the text.
	e.edit(func() error {
		start := e.buf.LineStart(e.buf.LineOfOffset(e.buf.Caret()))
		b := textedit.NewBuilder()
		b.Insert(start, strings.Repeat("#", level)+" ")
		return e.buf.Apply(b.Edits)
	})
}

// SelectNextHeader selects the first line of the next heading after the
// caret. It reports false when there is none.
func (e *Editor) SelectNextHeader() bool {
	return e.selectHeader(true)
}

// SelectPreviousHeader selects the first line of the heading before the
// caret. It reports false when there is none.
func (e *Editor) SelectPreviousHeader() bool {
	return e.selectHeader(false)
}

func (e *Editor) selectHeader(forward bool) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	doc := e.Tree()
	if doc.IsEmpty() {
		return false
	}

	selStart, selLen := e.buf.Selection()
	anchor := selStart
	if selLen == 0 {
		anchor = e.buf.Caret()
	}

	var target *mdast.Node
	for _, h := range mdast.FindByKind(doc.Root, mdast.NodeHeading) {
		offset := h.SourceOffset()
		if forward {
			if offset > anchor || (offset == anchor && selLen == 0) {
				target = h
				break
			}
			continue
		}
		if offset < anchor {
			target = h
		}
	}
	if target == nil || target.SourceOffset() > e.buf.Len() {
		return false
	}

	line := e.buf.LineOfOffset(target.SourceOffset())
	start := e.buf.LineStart(line)
	e.buf.Select(start, e.buf.LineEnd(line)-start)
	e.scrollIntoView(line)
	return true
}

// Find selects the next match of re after the selection, wrapping around
// to the start of the document. Empty matches are skipped.
func (e *Editor) Find(re *regexp.Regexp) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.findLocked(re)
}

func (e *Editor) findLocked(re *regexp.Regexp) bool {
	start, length := e.buf.Selection()
	from := start + length

	var wrapped []int
	for _, loc := range re.FindAllIndex(e.buf.text, -1) {
		if loc[1] == loc[0] {
			continue
		}
		if loc[0] >= from {
			e.selectMatch(loc)
			return true
		}
		if wrapped == nil {
			wrapped = loc
		}
	}
	if wrapped == nil {
		return false
	}
	e.selectMatch(wrapped)
	return true
}

func (e *Editor) selectMatch(loc []int) {
	e.buf.Select(loc[0], loc[1]-loc[0])
	e.scrollIntoView(e.buf.LineOfOffset(loc[0]))
}

// ReplaceNext replaces the selection with repl when re matches all of it,
// then selects the next match. repl may reference submatches as in
// regexp.Regexp.Expand. It reports whether a next match was found.
func (e *Editor) ReplaceNext(re *regexp.Regexp, repl string) bool {
	var found bool

	//nolint:errcheck // The selection always lies inside the text.
	e.edit(func() error {
		start, length := e.buf.Selection()
		selected := e.buf.text[start : start+length]
		if loc := re.FindSubmatchIndex(selected); length > 0 && loc != nil && loc[0] == 0 && loc[1] == length {
			out := re.Expand(nil, []byte(repl), selected, loc)
			if err := e.buf.Replace(start, length, string(out)); err != nil {
				return err
			}
		}
		found = e.findLocked(re)
		return nil
	})
	return found
}

// ReplaceAll replaces every non-empty match of re and returns the count.
func (e *Editor) ReplaceAll(re *regexp.Regexp, repl string) int {
	var count int

	//nolint:errcheck // Matches never overlap.
	e.edit(func() error {
		text := e.buf.text
		b := textedit.NewBuilder()
		for _, loc := range re.FindAllSubmatchIndex(text, -1) {
			if loc[1] == loc[0] {
				continue
			}
			out := re.Expand(nil, []byte(repl), text, loc)
			b.Replace(loc[0], loc[1], string(out))
		}
		count = b.Len()
		if count == 0 {
			return nil
		}
		return e.buf.Apply(b.Edits)
	})
	return count
}

// FormatText runs convert over the selection, or over the whole document
// when nothing is selected or forceAll is set. The caret keeps its offset
// as far as the new text allows. It reports whether the text changed.
func (e *Editor) FormatText(convert func(string) string, forceAll bool) bool {
	var changed bool

	//nolint:errcheck // Offsets come from the buffer itself.
	e.edit(func() error {
		start, length := e.buf.Selection()
		if length > 0 && !forceAll {
			selected := e.buf.SelectedText()
			out := convert(selected)
			if out == selected {
				return nil
			}
			changed = true
			if err := e.buf.Replace(start, length, out); err != nil {
				return err
			}
			e.buf.Select(start, len(out))
			return nil
		}

		text := e.buf.Text()
		out := convert(text)
		if out == text {
			return nil
		}
		changed = true
		caret := e.buf.Caret()
		e.buf.SetText(out)
		e.buf.SetCaret(min(caret, len(out)))
		return nil
	})
	return changed
}

// TabExpand expands the snippet trigger before the caret. Without a match it
// inserts spaces in place of the selection. It reports whether a snippet
// was expanded.
func (e *Editor) TabExpand() bool {
	var expanded bool

	//nolint:errcheck // Offsets come from the buffer itself.
	e.edit(func() error {
		start, length := e.buf.Selection()
		exp, ok := e.snippets.Expand(e.buf.Text(), start, e.buf.SelectedText(), e.clock())
		if !ok {
			return e.buf.Replace(start, length, strings.Repeat(" ", e.tabWidth))
		}

		expanded = true
		if err := e.buf.Replace(exp.Start, exp.End-exp.Start, exp.Text); err != nil {
			return err
		}
		e.buf.SetCaret(exp.Caret)
		return nil
	})
	return expanded
}

// Paste inserts clipboard text in place of the selection, rewritten by the
// smart paste options.
func (e *Editor) Paste(text string) {
	if text == "" {
		return
	}

	//nolint:errcheck // The selection always lies inside the text.
	e.edit(func() error {
		start, length := e.buf.Selection()
		target := paste.Target{
			Tree:            e.Tree(),
			SelectionStart:  start,
			SelectionLength: length,
			SelectedText:    e.buf.SelectedText(),
			AtLineStart:     start == e.buf.LineStart(e.buf.LineOfOffset(start)),
		}
		out, _ := paste.Transform(normalizeNewlines(text), target, e.paste)
		return e.buf.Replace(start, length, out)
	})
}
