package textedit

import (
	"fmt"
	"strings"
)

// LineKind marks a line of a diff hunk.
type LineKind int

const (
	// LineContext is an unchanged line.
	LineContext LineKind = iota
	// LineAdd is a line only present in the modified text.
	LineAdd
	// LineRemove is a line only present in the original text.
	LineRemove
)

// contextLines is the number of unchanged lines kept around each change.
const contextLines = 3

// DiffLine is one line of a hunk, without its diff prefix.
type DiffLine struct {
	Kind    LineKind
	Content string
}

// Hunk is a run of changes with surrounding context. Starts are 1-based.
type Hunk struct {
	OriginalStart int
	OriginalCount int
	ModifiedStart int
	ModifiedCount int
	Lines         []DiffLine
}

// Diff is a line-based unified diff of two texts.
type Diff struct {
	Path      string
	Hunks     []Hunk
	Additions int
	Deletions int
}

// NewDiff compares original and modified line by line. Line endings are
// ignored. It returns nil when the lines are identical.
func NewDiff(path string, original, modified []byte) *Diff {
	orig := splitLines(original)
	mod := splitLines(modified)

	ops := diffOps(orig, mod)
	hunks := groupHunks(ops)
	if len(hunks) == 0 {
		return nil
	}

	diff := &Diff{Path: path, Hunks: hunks}
	for _, op := range ops {
		switch op.Kind {
		case LineAdd:
			diff.Additions++
		case LineRemove:
			diff.Deletions++
		case LineContext:
		}
	}
	return diff
}

// HasChanges reports whether the diff holds any hunk.
func (d *Diff) HasChanges() bool {
	return d != nil && len(d.Hunks) > 0
}

// String renders the diff in unified format.
func (d *Diff) String() string {
	if !d.HasChanges() {
		return ""
	}

	path := strings.TrimPrefix(d.Path, "/")

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", path, path)
	for _, hunk := range d.Hunks {
		fmt.Fprintf(&sb, "@@ -%d,%d +%d,%d @@\n",
			hunk.OriginalStart, hunk.OriginalCount, hunk.ModifiedStart, hunk.ModifiedCount)
		for _, line := range hunk.Lines {
			sb.WriteByte(" +-"[line.Kind])
			sb.WriteString(line.Content)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func splitLines(text []byte) []string {
	if len(text) == 0 {
		return nil
	}
	s := strings.ReplaceAll(string(text), "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}

// diffOps aligns the two line sets on their longest common subsequence.
func diffOps(orig, mod []string) []DiffLine {
	rows, cols := len(orig), len(mod)

	// lcs[i][j] is the LCS length of orig[i:] and mod[j:].
	lcs := make([][]int, rows+1)
	for i := range lcs {
		lcs[i] = make([]int, cols+1)
	}
	for i := rows - 1; i >= 0; i-- {
		for j := cols - 1; j >= 0; j-- {
			if orig[i] == mod[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	ops := make([]DiffLine, 0, max(rows, cols))
	i, j := 0, 0
	for i < rows || j < cols {
		switch {
		case i < rows && j < cols && orig[i] == mod[j]:
			ops = append(ops, DiffLine{Kind: LineContext, Content: orig[i]})
			i++
			j++
		case j >= cols || (i < rows && lcs[i+1][j] >= lcs[i][j+1]):
			ops = append(ops, DiffLine{Kind: LineRemove, Content: orig[i]})
			i++
		default:
			ops = append(ops, DiffLine{Kind: LineAdd, Content: mod[j]})
			j++
		}
	}
	return ops
}

// groupHunks cuts ops into hunks, merging changes separated by at most
// twice the context size.
func groupHunks(ops []DiffLine) []Hunk {
	var hunks []Hunk

	for idx := 0; idx < len(ops); {
		if ops[idx].Kind == LineContext {
			idx++
			continue
		}

		start := max(idx-contextLines, 0)
		end := idx
		for end < len(ops) {
			if ops[end].Kind != LineContext {
				end++
				continue
			}
			next := end
			for next < len(ops) && ops[next].Kind == LineContext {
				next++
			}
			if next == len(ops) || next-end > contextLines*2 {
				break
			}
			end = next
		}
		stop := min(end+contextLines, len(ops))

		hunks = append(hunks, buildHunk(ops, start, stop))
		idx = stop
	}
	return hunks
}

func buildHunk(ops []DiffLine, start, stop int) Hunk {
	hunk := Hunk{OriginalStart: 1, ModifiedStart: 1}
	for _, op := range ops[:start] {
		if op.Kind != LineAdd {
			hunk.OriginalStart++
		}
		if op.Kind != LineRemove {
			hunk.ModifiedStart++
		}
	}

	hunk.Lines = append(hunk.Lines, ops[start:stop]...)
	for _, op := range hunk.Lines {
		if op.Kind != LineAdd {
			hunk.OriginalCount++
		}
		if op.Kind != LineRemove {
			hunk.ModifiedCount++
		}
	}
	return hunk
}
