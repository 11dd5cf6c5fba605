package pretty

import (
	"fmt"
	"strings"

	"github.com/yaklabco/mdedit/pkg/textedit"
)

// FormatDiff renders a unified diff with styled headers and lines.
func (s *Styles) FormatDiff(d *textedit.Diff) string {
	if !d.HasChanges() {
		return ""
	}

	path := strings.TrimPrefix(d.Path, "/")

	var sb strings.Builder
	sb.WriteString(s.DiffHeader.Render("--- a/"+path) + "\n")
	sb.WriteString(s.DiffHeader.Render("+++ b/"+path) + "\n")

	for _, hunk := range d.Hunks {
		header := fmt.Sprintf("@@ -%d,%d +%d,%d @@",
			hunk.OriginalStart, hunk.OriginalCount, hunk.ModifiedStart, hunk.ModifiedCount)
		sb.WriteString(s.DiffHunk.Render(header) + "\n")

		for _, line := range hunk.Lines {
			switch line.Kind {
			case textedit.LineAdd:
				sb.WriteString(s.DiffAdd.Render("+" + line.Content))
			case textedit.LineRemove:
				sb.WriteString(s.DiffRemove.Render("-" + line.Content))
			default:
				sb.WriteString(s.DiffContext.Render(" " + line.Content))
			}
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

// FormatDiffStat renders a one-line summary of a diff.
func (s *Styles) FormatDiffStat(d *textedit.Diff) string {
	if !d.HasChanges() {
		return s.Dim.Render("no changes")
	}
	return fmt.Sprintf("%s %s %s",
		s.FilePath.Render(d.Path),
		s.DiffAdd.Render(fmt.Sprintf("+%d", d.Additions)),
		s.DiffRemove.Render(fmt.Sprintf("-%d", d.Deletions)))
}
