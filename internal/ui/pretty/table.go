package pretty

import (
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/yaklabco/mdedit/pkg/loadsave"
)

// cellPadding is the horizontal padding inside table cells.
const cellPadding = 1

// FormatTable renders rows under headers with a rounded border.
func (s *Styles) FormatTable(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(s.TableBorder).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return s.TableHeader.Padding(0, cellPadding)
			}
			return lipgloss.NewStyle().Padding(0, cellPadding)
		})
	return t.String() + "\n"
}

// FormatRecentFiles renders the recent files of a session, most recent first.
func (s *Styles) FormatRecentFiles(files []loadsave.RecentFile) string {
	if len(files) == 0 {
		return s.Dim.Render("no recent files") + "\n"
	}

	rows := make([][]string, 0, len(files))
	for i, f := range files {
		rows = append(rows, []string{strconv.Itoa(i + 1), f.Path, strconv.Itoa(f.Offset)})
	}
	return s.FormatTable([]string{"#", "FILE", "OFFSET"}, rows)
}
