package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// column is a text table column. Numeric columns are right aligned.
type column struct {
	title   string
	numeric bool
}

// textTable lays rows out in columns sized to the widest cell, measured in
// terminal cells so wide runes line up.
func textTable(cols []column, rows [][]string) []string {
	if len(cols) == 0 {
		return nil
	}
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = runewidth.StringWidth(c.title)
	}
	for _, row := range rows {
		for i := 0; i < min(len(row), len(cols)); i++ {
			widths[i] = max(widths[i], runewidth.StringWidth(row[i]))
		}
	}

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.title
	}
	lines := []string{joinCells(cols, widths, header)}
	for _, row := range rows {
		lines = append(lines, joinCells(cols, widths, row))
	}
	return lines
}

func joinCells(cols []column, widths []int, row []string) string {
	cells := make([]string, len(cols))
	for i, c := range cols {
		var v string
		if i < len(row) {
			v = row[i]
		}
		if c.numeric {
			cells[i] = runewidth.FillLeft(v, widths[i])
		} else {
			cells[i] = runewidth.FillRight(v, widths[i])
		}
	}
	return strings.Join(cells, " ")
}
