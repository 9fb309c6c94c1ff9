package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/mediasheet/internal/export"
)

const colGap = 2

// RenderTable aligns rows under headers. Widths are measured on visible
// text so styled cells line up.
func RenderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := 0; i < len(widths) && i < len(row); i++ {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	var b strings.Builder
	writeRow := func(cells []string, style func(string) string) {
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(style(cell))
			if i < len(widths)-1 {
				b.WriteString(strings.Repeat(" ", max(widths[i]-lipgloss.Width(cell), 0)+colGap))
			}
		}
		b.WriteString("\n")
	}

	writeRow(headers, func(s string) string { return StyleHeader.Render(s) })
	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("─", w)
	}
	writeRow(sep, Dim)
	for _, row := range rows {
		writeRow(row, func(s string) string { return s })
	}
	return b.String()
}

// RenderValues renders a sheet-shaped table whose first row is the header.
// At most limit data rows are shown; limit <= 0 shows all of them.
func RenderValues(table [][]any, limit int) string {
	if len(table) == 0 {
		return ""
	}
	headers := cellTexts(table[0])
	data := table[1:]
	hidden := 0
	if limit > 0 && len(data) > limit {
		hidden = len(data) - limit
		data = data[:limit]
	}
	rows := make([][]string, len(data))
	for i, r := range data {
		rows[i] = cellTexts(r)
	}
	out := RenderTable(headers, rows)
	if hidden > 0 {
		out += Dim(pluralize(hidden, "more row", "more rows")) + "\n"
	}
	return out
}

func cellTexts(row []any) []string {
	out := make([]string, len(row))
	for i, c := range row {
		out[i] = export.FormatValue(c)
	}
	return out
}
