package converter

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// convertTableRow rewrites inline markup in the row and splits it into
// trimmed cells on the delimiter that opens the row.
func (s *state) convertTableRow(line, trimmed string) ([]string, error) {
	converted, err := s.convertInlineMarkup(expandTabs(line, s.config.TabWidth))
	if err != nil {
		return nil, err
	}

	return splitTableRow(strings.TrimSpace(converted), trimmed[0]), nil
}

// splitTableRow keeps leading and trailing empty cells so that rows written
// as "| a | b |" render with outer pipes.
func splitTableRow(line string, delimiter byte) []string {
	cells := strings.Split(line, string(delimiter))
	for i, cell := range cells {
		cells[i] = strings.TrimSpace(cell)
	}
	return cells
}

// renderTable pads every cell to its column's display width and places a
// dashed underline after the first row.
func renderTable(rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	widths := columnWidths(rows)

	var sb strings.Builder
	for i, row := range rows {
		writeTableRow(&sb, row, widths)
		if i == 0 {
			underline := make([]string, len(row))
			for j, cell := range row {
				underline[j] = strings.Repeat("-", runewidth.StringWidth(cell))
			}
			writeTableRow(&sb, underline, widths)
		}
	}

	return sb.String()
}

func columnWidths(rows [][]string) []int {
	var widths []int
	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				widths = append(widths, 0)
			}
			if w := runewidth.StringWidth(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

func writeTableRow(sb *strings.Builder, cells []string, widths []int) {
	for i, cell := range cells {
		if i > 0 {
			sb.WriteString(" | ")
		}
		sb.WriteString(runewidth.FillRight(cell, widths[i]))
	}
	sb.WriteByte('\n')
}
