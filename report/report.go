package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/adasatorres/check-migration-addons/sheet"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// Render builds the console table for rows: index, selected columns, status.
func Render(headers []string, rows []sheet.OutputRow) string {
	cols := append([]string{""}, headers...)
	cols = append(cols, sheet.StatusHeader)

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(cols...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, r := range rows {
		line := make([]string, 0, len(cols))
		line = append(line, strconv.Itoa(r.Index))
		for _, h := range headers {
			line = append(line, r.Values[h])
		}
		line = append(line, r.Status)
		t.Row(line...)
	}

	return t.String()
}

// Print writes the rendered table to w.
func Print(w io.Writer, headers []string, rows []sheet.OutputRow) error {
	_, err := fmt.Fprintln(w, Render(headers, rows))
	return err
}
