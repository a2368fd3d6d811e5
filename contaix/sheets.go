package contaix

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// xlsxToMarkdown renders every non-empty sheet of a workbook as a "## <sheet>"
// section holding a markdown table; the first row is the header
func xlsxToMarkdown(data []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	var sections []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("failed to read sheet %s: %w", sheet, err)
		}
		table := markdownTable(rows)
		if table == "" {
			continue
		}
		sections = append(sections, "## "+sheet+"\n\n"+table)
	}
	return strings.Join(sections, "\n\n"), nil
}

func markdownTable(rows [][]string) string {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	if width == 0 {
		return ""
	}
	var sb strings.Builder
	writeRow := func(row []string) {
		sb.WriteString("|")
		for i := range width {
			cell := ""
			if i < len(row) {
				cell = tableCell(row[i])
			}
			sb.WriteString(" " + cell + " |")
		}
		sb.WriteString("\n")
	}
	writeRow(rows[0])
	sb.WriteString("|" + strings.Repeat(" --- |", width) + "\n")
	for _, row := range rows[1:] {
		writeRow(row)
	}
	return strings.TrimSuffix(sb.String(), "\n")
}

func tableCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", "<br>")
	return strings.ReplaceAll(strings.TrimSpace(s), "\n", "<br>")
}
