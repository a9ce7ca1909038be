package extract

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// extractXLSX renders every sheet as a Markdown table so row and column
// structure survives chunking.
func (e *Extractor) extractXLSX(path string) (*Result, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
		}
		if len(rows) == 0 {
			continue
		}

		b.WriteString("## Sheet: ")
		b.WriteString(sheet)
		b.WriteString("\n\n")

		width := 0
		for _, row := range rows {
			if len(row) > width {
				width = len(row)
			}
		}

		for i, row := range rows {
			writeMarkdownRow(&b, row, width)
			if i == 0 {
				sep := make([]string, width)
				for j := range sep {
					sep[j] = "---"
				}
				writeMarkdownRow(&b, sep, width)
			}
		}
		b.WriteString("\n")
	}

	return &Result{Text: b.String()}, nil
}

func writeMarkdownRow(b *strings.Builder, cells []string, width int) {
	b.WriteString("|")
	for i := 0; i < width; i++ {
		cell := ""
		if i < len(cells) {
			cell = strings.ReplaceAll(cells[i], "|", "\\|")
			cell = strings.ReplaceAll(cell, "\n", " ")
		}
		b.WriteString(" ")
		b.WriteString(cell)
		b.WriteString(" |")
	}
	b.WriteString("\n")
}
