package extract

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"
)

// CSVText renders a delimited table as one entry line per row behind the
// document header. Row order is preserved as read.
func (e *Extractor) CSVText(path, filename, category string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv: %w", err)
	}
	return renderTable(filename, category, "CSV Table", rows), nil
}

// XLSXText renders the first sheet of a workbook the same way.
func (e *Extractor) XLSXText(path, filename, category string) (string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return "", fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("xlsx %s has no sheets", filename)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return "", fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return renderTable(filename, category, "Excel Spreadsheet", rows), nil
}

// renderTable materializes rows as "Entry N: column: value, column: value"
// lines. The first row is treated as the column header; empty cells are
// skipped rather than rendered as blanks.
func renderTable(filename, category, typeName string, rows [][]string) string {
	var columns []string
	var body [][]string
	if len(rows) > 0 {
		columns = rows[0]
		body = rows[1:]
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Document: %s\n", filename)
	fmt.Fprintf(&b, "Category: %s\n", category)
	fmt.Fprintf(&b, "Type: %s\n", typeName)
	fmt.Fprintf(&b, "Columns: %s\n", strings.Join(columns, ", "))
	b.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&b, "This document contains %d rows of data.\n\n", len(body))

	for i, row := range body {
		pairs := make([]string, 0, len(row))
		for j, val := range row {
			if j >= len(columns) {
				break
			}
			if strings.TrimSpace(val) == "" {
				continue
			}
			pairs = append(pairs, fmt.Sprintf("%s: %s", columns[j], val))
		}
		fmt.Fprintf(&b, "Entry %d: %s\n", i+1, strings.Join(pairs, ", "))
	}
	return b.String()
}
