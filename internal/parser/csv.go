package parser

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/pdfgpt/internal/doctree"
)

// csvBatchSize is the number of data rows rendered into one page.
const csvBatchSize = 20

// CSVParser handles CSV files. Rows are rendered as "header: value" pairs
// in batches, one batch per page.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string, visit VisitFunc) error {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("parse csv: %w", err)
	}

	var batch [][]string
	first := 2 // 1-indexed, after the header row
	n := 0
	emit := func() bool {
		if len(batch) == 0 {
			return true
		}
		n++
		title := fmt.Sprintf("Rows %d-%d", first, first+len(batch)-1)
		first += len(batch)
		text := renderRows(headers, batch)
		batch = batch[:0]
		return visit(doctree.Page{Number: n, Title: title, Text: text})
	}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("parse csv: %w", err)
		}
		batch = append(batch, row)
		if len(batch) == csvBatchSize && !emit() {
			return nil
		}
	}
	emit()
	return nil
}

func renderRows(headers []string, rows [][]string) string {
	var text strings.Builder
	text.WriteString("Headers: " + strings.Join(headers, ", ") + "\n\n")
	for _, row := range rows {
		for j, cell := range row {
			if j < len(headers) {
				text.WriteString(headers[j] + ": " + cell)
			} else {
				text.WriteString(cell)
			}
			if j < len(row)-1 {
				text.WriteString(", ")
			}
		}
		text.WriteString("\n")
	}
	return text.String()
}
