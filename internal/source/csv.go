package source

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVLoader turns each data row into a paragraph of bold header labels
// followed by the cell values.
type CSVLoader struct{}

func (l *CSVLoader) Load(r io.Reader, filename string) (string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return "", fmt.Errorf("parse csv %s: %w", filename, err)
	}
	if len(records) == 0 {
		return "", nil
	}

	headers := records[0]
	var rows []string
	for _, row := range records[1:] {
		cells := make([]string, 0, len(row))
		for j, cell := range row {
			if j < len(headers) && headers[j] != "" {
				cells = append(cells, "**"+headers[j]+"**: "+cell)
			} else {
				cells = append(cells, cell)
			}
		}
		rows = append(rows, strings.Join(cells, ", "))
	}
	return joinBlocks(rows), nil
}
