package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/dgallion1/docnav/internal/doctree"
)

// csvBatch is how many data rows make one section.
const csvBatch = 20

// CSVParser handles CSV files. The header row labels every cell; rows are
// grouped into sections named by their line range so the contents page can
// jump between them.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*doctree.DocTree, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	b := newBuilder()
	if len(records) == 0 {
		return b.build(baseTitle(filename)), nil
	}
	headers, rows := records[0], records[1:]
	b.para("Columns: " + strings.Join(headers, ", "))

	for i := 0; i < len(rows); i += csvBatch {
		end := min(i+csvBatch, len(rows))
		// Line numbers are 1-based and the header is line 1.
		b.heading(1, fmt.Sprintf("Rows %d to %d", i+2, end+1))
		for _, row := range rows[i:end] {
			cells := make([]string, 0, len(row))
			for j, cell := range row {
				if j < len(headers) && headers[j] != "" {
					cells = append(cells, headers[j]+": "+cell)
				} else {
					cells = append(cells, cell)
				}
			}
			b.para(strings.Join(cells, ", "))
		}
	}
	return b.build(baseTitle(filename)), nil
}
