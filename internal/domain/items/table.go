package items

import "fmt"

// CsvTable is a header plus rows that are always exactly header-length.
type CsvTable struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
}

func (t CsvTable) Validate() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Header) {
			return fmt.Errorf("row %d has %d cells, header has %d", i, len(row), len(t.Header))
		}
	}
	return nil
}

func (t CsvTable) Len() int { return len(t.Rows) }
