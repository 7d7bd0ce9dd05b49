package csvload

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/cases"

	"github.com/odnalezione/odnalezione-backend/internal/domain/items"
)

// ErrNoRecords is returned when none of the parse strategies yields a data row.
var ErrNoRecords = errors.New("no records found in csv")

const Delimiter = ';'

const ordinalPrefix = "lp"

var fold = cases.Fold()

type strategy struct {
	name  string
	parse func(text string) (header []string, rows [][]string, ok bool)
}

// strategies are tried in order; the first one producing at least one row wins.
var strategies = []strategy{
	{name: "header", parse: parseWithHeader},
	{name: "skip_preamble", parse: parseSkippingPreamble},
	{name: "matrix", parse: parseMatrix},
}

// Load decodes raw bytes and parses them into a rectangular table. It also
// returns the name of the strategy that produced the table.
func Load(raw []byte) (items.CsvTable, string, error) {
	text, err := Decode(raw)
	if err != nil {
		return items.CsvTable{}, "", fmt.Errorf("decode csv: %w", err)
	}
	return LoadString(text)
}

func LoadString(text string) (items.CsvTable, string, error) {
	for _, s := range strategies {
		header, rows, ok := s.parse(text)
		if !ok || len(rows) == 0 || len(header) == 0 {
			continue
		}
		return shape(header, rows), s.name, nil
	}
	return items.CsvTable{}, "", ErrNoRecords
}

func readRecords(text string) ([][]string, bool) {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = Delimiter
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var out [][]string
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false
		}
		if isBlank(rec) {
			continue
		}
		out = append(out, rec)
	}
	return out, true
}

func parseWithHeader(text string) ([]string, [][]string, bool) {
	recs, ok := readRecords(text)
	if !ok || len(recs) < 2 {
		return nil, nil, false
	}
	header, rows := recs[0], recs[1:]
	if looksLikePreamble(header, rows) {
		return nil, nil, false
	}
	return header, rows, true
}

func parseSkippingPreamble(text string) ([]string, [][]string, bool) {
	rest, ok := dropFirstLine(text)
	if !ok {
		return nil, nil, false
	}
	recs, ok := readRecords(rest)
	if !ok || len(recs) < 2 {
		return nil, nil, false
	}
	return recs[0], recs[1:], true
}

// parseMatrix treats the file as headerless. The first row is still dropped.
func parseMatrix(text string) ([]string, [][]string, bool) {
	recs, ok := readRecords(text)
	if !ok || len(recs) < 2 {
		return nil, nil, false
	}
	width := 0
	for _, r := range recs {
		if len(r) > width {
			width = len(r)
		}
	}
	header := make([]string, width)
	for i := range header {
		header[i] = fmt.Sprintf("col%d", i)
	}
	return header, recs[1:], true
}

// looksLikePreamble reports a title line: a line with no delimiter above rows
// that carry several values. A delimited first line such as "Nazwa;;" is a
// header with unnamed columns.
func looksLikePreamble(header []string, rows [][]string) bool {
	if len(header) != 1 || strings.TrimSpace(header[0]) == "" {
		return false
	}
	for _, r := range rows {
		if nonEmpty(r) > 1 {
			return true
		}
	}
	return false
}

func dropFirstLine(text string) (string, bool) {
	for {
		idx := strings.IndexByte(text, '\n')
		if idx == -1 {
			return "", false
		}
		line := strings.TrimSpace(text[:idx])
		text = text[idx+1:]
		if line != "" {
			return text, true
		}
	}
}

func shape(header []string, rows [][]string) items.CsvTable {
	header = trimAll(header)
	if len(header) > 0 && strings.HasPrefix(fold.String(header[0]), ordinalPrefix) {
		header = header[1:]
		for i, r := range rows {
			if len(r) > 0 {
				rows[i] = r[1:]
			}
		}
	}
	header = uniqueHeaders(header)

	out := items.CsvTable{Header: header, Rows: make([][]string, 0, len(rows))}
	for _, r := range rows {
		row := make([]string, len(header))
		for i := range row {
			if i < len(r) {
				row[i] = strings.TrimSpace(r[i])
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

func uniqueHeaders(header []string) []string {
	seen := make(map[string]int, len(header))
	out := make([]string, len(header))
	for i, h := range header {
		if h == "" {
			h = fmt.Sprintf("col%d", i)
		}
		seen[h]++
		if n := seen[h]; n > 1 {
			h = fmt.Sprintf("%s_%d", h, n)
		}
		out[i] = h
	}
	return out
}

func trimAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.TrimSpace(s)
	}
	return out
}

func nonEmpty(rec []string) int {
	n := 0
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			n++
		}
	}
	return n
}

func isBlank(rec []string) bool { return nonEmpty(rec) == 0 }

// Render writes the table back as ';'-delimited CSV with a header line.
func Render(t items.CsvTable) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = Delimiter
	if err := w.Write(t.Header); err != nil {
		return "", err
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return "", err
	}
	return buf.String(), nil
}
