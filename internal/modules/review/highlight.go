package review

import (
	"html"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/odnalezione/odnalezione-backend/internal/domain/items"
)

// Span is a byte range [Start, End) of the source row.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

var wordSplit = regexp.MustCompile(`[\s,;:.\-()\[\]/\\]+`)

// Words splits a value on whitespace and punctuation.
func Words(s string) []string {
	var out []string
	for _, w := range wordSplit.Split(s, -1) {
		if w = strings.TrimSpace(w); w != "" {
			out = append(out, w)
		}
	}
	return out
}

// Highlight finds where value occurs in sourceRow. Dates match any of their
// renderings, location matches as a whole, other fields match word by word on
// word boundaries. Matching ignores case.
func Highlight(sourceRow, field, value string) []Span {
	value = strings.TrimSpace(value)
	if sourceRow == "" || value == "" || value == "-" {
		return nil
	}

	var spans []Span
	switch {
	case items.IsDateField(field):
		for _, p := range DatePatterns(value) {
			spans = append(spans, find(sourceRow, p, isDigitRune)...)
		}
	case field == items.FieldLocation:
		spans = find(sourceRow, value, nil)
	default:
		for _, w := range Words(value) {
			spans = append(spans, find(sourceRow, w, isWordRune)...)
		}
	}
	return merge(spans)
}

// find returns every case-insensitive occurrence of literal. With a non-nil
// joins, a match touching a rune for which joins is true on either side is
// part of a longer token and skipped.
func find(text, literal string, joins func(rune) bool) []Span {
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(literal))
	if err != nil {
		return nil
	}
	var out []Span
	for _, loc := range re.FindAllStringIndex(text, -1) {
		if joins != nil && !atBoundary(text, loc[0], loc[1], joins) {
			continue
		}
		out = append(out, Span{Start: loc[0], End: loc[1]})
	}
	return out
}

func atBoundary(text string, start, end int, joins func(rune) bool) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if joins(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if joins(r) {
			return false
		}
	}
	return true
}

// Dates may touch letters, as in "13.07.2024r.", but not other digits.
func isDigitRune(r rune) bool { return unicode.IsDigit(r) }

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func merge(spans []Span) []Span {
	if len(spans) == 0 {
		return nil
	}
	sort.Slice(spans, func(i, j int) bool {
		if spans[i].Start != spans[j].Start {
			return spans[i].Start < spans[j].Start
		}
		return spans[i].End > spans[j].End
	})
	out := []Span{spans[0]}
	for _, s := range spans[1:] {
		last := &out[len(out)-1]
		if s.Start <= last.End {
			if s.End > last.End {
				last.End = s.End
			}
			continue
		}
		out = append(out, s)
	}
	return out
}

const markOpen = `<mark class="source-row-highlight">`
const markClose = `</mark>`

// HighlightHTML escapes sourceRow and wraps each span in a mark element.
func HighlightHTML(sourceRow string, spans []Span) string {
	var b strings.Builder
	pos := 0
	for _, s := range spans {
		if s.Start < pos || s.End > len(sourceRow) || s.Start >= s.End {
			continue
		}
		b.WriteString(html.EscapeString(sourceRow[pos:s.Start]))
		b.WriteString(markOpen)
		b.WriteString(html.EscapeString(sourceRow[s.Start:s.End]))
		b.WriteString(markClose)
		pos = s.End
	}
	b.WriteString(html.EscapeString(sourceRow[pos:]))
	return b.String()
}
