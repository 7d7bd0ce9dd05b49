package dates

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
)

const Layout = "2006-01-02"

var fold = cases.Fold()

type pattern struct {
	re *regexp.Regexp
	// build returns (year, month, day) strings from submatches.
	build func(m []string) (string, string, string)
	// ambiguous, when set, rejects a match that cannot be read with certainty.
	ambiguous func(m []string) bool
}

// Patterns are matched against the case-folded input. When several match, the
// leftmost wins; ties go to the earlier pattern, so ranges beat plain dates.
// Ranges yield their first day and take the year written after the second.
var patterns = []pattern{
	{
		re:    regexp.MustCompile(`\b(\d{4})[-./](\d{1,2})[-./](\d{1,2})`),
		build: func(m []string) (string, string, string) { return m[1], m[2], m[3] },
	},
	// 30.06-01.07.2024
	{
		re:        regexp.MustCompile(`\b(\d{1,2})[./](\d{1,2})\.?\s*[-–—]\s*\d{1,2}[./](\d{1,2})[./](\d{4})\b`),
		build:     func(m []string) (string, string, string) { return m[4], m[2], m[1] },
		ambiguous: crossesYear(2, 3),
	},
	// 13-14.07.2024
	{
		re:    regexp.MustCompile(`(?:^|[^\d./])(\d{1,2})\s*[-–—]\s*\d{1,2}[-./ ](\d{1,2})[-./ ](\d{4})\b`),
		build: func(m []string) (string, string, string) { return m[3], m[2], m[1] },
	},
	// 30 czerwca - 1 lipca 2024, 30 czerwca do 1 lipca 2024
	{
		re:        regexp.MustCompile(`\b(\d{1,2})[\s.]*(\p{L}+)\.?\s*(?:[-–—]|do\s)\s*\d{1,2}[\s.]*(\p{L}+)\.?[\s,.]*(\d{4})\b`),
		build:     func(m []string) (string, string, string) { return m[4], m[2], m[1] },
		ambiguous: crossesYear(2, 3),
	},
	// od 13 do 14 lipca 2024
	{
		re:    regexp.MustCompile(`\bod\s+(\d{1,2})\.?\s+do\s+\d{1,2}[\s.]*(\p{L}+)\.?[\s,.]*(\d{4})\b`),
		build: func(m []string) (string, string, string) { return m[3], m[2], m[1] },
	},
	{
		re:    regexp.MustCompile(`\b(\d{1,2})[-./ ](\d{1,2})[-./ ](\d{4})\b`),
		build: func(m []string) (string, string, string) { return m[3], m[2], m[1] },
	},
	{
		re:    regexp.MustCompile(`\b(\d{1,2})(?:\s*[-–—]\s*\d{1,2})?[\s.\-]*(\p{L}+)\.?[\s,.\-]*(\d{4})\b`),
		build: func(m []string) (string, string, string) { return m[3], m[2], m[1] },
	},
}

// crossesYear flags ranges whose first month comes after the second one, where
// the written year belongs to the second date only.
func crossesYear(first, second int) func(m []string) bool {
	return func(m []string) bool {
		a, okA := month(m[first])
		b, okB := month(m[second])
		return okA && okB && a > b
	}
}

var monthPrefixes = []struct {
	prefix string
	month  int
}{
	{"sty", 1}, {"lut", 2}, {"mar", 3}, {"kwi", 4}, {"maj", 5}, {"cze", 6},
	{"lip", 7}, {"sie", 8}, {"wrz", 9}, {"paź", 10}, {"paz", 10}, {"lis", 11}, {"gru", 12},
}

var romanMonths = map[string]int{
	"i": 1, "ii": 2, "iii": 3, "iv": 4, "v": 5, "vi": 6,
	"vii": 7, "viii": 8, "ix": 9, "x": 10, "xi": 11, "xii": 12,
}

// Canonicalize rewrites a date expression to YYYY-MM-DD. Ranges such as
// "13-14 lipca 2024 r." yield their first day. Anything that cannot be read
// with certainty yields "".
func Canonicalize(value string) string {
	t, ok := Parse(value)
	if !ok {
		return ""
	}
	return t.Format(Layout)
}

func Parse(value string) (time.Time, bool) {
	s := fold.String(strings.TrimSpace(value))
	if s == "" {
		return time.Time{}, false
	}

	best := -1
	var bestMatch []string
	var bestPattern pattern
	for _, p := range patterns {
		idx := p.re.FindStringSubmatchIndex(s)
		if idx == nil {
			continue
		}
		if best != -1 && idx[0] >= best {
			continue
		}
		m := make([]string, len(idx)/2)
		for i := range m {
			if idx[2*i] >= 0 {
				m[i] = s[idx[2*i]:idx[2*i+1]]
			}
		}
		if p.ambiguous != nil && p.ambiguous(m) {
			best, bestMatch = idx[0], nil
			continue
		}
		y, mo, d := p.build(m)
		if _, ok := assemble(y, mo, d); !ok {
			continue
		}
		best = idx[0]
		bestMatch = m
		bestPattern = p
	}
	if bestMatch == nil {
		return time.Time{}, false
	}
	y, mo, d := bestPattern.build(bestMatch)
	return assemble(y, mo, d)
}

// IsCanonical reports whether s is already a valid YYYY-MM-DD date.
func IsCanonical(s string) bool {
	t, err := time.Parse(Layout, s)
	return err == nil && t.Format(Layout) == s
}

func assemble(ys, ms, ds string) (time.Time, bool) {
	y, err := strconv.Atoi(ys)
	if err != nil || y < 1900 || y > 2100 {
		return time.Time{}, false
	}
	m, ok := month(ms)
	if !ok {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(ds)
	if err != nil || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	if t.Day() != d || int(t.Month()) != m {
		return time.Time{}, false
	}
	return t, true
}

func month(s string) (int, bool) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, n >= 1 && n <= 12
	}
	if n, ok := romanMonths[s]; ok {
		return n, true
	}
	if len([]rune(s)) < 3 {
		return 0, false
	}
	for _, mp := range monthPrefixes {
		if strings.HasPrefix(s, mp.prefix) {
			return mp.month, true
		}
	}
	return 0, false
}
