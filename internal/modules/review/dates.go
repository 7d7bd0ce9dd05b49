package review

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/odnalezione/odnalezione-backend/internal/modules/importing/dates"
)

var (
	isoDate   = regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`)
	dmyDate   = regexp.MustCompile(`^(\d{1,2})[-./](\d{1,2})[-./](\d{4})$`)
	inputDate = regexp.MustCompile(`^(\d{2})-(\d{2})-(\d{4})$`)
)

// ToInputDate converts DD-MM-YYYY or DD.MM.YYYY into the YYYY-MM-DD form date
// pickers expect. Other values are returned unchanged.
func ToInputDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || isoDate.MatchString(s) {
		return s
	}
	if m := dmyDate.FindStringSubmatch(s); m != nil {
		return m[3] + "-" + pad2(m[2]) + "-" + pad2(m[1])
	}
	return s
}

// FromInputDate converts YYYY-MM-DD into DD-MM-YYYY for display. Values already
// in DD-MM-YYYY, and anything unrecognized, are returned unchanged.
func FromInputDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || inputDate.MatchString(s) {
		return s
	}
	if m := isoDate.FindStringSubmatch(s); m != nil {
		return m[3] + "-" + m[2] + "-" + m[1]
	}
	return s
}

// DatePatterns lists renderings of a date that may appear in a source row:
// year-first and day-first orders, with hyphen, dot, slash and space separators,
// zero-padded and not. Unrecognized values are returned as the only pattern.
func DatePatterns(value string) []string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	iso := ToInputDate(value)
	if !dates.IsCanonical(iso) {
		return []string{value}
	}
	dmy := FromInputDate(iso)
	parts := strings.Split(dmy, "-")
	day, month, year := parts[0], parts[1], parts[2]

	out := []string{iso}
	seen := map[string]bool{iso: true}
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	for _, sep := range []string{"-", ".", "/", " "} {
		add(day + sep + month + sep + year)
	}
	for _, sep := range []string{".", "/"} {
		add(year + sep + month + sep + day)
	}
	d, m := unpad(day), unpad(month)
	for _, sep := range []string{"-", ".", "/", " "} {
		add(d + sep + m + sep + year)
	}
	return out
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func unpad(s string) string {
	n, err := strconv.Atoi(s)
	if err != nil {
		return s
	}
	return strconv.Itoa(n)
}
