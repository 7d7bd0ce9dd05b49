package review

import (
	"strings"
	"testing"

	"github.com/odnalezione/odnalezione-backend/internal/domain/items"
)

const row = "Telefon SAMSUNG, czarny; 13.07.2024; Warszawa Centrum; Łódź"

func spanText(s string, spans []Span) []string {
	out := make([]string, len(spans))
	for i, sp := range spans {
		out[i] = s[sp.Start:sp.End]
	}
	return out
}

func TestHighlightWordsIgnoreCase(t *testing.T) {
	got := spanText(row, Highlight(row, items.FieldName, "telefon Samsung"))
	if len(got) != 2 || got[0] != "Telefon" || got[1] != "SAMSUNG" {
		t.Fatalf("spans=%q", got)
	}
}

func TestHighlightRespectsWordBoundaries(t *testing.T) {
	if spans := Highlight(row, items.FieldName, "Sam"); len(spans) != 0 {
		t.Fatalf("partial word matched: %v", spans)
	}
	got := spanText(row, Highlight(row, items.FieldWarehousePlace, "łódź"))
	if len(got) != 1 || got[0] != "Łódź" {
		t.Fatalf("spans=%q", got)
	}
}

func TestHighlightDateMatchesOtherRenderings(t *testing.T) {
	got := spanText(row, Highlight(row, items.FieldFoundDate, "2024-07-13"))
	if len(got) != 1 || got[0] != "13.07.2024" {
		t.Fatalf("spans=%q", got)
	}
}

func TestHighlightDateSkipsLongerNumbers(t *testing.T) {
	src := "parasol 21.7.2024; klucze 1.7.2024r."
	got := spanText(src, Highlight(src, items.FieldFoundDate, "2024-07-01"))
	if len(got) != 1 || got[0] != "1.7.2024" {
		t.Fatalf("spans=%q", got)
	}
	if spans := Highlight("12024-07-13", items.FieldFoundDate, "2024-07-13"); len(spans) != 0 {
		t.Fatalf("matched inside a longer number: %v", spans)
	}
}

func TestHighlightLocationMatchesWholeValue(t *testing.T) {
	got := spanText(row, Highlight(row, items.FieldLocation, "warszawa centrum"))
	if len(got) != 1 || got[0] != "Warszawa Centrum" {
		t.Fatalf("spans=%q", got)
	}
	if spans := Highlight(row, items.FieldLocation, "Warszawa Wola"); len(spans) != 0 {
		t.Fatalf("unexpected spans %v", spans)
	}
}

func TestHighlightEmptyAndDash(t *testing.T) {
	for _, v := range []string{"", " ", "-"} {
		if spans := Highlight(row, items.FieldName, v); spans != nil {
			t.Fatalf("value %q highlighted %v", v, spans)
		}
	}
}

func TestHighlightMergesOverlaps(t *testing.T) {
	spans := Highlight("klucze do domu", items.FieldLocation, "klucze do domu")
	spans = merge(append(spans, Span{Start: 3, End: 9}))
	if len(spans) != 1 || spans[0] != (Span{Start: 0, End: 14}) {
		t.Fatalf("spans=%v", spans)
	}
}

func TestHighlightHTMLEscapes(t *testing.T) {
	src := "a+b <x> & c"
	spans := Highlight(src, items.FieldName, "a+b")
	got := HighlightHTML(src, spans)
	want := `<mark class="source-row-highlight">a+b</mark> &lt;x&gt; &amp; c`
	if got != want {
		t.Fatalf("html=%q", got)
	}
	if strings.Contains(HighlightHTML(src, nil), "<x>") {
		t.Fatalf("unescaped output")
	}
}

func TestInputDateConversions(t *testing.T) {
	to := map[string]string{
		"":           "",
		"2024-07-13": "2024-07-13",
		"13-07-2024": "2024-07-13",
		"3.7.2024":   "2024-07-03",
		"13/07/2024": "2024-07-13",
		"lipiec":     "lipiec",
	}
	for in, want := range to {
		if got := ToInputDate(in); got != want {
			t.Fatalf("ToInputDate(%q)=%q want=%q", in, got, want)
		}
	}
	from := map[string]string{
		"2024-07-13": "13-07-2024",
		"13-07-2024": "13-07-2024",
		"x":          "x",
	}
	for in, want := range from {
		if got := FromInputDate(in); got != want {
			t.Fatalf("FromInputDate(%q)=%q want=%q", in, got, want)
		}
	}
}

func TestDatePatterns(t *testing.T) {
	ps := DatePatterns("2024-07-03")
	want := []string{"2024-07-03", "03-07-2024", "03.07.2024", "03/07/2024", "03 07 2024", "2024.07.03", "3.7.2024"}
	for _, w := range want {
		found := false
		for _, p := range ps {
			if p == w {
				found = true
			}
		}
		if !found {
			t.Fatalf("missing %q in %v", w, ps)
		}
	}
	if got := DatePatterns("wczoraj"); len(got) != 1 || got[0] != "wczoraj" {
		t.Fatalf("got=%v", got)
	}
}
