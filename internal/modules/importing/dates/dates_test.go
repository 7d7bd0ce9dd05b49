package dates

import "testing"

func TestCanonicalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"13-14 lipca 2024 r.", "2024-07-13"},
		{"13 lipca 2024", "2024-07-13"},
		{"1 Października 2023 r.", "2023-10-01"},
		{"5 pazdziernika 2023", "2023-10-05"},
		{"2 maj 2024", "2024-05-02"},
		{"13.VII.2024", "2024-07-13"},
		{"13-07-2024", "2024-07-13"},
		{"13.07.2024", "2024-07-13"},
		{"3/7/2024", "2024-07-03"},
		{"13 07 2024", "2024-07-13"},
		{"13-14.07.2024", "2024-07-13"},
		{"13.07.2024 - 14.07.2024", "2024-07-13"},
		{"30.06-01.07.2024", "2024-06-30"},
		{"30.06 - 01.07.2024", "2024-06-30"},
		{"30 czerwca - 1 lipca 2024", "2024-06-30"},
		{"30 czerwca do 1 lipca 2024", "2024-06-30"},
		{"od 13 do 14 lipca 2024", "2024-07-13"},
		{"13 lipca - 14 lipca 2024 r.", "2024-07-13"},
		{"30.12-02.01.2025", ""},
		{"30 grudnia - 2 stycznia 2025", ""},
		{"2024-07-13", "2024-07-13"},
		{"2024-07-13T10:30:00Z", "2024-07-13"},
		{"2024.7.3", "2024-07-03"},
		{"znaleziono 13.07.2024 o 10:00", "2024-07-13"},
		{"", ""},
		{"wczoraj", ""},
		{"lipiec 2024", ""},
		{"31.02.2024", ""},
		{"07/13/2024", ""},
		{"13.07.24", ""},
		{"-", ""},
	}
	for _, tc := range cases {
		if got := Canonicalize(tc.in); got != tc.want {
			t.Fatalf("Canonicalize(%q): want=%q got=%q", tc.in, tc.want, got)
		}
	}
}

func TestIsCanonical(t *testing.T) {
	if !IsCanonical("2024-02-29") {
		t.Fatalf("leap day rejected")
	}
	for _, s := range []string{"2023-02-29", "2024-7-13", "13-07-2024", ""} {
		if IsCanonical(s) {
			t.Fatalf("%q accepted", s)
		}
	}
}
