package items

import (
	"math"
	"testing"
)

func TestFinalizeComputesMean(t *testing.T) {
	r := RecordEvaluation{Fields: map[string]FieldEvaluation{
		"a": {FieldScore: 1.0, Comment: "should vanish"},
		"b": {FieldScore: 0.5, Comment: "partial"},
		"c": {FieldScore: 1.0},
		"d": {FieldScore: 0.0, Comment: "wrong"},
	}}
	r.OverallScore = 0.99
	r.Finalize()
	if math.Abs(r.OverallScore-0.625) > 1e-9 {
		t.Fatalf("overall_score: want=0.625 got=%v", r.OverallScore)
	}
	if r.Fields["a"].Comment != "" {
		t.Fatalf("comment on perfect score kept: %q", r.Fields["a"].Comment)
	}
	if r.Fields["b"].Comment != "partial" {
		t.Fatalf("comment lost: %q", r.Fields["b"].Comment)
	}
}

func TestFinalizeClamps(t *testing.T) {
	r := RecordEvaluation{Fields: map[string]FieldEvaluation{
		"a": {FieldScore: 3},
		"b": {FieldScore: -1},
	}}
	r.Finalize()
	if r.Fields["a"].FieldScore != 1 || r.Fields["b"].FieldScore != 0 {
		t.Fatalf("scores not clamped: %+v", r.Fields)
	}
	if r.OverallScore != 0.5 {
		t.Fatalf("overall_score=%v", r.OverallScore)
	}
}

func TestSchemaIsOrderedAndCopied(t *testing.T) {
	names := FieldNames()
	want := []string{"name", "itemColor", "additionalInfo", "foundDate", "location", "foundPlace", "notificationDate", "warehousePlace"}
	if len(names) != len(want) {
		t.Fatalf("len=%d", len(names))
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("field %d: want=%s got=%s", i, want[i], names[i])
		}
	}
	s := Schema()
	s[0].Name = "mutated"
	if FieldNames()[0] != "name" {
		t.Fatalf("schema mutated through copy")
	}
	if !IsDateField("foundDate") || IsDateField("location") {
		t.Fatalf("date field detection wrong")
	}
}

func TestNormalizeFillsMissingFields(t *testing.T) {
	r := NormalizedRecord{"name": "telefon", "extra": "x"}.Normalize()
	if len(r) != 9 {
		t.Fatalf("len=%d", len(r))
	}
	if v, ok := r["warehousePlace"]; !ok || v != "" {
		t.Fatalf("warehousePlace=%q ok=%v", v, ok)
	}
	if r["extra"] != "x" {
		t.Fatalf("extra key dropped")
	}
}

func TestNonEmptyJoinAndTableValidate(t *testing.T) {
	if got := NonEmptyJoin([]string{" telefon ", "", "czarny", "  "}); got != "telefon, czarny" {
		t.Fatalf("got=%q", got)
	}
	bad := CsvTable{Header: []string{"a", "b"}, Rows: [][]string{{"1"}}}
	if err := bad.Validate(); err == nil {
		t.Fatalf("expected rectangularity error")
	}
}

func TestNormalizedRecordMarshalsInSchemaOrder(t *testing.T) {
	b, err := NormalizedRecord{"location": "Gdańsk", "zz": "1", "name": "telefon"}.MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON: %v", err)
	}
	want := `{"name":"telefon","location":"Gdańsk","zz":"1"}`
	if string(b) != want {
		t.Fatalf("want=%s got=%s", want, b)
	}
}
