package review

import (
	"testing"

	"github.com/odnalezione/odnalezione-backend/internal/domain/items"
)

func TestImportDraftRecordsRoundTrip(t *testing.T) {
	d := &ImportDraft{FileName: "a.csv"}
	recs := []items.RecordEvaluation{
		{Index: 2, SourceRow: "b", OverallScore: 0.5, Fields: map[string]items.FieldEvaluation{"name": {JSONValue: "b", FieldScore: 0.5}}},
		{Index: 1, SourceRow: "a", OverallScore: 1, Fields: map[string]items.FieldEvaluation{"name": {JSONValue: "a", FieldScore: 1}}},
	}
	if err := d.SetRecords(recs); err != nil {
		t.Fatalf("SetRecords: %v", err)
	}
	got, err := d.DecodeRecords()
	if err != nil {
		t.Fatalf("DecodeRecords: %v", err)
	}
	if len(got) != 2 || got[0].Index != 2 || got[1].Index != 1 {
		t.Fatalf("order not preserved: %+v", got)
	}
	if got[0].Fields["name"].JSONValue != "b" {
		t.Fatalf("field lost: %+v", got[0])
	}
}

func TestImportDraftAcceptedDedup(t *testing.T) {
	d := &ImportDraft{}
	if err := d.SetAccepted([]int{3, 1, 3, 2}); err != nil {
		t.Fatalf("SetAccepted: %v", err)
	}
	got, err := d.DecodeAccepted()
	if err != nil {
		t.Fatalf("DecodeAccepted: %v", err)
	}
	if len(got) != 3 || got[0] != 1 || got[2] != 3 {
		t.Fatalf("got=%v", got)
	}
	empty := &ImportDraft{}
	if got, _ := empty.DecodeAccepted(); len(got) != 0 {
		t.Fatalf("empty draft accepted=%v", got)
	}
}
