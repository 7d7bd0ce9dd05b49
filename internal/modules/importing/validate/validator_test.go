package validate

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/odnalezione/odnalezione-backend/internal/domain/items"
	"github.com/odnalezione/odnalezione-backend/internal/modules/importing/prompts"
	"github.com/odnalezione/odnalezione-backend/internal/platform/logger"
)

type fakeClient struct {
	reply  string
	system string
	user   string
}

func (f *fakeClient) CompleteJSON(ctx context.Context, system string, user string) (string, error) {
	f.system, f.user = system, user
	return f.reply, nil
}

func (f *fakeClient) Model() string { return "fake" }

func newValidator(t *testing.T, fc *fakeClient) *Validator {
	t.Helper()
	cat, err := prompts.Default()
	if err != nil {
		t.Fatalf("prompts: %v", err)
	}
	return New(logger.Nop(), fc, cat)
}

func TestValidateRowRecomputesOverallScore(t *testing.T) {
	fc := &fakeClient{reply: `{
		"overall_score": 0.9,
		"fields": {
			"name": {"source_columns": ["Nazwa"], "source_value": "telefon", "json_value": "telefon", "field_score": 1, "comment": "ok"},
			"itemColor": {"source_columns": "Kolor", "source_value": "czarny", "json_value": "czarny", "field_score": "0.5", "comment": "partial"},
			"additionalInfo": {"source_columns": [], "source_value": "", "json_value": "", "field_score": 1, "comment": ""},
			"foundDate": {"source_columns": ["Data"], "source_value": "wczoraj", "json_value": "", "field_score": 0, "comment": "no date"}
		}
	}`}
	v := newValidator(t, fc)
	rec := items.NormalizedRecord{"name": "telefon", "itemColor": "czarny"}

	ev, err := v.ValidateRow(context.Background(), []string{"Nazwa", "Kolor", "Data"}, []string{"telefon", " czarny ", ""}, rec, 3)
	if err != nil {
		t.Fatalf("ValidateRow: %v", err)
	}
	if ev.Index != 3 {
		t.Fatalf("index=%d", ev.Index)
	}
	if ev.SourceRow != "telefon, czarny" {
		t.Fatalf("source_row=%q", ev.SourceRow)
	}
	if len(ev.Fields) != 8 {
		t.Fatalf("fields=%d", len(ev.Fields))
	}
	// Four answered fields [1, .5, 1, 0] plus four missing empty fields scored 1.
	want := (1 + 0.5 + 1 + 0 + 4) / 8.0
	if math.Abs(ev.OverallScore-want) > 1e-9 {
		t.Fatalf("overall_score: want=%v got=%v", want, ev.OverallScore)
	}
	if ev.Fields["name"].Comment != "" {
		t.Fatalf("comment kept on perfect score")
	}
	if got := ev.Fields["itemColor"].SourceColumns; len(got) != 1 || got[0] != "Kolor" {
		t.Fatalf("source_columns=%v", got)
	}

	if !strings.HasPrefix(fc.user, "Użyj poniższych danych") {
		t.Fatalf("user message missing preamble: %q", fc.user)
	}
	idx := strings.Index(fc.user, "{")
	var sent map[string]json.RawMessage
	if err := json.Unmarshal([]byte(fc.user[idx:]), &sent); err != nil {
		t.Fatalf("payload not JSON: %v", err)
	}
	for _, k := range []string{"target_schema", "csv_header", "csv_row", "json_record"} {
		if _, ok := sent[k]; !ok {
			t.Fatalf("payload missing %s", k)
		}
	}
}

func TestParseResponseMeanOfFourFields(t *testing.T) {
	raw := `{"fields": {
		"name": {"field_score": 1.0},
		"itemColor": {"field_score": 0.5, "comment": "x"},
		"additionalInfo": {"field_score": 1.0},
		"foundDate": {"field_score": 0.0, "comment": "y"},
		"location": {"field_score": 1.0},
		"foundPlace": {"field_score": 0.5, "comment": "z"},
		"notificationDate": {"field_score": 1.0},
		"warehousePlace": {"field_score": 0.0, "comment": "w"}
	}}`
	ev, err := ParseResponse(raw, nil, items.NormalizedRecord{}, 1)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if math.Abs(ev.OverallScore-0.625) > 1e-9 {
		t.Fatalf("overall_score: want=0.625 got=%v", ev.OverallScore)
	}
}

func TestParseResponseMissingFields(t *testing.T) {
	ev, err := ParseResponse(`{"overall_score": 1, "fields": {}}`, []string{"a"}, items.NormalizedRecord{"name": "telefon"}, 1)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	name := ev.Fields["name"]
	if name.FieldScore != 0 || name.Comment != MissingFieldComment || name.JSONValue != "telefon" {
		t.Fatalf("name=%+v", name)
	}
	if color := ev.Fields["itemColor"]; color.FieldScore != 1 || color.Comment != "" {
		t.Fatalf("itemColor=%+v", color)
	}
}

func TestParseResponseInvalidJSON(t *testing.T) {
	for _, raw := range []string{"nope", `{"overall_score": 1}`, "```json\n{\n```"} {
		_, err := ParseResponse(raw, nil, nil, 2)
		var ve *Error
		if !errors.As(err, &ve) {
			t.Fatalf("%q: want *Error got %v", raw, err)
		}
		if ve.Index != 2 {
			t.Fatalf("index=%d", ve.Index)
		}
	}
}

func TestFlexFloatCommaDecimal(t *testing.T) {
	var f flexFloat
	if err := json.Unmarshal([]byte(`"0,75"`), &f); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if float64(f) != 0.75 {
		t.Fatalf("got=%v", float64(f))
	}
}
