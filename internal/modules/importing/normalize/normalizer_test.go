package normalize

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/odnalezione/odnalezione-backend/internal/domain/items"
	"github.com/odnalezione/odnalezione-backend/internal/modules/importing/prompts"
	"github.com/odnalezione/odnalezione-backend/internal/platform/logger"
)

type fakeClient struct {
	reply string
	err   error
	users []string
}

func (f *fakeClient) CompleteJSON(ctx context.Context, system string, user string) (string, error) {
	f.users = append(f.users, user)
	return f.reply, f.err
}

func (f *fakeClient) Model() string { return "fake" }

func newNormalizer(t *testing.T, fc *fakeClient) *Normalizer {
	t.Helper()
	cat, err := prompts.Default()
	if err != nil {
		t.Fatalf("prompts: %v", err)
	}
	return New(logger.Nop(), fc, cat)
}

var twoRows = items.CsvTable{
	Header: []string{"Nazwa", "Data"},
	Rows:   [][]string{{"telefon", "13-14 lipca 2024 r."}, {"portfel", "jutro"}},
}

func TestNormalizeAppliesFieldRules(t *testing.T) {
	fc := &fakeClient{reply: "```json\n" + `{"items":[
		{"name":"telefon","additionalInfo":"Telefon","foundDate":"13-14 lipca 2024 r.","itemColor":null},
		{"name":"portfel","additionalInfo":"skórzany","foundDate":"jutro","notificationDate":20240713}
	]}` + "\n```"}
	n := newNormalizer(t, fc)

	recs, err := n.Normalize(context.Background(), twoRows)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("len=%d", len(recs))
	}
	if got := recs[0]["foundDate"]; got != "2024-07-13" {
		t.Fatalf("foundDate: want=2024-07-13 got=%q", got)
	}
	if got := recs[0]["additionalInfo"]; got != "" {
		t.Fatalf("additionalInfo duplicating name kept: %q", got)
	}
	if got := recs[1]["foundDate"]; got != "" {
		t.Fatalf("unparseable date passed through: %q", got)
	}
	if got := recs[1]["notificationDate"]; got != "" {
		t.Fatalf("numeric date passed through: %q", got)
	}
	if got := recs[1]["additionalInfo"]; got != "skórzany" {
		t.Fatalf("additionalInfo=%q", got)
	}
	for _, r := range recs {
		if len(r) != len(items.FieldNames()) {
			t.Fatalf("record missing schema fields: %v", r)
		}
	}
	if len(fc.users) != 1 || !strings.Contains(fc.users[0], "telefon;13-14 lipca 2024 r.") {
		t.Fatalf("csv not embedded in prompt: %v", fc.users)
	}
}

func TestNormalizeCountMismatchIsError(t *testing.T) {
	fc := &fakeClient{reply: `{"items":[{"name":"telefon"}]}`}
	_, err := newNormalizer(t, fc).Normalize(context.Background(), twoRows)
	var ne *Error
	if !errors.As(err, &ne) {
		t.Fatalf("want *Error got %v", err)
	}
	if !strings.Contains(ne.Reason, "expected 2 items, got 1") {
		t.Fatalf("reason=%q", ne.Reason)
	}
	if ne.Raw != fc.reply {
		t.Fatalf("raw payload not kept: %q", ne.Raw)
	}
}

func TestParseResponseRejectsMalformed(t *testing.T) {
	for _, raw := range []string{
		"not json",
		`{"records":[]}`,
		`{"items":{"name":"x"}}`,
		`{"items":[null]}`,
		`[{"name":"x"}]`,
	} {
		_, err := ParseResponse(raw, 1)
		var ne *Error
		if !errors.As(err, &ne) {
			t.Fatalf("%q: want *Error got %v", raw, err)
		}
		if !strings.Contains(ne.Error(), raw) {
			t.Fatalf("%q: raw text missing from message %q", raw, ne.Error())
		}
	}
}

func TestNormalizeTransportError(t *testing.T) {
	boom := errors.New("boom")
	_, err := newNormalizer(t, &fakeClient{err: boom}).Normalize(context.Background(), twoRows)
	if !errors.Is(err, boom) {
		t.Fatalf("want wrapped boom, got %v", err)
	}
}

func TestParseResponseStringifiesAndDropsUnknownKeys(t *testing.T) {
	recs, err := ParseResponse(`{"items":[{"name":" klucze ","extra":"x","itemColor":true}]}`, 1)
	if err != nil {
		t.Fatalf("ParseResponse: %v", err)
	}
	if _, ok := recs[0]["extra"]; ok {
		t.Fatalf("unknown key kept: %v", recs[0])
	}
	if recs[0]["name"] != "klucze" || recs[0]["itemColor"] != "true" {
		t.Fatalf("unexpected record: %v", recs[0])
	}
}
