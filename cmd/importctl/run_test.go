package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/odnalezione/odnalezione-backend/internal/domain/items"
	"github.com/odnalezione/odnalezione-backend/internal/modules/importing"
)

type fakeRunner struct {
	got  importing.Request
	resp *importing.Response
}

func (f *fakeRunner) Run(ctx context.Context, req importing.Request) (*importing.Response, error) {
	f.got = req
	return f.resp, nil
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func TestBuildRequestValidateNeedsJSON(t *testing.T) {
	dir := t.TempDir()
	csv := writeFile(t, dir, "rzeczy.csv", "Nazwa\ntelefon\n")
	if _, err := buildRequest(importing.ActionValidate, options{csvPath: csv}); !errors.Is(err, importing.ErrMissingJSONContent) {
		t.Fatalf("want ErrMissingJSONContent, got %v", err)
	}

	bad := writeFile(t, dir, "bad.json", "{nope")
	if _, err := buildRequest(importing.ActionValidate, options{csvPath: csv, jsonPath: bad}); !errors.Is(err, importing.ErrInvalidJSONContent) {
		t.Fatalf("want ErrInvalidJSONContent, got %v", err)
	}

	good := writeFile(t, dir, "good.json", `[{"name":"telefon"}]`)
	req, err := buildRequest(importing.ActionValidate, options{csvPath: csv, jsonPath: good})
	if err != nil {
		t.Fatalf("buildRequest: %v", err)
	}
	if req.FileName != "rzeczy.csv" || req.Action != "validate" {
		t.Fatalf("req=%+v", req)
	}
}

func TestExecuteWritesResultAndSummary(t *testing.T) {
	r := &fakeRunner{resp: &importing.Response{
		Action: importing.ActionValidate,
		Results: []items.RecordEvaluation{
			{Index: 1, SourceRow: "telefon, 13.07.2024", OverallScore: 0.8},
			{Index: 2, SourceRow: "portfel", OverallScore: 0.1},
		},
	}}
	out := filepath.Join(t.TempDir(), "out.json")
	var stdout, summary bytes.Buffer

	err := execute(context.Background(), r, importing.Request{Action: "validate"}, out, &stdout, &summary)
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if stdout.Len() != 0 {
		t.Fatalf("stdout should be empty when --out is set: %q", stdout.String())
	}
	b, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read out: %v", err)
	}
	if !strings.Contains(string(b), `"results"`) {
		t.Fatalf("out=%s", b)
	}
	s := summary.String()
	if !strings.Contains(s, "Wysoka") || !strings.Contains(s, "Bardzo niska") {
		t.Fatalf("summary=%q", s)
	}
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[1], "1 ") || !strings.HasPrefix(lines[2], "2 ") {
		t.Fatalf("summary rows not numbered by record index: %q", s)
	}
}

func TestExecuteProcessSummaryCountsRecords(t *testing.T) {
	r := &fakeRunner{resp: &importing.Response{
		Action:   importing.ActionProcess,
		JSONData: &importing.JSONData{Items: []items.NormalizedRecord{{"name": "a"}, {"name": "b"}}},
	}}
	var stdout, summary bytes.Buffer
	if err := execute(context.Background(), r, importing.Request{Action: "process"}, "", &stdout, &summary); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(stdout.String(), `"jsonData"`) {
		t.Fatalf("stdout=%s", stdout.String())
	}
	if summary.String() != "process: 2 records\n" {
		t.Fatalf("summary=%q", summary.String())
	}
}

func TestRootCommandRunsAction(t *testing.T) {
	dir := t.TempDir()
	csv := writeFile(t, dir, "rzeczy.csv", "Nazwa\ntelefon\n")
	r := &fakeRunner{resp: &importing.Response{Action: importing.ActionFull}}

	cmd := newRootCmd(func() (runner, func(), error) { return r, nil, nil })
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs([]string{"full", "--csv", csv})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if r.got.Action != "full" || !strings.Contains(r.got.CSVContent, "telefon") {
		t.Fatalf("got=%+v", r.got)
	}
}
