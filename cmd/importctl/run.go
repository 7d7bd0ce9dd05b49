package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/odnalezione/odnalezione-backend/internal/modules/importing"
	"github.com/odnalezione/odnalezione-backend/internal/modules/review"
)

type runner interface {
	Run(ctx context.Context, req importing.Request) (*importing.Response, error)
}

type options struct {
	csvPath  string
	jsonPath string
	outPath  string
}

func buildRequest(action importing.Action, opts options) (importing.Request, error) {
	csv, err := os.ReadFile(opts.csvPath)
	if err != nil {
		return importing.Request{}, fmt.Errorf("read --csv: %w", err)
	}
	req := importing.Request{
		Action:     string(action),
		CSVContent: string(csv),
		FileName:   filepath.Base(opts.csvPath),
		FileType:   "text/csv",
	}
	if opts.jsonPath != "" {
		raw, err := os.ReadFile(opts.jsonPath)
		if err != nil {
			return importing.Request{}, fmt.Errorf("read --json: %w", err)
		}
		if !json.Valid(raw) {
			return importing.Request{}, fmt.Errorf("--json %s: %w", opts.jsonPath, importing.ErrInvalidJSONContent)
		}
		req.JSONContent = raw
	}
	return req, req.Validate()
}

// execute runs req, writes the JSON response to outPath (or stdout) and a
// per-record summary to summary.
func execute(ctx context.Context, r runner, req importing.Request, outPath string, stdout, summary io.Writer) error {
	resp, err := r.Run(ctx, req)
	if err != nil {
		return err
	}

	out := stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create --out: %w", err)
		}
		defer f.Close()
		out = f
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return writeSummary(summary, resp)
}

func writeSummary(w io.Writer, resp *importing.Response) error {
	evals := resp.Evaluations()
	if len(evals) == 0 {
		_, err := fmt.Fprintf(w, "%s: %d records\n", resp.Action, resp.RecordCount())
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tSCORE\tCOMPLIANCE\tSOURCE")
	for _, ev := range evals {
		c := review.ComplianceOf(ev.OverallScore)
		fmt.Fprintf(tw, "%d\t%.0f%%\t%s\t%s\n", ev.Index, ev.OverallScore*100, c.Label, truncate(ev.SourceRow, 60))
	}
	return tw.Flush()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
