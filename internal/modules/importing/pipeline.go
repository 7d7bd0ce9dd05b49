package importing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/odnalezione/odnalezione-backend/internal/domain/items"
	"github.com/odnalezione/odnalezione-backend/internal/modules/importing/csvload"
	"github.com/odnalezione/odnalezione-backend/internal/modules/importing/normalize"
	"github.com/odnalezione/odnalezione-backend/internal/platform/logger"
)

type RecordNormalizer interface {
	Normalize(ctx context.Context, table items.CsvTable) ([]items.NormalizedRecord, error)
}

type RecordValidator interface {
	ValidateRow(ctx context.Context, header []string, row []string, rec items.NormalizedRecord, index int) (items.RecordEvaluation, error)
}

type Pipeline struct {
	log        *logger.Logger
	normalizer RecordNormalizer
	validator  RecordValidator
}

func New(log *logger.Logger, n RecordNormalizer, v RecordValidator) *Pipeline {
	return &Pipeline{
		log:        log.With("component", "ImportPipeline"),
		normalizer: n,
		validator:  v,
	}
}

// Process loads the csv and normalizes every row.
func (p *Pipeline) Process(ctx context.Context, csvContent []byte) (*JSONData, error) {
	table, err := p.load(ctx, csvContent)
	if err != nil {
		return nil, err
	}
	recs, err := p.normalizer.Normalize(ctx, table)
	if err != nil {
		return nil, err
	}
	return &JSONData{Items: recs}, nil
}

// Validate scores previously normalized records against the csv they came from.
func (p *Pipeline) Validate(ctx context.Context, csvContent []byte, jsonContent json.RawMessage) ([]items.RecordEvaluation, error) {
	table, err := p.load(ctx, csvContent)
	if err != nil {
		return nil, err
	}
	recs, err := ParseJSONContent(jsonContent)
	if err != nil {
		return nil, err
	}
	return p.ValidateRecords(ctx, table, recs)
}

// ValidateRecords validates row i against record i, one model call at a time in
// index order. The counts are checked before any call is made.
func (p *Pipeline) ValidateRecords(ctx context.Context, table items.CsvTable, recs []items.NormalizedRecord) ([]items.RecordEvaluation, error) {
	if len(table.Rows) != len(recs) {
		return nil, fmt.Errorf("%w: csv has %d rows, json has %d records", ErrRecordCountMismatch, len(table.Rows), len(recs))
	}
	out := make([]items.RecordEvaluation, 0, len(recs))
	for i, row := range table.Rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ev, err := p.validator.ValidateRow(ctx, table.Header, row, recs[i], i+1)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

// Full normalizes the csv and validates the result against the same table.
func (p *Pipeline) Full(ctx context.Context, csvContent []byte) (*JSONData, []items.RecordEvaluation, error) {
	table, err := p.load(ctx, csvContent)
	if err != nil {
		return nil, nil, err
	}
	recs, err := p.normalizer.Normalize(ctx, table)
	if err != nil {
		return nil, nil, err
	}
	results, err := p.ValidateRecords(ctx, table, recs)
	if err != nil {
		return nil, nil, err
	}
	return &JSONData{Items: recs}, results, nil
}

func (p *Pipeline) load(ctx context.Context, csvContent []byte) (items.CsvTable, error) {
	table, strategy, err := csvload.Load(csvContent)
	if err != nil {
		return items.CsvTable{}, err
	}
	p.log.Ctx(ctx).Debug("CSV loaded",
		"strategy", strategy,
		"columns", len(table.Header),
		"rows", len(table.Rows),
	)
	return table, nil
}

// Run dispatches a request to the operation named by its action.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Response, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	start := time.Now()
	action := Action(strings.TrimSpace(req.Action))
	resp := &Response{Action: action}
	csvContent := []byte(req.CSVContent)

	var err error
	switch action {
	case ActionProcess:
		resp.JSONData, err = p.Process(ctx, csvContent)
	case ActionValidate:
		resp.Results, err = p.Validate(ctx, csvContent, req.JSONContent)
	case ActionFull:
		resp.JSONData, resp.ValidationResults, err = p.Full(ctx, csvContent)
	}
	if err != nil {
		p.log.Ctx(ctx).Warn("Import failed",
			"action", action,
			"file_name", req.FileName,
			"error", err.Error(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}
	p.log.Ctx(ctx).Info("Import finished",
		"action", action,
		"file_name", req.FileName,
		"records", resp.RecordCount(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

// ParseJSONContent accepts a bare array of records, an object with an "items"
// array, or either of those encoded as a JSON string.
func ParseJSONContent(raw json.RawMessage) ([]items.NormalizedRecord, error) {
	if isEmptyJSON(raw) {
		return nil, ErrMissingJSONContent
	}
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal(raw, &inner); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSONContent, err)
		}
		if strings.HasPrefix(strings.TrimSpace(inner), `"`) {
			return nil, ErrInvalidJSONContent
		}
		return ParseJSONContent(json.RawMessage(inner))
	}

	var list []json.RawMessage
	switch {
	case strings.HasPrefix(trimmed, "["):
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSONContent, err)
		}
	case strings.HasPrefix(trimmed, "{"):
		var obj struct {
			Items []json.RawMessage `json:"items"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSONContent, err)
		}
		if obj.Items == nil {
			return nil, fmt.Errorf(`%w: object has no "items" array`, ErrInvalidJSONContent)
		}
		list = obj.Items
	default:
		return nil, ErrInvalidJSONContent
	}

	out := make([]items.NormalizedRecord, 0, len(list))
	for i, elem := range list {
		rec, err := normalize.DecodeRecord(elem)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrInvalidJSONContent, i+1, err)
		}
		out = append(out, rec.Normalize())
	}
	return out, nil
}

func isEmptyJSON(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null" || s == `""`
}
