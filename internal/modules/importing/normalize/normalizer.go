package normalize

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"github.com/odnalezione/odnalezione-backend/internal/domain/items"
	"github.com/odnalezione/odnalezione-backend/internal/modules/importing/csvload"
	"github.com/odnalezione/odnalezione-backend/internal/modules/importing/dates"
	"github.com/odnalezione/odnalezione-backend/internal/modules/importing/prompts"
	"github.com/odnalezione/odnalezione-backend/internal/platform/logger"
	"github.com/odnalezione/odnalezione-backend/internal/platform/openai"
)

// Error is a model answer that could not be turned into one record per row.
type Error struct {
	Reason string
	Raw    string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return "normalization error"
	}
	msg := "model returned invalid JSON: " + e.Reason
	if e.Raw != "" {
		msg += "\n" + e.Raw
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

type Normalizer struct {
	log     *logger.Logger
	client  openai.Client
	prompts *prompts.Catalog
}

func New(log *logger.Logger, client openai.Client, cat *prompts.Catalog) *Normalizer {
	return &Normalizer{
		log:     log.With("component", "RecordNormalizer"),
		client:  client,
		prompts: cat,
	}
}

// Normalize returns exactly one record per table row, in row order.
func (n *Normalizer) Normalize(ctx context.Context, table items.CsvTable) ([]items.NormalizedRecord, error) {
	if n.client == nil {
		return nil, openai.ErrMissingAPIKey
	}
	if len(table.Rows) == 0 {
		return nil, csvload.ErrNoRecords
	}
	csvText, err := csvload.Render(table)
	if err != nil {
		return nil, fmt.Errorf("render csv: %w", err)
	}
	user, err := n.prompts.NormalizerUser(csvText, len(table.Rows))
	if err != nil {
		return nil, err
	}

	start := time.Now()
	raw, err := n.client.CompleteJSON(openai.WithStage(ctx, "normalize"), n.prompts.Normalizer.System, user)
	if err != nil {
		return nil, fmt.Errorf("normalize rows: %w", err)
	}

	recs, err := ParseResponse(raw, len(table.Rows))
	if err != nil {
		n.log.Ctx(ctx).Warn("Normalizer response rejected",
			"rows", len(table.Rows),
			"error", err.Error(),
		)
		return nil, err
	}
	n.log.Ctx(ctx).Info("Normalized csv rows",
		"rows", len(recs),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return recs, nil
}

// ParseResponse validates a raw model answer against the expected row count and
// applies the field rules the model is asked to follow.
func ParseResponse(raw string, want int) ([]items.NormalizedRecord, error) {
	clean := openai.StripCodeFence(raw)

	dec := json.NewDecoder(strings.NewReader(clean))
	dec.UseNumber()
	var envelope map[string]json.RawMessage
	if err := dec.Decode(&envelope); err != nil {
		return nil, &Error{Reason: err.Error(), Raw: raw, Err: err}
	}
	itemsRaw, ok := envelope["items"]
	if !ok {
		return nil, &Error{Reason: `response has no "items" array`, Raw: raw}
	}

	var list []json.RawMessage
	if err := json.Unmarshal(itemsRaw, &list); err != nil || list == nil {
		return nil, &Error{Reason: `"items" is not an array`, Raw: raw, Err: err}
	}
	if len(list) != want {
		return nil, &Error{
			Reason: fmt.Sprintf("expected %d items, got %d", want, len(list)),
			Raw:    raw,
		}
	}

	out := make([]items.NormalizedRecord, 0, len(list))
	for i, elem := range list {
		rec, err := DecodeRecord(elem)
		if err != nil {
			return nil, &Error{Reason: fmt.Sprintf("item %d: %v", i, err), Raw: raw, Err: err}
		}
		out = append(out, Clean(rec))
	}
	return out, nil
}

// DecodeRecord reads one JSON object into a record. Schema fields are
// stringified; other keys are dropped.
func DecodeRecord(elem json.RawMessage) (items.NormalizedRecord, error) {
	dec := json.NewDecoder(bytes.NewReader(elem))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, errors.New("item is not an object")
	}
	rec := make(items.NormalizedRecord, len(obj))
	for _, name := range items.FieldNames() {
		rec[name] = stringify(obj[name])
	}
	return rec, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

var fold = cases.Fold()

// Clean trims values, forces date fields into YYYY-MM-DD (or "") and clears
// additionalInfo when it only repeats name.
func Clean(rec items.NormalizedRecord) items.NormalizedRecord {
	out := rec.Normalize()
	for _, f := range items.Schema() {
		v := strings.TrimSpace(out[f.Name])
		if f.IsDate() && v != "" {
			v = dates.Canonicalize(v)
		}
		out[f.Name] = v
	}
	name := out[items.FieldName]
	info := out[items.FieldAdditionalInfo]
	if name != "" && fold.String(name) == fold.String(info) {
		out[items.FieldAdditionalInfo] = ""
	}
	return out
}
