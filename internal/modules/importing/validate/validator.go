package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/odnalezione/odnalezione-backend/internal/domain/items"
	"github.com/odnalezione/odnalezione-backend/internal/modules/importing/prompts"
	"github.com/odnalezione/odnalezione-backend/internal/platform/logger"
	"github.com/odnalezione/odnalezione-backend/internal/platform/openai"
)

const MissingFieldComment = "field missing from validation response"

// Error is a validation answer that is not the expected JSON object.
type Error struct {
	Index  int
	Reason string
	Raw    string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return "validation error"
	}
	msg := fmt.Sprintf("invalid validation JSON for record %d: %s", e.Index, e.Reason)
	if e.Raw != "" {
		msg += "\nContent: " + e.Raw
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

type Validator struct {
	log     *logger.Logger
	client  openai.Client
	prompts *prompts.Catalog
}

func New(log *logger.Logger, client openai.Client, cat *prompts.Catalog) *Validator {
	return &Validator{
		log:     log.With("component", "FieldValidator"),
		client:  client,
		prompts: cat,
	}
}

type payload struct {
	TargetSchema []items.FieldSpec      `json:"target_schema"`
	CsvHeader    []string               `json:"csv_header"`
	CsvRow       []string               `json:"csv_row"`
	JSONRecord   items.NormalizedRecord `json:"json_record"`
}

type rawField struct {
	SourceColumns flexStrings `json:"source_columns"`
	SourceValue   flexString  `json:"source_value"`
	JSONValue     flexString  `json:"json_value"`
	FieldScore    flexFloat   `json:"field_score"`
	Comment       flexString  `json:"comment"`
}

type rawResponse struct {
	OverallScore flexFloat           `json:"overall_score"`
	Fields       map[string]rawField `json:"fields"`
}

// ValidateRow scores one normalized record against its source row. index is 1-based.
func (v *Validator) ValidateRow(ctx context.Context, header []string, row []string, rec items.NormalizedRecord, index int) (items.RecordEvaluation, error) {
	if v.client == nil {
		return items.RecordEvaluation{}, openai.ErrMissingAPIKey
	}
	rec = rec.Normalize()
	body, err := json.MarshalIndent(payload{
		TargetSchema: items.Schema(),
		CsvHeader:    header,
		CsvRow:       row,
		JSONRecord:   rec,
	}, "", "  ")
	if err != nil {
		return items.RecordEvaluation{}, fmt.Errorf("encode validation payload: %w", err)
	}

	start := time.Now()
	raw, err := v.client.CompleteJSON(openai.WithStage(ctx, "validate"), v.prompts.Validator.System, v.prompts.ValidatorUser(body))
	if err != nil {
		return items.RecordEvaluation{}, fmt.Errorf("validate record %d: %w", index, err)
	}

	ev, err := ParseResponse(raw, row, rec, index)
	if err != nil {
		v.log.Ctx(ctx).Warn("Validator response rejected",
			"index", index,
			"error", err.Error(),
		)
		return items.RecordEvaluation{}, err
	}
	v.log.Ctx(ctx).Debug("Validated record",
		"index", index,
		"overall_score", ev.OverallScore,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return ev, nil
}

// ParseResponse builds a RecordEvaluation from a raw model answer. json_value
// always reflects rec; overall_score is recomputed as the mean of field scores.
func ParseResponse(raw string, row []string, rec items.NormalizedRecord, index int) (items.RecordEvaluation, error) {
	clean := openai.StripCodeFence(raw)
	var resp rawResponse
	if err := json.Unmarshal([]byte(clean), &resp); err != nil {
		return items.RecordEvaluation{}, &Error{Index: index, Reason: err.Error(), Raw: clean, Err: err}
	}
	if resp.Fields == nil {
		return items.RecordEvaluation{}, &Error{Index: index, Reason: `response has no "fields" object`, Raw: clean}
	}

	ev := items.RecordEvaluation{
		Index:     index,
		SourceRow: items.NonEmptyJoin(row),
		Fields:    make(map[string]items.FieldEvaluation, len(items.FieldNames())),
	}
	for _, name := range items.FieldNames() {
		value := rec.Get(name)
		f, ok := resp.Fields[name]
		if !ok {
			ev.Fields[name] = missingField(value)
			continue
		}
		ev.Fields[name] = items.FieldEvaluation{
			SourceColumns: []string(f.SourceColumns),
			SourceValue:   string(f.SourceValue),
			JSONValue:     value,
			FieldScore:    float64(f.FieldScore),
			Comment:       string(f.Comment),
		}
	}
	ev.Finalize()
	return ev, nil
}

func missingField(value string) items.FieldEvaluation {
	if value == "" {
		return items.FieldEvaluation{SourceColumns: []string{}, FieldScore: 1}
	}
	return items.FieldEvaluation{
		SourceColumns: []string{},
		JSONValue:     value,
		FieldScore:    0,
		Comment:       MissingFieldComment,
	}
}
