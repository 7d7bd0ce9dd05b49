package importing

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/odnalezione/odnalezione-backend/internal/domain/items"
)

var (
	ErrRecordCountMismatch = errors.New("record count mismatch between csv and json")
	ErrInvalidJSONContent  = errors.New("jsonContent must be a list of records or an object with an \"items\" list")
	ErrMissingJSONContent  = errors.New("jsonContent is required for action validate")
	ErrMissingCSVContent   = errors.New("csvContent is required")
	ErrUnknownAction       = errors.New("invalid action, use 'process', 'validate' or 'full'")
)

type Action string

const (
	ActionProcess  Action = "process"
	ActionValidate Action = "validate"
	ActionFull     Action = "full"
)

func ParseAction(s string) (Action, error) {
	switch a := Action(strings.TrimSpace(s)); a {
	case ActionProcess, ActionValidate, ActionFull:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
	}
}

// Request is the body of the processing endpoint.
type Request struct {
	Action      string          `json:"action"`
	CSVContent  string          `json:"csvContent"`
	JSONContent json.RawMessage `json:"jsonContent,omitempty"`
	FileName    string          `json:"fileName,omitempty"`
	FileType    string          `json:"fileType,omitempty"`
}

func (r Request) Validate() error {
	if strings.TrimSpace(r.CSVContent) == "" {
		return ErrMissingCSVContent
	}
	a, err := ParseAction(r.Action)
	if err != nil {
		return err
	}
	if a == ActionValidate && isEmptyJSON(r.JSONContent) {
		return ErrMissingJSONContent
	}
	return nil
}

type JSONData struct {
	Items []items.NormalizedRecord `json:"items"`
}

type Response struct {
	Action            Action                   `json:"action"`
	JSONData          *JSONData                `json:"jsonData,omitempty"`
	Results           []items.RecordEvaluation `json:"results,omitempty"`
	ValidationResults []items.RecordEvaluation `json:"validationResults,omitempty"`
}

// Evaluations returns whichever validation results the response carries.
func (r *Response) Evaluations() []items.RecordEvaluation {
	if r == nil {
		return nil
	}
	if len(r.ValidationResults) > 0 {
		return r.ValidationResults
	}
	return r.Results
}

func (r *Response) RecordCount() int {
	if r == nil {
		return 0
	}
	if ev := r.Evaluations(); len(ev) > 0 {
		return len(ev)
	}
	if r.JSONData != nil {
		return len(r.JSONData.Items)
	}
	return 0
}
