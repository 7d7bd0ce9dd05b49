package review

import (
	"errors"
	"fmt"
	"strings"

	"github.com/odnalezione/odnalezione-backend/internal/domain/items"
)

type ActionType string

const (
	ActionSelect         ActionType = "select"
	ActionDeselect       ActionType = "deselect"
	ActionSelectAll      ActionType = "select_all"
	ActionClearSelection ActionType = "clear_selection"
	ActionAccept         ActionType = "accept"
	ActionUnaccept       ActionType = "unaccept"
	ActionAcceptSelected ActionType = "accept_selected"
	ActionEdit           ActionType = "edit"
	ActionDelete         ActionType = "delete"
	ActionSort           ActionType = "sort"
	ActionHighlight      ActionType = "highlight"
	ActionSubmit         ActionType = "submit"
)

var ErrUnknownAction = errors.New("unknown review action")

// Action is one user operation on a session.
type Action struct {
	Type    ActionType        `json:"type"`
	Indexes []int             `json:"indexes,omitempty"`
	Index   int               `json:"index,omitempty"`
	Values  map[string]string `json:"values,omitempty"`
	Field   string            `json:"field,omitempty"`
	Sort    string            `json:"sort,omitempty"`
}

// ActionResult carries what an action produced beyond the session state.
type ActionResult struct {
	Submitted []items.RecordEvaluation `json:"submitted,omitempty"`
	Deleted   bool                     `json:"deleted,omitempty"`
	Spans     []Span                   `json:"spans,omitempty"`
	HTML      string                   `json:"html,omitempty"`
	Changed   bool                     `json:"-"`
}

// Apply runs a against the session. Changed reports whether persisted state
// (records or acceptance) was modified.
func (s *Session) Apply(a Action) (ActionResult, error) {
	var res ActionResult
	var err error
	switch ActionType(strings.ToLower(string(a.Type))) {
	case ActionSelect:
		err = s.Select(a.Indexes...)
	case ActionDeselect:
		err = s.Deselect(a.Indexes...)
	case ActionSelectAll:
		s.SelectAllVisible()
	case ActionClearSelection:
		s.ClearSelection()
	case ActionAccept:
		err = s.Accept(a.Indexes...)
		res.Changed = err == nil
	case ActionUnaccept:
		err = s.Unaccept(a.Indexes...)
		res.Changed = err == nil
	case ActionAcceptSelected:
		res.Changed = len(s.AcceptSelected()) > 0
	case ActionEdit:
		err = s.Edit(a.Index, a.Values)
		res.Changed = err == nil
	case ActionDelete:
		err = s.Delete(a.Indexes...)
		res.Changed = err == nil
	case ActionSort:
		if strings.TrimSpace(a.Sort) == "" {
			s.ToggleSort()
			break
		}
		var o SortOrder
		if o, err = ParseSortOrder(a.Sort); err == nil {
			s.SetSort(o)
		}
	case ActionHighlight:
		var spans []Span
		if spans, err = s.HighlightCell(a.Index, a.Field); err == nil {
			rec, _ := s.Record(a.Index)
			res.Spans = spans
			res.HTML = HighlightHTML(rec.SourceRow, spans)
		}
	case ActionSubmit:
		var out SubmitResult
		if out, err = s.Submit(); err == nil {
			res.Submitted = out.Records
			res.Deleted = out.Deleted
			res.Changed = true
		}
	default:
		err = fmt.Errorf("%w: %q", ErrUnknownAction, a.Type)
	}
	return res, err
}
