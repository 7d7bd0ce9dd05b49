package review

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/odnalezione/odnalezione-backend/internal/domain/items"
	"github.com/odnalezione/odnalezione-backend/internal/modules/importing/dates"
)

var (
	ErrUnknownRecord   = errors.New("unknown record")
	ErrUnknownField    = errors.New("unknown field")
	ErrInvalidDate     = errors.New("invalid date")
	ErrNothingAccepted = errors.New("no accepted records")
	ErrUnknownSort     = errors.New("unknown sort order")
)

type SortOrder string

const (
	SortNone SortOrder = ""
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case SortNone:
		return SortNone, nil
	case SortAsc:
		return SortAsc, nil
	case SortDesc:
		return SortDesc, nil
	default:
		return SortNone, fmt.Errorf("%w: %q", ErrUnknownSort, s)
	}
}

// Cell identifies a field of one record.
type Cell struct {
	Index int    `json:"index"`
	Field string `json:"field"`
}

// RecordState is the selection state of one record.
type RecordState struct {
	Selected bool `json:"selected"`
	Accepted bool `json:"accepted"`
}

// Session is the review state of one imported file. Records are addressed by
// RecordEvaluation.Index, which stays stable across deletes and sorting.
// A Session is not safe for concurrent use.
type Session struct {
	fileName    string
	records     []items.RecordEvaluation
	selected    map[int]bool
	accepted    map[int]bool
	sort        SortOrder
	highlighted *Cell
}

func NewSession(fileName string, records []items.RecordEvaluation) *Session {
	recs := make([]items.RecordEvaluation, len(records))
	copy(recs, records)
	return &Session{
		fileName: fileName,
		records:  recs,
		selected: map[int]bool{},
		accepted: map[int]bool{},
	}
}

func (s *Session) FileName() string { return s.fileName }

func (s *Session) Len() int { return len(s.records) }

func (s *Session) Sort() SortOrder { return s.sort }

func (s *Session) Highlighted() *Cell {
	if s.highlighted == nil {
		return nil
	}
	c := *s.highlighted
	return &c
}

// Records returns the records in their import order.
func (s *Session) Records() []items.RecordEvaluation {
	out := make([]items.RecordEvaluation, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Session) Record(index int) (items.RecordEvaluation, error) {
	pos := s.position(index)
	if pos < 0 {
		return items.RecordEvaluation{}, fmt.Errorf("%w: %d", ErrUnknownRecord, index)
	}
	return s.records[pos], nil
}

func (s *Session) State(index int) RecordState {
	return RecordState{Selected: s.selected[index], Accepted: s.accepted[index]}
}

// Accepted returns accepted record indexes in import order.
func (s *Session) Accepted() []int { return s.indexesIn(s.accepted) }

// Selected returns selected record indexes in import order.
func (s *Session) Selected() []int { return s.indexesIn(s.selected) }

func (s *Session) indexesIn(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for _, r := range s.records {
		if set[r.Index] {
			out = append(out, r.Index)
		}
	}
	return out
}

func (s *Session) position(index int) int {
	for i, r := range s.records {
		if r.Index == index {
			return i
		}
	}
	return -1
}

func (s *Session) require(indexes []int) error {
	for _, idx := range indexes {
		if s.position(idx) < 0 {
			return fmt.Errorf("%w: %d", ErrUnknownRecord, idx)
		}
	}
	return nil
}

// Select marks records as selected. Accepted records cannot be selected and
// are skipped.
func (s *Session) Select(indexes ...int) error {
	if err := s.require(indexes); err != nil {
		return err
	}
	for _, idx := range indexes {
		if !s.accepted[idx] {
			s.selected[idx] = true
		}
	}
	return nil
}

func (s *Session) Deselect(indexes ...int) error {
	if err := s.require(indexes); err != nil {
		return err
	}
	for _, idx := range indexes {
		delete(s.selected, idx)
	}
	return nil
}

// SelectAllVisible selects every record that is not accepted.
func (s *Session) SelectAllVisible() {
	for _, r := range s.records {
		if !s.accepted[r.Index] {
			s.selected[r.Index] = true
		}
	}
}

func (s *Session) ClearSelection() {
	s.selected = map[int]bool{}
}

// Accept marks records as accepted and drops them from the selection.
func (s *Session) Accept(indexes ...int) error {
	if err := s.require(indexes); err != nil {
		return err
	}
	for _, idx := range indexes {
		s.accepted[idx] = true
		delete(s.selected, idx)
	}
	return nil
}

func (s *Session) Unaccept(indexes ...int) error {
	if err := s.require(indexes); err != nil {
		return err
	}
	for _, idx := range indexes {
		delete(s.accepted, idx)
	}
	return nil
}

// AcceptSelected accepts the current selection, clears it and returns the
// newly accepted indexes.
func (s *Session) AcceptSelected() []int {
	idx := s.Selected()
	for _, i := range idx {
		s.accepted[i] = true
	}
	s.ClearSelection()
	return idx
}

// Edit overwrites json values of one record. Date fields accept YYYY-MM-DD or
// DD-MM-YYYY and are stored as YYYY-MM-DD; an empty value clears the field.
func (s *Session) Edit(index int, values map[string]string) error {
	pos := s.position(index)
	if pos < 0 {
		return fmt.Errorf("%w: %d", ErrUnknownRecord, index)
	}
	clean := make(map[string]string, len(values))
	for name, v := range values {
		spec, ok := items.Lookup(name)
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
		v = strings.TrimSpace(v)
		if spec.IsDate() && v != "" {
			iso := ToInputDate(v)
			if !dates.IsCanonical(iso) {
				return fmt.Errorf("%w: %s=%q", ErrInvalidDate, name, v)
			}
			v = iso
		}
		clean[name] = v
	}

	rec := s.records[pos]
	fields := make(map[string]items.FieldEvaluation, len(rec.Fields))
	for k, f := range rec.Fields {
		fields[k] = f
	}
	for name, v := range clean {
		f, ok := fields[name]
		if !ok {
			f = items.FieldEvaluation{SourceColumns: []string{}}
		}
		f.JSONValue = v
		fields[name] = f
	}
	rec.Fields = fields
	s.records[pos] = rec
	return nil
}

// Delete removes records together with their selection and acceptance.
func (s *Session) Delete(indexes ...int) error {
	if err := s.require(indexes); err != nil {
		return err
	}
	drop := make(map[int]bool, len(indexes))
	for _, idx := range indexes {
		drop[idx] = true
		delete(s.selected, idx)
		delete(s.accepted, idx)
		if s.highlighted != nil && s.highlighted.Index == idx {
			s.highlighted = nil
		}
	}
	kept := s.records[:0]
	for _, r := range s.records {
		if !drop[r.Index] {
			kept = append(kept, r)
		}
	}
	s.records = kept
	return nil
}

// SubmitResult is what leaves the session on submit.
type SubmitResult struct {
	Records []items.RecordEvaluation `json:"records"`
	Deleted bool                     `json:"deleted"`
}

// Submit removes accepted records from the session and returns them in import
// order. Deleted reports that no records remain and the draft can be dropped.
func (s *Session) Submit() (SubmitResult, error) {
	if len(s.accepted) == 0 {
		return SubmitResult{}, ErrNothingAccepted
	}
	out := SubmitResult{Records: []items.RecordEvaluation{}}
	kept := make([]items.RecordEvaluation, 0, len(s.records))
	for _, r := range s.records {
		if s.accepted[r.Index] {
			out.Records = append(out.Records, r)
			continue
		}
		kept = append(kept, r)
	}
	s.records = kept
	s.accepted = map[int]bool{}
	if s.highlighted != nil && s.position(s.highlighted.Index) < 0 {
		s.highlighted = nil
	}
	out.Deleted = len(s.records) == 0
	return out, nil
}

// ToggleSort moves from unsorted to ascending, then flips between ascending
// and descending.
func (s *Session) ToggleSort() SortOrder {
	if s.sort == SortAsc {
		s.sort = SortDesc
	} else {
		s.sort = SortAsc
	}
	return s.sort
}

func (s *Session) SetSort(o SortOrder) { s.sort = o }

// Visible returns records in display order. Ascending puts accepted records
// last, descending puts them first; within each group records are ordered by
// overall score. The sort is stable.
func (s *Session) Visible() []items.RecordEvaluation {
	out := s.Records()
	if s.sort == SortNone {
		return out
	}
	desc := s.sort == SortDesc
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := s.accepted[out[i].Index], s.accepted[out[j].Index]
		if ai != aj {
			if desc {
				return ai
			}
			return aj
		}
		if desc {
			return out[i].OverallScore > out[j].OverallScore
		}
		return out[i].OverallScore < out[j].OverallScore
	})
	return out
}

// HighlightCell marks a cell as highlighted and returns the spans of its json
// value within the record's source row.
func (s *Session) HighlightCell(index int, field string) ([]Span, error) {
	rec, err := s.Record(index)
	if err != nil {
		return nil, err
	}
	if _, ok := items.Lookup(field); !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	s.highlighted = &Cell{Index: index, Field: field}
	return Highlight(rec.SourceRow, field, rec.Fields[field].JSONValue), nil
}

func (s *Session) ClearHighlight() { s.highlighted = nil }
