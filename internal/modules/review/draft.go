package review

import (
	"fmt"
	"time"

	types "github.com/odnalezione/odnalezione-backend/internal/domain"
)

// FromDraft restores a session from its persisted draft. Selection, sort and
// highlight are not persisted and start empty.
func FromDraft(d *types.ImportDraft) (*Session, error) {
	if d == nil {
		return nil, fmt.Errorf("nil draft")
	}
	recs, err := d.DecodeRecords()
	if err != nil {
		return nil, fmt.Errorf("decode draft records: %w", err)
	}
	acc, err := d.DecodeAccepted()
	if err != nil {
		return nil, fmt.Errorf("decode accepted indexes: %w", err)
	}
	s := NewSession(d.FileName, recs)
	for _, idx := range acc {
		if s.position(idx) >= 0 {
			s.accepted[idx] = true
		}
	}
	return s, nil
}

// ToDraft writes the session's records and acceptance into d, creating a new
// draft when d is nil.
func (s *Session) ToDraft(d *types.ImportDraft, now time.Time) (*types.ImportDraft, error) {
	if d == nil {
		d = &types.ImportDraft{FileName: s.fileName}
	}
	if err := d.SetRecords(s.records); err != nil {
		return nil, err
	}
	if err := d.SetAccepted(s.Accepted()); err != nil {
		return nil, err
	}
	d.LastModified = now.UTC()
	return d, nil
}
