package review

import (
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/odnalezione/odnalezione-backend/internal/domain/items"
)

// ImportDraft is the persisted review progress of one uploaded file.
// AcceptedIndexes holds RecordEvaluation.Index values, not slice positions.
type ImportDraft struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	FileName        string         `gorm:"column:file_name;not null;uniqueIndex" json:"fileName"`
	LastModified    time.Time      `gorm:"column:last_modified;not null;index" json:"lastModified"`
	Records         datatypes.JSON `gorm:"column:records" json:"records"`
	AcceptedIndexes datatypes.JSON `gorm:"column:accepted_indexes" json:"acceptedIndexes"`
	FileContent     string         `gorm:"column:file_content" json:"fileContent,omitempty"`
	FileType        string         `gorm:"column:file_type" json:"fileType,omitempty"`
	CreatedAt       time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
}

func (ImportDraft) TableName() string { return "import_draft" }

func (d *ImportDraft) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (d *ImportDraft) DecodeRecords() ([]items.RecordEvaluation, error) {
	if d == nil || len(d.Records) == 0 {
		return []items.RecordEvaluation{}, nil
	}
	var out []items.RecordEvaluation
	if err := json.Unmarshal(d.Records, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []items.RecordEvaluation{}
	}
	return out, nil
}

func (d *ImportDraft) SetRecords(recs []items.RecordEvaluation) error {
	if recs == nil {
		recs = []items.RecordEvaluation{}
	}
	b, err := json.Marshal(recs)
	if err != nil {
		return err
	}
	d.Records = datatypes.JSON(b)
	return nil
}

func (d *ImportDraft) DecodeAccepted() ([]int, error) {
	if d == nil || len(d.AcceptedIndexes) == 0 {
		return []int{}, nil
	}
	var out []int
	if err := json.Unmarshal(d.AcceptedIndexes, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []int{}
	}
	return out, nil
}

// SetAccepted stores the indexes sorted and de-duplicated.
func (d *ImportDraft) SetAccepted(idx []int) error {
	seen := make(map[int]bool, len(idx))
	uniq := make([]int, 0, len(idx))
	for _, i := range idx {
		if seen[i] {
			continue
		}
		seen[i] = true
		uniq = append(uniq, i)
	}
	sort.Ints(uniq)
	b, err := json.Marshal(uniq)
	if err != nil {
		return err
	}
	d.AcceptedIndexes = datatypes.JSON(b)
	return nil
}
