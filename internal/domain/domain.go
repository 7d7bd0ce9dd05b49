package domain

import (
	"github.com/odnalezione/odnalezione-backend/internal/domain/items"
	"github.com/odnalezione/odnalezione-backend/internal/domain/review"
)

type (
	FieldSpec        = items.FieldSpec
	CsvTable         = items.CsvTable
	NormalizedRecord = items.NormalizedRecord
	FieldEvaluation  = items.FieldEvaluation
	RecordEvaluation = items.RecordEvaluation

	ImportDraft = review.ImportDraft
)
