package drafts

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	types "github.com/odnalezione/odnalezione-backend/internal/domain"
	"github.com/odnalezione/odnalezione-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type ImportDraftRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, draft *types.ImportDraft) (*types.ImportDraft, error)
	GetByFileName(ctx context.Context, tx *gorm.DB, fileName string) (*types.ImportDraft, error)
	List(ctx context.Context, tx *gorm.DB) ([]*types.ImportDraft, error)
	Delete(ctx context.Context, tx *gorm.DB, fileName string) (bool, error)
}

type importDraftRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewImportDraftRepo(db *gorm.DB, baseLog *logger.Logger) ImportDraftRepo {
	repoLog := baseLog.With("repo", "ImportDraftRepo")
	return &importDraftRepo{db: db, log: repoLog}
}

// Upsert replaces the draft stored under draft.FileName, keeping its ID and
// creation time, or creates a new one.
func (r *importDraftRepo) Upsert(ctx context.Context, tx *gorm.DB, draft *types.ImportDraft) (*types.ImportDraft, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if draft == nil || strings.TrimSpace(draft.FileName) == "" {
		return nil, errors.New("draft file name required")
	}

	var existing types.ImportDraft
	err := transaction.WithContext(ctx).
		Where("file_name = ?", draft.FileName).
		Limit(1).
		Find(&existing).Error
	if err != nil {
		return nil, err
	}

	if existing.FileName == "" {
		if err := transaction.WithContext(ctx).Create(draft).Error; err != nil {
			return nil, err
		}
		return draft, nil
	}

	draft.ID = existing.ID
	draft.CreatedAt = existing.CreatedAt
	if err := transaction.WithContext(ctx).Save(draft).Error; err != nil {
		return nil, err
	}
	return draft, nil
}

// GetByFileName finds a draft by its exact file name, falling back to the
// name without extension. It returns nil when neither exists.
func (r *importDraftRepo) GetByFileName(ctx context.Context, tx *gorm.DB, fileName string) (*types.ImportDraft, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	candidates := fileNameCandidates(fileName)
	if len(candidates) == 0 {
		return nil, nil
	}

	var results []*types.ImportDraft
	if err := transaction.WithContext(ctx).
		Where("file_name IN ?", candidates).
		Find(&results).Error; err != nil {
		return nil, err
	}
	for _, want := range candidates {
		for _, d := range results {
			if d.FileName == want {
				return d, nil
			}
		}
	}
	return nil, nil
}

func (r *importDraftRepo) List(ctx context.Context, tx *gorm.DB) ([]*types.ImportDraft, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var results []*types.ImportDraft
	if err := transaction.WithContext(ctx).
		Order("last_modified DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *importDraftRepo) Delete(ctx context.Context, tx *gorm.DB, fileName string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	res := transaction.WithContext(ctx).
		Where("file_name = ?", fileName).
		Delete(&types.ImportDraft{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func fileNameCandidates(fileName string) []string {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return nil
	}
	out := []string{fileName}
	if ext := filepath.Ext(fileName); ext != "" && ext != fileName {
		out = append(out, strings.TrimSuffix(fileName, ext))
	}
	return out
}
