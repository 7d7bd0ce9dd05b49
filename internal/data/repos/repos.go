package repos

import (
	"github.com/odnalezione/odnalezione-backend/internal/data/repos/drafts"
	"github.com/odnalezione/odnalezione-backend/internal/platform/logger"
	"gorm.io/gorm"
)

type ImportDraftRepo = drafts.ImportDraftRepo

func NewImportDraftRepo(db *gorm.DB, baseLog *logger.Logger) ImportDraftRepo {
	return drafts.NewImportDraftRepo(db, baseLog)
}
