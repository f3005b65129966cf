package repository

import (
	"github.com/booktime/booktime/internal/app/model"
	"github.com/booktime/booktime/pkg/logger"
	"gorm.io/gorm"
)

type ImportRunRepository interface {
	Create(run *model.ImportRun) error
	ListRecent(limit int) ([]model.ImportRun, error)
}

type importRunRepository struct {
	db *gorm.DB
}

func NewImportRunRepository(db *gorm.DB) ImportRunRepository {
	return &importRunRepository{db: db}
}

func (r *importRunRepository) Create(run *model.ImportRun) error {
	if err := r.db.Create(run).Error; err != nil {
		logger.Error("Failed to record import run in database", err, map[string]interface{}{
			"source": run.Source,
		})
		return err
	}

	logger.Debug("Import run recorded in database", map[string]interface{}{
		"import_run_id": run.ID,
		"source":        run.Source,
	})
	return nil
}

// ListRecent returns the most recent runs first.
func (r *importRunRepository) ListRecent(limit int) ([]model.ImportRun, error) {
	query := r.db.Order("started_at DESC").Order("id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var runs []model.ImportRun
	if err := query.Find(&runs).Error; err != nil {
		logger.Error("Failed to list import runs from database", err)
		return nil, err
	}
	return runs, nil
}
