package postgres

import (
	"context"

	"github.com/oakline/callbridge/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TrainingRepository interface {
	// Upsert replaces the whole twin: it is re-derivable, so the latest
	// derivation always wins.
	Upsert(ctx context.Context, rec *models.TrainingCallRecord) error
	// ListPage pages through twins in stable call_id order for export.
	ListPage(ctx context.Context, offset, limit int) ([]models.TrainingCallRecord, error)
}

type trainingRepo struct {
	db *gorm.DB
}

func NewTrainingRepo(db *gorm.DB) TrainingRepository {
	return &trainingRepo{db: db}
}

func (r *trainingRepo) Upsert(ctx context.Context, rec *models.TrainingCallRecord) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "call_id"}},
			UpdateAll: true,
		}).
		Create(rec).Error
}

func (r *trainingRepo) ListPage(ctx context.Context, offset, limit int) ([]models.TrainingCallRecord, error) {
	if limit <= 0 {
		limit = 500
	}
	var rows []models.TrainingCallRecord
	err := r.db.WithContext(ctx).
		Order("call_id").
		Offset(offset).
		Limit(limit).
		Find(&rows).Error
	return rows, err
}
