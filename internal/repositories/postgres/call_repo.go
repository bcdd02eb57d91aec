package postgres

import (
	"context"
	"errors"

	"github.com/oakline/callbridge/internal/models"
	"github.com/oakline/callbridge/internal/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CallRepository interface {
	// Upsert writes the record keyed by call_id. updateCols lists the
	// columns this event is allowed to overwrite on conflict, so a sparse
	// late event cannot blank out fields an earlier event filled.
	Upsert(ctx context.Context, rec *models.CallRecord, updateCols []string) error
	GetByCallID(ctx context.Context, callID string) (*models.CallRecord, error)
}

type callRepo struct {
	db *gorm.DB
}

func NewCallRepo(db *gorm.DB) CallRepository {
	return &callRepo{db: db}
}

func (r *callRepo) Upsert(ctx context.Context, rec *models.CallRecord, updateCols []string) error {
	// started_at is set at most once. Read-check-then-write: best effort
	// under race, self-correcting on the next delivery.
	var existing models.CallRecord
	err := r.db.WithContext(ctx).
		Select("started_at").
		Where("call_id = ?", rec.CallID).
		Take(&existing).Error
	switch {
	case err == nil:
		if existing.StartedAt != nil {
			rec.StartedAt = existing.StartedAt
		}
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	if len(updateCols) == 0 {
		updateCols = []string{"status", "updated_at"}
	}
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "call_id"}},
			DoUpdates: clause.AssignmentColumns(updateCols),
		}).
		Create(rec).Error
}

func (r *callRepo) GetByCallID(ctx context.Context, callID string) (*models.CallRecord, error) {
	var rec models.CallRecord
	err := r.db.WithContext(ctx).Where("call_id = ?", callID).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &rec, err
}
