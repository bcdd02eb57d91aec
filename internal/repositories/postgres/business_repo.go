package postgres

import (
	"context"
	"errors"

	"github.com/oakline/callbridge/internal/models"
	"github.com/oakline/callbridge/internal/utils"
	"gorm.io/gorm"
)

type BusinessRepository interface {
	// GetByPhone accepts the dialed number in several formats and returns
	// the first business whose line matches any of them.
	GetByPhone(ctx context.Context, numbers ...string) (*models.Business, error)
	GetByWorkflowID(ctx context.Context, workflowID string) (*models.Business, error)
}

type businessRepo struct {
	db *gorm.DB
}

func NewBusinessRepo(db *gorm.DB) BusinessRepository {
	return &businessRepo{db: db}
}

func (r *businessRepo) GetByPhone(ctx context.Context, numbers ...string) (*models.Business, error) {
	if len(numbers) == 0 {
		return nil, utils.ErrNotFound
	}
	var b models.Business
	err := r.db.WithContext(ctx).
		Where("phone_number IN ?", numbers).
		Take(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &b, err
}

func (r *businessRepo) GetByWorkflowID(ctx context.Context, workflowID string) (*models.Business, error) {
	if workflowID == "" {
		return nil, utils.ErrNotFound
	}
	var b models.Business
	err := r.db.WithContext(ctx).
		Where("workflow_id = ?", workflowID).
		Take(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &b, err
}
