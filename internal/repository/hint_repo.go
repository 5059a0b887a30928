package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/noah-isme/kodelab-api/internal/models"
)

// HintRepository persists the hint generation audit trail.
type HintRepository interface {
	Create(ctx context.Context, record *models.HintRecord) error
	Update(ctx context.Context, record *models.HintRecord) error
	LatestOK(ctx context.Context, progressID uint, level int) (*models.HintRecord, error)
}

// NewHintRepository constructs a hint repository.
func NewHintRepository(db *gorm.DB) HintRepository {
	return &hintRepository{db: db}
}

type hintRepository struct {
	db *gorm.DB
}

func (r *hintRepository) Create(ctx context.Context, record *models.HintRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *hintRepository) Update(ctx context.Context, record *models.HintRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

func (r *hintRepository) LatestOK(ctx context.Context, progressID uint, level int) (*models.HintRecord, error) {
	var record models.HintRecord
	err := r.db.WithContext(ctx).
		Where("task_progress_id = ? AND level = ? AND status = ?", progressID, level, models.HintRecordStatusOK).
		Order("created_at DESC").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}
