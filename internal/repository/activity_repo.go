package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/kodelab-api/internal/models"
)

// ActivityRepository records raw activity events and maintains the
// server-side per-progress aggregates.
type ActivityRepository interface {
	RecordEvent(ctx context.Context, event *models.ActivityEvent) error
	IncrementCounter(ctx context.Context, progressID uint, column string) error
	GetAggregate(ctx context.Context, progressID uint) (models.ActivityAggregate, error)
}

// Aggregate counter columns.
const (
	CounterTotalCopies    = "total_copies"
	CounterTotalPastes    = "total_pastes"
	CounterTabSwitches    = "tab_switches"
	CounterFocusLostCount = "focus_lost_count"
	CounterHint1Requests  = "hint1_requests"
	CounterHint2Requests  = "hint2_requests"
)

// NewActivityRepository constructs an activity repository.
func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

type activityRepository struct {
	db *gorm.DB
}

func (r *activityRepository) RecordEvent(ctx context.Context, event *models.ActivityEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

// IncrementCounter bumps one aggregate column atomically, creating the
// aggregate row on first use.
func (r *activityRepository) IncrementCounter(ctx context.Context, progressID uint, column string) error {
	aggregate := models.ActivityAggregate{TaskProgressID: progressID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_progress_id"}},
			DoNothing: true,
		}).
		Create(&aggregate).Error
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Model(&models.ActivityAggregate{}).
		Where("task_progress_id = ?", progressID).
		UpdateColumn(column, gorm.Expr(column+" + 1")).Error
}

func (r *activityRepository) GetAggregate(ctx context.Context, progressID uint) (models.ActivityAggregate, error) {
	var aggregate models.ActivityAggregate
	err := r.db.WithContext(ctx).
		Where("task_progress_id = ?", progressID).
		First(&aggregate).Error
	if err != nil {
		return models.ActivityAggregate{}, err
	}
	return aggregate, nil
}
