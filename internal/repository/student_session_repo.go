package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/kodelab-api/internal/models"
)

// StudentSessionRepository manages per-(student, session) participation rows.
type StudentSessionRepository interface {
	GetOrCreate(ctx context.Context, studentID, sessionID uint, now time.Time) (models.StudentSession, error)
	TouchLastSeen(ctx context.Context, id uint, now time.Time) error
}

// NewStudentSessionRepository constructs a student session repository.
func NewStudentSessionRepository(db *gorm.DB) StudentSessionRepository {
	return &studentSessionRepository{db: db}
}

type studentSessionRepository struct {
	db *gorm.DB
}

// GetOrCreate returns the unique row for the pair, creating it lazily on the
// first interaction. The unique index plus OnConflict-DoNothing makes the
// create race-safe: whoever loses the race reads the winner's row.
func (r *studentSessionRepository) GetOrCreate(ctx context.Context, studentID, sessionID uint, now time.Time) (models.StudentSession, error) {
	var existing models.StudentSession
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND exam_session_id = ?", studentID, sessionID).
		First(&existing).Error
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.StudentSession{}, err
	}

	started := now
	seen := now
	created := models.StudentSession{
		StudentID:     studentID,
		ExamSessionID: sessionID,
		StartedAt:     &started,
		LastSeenAt:    &seen,
	}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_id"}, {Name: "exam_session_id"}},
			DoNothing: true,
		}).
		Create(&created).Error
	if err != nil {
		return models.StudentSession{}, err
	}

	var row models.StudentSession
	err = r.db.WithContext(ctx).
		Where("student_id = ? AND exam_session_id = ?", studentID, sessionID).
		First(&row).Error
	if err != nil {
		return models.StudentSession{}, err
	}
	return row, nil
}

func (r *studentSessionRepository) TouchLastSeen(ctx context.Context, id uint, now time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.StudentSession{}).
		Where("id = ?", id).
		Update("last_seen_at", now).Error
}
