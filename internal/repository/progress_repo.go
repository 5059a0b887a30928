package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/noah-isme/kodelab-api/internal/models"
)

// ProgressTx is the per-progress critical section handed to WithLock
// callbacks. All writes through it share one transaction holding a row lock
// on the progress, so gate-check-then-increment sequences are serialized.
type ProgressTx interface {
	Progress() *models.TaskProgress
	Save() error
	CreateSubmission(submission *models.Submission) error
}

// ProgressRepository manages task progress rows and their submission history.
type ProgressRepository interface {
	GetOrCreate(ctx context.Context, studentSessionID, taskID uint) (models.TaskProgress, error)
	ListForStudentSession(ctx context.Context, studentSessionID uint) ([]models.TaskProgress, error)
	Update(ctx context.Context, progress *models.TaskProgress) error
	WithLock(ctx context.Context, progressID uint, fn func(tx ProgressTx) error) error
	LastSubmission(ctx context.Context, progressID uint) (*models.Submission, error)
	ListRecentSubmissions(ctx context.Context, progressID uint, limit int) ([]models.Submission, error)
}

// NewProgressRepository constructs a progress repository.
func NewProgressRepository(db *gorm.DB) ProgressRepository {
	return &progressRepository{db: db}
}

type progressRepository struct {
	db *gorm.DB
}

func (r *progressRepository) GetOrCreate(ctx context.Context, studentSessionID, taskID uint) (models.TaskProgress, error) {
	var existing models.TaskProgress
	err := r.db.WithContext(ctx).
		Where("student_session_id = ? AND session_task_id = ?", studentSessionID, taskID).
		First(&existing).Error
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.TaskProgress{}, err
	}

	created := models.TaskProgress{
		StudentSessionID: studentSessionID,
		SessionTaskID:    taskID,
		Status:           models.ProgressStatusNotStarted,
		LockedAfterSolve: true,
	}
	err = r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "student_session_id"}, {Name: "session_task_id"}},
			DoNothing: true,
		}).
		Create(&created).Error
	if err != nil {
		return models.TaskProgress{}, err
	}

	var row models.TaskProgress
	err = r.db.WithContext(ctx).
		Where("student_session_id = ? AND session_task_id = ?", studentSessionID, taskID).
		First(&row).Error
	if err != nil {
		return models.TaskProgress{}, err
	}
	return row, nil
}

func (r *progressRepository) ListForStudentSession(ctx context.Context, studentSessionID uint) ([]models.TaskProgress, error) {
	var rows []models.TaskProgress
	err := r.db.WithContext(ctx).
		Where("student_session_id = ?", studentSessionID).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *progressRepository) Update(ctx context.Context, progress *models.TaskProgress) error {
	return r.db.WithContext(ctx).Save(progress).Error
}

// WithLock re-reads the progress row under SELECT ... FOR UPDATE inside a
// transaction and runs fn against that fresh state. Concurrent submissions
// for the same progress serialize here; cross-progress work is unaffected.
func (r *progressRepository) WithLock(ctx context.Context, progressID uint, fn func(tx ProgressTx) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var progress models.TaskProgress
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&progress, progressID).Error
		if err != nil {
			return err
		}

		return fn(&progressTx{db: tx, progress: &progress})
	})
}

func (r *progressRepository) LastSubmission(ctx context.Context, progressID uint) (*models.Submission, error) {
	var submission models.Submission
	err := r.db.WithContext(ctx).
		Where("task_progress_id = ?", progressID).
		Order("attempt_no DESC").
		First(&submission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *progressRepository) ListRecentSubmissions(ctx context.Context, progressID uint, limit int) ([]models.Submission, error) {
	if limit <= 0 {
		limit = 3
	}

	var submissions []models.Submission
	err := r.db.WithContext(ctx).
		Where("task_progress_id = ?", progressID).
		Order("attempt_no DESC").
		Limit(limit).
		Find(&submissions).Error
	if err != nil {
		return nil, err
	}

	// Oldest first for prompt building.
	for i, j := 0, len(submissions)-1; i < j; i, j = i+1, j-1 {
		submissions[i], submissions[j] = submissions[j], submissions[i]
	}
	return submissions, nil
}

type progressTx struct {
	db       *gorm.DB
	progress *models.TaskProgress
}

func (t *progressTx) Progress() *models.TaskProgress {
	return t.progress
}

func (t *progressTx) Save() error {
	return t.db.Save(t.progress).Error
}

func (t *progressTx) CreateSubmission(submission *models.Submission) error {
	return t.db.Create(submission).Error
}
