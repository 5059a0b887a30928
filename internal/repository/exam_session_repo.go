package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/kodelab-api/internal/models"
)

// ExamSessionRepository exposes read operations on sessions, tasks and test cases.
type ExamSessionRepository interface {
	ActiveForClass(ctx context.Context, classGroupID uint, now time.Time) (models.ExamSession, error)
	GetTask(ctx context.Context, taskID, sessionID uint) (models.SessionTask, error)
	ListTasks(ctx context.Context, sessionID uint) ([]models.SessionTask, error)
	ListTestCases(ctx context.Context, taskID uint) ([]models.TaskTestCase, error)
	ListVisibleTestCases(ctx context.Context, taskID uint) ([]models.TaskTestCase, error)
}

// NewExamSessionRepository constructs a session repository.
func NewExamSessionRepository(db *gorm.DB) ExamSessionRepository {
	return &examSessionRepository{db: db}
}

type examSessionRepository struct {
	db *gorm.DB
}

// ActiveForClass returns the most recent running session the class may access.
// The time-window check runs in Go via IsActiveNow so the status semantics
// stay in one place.
func (r *examSessionRepository) ActiveForClass(ctx context.Context, classGroupID uint, now time.Time) (models.ExamSession, error) {
	var session models.ExamSession
	err := r.db.WithContext(ctx).
		Joins("JOIN session_classes sc ON sc.exam_session_id = exam_sessions.id").
		Where("sc.class_group_id = ? AND exam_sessions.status = ?", classGroupID, models.ExamSessionStatusRunning).
		Order("exam_sessions.starts_at DESC, exam_sessions.created_at DESC").
		First(&session).Error
	if err != nil {
		return models.ExamSession{}, err
	}

	if !session.IsActiveNow(now) {
		return models.ExamSession{}, gorm.ErrRecordNotFound
	}

	return session, nil
}

func (r *examSessionRepository) GetTask(ctx context.Context, taskID, sessionID uint) (models.SessionTask, error) {
	var task models.SessionTask
	err := r.db.WithContext(ctx).
		Where("exam_session_id = ?", sessionID).
		First(&task, taskID).Error
	if err != nil {
		return models.SessionTask{}, err
	}
	return task, nil
}

func (r *examSessionRepository) ListTasks(ctx context.Context, sessionID uint) ([]models.SessionTask, error) {
	var tasks []models.SessionTask
	err := r.db.WithContext(ctx).
		Where("exam_session_id = ?", sessionID).
		Order("position ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *examSessionRepository) ListTestCases(ctx context.Context, taskID uint) ([]models.TaskTestCase, error) {
	var cases []models.TaskTestCase
	err := r.db.WithContext(ctx).
		Where("session_task_id = ?", taskID).
		Order("ordinal ASC").
		Find(&cases).Error
	if err != nil {
		return nil, err
	}
	return cases, nil
}

func (r *examSessionRepository) ListVisibleTestCases(ctx context.Context, taskID uint) ([]models.TaskTestCase, error) {
	var cases []models.TaskTestCase
	err := r.db.WithContext(ctx).
		Where("session_task_id = ? AND is_visible = ?", taskID, true).
		Order("ordinal ASC").
		Find(&cases).Error
	if err != nil {
		return nil, err
	}
	return cases, nil
}
