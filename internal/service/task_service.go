package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kodelab-api/internal/dto"
	"github.com/noah-isme/kodelab-api/internal/models"
	"github.com/noah-isme/kodelab-api/internal/repository"
)

// TaskService opens tasks for work and exposes their visible examples.
type TaskService interface {
	OpenTask(ctx context.Context, identity Identity, taskID uint) (dto.TaskDetailResponse, error)
}

type taskService struct {
	sessions        repository.ExamSessionRepository
	studentSessions repository.StudentSessionRepository
	progress        repository.ProgressRepository
	activity        ActivityService
	logger          zerolog.Logger
	now             func() time.Time
}

// NewTaskService constructs a new task service.
func NewTaskService(sessionRepo repository.ExamSessionRepository, studentSessionRepo repository.StudentSessionRepository, progressRepo repository.ProgressRepository, activity ActivityService, logger zerolog.Logger) TaskService {
	return &taskService{
		sessions:        sessionRepo,
		studentSessions: studentSessionRepo,
		progress:        progressRepo,
		activity:        activity,
		logger:          logger.With().Str("component", "task_service").Logger(),
		now:             time.Now,
	}
}

// OpenTask marks the task as started on first open and returns the statement
// with the caller's progress. A solved task comes back locked with no
// statement body; reopening is idempotent.
func (s *taskService) OpenTask(ctx context.Context, identity Identity, taskID uint) (dto.TaskDetailResponse, error) {
	now := s.now()

	session, err := s.sessions.ActiveForClass(ctx, identity.ClassGroupID, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TaskDetailResponse{}, ErrSessionInactive
		}
		return dto.TaskDetailResponse{}, err
	}

	task, err := s.sessions.GetTask(ctx, taskID, session.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.TaskDetailResponse{}, ErrTaskNotFound
		}
		return dto.TaskDetailResponse{}, err
	}

	studentSession, err := s.studentSessions.GetOrCreate(ctx, identity.StudentID, session.ID, now)
	if err != nil {
		return dto.TaskDetailResponse{}, err
	}
	if err := s.studentSessions.TouchLastSeen(ctx, studentSession.ID, now); err != nil {
		s.logger.Warn().Err(err).Uint("student_session_id", studentSession.ID).Msg("failed to touch last seen")
	}

	progress, err := s.progress.GetOrCreate(ctx, studentSession.ID, task.ID)
	if err != nil {
		return dto.TaskDetailResponse{}, err
	}

	if progress.IsLocked() {
		summary := dto.NewProgressSummary(progress)
		return dto.TaskDetailResponse{Locked: true, Progress: &summary}, nil
	}

	if progress.Status == models.ProgressStatusNotStarted {
		progress.MarkOpened(now)
		if err := s.progress.Update(ctx, &progress); err != nil {
			return dto.TaskDetailResponse{}, err
		}
		if s.activity != nil {
			s.activity.Record(ctx, progress.ID, models.ActivityEventOpenTask, nil)
		}
	}

	visible, err := s.sessions.ListVisibleTestCases(ctx, task.ID)
	if err != nil {
		return dto.TaskDetailResponse{}, err
	}

	info := dto.NewTaskInfo(task)
	summary := dto.NewProgressSummary(progress)
	return dto.TaskDetailResponse{
		Locked:           false,
		Task:             &info,
		Progress:         &summary,
		VisibleTestCases: dto.NewTestCaseExamples(visible),
	}, nil
}
