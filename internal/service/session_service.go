package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kodelab-api/internal/dto"
	"github.com/noah-isme/kodelab-api/internal/models"
	"github.com/noah-isme/kodelab-api/internal/repository"
)

// SessionService resolves the caller's active session and its task list.
type SessionService interface {
	ActiveSession(ctx context.Context, identity Identity) (dto.ActiveSessionResponse, error)
}

// sessionSkeleton is the cacheable, student-independent part of the
// active-session payload. Progress is always merged in fresh per request.
type sessionSkeleton struct {
	Session dto.SessionInfo `json:"session"`
	Tasks   []taskEntry     `json:"tasks"`
}

type taskEntry struct {
	ID       uint   `json:"id"`
	Position uint   `json:"position"`
	Title    string `json:"title"`
}

type sessionService struct {
	sessions        repository.ExamSessionRepository
	studentSessions repository.StudentSessionRepository
	progress        repository.ProgressRepository
	cache           *redis.Client
	cacheTTL        time.Duration
	logger          zerolog.Logger
	now             func() time.Time
}

// NewSessionService constructs a new session service. The cache client may be
// nil, in which case every lookup goes to the database.
func NewSessionService(sessionRepo repository.ExamSessionRepository, studentSessionRepo repository.StudentSessionRepository, progressRepo repository.ProgressRepository, cache *redis.Client, cacheTTL time.Duration, logger zerolog.Logger) SessionService {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}

	return &sessionService{
		sessions:        sessionRepo,
		studentSessions: studentSessionRepo,
		progress:        progressRepo,
		cache:           cache,
		cacheTTL:        cacheTTL,
		logger:          logger.With().Str("component", "session_service").Logger(),
		now:             time.Now,
	}
}

func (s *sessionService) ActiveSession(ctx context.Context, identity Identity) (dto.ActiveSessionResponse, error) {
	now := s.now()

	session, err := s.sessions.ActiveForClass(ctx, identity.ClassGroupID, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.ActiveSessionResponse{Active: false}, nil
		}
		return dto.ActiveSessionResponse{}, err
	}

	studentSession, err := s.studentSessions.GetOrCreate(ctx, identity.StudentID, session.ID, now)
	if err != nil {
		return dto.ActiveSessionResponse{}, err
	}
	if err := s.studentSessions.TouchLastSeen(ctx, studentSession.ID, now); err != nil {
		s.logger.Warn().Err(err).Uint("student_session_id", studentSession.ID).Msg("failed to touch last seen")
	}

	skeleton, err := s.loadSkeleton(ctx, session)
	if err != nil {
		return dto.ActiveSessionResponse{}, err
	}

	progressByTask, err := s.progressByTask(ctx, studentSession.ID)
	if err != nil {
		return dto.ActiveSessionResponse{}, err
	}

	tasks := make([]dto.TaskSummary, 0, len(skeleton.Tasks))
	for _, entry := range skeleton.Tasks {
		summary := dto.TaskSummary{
			ID:       entry.ID,
			Position: entry.Position,
			Title:    entry.Title,
			Progress: dto.ProgressSummary{Status: models.ProgressStatusNotStarted},
		}
		if progress, ok := progressByTask[entry.ID]; ok {
			summary.Progress = dto.NewProgressSummary(progress)
		}
		tasks = append(tasks, summary)
	}

	info := skeleton.Session
	return dto.ActiveSessionResponse{Active: true, Session: &info, Tasks: tasks}, nil
}

// loadSkeleton returns the session header and ordered task list, served from
// redis when possible. The skeleton holds no per-student state.
func (s *sessionService) loadSkeleton(ctx context.Context, session models.ExamSession) (sessionSkeleton, error) {
	cacheKey := fmt.Sprintf("session:%d:skeleton", session.ID)

	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cacheKey).Result(); err == nil {
			var skeleton sessionSkeleton
			if unmarshalErr := json.Unmarshal([]byte(cached), &skeleton); unmarshalErr == nil {
				s.logger.Debug().Uint("session_id", session.ID).Msg("session skeleton cache hit")
				return skeleton, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read session skeleton cache")
		}
	}

	taskRows, err := s.sessions.ListTasks(ctx, session.ID)
	if err != nil {
		return sessionSkeleton{}, err
	}

	skeleton := sessionSkeleton{
		Session: dto.NewSessionInfo(session),
		Tasks:   make([]taskEntry, 0, len(taskRows)),
	}
	for _, task := range taskRows {
		skeleton.Tasks = append(skeleton.Tasks, taskEntry{ID: task.ID, Position: task.Position, Title: task.Title})
	}

	if s.cache != nil {
		if payload, marshalErr := json.Marshal(skeleton); marshalErr == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store session skeleton cache")
			}
		}
	}

	return skeleton, nil
}

func (s *sessionService) progressByTask(ctx context.Context, studentSessionID uint) (map[uint]models.TaskProgress, error) {
	rows, err := s.progress.ListForStudentSession(ctx, studentSessionID)
	if err != nil {
		return nil, err
	}

	byTask := make(map[uint]models.TaskProgress, len(rows))
	for _, row := range rows {
		byTask[row.SessionTaskID] = row
	}
	return byTask, nil
}
