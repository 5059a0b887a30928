package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/kodelab-api/internal/dto"
	"github.com/noah-isme/kodelab-api/internal/models"
	"github.com/noah-isme/kodelab-api/internal/observability"
	"github.com/noah-isme/kodelab-api/internal/repository"
	"github.com/noah-isme/kodelab-api/pkg/ai"
)

// HintService delivers gated, cached, sanitized tutoring hints.
type HintService interface {
	GetHint(ctx context.Context, identity Identity, taskID uint, level int) (dto.HintResponse, error)
}

// HintConfig describes generation knobs for the hint path.
type HintConfig struct {
	Timeout time.Duration
}

type hintService struct {
	sessions        repository.ExamSessionRepository
	studentSessions repository.StudentSessionRepository
	progress        repository.ProgressRepository
	hints           repository.HintRepository
	activity        repository.ActivityRepository
	generator       ai.HintGenerator
	logger          zerolog.Logger
	config          HintConfig
	now             func() time.Time
}

// NewHintService constructs a new hint service. The generator may be nil when
// no provider is configured; every generation attempt then fails cleanly with
// an audit record.
func NewHintService(sessionRepo repository.ExamSessionRepository, studentSessionRepo repository.StudentSessionRepository, progressRepo repository.ProgressRepository, hintRepo repository.HintRepository, activityRepo repository.ActivityRepository, generator ai.HintGenerator, logger zerolog.Logger, cfg HintConfig) HintService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &hintService{
		sessions:        sessionRepo,
		studentSessions: studentSessionRepo,
		progress:        progressRepo,
		hints:           hintRepo,
		activity:        activityRepo,
		generator:       generator,
		logger:          logger.With().Str("component", "hint_service").Logger(),
		config:          cfg,
		now:             time.Now,
	}
}

// GetHint returns the hint for the given level once the failed-attempt
// threshold has unlocked it. Delivery order: denormalized progress cache,
// then the latest successful audit record, then a fresh generation. Repeat
// requests never trigger a second provider call, but every delivery bumps
// the server-side request counter.
func (s *hintService) GetHint(ctx context.Context, identity Identity, taskID uint, level int) (dto.HintResponse, error) {
	if level != models.HintLevel1 && level != models.HintLevel2 {
		return dto.HintResponse{}, ErrInvalidHintLevel
	}

	now := s.now()

	session, err := s.sessions.ActiveForClass(ctx, identity.ClassGroupID, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.HintResponse{}, ErrSessionInactive
		}
		return dto.HintResponse{}, err
	}

	task, err := s.sessions.GetTask(ctx, taskID, session.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.HintResponse{}, ErrTaskNotFound
		}
		return dto.HintResponse{}, err
	}

	studentSession, err := s.studentSessions.GetOrCreate(ctx, identity.StudentID, session.ID, now)
	if err != nil {
		return dto.HintResponse{}, err
	}

	progress, err := s.progress.GetOrCreate(ctx, studentSession.ID, task.ID)
	if err != nil {
		return dto.HintResponse{}, err
	}

	// A hint request is an interaction with the task: a lazily created row
	// moves to in_progress right away.
	if progress.Status == models.ProgressStatusNotStarted {
		progress.MarkOpened(now)
		if updateErr := s.progress.Update(ctx, &progress); updateErr != nil {
			return dto.HintResponse{}, updateErr
		}
	}

	if !progress.HintUnlocked(level) {
		return dto.HintResponse{}, ErrHintNotAvailable
	}

	if text := progress.HintText(level); text != "" {
		return s.deliver(ctx, progress.ID, level, text, "progress-cache"), nil
	}

	record, err := s.hints.LatestOK(ctx, progress.ID, level)
	if err != nil {
		return dto.HintResponse{}, err
	}
	if record != nil && record.ResponseText != "" {
		progress.SetHintText(level, record.ResponseText)
		if updateErr := s.progress.Update(ctx, &progress); updateErr != nil {
			s.logger.Warn().Err(updateErr).Uint("progress_id", progress.ID).Msg("failed to backfill hint cache")
		}
		return s.deliver(ctx, progress.ID, level, record.ResponseText, "record-cache"), nil
	}

	text, err := s.generate(ctx, level, task, progress)
	if err != nil {
		return dto.HintResponse{}, err
	}

	progress.SetHintText(level, text)
	if updateErr := s.progress.Update(ctx, &progress); updateErr != nil {
		s.logger.Warn().Err(updateErr).Uint("progress_id", progress.ID).Msg("failed to store hint cache")
	}

	return s.deliver(ctx, progress.ID, level, text, "generated"), nil
}

// generate calls the provider with a pending audit record already persisted,
// so a crash or timeout mid-call still leaves a trace.
func (s *hintService) generate(ctx context.Context, level int, task models.SessionTask, progress models.TaskProgress) (string, error) {
	snapshot, err := s.buildPromptSnapshot(ctx, level, task, progress)
	if err != nil {
		return "", err
	}

	record := &models.HintRecord{
		TaskProgressID: progress.ID,
		Level:          level,
		PromptSnapshot: snapshot,
		Status:         models.HintRecordStatusError,
		ErrorMessage:   "pending",
	}
	if err := s.hints.Create(ctx, record); err != nil {
		return "", err
	}

	if s.generator == nil {
		record.ErrorMessage = "no hint provider configured"
		s.failRecord(ctx, record)
		return "", ErrHintUnavailable
	}

	callCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	result, err := s.generator.GenerateHint(callCtx, ai.HintInput{Level: level, PromptSnapshot: snapshot})
	if err != nil {
		s.logger.Error().Err(err).Uint("progress_id", progress.ID).Int("level", level).Msg("hint generation failed")
		record.ErrorMessage = err.Error()
		s.failRecord(ctx, record)
		return "", ErrHintUnavailable
	}

	text := ai.SanitizeNoCode(result.Text)
	if text == "" {
		record.ErrorMessage = "empty hint after sanitization"
		s.failRecord(ctx, record)
		return "", ErrHintUnavailable
	}

	record.ResponseText = text
	record.Model = result.Model
	record.TokensIn = result.TokensIn
	record.TokensOut = result.TokensOut
	if len(result.Usage) > 0 {
		record.Usage = datatypes.JSONMap(result.Usage)
	}
	record.Status = models.HintRecordStatusOK
	record.ErrorMessage = ""
	if err := s.hints.Update(ctx, record); err != nil {
		s.logger.Warn().Err(err).Uint("hint_record_id", record.ID).Msg("failed to finalize hint record")
	}

	return text, nil
}

func (s *hintService) failRecord(ctx context.Context, record *models.HintRecord) {
	record.Status = models.HintRecordStatusError
	if err := s.hints.Update(ctx, record); err != nil {
		s.logger.Warn().Err(err).Uint("hint_record_id", record.ID).Msg("failed to mark hint record failed")
	}
}

// deliver bumps the per-progress hint counter and shapes the response. The
// counter tracks deliveries, not generations, so repeat requests are visible
// to instructors.
func (s *hintService) deliver(ctx context.Context, progressID uint, level int, text, source string) dto.HintResponse {
	column := repository.CounterHint1Requests
	if level == models.HintLevel2 {
		column = repository.CounterHint2Requests
	}
	if err := s.activity.IncrementCounter(ctx, progressID, column); err != nil {
		s.logger.Warn().Err(err).Uint("progress_id", progressID).Str("counter", column).Msg("failed to bump hint counter")
	}

	observability.HintDeliveries().WithLabelValues(strconv.Itoa(level), source).Inc()

	return dto.HintResponse{Level: level, Text: text}
}

// buildPromptSnapshot assembles the redacted context sent to the provider:
// statement, constraints, up to two visible examples, the latest submission
// and a brief of the last three attempts.
func (s *hintService) buildPromptSnapshot(ctx context.Context, level int, task models.SessionTask, progress models.TaskProgress) (string, error) {
	var parts []string
	parts = append(parts, fmt.Sprintf("LEVEL=%d", level))
	parts = append(parts, "TASK_STATEMENT:\n"+task.Statement)
	if task.Constraints != "" {
		parts = append(parts, "CONSTRAINTS:\n"+task.Constraints)
	}

	visible, err := s.sessions.ListVisibleTestCases(ctx, task.ID)
	if err != nil {
		return "", err
	}
	if len(visible) > 0 {
		if len(visible) > 2 {
			visible = visible[:2]
		}
		examples := make([]string, 0, len(visible))
		for i, tc := range visible {
			examples = append(examples, fmt.Sprintf("Example %d:\nInput:\n%s\nOutput:\n%s", i+1, tc.Stdin, tc.ExpectedStdout))
		}
		parts = append(parts, "VISIBLE_TESTS:\n"+strings.Join(examples, "\n\n"))
	}

	last, err := s.progress.LastSubmission(ctx, progress.ID)
	if err != nil {
		return "", err
	}
	if last != nil {
		parts = append(parts, fmt.Sprintf("LAST_SUBMISSION:\nverdict=%s\nstderr=%s\npassed=%d/%d\nCODE:\n%s",
			last.Verdict, last.Stderr, last.PassedTests, last.TotalTests, last.Code))
	}

	recent, err := s.progress.ListRecentSubmissions(ctx, progress.ID, 3)
	if err != nil {
		return "", err
	}
	if len(recent) > 0 {
		brief := make([]string, 0, len(recent))
		for _, sub := range recent {
			brief = append(brief, fmt.Sprintf("attempt=%d verdict=%s passed=%d/%d err=%s",
				sub.AttemptNo, sub.Verdict, sub.PassedTests, sub.TotalTests, truncate(sub.Stderr, 200)))
		}
		parts = append(parts, "LAST_3_ATTEMPTS_BRIEF:\n"+strings.Join(brief, "\n"))
	}

	return strings.Join(parts, "\n\n"), nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
