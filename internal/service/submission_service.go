package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/noah-isme/kodelab-api/internal/dto"
	"github.com/noah-isme/kodelab-api/internal/models"
	"github.com/noah-isme/kodelab-api/internal/observability"
	"github.com/noah-isme/kodelab-api/internal/repository"
	"github.com/noah-isme/kodelab-api/pkg/judge"
)

// SubmissionService grades student code against a task's test cases and
// advances the per-task progress state machine.
type SubmissionService interface {
	Submit(ctx context.Context, identity Identity, taskID uint, payload dto.SubmitRequest) (dto.SubmitResponse, error)
}

// SubmissionConfig describes anti-abuse knobs for the submit path.
type SubmissionConfig struct {
	Cooldown time.Duration
}

type submissionService struct {
	sessions        repository.ExamSessionRepository
	studentSessions repository.StudentSessionRepository
	progress        repository.ProgressRepository
	judge           judge.Client
	activity        ActivityService
	validator       *validator.Validate
	logger          zerolog.Logger
	config          SubmissionConfig
	now             func() time.Time
}

// NewSubmissionService constructs a new submission service.
func NewSubmissionService(sessionRepo repository.ExamSessionRepository, studentSessionRepo repository.StudentSessionRepository, progressRepo repository.ProgressRepository, judgeClient judge.Client, activity ActivityService, validate *validator.Validate, logger zerolog.Logger, cfg SubmissionConfig) SubmissionService {
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = 15 * time.Second
	}

	return &submissionService{
		sessions:        sessionRepo,
		studentSessions: studentSessionRepo,
		progress:        progressRepo,
		judge:           judgeClient,
		activity:        activity,
		validator:       validate,
		logger:          logger.With().Str("component", "submission_service").Logger(),
		config:          cfg,
		now:             time.Now,
	}
}

// Submit runs one grading attempt end to end: access checks, anti-abuse
// gates, judge execution, verdict interpretation and state transition. The
// gate check and attempt registration run atomically under the per-progress
// lock, so a rejected attempt never consumes an attempt number. A judge
// outage still produces a persisted runtime_error submission: the attempt was
// made and must count.
func (s *submissionService) Submit(ctx context.Context, identity Identity, taskID uint, payload dto.SubmitRequest) (dto.SubmitResponse, error) {
	if err := s.validator.Struct(payload); err != nil {
		return dto.SubmitResponse{}, err
	}
	code := strings.TrimRight(payload.Code, " \t\r\n")
	if code == "" {
		return dto.SubmitResponse{}, ErrEmptyCode
	}

	now := s.now()

	session, err := s.sessions.ActiveForClass(ctx, identity.ClassGroupID, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmitResponse{}, ErrSessionInactive
		}
		return dto.SubmitResponse{}, err
	}

	task, err := s.sessions.GetTask(ctx, taskID, session.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.SubmitResponse{}, ErrTaskNotFound
		}
		return dto.SubmitResponse{}, err
	}

	testCases, err := s.sessions.ListTestCases(ctx, task.ID)
	if err != nil {
		return dto.SubmitResponse{}, err
	}
	if len(testCases) == 0 {
		return dto.SubmitResponse{}, ErrNoTestCases
	}

	studentSession, err := s.studentSessions.GetOrCreate(ctx, identity.StudentID, session.ID, now)
	if err != nil {
		return dto.SubmitResponse{}, err
	}
	if err := s.studentSessions.TouchLastSeen(ctx, studentSession.ID, now); err != nil {
		s.logger.Warn().Err(err).Uint("student_session_id", studentSession.ID).Msg("failed to touch last seen")
	}

	progress, err := s.progress.GetOrCreate(ctx, studentSession.ID, task.ID)
	if err != nil {
		return dto.SubmitResponse{}, err
	}

	codeHash := models.HashCode(code)

	// Gate check and attempt registration are a single read-modify-write
	// under the row lock. The judge call itself runs outside the lock so a
	// slow grading run does not serialize unrelated requests.
	var attemptNo uint
	err = s.progress.WithLock(ctx, progress.ID, func(tx repository.ProgressTx) error {
		p := tx.Progress()
		// Submitting counts as working on the task even if it was never
		// explicitly opened.
		p.MarkOpened(now)
		if gateErr := p.CheckSubmitGate(now, codeHash, s.config.Cooldown); gateErr != nil {
			return gateErr
		}
		attemptNo = p.RegisterAttempt(now, codeHash)
		return tx.Save()
	})
	if err != nil {
		return dto.SubmitResponse{}, err
	}

	cases := make([]judge.TestCase, 0, len(testCases))
	for _, tc := range testCases {
		cases = append(cases, judge.TestCase{Stdin: tc.Stdin, ExpectedStdout: tc.ExpectedStdout})
	}

	verdict, passed, stdout, stderr := s.grade(ctx, code, cases)

	var (
		saved    models.Submission
		snapshot models.TaskProgress
	)
	err = s.progress.WithLock(ctx, progress.ID, func(tx repository.ProgressTx) error {
		p := tx.Progress()
		p.RecordVerdict(verdict, now)
		if saveErr := tx.Save(); saveErr != nil {
			return saveErr
		}

		saved = models.Submission{
			TaskProgressID: p.ID,
			AttemptNo:      attemptNo,
			Code:           code,
			Verdict:        verdict,
			Stdout:         stdout,
			Stderr:         stderr,
			PassedTests:    passed,
			TotalTests:     uint(len(cases)),
		}
		if createErr := tx.CreateSubmission(&saved); createErr != nil {
			return createErr
		}

		snapshot = *p
		return nil
	})
	if err != nil {
		return dto.SubmitResponse{}, err
	}

	observability.GradedSubmissions().WithLabelValues(verdict).Inc()
	if s.activity != nil {
		s.activity.Record(ctx, progress.ID, models.ActivityEventSubmit, map[string]interface{}{
			"attempt_no": attemptNo,
			"verdict":    verdict,
		})
	}

	s.logger.Info().
		Uint("progress_id", progress.ID).
		Uint("attempt_no", attemptNo).
		Str("verdict", verdict).
		Uint("passed", passed).
		Int("total", len(cases)).
		Msg("submission graded")

	return dto.SubmitResponse{
		Submission: dto.NewSubmissionResponse(saved),
		Progress:   dto.NewProgressSummary(snapshot),
	}, nil
}

// grade runs the code on the judge and interprets the outcome. Judge failures
// degrade to a runtime_error verdict with a diagnostic in stderr instead of
// surfacing a transport error.
func (s *submissionService) grade(ctx context.Context, code string, cases []judge.TestCase) (verdict string, passed uint, stdout, stderr string) {
	tokens, err := s.judge.SubmitBatch(ctx, code, cases)
	if err != nil {
		s.logger.Error().Err(err).Msg("judge batch submit failed")
		return models.VerdictRuntimeError, 0, "", "judge error: " + err.Error()
	}

	results, err := s.judge.WaitBatch(ctx, tokens)
	if err != nil {
		s.logger.Error().Err(err).Msg("judge batch wait failed")
		return models.VerdictRuntimeError, 0, "", "judge error: " + err.Error()
	}
	if len(results) == 0 {
		return models.VerdictRuntimeError, 0, "", "judge error: empty result set"
	}

	return interpretResults(results)
}

// interpretResults walks the per-case outcomes in submission order and stops
// at the first non-accepted case, which determines the overall verdict. The
// returned stdout/stderr reflect the last case examined. Cases still pending
// at the polling deadline fall into the runtime-error family.
func interpretResults(results []judge.CaseResult) (verdict string, passed uint, stdout, stderr string) {
	for _, result := range results {
		stdout = result.Stdout
		stderr = firstNonEmpty(result.Stderr, result.CompileOutput, result.Message)

		switch {
		case result.StatusID == judge.StatusAccepted:
			passed++
		case result.StatusID == judge.StatusWrongAnswer:
			return models.VerdictWrongAnswer, passed, stdout, stderr
		case result.StatusID == judge.StatusTimeLimitExceeded:
			return models.VerdictTimeLimit, passed, stdout, stderr
		case result.StatusID == judge.StatusCompilationError:
			return models.VerdictCompilationError, passed, stdout, stderr
		default:
			return models.VerdictRuntimeError, passed, stdout, stderr
		}
	}

	return models.VerdictAccepted, passed, stdout, stderr
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
