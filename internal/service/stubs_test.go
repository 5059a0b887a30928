package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/noah-isme/kodelab-api/internal/models"
	"github.com/noah-isme/kodelab-api/internal/repository"
	"github.com/noah-isme/kodelab-api/pkg/ai"
	"github.com/noah-isme/kodelab-api/pkg/judge"
)

type stubSessionRepo struct {
	session models.ExamSession
	task    models.SessionTask
	tasks   []models.SessionTask
	cases   []models.TaskTestCase
	visible []models.TaskTestCase
	err     error
}

func (s *stubSessionRepo) ActiveForClass(ctx context.Context, classGroupID uint, now time.Time) (models.ExamSession, error) {
	if s.err != nil {
		return models.ExamSession{}, s.err
	}
	if s.session.ID == 0 {
		return models.ExamSession{}, gorm.ErrRecordNotFound
	}
	return s.session, nil
}

func (s *stubSessionRepo) GetTask(ctx context.Context, taskID, sessionID uint) (models.SessionTask, error) {
	if s.err != nil {
		return models.SessionTask{}, s.err
	}
	if s.task.ID == 0 || s.task.ID != taskID {
		return models.SessionTask{}, gorm.ErrRecordNotFound
	}
	return s.task, nil
}

func (s *stubSessionRepo) ListTasks(ctx context.Context, sessionID uint) ([]models.SessionTask, error) {
	return s.tasks, s.err
}

func (s *stubSessionRepo) ListTestCases(ctx context.Context, taskID uint) ([]models.TaskTestCase, error) {
	return s.cases, s.err
}

func (s *stubSessionRepo) ListVisibleTestCases(ctx context.Context, taskID uint) ([]models.TaskTestCase, error) {
	return s.visible, s.err
}

type stubStudentSessionRepo struct {
	session models.StudentSession
	touched int
}

func (s *stubStudentSessionRepo) GetOrCreate(ctx context.Context, studentID, sessionID uint, now time.Time) (models.StudentSession, error) {
	if s.session.ID == 0 {
		s.session = models.StudentSession{ID: 1, StudentID: studentID, ExamSessionID: sessionID, StartedAt: &now}
	}
	return s.session, nil
}

func (s *stubStudentSessionRepo) TouchLastSeen(ctx context.Context, id uint, now time.Time) error {
	s.touched++
	return nil
}

// stubProgressRepo keeps one in-memory progress row and its submissions.
// WithLock runs the callback against the same row, mimicking the serialized
// read-modify-write of the real repository.
type stubProgressRepo struct {
	progress    models.TaskProgress
	submissions []models.Submission
	last        *models.Submission
	recent      []models.Submission
	updates     int
}

func (s *stubProgressRepo) GetOrCreate(ctx context.Context, studentSessionID, taskID uint) (models.TaskProgress, error) {
	if s.progress.ID == 0 {
		s.progress = models.TaskProgress{
			ID:               1,
			StudentSessionID: studentSessionID,
			SessionTaskID:    taskID,
			Status:           models.ProgressStatusNotStarted,
			LockedAfterSolve: true,
		}
	}
	return s.progress, nil
}

func (s *stubProgressRepo) ListForStudentSession(ctx context.Context, studentSessionID uint) ([]models.TaskProgress, error) {
	if s.progress.ID == 0 {
		return nil, nil
	}
	return []models.TaskProgress{s.progress}, nil
}

func (s *stubProgressRepo) Update(ctx context.Context, progress *models.TaskProgress) error {
	s.progress = *progress
	s.updates++
	return nil
}

func (s *stubProgressRepo) WithLock(ctx context.Context, progressID uint, fn func(tx repository.ProgressTx) error) error {
	return fn(&stubProgressTx{repo: s})
}

func (s *stubProgressRepo) LastSubmission(ctx context.Context, progressID uint) (*models.Submission, error) {
	return s.last, nil
}

func (s *stubProgressRepo) ListRecentSubmissions(ctx context.Context, progressID uint, limit int) ([]models.Submission, error) {
	return s.recent, nil
}

type stubProgressTx struct {
	repo *stubProgressRepo
}

func (t *stubProgressTx) Progress() *models.TaskProgress {
	return &t.repo.progress
}

func (t *stubProgressTx) Save() error {
	return nil
}

func (t *stubProgressTx) CreateSubmission(submission *models.Submission) error {
	submission.ID = uint(len(t.repo.submissions) + 1)
	t.repo.submissions = append(t.repo.submissions, *submission)
	return nil
}

type stubHintRepo struct {
	latest  *models.HintRecord
	records []*models.HintRecord
}

func (s *stubHintRepo) Create(ctx context.Context, record *models.HintRecord) error {
	record.ID = uint(len(s.records) + 1)
	s.records = append(s.records, record)
	return nil
}

func (s *stubHintRepo) Update(ctx context.Context, record *models.HintRecord) error {
	return nil
}

func (s *stubHintRepo) LatestOK(ctx context.Context, progressID uint, level int) (*models.HintRecord, error) {
	return s.latest, nil
}

type stubActivityRepo struct {
	events   []models.ActivityEvent
	counters map[string]int
}

func (s *stubActivityRepo) RecordEvent(ctx context.Context, event *models.ActivityEvent) error {
	s.events = append(s.events, *event)
	return nil
}

func (s *stubActivityRepo) IncrementCounter(ctx context.Context, progressID uint, column string) error {
	if s.counters == nil {
		s.counters = make(map[string]int)
	}
	s.counters[column]++
	return nil
}

func (s *stubActivityRepo) GetAggregate(ctx context.Context, progressID uint) (models.ActivityAggregate, error) {
	return models.ActivityAggregate{TaskProgressID: progressID}, nil
}

type stubJudge struct {
	tokens    []string
	results   []judge.CaseResult
	submitErr error
	waitErr   error
	submits   int
}

func (s *stubJudge) SubmitBatch(ctx context.Context, code string, cases []judge.TestCase) ([]string, error) {
	s.submits++
	if s.submitErr != nil {
		return nil, s.submitErr
	}
	if s.tokens == nil {
		tokens := make([]string, len(cases))
		for i := range cases {
			tokens[i] = "tok"
		}
		return tokens, nil
	}
	return s.tokens, nil
}

func (s *stubJudge) WaitBatch(ctx context.Context, tokens []string) ([]judge.CaseResult, error) {
	if s.waitErr != nil {
		return nil, s.waitErr
	}
	return s.results, nil
}

type stubGenerator struct {
	result ai.HintResult
	err    error
	calls  int
	last   ai.HintInput
}

func (s *stubGenerator) GenerateHint(ctx context.Context, input ai.HintInput) (ai.HintResult, error) {
	s.calls++
	s.last = input
	if s.err != nil {
		return ai.HintResult{}, s.err
	}
	return s.result, nil
}
