package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/noah-isme/kodelab-api/internal/dto"
	"github.com/noah-isme/kodelab-api/internal/models"
	"github.com/noah-isme/kodelab-api/internal/repository"
)

// ActivityService persists proctoring signals and server-side activity
// markers. Recording is append-only; nothing here influences grading.
type ActivityService interface {
	RecordForTask(ctx context.Context, identity Identity, taskID uint, payload dto.ActivityEventRequest) error
	Record(ctx context.Context, progressID uint, eventType string, eventPayload map[string]interface{})
}

// counterForEvent maps client event types onto aggregate columns. Events
// without a counter are still stored as raw rows.
var counterForEvent = map[string]string{
	models.ActivityEventCopy:      repository.CounterTotalCopies,
	models.ActivityEventPaste:     repository.CounterTotalPastes,
	models.ActivityEventTabHidden: repository.CounterTabSwitches,
	models.ActivityEventFocusLost: repository.CounterFocusLostCount,
}

type activityService struct {
	events          repository.ActivityRepository
	sessions        repository.ExamSessionRepository
	studentSessions repository.StudentSessionRepository
	progress        repository.ProgressRepository
	nats            *nats.Conn
	natsSubject     string
	validator       *validator.Validate
	logger          zerolog.Logger
	now             func() time.Time
}

type activityMessage struct {
	ProgressID uint                   `json:"progress_id"`
	EventType  string                 `json:"event_type"`
	Payload    map[string]interface{} `json:"payload,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// NewActivityService constructs an activity service. The NATS connection may
// be nil; fan-out is best effort and never blocks the write path.
func NewActivityService(activityRepo repository.ActivityRepository, sessionRepo repository.ExamSessionRepository, studentSessionRepo repository.StudentSessionRepository, progressRepo repository.ProgressRepository, natsConn *nats.Conn, natsSubject string, validate *validator.Validate, logger zerolog.Logger) ActivityService {
	if natsSubject == "" {
		natsSubject = "kodelab.activity"
	}

	return &activityService{
		events:          activityRepo,
		sessions:        sessionRepo,
		studentSessions: studentSessionRepo,
		progress:        progressRepo,
		nats:            natsConn,
		natsSubject:     natsSubject,
		validator:       validate,
		logger:          logger.With().Str("component", "activity_service").Logger(),
		now:             time.Now,
	}
}

func (s *activityService) RecordForTask(ctx context.Context, identity Identity, taskID uint, payload dto.ActivityEventRequest) error {
	if err := s.validator.Struct(payload); err != nil {
		return err
	}

	now := s.now()

	session, err := s.sessions.ActiveForClass(ctx, identity.ClassGroupID, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionInactive
		}
		return err
	}

	if _, err := s.sessions.GetTask(ctx, taskID, session.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTaskNotFound
		}
		return err
	}

	studentSession, err := s.studentSessions.GetOrCreate(ctx, identity.StudentID, session.ID, now)
	if err != nil {
		return err
	}

	progress, err := s.progress.GetOrCreate(ctx, studentSession.ID, taskID)
	if err != nil {
		return err
	}

	// Reported activity implies the task is being worked on.
	if progress.Status == models.ProgressStatusNotStarted {
		progress.MarkOpened(now)
		if updateErr := s.progress.Update(ctx, &progress); updateErr != nil {
			return updateErr
		}
	}

	event := &models.ActivityEvent{
		TaskProgressID: progress.ID,
		EventType:      payload.EventType,
		OccurredAt:     now,
	}
	if len(payload.Payload) > 0 {
		event.Payload = datatypes.JSONMap(payload.Payload)
	}
	if err := s.events.RecordEvent(ctx, event); err != nil {
		return err
	}

	if column, ok := counterForEvent[payload.EventType]; ok {
		if err := s.events.IncrementCounter(ctx, progress.ID, column); err != nil {
			s.logger.Warn().Err(err).Uint("progress_id", progress.ID).Str("counter", column).Msg("failed to bump activity counter")
		}
	}

	s.publish(progress.ID, payload.EventType, payload.Payload, now)
	return nil
}

// Record stores a server-originated marker such as open_task or submit.
// Failures are logged and swallowed so they never break the main operation.
func (s *activityService) Record(ctx context.Context, progressID uint, eventType string, eventPayload map[string]interface{}) {
	now := s.now()

	event := &models.ActivityEvent{
		TaskProgressID: progressID,
		EventType:      eventType,
		OccurredAt:     now,
	}
	if len(eventPayload) > 0 {
		event.Payload = datatypes.JSONMap(eventPayload)
	}
	if err := s.events.RecordEvent(ctx, event); err != nil {
		s.logger.Warn().Err(err).Uint("progress_id", progressID).Str("event_type", eventType).Msg("failed to record activity event")
		return
	}

	s.publish(progressID, eventType, eventPayload, now)
}

func (s *activityService) publish(progressID uint, eventType string, eventPayload map[string]interface{}, occurredAt time.Time) {
	if s.nats == nil {
		return
	}

	message := activityMessage{
		ProgressID: progressID,
		EventType:  eventType,
		Payload:    eventPayload,
		OccurredAt: occurredAt,
	}
	payload, err := json.Marshal(message)
	if err != nil {
		return
	}
	if err := s.nats.Publish(s.natsSubject, payload); err != nil {
		s.logger.Warn().Err(err).Str("subject", s.natsSubject).Msg("failed to publish activity event")
	}
}
