package dto

import (
	"time"

	"github.com/noah-isme/kodelab-api/internal/models"
)

// ProgressSummary is the per-task progress snapshot shown to the student.
type ProgressSummary struct {
	Status         string `json:"status"`
	AttemptsTotal  uint   `json:"attempts_total"`
	AttemptsFailed uint   `json:"attempts_failed"`
	Hint1Available bool   `json:"hint1_available"`
	Hint2Available bool   `json:"hint2_available"`
}

// SessionInfo describes an active session.
type SessionInfo struct {
	ID          uint       `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartsAt    *time.Time `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
}

// TaskSummary is one entry of the session task list.
type TaskSummary struct {
	ID       uint            `json:"id"`
	Position uint            `json:"position"`
	Title    string          `json:"title"`
	Progress ProgressSummary `json:"progress"`
}

// ActiveSessionResponse is the active-session lookup result. Active=false is
// a normal outcome, not an error.
type ActiveSessionResponse struct {
	Active  bool          `json:"active"`
	Session *SessionInfo  `json:"session,omitempty"`
	Tasks   []TaskSummary `json:"tasks,omitempty"`
}

// NewProgressSummary builds a progress snapshot from a model.
func NewProgressSummary(progress models.TaskProgress) ProgressSummary {
	return ProgressSummary{
		Status:         progress.Status,
		AttemptsTotal:  progress.AttemptsTotal,
		AttemptsFailed: progress.AttemptsFailed,
		Hint1Available: progress.HintUnlocked(models.HintLevel1),
		Hint2Available: progress.HintUnlocked(models.HintLevel2),
	}
}

// NewSessionInfo builds a session DTO from a model.
func NewSessionInfo(session models.ExamSession) SessionInfo {
	return SessionInfo{
		ID:          session.ID,
		Title:       session.Title,
		Description: session.Description,
		StartsAt:    session.StartsAt,
		EndsAt:      session.EndsAt,
	}
}
