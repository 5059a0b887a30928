package models

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// ProgressStatus enumerates task progress states.
const (
	ProgressStatusNotStarted = "not_started"
	ProgressStatusInProgress = "in_progress"
	ProgressStatusSolved     = "solved"
)

// Hint levels unlock after a fixed number of failed attempts. The gate is
// monotonic: unlock timestamps are set once and never cleared.
const (
	HintLevel1 = 1
	HintLevel2 = 2

	HintLevel1Threshold = 5
	HintLevel2Threshold = 8
)

// ErrProgressLocked signals that a solved task is no longer viewable or
// submittable. This is a normal, user-visible outcome, not a failure.
var ErrProgressLocked = errors.New("task is solved and locked")

// ErrNoCodeChange signals a submission whose code is identical to the
// previous one for the same progress.
var ErrNoCodeChange = errors.New("no changes in code since last submit")

// TooFrequentError signals a submission inside the cooldown window.
type TooFrequentError struct {
	Wait time.Duration
}

func (e *TooFrequentError) Error() string {
	return fmt.Sprintf("too frequent submits, wait %ds", e.WaitSeconds())
}

// WaitSeconds returns the remaining wait rounded up to whole seconds.
func (e *TooFrequentError) WaitSeconds() int {
	return int(e.Wait.Seconds() + 0.999)
}

// TaskProgress is the per-student-per-task state machine: attempt counters,
// solved/locked status, hint unlock gates and anti-spam markers. Exactly one
// row exists per (student session, task) pair.
type TaskProgress struct {
	ID               uint         `gorm:"primaryKey" json:"id"`
	StudentSessionID uint         `gorm:"not null;uniqueIndex:uniq_progress_session_task" json:"student_session_id"`
	SessionTaskID    uint         `gorm:"not null;uniqueIndex:uniq_progress_session_task" json:"session_task_id"`
	Status           string       `gorm:"size:16;not null;default:not_started" json:"status"`
	OpenedAt         *time.Time   `json:"opened_at"`
	SolvedAt         *time.Time   `json:"solved_at"`
	AttemptsTotal    uint         `gorm:"not null;default:0" json:"attempts_total"`
	AttemptsFailed   uint         `gorm:"not null;default:0" json:"attempts_failed"`
	Hint1UnlockedAt  *time.Time   `json:"hint1_unlocked_at"`
	Hint2UnlockedAt  *time.Time   `json:"hint2_unlocked_at"`
	Hint1Text        string       `gorm:"type:text" json:"-"`
	Hint2Text        string       `gorm:"type:text" json:"-"`
	LastSubmitAt     *time.Time   `json:"last_submit_at"`
	LastCodeHash     string       `gorm:"size:64;not null;default:''" json:"-"`
	LockedAfterSolve bool         `gorm:"not null;default:true" json:"locked_after_solve"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
	Submissions      []Submission `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	Hints            []HintRecord `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// HashCode returns the canonical content hash used for no-op detection.
func HashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// MarkOpened transitions not_started to in_progress and stamps opened_at once.
// Safe to call on every open.
func (p *TaskProgress) MarkOpened(now time.Time) {
	if p.OpenedAt == nil {
		t := now
		p.OpenedAt = &t
	}
	if p.Status == ProgressStatusNotStarted {
		p.Status = ProgressStatusInProgress
	}
}

// IsLocked reports whether the task is solved and closed for further opens and submits.
func (p TaskProgress) IsLocked() bool {
	return p.Status == ProgressStatusSolved && p.LockedAfterSolve
}

// CheckSubmitGate evaluates the access and anti-abuse gates for a new
// submission. It must run before any counter is incremented: a rejected
// attempt does not count against the student.
func (p TaskProgress) CheckSubmitGate(now time.Time, codeHash string, cooldown time.Duration) error {
	if p.IsLocked() {
		return ErrProgressLocked
	}

	if p.LastSubmitAt != nil {
		elapsed := now.Sub(*p.LastSubmitAt)
		if elapsed < cooldown {
			return &TooFrequentError{Wait: cooldown - elapsed}
		}
	}

	if p.LastCodeHash != "" && p.LastCodeHash == codeHash {
		return ErrNoCodeChange
	}

	return nil
}

// RegisterAttempt increments the attempt counter and stamps the anti-spam
// markers, returning the attempt number assigned to the submission. Callers
// must hold the per-progress lock across gate check, registration and the
// final RecordVerdict.
func (p *TaskProgress) RegisterAttempt(now time.Time, codeHash string) uint {
	p.AttemptsTotal++
	t := now
	p.LastSubmitAt = &t
	p.LastCodeHash = codeHash
	return p.AttemptsTotal
}

// RecordVerdict applies a grading outcome to the state machine. Accepted
// transitions to solved and locks the task; anything else counts as a failed
// attempt and re-evaluates the hint unlock thresholds.
func (p *TaskProgress) RecordVerdict(verdict string, now time.Time) {
	if verdict == VerdictAccepted {
		p.Status = ProgressStatusSolved
		t := now
		p.SolvedAt = &t
		p.LockedAfterSolve = true
		return
	}

	p.AttemptsFailed++

	if p.AttemptsFailed == HintLevel1Threshold && p.Hint1UnlockedAt == nil {
		t := now
		p.Hint1UnlockedAt = &t
	}
	if p.AttemptsFailed == HintLevel2Threshold && p.Hint2UnlockedAt == nil {
		t := now
		p.Hint2UnlockedAt = &t
	}
}

// HintUnlocked reports whether the given hint level has been unlocked.
func (p TaskProgress) HintUnlocked(level int) bool {
	switch level {
	case HintLevel1:
		return p.Hint1UnlockedAt != nil
	case HintLevel2:
		return p.Hint2UnlockedAt != nil
	default:
		return false
	}
}

// HintText returns the denormalized cached hint text for the level, if any.
func (p TaskProgress) HintText(level int) string {
	switch level {
	case HintLevel1:
		return p.Hint1Text
	case HintLevel2:
		return p.Hint2Text
	default:
		return ""
	}
}

// SetHintText backfills the denormalized hint cache for the level.
func (p *TaskProgress) SetHintText(level int, text string) {
	switch level {
	case HintLevel1:
		p.Hint1Text = text
	case HintLevel2:
		p.Hint2Text = text
	}
}
