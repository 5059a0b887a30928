package models

import "time"

// Verdict enumerates the final classification of a graded submission.
const (
	VerdictAccepted         = "accepted"
	VerdictWrongAnswer      = "wrong_answer"
	VerdictTimeLimit        = "time_limit"
	VerdictCompilationError = "compilation_error"
	VerdictRuntimeError     = "runtime_error"
)

// Submission is the immutable record of one grading attempt. Attempt numbers
// form a contiguous sequence starting at 1 within their progress row.
type Submission struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	TaskProgressID uint      `gorm:"not null;uniqueIndex:uniq_attempt_no_per_progress" json:"task_progress_id"`
	AttemptNo      uint      `gorm:"not null;uniqueIndex:uniq_attempt_no_per_progress" json:"attempt_no"`
	Code           string    `gorm:"type:text;not null" json:"code"`
	Verdict        string    `gorm:"size:32;not null" json:"verdict"`
	Stdout         string    `gorm:"type:text" json:"stdout"`
	Stderr         string    `gorm:"type:text" json:"stderr"`
	PassedTests    uint      `gorm:"not null;default:0" json:"passed_tests"`
	TotalTests     uint      `gorm:"not null;default:0" json:"total_tests"`
	SubmittedAt    time.Time `gorm:"autoCreateTime" json:"submitted_at"`
}
