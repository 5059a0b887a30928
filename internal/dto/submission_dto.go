package dto

import "github.com/noah-isme/kodelab-api/internal/models"

// SubmitRequest carries the code of one grading attempt.
type SubmitRequest struct {
	Code string `json:"code" validate:"required,min=1"`
}

// SubmissionResponse is the immutable record of one graded attempt.
type SubmissionResponse struct {
	ID          uint   `json:"id"`
	AttemptNo   uint   `json:"attempt_no"`
	Verdict     string `json:"verdict"`
	Stdout      string `json:"stdout"`
	Stderr      string `json:"stderr"`
	PassedTests uint   `json:"passed_tests"`
	TotalTests  uint   `json:"total_tests"`
}

// SubmitResponse pairs the new submission with the resulting progress state.
type SubmitResponse struct {
	Submission SubmissionResponse `json:"submission"`
	Progress   ProgressSummary    `json:"progress"`
}

// NewSubmissionResponse builds a submission DTO from a model.
func NewSubmissionResponse(submission models.Submission) SubmissionResponse {
	return SubmissionResponse{
		ID:          submission.ID,
		AttemptNo:   submission.AttemptNo,
		Verdict:     submission.Verdict,
		Stdout:      submission.Stdout,
		Stderr:      submission.Stderr,
		PassedTests: submission.PassedTests,
		TotalTests:  submission.TotalTests,
	}
}
