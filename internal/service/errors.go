package service

import "errors"

// Sentinel errors shared by the student-facing services. Handlers translate
// these into logical reason codes; raw transport errors never reach clients.
var (
	// ErrStudentNotFound indicates no active student matches the given name.
	ErrStudentNotFound = errors.New("student not found")

	// ErrInvalidCredentials indicates a PIN mismatch.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrSessionInactive indicates no running session covers the caller's class.
	ErrSessionInactive = errors.New("current session is inactive")

	// ErrTaskNotFound indicates the task does not belong to the active session.
	ErrTaskNotFound = errors.New("task not found")

	// ErrEmptyCode indicates a submission without code.
	ErrEmptyCode = errors.New("code is required")

	// ErrNoTestCases indicates a task misconfiguration: grading is impossible.
	ErrNoTestCases = errors.New("no test cases configured for this task")

	// ErrInvalidHintLevel indicates a hint level outside 1..2.
	ErrInvalidHintLevel = errors.New("invalid hint level")

	// ErrHintNotAvailable indicates the hint threshold has not been reached.
	ErrHintNotAvailable = errors.New("hint not available yet")

	// ErrHintUnavailable indicates the hint provider failed; the audit record
	// keeps the diagnostic, the caller only sees this generic failure.
	ErrHintUnavailable = errors.New("hint assistant temporarily unavailable")
)
