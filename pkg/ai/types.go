package ai

import "context"

// HintInput carries a hint request: the unlock level and the redacted context
// snapshot built from the task and the student's attempt history.
type HintInput struct {
	Level          int
	PromptSnapshot string
}

// HintResult is the structured output returned by the hint provider. The
// NoCodeConfirmed flag is the provider's self-report; callers must still run
// the sanitizer and never trust the flag alone.
type HintResult struct {
	Text            string
	NoCodeConfirmed bool
	Model           string
	TokensIn        *int
	TokensOut       *int
	Usage           map[string]interface{}
}

// HintGenerator describes an AI model capable of producing no-code tutoring hints.
type HintGenerator interface {
	GenerateHint(ctx context.Context, input HintInput) (HintResult, error)
}
