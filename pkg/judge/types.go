package judge

import "context"

// Judge0 status ids. Anything at or above StatusRuntimeErrorMin belongs to
// the runtime-error family (SIGSEGV, NZEC, internal error, ...).
const (
	StatusInQueue           = 1
	StatusProcessing        = 2
	StatusAccepted          = 3
	StatusWrongAnswer       = 4
	StatusTimeLimitExceeded = 5
	StatusCompilationError  = 6
	StatusRuntimeErrorMin   = 7
)

// TestCase is one stdin/expected-stdout pair to run the code against.
type TestCase struct {
	Stdin          string
	ExpectedStdout string
}

// CaseResult is the decoded per-test-case outcome of a batch run.
type CaseResult struct {
	Token         string
	StatusID      int
	Stdout        string
	Stderr        string
	CompileOutput string
	Message       string
}

// Pending reports whether the case has not left the judge queue yet.
func (r CaseResult) Pending() bool {
	return r.StatusID == StatusInQueue || r.StatusID == StatusProcessing
}

// Client drives a remote batch-execution judge: submit all test cases in one
// call, then poll until completion or deadline.
type Client interface {
	SubmitBatch(ctx context.Context, code string, cases []TestCase) ([]string, error)
	WaitBatch(ctx context.Context, tokens []string) ([]CaseResult, error)
}
