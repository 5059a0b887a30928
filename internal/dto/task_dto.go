package dto

import "github.com/noah-isme/kodelab-api/internal/models"

// TaskInfo is the full task statement shown when a task is opened.
type TaskInfo struct {
	ID          uint   `json:"id"`
	Position    uint   `json:"position"`
	Title       string `json:"title"`
	Statement   string `json:"statement"`
	Constraints string `json:"constraints"`
}

// TestCaseExample is a visible test case shown to the student.
type TestCaseExample struct {
	Ordinal        uint   `json:"ordinal"`
	Stdin          string `json:"stdin"`
	ExpectedStdout string `json:"expected_stdout"`
}

// TaskDetailResponse is the open-task result. Locked=true means the task was
// solved and is no longer viewable; the statement is withheld.
type TaskDetailResponse struct {
	Locked           bool              `json:"locked"`
	Task             *TaskInfo         `json:"task,omitempty"`
	Progress         *ProgressSummary  `json:"progress,omitempty"`
	VisibleTestCases []TestCaseExample `json:"visible_testcases,omitempty"`
}

// NewTaskInfo builds a task DTO from a model.
func NewTaskInfo(task models.SessionTask) TaskInfo {
	return TaskInfo{
		ID:          task.ID,
		Position:    task.Position,
		Title:       task.Title,
		Statement:   task.Statement,
		Constraints: task.Constraints,
	}
}

// NewTestCaseExamples converts visible test cases into example DTOs.
func NewTestCaseExamples(cases []models.TaskTestCase) []TestCaseExample {
	examples := make([]TestCaseExample, 0, len(cases))
	for _, tc := range cases {
		examples = append(examples, TestCaseExample{
			Ordinal:        tc.Ordinal,
			Stdin:          tc.Stdin,
			ExpectedStdout: tc.ExpectedStdout,
		})
	}
	return examples
}
