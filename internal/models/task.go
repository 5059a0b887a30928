package models

import "time"

// SessionTask is a programming task inside a session. Immutable once the session runs.
type SessionTask struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	ExamSessionID uint           `gorm:"not null;uniqueIndex:uniq_task_position_in_session" json:"exam_session_id"`
	Position      uint           `gorm:"not null;uniqueIndex:uniq_task_position_in_session" json:"position"`
	Title         string         `gorm:"size:200;not null" json:"title"`
	Statement     string         `gorm:"type:text;not null" json:"statement"`
	Constraints   string         `gorm:"type:text" json:"constraints"`
	CreatedAt     time.Time      `json:"created_at"`
	TestCases     []TaskTestCase `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// TaskTestCase is one stdin/expected-stdout pair of a task. Visible cases are
// shown to students as examples; all cases are used for grading.
type TaskTestCase struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	SessionTaskID  uint      `gorm:"not null;uniqueIndex:uniq_testcase_ordinal_in_task" json:"session_task_id"`
	Ordinal        uint      `gorm:"not null;uniqueIndex:uniq_testcase_ordinal_in_task" json:"ordinal"`
	Stdin          string    `gorm:"type:text" json:"stdin"`
	ExpectedStdout string    `gorm:"type:text" json:"expected_stdout"`
	IsVisible      bool      `gorm:"not null;default:false" json:"is_visible"`
	CreatedAt      time.Time `json:"created_at"`
}
