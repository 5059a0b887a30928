package models

import "time"

// FinishReason enumerates how a student session ended.
const (
	FinishReasonCompleted = "completed"
	FinishReasonTimeout   = "timeout"
	FinishReasonManual    = "manual"
)

// StudentSession tracks one student's participation in one session.
// Created lazily on first interaction; unique per (student, session) pair.
type StudentSession struct {
	ID            uint           `gorm:"primaryKey" json:"id"`
	StudentID     uint           `gorm:"not null;uniqueIndex:uniq_student_session" json:"student_id"`
	ExamSessionID uint           `gorm:"not null;uniqueIndex:uniq_student_session" json:"exam_session_id"`
	StartedAt     *time.Time     `json:"started_at"`
	FinishedAt    *time.Time     `json:"finished_at"`
	FinishReason  string         `gorm:"size:16" json:"finish_reason"`
	LastSeenAt    *time.Time     `json:"last_seen_at"`
	Student       Student        `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	ExamSession   ExamSession    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
	TaskProgress  []TaskProgress `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}
