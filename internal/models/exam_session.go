package models

import "time"

// ExamSessionStatus enumerates session lifecycle states.
const (
	ExamSessionStatusDraft   = "draft"
	ExamSessionStatusRunning = "running"
	ExamSessionStatusClosed  = "closed"
)

// ExamSession is a timed practice session instructors open for one or more classes.
type ExamSession struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	Title       string       `gorm:"size:200;not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	Status      string       `gorm:"size:16;not null;default:draft" json:"status"`
	StartsAt    *time.Time   `json:"starts_at"`
	EndsAt      *time.Time   `json:"ends_at"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Classes     []ClassGroup `gorm:"many2many:session_classes" json:"-"`
	Tasks       []SessionTask `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"-"`
}

// IsActiveNow reports whether the session is running and inside its time window.
func (s ExamSession) IsActiveNow(now time.Time) bool {
	if s.Status != ExamSessionStatusRunning {
		return false
	}
	if s.StartsAt != nil && now.Before(*s.StartsAt) {
		return false
	}
	if s.EndsAt != nil && now.After(*s.EndsAt) {
		return false
	}
	return true
}
