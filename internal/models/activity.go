package models

import (
	"time"

	"gorm.io/datatypes"
)

// ActivityEventType enumerates tracked student actions.
const (
	ActivityEventCopy        = "copy"
	ActivityEventPaste       = "paste"
	ActivityEventTabHidden   = "tab_hidden"
	ActivityEventTabVisible  = "tab_visible"
	ActivityEventFocusLost   = "focus_lost"
	ActivityEventFocusGained = "focus_gained"
	ActivityEventOpenTask    = "open_task"
	ActivityEventSubmit      = "submit"
)

// ActivityEvent is one raw proctoring signal reported for a progress row.
type ActivityEvent struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	TaskProgressID uint              `gorm:"not null;index:idx_activity_progress_time" json:"task_progress_id"`
	EventType      string            `gorm:"size:32;not null;index" json:"event_type"`
	Payload        datatypes.JSONMap `json:"payload"`
	OccurredAt     time.Time         `gorm:"autoCreateTime;index:idx_activity_progress_time" json:"occurred_at"`
}

// ActivityAggregate keeps server-side, non-forgeable per-progress counters,
// including how many times each hint level was actually delivered.
type ActivityAggregate struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	TaskProgressID uint      `gorm:"not null;uniqueIndex" json:"task_progress_id"`
	TotalCopies    uint      `gorm:"not null;default:0" json:"total_copies"`
	TotalPastes    uint      `gorm:"not null;default:0" json:"total_pastes"`
	TabSwitches    uint      `gorm:"not null;default:0" json:"tab_switches"`
	FocusLostCount uint      `gorm:"not null;default:0" json:"focus_lost_count"`
	Hint1Requests  uint      `gorm:"not null;default:0" json:"hint1_requests"`
	Hint2Requests  uint      `gorm:"not null;default:0" json:"hint2_requests"`
	UpdatedAt      time.Time `json:"updated_at"`
}
