package models

import (
	"time"

	"gorm.io/datatypes"
)

// HintRecordStatus enumerates hint generation outcomes.
const (
	HintRecordStatusOK    = "ok"
	HintRecordStatusError = "error"
)

// HintRecord is the durable audit trail of one hint generation attempt: the
// exact prompt snapshot sent, the sanitized response (if any) and usage
// metadata. A pending record is written before the provider call so failures
// stay auditable even if the process dies mid-call.
type HintRecord struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	TaskProgressID uint              `gorm:"not null;index:idx_hint_progress_level" json:"task_progress_id"`
	Level          int               `gorm:"not null;index:idx_hint_progress_level" json:"level"`
	PromptSnapshot string            `gorm:"type:text;not null" json:"-"`
	ResponseText   string            `gorm:"type:text" json:"response_text"`
	Model          string            `gorm:"size:64" json:"model"`
	TokensIn       *int              `json:"tokens_in"`
	TokensOut      *int              `json:"tokens_out"`
	Usage          datatypes.JSONMap `json:"usage"`
	Status         string            `gorm:"size:16;not null;default:ok" json:"status"`
	ErrorMessage   string            `gorm:"type:text" json:"-"`
	CreatedAt      time.Time         `json:"created_at"`
}
