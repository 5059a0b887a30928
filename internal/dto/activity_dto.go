package dto

// ActivityEventRequest reports one client-side proctoring signal.
type ActivityEventRequest struct {
	EventType string                 `json:"event_type" validate:"required,oneof=copy paste tab_hidden tab_visible focus_lost focus_gained"`
	Payload   map[string]interface{} `json:"payload"`
}
