package dto

// HintResponse carries one delivered hint.
type HintResponse struct {
	Level int    `json:"level"`
	Text  string `json:"text"`
}
