package ai

import (
	"context"
	"fmt"
)

// AnthropicConfig placeholder for anthropic integration configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string
}

// AnthropicHintGenerator is a stub implementation that can be expanded once the SDK is available.
type AnthropicHintGenerator struct{}

// NewAnthropicHintGenerator constructs a new stub generator.
func NewAnthropicHintGenerator(cfg AnthropicConfig) (*AnthropicHintGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	return &AnthropicHintGenerator{}, nil
}

// GenerateHint is not yet implemented for Anthropic models.
func (a *AnthropicHintGenerator) GenerateHint(ctx context.Context, input HintInput) (HintResult, error) {
	return HintResult{}, fmt.Errorf("anthropic hint generator not implemented")
}
