package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/santhosh-tekuri/jsonschema/v5"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	hintDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kodelab",
		Subsystem: "ai",
		Name:      "hint_duration_seconds",
		Help:      "Duration of AI hint generation requests",
	}, []string{"model"})

	hintFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kodelab",
		Subsystem: "ai",
		Name:      "hint_failures_total",
		Help:      "Number of AI hint generation failures",
	}, []string{"model"})
)

// hintSchema constrains the provider output before it is trusted: free text
// plus the self-reported no-code flag, nothing else.
var hintSchema = jsonschema.MustCompileString("hint.json", `{
	"type": "object",
	"properties": {
		"text": {"type": "string"},
		"no_code_confirmed": {"type": "boolean"}
	},
	"required": ["text", "no_code_confirmed"],
	"additionalProperties": false
}`)

// OpenAIConfig defines configuration options for the OpenAI hint generator.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIHintGenerator implements HintGenerator against the OpenAI chat completion API.
type OpenAIHintGenerator struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIHintGenerator builds a new generator using the provided configuration.
func NewOpenAIHintGenerator(cfg OpenAIConfig) (*OpenAIHintGenerator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 450
	}

	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIHintGenerator{
		client: client,
		cfg:    cfg,
		tracer: otel.Tracer("github.com/noah-isme/kodelab-api/pkg/ai/openai"),
		logger: logger,
	}, nil
}

// GenerateHint sends the hint request to OpenAI and parses the structured response.
func (g *OpenAIHintGenerator) GenerateHint(parent context.Context, input HintInput) (HintResult, error) {
	ctx, span := g.tracer.Start(parent, "openai.generate_hint", trace.WithAttributes(
		attribute.String("model", g.cfg.Model),
		attribute.Int("level", input.Level),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: hintSystemPrompt(input.Level),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: input.PromptSnapshot,
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := g.client.CreateChatCompletion(ctx, request)
	duration := time.Since(start)
	hintDuration.WithLabelValues(g.cfg.Model).Observe(duration.Seconds())
	if err != nil {
		hintFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return HintResult{}, fmt.Errorf("openai hint: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		hintFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return HintResult{}, err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	result, err := parseHintResponse(content)
	if err != nil {
		hintFailures.WithLabelValues(g.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return HintResult{}, err
	}

	tokensIn := resp.Usage.PromptTokens
	tokensOut := resp.Usage.CompletionTokens
	result.Model = g.cfg.Model
	result.TokensIn = &tokensIn
	result.TokensOut = &tokensOut
	result.Usage = map[string]interface{}{
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
		"total_tokens":      resp.Usage.TotalTokens,
	}

	return result, nil
}

func hintSystemPrompt(level int) string {
	if level == 1 {
		return "You are a strict programming tutor. Task: diagnose why the student's code fails. " +
			"Rules: DO NOT provide any code, pseudocode, or step-by-step full solution. " +
			"Only explain the reasons of errors and what part of the logic is wrong. " +
			"Use short bullets inside the text. Mention line/section references if possible. " +
			"If the student code is correct, say so. " +
			"Respond with a JSON object {\"text\": string, \"no_code_confirmed\": boolean}."
	}

	return "You are a strict programming tutor. Task: provide a textual solution path. " +
		"Rules: DO NOT provide code, pseudocode, or near-code. " +
		"Explain the approach in plain language only, focusing on steps and reasoning. " +
		"Do not reveal the final algorithm in full detail; provide guidance. " +
		"Respond with a JSON object {\"text\": string, \"no_code_confirmed\": boolean}."
}

func parseHintResponse(content string) (HintResult, error) {
	var raw interface{}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return HintResult{}, fmt.Errorf("parse hint json: %w", err)
	}

	if err := hintSchema.Validate(raw); err != nil {
		return HintResult{}, fmt.Errorf("hint response schema: %w", err)
	}

	var data struct {
		Text            string `json:"text"`
		NoCodeConfirmed bool   `json:"no_code_confirmed"`
	}
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return HintResult{}, fmt.Errorf("parse hint json: %w", err)
	}

	if strings.TrimSpace(data.Text) == "" {
		return HintResult{}, fmt.Errorf("empty hint text")
	}

	return HintResult{
		Text:            strings.TrimSpace(data.Text),
		NoCodeConfirmed: data.NoCodeConfirmed,
	}, nil
}
