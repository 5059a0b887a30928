package judge

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	batchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "kodelab",
		Subsystem: "judge",
		Name:      "batch_duration_seconds",
		Help:      "Duration of judge batch calls from submit to final poll",
	}, []string{"operation"})

	batchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "kodelab",
		Subsystem: "judge",
		Name:      "batch_failures_total",
		Help:      "Number of failed judge batch calls",
	}, []string{"operation"})
)

// ErrUnavailable signals a transport failure or an unexpected response shape
// from the judge. Callers must treat it as an external-system failure, never
// as a student error.
var ErrUnavailable = errors.New("judge unavailable")

// Config defines the wire settings of the Judge0 batch client.
type Config struct {
	BaseURL      string
	APIKey       string
	APIHost      string
	LanguageID   int
	Timeout      time.Duration
	PollInterval time.Duration
	HTTPClient   *http.Client
	Logger       zerolog.Logger
}

// Judge0Client implements Client against the Judge0 batch endpoints.
type Judge0Client struct {
	cfg    Config
	http   *http.Client
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewJudge0Client builds a batch judge client using the provided configuration.
func NewJudge0Client(cfg Config) (*Judge0Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("judge base url is required")
	}

	if cfg.LanguageID <= 0 {
		cfg.LanguageID = 71
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 900 * time.Millisecond
	}

	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 25 * time.Second}
	}

	return &Judge0Client{
		cfg:    cfg,
		http:   client,
		tracer: otel.Tracer("github.com/noah-isme/kodelab-api/pkg/judge"),
		logger: cfg.Logger.With().Str("component", "judge0_client").Logger(),
	}, nil
}

type batchSubmission struct {
	LanguageID     int    `json:"language_id"`
	SourceCode     string `json:"source_code"`
	Stdin          string `json:"stdin"`
	ExpectedOutput string `json:"expected_output"`
}

type batchRow struct {
	Token         string  `json:"token"`
	StatusID      int     `json:"status_id"`
	Stdout        *string `json:"stdout"`
	Stderr        *string `json:"stderr"`
	CompileOutput *string `json:"compile_output"`
	Message       *string `json:"message"`
}

// SubmitBatch creates one judge submission per test case in a single call and
// returns the per-case tokens in test-case order.
func (c *Judge0Client) SubmitBatch(parent context.Context, code string, cases []TestCase) ([]string, error) {
	ctx, span := c.tracer.Start(parent, "judge0.submit_batch", trace.WithAttributes(
		attribute.Int("cases", len(cases)),
	))
	defer span.End()

	start := time.Now()
	tokens, err := c.submitBatch(ctx, code, cases)
	batchDuration.WithLabelValues("submit").Observe(time.Since(start).Seconds())
	if err != nil {
		batchFailures.WithLabelValues("submit").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return tokens, nil
}

func (c *Judge0Client) submitBatch(ctx context.Context, code string, cases []TestCase) ([]string, error) {
	submissions := make([]batchSubmission, 0, len(cases))
	for _, tc := range cases {
		submissions = append(submissions, batchSubmission{
			LanguageID:     c.cfg.LanguageID,
			SourceCode:     b64(code),
			Stdin:          b64(tc.Stdin),
			ExpectedOutput: b64(tc.ExpectedStdout),
		})
	}

	payload, err := json.Marshal(map[string]interface{}{"submissions": submissions})
	if err != nil {
		return nil, fmt.Errorf("%w: encode batch: %v", ErrUnavailable, err)
	}

	endpoint := c.cfg.BaseURL + "/submissions/batch?base64_encoded=true"
	body, err := c.do(ctx, http.MethodPost, endpoint, payload)
	if err != nil {
		return nil, err
	}

	var rows []batchRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("%w: decode batch response: %v", ErrUnavailable, err)
	}

	tokens := make([]string, 0, len(rows))
	for _, row := range rows {
		if row.Token == "" {
			return nil, fmt.Errorf("%w: batch did not return tokens", ErrUnavailable)
		}
		tokens = append(tokens, row.Token)
	}

	if len(tokens) != len(cases) {
		return nil, fmt.Errorf("%w: expected %d tokens, got %d", ErrUnavailable, len(cases), len(tokens))
	}

	return tokens, nil
}

// WaitBatch polls the batch status until no case is queued or processing, or
// the configured timeout elapses. At timeout it returns whatever is available;
// callers must treat still-pending cases as inconclusive.
func (c *Judge0Client) WaitBatch(parent context.Context, tokens []string) ([]CaseResult, error) {
	ctx, span := c.tracer.Start(parent, "judge0.wait_batch", trace.WithAttributes(
		attribute.Int("tokens", len(tokens)),
	))
	defer span.End()

	start := time.Now()
	results, err := c.waitBatch(ctx, tokens)
	batchDuration.WithLabelValues("wait").Observe(time.Since(start).Seconds())
	if err != nil {
		batchFailures.WithLabelValues("wait").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	return results, nil
}

func (c *Judge0Client) waitBatch(ctx context.Context, tokens []string) ([]CaseResult, error) {
	deadline := time.Now().Add(c.cfg.Timeout)

	for {
		results, err := c.fetchBatch(ctx, tokens)
		if err != nil {
			return nil, err
		}

		pending := 0
		for _, r := range results {
			if r.Pending() {
				pending++
			}
		}
		if pending == 0 {
			return results, nil
		}

		if time.Now().After(deadline) {
			c.logger.Warn().Int("pending", pending).Msg("judge poll deadline reached, returning partial results")
			return results, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
		case <-time.After(c.cfg.PollInterval):
		}
	}
}

func (c *Judge0Client) fetchBatch(ctx context.Context, tokens []string) ([]CaseResult, error) {
	// status_id instead of the status object keeps the payload small.
	query := url.Values{}
	query.Set("base64_encoded", "true")
	query.Set("tokens", strings.Join(tokens, ","))
	query.Set("fields", "token,stdout,stderr,compile_output,message,status_id")

	endpoint := c.cfg.BaseURL + "/submissions/batch?" + query.Encode()
	body, err := c.do(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Submissions []batchRow `json:"submissions"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || envelope.Submissions == nil {
		return nil, fmt.Errorf("%w: unexpected batch status response", ErrUnavailable)
	}

	results := make([]CaseResult, 0, len(envelope.Submissions))
	for _, row := range envelope.Submissions {
		results = append(results, CaseResult{
			Token:         row.Token,
			StatusID:      row.StatusID,
			Stdout:        b64decode(row.Stdout),
			Stderr:        b64decode(row.Stderr),
			CompileOutput: b64decode(row.CompileOutput),
			Message:       b64decode(row.Message),
		})
	}

	return results, nil
}

func (c *Judge0Client) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" && c.cfg.APIHost != "" {
		req.Header.Set("X-RapidAPI-Key", c.cfg.APIKey)
		req.Header.Set("X-RapidAPI-Host", c.cfg.APIHost)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: judge returned status %d", ErrUnavailable, resp.StatusCode)
	}

	return body, nil
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

// b64decode tolerates plain-text values: some Judge0 deployments return
// unencoded fields even with base64_encoded=true.
func b64decode(s *string) string {
	if s == nil || *s == "" {
		return ""
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimSpace(*s))
	if err != nil {
		return *s
	}
	return string(decoded)
}
