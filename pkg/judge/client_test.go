package judge

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, server *httptest.Server, timeout time.Duration) *Judge0Client {
	t.Helper()
	client, err := NewJudge0Client(Config{
		BaseURL:      server.URL,
		LanguageID:   71,
		Timeout:      timeout,
		PollInterval: 5 * time.Millisecond,
		HTTPClient:   server.Client(),
		Logger:       zerolog.Nop(),
	})
	require.NoError(t, err)
	return client
}

func encode(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestSubmitBatchEncodesCasesAndReturnsTokens(t *testing.T) {
	var received struct {
		Submissions []map[string]interface{} `json:"submissions"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "true", r.URL.Query().Get("base64_encoded"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"token":"tok-1"},{"token":"tok-2"}]`)
	}))
	defer server.Close()

	client := newTestClient(t, server, time.Second)
	tokens, err := client.SubmitBatch(context.Background(), "print(input())", []TestCase{
		{Stdin: "1", ExpectedStdout: "1\n"},
		{Stdin: "2", ExpectedStdout: "2\n"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"tok-1", "tok-2"}, tokens)

	require.Len(t, received.Submissions, 2)
	first := received.Submissions[0]
	require.Equal(t, float64(71), first["language_id"])
	require.Equal(t, encode("print(input())"), first["source_code"])
	require.Equal(t, encode("1"), first["stdin"])
	require.Equal(t, encode("1\n"), first["expected_output"])
}

func TestSubmitBatchRejectsMissingTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[{"token":"tok-1"},{"token":""}]`)
	}))
	defer server.Close()

	client := newTestClient(t, server, time.Second)
	_, err := client.SubmitBatch(context.Background(), "code", []TestCase{{}, {}})
	require.True(t, errors.Is(err, ErrUnavailable))
}

func TestSubmitBatchSurfacesServerErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := newTestClient(t, server, time.Second)
	_, err := client.SubmitBatch(context.Background(), "code", []TestCase{{}})
	require.True(t, errors.Is(err, ErrUnavailable))
}

func TestWaitBatchPollsUntilCompletion(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "tok-1,tok-2", r.URL.Query().Get("tokens"))

		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&calls, 1) < 3 {
			fmt.Fprintf(w, `{"submissions":[{"token":"tok-1","status_id":3,"stdout":%q},{"token":"tok-2","status_id":2}]}`, encode("ok\n"))
			return
		}
		fmt.Fprintf(w, `{"submissions":[{"token":"tok-1","status_id":3,"stdout":%q},{"token":"tok-2","status_id":4,"stdout":%q}]}`, encode("ok\n"), encode("nope\n"))
	}))
	defer server.Close()

	client := newTestClient(t, server, time.Second)
	results, err := client.WaitBatch(context.Background(), []string{"tok-1", "tok-2"})
	require.NoError(t, err)
	require.GreaterOrEqual(t, atomic.LoadInt32(&calls), int32(3))

	require.Len(t, results, 2)
	require.Equal(t, StatusAccepted, results[0].StatusID)
	require.Equal(t, "ok\n", results[0].Stdout)
	require.Equal(t, StatusWrongAnswer, results[1].StatusID)
	require.Equal(t, "nope\n", results[1].Stdout)
}

func TestWaitBatchReturnsPartialResultsAtDeadline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"submissions":[{"token":"tok-1","status_id":1}]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server, 20*time.Millisecond)
	results, err := client.WaitBatch(context.Background(), []string{"tok-1"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.True(t, results[0].Pending())
}

func TestWaitBatchDecodesPlainTextFallback(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// A deployment returning unencoded stderr despite base64_encoded=true.
		fmt.Fprint(w, `{"submissions":[{"token":"tok-1","status_id":11,"stderr":"Traceback: boom!"}]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server, time.Second)
	results, err := client.WaitBatch(context.Background(), []string{"tok-1"})
	require.NoError(t, err)
	require.Equal(t, "Traceback: boom!", results[0].Stderr)
	require.GreaterOrEqual(t, results[0].StatusID, StatusRuntimeErrorMin)
}

func TestWaitBatchHonorsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"submissions":[{"token":"tok-1","status_id":2}]}`)
	}))
	defer server.Close()

	client := newTestClient(t, server, time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Millisecond)
	defer cancel()

	_, err := client.WaitBatch(ctx, []string{"tok-1"})
	require.True(t, errors.Is(err, ErrUnavailable))
}
