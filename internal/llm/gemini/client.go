package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"resume-matcher/internal/llm"
	"resume-matcher/internal/shared/metrics"
	"resume-matcher/internal/shared/telemetry"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com"
	DefaultModel   = "gemini-2.0-flash"

	jsonMimeType    = "application/json"
	maxResponseBody = 8 << 20
)

// Options configures a Client.
type Options struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	Retry      llm.RetryPolicy
	HTTPClient *http.Client
}

// Client implements llm.Generator against the Gemini generateContent REST endpoint.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	retry      llm.RetryPolicy
	wait       func(ctx context.Context, d time.Duration) error
}

// NewClient constructs a client. A missing API key is reported by Generate, not here.
func NewClient(opts Options) *Client {
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	retry := opts.Retry
	if retry.MaxAttempts == 0 && retry.BaseDelay == 0 {
		retry = llm.DefaultRetryPolicy()
	}
	return &Client{
		apiKey:     strings.TrimSpace(opts.APIKey),
		model:      model,
		baseURL:    baseURL,
		httpClient: httpClient,
		retry:      retry,
		wait:       sleepContext,
	}
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// Model returns the model name requests are sent to.
func (c *Client) Model() string {
	return c.model
}

// RetryPolicy returns the policy applied to each Generate call.
func (c *Client) RetryPolicy() llm.RetryPolicy {
	return c.retry
}

type part struct {
	Text string `json:"text"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type generationConfig struct {
	ResponseMimeType string `json:"response_mime_type,omitempty"`
}

type generateRequest struct {
	Contents          []content         `json:"contents"`
	SystemInstruction *content          `json:"systemInstruction,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      *content `json:"content"`
		FinishReason string   `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback,omitempty"`
}

// StatusError is a non-200 reply from the endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("gemini http status %d", e.StatusCode)
	}
	return fmt.Sprintf("gemini http status %d: %s", e.StatusCode, e.Body)
}

// Retryable reports whether the status is transient (overload, throttling, server faults).
func (e *StatusError) Retryable() bool {
	switch e.StatusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

var errEmptyCandidates = errors.New("gemini response has no candidate text")

// Generate sends req, retrying transient failures with exponential backoff.
func (c *Client) Generate(ctx context.Context, req llm.Request) (string, error) {
	if !c.Configured() {
		return "", llm.ErrConfiguration
	}

	payload, err := json.Marshal(buildRequest(req))
	if err != nil {
		return "", fmt.Errorf("gemini encode request: %w", err)
	}

	attempts := c.retry.Attempts()
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		metrics.IncLLMAttempt()
		text, err := c.generateOnce(ctx, payload)
		if err == nil {
			return text, nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		lastErr = err

		fields := map[string]any{
			"model":   c.model,
			"mode":    req.Mode.String(),
			"attempt": attempt + 1,
			"of":      attempts,
			"error":   err.Error(),
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			fields["status"] = statusErr.StatusCode
			if !statusErr.Retryable() {
				metrics.IncLLMFailure()
				telemetry.Error("llm.request_rejected", fields)
				return "", fmt.Errorf("%w: %w", llm.ErrUpstreamUnavailable, err)
			}
			if statusErr.StatusCode == http.StatusServiceUnavailable {
				telemetry.Warn("llm.overloaded", fields)
			} else {
				telemetry.Warn("llm.request_failed", fields)
			}
		} else {
			telemetry.Warn("llm.request_failed", fields)
		}

		if attempt < attempts-1 {
			metrics.IncLLMRetry()
			if err := c.wait(ctx, c.retry.Delay(attempt)); err != nil {
				return "", err
			}
		}
	}

	metrics.IncLLMFailure()
	return "", fmt.Errorf("%w after %d attempts: %w", llm.ErrUpstreamUnavailable, attempts, lastErr)
}

func buildRequest(req llm.Request) generateRequest {
	body := generateRequest{
		Contents: []content{{Role: "user", Parts: []part{{Text: req.UserQuery}}}},
	}
	if strings.TrimSpace(req.SystemPrompt) != "" {
		body.SystemInstruction = &content{Parts: []part{{Text: req.SystemPrompt}}}
	}
	if req.Mode == llm.OutputJSON {
		body.GenerationConfig = &generationConfig{ResponseMimeType: jsonMimeType}
	}
	return body
}

func (c *Client) endpoint() string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
}

func (c *Client) generateOnce(ctx context.Context, payload []byte) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", fmt.Errorf("gemini read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: truncate(strings.TrimSpace(string(body)), 300)}
	}

	var parsed generateResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("gemini response parse: %w", err)
	}
	return candidateText(parsed)
}

// candidateText joins the text parts of the first candidate.
func candidateText(resp generateResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: prompt blocked (%s)", errEmptyCandidates, resp.PromptFeedback.BlockReason)
		}
		return "", errEmptyCandidates
	}
	first := resp.Candidates[0]
	if first.Content == nil {
		return "", fmt.Errorf("%w: finish reason %s", errEmptyCandidates, first.FinishReason)
	}
	var b strings.Builder
	for _, p := range first.Content.Parts {
		b.WriteString(p.Text)
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", errEmptyCandidates
	}
	return b.String(), nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var _ llm.Generator = (*Client)(nil)
