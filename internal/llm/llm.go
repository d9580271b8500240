package llm

import (
	"context"
	"errors"
	"time"
)

// Generator abstracts the text-generation provider.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// OutputMode selects between free-form text and constrained JSON output.
type OutputMode int

const (
	OutputText OutputMode = iota
	OutputJSON
)

func (m OutputMode) String() string {
	if m == OutputJSON {
		return "json"
	}
	return "text"
}

// Request is a single generation call.
type Request struct {
	UserQuery    string
	SystemPrompt string
	Mode         OutputMode
}

// RetryPolicy bounds the attempts made for one Request.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy returns three attempts starting at a three second backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 3 * time.Second}
}

// Attempts returns MaxAttempts, never less than one.
func (p RetryPolicy) Attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// MaxBackoff caps the wait between two attempts.
const MaxBackoff = 5 * time.Minute

// Delay returns the wait before the retry that follows the given zero-based attempt,
// BaseDelay doubled per attempt and capped at MaxBackoff.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 0 || p.BaseDelay <= 0 {
		return 0
	}
	d := p.BaseDelay
	for i := 0; i < attempt; i++ {
		if d >= MaxBackoff/2 {
			return MaxBackoff
		}
		d *= 2
	}
	return min(d, MaxBackoff)
}

var (
	// ErrConfiguration means no API credential is configured.
	ErrConfiguration = errors.New("llm api key not configured")
	// ErrUpstreamUnavailable means no successful response was obtained.
	ErrUpstreamUnavailable = errors.New("failed to get response from llm")
)
