package llm

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrEmptyResponse is returned when a provider answers with no usable text.
var ErrEmptyResponse = errors.New("empty response")

// ErrRateLimit indicates the provider returned 429.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrProviderUnavailable indicates the provider is down, unreachable or
// rejected the request.
type ErrProviderUnavailable struct {
	StatusCode int
	Err        error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err == nil {
		return "provider unavailable"
	}
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider unavailable (status %d): %v", e.StatusCode, e.Err)
	}
	return fmt.Sprintf("provider unavailable: %v", e.Err)
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// Transient reports whether retrying the same provider can help.
func (e *ErrProviderUnavailable) Transient() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}

// ErrInvalidResponse indicates the output did not satisfy the request schema.
type ErrInvalidResponse struct {
	Text string
	Err  error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid response: %v (raw: %s)", e.Err, truncate(e.Text, 200))
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

var (
	retryInRe    = regexp.MustCompile(`(?i)(?:retry|try again) in (\d+(?:\.\d+)?)`)
	retryDelayRe = regexp.MustCompile(`(?i)retryDelay\D*?(\d+)`)
)

// RetryAfterFromMessage extracts the wait hint providers embed in rate-limit
// errors ("Please retry in 37.2s", Groq's "try again in 7s" or a retryDelay
// detail). It returns zero when no hint is present.
func RetryAfterFromMessage(msg string) time.Duration {
	if m := retryInRe.FindStringSubmatch(msg); m != nil {
		if secs, err := strconv.ParseFloat(m[1], 64); err == nil {
			return time.Duration(secs * float64(time.Second)).Round(time.Second)
		}
	}
	if m := retryDelayRe.FindStringSubmatch(msg); m != nil {
		if secs, err := strconv.Atoi(m[1]); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return 0
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

var codeBlockRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	if m := codeBlockRe.FindStringSubmatch(s); len(m) > 1 {
		return m[1]
	}
	return s
}
