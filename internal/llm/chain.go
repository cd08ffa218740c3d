package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// ChainError reports every provider failure of a chain call, in order.
type ChainError struct {
	Failures []ProviderFailure
}

// ProviderFailure is one provider's error within a chain call.
type ProviderFailure struct {
	Provider string
	Err      error
}

func (e *ChainError) Error() string {
	if len(e.Failures) == 0 {
		return "no LLM providers configured"
	}
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = fmt.Sprintf("%s: %v", f.Provider, f.Err)
	}
	return "all LLM providers failed: " + strings.Join(parts, "; ")
}

// Unwrap exposes the individual failures to errors.Is/As.
func (e *ChainError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f.Err
	}
	return errs
}

// Chain is a Provider that falls through an ordered list of providers and
// returns the first successful response.
type Chain struct {
	providers []Provider
	log       *slog.Logger
}

func NewChain(log *slog.Logger, providers ...Provider) *Chain {
	return &Chain{providers: providers, log: log}
}

func (c *Chain) Generate(ctx context.Context, req Request) (*Response, error) {
	chainErr := &ChainError{}
	for _, p := range c.providers {
		resp, err := p.Generate(ctx, req)
		if err == nil {
			return resp, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		chainErr.Failures = append(chainErr.Failures, ProviderFailure{Provider: p.Name(), Err: err})
		c.log.Warn("provider failed, falling through", "provider", p.Name(), "model", p.ModelID(), "error", err)
	}
	return nil, chainErr
}

// Name lists the chained providers, e.g. "groq>gemini>openai".
func (c *Chain) Name() string {
	names := make([]string, len(c.providers))
	for i, p := range c.providers {
		names[i] = p.Name()
	}
	return strings.Join(names, ">")
}

// ModelID returns the first provider's model.
func (c *Chain) ModelID() string {
	if len(c.providers) == 0 {
		return ""
	}
	return c.providers[0].ModelID()
}

// Len is the number of chained providers.
func (c *Chain) Len() int { return len(c.providers) }
