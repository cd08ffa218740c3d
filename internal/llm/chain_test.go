package llm

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestChain_FirstSuccessWins(t *testing.T) {
	groq := NewMockProvider(MockResponse{Text: "respuesta groq"}).Named("groq")
	gemini := NewMockProvider(MockResponse{Text: "respuesta gemini"}).Named("gemini")

	resp, err := NewChain(discardLogger(), groq, gemini).Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "groq", resp.Provider)
	assert.Equal(t, "respuesta groq", resp.Text)
	assert.Equal(t, 0, gemini.CallCount())
}

func TestChain_FallsThroughOnFailure(t *testing.T) {
	groq := NewMockProvider(MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}}).Named("groq")
	gemini := NewMockProvider(MockResponse{Text: ""}).Named("gemini")
	openai := NewMockProvider(MockResponse{Text: "respuesta openai"}).Named("openai")

	resp, err := NewChain(discardLogger(), groq, gemini, openai).Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "openai", resp.Provider)
	assert.Equal(t, 1, groq.CallCount())
	assert.Equal(t, 1, gemini.CallCount())
}

func TestChain_AllFail(t *testing.T) {
	groq := NewMockProvider(MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}}).Named("groq")
	gemini := NewMockProvider().Named("gemini")

	_, err := NewChain(discardLogger(), groq, gemini).Generate(context.Background(), Request{})

	var chainErr *ChainError
	require.ErrorAs(t, err, &chainErr)
	require.Len(t, chainErr.Failures, 2)
	assert.Equal(t, "groq", chainErr.Failures[0].Provider)
	assert.Equal(t, "gemini", chainErr.Failures[1].Provider)

	var rl *ErrRateLimit
	assert.ErrorAs(t, err, &rl)
	assert.Contains(t, err.Error(), "groq:")
}

func TestChain_Empty(t *testing.T) {
	c := NewChain(discardLogger())
	_, err := c.Generate(context.Background(), Request{})
	require.Error(t, err)
	assert.Equal(t, "no LLM providers configured", err.Error())
	assert.Equal(t, 0, c.Len())
	assert.Empty(t, c.ModelID())
}

func TestChain_StopsOnCancellation(t *testing.T) {
	groq := NewMockProvider(MockResponse{Err: context.Canceled}).Named("groq")
	gemini := NewMockProvider(MockResponse{Text: "unused"}).Named("gemini")

	_, err := NewChain(discardLogger(), groq, gemini).Generate(context.Background(), Request{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, gemini.CallCount())
}

func TestChain_Name(t *testing.T) {
	c := NewChain(discardLogger(), NewMockProvider().Named("groq"), NewMockProvider().Named("openai"))
	assert.Equal(t, "groq>openai", c.Name())
}

func TestObserver_RecordsStats(t *testing.T) {
	stats := NewStats(0)
	mock := NewMockProvider(MockResponse{Text: "ok"}, MockResponse{Err: errors.New("boom")}).Named("gemini")
	p := WithObserver(mock, discardLogger(), stats)

	_, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	_, err = p.Generate(context.Background(), Request{})
	require.Error(t, err)

	snap := stats.Snapshot()
	assert.Equal(t, 2, snap.Count)
	assert.Equal(t, 1, snap.Errors)
	assert.Equal(t, 2, snap.ByProvider["gemini"].Count)
}

func TestNewFromConfig_SkipsProvidersWithoutKey(t *testing.T) {
	cfg := Config{
		Order:  []string{"groq", "gemini", "openai"},
		Groq:   OpenAIConfig{APIKey: "gsk-test"},
		OpenAI: OpenAIConfig{APIKey: "sk-test", Model: "gpt-4o-mini"},
		Retry:  retryConfig(),
	}
	c, err := NewFromConfig(context.Background(), cfg, discardLogger(), nil)
	require.NoError(t, err)
	assert.Equal(t, "groq>openai", c.Name())
	assert.Equal(t, "llama-3.3-70b-versatile", c.ModelID())
}

func TestNewFromConfig_UnknownProvider(t *testing.T) {
	_, err := NewFromConfig(context.Background(), Config{Order: []string{"cohere"}}, discardLogger(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cohere")
}
