package llm

import (
	"context"
	"log/slog"
	"time"
)

type observedProvider struct {
	inner Provider
	log   *slog.Logger
	stats *Stats
}

// WithObserver logs every call and records its latency in stats. Either
// may be nil.
func WithObserver(p Provider, log *slog.Logger, stats *Stats) Provider {
	return &observedProvider{inner: p, log: log, stats: stats}
}

func (o *observedProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := o.inner.Generate(ctx, req)
	elapsed := time.Since(start)

	if o.stats != nil {
		o.stats.Record(o.inner.Name(), elapsed.Milliseconds(), err != nil)
	}
	if o.log != nil {
		attrs := []any{
			"provider", o.inner.Name(),
			"model", o.inner.ModelID(),
			"duration_ms", elapsed.Milliseconds(),
		}
		if err != nil {
			o.log.Warn("llm call failed", append(attrs, "error", err)...)
		} else {
			o.log.Debug("llm call",
				append(attrs,
					"input_tokens", resp.Usage.InputTokens,
					"output_tokens", resp.Usage.OutputTokens,
					"stop_reason", resp.StopReason,
				)...)
		}
	}
	return resp, err
}

func (o *observedProvider) Name() string    { return o.inner.Name() }
func (o *observedProvider) ModelID() string { return o.inner.ModelID() }
