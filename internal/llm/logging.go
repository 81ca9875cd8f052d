package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	llmclient "codemorph/internal/llmClient"
)

// WithLogging logs request size, latency and errors.
func WithLogging(logger zerolog.Logger) Middleware {
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		return &logging{next: next, log: logger}
	}
}

type logging struct {
	next llmclient.LLMClient
	log  zerolog.Logger
}

func (l *logging) Name() string { return l.next.Name() }
func (l *logging) Close() error { return l.next.Close() }

func (l *logging) Generate(ctx context.Context, req llmclient.Request) (string, error) {
	phase := PhaseFrom(ctx)
	l.log.Debug().
		Str("model", l.next.Name()).
		Str("phase", phase).
		Int("bytes", len(req.System)+len(req.Prompt)).
		Bool("structured", req.Schema != nil).
		Msg("LLM request")
	start := time.Now()
	out, err := l.next.Generate(ctx, req)
	if err != nil {
		l.log.Warn().Err(err).Str("model", l.next.Name()).Str("phase", phase).Msg("LLM error")
		return out, err
	}
	l.log.Debug().
		Str("model", l.next.Name()).
		Str("phase", phase).
		Int("bytes", len(out)).
		Dur("latency", time.Since(start)).
		Msg("LLM response")
	return out, nil
}
