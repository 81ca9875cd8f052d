package llm

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	llmclient "codemorph/internal/llmClient"
)

// UsageRecord is one model call as seen by the usage ledger. Prompt and
// response contents are never recorded, only their sizes.
type UsageRecord struct {
	At            time.Time     `json:"at"`
	Model         string        `json:"model"`
	Phase         string        `json:"phase"`
	PromptBytes   int           `json:"prompt_bytes"`
	ResponseBytes int           `json:"response_bytes"`
	Latency       time.Duration `json:"latency"`
	Failed        bool          `json:"failed"`
}

// UsageRecorder persists usage records.
type UsageRecorder interface {
	Record(ctx context.Context, rec UsageRecord) error
}

// WithUsage records every call into rec. Recording is best-effort and never
// changes the call result; failures are logged at warn level. A nil recorder
// disables the middleware.
func WithUsage(rec UsageRecorder, logger zerolog.Logger) Middleware {
	return func(next llmclient.LLMClient) llmclient.LLMClient {
		if rec == nil {
			return next
		}
		return &usageClient{next: next, rec: rec, log: logger}
	}
}

type usageClient struct {
	next llmclient.LLMClient
	rec  UsageRecorder
	log  zerolog.Logger
}

func (u *usageClient) Name() string { return u.next.Name() }
func (u *usageClient) Close() error { return u.next.Close() }

func (u *usageClient) Generate(ctx context.Context, req llmclient.Request) (string, error) {
	start := time.Now()
	out, err := u.next.Generate(ctx, req)
	rec := UsageRecord{
		At:            start.UTC(),
		Model:         u.next.Name(),
		Phase:         PhaseFrom(ctx),
		PromptBytes:   len(req.System) + len(req.Prompt),
		ResponseBytes: len(out),
		Latency:       time.Since(start),
		Failed:        err != nil,
	}
	if rerr := u.rec.Record(context.WithoutCancel(ctx), rec); rerr != nil {
		u.log.Warn().Err(rerr).Str("model", rec.Model).Str("phase", rec.Phase).Msg("usage record failed")
	}
	return out, err
}
