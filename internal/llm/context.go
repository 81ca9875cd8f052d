package llm

import "context"

// Phases tag each model call so logs and the usage ledger can tell the two
// pipeline stages apart.
const (
	PhaseTransform = "transform"
	PhaseAnalyze   = "analyze"
)

type ctxKeyPhase struct{}

func WithPhase(ctx context.Context, phase string) context.Context {
	return context.WithValue(ctx, ctxKeyPhase{}, phase)
}

// PhaseFrom returns the phase string stored in the context.
func PhaseFrom(ctx context.Context) string {
	if v := ctx.Value(ctxKeyPhase{}); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return "unknown"
}
