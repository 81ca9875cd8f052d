package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"codemorph/internal/analysis"
	llmclient "codemorph/internal/llmClient"
	"codemorph/internal/prompt"
)

const (
	// TransformTemperature is low: the rewrite should be faithful, not creative.
	TransformTemperature float32 = 0.3
	AnalysisTemperature  float32 = 0.5
)

// TransformFailedMessage is the only text a user sees when the rewrite fails.
const TransformFailedMessage = "Failed to transform code with AI. Please try again."

// TransformError hides the provider failure behind TransformFailedMessage.
// The cause stays reachable through errors.Unwrap for logging.
type TransformError struct {
	Cause error
}

func (e *TransformError) Error() string { return TransformFailedMessage }
func (e *TransformError) Unwrap() error { return e.Cause }

// Gateway issues the two model calls of a transformation. Each call is
// attempted exactly once.
type Gateway struct {
	client  llmclient.LLMClient
	log     zerolog.Logger
	timeout time.Duration
}

type GatewayOption func(*Gateway)

// WithTimeout bounds each call. Zero leaves the transport default in place.
func WithTimeout(d time.Duration) GatewayOption {
	return func(g *Gateway) { g.timeout = d }
}

func NewGateway(client llmclient.LLMClient, logger zerolog.Logger, opts ...GatewayOption) *Gateway {
	g := &Gateway{client: client, log: logger}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) Name() string { return g.client.Name() }
func (g *Gateway) Close() error { return g.client.Close() }

// Transform returns the rewritten code, trimmed and without a surrounding
// markdown fence.
func (g *Gateway) Transform(ctx context.Context, p prompt.Transform) (string, error) {
	ctx, cancel := g.callContext(WithPhase(ctx, PhaseTransform))
	defer cancel()

	raw, err := g.client.Generate(ctx, llmclient.Request{
		System:      p.SystemInstruction,
		Prompt:      p.UserPrompt,
		Temperature: TransformTemperature,
	})
	var code string
	if err == nil {
		code = StripFences(raw)
		if code == "" {
			err = llmclient.ErrEmptyResponse
		}
	}
	if err != nil {
		g.log.Error().Err(err).Str("model", g.client.Name()).Msg("Error transforming code")
		return "", &TransformError{Cause: err}
	}
	return code, nil
}

// Analyze returns the model's raw JSON analysis. Validation is left to
// analysis.Parse.
func (g *Gateway) Analyze(ctx context.Context, userPrompt string) (string, error) {
	ctx, cancel := g.callContext(WithPhase(ctx, PhaseAnalyze))
	defer cancel()

	raw, err := g.client.Generate(ctx, llmclient.Request{
		Prompt:      userPrompt,
		Temperature: AnalysisTemperature,
		Schema:      analysis.Schema(),
	})
	if err != nil {
		return "", fmt.Errorf("analyze: %w", err)
	}
	return strings.TrimSpace(raw), nil
}

func (g *Gateway) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.timeout > 0 {
		return context.WithTimeout(ctx, g.timeout)
	}
	return context.WithCancel(ctx)
}

// StripFences trims text and removes one surrounding ``` fence if present.
func StripFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	nl := strings.IndexByte(text, '\n')
	if nl < 0 {
		return strings.TrimSpace(strings.Trim(text, "`"))
	}
	body := text[nl+1:]
	body = strings.TrimRightFunc(body, func(r rune) bool { return r == ' ' || r == '\t' || r == '\n' || r == '\r' })
	body = strings.TrimSuffix(body, "```")
	return strings.TrimSpace(body)
}
