package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"codemorph/internal/gateway/config"
	"codemorph/internal/llm"
	llmclient "codemorph/internal/llmClient"
)

// NewModel builds the provider client for cfg and decorates it with the
// logging, rate limit and usage middleware. recorder may be nil.
func NewModel(ctx context.Context, cfg config.LLMConfig, logger zerolog.Logger, recorder llm.UsageRecorder) (*llm.Gateway, error) {
	client, err := llmclient.New(ctx, llmclient.Options{
		Provider: llmclient.Provider(cfg.Provider),
		APIKey:   cfg.APIKey,
		Model:    cfg.Model,
		BaseURL:  cfg.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %w", err)
	}
	wrapped := llm.Wrap(client,
		llm.WithLogging(logger),
		llm.RateLimit(cfg.RPS, cfg.Burst),
		llm.WithUsage(recorder, logger),
	)
	logger.Info().Str("model", client.Name()).Float64("rps", cfg.RPS).Dur("timeout", cfg.Timeout).Msg("llm client ready")
	return llm.NewGateway(wrapped, logger, llm.WithTimeout(cfg.Timeout)), nil
}
