package llmclient

import (
	"context"
	"errors"
)

var ErrEmptyResponse = errors.New("llm: empty response from model")

// Request is a single completion call.
type Request struct {
	System      string
	Prompt      string
	Temperature float32
	// Schema switches the call to JSON output constrained to the given shape.
	Schema *Schema
}

// LLMClient is implemented by every provider. Cross-cutting concerns
// (rate limiting, logging, usage) are applied via middleware in package llm.
type LLMClient interface {
	Name() string
	Generate(ctx context.Context, req Request) (string, error)
	Close() error
}
