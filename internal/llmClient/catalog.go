package llmclient

import (
	"context"
	"fmt"
	"strings"
)

type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
	ProviderFake   Provider = "fake"
)

// DefaultModel is used when no model is configured for the provider.
func DefaultModel(p Provider) string {
	switch p {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderFake:
		return "fake"
	default:
		return "gemini-2.5-flash"
	}
}

type Options struct {
	Provider Provider
	APIKey   string
	Model    string
	BaseURL  string
}

// New builds the provider client described by opts.
func New(ctx context.Context, opts Options) (LLMClient, error) {
	p := Provider(strings.ToLower(strings.TrimSpace(string(opts.Provider))))
	if p == "" {
		p = ProviderGemini
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = DefaultModel(p)
	}
	switch p {
	case ProviderGemini:
		return NewGeminiClient(ctx, opts.APIKey, model, opts.BaseURL)
	case ProviderOpenAI:
		return NewOpenAIClient(opts.APIKey, model, opts.BaseURL), nil
	case ProviderFake:
		return NewFakeClient(EchoResponder), nil
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", opts.Provider)
	}
}
