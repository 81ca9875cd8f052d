package llmclient

import (
	"context"
	"strings"
	"sync"
)

// FakeClient answers from a callback and records every request. It backs
// offline mode and tests.
type FakeClient struct {
	Respond func(ctx context.Context, req Request) (string, error)

	mu    sync.Mutex
	calls []Request
}

func NewFakeClient(respond func(ctx context.Context, req Request) (string, error)) *FakeClient {
	return &FakeClient{Respond: respond}
}

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) Generate(ctx context.Context, req Request) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	f.mu.Unlock()
	if f.Respond == nil {
		return "", ErrEmptyResponse
	}
	return f.Respond(ctx, req)
}

// Calls returns a copy of the recorded requests.
func (f *FakeClient) Calls() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.calls...)
}

// EchoResponder is the offline responder: transform calls return the fenced
// code from the prompt unchanged, structured calls return a minimal analysis.
func EchoResponder(_ context.Context, req Request) (string, error) {
	if req.Schema != nil {
		return `{"summaryStats":{"performance":{"value":"0%","description":"Performance"},"issuesFixed":{"value":"0","description":"Issues Fixed"},"bundleSize":{"value":"0%","description":"Bundle Size"},"qualityGrade":{"value":"-","description":"Code Quality"}},"detailedChanges":[{"icon":"ℹ️","description":"Offline mode: code returned unchanged."}],"explanation":"The offline model does not modify code."}`, nil
	}
	return extractFenced(req.Prompt), nil
}

func extractFenced(prompt string) string {
	i := strings.Index(prompt, "```")
	if i < 0 {
		return prompt
	}
	rest := prompt[i+3:]
	nl := strings.IndexByte(rest, '\n')
	if nl < 0 {
		return prompt
	}
	rest = rest[nl+1:]
	if j := strings.LastIndex(rest, "\n```"); j >= 0 {
		return rest[:j]
	}
	return rest
}
