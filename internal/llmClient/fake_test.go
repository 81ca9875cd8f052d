package llmclient

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEchoResponderReturnsFencedCode(t *testing.T) {
	out, err := EchoResponder(context.Background(), Request{
		Prompt: "Language: go. Transformation Goals: Best Practices.\nPlease transform the following code:\n```go\nfunc a() {}\n```",
	})
	require.NoError(t, err)
	assert.Equal(t, "func a() {}", out)
}

func TestEchoResponderStructured(t *testing.T) {
	out, err := EchoResponder(context.Background(), Request{Prompt: "x", Schema: String("")})
	require.NoError(t, err)
	assert.Contains(t, out, `"summaryStats"`)
}

func TestFakeClientRecordsCalls(t *testing.T) {
	f := NewFakeClient(nil)
	_, err := f.Generate(context.Background(), Request{Prompt: "a"})
	assert.ErrorIs(t, err, ErrEmptyResponse)
	require.Len(t, f.Calls(), 1)
	assert.Equal(t, "a", f.Calls()[0].Prompt)
}

func TestNewProvider(t *testing.T) {
	cli, err := New(context.Background(), Options{Provider: "FAKE"})
	require.NoError(t, err)
	assert.Equal(t, "FakeLLM", cli.Name())

	cli, err = New(context.Background(), Options{Provider: ProviderOpenAI, APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, "OpenAI:gpt-4o-mini", cli.Name())

	_, err = New(context.Background(), Options{Provider: "bard"})
	assert.Error(t, err)
}
