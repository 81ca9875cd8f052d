package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codemorph/internal/goal"
	"codemorph/internal/language"
	llmclient "codemorph/internal/llmClient"
	"codemorph/internal/prompt"
)

func TestStripFences(t *testing.T) {
	cases := map[string]string{
		"```js\nconst a = 1;\n```":    "const a = 1;",
		"  const a = 1;  \n":          "const a = 1;",
		"```\nx\n```\n\n":             "x",
		"```python\ndef f():\n  pass": "def f():\n  pass",
		"```":                         "",
	}
	for in, want := range cases {
		assert.Equal(t, want, StripFences(in), "input %q", in)
	}
}

func TestGatewayTransform(t *testing.T) {
	fake := llmclient.NewFakeClient(func(ctx context.Context, req llmclient.Request) (string, error) {
		assert.Equal(t, PhaseTransform, PhaseFrom(ctx))
		return "```js\nconst items = [];\n```", nil
	})
	gw := NewGateway(fake, zerolog.Nop())

	p := prompt.BuildTransform([]goal.Goal{goal.PerformanceBoost}, language.JavaScript, "var items = [];")
	out, err := gw.Transform(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, "const items = [];", out)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.InDelta(t, 0.3, calls[0].Temperature, 1e-6)
	assert.Equal(t, p.SystemInstruction, calls[0].System)
	assert.Nil(t, calls[0].Schema)
}

func TestGatewayTransformFailureIsGeneric(t *testing.T) {
	cause := errors.New("quota exceeded for key abc")
	fake := llmclient.NewFakeClient(func(context.Context, llmclient.Request) (string, error) { return "", cause })
	gw := NewGateway(fake, zerolog.Nop())

	_, err := gw.Transform(context.Background(), prompt.Transform{UserPrompt: "x"})
	require.Error(t, err)
	assert.Equal(t, TransformFailedMessage, err.Error())
	assert.ErrorIs(t, err, cause)

	var te *TransformError
	assert.ErrorAs(t, err, &te)
	assert.Len(t, fake.Calls(), 1)
}

func TestGatewayTransformEmptyResponse(t *testing.T) {
	fake := llmclient.NewFakeClient(func(context.Context, llmclient.Request) (string, error) { return "```\n```", nil })
	gw := NewGateway(fake, zerolog.Nop())
	_, err := gw.Transform(context.Background(), prompt.Transform{UserPrompt: "x"})
	assert.ErrorIs(t, err, llmclient.ErrEmptyResponse)
}

func TestGatewayAnalyzeUsesSchema(t *testing.T) {
	fake := llmclient.NewFakeClient(func(ctx context.Context, req llmclient.Request) (string, error) {
		assert.Equal(t, PhaseAnalyze, PhaseFrom(ctx))
		return "  {\"a\":1}\n", nil
	})
	gw := NewGateway(fake, zerolog.Nop(), WithTimeout(0))
	out, err := gw.Analyze(context.Background(), "analyze this")
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, out)

	calls := fake.Calls()
	require.Len(t, calls, 1)
	assert.InDelta(t, 0.5, calls[0].Temperature, 1e-6)
	require.NotNil(t, calls[0].Schema)
	assert.Equal(t, llmclient.TypeObject, calls[0].Schema.Type)
}

func TestGatewayAnalyzeError(t *testing.T) {
	fake := llmclient.NewFakeClient(nil)
	gw := NewGateway(fake, zerolog.Nop())
	_, err := gw.Analyze(context.Background(), "x")
	assert.ErrorIs(t, err, llmclient.ErrEmptyResponse)
}
