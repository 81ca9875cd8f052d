package morph

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codemorph/internal/analysis"
	"codemorph/internal/goal"
	"codemorph/internal/language"
	"codemorph/internal/llm"
	llmclient "codemorph/internal/llmClient"
)

func TestPipelineCommitsBeforeAnalysis(t *testing.T) {
	var committed string
	fake := llmclient.NewFakeClient(func(_ context.Context, req llmclient.Request) (string, error) {
		if req.Schema != nil {
			assert.Equal(t, "const x = 1;", committed, "code is committed before analysis starts")
			return validAnalysis, nil
		}
		return "const x = 1;", nil
	})
	p := NewPipeline(llm.NewGateway(fake, zerolog.Nop()), zerolog.Nop())

	res, err := p.Run(context.Background(), TransformRequest{
		Code:     "var x = 1;",
		Goals:    []goal.Goal{goal.ModernStack, goal.ModernStack},
		Language: language.JavaScript,
	}, func(code string) { committed = code })
	require.NoError(t, err)
	assert.Equal(t, "const x = 1;", res.Code)
	assert.False(t, res.AnalysisFallback)
	assert.Equal(t, "Faster.", res.Analysis.Explanation)

	calls := fake.Calls()
	require.Len(t, calls, 2)
	assert.Contains(t, calls[0].Prompt, "Transformation Goals: Modern Stack.")
}

func TestPipelineOfflineEcho(t *testing.T) {
	p := NewPipeline(llm.NewGateway(llmclient.NewFakeClient(llmclient.EchoResponder), zerolog.Nop()), zerolog.Nop())
	res, err := p.Run(context.Background(), TransformRequest{
		Code:     "print('hi')",
		Goals:    []goal.Goal{goal.BestPractices},
		Language: language.Python,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "print('hi')", res.Code)
	assert.False(t, analysis.IsFallback(res.Analysis))
}

func TestPipelineValidation(t *testing.T) {
	fake := llmclient.NewFakeClient(nil)
	p := NewPipeline(llm.NewGateway(fake, zerolog.Nop()), zerolog.Nop())

	cases := []TransformRequest{
		{Code: "", Goals: []goal.Goal{goal.Accessibility}, Language: language.JavaScript},
		{Code: "x", Goals: nil, Language: language.JavaScript},
		{Code: "x", Goals: []goal.Goal{}, Language: language.JavaScript},
	}
	for _, req := range cases {
		_, err := p.Run(context.Background(), req, nil)
		assert.ErrorIs(t, err, ErrPrecondition)
	}
	assert.Empty(t, fake.Calls())
}

func TestPipelineAnalysisFallbackLogging(t *testing.T) {
	cases := []struct {
		name    string
		an      string
		anErr   error
		wantLog string
	}{
		{name: "rejected response", an: `{"explanation":"partial"}`, wantLog: "analysis response rejected, using fallback"},
		{name: "model failure", anErr: errors.New("quota"), wantLog: "Error generating analysis"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf)
			fake := llmclient.NewFakeClient(respondWith("let a = 1;", nil, tc.an, tc.anErr))
			p := NewPipeline(llm.NewGateway(fake, zerolog.Nop()), logger)

			res, err := p.Run(context.Background(), TransformRequest{
				Code:     "var a = 1;",
				Goals:    []goal.Goal{goal.ModernStack},
				Language: language.JavaScript,
			}, nil)
			require.NoError(t, err)
			assert.Equal(t, "let a = 1;", res.Code)
			assert.True(t, res.AnalysisFallback)
			assert.True(t, analysis.IsFallback(res.Analysis))
			assert.Equal(t, 1, strings.Count(buf.String(), `"level":"warn"`))
			assert.Contains(t, buf.String(), tc.wantLog)
		})
	}
}
