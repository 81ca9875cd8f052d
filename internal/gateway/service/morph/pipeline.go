package morph

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"codemorph/internal/analysis"
	"codemorph/internal/goal"
	"codemorph/internal/language"
	"codemorph/internal/prompt"
)

// Model is the AI gateway as seen by the pipeline. *llm.Gateway implements it.
type Model interface {
	Transform(ctx context.Context, p prompt.Transform) (string, error)
	Analyze(ctx context.Context, userPrompt string) (string, error)
}

// TransformRequest is one transformation. Code and at least one goal are required.
type TransformRequest struct {
	Code     string       `validate:"required"`
	Goals    []goal.Goal  `validate:"required,min=1"`
	Language language.Tag `validate:"required"`
}

// Result of a successful pipeline run.
type Result struct {
	Code             string            `json:"code" yaml:"code"`
	Analysis         analysis.Analysis `json:"analysis" yaml:"analysis"`
	AnalysisFallback bool              `json:"analysisFallback" yaml:"analysisFallback"`
}

// Pipeline sequences transform then analyze. It holds no session state, so
// the gateway, the CLI and the MCP server share it.
type Pipeline struct {
	model Model
	log   zerolog.Logger
}

func NewPipeline(model Model, logger zerolog.Logger) *Pipeline {
	return &Pipeline{model: model, log: logger}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate returns ErrPrecondition when the request cannot be sent.
func (r TransformRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return ErrPrecondition
	}
	return nil
}

// Run transforms req.Code and then analyzes the result. committed, when not
// nil, receives the transformed code before the analysis call starts. A
// failed analysis never fails the run; the fallback analysis is returned.
func (p *Pipeline) Run(ctx context.Context, req TransformRequest, committed func(code string)) (Result, error) {
	if err := req.Validate(); err != nil {
		return Result{}, err
	}
	goals := goal.Dedup(req.Goals)

	code, err := p.model.Transform(ctx, prompt.BuildTransform(goals, req.Language, req.Code))
	if err != nil {
		return Result{}, err
	}
	if committed != nil {
		committed(code)
	}

	res := Result{Code: code}
	raw, err := p.model.Analyze(ctx, prompt.BuildAnalysis(req.Code, code, req.Language))
	if err != nil {
		p.log.Warn().Err(err).Msg("Error generating analysis")
	}
	res.Analysis = analysis.Parse(raw, func(rejected error) {
		res.AnalysisFallback = true
		if err == nil {
			p.log.Warn().Err(rejected).Msg("analysis response rejected, using fallback")
		}
	})
	return res, nil
}
