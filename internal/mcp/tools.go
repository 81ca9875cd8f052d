package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"codemorph/internal/gateway/service/morph"
	"codemorph/internal/goal"
	"codemorph/internal/language"
	"codemorph/internal/sandbox"
)

func registerTools(s *server.MCPServer, pipeline *morph.Pipeline, runner *sandbox.Runner) {
	s.AddTool(
		mcplib.NewTool("codemorph_detect_language",
			mcplib.WithDescription("Guess the language of a code snippet. Falls back to javascript"),
			mcplib.WithString("code",
				mcplib.Required(),
				mcplib.Description("Source code to inspect"),
			),
		),
		handleDetectLanguage,
	)

	s.AddTool(
		mcplib.NewTool("codemorph_list_goals",
			mcplib.WithDescription("List the transformation goals accepted by codemorph_transform"),
		),
		handleListGoals,
	)

	s.AddTool(
		mcplib.NewTool("codemorph_transform",
			mcplib.WithDescription("Rewrite code toward the selected goals and return the new code with a structured analysis"),
			mcplib.WithString("code",
				mcplib.Required(),
				mcplib.Description("Source code to transform"),
			),
			mcplib.WithString("goals",
				mcplib.Required(),
				mcplib.Description("Comma-separated goal ids, e.g. \"Performance Boost, Best Practices\""),
			),
			mcplib.WithString("language",
				mcplib.Description("Language tag; detected from the code when omitted"),
				mcplib.Enum(languageNames()...),
			),
		),
		handleTransform(pipeline),
	)

	s.AddTool(
		mcplib.NewTool("codemorph_run_code",
			mcplib.WithDescription("Execute JavaScript or TypeScript in an isolated sandbox and return captured console output"),
			mcplib.WithString("code",
				mcplib.Required(),
				mcplib.Description("Code to execute"),
			),
			mcplib.WithString("language",
				mcplib.Required(),
				mcplib.Description("Language tag of the code"),
				mcplib.Enum(languageNames()...),
			),
		),
		handleRunCode(runner),
	)
}

type detectResult struct {
	Language language.Tag `json:"language"`
}

func handleDetectLanguage(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	code, err := request.RequireString("code")
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(detectResult{Language: language.Detect(code)})
}

func handleListGoals(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	return jsonResult(goal.Catalog())
}

func handleTransform(pipeline *morph.Pipeline) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		if pipeline == nil {
			return errorResult("no AI model is configured"), nil
		}
		code, err := request.RequireString("code")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		rawGoals, err := request.RequireString("goals")
		if err != nil {
			return errorResult(err.Error()), nil
		}

		goals, unknown := goal.ParseAll(splitGoals(rawGoals))
		if len(unknown) > 0 {
			return errorResult(fmt.Sprintf("unknown goals: %s", strings.Join(unknown, ", "))), nil
		}

		lang := language.Detect(code)
		if name := request.GetString("language", ""); name != "" {
			tag, ok := language.Parse(name)
			if !ok {
				return errorResult(fmt.Sprintf("unknown language %q", name)), nil
			}
			lang = tag
		}

		res, err := pipeline.Run(ctx, morph.TransformRequest{Code: code, Goals: goals, Language: lang}, nil)
		if errors.Is(err, morph.ErrPrecondition) {
			return errorResult(morph.PreconditionMessage), nil
		}
		if err != nil {
			// TransformError already renders as the user-facing message.
			return errorResult(err.Error()), nil
		}
		return jsonResult(res)
	}
}

func handleRunCode(runner *sandbox.Runner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
		code, err := request.RequireString("code")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		name, err := request.RequireString("language")
		if err != nil {
			return errorResult(err.Error()), nil
		}
		// Unknown tags still reach the runner, which reports them as unsupported.
		return jsonResult(runner.Run(ctx, code, language.Tag(strings.ToLower(strings.TrimSpace(name)))))
	}
}

func splitGoals(raw string) []string {
	var ids []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			ids = append(ids, id)
		}
	}
	return ids
}

func languageNames() []string {
	out := make([]string, 0, len(language.All))
	for _, t := range language.All {
		out = append(out, t.String())
	}
	return out
}

func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
