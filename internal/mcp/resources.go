package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"codemorph/internal/gateway/service/morph"
	"codemorph/internal/goal"
)

const (
	goalsURI   = "codemorph://goals"
	samplesURI = "codemorph://samples"
)

func registerResources(s *server.MCPServer) {
	s.AddResource(
		mcplib.NewResource(
			goalsURI,
			"Goals",
			mcplib.WithResourceDescription("Transformation goal catalog"),
			mcplib.WithMIMEType("application/json"),
		),
		jsonResource(goalsURI, func() any { return goal.Catalog() }),
	)

	s.AddResource(
		mcplib.NewResource(
			samplesURI,
			"Samples",
			mcplib.WithResourceDescription("Built-in sample snippets"),
			mcplib.WithMIMEType("application/json"),
		),
		jsonResource(samplesURI, func() any { return samples() }),
	)
}

type sample struct {
	Language string `json:"language"`
	Code     string `json:"code"`
}

func samples() []sample {
	out := make([]sample, 0, len(morph.Samples))
	for _, s := range morph.Samples {
		out = append(out, sample{Language: s.Language.String(), Code: s.Code})
	}
	return out
}

func jsonResource(uri string, body func() any) server.ResourceHandlerFunc {
	return func(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		data, err := json.MarshalIndent(body(), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshaling %s: %w", uri, err)
		}
		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      uri,
				MIMEType: "application/json",
				Text:     string(data),
			},
		}, nil
	}
}
