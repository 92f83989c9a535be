package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ziadkadry99/puter-gallery/internal/catalog"
	"github.com/ziadkadry99/puter-gallery/internal/platform"
	"github.com/ziadkadry99/puter-gallery/internal/runner"
)

// handleListExamples renders the catalog as markdown.
func (s *Server) handleListExamples(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	only := request.GetString("category", "")

	var b strings.Builder
	found := false
	for _, cat := range s.catalog.Summary() {
		if only != "" && cat.Name != only {
			continue
		}
		found = true
		fmt.Fprintf(&b, "## %s\n\n", cat.Name)
		if len(cat.Examples) == 0 {
			b.WriteString("(no examples)\n\n")
			continue
		}
		for _, ex := range cat.Examples {
			fmt.Fprintf(&b, "- **%s**: %s\n", ex.Title, ex.Description)
		}
		b.WriteString("\n")
	}

	if !found {
		return mcp.NewToolResultError(fmt.Sprintf("unknown category %q. Available: %s",
			only, strings.Join(s.catalog.Names(), ", "))), nil
	}
	return mcp.NewToolResultText(strings.TrimRight(b.String(), "\n")), nil
}

// handleRunExample runs one example and returns what it wrote.
func (s *Server) handleRunExample(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	category, err := request.RequireString("category")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: category"), nil
	}
	title, err := request.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: title"), nil
	}

	ex, _, ok := s.catalog.Find(category, title)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no example %q in category %q. Call list_examples to see what is available.", title, category)), nil
	}

	out := catalog.NewOutput()
	outcome := s.runner.Run(platform.WithSession(ctx, s.session), category, ex, out)
	if outcome == runner.OutcomeDenied {
		return mcp.NewToolResultError(out.String()), nil
	}
	return mcp.NewToolResultText(out.String()), nil
}
